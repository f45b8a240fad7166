package resolution

import (
	"encoding/json"
	"fmt"

	"github.com/louisbranch/warroom/internal/services/game/domain/action"
)

func init() {
	DefaultRegistry.Register(arbiter{})
}

// ArbiterData is the audit payload an arbiter resolution records.
type ArbiterData struct {
	Method        string `json:"method"`
	StrongFor     int    `json:"strong_for"`
	StrongAgainst int    `json:"strong_against"`
}

// arbiter resolves on the arbiter's strong-argument tally instead of votes.
type arbiter struct{}

func (arbiter) ID() string { return MethodArbiter }

func (arbiter) MapVoteToTokens(voteType action.VoteType) TokenWeights {
	// Votes carry no weight under arbiter review.
	return TokenWeights{}
}

func (arbiter) Resolve(input Input) (Outcome, error) {
	strongFor := 0
	strongAgainst := 0
	for _, argument := range input.Arguments {
		if !argument.IsStrong {
			continue
		}
		if action.IsProArgument(argument.Type) {
			strongFor++
		} else if argument.Type == action.ArgumentTypeAgainst {
			strongAgainst++
		}
	}

	resultType := ResultFailureBut
	if strongFor > strongAgainst {
		resultType = ResultSuccessBut
	}

	data, err := json.Marshal(ArbiterData{
		Method:        MethodArbiter,
		StrongFor:     strongFor,
		StrongAgainst: strongAgainst,
	})
	if err != nil {
		return Outcome{}, fmt.Errorf("marshal arbiter data: %w", err)
	}

	return Outcome{
		ResultType:  resultType,
		ResultValue: MomentumDelta(resultType),
		Data:        data,
	}, nil
}
