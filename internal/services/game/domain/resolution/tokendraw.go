package resolution

import (
	"encoding/json"
	"fmt"
	"math/rand"

	"github.com/louisbranch/warroom/internal/services/game/domain/action"
)

// drawSize is how many tokens a token_draw resolution samples from the pool.
const drawSize = 5

// basePoolSuccess and basePoolFailure seed every pool so no draw can run on
// an empty or one-sided-by-construction pool.
const (
	basePoolSuccess = 1
	basePoolFailure = 1
)

func init() {
	DefaultRegistry.Register(tokenDraw{})
}

// TokenDrawData is the audit payload a token_draw resolution records. The
// draw replays exactly from Seed and the pool counts.
type TokenDrawData struct {
	Method       string   `json:"method"`
	Seed         int64    `json:"seed"`
	PoolSuccess  int      `json:"pool_success"`
	PoolFailure  int      `json:"pool_failure"`
	DrawnTokens  []string `json:"drawn_tokens"`
	DrawnSuccess int      `json:"drawn_success"`
	DrawnFailure int      `json:"drawn_failure"`
}

// tokenDraw resolves by a fixed-size weighted draw without replacement from
// a pool built out of every vote's token weights.
type tokenDraw struct{}

func (tokenDraw) ID() string { return MethodTokenDraw }

func (tokenDraw) MapVoteToTokens(voteType action.VoteType) TokenWeights {
	switch voteType {
	case action.VoteTypeLikelySuccess:
		return TokenWeights{Success: 3, Failure: 1}
	case action.VoteTypeLikelyFailure:
		return TokenWeights{Success: 1, Failure: 3}
	default:
		// UNCERTAIN weighs both ways equally.
		return TokenWeights{Success: 2, Failure: 2}
	}
}

func (tokenDraw) Resolve(input Input) (Outcome, error) {
	poolSuccess := basePoolSuccess
	poolFailure := basePoolFailure
	for _, vote := range input.Votes {
		poolSuccess += vote.SuccessTokens
		poolFailure += vote.FailureTokens
	}

	drawn := drawSize
	if poolSuccess+poolFailure < drawn {
		drawn = poolSuccess + poolFailure
	}

	rng := rand.New(rand.NewSource(input.Seed))
	remainingSuccess := poolSuccess
	remainingFailure := poolFailure
	tokens := make([]string, 0, drawn)
	drawnSuccess := 0
	for i := 0; i < drawn; i++ {
		pick := rng.Intn(remainingSuccess + remainingFailure)
		if pick < remainingSuccess {
			remainingSuccess--
			drawnSuccess++
			tokens = append(tokens, "success")
		} else {
			remainingFailure--
			tokens = append(tokens, "failure")
		}
	}

	resultType := classifyDraw(drawnSuccess, drawn)
	data, err := json.Marshal(TokenDrawData{
		Method:       MethodTokenDraw,
		Seed:         input.Seed,
		PoolSuccess:  poolSuccess,
		PoolFailure:  poolFailure,
		DrawnTokens:  tokens,
		DrawnSuccess: drawnSuccess,
		DrawnFailure: drawn - drawnSuccess,
	})
	if err != nil {
		return Outcome{}, fmt.Errorf("marshal token draw data: %w", err)
	}

	return Outcome{
		ResultType:  resultType,
		ResultValue: MomentumDelta(resultType),
		Data:        data,
	}, nil
}

// classifyDraw maps a drawn sample onto an outcome tier. With the full draw
// of 5 this yields: 5 successes TRIUMPH, 3-4 SUCCESS_BUT, 1-2 FAILURE_BUT,
// 0 DISASTER. Short draws classify by majority, ties landing on FAILURE_BUT.
func classifyDraw(successes, drawn int) ResultType {
	switch {
	case drawn == 0:
		return ResultFailureBut
	case successes == drawn:
		return ResultTriumph
	case successes == 0:
		return ResultDisaster
	case successes*2 > drawn:
		return ResultSuccessBut
	default:
		return ResultFailureBut
	}
}
