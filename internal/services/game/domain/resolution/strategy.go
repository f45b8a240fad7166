// Package resolution converts a completed vote set into a narrative outcome.
// Strategies are pluggable behind one small interface and selected per game
// by a stored method id.
package resolution

import (
	"github.com/louisbranch/warroom/internal/services/game/domain/action"
)

// Strategy method ids stored on games and actions.
const (
	MethodTokenDraw = "token_draw"
	MethodArbiter   = "arbiter"
)

// ResultType is the narrative outcome tier of a resolved action.
type ResultType string

const (
	ResultUnspecified ResultType = ""
	ResultTriumph     ResultType = "triumph"
	ResultSuccessBut  ResultType = "success_but"
	ResultFailureBut  ResultType = "failure_but"
	ResultDisaster    ResultType = "disaster"
)

// ResultLabel returns a stable label for a result type.
func ResultLabel(result ResultType) string {
	switch result {
	case ResultTriumph:
		return "TRIUMPH"
	case ResultSuccessBut:
		return "SUCCESS_BUT"
	case ResultFailureBut:
		return "FAILURE_BUT"
	case ResultDisaster:
		return "DISASTER"
	default:
		return "UNSPECIFIED"
	}
}

// MomentumDelta returns the momentum swing a result applies.
func MomentumDelta(result ResultType) int {
	switch result {
	case ResultTriumph:
		return 3
	case ResultSuccessBut:
		return 1
	case ResultFailureBut:
		return -1
	case ResultDisaster:
		return -3
	default:
		return 0
	}
}

// TokenWeights is the success/failure weighting one vote contributes.
type TokenWeights struct {
	Success int
	Failure int
}

// Input carries everything a strategy may consult. token_draw reads the
// votes and the seed; arbiter reads the arguments.
type Input struct {
	Votes     []action.Vote
	Arguments []action.Argument
	Seed      int64
}

// Outcome is the resolved result plus the strategy's audit payload.
type Outcome struct {
	ResultType  ResultType
	ResultValue int
	Data        []byte
}

// Strategy converts votes into token weights and a final outcome.
type Strategy interface {
	// ID returns the stored method id selecting this strategy.
	ID() string
	// MapVoteToTokens assigns the success/failure weights one vote carries.
	MapVoteToTokens(voteType action.VoteType) TokenWeights
	// Resolve converts the completed input into an outcome. The outcome must
	// be reproducible from the same input.
	Resolve(input Input) (Outcome, error)
}
