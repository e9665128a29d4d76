package agent

import (
	"math/rand/v2"
	"slices"
	"strings"

	"github.com/pkg/errors"

	"github.com/ochaos/entropy/internal/generics"
	"github.com/ochaos/entropy/internal/mcts"
	"github.com/ochaos/entropy/internal/parameters"
)

// New builds an Agent from a comma-separated configuration string, e.g.
// "mcts,rollouts=12000,temperature=0.45,k=0.0125" or "random". seed1/seed2
// seed the agent's RNG (see math/rand/v2.NewPCG); pass distinct seeds for
// agents playing in the same process, e.g. a self-play competition.
func New(config string, seed1, seed2 uint64) (Agent, error) {
	// The leading comma-separated token is the agent kind; the rest parses
	// as ordinary key=value parameters.
	head, rest, _ := strings.Cut(config, ",")
	kind := strings.TrimSpace(head)
	params := parameters.NewFromConfigString(rest)
	delete(params, "") // artifact of splitting an empty "rest", not a real parameter
	rng := rand.New(rand.NewPCG(seed1, seed2))

	switch kind {
	case "random":
		return NewRandom(rng), nil
	case "mcts", "":
		mp := mcts.DefaultParams()
		var err error
		mp.Rollouts, err = parameters.PopParamOr(params, "rollouts", mp.Rollouts)
		if err != nil {
			return nil, errors.Wrap(err, "agent: parsing rollouts")
		}
		mp.K, err = parameters.PopParamOr(params, "k", mp.K)
		if err != nil {
			return nil, errors.Wrap(err, "agent: parsing k")
		}
		temperature, err := parameters.PopParamOr(params, "temperature", mp.T)
		if err != nil {
			return nil, errors.Wrap(err, "agent: parsing temperature")
		}
		mp.T = temperature
		if leftover := slices.Collect(generics.SortedKeys(params)); len(leftover) > 0 {
			return nil, errors.Errorf("agent: unknown mcts parameter(s): %v", leftover)
		}
		return NewMCTS(mp, rng), nil
	default:
		return nil, errors.Errorf("agent: unknown agent kind %q", kind)
	}
}
