// -----------------------------------------------------------------------
// Package flow traces terminal build outputs back to their original
// sources over the implicit output -> producing step graph.
// -----------------------------------------------------------------------

package flow

import (
	"sort"

	"github.com/ahrtr/gocontainer/set"
	"github.com/edwingeng/deque"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/nativetrace/internal/models"
)

// Analyzer walks classified build steps. It holds no per-call state.
type Analyzer struct {
	logger arbor.ILogger
}

// NewAnalyzer creates a flow analyzer
func NewAnalyzer(logger arbor.ILogger) *Analyzer {
	return &Analyzer{logger: logger}
}

// frame is one step on the DFS stack; next is the input to visit next
type frame struct {
	output string
	step   *models.BuildStep
	next   int
}

// Analyze returns one dependency chain per terminal output
func (a *Analyzer) Analyze(steps []*models.BuildStep) map[string]models.DependencyChain {
	producers := a.producers(steps)
	terminals := Terminals(steps)

	result := make(map[string]models.DependencyChain, len(terminals))
	for _, out := range terminals {
		result[out] = a.trace(out, producers)
	}

	a.logger.Debug().
		Int("steps", len(steps)).
		Int("intermediates", len(producers)-len(terminals)).
		Int("terminals", len(terminals)).
		Msg("Analyzed build flow")

	return result
}

// Terminals returns, sorted, every output that no other step consumes
func Terminals(steps []*models.BuildStep) []string {
	consumed := set.New()
	for _, step := range steps {
		own := set.New()
		for _, out := range step.Outputs {
			own.Add(out)
		}
		for _, in := range step.Inputs {
			if !own.Contains(in.Path) {
				consumed.Add(in.Path)
			}
		}
	}

	seen := make(map[string]bool)
	var terminals []string
	for _, step := range steps {
		for _, out := range step.Outputs {
			if seen[out] || consumed.Contains(out) {
				continue
			}
			seen[out] = true
			terminals = append(terminals, out)
		}
	}
	sort.Strings(terminals)
	return terminals
}

// producers maps every output path to the step that last wrote it
func (a *Analyzer) producers(steps []*models.BuildStep) map[string]*models.BuildStep {
	index := make(map[string]*models.BuildStep)
	for _, step := range steps {
		for _, out := range step.Outputs {
			if prev, ok := index[out]; ok && prev != step {
				a.logger.Debug().
					Str("output", out).
					Str("previous", prev.Invocation.String()).
					Str("replacement", step.Invocation.String()).
					Msg("Output written by more than one step, using the later one")
			}
			index[out] = step
		}
	}
	return index
}

// trace walks backward from terminal. Inputs that are known outputs are
// followed into their producer; everything else is an original source,
// recorded against the step that consumed it directly.
func (a *Analyzer) trace(terminal string, producers map[string]*models.BuildStep) models.DependencyChain {
	var chain models.DependencyChain

	onPath := set.New()
	done := set.New()
	stack := deque.NewDeque()

	stack.PushBack(&frame{output: terminal, step: producers[terminal]})
	onPath.Add(terminal)

	for !stack.Empty() {
		f := stack.Back().(*frame)
		if f.next >= len(f.step.Inputs) {
			stack.PopBack()
			onPath.Remove(f.output)
			done.Add(f.output)
			continue
		}

		in := f.step.Inputs[f.next]
		f.next++

		producer, intermediate := producers[in.Path]
		switch {
		case !intermediate:
			chain = append(chain, models.ChainEntry{Source: in.Path, Step: f.step})
		case onPath.Contains(in.Path):
			a.logger.Warn().
				Str("terminal", terminal).
				Str("output", f.output).
				Str("input", in.Path).
				Str("anomaly", "suspicious").
				Msg("Cyclic dependency in build trace, branch cut")
		case done.Contains(in.Path):
			// shared intermediate already walked for this terminal
		default:
			onPath.Add(in.Path)
			stack.PushBack(&frame{output: in.Path, step: producer})
		}
	}

	sort.SliceStable(chain, func(i, j int) bool {
		return chain[i].Source < chain[j].Source
	})
	return chain
}
