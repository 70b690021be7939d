package app

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/Guilhem-Bonnet/HikariFlix/internal/ports"
)

// Phase de la machine à états d'une chaîne de fallback.
type Phase int

const (
	PhaseNotStarted Phase = iota
	PhaseTrying
	PhaseFound
	PhaseExhausted
)

func (p Phase) String() string {
	switch p {
	case PhaseNotStarted:
		return "not_started"
	case PhaseTrying:
		return "trying"
	case PhaseFound:
		return "found"
	case PhaseExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// ChainState: Step n'a de sens qu'en PhaseTrying / PhaseFound.
type ChainState struct {
	Phase Phase
	Step  int
}

type Outcome string

const (
	OutcomeFound  Outcome = "found"
	OutcomeEmpty  Outcome = "empty"
	OutcomeFailed Outcome = "failed"
)

// StepExhausted comme cible d'une transition termine la chaîne sans résultat.
const StepExhausted = -1

// Step est une tentative. OnEmpty est suivi pour un résultat vide ou un refus du provider
// (success=false), OnFailed pour une erreur transport ou un payload invalide.
type Step[T any] struct {
	Name     string
	Run      func(ctx context.Context) (T, error)
	OnEmpty  int
	OnFailed int
}

type Attempt struct {
	Step    string            `json:"step"`
	Outcome Outcome           `json:"outcome"`
	Kind    ports.FailureKind `json:"kind,omitempty"`
	Error   string            `json:"error,omitempty"`
}

// Chain évalue des étapes strictement en séquence. Une transition ne peut qu'avancer
// (index cible > index courant), ce qui borne le nombre d'appels à len(steps).
type Chain[T any] struct {
	steps   []Step[T]
	isEmpty func(T) bool
	state   ChainState
	trace   []Attempt
}

func NewChain[T any](isEmpty func(T) bool, steps ...Step[T]) *Chain[T] {
	return &Chain[T]{steps: steps, isEmpty: isEmpty}
}

// Sequential relie les étapes dans l'ordre: vide ou échec passent à la suivante.
func Sequential[T any](steps ...Step[T]) []Step[T] {
	for i := range steps {
		next := i + 1
		if next >= len(steps) {
			next = StepExhausted
		}
		steps[i].OnEmpty = next
		steps[i].OnFailed = next
	}
	return steps
}

func (c *Chain[T]) State() ChainState { return c.state }

func (c *Chain[T]) Trace() []Attempt { return append([]Attempt(nil), c.trace...) }

// Run exécute la chaîne jusqu'au premier résultat non vide.
func (c *Chain[T]) Run(ctx context.Context, logger zerolog.Logger) (T, bool) {
	var zero T
	c.state = ChainState{Phase: PhaseNotStarted}
	c.trace = c.trace[:0]

	i := 0
	for i >= 0 && i < len(c.steps) {
		if ctx.Err() != nil {
			break
		}
		c.state = ChainState{Phase: PhaseTrying, Step: i}
		st := c.steps[i]

		v, err := st.Run(ctx)
		outcome := c.classify(v, err)
		att := Attempt{Step: st.Name, Outcome: outcome}
		if err != nil {
			att.Kind = ports.KindOf(err)
			att.Error = err.Error()
		}
		c.trace = append(c.trace, att)

		var next int
		switch outcome {
		case OutcomeFound:
			c.state = ChainState{Phase: PhaseFound, Step: i}
			return v, true
		case OutcomeEmpty:
			next = st.OnEmpty
		default:
			next = st.OnFailed
		}

		ev := logger.Debug()
		if err != nil {
			ev = logger.Warn().Err(err).Str("kind", string(att.Kind))
		}
		ev.Str("step", st.Name).Str("outcome", string(outcome)).Msg("fallback step")

		if next <= i {
			break
		}
		i = next
	}

	c.state = ChainState{Phase: PhaseExhausted}
	return zero, false
}

func (c *Chain[T]) classify(v T, err error) Outcome {
	if err != nil {
		switch ports.KindOf(err) {
		case ports.FailureProvider, ports.FailureEmpty:
			return OutcomeEmpty
		default:
			return OutcomeFailed
		}
	}
	if c.isEmpty != nil && c.isEmpty(v) {
		return OutcomeEmpty
	}
	return OutcomeFound
}
