package form

import (
	"strconv"
	"strings"

	"qualrole/internal/goal"
	"qualrole/internal/selection"
)

type Phase string

const (
	PhaseIdle          Phase = "idle"
	PhaseValidating    Phase = "validating"
	PhaseInvalid       Phase = "invalid"
	PhaseComputed      Phase = "computed"
	PhaseResultShown   Phase = "result_shown"
	PhaseNoResultShown Phase = "no_result_shown"
)

// State is everything the page needs to render the four questions and
// the result dialog. The zero value is not usable; start from New.
type State struct {
	Phase   Phase
	Filters selection.Filters
	Touched map[selection.Field]bool
	Invalid []selection.Field
	Outcome *selection.Outcome
}

func New() State {
	return State{Phase: PhaseIdle, Touched: map[selection.Field]bool{}}
}

// Result is the suggested goal, if one is on screen.
func (s State) Result() *goal.Goal {
	if s.Phase != PhaseResultShown || s.Outcome == nil {
		return nil
	}
	return s.Outcome.Goal
}

// HasError reports whether f should be highlighted.
func (s State) HasError(f selection.Field) bool {
	if !s.Touched[f] {
		return false
	}
	for _, inv := range s.Invalid {
		if inv == f {
			return true
		}
	}
	return false
}

func (s State) ModalOpen() bool {
	return s.Phase == PhaseResultShown || s.Phase == PhaseNoResultShown
}

type Event interface{ isEvent() }

// SetField carries a raw input value. Number is parsed; anything that is
// not an integer clears it.
type SetField struct {
	Field selection.Field
	Value string
}

type Submit struct{}

// Evaluated carries the engine's answer for the filters in Validating.
type Evaluated struct {
	Outcome selection.Outcome
}

type Dismiss struct{}

func (SetField) isEvent()  {}
func (Submit) isEvent()    {}
func (Evaluated) isEvent() {}
func (Dismiss) isEvent()   {}

// Reduce applies e to s and returns the next state. s is not modified.
func Reduce(s State, e Event) State {
	next := s.clone()

	switch ev := e.(type) {
	case SetField:
		if next.Phase != PhaseIdle && next.Phase != PhaseInvalid {
			return s
		}
		next.set(ev.Field, ev.Value)
		next.Touched[ev.Field] = true
		next.Invalid = selection.Validate(next.Filters)
		if next.Phase == PhaseInvalid && len(next.Invalid) == 0 {
			next.Phase = PhaseIdle
		}
		return next

	case Submit:
		if next.Phase != PhaseIdle && next.Phase != PhaseInvalid {
			return s
		}
		next.Phase = PhaseValidating
		next.Outcome = nil
		return next

	case Evaluated:
		if next.Phase != PhaseValidating {
			return s
		}
		if ev.Outcome.Kind == selection.KindValidationFailed {
			next.Phase = PhaseInvalid
			next.Invalid = ev.Outcome.Invalid
			for _, f := range selection.Fields {
				next.Touched[f] = true
			}
			return next
		}
		out := ev.Outcome
		next.Outcome = &out
		next.Invalid = nil
		next.Phase = PhaseComputed
		return settle(next)

	case Dismiss:
		switch next.Phase {
		case PhaseResultShown, PhaseNoResultShown, PhaseInvalid:
			return New()
		}
		return s
	}

	return s
}

// settle moves a computed state to the dialog that shows it.
func settle(s State) State {
	if s.Phase != PhaseComputed {
		return s
	}
	if s.Outcome.Matched() {
		s.Phase = PhaseResultShown
	} else {
		s.Phase = PhaseNoResultShown
	}
	return s
}

// Run submits s and evaluates it against goals, returning the settled state.
func Run(s State, goals []goal.Goal, engine *selection.Engine) State {
	s = Reduce(s, Submit{})
	if s.Phase != PhaseValidating {
		return s
	}
	return Reduce(s, Evaluated{Outcome: engine.Select(goals, s.Filters)})
}

func (s *State) set(f selection.Field, value string) {
	switch f {
	case selection.FieldCategory:
		s.Filters.Category = value
	case selection.FieldColor:
		s.Filters.Color = value
	case selection.FieldCharacter:
		s.Filters.Character = value
	case selection.FieldNumber:
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			s.Filters.Number = nil
			return
		}
		s.Filters.Number = &n
	}
}

func (s State) clone() State {
	out := s
	out.Touched = make(map[selection.Field]bool, len(s.Touched))
	for k, v := range s.Touched {
		out.Touched[k] = v
	}
	if s.Invalid != nil {
		out.Invalid = append([]selection.Field(nil), s.Invalid...)
	}
	if s.Filters.Number != nil {
		n := *s.Filters.Number
		out.Filters.Number = &n
	}
	return out
}
