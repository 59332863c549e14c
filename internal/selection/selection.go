package selection

import (
	"math/rand/v2"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/samber/lo"

	"qualrole/internal/goal"
)

type Field string

const (
	FieldCategory  Field = "category"
	FieldNumber    Field = "number"
	FieldColor     Field = "color"
	FieldCharacter Field = "character"
)

// Fields lists the four questions in the order the form asks them.
var Fields = []Field{FieldCategory, FieldNumber, FieldColor, FieldCharacter}

const (
	MinNumber = 0
	MaxNumber = 9
)

// Filters are the four answers of one selection attempt. Number is a
// pointer so that an unanswered question differs from 0.
type Filters struct {
	Category  string `json:"category"`
	Number    *int   `json:"number"`
	Color     string `json:"color"`
	Character string `json:"character"`
}

type Kind string

const (
	KindValidationFailed Kind = "validation_failed"
	KindNoMatch          Kind = "no_match"
	KindMatch            Kind = "match"
)

type Outcome struct {
	Kind       Kind       `json:"kind"`
	Goal       *goal.Goal `json:"goal,omitempty"`
	Invalid    []Field    `json:"invalid,omitempty"`
	Candidates int        `json:"candidates"`
}

func (o Outcome) Matched() bool { return o.Kind == KindMatch && o.Goal != nil }

// Rand is the draw source. *rand.Rand from math/rand/v2 satisfies it.
type Rand interface {
	IntN(n int) int
}

// Engine picks one suggestion out of a goal list.
type Engine struct {
	mu  sync.Mutex
	rng Rand
}

// NewEngine returns an engine drawing from rng, or from a time-seeded PCG
// when rng is nil.
func NewEngine(rng Rand) *Engine {
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed>>1|1))
	}
	return &Engine{rng: rng}
}

// NewSeededEngine returns an engine whose draws repeat for the same seed.
func NewSeededEngine(seed uint64) *Engine {
	return NewEngine(rand.New(rand.NewPCG(seed, seed)))
}

// Validate returns the fields that are missing or out of range, in form order.
func Validate(f Filters) []Field {
	var invalid []Field
	if f.Category == "" {
		invalid = append(invalid, FieldCategory)
	}
	if f.Number == nil || *f.Number < MinNumber || *f.Number > MaxNumber {
		invalid = append(invalid, FieldNumber)
	}
	if f.Color == "" {
		invalid = append(invalid, FieldColor)
	}
	if f.Character == "" {
		invalid = append(invalid, FieldCharacter)
	}
	return invalid
}

// Candidates keeps the pending goals tagged with category, preserving order.
func Candidates(goals []goal.Goal, category string) []goal.Goal {
	return lo.Filter(goals, func(g goal.Goal, _ int) bool {
		return g.Eligible() && g.HasCategory(category)
	})
}

// Select validates f, narrows goals to the candidates and picks one.
//
// With several candidates the pick is a chain of re-rolls: an initial
// draw, then one more draw for each of an odd number, an even-length
// color and an odd-length character. Every draw covers the whole
// candidate set, so only the last one decides the result.
func (e *Engine) Select(goals []goal.Goal, f Filters) Outcome {
	if invalid := Validate(f); len(invalid) > 0 {
		return Outcome{Kind: KindValidationFailed, Invalid: invalid}
	}

	candidates := Candidates(goals, f.Category)
	switch len(candidates) {
	case 0:
		return Outcome{Kind: KindNoMatch}
	case 1:
		return Outcome{Kind: KindMatch, Goal: &candidates[0], Candidates: 1}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	current := candidates[e.draw(len(candidates))]
	if *f.Number%2 != 0 {
		current = candidates[e.draw(len(candidates))]
	}
	if utf8.RuneCountInString(f.Color)%2 == 0 {
		current = candidates[e.draw(len(candidates))]
	}
	if utf8.RuneCountInString(f.Character)%2 != 0 {
		current = candidates[e.draw(len(candidates))]
	}

	return Outcome{Kind: KindMatch, Goal: &current, Candidates: len(candidates)}
}

func (e *Engine) draw(n int) int {
	return e.rng.IntN(n)
}
