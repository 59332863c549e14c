package goal

import "github.com/samber/lo"

type Status string

const (
	StatusPending Status = "pending"
	StatusDone    Status = "done"
)

// Category is a tag from the database's "Type" column. The vocabulary is
// owned by the database, so names are kept as-is.
type Category struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// Goal is one outing idea.
type Goal struct {
	ID     string     `json:"id" yaml:"id"`
	Name   string     `json:"name" yaml:"name"`
	Types  []Category `json:"types" yaml:"types"`
	Status Status     `json:"status" yaml:"status"`
}

func (g Goal) Eligible() bool {
	return g.Status == StatusPending
}

// HasCategory reports whether one of the goal's types is named exactly name.
func (g Goal) HasCategory(name string) bool {
	return lo.ContainsBy(g.Types, func(c Category) bool {
		return c.Name == name
	})
}

// Categories lists the distinct category names across goals in first-seen order.
func Categories(goals []Goal) []string {
	names := lo.FlatMap(goals, func(g Goal, _ int) []string {
		return lo.Map(g.Types, func(c Category, _ int) string { return c.Name })
	})
	return lo.Uniq(lo.Compact(names))
}
