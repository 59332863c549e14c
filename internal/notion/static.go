package notion

import (
	"context"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"qualrole/internal/goal"
)

// Static serves a fixed goal list. Used by tests and by pick --from-file.
type Static struct {
	Goals []goal.Goal
	Err   error
}

func (s *Static) Fetch(_ context.Context) ([]goal.Goal, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	out := make([]goal.Goal, len(s.Goals))
	copy(out, s.Goals)
	return out, nil
}

// LoadStatic reads a YAML list of goals:
//
//	goals:
//	  - id: a
//	    name: Pizza
//	    types: [{id: t1, name: food}]
//	    status: pending
func LoadStatic(path string) (*Static, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read goals file")
	}
	var doc struct {
		Goals []goal.Goal `yaml:"goals"`
	}
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, errors.Wrapf(err, "parse goals file %s", path)
	}
	return &Static{Goals: doc.Goals}, nil
}
