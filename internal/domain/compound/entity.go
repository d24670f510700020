// Package compound provides the structural-similarity domain of the
// DiazoScreen platform: compound entities, molecular fingerprints, similarity
// calculators, the immutable fingerprint store, and nearest-neighbor search.
package compound

import (
	"strings"

	"github.com/turtacn/DiazoScreen/pkg/errors"
	ctypes "github.com/turtacn/DiazoScreen/pkg/types/compound"
)

// Compound is a named chemical structure.  Name is the caller-facing
// identifier; SMILES is the structure string fingerprints are computed from.
type Compound struct {
	Name   string `json:"name"`
	SMILES string `json:"smiles"`
}

// Validate checks the minimal structural requirements of a compound record.
func (c Compound) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return errors.New(errors.CodeInvalidParam, "compound name is required")
	}
	if strings.TrimSpace(c.SMILES) == "" {
		return errors.New(errors.CodeCompoundInvalidSMILES, "SMILES string cannot be empty").
			WithDetail("compound " + c.Name)
	}
	return nil
}

// LabeledCompound is a compound together with its diazotroph-origin class.
type LabeledCompound struct {
	Compound
	Label ctypes.Label `json:"label"`
}

// LabeledSet is an ordered, deduplicated collection of labeled compounds.
// Order is the input order; duplicate names keep the first occurrence.  The
// set is frozen after construction.
type LabeledSet struct {
	members []LabeledCompound
}

// NewLabeledSet builds a LabeledSet from rows in input order.  Rows with an
// invalid compound or label are rejected; a duplicate name silently keeps the
// earlier row so re-supplied reference data stays stable.
func NewLabeledSet(rows []LabeledCompound) (*LabeledSet, error) {
	seen := make(map[string]struct{}, len(rows))
	members := make([]LabeledCompound, 0, len(rows))
	for _, row := range rows {
		if err := row.Validate(); err != nil {
			return nil, err
		}
		if !row.Label.IsValid() {
			return nil, errors.Newf(errors.CodeDatasetLabelInvalid, "label must be 0 or 1, got %d", int(row.Label)).
				WithDetail("compound " + row.Name)
		}
		if _, dup := seen[row.Name]; dup {
			continue
		}
		seen[row.Name] = struct{}{}
		members = append(members, row)
	}
	return &LabeledSet{members: members}, nil
}

// Len returns the number of distinct compounds in the set.
func (s *LabeledSet) Len() int { return len(s.members) }

// At returns the i-th member in input order.
func (s *LabeledSet) At(i int) LabeledCompound { return s.members[i] }

// Members returns a copy of the ordered member slice.
func (s *LabeledSet) Members() []LabeledCompound {
	out := make([]LabeledCompound, len(s.members))
	copy(out, s.members)
	return out
}

// CountByLabel returns how many members carry each class.
func (s *LabeledSet) CountByLabel() (positives, negatives int) {
	for _, m := range s.members {
		if m.Label == ctypes.LabelPositive {
			positives++
		} else {
			negatives++
		}
	}
	return positives, negatives
}
