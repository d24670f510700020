package compound

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/DiazoScreen/pkg/errors"
	ctypes "github.com/turtacn/DiazoScreen/pkg/types/compound"
)

func TestCompound_Validate(t *testing.T) {
	tests := []struct {
		name     string
		c        Compound
		wantCode errors.ErrorCode
	}{
		{name: "valid", c: Compound{Name: "anabaenopeptin", SMILES: "CC(C)CC"}},
		{name: "missing name", c: Compound{SMILES: "CCO"}, wantCode: errors.CodeInvalidParam},
		{name: "missing smiles", c: Compound{Name: "x"}, wantCode: errors.CodeCompoundInvalidSMILES},
		{name: "blank smiles", c: Compound{Name: "x", SMILES: "   "}, wantCode: errors.CodeCompoundInvalidSMILES},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.c.Validate()
			if tt.wantCode == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, tt.wantCode))
		})
	}
}

func labeled(name, smiles string, label ctypes.Label) LabeledCompound {
	return LabeledCompound{Compound: Compound{Name: name, SMILES: smiles}, Label: label}
}

func TestNewLabeledSet_PreservesOrder(t *testing.T) {
	set, err := NewLabeledSet([]LabeledCompound{
		labeled("a", "CCO", ctypes.LabelPositive),
		labeled("b", "CCN", ctypes.LabelNegative),
		labeled("c", "CCC", ctypes.LabelPositive),
	})
	require.NoError(t, err)
	require.Equal(t, 3, set.Len())
	assert.Equal(t, "a", set.At(0).Name)
	assert.Equal(t, "b", set.At(1).Name)
	assert.Equal(t, "c", set.At(2).Name)
}

func TestNewLabeledSet_FirstOccurrenceWins(t *testing.T) {
	set, err := NewLabeledSet([]LabeledCompound{
		labeled("a", "CCO", ctypes.LabelPositive),
		labeled("a", "CCN", ctypes.LabelNegative),
		labeled("b", "CCC", ctypes.LabelNegative),
	})
	require.NoError(t, err)
	require.Equal(t, 2, set.Len())
	assert.Equal(t, "CCO", set.At(0).SMILES)
	assert.Equal(t, ctypes.LabelPositive, set.At(0).Label)
}

func TestNewLabeledSet_RejectsInvalidLabel(t *testing.T) {
	_, err := NewLabeledSet([]LabeledCompound{
		{Compound: Compound{Name: "a", SMILES: "CCO"}, Label: ctypes.Label(7)},
	})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeDatasetLabelInvalid))
}

func TestLabeledSet_CountByLabel(t *testing.T) {
	set, err := NewLabeledSet([]LabeledCompound{
		labeled("a", "CCO", ctypes.LabelPositive),
		labeled("b", "CCN", ctypes.LabelNegative),
		labeled("c", "CCC", ctypes.LabelPositive),
	})
	require.NoError(t, err)
	pos, neg := set.CountByLabel()
	assert.Equal(t, 2, pos)
	assert.Equal(t, 1, neg)
}

func TestLabeledSet_MembersIsCopy(t *testing.T) {
	set, err := NewLabeledSet([]LabeledCompound{labeled("a", "CCO", ctypes.LabelPositive)})
	require.NoError(t, err)
	members := set.Members()
	members[0].Name = "mutated"
	assert.Equal(t, "a", set.At(0).Name)
}
