package dataset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/DiazoScreen/pkg/errors"
	ctypes "github.com/turtacn/DiazoScreen/pkg/types/compound"
)

func TestReadLabeledSet(t *testing.T) {
	in := strings.NewReader(`name,smiles,label
trehalose,OCC1OC(O)C(O)C(O)C1O,1
caffeine,CN1C=NC2=C1C(=O)N(C)C(=O)N2C,0
trehalose,OCC1OC(O)C(O)C(O)C1O,0
`)

	set, err := ReadLabeledSet(in)
	require.NoError(t, err)
	require.Equal(t, 2, set.Len(), "duplicate names keep the first occurrence")
	assert.Equal(t, "trehalose", set.At(0).Name)
	assert.Equal(t, ctypes.LabelPositive, set.At(0).Label)
	assert.Equal(t, ctypes.LabelNegative, set.At(1).Label)
}

func TestReadLabeledSet_ColumnOrderIrrelevant(t *testing.T) {
	in := strings.NewReader(`Label,SMILES,Name
1,CCO,ethanol
`)

	set, err := ReadLabeledSet(in)
	require.NoError(t, err)
	require.Equal(t, 1, set.Len())
	assert.Equal(t, "ethanol", set.At(0).Name)
	assert.Equal(t, "CCO", set.At(0).SMILES)
}

func TestReadLabeledSet_InvalidLabel(t *testing.T) {
	for _, label := range []string{"2", "-1", "yes", ""} {
		in := strings.NewReader("name,smiles,label\na,CCO," + label + "\n")
		_, err := ReadLabeledSet(in)
		require.Error(t, err, "label %q", label)
		assert.True(t, errors.IsCode(err, errors.CodeDatasetLabelInvalid), "label %q", label)
	}
}

func TestReadLabeledSet_MissingColumn(t *testing.T) {
	in := strings.NewReader("name,smiles\na,CCO\n")
	_, err := ReadLabeledSet(in)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeDatasetParseFailed))
	assert.Contains(t, err.Error(), "label")
}

func TestReadLabeledSet_EmptyInput(t *testing.T) {
	_, err := ReadLabeledSet(strings.NewReader(""))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeDatasetParseFailed))
}

func TestReadLabeledSet_RaggedRow(t *testing.T) {
	in := strings.NewReader("name,smiles,label\na,CCO\n")
	_, err := ReadLabeledSet(in)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeDatasetParseFailed))
}

func TestReadQueries(t *testing.T) {
	in := strings.NewReader(`name,smiles
q1,CCO
q2, CCN
`)

	queries, err := ReadQueries(in)
	require.NoError(t, err)
	require.Len(t, queries, 2)
	assert.Equal(t, "q1", queries[0].Name)
	assert.Equal(t, "CCN", queries[1].SMILES, "surrounding whitespace is trimmed")
}

func TestReadQueries_EmptySMILESRejected(t *testing.T) {
	in := strings.NewReader("name,smiles\nq1,\n")
	_, err := ReadQueries(in)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeDatasetParseFailed))
}

func TestReadMembership(t *testing.T) {
	in := strings.NewReader(`compound,strain
trehalose,Azotobacter vinelandii
trehalose,Klebsiella pneumoniae
glycine,Azotobacter vinelandii
`)

	rows, err := ReadMembership(in)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "trehalose", rows[0].Compound)
	assert.Equal(t, "Klebsiella pneumoniae", rows[1].Strain)
}

func TestReadMembership_BlankFieldRejected(t *testing.T) {
	in := strings.NewReader("compound,strain\n,Azotobacter\n")
	_, err := ReadMembership(in)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeDatasetParseFailed))
}

func TestLoadLabeledSet_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labeled.csv")
	require.NoError(t, os.WriteFile(path, []byte("name,smiles,label\na,CCO,1\n"), 0o644))

	set, err := LoadLabeledSet(path)
	require.NoError(t, err)
	assert.Equal(t, 1, set.Len())
}

func TestLoadLabeledSet_MissingFile(t *testing.T) {
	_, err := LoadLabeledSet(filepath.Join(t.TempDir(), "absent.csv"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeDatasetReadFailed))
}
