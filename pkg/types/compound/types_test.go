package compound

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFingerprintType(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    FingerprintType
		wantErr bool
	}{
		{name: "morgan lowercase", input: "morgan", want: FPMorgan},
		{name: "maccs mixed case", input: "MACCS", want: FPMACCS},
		{name: "topological with spaces", input: "  Topological ", want: FPTopological},
		{name: "unknown type", input: "atom_pair", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFingerprintType(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLabel(t *testing.T) {
	assert.True(t, LabelPositive.IsValid())
	assert.True(t, LabelNegative.IsValid())
	assert.False(t, Label(2).IsValid())
	assert.Equal(t, "positive", LabelPositive.String())
	assert.Equal(t, "negative", LabelNegative.String())

	l, err := ParseLabel(1)
	require.NoError(t, err)
	assert.Equal(t, LabelPositive, l)

	_, err = ParseLabel(-1)
	assert.Error(t, err)
}

func TestPredictionHasPrediction(t *testing.T) {
	var p Prediction
	assert.False(t, p.HasPrediction())

	prob := 0.85
	pred := LabelPositive
	p.Probability = &prob
	assert.False(t, p.HasPrediction(), "probability alone is not a complete prediction")

	p.Predicted = &pred
	assert.True(t, p.HasPrediction())
}

func TestConfusionMatrixTotal(t *testing.T) {
	m := ConfusionMatrix{TruePositives: 3, TrueNegatives: 2, FalsePositives: 1, FalseNegatives: 4}
	assert.Equal(t, 10, m.Total())
	assert.Zero(t, ConfusionMatrix{}.Total())
}

func TestBuildReportHasFailures(t *testing.T) {
	r := BuildReport{Built: 5}
	assert.False(t, r.HasFailures())

	r.Failures = append(r.Failures, BuildFailure{Name: "cmpA", SMILES: "???", Reason: "no atoms found"})
	assert.True(t, r.HasFailures())
}
