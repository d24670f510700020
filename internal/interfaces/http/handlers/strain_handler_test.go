package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ctypes "github.com/turtacn/DiazoScreen/pkg/types/compound"
)

func strainRouter() *gin.Engine {
	r := gin.New()
	r.POST("/api/v1/strains/summary", NewStrainHandler().Summarize)
	return r
}

func prediction(name string, prob float64) ctypes.Prediction {
	label := ctypes.Label(0)
	if prob >= 0.5 {
		label = 1
	}
	return ctypes.Prediction{
		Name:        name,
		Probability: &prob,
		Predicted:   &label,
	}
}

func TestStrainSummary_Aggregates(t *testing.T) {
	w := postJSON(t, strainRouter(), "/api/v1/strains/summary", StrainSummaryRequest{
		Predictions: []ctypes.Prediction{
			prediction("metA", 0.9),
			prediction("metB", 0.4),
			prediction("metC", 0.7),
		},
		Membership: []MembershipPair{
			{Compound: "metA", Strain: "Azotobacter vinelandii"},
			{Compound: "metB", Strain: "Azotobacter vinelandii"},
			{Compound: "metC", Strain: "Klebsiella pneumoniae"},
		},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp StrainSummaryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Strains, 2)

	// Default order is descending max probability.
	assert.Equal(t, "Azotobacter vinelandii", resp.Strains[0].Key)
	assert.Equal(t, 2, resp.Strains[0].Count)
	assert.InDelta(t, 0.9, resp.Strains[0].MaxProbability, 1e-9)
}

func TestStrainSummary_AscendingByCount(t *testing.T) {
	w := postJSON(t, strainRouter(), "/api/v1/strains/summary", StrainSummaryRequest{
		Predictions: []ctypes.Prediction{
			prediction("metA", 0.9),
			prediction("metB", 0.4),
		},
		Membership: []MembershipPair{
			{Compound: "metA", Strain: "one"},
			{Compound: "metA", Strain: "two"},
			{Compound: "metB", Strain: "two"},
		},
		Sort:      "count",
		Ascending: true,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp StrainSummaryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Strains, 2)
	assert.Equal(t, "one", resp.Strains[0].Key)
	assert.Equal(t, "two", resp.Strains[1].Key)
}

func TestStrainSummary_InvalidSortKey(t *testing.T) {
	w := postJSON(t, strainRouter(), "/api/v1/strains/summary", StrainSummaryRequest{
		Predictions: []ctypes.Prediction{prediction("metA", 0.9)},
		Membership:  []MembershipPair{{Compound: "metA", Strain: "one"}},
		Sort:        "alphabetical",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStrainSummary_MissingMembership(t *testing.T) {
	w := postJSON(t, strainRouter(), "/api/v1/strains/summary", map[string]interface{}{
		"predictions": []ctypes.Prediction{prediction("metA", 0.9)},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
