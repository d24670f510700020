package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/DiazoScreen/internal/application/classifier"
	ctypes "github.com/turtacn/DiazoScreen/pkg/types/compound"
)

// StrainSummaryRequest is the body of POST /api/v1/strains/summary.  It rolls
// previously computed predictions up to strain level without re-running the
// classifier.
type StrainSummaryRequest struct {
	Predictions []ctypes.Prediction `json:"predictions" binding:"required"`
	Membership  []MembershipPair    `json:"membership" binding:"required"`
	Sort        string              `json:"sort,omitempty"`
	Ascending   bool                `json:"ascending,omitempty"`
}

// StrainSummaryResponse is the body of a successful aggregation.
type StrainSummaryResponse struct {
	Strains []ctypes.GroupSummary `json:"strains"`
}

// StrainHandler serves strain-level aggregation requests.
type StrainHandler struct{}

// NewStrainHandler constructs the handler.
func NewStrainHandler() *StrainHandler {
	return &StrainHandler{}
}

// Summarize handles POST /api/v1/strains/summary.
func (h *StrainHandler) Summarize(c *gin.Context) {
	var req StrainSummaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	summaries, err := classifier.Aggregate(req.Predictions, toMembership(req.Membership))
	if err != nil {
		writeError(c, err)
		return
	}

	key := classifier.SortByMax
	if req.Sort != "" {
		key, err = parseSortKey(req.Sort)
		if err != nil {
			writeError(c, err)
			return
		}
	}
	classifier.SortSummaries(summaries, key, !req.Ascending)

	c.JSON(http.StatusOK, StrainSummaryResponse{Strains: summaries})
}
