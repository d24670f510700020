package errors

import (
	"net/http"
	"strings"
)

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common error codes
const (
	CodeInternal           ErrorCode = "COMMON_001"
	CodeInvalidParam       ErrorCode = "COMMON_002"
	CodeNotFound           ErrorCode = "COMMON_003"
	CodeConflict           ErrorCode = "COMMON_004"
	CodeServiceUnavailable ErrorCode = "COMMON_005"
	CodeTimeout            ErrorCode = "COMMON_006"
	CodeValidation         ErrorCode = "COMMON_007"
	CodeSerialization      ErrorCode = "COMMON_008"
	CodeDatabaseError      ErrorCode = "COMMON_009"
	CodeCacheError         ErrorCode = "COMMON_010"
	CodeNotImplemented     ErrorCode = "COMMON_011"

	CodeUnknown ErrorCode = "UNKNOWN"
	CodeOK      ErrorCode = "OK"
)

// Compound / fingerprint error codes
const (
	CodeCompoundInvalidSMILES     ErrorCode = "CMP_001"
	CodeCompoundNotFound          ErrorCode = "CMP_002"
	CodeFingerprintBuildFailed    ErrorCode = "CMP_003"
	CodeFingerprintTypeUnsupported ErrorCode = "CMP_004"
	CodeSimilarityMetricInvalid   ErrorCode = "CMP_005"
	CodeSimilaritySearchFailed    ErrorCode = "CMP_006"
	CodeCutoffInvalid             ErrorCode = "CMP_007"
)

// Classifier error codes
const (
	CodeInsufficientLabeledData ErrorCode = "CLS_001"
	CodeNoNeighborFound         ErrorCode = "CLS_002"
	CodeEvaluationFailed        ErrorCode = "CLS_003"
	CodeAggregationFailed       ErrorCode = "CLS_004"
)

// Dataset error codes
const (
	CodeDatasetReadFailed  ErrorCode = "SRC_001"
	CodeDatasetParseFailed ErrorCode = "SRC_002"
	CodeDatasetLabelInvalid ErrorCode = "SRC_003"
)

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	CodeInternal:           http.StatusInternalServerError,
	CodeInvalidParam:       http.StatusBadRequest,
	CodeNotFound:           http.StatusNotFound,
	CodeConflict:           http.StatusConflict,
	CodeServiceUnavailable: http.StatusServiceUnavailable,
	CodeTimeout:            http.StatusGatewayTimeout,
	CodeValidation:         http.StatusUnprocessableEntity,
	CodeSerialization:      http.StatusInternalServerError,
	CodeDatabaseError:      http.StatusInternalServerError,
	CodeCacheError:         http.StatusInternalServerError,
	CodeNotImplemented:     http.StatusNotImplemented,

	CodeCompoundInvalidSMILES:      http.StatusBadRequest,
	CodeCompoundNotFound:           http.StatusNotFound,
	CodeFingerprintBuildFailed:     http.StatusUnprocessableEntity,
	CodeFingerprintTypeUnsupported: http.StatusBadRequest,
	CodeSimilarityMetricInvalid:    http.StatusBadRequest,
	CodeSimilaritySearchFailed:     http.StatusInternalServerError,
	CodeCutoffInvalid:              http.StatusBadRequest,

	CodeInsufficientLabeledData: http.StatusUnprocessableEntity,
	CodeNoNeighborFound:         http.StatusNotFound,
	CodeEvaluationFailed:        http.StatusInternalServerError,
	CodeAggregationFailed:       http.StatusInternalServerError,

	CodeDatasetReadFailed:   http.StatusBadRequest,
	CodeDatasetParseFailed:  http.StatusBadRequest,
	CodeDatasetLabelInvalid: http.StatusBadRequest,
}

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	CodeInternal:           "internal server error",
	CodeInvalidParam:       "bad request",
	CodeNotFound:           "resource not found",
	CodeConflict:           "resource conflict",
	CodeServiceUnavailable: "service unavailable",
	CodeTimeout:            "request timeout",
	CodeValidation:         "validation failed",
	CodeSerialization:      "serialization failed",
	CodeDatabaseError:      "database error",
	CodeCacheError:         "cache error",
	CodeNotImplemented:     "not implemented",

	CodeCompoundInvalidSMILES:      "invalid SMILES format",
	CodeCompoundNotFound:           "compound not found",
	CodeFingerprintBuildFailed:     "failed to compute fingerprint",
	CodeFingerprintTypeUnsupported: "unsupported fingerprint type",
	CodeSimilarityMetricInvalid:    "unsupported similarity metric",
	CodeSimilaritySearchFailed:     "similarity search failed",
	CodeCutoffInvalid:              "similarity cutoff must be between 0 and 1",

	CodeInsufficientLabeledData: "fewer than two labeled compounds available",
	CodeNoNeighborFound:         "no neighbor above similarity cutoff",
	CodeEvaluationFailed:        "classifier evaluation failed",
	CodeAggregationFailed:       "strain aggregation failed",

	CodeDatasetReadFailed:   "failed to read dataset",
	CodeDatasetParseFailed:  "failed to parse dataset record",
	CodeDatasetLabelInvalid: "label must be 0 or 1",
}

// HTTPStatusForCode returns the HTTP status code for an ErrorCode.
func HTTPStatusForCode(code ErrorCode) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// IsClientError returns true if the ErrorCode corresponds to a 4xx HTTP status.
func IsClientError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 400 && status < 500
}

// IsServerError returns true if the ErrorCode corresponds to a 5xx HTTP status.
func IsServerError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 500 && status < 600
}

// ModuleForCode returns the module prefix of an ErrorCode.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 0 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}
