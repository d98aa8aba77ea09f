package errors

const (
	HttpInternalError            = "internal_error"
	HttpInvalidJsonError         = "invalid_json"
	HttpMissingDistrictCodeError = "missing_district_code"
	HttpUnclassifiableLevelError = "unclassifiable_level"
	HttpDistrictNotFoundError    = "district_not_found"
)

// ErrorResponse is the error response body for ingestion and query errors.
type ErrorResponse struct {
	ErrorType string      `json:"error_type"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
}
