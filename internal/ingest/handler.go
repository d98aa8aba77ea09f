package ingest

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	v1 "github.com/tally-lab/island-tally/internal/api/v1"
	httperr "github.com/tally-lab/island-tally/internal/core/errors"
)

const (
	msgReadBodyFailed = "Failed to read request body"
	msgInvalidJSON    = "Invalid JSON body"
)

// ingestError carries the structured HTTP error shape from a helper back to
// the orchestrator. Helpers return this instead of writing to gin.Context
// directly, keeping them decoupled from HTTP.
type ingestError struct {
	statusCode int
	errorType  string
	message    string
	details    interface{}
}

func (e *ingestError) Error() string {
	return e.message
}

// RegisterRoutes registers the ingestion routes.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.POST("/v1/results", s.SubmitHandler)
}

// SubmitHandler handles HTTP POST requests for result ingestion.
func (s *Service) SubmitHandler(c *gin.Context) {
	doc, payloadSize, perr := s.parseDocument(c)
	if perr != nil {
		writeError(c, perr)
		return
	}

	slog.Info("Received result document",
		"level", doc.Level,
		"ed_code", doc.EDCode,
		"pd_code", doc.PDCode,
		"parties", len(doc.ByParty),
		"payload_size", payloadSize)

	accepted, err := s.Submit(c.Request.Context(), doc)
	if err != nil {
		writeError(c, toHTTPError(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":        "ok",
		"result_type":   accepted.Level,
		"district_name": accepted.Record.DistrictName,
		"district":      accepted.Record,
		"snapshot":      accepted.Snapshot,
	})
}

// parseDocument reads the raw request body and binds it into a
// ResultDocument. Returns the document and the raw payload size (used for
// structured logging upstream).
func (s *Service) parseDocument(c *gin.Context) (*v1.ResultDocument, int, *ingestError) {
	// Enforce maximum body size to prevent OOM attacks
	maxBytes := int64(s.maxBodySizeBytes)
	limitedBody := io.LimitReader(c.Request.Body, maxBytes+1) // +1 to detect oversized requests

	bodyBytes, err := io.ReadAll(limitedBody)
	if err != nil {
		slog.Error("Failed to read request body", "error", err)
		return nil, 0, &ingestError{
			statusCode: http.StatusInternalServerError,
			errorType:  httperr.HttpInternalError,
			message:    msgReadBodyFailed,
		}
	}

	if int64(len(bodyBytes)) > maxBytes {
		slog.Warn("Request body exceeds maximum size", "size", len(bodyBytes), "max", maxBytes)
		return nil, len(bodyBytes), &ingestError{
			statusCode: http.StatusRequestEntityTooLarge,
			errorType:  httperr.HttpInvalidJsonError,
			message:    "Request body exceeds maximum allowed size",
			details: map[string]interface{}{
				"max_size_mb": maxBytes / (1024 * 1024),
			},
		}
	}

	c.Request.Body = io.NopCloser(bytes.NewReader(bodyBytes))

	var doc v1.ResultDocument
	if err := c.ShouldBindJSON(&doc); err != nil {
		slog.Warn("Invalid JSON body received", "error", err, "payload_size", len(bodyBytes))
		return nil, len(bodyBytes), &ingestError{
			statusCode: http.StatusBadRequest,
			errorType:  httperr.HttpInvalidJsonError,
			message:    msgInvalidJSON,
		}
	}

	return &doc, len(bodyBytes), nil
}

// toHTTPError maps an engine rejection to its HTTP shape.
func toHTTPError(err error) *ingestError {
	var rej *Error
	if !errors.As(err, &rej) {
		return &ingestError{
			statusCode: http.StatusInternalServerError,
			errorType:  httperr.HttpInternalError,
			message:    err.Error(),
		}
	}

	switch rej.Kind {
	case KindMissingDistrictCode:
		return &ingestError{
			statusCode: http.StatusBadRequest,
			errorType:  httperr.HttpMissingDistrictCodeError,
			message:    rej.Message,
		}
	case KindUnclassifiableLevel:
		return &ingestError{
			statusCode: http.StatusUnprocessableEntity,
			errorType:  httperr.HttpUnclassifiableLevelError,
			message:    rej.Message,
		}
	default:
		return &ingestError{
			statusCode: http.StatusBadRequest,
			errorType:  httperr.HttpInvalidJsonError,
			message:    rej.Message,
		}
	}
}

// writeError serializes an ingestError as the JSON HTTP response.
func writeError(c *gin.Context, err *ingestError) {
	c.JSON(err.statusCode, httperr.ErrorResponse{
		ErrorType: err.errorType,
		Message:   err.message,
		Details:   err.details,
	})
}
