package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/okian/swatch/internal/domain/analysis"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest = fmt.Errorf("%w: invalid request body", analysis.ErrBadRequest)
	ErrNotFound   = errors.New("not found")
)

// Codes only the HTTP layer produces.
const (
	codeNotFound      = "NOT_FOUND"
	codeBodyTooLarge  = "BODY_TOO_LARGE"
	codeUnsupportedCT = "UNSUPPORTED_MEDIA_TYPE"
)

// OperationError tags an error with the handler operation and request id.
type OperationError struct {
	Op        string
	RequestID string
	Err       error
}

func (e *OperationError) Error() string {
	if e.RequestID == "" {
		return e.Op + ": " + e.Err.Error()
	}
	return e.Op + " [" + e.RequestID + "]: " + e.Err.Error()
}

func (e *OperationError) Unwrap() error { return e.Err }

// wrapOp wraps err with op and the request id of c.
func wrapOp(c *gin.Context, op string, err error) error {
	if err == nil {
		return nil
	}
	return &OperationError{Op: op, RequestID: c.GetString(requestIDKey), Err: err}
}

type errorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// statusFor maps a wire code to its HTTP status.
func statusFor(code analysis.Code) int {
	switch code {
	case analysis.CodeInvalidCropBox, analysis.CodeFaceNotDetected, analysis.CodeLowQualitySamples:
		return http.StatusUnprocessableEntity
	case analysis.CodeMalformedImage, analysis.CodeBadRequest:
		return http.StatusBadRequest
	case analysis.CodeImageTooLarge:
		return http.StatusRequestEntityTooLarge
	case analysis.CodeFetchFailed:
		return http.StatusBadGateway
	case analysis.CodeCanceled:
		return http.StatusRequestTimeout
	}
	return http.StatusInternalServerError
}

// writeError renders err as {code, message}. Internal errors hide their text.
func writeError(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeCode(c, http.StatusRequestEntityTooLarge, codeBodyTooLarge, "request body too large", false)
		return
	}
	if errors.Is(err, ErrNotFound) {
		writeCode(c, http.StatusNotFound, codeNotFound, unwrapOp(err).Error(), false)
		return
	}

	code := analysis.CodeOf(err)
	msg := unwrapOp(err).Error()
	if code == analysis.CodeInternal {
		msg = http.StatusText(http.StatusInternalServerError)
	}
	writeCode(c, statusFor(code), string(code), msg, analysis.Retryable(err))
}

func writeCode(c *gin.Context, status int, code, msg string, retryable bool) {
	c.AbortWithStatusJSON(status, errorResponse{
		Code:      code,
		Message:   msg,
		Retryable: retryable,
		RequestID: c.GetString(requestIDKey),
	})
}

// unwrapOp strips the operation prefix so clients see the underlying message.
func unwrapOp(err error) error {
	var op *OperationError
	if errors.As(err, &op) {
		return op.Err
	}
	return err
}
