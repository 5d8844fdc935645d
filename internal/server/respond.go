package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/matzehuels/mindcanvas/pkg/editor"
	mcerrors "github.com/matzehuels/mindcanvas/pkg/errors"
	"github.com/matzehuels/mindcanvas/pkg/notify"
)

const maxBodyBytes = 4 << 20

// envelope is the body of every JSON response.
type envelope struct {
	Result any            `json:"result,omitempty"`
	Events []notify.Event `json:"events,omitempty"`
	Error  *errorBody     `json:"error,omitempty"`
}

type errorBody struct {
	Code    mcerrors.Code `json:"code"`
	Message string        `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (s *Server) writeResult(w http.ResponseWriter, status int, result any, events []notify.Event) {
	writeJSON(w, status, envelope{Result: result, Events: events})
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error, events []notify.Event) {
	code := mcerrors.GetCode(err)
	if code == "" || errors.Is(err, editor.ErrClosed) {
		code = mcerrors.ErrCodeInternal
	}
	status := statusOf(code)
	msg := mcerrors.UserMessage(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	}
	writeJSON(w, status, envelope{
		Events: events,
		Error:  &errorBody{Code: code, Message: msg},
	})
}

// statusOf maps an error code to its HTTP status.
func statusOf(code mcerrors.Code) int {
	switch code {
	case mcerrors.ErrCodeNotFound:
		return http.StatusNotFound
	case mcerrors.ErrCodeInvalidInput, mcerrors.ErrCodeInvalidFormat, mcerrors.ErrCodeMissingInput:
		return http.StatusBadRequest
	case mcerrors.ErrCodeMalformedClipboard:
		return http.StatusUnprocessableEntity
	case mcerrors.ErrCodeUnsupported:
		return http.StatusNotAcceptable
	case mcerrors.ErrCodeStorageUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// decode reads a JSON body into v and validates it. An empty body is
// allowed when optional is true.
func (s *Server) decode(r *http.Request, v any, optional bool) error {
	body := io.LimitReader(r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	if err := dec.Decode(v); err != nil {
		if optional && errors.Is(err, io.EOF) {
			return nil
		}
		return mcerrors.Wrap(mcerrors.ErrCodeInvalidFormat, err, "invalid request body")
	}
	if err := s.validate.Struct(v); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// formatValidationError turns validator errors into one INVALID_INPUT
// error listing every failed field.
func formatValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return mcerrors.Wrap(mcerrors.ErrCodeInvalidInput, err, "invalid request")
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		msgs = append(msgs, formatFieldError(e))
	}
	return mcerrors.New(mcerrors.ErrCodeInvalidInput, "%s", strings.Join(msgs, "; "))
}

func formatFieldError(e validator.FieldError) string {
	field := e.Field()
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "required_without":
		return fmt.Sprintf("%s is required when %s is missing", field, e.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
