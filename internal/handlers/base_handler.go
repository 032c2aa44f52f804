package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/coursehub/backend/internal/apperrors"
	"github.com/coursehub/backend/internal/middleware"
	"github.com/coursehub/backend/internal/models"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"go.uber.org/zap"
)

var (
	validate   *validator.Validate
	translator ut.Translator
)

func init() {
	validate = validator.New()

	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Report JSON field names instead of Go struct names
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// MessageResponse is the body of error and plain success responses
type MessageResponse struct {
	Message string `json:"message"`
}

// ValidationErrorResponse is the body of a request rejected by field validation
type ValidationErrorResponse struct {
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors"`
}

// BaseHandler provides common handler functionality
type BaseHandler struct {
	Logger *zap.Logger
}

// RespondJSON sends a JSON response
func (h *BaseHandler) RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Logger.Error("failed to encode JSON response", zap.Error(err))
	}
}

// RespondError sends an error JSON response
func (h *BaseHandler) RespondError(w http.ResponseWriter, status int, message string) {
	h.RespondJSON(w, status, MessageResponse{Message: message})
}

// RespondServiceError translates a service error into its status code and message.
// Internal errors are logged and answered with a generic message.
func (h *BaseHandler) RespondServiceError(w http.ResponseWriter, r *http.Request, err error, action string) {
	status := apperrors.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		h.Logger.Error("failed to "+action,
			zap.String("request_id", middleware.GetRequestID(r.Context())),
			zap.Error(err),
		)
	} else {
		h.Logger.Debug("request rejected",
			zap.String("action", action),
			zap.Int("status", status),
			zap.String("reason", apperrors.Message(err)),
		)
	}

	h.RespondError(w, status, apperrors.Message(err))
}

// DecodeJSON decodes the request body into dst and validates its struct tags.
// On failure a 400 response is written and false is returned.
func (h *BaseHandler) DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.RespondError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return false
	}

	if err := validate.Struct(dst); err != nil {
		var validationErrs validator.ValidationErrors
		if !errors.As(err, &validationErrs) {
			h.RespondError(w, http.StatusBadRequest, "invalid request body")
			return false
		}

		fields := make(map[string]string, len(validationErrs))
		for _, fe := range validationErrs {
			fields[fieldPath(fe)] = fe.Translate(translator)
		}
		h.RespondJSON(w, http.StatusBadRequest, ValidationErrorResponse{
			Message: "validation failed",
			Errors:  fields,
		})
		return false
	}

	return true
}

// PathID parses a positive integer URL parameter.
// On failure a 400 response is written and false is returned.
func (h *BaseHandler) PathID(w http.ResponseWriter, r *http.Request, param, label string) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, param))
	if err != nil || id <= 0 {
		h.RespondError(w, http.StatusBadRequest, fmt.Sprintf("invalid %s ID", label))
		return 0, false
	}
	return id, true
}

// Requester returns the authenticated requester.
// When the route is not behind authentication a 401 response is written and false is returned.
func (h *BaseHandler) Requester(w http.ResponseWriter, r *http.Request) (models.Requester, bool) {
	requester, ok := middleware.GetRequester(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "authentication required")
		return models.Requester{}, false
	}
	return requester, true
}

// fieldPath strips the top-level struct name from a validator namespace
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}
