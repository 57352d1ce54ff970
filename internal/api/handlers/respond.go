package handlers

import (
	"encoding/json"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/text/message"

	"github.com/jafarshop/procurement/internal/domain"
	"github.com/jafarshop/procurement/internal/locale"
	"github.com/jafarshop/procurement/internal/notify"
	"github.com/jafarshop/procurement/pkg/errors"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Kind    string            `json:"kind"`
	Message string            `json:"message"`
	Detail  string            `json:"detail,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
	Notices []notify.Notice   `json:"notices,omitempty"`
}

// fieldAliases maps request JSON names onto the cart's form fields
var fieldAliases = map[string]string{
	"supplierId": domain.FieldSupplier,
	"itemId":     domain.FieldItem,
	"quantity":   domain.FieldQuantity,
	"qty":        domain.FieldQuantity,
}

// fieldMessages are the messages for the cart's own form fields
var fieldMessages = map[string]string{
	domain.FieldSupplier: locale.MsgSupplierRequired,
	domain.FieldItem:     locale.MsgItemRequired,
	domain.FieldQuantity: locale.MsgQuantityInvalid,
	domain.FieldPrice:    locale.MsgPriceInvalid,
}

var registerOnce sync.Once

// RegisterJSONFieldNames makes binding errors report JSON field names
func RegisterJSONFieldNames() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
	})
}

// bindJSON decodes and validates the body into dst. Failures come back as
// per-field *errors.ValidationError.
func bindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return bindingError(err)
	}
	return nil
}

func bindingError(err error) error {
	verr := errors.NewValidationError()

	var fieldErrs validator.ValidationErrors
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &fieldErrs):
		for _, fe := range fieldErrs {
			field, msg := fieldMessage(fe.Field())
			if _, known := fieldMessages[field]; !known {
				msg = msgForTag(fe)
			}
			verr.Add(field, msg)
		}
	case errors.As(err, &typeErr):
		verr.Add(fieldMessage(typeErr.Field))
	default:
		verr.Add("body", locale.MsgInvalidRequest)
	}
	return verr
}

func fieldMessage(name string) (string, string) {
	field := name
	if alias, ok := fieldAliases[name]; ok {
		field = alias
	}
	if msg, ok := fieldMessages[field]; ok {
		return field, msg
	}
	return field, locale.MsgFieldInvalid
}

func msgForTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return locale.MsgFieldRequired
	case "email":
		return locale.MsgFieldEmail
	default:
		return locale.MsgFieldInvalid
	}
}

// respondError writes err as an ErrorResponse with the status for its kind.
// A rejected state transition answers 409.
func respondError(c *gin.Context, err error, printer *message.Printer, notices *notify.Recorder, logger *zap.Logger) {
	apiErr := errors.Classify(err)

	status := apiErr.Kind.HTTPStatus()
	if apiErr.Status == http.StatusConflict {
		var stateErr *errors.ErrInvalidStateTransition
		if errors.As(err, &stateErr) {
			status = http.StatusConflict
		}
	}

	resp := ErrorResponse{
		Kind:    apiErr.Kind.String(),
		Message: locale.Translate(printer, apiErr.Message),
	}
	if apiErr.Detail != "" {
		resp.Detail = locale.Translate(printer, apiErr.Detail)
	}

	var verr *errors.ValidationError
	if errors.As(err, &verr) {
		resp.Fields = make(map[string]string, len(verr.Fields))
		for field, msg := range verr.Fields {
			resp.Fields[field] = locale.Translate(printer, msg)
		}
	}
	if notices != nil {
		resp.Notices = notices.Drain()
	}

	if status >= http.StatusInternalServerError {
		logger.Error("Request failed", zap.String("kind", resp.Kind), zap.Error(err))
	} else {
		logger.Debug("Request rejected", zap.String("kind", resp.Kind), zap.Error(err))
	}
	c.AbortWithStatusJSON(status, resp)
}

func parseIDParam(c *gin.Context, name, field string) (int64, error) {
	id, ok := domain.ParseID(c.Param(name))
	if !ok || id == 0 {
		verr := errors.NewValidationError()
		_, msg := fieldMessage(field)
		verr.Add(field, msg)
		return 0, verr
	}
	return id, nil
}
