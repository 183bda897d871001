package middleware

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/dentalshop/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// SetupValidator makes gin's validator report JSON (or query) field names,
// so details read "stock_quantity" instead of "StockQuantity".
func SetupValidator() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(fieldName)
}

func fieldName(fld reflect.StructField) string {
	for _, tag := range []string{"json", "form", "uri"} {
		name, _, _ := strings.Cut(fld.Tag.Get(tag), ",")
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return fld.Name
}

// FormatValidationErrors turns a ShouldBind* error into the 400 envelope.
// Bodies that never reach the validator get a single "body" detail.
func FormatValidationErrors(err error, requestID string) dto.Response {
	return dto.NewValidationErrorResponse("Request validation failed", requestID, validationDetails(err))
}

func validationDetails(err error) []dto.ValidationDetail {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		if err == nil {
			return nil
		}
		return []dto.ValidationDetail{{Field: "body", Message: "Malformed request body", Code: "invalid"}}
	}

	details := make([]dto.ValidationDetail, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		details = append(details, dto.ValidationDetail{
			Field:   fe.Field(),
			Message: getValidationMessage(fe),
			Code:    fe.Tag(),
		})
	}
	return details
}

// HandleValidationError answers 400 with per-field details
func HandleValidationError(c *gin.Context, err error) {
	requestID := c.GetString(RequestIDContextKey)
	if requestID == "" {
		requestID = c.GetHeader(RequestIDHeader)
	}
	c.JSON(http.StatusBadRequest, FormatValidationErrors(err, requestID))
}

var fixedMessages = map[string]string{
	"required": "This field is required",
	"email":    "Invalid email format",
	"uuid":     "Invalid UUID format",
	"uuid4":    "Invalid UUID format",
	"url":      "Invalid URL format",
	"dive":     "Invalid item",
	"numeric":  "Must be numeric",
}

var paramMessages = map[string]string{
	"oneof": "Must be one of: ",
	"gte":   "Must be greater than or equal to ",
	"lte":   "Must be less than or equal to ",
	"gt":    "Must be greater than ",
	"lt":    "Must be less than ",
}

func getValidationMessage(fe validator.FieldError) string {
	if msg, ok := fixedMessages[fe.Tag()]; ok {
		return msg
	}
	if prefix, ok := paramMessages[fe.Tag()]; ok {
		return prefix + fe.Param()
	}

	// length bounds read as characters on strings and as values elsewhere
	unit := ""
	if fe.Kind() == reflect.String {
		unit = " characters"
	}
	switch fe.Tag() {
	case "min":
		return "Must be at least " + fe.Param() + unit
	case "max":
		return "Must be at most " + fe.Param() + unit
	case "len":
		return "Must be exactly " + fe.Param() + unit
	}
	return "Invalid value"
}
