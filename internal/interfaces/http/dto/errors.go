package dto

import (
	"net/http"
	"strings"
)

// API error codes returned in ErrorInfo.Code
const (
	ErrCodeInternal   = "ERR_INTERNAL"
	ErrCodeValidation = "ERR_VALIDATION"
	ErrCodeBadRequest = "ERR_BAD_REQUEST"

	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	ErrCodeNotFound     = "ERR_NOT_FOUND"

	// shop rules
	ErrCodeAlreadyExists       = "ERR_ALREADY_EXISTS"
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
	ErrCodeInvalidState        = "ERR_INVALID_STATE"
	ErrCodeInsufficientStock   = "ERR_INSUFFICIENT_STOCK"
	ErrCodeProductInactive     = "ERR_PRODUCT_INACTIVE"

	// auth
	ErrCodeUnauthorized       = "ERR_UNAUTHORIZED"
	ErrCodeForbidden          = "ERR_FORBIDDEN"
	ErrCodeInvalidCredentials = "ERR_INVALID_CREDENTIALS"
	ErrCodeTokenExpired       = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid       = "ERR_TOKEN_INVALID"

	ErrCodeRateLimited = "ERR_RATE_LIMITED"
)

type codeInfo struct {
	status int
	domain string // shared.DomainError code that maps onto this API code
}

var codes = map[string]codeInfo{
	ErrCodeInternal:   {http.StatusInternalServerError, "INTERNAL_ERROR"},
	ErrCodeValidation: {http.StatusBadRequest, "VALIDATION_ERROR"},
	ErrCodeBadRequest: {http.StatusBadRequest, "BAD_REQUEST"},

	ErrCodeInvalidInput: {http.StatusBadRequest, "INVALID_INPUT"},
	ErrCodeNotFound:     {http.StatusNotFound, "NOT_FOUND"},

	ErrCodeAlreadyExists:       {http.StatusConflict, "ALREADY_EXISTS"},
	ErrCodeConcurrencyConflict: {http.StatusConflict, "CONCURRENCY_CONFLICT"},
	ErrCodeInvalidState:        {http.StatusUnprocessableEntity, "INVALID_STATE"},
	ErrCodeInsufficientStock:   {http.StatusUnprocessableEntity, "INSUFFICIENT_STOCK"},
	ErrCodeProductInactive:     {http.StatusBadRequest, "PRODUCT_INACTIVE"},

	ErrCodeUnauthorized:       {http.StatusUnauthorized, "UNAUTHORIZED"},
	ErrCodeForbidden:          {http.StatusForbidden, "FORBIDDEN"},
	ErrCodeInvalidCredentials: {http.StatusUnauthorized, "INVALID_CREDENTIALS"},
	ErrCodeTokenExpired:       {http.StatusUnauthorized, "TOKEN_EXPIRED"},
	ErrCodeTokenInvalid:       {http.StatusUnauthorized, "INVALID_TOKEN"},

	ErrCodeRateLimited: {http.StatusTooManyRequests, "RATE_LIMITED"},
}

var fromDomain = func() map[string]string {
	m := make(map[string]string, len(codes))
	for api, info := range codes {
		m[info.domain] = api
	}
	return m
}()

// StatusFor returns the HTTP status of an API error code, 500 when unknown
func StatusFor(code string) int {
	if info, ok := codes[code]; ok {
		return info.status
	}
	return http.StatusInternalServerError
}

// FromDomainCode translates a shared.DomainError code to its API code.
// Rule-specific INVALID_* codes (INVALID_RATING, INVALID_IMAGE_TYPE...)
// collapse into ErrCodeInvalidInput. API codes and unknown codes are
// returned unchanged.
func FromDomainCode(code string) string {
	if api, ok := fromDomain[code]; ok {
		return api
	}
	if strings.HasPrefix(code, "INVALID_") {
		return ErrCodeInvalidInput
	}
	return code
}
