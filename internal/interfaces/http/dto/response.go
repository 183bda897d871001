package dto

import "time"

// DefaultPageSize is used for Meta when a handler reports no page size
const DefaultPageSize = 20

// Response is the envelope every JSON endpoint answers with
type Response struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorInfo `json:"error,omitempty"`
	Meta    *Meta      `json:"meta,omitempty"`
}

// ErrorInfo is the error half of the envelope
type ErrorInfo struct {
	Code      string             `json:"code"`
	Message   string             `json:"message"`
	RequestID string             `json:"request_id,omitempty"`
	Timestamp time.Time          `json:"timestamp"`
	Details   []ValidationDetail `json:"details,omitempty"`
}

// ValidationDetail describes one invalid field, keyed by its JSON name
type ValidationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Meta is attached to paginated list responses
type Meta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

// NewMeta computes the page count for total rows split into pageSize pages
func NewMeta(total int64, page, pageSize int) *Meta {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	size := int64(pageSize)
	return &Meta{
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: int((total + size - 1) / size),
	}
}

func NewSuccessResponse(data any) Response {
	return Response{Success: true, Data: data}
}

// NewSuccessResponseWithMeta wraps one page of a list
func NewSuccessResponseWithMeta(data any, total int64, page, pageSize int) Response {
	return Response{Success: true, Data: data, Meta: NewMeta(total, page, pageSize)}
}

// NewErrorResponse builds an error envelope from a domain or API code
func NewErrorResponse(code, message string) Response {
	return NewErrorResponseWithRequestID(FromDomainCode(code), message, "")
}

func NewErrorResponseWithRequestID(code, message, requestID string) Response {
	return Response{
		Error: &ErrorInfo{
			Code:      code,
			Message:   message,
			RequestID: requestID,
			Timestamp: time.Now().UTC(),
		},
	}
}

// NewValidationErrorResponse carries per-field binding failures
func NewValidationErrorResponse(message, requestID string, details []ValidationDetail) Response {
	resp := NewErrorResponseWithRequestID(ErrCodeValidation, message, requestID)
	resp.Error.Details = details
	return resp
}

// MessageData carries a human readable confirmation
type MessageData struct {
	Message string `json:"message"`
}
