package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dentalshop/backend/internal/domain/shared"
	"github.com/dentalshop/backend/internal/infrastructure/auth"
	"github.com/dentalshop/backend/internal/interfaces/http/dto"
	"github.com/dentalshop/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

// setJWTContext simulates an authenticated request without a real token
func setJWTContext(userID uuid.UUID) gin.HandlerFunc {
	return setJWTClaims(&auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(15 * time.Minute)),
		},
		UserID:    userID.String(),
		Username:  "dr.tester",
		Role:      auth.RoleClient,
		TokenType: auth.TokenTypeAccess,
	})
}

func setJWTClaims(claims *auth.Claims) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.JWTClaimsKey, claims)
		c.Set(middleware.JWTUserIDKey, claims.UserID)
		c.Set(middleware.JWTRoleKey, claims.Role)
		c.Next()
	}
}

func withSession(id string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.SessionContextKey, id)
		c.Next()
	}
}

func doJSON(router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, _ := json.Marshal(b)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

// decodeData unmarshals the envelope's data field into out
func decodeData(t *testing.T, w *httptest.ResponseRecorder, out any) dto.Response {
	t.Helper()
	var raw struct {
		dto.Response
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw), w.Body.String())
	require.NoError(t, json.Unmarshal(raw.Data, out))
	return raw.Response
}

func TestGetRequestID(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*gin.Context)
		want  string
	}{
		{"from context", func(c *gin.Context) { c.Set(middleware.RequestIDContextKey, "ctx-id") }, "ctx-id"},
		{"from header", func(c *gin.Context) { c.Request.Header.Set(middleware.RequestIDHeader, "hdr-id") }, "hdr-id"},
		{"context wins", func(c *gin.Context) {
			c.Set(middleware.RequestIDContextKey, "ctx-id")
			c.Request.Header.Set(middleware.RequestIDHeader, "hdr-id")
		}, "ctx-id"},
		{"empty", func(*gin.Context) {}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			tt.setup(c)
			assert.Equal(t, tt.want, getRequestID(c))
		})
	}
}

func TestBaseHandlerSuccessWithMeta(t *testing.T) {
	h := &BaseHandler{}
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	h.SuccessWithMeta(c, []string{"a", "b"}, 45, 2, 20)

	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(45), resp.Meta.Total)
	assert.Equal(t, 3, resp.Meta.TotalPages)
}

func TestBaseHandlerHandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{"not found", shared.NotFound("Product not found"), http.StatusNotFound, dto.ErrCodeNotFound, "Product not found"},
		{"wrapped conflict", fmt.Errorf("register: %w", shared.NewDomainError("ALREADY_EXISTS", "Email already registered")),
			http.StatusConflict, dto.ErrCodeAlreadyExists, "Email already registered"},
		{"insufficient stock", shared.ErrInsufficientStock, http.StatusUnprocessableEntity, dto.ErrCodeInsufficientStock, "Insufficient stock available"},
		{"invalid family", shared.NewDomainError("INVALID_STATUS", "Unknown status"), http.StatusBadRequest, dto.ErrCodeInvalidInput, "Unknown status"},
		{"inactive product", shared.NewDomainError("PRODUCT_INACTIVE", "Product is not available"), http.StatusBadRequest, dto.ErrCodeProductInactive, "Product is not available"},
		{"credentials", shared.NewDomainError("INVALID_CREDENTIALS", "Invalid username or password"), http.StatusUnauthorized, dto.ErrCodeInvalidCredentials, "Invalid username or password"},
		{"plain error hides details", errors.New("pq: connection refused"), http.StatusInternalServerError, dto.ErrCodeInternal, "An unexpected error occurred"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &BaseHandler{}
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			c.Set(middleware.RequestIDContextKey, "req-1")

			h.HandleError(c, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			resp := decodeResponse(t, w)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			assert.Equal(t, tt.wantMsg, resp.Error.Message)
			assert.Equal(t, "req-1", resp.Error.RequestID)
		})
	}
}

func TestBaseHandlerHandleError_MarksSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	ctx, span := tp.Tracer("test").Start(t.Context(), "GET /products")

	h := &BaseHandler{}
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/products", nil).WithContext(ctx)

	h.HandleError(c, errors.New("pq: connection refused"))
	h.HandleError(c, shared.NotFound("Product not found"))
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	assert.Len(t, ended[0].Events(), 1, "domain errors are not recorded")
}

func TestBaseHandlerHandleErrorNil(t *testing.T) {
	h := &BaseHandler{}
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	h.HandleError(c, nil)
	assert.Equal(t, 0, w.Body.Len())
}

func TestBaseHandlerParseID(t *testing.T) {
	h := &BaseHandler{}
	router := gin.New()
	router.GET("/items/:id", func(c *gin.Context) {
		id, ok := h.parseID(c, "id")
		if !ok {
			return
		}
		c.String(http.StatusOK, id.String())
	})

	id := uuid.New()
	w := doJSON(router, http.MethodGet, "/items/"+id.String(), nil)
	assert.Equal(t, id.String(), w.Body.String())

	w = doJSON(router, http.MethodGet, "/items/42", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid id format", decodeResponse(t, w).Error.Message)
}
