package handler

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dentalshop/backend/internal/application/catalog"
	"github.com/dentalshop/backend/internal/application/content"
	"github.com/dentalshop/backend/internal/application/order"
	"github.com/dentalshop/backend/internal/domain/shared"
	"github.com/dentalshop/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// Products

type MockProductAdmin struct {
	mock.Mock
}

func (m *MockProductAdmin) AdminList(ctx context.Context, req catalog.AdminProductListFilter) ([]catalog.ProductResponse, int64, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]catalog.ProductResponse), args.Get(1).(int64), args.Error(2)
}

func (m *MockProductAdmin) AdminGet(ctx context.Context, id uuid.UUID) (*catalog.ProductResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.ProductResponse), args.Error(1)
}

func (m *MockProductAdmin) Create(ctx context.Context, req catalog.CreateProductRequest) (*catalog.ProductResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.ProductResponse), args.Error(1)
}

func (m *MockProductAdmin) Update(ctx context.Context, id uuid.UUID, req catalog.UpdateProductRequest) (*catalog.ProductResponse, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.ProductResponse), args.Error(1)
}

func (m *MockProductAdmin) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func setupAdminProductRouter(products *MockProductAdmin) *gin.Engine {
	h := NewAdminProductHandler(products)
	r := gin.New()
	r.GET("/admin/products", h.List)
	r.GET("/admin/products/:id", h.Get)
	r.POST("/admin/products", h.Create)
	r.PUT("/admin/products/:id", h.Update)
	r.DELETE("/admin/products/:id", h.Delete)
	return r
}

func TestAdminProductHandler_ListDefaultsPaging(t *testing.T) {
	products := new(MockProductAdmin)
	r := setupAdminProductRouter(products)
	products.On("AdminList", mock.Anything, catalog.AdminProductListFilter{}).
		Return([]catalog.ProductResponse{{Name: "Autoclave"}}, int64(1), nil)

	w := doJSON(r, http.MethodGet, "/admin/products", nil)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, 1, resp.Meta.Page)
	assert.Equal(t, catalog.DefaultPerPage, resp.Meta.PageSize)
}

func TestAdminProductHandler_Create(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		products := new(MockProductAdmin)
		r := setupAdminProductRouter(products)
		products.On("Create", mock.Anything, mock.MatchedBy(func(req catalog.CreateProductRequest) bool {
			return req.Name == "Autoclave B22" && req.Price.Equal(decimal.RequireFromString("4200")) && *req.StockQuantity == 3
		})).Return(&catalog.ProductResponse{ID: uuid.New(), Name: "Autoclave B22"}, nil)

		w := doJSON(r, http.MethodPost, "/admin/products", map[string]any{
			"name": "Autoclave B22", "category": "sterilization", "price": "4200", "stock_quantity": 3,
		})

		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		products.AssertExpectations(t)
	})

	t.Run("missing price", func(t *testing.T) {
		products := new(MockProductAdmin)
		r := setupAdminProductRouter(products)

		w := doJSON(r, http.MethodPost, "/admin/products", map[string]any{
			"name": "Autoclave B22", "category": "sterilization", "stock_quantity": 3,
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		products.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("unknown category", func(t *testing.T) {
		products := new(MockProductAdmin)
		r := setupAdminProductRouter(products)
		products.On("Create", mock.Anything, mock.Anything).
			Return(nil, shared.NewDomainError("INVALID_CATEGORY", "Unknown category"))

		w := doJSON(r, http.MethodPost, "/admin/products", map[string]any{
			"name": "Chair", "category": "furniture", "price": "10", "stock_quantity": 1,
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeInvalidInput, decodeResponse(t, w).Error.Code)
	})
}

func TestAdminProductHandler_UpdateAndDelete(t *testing.T) {
	id := uuid.New()
	products := new(MockProductAdmin)
	r := setupAdminProductRouter(products)
	products.On("Update", mock.Anything, id, mock.MatchedBy(func(req catalog.UpdateProductRequest) bool {
		return req.StockQuantity != nil && *req.StockQuantity == 0 && req.Name == nil
	})).Return(&catalog.ProductResponse{ID: id, StockQuantity: 0}, nil)
	products.On("Delete", mock.Anything, id).Return(nil)

	w := doJSON(r, http.MethodPut, "/admin/products/"+id.String(), map[string]any{"stock_quantity": 0})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(r, http.MethodDelete, "/admin/products/"+id.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var msg dto.MessageData
	decodeData(t, w, &msg)
	assert.Equal(t, "Product deactivated", msg.Message)

	products.AssertExpectations(t)
}

// Orders

type MockOrderAdmin struct {
	mock.Mock
}

func (m *MockOrderAdmin) List(ctx context.Context, req order.OrderListFilter) (*order.OrderPage, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.OrderPage), args.Error(1)
}

func (m *MockOrderAdmin) Get(ctx context.Context, id uuid.UUID) (*order.OrderResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.OrderResponse), args.Error(1)
}

func (m *MockOrderAdmin) UpdateStatus(ctx context.Context, id uuid.UUID, req order.UpdateStatusRequest) (*order.OrderResponse, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.OrderResponse), args.Error(1)
}

func (m *MockOrderAdmin) ExportCSV(ctx context.Context, w io.Writer) error {
	return m.Called(ctx, w).Error(0)
}

type stubSlipPrinter struct {
	pdf []byte
	err error
}

func (s stubSlipPrinter) Print(context.Context, *order.OrderResponse) ([]byte, error) {
	return s.pdf, s.err
}

func setupAdminOrderRouter(orders *MockOrderAdmin) *gin.Engine {
	return setupAdminOrderRouterWithSlips(orders, nil)
}

func setupAdminOrderRouterWithSlips(orders *MockOrderAdmin, slips SlipPrinter) *gin.Engine {
	h := NewAdminOrderHandler(orders, slips)
	r := gin.New()
	r.GET("/admin/orders/:id/slip.pdf", h.Slip)
	r.GET("/admin/orders", h.List)
	r.GET("/admin/orders/export_csv", h.ExportCSV)
	r.GET("/admin/orders/:id", h.Get)
	r.PUT("/admin/orders/:id/status", h.UpdateStatus)
	return r
}

func TestAdminOrderHandler_List(t *testing.T) {
	orders := new(MockOrderAdmin)
	r := setupAdminOrderRouter(orders)
	orders.On("List", mock.Anything, mock.Anything).Return(&order.OrderPage{
		Orders: []order.OrderResponse{{ID: uuid.New(), Status: "pending"}},
		Total:  1, Page: 1, PerPage: 20, TotalPages: 1,
	}, nil)

	w := doJSON(r, http.MethodGet, "/admin/orders", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var got []order.OrderResponse
	resp := decodeData(t, w, &got)
	assert.Len(t, got, 1)
	assert.Equal(t, int64(1), resp.Meta.Total)
}

func TestAdminOrderHandler_UpdateStatus(t *testing.T) {
	id := uuid.New()
	orders := new(MockOrderAdmin)
	r := setupAdminOrderRouter(orders)
	orders.On("UpdateStatus", mock.Anything, id, order.UpdateStatusRequest{Status: "shipped"}).
		Return(&order.OrderResponse{ID: id, Status: "shipped"}, nil)
	orders.On("UpdateStatus", mock.Anything, id, order.UpdateStatusRequest{Status: "lost"}).
		Return(nil, shared.NewDomainError("INVALID_STATUS", "Invalid order status"))

	w := doJSON(r, http.MethodPut, "/admin/orders/"+id.String()+"/status", map[string]string{"status": "shipped"})
	require.Equal(t, http.StatusOK, w.Code)
	var got order.OrderResponse
	decodeData(t, w, &got)
	assert.Equal(t, "shipped", got.Status)

	w = doJSON(r, http.MethodPut, "/admin/orders/"+id.String()+"/status", map[string]string{"status": "lost"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminOrderHandler_ExportCSV(t *testing.T) {
	t.Run("streams attachment", func(t *testing.T) {
		orders := new(MockOrderAdmin)
		r := setupAdminOrderRouter(orders)
		orders.On("ExportCSV", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
			w := args.Get(1).(io.Writer)
			_, _ = io.WriteString(w, "Order ID,Customer Name\n")
			_, _ = io.WriteString(w, "abc,Dr. Ruiz\n")
		}).Return(nil)

		w := doJSON(r, http.MethodGet, "/admin/orders/export_csv", nil)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
		assert.Equal(t, "attachment;filename=orders_export.csv", w.Header().Get("Content-Disposition"))
		assert.Equal(t, "Order ID,Customer Name\nabc,Dr. Ruiz\n", w.Body.String())
	})

	t.Run("failure before first row is a JSON error", func(t *testing.T) {
		orders := new(MockOrderAdmin)
		r := setupAdminOrderRouter(orders)
		orders.On("ExportCSV", mock.Anything, mock.Anything).Return(errors.New("db down"))

		w := doJSON(r, http.MethodGet, "/admin/orders/export_csv", nil)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
		assert.Empty(t, w.Header().Get("Content-Disposition"))
		assert.Equal(t, dto.ErrCodeInternal, decodeResponse(t, w).Error.Code)
	})

	t.Run("failure mid stream keeps the partial body", func(t *testing.T) {
		orders := new(MockOrderAdmin)
		r := setupAdminOrderRouter(orders)
		orders.On("ExportCSV", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
			_, _ = io.WriteString(args.Get(1).(io.Writer), "Order ID\n")
		}).Return(errors.New("cursor closed"))

		w := doJSON(r, http.MethodGet, "/admin/orders/export_csv", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Order ID\n", w.Body.String())
	})
}

// Articles

type MockArticleAdmin struct {
	mock.Mock
}

func (m *MockArticleAdmin) List(ctx context.Context, req content.ListFilter) (*content.ArticlePage, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*content.ArticlePage), args.Error(1)
}

func (m *MockArticleAdmin) Get(ctx context.Context, id uuid.UUID) (*content.ArticleResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*content.ArticleResponse), args.Error(1)
}

func (m *MockArticleAdmin) Create(ctx context.Context, input content.CreateArticleInput) (*content.ArticleResponse, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*content.ArticleResponse), args.Error(1)
}

func (m *MockArticleAdmin) Update(ctx context.Context, id uuid.UUID, input content.UpdateArticleInput) (*content.ArticleResponse, error) {
	args := m.Called(ctx, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*content.ArticleResponse), args.Error(1)
}

func (m *MockArticleAdmin) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type formFile struct {
	name    string
	content []byte
}

func multipartRequest(t *testing.T, method, path string, fields map[string]string, file *formFile) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if file != nil {
		part, err := mw.CreateFormFile("image", file.name)
		require.NoError(t, err)
		_, err = part.Write(file.content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func setupAdminArticleRouter(articles *MockArticleAdmin, maxImage int64) *gin.Engine {
	h := NewAdminArticleHandler(articles, maxImage)
	r := gin.New()
	r.POST("/admin/articles", h.Create)
	r.PUT("/admin/articles/:id", h.Update)
	r.DELETE("/admin/articles/:id", h.Delete)
	return r
}

func TestAdminArticleHandler_CreateWithImage(t *testing.T) {
	articles := new(MockArticleAdmin)
	r := setupAdminArticleRouter(articles, 1024)

	var uploaded []byte
	articles.On("Create", mock.Anything, mock.MatchedBy(func(in content.CreateArticleInput) bool {
		return in.Title == "Caring for Handpieces" && in.Slug == "" && in.Image != nil &&
			in.Image.Filename == "handpiece.png" && in.Image.Size == 4
	})).Run(func(args mock.Arguments) {
		in := args.Get(1).(content.CreateArticleInput)
		uploaded, _ = io.ReadAll(in.Image.Body)
	}).Return(&content.ArticleResponse{ID: uuid.New(), Slug: "caring-for-handpieces", ImageURL: "/static/uploads/articles/x.png"}, nil)

	req := multipartRequest(t, http.MethodPost, "/admin/articles", map[string]string{
		"title": "Caring for Handpieces", "content": "Lubricate daily.",
	}, &formFile{name: "handpiece.png", content: []byte("\x89PNG")})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, []byte("\x89PNG"), uploaded)
	var got content.ArticleResponse
	decodeData(t, w, &got)
	assert.Equal(t, "caring-for-handpieces", got.Slug)
}

func TestAdminArticleHandler_CreateRejectsOversizedImage(t *testing.T) {
	articles := new(MockArticleAdmin)
	r := setupAdminArticleRouter(articles, 8)

	req := multipartRequest(t, http.MethodPost, "/admin/articles", map[string]string{"title": "Big"},
		&formFile{name: "big.jpg", content: bytes.Repeat([]byte{0xff}, 64)})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, dto.ErrCodeBadRequest, decodeResponse(t, w).Error.Code)
	articles.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAdminArticleHandler_UpdateOnlyPresentFields(t *testing.T) {
	id := uuid.New()
	articles := new(MockArticleAdmin)
	r := setupAdminArticleRouter(articles, 0)
	articles.On("Update", mock.Anything, id, mock.MatchedBy(func(in content.UpdateArticleInput) bool {
		return in.Title != nil && *in.Title == "New title" &&
			in.Author != nil && *in.Author == "" &&
			in.Content == nil && in.Slug == nil && in.Image == nil
	})).Return(&content.ArticleResponse{ID: id, Title: "New title"}, nil)

	req := multipartRequest(t, http.MethodPut, "/admin/articles/"+id.String(),
		map[string]string{"title": "New title", "author": ""}, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	articles.AssertExpectations(t)
}

func TestAdminArticleHandler_Delete(t *testing.T) {
	id := uuid.New()
	articles := new(MockArticleAdmin)
	r := setupAdminArticleRouter(articles, 0)
	articles.On("Delete", mock.Anything, id).Return(nil).Once()
	articles.On("Delete", mock.Anything, id).Return(shared.NotFound("Article not found"))

	w := doJSON(r, http.MethodDelete, "/admin/articles/"+id.String(), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodDelete, "/admin/articles/"+id.String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// Case studies

type MockCaseStudyAdmin struct {
	mock.Mock
}

func (m *MockCaseStudyAdmin) List(ctx context.Context, req content.ListFilter) (*content.CaseStudyPage, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*content.CaseStudyPage), args.Error(1)
}

func (m *MockCaseStudyAdmin) Get(ctx context.Context, id uuid.UUID) (*content.CaseStudyResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*content.CaseStudyResponse), args.Error(1)
}

func (m *MockCaseStudyAdmin) Create(ctx context.Context, req content.CaseStudyRequest) (*content.CaseStudyResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*content.CaseStudyResponse), args.Error(1)
}

func (m *MockCaseStudyAdmin) Update(ctx context.Context, id uuid.UUID, req content.CaseStudyRequest) (*content.CaseStudyResponse, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*content.CaseStudyResponse), args.Error(1)
}

func (m *MockCaseStudyAdmin) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func TestAdminCaseStudyHandler_CRUD(t *testing.T) {
	id := uuid.New()
	svc := new(MockCaseStudyAdmin)
	h := NewAdminCaseStudyHandler(svc)
	r := gin.New()
	r.POST("/admin/case-studies", h.Create)
	r.PUT("/admin/case-studies/:id", h.Update)
	r.DELETE("/admin/case-studies/:id", h.Delete)

	req := content.CaseStudyRequest{
		Title: "Digital Workflow", Summary: "s", Challenge: "c", Solution: "so", Results: "r",
	}
	svc.On("Create", mock.Anything, req).Return(&content.CaseStudyResponse{ID: id, Slug: "digital-workflow"}, nil)
	svc.On("Update", mock.Anything, id, req).Return(&content.CaseStudyResponse{ID: id}, nil)
	svc.On("Delete", mock.Anything, id).Return(nil)

	w := doJSON(r, http.MethodPost, "/admin/case-studies", req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(r, http.MethodPut, "/admin/case-studies/"+id.String(), req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodDelete, "/admin/case-studies/"+id.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var msg dto.MessageData
	decodeData(t, w, &msg)
	assert.Equal(t, "Case study deleted", msg.Message)

	w = doJSON(r, http.MethodPost, "/admin/case-studies", map[string]string{"title": "Only title"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	svc.AssertExpectations(t)
	svc.AssertNumberOfCalls(t, "Create", 1)
}

func TestAdminOrderHandler_Slip(t *testing.T) {
	id := uuid.New()

	t.Run("disabled", func(t *testing.T) {
		w := doJSON(setupAdminOrderRouter(new(MockOrderAdmin)), http.MethodGet, "/admin/orders/"+id.String()+"/slip.pdf", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("renders pdf", func(t *testing.T) {
		orders := new(MockOrderAdmin)
		orders.On("Get", mock.Anything, id).Return(&order.OrderResponse{ID: id}, nil)
		r := setupAdminOrderRouterWithSlips(orders, stubSlipPrinter{pdf: []byte("%PDF-1.7")})

		w := doJSON(r, http.MethodGet, "/admin/orders/"+id.String()+"/slip.pdf", nil)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
		assert.Contains(t, w.Header().Get("Content-Disposition"), "order-"+id.String()+".pdf")
		assert.Equal(t, "%PDF-1.7", w.Body.String())
	})

	t.Run("unknown order", func(t *testing.T) {
		orders := new(MockOrderAdmin)
		orders.On("Get", mock.Anything, id).Return(nil, shared.ErrNotFound)
		r := setupAdminOrderRouterWithSlips(orders, stubSlipPrinter{})

		w := doJSON(r, http.MethodGet, "/admin/orders/"+id.String()+"/slip.pdf", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("printer failure", func(t *testing.T) {
		orders := new(MockOrderAdmin)
		orders.On("Get", mock.Anything, id).Return(&order.OrderResponse{ID: id}, nil)
		r := setupAdminOrderRouterWithSlips(orders, stubSlipPrinter{err: errors.New("chrome crashed")})

		w := doJSON(r, http.MethodGet, "/admin/orders/"+id.String()+"/slip.pdf", nil)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}
