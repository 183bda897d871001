package catalog

import (
	"fmt"

	"github.com/dentalshop/backend/internal/domain/shared"
)

// Error codes raised by the catalog context
const (
	CodeInvalidCategory = "INVALID_CATEGORY"
	CodeInvalidPrice    = "INVALID_PRICE"
	CodeInvalidStock    = "INVALID_STOCK"
	CodeInvalidRating   = "INVALID_RATING"
	CodeProductInactive = "PRODUCT_INACTIVE"
)

func invalidCategoryError(value string) *shared.DomainError {
	return shared.NewDomainError(CodeInvalidCategory, fmt.Sprintf("Unknown category %q", value))
}

// ErrProductInactive is returned when an operation requires an active product
var ErrProductInactive = shared.NewDomainError(CodeProductInactive, "Product is not available")
