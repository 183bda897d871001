package catalog

import (
	"strconv"
	"strings"

	"github.com/dentalshop/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Review rating bounds
const (
	MinRating = 1
	MaxRating = 5
)

// Review is a customer's rating of a product; immutable once created
type Review struct {
	shared.BaseEntity
	ProductID  uuid.UUID
	AuthorName string
	Rating     int
	Comment    string
	IsVerified bool
}

// NewReview validates and creates a review for a product
func NewReview(productID uuid.UUID, authorName string, rating int, comment string) (*Review, error) {
	author := strings.TrimSpace(authorName)
	if author == "" {
		return nil, shared.InvalidInput("Author name is required")
	}
	if len(author) > 100 {
		return nil, shared.InvalidInput("Author name cannot exceed 100 characters")
	}
	if rating < MinRating || rating > MaxRating {
		return nil, shared.NewDomainError(CodeInvalidRating, "Rating must be an integer between 1 and 5")
	}
	if strings.TrimSpace(comment) == "" {
		return nil, shared.InvalidInput("Comment is required")
	}
	return &Review{
		BaseEntity: shared.NewBaseEntity(),
		ProductID:  productID,
		AuthorName: author,
		Rating:     rating,
		Comment:    comment,
	}, nil
}

// ReviewSummary is the aggregate displayed on a product
type ReviewSummary struct {
	Mean  float64
	Count int
}

// Summarize computes the mean rounded to one decimal and the count
func Summarize(ratings []int) ReviewSummary {
	var sum int64
	for _, r := range ratings {
		sum += int64(r)
	}
	return SummaryFromTotals(sum, int64(len(ratings)))
}

// SummaryFromTotals builds a summary from a rating sum and a review count
func SummaryFromTotals(sum, count int64) ReviewSummary {
	if count <= 0 {
		return ReviewSummary{}
	}
	return ReviewSummary{
		Mean:  roundTenth(float64(sum) / float64(count)),
		Count: int(count),
	}
}

// roundTenth rounds the exact binary value of f to one decimal, ties to even,
// so 4.25 becomes 4.2 and 4.35 (stored just below) becomes 4.3.
func roundTenth(f float64) float64 {
	r, _ := strconv.ParseFloat(strconv.FormatFloat(f, 'f', 1, 64), 64)
	return r
}
