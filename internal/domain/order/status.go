package order

import (
	"strings"

	"github.com/dentalshop/backend/internal/domain/shared"
)

// Status is an order's lifecycle label as stored and displayed
type Status string

const (
	StatusPending   Status = "En attente"
	StatusConfirmed Status = "Confirmée"
	StatusShipped   Status = "Expédiée"
	StatusDelivered Status = "Livrée"
	StatusCancelled Status = "Annulée"
)

// Statuses returns every valid status in lifecycle order
func Statuses() []Status {
	return []Status{StatusPending, StatusConfirmed, StatusShipped, StatusDelivered, StatusCancelled}
}

// IsValid checks if the status is one of the known labels
func (s Status) IsValid() bool {
	for _, v := range Statuses() {
		if s == v {
			return true
		}
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// ParseStatus validates a status label
func ParseStatus(value string) (Status, error) {
	s := Status(strings.TrimSpace(value))
	if !s.IsValid() {
		labels := make([]string, 0, len(Statuses()))
		for _, v := range Statuses() {
			labels = append(labels, string(v))
		}
		return "", shared.NewDomainError(CodeInvalidStatus, "Invalid status. Valid statuses are: "+strings.Join(labels, ", "))
	}
	return s, nil
}
