package store

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// Reasons a requested order line can be rejected.
const (
	ProductIssueMissing  = "missing"
	ProductIssueInactive = "inactive"
)

// ProductIssue describes why a single requested order line was rejected.
type ProductIssue struct {
	// Index is the zero-based position of the line in the request.
	Index int

	// ProductID is the product reference given in the request.
	ProductID int

	// ProductName is the resolved product name, if the product exists.
	ProductName string

	// Reason is ProductIssueMissing or ProductIssueInactive.
	Reason string
}

// OrderRejectedError is returned by OrderRepository.Create when one or
// more requested lines reference a missing or inactive product. The
// transaction is rolled back before it is returned; no order rows persist.
type OrderRejectedError struct {
	Issues []ProductIssue
}

func (e *OrderRejectedError) Error() string {
	return fmt.Sprintf("order rejected: %d invalid item(s)", len(e.Issues))
}
