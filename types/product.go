package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product status values.
const (
	ProductStatusActive   = "active"
	ProductStatusInactive = "inactive"
)

// Product represents an entry in the catalog.
//
// Price is a fixed-point decimal (two fractional digits) so that money
// arithmetic over it never drifts; binary floating point is not used
// anywhere in the order path.
type Product struct {
	// ID is the unique identifier of the product.
	ID int `json:"id" db:"id"`

	// Name is the human-readable product name.
	Name string `json:"name" db:"name"`

	// Description is free-form text describing the product. Optional.
	Description string `json:"description,omitempty" db:"description"`

	// Price is the current unit price. Non-negative.
	Price decimal.Decimal `json:"price" db:"price"`

	// Status is either ProductStatusActive or ProductStatusInactive.
	// Only active products may be ordered; inactive products remain
	// visible in listings.
	Status string `json:"status" db:"status"`

	// ImageKey is the object-storage key of the product image, if one
	// has been uploaded. Never exposed directly; clients fetch the image
	// through the API.
	ImageKey string `json:"-" db:"image_key"`

	// CreatedAt is the timestamp at which the product was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the product.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
