package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a product in the store catalog
type Product struct {
	ID            int64           `json:"id" db:"id"`
	Name          string          `json:"name" db:"name"`
	Brand         string          `json:"brand" db:"brand"`
	Category      string          `json:"category" db:"category"`
	Price         decimal.Decimal `json:"price" db:"price"`
	Description   string          `json:"description" db:"description"`
	ImageFileName string          `json:"image_file_name" db:"image_file_name"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
}
