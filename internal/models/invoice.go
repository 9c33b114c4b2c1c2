package models

import "time"

type InvoiceStatus string

const (
	InvoiceStatusUnpaid    InvoiceStatus = "unpaid"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

// Invoice adalah target pencocokan transaksi bank: transfer masuk dengan
// content "INV-<code>" otomatis menandai invoice paid.
type Invoice struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Code string `gorm:"uniqueIndex;size:20;not null" json:"code"` // e.g. K9X2M4, dicocokkan sebagai "INV-K9X2M4"

	CustomerName  string `json:"customer_name"`
	CustomerPhone string `gorm:"type:varchar(30)" json:"customer_phone"`
	CustomerEmail string `json:"customer_email"`

	TotalAmount int64         `gorm:"not null" json:"total_amount"`
	Status      InvoiceStatus `gorm:"type:varchar(20);default:'unpaid';index" json:"status"`
	Note        string        `gorm:"type:text" json:"note"`
	PaidAt      *time.Time    `json:"paid_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Items []InvoiceItem `gorm:"foreignKey:InvoiceID" json:"items,omitempty"`
}

type InvoiceItem struct {
	ID        uint  `gorm:"primaryKey" json:"id"`
	InvoiceID uint  `gorm:"index;not null" json:"invoice_id"`
	ProductID *uint `gorm:"index" json:"product_id,omitempty"`

	Name     string `json:"name"`
	Quantity int    `gorm:"default:1" json:"quantity"`
	Price    int64  `json:"price"`
}
