package models

import "time"

type TransferType string

const (
	TransferIn  TransferType = "in"
	TransferOut TransferType = "out"
)

// BankTransaction: ledger lokal hasil webhook SePay. SepayID unik supaya
// webhook yang dikirim ulang tidak bikin baris dobel.
type BankTransaction struct {
	ID      uint  `gorm:"primaryKey" json:"id"`
	SepayID int64 `gorm:"uniqueIndex;not null" json:"sepay_id"`

	Gateway       string       `gorm:"type:varchar(50)" json:"gateway"` // VCB, ACB, ...
	AccountNumber string       `gorm:"type:varchar(30);index" json:"account_number"`
	TransferType  TransferType `gorm:"type:varchar(5);not null" json:"transfer_type"`
	Amount        int64        `gorm:"not null" json:"amount"`
	Accumulated   int64        `json:"accumulated"` // saldo menurut provider setelah transaksi
	Content       string       `gorm:"type:text" json:"content"`
	ReferenceCode string       `gorm:"type:varchar(50)" json:"reference_code"`

	InvoiceID *uint `gorm:"index" json:"invoice_id,omitempty"`

	TransactionAt time.Time `gorm:"index" json:"transaction_at"`
	CreatedAt     time.Time `json:"created_at"`

	Invoice *Invoice `gorm:"foreignKey:InvoiceID" json:"invoice,omitempty"`
}
