package models

import (
	"time"

	"gorm.io/datatypes"
)

// Product: satu record per site. Master (site QVC, parent_id null) pegang
// nilai lengkap; varian simpan override saja — kolom null berarti mewarisi
// dari master, makanya semua field inheritable pakai pointer.
type Product struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	ParentID *uint  `gorm:"index" json:"parent_id"`
	SiteCode string `gorm:"type:varchar(20);not null;index" json:"site_code"`

	Name          *string `json:"name"`
	Path          *string `gorm:"type:varchar(255);index" json:"path"` // slug
	SKU           *string `gorm:"type:varchar(64)" json:"sku"`
	BrandID       *uint   `json:"brand_id"`
	CategoryIDs   *string `gorm:"type:varchar(255)" json:"category_ids"` // format wire ",12,45,"
	Price         *int64  `json:"price"`
	MarketPrice   *int64  `json:"market_price"`
	Quantity      *int64  `json:"quantity"`
	Summary       *string `gorm:"type:text" json:"summary"`
	Description   *string `gorm:"type:text" json:"description"`
	Specification *string `gorm:"type:text" json:"specification"`
	Warranty      *string `gorm:"type:varchar(255)" json:"warranty"`
	PromotionText *string `gorm:"type:text" json:"promotion_text"`

	SeoTitle       *string  `gorm:"type:varchar(255)" json:"seo_title"`
	SeoDescription *string  `gorm:"type:text" json:"seo_description"`
	Weight         *float64 `json:"weight"`

	// Flag disimpan 0/1 sesuai format wire lama.
	IsVisible    *int `gorm:"type:smallint" json:"is_visible"`
	IsNew        *int `gorm:"type:smallint" json:"is_new"`
	IsBestSeller *int `gorm:"type:smallint" json:"is_best_seller"`
	IsSpecial    *int `gorm:"type:smallint" json:"is_special"`

	// Gallery: list media ID urut, elemen pertama = gambar utama.
	// List kosong di varian = pakai gallery master.
	MediaIDs datatypes.JSON `json:"media_ids"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProductLink associates a master record with its per-site variant.
type ProductLink struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	SourceProductID uint      `gorm:"not null;index" json:"source_product_id"`
	TargetProductID uint      `gorm:"not null;uniqueIndex" json:"target_product_id"`
	SiteCode        string    `gorm:"type:varchar(20);not null" json:"site_code"`
	LinkType        string    `gorm:"type:varchar(30);default:'site_variant'" json:"link_type"`
	CreatedAt       time.Time `json:"created_at"`
}

// Media is one uploaded asset (Cloudinary-backed).
type Media struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	URL         string    `gorm:"type:text;not null" json:"url"`
	PublicID    string    `gorm:"type:varchar(255)" json:"public_id"`
	Source      string    `gorm:"type:varchar(50)" json:"source"`        // upload / paste / url
	TempContext string    `gorm:"type:varchar(100)" json:"temp_context"` // sesi editor asal upload
	CreatedAt   time.Time `json:"created_at"`
}
