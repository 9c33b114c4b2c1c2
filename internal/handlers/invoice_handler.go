package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/admin_be_commerce/internal/models"
)

type InvoiceHandler struct {
	DB *gorm.DB
}

func NewInvoiceHandler(db *gorm.DB) *InvoiceHandler {
	return &InvoiceHandler{DB: db}
}

func (h *InvoiceHandler) List(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	if limit < 1 || limit > 100 {
		limit = 20
	}

	q := h.DB.Model(&models.Invoice{})
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	if search := strings.TrimSpace(c.Query("q")); search != "" {
		q = q.Where("code ILIKE ? OR customer_name ILIKE ?", "%"+search+"%", "%"+search+"%")
	}

	var total int64
	q.Count(&total)

	var invoices []models.Invoice
	if err := q.Order("id DESC").Offset((page - 1) * limit).Limit(limit).Find(&invoices).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "message": "Gagal mengambil invoice"})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"items": invoices,
			"total": total,
			"page":  page,
			"limit": limit,
		},
	})
}

func (h *InvoiceHandler) GetDetail(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "message": "ID tidak valid"})
	}

	var inv models.Invoice
	if err := h.DB.Preload("Items").First(&inv, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Status(404).JSON(fiber.Map{"success": false, "message": "Invoice tidak ditemukan"})
		}
		return c.Status(500).JSON(fiber.Map{"success": false, "message": "Terjadi kesalahan server"})
	}

	// transaksi bank yang sudah ketautan ke invoice ini
	var trx []models.BankTransaction
	h.DB.Where("invoice_id = ?", inv.ID).Order("transaction_at").Find(&trx)

	return c.JSON(fiber.Map{
		"success": true,
		"data":    fiber.Map{"invoice": inv, "bank_transactions": trx},
	})
}

type updateInvoiceStatusReq struct {
	Status string `json:"status"`
	Note   string `json:"note"`
}

// UpdateStatus: koreksi manual dari dashboard (misal pembayaran tunai yang
// tidak lewat bank).
func (h *InvoiceHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "message": "ID tidak valid"})
	}

	var req updateInvoiceStatusReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "message": "Body request tidak valid"})
	}

	status := models.InvoiceStatus(strings.ToLower(strings.TrimSpace(req.Status)))
	switch status {
	case models.InvoiceStatusUnpaid, models.InvoiceStatusPaid, models.InvoiceStatusCancelled:
	default:
		return c.Status(400).JSON(fiber.Map{"success": false, "message": "Status tidak dikenal"})
	}

	var inv models.Invoice
	if err := h.DB.First(&inv, id).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"success": false, "message": "Invoice tidak ditemukan"})
	}

	inv.Status = status
	if req.Note != "" {
		inv.Note = req.Note
	}
	if status == models.InvoiceStatusPaid && inv.PaidAt == nil {
		now := time.Now()
		inv.PaidAt = &now
	}
	if status != models.InvoiceStatusPaid {
		inv.PaidAt = nil
	}

	if err := h.DB.Save(&inv).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "message": "Gagal menyimpan invoice"})
	}

	return c.JSON(fiber.Map{"success": true, "data": inv})
}
