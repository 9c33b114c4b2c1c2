package handlers

import (
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/admin_be_commerce/internal/models"
	"github.com/Windi-Fikriyansyah/admin_be_commerce/internal/realtime"
	"github.com/Windi-Fikriyansyah/admin_be_commerce/internal/services/sepay"
)

type BankHandler struct {
	DB           *gorm.DB
	SepayService *sepay.SepayService
	Hub          *realtime.Hub
}

func NewBankHandler(db *gorm.DB, sepayService *sepay.SepayService, hub *realtime.Hub) *BankHandler {
	return &BankHandler{DB: db, SepayService: sepayService, Hub: hub}
}

// HandleWebhook: SePay kirim POST tiap ada transaksi di rekening.
// Idempotent by sepay_id — provider suka kirim ulang kalau respon lambat.
func (h *BankHandler) HandleWebhook(c *fiber.Ctx) error {
	if !h.SepayService.ValidateWebhookKey(c.Get("Authorization")) {
		return c.Status(401).JSON(fiber.Map{"success": false, "message": "Invalid api key"})
	}

	var payload sepay.WebhookPayload
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "message": "Invalid payload"})
	}
	if payload.ID == 0 {
		return c.Status(400).JSON(fiber.Map{"success": false, "message": "Missing transaction id"})
	}

	var existing models.BankTransaction
	if err := h.DB.Where("sepay_id = ?", payload.ID).First(&existing).Error; err == nil {
		// sudah pernah diproses
		return c.JSON(fiber.Map{"success": true, "data": fiber.Map{"id": existing.ID, "duplicate": true}})
	} else if err != gorm.ErrRecordNotFound {
		return c.Status(500).JSON(fiber.Map{"success": false, "message": "Terjadi kesalahan server"})
	}

	transferType := models.TransferIn
	if payload.TransferType == "out" {
		transferType = models.TransferOut
	}

	trx := models.BankTransaction{
		SepayID:       payload.ID,
		Gateway:       payload.Gateway,
		AccountNumber: payload.AccountNumber,
		TransferType:  transferType,
		Amount:        payload.Amount,
		Accumulated:   payload.Accumulated,
		Content:       payload.Content,
		ReferenceCode: payload.ReferenceCode,
		TransactionAt: sepay.ParseDate(payload.Date),
	}

	// Auto-match: transfer masuk dengan content "INV-<code>" → invoice paid.
	if transferType == models.TransferIn {
		if code := extractInvoiceCode(payload.Content); code != "" {
			var inv models.Invoice
			if err := h.DB.Where("code = ?", code).First(&inv).Error; err == nil {
				trx.InvoiceID = &inv.ID
				if inv.Status == models.InvoiceStatusUnpaid && payload.Amount >= inv.TotalAmount {
					now := time.Now()
					inv.Status = models.InvoiceStatusPaid
					inv.PaidAt = &now
					h.DB.Save(&inv)
				}
			} else {
				log.Printf("webhook: invoice %s not found (ref %s)", code, payload.ReferenceCode)
			}
		}
	}

	if err := h.DB.Create(&trx).Error; err != nil {
		log.Printf("save bank transaction %d: %v", payload.ID, err)
		return c.Status(500).JSON(fiber.Map{"success": false, "message": "Gagal menyimpan transaksi"})
	}

	if h.Hub != nil {
		h.Hub.BroadcastJSON(fiber.Map{
			"type":        "bank_transaction",
			"transaction": trx,
		})
	}

	return c.JSON(fiber.Map{"success": true, "data": fiber.Map{"id": trx.ID}})
}

// extractInvoiceCode cari pola INV-XXXX di content transfer. Bank suka
// menempel content ke teks lain, jadi scan per token.
func extractInvoiceCode(content string) string {
	up := strings.ToUpper(content)
	idx := strings.Index(up, "INV-")
	if idx < 0 {
		return ""
	}
	rest := up[idx+4:]
	end := 0
	for end < len(rest) {
		ch := rest[end]
		if (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9') {
			end++
			continue
		}
		break
	}
	return rest[:end]
}

func (h *BankHandler) ListTransactions(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	if limit < 1 || limit > 200 {
		limit = 50
	}

	q := h.DB.Model(&models.BankTransaction{})
	if t := c.Query("type"); t == "in" || t == "out" {
		q = q.Where("transfer_type = ?", t)
	}
	if min := c.Query("date_min"); min != "" {
		q = q.Where("transaction_at >= ?", min)
	}
	if max := c.Query("date_max"); max != "" {
		q = q.Where("transaction_at < ?", max)
	}

	var total int64
	q.Count(&total)

	var trx []models.BankTransaction
	if err := q.Preload("Invoice").Order("transaction_at DESC").
		Offset((page - 1) * limit).Limit(limit).Find(&trx).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "message": "Gagal mengambil transaksi"})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    fiber.Map{"items": trx, "total": total, "page": page, "limit": limit},
	})
}

// Reconcile bandingkan ledger lokal dengan data SePay pada rentang tanggal:
// jumlah transaksi + total masuk/keluar. Selisih berarti ada webhook yang
// hilang (atau dobel) dan perlu dicek manual.
func (h *BankHandler) Reconcile(c *fiber.Ctx) error {
	dateMin := c.Query("date_min")
	dateMax := c.Query("date_max")
	if dateMin == "" || dateMax == "" {
		return c.Status(400).JSON(fiber.Map{"success": false, "message": "date_min dan date_max wajib diisi (YYYY-MM-DD)"})
	}
	account := c.Query("account")

	// --- Sisi lokal
	q := h.DB.Model(&models.BankTransaction{}).
		Where("transaction_at >= ? AND transaction_at < ?", dateMin, dateMax)
	if account != "" {
		q = q.Where("account_number = ?", account)
	}

	var localCount int64
	q.Count(&localCount)

	type sums struct {
		TotalIn  int64
		TotalOut int64
	}
	var local sums
	q.Select(
		"COALESCE(SUM(CASE WHEN transfer_type = 'in' THEN amount ELSE 0 END), 0) AS total_in, " +
			"COALESCE(SUM(CASE WHEN transfer_type = 'out' THEN amount ELSE 0 END), 0) AS total_out",
	).Scan(&local)

	// --- Sisi provider
	opts := sepay.ListOptions{AccountNumber: account, DateMin: dateMin, DateMax: dateMax, Limit: 5000}
	remoteCount, err := h.SepayService.CountTransactions(c.Context(), opts)
	if err != nil {
		log.Printf("sepay count: %v", err)
		return c.Status(502).JSON(fiber.Map{"success": false, "message": "SePay tidak bisa dihubungi: " + err.Error()})
	}
	remoteTrx, err := h.SepayService.ListTransactions(c.Context(), opts)
	if err != nil {
		log.Printf("sepay list: %v", err)
		return c.Status(502).JSON(fiber.Map{"success": false, "message": "SePay tidak bisa dihubungi: " + err.Error()})
	}

	var remote sums
	for _, t := range remoteTrx {
		remote.TotalIn += sepay.ParseAmount(t.AmountIn)
		remote.TotalOut += sepay.ParseAmount(t.AmountOut)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"local": fiber.Map{
				"count":     localCount,
				"total_in":  local.TotalIn,
				"total_out": local.TotalOut,
			},
			"remote": fiber.Map{
				"count":     remoteCount,
				"total_in":  remote.TotalIn,
				"total_out": remote.TotalOut,
			},
			"drift": fiber.Map{
				"count":     remoteCount - localCount,
				"total_in":  remote.TotalIn - local.TotalIn,
				"total_out": remote.TotalOut - local.TotalOut,
			},
			"matched": remoteCount == localCount &&
				remote.TotalIn == local.TotalIn &&
				remote.TotalOut == local.TotalOut,
		},
	})
}
