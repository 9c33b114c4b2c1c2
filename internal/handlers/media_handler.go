package handlers

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/admin_be_commerce/internal/models"
	"github.com/Windi-Fikriyansyah/admin_be_commerce/internal/services/cloudmedia"
)

type MediaHandler struct {
	DB    *gorm.DB
	Cloud *cloudmedia.CloudMediaService
}

func NewMediaHandler(db *gorm.DB, cloud *cloudmedia.CloudMediaService) *MediaHandler {
	return &MediaHandler{DB: db, Cloud: cloud}
}

// SmartUpload terima multipart: satu atau lebih file "image", ATAU field
// "image_url" buat narik gambar eksternal. Batch: file yang gagal dilaporkan
// per-file, yang sudah sukses tetap disimpan.
func (h *MediaHandler) SmartUpload(c *fiber.Ctx) error {
	if h.Cloud == nil {
		return c.Status(503).JSON(fiber.Map{"success": false, "message": "Upload media belum dikonfigurasi"})
	}

	tempContext := strings.TrimSpace(c.FormValue("temp_context"))
	source := strings.TrimSpace(c.FormValue("source"))
	if source == "" {
		source = "upload"
	}

	var uploaded []fiber.Map
	var failed []fiber.Map

	saveResult := func(res *cloudmedia.UploadResult, src string) {
		m := models.Media{URL: res.URL, PublicID: res.PublicID, Source: src, TempContext: tempContext}
		if err := h.DB.Create(&m).Error; err != nil {
			log.Printf("save media row: %v", err)
			failed = append(failed, fiber.Map{"error": "Gagal menyimpan media"})
			return
		}
		uploaded = append(uploaded, fiber.Map{"id": m.ID, "url": m.URL})
	}

	if imageURL := strings.TrimSpace(c.FormValue("image_url")); imageURL != "" {
		res, err := h.Cloud.UploadURL(c.Context(), imageURL)
		if err != nil {
			log.Printf("upload from url: %v", err)
			return c.Status(502).JSON(fiber.Map{"success": false, "message": "Gagal mengambil gambar dari URL"})
		}
		saveResult(res, "url")
	}

	if form, err := c.MultipartForm(); err == nil && form != nil {
		for _, fh := range form.File["image"] {
			f, err := fh.Open()
			if err != nil {
				failed = append(failed, fiber.Map{"file": fh.Filename, "error": "File tidak bisa dibuka"})
				continue
			}
			res, err := h.Cloud.UploadFile(c.Context(), f)
			f.Close()
			if err != nil {
				log.Printf("upload %s: %v", fh.Filename, err)
				failed = append(failed, fiber.Map{"file": fh.Filename, "error": "Upload gagal"})
				continue
			}
			saveResult(res, source)
		}
	}

	if len(uploaded) == 0 && len(failed) == 0 {
		return c.Status(400).JSON(fiber.Map{"success": false, "message": "Tidak ada file atau image_url"})
	}
	if len(uploaded) == 1 && len(failed) == 0 {
		// bentuk lama: single upload balas objeknya langsung
		return c.JSON(fiber.Map{"success": true, "data": uploaded[0]})
	}

	return c.JSON(fiber.Map{
		"success": len(failed) == 0,
		"data":    fiber.Map{"uploaded": uploaded, "failed": failed},
	})
}
