package handlers

import (
	"encoding/json"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/admin_be_commerce/internal/models"
)

// Dictionary kategori/brand dibaca di hampir semua layar editor, jadi
// list-nya di-cache di Redis dan di-invalidate tiap ada tulisan.

const (
	categoryCacheKey = "dict:categories"
	brandCacheKey    = "dict:brands"
	dictCacheTTL     = 5 * time.Minute
)

type CategoryHandler struct {
	DB  *gorm.DB
	RDB *redis.Client
}

func NewCategoryHandler(db *gorm.DB, rdb *redis.Client) *CategoryHandler {
	return &CategoryHandler{DB: db, RDB: rdb}
}

func (h *CategoryHandler) cached(c *fiber.Ctx, key string) ([]byte, bool) {
	if h.RDB == nil {
		return nil, false
	}
	b, err := h.RDB.Get(c.Context(), key).Bytes()
	if err != nil {
		return nil, false
	}
	return b, true
}

func (h *CategoryHandler) storeCache(c *fiber.Ctx, key string, v interface{}) {
	if h.RDB == nil {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	h.RDB.Set(c.Context(), key, b, dictCacheTTL)
}

func (h *CategoryHandler) dropCache(c *fiber.Ctx, key string) {
	if h.RDB == nil {
		return
	}
	h.RDB.Del(c.Context(), key)
}

// ==== CATEGORIES ====

func (h *CategoryHandler) GetCategories(c *fiber.Ctx) error {
	if b, ok := h.cached(c, categoryCacheKey); ok {
		c.Set("Content-Type", "application/json")
		return c.Send(b)
	}

	var categories []models.Category
	if err := h.DB.Order("position, id").Find(&categories).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "message": "Gagal mengambil kategori"})
	}

	resp := fiber.Map{"success": true, "data": categories}
	h.storeCache(c, categoryCacheKey, resp)
	return c.JSON(resp)
}

type categoryReq struct {
	Name     string  `json:"name"`
	ParentID *uint   `json:"parent_id"`
	Path     *string `json:"path"`
	Position int     `json:"position"`
	IsActive *bool   `json:"is_active"`
}

func (h *CategoryHandler) CreateCategory(c *fiber.Ctx) error {
	var req categoryReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "message": "Body request tidak valid"})
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return c.Status(400).JSON(fiber.Map{"success": false, "message": "Nama kategori wajib diisi"})
	}
	if req.ParentID != nil {
		var parent models.Category
		if err := h.DB.First(&parent, *req.ParentID).Error; err != nil {
			return c.Status(400).JSON(fiber.Map{"success": false, "message": "Kategori induk tidak ditemukan"})
		}
	}

	cat := models.Category{Name: name, ParentID: req.ParentID, Path: req.Path, Position: req.Position, IsActive: true}
	if req.IsActive != nil {
		cat.IsActive = *req.IsActive
	}
	if err := h.DB.Create(&cat).Error; err != nil {
		log.Printf("create category: %v", err)
		return c.Status(500).JSON(fiber.Map{"success": false, "message": "Gagal menyimpan kategori"})
	}

	h.dropCache(c, categoryCacheKey)
	return c.JSON(fiber.Map{"success": true, "data": cat})
}

func (h *CategoryHandler) UpdateCategory(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "message": "ID tidak valid"})
	}

	var cat models.Category
	if err := h.DB.First(&cat, id).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"success": false, "message": "Kategori tidak ditemukan"})
	}

	var req categoryReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "message": "Body request tidak valid"})
	}
	if name := strings.TrimSpace(req.Name); name != "" {
		cat.Name = name
	}
	if req.ParentID != nil && *req.ParentID == cat.ID {
		return c.Status(400).JSON(fiber.Map{"success": false, "message": "Kategori tidak boleh jadi induk dirinya sendiri"})
	}
	cat.ParentID = req.ParentID
	if req.Path != nil {
		cat.Path = req.Path
	}
	cat.Position = req.Position
	if req.IsActive != nil {
		cat.IsActive = *req.IsActive
	}

	if err := h.DB.Save(&cat).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "message": "Gagal menyimpan kategori"})
	}

	h.dropCache(c, categoryCacheKey)
	return c.JSON(fiber.Map{"success": true, "data": cat})
}

func (h *CategoryHandler) DeleteCategory(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "message": "ID tidak valid"})
	}

	var children int64
	h.DB.Model(&models.Category{}).Where("parent_id = ?", id).Count(&children)
	if children > 0 {
		return c.Status(400).JSON(fiber.Map{"success": false, "message": "Hapus dulu sub-kategorinya"})
	}

	if err := h.DB.Delete(&models.Category{}, id).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "message": "Gagal menghapus kategori"})
	}

	h.dropCache(c, categoryCacheKey)
	return c.JSON(fiber.Map{"success": true})
}

// ==== BRANDS ====

func (h *CategoryHandler) GetBrands(c *fiber.Ctx) error {
	if b, ok := h.cached(c, brandCacheKey); ok {
		c.Set("Content-Type", "application/json")
		return c.Send(b)
	}

	var brands []models.Brand
	if err := h.DB.Order("name").Find(&brands).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "message": "Gagal mengambil brand"})
	}

	resp := fiber.Map{"success": true, "data": brands}
	h.storeCache(c, brandCacheKey, resp)
	return c.JSON(resp)
}

type brandReq struct {
	Name     string  `json:"name"`
	LogoURL  *string `json:"logo_url"`
	IsActive *bool   `json:"is_active"`
}

func (h *CategoryHandler) CreateBrand(c *fiber.Ctx) error {
	var req brandReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "message": "Body request tidak valid"})
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return c.Status(400).JSON(fiber.Map{"success": false, "message": "Nama brand wajib diisi"})
	}

	brand := models.Brand{Name: name, LogoURL: req.LogoURL, IsActive: true}
	if req.IsActive != nil {
		brand.IsActive = *req.IsActive
	}
	if err := h.DB.Create(&brand).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "message": "Gagal menyimpan brand"})
	}

	h.dropCache(c, brandCacheKey)
	return c.JSON(fiber.Map{"success": true, "data": brand})
}

func (h *CategoryHandler) UpdateBrand(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "message": "ID tidak valid"})
	}

	var brand models.Brand
	if err := h.DB.First(&brand, id).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"success": false, "message": "Brand tidak ditemukan"})
	}

	var req brandReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "message": "Body request tidak valid"})
	}
	if name := strings.TrimSpace(req.Name); name != "" {
		brand.Name = name
	}
	if req.LogoURL != nil {
		brand.LogoURL = req.LogoURL
	}
	if req.IsActive != nil {
		brand.IsActive = *req.IsActive
	}

	if err := h.DB.Save(&brand).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "message": "Gagal menyimpan brand"})
	}

	h.dropCache(c, brandCacheKey)
	return c.JSON(fiber.Map{"success": true, "data": brand})
}

func (h *CategoryHandler) DeleteBrand(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "message": "ID tidak valid"})
	}

	if err := h.DB.Delete(&models.Brand{}, id).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "message": "Gagal menghapus brand"})
	}

	h.dropCache(c, brandCacheKey)
	return c.JSON(fiber.Map{"success": true})
}
