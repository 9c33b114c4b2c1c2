package handlers

import (
	"encoding/json"
	"log"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/admin_be_commerce/internal/catalog/rim"
	"github.com/Windi-Fikriyansyah/admin_be_commerce/internal/models"
)

type ProductHandler struct {
	DB *gorm.DB
}

func NewProductHandler(db *gorm.DB) *ProductHandler {
	return &ProductHandler{DB: db}
}

// ==== FIELD MAPPING ====

// productFields flattens a record into the map the RIM layer works on.
// category_ids dibuka dari format wire ",12,45," jadi list.
func productFields(p *models.Product) map[string]interface{} {
	catStr := ""
	if p.CategoryIDs != nil {
		catStr = *p.CategoryIDs
	}
	f := map[string]interface{}{
		"site_code":       p.SiteCode,
		"name":            strVal(p.Name),
		"path":            strVal(p.Path),
		"sku":             strVal(p.SKU),
		"brand_id":        uintVal(p.BrandID),
		"category_ids":    rim.ParseCategoryIDs(catStr),
		"price":           int64Val(p.Price),
		"market_price":    int64Val(p.MarketPrice),
		"quantity":        int64Val(p.Quantity),
		"summary":         strVal(p.Summary),
		"description":     strVal(p.Description),
		"specification":   strVal(p.Specification),
		"warranty":        strVal(p.Warranty),
		"promotion_text":  strVal(p.PromotionText),
		"seo_title":       strVal(p.SeoTitle),
		"seo_description": strVal(p.SeoDescription),
		"weight":          floatVal(p.Weight),
		"is_visible":      intVal(p.IsVisible),
		"is_new":          intVal(p.IsNew),
		"is_best_seller":  intVal(p.IsBestSeller),
		"is_special":      intVal(p.IsSpecial),
		"media_ids":       mediaIDs(p.MediaIDs),
	}
	if p.ParentID != nil {
		f["parent_id"] = int64(*p.ParentID)
	} else {
		f["parent_id"] = nil
	}
	return f
}

func strVal(p *string) interface{} {
	if p == nil {
		return ""
	}
	return *p
}
func int64Val(p *int64) interface{} {
	if p == nil {
		return nil
	}
	return *p
}
func intVal(p *int) interface{} {
	if p == nil {
		return nil
	}
	return *p
}
func uintVal(p *uint) interface{} {
	if p == nil {
		return nil
	}
	return int64(*p)
}
func floatVal(p *float64) interface{} {
	if p == nil {
		return nil
	}
	return *p
}

func mediaIDs(raw datatypes.JSON) []int64 {
	if len(raw) == 0 {
		return nil
	}
	var ids []int64
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil
	}
	return rim.FilterIDs(ids)
}

// applyPayload menulis payload partial ke model. Key tidak ada = tidak
// disentuh; key ada tapi null = hapus override (balik mewarisi).
func applyPayload(p *models.Product, payload map[string]interface{}) {
	setStr := func(dst **string, v interface{}, ok bool) {
		if !ok {
			return
		}
		if v == nil {
			*dst = nil
			return
		}
		s := strings.TrimSpace(asString(v))
		*dst = &s
	}
	setInt64 := func(dst **int64, v interface{}, ok bool) {
		if !ok {
			return
		}
		if v == nil {
			*dst = nil
			return
		}
		n := rim.ToID(v)
		*dst = &n
	}
	setUint := func(dst **uint, v interface{}, ok bool) {
		if !ok {
			return
		}
		if v == nil {
			*dst = nil
			return
		}
		n := uint(rim.ToID(v))
		*dst = &n
	}
	setFlag := func(dst **int, v interface{}, ok bool) {
		if !ok {
			return
		}
		if v == nil {
			*dst = nil
			return
		}
		n := rim.BoolToInt(v)
		*dst = &n
	}

	v, ok := payload["name"]
	setStr(&p.Name, v, ok)
	v, ok = payload["path"]
	setStr(&p.Path, v, ok)
	v, ok = payload["sku"]
	setStr(&p.SKU, v, ok)
	v, ok = payload["summary"]
	setStr(&p.Summary, v, ok)
	v, ok = payload["description"]
	setStr(&p.Description, v, ok)
	v, ok = payload["specification"]
	setStr(&p.Specification, v, ok)
	v, ok = payload["warranty"]
	setStr(&p.Warranty, v, ok)
	v, ok = payload["promotion_text"]
	setStr(&p.PromotionText, v, ok)
	v, ok = payload["seo_title"]
	setStr(&p.SeoTitle, v, ok)
	v, ok = payload["seo_description"]
	setStr(&p.SeoDescription, v, ok)

	v, ok = payload["price"]
	setInt64(&p.Price, v, ok)
	v, ok = payload["market_price"]
	setInt64(&p.MarketPrice, v, ok)
	v, ok = payload["quantity"]
	setInt64(&p.Quantity, v, ok)

	v, ok = payload["brand_id"]
	setUint(&p.BrandID, v, ok)

	v, ok = payload["is_visible"]
	setFlag(&p.IsVisible, v, ok)
	v, ok = payload["is_new"]
	setFlag(&p.IsNew, v, ok)
	v, ok = payload["is_best_seller"]
	setFlag(&p.IsBestSeller, v, ok)
	v, ok = payload["is_special"]
	setFlag(&p.IsSpecial, v, ok)

	if v, ok := payload["weight"]; ok {
		if v == nil {
			p.Weight = nil
		} else if f, isNum := v.(float64); isNum {
			p.Weight = &f
		}
	}

	// category_ids bisa datang sebagai string wire atau array
	if v, ok := payload["category_ids"]; ok {
		if v == nil {
			p.CategoryIDs = nil
		} else {
			s := rim.SerializeCategoryIDs(rim.ToIDList(v))
			p.CategoryIDs = &s
		}
	}

	if v, ok := payload["media_ids"]; ok {
		if v == nil {
			p.MediaIDs = nil
		} else {
			ids := rim.ToIDList(v) // list kosong eksplisit = mewarisi gallery
			b, _ := json.Marshal(rim.FilterIDs(ids))
			p.MediaIDs = datatypes.JSON(b)
		}
	}

	if v, ok := payload["site_code"]; ok && v != nil {
		if s := strings.TrimSpace(asString(v)); s != "" {
			p.SiteCode = s
		}
	}
	if v, ok := payload["parent_id"]; ok {
		if v == nil {
			p.ParentID = nil
		} else if id := rim.ToID(v); id != 0 {
			u := uint(id)
			p.ParentID = &u
		}
	}
}

func asString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return ""
	}
}

// ==== RESPONSES ====

// productResponse: field varian yang null sudah di-resolve dari master,
// media dikirim sebagai objek {id,url} urut sesuai gallery.
func (h *ProductHandler) productResponse(p *models.Product, resolve bool) fiber.Map {
	fields := productFields(p)

	if resolve && p.ParentID != nil {
		var master models.Product
		if err := h.DB.First(&master, *p.ParentID).Error; err == nil {
			fields = rim.ResolveInherited(fields, productFields(&master))
		}
	}

	ids := rim.ToIDList(fields["media_ids"])
	media := []fiber.Map{}
	if len(ids) > 0 {
		var rows []models.Media
		if err := h.DB.Where("id IN ?", rim.FilterIDs(ids)).Find(&rows).Error; err == nil {
			byID := map[int64]models.Media{}
			for _, m := range rows {
				byID[int64(m.ID)] = m
			}
			// pertahankan urutan gallery
			for _, id := range ids {
				if m, ok := byID[id]; ok {
					media = append(media, fiber.Map{"id": m.ID, "url": m.URL})
				}
			}
		}
	}

	resp := fiber.Map{"id": p.ID, "media": media, "created_at": p.CreatedAt, "updated_at": p.UpdatedAt}
	for k, v := range fields {
		if k == "media_ids" {
			continue
		}
		if k == "category_ids" {
			resp[k] = rim.SerializeCategoryIDs(rim.ToIDList(v))
			continue
		}
		resp[k] = v
	}
	return resp
}

// ==== HANDLERS ====

func (h *ProductHandler) List(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	if limit < 1 || limit > 100 {
		limit = 20
	}

	q := h.DB.Model(&models.Product{})
	if site := c.Query("site"); site != "" {
		q = q.Where("site_code = ?", site)
	} else {
		// default: list master saja, varian muncul lewat product-links
		q = q.Where("parent_id IS NULL")
	}
	if search := strings.TrimSpace(c.Query("q")); search != "" {
		q = q.Where("name ILIKE ?", "%"+search+"%")
	}

	var total int64
	q.Count(&total)

	var products []models.Product
	if err := q.Order("id DESC").Offset((page - 1) * limit).Limit(limit).Find(&products).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "message": "Gagal mengambil produk"})
	}

	items := make([]fiber.Map, 0, len(products))
	for i := range products {
		items = append(items, h.productResponse(&products[i], true))
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"items": items,
			"total": total,
			"page":  page,
			"limit": limit,
		},
	})
}

func (h *ProductHandler) GetDetail(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "message": "ID tidak valid"})
	}

	var p models.Product
	if err := h.DB.First(&p, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Status(404).JSON(fiber.Map{"success": false, "message": "Produk tidak ditemukan"})
		}
		return c.Status(500).JSON(fiber.Map{"success": false, "message": "Terjadi kesalahan server"})
	}

	return c.JSON(fiber.Map{"success": true, "data": h.productResponse(&p, true)})
}

func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var payload map[string]interface{}
	if err := json.Unmarshal(c.Body(), &payload); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "message": "Body request tidak valid"})
	}

	var p models.Product
	p.SiteCode = rim.MasterSite
	applyPayload(&p, payload)

	// Master wajib punya nama; varian boleh kosong (mewarisi).
	if p.ParentID == nil && (p.Name == nil || *p.Name == "") {
		return c.Status(400).JSON(fiber.Map{"success": false, "message": "Nama produk wajib diisi"})
	}
	if p.ParentID != nil {
		var parent models.Product
		if err := h.DB.First(&parent, *p.ParentID).Error; err != nil {
			return c.Status(400).JSON(fiber.Map{"success": false, "message": "Produk master tidak ditemukan"})
		}
		if parent.ParentID != nil {
			return c.Status(400).JSON(fiber.Map{"success": false, "message": "Varian tidak boleh dirantai ke varian lain"})
		}
	}

	if err := h.DB.Create(&p).Error; err != nil {
		log.Printf("create product: %v", err)
		return c.Status(500).JSON(fiber.Map{"success": false, "message": "Gagal menyimpan produk"})
	}

	return c.JSON(fiber.Map{"success": true, "data": h.productResponse(&p, false)})
}

func (h *ProductHandler) Update(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "message": "ID tidak valid"})
	}

	var p models.Product
	if err := h.DB.First(&p, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Status(404).JSON(fiber.Map{"success": false, "message": "Produk tidak ditemukan"})
		}
		return c.Status(500).JSON(fiber.Map{"success": false, "message": "Terjadi kesalahan server"})
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(c.Body(), &payload); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "message": "Body request tidak valid"})
	}

	// identity tidak boleh dipindah lewat update
	delete(payload, "id")
	delete(payload, "site_code")
	delete(payload, "parent_id")

	applyPayload(&p, payload)

	// Save penuh, bukan Updates: kolom yang di-null-kan (balik mewarisi)
	// harus ikut ditulis.
	if err := h.DB.Save(&p).Error; err != nil {
		log.Printf("update product %d: %v", id, err)
		return c.Status(500).JSON(fiber.Map{"success": false, "message": "Gagal menyimpan produk"})
	}

	return c.JSON(fiber.Map{"success": true, "data": h.productResponse(&p, false)})
}

// Delete menghapus satu record; kalau master, semua varian + link ikut.
func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "message": "ID tidak valid"})
	}

	var p models.Product
	if err := h.DB.First(&p, id).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"success": false, "message": "Produk tidak ditemukan"})
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if p.ParentID == nil {
			if err := tx.Where("parent_id = ?", p.ID).Delete(&models.Product{}).Error; err != nil {
				return err
			}
			if err := tx.Where("source_product_id = ?", p.ID).Delete(&models.ProductLink{}).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Where("target_product_id = ?", p.ID).Delete(&models.ProductLink{}).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&p).Error
	})
	if err != nil {
		log.Printf("delete product %d: %v", id, err)
		return c.Status(500).JSON(fiber.Map{"success": false, "message": "Gagal menghapus produk"})
	}

	return c.JSON(fiber.Map{"success": true})
}

// ==== PRODUCT LINKS ====

func (h *ProductHandler) GetLinks(c *fiber.Ctx) error {
	rootID, err := c.ParamsInt("rootId")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "message": "ID tidak valid"})
	}

	var links []models.ProductLink
	if err := h.DB.Where("source_product_id = ?", rootID).Order("id").Find(&links).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "message": "Gagal mengambil link produk"})
	}

	data := make([]fiber.Map, 0, len(links))
	for _, l := range links {
		item := fiber.Map{
			"source_product_id": l.SourceProductID,
			"target_product_id": l.TargetProductID,
			"site_code":         l.SiteCode,
			"link_type":         l.LinkType,
		}
		var target models.Product
		if err := h.DB.First(&target, l.TargetProductID).Error; err == nil {
			item["target_product"] = h.productResponse(&target, true)
		}
		data = append(data, item)
	}

	return c.JSON(fiber.Map{"success": true, "data": data})
}

type createLinkReq struct {
	SourceProductID uint   `json:"source_product_id"`
	TargetProductID uint   `json:"target_product_id"`
	SiteCode        string `json:"site_code"`
	LinkType        string `json:"link_type"`
}

func (h *ProductHandler) CreateLink(c *fiber.Ctx) error {
	var req createLinkReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "message": "Body request tidak valid"})
	}
	if req.SourceProductID == 0 || req.TargetProductID == 0 || req.SiteCode == "" {
		return c.Status(400).JSON(fiber.Map{"success": false, "message": "source, target dan site_code wajib diisi"})
	}
	if req.SiteCode == rim.MasterSite {
		return c.Status(400).JSON(fiber.Map{"success": false, "message": "Site master tidak butuh link"})
	}

	var dup models.ProductLink
	err := h.DB.Where("source_product_id = ? AND site_code = ?", req.SourceProductID, req.SiteCode).
		First(&dup).Error
	if err == nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "message": "Site ini sudah punya varian"})
	} else if err != gorm.ErrRecordNotFound {
		return c.Status(500).JSON(fiber.Map{"success": false, "message": "Terjadi kesalahan server"})
	}

	linkType := req.LinkType
	if linkType == "" {
		linkType = "site_variant"
	}
	link := models.ProductLink{
		SourceProductID: req.SourceProductID,
		TargetProductID: req.TargetProductID,
		SiteCode:        req.SiteCode,
		LinkType:        linkType,
	}
	if err := h.DB.Create(&link).Error; err != nil {
		log.Printf("create product link: %v", err)
		return c.Status(500).JSON(fiber.Map{"success": false, "message": "Gagal menyimpan link produk"})
	}

	return c.JSON(fiber.Map{"success": true, "data": link})
}
