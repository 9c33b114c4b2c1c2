package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/admin_be_commerce/internal/models"
	"github.com/Windi-Fikriyansyah/admin_be_commerce/internal/utils"
)

// Manajemen akun admin panel. Semua endpoint di sini dipagari role admin.
type UserHandler struct {
	DB *gorm.DB
}

func NewUserHandler(db *gorm.DB) *UserHandler {
	return &UserHandler{DB: db}
}

func validRole(r string) bool {
	switch models.Role(r) {
	case models.RoleAdmin, models.RoleManager, models.RoleStaff:
		return true
	}
	return false
}

func (h *UserHandler) List(c *fiber.Ctx) error {
	var users []models.User
	if err := h.DB.Order("created_at").Find(&users).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "message": "Gagal mengambil user"})
	}
	return c.JSON(fiber.Map{"success": true, "data": users})
}

type createUserReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (h *UserHandler) Create(c *fiber.Ctx) error {
	var req createUserReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "message": "Body request tidak valid"})
	}

	name := strings.TrimSpace(req.Name)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	password := strings.TrimSpace(req.Password)
	role := strings.ToLower(strings.TrimSpace(req.Role))

	errors := FieldErrors{}
	if name == "" {
		errors.Add("name", "Nama wajib diisi")
	}
	if email == "" {
		errors.Add("email", "Email wajib diisi")
	} else if !strings.Contains(email, "@") {
		errors.Add("email", "Format email tidak valid")
	}
	if len(password) < 8 {
		errors.Add("password", "Password minimal 8 karakter")
	}
	if !validRole(role) {
		errors.Add("role", "Role tidak dikenal")
	}
	if len(errors) > 0 {
		return validationFail(c, errors)
	}

	var existing models.User
	if err := h.DB.Where("email = ?", email).First(&existing).Error; err == nil {
		errs := FieldErrors{}
		errs.Add("email", "Email sudah terdaftar")
		return validationFail(c, errs)
	} else if err != gorm.ErrRecordNotFound {
		return c.Status(500).JSON(fiber.Map{"success": false, "message": "Terjadi kesalahan server"})
	}

	pw, err := utils.HashPassword(password)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "message": "Gagal memproses password"})
	}

	u := models.User{Name: name, Email: email, Password: pw, Role: models.Role(role), IsActive: true}
	if err := h.DB.Create(&u).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "message": "Gagal menyimpan user"})
	}

	return c.JSON(fiber.Map{"success": true, "data": u})
}

type updateUserReq struct {
	Role     *string `json:"role"`
	IsActive *bool   `json:"is_active"`
}

// Update: ganti role / aktif-nonaktifkan akun. Admin tidak bisa mencabut
// dirinya sendiri — biar tidak ada panel tanpa admin.
func (h *UserHandler) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "message": "ID tidak valid"})
	}

	var u models.User
	if err := h.DB.First(&u, "id = ?", id).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"success": false, "message": "User tidak ditemukan"})
	}

	var req updateUserReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "message": "Body request tidak valid"})
	}

	self := c.Locals("userId") == u.ID.String()
	if self && ((req.Role != nil && *req.Role != string(models.RoleAdmin)) ||
		(req.IsActive != nil && !*req.IsActive)) {
		return c.Status(400).JSON(fiber.Map{"success": false, "message": "Tidak bisa mencabut akses akun sendiri"})
	}

	if req.Role != nil {
		role := strings.ToLower(strings.TrimSpace(*req.Role))
		if !validRole(role) {
			return c.Status(400).JSON(fiber.Map{"success": false, "message": "Role tidak dikenal"})
		}
		u.Role = models.Role(role)
	}
	if req.IsActive != nil {
		u.IsActive = *req.IsActive
	}

	if err := h.DB.Save(&u).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "message": "Gagal menyimpan user"})
	}

	return c.JSON(fiber.Map{"success": true, "data": u})
}
