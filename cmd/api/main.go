package main

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"
	"github.com/joho/godotenv"

	"github.com/Windi-Fikriyansyah/admin_be_commerce/internal/config"
	"github.com/Windi-Fikriyansyah/admin_be_commerce/internal/db"
	"github.com/Windi-Fikriyansyah/admin_be_commerce/internal/handlers"
	"github.com/Windi-Fikriyansyah/admin_be_commerce/internal/middleware"
	"github.com/Windi-Fikriyansyah/admin_be_commerce/internal/models"
	"github.com/Windi-Fikriyansyah/admin_be_commerce/internal/realtime"
	"github.com/Windi-Fikriyansyah/admin_be_commerce/internal/services/cloudmedia"
	"github.com/Windi-Fikriyansyah/admin_be_commerce/internal/services/sepay"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	gdb, err := db.Connect(cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}

	rdb := realtime.NewRedis()
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Println("Redis tidak connect, cache & rate limit dimatikan:", err)
		rdb = nil
	}

	hub := realtime.NewHub()
	go hub.Run()

	if err := gdb.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.ProductLink{},
		&models.Media{},
		&models.Category{},
		&models.Brand{},
		&models.Invoice{},
		&models.InvoiceItem{},
		&models.BankTransaction{},
	); err != nil {
		log.Fatal(err)
	}

	var cloud *cloudmedia.CloudMediaService
	if cfg.CloudinaryURL != "" {
		cloud, err = cloudmedia.New(cfg.CloudinaryURL, "products")
		if err != nil {
			log.Fatal(err)
		}
	} else {
		log.Println("CLOUDINARY_URL kosong, upload media dimatikan")
	}

	sepaySvc := sepay.NewSepayService()

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://127.0.0.1:3000, http://localhost:3000",
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		ExposeHeaders:    "Content-Length",
		AllowCredentials: true,
	}))

	app.Options("/*", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})

	authH := &handlers.AuthHandler{
		DB:        gdb,
		JWTSecret: cfg.JWTSecret,
		Expires:   cfg.JWTExpiresMin,
	}
	googleH := &handlers.GoogleOAuthHandler{
		DB:              gdb,
		JWTSecret:       cfg.JWTSecret,
		Expires:         cfg.JWTExpiresMin,
		GoogleClientID:  cfg.GoogleClientID,
		GoogleSecret:    cfg.GoogleSecret,
		GoogleRedirect:  cfg.GoogleRedirect,
		FrontendBaseURL: cfg.FrontendBaseURL,
	}
	productH := handlers.NewProductHandler(gdb)
	categoryH := handlers.NewCategoryHandler(gdb, rdb)
	mediaH := handlers.NewMediaHandler(gdb, cloud)
	invoiceH := handlers.NewInvoiceHandler(gdb)
	bankH := handlers.NewBankHandler(gdb, sepaySvc, hub)
	userH := handlers.NewUserHandler(gdb)
	wsH := &handlers.DashboardWSHandler{Hub: hub, JWTSecret: cfg.JWTSecret}

	api := app.Group("/api")

	// public
	api.Post("/auth/login",
		middleware.RateLimit(rdb, "login", 10, time.Minute),
		authH.Login,
	)
	api.Post("/auth/logout", authH.Logout)
	api.Get("/auth/google/start", googleH.GoogleStart)
	api.Get("/auth/google/callback", googleH.GoogleCallback)

	// webhook SePay (autentikasi pakai Apikey header, bukan cookie)
	api.Post("/sepay/webhook", bankH.HandleWebhook)

	// protected (JWT cookie)
	protected := api.Group("/",
		middleware.JWTFromCookie(cfg.JWTSecret),
		middleware.AttachJWTLocals(),
	)

	protected.Get("/me", authH.Me)

	// katalog
	protected.Get("/products", productH.List)
	protected.Get("/products/:id", productH.GetDetail)
	protected.Post("/products", productH.Create)
	protected.Put("/products/:id", productH.Update)
	protected.Delete("/products/:id",
		middleware.RequireRoles("admin", "manager"),
		productH.Delete,
	)
	protected.Get("/product-links/:rootId", productH.GetLinks)
	protected.Post("/product-links", productH.CreateLink)

	// dictionary
	protected.Get("/categories", categoryH.GetCategories)
	protected.Post("/categories", middleware.RequireRoles("admin", "manager"), categoryH.CreateCategory)
	protected.Put("/categories/:id", middleware.RequireRoles("admin", "manager"), categoryH.UpdateCategory)
	protected.Delete("/categories/:id", middleware.RequireRoles("admin"), categoryH.DeleteCategory)
	protected.Get("/brands", categoryH.GetBrands)
	protected.Post("/brands", middleware.RequireRoles("admin", "manager"), categoryH.CreateBrand)
	protected.Put("/brands/:id", middleware.RequireRoles("admin", "manager"), categoryH.UpdateBrand)
	protected.Delete("/brands/:id", middleware.RequireRoles("admin"), categoryH.DeleteBrand)

	// media
	protected.Post("/media/smart-upload", mediaH.SmartUpload)

	// invoice
	protected.Get("/invoices", invoiceH.List)
	protected.Get("/invoices/:id", invoiceH.GetDetail)
	protected.Patch("/invoices/:id/status",
		middleware.RequireRoles("admin", "manager"),
		invoiceH.UpdateStatus,
	)

	// bank / rekonsiliasi
	protected.Get("/bank/transactions", bankH.ListTransactions)
	protected.Get("/bank/reconcile",
		middleware.RequireRoles("admin", "manager"),
		bankH.Reconcile,
	)

	// security management (admin only)
	protected.Get("/admin/users", middleware.RequireRoles("admin"), userH.List)
	protected.Post("/admin/users", middleware.RequireRoles("admin"), userH.Create)
	protected.Patch("/admin/users/:id", middleware.RequireRoles("admin"), userH.Update)

	// WebSocket feed (autentikasi via token query param)
	app.Get("/ws/dashboard", websocket.New(wsH.Handle))

	log.Println("Admin API listen di :" + cfg.AppPort)
	if err := app.Listen(":" + cfg.AppPort); err != nil {
		log.Fatal(err)
	}
}
