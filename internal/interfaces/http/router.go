package http

import (
	"os"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"

	"github.com/jhoicas/invoice-manager/internal/application/analytics"
	"github.com/jhoicas/invoice-manager/internal/application/billing"
	"github.com/jhoicas/invoice-manager/internal/application/settings"
	"github.com/jhoicas/invoice-manager/internal/observability"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	InvoiceUC    *billing.InvoiceUseCase
	SuggestionUC *billing.SuggestionUseCase
	ClientUC     *billing.ClientUseCase
	PDFUC        *billing.PDFUseCase
	EmailUC      *billing.EmailUseCase
	DashboardUC  *analytics.DashboardUseCase
	Settings     *settings.Service
	Logger       zerolog.Logger
}

// AppConfig opciones de la aplicación fiber.
type AppConfig struct {
	Name         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	SwaggerFile  string // se monta /docs sólo si el archivo existe
	Metrics      *observability.Metrics
	Logger       zerolog.Logger
}

// NewApp crea la app con recover, métricas, log de acceso, /health y /metrics.
func NewApp(cfg AppConfig) *fiber.App {
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 10 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 30 * time.Second
	}
	app := fiber.New(fiber.Config{
		AppName:      cfg.Name,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		ErrorHandler: ErrorHandler(cfg.Logger),
	})
	app.Use(recover.New())
	app.Use(cfg.Metrics.Middleware())
	app.Use(AccessLog(cfg.Logger))

	if cfg.SwaggerFile != "" {
		if _, err := os.Stat(cfg.SwaggerFile); err == nil {
			app.Use(swagger.New(swagger.Config{
				BasePath: "/",
				FilePath: cfg.SwaggerFile,
				Path:     "docs",
				Title:    cfg.Name + " API",
			}))
		} else {
			cfg.Logger.Warn().Str("file", cfg.SwaggerFile).Msg("swagger deshabilitado: archivo no encontrado")
		}
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	return app
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")
	log := deps.Logger

	// Invoices
	invoices := api.Group("/invoices")
	invoiceHandler := NewInvoiceHandler(deps.InvoiceUC, deps.PDFUC, deps.EmailUC, log)
	invoices.Post("/preview", invoiceHandler.Preview)
	invoices.Post("/preview/pdf", invoiceHandler.PreviewPDF)
	invoices.Get("/number/:number", invoiceHandler.GetByNumber)
	invoices.Post("/", invoiceHandler.Create)
	invoices.Get("/", invoiceHandler.List)
	invoices.Get("/:id", invoiceHandler.GetByID)
	invoices.Put("/:id", invoiceHandler.Update)
	invoices.Patch("/:id/status", invoiceHandler.UpdateStatus)
	invoices.Delete("/:id", invoiceHandler.Delete)
	invoices.Get("/:id/pdf", invoiceHandler.DownloadPDF)
	invoices.Post("/:id/email", invoiceHandler.SendEmail)
	invoices.Post("/:id/reminder", invoiceHandler.SendReminder)

	// Customers (historial de facturas)
	customers := api.Group("/customers")
	customerHandler := NewCustomerHandler(deps.SuggestionUC, log)
	customers.Get("/suggestions", customerHandler.Suggestions)
	customers.Get("/match", customerHandler.Match)
	customers.Get("/unique", customerHandler.Unique)

	// Clients
	clients := api.Group("/clients")
	clientHandler := NewClientHandler(deps.ClientUC, log)
	clients.Post("/", clientHandler.Create)
	clients.Get("/", clientHandler.List)
	clients.Get("/:id", clientHandler.GetByID)
	clients.Put("/:id", clientHandler.Update)
	clients.Delete("/:id", clientHandler.Delete)

	// Settings
	company := api.Group("/settings/company")
	settingsHandler := NewSettingsHandler(deps.Settings, log)
	company.Get("/", settingsHandler.Get)
	company.Put("/", settingsHandler.Put)
	company.Post("/reload", settingsHandler.Reload)
	company.Get("/defaults", settingsHandler.Defaults)

	// Dashboard
	dashboardHandler := NewDashboardHandler(deps.DashboardUC, log)
	api.Get("/dashboard/summary", dashboardHandler.Summary)
}
