// Package bootstrap arma las dependencias de la aplicación a partir de la configuración.
// Lo comparten cmd/api y cmd/invoicectl.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/jhoicas/invoice-manager/internal/application/analytics"
	"github.com/jhoicas/invoice-manager/internal/application/billing"
	"github.com/jhoicas/invoice-manager/internal/application/settings"
	"github.com/jhoicas/invoice-manager/internal/domain/entity"
	"github.com/jhoicas/invoice-manager/internal/domain/repository"
	"github.com/jhoicas/invoice-manager/internal/infrastructure/email"
	"github.com/jhoicas/invoice-manager/internal/infrastructure/memory"
	"github.com/jhoicas/invoice-manager/internal/infrastructure/pdf"
	"github.com/jhoicas/invoice-manager/internal/infrastructure/postgres"
	"github.com/jhoicas/invoice-manager/internal/infrastructure/postgrest"
	settingsstore "github.com/jhoicas/invoice-manager/internal/infrastructure/settings"
	apphttp "github.com/jhoicas/invoice-manager/internal/interfaces/http"
	"github.com/jhoicas/invoice-manager/internal/observability"
	"github.com/jhoicas/invoice-manager/pkg/config"
	"github.com/jhoicas/invoice-manager/pkg/logger"
)

// App dependencias construidas. Close libera conexiones.
type App struct {
	Config  *config.Config
	Log     *logger.Logger
	Metrics *observability.Metrics

	InvoiceRepo repository.InvoiceRepository
	ClientRepo  repository.ClientRepository
	Settings    *settings.Service

	InvoiceUC    *billing.InvoiceUseCase
	SuggestionUC *billing.SuggestionUseCase
	ClientUC     *billing.ClientUseCase
	PDFUC        *billing.PDFUseCase
	EmailUC      *billing.EmailUseCase
	DashboardUC  *analytics.DashboardUseCase

	closers []func()
}

// New construye repositorios, ajustes, generador PDF, correo y casos de uso.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	a := &App{
		Config:  cfg,
		Log:     log,
		Metrics: observability.NewMetrics("invoice_manager"),
	}
	if err := a.initStore(ctx); err != nil {
		a.Close()
		return nil, err
	}
	if err := a.initSettings(ctx); err != nil {
		a.Close()
		return nil, err
	}

	mailer, err := a.newMailer()
	if err != nil {
		a.Close()
		return nil, err
	}
	generator := pdf.NewMarotoPDFGenerator(pdf.Options{
		CurrencySymbol: cfg.Invoice.CurrencySymbol,
		Locale:         cfg.Invoice.Locale,
	})

	a.InvoiceUC = billing.NewInvoiceUseCase(a.InvoiceRepo, billing.InvoiceConfig{
		DueDays:               cfg.Invoice.DueDays,
		NumberPrefix:          cfg.Invoice.NumberPrefix,
		PreserveManualDueDate: cfg.Invoice.PreserveManualDueDate,
	})
	a.SuggestionUC = billing.NewSuggestionUseCase(a.InvoiceRepo)
	a.ClientUC = billing.NewClientUseCase(a.ClientRepo)
	a.PDFUC = billing.NewPDFUseCase(a.InvoiceRepo, a.Settings, generator)
	a.EmailUC = billing.NewEmailUseCase(a.InvoiceRepo, a.PDFUC, a.Settings, mailer, cfg.Invoice.CurrencySymbol)
	a.DashboardUC = analytics.NewDashboardUseCase(a.InvoiceRepo, a.ClientRepo)
	return a, nil
}

func (a *App) initStore(ctx context.Context) error {
	cfg := a.Config
	switch cfg.Store.Driver {
	case config.StorePostgREST:
		client, err := postgrest.NewClient(postgrest.Config{
			URL:     cfg.PostgREST.URL,
			AnonKey: cfg.PostgREST.AnonKey,
			Schema:  cfg.PostgREST.Schema,
			Timeout: cfg.PostgREST.Timeout,
		}, a.Metrics)
		if err != nil {
			return fmt.Errorf("postgrest: %w", err)
		}
		a.InvoiceRepo = postgrest.NewInvoiceRepository(client)
		a.ClientRepo = postgrest.NewClientRepository(client)
	case config.StorePostgres:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
		a.closers = append(a.closers, pool.Close)
		if cfg.DB.Migrate {
			if err := postgres.Migrate(ctx, pool); err != nil {
				return fmt.Errorf("postgres: migraciones: %w", err)
			}
		}
		a.InvoiceRepo = postgres.NewInvoiceRepository(pool)
		a.ClientRepo = postgres.NewClientRepository(pool)
	case config.StoreMemory:
		store := memory.NewStore()
		a.InvoiceRepo = store.Invoices()
		a.ClientRepo = store.Clients()
	default:
		return fmt.Errorf("driver de persistencia desconocido: %q", cfg.Store.Driver)
	}
	a.Log.Info().Str("driver", cfg.Store.Driver).Msg("almacén de facturas listo")
	return nil
}

func (a *App) initSettings(ctx context.Context) error {
	cfg := a.Config.Settings
	var store settings.Store
	switch cfg.Driver {
	case config.SettingsRedis:
		client, err := settingsstore.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return fmt.Errorf("ajustes: %w", err)
		}
		a.closers = append(a.closers, func() { _ = client.Close() })
		store = settingsstore.NewRedisStore(client, cfg.Key)
	case config.SettingsFile:
		store = settingsstore.NewFileStore(cfg.File)
	default:
		return fmt.Errorf("driver de ajustes desconocido: %q", cfg.Driver)
	}

	a.Settings = settings.NewService(store, entity.CompanySettings{
		Name:    cfg.CompanyName,
		Address: cfg.CompanyAddress,
		Phone:   cfg.CompanyPhone,
		Email:   cfg.CompanyEmail,
		Website: cfg.CompanyWebsite,
	})
	log := a.Log.WithComponent("settings")
	a.Settings.Subscribe(func(c entity.CompanySettings) {
		log.Info().Str("company", c.Name).Msg("ajustes de empresa actualizados")
	})
	// Un almacén caído no impide arrancar: se sirven los valores por defecto.
	if _, err := a.Settings.Reload(ctx); err != nil {
		log.Warn().Err(err).Msg("usando ajustes por defecto")
	}
	return nil
}

func (a *App) newMailer() (billing.Mailer, error) {
	cfg := a.Config.SMTP
	if !cfg.Enabled() {
		a.Log.Warn().Msg("SMTP no configurado: los correos sólo se registran en el log")
		return email.NewLogMailer(a.Log.WithComponent("email")), nil
	}
	m, err := email.NewSMTPMailer(email.Config{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Username: cfg.Username,
		Password: cfg.Password,
		From:     cfg.From,
	})
	if err != nil {
		return nil, fmt.Errorf("smtp: %w", err)
	}
	return m, nil
}

// RouterDeps dependencias para el router HTTP.
func (a *App) RouterDeps() apphttp.RouterDeps {
	return apphttp.RouterDeps{
		InvoiceUC:    a.InvoiceUC,
		SuggestionUC: a.SuggestionUC,
		ClientUC:     a.ClientUC,
		PDFUC:        a.PDFUC,
		EmailUC:      a.EmailUC,
		DashboardUC:  a.DashboardUC,
		Settings:     a.Settings,
		Logger:       a.Log.WithComponent("http"),
	}
}

// Close cierra conexiones en orden inverso a su apertura.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
