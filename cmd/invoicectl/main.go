// Command invoicectl: tareas de facturación desde la terminal (PDF, vencidas, CSV, ajustes).
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jhoicas/invoice-manager/internal/bootstrap"
	"github.com/jhoicas/invoice-manager/pkg/config"
	"github.com/jhoicas/invoice-manager/pkg/logger"
)

var version = "1.0.0"

// loader construye las dependencias; los tests lo sustituyen por uno en memoria.
type loader func(ctx context.Context) (*bootstrap.App, error)

func defaultLoader(ctx context.Context) (*bootstrap.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("cargar configuración: %w", err)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Output: os.Stderr})
	return bootstrap.New(ctx, cfg, log)
}

func newRootCmd(load loader) *cobra.Command {
	root := &cobra.Command{
		Use:           "invoicectl",
		Short:         "Herramientas de línea de comandos para facturas",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newPDFCmd(load),
		newOverdueCmd(load),
		newExportCmd(load),
		newSettingsCmd(load),
	)
	return root
}

// withApp carga las dependencias, ejecuta fn y las libera.
func withApp(cmd *cobra.Command, load loader, fn func(ctx context.Context, app *bootstrap.App) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	app, err := load(ctx)
	if err != nil {
		return err
	}
	defer app.Close()
	return fn(ctx, app)
}

func main() {
	if err := newRootCmd(defaultLoader).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
