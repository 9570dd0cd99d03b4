package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jhoicas/invoice-manager/internal/bootstrap"
)

func newPDFCmd(load loader) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:     "pdf <invoice-id>",
		Short:   "Genera el PDF de una factura",
		Example: "  invoicectl pdf 3f1c... -o factura.pdf",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, load, func(ctx context.Context, app *bootstrap.App) error {
				body, filename, err := app.PDFUC.DownloadInvoicePDF(ctx, args[0])
				if err != nil {
					return err
				}
				if output == "" {
					output = filename
				}
				if err := os.WriteFile(output, body, 0o644); err != nil {
					return fmt.Errorf("escribir %s: %w", output, err)
				}
				app.Log.Info().Str("file", output).Int("bytes", len(body)).Msg("pdf generado")
				fmt.Fprintln(cmd.OutOrStdout(), output)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "archivo de salida (por defecto invoice-<número>.pdf)")
	return cmd
}
