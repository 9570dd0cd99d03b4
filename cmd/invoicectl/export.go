package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jhoicas/invoice-manager/internal/application/dto"
	"github.com/jhoicas/invoice-manager/internal/bootstrap"
	"github.com/jhoicas/invoice-manager/internal/infrastructure/export"
)

func newExportCmd(load loader) *cobra.Command {
	var (
		q        dto.InvoiceListQuery
		encoding string
		output   string
	)
	cmd := &cobra.Command{
		Use:   "export-csv",
		Short: "Exporta facturas a CSV",
		Example: `  invoicectl export-csv --from 2024-01-01 --to 2024-03-31 -o q1.csv
  invoicectl export-csv --status PAID --encoding windows-1252 -o pagadas.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			enc, err := export.ParseEncoding(encoding)
			if err != nil {
				return err
			}
			return withApp(cmd, load, func(ctx context.Context, app *bootstrap.App) error {
				list, err := app.InvoiceUC.Entities(ctx, q)
				if err != nil {
					return err
				}
				var w io.Writer = cmd.OutOrStdout()
				if output != "" {
					f, err := os.Create(output)
					if err != nil {
						return fmt.Errorf("crear %s: %w", output, err)
					}
					defer f.Close()
					w = f
				}
				if err := export.WriteInvoicesCSV(w, list, enc); err != nil {
					return err
				}
				app.Log.Info().Int("invoices", len(list)).Str("encoding", string(enc)).Msg("exportación completada")
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&q.From, "from", "", "fecha de factura desde (YYYY-MM-DD)")
	cmd.Flags().StringVar(&q.To, "to", "", "fecha de factura hasta (YYYY-MM-DD)")
	cmd.Flags().StringVar(&q.Status, "status", "", "PENDING | PAID | OVERDUE | CANCELLED")
	cmd.Flags().StringVar(&encoding, "encoding", string(export.UTF8), "utf-8 | windows-1252")
	cmd.Flags().StringVarP(&output, "output", "o", "", "archivo de salida (por defecto stdout)")
	return cmd
}
