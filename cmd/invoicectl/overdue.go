package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jhoicas/invoice-manager/internal/bootstrap"
)

func newOverdueCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "overdue",
		Short: "Lista facturas pendientes con vencimiento anterior a hoy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, load, func(ctx context.Context, app *bootstrap.App) error {
				list, err := app.InvoiceUC.Overdue(ctx)
				if err != nil {
					return err
				}
				if len(list) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "sin facturas vencidas")
					return nil
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "NUMBER\tCUSTOMER\tDUE DATE\tTOTAL")
				for _, inv := range list {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", inv.InvoiceNumber, inv.Customer.Name, inv.DueDate, inv.Total.StringFixed(2))
				}
				return tw.Flush()
			})
		},
	}
}
