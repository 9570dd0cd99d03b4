package main

import (
	"context"
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/jhoicas/invoice-manager/internal/application/settings"
	"github.com/jhoicas/invoice-manager/internal/bootstrap"
)

func newSettingsCmd(load loader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Consulta o modifica los datos de la empresa",
	}
	cmd.AddCommand(newSettingsShowCmd(load), newSettingsSetCmd(load))
	return cmd
}

func newSettingsShowCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Muestra los ajustes actuales en JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, load, func(_ context.Context, app *bootstrap.App) error {
				return printJSON(cmd, settings.ToDTO(app.Settings.Current()))
			})
		},
	}
}

func newSettingsSetCmd(load loader) *cobra.Command {
	var name, address, phone, email, website string
	cmd := &cobra.Command{
		Use:     "set",
		Short:   "Actualiza los campos indicados y guarda",
		Example: `  invoicectl settings set --name "Acme S.A." --email facturas@acme.test`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, load, func(ctx context.Context, app *bootstrap.App) error {
				in := settings.ToDTO(app.Settings.Current())
				flags := cmd.Flags()
				if flags.Changed("name") {
					in.CompanyName = name
				}
				if flags.Changed("address") {
					in.CompanyAddress = address
				}
				if flags.Changed("phone") {
					in.CompanyPhone = phone
				}
				if flags.Changed("email") {
					in.CompanyEmail = email
				}
				if flags.Changed("website") {
					in.CompanyWebsite = website
				}
				saved, err := app.Settings.Save(ctx, in)
				if err != nil {
					return err
				}
				return printJSON(cmd, settings.ToDTO(saved))
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "nombre de la empresa")
	cmd.Flags().StringVar(&address, "address", "", "dirección")
	cmd.Flags().StringVar(&phone, "phone", "", "teléfono")
	cmd.Flags().StringVar(&email, "email", "", "email")
	cmd.Flags().StringVar(&website, "website", "", "sitio web")
	return cmd
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
