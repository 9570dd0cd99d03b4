package billing

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/invoice-manager/internal/application/dto"
	"github.com/jhoicas/invoice-manager/internal/application/validation"
	"github.com/jhoicas/invoice-manager/internal/domain"
	"github.com/jhoicas/invoice-manager/internal/domain/entity"
	"github.com/jhoicas/invoice-manager/internal/domain/repository"
)

// EmailUseCase envía facturas (con el PDF adjunto) y recordatorios de pago.
type EmailUseCase struct {
	invoiceRepo    repository.InvoiceRepository
	pdf            *PDFUseCase
	settings       CompanySettingsProvider
	mailer         Mailer
	currencySymbol string
}

// NewEmailUseCase construye el caso de uso.
func NewEmailUseCase(
	invoiceRepo repository.InvoiceRepository,
	pdf *PDFUseCase,
	settings CompanySettingsProvider,
	mailer Mailer,
	currencySymbol string,
) *EmailUseCase {
	if currencySymbol == "" {
		currencySymbol = "$"
	}
	return &EmailUseCase{
		invoiceRepo:    invoiceRepo,
		pdf:            pdf,
		settings:       settings,
		mailer:         mailer,
		currencySymbol: currencySymbol,
	}
}

// SendInvoice envía la factura; destinatario, asunto y cuerpo vacíos usan los valores por defecto.
func (uc *EmailUseCase) SendInvoice(ctx context.Context, invoiceID string, in dto.SendInvoiceEmailRequest) error {
	if err := validation.Struct(in, nil).OrNil(); err != nil {
		return err
	}
	inv, err := uc.load(ctx, invoiceID)
	if err != nil {
		return err
	}
	company := uc.settings.Current()
	subject := in.Subject
	if subject == "" {
		subject = "Invoice " + inv.InvoiceNumber
	}
	body := in.Body
	if body == "" {
		body = uc.invoiceBody(inv, company)
	}
	return uc.send(ctx, inv, strings.TrimSpace(in.To), subject, body)
}

// SendReminder envía el recordatorio de pago al email del cliente.
func (uc *EmailUseCase) SendReminder(ctx context.Context, invoiceID string) error {
	inv, err := uc.load(ctx, invoiceID)
	if err != nil {
		return err
	}
	company := uc.settings.Current()
	subject := "Payment Reminder - Invoice " + inv.InvoiceNumber
	return uc.send(ctx, inv, "", subject, uc.reminderBody(inv, company))
}

func (uc *EmailUseCase) send(ctx context.Context, inv *entity.Invoice, to, subject, body string) error {
	if to == "" {
		to = inv.Customer.Email
	}
	if to == "" {
		ve := domain.NewValidationError()
		ve.Add("to", "el cliente no tiene email; indique un destinatario")
		return ve
	}
	pdfBytes, err := uc.pdf.Render(ctx, inv)
	if err != nil {
		return err
	}
	msg := EmailMessage{
		To:      to,
		Subject: subject,
		Body:    body,
		Attachments: []Attachment{{
			Filename:    Filename(inv.InvoiceNumber),
			ContentType: "application/pdf",
			Data:        pdfBytes,
		}},
	}
	if err := uc.mailer.Send(ctx, msg); err != nil {
		return fmt.Errorf("email: envío fallido: %w", err)
	}
	return nil
}

func (uc *EmailUseCase) load(ctx context.Context, id string) (*entity.Invoice, error) {
	inv, err := uc.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("email: obtener factura: %w", err)
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	return inv, nil
}

func (uc *EmailUseCase) money(inv *entity.Invoice) string {
	return uc.currencySymbol + inv.Total.StringFixed(2)
}

func (uc *EmailUseCase) invoiceBody(inv *entity.Invoice, company entity.CompanySettings) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Dear %s,\n\n", inv.Customer.Name)
	fmt.Fprintf(&b, "Please find attached invoice %s for your review.\n\n", inv.InvoiceNumber)
	b.WriteString("Invoice Details:\n")
	fmt.Fprintf(&b, "Invoice Number: %s\n", inv.InvoiceNumber)
	fmt.Fprintf(&b, "Invoice Date: %s\n", formatDate(inv.InvoiceDate))
	fmt.Fprintf(&b, "Due Date: %s\n", formatDate(inv.DueDate))
	fmt.Fprintf(&b, "Total Amount: %s\n\n", uc.money(inv))
	b.WriteString("Thank you for your business!\n\n")
	fmt.Fprintf(&b, "Best regards,\n%s", company.Name)
	return b.String()
}

func (uc *EmailUseCase) reminderBody(inv *entity.Invoice, company entity.CompanySettings) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Dear %s,\n\n", inv.Customer.Name)
	fmt.Fprintf(&b, "This is a friendly reminder that invoice %s is due on %s.\n\n",
		inv.InvoiceNumber, formatDate(inv.DueDate))
	fmt.Fprintf(&b, "Total Amount Due: %s\n\n", uc.money(inv))
	b.WriteString("Please process the payment at your earliest convenience.\n\n")
	fmt.Fprintf(&b, "Thank you,\n%s", company.Name)
	return b.String()
}
