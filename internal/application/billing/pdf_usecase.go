package billing

import (
	"context"
	"fmt"

	"github.com/jhoicas/invoice-manager/internal/domain"
	"github.com/jhoicas/invoice-manager/internal/domain/entity"
	"github.com/jhoicas/invoice-manager/internal/domain/repository"
)

// PDFUseCase genera la representación gráfica (PDF) de una factura.
type PDFUseCase struct {
	invoiceRepo repository.InvoiceRepository
	settings    CompanySettingsProvider
	generator   InvoicePDFGenerator
}

// NewPDFUseCase construye el caso de uso inyectando todas sus dependencias.
func NewPDFUseCase(
	invoiceRepo repository.InvoiceRepository,
	settings CompanySettingsProvider,
	generator InvoicePDFGenerator,
) *PDFUseCase {
	return &PDFUseCase{
		invoiceRepo: invoiceRepo,
		settings:    settings,
		generator:   generator,
	}
}

// DownloadInvoicePDF carga la factura con sus líneas y genera el PDF.
//
// Retorna:
//   - (pdfBytes, filename, nil)  si todo sale bien.
//   - domain.ErrNotFound         si la factura no existe.
func (uc *PDFUseCase) DownloadInvoicePDF(ctx context.Context, invoiceID string) (pdfBytes []byte, filename string, err error) {
	inv, err := uc.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: obtener factura: %w", err)
	}
	if inv == nil {
		return nil, "", domain.ErrNotFound
	}
	pdfBytes, err = uc.Render(ctx, inv)
	if err != nil {
		return nil, "", err
	}
	return pdfBytes, Filename(inv.InvoiceNumber), nil
}

// Render genera el PDF de una factura ya cargada (o de una vista previa sin guardar).
func (uc *PDFUseCase) Render(ctx context.Context, inv *entity.Invoice) ([]byte, error) {
	doc := NewInvoiceDocument(uc.settings.Current(), inv)
	if doc.InvoiceNumber == "" {
		doc.InvoiceNumber = PreviewNumber
	}
	pdfBytes, err := uc.generator.GenerateInvoicePDF(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("pdf: generación fallida: %w", err)
	}
	return pdfBytes, nil
}

// Filename nombre del archivo descargado: invoice-<número>.pdf.
func Filename(invoiceNumber string) string {
	return fmt.Sprintf("invoice-%s.pdf", invoiceNumber)
}
