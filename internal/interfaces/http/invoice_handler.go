package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/invoice-manager/internal/application/billing"
	"github.com/jhoicas/invoice-manager/internal/application/dto"
)

// InvoiceHandler maneja las peticiones HTTP de facturas.
type InvoiceHandler struct {
	uc    *billing.InvoiceUseCase
	pdf   *billing.PDFUseCase
	email *billing.EmailUseCase
	errs  errorResponder
}

// NewInvoiceHandler construye el handler.
func NewInvoiceHandler(uc *billing.InvoiceUseCase, pdf *billing.PDFUseCase, email *billing.EmailUseCase, log zerolog.Logger) *InvoiceHandler {
	return &InvoiceHandler{uc: uc, pdf: pdf, email: email, errs: errorResponder{log: log}}
}

// Create godoc
// @Summary      Crear factura
// @Description  Recalcula totales, deriva el vencimiento y genera el número si viene vacío. Guarda cabecera y luego líneas.
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        body  body      dto.InvoiceRequest  true  "Factura"
// @Success      201   {object}  dto.InvoiceResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      502   {object}  dto.ErrorResponse
// @Router       /api/invoices [post]
func (h *InvoiceHandler) Create(c *fiber.Ctx) error {
	var in dto.InvoiceRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return h.errs.respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar facturas
// @Tags         invoices
// @Produce      json
// @Param        status   query     string  false  "PENDING | PAID | OVERDUE | CANCELLED"
// @Param        from     query     string  false  "Fecha de factura desde (YYYY-MM-DD)"
// @Param        to       query     string  false  "Fecha de factura hasta (YYYY-MM-DD)"
// @Param        overdue  query     bool    false  "Sólo pendientes vencidas"
// @Param        q        query     string  false  "Número, nombre, email o teléfono"
// @Param        limit    query     int     false  "Límite (máx 100)"
// @Param        offset   query     int     false  "Desplazamiento"
// @Success      200      {object}  dto.InvoiceListResponse
// @Failure      400      {object}  dto.ErrorResponse
// @Router       /api/invoices [get]
func (h *InvoiceHandler) List(c *fiber.Ctx) error {
	q := dto.InvoiceListQuery{
		Status:  c.Query("status"),
		From:    c.Query("from"),
		To:      c.Query("to"),
		Overdue: c.QueryBool("overdue", false),
		Q:       c.Query("q"),
		PageRequest: dto.PageRequest{
			Limit:  c.QueryInt("limit", 0),
			Offset: c.QueryInt("offset", 0),
		},
	}
	out, err := h.uc.List(c.UserContext(), q)
	if err != nil {
		return h.errs.respond(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener factura
// @Tags         invoices
// @Produce      json
// @Param        id   path      string  true  "ID de la factura"
// @Success      200  {object}  dto.InvoiceResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/invoices/{id} [get]
func (h *InvoiceHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.errs.respond(c, err)
	}
	return c.JSON(out)
}

// GetByNumber godoc
// @Summary      Obtener factura por número
// @Tags         invoices
// @Produce      json
// @Param        number  path      string  true  "Número de factura"
// @Success      200     {object}  dto.InvoiceResponse
// @Failure      404     {object}  dto.ErrorResponse
// @Router       /api/invoices/number/{number} [get]
func (h *InvoiceHandler) GetByNumber(c *fiber.Ctx) error {
	out, err := h.uc.GetByNumber(c.UserContext(), c.Params("number"))
	if err != nil {
		return h.errs.respond(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar factura
// @Description  Reemplaza la cabecera y todas las líneas.
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id    path      string              true  "ID de la factura"
// @Param        body  body      dto.InvoiceRequest  true  "Factura"
// @Success      200   {object}  dto.InvoiceResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/invoices/{id} [put]
func (h *InvoiceHandler) Update(c *fiber.Ctx) error {
	var in dto.InvoiceRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return h.errs.respond(c, err)
	}
	return c.JSON(out)
}

// UpdateStatus godoc
// @Summary      Cambiar estado de pago
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id    path      string                          true  "ID de la factura"
// @Param        body  body      dto.UpdatePaymentStatusRequest  true  "Estado"
// @Success      200   {object}  dto.InvoiceResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/invoices/{id}/status [patch]
func (h *InvoiceHandler) UpdateStatus(c *fiber.Ctx) error {
	var in dto.UpdatePaymentStatusRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.UpdatePaymentStatus(c.UserContext(), c.Params("id"), in.PaymentStatus)
	if err != nil {
		return h.errs.respond(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar factura
// @Tags         invoices
// @Param        id  path  string  true  "ID de la factura"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/invoices/{id} [delete]
func (h *InvoiceHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), c.Params("id")); err != nil {
		return h.errs.respond(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Preview godoc
// @Summary      Vista previa de factura
// @Description  Calcula totales y vencimiento de un borrador sin guardarlo.
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        body  body      dto.InvoiceRequest  true  "Borrador"
// @Success      200   {object}  dto.InvoiceResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/invoices/preview [post]
func (h *InvoiceHandler) Preview(c *fiber.Ctx) error {
	var in dto.InvoiceRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Preview(c.UserContext(), in)
	if err != nil {
		return h.errs.respond(c, err)
	}
	return c.JSON(out)
}

// PreviewPDF godoc
// @Summary      PDF de vista previa
// @Tags         invoices
// @Accept       json
// @Produce      application/pdf
// @Param        body  body  dto.InvoiceRequest  true  "Borrador"
// @Success      200   {file}  binary
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/invoices/preview/pdf [post]
func (h *InvoiceHandler) PreviewPDF(c *fiber.Ctx) error {
	var in dto.InvoiceRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	inv, err := h.uc.PreviewInvoice(in)
	if err != nil {
		return h.errs.respond(c, err)
	}
	pdfBytes, err := h.pdf.Render(c.UserContext(), inv)
	if err != nil {
		return h.errs.respond(c, err)
	}
	return sendPDF(c, pdfBytes, billing.Filename(inv.InvoiceNumber), "inline")
}

// DownloadPDF godoc
// @Summary      Descargar PDF
// @Tags         invoices
// @Produce      application/pdf
// @Param        id   path  string  true  "ID de la factura"
// @Success      200  {file}  binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/invoices/{id}/pdf [get]
func (h *InvoiceHandler) DownloadPDF(c *fiber.Ctx) error {
	pdfBytes, filename, err := h.pdf.DownloadInvoicePDF(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.errs.respond(c, err)
	}
	return sendPDF(c, pdfBytes, filename, "attachment")
}

// SendEmail godoc
// @Summary      Enviar factura por email
// @Description  Adjunta el PDF. Destinatario, asunto o cuerpo vacíos usan los valores por defecto.
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id    path      string                       true   "ID de la factura"
// @Param        body  body      dto.SendInvoiceEmailRequest  false  "Mensaje"
// @Success      200   {object}  dto.MessageResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/invoices/{id}/email [post]
func (h *InvoiceHandler) SendEmail(c *fiber.Ctx) error {
	var in dto.SendInvoiceEmailRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return badBody(c)
		}
	}
	if err := h.email.SendInvoice(c.UserContext(), c.Params("id"), in); err != nil {
		return h.errs.respond(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "factura enviada"})
}

// SendReminder godoc
// @Summary      Recordatorio de pago
// @Tags         invoices
// @Produce      json
// @Param        id   path      string  true  "ID de la factura"
// @Success      200  {object}  dto.MessageResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/invoices/{id}/reminder [post]
func (h *InvoiceHandler) SendReminder(c *fiber.Ctx) error {
	if err := h.email.SendReminder(c.UserContext(), c.Params("id")); err != nil {
		return h.errs.respond(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "recordatorio enviado"})
}

func sendPDF(c *fiber.Ctx, body []byte, filename, disposition string) error {
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("%s; filename=%q", disposition, filename))
	return c.Send(body)
}
