package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/invoice-manager/internal/application/billing"
	"github.com/jhoicas/invoice-manager/internal/application/dto"
	"github.com/jhoicas/invoice-manager/internal/domain"
)

// Códigos de error de la API.
const (
	CodeInvalidBody = "INVALID_BODY"
	CodeValidation  = "VALIDATION"
	CodeNoItems     = "NO_ITEMS"
	CodeNotFound    = "NOT_FOUND"
	CodeDuplicate   = "DUPLICATE"
	CodePartialSave = "PARTIAL_SAVE"
	CodeRemote      = "REMOTE_ERROR"
	CodeInternal    = "INTERNAL"
)

// errorResponder traduce errores de aplicación a status + dto.ErrorResponse.
type errorResponder struct {
	log zerolog.Logger
}

// statusFor clasifica err; el orden importa porque algunos errores envuelven a otros.
func statusFor(err error) (int, dto.ErrorResponse) {
	var partial *billing.PartialCreateError
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &partial):
		return fiber.StatusBadGateway, dto.ErrorResponse{
			Code:      CodePartialSave,
			Message:   "la factura se guardó sin líneas; revise o elimine la factura indicada",
			InvoiceID: partial.InvoiceID,
		}
	case errors.Is(err, domain.ErrNoItems):
		return fiber.StatusBadRequest, dto.ErrorResponse{Code: CodeNoItems, Message: err.Error()}
	case errors.As(err, &ve):
		return fiber.StatusBadRequest, dto.ErrorResponse{Code: CodeValidation, Message: "datos inválidos", Fields: ve.Fields}
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest, dto.ErrorResponse{Code: CodeValidation, Message: err.Error()}
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, dto.ErrorResponse{Code: CodeNotFound, Message: "recurso no encontrado"}
	case errors.Is(err, domain.ErrDuplicate):
		return fiber.StatusConflict, dto.ErrorResponse{Code: CodeDuplicate, Message: err.Error()}
	case errors.Is(err, domain.ErrRemote):
		return fiber.StatusBadGateway, dto.ErrorResponse{Code: CodeRemote, Message: "el servicio de datos no respondió correctamente"}
	default:
		return fiber.StatusInternalServerError, dto.ErrorResponse{Code: CodeInternal, Message: "error interno"}
	}
}

// respond escribe la respuesta de error; los 5xx se registran con el error completo.
func (r errorResponder) respond(c *fiber.Ctx, err error) error {
	status, body := statusFor(err)
	if status >= fiber.StatusInternalServerError {
		r.log.Error().Err(err).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Msg("petición fallida")
	}
	return c.Status(status).JSON(body)
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: CodeInvalidBody, Message: "cuerpo inválido"})
}

// ErrorHandler para fiber.Config: errores no manejados por los handlers (rutas inexistentes, pánicos recuperados).
func ErrorHandler(log zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			code := CodeInternal
			switch fe.Code {
			case fiber.StatusNotFound:
				code = CodeNotFound
			case fiber.StatusBadRequest:
				code = CodeInvalidBody
			}
			return c.Status(fe.Code).JSON(dto.ErrorResponse{Code: code, Message: fe.Message})
		}
		return errorResponder{log: log}.respond(c, err)
	}
}
