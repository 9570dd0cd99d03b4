package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/invoice-manager/internal/application/billing"
)

// CustomerHandler sugerencias de clientes a partir del historial de facturas.
type CustomerHandler struct {
	uc   *billing.SuggestionUseCase
	errs errorResponder
}

// NewCustomerHandler construye el handler.
func NewCustomerHandler(uc *billing.SuggestionUseCase, log zerolog.Logger) *CustomerHandler {
	return &CustomerHandler{uc: uc, errs: errorResponder{log: log}}
}

// Suggestions godoc
// @Summary      Sugerencias de cliente
// @Description  Hasta 10 clientes únicos, el más reciente primero. Menos de 2 caracteres devuelve lista vacía.
// @Tags         customers
// @Produce      json
// @Param        name   query     string  false  "Nombre parcial"
// @Param        phone  query     string  false  "Teléfono parcial"
// @Success      200    {array}   dto.CustomerSuggestionDTO
// @Router       /api/customers/suggestions [get]
func (h *CustomerHandler) Suggestions(c *fiber.Ctx) error {
	out, err := h.uc.Suggest(c.UserContext(), c.Query("name"), c.Query("phone"))
	if err != nil {
		return h.errs.respond(c, err)
	}
	return c.JSON(out)
}

// Match godoc
// @Summary      Autocompletar cliente
// @Description  Coincidencia exacta por nombre y/o teléfono.
// @Tags         customers
// @Produce      json
// @Param        name   query     string  false  "Nombre"
// @Param        phone  query     string  false  "Teléfono"
// @Success      200    {object}  dto.CustomerMatchResponse
// @Router       /api/customers/match [get]
func (h *CustomerHandler) Match(c *fiber.Ctx) error {
	out, err := h.uc.AutoFill(c.UserContext(), c.Query("name"), c.Query("phone"))
	if err != nil {
		return h.errs.respond(c, err)
	}
	return c.JSON(out)
}

// Unique godoc
// @Summary      Clientes únicos
// @Tags         customers
// @Produce      json
// @Success      200  {array}  dto.CustomerSuggestionDTO
// @Router       /api/customers/unique [get]
func (h *CustomerHandler) Unique(c *fiber.Ctx) error {
	out, err := h.uc.UniqueCustomers(c.UserContext())
	if err != nil {
		return h.errs.respond(c, err)
	}
	return c.JSON(out)
}
