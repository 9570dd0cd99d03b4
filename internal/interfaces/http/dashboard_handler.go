package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/invoice-manager/internal/application/analytics"
)

// DashboardHandler resumen del panel principal.
type DashboardHandler struct {
	uc   *analytics.DashboardUseCase
	errs errorResponder
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(uc *analytics.DashboardUseCase, log zerolog.Logger) *DashboardHandler {
	return &DashboardHandler{uc: uc, errs: errorResponder{log: log}}
}

// Summary godoc
// @Summary      Resumen del panel
// @Description  Conteos, ingresos cobrados y las 5 facturas más recientes.
// @Tags         dashboard
// @Produce      json
// @Success      200  {object}  dto.DashboardSummaryDTO
// @Failure      502  {object}  dto.ErrorResponse
// @Router       /api/dashboard/summary [get]
func (h *DashboardHandler) Summary(c *fiber.Ctx) error {
	out, err := h.uc.GetSummary(c.UserContext())
	if err != nil {
		return h.errs.respond(c, err)
	}
	return c.JSON(out)
}
