package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/invoice-manager/internal/application/dto"
	"github.com/jhoicas/invoice-manager/internal/application/settings"
)

// SettingsHandler perfil de la empresa emisora.
type SettingsHandler struct {
	svc  *settings.Service
	errs errorResponder
}

// NewSettingsHandler construye el handler.
func NewSettingsHandler(svc *settings.Service, log zerolog.Logger) *SettingsHandler {
	return &SettingsHandler{svc: svc, errs: errorResponder{log: log}}
}

// Get godoc
// @Summary      Ajustes de empresa
// @Tags         settings
// @Produce      json
// @Success      200  {object}  dto.CompanySettingsDTO
// @Router       /api/settings/company [get]
func (h *SettingsHandler) Get(c *fiber.Ctx) error {
	return c.JSON(settings.ToDTO(h.svc.Current()))
}

// Put godoc
// @Summary      Guardar ajustes de empresa
// @Tags         settings
// @Accept       json
// @Produce      json
// @Param        body  body      dto.CompanySettingsDTO  true  "Ajustes"
// @Success      200   {object}  dto.CompanySettingsDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/settings/company [put]
func (h *SettingsHandler) Put(c *fiber.Ctx) error {
	var in dto.CompanySettingsDTO
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	saved, err := h.svc.Save(c.UserContext(), in)
	if err != nil {
		return h.errs.respond(c, err)
	}
	return c.JSON(settings.ToDTO(saved))
}

// Reload godoc
// @Summary      Releer ajustes del almacén
// @Tags         settings
// @Produce      json
// @Success      200  {object}  dto.CompanySettingsDTO
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/settings/company/reload [post]
func (h *SettingsHandler) Reload(c *fiber.Ctx) error {
	current, err := h.svc.Reload(c.UserContext())
	if err != nil {
		return h.errs.respond(c, err)
	}
	return c.JSON(settings.ToDTO(current))
}

// Defaults godoc
// @Summary      Ajustes por defecto
// @Tags         settings
// @Produce      json
// @Success      200  {object}  dto.CompanySettingsDTO
// @Router       /api/settings/company/defaults [get]
func (h *SettingsHandler) Defaults(c *fiber.Ctx) error {
	return c.JSON(settings.ToDTO(h.svc.Defaults()))
}
