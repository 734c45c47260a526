package api

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"ecopack-forecast/internal/forecast"
	"ecopack-forecast/internal/scenario"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// Handler serves the forecast endpoints.
type Handler struct {
	svc     *forecast.Service
	version string
}

// NewHandler creates the forecast HTTP handler.
func NewHandler(svc *forecast.Service, version string) *Handler {
	return &Handler{svc: svc, version: version}
}

// RegisterRoutes implements RouteRegistrar.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)
	e.GET("/materials", h.ListMaterials)
	e.POST("/forecast", h.Forecast)
	e.POST("/forecast/compare", h.Compare)
	e.POST("/forecast/compare/export", h.ExportComparison)
}

// Health reports liveness.
func (h *Handler) Health(c echo.Context) error {
	return SuccessResponse(c, HealthResponse{
		Status:    "ok",
		Version:   h.version,
		Materials: len(h.svc.Catalog().List()),
	})
}

// ListMaterials returns the material catalog and simulation limits.
func (h *Handler) ListMaterials(c echo.Context) error {
	settings := h.svc.Settings()
	list := h.svc.Catalog().List()

	resp := MaterialsResponse{
		Materials:          make([]MaterialResponse, 0, len(list)),
		DefaultSimulations: settings.DefaultSimulations,
		MaxSimulations:     settings.MaxSimulations,
	}
	for _, m := range list {
		resp.Materials = append(resp.Materials, MaterialResponse{
			ID:      m.ID,
			Name:    m.Name,
			CostUSD: m.CostUSD,
			CO2Kg:   m.CO2Kg,
			Default: m.ID == settings.DefaultMaterial,
		})
	}
	return SuccessResponse(c, resp)
}

// Forecast runs one plan and returns the bare Forecast object.
func (h *Handler) Forecast(c echo.Context) error {
	var req ForecastRequest
	if errs := ReadAndValidateRequest(c, &req); errs != nil {
		return BadRequestResponse(c, errs)
	}

	res, err := h.svc.Forecast(c.Request().Context(), req.toService())
	if err != nil {
		return AppErrorResponse(c, h.mapError(c, "plannedVolumes", req.Material, err))
	}
	return c.JSON(http.StatusOK, res.Forecast)
}

// Compare forecasts two plans and returns the aligned comparison.
func (h *Handler) Compare(c echo.Context) error {
	var req CompareRequest
	cmp, err := h.compareWith(c, &req)
	if err != nil {
		return err
	}
	if cmp == nil {
		return nil
	}
	return c.JSON(http.StatusOK, cmp)
}

// ExportComparison returns the comparison table as a CSV attachment.
func (h *Handler) ExportComparison(c echo.Context) error {
	var req CompareRequest
	cmp, err := h.compareWith(c, &req)
	if err != nil {
		return err
	}
	if cmp == nil {
		return nil
	}

	var buf bytes.Buffer
	if err := scenario.WriteCSV(&buf, *cmp); err != nil {
		log.Error().Err(err).Msg("Failed to render comparison CSV")
		return InternalServerErrorResponse(c)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", req.Filename))
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// compareWith returns (nil, nil) once an error response has been written.
func (h *Handler) compareWith(c echo.Context, req *CompareRequest) (*scenario.Comparison, error) {
	if errs := ReadAndValidateRequest(c, req); errs != nil {
		return nil, BadRequestResponse(c, errs)
	}

	cmp, err := h.svc.Compare(c.Request().Context(), req.ScenarioA.toService(), req.ScenarioB.toService())
	if err != nil {
		field, material := "scenarioA", req.ScenarioA.Material
		if errors.Is(err, forecast.ErrScenarioB) {
			field, material = "scenarioB", req.ScenarioB.Material
		}
		appErr := h.mapError(c, field+".plannedVolumes", material, err)
		if appErr.Code == CodeUnknownMaterial {
			appErr.Field = field + ".material"
		}
		return nil, AppErrorResponse(c, appErr)
	}
	return &cmp, nil
}

func (h *Handler) mapError(c echo.Context, planField, material string, err error) *AppError {
	switch {
	case errors.Is(err, forecast.ErrInvalidPlan):
		return InvalidPlanError(planField, err)
	case errors.Is(err, forecast.ErrUnknownMaterial):
		if material == "" {
			material = h.svc.Settings().DefaultMaterial
		}
		return UnknownMaterialError("material", material, err)
	default:
		log.Error().Err(err).Str("path", c.Path()).Msg("Forecast failed")
		return InternalError("forecast failed").WithError(err)
	}
}
