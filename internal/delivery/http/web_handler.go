package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"optionstracker/internal/domain"
	"optionstracker/internal/middleware"
	"optionstracker/internal/table"
	"optionstracker/internal/usecase"
)

type WebHandler struct {
	templates *template.Template
	dashboard *usecase.DashboardService
	logger    *zap.Logger
}

func NewWebHandler(templates *template.Template, dashboard *usecase.DashboardService, logger *zap.Logger) *WebHandler {
	return &WebHandler{
		templates: templates,
		dashboard: dashboard,
		logger:    logger,
	}
}

type dashboardPage struct {
	Grids         []table.Grid
	Alert         string
	ContractTypes []string
	Directions    []string
}

// GET / - Redirect to dashboard
func (h *WebHandler) HandleIndex(c echo.Context) error {
	return c.Redirect(http.StatusFound, "/dashboard")
}

// GET /dashboard - Fetch both buckets and render the full page
func (h *WebHandler) HandleDashboard(c echo.Context) error {
	sessionID, err := middleware.GetSessionID(c)
	if err != nil {
		return err
	}

	page := dashboardPage{
		ContractTypes: []string{domain.ContractCall, domain.ContractPut},
		Directions:    []string{domain.DirectionLong, domain.DirectionShort},
	}

	st, err := h.dashboard.Load(c.Request().Context(), sessionID)
	if err != nil {
		page.Alert = alertMessage(err)
	}

	page.Grids, err = h.dashboard.Grids(st)
	if err != nil {
		return err
	}
	return h.render(c, http.StatusOK, "dashboard", page)
}

// GET /dashboard/tables - Both tables from the session snapshot
func (h *WebHandler) HandleTables(c echo.Context) error {
	sessionID, err := middleware.GetSessionID(c)
	if err != nil {
		return err
	}
	return h.renderTables(c, sessionID)
}

// POST /dashboard/tables/:table/sort?key=K - Header click
func (h *WebHandler) HandleSort(c echo.Context) error {
	sessionID, err := middleware.GetSessionID(c)
	if err != nil {
		return err
	}

	key := strings.TrimSpace(c.QueryParam("key"))
	if key == "" {
		return h.alert(c, http.StatusBadRequest, "Missing sort key", false)
	}

	grid, err := h.dashboard.Sort(c.Request().Context(), sessionID, domain.TableID(c.Param("table")), domain.Field(key))
	if errors.Is(err, domain.ErrUnknownTable) {
		return h.alert(c, http.StatusNotFound, "Unknown table", false)
	}
	if err != nil {
		return err
	}
	return h.render(c, http.StatusOK, "table", grid)
}

// POST /dashboard/positions - Submit the add-position form
func (h *WebHandler) HandleCreate(c echo.Context) error {
	sessionID, err := middleware.GetSessionID(c)
	if err != nil {
		return err
	}

	var draft domain.PositionDraft
	if err := c.Bind(&draft); err != nil {
		return h.alert(c, http.StatusBadRequest, "Invalid form submission", false)
	}

	_, err = h.dashboard.Create(c.Request().Context(), sessionID, draft)
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		return h.alert(c, http.StatusUnprocessableEntity, verr.Error(), true)
	case err != nil:
		return h.alert(c, http.StatusBadGateway, alertMessage(err), false)
	}
	return h.renderTables(c, sessionID)
}

// DELETE /dashboard/positions/:id - Delete one position
func (h *WebHandler) HandleDelete(c echo.Context) error {
	sessionID, err := middleware.GetSessionID(c)
	if err != nil {
		return err
	}

	id := domain.PositionID(c.Param("id"))
	if _, err := h.dashboard.Delete(c.Request().Context(), sessionID, id); err != nil {
		return h.alert(c, http.StatusBadGateway, alertMessage(err), false)
	}
	return h.renderTables(c, sessionID)
}

// GET /api/tables/:table - Rendered grid as JSON
func (h *WebHandler) HandleAPITable(c echo.Context) error {
	sessionID, err := middleware.GetSessionID(c)
	if err != nil {
		return InternalServerErrorResponse(c, "Session unavailable", err)
	}

	st, err := h.dashboard.View(c.Request().Context(), sessionID)
	if err != nil && !errors.Is(err, domain.ErrFetchPositions) {
		return InternalServerErrorResponse(c, "Failed to load view state", err)
	}

	grid, err := h.dashboard.Grid(st, domain.TableID(c.Param("table")))
	if errors.Is(err, domain.ErrUnknownTable) {
		return NotFoundResponse(c, "Table not found")
	}
	if err != nil {
		return InternalServerErrorResponse(c, "Failed to render table", err)
	}
	return SuccessResponse(c, grid)
}

func (h *WebHandler) renderTables(c echo.Context, sessionID uuid.UUID) error {
	st, err := h.dashboard.View(c.Request().Context(), sessionID)
	if err != nil {
		h.logger.Warn("rendering tables from partial state", zap.Error(err))
	}

	grids, err := h.dashboard.Grids(st)
	if err != nil {
		return err
	}
	return h.render(c, http.StatusOK, "tables", grids)
}

func (h *WebHandler) render(c echo.Context, status int, name string, data interface{}) error {
	var buf bytes.Buffer
	if err := h.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("failed to render %s: %w", name, err)
	}
	return c.HTMLBlob(status, buf.Bytes())
}

// alert swaps an error message into the page's alert area. blocking also
// raises a browser alert the user has to dismiss.
func (h *WebHandler) alert(c echo.Context, status int, message string, blocking bool) error {
	header := c.Response().Header()
	header.Set("HX-Retarget", "#alerts")
	header.Set("HX-Reswap", "innerHTML")
	if blocking {
		trigger, err := json.Marshal(map[string]string{"showAlert": message})
		if err != nil {
			return err
		}
		header.Set("HX-Trigger", string(trigger))
	}
	return h.render(c, status, "alert", message)
}

func alertMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrFetchPositions):
		return "Could not load positions. Showing the last known data."
	case errors.Is(err, domain.ErrAddPosition):
		return "Could not add the position. Please try again."
	case errors.Is(err, domain.ErrDeletePosition):
		return "Could not delete the position. Please try again."
	}
	return "Something went wrong. Please try again."
}

// RegisterWebRoutes registers the dashboard pages, fragments and JSON view
func RegisterWebRoutes(e *echo.Echo, handler *WebHandler, sessions echo.MiddlewareFunc) {
	e.GET("/", handler.HandleIndex)

	dashboard := e.Group("/dashboard", sessions)
	{
		dashboard.GET("", handler.HandleDashboard)
		dashboard.GET("/tables", handler.HandleTables)
		dashboard.POST("/tables/:table/sort", handler.HandleSort)
		dashboard.POST("/positions", handler.HandleCreate)
		dashboard.DELETE("/positions/:id", handler.HandleDelete)
	}

	api := e.Group("/api", sessions)
	api.GET("/tables/:table", handler.HandleAPITable)
}
