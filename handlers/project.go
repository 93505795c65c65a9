package handlers

import (
	"errors"
	"net/http"

	"github.com/Triet1705/client-hub-backend/middleware/bearer"
	"github.com/Triet1705/client-hub-backend/services/logging"
	"github.com/Triet1705/client-hub-backend/services/project"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type ProjectHandler struct {
	projects *project.Service
	logger   *logging.Service
}

func NewProjectHandler(projects *project.Service, logger *logging.Service) *ProjectHandler {
	return &ProjectHandler{projects: projects, logger: logger}
}

type createProjectRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Budget      float64 `json:"budget"`
}

func (h *ProjectHandler) Create(c echo.Context) error {
	principal, ok := bearer.GetPrincipal(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	var req createProjectRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Title == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "title is required")
	}

	p := &project.Project{
		Title:       req.Title,
		Description: req.Description,
		Budget:      req.Budget,
		Status:      project.StatusOpen,
		ClientID:    principal.UserID,
	}

	if err := h.projects.Create(c.Request().Context(), p); err != nil {
		h.logger.Errorf("failed to create project: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to create project")
	}

	return c.JSON(http.StatusCreated, p)
}

func (h *ProjectHandler) List(c echo.Context) error {
	projects, err := h.projects.List(c.Request().Context())
	if err != nil {
		h.logger.Errorf("failed to list projects: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list projects")
	}

	return c.JSON(http.StatusOK, map[string]any{"projects": projects})
}

func (h *ProjectHandler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid project id")
	}

	p, err := h.projects.FindByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, project.ErrProjectNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "project not found")
		}
		h.logger.Errorf("failed to load project %s: %v", id, err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load project")
	}

	return c.JSON(http.StatusOK, p)
}
