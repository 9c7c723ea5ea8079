package handler

import (
	housingapp "github.com/constructora/backend/internal/application/housing"
	"github.com/constructora/backend/internal/domain/shared"
	"github.com/constructora/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// ProjectHandler handles project endpoints
type ProjectHandler struct {
	BaseHandler
	projects *housingapp.ProjectService
}

// NewProjectHandler creates a new ProjectHandler
func NewProjectHandler(projects *housingapp.ProjectService) *ProjectHandler {
	return &ProjectHandler{projects: projects}
}

// ProjectListQuery are the query parameters of GET /projects
type ProjectListQuery struct {
	Search   string `form:"search"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size" binding:"omitempty,max=200"`
}

// Create handles POST /projects
func (h *ProjectHandler) Create(c *gin.Context) {
	var req housingapp.CreateProjectRequest
	if !h.bindJSON(c, &req) {
		return
	}
	project, err := h.projects.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, project)
}

// List handles GET /projects
func (h *ProjectHandler) List(c *gin.Context) {
	var q ProjectListQuery
	if !h.bindQuery(c, &q) {
		return
	}
	page, pageSize := dto.Pagination(q.Page, q.PageSize)
	projects, total, err := h.projects.List(c.Request.Context(), shared.Filter{
		Page:     page,
		PageSize: pageSize,
		Search:   q.Search,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.SuccessWithMeta(c, projects, total, page, pageSize)
}

// GetByID handles GET /projects/:id
func (h *ProjectHandler) GetByID(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	project, err := h.projects.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, project)
}

// Rename handles PUT /projects/:id
func (h *ProjectHandler) Rename(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req housingapp.RenameProjectRequest
	if !h.bindJSON(c, &req) {
		return
	}
	project, err := h.projects.Rename(c.Request.Context(), id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, project)
}

// Delete handles DELETE /projects/:id
func (h *ProjectHandler) Delete(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.projects.Delete(c.Request.Context(), id); err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.NoContent(c)
}

// HouseHandler handles house endpoints
type HouseHandler struct {
	BaseHandler
	houses *housingapp.HouseService
}

// NewHouseHandler creates a new HouseHandler
func NewHouseHandler(houses *housingapp.HouseService) *HouseHandler {
	return &HouseHandler{houses: houses}
}

// Create handles POST /houses
func (h *HouseHandler) Create(c *gin.Context) {
	var req housingapp.CreateHouseRequest
	if !h.bindJSON(c, &req) {
		return
	}
	house, err := h.houses.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, house)
}

// List handles GET /houses?proyectoId=&disponible=
func (h *HouseHandler) List(c *gin.Context) {
	var filter housingapp.HouseListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	var ok bool
	if filter.ProjectID, ok = h.queryID(c, "proyectoId"); !ok {
		return
	}
	filter.Page, filter.PageSize = dto.Pagination(filter.Page, filter.PageSize)
	houses, total, err := h.houses.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.SuccessWithMeta(c, houses, total, filter.Page, filter.PageSize)
}

// GetByID handles GET /houses/:id
func (h *HouseHandler) GetByID(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	house, err := h.houses.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, house)
}

// UpdatePrice handles PUT /houses/:id
func (h *HouseHandler) UpdatePrice(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req housingapp.UpdateHousePriceRequest
	if !h.bindJSON(c, &req) {
		return
	}
	house, err := h.houses.UpdatePrice(c.Request.Context(), id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, house)
}

// Delete handles DELETE /houses/:id
func (h *HouseHandler) Delete(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.houses.Delete(c.Request.Context(), id); err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.NoContent(c)
}
