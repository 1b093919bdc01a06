package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Freezeyy/CT-BE/internal/app/models/dto"
	"github.com/Freezeyy/CT-BE/internal/app/services"
	"github.com/Freezeyy/CT-BE/internal/middleware"
)

// CatalogController exposes the pre-approved equivalence catalog
type CatalogController struct {
	catalogService *services.CatalogService
}

// NewCatalogController creates a new CatalogController
func NewCatalogController(catalogService *services.CatalogService) *CatalogController {
	return &CatalogController{catalogService: catalogService}
}

// Create creates a single catalog entry
// @Summary Create a catalog entry
// @Description Creates an active pre-approved equivalence. Destination course fields default to the course record; similarity defaults to 100.
// @Tags catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateCatalogEntryRequest true "Catalog entry"
// @Success 201 {object} dto.APIResponse{data=models.CatalogEntry} "Entry created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Failure 409 {object} dto.ErrorResponse "An active entry already exists for this key"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /catalog [post]
func (c *CatalogController) Create(ctx *gin.Context) {
	var req dto.CreateCatalogEntryRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid catalog entry data").WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(detail))
		return
	}

	entry, err := c.catalogService.CreateEntry(ctx, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(entry, "Catalog entry created"))
}

// BulkCreate creates many entries sharing one origin context
// @Summary Bulk-create catalog entries
// @Description Creates many entries sharing one origin institution and program. Each mapping is created independently; failures are reported per mapping and do not roll back siblings.
// @Tags catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.BulkCreateCatalogRequest true "Bulk catalog request"
// @Success 201 {object} dto.APIResponse{data=dto.BulkCreateCatalogResult} "Creation result with per-mapping errors"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /catalog/bulk [post]
func (c *CatalogController) BulkCreate(ctx *gin.Context) {
	var req dto.BulkCreateCatalogRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid bulk catalog data").WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(detail))
		return
	}

	result, err := c.catalogService.BulkCreate(ctx, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(result, "Bulk creation completed"))
}

// List browses the catalog
// @Summary List catalog entries
// @Description Retrieves catalog entries narrowed by origin institution, campus name, origin program name or destination program. Inactive entries are excluded unless requested.
// @Tags catalog
// @Produce json
// @Security BearerAuth
// @Param originInstitutionId query int false "Origin institution ID"
// @Param originCampusName query string false "Origin campus name substring"
// @Param originProgramName query string false "Origin program name substring"
// @Param programId query int false "Destination program ID"
// @Param includeInactive query bool false "Include retired entries"
// @Success 200 {object} dto.APIResponse{data=[]models.CatalogEntry} "Catalog entries"
// @Failure 400 {object} dto.ErrorResponse "Invalid filter"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /catalog [get]
func (c *CatalogController) List(ctx *gin.Context) {
	var filter dto.CatalogFilter
	if err := ctx.ShouldBindQuery(&filter); err != nil {
		detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid catalog filter").WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(detail))
		return
	}

	entries, err := c.catalogService.List(ctx, filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(entries, ""))
}

// Get retrieves one catalog entry
// @Summary Get a catalog entry by ID
// @Description Retrieves a single equivalence entry, active or retired
// @Tags catalog
// @Produce json
// @Security BearerAuth
// @Param id path int true "Catalog entry ID"
// @Success 200 {object} dto.APIResponse{data=models.CatalogEntry} "Catalog entry"
// @Failure 400 {object} dto.ErrorResponse "Invalid entry ID"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Entry not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /catalog/{id} [get]
func (c *CatalogController) Get(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid catalog entry ID")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(detail))
		return
	}

	entry, err := c.catalogService.GetEntry(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(entry, ""))
}

// Deactivate retires a catalog entry
// @Summary Deactivate a catalog entry
// @Description Retires an entry so the matcher stops using it, optionally recording the entry superseding it. Subjects already approved through the entry keep their link.
// @Tags catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Catalog entry ID"
// @Param request body dto.DeactivateCatalogEntryRequest false "Replacement reference"
// @Success 200 {object} dto.APIResponse "Entry deactivated"
// @Failure 400 {object} dto.ErrorResponse "Invalid entry ID"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Entry not found or already inactive"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /catalog/{id} [delete]
func (c *CatalogController) Deactivate(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid catalog entry ID")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(detail))
		return
	}

	var req dto.DeactivateCatalogEntryRequest
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid deactivation data").WithDetails(err.Error())
			ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(detail))
			return
		}
	}

	if err := c.catalogService.Deactivate(ctx, id, req); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(nil, "Catalog entry deactivated"))
}

// UploadDocument attaches a supporting PDF to a catalog entry
// @Summary Upload a catalog document
// @Description Stores a supporting PDF for a catalog entry and records its path
// @Tags catalog
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Catalog entry ID"
// @Param document formData file true "PDF document"
// @Success 200 {object} dto.APIResponse "Document stored"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Entry not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /catalog/{id}/document [post]
func (c *CatalogController) UploadDocument(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid catalog entry ID")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(detail))
		return
	}

	file, err := ctx.FormFile("document")
	if err != nil {
		detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Document file is required")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(detail))
		return
	}

	path, err := c.catalogService.AttachDocument(ctx, id, file)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(gin.H{"documentPath": path}, "Document stored"))
}
