package controllers

import (
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Freezeyy/CT-BE/internal/app/models/dto"
	"github.com/Freezeyy/CT-BE/internal/app/services"
	"github.com/Freezeyy/CT-BE/internal/middleware"
)

// ApplicationController handles application submission and listings
type ApplicationController struct {
	applicationService *services.ApplicationService
}

// NewApplicationController creates a new ApplicationController
func NewApplicationController(applicationService *services.ApplicationService) *ApplicationController {
	return &ApplicationController{applicationService: applicationService}
}

// Submit handles application submission or draft save
// @Summary Submit a credit-transfer application
// @Description Creates or updates an application from a multipart form. Mappings arrive as a JSON string; the transcript uploads under "transcript" and each syllabus under "syllabi", referenced by filename from the mappings.
// @Tags applications
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param programCode formData string true "Destination program code"
// @Param status formData string true "draft or submitted"
// @Param mappings formData string true "JSON array of course mappings"
// @Param draftId formData int false "Draft application to reconcile"
// @Param originCampusName formData string false "Previous campus name"
// @Param originProgramName formData string false "Previous program name"
// @Param transcript formData file false "Transcript PDF"
// @Param syllabi formData file false "Syllabus files"
// @Success 201 {object} dto.APIResponse{data=dto.SubmitApplicationResponse} "Application saved"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 422 {object} dto.ErrorResponse "No active coordinator for the program"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /applications [post]
func (c *ApplicationController) Submit(ctx *gin.Context) {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		detail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(detail))
		return
	}

	var req dto.SubmitApplicationRequest
	if err := ctx.ShouldBind(&req); err != nil {
		detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid application data").WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(detail))
		return
	}

	transcript, err := ctx.FormFile("transcript")
	if err != nil {
		transcript = nil
	}

	syllabi := make(map[string]*multipart.FileHeader)
	if form, err := ctx.MultipartForm(); err == nil && form != nil {
		for _, file := range form.File["syllabi"] {
			syllabi[file.Filename] = file
		}
	}

	response, err := c.applicationService.Submit(ctx, userID, req, transcript, syllabi)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(response, response.Message))
}

// GetDraft retrieves the caller's current draft
// @Summary Get the current draft
// @Description Retrieves the calling student's most recent draft application with its subject tree
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=models.Application} "Draft application"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "No draft found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /applications/draft [get]
func (c *ApplicationController) GetDraft(ctx *gin.Context) {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		detail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(detail))
		return
	}

	draft, err := c.applicationService.GetDraft(ctx, userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(draft, ""))
}

// ListMine lists the caller's applications
// @Summary List own applications
// @Description Retrieves the calling student's applications, newest first
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.Application} "Applications"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /applications/mine [get]
func (c *ApplicationController) ListMine(ctx *gin.Context) {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		detail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(detail))
		return
	}

	applications, err := c.applicationService.ListForStudent(ctx, userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(applications, ""))
}

// ListAssigned lists submitted applications assigned to the calling coordinator
// @Summary List assigned applications
// @Description Retrieves the submitted applications assigned to the calling coordinator, with the owning students attached
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.Application} "Applications"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Caller is not an active coordinator"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /applications/assigned [get]
func (c *ApplicationController) ListAssigned(ctx *gin.Context) {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		detail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(detail))
		return
	}

	applications, err := c.applicationService.ListForCoordinator(ctx, userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(applications, ""))
}

// GetByID retrieves an application with its subject tree
// @Summary Get application by ID
// @Description Retrieves an application with its subject groups, past subjects and linked catalog entries
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Success 200 {object} dto.APIResponse{data=models.Application} "Application"
// @Failure 400 {object} dto.ErrorResponse "Invalid application ID"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Application not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /applications/{id} [get]
func (c *ApplicationController) GetByID(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid application ID")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(detail))
		return
	}

	application, err := c.applicationService.GetApplication(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(application, ""))
}

// UpdateMetadata lets a coordinator correct application metadata
// @Summary Update application metadata
// @Description Updates origin institution, campus and program names, notes or status. The origin fields feed the catalog matcher.
// @Tags applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Param request body dto.UpdateApplicationRequest true "Fields to update"
// @Success 200 {object} dto.APIResponse{data=models.Application} "Updated application"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Application not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /applications/{id} [patch]
func (c *ApplicationController) UpdateMetadata(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid application ID")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(detail))
		return
	}

	var req dto.UpdateApplicationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid update data").WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(detail))
		return
	}

	application, err := c.applicationService.UpdateMetadata(ctx, id, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(application, "Application updated"))
}
