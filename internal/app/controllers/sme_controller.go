package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Freezeyy/CT-BE/internal/app/models/dto"
	"github.com/Freezeyy/CT-BE/internal/app/services"
	"github.com/Freezeyy/CT-BE/internal/middleware"
)

// SMEController exposes the subject-method-expert review surface
type SMEController struct {
	reviewService *services.ReviewService
}

// NewSMEController creates a new SMEController
func NewSMEController(reviewService *services.ReviewService) *SMEController {
	return &SMEController{reviewService: reviewService}
}

// GetWorklist lists the groups assigned to the caller
// @Summary Get the SME worklist
// @Description Retrieves the subject groups assigned to any of the caller's active SME appointments, with subjects and owning applications attached
// @Tags sme
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.SMEWorkItem} "Worklist"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /sme/worklist [get]
func (c *SMEController) GetWorklist(ctx *gin.Context) {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		detail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(detail))
		return
	}

	items, err := c.reviewService.GetWorklist(ctx, userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(items, ""))
}

// GetGroupDetail retrieves one assigned group
// @Summary Get an assigned group's detail
// @Description Retrieves a subject group with its subjects and owning application. The caller must hold a review assignment for the group.
// @Tags sme
// @Produce json
// @Security BearerAuth
// @Param id path int true "Subject group ID"
// @Success 200 {object} dto.APIResponse{data=dto.SMEWorkItem} "Group detail"
// @Failure 400 {object} dto.ErrorResponse "Invalid subject group ID"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Caller holds no assignment for this group"
// @Failure 404 {object} dto.ErrorResponse "Subject group not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /sme/subject-groups/{id} [get]
func (c *SMEController) GetGroupDetail(ctx *gin.Context) {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		detail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(detail))
		return
	}

	groupID, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid subject group ID")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(detail))
		return
	}

	item, err := c.reviewService.GetGroupDetail(ctx, userID, groupID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(item, ""))
}

// ReviewGroup applies a similarity judgment to a whole group
// @Summary Review a group
// @Description Applies the caller's similarity judgment to every subject of the group awaiting review. A score of 80 or above approves them all and records the equivalences in the catalog; a lower score rejects them all.
// @Tags sme
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Subject group ID"
// @Param request body dto.ReviewRequest true "Similarity judgment"
// @Success 200 {object} dto.APIResponse{data=dto.ReviewResult} "Review result"
// @Failure 400 {object} dto.ErrorResponse "Invalid similarity score"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Caller holds no assignment for this group"
// @Failure 404 {object} dto.ErrorResponse "Subject group not found"
// @Failure 409 {object} dto.ErrorResponse "Nothing awaiting review"
// @Failure 422 {object} dto.ErrorResponse "Origin institution or course unresolved"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /sme/subject-groups/{id}/review [post]
func (c *SMEController) ReviewGroup(ctx *gin.Context) {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		detail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(detail))
		return
	}

	groupID, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid subject group ID")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(detail))
		return
	}

	var req dto.ReviewRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid review data").WithDetails(err.Error()).WithField("similarity")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(detail))
		return
	}

	result, err := c.reviewService.ReviewGroup(ctx, userID, groupID, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(result, "Review recorded"))
}
