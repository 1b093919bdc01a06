package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Freezeyy/CT-BE/internal/app/models/dto"
	"github.com/Freezeyy/CT-BE/internal/app/services"
	"github.com/Freezeyy/CT-BE/internal/middleware"
)

// AdjudicationController exposes the coordinator-side adjudication actions
type AdjudicationController struct {
	adjudicationService *services.AdjudicationService
}

// NewAdjudicationController creates a new AdjudicationController
func NewAdjudicationController(adjudicationService *services.AdjudicationService) *AdjudicationController {
	return &AdjudicationController{adjudicationService: adjudicationService}
}

func groupIDParam(ctx *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid subject group ID")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(detail))
		return 0, false
	}
	return id, true
}

// CheckMatches checks a group against the catalog
// @Summary Check catalog matches for a group
// @Description Runs the matcher over a group's pending subjects without changing anything
// @Tags adjudication
// @Produce json
// @Security BearerAuth
// @Param id path int true "Subject group ID"
// @Success 200 {object} dto.APIResponse{data=dto.MatchCheckResult} "Match check result"
// @Failure 400 {object} dto.ErrorResponse "Invalid subject group ID"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Subject group not found"
// @Failure 409 {object} dto.ErrorResponse "No pending subjects"
// @Failure 422 {object} dto.ErrorResponse "Origin institution is not set"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /subject-groups/{id}/check [get]
func (c *AdjudicationController) CheckMatches(ctx *gin.Context) {
	groupID, ok := groupIDParam(ctx)
	if !ok {
		return
	}

	result, err := c.adjudicationService.CheckMatches(ctx, groupID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(result, ""))
}

// ApproveGroup approves a fully matched group via the catalog
// @Summary Approve a group via the catalog
// @Description Approves every pending subject of the group against the catalog. Fails when any pending subject lacks a match; a group is never partially approved.
// @Tags adjudication
// @Produce json
// @Security BearerAuth
// @Param id path int true "Subject group ID"
// @Success 200 {object} dto.APIResponse{data=dto.ApproveResult} "Approval result"
// @Failure 400 {object} dto.ErrorResponse "Invalid subject group ID"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Subject group not found"
// @Failure 409 {object} dto.ErrorResponse "Not all subjects match, or nothing is pending"
// @Failure 422 {object} dto.ErrorResponse "Origin institution is not set"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /subject-groups/{id}/approve [post]
func (c *AdjudicationController) ApproveGroup(ctx *gin.Context) {
	groupID, ok := groupIDParam(ctx)
	if !ok {
		return
	}

	result, err := c.adjudicationService.ApproveGroupViaCatalog(ctx, groupID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(result, "Group approved via catalog"))
}

// RouteGroup routes a group to its subject method expert
// @Summary Route a group to its SME
// @Description Routes every reviewable subject of the group to the active SME of its destination course and records review assignments. Routing the same group again refreshes the assignments instead of duplicating them.
// @Tags adjudication
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Subject group ID"
// @Param request body dto.RouteToSMERequest false "Optional coordinator note"
// @Success 200 {object} dto.APIResponse{data=dto.RouteToSMEResult} "Routing result"
// @Failure 400 {object} dto.ErrorResponse "Invalid subject group ID"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Subject group not found"
// @Failure 409 {object} dto.ErrorResponse "Nothing left to route"
// @Failure 422 {object} dto.ErrorResponse "Course unresolved or no active SME"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /subject-groups/{id}/route-to-sme [post]
func (c *AdjudicationController) RouteGroup(ctx *gin.Context) {
	groupID, ok := groupIDParam(ctx)
	if !ok {
		return
	}

	var req dto.RouteToSMERequest
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid routing data").WithDetails(err.Error())
			ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(detail))
			return
		}
	}

	result, err := c.adjudicationService.RouteGroupToSME(ctx, groupID, req.Note)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(result, "Group routed to SME"))
}

// ApproveSubject approves a single past subject via the catalog
// @Summary Approve one subject via the catalog
// @Description Approves a single past subject against the catalog. Prefer the group endpoint; this exists for callers predating group adjudication.
// @Tags adjudication
// @Produce json
// @Security BearerAuth
// @Param id path int true "Past subject ID"
// @Success 200 {object} dto.APIResponse{data=dto.ApproveResult} "Approval result"
// @Failure 400 {object} dto.ErrorResponse "Invalid past subject ID"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Past subject not found"
// @Failure 409 {object} dto.ErrorResponse "No catalog match or already decided"
// @Failure 422 {object} dto.ErrorResponse "Origin institution is not set"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /past-subjects/{id}/approve [post]
func (c *AdjudicationController) ApproveSubject(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid past subject ID")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(detail))
		return
	}

	result, err := c.adjudicationService.ApproveSubjectViaCatalog(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(result, "Subject approved via catalog"))
}

// RouteSubject routes a single past subject to its SME
// @Summary Route one subject to its SME
// @Description Routes a single past subject to the active SME of its group's destination course
// @Tags adjudication
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Past subject ID"
// @Param request body dto.RouteToSMERequest false "Optional coordinator note"
// @Success 200 {object} dto.APIResponse{data=dto.RouteToSMEResult} "Routing result"
// @Failure 400 {object} dto.ErrorResponse "Invalid past subject ID"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Past subject not found"
// @Failure 409 {object} dto.ErrorResponse "Subject already decided"
// @Failure 422 {object} dto.ErrorResponse "Course unresolved or no active SME"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /past-subjects/{id}/route-to-sme [post]
func (c *AdjudicationController) RouteSubject(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid past subject ID")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(detail))
		return
	}

	var req dto.RouteToSMERequest
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid routing data").WithDetails(err.Error())
			ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(detail))
			return
		}
	}

	result, err := c.adjudicationService.RouteSubjectToSME(ctx, id, req.Note)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(result, "Subject routed to SME"))
}
