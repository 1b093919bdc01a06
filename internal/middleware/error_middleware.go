package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Freezeyy/CT-BE/internal/app/models/dto"
	"github.com/Freezeyy/CT-BE/internal/app/repositories"
	"github.com/Freezeyy/CT-BE/internal/app/services"
	"github.com/Freezeyy/CT-BE/internal/pkg/apperrors"
	"github.com/Freezeyy/CT-BE/internal/pkg/logger"
)

// HandleAPIError maps service and repository errors to HTTP responses.
// Adjudication errors carry their CT_* codes and any context details the
// services attached.
func HandleAPIError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrMissingOriginInstitution):
		respondError(c, http.StatusUnprocessableEntity, dto.ErrorCodeMissingOriginInstitution, err)
	case errors.Is(err, apperrors.ErrNotFullyMatched):
		respondError(c, http.StatusConflict, dto.ErrorCodeNotFullyMatched, err)
	case errors.Is(err, apperrors.ErrUnresolvedCourse):
		respondError(c, http.StatusUnprocessableEntity, dto.ErrorCodeUnresolvedCourse, err)
	case errors.Is(err, apperrors.ErrNoActiveSME):
		respondError(c, http.StatusUnprocessableEntity, dto.ErrorCodeNoActiveSME, err)
	case errors.Is(err, apperrors.ErrNotAssignedReviewer):
		respondError(c, http.StatusForbidden, dto.ErrorCodeNotAssignedReviewer, err)
	case errors.Is(err, apperrors.ErrInvalidScore):
		respondError(c, http.StatusBadRequest, dto.ErrorCodeInvalidScore, err)
	case errors.Is(err, apperrors.ErrDuplicateCatalogEntry):
		respondError(c, http.StatusConflict, dto.ErrorCodeDuplicateCatalogEntry, err)
	case errors.Is(err, apperrors.ErrNoPendingSubjects):
		respondError(c, http.StatusConflict, dto.ErrorCodeNoPendingSubjects, err)
	case errors.Is(err, apperrors.ErrNoActiveCoordinator):
		respondError(c, http.StatusUnprocessableEntity, dto.ErrorCodeNoActiveCoordinator, err)

	case errors.Is(err, apperrors.ErrInvalidCredentials):
		respondError(c, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials, err)
	case errors.Is(err, apperrors.ErrTokenExpired):
		respondError(c, http.StatusUnauthorized, dto.ErrorCodeExpiredToken, err)
	case errors.Is(err, apperrors.ErrTokenInvalid):
		respondError(c, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, err)
	case errors.Is(err, apperrors.ErrPermissionDenied), errors.Is(err, services.ErrNotOwner):
		respondError(c, http.StatusForbidden, dto.ErrorCodeForbidden, err)
	case errors.Is(err, apperrors.ErrEmailAlreadyExists):
		respondError(c, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, err)
	case errors.Is(err, apperrors.ErrValidationFailed),
		errors.Is(err, apperrors.ErrBadRequest),
		errors.Is(err, services.ErrInvalidMappings),
		errors.Is(err, services.ErrMissingSyllabus),
		errors.Is(err, services.ErrNotDraft):
		respondError(c, http.StatusBadRequest, dto.ErrorCodeValidationFailed, err)

	case isNotFound(err):
		respondError(c, http.StatusNotFound, dto.ErrorCodeResourceNotFound, err)

	default:
		logger.Error().Err(err).Str("path", c.FullPath()).Msg("Unhandled API error")
		detail := dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error")
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(detail))
	}
}

func respondError(c *gin.Context, status int, code dto.ErrorCode, err error) {
	detail := dto.NewErrorDetail(code, err.Error())
	if details := apperrors.Details(err); details != nil {
		detail = detail.WithDetails(details)
	}
	c.JSON(status, dto.NewErrorResponse(detail))
}

func isNotFound(err error) bool {
	for _, target := range []error{
		apperrors.ErrResourceNotFound,
		repositories.ErrUserNotFound,
		repositories.ErrStudentNotFound,
		repositories.ErrInstitutionNotFound,
		repositories.ErrProgramNotFound,
		repositories.ErrCourseNotFound,
		repositories.ErrCoordinatorNotFound,
		repositories.ErrSMENotFound,
		repositories.ErrApplicationNotFound,
		repositories.ErrSubjectGroupNotFound,
		repositories.ErrPastSubjectNotFound,
		repositories.ErrCatalogEntryNotFound,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
