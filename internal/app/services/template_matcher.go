package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Freezeyy/CT-BE/internal/app/models"
	"github.com/Freezeyy/CT-BE/internal/app/repositories"
	"github.com/Freezeyy/CT-BE/internal/pkg/apperrors"
	"github.com/Freezeyy/CT-BE/internal/pkg/logger"
)

// CatalogMatchFinder finds active catalog entries for an origin subject.
type CatalogMatchFinder interface {
	FindActiveMatches(ctx context.Context, institutionID, programID int64, originProgramName, originCode string) ([]*models.CatalogEntry, error)
}

// InstitutionResolver resolves origin institutions by name.
type InstitutionResolver interface {
	GetByName(ctx context.Context, name string) (*models.OriginInstitution, error)
}

// TemplateMatcher decides whether a past subject is covered by a pre-approved
// catalog equivalence. It never writes anything; callers act on its answers.
type TemplateMatcher struct {
	catalog      CatalogMatchFinder
	institutions InstitutionResolver
}

// NewTemplateMatcher creates a new template matcher
func NewTemplateMatcher(catalog CatalogMatchFinder, institutions InstitutionResolver) *TemplateMatcher {
	return &TemplateMatcher{
		catalog:      catalog,
		institutions: institutions,
	}
}

// ResolveInstitution determines the origin institution of an application: the
// direct reference wins, otherwise the campus name is looked up
// case-insensitively. Returns ErrMissingOriginInstitution when neither
// resolves.
func (m *TemplateMatcher) ResolveInstitution(ctx context.Context, appCtx *models.ApplicationContext) (int64, error) {
	if appCtx.OriginInstitutionID != nil {
		return *appCtx.OriginInstitutionID, nil
	}

	if appCtx.OriginCampusName == nil || *appCtx.OriginCampusName == "" {
		return 0, apperrors.ErrMissingOriginInstitution
	}

	institution, err := m.institutions.GetByName(ctx, *appCtx.OriginCampusName)
	if err != nil {
		if errors.Is(err, repositories.ErrInstitutionNotFound) {
			return 0, apperrors.ErrMissingOriginInstitution
		}
		return 0, fmt.Errorf("error resolving origin institution: %w", err)
	}

	return institution.ID, nil
}

// FindMatch returns the active catalog entry covering a past subject, or nil
// when none matches. The origin code comparison is exact and case-sensitive;
// the program name comparison is a case-insensitive substring match in either
// direction. When several entries qualify, the oldest wins.
func (m *TemplateMatcher) FindMatch(ctx context.Context, institutionID, programID int64, originProgramName string, subject *models.PastSubject) (*models.CatalogEntry, error) {
	entries, err := m.catalog.FindActiveMatches(ctx, institutionID, programID, originProgramName, subject.OriginCode)
	if err != nil {
		return nil, fmt.Errorf("error finding catalog matches: %w", err)
	}

	if len(entries) == 0 {
		return nil, nil
	}

	if len(entries) > 1 {
		logger.Warn().
			Int64("pastSubjectId", subject.ID).
			Str("originCode", subject.OriginCode).
			Int("matches", len(entries)).
			Int64("selectedEntryId", entries[0].ID).
			Msg("Multiple active catalog entries match one subject")
	}

	return entries[0], nil
}
