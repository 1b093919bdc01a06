// Package services implements the credit-transfer business logic on top of
// the repository layer: the adjudication engine (catalog matching, group
// approval, SME routing), SME review with template learning, catalog
// management, application submission and authentication.
package services

import (
	"github.com/Freezeyy/CT-BE/internal/app/repositories"
	"github.com/Freezeyy/CT-BE/internal/pkg/auth"
	"github.com/Freezeyy/CT-BE/internal/pkg/filestorage"
)

// Services holds all the service instances
type Services struct {
	AuthService         *AuthService
	ApplicationService  *ApplicationService
	AdjudicationService *AdjudicationService
	ReviewService       *ReviewService
	CatalogService      *CatalogService
	TemplateMatcher     *TemplateMatcher
}

// NewServices initializes all services
func NewServices(repos *repositories.Repositories, jwtService *auth.JWTService, fileStorage filestorage.FileStorage) *Services {
	matcher := NewTemplateMatcher(repos.CatalogRepository, repos.InstitutionRepository)

	return &Services{
		AuthService: NewAuthService(repos.UserRepository, jwtService),
		ApplicationService: NewApplicationService(
			repos.ApplicationRepository,
			repos.UserRepository,
			repos.ProgramRepository,
			repos.StaffRepository,
			fileStorage,
		),
		AdjudicationService: NewAdjudicationService(
			repos.SubjectRepository,
			repos.StaffRepository,
			repos.ProgramRepository,
			repos.AssignmentRepository,
			matcher,
		),
		ReviewService: NewReviewService(
			repos.SubjectRepository,
			repos.StaffRepository,
			repos.AssignmentRepository,
			repos.ApplicationRepository,
			matcher,
		),
		CatalogService: NewCatalogService(
			repos.CatalogRepository,
			repos.ProgramRepository,
			fileStorage,
		),
		TemplateMatcher: matcher,
	}
}
