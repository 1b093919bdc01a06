package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/Freezeyy/CT-BE/internal/app/models"
	"github.com/Freezeyy/CT-BE/internal/app/models/dto"
	"github.com/Freezeyy/CT-BE/internal/app/repositories"
	"github.com/Freezeyy/CT-BE/internal/pkg/apperrors"
	"github.com/Freezeyy/CT-BE/internal/pkg/filestorage"
	"github.com/Freezeyy/CT-BE/internal/pkg/logger"
)

// CatalogEntryStore is the catalog state the catalog service manages.
type CatalogEntryStore interface {
	Create(ctx context.Context, entry *models.CatalogEntry) error
	GetByID(ctx context.Context, id int64) (*models.CatalogEntry, error)
	FindActiveByKey(ctx context.Context, key models.CatalogKey) (*models.CatalogEntry, error)
	List(ctx context.Context, filter dto.CatalogFilter) ([]*models.CatalogEntry, error)
	Deactivate(ctx context.Context, id int64, replacedByEntryID *int64) error
	SetDocumentPath(ctx context.Context, id int64, documentPath string) error
}

// CourseReader reads destination courses for catalog defaults.
type CourseReader interface {
	GetCourseByID(ctx context.Context, id int64) (*models.Course, error)
}

// CatalogService manages the pre-approved equivalence catalog directly:
// manual entry creation, bulk import, browsing and retirement. Catalog growth
// through SME approvals lives in the review path instead.
type CatalogService struct {
	catalog     CatalogEntryStore
	courses     CourseReader
	fileStorage filestorage.FileStorage
}

// NewCatalogService creates a new catalog service
func NewCatalogService(catalog CatalogEntryStore, courses CourseReader, fileStorage filestorage.FileStorage) *CatalogService {
	return &CatalogService{
		catalog:     catalog,
		courses:     courses,
		fileStorage: fileStorage,
	}
}

// CreateEntry creates a single active catalog entry. Destination course
// fields default to the course record; similarity defaults to 100 since a
// manually curated equivalence is pre-approved by definition. Returns
// ErrDuplicateCatalogEntry carrying the conflicting entry when an active
// entry with the same key exists.
func (s *CatalogService) CreateEntry(ctx context.Context, req dto.CreateCatalogEntryRequest) (*models.CatalogEntry, error) {
	if req.Similarity != nil && (*req.Similarity < 0 || *req.Similarity > 100) {
		return nil, apperrors.ErrInvalidScore
	}

	course, err := s.courses.GetCourseByID(ctx, req.CourseID)
	if err != nil {
		return nil, err
	}
	if course.ProgramID != req.ProgramID {
		return nil, apperrors.NewCustomError(apperrors.ErrBadRequest, "course does not belong to the given program")
	}

	entry := &models.CatalogEntry{
		OriginInstitutionID: req.OriginInstitutionID,
		OriginProgramName:   strings.TrimSpace(req.OriginProgramName),
		ProgramID:           req.ProgramID,
		CourseID:            req.CourseID,
		OriginCode:          strings.TrimSpace(req.OriginCode),
		OriginName:          strings.TrimSpace(req.OriginName),
		OriginCredit:        req.OriginCredit,
		CourseCode:          course.Code,
		CourseName:          course.Name,
		CourseCredit:        &course.Credit,
		Similarity:          100,
		DocumentPath:        req.DocumentPath,
		IntakeYear:          req.IntakeYear,
	}
	if req.Similarity != nil {
		entry.Similarity = *req.Similarity
	}
	if req.CourseCode != nil {
		entry.CourseCode = *req.CourseCode
	}
	if req.CourseName != nil {
		entry.CourseName = *req.CourseName
	}
	if req.CourseCredit != nil {
		entry.CourseCredit = req.CourseCredit
	}

	if err := s.catalog.Create(ctx, entry); err != nil {
		if errors.Is(err, repositories.ErrCatalogEntryExists) {
			return nil, s.duplicateError(ctx, entry.Key())
		}
		return nil, err
	}

	logger.Info().
		Int64("entryId", entry.ID).
		Int64("courseId", entry.CourseID).
		Str("originCode", entry.OriginCode).
		Msg("Catalog entry created")

	return entry, nil
}

// BulkCreate creates many entries sharing one origin context. Each mapping is
// created independently; failures are collected per mapping and do not roll
// back siblings.
func (s *CatalogService) BulkCreate(ctx context.Context, req dto.BulkCreateCatalogRequest) (*dto.BulkCreateCatalogResult, error) {
	result := &dto.BulkCreateCatalogResult{}

	for _, mapping := range req.Mappings {
		entry, err := s.CreateEntry(ctx, dto.CreateCatalogEntryRequest{
			OriginInstitutionID: req.OriginInstitutionID,
			OriginProgramName:   req.OriginProgramName,
			ProgramID:           req.ProgramID,
			CourseID:            mapping.CourseID,
			OriginCode:          mapping.OriginCode,
			OriginName:          mapping.OriginName,
			OriginCredit:        mapping.OriginCredit,
			CourseCode:          mapping.CourseCode,
			CourseName:          mapping.CourseName,
			CourseCredit:        mapping.CourseCredit,
			Similarity:          mapping.Similarity,
			DocumentPath:        req.DocumentPath,
			IntakeYear:          req.IntakeYear,
		})
		if err != nil {
			result.Errors = append(result.Errors, dto.BulkMappingError{
				Mapping: mapping,
				Error:   err.Error(),
			})
			continue
		}
		result.Created = append(result.Created, entry)
	}

	return result, nil
}

// GetEntry retrieves a catalog entry by ID
func (s *CatalogService) GetEntry(ctx context.Context, id int64) (*models.CatalogEntry, error) {
	return s.catalog.GetByID(ctx, id)
}

// List retrieves catalog entries narrowed by the filter
func (s *CatalogService) List(ctx context.Context, filter dto.CatalogFilter) ([]*models.CatalogEntry, error) {
	return s.catalog.List(ctx, filter)
}

// Deactivate retires a catalog entry so the matcher stops using it.
// Subjects already approved through the entry keep their link.
func (s *CatalogService) Deactivate(ctx context.Context, id int64, req dto.DeactivateCatalogEntryRequest) error {
	if req.ReplacedByEntryID != nil {
		if _, err := s.catalog.GetByID(ctx, *req.ReplacedByEntryID); err != nil {
			return err
		}
	}

	if err := s.catalog.Deactivate(ctx, id, req.ReplacedByEntryID); err != nil {
		return err
	}

	logger.Info().Int64("entryId", id).Msg("Catalog entry deactivated")
	return nil
}

// AttachDocument stores a supporting document for a catalog entry and records
// its path
func (s *CatalogService) AttachDocument(ctx context.Context, entryID int64, file *multipart.FileHeader) (string, error) {
	if _, err := s.catalog.GetByID(ctx, entryID); err != nil {
		return "", err
	}

	if ext := strings.ToLower(filepath.Ext(file.Filename)); ext != ".pdf" {
		return "", apperrors.NewCustomError(apperrors.ErrValidationFailed, "catalog documents must be PDF files")
	}

	path, err := s.fileStorage.SaveFileWithPath(file, "catalog")
	if err != nil {
		return "", fmt.Errorf("error storing catalog document: %w", err)
	}

	if err := s.catalog.SetDocumentPath(ctx, entryID, path); err != nil {
		if delErr := s.fileStorage.DeleteFile(path); delErr != nil {
			logger.Warn().Err(delErr).Str("path", path).Msg("Failed to clean up orphaned catalog document")
		}
		return "", err
	}

	return path, nil
}

// duplicateError builds the duplicate-entry error with the conflicting entry
// attached so the caller can reuse it.
func (s *CatalogService) duplicateError(ctx context.Context, key models.CatalogKey) error {
	details := map[string]interface{}{
		"originInstitutionId": key.OriginInstitutionID,
		"originProgramName":   key.OriginProgramName,
		"programId":           key.ProgramID,
		"courseId":            key.CourseID,
		"originCode":          key.OriginCode,
	}

	existing, err := s.catalog.FindActiveByKey(ctx, key)
	if err == nil {
		details["existingEntryId"] = existing.ID
		details["existingEntry"] = existing
	}

	return apperrors.NewCustomError(apperrors.ErrDuplicateCatalogEntry, "").WithDetails(details)
}
