package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/Freezeyy/CT-BE/internal/app/models"
	"github.com/Freezeyy/CT-BE/internal/app/models/dto"
	"github.com/Freezeyy/CT-BE/internal/app/repositories"
	"github.com/Freezeyy/CT-BE/internal/pkg/apperrors"
	"github.com/Freezeyy/CT-BE/internal/pkg/filestorage"
	"github.com/Freezeyy/CT-BE/internal/pkg/logger"
)

// Application service errors
var (
	ErrInvalidMappings = errors.New("mappings payload is invalid")
	ErrMissingSyllabus = errors.New("every past subject needs a syllabus on submission")
	ErrNotDraft        = errors.New("application is not a draft")
	ErrNotOwner        = errors.New("application does not belong to this student")
)

// ApplicationService handles the student side of credit transfer: submitting
// applications, saving and resuming drafts, and the listings both sides read.
type ApplicationService struct {
	applicationRepo *repositories.ApplicationRepository
	userRepo        *repositories.UserRepository
	programRepo     *repositories.ProgramRepository
	staffRepo       *repositories.StaffRepository
	fileStorage     filestorage.FileStorage
}

// NewApplicationService creates a new application service
func NewApplicationService(
	applicationRepo *repositories.ApplicationRepository,
	userRepo *repositories.UserRepository,
	programRepo *repositories.ProgramRepository,
	staffRepo *repositories.StaffRepository,
	fileStorage filestorage.FileStorage,
) *ApplicationService {
	return &ApplicationService{
		applicationRepo: applicationRepo,
		userRepo:        userRepo,
		programRepo:     programRepo,
		staffRepo:       staffRepo,
		fileStorage:     fileStorage,
	}
}

// Submit creates or updates a credit-transfer application from a multipart
// submission. Files are written before any database change commits, so a
// failed upload aborts the submission instead of leaving dangling references.
// When a draft ID is given the draft is reconciled in place: unchanged
// subjects keep their rows and syllabus files, removed ones are deleted, new
// ones are added.
func (s *ApplicationService) Submit(ctx context.Context, studentUserID int64, req dto.SubmitApplicationRequest, transcript *multipart.FileHeader, syllabi map[string]*multipart.FileHeader) (*dto.SubmitApplicationResponse, error) {
	student, err := s.userRepo.GetStudentByUserID(ctx, studentUserID)
	if err != nil {
		return nil, err
	}

	program, err := s.programRepo.GetProgramByCode(ctx, req.ProgramCode)
	if err != nil {
		return nil, err
	}

	coordinator, err := s.staffRepo.GetActiveCoordinatorByProgram(ctx, program.ID)
	if err != nil {
		if errors.Is(err, repositories.ErrCoordinatorNotFound) {
			return nil, apperrors.NewCustomError(apperrors.ErrNoActiveCoordinator, "").
				WithDetails(map[string]interface{}{"programId": program.ID})
		}
		return nil, err
	}

	var mappings []dto.MappingInput
	if err := json.Unmarshal([]byte(req.Mappings), &mappings); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMappings, err)
	}
	if len(mappings) == 0 {
		return nil, fmt.Errorf("%w: at least one mapping is required", ErrInvalidMappings)
	}

	status := models.ApplicationStatus(req.Status)
	submitting := status == models.ApplicationStatusSubmitted

	application := &models.Application{
		Status:              status,
		OriginInstitutionID: student.OriginInstitutionID,
		OriginCampusName:    req.OriginCampusName,
		OriginProgramName:   req.OriginProgramName,
		StudentID:           student.ID,
		CoordinatorID:       coordinator.ID,
		ProgramID:           program.ID,
	}

	if transcript != nil {
		path, err := s.fileStorage.SaveFileWithPath(transcript, "transcripts")
		if err != nil {
			return nil, fmt.Errorf("error storing transcript: %w", err)
		}
		application.TranscriptPath = &path
	}

	for _, mapping := range mappings {
		group := &models.SubjectGroup{
			Name:     strings.TrimSpace(mapping.CurrentSubject),
			CourseID: mapping.CourseID,
		}

		for _, input := range mapping.PastSubjects {
			subject := &models.PastSubject{
				OriginCode:   strings.TrimSpace(input.Code),
				OriginName:   strings.TrimSpace(input.Name),
				OriginGrade:  strings.TrimSpace(input.Grade),
				OriginCredit: input.Credit,
			}

			if input.Syllabus != "" {
				file, ok := syllabi[input.Syllabus]
				if !ok {
					return nil, fmt.Errorf("%w: syllabus file %q was not uploaded", ErrInvalidMappings, input.Syllabus)
				}
				path, err := s.fileStorage.SaveFileWithPath(file, "syllabi")
				if err != nil {
					return nil, fmt.Errorf("error storing syllabus: %w", err)
				}
				filename := file.Filename
				subject.SyllabusPath = &path
				subject.OriginalFilename = &filename
			}

			group.PastSubjects = append(group.PastSubjects, subject)
		}

		application.SubjectGroups = append(application.SubjectGroups, group)
	}

	if req.DraftID != nil {
		if err := s.reconcileDraft(ctx, student.ID, *req.DraftID, application); err != nil {
			return nil, err
		}
	} else {
		if submitting {
			if err := requireSyllabi(application.SubjectGroups); err != nil {
				return nil, err
			}
		}
		if err := s.applicationRepo.Create(ctx, application); err != nil {
			return nil, err
		}
	}

	message := "Application saved as draft"
	if submitting {
		message = "Application submitted successfully"
	}

	logger.Info().
		Int64("applicationId", application.ID).
		Int64("studentId", student.ID).
		Str("status", string(application.Status)).
		Int("groups", len(application.SubjectGroups)).
		Msg("Application saved")

	return &dto.SubmitApplicationResponse{
		ApplicationID: application.ID,
		Status:        string(application.Status),
		Message:       message,
	}, nil
}

// reconcileDraft merges the incoming subject tree into an existing draft.
// Groups are matched by name and subjects by origin code within their group;
// matched subjects keep their IDs and stored syllabus files.
func (s *ApplicationService) reconcileDraft(ctx context.Context, studentID, draftID int64, application *models.Application) error {
	draft, err := s.applicationRepo.GetWithDetails(ctx, draftID)
	if err != nil {
		return err
	}
	if draft.StudentID != studentID {
		return ErrNotOwner
	}
	if draft.Status != models.ApplicationStatusDraft {
		return ErrNotDraft
	}

	existingGroups := make(map[string]*models.SubjectGroup, len(draft.SubjectGroups))
	for _, group := range draft.SubjectGroups {
		existingGroups[strings.ToLower(group.Name)] = group
	}

	var deleteSubjectIDs, deleteGroupIDs []int64
	keptGroups := make(map[int64]bool)

	for _, group := range application.SubjectGroups {
		existing, ok := existingGroups[strings.ToLower(group.Name)]
		if !ok {
			continue
		}

		group.ID = existing.ID
		keptGroups[existing.ID] = true
		if group.CourseID == nil {
			group.CourseID = existing.CourseID
		}

		existingSubjects := make(map[string]*models.PastSubject, len(existing.PastSubjects))
		for _, subject := range existing.PastSubjects {
			existingSubjects[subject.OriginCode] = subject
		}

		keptSubjects := make(map[int64]bool)
		for _, subject := range group.PastSubjects {
			if prior, ok := existingSubjects[subject.OriginCode]; ok {
				subject.ID = prior.ID
				subject.SubjectGroupID = prior.SubjectGroupID
				keptSubjects[prior.ID] = true
				if subject.SyllabusPath == nil {
					subject.SyllabusPath = prior.SyllabusPath
					subject.OriginalFilename = prior.OriginalFilename
				}
			}
		}

		for _, subject := range existing.PastSubjects {
			if !keptSubjects[subject.ID] {
				deleteSubjectIDs = append(deleteSubjectIDs, subject.ID)
			}
		}
	}

	for _, group := range draft.SubjectGroups {
		if !keptGroups[group.ID] {
			deleteGroupIDs = append(deleteGroupIDs, group.ID)
		}
	}

	application.ID = draft.ID
	if application.TranscriptPath == nil {
		application.TranscriptPath = draft.TranscriptPath
	}
	if application.OriginInstitutionID == nil {
		application.OriginInstitutionID = draft.OriginInstitutionID
	}
	if application.OriginCampusName == nil {
		application.OriginCampusName = draft.OriginCampusName
	}
	if application.OriginProgramName == nil {
		application.OriginProgramName = draft.OriginProgramName
	}
	application.Notes = draft.Notes

	if application.Status == models.ApplicationStatusSubmitted {
		if err := requireSyllabi(application.SubjectGroups); err != nil {
			return err
		}
	}

	return s.applicationRepo.UpdateDraft(ctx, application, deleteSubjectIDs, deleteGroupIDs)
}

func requireSyllabi(groups []*models.SubjectGroup) error {
	for _, group := range groups {
		for _, subject := range group.PastSubjects {
			if subject.SyllabusPath == nil {
				return fmt.Errorf("%w: %s has none", ErrMissingSyllabus, subject.OriginCode)
			}
		}
	}
	return nil
}

// GetDraft retrieves the student's current draft with its subject tree, or
// repositories.ErrApplicationNotFound when there is none
func (s *ApplicationService) GetDraft(ctx context.Context, studentUserID int64) (*models.Application, error) {
	student, err := s.userRepo.GetStudentByUserID(ctx, studentUserID)
	if err != nil {
		return nil, err
	}

	return s.applicationRepo.GetDraftByStudent(ctx, student.ID)
}

// GetApplication retrieves an application with its full subject tree
func (s *ApplicationService) GetApplication(ctx context.Context, id int64) (*models.Application, error) {
	return s.applicationRepo.GetWithDetails(ctx, id)
}

// ListForStudent retrieves the calling student's applications
func (s *ApplicationService) ListForStudent(ctx context.Context, studentUserID int64) ([]*models.Application, error) {
	student, err := s.userRepo.GetStudentByUserID(ctx, studentUserID)
	if err != nil {
		return nil, err
	}

	return s.applicationRepo.ListByStudent(ctx, student.ID)
}

// ListForCoordinator retrieves the submitted applications assigned to the
// calling coordinator
func (s *ApplicationService) ListForCoordinator(ctx context.Context, coordinatorUserID int64) ([]*models.Application, error) {
	coordinator, err := s.staffRepo.GetActiveCoordinatorByUser(ctx, coordinatorUserID)
	if err != nil {
		return nil, err
	}

	return s.applicationRepo.ListByCoordinator(ctx, coordinator.ID)
}

// UpdateMetadata lets a coordinator correct application-level origin fields
// and notes. The origin data feeds the matcher, so fixing a missing campus or
// program name here is how a stuck group becomes checkable.
func (s *ApplicationService) UpdateMetadata(ctx context.Context, id int64, req dto.UpdateApplicationRequest) (*models.Application, error) {
	var status *models.ApplicationStatus
	if req.Status != nil {
		value := models.ApplicationStatus(*req.Status)
		if value != models.ApplicationStatusDraft && value != models.ApplicationStatusSubmitted {
			return nil, apperrors.NewCustomError(apperrors.ErrValidationFailed, "invalid application status")
		}
		status = &value
	}

	err := s.applicationRepo.UpdateMetadata(ctx, id, status,
		req.OriginInstitutionID, req.OriginCampusName, req.OriginProgramName, req.Notes)
	if err != nil {
		return nil, err
	}

	return s.applicationRepo.GetWithDetails(ctx, id)
}
