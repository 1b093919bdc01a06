package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Freezeyy/CT-BE/internal/app/models"
	"github.com/Freezeyy/CT-BE/internal/app/models/dto"
	"github.com/Freezeyy/CT-BE/internal/app/repositories"
	"github.com/Freezeyy/CT-BE/internal/pkg/apperrors"
	"github.com/Freezeyy/CT-BE/internal/pkg/logger"
)

// GroupStore is the subject-group state the adjudication engine reads and
// transitions.
type GroupStore interface {
	GetGroupByID(ctx context.Context, groupID int64) (*models.SubjectGroup, error)
	GetGroupContext(ctx context.Context, groupID int64) (*models.ApplicationContext, error)
	ListByGroup(ctx context.Context, groupID int64) ([]*models.PastSubject, error)
	GetPastSubjectByID(ctx context.Context, id int64) (*models.PastSubject, error)
	UpdateGroupCourse(ctx context.Context, groupID, courseID int64) error
	ApproveViaCatalog(ctx context.Context, subjectID, entryID int64, similarity int) (bool, error)
	RouteToSME(ctx context.Context, subjectIDs []int64, assignment *models.ReviewAssignment, coordinatorNote *string) error
}

// SMEDirectory locates active subject method experts.
type SMEDirectory interface {
	GetActiveSMEByCourse(ctx context.Context, courseID int64) (*models.SubjectMethodExpert, error)
}

// CourseDirectory resolves destination courses by display name.
type CourseDirectory interface {
	GetCourseByName(ctx context.Context, programID int64, name string) (*models.Course, error)
}

// AssignmentReader reads review assignments back after routing.
type AssignmentReader interface {
	ListByGroup(ctx context.Context, groupID int64) ([]*models.ReviewAssignment, error)
}

// AdjudicationService runs the coordinator-side adjudication actions: checking
// a group against the catalog, approving a fully matched group, and routing a
// group to its subject method expert. Every action treats the group as one
// unit.
type AdjudicationService struct {
	subjects    GroupStore
	staff       SMEDirectory
	courses     CourseDirectory
	assignments AssignmentReader
	matcher     *TemplateMatcher
}

// NewAdjudicationService creates a new adjudication service
func NewAdjudicationService(subjects GroupStore, staff SMEDirectory, courses CourseDirectory, assignments AssignmentReader, matcher *TemplateMatcher) *AdjudicationService {
	return &AdjudicationService{
		subjects:    subjects,
		staff:       staff,
		courses:     courses,
		assignments: assignments,
		matcher:     matcher,
	}
}

// CheckMatches runs the matcher over a group's pending subjects without
// changing anything. Returns ErrMissingOriginInstitution when the application
// has no resolvable origin institution, and ErrNoPendingSubjects when nothing
// in the group is still pending.
func (s *AdjudicationService) CheckMatches(ctx context.Context, groupID int64) (*dto.MatchCheckResult, error) {
	appCtx, err := s.subjects.GetGroupContext(ctx, groupID)
	if err != nil {
		return nil, err
	}

	institutionID, err := s.matcher.ResolveInstitution(ctx, appCtx)
	if err != nil {
		return nil, err
	}

	pending, err := s.listPending(ctx, groupID)
	if err != nil {
		return nil, err
	}

	result := &dto.MatchCheckResult{
		SubjectGroupID: groupID,
		AllMatched:     true,
	}

	for _, subject := range pending {
		entry, err := s.matcher.FindMatch(ctx, institutionID, appCtx.ProgramID, appCtx.OriginProgramName, subject)
		if err != nil {
			return nil, err
		}

		result.PerSubject = append(result.PerSubject, dto.SubjectMatch{
			PastSubject: subject,
			Match:       entry,
		})
		if entry != nil {
			result.AnyMatched = true
		} else {
			result.AllMatched = false
		}
	}

	return result, nil
}

// ApproveGroupViaCatalog approves every pending subject of a group against
// the catalog. The matches are re-computed at approval time rather than
// trusted from an earlier check, so a catalog change between check and
// approval cannot produce stale approvals. Fails with ErrNotFullyMatched if
// any pending subject lacks a match; partial approval of a group is never
// performed.
func (s *AdjudicationService) ApproveGroupViaCatalog(ctx context.Context, groupID int64) (*dto.ApproveResult, error) {
	group, err := s.subjects.GetGroupByID(ctx, groupID)
	if err != nil {
		return nil, err
	}

	appCtx, err := s.subjects.GetGroupContext(ctx, groupID)
	if err != nil {
		return nil, err
	}

	institutionID, err := s.matcher.ResolveInstitution(ctx, appCtx)
	if err != nil {
		return nil, err
	}

	pending, err := s.listPending(ctx, groupID)
	if err != nil {
		return nil, err
	}

	matches := make([]*models.CatalogEntry, len(pending))
	for i, subject := range pending {
		entry, err := s.matcher.FindMatch(ctx, institutionID, appCtx.ProgramID, appCtx.OriginProgramName, subject)
		if err != nil {
			return nil, err
		}
		if entry == nil {
			return nil, apperrors.NewCustomError(apperrors.ErrNotFullyMatched, "").
				WithDetails(map[string]interface{}{
					"unmatchedSubjectId": subject.ID,
					"originCode":         subject.OriginCode,
				})
		}
		matches[i] = entry
	}

	if group.CourseID == nil {
		if err := s.subjects.UpdateGroupCourse(ctx, groupID, matches[0].CourseID); err != nil {
			return nil, err
		}
	}

	result := &dto.ApproveResult{SubjectGroupID: groupID}
	for i, subject := range pending {
		entry := matches[i]
		updated, err := s.subjects.ApproveViaCatalog(ctx, subject.ID, entry.ID, entry.Similarity)
		if err != nil {
			return nil, err
		}
		if !updated {
			// Lost a race with another decision; leave the subject as is.
			logger.Warn().
				Int64("pastSubjectId", subject.ID).
				Msg("Subject no longer pending at approval time")
			continue
		}

		subject.ApprovalStatus = models.ApprovalApprovedTemplate
		subject.CatalogEntryID = &entry.ID
		similarity := entry.Similarity
		subject.Similarity = &similarity
		subject.NeedsSMEReview = false
		subject.CatalogEntry = entry
		result.ApprovedSubjects = append(result.ApprovedSubjects, subject)
	}

	logger.Info().
		Int64("subjectGroupId", groupID).
		Int("approved", len(result.ApprovedSubjects)).
		Msg("Group approved via catalog")

	return result, nil
}

// RouteGroupToSME routes every reviewable subject of a group to the active
// SME of its destination course. The course is resolved from the group link
// first, then from any catalog match, then by looking the group's name up
// among the program's courses. Routing works even when the origin institution
// is unknown; unmatched subjects are precisely the ones an SME must judge.
func (s *AdjudicationService) RouteGroupToSME(ctx context.Context, groupID int64, note string) (*dto.RouteToSMEResult, error) {
	group, err := s.subjects.GetGroupByID(ctx, groupID)
	if err != nil {
		return nil, err
	}

	appCtx, err := s.subjects.GetGroupContext(ctx, groupID)
	if err != nil {
		return nil, err
	}

	subjects, err := s.listReviewable(ctx, groupID)
	if err != nil {
		return nil, err
	}

	courseID, err := s.resolveCourse(ctx, group, appCtx, subjects)
	if err != nil {
		return nil, err
	}

	sme, err := s.staff.GetActiveSMEByCourse(ctx, courseID)
	if err != nil {
		if errors.Is(err, repositories.ErrSMENotFound) {
			return nil, apperrors.NewCustomError(apperrors.ErrNoActiveSME, "").
				WithDetails(map[string]interface{}{"courseId": courseID})
		}
		return nil, err
	}

	if group.CourseID == nil {
		if err := s.subjects.UpdateGroupCourse(ctx, groupID, courseID); err != nil {
			return nil, err
		}
	}

	var coordinatorNote *string
	if note != "" {
		coordinatorNote = &note
	}

	subjectIDs := make([]int64, len(subjects))
	for i, subject := range subjects {
		subjectIDs[i] = subject.ID
	}

	assignment := &models.ReviewAssignment{
		SMEID:               sme.ID,
		SubjectGroupID:      groupID,
		ApplicationID:       appCtx.ApplicationID,
		OriginInstitutionID: appCtx.OriginInstitutionID,
	}
	if err := s.subjects.RouteToSME(ctx, subjectIDs, assignment, coordinatorNote); err != nil {
		return nil, err
	}

	for _, subject := range subjects {
		subject.ApprovalStatus = models.ApprovalNeedsSMEReview
		subject.NeedsSMEReview = true
		if coordinatorNote != nil {
			subject.CoordinatorNotes = coordinatorNote
		}
	}

	assignments, err := s.assignments.ListByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	logger.Info().
		Int64("subjectGroupId", groupID).
		Int64("smeId", sme.ID).
		Int64("courseId", courseID).
		Int("routed", len(subjects)).
		Msg("Group routed to SME")

	return &dto.RouteToSMEResult{
		SubjectGroupID: groupID,
		SMEID:          sme.ID,
		CourseID:       courseID,
		Assignments:    assignments,
		RoutedSubjects: subjects,
	}, nil
}

// ApproveSubjectViaCatalog approves a single past subject against the
// catalog. Kept for callers predating group adjudication; a subject with no
// match fails with ErrNotFullyMatched like a one-member group would.
func (s *AdjudicationService) ApproveSubjectViaCatalog(ctx context.Context, subjectID int64) (*dto.ApproveResult, error) {
	subject, err := s.subjects.GetPastSubjectByID(ctx, subjectID)
	if err != nil {
		return nil, err
	}

	appCtx, err := s.subjects.GetGroupContext(ctx, subject.SubjectGroupID)
	if err != nil {
		return nil, err
	}

	institutionID, err := s.matcher.ResolveInstitution(ctx, appCtx)
	if err != nil {
		return nil, err
	}

	entry, err := s.matcher.FindMatch(ctx, institutionID, appCtx.ProgramID, appCtx.OriginProgramName, subject)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, apperrors.NewCustomError(apperrors.ErrNotFullyMatched, "").
			WithDetails(map[string]interface{}{
				"unmatchedSubjectId": subject.ID,
				"originCode":         subject.OriginCode,
			})
	}

	updated, err := s.subjects.ApproveViaCatalog(ctx, subject.ID, entry.ID, entry.Similarity)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, apperrors.ErrNoPendingSubjects
	}

	subject.ApprovalStatus = models.ApprovalApprovedTemplate
	subject.CatalogEntryID = &entry.ID
	similarity := entry.Similarity
	subject.Similarity = &similarity
	subject.NeedsSMEReview = false
	subject.CatalogEntry = entry

	return &dto.ApproveResult{
		SubjectGroupID:   subject.SubjectGroupID,
		ApprovedSubjects: []*models.PastSubject{subject},
	}, nil
}

// RouteSubjectToSME routes a single past subject to the SME of its group's
// destination course
func (s *AdjudicationService) RouteSubjectToSME(ctx context.Context, subjectID int64, note string) (*dto.RouteToSMEResult, error) {
	subject, err := s.subjects.GetPastSubjectByID(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	if subject.ApprovalStatus.IsTerminal() {
		return nil, apperrors.ErrNoPendingSubjects
	}

	group, err := s.subjects.GetGroupByID(ctx, subject.SubjectGroupID)
	if err != nil {
		return nil, err
	}

	appCtx, err := s.subjects.GetGroupContext(ctx, group.ID)
	if err != nil {
		return nil, err
	}

	courseID, err := s.resolveCourse(ctx, group, appCtx, []*models.PastSubject{subject})
	if err != nil {
		return nil, err
	}

	sme, err := s.staff.GetActiveSMEByCourse(ctx, courseID)
	if err != nil {
		if errors.Is(err, repositories.ErrSMENotFound) {
			return nil, apperrors.NewCustomError(apperrors.ErrNoActiveSME, "").
				WithDetails(map[string]interface{}{"courseId": courseID})
		}
		return nil, err
	}

	if group.CourseID == nil {
		if err := s.subjects.UpdateGroupCourse(ctx, group.ID, courseID); err != nil {
			return nil, err
		}
	}

	var coordinatorNote *string
	if note != "" {
		coordinatorNote = &note
	}

	assignment := &models.ReviewAssignment{
		SMEID:               sme.ID,
		SubjectGroupID:      group.ID,
		ApplicationID:       appCtx.ApplicationID,
		OriginInstitutionID: appCtx.OriginInstitutionID,
	}
	if err := s.subjects.RouteToSME(ctx, []int64{subject.ID}, assignment, coordinatorNote); err != nil {
		return nil, err
	}

	subject.ApprovalStatus = models.ApprovalNeedsSMEReview
	subject.NeedsSMEReview = true
	if coordinatorNote != nil {
		subject.CoordinatorNotes = coordinatorNote
	}

	assignments, err := s.assignments.ListByGroup(ctx, group.ID)
	if err != nil {
		return nil, err
	}

	return &dto.RouteToSMEResult{
		SubjectGroupID: group.ID,
		SMEID:          sme.ID,
		CourseID:       courseID,
		Assignments:    assignments,
		RoutedSubjects: []*models.PastSubject{subject},
	}, nil
}

// listPending returns the group's pending subjects, failing with
// ErrNoPendingSubjects when the group has none.
func (s *AdjudicationService) listPending(ctx context.Context, groupID int64) ([]*models.PastSubject, error) {
	subjects, err := s.subjects.ListByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	var pending []*models.PastSubject
	for _, subject := range subjects {
		if subject.ApprovalStatus == models.ApprovalPending {
			pending = append(pending, subject)
		}
	}

	if len(pending) == 0 {
		return nil, apperrors.ErrNoPendingSubjects
	}

	return pending, nil
}

// listReviewable returns the group's subjects still open to routing: pending
// ones and ones already awaiting SME review, so re-routing refreshes rather
// than fails.
func (s *AdjudicationService) listReviewable(ctx context.Context, groupID int64) ([]*models.PastSubject, error) {
	subjects, err := s.subjects.ListByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	var reviewable []*models.PastSubject
	for _, subject := range subjects {
		if !subject.ApprovalStatus.IsTerminal() {
			reviewable = append(reviewable, subject)
		}
	}

	if len(reviewable) == 0 {
		return nil, apperrors.ErrNoPendingSubjects
	}

	return reviewable, nil
}

// resolveCourse determines the destination course of a group: the explicit
// group link first, then the course of any catalog match among the given
// subjects, then a name lookup among the program's courses.
func (s *AdjudicationService) resolveCourse(ctx context.Context, group *models.SubjectGroup, appCtx *models.ApplicationContext, subjects []*models.PastSubject) (int64, error) {
	if group.CourseID != nil {
		return *group.CourseID, nil
	}

	if institutionID, err := s.matcher.ResolveInstitution(ctx, appCtx); err == nil {
		for _, subject := range subjects {
			entry, err := s.matcher.FindMatch(ctx, institutionID, appCtx.ProgramID, appCtx.OriginProgramName, subject)
			if err != nil {
				return 0, err
			}
			if entry != nil {
				return entry.CourseID, nil
			}
		}
	} else if !errors.Is(err, apperrors.ErrMissingOriginInstitution) {
		return 0, err
	}

	course, err := s.courses.GetCourseByName(ctx, appCtx.ProgramID, group.Name)
	if err != nil {
		if errors.Is(err, repositories.ErrCourseNotFound) {
			return 0, apperrors.NewCustomError(apperrors.ErrUnresolvedCourse, "").
				WithDetails(map[string]interface{}{
					"subjectGroupId": group.ID,
					"groupName":      group.Name,
				})
		}
		return 0, fmt.Errorf("error resolving destination course: %w", err)
	}

	return course.ID, nil
}
