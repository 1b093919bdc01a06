package services

import (
	"context"

	"github.com/Freezeyy/CT-BE/internal/app/models"
	"github.com/Freezeyy/CT-BE/internal/app/models/dto"
	"github.com/Freezeyy/CT-BE/internal/pkg/apperrors"
	"github.com/Freezeyy/CT-BE/internal/pkg/logger"
)

// approvalThreshold is the minimum similarity percentage at which an SME
// judgment approves a subject. Scores below it reject.
const approvalThreshold = 80

// ReviewStore is the subject state the SME review path reads and finalizes.
type ReviewStore interface {
	GetGroupByID(ctx context.Context, groupID int64) (*models.SubjectGroup, error)
	GetGroupContext(ctx context.Context, groupID int64) (*models.ApplicationContext, error)
	ListByGroup(ctx context.Context, groupID int64) ([]*models.PastSubject, error)
	ApproveWithCatalogEntry(ctx context.Context, subject *models.PastSubject, entry *models.CatalogEntry, smeNotes *string) (*models.CatalogEntry, error)
	Reject(ctx context.Context, subjectID int64, similarity int, smeNotes *string) error
}

// SMEAppointments lists a user's active SME appointments.
type SMEAppointments interface {
	GetActiveSMEsByUser(ctx context.Context, userID int64) ([]*models.SubjectMethodExpert, error)
}

// AssignmentStore reads review assignments for authorization and worklists.
type AssignmentStore interface {
	HasAssignmentForGroup(ctx context.Context, smeIDs []int64, groupID int64) (bool, error)
	HasAssignmentForSubjects(ctx context.Context, smeIDs, subjectIDs []int64) (bool, error)
	ListGroupIDsForSMEs(ctx context.Context, smeIDs []int64) ([]int64, error)
	ListIDsByGroupForSMEs(ctx context.Context, smeIDs []int64, groupID int64) ([]int64, error)
}

// ApplicationReader reads applications for worklists and records resolved
// origin institutions.
type ApplicationReader interface {
	GetByID(ctx context.Context, id int64) (*models.Application, error)
	SetOriginInstitution(ctx context.Context, id, institutionID int64) error
}

// ReviewService runs the SME side of adjudication: worklists and similarity
// judgments. A judgment applies to every routed subject of the group at once,
// and approvals feed the catalog so the same equivalence is automatic next
// time.
type ReviewService struct {
	subjects     ReviewStore
	staff        SMEAppointments
	assignments  AssignmentStore
	applications ApplicationReader
	matcher      *TemplateMatcher
}

// NewReviewService creates a new review service
func NewReviewService(subjects ReviewStore, staff SMEAppointments, assignments AssignmentStore, applications ApplicationReader, matcher *TemplateMatcher) *ReviewService {
	return &ReviewService{
		subjects:     subjects,
		staff:        staff,
		assignments:  assignments,
		applications: applications,
		matcher:      matcher,
	}
}

// ReviewGroup applies an SME's similarity judgment to every subject of the
// group awaiting review. A score at or above the threshold approves them all
// and records each equivalence in the catalog; a lower score rejects them
// all. The caller must hold a review assignment for one of the subjects
// awaiting review.
func (s *ReviewService) ReviewGroup(ctx context.Context, reviewerUserID, groupID int64, req dto.ReviewRequest) (*dto.ReviewResult, error) {
	if req.Similarity == nil || *req.Similarity < 0 || *req.Similarity > 100 {
		return nil, apperrors.ErrInvalidScore
	}
	similarity := *req.Similarity

	smeIDs, err := s.activeSMEIDs(ctx, reviewerUserID)
	if err != nil {
		return nil, err
	}

	subjects, err := s.subjects.ListByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	// Pending siblings that were never routed share the group's fate: the
	// judgment covers every subject of the group not already settled.
	var routed []*models.PastSubject
	for _, subject := range subjects {
		switch subject.ApprovalStatus {
		case models.ApprovalNeedsSMEReview, models.ApprovalPending:
			routed = append(routed, subject)
		}
	}
	if len(routed) == 0 {
		assigned, err := s.assignments.HasAssignmentForGroup(ctx, smeIDs, groupID)
		if err != nil {
			return nil, err
		}
		if !assigned {
			return nil, apperrors.ErrNotAssignedReviewer
		}
		return nil, apperrors.ErrNoPendingSubjects
	}

	// The assignment must bind the reviewer to a subject actually awaiting
	// review, not merely to the group.
	routedIDs := make([]int64, len(routed))
	for i, subject := range routed {
		routedIDs[i] = subject.ID
	}
	assigned, err := s.assignments.HasAssignmentForSubjects(ctx, smeIDs, routedIDs)
	if err != nil {
		return nil, err
	}
	if !assigned {
		return nil, apperrors.ErrNotAssignedReviewer
	}

	var smeNotes *string
	if req.Notes != "" {
		notes := req.Notes
		smeNotes = &notes
	}

	if similarity >= approvalThreshold {
		return s.approveGroup(ctx, groupID, routed, similarity, smeNotes)
	}
	return s.rejectGroup(ctx, groupID, routed, similarity, smeNotes)
}

// approveGroup finalizes an approving judgment. Everything the catalog
// entries need is resolved before the first write, so a group is never left
// half approved over a missing institution or course.
func (s *ReviewService) approveGroup(ctx context.Context, groupID int64, routed []*models.PastSubject, similarity int, smeNotes *string) (*dto.ReviewResult, error) {
	group, err := s.subjects.GetGroupByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group.CourseID == nil || group.Course == nil {
		return nil, apperrors.NewCustomError(apperrors.ErrUnresolvedCourse, "").
			WithDetails(map[string]interface{}{"subjectGroupId": groupID})
	}

	appCtx, err := s.subjects.GetGroupContext(ctx, groupID)
	if err != nil {
		return nil, err
	}

	institutionID, err := s.matcher.ResolveInstitution(ctx, appCtx)
	if err != nil {
		return nil, err
	}

	// Institution resolved by campus name: persist the link so later
	// lookups on this application skip the name resolution.
	if appCtx.OriginInstitutionID == nil {
		if err := s.applications.SetOriginInstitution(ctx, appCtx.ApplicationID, institutionID); err != nil {
			return nil, err
		}
	}

	result := &dto.ReviewResult{
		SubjectGroupID: groupID,
		Disposition:    models.ApprovalApprovedSME,
	}
	seenEntries := make(map[int64]bool)

	for _, subject := range routed {
		entry := &models.CatalogEntry{
			OriginInstitutionID: institutionID,
			OriginProgramName:   appCtx.OriginProgramName,
			ProgramID:           appCtx.ProgramID,
			CourseID:            *group.CourseID,
			OriginCode:          subject.OriginCode,
			OriginName:          subject.OriginName,
			OriginCredit:        subject.OriginCredit,
			CourseCode:          group.Course.Code,
			CourseName:          group.Course.Name,
			CourseCredit:        &group.Course.Credit,
			Similarity:          similarity,
			DocumentPath:        subject.SyllabusPath,
		}

		linked, err := s.subjects.ApproveWithCatalogEntry(ctx, subject, entry, smeNotes)
		if err != nil {
			return nil, err
		}

		subject.ApprovalStatus = models.ApprovalApprovedSME
		subject.CatalogEntryID = &linked.ID
		score := similarity
		subject.Similarity = &score
		subject.NeedsSMEReview = false
		if smeNotes != nil {
			subject.SMENotes = smeNotes
		}
		result.UpdatedSubjects = append(result.UpdatedSubjects, subject)

		if !seenEntries[linked.ID] {
			seenEntries[linked.ID] = true
			result.CatalogEntries = append(result.CatalogEntries, linked)
		}
	}

	logger.Info().
		Int64("subjectGroupId", groupID).
		Int("similarity", similarity).
		Int("approved", len(result.UpdatedSubjects)).
		Int("catalogEntries", len(result.CatalogEntries)).
		Msg("Group approved by SME review")

	return result, nil
}

func (s *ReviewService) rejectGroup(ctx context.Context, groupID int64, routed []*models.PastSubject, similarity int, smeNotes *string) (*dto.ReviewResult, error) {
	result := &dto.ReviewResult{
		SubjectGroupID: groupID,
		Disposition:    models.ApprovalRejected,
	}

	for _, subject := range routed {
		if err := s.subjects.Reject(ctx, subject.ID, similarity, smeNotes); err != nil {
			return nil, err
		}

		subject.ApprovalStatus = models.ApprovalRejected
		score := similarity
		subject.Similarity = &score
		subject.NeedsSMEReview = false
		if smeNotes != nil {
			subject.SMENotes = smeNotes
		}
		result.UpdatedSubjects = append(result.UpdatedSubjects, subject)
	}

	logger.Info().
		Int64("subjectGroupId", groupID).
		Int("similarity", similarity).
		Int("rejected", len(result.UpdatedSubjects)).
		Msg("Group rejected by SME review")

	return result, nil
}

// GetWorklist gathers the subject groups assigned to any of the reviewer's
// active SME appointments, with each group's subjects and owning application
// attached. A reviewer with no appointments gets an empty worklist.
func (s *ReviewService) GetWorklist(ctx context.Context, reviewerUserID int64) ([]*dto.SMEWorkItem, error) {
	smes, err := s.staff.GetActiveSMEsByUser(ctx, reviewerUserID)
	if err != nil {
		return nil, err
	}
	if len(smes) == 0 {
		return []*dto.SMEWorkItem{}, nil
	}

	smeIDs := make([]int64, len(smes))
	for i, sme := range smes {
		smeIDs[i] = sme.ID
	}

	groupIDs, err := s.assignments.ListGroupIDsForSMEs(ctx, smeIDs)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.SMEWorkItem, 0, len(groupIDs))
	for _, groupID := range groupIDs {
		group, err := s.subjects.GetGroupByID(ctx, groupID)
		if err != nil {
			return nil, err
		}

		subjects, err := s.subjects.ListByGroup(ctx, groupID)
		if err != nil {
			return nil, err
		}

		application, err := s.applications.GetByID(ctx, group.ApplicationID)
		if err != nil {
			return nil, err
		}

		assignmentIDs, err := s.assignments.ListIDsByGroupForSMEs(ctx, smeIDs, groupID)
		if err != nil {
			return nil, err
		}

		items = append(items, &dto.SMEWorkItem{
			SubjectGroup:  group,
			Application:   application,
			Course:        group.Course,
			PastSubjects:  subjects,
			AssignmentIDs: assignmentIDs,
		})
	}

	return items, nil
}

// GetGroupDetail retrieves one assigned group with its subjects and owning
// application. Callers holding no assignment for the group are refused.
func (s *ReviewService) GetGroupDetail(ctx context.Context, reviewerUserID, groupID int64) (*dto.SMEWorkItem, error) {
	smeIDs, err := s.activeSMEIDs(ctx, reviewerUserID)
	if err != nil {
		return nil, err
	}

	assigned, err := s.assignments.HasAssignmentForGroup(ctx, smeIDs, groupID)
	if err != nil {
		return nil, err
	}
	if !assigned {
		return nil, apperrors.ErrNotAssignedReviewer
	}

	group, err := s.subjects.GetGroupByID(ctx, groupID)
	if err != nil {
		return nil, err
	}

	subjects, err := s.subjects.ListByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	application, err := s.applications.GetByID(ctx, group.ApplicationID)
	if err != nil {
		return nil, err
	}

	assignmentIDs, err := s.assignments.ListIDsByGroupForSMEs(ctx, smeIDs, groupID)
	if err != nil {
		return nil, err
	}

	return &dto.SMEWorkItem{
		SubjectGroup:  group,
		Application:   application,
		Course:        group.Course,
		PastSubjects:  subjects,
		AssignmentIDs: assignmentIDs,
	}, nil
}

func (s *ReviewService) activeSMEIDs(ctx context.Context, userID int64) ([]int64, error) {
	smes, err := s.staff.GetActiveSMEsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(smes) == 0 {
		return nil, apperrors.ErrNotAssignedReviewer
	}

	ids := make([]int64, len(smes))
	for i, sme := range smes {
		ids[i] = sme.ID
	}
	return ids, nil
}
