package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Freezeyy/CT-BE/internal/app/models"
	"github.com/Freezeyy/CT-BE/internal/app/models/dto"
	"github.com/Freezeyy/CT-BE/internal/pkg/apperrors"
)

type reviewFixture struct {
	catalog      *fakeCatalog
	store        *fakeSubjectStore
	staff        *fakeStaff
	assignments  *fakeAssignments
	applications *fakeApplications
	service      *ReviewService
}

// newReviewFixture builds a group of two subjects routed to the SME of course
// 12, reviewed by user 500.
func newReviewFixture(t *testing.T) *reviewFixture {
	t.Helper()

	catalog := &fakeCatalog{}
	assignments := &fakeAssignments{}
	store := newFakeSubjectStore(catalog, assignments)

	course := &models.Course{ID: 12, ProgramID: 1, Name: "Programming Fundamentals", Code: "SWE1001", Credit: 4}
	store.addGroup(
		&models.SubjectGroup{ID: 10, ApplicationID: 1, Name: "Programming Fundamentals", CourseID: int64Ptr(12), Course: course},
		&models.ApplicationContext{ApplicationID: 1, ProgramID: 1, OriginInstitutionID: int64Ptr(3), OriginProgramName: "Diploma in IT"},
		&models.PastSubject{ID: 101, OriginCode: "CS101", OriginName: "Introduction to Programming", OriginCredit: intPtr(3), ApprovalStatus: models.ApprovalNeedsSMEReview, NeedsSMEReview: true},
		&models.PastSubject{ID: 102, OriginCode: "CS102", OriginName: "Data Structures", OriginCredit: intPtr(3), ApprovalStatus: models.ApprovalNeedsSMEReview, NeedsSMEReview: true},
	)

	for _, subjectID := range []int64{101, 102} {
		assignments.upsert(models.ReviewAssignment{
			SMEID: 50, PastSubjectID: subjectID, SubjectGroupID: 10, ApplicationID: 1, OriginInstitutionID: int64Ptr(3),
		})
	}

	staff := &fakeStaff{
		smes: []*models.SubjectMethodExpert{
			{ID: 50, UserID: 500, CourseID: 12, Course: course},
		},
	}
	applications := &fakeApplications{
		applications: map[int64]*models.Application{
			1: {ID: 1, OriginInstitutionID: int64Ptr(3)},
		},
	}

	matcher := NewTemplateMatcher(catalog, &fakeInstitutions{
		institutions: []*models.OriginInstitution{{ID: 3, Name: "Sunway College"}},
	})

	return &reviewFixture{
		catalog:      catalog,
		store:        store,
		staff:        staff,
		assignments:  assignments,
		applications: applications,
		service:      NewReviewService(store, staff, assignments, applications, matcher),
	}
}

func intPtr(v int) *int { return &v }

func TestReviewGroupThresholdBoundary(t *testing.T) {
	tests := []struct {
		name            string
		similarity      int
		wantDisposition models.ApprovalStatus
		wantEntries     int
	}{
		{name: "at the threshold approves", similarity: 80, wantDisposition: models.ApprovalApprovedSME, wantEntries: 2},
		{name: "just below the threshold rejects", similarity: 79, wantDisposition: models.ApprovalRejected, wantEntries: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newReviewFixture(t)

			result, err := f.service.ReviewGroup(context.Background(), 500, 10, dto.ReviewRequest{
				Similarity: intPtr(tt.similarity),
			})
			require.NoError(t, err)

			assert.Equal(t, tt.wantDisposition, result.Disposition)
			assert.Len(t, result.UpdatedSubjects, 2)
			assert.Len(t, result.CatalogEntries, tt.wantEntries)

			for _, subjectID := range []int64{101, 102} {
				subject := f.store.subjects[subjectID]
				assert.Equal(t, tt.wantDisposition, subject.ApprovalStatus)
				require.NotNil(t, subject.Similarity)
				assert.Equal(t, tt.similarity, *subject.Similarity)
				assert.False(t, subject.NeedsSMEReview)
			}
		})
	}
}

func TestReviewGroupCoversPendingSiblings(t *testing.T) {
	tests := []struct {
		name            string
		similarity      int
		wantDisposition models.ApprovalStatus
	}{
		{name: "rejection reaches the pending sibling", similarity: 55, wantDisposition: models.ApprovalRejected},
		{name: "approval reaches the pending sibling", similarity: 85, wantDisposition: models.ApprovalApprovedSME},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newReviewFixture(t)
			// Subject 103 was added after routing and never reached the SME,
			// so it has no assignment and still sits at pending.
			f.store.addGroup(f.store.groups[10], f.store.contexts[10],
				&models.PastSubject{ID: 103, OriginCode: "CS103", OriginName: "Discrete Mathematics", ApprovalStatus: models.ApprovalPending},
			)

			result, err := f.service.ReviewGroup(context.Background(), 500, 10, dto.ReviewRequest{
				Similarity: intPtr(tt.similarity),
			})
			require.NoError(t, err)

			assert.Len(t, result.UpdatedSubjects, 3)
			for _, subjectID := range []int64{101, 102, 103} {
				subject := f.store.subjects[subjectID]
				assert.Equal(t, tt.wantDisposition, subject.ApprovalStatus)
				require.NotNil(t, subject.Similarity)
				assert.Equal(t, tt.similarity, *subject.Similarity)
			}
		})
	}
}

func TestReviewGroupApprovalLearnsTemplates(t *testing.T) {
	f := newReviewFixture(t)

	result, err := f.service.ReviewGroup(context.Background(), 500, 10, dto.ReviewRequest{
		Similarity: intPtr(85),
		Notes:      "coverage is close enough",
	})
	require.NoError(t, err)

	require.Len(t, result.CatalogEntries, 2)
	for _, entry := range result.CatalogEntries {
		assert.Equal(t, int64(3), entry.OriginInstitutionID)
		assert.Equal(t, "Diploma in IT", entry.OriginProgramName)
		assert.Equal(t, int64(12), entry.CourseID)
		assert.Equal(t, "SWE1001", entry.CourseCode)
		assert.Equal(t, 85, entry.Similarity)
		assert.True(t, entry.IsActive)
	}

	for _, subjectID := range []int64{101, 102} {
		subject := f.store.subjects[subjectID]
		require.NotNil(t, subject.CatalogEntryID)
		require.NotNil(t, subject.SMENotes)
		assert.Equal(t, "coverage is close enough", *subject.SMENotes)
	}
}

func TestReviewGroupRejectionWritesNoCatalogEntries(t *testing.T) {
	f := newReviewFixture(t)

	result, err := f.service.ReviewGroup(context.Background(), 500, 10, dto.ReviewRequest{
		Similarity: intPtr(55),
		Notes:      "different subject entirely",
	})
	require.NoError(t, err)

	assert.Equal(t, models.ApprovalRejected, result.Disposition)
	assert.Empty(t, result.CatalogEntries)
	assert.Empty(t, f.catalog.entries)

	for _, subjectID := range []int64{101, 102} {
		subject := f.store.subjects[subjectID]
		assert.Equal(t, models.ApprovalRejected, subject.ApprovalStatus)
		assert.Nil(t, subject.CatalogEntryID)
	}
}

func TestReviewGroupReusesExistingCatalogEntry(t *testing.T) {
	f := newReviewFixture(t)
	existing := f.catalog.add(&models.CatalogEntry{
		OriginInstitutionID: 3,
		OriginProgramName:   "diploma in it",
		ProgramID:           1,
		CourseID:            12,
		OriginCode:          "CS101",
		Similarity:          90,
	})

	result, err := f.service.ReviewGroup(context.Background(), 500, 10, dto.ReviewRequest{
		Similarity: intPtr(85),
	})
	require.NoError(t, err)

	// CS101 links to the pre-existing entry (key match is case-insensitive
	// on the program name); only CS102 creates a new one.
	require.Len(t, result.CatalogEntries, 2)
	require.NotNil(t, f.store.subjects[101].CatalogEntryID)
	assert.Equal(t, existing.ID, *f.store.subjects[101].CatalogEntryID)
	assert.Len(t, f.catalog.entries, 2)
}

func TestReviewGroupAuthorization(t *testing.T) {
	f := newReviewFixture(t)

	// User 501 holds no SME appointment at all.
	_, err := f.service.ReviewGroup(context.Background(), 501, 10, dto.ReviewRequest{Similarity: intPtr(85)})
	assert.ErrorIs(t, err, apperrors.ErrNotAssignedReviewer)

	// User 502 is an SME elsewhere but holds no assignment for this group.
	f.staff.smes = append(f.staff.smes, &models.SubjectMethodExpert{ID: 51, UserID: 502, CourseID: 99})
	_, err = f.service.ReviewGroup(context.Background(), 502, 10, dto.ReviewRequest{Similarity: intPtr(85)})
	assert.ErrorIs(t, err, apperrors.ErrNotAssignedReviewer)

	// User 503 holds an assignment in the group, but only for a subject
	// already settled, not for any subject awaiting review.
	f.store.addGroup(f.store.groups[10], f.store.contexts[10],
		&models.PastSubject{ID: 104, OriginCode: "CS104", OriginName: "Operating Systems", ApprovalStatus: models.ApprovalApprovedSME},
	)
	f.staff.smes = append(f.staff.smes, &models.SubjectMethodExpert{ID: 52, UserID: 503, CourseID: 12})
	f.assignments.upsert(models.ReviewAssignment{
		SMEID: 52, PastSubjectID: 104, SubjectGroupID: 10, ApplicationID: 1, OriginInstitutionID: int64Ptr(3),
	})
	_, err = f.service.ReviewGroup(context.Background(), 503, 10, dto.ReviewRequest{Similarity: intPtr(85)})
	assert.ErrorIs(t, err, apperrors.ErrNotAssignedReviewer)
}

func TestReviewGroupInvalidScore(t *testing.T) {
	f := newReviewFixture(t)

	for _, similarity := range []*int{nil, intPtr(-1), intPtr(101)} {
		_, err := f.service.ReviewGroup(context.Background(), 500, 10, dto.ReviewRequest{Similarity: similarity})
		assert.ErrorIs(t, err, apperrors.ErrInvalidScore)
	}
}

func TestReviewGroupNothingAwaitingReview(t *testing.T) {
	f := newReviewFixture(t)
	for _, subject := range f.store.subjects {
		subject.ApprovalStatus = models.ApprovalApprovedSME
		subject.NeedsSMEReview = false
	}

	_, err := f.service.ReviewGroup(context.Background(), 500, 10, dto.ReviewRequest{Similarity: intPtr(85)})
	assert.ErrorIs(t, err, apperrors.ErrNoPendingSubjects)
}

func TestReviewGroupResolvesInstitutionBeforeWriting(t *testing.T) {
	f := newReviewFixture(t)
	appCtx := f.store.contexts[10]
	appCtx.OriginInstitutionID = nil
	appCtx.OriginCampusName = strPtr("Sunway College")
	f.applications.applications[1].OriginInstitutionID = nil

	result, err := f.service.ReviewGroup(context.Background(), 500, 10, dto.ReviewRequest{Similarity: intPtr(85)})
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalApprovedSME, result.Disposition)

	// The name resolution is persisted on the application.
	require.NotNil(t, f.applications.applications[1].OriginInstitutionID)
	assert.Equal(t, int64(3), *f.applications.applications[1].OriginInstitutionID)
}

func TestReviewGroupApprovalNeedsInstitution(t *testing.T) {
	f := newReviewFixture(t)
	appCtx := f.store.contexts[10]
	appCtx.OriginInstitutionID = nil
	appCtx.OriginCampusName = nil

	_, err := f.service.ReviewGroup(context.Background(), 500, 10, dto.ReviewRequest{Similarity: intPtr(85)})
	require.ErrorIs(t, err, apperrors.ErrMissingOriginInstitution)

	// Nothing was written.
	assert.Empty(t, f.catalog.entries)
	for _, subject := range f.store.subjects {
		assert.Equal(t, models.ApprovalNeedsSMEReview, subject.ApprovalStatus)
	}

	// Rejection does not need the institution.
	result, err := f.service.ReviewGroup(context.Background(), 500, 10, dto.ReviewRequest{Similarity: intPtr(40)})
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalRejected, result.Disposition)
}

func TestReviewGroupApprovalNeedsCourse(t *testing.T) {
	f := newReviewFixture(t)
	group := f.store.groups[10]
	group.CourseID = nil
	group.Course = nil

	_, err := f.service.ReviewGroup(context.Background(), 500, 10, dto.ReviewRequest{Similarity: intPtr(85)})
	assert.ErrorIs(t, err, apperrors.ErrUnresolvedCourse)
}

func TestGetWorklist(t *testing.T) {
	f := newReviewFixture(t)

	items, err := f.service.GetWorklist(context.Background(), 500)
	require.NoError(t, err)
	require.Len(t, items, 1)

	item := items[0]
	assert.Equal(t, int64(10), item.SubjectGroup.ID)
	assert.Equal(t, int64(1), item.Application.ID)
	require.NotNil(t, item.Course)
	assert.Equal(t, int64(12), item.Course.ID)
	assert.Len(t, item.PastSubjects, 2)
	assert.Len(t, item.AssignmentIDs, 2)

	// A user with no appointments gets an empty worklist, not an error.
	items, err = f.service.GetWorklist(context.Background(), 999)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestGetGroupDetail(t *testing.T) {
	f := newReviewFixture(t)

	item, err := f.service.GetGroupDetail(context.Background(), 500, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(10), item.SubjectGroup.ID)
	assert.Equal(t, int64(1), item.Application.ID)
	assert.Len(t, item.PastSubjects, 2)
	assert.Len(t, item.AssignmentIDs, 2)

	// A lecturer without an assignment for the group is refused.
	_, err = f.service.GetGroupDetail(context.Background(), 999, 10)
	assert.ErrorIs(t, err, apperrors.ErrNotAssignedReviewer)
}
