package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Freezeyy/CT-BE/internal/app/models"
	"github.com/Freezeyy/CT-BE/internal/pkg/apperrors"
)

type adjudicationFixture struct {
	catalog     *fakeCatalog
	store       *fakeSubjectStore
	staff       *fakeStaff
	courses     *fakeCourses
	assignments *fakeAssignments
	service     *AdjudicationService
}

// newAdjudicationFixture builds a destination program with one course, an
// active SME for it, and one catalog entry covering CS101 from Sunway's
// Diploma in IT.
func newAdjudicationFixture(t *testing.T) *adjudicationFixture {
	t.Helper()

	catalog := &fakeCatalog{}
	catalog.add(&models.CatalogEntry{
		OriginInstitutionID: 3,
		OriginProgramName:   "Diploma in IT",
		ProgramID:           1,
		CourseID:            12,
		OriginCode:          "CS101",
		OriginName:          "Introduction to Programming",
		CourseCode:          "SWE1001",
		CourseName:          "Programming Fundamentals",
		Similarity:          90,
	})

	assignments := &fakeAssignments{}
	store := newFakeSubjectStore(catalog, assignments)
	staff := &fakeStaff{
		smes: []*models.SubjectMethodExpert{
			{ID: 50, UserID: 500, CourseID: 12},
		},
	}
	courses := &fakeCourses{
		courses: []*models.Course{
			{ID: 12, ProgramID: 1, Name: "Programming Fundamentals", Code: "SWE1001"},
		},
	}

	matcher := NewTemplateMatcher(catalog, &fakeInstitutions{
		institutions: []*models.OriginInstitution{{ID: 3, Name: "Sunway College"}},
	})

	return &adjudicationFixture{
		catalog:     catalog,
		store:       store,
		staff:       staff,
		courses:     courses,
		assignments: assignments,
		service:     NewAdjudicationService(store, staff, courses, assignments, matcher),
	}
}

func (f *adjudicationFixture) addMixedGroup() {
	f.store.addGroup(
		&models.SubjectGroup{ID: 10, ApplicationID: 1, Name: "Programming Fundamentals"},
		&models.ApplicationContext{ApplicationID: 1, ProgramID: 1, OriginInstitutionID: int64Ptr(3), OriginProgramName: "Diploma in IT"},
		&models.PastSubject{ID: 101, OriginCode: "CS101", OriginName: "Introduction to Programming"},
		&models.PastSubject{ID: 102, OriginCode: "CS102", OriginName: "Data Structures"},
	)
}

func TestCheckMatchesMixedGroup(t *testing.T) {
	f := newAdjudicationFixture(t)
	f.addMixedGroup()

	result, err := f.service.CheckMatches(context.Background(), 10)
	require.NoError(t, err)

	assert.False(t, result.AllMatched)
	assert.True(t, result.AnyMatched)
	require.Len(t, result.PerSubject, 2)
	assert.NotNil(t, result.PerSubject[0].Match)
	assert.Nil(t, result.PerSubject[1].Match)

	// Checking never transitions anything.
	for _, subject := range f.store.subjects {
		assert.Equal(t, models.ApprovalPending, subject.ApprovalStatus)
	}
}

func TestCheckMatchesMissingInstitution(t *testing.T) {
	f := newAdjudicationFixture(t)
	f.store.addGroup(
		&models.SubjectGroup{ID: 10, ApplicationID: 1, Name: "Programming Fundamentals"},
		&models.ApplicationContext{ApplicationID: 1, ProgramID: 1, OriginProgramName: "Diploma in IT"},
		&models.PastSubject{ID: 101, OriginCode: "CS101"},
	)

	_, err := f.service.CheckMatches(context.Background(), 10)
	assert.ErrorIs(t, err, apperrors.ErrMissingOriginInstitution)
}

func TestCheckMatchesNoPendingSubjects(t *testing.T) {
	f := newAdjudicationFixture(t)
	f.store.addGroup(
		&models.SubjectGroup{ID: 10, ApplicationID: 1, Name: "Programming Fundamentals"},
		&models.ApplicationContext{ApplicationID: 1, ProgramID: 1, OriginInstitutionID: int64Ptr(3), OriginProgramName: "Diploma in IT"},
		&models.PastSubject{ID: 101, OriginCode: "CS101", ApprovalStatus: models.ApprovalRejected},
	)

	_, err := f.service.CheckMatches(context.Background(), 10)
	assert.ErrorIs(t, err, apperrors.ErrNoPendingSubjects)
}

func TestApproveGroupViaCatalogFullyMatched(t *testing.T) {
	f := newAdjudicationFixture(t)
	f.store.addGroup(
		&models.SubjectGroup{ID: 10, ApplicationID: 1, Name: "Programming Fundamentals"},
		&models.ApplicationContext{ApplicationID: 1, ProgramID: 1, OriginInstitutionID: int64Ptr(3), OriginProgramName: "Diploma in IT"},
		&models.PastSubject{ID: 101, OriginCode: "CS101"},
	)

	result, err := f.service.ApproveGroupViaCatalog(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, result.ApprovedSubjects, 1)

	subject := f.store.subjects[101]
	assert.Equal(t, models.ApprovalApprovedTemplate, subject.ApprovalStatus)
	require.NotNil(t, subject.CatalogEntryID)
	assert.Equal(t, int64(1), *subject.CatalogEntryID)
	require.NotNil(t, subject.Similarity)
	assert.Equal(t, 90, *subject.Similarity)

	// The group picks up its destination course from the match.
	group := f.store.groups[10]
	require.NotNil(t, group.CourseID)
	assert.Equal(t, int64(12), *group.CourseID)
}

func TestApproveGroupViaCatalogRefusesPartialMatch(t *testing.T) {
	f := newAdjudicationFixture(t)
	f.addMixedGroup()

	_, err := f.service.ApproveGroupViaCatalog(context.Background(), 10)
	require.ErrorIs(t, err, apperrors.ErrNotFullyMatched)

	details := apperrors.Details(err)
	require.NotNil(t, details)
	assert.Equal(t, int64(102), details["unmatchedSubjectId"])

	// All or nothing: the matched sibling stays pending too.
	assert.Equal(t, models.ApprovalPending, f.store.subjects[101].ApprovalStatus)
	assert.Equal(t, models.ApprovalPending, f.store.subjects[102].ApprovalStatus)
}

func TestRouteGroupToSME(t *testing.T) {
	f := newAdjudicationFixture(t)
	f.addMixedGroup()

	result, err := f.service.RouteGroupToSME(context.Background(), 10, "no full catalog coverage")
	require.NoError(t, err)

	assert.Equal(t, int64(50), result.SMEID)
	assert.Equal(t, int64(12), result.CourseID)
	assert.Len(t, result.RoutedSubjects, 2)
	assert.Len(t, result.Assignments, 2)

	for _, id := range []int64{101, 102} {
		subject := f.store.subjects[id]
		assert.Equal(t, models.ApprovalNeedsSMEReview, subject.ApprovalStatus)
		assert.True(t, subject.NeedsSMEReview)
		require.NotNil(t, subject.CoordinatorNotes)
		assert.Equal(t, "no full catalog coverage", *subject.CoordinatorNotes)
	}
}

func TestRouteGroupToSMEIsIdempotent(t *testing.T) {
	f := newAdjudicationFixture(t)
	f.addMixedGroup()

	_, err := f.service.RouteGroupToSME(context.Background(), 10, "first pass")
	require.NoError(t, err)
	_, err = f.service.RouteGroupToSME(context.Background(), 10, "second pass")
	require.NoError(t, err)

	assert.Len(t, f.assignments.assignments, 2)
}

func TestRouteGroupToSMEWithoutInstitution(t *testing.T) {
	f := newAdjudicationFixture(t)
	f.store.addGroup(
		&models.SubjectGroup{ID: 10, ApplicationID: 1, Name: "Programming Fundamentals"},
		&models.ApplicationContext{ApplicationID: 1, ProgramID: 1, OriginProgramName: "Diploma in IT"},
		&models.PastSubject{ID: 101, OriginCode: "CS102"},
	)

	// No institution means no catalog lookup; the course resolves by the
	// group's name instead, and routing still succeeds.
	result, err := f.service.RouteGroupToSME(context.Background(), 10, "")
	require.NoError(t, err)
	assert.Equal(t, int64(12), result.CourseID)
}

func TestRouteGroupToSMENoActiveSME(t *testing.T) {
	f := newAdjudicationFixture(t)
	f.staff.smes = nil
	f.addMixedGroup()

	_, err := f.service.RouteGroupToSME(context.Background(), 10, "")
	require.ErrorIs(t, err, apperrors.ErrNoActiveSME)

	details := apperrors.Details(err)
	require.NotNil(t, details)
	assert.Equal(t, int64(12), details["courseId"])
}

func TestRouteGroupToSMEUnresolvedCourse(t *testing.T) {
	f := newAdjudicationFixture(t)
	f.store.addGroup(
		&models.SubjectGroup{ID: 10, ApplicationID: 1, Name: "Quantum Basket Weaving"},
		&models.ApplicationContext{ApplicationID: 1, ProgramID: 1, OriginProgramName: "Diploma in IT"},
		&models.PastSubject{ID: 101, OriginCode: "QW100"},
	)

	_, err := f.service.RouteGroupToSME(context.Background(), 10, "")
	assert.ErrorIs(t, err, apperrors.ErrUnresolvedCourse)
}

func TestApproveSubjectViaCatalog(t *testing.T) {
	f := newAdjudicationFixture(t)
	f.addMixedGroup()

	result, err := f.service.ApproveSubjectViaCatalog(context.Background(), 101)
	require.NoError(t, err)
	require.Len(t, result.ApprovedSubjects, 1)
	assert.Equal(t, models.ApprovalApprovedTemplate, f.store.subjects[101].ApprovalStatus)

	// Its unmatched sibling is untouched by the single-subject path.
	assert.Equal(t, models.ApprovalPending, f.store.subjects[102].ApprovalStatus)

	_, err = f.service.ApproveSubjectViaCatalog(context.Background(), 102)
	assert.ErrorIs(t, err, apperrors.ErrNotFullyMatched)
}

func TestRouteSubjectToSME(t *testing.T) {
	f := newAdjudicationFixture(t)
	f.addMixedGroup()

	result, err := f.service.RouteSubjectToSME(context.Background(), 102, "please compare syllabi")
	require.NoError(t, err)
	assert.Equal(t, int64(50), result.SMEID)
	require.Len(t, result.RoutedSubjects, 1)

	assert.Equal(t, models.ApprovalNeedsSMEReview, f.store.subjects[102].ApprovalStatus)
	assert.Equal(t, models.ApprovalPending, f.store.subjects[101].ApprovalStatus)
	assert.Len(t, f.assignments.assignments, 1)
}
