package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/Freezeyy/CT-BE/internal/app/models"
	"github.com/Freezeyy/CT-BE/internal/app/models/dto"
	"github.com/Freezeyy/CT-BE/internal/app/repositories"
)

// In-memory stand-ins for the repository layer. They reproduce the same
// observable behavior the SQL implementations have: matching predicates,
// conditional status transitions, assignment upserts and active-key dedup.

type fakeCatalog struct {
	entries []*models.CatalogEntry
	nextID  int64
}

func (f *fakeCatalog) add(entry *models.CatalogEntry) *models.CatalogEntry {
	f.nextID++
	entry.ID = f.nextID
	entry.IsActive = true
	f.entries = append(f.entries, entry)
	return entry
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func (f *fakeCatalog) FindActiveMatches(_ context.Context, institutionID, programID int64, originProgramName, originCode string) ([]*models.CatalogEntry, error) {
	var matches []*models.CatalogEntry
	for _, entry := range f.entries {
		if !entry.IsActive ||
			entry.OriginInstitutionID != institutionID ||
			entry.ProgramID != programID ||
			entry.OriginCode != originCode {
			continue
		}
		if containsFold(entry.OriginProgramName, originProgramName) ||
			containsFold(originProgramName, entry.OriginProgramName) {
			matches = append(matches, entry)
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].ID < matches[j].ID })
	return matches, nil
}

func (f *fakeCatalog) findActiveByKey(key models.CatalogKey) *models.CatalogEntry {
	for _, entry := range f.entries {
		if entry.IsActive &&
			entry.OriginInstitutionID == key.OriginInstitutionID &&
			strings.EqualFold(entry.OriginProgramName, key.OriginProgramName) &&
			entry.ProgramID == key.ProgramID &&
			entry.CourseID == key.CourseID &&
			entry.OriginCode == key.OriginCode {
			return entry
		}
	}
	return nil
}

func (f *fakeCatalog) Create(_ context.Context, entry *models.CatalogEntry) error {
	if f.findActiveByKey(entry.Key()) != nil {
		return repositories.ErrCatalogEntryExists
	}
	f.add(entry)
	return nil
}

func (f *fakeCatalog) GetByID(_ context.Context, id int64) (*models.CatalogEntry, error) {
	for _, entry := range f.entries {
		if entry.ID == id {
			return entry, nil
		}
	}
	return nil, repositories.ErrCatalogEntryNotFound
}

func (f *fakeCatalog) FindActiveByKey(_ context.Context, key models.CatalogKey) (*models.CatalogEntry, error) {
	if entry := f.findActiveByKey(key); entry != nil {
		return entry, nil
	}
	return nil, repositories.ErrCatalogEntryNotFound
}

func (f *fakeCatalog) List(_ context.Context, filter dto.CatalogFilter) ([]*models.CatalogEntry, error) {
	var entries []*models.CatalogEntry
	for _, entry := range f.entries {
		if !filter.IncludeInactive && !entry.IsActive {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (f *fakeCatalog) Deactivate(_ context.Context, id int64, replacedByEntryID *int64) error {
	for _, entry := range f.entries {
		if entry.ID == id && entry.IsActive {
			entry.IsActive = false
			entry.ReplacedByEntryID = replacedByEntryID
			return nil
		}
	}
	return repositories.ErrCatalogEntryNotFound
}

func (f *fakeCatalog) SetDocumentPath(_ context.Context, id int64, documentPath string) error {
	entry, err := f.GetByID(context.Background(), id)
	if err != nil {
		return err
	}
	entry.DocumentPath = &documentPath
	return nil
}

type fakeInstitutions struct {
	institutions []*models.OriginInstitution
}

func (f *fakeInstitutions) GetByName(_ context.Context, name string) (*models.OriginInstitution, error) {
	for _, institution := range f.institutions {
		if strings.EqualFold(institution.Name, name) {
			return institution, nil
		}
	}
	return nil, repositories.ErrInstitutionNotFound
}

type fakeAssignments struct {
	assignments []*models.ReviewAssignment
	nextID      int64
}

func (f *fakeAssignments) upsert(assignment models.ReviewAssignment) {
	for _, existing := range f.assignments {
		if existing.SMEID == assignment.SMEID && existing.PastSubjectID == assignment.PastSubjectID {
			existing.SubjectGroupID = assignment.SubjectGroupID
			existing.ApplicationID = assignment.ApplicationID
			existing.OriginInstitutionID = assignment.OriginInstitutionID
			return
		}
	}
	f.nextID++
	assignment.ID = f.nextID
	f.assignments = append(f.assignments, &assignment)
}

func (f *fakeAssignments) ListByGroup(_ context.Context, groupID int64) ([]*models.ReviewAssignment, error) {
	var result []*models.ReviewAssignment
	for _, assignment := range f.assignments {
		if assignment.SubjectGroupID == groupID {
			result = append(result, assignment)
		}
	}
	return result, nil
}

func (f *fakeAssignments) HasAssignmentForGroup(_ context.Context, smeIDs []int64, groupID int64) (bool, error) {
	for _, assignment := range f.assignments {
		if assignment.SubjectGroupID != groupID {
			continue
		}
		for _, smeID := range smeIDs {
			if assignment.SMEID == smeID {
				return true, nil
			}
		}
	}
	return false, nil
}

func (f *fakeAssignments) HasAssignmentForSubjects(_ context.Context, smeIDs, subjectIDs []int64) (bool, error) {
	for _, assignment := range f.assignments {
		for _, subjectID := range subjectIDs {
			if assignment.PastSubjectID != subjectID {
				continue
			}
			for _, smeID := range smeIDs {
				if assignment.SMEID == smeID {
					return true, nil
				}
			}
		}
	}
	return false, nil
}

func (f *fakeAssignments) ListGroupIDsForSMEs(_ context.Context, smeIDs []int64) ([]int64, error) {
	seen := make(map[int64]bool)
	var groupIDs []int64
	for _, assignment := range f.assignments {
		for _, smeID := range smeIDs {
			if assignment.SMEID == smeID && !seen[assignment.SubjectGroupID] {
				seen[assignment.SubjectGroupID] = true
				groupIDs = append(groupIDs, assignment.SubjectGroupID)
			}
		}
	}
	return groupIDs, nil
}

func (f *fakeAssignments) ListIDsByGroupForSMEs(_ context.Context, smeIDs []int64, groupID int64) ([]int64, error) {
	var ids []int64
	for _, assignment := range f.assignments {
		if assignment.SubjectGroupID != groupID {
			continue
		}
		for _, smeID := range smeIDs {
			if assignment.SMEID == smeID {
				ids = append(ids, assignment.ID)
			}
		}
	}
	return ids, nil
}

type fakeStaff struct {
	smes []*models.SubjectMethodExpert
}

func (f *fakeStaff) GetActiveSMEByCourse(_ context.Context, courseID int64) (*models.SubjectMethodExpert, error) {
	for _, sme := range f.smes {
		if sme.CourseID == courseID && sme.EndDate == nil {
			return sme, nil
		}
	}
	return nil, repositories.ErrSMENotFound
}

func (f *fakeStaff) GetActiveSMEsByUser(_ context.Context, userID int64) ([]*models.SubjectMethodExpert, error) {
	var result []*models.SubjectMethodExpert
	for _, sme := range f.smes {
		if sme.UserID == userID && sme.EndDate == nil {
			result = append(result, sme)
		}
	}
	return result, nil
}

type fakeCourses struct {
	courses []*models.Course
}

func (f *fakeCourses) GetCourseByName(_ context.Context, programID int64, name string) (*models.Course, error) {
	for _, course := range f.courses {
		if course.ProgramID == programID && strings.EqualFold(course.Name, name) {
			return course, nil
		}
	}
	return nil, repositories.ErrCourseNotFound
}

func (f *fakeCourses) GetCourseByID(_ context.Context, id int64) (*models.Course, error) {
	for _, course := range f.courses {
		if course.ID == id {
			return course, nil
		}
	}
	return nil, repositories.ErrCourseNotFound
}

// fakeSubjectStore backs both the adjudication and review services.
type fakeSubjectStore struct {
	groups      map[int64]*models.SubjectGroup
	contexts    map[int64]*models.ApplicationContext
	subjects    map[int64]*models.PastSubject
	catalog     *fakeCatalog
	assignments *fakeAssignments
}

func newFakeSubjectStore(catalog *fakeCatalog, assignments *fakeAssignments) *fakeSubjectStore {
	return &fakeSubjectStore{
		groups:      make(map[int64]*models.SubjectGroup),
		contexts:    make(map[int64]*models.ApplicationContext),
		subjects:    make(map[int64]*models.PastSubject),
		catalog:     catalog,
		assignments: assignments,
	}
}

func (f *fakeSubjectStore) addGroup(group *models.SubjectGroup, appCtx *models.ApplicationContext, subjects ...*models.PastSubject) {
	f.groups[group.ID] = group
	f.contexts[group.ID] = appCtx
	for _, subject := range subjects {
		subject.SubjectGroupID = group.ID
		if subject.ApprovalStatus == "" {
			subject.ApprovalStatus = models.ApprovalPending
		}
		f.subjects[subject.ID] = subject
	}
}

func (f *fakeSubjectStore) GetGroupByID(_ context.Context, groupID int64) (*models.SubjectGroup, error) {
	group, ok := f.groups[groupID]
	if !ok {
		return nil, repositories.ErrSubjectGroupNotFound
	}
	return group, nil
}

func (f *fakeSubjectStore) GetGroupContext(_ context.Context, groupID int64) (*models.ApplicationContext, error) {
	appCtx, ok := f.contexts[groupID]
	if !ok {
		return nil, repositories.ErrSubjectGroupNotFound
	}
	return appCtx, nil
}

func (f *fakeSubjectStore) ListByGroup(_ context.Context, groupID int64) ([]*models.PastSubject, error) {
	var subjects []*models.PastSubject
	for _, subject := range f.subjects {
		if subject.SubjectGroupID == groupID {
			subjects = append(subjects, subject)
		}
	}
	sort.Slice(subjects, func(i, j int) bool { return subjects[i].ID < subjects[j].ID })
	return subjects, nil
}

func (f *fakeSubjectStore) GetPastSubjectByID(_ context.Context, id int64) (*models.PastSubject, error) {
	subject, ok := f.subjects[id]
	if !ok {
		return nil, repositories.ErrPastSubjectNotFound
	}
	return subject, nil
}

func (f *fakeSubjectStore) UpdateGroupCourse(_ context.Context, groupID, courseID int64) error {
	group, ok := f.groups[groupID]
	if !ok {
		return repositories.ErrSubjectGroupNotFound
	}
	group.CourseID = &courseID
	return nil
}

func (f *fakeSubjectStore) ApproveViaCatalog(_ context.Context, subjectID, entryID int64, similarity int) (bool, error) {
	subject, ok := f.subjects[subjectID]
	if !ok || subject.ApprovalStatus != models.ApprovalPending {
		return false, nil
	}
	subject.ApprovalStatus = models.ApprovalApprovedTemplate
	subject.CatalogEntryID = &entryID
	subject.Similarity = &similarity
	subject.NeedsSMEReview = false
	note := fmt.Sprintf("Auto-approved via catalog entry #%d", entryID)
	if subject.CoordinatorNotes != nil {
		note = *subject.CoordinatorNotes + "\n" + note
	}
	subject.CoordinatorNotes = &note
	return true, nil
}

func (f *fakeSubjectStore) RouteToSME(_ context.Context, subjectIDs []int64, assignment *models.ReviewAssignment, coordinatorNote *string) error {
	for _, subjectID := range subjectIDs {
		subject, ok := f.subjects[subjectID]
		if !ok {
			return repositories.ErrPastSubjectNotFound
		}
		if subject.ApprovalStatus == models.ApprovalPending || subject.ApprovalStatus == models.ApprovalNeedsSMEReview {
			subject.ApprovalStatus = models.ApprovalNeedsSMEReview
			subject.NeedsSMEReview = true
			if coordinatorNote != nil {
				subject.CoordinatorNotes = coordinatorNote
			}
		}
		f.assignments.upsert(models.ReviewAssignment{
			SMEID:               assignment.SMEID,
			PastSubjectID:       subjectID,
			SubjectGroupID:      assignment.SubjectGroupID,
			ApplicationID:       assignment.ApplicationID,
			OriginInstitutionID: assignment.OriginInstitutionID,
		})
	}
	return nil
}

func (f *fakeSubjectStore) ApproveWithCatalogEntry(_ context.Context, subject *models.PastSubject, entry *models.CatalogEntry, smeNotes *string) (*models.CatalogEntry, error) {
	linked := f.catalog.findActiveByKey(entry.Key())
	if linked == nil {
		linked = f.catalog.add(entry)
	}

	stored, ok := f.subjects[subject.ID]
	if !ok {
		return nil, repositories.ErrPastSubjectNotFound
	}
	stored.ApprovalStatus = models.ApprovalApprovedSME
	stored.CatalogEntryID = &linked.ID
	similarity := entry.Similarity
	stored.Similarity = &similarity
	stored.NeedsSMEReview = false
	if smeNotes != nil {
		stored.SMENotes = smeNotes
	}
	return linked, nil
}

func (f *fakeSubjectStore) Reject(_ context.Context, subjectID int64, similarity int, smeNotes *string) error {
	subject, ok := f.subjects[subjectID]
	if !ok {
		return repositories.ErrPastSubjectNotFound
	}
	subject.ApprovalStatus = models.ApprovalRejected
	subject.Similarity = &similarity
	subject.NeedsSMEReview = false
	if smeNotes != nil {
		subject.SMENotes = smeNotes
	}
	return nil
}

type fakeApplications struct {
	applications map[int64]*models.Application
}

func (f *fakeApplications) GetByID(_ context.Context, id int64) (*models.Application, error) {
	application, ok := f.applications[id]
	if !ok {
		return nil, repositories.ErrApplicationNotFound
	}
	return application, nil
}

func (f *fakeApplications) SetOriginInstitution(_ context.Context, id, institutionID int64) error {
	application, ok := f.applications[id]
	if !ok {
		return repositories.ErrApplicationNotFound
	}
	application.OriginInstitutionID = &institutionID
	return nil
}
