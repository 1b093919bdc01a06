package models

import "time"

// Application represents one student's credit-transfer request to a
// destination program. Applications are never physically deleted.
type Application struct {
	ID                  int64             `json:"id" db:"id"`
	Status              ApplicationStatus `json:"status" db:"status"`
	Notes               *string           `json:"notes,omitempty" db:"notes"`
	OriginInstitutionID *int64            `json:"originInstitutionId,omitempty" db:"origin_institution_id"`
	OriginCampusName    *string           `json:"originCampusName,omitempty" db:"origin_campus_name"`
	OriginProgramName   *string           `json:"originProgramName,omitempty" db:"origin_program_name"`
	TranscriptPath      *string           `json:"transcriptPath,omitempty" db:"transcript_path"`
	StudentID           int64             `json:"studentId" db:"student_id"`
	CoordinatorID       int64             `json:"coordinatorId" db:"coordinator_id"`
	ProgramID           int64             `json:"programId" db:"program_id"`
	CreatedAt           time.Time         `json:"createdAt" db:"created_at"`
	UpdatedAt           time.Time         `json:"updatedAt" db:"updated_at"`

	// Relations (populated when needed)
	Student       *Student        `json:"student,omitempty"`
	Program       *Program        `json:"program,omitempty"`
	SubjectGroups []*SubjectGroup `json:"subjectGroups,omitempty"`
}

// SubjectGroup is one destination-course target within an application.
// A group may absorb several origin subjects as a single package, so every
// adjudication decision applies to the group as one unit.
type SubjectGroup struct {
	ID            int64  `json:"id" db:"id"`
	ApplicationID int64  `json:"applicationId" db:"application_id"`
	Name          string `json:"name" db:"name"`
	CourseID      *int64 `json:"courseId,omitempty" db:"course_id"`

	Course       *Course        `json:"course,omitempty"`
	PastSubjects []*PastSubject `json:"pastSubjects,omitempty"`
}

// PastSubject is one origin-institution subject offered as credit toward its
// parent subject group. It is the unit of adjudication state.
type PastSubject struct {
	ID               int64          `json:"id" db:"id"`
	SubjectGroupID   int64          `json:"subjectGroupId" db:"subject_group_id"`
	OriginCode       string         `json:"originCode" db:"origin_code"`
	OriginName       string         `json:"originName" db:"origin_name"`
	OriginGrade      string         `json:"originGrade" db:"origin_grade"`
	OriginCredit     *int           `json:"originCredit,omitempty" db:"origin_credit"`
	SyllabusPath     *string        `json:"syllabusPath,omitempty" db:"syllabus_path"`
	OriginalFilename *string        `json:"originalFilename,omitempty" db:"original_filename"`
	ApprovalStatus   ApprovalStatus `json:"approvalStatus" db:"approval_status"`
	CatalogEntryID   *int64         `json:"catalogEntryId,omitempty" db:"catalog_entry_id"`
	Similarity       *int           `json:"similarity,omitempty" db:"similarity_percentage"`
	NeedsSMEReview   bool           `json:"needsSmeReview" db:"needs_sme_review"`
	SMENotes         *string        `json:"smeNotes,omitempty" db:"sme_review_notes"`
	CoordinatorNotes *string        `json:"coordinatorNotes,omitempty" db:"coordinator_notes"`

	CatalogEntry *CatalogEntry `json:"catalogEntry,omitempty"`
}

// ApplicationContext carries the application-level fields the matcher and the
// review path need to resolve an origin institution and scope catalog lookups.
type ApplicationContext struct {
	ApplicationID       int64
	ProgramID           int64
	OriginInstitutionID *int64
	OriginCampusName    *string
	OriginProgramName   string
}
