package models

import "time"

// Coordinator binds a lecturer to the program whose applications they triage.
// EndDate nil means the appointment is active.
type Coordinator struct {
	ID        int64      `json:"id" db:"id"`
	UserID    int64      `json:"userId" db:"user_id"`
	ProgramID int64      `json:"programId" db:"program_id"`
	StartDate time.Time  `json:"startDate" db:"start_date"`
	EndDate   *time.Time `json:"endDate,omitempty" db:"end_date"`

	User    *User    `json:"user,omitempty"`
	Program *Program `json:"program,omitempty"`
}

// SubjectMethodExpert binds a lecturer to the destination course they judge
// equivalence for. EndDate nil means the appointment is active.
type SubjectMethodExpert struct {
	ID        int64      `json:"id" db:"id"`
	UserID    int64      `json:"userId" db:"user_id"`
	CourseID  int64      `json:"courseId" db:"course_id"`
	StartDate time.Time  `json:"startDate" db:"start_date"`
	EndDate   *time.Time `json:"endDate,omitempty" db:"end_date"`

	User   *User   `json:"user,omitempty"`
	Course *Course `json:"course,omitempty"`
}

// ReviewAssignment binds one SME to one past subject requiring manual review.
// The owning application and subject group are denormalized for worklist
// queries. Exactly one row exists per (SME, past subject) pair; re-routing the
// same subject to the same SME is an upsert, never a duplicate.
type ReviewAssignment struct {
	ID                  int64     `json:"id" db:"id"`
	SMEID               int64     `json:"smeId" db:"sme_id"`
	PastSubjectID       int64     `json:"pastSubjectId" db:"past_subject_id"`
	SubjectGroupID      int64     `json:"subjectGroupId" db:"subject_group_id"`
	ApplicationID       int64     `json:"applicationId" db:"application_id"`
	OriginInstitutionID *int64    `json:"originInstitutionId,omitempty" db:"origin_institution_id"`
	CreatedAt           time.Time `json:"createdAt" db:"created_at"`

	PastSubject *PastSubject `json:"pastSubject,omitempty"`
}
