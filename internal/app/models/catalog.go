package models

import "time"

// CatalogEntry is a reusable pre-approved equivalence between an origin
// subject and a destination course (the "Template3" table). At most one
// active entry may exist per uniqueness key; re-mapping deactivates the old
// entry and links the replacement instead of updating in place.
type CatalogEntry struct {
	ID                  int64     `json:"id" db:"id"`
	OriginInstitutionID int64     `json:"originInstitutionId" db:"origin_institution_id"`
	OriginProgramName   string    `json:"originProgramName" db:"origin_program_name"`
	ProgramID           int64     `json:"programId" db:"program_id"`
	CourseID            int64     `json:"courseId" db:"course_id"`
	OriginCode          string    `json:"originCode" db:"origin_code"`
	OriginName          string    `json:"originName" db:"origin_name"`
	OriginCredit        *int      `json:"originCredit,omitempty" db:"origin_credit"`
	CourseCode          string    `json:"courseCode" db:"course_code"`
	CourseName          string    `json:"courseName" db:"course_name"`
	CourseCredit        *int      `json:"courseCredit,omitempty" db:"course_credit"`
	Similarity          int       `json:"similarity" db:"similarity_percentage"`
	DocumentPath        *string   `json:"documentPath,omitempty" db:"document_path"`
	IsActive            bool      `json:"isActive" db:"is_active"`
	ReplacedByEntryID   *int64    `json:"replacedByEntryId,omitempty" db:"replaced_by_entry_id"`
	IntakeYear          *string   `json:"intakeYear,omitempty" db:"intake_year"`
	CreatedAt           time.Time `json:"createdAt" db:"created_at"`

	OriginInstitution *OriginInstitution `json:"originInstitution,omitempty"`
	Program           *Program           `json:"program,omitempty"`
	Course            *Course            `json:"course,omitempty"`
}

// CatalogKey is the uniqueness key of an active catalog entry. Program name
// comparison is case-insensitive.
type CatalogKey struct {
	OriginInstitutionID int64
	OriginProgramName   string
	ProgramID           int64
	CourseID            int64
	OriginCode          string
}

// Key returns the entry's uniqueness key.
func (e *CatalogEntry) Key() CatalogKey {
	return CatalogKey{
		OriginInstitutionID: e.OriginInstitutionID,
		OriginProgramName:   e.OriginProgramName,
		ProgramID:           e.ProgramID,
		CourseID:            e.CourseID,
		OriginCode:          e.OriginCode,
	}
}
