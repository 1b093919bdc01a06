package dto

import "github.com/Freezeyy/CT-BE/internal/app/models"

// CreateCatalogEntryRequest creates a single pre-approved equivalence.
// Destination course fields default to the course record when omitted.
type CreateCatalogEntryRequest struct {
	OriginInstitutionID int64   `json:"originInstitutionId" binding:"required" example:"3"`
	OriginProgramName   string  `json:"originProgramName" binding:"required" example:"Diploma in IT"`
	ProgramID           int64   `json:"programId" binding:"required" example:"1"`
	CourseID            int64   `json:"courseId" binding:"required" example:"12"`
	OriginCode          string  `json:"originCode" binding:"required" example:"CS101"`
	OriginName          string  `json:"originName" binding:"required" example:"Introduction to Programming"`
	OriginCredit        *int    `json:"originCredit,omitempty" example:"3"`
	CourseCode          *string `json:"courseCode,omitempty" example:"SWE1001"`
	CourseName          *string `json:"courseName,omitempty" example:"Programming Fundamentals"`
	CourseCredit        *int    `json:"courseCredit,omitempty" example:"4"`
	Similarity          *int    `json:"similarity,omitempty" example:"90"`
	DocumentPath        *string `json:"documentPath,omitempty"`
	IntakeYear          *string `json:"intakeYear,omitempty" example:"2026"`
}

// BulkCatalogMapping is one mapping within a bulk creation request
type BulkCatalogMapping struct {
	CourseID     int64   `json:"courseId" binding:"required" example:"12"`
	OriginCode   string  `json:"originCode" binding:"required" example:"CS101"`
	OriginName   string  `json:"originName" binding:"required" example:"Introduction to Programming"`
	OriginCredit *int    `json:"originCredit,omitempty"`
	CourseCode   *string `json:"courseCode,omitempty"`
	CourseName   *string `json:"courseName,omitempty"`
	CourseCredit *int    `json:"courseCredit,omitempty"`
	Similarity   *int    `json:"similarity,omitempty" example:"85"`
}

// BulkCreateCatalogRequest creates many entries sharing one origin context
type BulkCreateCatalogRequest struct {
	OriginInstitutionID int64                `json:"originInstitutionId" binding:"required"`
	OriginProgramName   string               `json:"originProgramName" binding:"required"`
	ProgramID           int64                `json:"programId" binding:"required"`
	IntakeYear          *string              `json:"intakeYear,omitempty"`
	DocumentPath        *string              `json:"documentPath,omitempty"`
	Mappings            []BulkCatalogMapping `json:"mappings" binding:"required,min=1"`
}

// BulkMappingError reports one failed mapping from a bulk creation.
// Sibling mappings are persisted independently of failures.
type BulkMappingError struct {
	Mapping BulkCatalogMapping `json:"mapping"`
	Error   string             `json:"error"`
}

// BulkCreateCatalogResult pairs created entries with per-mapping errors
type BulkCreateCatalogResult struct {
	Created []*models.CatalogEntry `json:"created"`
	Errors  []BulkMappingError     `json:"errors,omitempty"`
}

// CatalogFilter narrows catalog listings; name filters are case-insensitive
// substring matches
type CatalogFilter struct {
	OriginInstitutionID *int64 `form:"originInstitutionId"`
	OriginCampusName    string `form:"originCampusName"`
	OriginProgramName   string `form:"originProgramName"`
	ProgramID           *int64 `form:"programId"`
	IncludeInactive     bool   `form:"includeInactive"`
}

// DeactivateCatalogEntryRequest deactivates an entry, optionally recording
// the entry superseding it
type DeactivateCatalogEntryRequest struct {
	ReplacedByEntryID *int64 `json:"replacedByEntryId,omitempty" example:"77"`
}
