package dto

import "github.com/Freezeyy/CT-BE/internal/app/models"

// SubjectMatch pairs one past subject with its catalog match, if any
type SubjectMatch struct {
	PastSubject *models.PastSubject  `json:"pastSubject"`
	Match       *models.CatalogEntry `json:"match,omitempty"`
}

// MatchCheckResult is the outcome of running the matcher over a group's
// pending past subjects
type MatchCheckResult struct {
	SubjectGroupID int64          `json:"subjectGroupId"`
	PerSubject     []SubjectMatch `json:"perSubject"`
	AllMatched     bool           `json:"allMatched"`
	AnyMatched     bool           `json:"anyMatched"`
}

// RouteToSMERequest routes a group (or single subject) to its SME
type RouteToSMERequest struct {
	Note string `json:"note" example:"No catalog match, needs manual comparison"`
}

// RouteToSMEResult reports the routing outcome
type RouteToSMEResult struct {
	SubjectGroupID int64                      `json:"subjectGroupId"`
	SMEID          int64                      `json:"smeId"`
	CourseID       int64                      `json:"courseId"`
	Assignments    []*models.ReviewAssignment `json:"assignments"`
	RoutedSubjects []*models.PastSubject      `json:"routedSubjects"`
}

// ApproveResult reports a catalog-based approval outcome
type ApproveResult struct {
	SubjectGroupID   int64                 `json:"subjectGroupId"`
	ApprovedSubjects []*models.PastSubject `json:"approvedSubjects"`
}

// SMEWorkItem is one current subject in an SME's worklist, with all its past
// subjects gathered so they can be reviewed as a single package
type SMEWorkItem struct {
	SubjectGroup *models.SubjectGroup `json:"subjectGroup"`
	Application  *models.Application  `json:"application"`
	Course       *models.Course       `json:"course"`
	PastSubjects []*models.PastSubject `json:"pastSubjects"`
	AssignmentIDs []int64             `json:"assignmentIds"`
}
