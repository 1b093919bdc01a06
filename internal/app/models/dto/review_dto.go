package dto

import "github.com/Freezeyy/CT-BE/internal/app/models"

// ReviewRequest is an SME's similarity judgment for a whole group
type ReviewRequest struct {
	Similarity *int   `json:"similarity" binding:"required" example:"85"`
	Notes      string `json:"notes" example:"Topic coverage is near-identical"`
}

// ReviewResult reports the group-wide disposition and any catalog entries
// created or reused by template learning
type ReviewResult struct {
	SubjectGroupID  int64                  `json:"subjectGroupId"`
	Disposition     models.ApprovalStatus  `json:"disposition" example:"approved_sme"`
	UpdatedSubjects []*models.PastSubject  `json:"updatedSubjects"`
	CatalogEntries  []*models.CatalogEntry `json:"catalogEntries,omitempty"`
}
