package models

// RoleType defines the user role type
type RoleType string

const (
	RoleStudent  RoleType = "STUDENT"
	RoleLecturer RoleType = "LECTURER"
)

// ApplicationStatus is the lifecycle status of a credit-transfer application.
type ApplicationStatus string

const (
	ApplicationStatusDraft     ApplicationStatus = "draft"
	ApplicationStatusSubmitted ApplicationStatus = "submitted"
)

// ApprovalStatus is the adjudication state of a single past subject.
type ApprovalStatus string

const (
	ApprovalPending          ApprovalStatus = "pending"
	ApprovalApprovedTemplate ApprovalStatus = "approved_template3"
	ApprovalApprovedSME      ApprovalStatus = "approved_sme"
	ApprovalRejected         ApprovalStatus = "rejected"
	ApprovalNeedsSMEReview   ApprovalStatus = "needs_sme_review"
)

// IsTerminal reports whether no further engine transition applies.
// A draft edit rebuilding the subject tree is the only path back to pending,
// and that is owned by the application editing flow, not the engine.
func (s ApprovalStatus) IsTerminal() bool {
	switch s {
	case ApprovalApprovedTemplate, ApprovalApprovedSME, ApprovalRejected:
		return true
	}
	return false
}
