package dto

// PastSubjectInput is one origin subject inside a submitted mapping.
// Syllabus names the uploaded file the subject's document comes from; it is
// required on submission and optional on drafts.
type PastSubjectInput struct {
	Code     string `json:"code" binding:"required" example:"CS101"`
	Name     string `json:"name" binding:"required" example:"Introduction to Programming"`
	Grade    string `json:"grade" binding:"required" example:"A"`
	Credit   *int   `json:"credit,omitempty" example:"3"`
	Syllabus string `json:"syllabus,omitempty" example:"cs101-syllabus.pdf"`
}

// MappingInput maps one destination course target to its past subjects
type MappingInput struct {
	CurrentSubject string             `json:"currentSubject" binding:"required" example:"Programming Fundamentals"`
	CourseID       *int64             `json:"courseId,omitempty" example:"12"`
	PastSubjects   []PastSubjectInput `json:"pastSubjects" binding:"required,min=1"`
}

// SubmitApplicationRequest creates or updates a credit-transfer application.
// Mappings arrive as a JSON string alongside multipart file uploads.
type SubmitApplicationRequest struct {
	ProgramCode       string  `form:"programCode" binding:"required" example:"BSE"`
	Status            string  `form:"status" binding:"required,oneof=draft submitted" example:"submitted"`
	Mappings          string  `form:"mappings" binding:"required"`
	DraftID           *int64  `form:"draftId"`
	OriginCampusName  *string `form:"originCampusName" example:"Sunway College"`
	OriginProgramName *string `form:"originProgramName" example:"Diploma in IT"`
}

// UpdateApplicationRequest lets a coordinator edit application metadata
type UpdateApplicationRequest struct {
	Status              *string `json:"status,omitempty" example:"submitted"`
	Notes               *string `json:"notes,omitempty"`
	OriginCampusName    *string `json:"originCampusName,omitempty" example:"Sunway College"`
	OriginProgramName   *string `json:"originProgramName,omitempty" example:"Diploma in IT"`
	OriginInstitutionID *int64  `json:"originInstitutionId,omitempty" example:"3"`
}

// SubmitApplicationResponse acknowledges a submission or draft save
type SubmitApplicationResponse struct {
	ApplicationID int64  `json:"applicationId" example:"42"`
	Status        string `json:"status" example:"submitted"`
	Message       string `json:"message" example:"Application submitted successfully"`
}
