package models

// Program is a destination program offered by this institution.
type Program struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
	Code string `json:"code" db:"code"`

	Courses []*Course `json:"courses,omitempty"`
}

// Course is a destination course within a program.
type Course struct {
	ID        int64  `json:"id" db:"id"`
	ProgramID int64  `json:"programId" db:"program_id"`
	Name      string `json:"name" db:"name"`
	Code      string `json:"code" db:"code"`
	Credit    int    `json:"credit" db:"credit"`

	Program *Program `json:"program,omitempty"`
}

// OriginInstitution is a prior school/college students transfer from,
// distinct from the institution running this system.
type OriginInstitution struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}
