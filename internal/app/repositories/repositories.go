package repositories

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository        *UserRepository
	InstitutionRepository *InstitutionRepository
	ProgramRepository     *ProgramRepository
	StaffRepository       *StaffRepository
	ApplicationRepository *ApplicationRepository
	SubjectRepository     *SubjectRepository
	CatalogRepository     *CatalogRepository
	AssignmentRepository  *AssignmentRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		UserRepository:        NewUserRepository(db),
		InstitutionRepository: NewInstitutionRepository(db),
		ProgramRepository:     NewProgramRepository(db),
		StaffRepository:       NewStaffRepository(db),
		ApplicationRepository: NewApplicationRepository(db),
		SubjectRepository:     NewSubjectRepository(db),
		CatalogRepository:     NewCatalogRepository(db),
		AssignmentRepository:  NewAssignmentRepository(db),
	}
}
