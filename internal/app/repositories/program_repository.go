package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Freezeyy/CT-BE/internal/app/models"
)

// Program error types
var (
	ErrProgramNotFound = errors.New("program not found")
	ErrCourseNotFound  = errors.New("course not found")
)

// ProgramRepository handles database operations for programs and courses
type ProgramRepository struct {
	db *pgxpool.Pool
}

// NewProgramRepository creates a new program repository
func NewProgramRepository(db *pgxpool.Pool) *ProgramRepository {
	return &ProgramRepository{db: db}
}

// CreateProgram creates a new program
func (r *ProgramRepository) CreateProgram(ctx context.Context, program *models.Program) error {
	query := `
		INSERT INTO programs (name, code)
		VALUES ($1, $2)
		RETURNING id
	`

	if err := r.db.QueryRow(ctx, query, program.Name, program.Code).Scan(&program.ID); err != nil {
		return fmt.Errorf("error creating program: %w", err)
	}

	return nil
}

// GetProgramByID retrieves a program by ID
func (r *ProgramRepository) GetProgramByID(ctx context.Context, id int64) (*models.Program, error) {
	query := `
		SELECT id, name, code
		FROM programs
		WHERE id = $1
	`

	var program models.Program
	err := r.db.QueryRow(ctx, query, id).Scan(&program.ID, &program.Name, &program.Code)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProgramNotFound
		}
		return nil, fmt.Errorf("error retrieving program: %w", err)
	}

	return &program, nil
}

// GetProgramByCode retrieves a program by its code
func (r *ProgramRepository) GetProgramByCode(ctx context.Context, code string) (*models.Program, error) {
	query := `
		SELECT id, name, code
		FROM programs
		WHERE code = $1
	`

	var program models.Program
	err := r.db.QueryRow(ctx, query, code).Scan(&program.ID, &program.Name, &program.Code)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProgramNotFound
		}
		return nil, fmt.Errorf("error retrieving program by code: %w", err)
	}

	return &program, nil
}

// CreateCourse creates a new course
func (r *ProgramRepository) CreateCourse(ctx context.Context, course *models.Course) error {
	query := `
		INSERT INTO courses (program_id, name, code, credit)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	err := r.db.QueryRow(ctx, query,
		course.ProgramID, course.Name, course.Code, course.Credit,
	).Scan(&course.ID)
	if err != nil {
		return fmt.Errorf("error creating course: %w", err)
	}

	return nil
}

// GetCourseByID retrieves a course by ID
func (r *ProgramRepository) GetCourseByID(ctx context.Context, id int64) (*models.Course, error) {
	query := `
		SELECT id, program_id, name, code, credit
		FROM courses
		WHERE id = $1
	`

	var course models.Course
	err := r.db.QueryRow(ctx, query, id).Scan(
		&course.ID, &course.ProgramID, &course.Name, &course.Code, &course.Credit,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("error retrieving course: %w", err)
	}

	return &course, nil
}

// GetCourseByName retrieves a course within a program by name. Legacy
// fallback: subject groups created before course links carried only a display
// name that matches the course name.
func (r *ProgramRepository) GetCourseByName(ctx context.Context, programID int64, name string) (*models.Course, error) {
	query := `
		SELECT id, program_id, name, code, credit
		FROM courses
		WHERE program_id = $1 AND LOWER(name) = LOWER($2)
		ORDER BY id
		LIMIT 1
	`

	var course models.Course
	err := r.db.QueryRow(ctx, query, programID, name).Scan(
		&course.ID, &course.ProgramID, &course.Name, &course.Code, &course.Credit,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("error retrieving course by name: %w", err)
	}

	return &course, nil
}

// ListCoursesByProgram retrieves all courses of a program
func (r *ProgramRepository) ListCoursesByProgram(ctx context.Context, programID int64) ([]*models.Course, error) {
	query := `
		SELECT id, program_id, name, code, credit
		FROM courses
		WHERE program_id = $1
		ORDER BY code
	`

	rows, err := r.db.Query(ctx, query, programID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var courses []*models.Course
	for rows.Next() {
		var course models.Course
		if err := rows.Scan(
			&course.ID, &course.ProgramID, &course.Name, &course.Code, &course.Credit,
		); err != nil {
			return nil, err
		}
		courses = append(courses, &course)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return courses, nil
}
