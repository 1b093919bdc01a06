package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Freezeyy/CT-BE/internal/app/models"
)

// Staff error types
var (
	ErrCoordinatorNotFound = errors.New("coordinator not found")
	ErrSMENotFound         = errors.New("subject method expert not found")
)

// StaffRepository handles database operations for coordinator and SME
// appointments
type StaffRepository struct {
	db *pgxpool.Pool
}

// NewStaffRepository creates a new staff repository
func NewStaffRepository(db *pgxpool.Pool) *StaffRepository {
	return &StaffRepository{db: db}
}

// CreateCoordinator creates a coordinator appointment
func (r *StaffRepository) CreateCoordinator(ctx context.Context, coordinator *models.Coordinator) error {
	query := `
		INSERT INTO coordinators (user_id, program_id, start_date, end_date)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	err := r.db.QueryRow(ctx, query,
		coordinator.UserID, coordinator.ProgramID, coordinator.StartDate, coordinator.EndDate,
	).Scan(&coordinator.ID)
	if err != nil {
		return fmt.Errorf("error creating coordinator: %w", err)
	}

	return nil
}

// GetActiveCoordinatorByProgram retrieves the active coordinator of a program.
// Active means the appointment has no end date.
func (r *StaffRepository) GetActiveCoordinatorByProgram(ctx context.Context, programID int64) (*models.Coordinator, error) {
	query := `
		SELECT id, user_id, program_id, start_date, end_date
		FROM coordinators
		WHERE program_id = $1 AND end_date IS NULL
		ORDER BY start_date DESC
		LIMIT 1
	`

	var coordinator models.Coordinator
	err := r.db.QueryRow(ctx, query, programID).Scan(
		&coordinator.ID, &coordinator.UserID, &coordinator.ProgramID,
		&coordinator.StartDate, &coordinator.EndDate,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCoordinatorNotFound
		}
		return nil, fmt.Errorf("error retrieving coordinator: %w", err)
	}

	return &coordinator, nil
}

// GetActiveCoordinatorByUser retrieves the active coordinator appointment of a
// user
func (r *StaffRepository) GetActiveCoordinatorByUser(ctx context.Context, userID int64) (*models.Coordinator, error) {
	query := `
		SELECT id, user_id, program_id, start_date, end_date
		FROM coordinators
		WHERE user_id = $1 AND end_date IS NULL
		ORDER BY start_date DESC
		LIMIT 1
	`

	var coordinator models.Coordinator
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&coordinator.ID, &coordinator.UserID, &coordinator.ProgramID,
		&coordinator.StartDate, &coordinator.EndDate,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCoordinatorNotFound
		}
		return nil, fmt.Errorf("error retrieving coordinator: %w", err)
	}

	return &coordinator, nil
}

// CreateSME creates a subject method expert appointment
func (r *StaffRepository) CreateSME(ctx context.Context, sme *models.SubjectMethodExpert) error {
	query := `
		INSERT INTO subject_method_experts (user_id, course_id, start_date, end_date)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	err := r.db.QueryRow(ctx, query,
		sme.UserID, sme.CourseID, sme.StartDate, sme.EndDate,
	).Scan(&sme.ID)
	if err != nil {
		return fmt.Errorf("error creating subject method expert: %w", err)
	}

	return nil
}

// GetActiveSMEByCourse retrieves the active SME of a course. Active means the
// appointment has no end date.
func (r *StaffRepository) GetActiveSMEByCourse(ctx context.Context, courseID int64) (*models.SubjectMethodExpert, error) {
	query := `
		SELECT id, user_id, course_id, start_date, end_date
		FROM subject_method_experts
		WHERE course_id = $1 AND end_date IS NULL
		ORDER BY start_date DESC
		LIMIT 1
	`

	var sme models.SubjectMethodExpert
	err := r.db.QueryRow(ctx, query, courseID).Scan(
		&sme.ID, &sme.UserID, &sme.CourseID, &sme.StartDate, &sme.EndDate,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSMENotFound
		}
		return nil, fmt.Errorf("error retrieving subject method expert: %w", err)
	}

	return &sme, nil
}

// GetActiveSMEsByUser retrieves the active SME appointments of a user with
// their courses attached. A lecturer may be the SME of several courses.
func (r *StaffRepository) GetActiveSMEsByUser(ctx context.Context, userID int64) ([]*models.SubjectMethodExpert, error) {
	query := `
		SELECT s.id, s.user_id, s.course_id, s.start_date, s.end_date,
		       c.id, c.program_id, c.name, c.code, c.credit
		FROM subject_method_experts s
		JOIN courses c ON c.id = s.course_id
		WHERE s.user_id = $1 AND s.end_date IS NULL
		ORDER BY c.code
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var smes []*models.SubjectMethodExpert
	for rows.Next() {
		var sme models.SubjectMethodExpert
		var course models.Course
		if err := rows.Scan(
			&sme.ID, &sme.UserID, &sme.CourseID, &sme.StartDate, &sme.EndDate,
			&course.ID, &course.ProgramID, &course.Name, &course.Code, &course.Credit,
		); err != nil {
			return nil, err
		}
		sme.Course = &course
		smes = append(smes, &sme)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return smes, nil
}

// EndSMEAppointment closes an SME appointment by setting its end date
func (r *StaffRepository) EndSMEAppointment(ctx context.Context, smeID int64) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE subject_method_experts SET end_date = NOW() WHERE id = $1 AND end_date IS NULL`,
		smeID)
	if err != nil {
		return fmt.Errorf("error ending SME appointment: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return ErrSMENotFound
	}

	return nil
}
