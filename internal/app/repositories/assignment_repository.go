package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Freezeyy/CT-BE/internal/app/models"
)

// AssignmentRepository handles database operations for SME review assignments
type AssignmentRepository struct {
	db *pgxpool.Pool
}

// NewAssignmentRepository creates a new assignment repository
func NewAssignmentRepository(db *pgxpool.Pool) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// Upsert records a review assignment, refreshing the existing row when the
// (SME, past subject) pair was already assigned
func (r *AssignmentRepository) Upsert(ctx context.Context, assignment *models.ReviewAssignment) error {
	query := `
		INSERT INTO review_assignments (sme_id, past_subject_id, subject_group_id, application_id, origin_institution_id)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (sme_id, past_subject_id) DO UPDATE
		SET subject_group_id = EXCLUDED.subject_group_id,
		    application_id = EXCLUDED.application_id,
		    origin_institution_id = EXCLUDED.origin_institution_id
		RETURNING id, created_at
	`

	err := r.db.QueryRow(ctx, query,
		assignment.SMEID, assignment.PastSubjectID, assignment.SubjectGroupID,
		assignment.ApplicationID, assignment.OriginInstitutionID,
	).Scan(&assignment.ID, &assignment.CreatedAt)
	if err != nil {
		return fmt.Errorf("error recording review assignment: %w", err)
	}

	return nil
}

// ListByGroup retrieves the review assignments pointing at a subject group
func (r *AssignmentRepository) ListByGroup(ctx context.Context, groupID int64) ([]*models.ReviewAssignment, error) {
	query := `
		SELECT id, sme_id, past_subject_id, subject_group_id, application_id, origin_institution_id, created_at
		FROM review_assignments
		WHERE subject_group_id = $1
		ORDER BY id
	`

	rows, err := r.db.Query(ctx, query, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assignments []*models.ReviewAssignment
	for rows.Next() {
		var assignment models.ReviewAssignment
		if err := rows.Scan(
			&assignment.ID, &assignment.SMEID, &assignment.PastSubjectID,
			&assignment.SubjectGroupID, &assignment.ApplicationID,
			&assignment.OriginInstitutionID, &assignment.CreatedAt,
		); err != nil {
			return nil, err
		}
		assignments = append(assignments, &assignment)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return assignments, nil
}

// HasAssignmentForGroup reports whether any of the SME's appointments hold an
// assignment pointing at the subject group. The SME IDs are the caller's
// active appointment IDs.
func (r *AssignmentRepository) HasAssignmentForGroup(ctx context.Context, smeIDs []int64, groupID int64) (bool, error) {
	if len(smeIDs) == 0 {
		return false, nil
	}

	query := `
		SELECT EXISTS (
			SELECT 1 FROM review_assignments
			WHERE subject_group_id = $1 AND sme_id = ANY($2)
		)
	`

	var assigned bool
	if err := r.db.QueryRow(ctx, query, groupID, smeIDs).Scan(&assigned); err != nil {
		return false, fmt.Errorf("error checking review assignment: %w", err)
	}

	return assigned, nil
}

// HasAssignmentForSubjects reports whether any of the SME's appointments hold
// an assignment pointing at one of the given past subjects.
func (r *AssignmentRepository) HasAssignmentForSubjects(ctx context.Context, smeIDs, subjectIDs []int64) (bool, error) {
	if len(smeIDs) == 0 || len(subjectIDs) == 0 {
		return false, nil
	}

	query := `
		SELECT EXISTS (
			SELECT 1 FROM review_assignments
			WHERE past_subject_id = ANY($1) AND sme_id = ANY($2)
		)
	`

	var assigned bool
	if err := r.db.QueryRow(ctx, query, subjectIDs, smeIDs).Scan(&assigned); err != nil {
		return false, fmt.Errorf("error checking review assignment: %w", err)
	}

	return assigned, nil
}

// ListGroupIDsForSMEs retrieves the distinct subject groups assigned to the
// given SME appointments, newest assignment first
func (r *AssignmentRepository) ListGroupIDsForSMEs(ctx context.Context, smeIDs []int64) ([]int64, error) {
	if len(smeIDs) == 0 {
		return nil, nil
	}

	query := `
		SELECT subject_group_id
		FROM review_assignments
		WHERE sme_id = ANY($1)
		GROUP BY subject_group_id
		ORDER BY MAX(created_at) DESC, subject_group_id
	`

	rows, err := r.db.Query(ctx, query, smeIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groupIDs []int64
	for rows.Next() {
		var groupID int64
		if err := rows.Scan(&groupID); err != nil {
			return nil, err
		}
		groupIDs = append(groupIDs, groupID)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return groupIDs, nil
}

// ListIDsByGroupForSMEs retrieves the assignment IDs the given SME
// appointments hold for one subject group
func (r *AssignmentRepository) ListIDsByGroupForSMEs(ctx context.Context, smeIDs []int64, groupID int64) ([]int64, error) {
	if len(smeIDs) == 0 {
		return nil, nil
	}

	query := `
		SELECT id
		FROM review_assignments
		WHERE subject_group_id = $1 AND sme_id = ANY($2)
		ORDER BY id
	`

	rows, err := r.db.Query(ctx, query, groupID, smeIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return ids, nil
}
