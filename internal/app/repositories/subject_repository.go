package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Freezeyy/CT-BE/internal/app/models"
	"github.com/Freezeyy/CT-BE/internal/db"
)

// Subject error types
var (
	ErrSubjectGroupNotFound = errors.New("subject group not found")
	ErrPastSubjectNotFound  = errors.New("past subject not found")
)

const pastSubjectColumns = `
	id, subject_group_id, origin_code, origin_name, origin_grade, origin_credit,
	syllabus_path, original_filename, approval_status, catalog_entry_id,
	similarity_percentage, needs_sme_review, sme_review_notes, coordinator_notes
`

// SubjectRepository handles database operations for subject groups and past
// subjects
type SubjectRepository struct {
	db *pgxpool.Pool
}

// NewSubjectRepository creates a new subject repository
func NewSubjectRepository(db *pgxpool.Pool) *SubjectRepository {
	return &SubjectRepository{db: db}
}

func scanPastSubject(row pgx.Row) (*models.PastSubject, error) {
	var subject models.PastSubject
	err := row.Scan(
		&subject.ID, &subject.SubjectGroupID,
		&subject.OriginCode, &subject.OriginName, &subject.OriginGrade, &subject.OriginCredit,
		&subject.SyllabusPath, &subject.OriginalFilename,
		&subject.ApprovalStatus, &subject.CatalogEntryID,
		&subject.Similarity, &subject.NeedsSMEReview, &subject.SMENotes, &subject.CoordinatorNotes,
	)
	if err != nil {
		return nil, err
	}
	return &subject, nil
}

// GetGroupByID retrieves a subject group with its course attached when linked
func (r *SubjectRepository) GetGroupByID(ctx context.Context, groupID int64) (*models.SubjectGroup, error) {
	query := `
		SELECT g.id, g.application_id, g.name, g.course_id,
		       c.id, c.program_id, c.name, c.code, c.credit
		FROM subject_groups g
		LEFT JOIN courses c ON c.id = g.course_id
		WHERE g.id = $1
	`

	var group models.SubjectGroup
	var courseID, courseProgramID *int64
	var courseName, courseCode *string
	var courseCredit *int

	err := r.db.QueryRow(ctx, query, groupID).Scan(
		&group.ID, &group.ApplicationID, &group.Name, &group.CourseID,
		&courseID, &courseProgramID, &courseName, &courseCode, &courseCredit,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSubjectGroupNotFound
		}
		return nil, fmt.Errorf("error retrieving subject group: %w", err)
	}

	if courseID != nil {
		group.Course = &models.Course{
			ID:        *courseID,
			ProgramID: *courseProgramID,
			Name:      *courseName,
			Code:      *courseCode,
			Credit:    *courseCredit,
		}
	}

	return &group, nil
}

// GetGroupContext retrieves the application-level context of a subject group:
// the fields needed to resolve the origin institution and scope catalog
// lookups.
func (r *SubjectRepository) GetGroupContext(ctx context.Context, groupID int64) (*models.ApplicationContext, error) {
	query := `
		SELECT a.id, a.program_id, a.origin_institution_id, a.origin_campus_name,
		       COALESCE(a.origin_program_name, '')
		FROM subject_groups g
		JOIN applications a ON a.id = g.application_id
		WHERE g.id = $1
	`

	var appCtx models.ApplicationContext
	err := r.db.QueryRow(ctx, query, groupID).Scan(
		&appCtx.ApplicationID, &appCtx.ProgramID,
		&appCtx.OriginInstitutionID, &appCtx.OriginCampusName, &appCtx.OriginProgramName,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSubjectGroupNotFound
		}
		return nil, fmt.Errorf("error retrieving subject group context: %w", err)
	}

	return &appCtx, nil
}

// GetPastSubjectByID retrieves a past subject by ID
func (r *SubjectRepository) GetPastSubjectByID(ctx context.Context, id int64) (*models.PastSubject, error) {
	query := `SELECT ` + pastSubjectColumns + ` FROM past_subjects WHERE id = $1`

	subject, err := scanPastSubject(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPastSubjectNotFound
		}
		return nil, fmt.Errorf("error retrieving past subject: %w", err)
	}

	return subject, nil
}

// ListByGroup retrieves the past subjects of a group ordered by ID
func (r *SubjectRepository) ListByGroup(ctx context.Context, groupID int64) ([]*models.PastSubject, error) {
	query := `SELECT ` + pastSubjectColumns + ` FROM past_subjects WHERE subject_group_id = $1 ORDER BY id`

	rows, err := r.db.Query(ctx, query, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subjects []*models.PastSubject
	for rows.Next() {
		subject, err := scanPastSubject(rows)
		if err != nil {
			return nil, err
		}
		subjects = append(subjects, subject)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return subjects, nil
}

// UpdateGroupCourse links a subject group to its destination course
func (r *SubjectRepository) UpdateGroupCourse(ctx context.Context, groupID, courseID int64) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE subject_groups SET course_id = $1 WHERE id = $2`,
		courseID, groupID)
	if err != nil {
		return fmt.Errorf("error updating subject group course: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return ErrSubjectGroupNotFound
	}

	return nil
}

// ApproveViaCatalog transitions a past subject to catalog approval, recording
// the matched entry and its similarity. The update is conditional on the
// subject still being pending, so a subject already decided (or re-approved
// concurrently) is left untouched and reported as not updated.
func (r *SubjectRepository) ApproveViaCatalog(ctx context.Context, subjectID, entryID int64, similarity int) (bool, error) {
	cmdTag, err := r.db.Exec(ctx, `
		UPDATE past_subjects
		SET approval_status = $1,
		    catalog_entry_id = $2,
		    similarity_percentage = $3,
		    needs_sme_review = FALSE,
		    coordinator_notes = TRIM(COALESCE(coordinator_notes || E'\n', '') ||
		        'Auto-approved via catalog entry #' || $2)
		WHERE id = $4 AND approval_status = $5
	`, models.ApprovalApprovedTemplate, entryID, similarity, subjectID, models.ApprovalPending)
	if err != nil {
		return false, fmt.Errorf("error approving past subject: %w", err)
	}

	return cmdTag.RowsAffected() > 0, nil
}

// RouteToSME marks the given past subjects for SME review and records the
// review assignments, all in one transaction. Assignments are upserted on
// (sme_id, past_subject_id), so routing the same group twice refreshes the
// existing assignments instead of duplicating them.
func (r *SubjectRepository) RouteToSME(ctx context.Context, subjectIDs []int64, assignment *models.ReviewAssignment, coordinatorNote *string) error {
	return db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		for _, subjectID := range subjectIDs {
			_, err := tx.Exec(ctx, `
				UPDATE past_subjects
				SET approval_status = $1,
				    needs_sme_review = TRUE,
				    coordinator_notes = COALESCE($2, coordinator_notes)
				WHERE id = $3 AND approval_status IN ($4, $5)
			`, models.ApprovalNeedsSMEReview, coordinatorNote, subjectID,
				models.ApprovalPending, models.ApprovalNeedsSMEReview)
			if err != nil {
				return fmt.Errorf("error marking past subject for review: %w", err)
			}

			_, err = tx.Exec(ctx, `
				INSERT INTO review_assignments (sme_id, past_subject_id, subject_group_id, application_id, origin_institution_id)
				VALUES ($1, $2, $3, $4, $5)
				ON CONFLICT (sme_id, past_subject_id) DO UPDATE
				SET subject_group_id = EXCLUDED.subject_group_id,
				    application_id = EXCLUDED.application_id,
				    origin_institution_id = EXCLUDED.origin_institution_id
			`, assignment.SMEID, subjectID, assignment.SubjectGroupID,
				assignment.ApplicationID, assignment.OriginInstitutionID)
			if err != nil {
				return fmt.Errorf("error recording review assignment: %w", err)
			}
		}
		return nil
	})
}

// ApproveWithCatalogEntry finalizes an SME approval for one past subject and
// learns its equivalence, in one transaction: the catalog entry is inserted
// unless an active entry with the same uniqueness key already exists, and the
// subject is linked to whichever entry ends up active. Returns the linked
// entry.
func (r *SubjectRepository) ApproveWithCatalogEntry(ctx context.Context, subject *models.PastSubject, entry *models.CatalogEntry, smeNotes *string) (*models.CatalogEntry, error) {
	var linked *models.CatalogEntry

	err := db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		insertQuery := `
			INSERT INTO catalog_entries (
				origin_institution_id, origin_program_name, program_id, course_id,
				origin_code, origin_name, origin_credit,
				course_code, course_name, course_credit,
				similarity_percentage, document_path, intake_year
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
			ON CONFLICT (origin_institution_id, lower(origin_program_name), program_id, course_id, origin_code)
				WHERE is_active
			DO NOTHING
			RETURNING ` + catalogColumns + `
		`

		created, err := scanCatalogEntry(tx.QueryRow(ctx, insertQuery,
			entry.OriginInstitutionID, entry.OriginProgramName, entry.ProgramID, entry.CourseID,
			entry.OriginCode, entry.OriginName, entry.OriginCredit,
			entry.CourseCode, entry.CourseName, entry.CourseCredit,
			entry.Similarity, entry.DocumentPath, entry.IntakeYear,
		))
		if err != nil {
			if !errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("error creating catalog entry: %w", err)
			}

			// Conflict: link the subject to the existing active entry.
			key := entry.Key()
			existing, err := scanCatalogEntry(tx.QueryRow(ctx, `
				SELECT `+catalogColumns+`
				FROM catalog_entries
				WHERE is_active
				  AND origin_institution_id = $1
				  AND LOWER(origin_program_name) = LOWER($2)
				  AND program_id = $3
				  AND course_id = $4
				  AND origin_code = $5
			`, key.OriginInstitutionID, key.OriginProgramName, key.ProgramID, key.CourseID, key.OriginCode))
			if err != nil {
				return fmt.Errorf("error retrieving existing catalog entry: %w", err)
			}
			created = existing
		}

		cmdTag, err := tx.Exec(ctx, `
			UPDATE past_subjects
			SET approval_status = $1,
			    catalog_entry_id = $2,
			    similarity_percentage = $3,
			    needs_sme_review = FALSE,
			    sme_review_notes = COALESCE($4, sme_review_notes)
			WHERE id = $5
		`, models.ApprovalApprovedSME, created.ID, entry.Similarity, smeNotes, subject.ID)
		if err != nil {
			return fmt.Errorf("error finalizing past subject approval: %w", err)
		}
		if cmdTag.RowsAffected() == 0 {
			return ErrPastSubjectNotFound
		}

		linked = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	return linked, nil
}

// Reject transitions a past subject to rejected with the SME's similarity
// score and notes
func (r *SubjectRepository) Reject(ctx context.Context, subjectID int64, similarity int, smeNotes *string) error {
	cmdTag, err := r.db.Exec(ctx, `
		UPDATE past_subjects
		SET approval_status = $1,
		    similarity_percentage = $2,
		    needs_sme_review = FALSE,
		    sme_review_notes = COALESCE($3, sme_review_notes)
		WHERE id = $4
	`, models.ApprovalRejected, similarity, smeNotes, subjectID)
	if err != nil {
		return fmt.Errorf("error rejecting past subject: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return ErrPastSubjectNotFound
	}

	return nil
}
