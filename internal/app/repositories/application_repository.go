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

// Application error types
var (
	ErrApplicationNotFound = errors.New("application not found")
)

// ApplicationRepository handles database operations for applications, their
// subject groups and past subjects
type ApplicationRepository struct {
	db *pgxpool.Pool
}

// NewApplicationRepository creates a new application repository
func NewApplicationRepository(db *pgxpool.Pool) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

// Create persists an application together with its subject groups and past
// subjects in one transaction
func (r *ApplicationRepository) Create(ctx context.Context, application *models.Application) error {
	return db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO applications (status, notes, origin_institution_id, origin_campus_name,
			                          origin_program_name, transcript_path, student_id, coordinator_id, program_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING id, created_at, updated_at
		`, application.Status, application.Notes, application.OriginInstitutionID,
			application.OriginCampusName, application.OriginProgramName, application.TranscriptPath,
			application.StudentID, application.CoordinatorID, application.ProgramID,
		).Scan(&application.ID, &application.CreatedAt, &application.UpdatedAt)
		if err != nil {
			return fmt.Errorf("error creating application: %w", err)
		}

		for _, group := range application.SubjectGroups {
			group.ApplicationID = application.ID
			if err := insertGroupTx(ctx, tx, group); err != nil {
				return err
			}
		}

		return nil
	})
}

func insertGroupTx(ctx context.Context, tx pgx.Tx, group *models.SubjectGroup) error {
	err := tx.QueryRow(ctx, `
		INSERT INTO subject_groups (application_id, name, course_id)
		VALUES ($1, $2, $3)
		RETURNING id
	`, group.ApplicationID, group.Name, group.CourseID).Scan(&group.ID)
	if err != nil {
		return fmt.Errorf("error creating subject group: %w", err)
	}

	for _, subject := range group.PastSubjects {
		subject.SubjectGroupID = group.ID
		if err := insertSubjectTx(ctx, tx, subject); err != nil {
			return err
		}
	}

	return nil
}

func insertSubjectTx(ctx context.Context, tx pgx.Tx, subject *models.PastSubject) error {
	if subject.ApprovalStatus == "" {
		subject.ApprovalStatus = models.ApprovalPending
	}

	err := tx.QueryRow(ctx, `
		INSERT INTO past_subjects (subject_group_id, origin_code, origin_name, origin_grade,
		                           origin_credit, syllabus_path, original_filename, approval_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`, subject.SubjectGroupID, subject.OriginCode, subject.OriginName, subject.OriginGrade,
		subject.OriginCredit, subject.SyllabusPath, subject.OriginalFilename, subject.ApprovalStatus,
	).Scan(&subject.ID)
	if err != nil {
		return fmt.Errorf("error creating past subject: %w", err)
	}

	return nil
}

// UpdateDraft reconciles a draft application with a new submission in one
// transaction: application fields are updated, listed groups and subjects are
// deleted, groups and subjects with an ID are updated in place, and the rest
// are inserted. Subjects updated in place keep their syllabus references.
func (r *ApplicationRepository) UpdateDraft(ctx context.Context, application *models.Application, deleteSubjectIDs, deleteGroupIDs []int64) error {
	return db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		cmdTag, err := tx.Exec(ctx, `
			UPDATE applications
			SET status = $1, notes = $2, origin_institution_id = $3, origin_campus_name = $4,
			    origin_program_name = $5, transcript_path = $6, updated_at = NOW()
			WHERE id = $7
		`, application.Status, application.Notes, application.OriginInstitutionID,
			application.OriginCampusName, application.OriginProgramName, application.TranscriptPath,
			application.ID)
		if err != nil {
			return fmt.Errorf("error updating application: %w", err)
		}
		if cmdTag.RowsAffected() == 0 {
			return ErrApplicationNotFound
		}

		if len(deleteSubjectIDs) > 0 {
			if _, err := tx.Exec(ctx,
				`DELETE FROM past_subjects WHERE id = ANY($1)`, deleteSubjectIDs); err != nil {
				return fmt.Errorf("error deleting past subjects: %w", err)
			}
		}
		if len(deleteGroupIDs) > 0 {
			if _, err := tx.Exec(ctx,
				`DELETE FROM subject_groups WHERE id = ANY($1)`, deleteGroupIDs); err != nil {
				return fmt.Errorf("error deleting subject groups: %w", err)
			}
		}

		for _, group := range application.SubjectGroups {
			if group.ID == 0 {
				group.ApplicationID = application.ID
				if err := insertGroupTx(ctx, tx, group); err != nil {
					return err
				}
				continue
			}

			if _, err := tx.Exec(ctx,
				`UPDATE subject_groups SET name = $1, course_id = $2 WHERE id = $3`,
				group.Name, group.CourseID, group.ID); err != nil {
				return fmt.Errorf("error updating subject group: %w", err)
			}

			for _, subject := range group.PastSubjects {
				if subject.ID == 0 {
					subject.SubjectGroupID = group.ID
					if err := insertSubjectTx(ctx, tx, subject); err != nil {
						return err
					}
					continue
				}

				_, err := tx.Exec(ctx, `
					UPDATE past_subjects
					SET origin_name = $1, origin_grade = $2, origin_credit = $3,
					    syllabus_path = COALESCE($4, syllabus_path),
					    original_filename = COALESCE($5, original_filename)
					WHERE id = $6
				`, subject.OriginName, subject.OriginGrade, subject.OriginCredit,
					subject.SyllabusPath, subject.OriginalFilename, subject.ID)
				if err != nil {
					return fmt.Errorf("error updating past subject: %w", err)
				}
			}
		}

		return nil
	})
}

// GetByID retrieves an application without its subject tree
func (r *ApplicationRepository) GetByID(ctx context.Context, id int64) (*models.Application, error) {
	query := `
		SELECT id, status, notes, origin_institution_id, origin_campus_name, origin_program_name,
		       transcript_path, student_id, coordinator_id, program_id, created_at, updated_at
		FROM applications
		WHERE id = $1
	`

	application, err := scanApplication(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrApplicationNotFound
		}
		return nil, fmt.Errorf("error retrieving application: %w", err)
	}

	return application, nil
}

func scanApplication(row pgx.Row) (*models.Application, error) {
	var application models.Application
	err := row.Scan(
		&application.ID, &application.Status, &application.Notes,
		&application.OriginInstitutionID, &application.OriginCampusName, &application.OriginProgramName,
		&application.TranscriptPath, &application.StudentID, &application.CoordinatorID,
		&application.ProgramID, &application.CreatedAt, &application.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &application, nil
}

// GetWithDetails retrieves an application with its subject groups, past
// subjects and linked catalog entries
func (r *ApplicationRepository) GetWithDetails(ctx context.Context, id int64) (*models.Application, error) {
	application, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := r.loadSubjectTree(ctx, application); err != nil {
		return nil, err
	}

	return application, nil
}

// GetDraftByStudent retrieves the student's most recent draft application with
// its subject tree, or ErrApplicationNotFound when the student has none
func (r *ApplicationRepository) GetDraftByStudent(ctx context.Context, studentID int64) (*models.Application, error) {
	query := `
		SELECT id, status, notes, origin_institution_id, origin_campus_name, origin_program_name,
		       transcript_path, student_id, coordinator_id, program_id, created_at, updated_at
		FROM applications
		WHERE student_id = $1 AND status = $2
		ORDER BY updated_at DESC
		LIMIT 1
	`

	application, err := scanApplication(r.db.QueryRow(ctx, query, studentID, models.ApplicationStatusDraft))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrApplicationNotFound
		}
		return nil, fmt.Errorf("error retrieving draft application: %w", err)
	}

	if err := r.loadSubjectTree(ctx, application); err != nil {
		return nil, err
	}

	return application, nil
}

// ListByStudent retrieves a student's applications, newest first, without
// their subject trees
func (r *ApplicationRepository) ListByStudent(ctx context.Context, studentID int64) ([]*models.Application, error) {
	query := `
		SELECT id, status, notes, origin_institution_id, origin_campus_name, origin_program_name,
		       transcript_path, student_id, coordinator_id, program_id, created_at, updated_at
		FROM applications
		WHERE student_id = $1
		ORDER BY created_at DESC
	`

	return r.listApplications(ctx, query, studentID)
}

// ListByCoordinator retrieves the submitted applications assigned to a
// coordinator, newest first, with the owning students attached
func (r *ApplicationRepository) ListByCoordinator(ctx context.Context, coordinatorID int64) ([]*models.Application, error) {
	query := `
		SELECT a.id, a.status, a.notes, a.origin_institution_id, a.origin_campus_name, a.origin_program_name,
		       a.transcript_path, a.student_id, a.coordinator_id, a.program_id, a.created_at, a.updated_at,
		       s.id, s.user_id, s.phone, s.origin_institution_id,
		       u.id, u.email, u.name, u.role, u.is_admin
		FROM applications a
		JOIN students s ON s.id = a.student_id
		JOIN users u ON u.id = s.user_id
		WHERE a.coordinator_id = $1 AND a.status = $2
		ORDER BY a.created_at DESC
	`

	rows, err := r.db.Query(ctx, query, coordinatorID, models.ApplicationStatusSubmitted)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var applications []*models.Application
	for rows.Next() {
		var application models.Application
		var student models.Student
		var user models.User
		if err := rows.Scan(
			&application.ID, &application.Status, &application.Notes,
			&application.OriginInstitutionID, &application.OriginCampusName, &application.OriginProgramName,
			&application.TranscriptPath, &application.StudentID, &application.CoordinatorID,
			&application.ProgramID, &application.CreatedAt, &application.UpdatedAt,
			&student.ID, &student.UserID, &student.Phone, &student.OriginInstitutionID,
			&user.ID, &user.Email, &user.Name, &user.Role, &user.IsAdmin,
		); err != nil {
			return nil, err
		}
		student.User = &user
		application.Student = &student
		applications = append(applications, &application)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return applications, nil
}

func (r *ApplicationRepository) listApplications(ctx context.Context, query string, args ...interface{}) ([]*models.Application, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var applications []*models.Application
	for rows.Next() {
		application, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		applications = append(applications, application)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return applications, nil
}

// UpdateMetadata updates the application-level origin fields, notes and
// status. Nil fields are left untouched.
func (r *ApplicationRepository) UpdateMetadata(ctx context.Context, id int64, status *models.ApplicationStatus, institutionID *int64, campusName, programName, notes *string) error {
	cmdTag, err := r.db.Exec(ctx, `
		UPDATE applications
		SET status = COALESCE($1, status),
		    origin_institution_id = COALESCE($2, origin_institution_id),
		    origin_campus_name = COALESCE($3, origin_campus_name),
		    origin_program_name = COALESCE($4, origin_program_name),
		    notes = COALESCE($5, notes),
		    updated_at = NOW()
		WHERE id = $6
	`, status, institutionID, campusName, programName, notes, id)
	if err != nil {
		return fmt.Errorf("error updating application metadata: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return ErrApplicationNotFound
	}

	return nil
}

// SetOriginInstitution records the resolved origin institution on an
// application
func (r *ApplicationRepository) SetOriginInstitution(ctx context.Context, id, institutionID int64) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE applications SET origin_institution_id = $1, updated_at = NOW() WHERE id = $2`,
		institutionID, id)
	if err != nil {
		return fmt.Errorf("error updating application origin institution: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return ErrApplicationNotFound
	}

	return nil
}

func (r *ApplicationRepository) loadSubjectTree(ctx context.Context, application *models.Application) error {
	groupRows, err := r.db.Query(ctx, `
		SELECT g.id, g.application_id, g.name, g.course_id,
		       c.id, c.program_id, c.name, c.code, c.credit
		FROM subject_groups g
		LEFT JOIN courses c ON c.id = g.course_id
		WHERE g.application_id = $1
		ORDER BY g.id
	`, application.ID)
	if err != nil {
		return err
	}
	defer groupRows.Close()

	groupsByID := make(map[int64]*models.SubjectGroup)
	for groupRows.Next() {
		var group models.SubjectGroup
		var courseID, courseProgramID *int64
		var courseName, courseCode *string
		var courseCredit *int
		if err := groupRows.Scan(
			&group.ID, &group.ApplicationID, &group.Name, &group.CourseID,
			&courseID, &courseProgramID, &courseName, &courseCode, &courseCredit,
		); err != nil {
			return err
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
		application.SubjectGroups = append(application.SubjectGroups, &group)
		groupsByID[group.ID] = &group
	}
	if err := groupRows.Err(); err != nil {
		return err
	}

	if len(groupsByID) == 0 {
		return nil
	}

	subjectRows, err := r.db.Query(ctx, `
		SELECT p.id, p.subject_group_id, p.origin_code, p.origin_name, p.origin_grade, p.origin_credit,
		       p.syllabus_path, p.original_filename, p.approval_status, p.catalog_entry_id,
		       p.similarity_percentage, p.needs_sme_review, p.sme_review_notes, p.coordinator_notes,
		       e.id, e.course_code, e.course_name, e.similarity_percentage
		FROM past_subjects p
		JOIN subject_groups g ON g.id = p.subject_group_id
		LEFT JOIN catalog_entries e ON e.id = p.catalog_entry_id
		WHERE g.application_id = $1
		ORDER BY p.id
	`, application.ID)
	if err != nil {
		return err
	}
	defer subjectRows.Close()

	for subjectRows.Next() {
		var subject models.PastSubject
		var entryID *int64
		var entryCourseCode, entryCourseName *string
		var entrySimilarity *int
		if err := subjectRows.Scan(
			&subject.ID, &subject.SubjectGroupID,
			&subject.OriginCode, &subject.OriginName, &subject.OriginGrade, &subject.OriginCredit,
			&subject.SyllabusPath, &subject.OriginalFilename,
			&subject.ApprovalStatus, &subject.CatalogEntryID,
			&subject.Similarity, &subject.NeedsSMEReview, &subject.SMENotes, &subject.CoordinatorNotes,
			&entryID, &entryCourseCode, &entryCourseName, &entrySimilarity,
		); err != nil {
			return err
		}
		if entryID != nil {
			subject.CatalogEntry = &models.CatalogEntry{
				ID:         *entryID,
				CourseCode: *entryCourseCode,
				CourseName: *entryCourseName,
				Similarity: *entrySimilarity,
			}
		}
		if group, ok := groupsByID[subject.SubjectGroupID]; ok {
			group.PastSubjects = append(group.PastSubjects, &subject)
		}
	}

	return subjectRows.Err()
}
