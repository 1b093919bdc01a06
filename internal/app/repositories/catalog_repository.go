package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Freezeyy/CT-BE/internal/app/models"
	"github.com/Freezeyy/CT-BE/internal/app/models/dto"
	"github.com/Freezeyy/CT-BE/internal/pkg/dberrors"
)

// Catalog error types
var (
	ErrCatalogEntryNotFound = errors.New("catalog entry not found")
	ErrCatalogEntryExists   = errors.New("an active catalog entry already exists for this key")
)

const catalogColumns = `
	id, origin_institution_id, origin_program_name, program_id, course_id,
	origin_code, origin_name, origin_credit,
	course_code, course_name, course_credit,
	similarity_percentage, document_path, is_active, replaced_by_entry_id,
	intake_year, created_at
`

// CatalogRepository handles database operations for pre-approved equivalence
// entries
type CatalogRepository struct {
	db *pgxpool.Pool
}

// NewCatalogRepository creates a new catalog repository
func NewCatalogRepository(db *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{db: db}
}

func scanCatalogEntry(row pgx.Row) (*models.CatalogEntry, error) {
	var entry models.CatalogEntry
	err := row.Scan(
		&entry.ID, &entry.OriginInstitutionID, &entry.OriginProgramName,
		&entry.ProgramID, &entry.CourseID,
		&entry.OriginCode, &entry.OriginName, &entry.OriginCredit,
		&entry.CourseCode, &entry.CourseName, &entry.CourseCredit,
		&entry.Similarity, &entry.DocumentPath, &entry.IsActive, &entry.ReplacedByEntryID,
		&entry.IntakeYear, &entry.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// Create inserts a new active catalog entry. Returns ErrCatalogEntryExists
// when an active entry with the same uniqueness key is already present.
func (r *CatalogRepository) Create(ctx context.Context, entry *models.CatalogEntry) error {
	query := `
		INSERT INTO catalog_entries (
			origin_institution_id, origin_program_name, program_id, course_id,
			origin_code, origin_name, origin_credit,
			course_code, course_name, course_credit,
			similarity_percentage, document_path, intake_year
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, is_active, created_at
	`

	err := r.db.QueryRow(ctx, query,
		entry.OriginInstitutionID, entry.OriginProgramName, entry.ProgramID, entry.CourseID,
		entry.OriginCode, entry.OriginName, entry.OriginCredit,
		entry.CourseCode, entry.CourseName, entry.CourseCredit,
		entry.Similarity, entry.DocumentPath, entry.IntakeYear,
	).Scan(&entry.ID, &entry.IsActive, &entry.CreatedAt)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "uq_catalog_active_key") {
			return ErrCatalogEntryExists
		}
		return fmt.Errorf("error creating catalog entry: %w", err)
	}

	return nil
}

// GetByID retrieves a catalog entry by ID
func (r *CatalogRepository) GetByID(ctx context.Context, id int64) (*models.CatalogEntry, error) {
	query := `SELECT ` + catalogColumns + ` FROM catalog_entries WHERE id = $1`

	entry, err := scanCatalogEntry(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCatalogEntryNotFound
		}
		return nil, fmt.Errorf("error retrieving catalog entry: %w", err)
	}

	return entry, nil
}

// FindActiveMatches retrieves the active entries matching an origin subject.
// The origin code comparison is exact; the origin program name comparison is a
// case-insensitive substring match in either direction, so "Diploma in IT"
// matches an entry recorded as "IT" and vice versa.
func (r *CatalogRepository) FindActiveMatches(ctx context.Context, institutionID, programID int64, originProgramName, originCode string) ([]*models.CatalogEntry, error) {
	query := `
		SELECT ` + catalogColumns + `
		FROM catalog_entries
		WHERE is_active
		  AND origin_institution_id = $1
		  AND program_id = $2
		  AND origin_code = $3
		  AND (origin_program_name ILIKE '%' || $4 || '%' OR $4 ILIKE '%' || origin_program_name || '%')
		ORDER BY id
	`

	rows, err := r.db.Query(ctx, query, institutionID, programID, originCode, originProgramName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*models.CatalogEntry
	for rows.Next() {
		entry, err := scanCatalogEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

// FindActiveByKey retrieves the active entry with exactly this uniqueness key.
// Program name comparison is a case-insensitive equality, not a substring
// match.
func (r *CatalogRepository) FindActiveByKey(ctx context.Context, key models.CatalogKey) (*models.CatalogEntry, error) {
	query := `
		SELECT ` + catalogColumns + `
		FROM catalog_entries
		WHERE is_active
		  AND origin_institution_id = $1
		  AND LOWER(origin_program_name) = LOWER($2)
		  AND program_id = $3
		  AND course_id = $4
		  AND origin_code = $5
	`

	entry, err := scanCatalogEntry(r.db.QueryRow(ctx, query,
		key.OriginInstitutionID, key.OriginProgramName, key.ProgramID, key.CourseID, key.OriginCode))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCatalogEntryNotFound
		}
		return nil, fmt.Errorf("error retrieving catalog entry by key: %w", err)
	}

	return entry, nil
}

// List retrieves catalog entries narrowed by the filter, with institution,
// program and course attached. Inactive entries are excluded unless requested.
func (r *CatalogRepository) List(ctx context.Context, filter dto.CatalogFilter) ([]*models.CatalogEntry, error) {
	query := `
		SELECT e.id, e.origin_institution_id, e.origin_program_name, e.program_id, e.course_id,
		       e.origin_code, e.origin_name, e.origin_credit,
		       e.course_code, e.course_name, e.course_credit,
		       e.similarity_percentage, e.document_path, e.is_active, e.replaced_by_entry_id,
		       e.intake_year, e.created_at,
		       i.id, i.name,
		       p.id, p.name, p.code,
		       c.id, c.program_id, c.name, c.code, c.credit
		FROM catalog_entries e
		JOIN origin_institutions i ON i.id = e.origin_institution_id
		JOIN programs p ON p.id = e.program_id
		JOIN courses c ON c.id = e.course_id
		WHERE 1=1
	`

	args := []interface{}{}
	argNum := 1

	if !filter.IncludeInactive {
		query += " AND e.is_active"
	}
	if filter.OriginInstitutionID != nil {
		query += fmt.Sprintf(" AND e.origin_institution_id = $%d", argNum)
		args = append(args, *filter.OriginInstitutionID)
		argNum++
	}
	if filter.OriginCampusName != "" {
		query += fmt.Sprintf(" AND i.name ILIKE '%%' || $%d || '%%'", argNum)
		args = append(args, filter.OriginCampusName)
		argNum++
	}
	if filter.OriginProgramName != "" {
		query += fmt.Sprintf(" AND e.origin_program_name ILIKE '%%' || $%d || '%%'", argNum)
		args = append(args, filter.OriginProgramName)
		argNum++
	}
	if filter.ProgramID != nil {
		query += fmt.Sprintf(" AND e.program_id = $%d", argNum)
		args = append(args, *filter.ProgramID)
		argNum++
	}

	query += " ORDER BY i.name, e.origin_program_name, e.origin_code, e.id"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*models.CatalogEntry
	for rows.Next() {
		var entry models.CatalogEntry
		var institution models.OriginInstitution
		var program models.Program
		var course models.Course
		if err := rows.Scan(
			&entry.ID, &entry.OriginInstitutionID, &entry.OriginProgramName,
			&entry.ProgramID, &entry.CourseID,
			&entry.OriginCode, &entry.OriginName, &entry.OriginCredit,
			&entry.CourseCode, &entry.CourseName, &entry.CourseCredit,
			&entry.Similarity, &entry.DocumentPath, &entry.IsActive, &entry.ReplacedByEntryID,
			&entry.IntakeYear, &entry.CreatedAt,
			&institution.ID, &institution.Name,
			&program.ID, &program.Name, &program.Code,
			&course.ID, &course.ProgramID, &course.Name, &course.Code, &course.Credit,
		); err != nil {
			return nil, err
		}
		entry.OriginInstitution = &institution
		entry.Program = &program
		entry.Course = &course
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

// Deactivate retires a catalog entry, optionally recording the entry that
// supersedes it. Past subjects already linked to the entry keep their link.
func (r *CatalogRepository) Deactivate(ctx context.Context, id int64, replacedByEntryID *int64) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE catalog_entries SET is_active = FALSE, replaced_by_entry_id = $1 WHERE id = $2 AND is_active`,
		replacedByEntryID, id)
	if err != nil {
		return fmt.Errorf("error deactivating catalog entry: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return ErrCatalogEntryNotFound
	}

	return nil
}

// SetDocumentPath attaches a supporting document to a catalog entry
func (r *CatalogRepository) SetDocumentPath(ctx context.Context, id int64, documentPath string) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE catalog_entries SET document_path = $1 WHERE id = $2`,
		documentPath, id)
	if err != nil {
		return fmt.Errorf("error updating catalog entry document: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return ErrCatalogEntryNotFound
	}

	return nil
}
