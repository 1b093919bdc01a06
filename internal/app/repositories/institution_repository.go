package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Freezeyy/CT-BE/internal/app/models"
)

// Institution error types
var (
	ErrInstitutionNotFound = errors.New("origin institution not found")
)

// InstitutionRepository handles database operations for origin institutions
type InstitutionRepository struct {
	db *pgxpool.Pool
}

// NewInstitutionRepository creates a new institution repository
func NewInstitutionRepository(db *pgxpool.Pool) *InstitutionRepository {
	return &InstitutionRepository{db: db}
}

// Create creates a new origin institution
func (r *InstitutionRepository) Create(ctx context.Context, institution *models.OriginInstitution) error {
	query := `
		INSERT INTO origin_institutions (name)
		VALUES ($1)
		RETURNING id
	`

	if err := r.db.QueryRow(ctx, query, institution.Name).Scan(&institution.ID); err != nil {
		return fmt.Errorf("error creating origin institution: %w", err)
	}

	return nil
}

// GetByID retrieves an origin institution by ID
func (r *InstitutionRepository) GetByID(ctx context.Context, id int64) (*models.OriginInstitution, error) {
	query := `
		SELECT id, name
		FROM origin_institutions
		WHERE id = $1
	`

	var institution models.OriginInstitution
	err := r.db.QueryRow(ctx, query, id).Scan(&institution.ID, &institution.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInstitutionNotFound
		}
		return nil, fmt.Errorf("error retrieving origin institution: %w", err)
	}

	return &institution, nil
}

// GetByName retrieves an origin institution by name, case-insensitively
func (r *InstitutionRepository) GetByName(ctx context.Context, name string) (*models.OriginInstitution, error) {
	query := `
		SELECT id, name
		FROM origin_institutions
		WHERE LOWER(name) = LOWER($1)
		ORDER BY id
		LIMIT 1
	`

	var institution models.OriginInstitution
	err := r.db.QueryRow(ctx, query, name).Scan(&institution.ID, &institution.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInstitutionNotFound
		}
		return nil, fmt.Errorf("error retrieving origin institution by name: %w", err)
	}

	return &institution, nil
}

// GetAll retrieves all origin institutions
func (r *InstitutionRepository) GetAll(ctx context.Context) ([]*models.OriginInstitution, error) {
	query := `
		SELECT id, name
		FROM origin_institutions
		ORDER BY name
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var institutions []*models.OriginInstitution
	for rows.Next() {
		var institution models.OriginInstitution
		if err := rows.Scan(&institution.ID, &institution.Name); err != nil {
			return nil, err
		}
		institutions = append(institutions, &institution)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return institutions, nil
}
