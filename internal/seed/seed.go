// Package seed creates the default records a fresh installation needs:
// a destination program with courses, staff appointments and a couple of
// catalog entries to match against.
package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	appModels "github.com/Freezeyy/CT-BE/internal/app/models"
	appRepos "github.com/Freezeyy/CT-BE/internal/app/repositories"
	"github.com/Freezeyy/CT-BE/internal/pkg/auth"
)

// CreateDefaultData creates default users, programs, courses, staff
// appointments and catalog entries if they don't exist. Errors are collected
// so one failure does not stop the rest of the seeding.
func CreateDefaultData(ctx context.Context, dbPool *pgxpool.Pool, lgr zerolog.Logger) error {
	repos := appRepos.NewRepositories(dbPool)

	lgr.Info().Msg("Checking/Creating default data...")
	var finalErr error

	// --- Destination program and courses --- //
	program, err := ensureProgram(ctx, repos.ProgramRepository, "Bachelor of Information Technology (Hons)", "BIT")
	if err != nil {
		lgr.Error().Err(err).Msg("Error creating default program")
		finalErr = errors.Join(finalErr, err)
	}

	var progCourse, dbCourse *appModels.Course
	if program != nil {
		progCourse, err = ensureCourse(ctx, repos.ProgramRepository, program.ID, "Programming Fundamentals", "BIT1113", 4)
		if err != nil {
			lgr.Error().Err(err).Msg("Error creating programming course")
			finalErr = errors.Join(finalErr, err)
		}
		dbCourse, err = ensureCourse(ctx, repos.ProgramRepository, program.ID, "Database Systems", "BIT2213", 3)
		if err != nil {
			lgr.Error().Err(err).Msg("Error creating database course")
			finalErr = errors.Join(finalErr, err)
		}
	}

	// --- Origin institutions --- //
	institution, err := ensureInstitution(ctx, repos.InstitutionRepository, "Southern Polytechnic")
	if err != nil {
		lgr.Error().Err(err).Msg("Error creating default origin institution")
		finalErr = errors.Join(finalErr, err)
	}
	if _, err := ensureInstitution(ctx, repos.InstitutionRepository, "Central Community College"); err != nil {
		lgr.Error().Err(err).Msg("Error creating secondary origin institution")
		finalErr = errors.Join(finalErr, err)
	}

	// --- Staff users and appointments --- //
	coordinatorUser, err := ensureUser(ctx, repos.UserRepository, lgr,
		"coordinator@example.edu", "Coordinator123!", "Default Coordinator", appModels.RoleLecturer, true)
	if err != nil {
		finalErr = errors.Join(finalErr, err)
	}
	smeUser, err := ensureUser(ctx, repos.UserRepository, lgr,
		"sme@example.edu", "SmeReview123!", "Default Subject Expert", appModels.RoleLecturer, false)
	if err != nil {
		finalErr = errors.Join(finalErr, err)
	}

	if coordinatorUser != nil && program != nil {
		if err := ensureCoordinator(ctx, repos.StaffRepository, coordinatorUser.ID, program.ID); err != nil {
			lgr.Error().Err(err).Msg("Error creating coordinator appointment")
			finalErr = errors.Join(finalErr, err)
		}
	}
	if smeUser != nil {
		for _, course := range []*appModels.Course{progCourse, dbCourse} {
			if course == nil {
				continue
			}
			if err := ensureSME(ctx, repos.StaffRepository, smeUser.ID, course.ID); err != nil {
				lgr.Error().Err(err).Msg("Error creating SME appointment")
				finalErr = errors.Join(finalErr, err)
			}
		}
	}

	// --- Sample catalog entries --- //
	if institution != nil && program != nil && progCourse != nil {
		err = ensureCatalogEntry(ctx, repos.CatalogRepository, &appModels.CatalogEntry{
			OriginInstitutionID: institution.ID,
			OriginProgramName:   "Diploma in Information Technology",
			ProgramID:           program.ID,
			CourseID:            progCourse.ID,
			OriginCode:          "DIT1013",
			OriginName:          "Introduction to Programming",
			CourseCode:          progCourse.Code,
			CourseName:          progCourse.Name,
			CourseCredit:        &progCourse.Credit,
			Similarity:          100,
		})
		if err != nil {
			lgr.Error().Err(err).Msg("Error creating sample catalog entry")
			finalErr = errors.Join(finalErr, err)
		}
	}

	if finalErr == nil {
		lgr.Info().Msg("Default data check complete.")
	}
	return finalErr
}

func ensureProgram(ctx context.Context, repo *appRepos.ProgramRepository, name, code string) (*appModels.Program, error) {
	existing, err := repo.GetProgramByCode(ctx, code)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, appRepos.ErrProgramNotFound) {
		return nil, fmt.Errorf("error checking program %s: %w", code, err)
	}

	program := &appModels.Program{Name: name, Code: code}
	if err := repo.CreateProgram(ctx, program); err != nil {
		return nil, err
	}
	return program, nil
}

func ensureCourse(ctx context.Context, repo *appRepos.ProgramRepository, programID int64, name, code string, credit int) (*appModels.Course, error) {
	existing, err := repo.GetCourseByName(ctx, programID, name)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, appRepos.ErrCourseNotFound) {
		return nil, fmt.Errorf("error checking course %s: %w", code, err)
	}

	course := &appModels.Course{ProgramID: programID, Name: name, Code: code, Credit: credit}
	if err := repo.CreateCourse(ctx, course); err != nil {
		return nil, err
	}
	return course, nil
}

func ensureInstitution(ctx context.Context, repo *appRepos.InstitutionRepository, name string) (*appModels.OriginInstitution, error) {
	existing, err := repo.GetByName(ctx, name)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, appRepos.ErrInstitutionNotFound) {
		return nil, fmt.Errorf("error checking institution %s: %w", name, err)
	}

	institution := &appModels.OriginInstitution{Name: name}
	if err := repo.Create(ctx, institution); err != nil {
		return nil, err
	}
	return institution, nil
}

func ensureUser(ctx context.Context, repo *appRepos.UserRepository, lgr zerolog.Logger, email, password, name string, role appModels.RoleType, isAdmin bool) (*appModels.User, error) {
	existing, err := repo.GetUserByEmail(ctx, email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, appRepos.ErrUserNotFound) {
		lgr.Error().Err(err).Str("email", email).Msg("Error checking default user")
		return nil, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("error hashing default password: %w", err)
	}

	user := &appModels.User{
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		Role:         role,
		IsAdmin:      isAdmin,
	}
	if err := repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, appRepos.ErrEmailAlreadyExists) {
			return repo.GetUserByEmail(ctx, email)
		}
		lgr.Error().Err(err).Str("email", email).Msg("Error creating default user")
		return nil, err
	}

	lgr.Info().Str("email", email).Msg("Default user created")
	return user, nil
}

func ensureCoordinator(ctx context.Context, repo *appRepos.StaffRepository, userID, programID int64) error {
	_, err := repo.GetActiveCoordinatorByProgram(ctx, programID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, appRepos.ErrCoordinatorNotFound) {
		return err
	}

	return repo.CreateCoordinator(ctx, &appModels.Coordinator{
		UserID:    userID,
		ProgramID: programID,
		StartDate: time.Now(),
	})
}

func ensureSME(ctx context.Context, repo *appRepos.StaffRepository, userID, courseID int64) error {
	_, err := repo.GetActiveSMEByCourse(ctx, courseID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, appRepos.ErrSMENotFound) {
		return err
	}

	return repo.CreateSME(ctx, &appModels.SubjectMethodExpert{
		UserID:    userID,
		CourseID:  courseID,
		StartDate: time.Now(),
	})
}

func ensureCatalogEntry(ctx context.Context, repo *appRepos.CatalogRepository, entry *appModels.CatalogEntry) error {
	if err := repo.Create(ctx, entry); err != nil && !errors.Is(err, appRepos.ErrCatalogEntryExists) {
		return err
	}
	return nil
}
