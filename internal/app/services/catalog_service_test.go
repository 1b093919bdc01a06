package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Freezeyy/CT-BE/internal/app/models"
	"github.com/Freezeyy/CT-BE/internal/app/models/dto"
	"github.com/Freezeyy/CT-BE/internal/app/repositories"
	"github.com/Freezeyy/CT-BE/internal/pkg/apperrors"
)

func newCatalogService(t *testing.T) (*CatalogService, *fakeCatalog) {
	t.Helper()

	catalog := &fakeCatalog{}
	courses := &fakeCourses{
		courses: []*models.Course{
			{ID: 12, ProgramID: 1, Name: "Programming Fundamentals", Code: "SWE1001", Credit: 4},
			{ID: 20, ProgramID: 1, Name: "Business Communication", Code: "BUS1002", Credit: 3},
		},
	}
	return NewCatalogService(catalog, courses, nil), catalog
}

func TestCreateEntryDefaults(t *testing.T) {
	service, _ := newCatalogService(t)

	entry, err := service.CreateEntry(context.Background(), dto.CreateCatalogEntryRequest{
		OriginInstitutionID: 3,
		OriginProgramName:   "  Diploma in IT  ",
		ProgramID:           1,
		CourseID:            12,
		OriginCode:          "CS101",
		OriginName:          "Introduction to Programming",
	})
	require.NoError(t, err)

	// Course fields and similarity fall back to the course record and 100.
	assert.Equal(t, "Diploma in IT", entry.OriginProgramName)
	assert.Equal(t, "SWE1001", entry.CourseCode)
	assert.Equal(t, "Programming Fundamentals", entry.CourseName)
	require.NotNil(t, entry.CourseCredit)
	assert.Equal(t, 4, *entry.CourseCredit)
	assert.Equal(t, 100, entry.Similarity)
	assert.True(t, entry.IsActive)
}

func TestGetEntry(t *testing.T) {
	service, catalog := newCatalogService(t)
	existing := catalog.add(&models.CatalogEntry{
		OriginInstitutionID: 3,
		OriginProgramName:   "Diploma in IT",
		ProgramID:           1,
		CourseID:            12,
		OriginCode:          "CS101",
	})

	entry, err := service.GetEntry(context.Background(), existing.ID)
	require.NoError(t, err)
	assert.Equal(t, existing.ID, entry.ID)
	assert.Equal(t, "CS101", entry.OriginCode)

	_, err = service.GetEntry(context.Background(), 999)
	assert.ErrorIs(t, err, repositories.ErrCatalogEntryNotFound)
}

func TestCreateEntryDuplicateKey(t *testing.T) {
	service, _ := newCatalogService(t)

	req := dto.CreateCatalogEntryRequest{
		OriginInstitutionID: 3,
		OriginProgramName:   "Diploma in IT",
		ProgramID:           1,
		CourseID:            12,
		OriginCode:          "CS101",
		OriginName:          "Introduction to Programming",
	}

	first, err := service.CreateEntry(context.Background(), req)
	require.NoError(t, err)

	// Same key again, program name case differs.
	req.OriginProgramName = "DIPLOMA IN IT"
	_, err = service.CreateEntry(context.Background(), req)
	require.ErrorIs(t, err, apperrors.ErrDuplicateCatalogEntry)

	details := apperrors.Details(err)
	require.NotNil(t, details)
	assert.Equal(t, first.ID, details["existingEntryId"])
}

func TestCreateEntryValidation(t *testing.T) {
	service, _ := newCatalogService(t)

	_, err := service.CreateEntry(context.Background(), dto.CreateCatalogEntryRequest{
		OriginInstitutionID: 3,
		OriginProgramName:   "Diploma in IT",
		ProgramID:           2, // course 12 belongs to program 1
		CourseID:            12,
		OriginCode:          "CS101",
		OriginName:          "Introduction to Programming",
	})
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)

	_, err = service.CreateEntry(context.Background(), dto.CreateCatalogEntryRequest{
		OriginInstitutionID: 3,
		OriginProgramName:   "Diploma in IT",
		ProgramID:           1,
		CourseID:            12,
		OriginCode:          "CS101",
		OriginName:          "Introduction to Programming",
		Similarity:          intPtr(120),
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidScore)
}

func TestBulkCreateCollectsPerMappingErrors(t *testing.T) {
	service, catalog := newCatalogService(t)

	result, err := service.BulkCreate(context.Background(), dto.BulkCreateCatalogRequest{
		OriginInstitutionID: 3,
		OriginProgramName:   "Diploma in IT",
		ProgramID:           1,
		Mappings: []dto.BulkCatalogMapping{
			{CourseID: 12, OriginCode: "CS101", OriginName: "Introduction to Programming"},
			{CourseID: 999, OriginCode: "CS102", OriginName: "Data Structures"}, // unknown course
			{CourseID: 20, OriginCode: "BA200", OriginName: "Business Writing"},
		},
	})
	require.NoError(t, err)

	assert.Len(t, result.Created, 2)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "CS102", result.Errors[0].Mapping.OriginCode)
	assert.Len(t, catalog.entries, 2)
}

func TestDeactivateEntry(t *testing.T) {
	service, catalog := newCatalogService(t)

	first, err := service.CreateEntry(context.Background(), dto.CreateCatalogEntryRequest{
		OriginInstitutionID: 3,
		OriginProgramName:   "Diploma in IT",
		ProgramID:           1,
		CourseID:            12,
		OriginCode:          "CS101",
		OriginName:          "Introduction to Programming",
	})
	require.NoError(t, err)

	err = service.Deactivate(context.Background(), first.ID, dto.DeactivateCatalogEntryRequest{})
	require.NoError(t, err)
	assert.False(t, catalog.entries[0].IsActive)

	// The key is free again: a replacement can be created and recorded.
	replacement, err := service.CreateEntry(context.Background(), dto.CreateCatalogEntryRequest{
		OriginInstitutionID: 3,
		OriginProgramName:   "Diploma in IT",
		ProgramID:           1,
		CourseID:            12,
		OriginCode:          "CS101",
		OriginName:          "Introduction to Programming",
	})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, replacement.ID)
}
