package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Freezeyy/CT-BE/internal/app/models"
	"github.com/Freezeyy/CT-BE/internal/pkg/apperrors"
)

func int64Ptr(v int64) *int64 { return &v }
func strPtr(v string) *string { return &v }

func TestResolveInstitution(t *testing.T) {
	institutions := &fakeInstitutions{
		institutions: []*models.OriginInstitution{
			{ID: 3, Name: "Sunway College"},
		},
	}
	matcher := NewTemplateMatcher(&fakeCatalog{}, institutions)

	tests := []struct {
		name    string
		appCtx  *models.ApplicationContext
		want    int64
		wantErr error
	}{
		{
			name:   "direct reference wins",
			appCtx: &models.ApplicationContext{OriginInstitutionID: int64Ptr(7), OriginCampusName: strPtr("Sunway College")},
			want:   7,
		},
		{
			name:   "campus name resolves case-insensitively",
			appCtx: &models.ApplicationContext{OriginCampusName: strPtr("sunway college")},
			want:   3,
		},
		{
			name:    "nothing to resolve from",
			appCtx:  &models.ApplicationContext{},
			wantErr: apperrors.ErrMissingOriginInstitution,
		},
		{
			name:    "unknown campus name",
			appCtx:  &models.ApplicationContext{OriginCampusName: strPtr("Nowhere Polytechnic")},
			wantErr: apperrors.ErrMissingOriginInstitution,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := matcher.ResolveInstitution(context.Background(), tt.appCtx)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFindMatch(t *testing.T) {
	catalog := &fakeCatalog{}
	catalog.add(&models.CatalogEntry{
		OriginInstitutionID: 3,
		OriginProgramName:   "Diploma in IT",
		ProgramID:           1,
		CourseID:            12,
		OriginCode:          "CS101",
	})
	catalog.add(&models.CatalogEntry{
		OriginInstitutionID: 3,
		OriginProgramName:   "Diploma in Business",
		ProgramID:           1,
		CourseID:            20,
		OriginCode:          "BA200",
	})
	inactive := catalog.add(&models.CatalogEntry{
		OriginInstitutionID: 3,
		OriginProgramName:   "Diploma in IT",
		ProgramID:           1,
		CourseID:            13,
		OriginCode:          "CS900",
	})
	inactive.IsActive = false

	matcher := NewTemplateMatcher(catalog, &fakeInstitutions{})

	tests := []struct {
		name              string
		institutionID     int64
		programID         int64
		originProgramName string
		originCode        string
		wantEntryID       int64
		wantNone          bool
	}{
		{
			name:              "exact match",
			institutionID:     3,
			programID:         1,
			originProgramName: "Diploma in IT",
			originCode:        "CS101",
			wantEntryID:       1,
		},
		{
			name:              "program name substring in either direction",
			institutionID:     3,
			programID:         1,
			originProgramName: "IT",
			originCode:        "CS101",
			wantEntryID:       1,
		},
		{
			name:              "origin code is case-sensitive",
			institutionID:     3,
			programID:         1,
			originProgramName: "Diploma in IT",
			originCode:        "cs101",
			wantNone:          true,
		},
		{
			name:              "other institution does not match",
			institutionID:     4,
			programID:         1,
			originProgramName: "Diploma in IT",
			originCode:        "CS101",
			wantNone:          true,
		},
		{
			name:              "other destination program does not match",
			institutionID:     3,
			programID:         2,
			originProgramName: "Diploma in IT",
			originCode:        "CS101",
			wantNone:          true,
		},
		{
			name:              "inactive entries are ignored",
			institutionID:     3,
			programID:         1,
			originProgramName: "Diploma in IT",
			originCode:        "CS900",
			wantNone:          true,
		},
		{
			name:              "unrelated program name does not match",
			institutionID:     3,
			programID:         1,
			originProgramName: "Diploma in Culinary Arts",
			originCode:        "CS101",
			wantNone:          true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subject := &models.PastSubject{ID: 100, OriginCode: tt.originCode}
			entry, err := matcher.FindMatch(context.Background(), tt.institutionID, tt.programID, tt.originProgramName, subject)
			require.NoError(t, err)
			if tt.wantNone {
				assert.Nil(t, entry)
				return
			}
			require.NotNil(t, entry)
			assert.Equal(t, tt.wantEntryID, entry.ID)
		})
	}
}

func TestFindMatchPrefersOldestOfSeveral(t *testing.T) {
	catalog := &fakeCatalog{}
	first := catalog.add(&models.CatalogEntry{
		OriginInstitutionID: 3,
		OriginProgramName:   "Diploma in IT",
		ProgramID:           1,
		CourseID:            12,
		OriginCode:          "CS101",
	})
	catalog.add(&models.CatalogEntry{
		OriginInstitutionID: 3,
		OriginProgramName:   "IT",
		ProgramID:           1,
		CourseID:            13,
		OriginCode:          "CS101",
	})

	matcher := NewTemplateMatcher(catalog, &fakeInstitutions{})

	subject := &models.PastSubject{ID: 100, OriginCode: "CS101"}
	entry, err := matcher.FindMatch(context.Background(), 3, 1, "Diploma in IT", subject)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, first.ID, entry.ID)
}
