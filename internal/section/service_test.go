package section

import (
	"context"
	"io"
	"strings"
	"testing"

	"study-resource-hub/internal/domain"
	apiError "study-resource-hub/internal/errors"
	"study-resource-hub/internal/resource"
	"study-resource-hub/internal/rollup"
	"study-resource-hub/internal/storage"
	"study-resource-hub/redis"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	redisLib "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// MockUploader is a mock implementation of storage.Uploader
type MockUploader struct {
	mock.Mock
}

func (m *MockUploader) Upload(ctx context.Context, kind storage.ObjectKind, key string, file io.Reader, contentType string) (*storage.UploadResult, error) {
	args := m.Called(ctx, kind, key, file, contentType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.UploadResult), args.Error(1)
}

func (m *MockUploader) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// fixture wires the real repositories and coordinator against an
// in-memory database, the way cmd/server does.
type fixture struct {
	sections  Service
	resources resource.Service
	uploader  *MockUploader
}

func setup(t *testing.T) *fixture {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1) // SQLite only supports 1 writer
	require.NoError(t, db.AutoMigrate(&domain.User{}, &domain.Section{}, &domain.Resource{}))

	mr := miniredis.RunT(t)
	redis.RedisClient = redisLib.NewClient(&redisLib.Options{Addr: mr.Addr()})
	t.Cleanup(func() { redis.RedisClient = nil })
	cache := redis.NewCache()

	uploader := new(MockUploader)
	uploader.On("Delete", mock.Anything, mock.Anything).Return(nil).Maybe()

	coordinator := rollup.NewCoordinator()
	sectionRepo := NewRepository(db)
	resourceRepo := resource.NewRepository(db, coordinator)

	return &fixture{
		sections:  NewService(sectionRepo, uploader, cache),
		resources: resource.NewService(resourceRepo, uploader, cache),
		uploader:  uploader,
	}
}

func apiStatus(t *testing.T, err error) int {
	t.Helper()
	apiErr, ok := err.(*apiError.APIError)
	require.True(t, ok, "expected *APIError, got %T", err)
	return apiErr.Status
}

func TestCreateSection_RequiresTitle(t *testing.T) {
	f := setup(t)

	_, err := f.sections.CreateSection(context.Background(), 1, "", "", "")
	assert.Equal(t, 400, apiStatus(t, err))
}

func TestCreateSection_StartsEmpty(t *testing.T) {
	f := setup(t)

	section, err := f.sections.CreateSection(context.Background(), 1, "Math", "calculus", "")
	require.NoError(t, err)

	got, err := f.sections.GetSectionByID(context.Background(), section.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), got.Stats.TotalResources)
	assert.Equal(t, int64(0), got.Stats.StorageUsed)
	assert.Empty(t, got.Resources)
	assert.Equal(t, domain.VisibilityPrivate, got.Visibility)
}

// The full lifecycle: note in, rollup up; note out, rollup zeroed;
// section gone, lookup fails.
func TestSectionLifecycle(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	section, err := f.sections.CreateSection(ctx, 1, "Math", "", "")
	require.NoError(t, err)

	note, err := f.resources.CreateResource(ctx, 1, resource.CreateInput{
		Variant:   "Note",
		Title:     "N1",
		SectionID: &section.ID,
		Content:   "integration by parts",
	})
	require.NoError(t, err)

	got, err := f.sections.GetSectionByID(ctx, section.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Stats.TotalResources)
	assert.Equal(t, int64(1), got.Stats.TotalNotes)
	require.Len(t, got.Resources, 1)
	assert.Equal(t, "N1", got.Resources[0].Title)

	require.NoError(t, f.resources.DeleteResource(ctx, note.ID, 1))

	got, err = f.sections.GetSectionByID(ctx, section.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), got.Stats.TotalResources)
	assert.Equal(t, int64(0), got.Stats.TotalNotes)
	assert.Equal(t, int64(0), got.Stats.StorageUsed)
	assert.Empty(t, got.Resources)

	require.NoError(t, f.sections.DeleteSection(ctx, section.ID, 1))

	_, err = f.sections.GetSectionByID(ctx, section.ID, 1)
	assert.Equal(t, 404, apiStatus(t, err))
}

func TestDeleteSection_CascadesExactly(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	target, err := f.sections.CreateSection(ctx, 1, "Physics", "", "")
	require.NoError(t, err)
	other, err := f.sections.CreateSection(ctx, 1, "Chemistry", "", "")
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := f.resources.CreateResource(ctx, 1, resource.CreateInput{
			Variant:   "Note",
			Title:     "in target",
			SectionID: &target.ID,
			Content:   "body",
		})
		require.NoError(t, err)
	}
	kept, err := f.resources.CreateResource(ctx, 1, resource.CreateInput{
		Variant:   "Note",
		Title:     "in other",
		SectionID: &other.ID,
		Content:   "body",
	})
	require.NoError(t, err)
	unsectioned, err := f.resources.CreateResource(ctx, 1, resource.CreateInput{
		Variant: "Note",
		Title:   "loose",
		Content: "body",
	})
	require.NoError(t, err)

	require.NoError(t, f.sections.DeleteSection(ctx, target.ID, 1))

	// exactly the three cascaded resources are gone
	list, err := f.resources.ListResources(ctx, 1, 1, 50)
	require.NoError(t, err)
	assert.Equal(t, int64(2), list.Meta.Total)

	_, err = f.resources.GetResource(ctx, kept.ID, 1)
	assert.NoError(t, err)
	_, err = f.resources.GetResource(ctx, unsectioned.ID, 1)
	assert.NoError(t, err)

	// list excludes the deleted section
	sections, err := f.sections.GetUserSections(ctx, 1)
	require.NoError(t, err)
	require.Len(t, sections, 1)
	assert.Equal(t, "Chemistry", sections[0].Title)
}

func TestDeleteSection_EmptySucceeds(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	section, err := f.sections.CreateSection(ctx, 1, "Empty", "", "")
	require.NoError(t, err)

	assert.NoError(t, f.sections.DeleteSection(ctx, section.ID, 1))
}

func TestUnsectionedResourceLeavesRollupsAlone(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	section, err := f.sections.CreateSection(ctx, 1, "Math", "", "")
	require.NoError(t, err)

	f.uploader.On("Upload", mock.Anything, storage.KindRaw, mock.Anything, mock.Anything, "application/pdf").
		Return(&storage.UploadResult{Key: "resources/raw/1.pdf", URL: "https://example.com/1.pdf", Size: 2048}, nil)

	pdf, err := f.resources.CreateResource(ctx, 1, resource.CreateInput{
		Variant: "Pdf",
		Title:   "standalone",
		File: &resource.FileInput{
			Reader:      strings.NewReader("%PDF-1.4"),
			Filename:    "standalone.pdf",
			ContentType: "application/pdf",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2048), pdf.Size)

	// appears in the owner's resource list
	list, err := f.resources.ListResources(ctx, 1, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), list.Meta.Total)

	// no section rollup was touched
	got, err := f.sections.GetSectionByID(ctx, section.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), got.Stats.TotalResources)
	assert.Equal(t, int64(0), got.Stats.StorageUsed)
}

func TestGetUserSections_OrderedByCreation(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	for _, title := range []string{"First", "Second", "Third"} {
		_, err := f.sections.CreateSection(ctx, 1, title, "", "")
		require.NoError(t, err)
	}

	sections, err := f.sections.GetUserSections(ctx, 1)
	require.NoError(t, err)
	require.Len(t, sections, 3)
	assert.Equal(t, "First", sections[0].Title)
	assert.Equal(t, "Second", sections[1].Title)
	assert.Equal(t, "Third", sections[2].Title)
}

func TestGetSectionByID_ForeignOwnerLooksMissing(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	section, err := f.sections.CreateSection(ctx, 1, "Mine", "", "")
	require.NoError(t, err)

	_, missingErr := f.sections.GetSectionByID(ctx, 9999, 2)
	_, foreignErr := f.sections.GetSectionByID(ctx, section.ID, 2)

	// both cases return the same error shape and message
	assert.Equal(t, 404, apiStatus(t, missingErr))
	assert.Equal(t, 404, apiStatus(t, foreignErr))
	assert.Equal(t, missingErr.(*apiError.APIError).Message, foreignErr.(*apiError.APIError).Message)
}

func TestGetUserSections_ScopedToOwner(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.sections.CreateSection(ctx, 1, "Mine", "", "")
	require.NoError(t, err)

	sections, err := f.sections.GetUserSections(ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, sections)
}
