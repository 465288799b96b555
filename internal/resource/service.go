package resource

import (
	"context"
	defErrors "errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"time"

	"study-resource-hub/internal/domain"
	"study-resource-hub/internal/errors"
	"study-resource-hub/internal/storage"
	"study-resource-hub/redis"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

var validate = validator.New()

// FileInput is the staged upload for Image/Pdf variants.
type FileInput struct {
	Reader      io.Reader
	Filename    string
	ContentType string
	Size        int64
}

// CreateInput carries the envelope and variant fields for a new resource.
type CreateInput struct {
	Variant     string
	Title       string
	Description string
	SectionID   *uint64
	Visibility  domain.Visibility
	Tags        []string

	// LinkSheet
	Links []domain.LinkEntry

	// Note
	Content   string
	WordCount *int

	// Image/Pdf
	File *FileInput
}

// NoteUpdate carries the partial fields of a Note update. Nil leaves the
// field untouched.
type NoteUpdate struct {
	Title       *string
	Description *string
	Content     *string
}

type PaginatedResources struct {
	Data []domain.Resource `json:"data"`
	Meta ResourcesMeta     `json:"meta"`
}

type Service interface {
	CreateResource(ctx context.Context, ownerID uint64, input CreateInput) (*domain.Resource, error)
	GetResource(ctx context.Context, id uint64, ownerID uint64) (*domain.Resource, error)
	ListResources(ctx context.Context, ownerID uint64, page, pageSize int) (*PaginatedResources, error)
	UpdateNote(ctx context.Context, id uint64, ownerID uint64, update NoteUpdate) (*domain.Resource, error)
	DeleteResource(ctx context.Context, id uint64, ownerID uint64) error
}

type DefaultService struct {
	repository ResourceRepository
	uploader   storage.Uploader
	cache      *redis.Cache
}

func NewService(repository ResourceRepository, uploader storage.Uploader, cache *redis.Cache) Service {
	return &DefaultService{
		repository: repository,
		uploader:   uploader,
		cache:      cache,
	}
}

// CreateResource validates the envelope, runs the variant-specific
// construction (uploading first for stored variants) and persists the
// record together with its section rollup adjustment.
func (s *DefaultService) CreateResource(ctx context.Context, ownerID uint64, input CreateInput) (*domain.Resource, error) {
	variant := domain.Variant(input.Variant)
	if !variant.Valid() {
		return nil, errors.BadRequest("Invalid resource type", nil)
	}
	if input.Title == "" || len(input.Title) > 100 {
		return nil, errors.BadRequest("Title is required and must be at most 100 characters", nil)
	}
	if len(input.Description) > 500 {
		return nil, errors.BadRequest("Description must be at most 500 characters", nil)
	}

	visibility := input.Visibility
	if visibility == "" {
		visibility = domain.VisibilityPrivate
	}

	res := &domain.Resource{
		OwnerID:     ownerID,
		SectionID:   input.SectionID,
		Variant:     variant,
		Title:       input.Title,
		Description: input.Description,
		Visibility:  visibility,
		Tags:        input.Tags,
		Version:     1,
	}

	switch variant {
	case domain.VariantImage, domain.VariantPdf:
		uploaded, err := s.uploadFile(ctx, variant, input.File)
		if err != nil {
			return nil, err
		}
		res.StorageKey = uploaded.Key
		res.URL = uploaded.URL
		res.Size = uploaded.Size
		if variant == domain.VariantImage {
			res.Format = input.File.ContentType
		} else {
			res.Format = "pdf"
			res.PageCount = 0 // not extracted from the file
		}

	case domain.VariantLinkSheet:
		if err := validateLinks(input.Links); err != nil {
			return nil, err
		}
		res.Links = input.Links

	case domain.VariantNote:
		if input.Content == "" {
			return nil, errors.BadRequest("Content is required for a note", nil)
		}
		now := time.Now().UTC()
		res.Content = input.Content
		res.WordCount = input.WordCount
		res.LastEdited = &now
	}

	if err := s.repository.Create(res); err != nil {
		// the record never persisted, drop the object we just uploaded
		if res.StorageKey != "" {
			s.cleanupStorage(res.StorageKey)
		}
		return nil, err
	}

	s.invalidateSections(ctx, ownerID)
	return res, nil
}

func (s *DefaultService) uploadFile(ctx context.Context, variant domain.Variant, file *FileInput) (*storage.UploadResult, error) {
	if file == nil {
		return nil, errors.BadRequest("A file upload is required for this resource type", nil)
	}

	kind := storage.KindImage
	if variant == domain.VariantPdf {
		kind = storage.KindRaw
	}

	key := fmt.Sprintf("%d%s", time.Now().UnixNano(), filepath.Ext(file.Filename))
	uploaded, err := s.uploader.Upload(ctx, kind, key, file.Reader, file.ContentType)
	if err != nil {
		return nil, errors.BadGateway("Failed to upload file to storage provider", err)
	}
	return uploaded, nil
}

func validateLinks(links []domain.LinkEntry) error {
	if len(links) == 0 {
		return errors.BadRequest("At least one link is required", nil)
	}
	for _, entry := range links {
		if err := validate.Var(entry.URL, "required,url"); err != nil {
			return errors.BadRequest(fmt.Sprintf("Invalid link url %q", entry.URL), err)
		}
	}
	return nil
}

func (s *DefaultService) GetResource(ctx context.Context, id uint64, ownerID uint64) (*domain.Resource, error) {
	res, err := s.repository.FindByID(id, ownerID)
	if err != nil {
		if defErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("Resource not found", err)
		}
		return nil, err
	}
	return res, nil
}

func (s *DefaultService) ListResources(ctx context.Context, ownerID uint64, page, pageSize int) (*PaginatedResources, error) {
	resources, meta, err := s.repository.ListByOwner(ownerID, page, pageSize)
	if err != nil {
		return nil, err
	}
	return &PaginatedResources{Data: resources, Meta: meta}, nil
}

// UpdateNote mutates title/description/content of a Note. Every other
// variant is rejected; a content change bumps LastEdited, a metadata-only
// change does not.
func (s *DefaultService) UpdateNote(ctx context.Context, id uint64, ownerID uint64, update NoteUpdate) (*domain.Resource, error) {
	res, err := s.GetResource(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	if res.Variant != domain.VariantNote {
		return nil, errors.BadRequest("Only Note resources can be updated", nil)
	}

	if update.Title != nil {
		if *update.Title == "" || len(*update.Title) > 100 {
			return nil, errors.BadRequest("Title is required and must be at most 100 characters", nil)
		}
		res.Title = *update.Title
	}
	if update.Description != nil {
		if len(*update.Description) > 500 {
			return nil, errors.BadRequest("Description must be at most 500 characters", nil)
		}
		res.Description = *update.Description
	}
	if update.Content != nil {
		if *update.Content == "" {
			return nil, errors.BadRequest("Content is required for a note", nil)
		}
		now := time.Now().UTC()
		res.Content = *update.Content
		res.LastEdited = &now
	}

	if err := s.repository.Save(res); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *DefaultService) DeleteResource(ctx context.Context, id uint64, ownerID uint64) error {
	res, err := s.GetResource(ctx, id, ownerID)
	if err != nil {
		return err
	}

	if err := s.repository.Delete(res); err != nil {
		return err
	}

	if res.StorageKey != "" {
		s.cleanupStorage(res.StorageKey)
	}

	s.invalidateSections(ctx, ownerID)
	return nil
}

// cleanupStorage drops a storage object in the background; the record is
// already gone so a failure here only leaks an object.
func (s *DefaultService) cleanupStorage(key string) {
	go func(k string) {
		bgCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := s.uploader.Delete(bgCtx, k); err != nil {
			log.Printf("[STORAGE ERROR] Failed to delete object %s: %v", k, err)
		}
	}(key)
}

// invalidateSections bumps the owner's section-list cache version; section
// reads expand resources, so resource writes stale them too.
func (s *DefaultService) invalidateSections(ctx context.Context, ownerID uint64) {
	versionKey := fmt.Sprintf("user:%d:sections:version", ownerID)
	s.cache.IncrementVersion(ctx, versionKey)
}
