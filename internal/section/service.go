package section

import (
	"context"
	defErrors "errors"
	"fmt"
	"log"
	"time"

	"study-resource-hub/internal/domain"
	"study-resource-hub/internal/errors"
	"study-resource-hub/internal/storage"
	"study-resource-hub/redis"

	"gorm.io/gorm"
)

// SectionResponse is a section with its membership references expanded to
// full resource records, in membership (insertion) order.
type SectionResponse struct {
	domain.Section
	Resources []domain.Resource `json:"resources"`
}

type Service interface {
	CreateSection(ctx context.Context, ownerID uint64, title, description string, visibility domain.Visibility) (*domain.Section, error)
	GetUserSections(ctx context.Context, ownerID uint64) ([]SectionResponse, error)
	GetSectionByID(ctx context.Context, id uint64, ownerID uint64) (*SectionResponse, error)
	DeleteSection(ctx context.Context, id uint64, ownerID uint64) error
}

type DefaultService struct {
	repository SectionRepository
	uploader   storage.Uploader
	cache      *redis.Cache
}

func NewService(repository SectionRepository, uploader storage.Uploader, cache *redis.Cache) Service {
	return &DefaultService{
		repository: repository,
		uploader:   uploader,
		cache:      cache,
	}
}

func (s *DefaultService) CreateSection(ctx context.Context, ownerID uint64, title, description string, visibility domain.Visibility) (*domain.Section, error) {
	if title == "" {
		return nil, errors.BadRequest("Title is required", nil)
	}
	if visibility == "" {
		visibility = domain.VisibilityPrivate
	}

	section := &domain.Section{
		OwnerID:     ownerID,
		Title:       title,
		Description: description,
		Visibility:  visibility,
	}

	if err := s.repository.Create(section); err != nil {
		return nil, err
	}

	s.invalidate(ctx, ownerID)
	return section, nil
}

func (s *DefaultService) GetUserSections(ctx context.Context, ownerID uint64) ([]SectionResponse, error) {
	// Versioned cache: any section or resource mutation bumps the version
	versionKey := fmt.Sprintf("user:%d:sections:version", ownerID)
	v := s.cache.GetVersion(ctx, versionKey)

	cacheKey := fmt.Sprintf("sections:u:%d:v:%d", ownerID, v)

	var cached []SectionResponse
	found, _ := s.cache.Get(ctx, cacheKey, &cached)
	if found {
		return cached, nil
	}

	sections, err := s.repository.ListByOwner(ownerID)
	if err != nil {
		return nil, err
	}

	result := make([]SectionResponse, 0, len(sections))
	for _, section := range sections {
		expanded, err := s.expand(section)
		if err != nil {
			return nil, err
		}
		result = append(result, *expanded)
	}

	go s.cache.Set(context.Background(), cacheKey, result, 24*time.Hour)

	return result, nil
}

func (s *DefaultService) GetSectionByID(ctx context.Context, id uint64, ownerID uint64) (*SectionResponse, error) {
	section, err := s.repository.FindByID(id, ownerID)
	if err != nil {
		if defErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("Section not found", err)
		}
		return nil, err
	}

	return s.expand(*section)
}

// expand resolves the membership list to full records, keeping insertion
// order and silently dropping references whose resource no longer exists.
// No rollup reconciliation happens here; stats stay as-cached.
func (s *DefaultService) expand(section domain.Section) (*SectionResponse, error) {
	resources, err := s.repository.ResourcesByIDs(section.ResourceIDs)
	if err != nil {
		return nil, err
	}

	byID := make(map[uint64]domain.Resource, len(resources))
	for _, res := range resources {
		byID[res.ID] = res
	}

	ordered := make([]domain.Resource, 0, len(resources))
	for _, id := range section.ResourceIDs {
		if res, ok := byID[id]; ok {
			ordered = append(ordered, res)
		}
	}

	return &SectionResponse{Section: section, Resources: ordered}, nil
}

func (s *DefaultService) DeleteSection(ctx context.Context, id uint64, ownerID uint64) error {
	section, err := s.repository.FindByID(id, ownerID)
	if err != nil {
		if defErrors.Is(err, gorm.ErrRecordNotFound) {
			return errors.NotFound("Section not found", err)
		}
		return err
	}

	deleted, err := s.repository.DeleteCascade(section)
	if err != nil {
		return err
	}

	s.invalidate(ctx, ownerID)

	// drop storage objects of the cascaded resources in the background
	for _, res := range deleted {
		if res.StorageKey == "" {
			continue
		}
		go func(key string) {
			bgCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			if err := s.uploader.Delete(bgCtx, key); err != nil {
				log.Printf("[STORAGE ERROR] Failed to delete object %s: %v", key, err)
			}
		}(res.StorageKey)
	}

	return nil
}

func (s *DefaultService) invalidate(ctx context.Context, ownerID uint64) {
	versionKey := fmt.Sprintf("user:%d:sections:version", ownerID)
	s.cache.IncrementVersion(ctx, versionKey)
}
