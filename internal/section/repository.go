package section

import (
	"study-resource-hub/internal/domain"

	"gorm.io/gorm"
)

// SectionRepository defines the interface for section data access
type SectionRepository interface {
	Create(section *domain.Section) error
	ListByOwner(ownerID uint64) ([]domain.Section, error)
	FindByID(id uint64, ownerID uint64) (*domain.Section, error)
	ResourcesByIDs(ids []uint64) ([]domain.Resource, error)
	DeleteCascade(section *domain.Section) ([]domain.Resource, error)
}

type SectionRepositoryImpl struct {
	db *gorm.DB
}

// NewRepository creates a new section repository
func NewRepository(db *gorm.DB) SectionRepository {
	return &SectionRepositoryImpl{db: db}
}

func (r *SectionRepositoryImpl) Create(section *domain.Section) error {
	return r.db.Create(section).Error
}

// ListByOwner returns the owner's sections ordered by creation time,
// most recent last.
func (r *SectionRepositoryImpl) ListByOwner(ownerID uint64) ([]domain.Section, error) {
	var sections []domain.Section
	err := r.db.Where("owner_id = ?", ownerID).
		Order("created_at ASC, id ASC").
		Find(&sections).Error
	return sections, err
}

// FindByID is ownership-scoped; foreign and missing records are the same
// ErrRecordNotFound.
func (r *SectionRepositoryImpl) FindByID(id uint64, ownerID uint64) (*domain.Section, error) {
	var section domain.Section
	err := r.db.Where("id = ? AND owner_id = ?", id, ownerID).First(&section).Error
	if err != nil {
		return nil, err
	}
	return &section, nil
}

// ResourcesByIDs resolves membership references to full records. Ids with
// no backing resource are simply absent from the result.
func (r *SectionRepositoryImpl) ResourcesByIDs(ids []uint64) ([]domain.Resource, error) {
	if len(ids) == 0 {
		return []domain.Resource{}, nil
	}

	var resources []domain.Resource
	err := r.db.Where("id IN ?", ids).Find(&resources).Error
	return resources, err
}

// DeleteCascade removes the section and every resource whose section_id
// points at it, in one transaction. The cascade scans by foreign key, not
// the cached membership list, so it cleans up even under drift. The
// deleted resources are returned so the caller can drop their storage
// objects.
func (r *SectionRepositoryImpl) DeleteCascade(section *domain.Section) ([]domain.Resource, error) {
	var resources []domain.Resource

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("section_id = ?", section.ID).Find(&resources).Error; err != nil {
			return err
		}

		if err := tx.Where("section_id = ?", section.ID).Delete(&domain.Resource{}).Error; err != nil {
			return err
		}

		return tx.Delete(&domain.Section{}, section.ID).Error
	})

	if err != nil {
		return nil, err
	}
	return resources, nil
}
