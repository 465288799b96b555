package resource

import (
	"study-resource-hub/internal/domain"
	"study-resource-hub/internal/rollup"

	"gorm.io/gorm"
)

type ResourcesMeta struct {
	Total       int64 `json:"total"`
	CurrentPage int   `json:"current_page"`
	PerPage     int   `json:"per_page"`
	TotalPage   int   `json:"total_page"`
}

// ResourceRepository defines the interface for resource data access.
// Create and Delete run the rollup adjustment in the same transaction as
// the resource write.
type ResourceRepository interface {
	Create(resource *domain.Resource) error
	FindByID(id uint64, ownerID uint64) (*domain.Resource, error)
	ListByOwner(ownerID uint64, page, pageSize int) ([]domain.Resource, ResourcesMeta, error)
	Save(resource *domain.Resource) error
	Delete(resource *domain.Resource) error
}

type ResourceRepositoryImpl struct {
	db          *gorm.DB
	coordinator *rollup.Coordinator
}

// NewRepository creates a new resource repository
func NewRepository(db *gorm.DB, coordinator *rollup.Coordinator) ResourceRepository {
	return &ResourceRepositoryImpl{db: db, coordinator: coordinator}
}

// Create persists the resource and folds it into its section's rollup
// atomically. A rollup failure rolls the resource back. The section lock
// is held until the transaction commits so a concurrent writer can only
// read counters that already include this increment.
func (r *ResourceRepositoryImpl) Create(resource *domain.Resource) error {
	unlock := r.coordinator.Lock(resource.SectionID)
	defer unlock()

	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(resource).Error; err != nil {
			return err
		}
		return r.coordinator.OnResourceCreated(tx, resource)
	})
}

// FindByID is ownership-scoped: a record owned by someone else surfaces
// as ErrRecordNotFound, indistinguishable from a missing one.
func (r *ResourceRepositoryImpl) FindByID(id uint64, ownerID uint64) (*domain.Resource, error) {
	var resource domain.Resource
	err := r.db.Where("id = ? AND owner_id = ?", id, ownerID).First(&resource).Error
	if err != nil {
		return nil, err
	}
	return &resource, nil
}

func (r *ResourceRepositoryImpl) ListByOwner(ownerID uint64, page, pageSize int) ([]domain.Resource, ResourcesMeta, error) {
	var resources []domain.Resource
	var totalRecords int64

	// Count total records
	if err := r.db.Model(&domain.Resource{}).Where("owner_id = ?", ownerID).Count(&totalRecords).Error; err != nil {
		return resources, ResourcesMeta{}, err
	}

	offset := (page - 1) * pageSize
	err := r.db.Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&resources).Error

	totalPages := int((totalRecords + int64(pageSize) - 1) / int64(pageSize))

	return resources, ResourcesMeta{
		Total:       totalRecords,
		PerPage:     pageSize,
		TotalPage:   totalPages,
		CurrentPage: page,
	}, err
}

func (r *ResourceRepositoryImpl) Save(resource *domain.Resource) error {
	return r.db.Save(resource).Error
}

// Delete removes the resource and reverses its rollup contribution in
// one transaction, under the same commit-spanning section lock as Create.
func (r *ResourceRepositoryImpl) Delete(resource *domain.Resource) error {
	unlock := r.coordinator.Lock(resource.SectionID)
	defer unlock()

	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&domain.Resource{}, resource.ID).Error; err != nil {
			return err
		}
		return r.coordinator.OnResourceDeleted(tx, resource)
	})
}
