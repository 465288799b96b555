package rollup

import (
	"fmt"
	"log"
	"sync"

	"study-resource-hub/internal/domain"

	"gorm.io/gorm"
)

// Coordinator is the sole writer of Section.Stats and Section.ResourceIDs.
// Callers invoke it inside the same transaction that persists the resource,
// so a failed rollup update rolls the resource write back with it.
//
// Concurrent mutations against the same section are serialized with a
// per-section lock; without it two parallel creates would both read the old
// counters and the later write would drop an increment. The lock must be
// held across the whole transaction, commit included: releasing it before
// commit lets the next writer read the still-old committed counters.
// Callers take it via Lock before opening the transaction.
type Coordinator struct {
	locks sync.Map // sectionID -> *sync.Mutex
}

func NewCoordinator() *Coordinator {
	return &Coordinator{}
}

// Lock serializes mutations of a section's rollup. It returns the unlock
// func; for an unsectioned resource (nil id) there is nothing to serialize
// and the unlock is a no-op. Hold it from before the transaction begins
// until after it commits.
func (c *Coordinator) Lock(sectionID *uint64) func() {
	if sectionID == nil {
		return func() {}
	}
	v, _ := c.locks.LoadOrStore(*sectionID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// OnResourceCreated folds a newly created resource into its section's
// rollup and membership list. A missing section is tolerated drift: the
// resource stays created, the skip is only logged. The caller holds the
// section's Lock for the duration of the enclosing transaction.
func (c *Coordinator) OnResourceCreated(tx *gorm.DB, resource *domain.Resource) error {
	if resource.SectionID == nil {
		return nil
	}

	var section domain.Section
	err := tx.First(&section, *resource.SectionID).Error
	if err == gorm.ErrRecordNotFound {
		log.Printf("[DRIFT] section %d not found while adding resource %d, rollup skipped", *resource.SectionID, resource.ID)
		return nil
	}
	if err != nil {
		return err
	}

	if err := applyCreate(&section.Stats, resource); err != nil {
		return err
	}
	section.ResourceIDs = append(section.ResourceIDs, resource.ID)

	return tx.Save(&section).Error
}

// OnResourceDeleted reverses OnResourceCreated. Counters are floored at
// zero so drift can never push them negative.
func (c *Coordinator) OnResourceDeleted(tx *gorm.DB, resource *domain.Resource) error {
	if resource.SectionID == nil {
		return nil
	}

	var section domain.Section
	err := tx.First(&section, *resource.SectionID).Error
	if err == gorm.ErrRecordNotFound {
		log.Printf("[DRIFT] section %d not found while removing resource %d, rollup skipped", *resource.SectionID, resource.ID)
		return nil
	}
	if err != nil {
		return err
	}

	if err := applyDelete(&section.Stats, resource); err != nil {
		return err
	}
	section.ResourceIDs = removeID(section.ResourceIDs, resource.ID)

	return tx.Save(&section).Error
}

func applyCreate(stats *domain.SectionStats, resource *domain.Resource) error {
	counter, err := variantCounter(stats, resource.Variant)
	if err != nil {
		return err
	}

	stats.TotalResources++
	*counter = *counter + 1
	stats.StorageUsed += resource.Size
	return nil
}

func applyDelete(stats *domain.SectionStats, resource *domain.Resource) error {
	counter, err := variantCounter(stats, resource.Variant)
	if err != nil {
		return err
	}

	stats.TotalResources = floor(stats.TotalResources - 1)
	*counter = floor(*counter - 1)
	stats.StorageUsed = floor(stats.StorageUsed - resource.Size)
	return nil
}

// variantCounter maps a variant to its dedicated counter. The switch is
// exhaustive over the closed variant set.
func variantCounter(stats *domain.SectionStats, variant domain.Variant) (*int64, error) {
	switch variant {
	case domain.VariantImage:
		return &stats.TotalImages, nil
	case domain.VariantPdf:
		return &stats.TotalPdfs, nil
	case domain.VariantLinkSheet:
		return &stats.TotalLinkSheets, nil
	case domain.VariantNote:
		return &stats.TotalNotes, nil
	default:
		return nil, fmt.Errorf("unknown resource variant %q", variant)
	}
}

func floor(n int64) int64 {
	if n < 0 {
		return 0
	}
	return n
}

// removeID drops id by value, keeping the relative order of the rest.
func removeID(ids []uint64, id uint64) []uint64 {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
