package domain

import (
	"time"

	"gorm.io/datatypes"
)

// SectionStats is the denormalized rollup cached on a section. It is
// maintained on the write path only (see internal/rollup); reads never
// recompute it, so it can drift when a rollup update targets a section
// that was deleted concurrently.
type SectionStats struct {
	TotalResources  int64 `gorm:"default:0" json:"totalResources"`
	TotalImages     int64 `gorm:"default:0" json:"totalImages"`
	TotalPdfs       int64 `gorm:"default:0" json:"totalPdfs"`
	TotalLinkSheets int64 `gorm:"default:0" json:"totalLinkSheets"`
	TotalNotes      int64 `gorm:"default:0" json:"totalNotes"`
	StorageUsed     int64 `gorm:"default:0" json:"storageUsed"`
}

// Section is an owned grouping of resources. ResourceIDs keeps insertion
// order, which is display order.
type Section struct {
	ID          uint64       `json:"id"`
	OwnerID     uint64       `gorm:"index;not null" json:"owner_id"`
	Title       string       `gorm:"size:100;not null" json:"title"`
	Description string       `gorm:"size:500" json:"description,omitempty"`
	Visibility  Visibility   `gorm:"size:10;default:private" json:"visibility"`
	ResourceIDs datatypes.JSONSlice[uint64] `json:"-"`
	Stats       SectionStats `gorm:"embedded;embeddedPrefix:stats_" json:"stats"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}
