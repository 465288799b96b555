package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Variant is the closed set of resource kinds. Anything else is rejected
// at creation time.
type Variant string

const (
	VariantImage     Variant = "Image"
	VariantPdf       Variant = "Pdf"
	VariantLinkSheet Variant = "LinkSheet"
	VariantNote      Variant = "Note"
)

// Valid reports whether v is one of the four known variants.
func (v Variant) Valid() bool {
	switch v {
	case VariantImage, VariantPdf, VariantLinkSheet, VariantNote:
		return true
	}
	return false
}

// Stored reports whether the variant has a backing storage object.
// LinkSheet and Note live entirely in the database.
func (v Variant) Stored() bool {
	return v == VariantImage || v == VariantPdf
}

type Visibility string

const (
	VisibilityPrivate Visibility = "private"
	VisibilityPublic  Visibility = "public"
	VisibilityShared  Visibility = "shared"
)

// LinkEntry is one row of a LinkSheet.
type LinkEntry struct {
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
}

// Resource is the shared envelope plus the variant-specific fields. The
// Variant column is the discriminator; variant fields not belonging to the
// discriminated kind stay at their zero value.
type Resource struct {
	ID          uint64     `json:"id"`
	OwnerID     uint64     `gorm:"index;not null" json:"owner_id"`
	SectionID   *uint64    `gorm:"index" json:"section_id"`
	Variant     Variant    `gorm:"size:20;index;not null" json:"variant"`
	Title       string     `gorm:"size:100;not null" json:"title"`
	Description string     `gorm:"size:500" json:"description,omitempty"`
	StorageKey  string     `json:"-"`
	URL         string     `json:"url,omitempty"`
	Size        int64      `gorm:"default:0" json:"size"`
	Visibility  Visibility `gorm:"size:10;default:private" json:"visibility"`
	Views       uint64     `gorm:"default:0" json:"views"`
	Downloads   uint64     `gorm:"default:0" json:"downloads"`
	Tags        datatypes.JSONSlice[string] `json:"tags"`
	Version     uint64     `gorm:"default:1" json:"version"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// Image
	Format string `json:"format,omitempty"`
	Width  *int   `json:"width,omitempty"`
	Height *int   `json:"height,omitempty"`

	// Pdf
	PageCount int `gorm:"default:0" json:"page_count,omitempty"`

	// LinkSheet
	Links datatypes.JSONSlice[LinkEntry] `json:"links,omitempty"`

	// Note
	Content    string     `json:"content,omitempty"`
	WordCount  *int       `json:"word_count,omitempty"`
	LastEdited *time.Time `json:"last_edited,omitempty"`
}
