package domain

import (
	"time"
)

// User represents a registered account
type User struct {
	ID           uint64    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `gorm:"uniqueIndex" json:"email"`
	Password     string    `gorm:"-" json:"-"` // input only, not stored in db
	PasswordHash string    `json:"-"`
	TokenVersion uint64    `gorm:"default:0" json:"-"`
	IsActive     bool      `gorm:"default:true" json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// optional institutional profile
	CollegeName    string `json:"college_name"`
	CollegeAddress string `json:"college_address"`
	UniversityName string `json:"university_name"`

	Sections  []Section  `gorm:"foreignKey:OwnerID" json:"-"`
	Resources []Resource `gorm:"foreignKey:OwnerID" json:"-"`
}

// SafeUser represents a user without sensitive information
type SafeUser struct {
	ID             uint64    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	CollegeName    string    `json:"college_name,omitempty"`
	CollegeAddress string    `json:"college_address,omitempty"`
	UniversityName string    `json:"university_name,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	IsActive       bool      `json:"is_active"`
}

// ToSafeUser converts a User to a SafeUser
func (u *User) ToSafeUser() SafeUser {
	return SafeUser{
		ID:             u.ID,
		Name:           u.Name,
		Email:          u.Email,
		CollegeName:    u.CollegeName,
		CollegeAddress: u.CollegeAddress,
		UniversityName: u.UniversityName,
		CreatedAt:      u.CreatedAt,
		IsActive:       u.IsActive,
	}
}
