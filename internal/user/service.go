package user

import (
	"strings"

	"study-resource-hub/internal/domain"
	"study-resource-hub/internal/errors"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ProfileUpdate carries the optional profile fields. Nil means "leave
// untouched", mirroring the field-wise merge of the update endpoint.
type ProfileUpdate struct {
	Name           *string
	CollegeName    *string
	CollegeAddress *string
	UniversityName *string
}

// Service defines the interface for user business logic
type Service interface {
	Register(user *domain.User) error
	Login(email, password string) (*domain.User, error)
	GetUserByID(id uint64) (*domain.User, error)
	UpdateProfile(id uint64, update ProfileUpdate) (*domain.User, error)
	IncreaseTokenVersion(id uint64) error
}

// DefaultService implements Service
type DefaultService struct {
	repository UserRepository
}

// NewService creates a new user service
func NewService(repository UserRepository) Service {
	return &DefaultService{repository: repository}
}

// Register registers a new user
func (s *DefaultService) Register(user *domain.User) error {
	// Emails are unique case-insensitively
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))

	// Check if user with email already exists
	_, err := s.repository.FindByEmail(user.Email)
	if err != nil && err != gorm.ErrRecordNotFound {
		return err
	}
	if err == nil {
		return errors.UnprocessableEntity("User already registered", nil)
	}

	// Hash the password before saving
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return errors.UnprocessableEntity("Can't process password", err)
	}
	user.PasswordHash = string(hashedPassword)
	user.IsActive = true

	// Create user
	return s.repository.Create(user)
}

// Login authenticates a user
func (s *DefaultService) Login(email, password string) (*domain.User, error) {
	// Find user by email
	user, err := s.repository.FindByEmail(strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, errors.Unauthorized("User not found", err)
	}

	// Check if user is active
	if !user.IsActive {
		return nil, errors.Unauthorized("User is not active", nil)
	}

	// Check password
	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password))
	if err != nil {
		return nil, errors.UnprocessableEntity("Wrong password", err)
	}

	return user, nil
}

// GetUserByID gets a user by ID
func (s *DefaultService) GetUserByID(id uint64) (*domain.User, error) {
	user, err := s.repository.FindByID(id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NotFound("User not found", err)
		}
		return nil, err
	}
	return user, nil
}

// UpdateProfile merges the provided fields into the stored profile
func (s *DefaultService) UpdateProfile(id uint64, update ProfileUpdate) (*domain.User, error) {
	user, err := s.repository.FindByID(id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NotFound("User not found", err)
		}
		return nil, err
	}

	if update.Name != nil {
		user.Name = *update.Name
	}
	if update.CollegeName != nil {
		user.CollegeName = *update.CollegeName
	}
	if update.CollegeAddress != nil {
		user.CollegeAddress = *update.CollegeAddress
	}
	if update.UniversityName != nil {
		user.UniversityName = *update.UniversityName
	}

	if err := s.repository.Save(user); err != nil {
		return nil, err
	}
	return user, nil
}

// IncreaseTokenVersion invalidates every outstanding token for the user
func (s *DefaultService) IncreaseTokenVersion(id uint64) error {
	return s.repository.IncreaseTokenVersion(id)
}
