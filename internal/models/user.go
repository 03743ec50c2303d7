package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// User types. Admins are created out of band (see cmd/admin); everyone else
// registers as a seeker and may become a volunteer through an application.
const (
	UserTypeSeeker    = "seeker"
	UserTypeVolunteer = "volunteer"
	UserTypeAdmin     = "admin"
)

// User represents an account in the system. Volunteers additionally carry
// specialties and a training flag that gates session joins.
type User struct {
	ID                string         `gorm:"primaryKey" json:"id"`
	Email             string         `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash      string         `gorm:"not null" json:"-"`
	DisplayName       string         `gorm:"size:80" json:"display_name"`
	UserType          string         `gorm:"size:20;not null;index" json:"user_type"`
	Specialties       pq.StringArray `gorm:"type:text[]" json:"specialties"`
	Languages         pq.StringArray `gorm:"type:text[]" json:"languages"`
	TrainingCompleted bool           `gorm:"default:false" json:"training_completed"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

// BeforeCreate generates a UUID for the user if one is not set.
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return
}

func (u *User) IsVolunteer() bool { return u.UserType == UserTypeVolunteer }
func (u *User) IsAdmin() bool     { return u.UserType == UserTypeAdmin }

// Volunteer application review states.
const (
	ApplicationPending  = "pending"
	ApplicationApproved = "approved"
	ApplicationRejected = "rejected"
)

// VolunteerApplication is a seeker's request to become a volunteer.
// Approval flips the user's type and provisions an availability row.
type VolunteerApplication struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	UserID      string         `gorm:"type:uuid;not null;index" json:"user_id"`
	Motivation  string         `gorm:"type:text;not null" json:"motivation"`
	Experience  string         `gorm:"type:text" json:"experience"`
	Specialties pq.StringArray `gorm:"type:text[]" json:"specialties"`
	Status      string         `gorm:"size:20;not null;default:pending;index" json:"status"`
	ReviewNotes string         `gorm:"type:text" json:"review_notes"`
	ReviewedBy  *string        `gorm:"type:uuid" json:"reviewed_by"`
	ReviewedAt  *time.Time     `json:"reviewed_at"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (VolunteerApplication) TableName() string {
	return "volunteer_applications"
}
