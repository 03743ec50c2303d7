package models

import "time"

// VolunteerAvailability tracks how many sessions a volunteer is currently
// holding. CurrentActiveSessions never goes below zero; the decrement in
// storage only matches rows with a positive counter.
type VolunteerAvailability struct {
	ID                    uint      `gorm:"primaryKey" json:"id"`
	VolunteerID           string    `gorm:"type:uuid;uniqueIndex;not null" json:"volunteer_id"`
	IsOnline              bool      `gorm:"default:false" json:"is_online"`
	CurrentActiveSessions int       `gorm:"default:0" json:"current_active_sessions"`
	MaxConcurrentSessions int       `gorm:"default:1" json:"max_concurrent_sessions"`
	UpdatedAt             time.Time `json:"updated_at"`
}

func (VolunteerAvailability) TableName() string {
	return "volunteer_availability_status"
}

// VolunteerEarning is one reward record per (volunteer, session). The unique
// index on SessionID makes the write an upsert: retried end calls overwrite
// rather than duplicate.
type VolunteerEarning struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	VolunteerID      string    `gorm:"type:uuid;not null;index" json:"volunteer_id"`
	SessionID        string    `gorm:"type:uuid;uniqueIndex;not null" json:"session_id"`
	TimeSpentMinutes int       `json:"time_spent_minutes"`
	PointsEarned     int64     `json:"points_earned"`
	AmountEarned     float64   `json:"amount_earned"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (VolunteerEarning) TableName() string {
	return "volunteer_earnings"
}

// RewardSettings is the admin-configured rate table. At most one row is
// active at a time; updating rates deactivates the old row and inserts a
// new active one, keeping history.
type RewardSettings struct {
	ID                     uint      `gorm:"primaryKey" json:"id"`
	PointsPerMinute        float64   `gorm:"not null" json:"points_per_minute"`
	PointsToDollarRate     float64   `gorm:"not null" json:"points_to_dollar_rate"`
	ContinuationMultiplier float64   `gorm:"not null" json:"continuation_multiplier"`
	IsActive               bool      `gorm:"default:true;index" json:"is_active"`
	CreatedAt              time.Time `json:"created_at"`
}

func (RewardSettings) TableName() string {
	return "reward_settings"
}
