package models

import "time"

// SessionFeedback is a post-session rating left by a participant. One row
// per (session, author); re-submitting updates the existing row. Low
// ratings are flagged for admin review.
type SessionFeedback struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	SessionID   string     `gorm:"type:uuid;not null;index:idx_feedback_session_author,unique" json:"session_id"`
	FromUserID  string     `gorm:"type:uuid;not null;index:idx_feedback_session_author,unique" json:"from_user_id"`
	VolunteerID *string    `gorm:"type:uuid;index" json:"volunteer_id"`
	Rating      int        `gorm:"not null" json:"rating"` // 1..5
	Comment     string     `gorm:"type:text" json:"comment"`
	Flagged     bool       `gorm:"default:false;index" json:"flagged"`
	Reviewed    bool       `gorm:"default:false" json:"reviewed"`
	ReviewedBy  *string    `gorm:"type:uuid" json:"reviewed_by"`
	ReviewedAt  *time.Time `json:"reviewed_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (SessionFeedback) TableName() string {
	return "session_feedback"
}
