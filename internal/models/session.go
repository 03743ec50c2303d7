package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Session lifecycle. Transitions are monotonically forward:
// waiting -> active -> ended, with waiting -> ended allowed for sessions
// nobody ever joined.
const (
	SessionWaiting = "waiting"
	SessionActive  = "active"
	SessionEnded   = "ended"
)

const (
	SessionTypeText  = "text"
	SessionTypeVoice = "voice"
)

const (
	RoleSeeker    = "seeker"
	RoleVolunteer = "volunteer"
)

// ChatSession is a bounded support conversation between a seeker and a
// volunteer. VolunteerID is nil until a volunteer joins.
type ChatSession struct {
	ID                  string     `gorm:"primaryKey" json:"id"`
	SeekerID            string     `gorm:"type:uuid;not null;index" json:"seeker_id"`
	VolunteerID         *string    `gorm:"type:uuid;index" json:"volunteer_id"`
	Status              string     `gorm:"size:20;not null;index" json:"status"`
	SessionType         string     `gorm:"size:10;not null;default:text" json:"session_type"`
	Topic               string     `gorm:"size:120" json:"topic"`
	MaxParticipants     int        `gorm:"not null;default:2" json:"max_participants"`
	ContinuedAfterLimit bool       `gorm:"default:false" json:"continued_after_limit"`
	StartedAt           *time.Time `json:"started_at"`
	EndedAt             *time.Time `json:"ended_at"`
	SessionDuration     int        `json:"session_duration"` // minutes, set on end
	RewardPoints        int64      `json:"reward_points"`
	RewardAmount        float64    `json:"reward_amount"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

func (ChatSession) TableName() string {
	return "chat_sessions"
}

func (s *ChatSession) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return
}

// SessionParticipant links a user to a session with a role. Rows are soft
// closed (IsActive=false, LeftAt set) when the session ends, never deleted.
type SessionParticipant struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	SessionID string     `gorm:"type:uuid;not null;index:idx_session_user,unique" json:"session_id"`
	UserID    string     `gorm:"type:uuid;not null;index:idx_session_user,unique" json:"user_id"`
	Role      string     `gorm:"size:20;not null" json:"role"`
	IsActive  bool       `gorm:"default:true;index" json:"is_active"`
	JoinedAt  time.Time  `json:"joined_at"`
	LeftAt    *time.Time `json:"left_at"`
}

func (SessionParticipant) TableName() string {
	return "session_participants"
}
