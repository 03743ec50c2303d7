package models

import "time"

// Signal message types shared by both relay variants. Anything else
// (offer, answer, ice-candidate) passes through verbatim.
const (
	SignalAuth            = "auth"
	SignalParticipantLeft = "participant-left"
)

// SignalEnvelope is the wire format for relay traffic: websocket frames and
// the poll endpoint both use it. Data is the opaque WebRTC payload.
type SignalEnvelope struct {
	ID        uint      `json:"id,omitempty"`
	SessionID string    `json:"session_id"`
	From      string    `json:"from"`
	To        string    `json:"to,omitempty"` // empty = broadcast
	Type      string    `json:"type"`
	Data      string    `json:"data,omitempty"`
	Token     string    `json:"token,omitempty"` // only on auth frames
	Timestamp time.Time `json:"timestamp"`
}

// SignalMessage is the stored form used by the poll-based relay variant.
// Rows are marked delivered once fetched by their addressee and are never
// returned twice.
type SignalMessage struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	SessionID  string    `gorm:"type:uuid;not null;index" json:"session_id"`
	FromUserID string    `gorm:"type:uuid;not null" json:"from_user_id"`
	ToUserID   *string   `gorm:"type:uuid" json:"to_user_id"` // nil = broadcast
	Type       string    `gorm:"size:40;not null" json:"type"`
	Payload    string    `gorm:"type:text" json:"payload"`
	Delivered  bool      `gorm:"default:false;index" json:"delivered"`
	CreatedAt  time.Time `json:"created_at"`
}

func (SignalMessage) TableName() string {
	return "signal_messages"
}

// Envelope converts a stored signal row to its wire form.
func (m *SignalMessage) Envelope() SignalEnvelope {
	env := SignalEnvelope{
		ID:        m.ID,
		SessionID: m.SessionID,
		From:      m.FromUserID,
		Type:      m.Type,
		Data:      m.Payload,
		Timestamp: m.CreatedAt,
	}
	if m.ToUserID != nil {
		env.To = *m.ToUserID
	}
	return env
}
