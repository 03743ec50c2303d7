// Package session implements the chat-session lifecycle: create, join,
// continue, end, and post-session feedback.
package session

import (
	"errors"
	"fmt"
	"time"

	"listeningroom/backend/internal/models"
	"listeningroom/backend/internal/rewards"
	"listeningroom/backend/internal/storage"

	"github.com/rs/zerolog/log"
)

// Sentinel errors; the HTTP layer maps these to status codes.
var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrSessionNotWaiting = errors.New("session is not waiting for a volunteer")
	ErrSessionNotActive = errors.New("session is not active")
	ErrSessionNotEnded  = errors.New("session has not ended yet")
	ErrSessionFull      = errors.New("session is at participant capacity")
	ErrAlreadyJoined    = errors.New("already an active participant of this session")
	ErrVolunteerBusy    = errors.New("volunteer already holds an active session")
	ErrSeekerBusy       = errors.New("seeker already has an open session")
	ErrNotParticipant   = errors.New("not a participant of this session")
	ErrNotVolunteer     = errors.New("caller is not a volunteer")
	ErrTrainingRequired = errors.New("volunteer training not completed")
	ErrBanned           = errors.New("user is banned")
)

// Service orchestrates session state over storage. All state transitions go
// through conditional updates in storage, so racing requests resolve at the
// database rather than in handler code.
type Service struct {
	Storage storage.Storage
}

func NewService(s storage.Storage) *Service {
	return &Service{Storage: s}
}

// Detail is a session plus its participant rows.
type Detail struct {
	Session      *models.ChatSession         `json:"session"`
	Participants []models.SessionParticipant `json:"participants"`
}

// Create opens a waiting session for a seeker. A seeker can hold at most
// one waiting or active session at a time.
func (s *Service) Create(seekerID, sessionType, topic string) (*models.ChatSession, error) {
	open, err := s.Storage.GetOpenSessionForUser(seekerID, models.RoleSeeker)
	if err != nil {
		return nil, fmt.Errorf("checking open sessions: %w", err)
	}
	if open != nil {
		return nil, ErrSeekerBusy
	}

	if sessionType != models.SessionTypeVoice {
		sessionType = models.SessionTypeText
	}
	session := &models.ChatSession{
		SeekerID:        seekerID,
		Status:          models.SessionWaiting,
		SessionType:     sessionType,
		Topic:           topic,
		MaxParticipants: 2,
	}
	if err := s.Storage.CreateSession(session); err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}

	participant := &models.SessionParticipant{
		SessionID: session.ID,
		UserID:    seekerID,
		Role:      models.RoleSeeker,
	}
	if err := s.Storage.AddParticipant(participant); err != nil {
		return nil, fmt.Errorf("adding seeker participant: %w", err)
	}

	log.Info().Str("session_id", session.ID).Str("seeker_id", seekerID).Msg("session created")
	return session, nil
}

// Join lets a trained volunteer take a waiting session. The slot itself is
// claimed with one conditional update; every precondition violated earlier
// returns its own sentinel.
func (s *Service) Join(sessionID, volunteerID string) (*Detail, error) {
	caller, err := s.Storage.GetUserByID(volunteerID)
	if err != nil {
		return nil, fmt.Errorf("loading caller: %w", err)
	}
	if !caller.IsVolunteer() {
		return nil, ErrNotVolunteer
	}
	if !caller.TrainingCompleted {
		return nil, ErrTrainingRequired
	}
	if banned, err := s.Storage.IsUserBanned(volunteerID); err != nil {
		return nil, fmt.Errorf("checking ban: %w", err)
	} else if banned {
		return nil, ErrBanned
	}

	session, err := s.Storage.GetSessionByID(sessionID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("loading session: %w", err)
	}
	if session.Status != models.SessionWaiting {
		return nil, ErrSessionNotWaiting
	}

	active, err := s.Storage.CountActiveParticipants(sessionID)
	if err != nil {
		return nil, fmt.Errorf("counting participants: %w", err)
	}
	if active >= int64(session.MaxParticipants) {
		return nil, ErrSessionFull
	}

	if already, err := s.Storage.IsActiveParticipant(sessionID, volunteerID); err != nil {
		return nil, fmt.Errorf("checking membership: %w", err)
	} else if already {
		return nil, ErrAlreadyJoined
	}

	if open, err := s.Storage.GetOpenSessionForUser(volunteerID, models.RoleVolunteer); err != nil {
		return nil, fmt.Errorf("checking volunteer load: %w", err)
	} else if open != nil {
		return nil, ErrVolunteerBusy
	}

	// The actual claim. A racing volunteer who also passed the checks above
	// loses here: zero rows updated.
	now := time.Now()
	claimed, err := s.Storage.ClaimWaitingSession(sessionID, volunteerID, now)
	if err != nil {
		return nil, fmt.Errorf("claiming session: %w", err)
	}
	if !claimed {
		return nil, ErrSessionNotWaiting
	}

	participant := &models.SessionParticipant{
		SessionID: sessionID,
		UserID:    volunteerID,
		Role:      models.RoleVolunteer,
		JoinedAt:  now,
	}
	if err := s.Storage.AddParticipant(participant); err != nil {
		return nil, fmt.Errorf("adding volunteer participant: %w", err)
	}

	if err := s.Storage.EnsureAvailability(volunteerID); err != nil {
		log.Error().Err(err).Str("volunteer_id", volunteerID).Msg("ensuring availability row")
	} else if err := s.Storage.IncrementActiveSessions(volunteerID); err != nil {
		log.Error().Err(err).Str("volunteer_id", volunteerID).Msg("incrementing active sessions")
	}

	log.Info().Str("session_id", sessionID).Str("volunteer_id", volunteerID).Msg("volunteer joined session")
	return s.detail(sessionID)
}

// Continue marks an active session as continued past the free limit, which
// raises the volunteer's reward multiplier at end time. Seeker only.
func (s *Service) Continue(sessionID, seekerID string) error {
	session, err := s.Storage.GetSessionByID(sessionID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrSessionNotFound
		}
		return fmt.Errorf("loading session: %w", err)
	}
	if session.SeekerID != seekerID {
		return ErrNotParticipant
	}

	marked, err := s.Storage.MarkSessionContinued(sessionID, seekerID)
	if err != nil {
		return fmt.Errorf("marking continuation: %w", err)
	}
	if !marked {
		return ErrSessionNotActive
	}
	return nil
}

// EndResult reports what End did. RewardCalculated is false when the caller
// was the seeker, the session was too short, or reward persistence failed.
type EndResult struct {
	Session          *models.ChatSession `json:"session"`
	RewardCalculated bool                `json:"reward_calculated"`
}

// End closes a waiting or active session. Ending is authorized for the
// session's seeker or volunteer. Reward computation runs only when the
// ending caller is the volunteer and its failure never fails the end.
func (s *Service) End(sessionID, callerID string) (*EndResult, error) {
	session, err := s.Storage.GetSessionByID(sessionID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("loading session: %w", err)
	}

	isSeeker := session.SeekerID == callerID
	isVolunteer := session.VolunteerID != nil && *session.VolunteerID == callerID
	if !isSeeker && !isVolunteer {
		return nil, ErrNotParticipant
	}

	now := time.Now()
	closed, err := s.Storage.CloseSession(sessionID, now)
	if err != nil {
		return nil, fmt.Errorf("closing session: %w", err)
	}
	if !closed {
		// Already ended; the conditional update matched nothing.
		return nil, ErrSessionNotFound
	}

	if err := s.Storage.CloseParticipants(sessionID, now); err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("closing participants")
	}

	session.Status = models.SessionEnded
	session.EndedAt = &now

	result := &EndResult{Session: session}
	if isVolunteer && session.StartedAt != nil {
		result.RewardCalculated = s.settleReward(session, callerID, now)
	}

	if session.VolunteerID != nil {
		if err := s.Storage.DecrementActiveSessions(*session.VolunteerID); err != nil {
			log.Error().Err(err).Str("volunteer_id", *session.VolunteerID).Msg("decrementing active sessions")
		}
	}

	log.Info().
		Str("session_id", sessionID).
		Str("ended_by", callerID).
		Bool("reward_calculated", result.RewardCalculated).
		Msg("session ended")
	return result, nil
}

// settleReward computes and persists the volunteer reward. Failures are
// logged and swallowed: ending always succeeds once the session closed.
func (s *Service) settleReward(session *models.ChatSession, volunteerID string, endedAt time.Time) bool {
	row, err := s.Storage.ActiveRewardSettings()
	if err != nil {
		log.Error().Err(err).Str("session_id", session.ID).Msg("loading reward settings")
		row = nil
	}
	settings := rewards.Settings(row)

	reward := rewards.Calculate(*session.StartedAt, endedAt, session.ContinuedAfterLimit, settings)
	session.SessionDuration = reward.TimeSpentMinutes
	session.RewardPoints = reward.Points
	session.RewardAmount = reward.Amount

	if err := s.Storage.UpdateSessionReward(session.ID, reward.TimeSpentMinutes, reward.Points, reward.Amount); err != nil {
		log.Error().Err(err).Str("session_id", session.ID).Msg("persisting session reward")
		return false
	}
	if reward.Zero() {
		return false
	}

	earning := &models.VolunteerEarning{
		VolunteerID:      volunteerID,
		SessionID:        session.ID,
		TimeSpentMinutes: reward.TimeSpentMinutes,
		PointsEarned:     reward.Points,
		AmountEarned:     reward.Amount,
	}
	if err := s.Storage.UpsertEarning(earning); err != nil {
		log.Error().Err(err).Str("session_id", session.ID).Msg("upserting volunteer earning")
		return false
	}
	return true
}

// LeaveFeedback records a rating for an ended session. One row per author
// per session; resubmissions overwrite. Ratings of two or below are flagged
// for moderation.
func (s *Service) LeaveFeedback(sessionID, userID string, rating int, comment string) (*models.SessionFeedback, error) {
	session, err := s.Storage.GetSessionByID(sessionID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("loading session: %w", err)
	}
	if session.Status != models.SessionEnded {
		return nil, ErrSessionNotEnded
	}

	participant, err := s.Storage.GetParticipant(sessionID, userID)
	if err != nil {
		return nil, fmt.Errorf("loading participant: %w", err)
	}
	if participant == nil {
		return nil, ErrNotParticipant
	}

	feedback := &models.SessionFeedback{
		SessionID:   sessionID,
		FromUserID:  userID,
		VolunteerID: session.VolunteerID,
		Rating:      rating,
		Comment:     comment,
		Flagged:     rating <= 2,
	}
	if err := s.Storage.UpsertFeedback(feedback); err != nil {
		return nil, fmt.Errorf("saving feedback: %w", err)
	}
	return feedback, nil
}

// Get returns a session with its participants. Callers outside the session
// are rejected unless allowAny is set (admin access).
func (s *Service) Get(sessionID, callerID string, allowAny bool) (*Detail, error) {
	session, err := s.Storage.GetSessionByID(sessionID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("loading session: %w", err)
	}

	if !allowAny {
		participant, err := s.Storage.GetParticipant(sessionID, callerID)
		if err != nil {
			return nil, fmt.Errorf("loading participant: %w", err)
		}
		if participant == nil {
			return nil, ErrNotParticipant
		}
	}

	participants, err := s.Storage.GetParticipants(sessionID)
	if err != nil {
		return nil, fmt.Errorf("loading participants: %w", err)
	}
	return &Detail{Session: session, Participants: participants}, nil
}

func (s *Service) detail(sessionID string) (*Detail, error) {
	session, err := s.Storage.GetSessionByID(sessionID)
	if err != nil {
		return nil, fmt.Errorf("reloading session: %w", err)
	}
	participants, err := s.Storage.GetParticipants(sessionID)
	if err != nil {
		return nil, fmt.Errorf("loading participants: %w", err)
	}
	return &Detail{Session: session, Participants: participants}, nil
}
