// Package rewards converts volunteer time into points and currency using
// the admin-configured rate table.
package rewards

import (
	"math"
	"time"

	"listeningroom/backend/internal/models"
)

// Fallback rates used when no active RewardSettings row exists.
const (
	DefaultPointsPerMinute        = 40.0
	DefaultPointsToDollarRate     = 0.1
	DefaultContinuationMultiplier = 1.5
)

// MinRewardableDuration is the floor below which a session earns nothing.
const MinRewardableDuration = time.Minute

// Reward is the computed outcome for one ended session.
type Reward struct {
	TimeSpentMinutes int
	Points           int64
	Amount           float64
}

// Zero reports whether the session earned nothing.
func (r Reward) Zero() bool { return r.Points == 0 }

// Settings returns usable rates from a possibly-nil settings row.
func Settings(row *models.RewardSettings) models.RewardSettings {
	if row == nil {
		return models.RewardSettings{
			PointsPerMinute:        DefaultPointsPerMinute,
			PointsToDollarRate:     DefaultPointsToDollarRate,
			ContinuationMultiplier: DefaultContinuationMultiplier,
		}
	}
	s := *row
	if s.PointsPerMinute <= 0 {
		s.PointsPerMinute = DefaultPointsPerMinute
	}
	if s.PointsToDollarRate <= 0 {
		s.PointsToDollarRate = DefaultPointsToDollarRate
	}
	if s.ContinuationMultiplier <= 0 {
		s.ContinuationMultiplier = DefaultContinuationMultiplier
	}
	return s
}

// Calculate computes the reward for time spent between startedAt and
// endedAt. Sessions shorter than a minute earn nothing. Points are floored
// after applying the continuation multiplier.
func Calculate(startedAt, endedAt time.Time, continued bool, settings models.RewardSettings) Reward {
	elapsed := endedAt.Sub(startedAt)
	if elapsed < MinRewardableDuration {
		return Reward{}
	}

	minutes := elapsed.Minutes()
	multiplier := 1.0
	if continued {
		multiplier = settings.ContinuationMultiplier
	}

	points := int64(math.Floor(minutes * settings.PointsPerMinute * multiplier))
	return Reward{
		TimeSpentMinutes: int(math.Floor(minutes)),
		Points:           points,
		Amount:           float64(points) * settings.PointsToDollarRate,
	}
}
