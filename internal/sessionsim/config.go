// Package sessionsim drives a running assessment service with concurrent
// simulated sessions and checks every score it gets back.
package sessionsim

import (
	"time"

	"github.com/okian/lingua/pkg/logger"
)

// Config holds configuration for a simulation run.
type Config struct {
	BaseURL  string        // Base URL of the service
	Sessions int           // Number of sessions to simulate
	Turns    int           // User turns per session; each is followed by a coach turn
	Words    int           // Maximum words per user turn
	Workers  int           // Number of concurrent workers
	Timeout  time.Duration // HTTP request timeout
	Verbose  bool          // Log every session outcome
	Logger   logger.Logger // Defaults to logger.Nop()
}

func (c *Config) log() logger.Logger {
	if c.Logger == nil {
		return logger.Nop()
	}
	return c.Logger
}

// plannedTurn is one turn a simulated session will submit.
type plannedTurn struct {
	Who  string `json:"who"`
	Text string `json:"text"`
	TS   int64  `json:"ts,omitempty"`
	Key  string `json:"key"`
}

// plan is everything a simulated session sends.
type plan struct {
	Topic string
	Turns []plannedTurn
}

type startResponse struct {
	SessionID string `json:"sessionId"`
	Prompt    string `json:"prompt"`
}

type turnResponse struct {
	ID   string `json:"id"`
	Who  string `json:"who"`
	Text string `json:"text"`
	TS   int64  `json:"ts"`
}

type endResponse struct {
	SessionID string         `json:"sessionId"`
	Score     int            `json:"score"`
	Summary   string         `json:"summary"`
	Turns     []turnResponse `json:"turns"`
}

type sessionResponse struct {
	SessionID string         `json:"sessionId"`
	State     string         `json:"state"`
	Turns     []turnResponse `json:"turns"`
}

type placementResponse struct {
	OverallBand  float64 `json:"overallBand"`
	OverallLevel string  `json:"overallLevel"`
}

// Stats holds run statistics.
type Stats struct {
	SessionsPlanned   int
	SessionsCompleted int
	SessionsFailed    int
	TurnsSubmitted    int
	TurnsReplayed     int
	ScoreMismatches   int
	PlacementLevel    string
	PlacementBand     float64
	StartTime         time.Time
	EndTime           time.Time
	Duration          time.Duration
}
