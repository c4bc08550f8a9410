package sessionsim

import "time"

// Defaults applied to zero-valued Config fields.
const (
	DefaultSessions = 100
	DefaultTurns    = 4
	DefaultWords    = 30
	DefaultWorkers  = 8
	DefaultTimeout  = 10 * time.Second
)

// Worker configuration constants.
const (
	WorkerChannelMultiplier = 2
)

// Runner configuration constants.
const (
	PercentageMultiplier = 100
	progressInterval     = time.Second
)
