// internal/runutil/runutil.go
package runutil

import (
	"time"

	"github.com/google/uuid"
)

// DefaultPoll is the aggregator sweep interval when none is configured.
const DefaultPoll = time.Second

// EffectivePoll returns the aggregator poll interval, substituting the
// default for zero or negative values.
func EffectivePoll(d time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	return DefaultPoll
}

// NewRunID tags one invocation so parallel runs are separable in logs.
func NewRunID() string {
	return uuid.NewString()
}
