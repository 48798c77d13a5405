// Package notify delivers terminal-outcome messages to file owners. Delivery
// failures are the caller's to log, never to propagate: the pipeline must not
// stall because a mailbox is unreachable.
package notify

import (
	"context"

	"github.com/instashare/instashare/internal/server/models"
)

// Outcome is the terminal result of a file's archive/compression process.
type Outcome string

const (
	OutcomeSuccess Outcome = "SUCCESS"
	OutcomeFailed  Outcome = "FAILED"
)

// Sender notifies a user about a file's terminal outcome.
type Sender interface {
	NotifyOutcome(ctx context.Context, user *models.User, fileName string, outcome Outcome) error
}
