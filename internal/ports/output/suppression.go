package output

import "context"

// SuppressionLedger records reaction removals issued by the bot itself so
// their echo events can be told apart from a user un-reacting.
type SuppressionLedger interface {
	Mark(ctx context.Context, key string) error
	// Consume deletes key and reports whether it was present.
	Consume(ctx context.Context, key string) (bool, error)
}
