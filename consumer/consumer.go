// Package consumer runs Kafka consumer groups for the master (submission
// events) and the result collector (judge results).
package consumer

import "context"

// Consumer blocks consuming until ctx is cancelled or the group fails.
type Consumer interface {
	Start(ctx context.Context) error
}
