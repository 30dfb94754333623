package bus

import (
	"context"

	"github.com/mirrorbuddy/mirrorbuddy-backend/internal/realtime"
)

// Bus replicates SSE messages across backend instances so a material
// saved against one pod reaches clients streaming from another.
type Bus interface {
	Publish(ctx context.Context, msg realtime.SSEMessage) error
	StartForwarder(ctx context.Context, onMsg func(m realtime.SSEMessage)) error
	Close() error
}
