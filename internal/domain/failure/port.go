package failure

import (
	"context"
	"time"
)

type Sink interface {
	Capture(ctx context.Context, ev Event) error
	Flush(timeout time.Duration) bool
}
