package run

import (
	"context"

	"github.com/NordCoder/pinmon/internal/domain/check"
)

type Executor interface {
	Execute(ctx context.Context, inst check.Instance) Outcome
}
