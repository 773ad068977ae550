package failure

import (
	"time"

	"github.com/NordCoder/pinmon/internal/domain/check"
	"github.com/NordCoder/pinmon/internal/domain/run"
)

// Event is what gets captured by an error sink for one failed check
// occurrence, or for a startup fault when Check is nil.
type Event struct {
	Check *check.Instance
	Kind  run.Kind
	Code  int
	Err   error
	At    time.Time
	Stack []byte
}

func (e Event) Message() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return e.Err.Error()
}
