package run

import (
	"fmt"
	"time"
)

type Kind int

const (
	KindSuccess Kind = iota
	KindStatusMismatch
	KindPatternMismatch
	KindTransport
	KindFault
)

func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindStatusMismatch:
		return "status_mismatch"
	case KindPatternMismatch:
		return "pattern_mismatch"
	case KindTransport:
		return "transport"
	case KindFault:
		return "fault"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Outcome is the classified result of one check execution.
type Outcome struct {
	Kind     Kind
	Code     int
	Err      error
	Duration time.Duration
}

func (o Outcome) Failed() bool { return o.Kind != KindSuccess }
