package run

import "sync/atomic"

// State is shared by the monitor, its schedulers and every launched check.
// The stopping flag only ever goes from false to true.
type State struct {
	stopping atomic.Bool
	inFlight atomic.Int64
}

func NewState() *State { return &State{} }

// Stop sets the stopping flag and reports whether this call flipped it.
func (s *State) Stop() bool {
	return s.stopping.CompareAndSwap(false, true)
}

func (s *State) Stopping() bool { return s.stopping.Load() }

func (s *State) Begin() int64 { return s.inFlight.Add(1) }

// End releases one in-flight slot. An End without a matching Begin is ignored.
func (s *State) End() int64 {
	for {
		cur := s.inFlight.Load()
		if cur <= 0 {
			return 0
		}
		if s.inFlight.CompareAndSwap(cur, cur-1) {
			return cur - 1
		}
	}
}

func (s *State) InFlight() int64 { return s.inFlight.Load() }
