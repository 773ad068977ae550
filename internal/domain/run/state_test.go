package run

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestState_StopOnce(t *testing.T) {
	s := NewState()
	assert.False(t, s.Stopping())

	assert.True(t, s.Stop())
	assert.False(t, s.Stop())
	assert.True(t, s.Stopping())
}

func TestState_InFlightNeverNegative(t *testing.T) {
	s := NewState()
	assert.EqualValues(t, 0, s.End())

	assert.EqualValues(t, 1, s.Begin())
	assert.EqualValues(t, 2, s.Begin())
	assert.EqualValues(t, 1, s.End())
	assert.EqualValues(t, 0, s.End())
	assert.EqualValues(t, 0, s.End())
	assert.EqualValues(t, 0, s.InFlight())
}

func TestState_Concurrent(t *testing.T) {
	s := NewState()
	var wg sync.WaitGroup
	for range 200 {
		wg.Add(1)
		s.Begin()
		go func() {
			defer wg.Done()
			defer s.End()
			s.Stop()
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 0, s.InFlight())
	assert.True(t, s.Stopping())
}

func TestKind(t *testing.T) {
	assert.False(t, Outcome{Kind: KindSuccess}.Failed())
	for _, k := range []Kind{KindStatusMismatch, KindPatternMismatch, KindTransport, KindFault} {
		assert.True(t, Outcome{Kind: k}.Failed(), k.String())
	}
	assert.Equal(t, "status_mismatch", KindStatusMismatch.String())
}
