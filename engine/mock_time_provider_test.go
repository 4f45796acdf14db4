package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)

func TestManualTimelineOrdering(t *testing.T) {
	tl := NewManualTimeline(epoch)
	var order []string

	tl.AfterFunc(300*time.Millisecond, func() { order = append(order, "c") })
	tl.AfterFunc(100*time.Millisecond, func() { order = append(order, "a") })
	tl.AfterFunc(100*time.Millisecond, func() { order = append(order, "b") })

	tl.Advance(200 * time.Millisecond)
	assert.Equal(t, []string{"a", "b"}, order)
	assert.Equal(t, epoch.Add(200*time.Millisecond), tl.Now())

	tl.Advance(time.Second)
	assert.Equal(t, []string{"a", "b", "c"}, order)
	assert.Equal(t, 0, tl.Pending())
}

func TestManualTimelineCallbackSeesDeadline(t *testing.T) {
	tl := NewManualTimeline(epoch)
	var seen []time.Time
	tl.Every(time.Second, func() { seen = append(seen, tl.Now()) })

	tl.Advance(3500 * time.Millisecond)
	require.Len(t, seen, 3)
	for i, at := range seen {
		assert.Equal(t, epoch.Add(time.Duration(i+1)*time.Second), at)
	}
}

func TestManualTimelineStop(t *testing.T) {
	tl := NewManualTimeline(epoch)
	fired := 0
	timer := tl.AfterFunc(time.Second, func() { fired++ })

	assert.True(t, timer.Stop())
	assert.False(t, timer.Stop())
	tl.Advance(2 * time.Second)
	assert.Equal(t, 0, fired)

	// Periodic timer stopping itself from its own callback
	var every Timer
	every = tl.Every(time.Second, func() {
		fired++
		if fired == 2 {
			every.Stop()
		}
	})
	tl.Advance(10 * time.Second)
	assert.Equal(t, 2, fired)
	assert.Equal(t, 0, tl.Pending())
}

func TestManualTimelineJumpDropsMissedPeriods(t *testing.T) {
	tl := NewManualTimeline(epoch)
	fired := 0
	tl.Every(time.Second, func() { fired++ })

	tl.Jump(10 * time.Second)
	assert.Equal(t, 0, fired, "jump must not run callbacks")

	tl.Flush()
	assert.Equal(t, 1, fired, "overdue periodic callback runs once")

	tl.Advance(time.Second)
	assert.Equal(t, 2, fired)
}

func TestManualTimelinePost(t *testing.T) {
	tl := NewManualTimeline(epoch)
	ran := false
	tl.Post(func() { ran = true })
	assert.False(t, ran)
	assert.Equal(t, 1, tl.Pending())

	tl.Flush()
	assert.True(t, ran)
	assert.Equal(t, epoch, tl.Now())
}

func TestTimeProvider(t *testing.T) {
	provider := NewTimeProvider()

	t1 := provider.Now()
	time.Sleep(10 * time.Millisecond)
	t2 := provider.Now()

	if diff := t2.Sub(t1); diff < 10*time.Millisecond {
		t.Errorf("Expected at least 10ms difference, got %v", diff)
	}
}
