package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestReminderFiresAndRearms(t *testing.T) {
	tl := NewManualTimeline(epoch)
	var fired []time.Time
	r := NewReminderScheduler(tl, FixedInterval(200*time.Second), ReminderWindow{}, nil, func() {
		fired = append(fired, tl.Now())
	})

	r.Arm()
	next, armed := r.NextFire()
	require.True(t, armed)
	assert.Equal(t, epoch.Add(200*time.Second), next)

	tl.Advance(199 * time.Second)
	assert.Empty(t, fired)

	tl.Advance(time.Second)
	require.Len(t, fired, 1)
	next, armed = r.NextFire()
	assert.True(t, armed)
	assert.Equal(t, fired[0].Add(200*time.Second), next)

	tl.Advance(200 * time.Second)
	assert.Len(t, fired, 2)
}

func TestReminderPassesWindowToSource(t *testing.T) {
	tl := NewManualTimeline(epoch)
	type bounds struct{ min, max time.Duration }
	var asked []bounds
	source := IntervalFunc(func(min, max time.Duration) time.Duration {
		asked = append(asked, bounds{min, max})
		return 10 * time.Minute // beyond the window, clamped to max
	})
	window := ReminderWindow{Min: 2 * time.Minute, Max: 4 * time.Minute}
	r := NewReminderScheduler(tl, source, window, nil, func() {})

	r.Arm()
	require.Len(t, asked, 1)
	assert.Equal(t, bounds{2 * time.Minute, 4 * time.Minute}, asked[0])

	next, _ := r.NextFire()
	assert.Equal(t, epoch.Add(4*time.Minute), next)

	tl.Advance(4 * time.Minute)
	assert.Len(t, asked, 2, "re-arming after a fire asks the source again")
}

func TestReminderNoCatchUp(t *testing.T) {
	tl := NewManualTimeline(epoch)
	fired := 0
	r := NewReminderScheduler(tl, FixedInterval(180*time.Second), ReminderWindow{}, nil, func() { fired++ })

	r.Arm()
	// Asleep for three full windows
	tl.Jump(3 * 180 * time.Second)
	tl.Flush()
	assert.Equal(t, 1, fired)

	next, _ := r.NextFire()
	assert.Equal(t, tl.Now().Add(180*time.Second), next)
}

func TestReminderInactiveSessionIsNoop(t *testing.T) {
	tl := NewManualTimeline(epoch)
	active := false
	fired := 0
	r := NewReminderScheduler(tl, FixedInterval(0), ReminderWindow{}, func() bool { return active }, func() { fired++ })

	r.Arm()
	tl.Advance(10 * time.Minute)
	assert.Equal(t, 0, fired)

	active = true
	tl.Advance(time.Second)
	assert.Equal(t, 1, fired)
}

func TestReminderDisarm(t *testing.T) {
	tl := NewManualTimeline(epoch)
	fired := 0
	r := NewReminderScheduler(tl, nil, ReminderWindow{}, nil, func() { fired++ })

	r.Arm()
	assert.Equal(t, 1, tl.Pending())
	r.Arm()
	assert.Equal(t, 1, tl.Pending(), "re-arming keeps a single poll")

	r.Disarm()
	_, armed := r.NextFire()
	assert.False(t, armed)
	assert.Equal(t, 0, tl.Pending())

	tl.Advance(time.Hour)
	assert.Equal(t, 0, fired)
}

func TestReminderWindowNormalize(t *testing.T) {
	w := ReminderWindow{}.normalize()
	assert.Equal(t, DefaultReminderWindow(), w)

	w = ReminderWindow{Min: 60 * time.Second, Max: 30 * time.Second}.normalize()
	assert.Equal(t, 60*time.Second, w.Min)
	assert.Equal(t, 60*time.Second, w.Max)
}

func TestProperty_ArmedIntervalWithinWindow(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		raw := time.Duration(rapid.Int64Range(-int64(time.Hour), int64(time.Hour)).Draw(t, "raw"))

		tl := NewManualTimeline(epoch)
		r := NewReminderScheduler(tl, FixedInterval(raw), DefaultReminderWindow(), nil, nil)
		r.Arm()

		next, armed := r.NextFire()
		require.True(t, armed)
		d := next.Sub(tl.Now())
		assert.GreaterOrEqual(t, d, 180*time.Second)
		assert.LessOrEqual(t, d, 300*time.Second)
	})
}

func TestProperty_UniformIntervalBounds(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		seed := rapid.Uint64().Draw(t, "seed")
		lo := time.Duration(rapid.Int64Range(1, int64(time.Hour)).Draw(t, "min"))
		hi := lo + time.Duration(rapid.Int64Range(0, int64(time.Hour)).Draw(t, "span"))

		src := NewSeededInterval(seed)
		for i := 0; i < 20; i++ {
			d := src.Next(lo, hi)
			assert.GreaterOrEqual(t, d, lo)
			assert.LessOrEqual(t, d, hi)
		}
	})
}
