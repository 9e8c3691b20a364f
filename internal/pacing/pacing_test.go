package pacing

import (
	"context"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestController() *Controller {
	return New(rand.NewPCG(1, 2))
}

func TestInterRequestDelayBounds(t *testing.T) {
	c := newTestController()

	for i := 0; i < 500; i++ {
		d := c.InterRequestDelay(ModeConservative)
		assert.GreaterOrEqual(t, d, 5*time.Second)
		assert.LessOrEqual(t, d, 15*time.Second)

		d = c.InterRequestDelay(ModeFast)
		assert.GreaterOrEqual(t, d, 3*time.Second)
		assert.LessOrEqual(t, d, 8*time.Second)
	}
}

func TestPolicyShape(t *testing.T) {
	cons := PolicyFor(ModeConservative)
	fast := PolicyFor(ModeFast)

	assert.Greater(t, cons.Delay.Min, fast.Delay.Min)
	assert.Greater(t, cons.Delay.Max, fast.Delay.Max)
	assert.GreaterOrEqual(t, cons.Delay.Max-cons.Delay.Min, fast.Delay.Max-fast.Delay.Min)
	assert.Less(t, cons.RequestsPerMinute, fast.RequestsPerMinute)

	c := newTestController()
	assert.Equal(t, 3, c.RequestRateCeiling(ModeConservative))
	assert.Equal(t, 5, c.RequestRateCeiling(ModeFast))
	assert.Equal(t, cons, PolicyFor(Mode("bogus")))
}

func TestDeterministicWithSameSource(t *testing.T) {
	a := New(rand.NewPCG(7, 7))
	b := New(rand.NewPCG(7, 7))

	assert.Equal(t, a.FingerprintVariation(), b.FingerprintVariation())
	assert.Equal(t, a.ScrollPacing(), b.ScrollPacing())
	assert.Equal(t, a.InterRequestDelay(ModeFast), b.InterRequestDelay(ModeFast))
}

func TestFingerprintVariation(t *testing.T) {
	c := newTestController()
	candidates := viewports

	for i := 0; i < 100; i++ {
		fp := c.FingerprintVariation()
		assert.Contains(t, candidates, fp.Viewport)
		require.Len(t, fp.Steps, 3)
		for _, s := range fp.Steps {
			assert.GreaterOrEqual(t, s.X, 0)
			assert.Less(t, s.X, fp.Viewport.Width)
			assert.GreaterOrEqual(t, s.Y, 0)
			assert.Less(t, s.Y, fp.Viewport.Height)
			assert.GreaterOrEqual(t, s.Pause, 100*time.Millisecond)
			assert.LessOrEqual(t, s.Pause, 500*time.Millisecond)
		}
	}
}

func TestScrollPacing(t *testing.T) {
	c := newTestController()

	for i := 0; i < 200; i++ {
		s := c.ScrollPacing()
		assert.GreaterOrEqual(t, s.Distance, 100)
		assert.Less(t, s.Distance, 300)
		assert.GreaterOrEqual(t, s.Interval, 100*time.Millisecond)
		assert.Less(t, s.Interval, 300*time.Millisecond)
	}
}

func TestBetweenDegenerateWindow(t *testing.T) {
	c := newTestController()
	assert.Equal(t, time.Second, c.Between(Window{Min: time.Second, Max: time.Second}))
	assert.Equal(t, time.Second, c.Between(Window{Min: time.Second, Max: 0}))
	assert.Zero(t, c.Between(Window{}))
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"", ModeConservative, false},
		{"Conservative", ModeConservative, false},
		{" fast ", ModeFast, false},
		{"turbo", "", true},
	}

	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if tt.wantErr {
			assert.Error(t, err)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestSleepHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := Sleep(ctx, time.Minute)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Second)

	assert.NoError(t, Sleep(context.Background(), time.Millisecond))
	assert.NoError(t, Sleep(context.Background(), 0))
}
