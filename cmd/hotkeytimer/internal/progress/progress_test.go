package progress

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMeasure(t *testing.T) {
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	total := 130 * time.Second

	snap := Measure(start, start.Add(65*time.Second), total)
	assert.Equal(t, 65*time.Second, snap.Elapsed)
	assert.Equal(t, 65*time.Second, snap.Remaining)
	assert.InDelta(t, 0.5, snap.Fraction, 1e-9)

	snap = Measure(start, start.Add(10*time.Minute), total)
	assert.Equal(t, 1.0, snap.Fraction)
	assert.Zero(t, snap.Remaining)
}

func TestMeasure_Monotone(t *testing.T) {
	start := time.Now()
	total := 7 * time.Second
	prev := -1.0
	for ms := 0; ms <= 10_000; ms += 250 {
		snap := Measure(start, start.Add(time.Duration(ms)*time.Millisecond), total)
		assert.GreaterOrEqual(t, snap.Fraction, prev)
		assert.LessOrEqual(t, snap.Fraction, 1.0)
		assert.GreaterOrEqual(t, snap.Remaining, time.Duration(0))
		prev = snap.Fraction
	}
}

func TestMeasure_ZeroTotalIsComplete(t *testing.T) {
	now := time.Now()
	snap := Measure(now, now, 0)
	assert.Equal(t, 1.0, snap.Fraction)
	assert.Zero(t, snap.Remaining)
}

func TestMeasure_ClockBeforeStart(t *testing.T) {
	now := time.Now()
	snap := Measure(now, now.Add(-time.Second), time.Minute)
	assert.Zero(t, snap.Fraction)
	assert.Equal(t, time.Minute, snap.Remaining)
}

func TestFormatRemaining(t *testing.T) {
	for d, want := range map[time.Duration]string{
		0:                            "00:00",
		-3 * time.Second:             "00:00",
		9 * time.Second:              "00:09",
		133 * time.Second:            "02:13",
		61*time.Minute + time.Second: "61:01",
		1500 * time.Millisecond:      "00:01",
	} {
		assert.Equal(t, want, FormatRemaining(d), d.String())
	}
}

func TestLine(t *testing.T) {
	bar := NewBar(termenv.Ascii)
	line := ansi.Strip(Line(bar, Snapshot{Remaining: 65 * time.Second, Fraction: 0.5}))

	require.True(t, strings.HasPrefix(line, "\r["))
	assert.Equal(t, 15, strings.Count(line, "█"))
	assert.Equal(t, 15, strings.Count(line, "░"))
	assert.Contains(t, line, " 50.0% | 01:05 remaining")
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type session struct {
	mu     sync.Mutex
	start  time.Time
	total  time.Duration
	active bool
	panics bool
}

func (s *session) Active() (time.Time, time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.panics {
		panic("session torn down")
	}
	return s.start, s.total, s.active
}

func (s *session) set(active, panics bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active, s.panics = active, panics
}

func TestReporter_RendersUntilStopped(t *testing.T) {
	t.Setenv("CLICOLOR_FORCE", "")
	now := time.Now()
	src := &session{start: now.Add(-30 * time.Second), total: 60 * time.Second, active: true}
	var out syncBuffer

	r := Start(src, Options{
		Out:      &out,
		Now:      func() time.Time { return now },
		Interval: 5 * time.Millisecond,
	})
	require.Eventually(t, func() bool {
		return strings.Count(out.String(), "remaining") >= 2
	}, time.Second, 5*time.Millisecond)

	r.Stop()
	r.Stop()
	require.True(t, r.Wait(time.Second))

	got := out.String()
	assert.Contains(t, got, "00:30 remaining")
	assert.NotContains(t, got, "\x1b[")
	assert.True(t, strings.HasSuffix(got, "\n"))

	n := len(got)
	time.Sleep(20 * time.Millisecond)
	assert.Len(t, out.String(), n)
}

func TestColorProfile(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	t.Setenv("CLICOLOR_FORCE", "")
	assert.Equal(t, termenv.Ascii, ColorProfile(&bytes.Buffer{}))

	t.Setenv("CLICOLOR_FORCE", "1")
	assert.NotEqual(t, termenv.Ascii, ColorProfile(&bytes.Buffer{}))
}

func TestReporter_IdlesWithoutSession(t *testing.T) {
	var out syncBuffer
	r := Start(&session{}, Options{Out: &out, Interval: time.Millisecond})
	time.Sleep(20 * time.Millisecond)
	r.Stop()
	require.True(t, r.Wait(time.Second))
	assert.Empty(t, out.String())
}

func TestReporter_SurvivesPanics(t *testing.T) {
	src := &session{start: time.Now(), total: time.Minute}
	src.set(true, true)
	var out syncBuffer

	r := Start(src, Options{Out: &out, Interval: time.Millisecond})
	time.Sleep(10 * time.Millisecond)
	src.set(true, false)

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "remaining")
	}, time.Second, time.Millisecond)
	r.Stop()
	assert.True(t, r.Wait(time.Second))
}

func TestReporter_WaitTimesOut(t *testing.T) {
	r := Start(&session{}, Options{Interval: time.Hour})
	assert.False(t, r.Wait(10*time.Millisecond))
	r.Stop()
	assert.True(t, r.Wait(time.Second))
}

func TestLabels(t *testing.T) {
	assert.Equal(t, "[RESET]", ansi.Strip(Reset()))
	assert.Equal(t, "[STOP]", ansi.Strip(Stopped()))
	assert.Equal(t, "Time's up!", ansi.Strip(Expired("Time's up!")))
}
