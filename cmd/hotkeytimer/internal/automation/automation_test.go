package automation

import (
	"bytes"
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pkg.jsn.cam/hotkeytimer/cmd/hotkeytimer/internal/windows"
	"pkg.jsn.cam/hotkeytimer/cmd/hotkeytimer/internal/windows/windowstest"
)

type move struct {
	x, y int
	d    time.Duration
}

type fakeInput struct {
	mu sync.Mutex

	moves     []move
	clicks    int
	taps      []string
	activated []int

	moveErr     error
	activateErr error
	failTapOn   int // 1-based KeyTap call that fails; 0 never fails
	panicOnTap  int
}

func (f *fakeInput) MoveTo(_ context.Context, x, y int, d time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.moveErr != nil {
		return f.moveErr
	}
	f.moves = append(f.moves, move{x, y, d})
	return nil
}

func (f *fakeInput) Click() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clicks++
	return nil
}

func (f *fakeInput) KeyTap(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.taps = append(f.taps, key)
	n := len(f.taps)
	if n == f.panicOnTap {
		panic("input backend exploded while sending a keystroke to the focused window")
	}
	if n == f.failTapOn {
		return errors.New("key send failed")
	}
	return nil
}

func (f *fakeInput) Activate(handle int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.activateErr != nil {
		return f.activateErr
	}
	f.activated = append(f.activated, handle)
	return nil
}

type sleepRecorder struct {
	mu    sync.Mutex
	calls []time.Duration
}

func (s *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, d)
	return ctx.Err()
}

func newSequencer(src windows.Source, in Input, out *bytes.Buffer, sl *sleepRecorder) *Sequencer {
	return New(src, in, Options{
		Rand:  rand.New(rand.NewPCG(7, 11)),
		Out:   out,
		Sleep: sl.sleep,
		Match: "MapleRoyals",
	})
}

func threeWindows() *windowstest.Source {
	return windowstest.NewSource(
		windowstest.New(1, "MapleRoyals - Character1", 0, 0),
		windowstest.New(2, "MapleRoyals - Character2", 100, 100),
		windowstest.New(3, "MapleRoyals - Character3", 200, 200),
	)
}

func TestRun_OneFailureDoesNotStopTheRest(t *testing.T) {
	in := &fakeInput{failTapOn: 2}
	var out bytes.Buffer
	seq := newSequencer(threeWindows(), in, &out, &sleepRecorder{})

	sum := seq.Run(context.Background(), windows.All(), "pageup")

	require.NoError(t, sum.Err)
	assert.Equal(t, 3, sum.Processed())
	assert.Equal(t, 2, sum.Succeeded())
	assert.Equal(t, 1, sum.Skipped())
	assert.Equal(t, []string{"pageup", "pageup", "pageup"}, in.taps)
	assert.Equal(t, Skipped, sum.Results[1].Outcome)
	assert.Equal(t, "key send failed", sum.Results[1].Reason)
	assert.Contains(t, out.String(), "Found 3 MapleRoyals window(s)")
	assert.Contains(t, out.String(), "Auto-click completed: 3 processed (2 succeeded, 1 skipped)")
}

func TestRun_VisitsEveryTargetOnce(t *testing.T) {
	in := &fakeInput{}
	seq := newSequencer(threeWindows(), in, &bytes.Buffer{}, &sleepRecorder{})

	sum := seq.Run(context.Background(), windows.All(), "pageup")

	var titles []string
	for _, r := range sum.Results {
		assert.Equal(t, Clicked, r.Outcome)
		titles = append(titles, r.Target.Title)
	}
	assert.ElementsMatch(t, []string{
		"MapleRoyals - Character1",
		"MapleRoyals - Character2",
		"MapleRoyals - Character3",
	}, titles)
	assert.Equal(t, 3, in.clicks)
}

func TestRun_ClickStaysNearCenter(t *testing.T) {
	in := &fakeInput{}
	src := windowstest.NewSource(windowstest.New(1, "MapleRoyals - Solo", 100, 200))
	seq := newSequencer(src, in, &bytes.Buffer{}, &sleepRecorder{})

	for i := 0; i < 50; i++ {
		seq.Run(context.Background(), windows.All(), "pageup")
	}

	require.Len(t, in.moves, 50)
	for _, m := range in.moves {
		// center (500, 500), spread 0.3 of 800x600
		assert.InDelta(t, 500, m.x, 240)
		assert.InDelta(t, 500, m.y, 180)
		assert.GreaterOrEqual(t, m.d, 300*time.Millisecond)
		assert.LessOrEqual(t, m.d, 800*time.Millisecond)
	}
}

func TestRun_PausesOnlyBetweenTargets(t *testing.T) {
	hidden := func(id int, title string) *windowstest.Window {
		w := windowstest.New(id, title, 0, 0)
		w.Hidden = true
		return w
	}
	src := windowstest.NewSource(hidden(1, "A"), hidden(2, "B"), hidden(3, "C"), hidden(4, "D"))
	in := &fakeInput{}
	sl := &sleepRecorder{}
	seq := newSequencer(src, in, &bytes.Buffer{}, sl)

	sum := seq.Run(context.Background(), windows.All(), "pageup")

	// minimized windows skip the pointer entirely, so only plan pauses remain
	assert.Len(t, sl.calls, 3)
	assert.Empty(t, in.moves)
	assert.ElementsMatch(t, []int{1, 2, 3, 4}, in.activated)
	for _, r := range sum.Results {
		assert.Equal(t, Activated, r.Outcome)
	}
	var total time.Duration
	for _, d := range sl.calls {
		assert.GreaterOrEqual(t, d, 300*time.Millisecond)
		total += d
	}
	assert.LessOrEqual(t, total, 5*time.Second)
}

func TestRun_FallsBackToActivation(t *testing.T) {
	in := &fakeInput{moveErr: errors.New("pointer locked")}
	src := windowstest.NewSource(windowstest.New(9, "MapleRoyals - Solo", 0, 0))
	seq := newSequencer(src, in, &bytes.Buffer{}, &sleepRecorder{})

	sum := seq.Run(context.Background(), windows.All(), "pageup")

	require.Len(t, sum.Results, 1)
	assert.Equal(t, Activated, sum.Results[0].Outcome)
	assert.Equal(t, []int{9}, in.activated)
	assert.Equal(t, []string{"pageup"}, in.taps)
}

func TestRun_SendsKeyEvenWhenFocusFails(t *testing.T) {
	in := &fakeInput{
		moveErr:     errors.New("pointer locked"),
		activateErr: errors.New("access denied"),
	}
	src := windowstest.NewSource(windowstest.New(9, "MapleRoyals - Solo", 0, 0))
	seq := newSequencer(src, in, &bytes.Buffer{}, &sleepRecorder{})

	sum := seq.Run(context.Background(), windows.All(), "pageup")

	require.Len(t, sum.Results, 1)
	assert.Equal(t, Attempted, sum.Results[0].Outcome)
	assert.Equal(t, 1, sum.Succeeded())
	assert.Equal(t, []string{"pageup"}, in.taps)
}

func TestRun_PanicSkipsTargetWithShortReason(t *testing.T) {
	in := &fakeInput{panicOnTap: 1}
	var out bytes.Buffer
	src := windowstest.NewSource(
		windowstest.New(1, "A", 0, 0),
		windowstest.New(2, "B", 0, 0),
	)
	seq := newSequencer(src, in, &out, &sleepRecorder{})

	sum := seq.Run(context.Background(), windows.All(), "pageup")

	require.Len(t, sum.Results, 2)
	assert.Equal(t, Skipped, sum.Results[0].Outcome)
	assert.LessOrEqual(t, len([]rune(sum.Results[0].Reason)), reasonLimit+3)
	assert.True(t, strings.HasSuffix(sum.Results[0].Reason, "..."))
	assert.Equal(t, Clicked, sum.Results[1].Outcome)
	assert.Equal(t, 1, sum.Skipped())
}

func TestRun_NoWindows(t *testing.T) {
	in := &fakeInput{}
	var out bytes.Buffer
	seq := newSequencer(windowstest.NewSource(), in, &out, &sleepRecorder{})

	sum := seq.Run(context.Background(), windows.All(), "pageup")

	assert.NoError(t, sum.Err)
	assert.Zero(t, sum.Processed())
	assert.Empty(t, in.taps)
	assert.Contains(t, out.String(), "No MapleRoyals windows found.")
}

func TestRun_ReportsMissingSelectedWindows(t *testing.T) {
	in := &fakeInput{}
	var out bytes.Buffer
	seq := newSequencer(threeWindows(), in, &out, &sleepRecorder{})

	sum := seq.Run(context.Background(),
		windows.Subset("MapleRoyals - Character1", "MapleRoyals - Gone"), "pageup")

	assert.Equal(t, []string{"MapleRoyals - Gone"}, sum.NotFound)
	require.Len(t, sum.Results, 1)
	assert.Equal(t, "MapleRoyals - Character1", sum.Results[0].Target.Title)
	assert.Contains(t, out.String(), "Not running: MapleRoyals - Gone")
}

func TestRun_EnumerationFailureIsReported(t *testing.T) {
	src := threeWindows()
	src.Fail(windows.ErrUnavailable)
	in := &fakeInput{}
	var out bytes.Buffer
	seq := newSequencer(src, in, &out, &sleepRecorder{})

	sum := seq.Run(context.Background(), windows.All(), "pageup")

	assert.ErrorIs(t, sum.Err, windows.ErrUnavailable)
	assert.Empty(t, in.taps)
	assert.Contains(t, out.String(), "Auto-click failed")
}

func TestRun_StopsOnShutdown(t *testing.T) {
	in := &fakeInput{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	seq := newSequencer(threeWindows(), in, &bytes.Buffer{}, &sleepRecorder{})

	sum := seq.Run(ctx, windows.All(), "pageup")

	assert.Zero(t, sum.Processed())
	assert.Empty(t, in.taps)
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "clicked", Clicked.String())
	assert.Equal(t, "activated", Activated.String())
	assert.Equal(t, "attempted", Attempted.String())
	assert.Equal(t, "skipped", Skipped.String())
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "メイプ...", truncate("メイプルロワイヤル", 3))
}

func TestSleepHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, Sleep(ctx, time.Hour), context.Canceled)
	assert.NoError(t, Sleep(context.Background(), time.Millisecond))
}
