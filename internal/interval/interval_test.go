package interval

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/mirrorbot/mirrorbot/internal/testutil"
)

func blockUntilWaiting(t *testing.T, fc *clockwork.FakeClock) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := fc.BlockUntilContext(ctx, 1); err != nil {
		t.Fatalf("timer never started waiting: %v", err)
	}
}

func receive(t *testing.T, ch <-chan time.Duration) time.Duration {
	t.Helper()
	select {
	case d := <-ch:
		return d
	case <-time.After(2 * time.Second):
		t.Fatal("action was not called")
		return 0
	}
}

func TestTimer_FiresEveryPeriod(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	fc := clockwork.NewFakeClockAt(start)
	fired := make(chan time.Duration, 10)

	tm := New(10*time.Second, func() { fired <- fc.Since(start) }, WithClock(fc))
	defer tm.Stop()

	for i := 1; i <= 3; i++ {
		blockUntilWaiting(t, fc)
		fc.Advance(10 * time.Second)
		if got, want := receive(t, fired), time.Duration(i)*10*time.Second; got != want {
			t.Errorf("call %d at %v, want %v", i, got, want)
		}
	}
}

func TestTimer_OverrunDoesNotShiftSchedule(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	fc := clockwork.NewFakeClockAt(start)
	fired := make(chan time.Duration, 10)
	var calls atomic.Int32

	tm := New(10*time.Second, func() {
		fired <- fc.Since(start)
		if calls.Add(1) == 1 {
			// The first call takes one and a half periods.
			fc.Advance(15 * time.Second)
		}
	}, WithClock(fc))
	defer tm.Stop()

	blockUntilWaiting(t, fc)
	fc.Advance(10 * time.Second)
	if got := receive(t, fired); got != 10*time.Second {
		t.Errorf("first call at %v, want 10s", got)
	}

	// The 20s deadline has passed, so the next call is immediate.
	if got := receive(t, fired); got != 25*time.Second {
		t.Errorf("second call at %v, want 25s", got)
	}

	// Later calls stay on the original 10s grid instead of 35s, 45s.
	blockUntilWaiting(t, fc)
	fc.Advance(5 * time.Second)
	if got := receive(t, fired); got != 30*time.Second {
		t.Errorf("third call at %v, want 30s", got)
	}

	blockUntilWaiting(t, fc)
	fc.Advance(10 * time.Second)
	if got := receive(t, fired); got != 40*time.Second {
		t.Errorf("fourth call at %v, want 40s", got)
	}
}

func TestTimer_StopPreventsFurtherCalls(t *testing.T) {
	fc := clockwork.NewFakeClock()
	var calls atomic.Int32

	tm := New(time.Second, func() { calls.Add(1) }, WithClock(fc))

	blockUntilWaiting(t, fc)
	tm.Stop()
	fc.Advance(time.Minute)

	select {
	case <-tm.Done():
	default:
		t.Fatal("Done not closed after Stop")
	}
	if got := calls.Load(); got != 0 {
		t.Errorf("calls = %d, want 0", got)
	}
}

func TestTimer_CancelFromAction(t *testing.T) {
	fc := clockwork.NewFakeClock()
	var calls atomic.Int32
	var tm *Timer

	tm = New(time.Second, func() {
		if calls.Add(1) == 2 {
			tm.Cancel()
		}
	}, WithClock(fc))

	for i := 0; i < 2; i++ {
		blockUntilWaiting(t, fc)
		fc.Advance(time.Second)
	}

	select {
	case <-tm.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("timer did not exit after cancelling itself")
	}

	fc.Advance(10 * time.Second)
	if got := calls.Load(); got != 2 {
		t.Errorf("calls = %d, want 2", got)
	}
	tm.Cancel()
}

func TestTimer_PanicKeepsSchedule(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	fc := clockwork.NewFakeClockAt(start)
	fired := make(chan time.Duration, 10)
	var calls atomic.Int32

	tm := New(time.Second, func() {
		if calls.Add(1) == 1 {
			panic("action failed")
		}
		fired <- fc.Since(start)
	}, WithClock(fc), WithLogger(testutil.NewTestLogger(t)))
	defer tm.Stop()

	blockUntilWaiting(t, fc)
	fc.Advance(time.Second)

	blockUntilWaiting(t, fc)
	fc.Advance(time.Second)
	if got := receive(t, fired); got != 2*time.Second {
		t.Errorf("call after panic at %v, want 2s", got)
	}
}

func TestTimer_RealClock(t *testing.T) {
	var calls atomic.Int32
	tm := New(5*time.Millisecond, func() { calls.Add(1) })

	deadline := time.Now().Add(2 * time.Second)
	for calls.Load() < 3 {
		if time.Now().After(deadline) {
			t.Fatalf("calls = %d after 2s, want at least 3", calls.Load())
		}
		time.Sleep(time.Millisecond)
	}
	tm.Stop()

	after := calls.Load()
	time.Sleep(30 * time.Millisecond)
	if got := calls.Load(); got != after {
		t.Errorf("calls went from %d to %d after Stop", after, got)
	}
}

func TestNew_DefaultsPeriod(t *testing.T) {
	tm := New(0, func() {}, WithClock(clockwork.NewFakeClock()))
	defer tm.Stop()
	if got := tm.Period(); got != time.Second {
		t.Errorf("Period() = %v, want 1s", got)
	}
}
