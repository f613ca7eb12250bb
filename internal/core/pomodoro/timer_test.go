package pomodoro

import (
	"errors"
	"sync"
	"testing"
	"time"

	"focusdeck/internal/core/model"
	"focusdeck/internal/notify"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)}
}

func (clock *fakeClock) Now() time.Time {
	clock.mu.Lock()
	defer clock.mu.Unlock()
	return clock.now
}

func (clock *fakeClock) Advance(delta time.Duration) time.Time {
	clock.mu.Lock()
	defer clock.mu.Unlock()
	clock.now = clock.now.Add(delta)
	return clock.now
}

type fakeNotifier struct {
	mu         sync.Mutex
	permission notify.Permission
	requests   int
	sent       []string
}

func (notifier *fakeNotifier) Permission() notify.Permission {
	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	return notifier.permission
}

func (notifier *fakeNotifier) RequestPermission() notify.Permission {
	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	notifier.requests++
	return notifier.permission
}

func (notifier *fakeNotifier) Notify(title, body string) {
	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	notifier.sent = append(notifier.sent, title+": "+body)
}

func (notifier *fakeNotifier) setPermission(permission notify.Permission) {
	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	notifier.permission = permission
}

func (notifier *fakeNotifier) requestCount() int {
	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	return notifier.requests
}

func (notifier *fakeNotifier) messages() []string {
	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	return append([]string(nil), notifier.sent...)
}

type countingAlerter struct {
	mu    sync.Mutex
	plays int
}

func (alerter *countingAlerter) Play() {
	alerter.mu.Lock()
	defer alerter.mu.Unlock()
	alerter.plays++
}

func (alerter *countingAlerter) count() int {
	alerter.mu.Lock()
	defer alerter.mu.Unlock()
	return alerter.plays
}

type harness struct {
	timer    *Timer
	clock    *fakeClock
	notifier *fakeNotifier
	alerter  *countingAlerter
	events   <-chan Event
}

func newHarness(t *testing.T, config model.TimerConfig) *harness {
	t.Helper()
	clock := newFakeClock()
	notifier := &fakeNotifier{permission: notify.PermissionGranted}
	alerter := &countingAlerter{}
	timer, err := New(config, Options{
		ID:       "test",
		Now:      clock.Now,
		Notifier: notifier,
		Alerter:  alerter,
	})
	require.NoError(t, err)
	return &harness{
		timer:    timer,
		clock:    clock,
		notifier: notifier,
		alerter:  alerter,
		events:   timer.Subscribe(4096),
	}
}

// tick advances the clock by one second and delivers a tick.
func (h *harness) tick(count int) {
	for i := 0; i < count; i++ {
		h.timer.Tick(h.clock.Advance(time.Second))
	}
}

func (h *harness) drain() []Event {
	var drained []Event
	for {
		select {
		case event := <-h.events:
			drained = append(drained, event)
		default:
			return drained
		}
	}
}

func (h *harness) completions() []Event {
	var completed []Event
	for _, event := range h.drain() {
		if event.Type == EventComplete {
			completed = append(completed, event)
		}
	}
	return completed
}

type state struct {
	mode      model.Mode
	remaining int
	running   bool
	completed int
}

func stateOf(snapshot Snapshot) state {
	return state{snapshot.Mode, snapshot.Remaining, snapshot.Running, snapshot.CompletedWork}
}

func TestNewTimerInitialState(t *testing.T) {
	h := newHarness(t, model.DefaultTimerConfig())

	assert.Equal(t, state{model.ModeWork, 1500, false, 0}, stateOf(h.timer.Snapshot()))
	assert.Equal(t, "25:00", h.timer.Snapshot().Clock())
	assert.Equal(t, "Deep Work", h.timer.Snapshot().Label)
	assert.Equal(t, "test", h.timer.ID())
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	config := model.DefaultTimerConfig()
	config.Work = 0

	_, err := New(config, Options{})

	assert.ErrorIs(t, err, model.ErrInvalidConfig)
}

func TestNewAssignsUniqueIDs(t *testing.T) {
	first, err := New(model.DefaultTimerConfig(), Options{})
	require.NoError(t, err)
	second, err := New(model.DefaultTimerConfig(), Options{})
	require.NoError(t, err)

	assert.NotEmpty(t, first.ID())
	assert.NotEqual(t, first.ID(), second.ID())
}

func TestSwitchModeResetsAndPauses(t *testing.T) {
	config := model.DefaultTimerConfig()
	for _, mode := range model.Modes() {
		t.Run(string(mode), func(t *testing.T) {
			h := newHarness(t, config)
			h.timer.ToggleRunning()
			h.tick(7)

			h.timer.SwitchMode(mode)

			snapshot := h.timer.Snapshot()
			assert.Equal(t, mode, snapshot.Mode)
			assert.Equal(t, config.Seconds(mode), snapshot.Remaining)
			assert.False(t, snapshot.Running)
		})
	}
}

func TestSwitchModeToCurrentModeIsHardReset(t *testing.T) {
	h := newHarness(t, model.DefaultTimerConfig())
	h.timer.ToggleRunning()
	h.tick(30)

	h.timer.SwitchMode(model.ModeWork)

	assert.Equal(t, state{model.ModeWork, 1500, false, 0}, stateOf(h.timer.Snapshot()))
}

func TestSwitchModeIgnoresUnknownMode(t *testing.T) {
	h := newHarness(t, model.DefaultTimerConfig())

	h.timer.SwitchMode(model.Mode("nap"))

	assert.Equal(t, model.ModeWork, h.timer.Snapshot().Mode)
}

func TestFullWorkSessionCompletesOnce(t *testing.T) {
	h := newHarness(t, model.DefaultTimerConfig())
	h.timer.ToggleRunning()
	assert.Equal(t, state{model.ModeWork, 1500, true, 0}, stateOf(h.timer.Snapshot()))

	h.tick(1499)
	assert.Empty(t, h.completions())
	assert.Equal(t, 1, h.timer.Snapshot().Remaining)

	h.tick(1)
	completed := h.completions()
	require.Len(t, completed, 1)
	assert.Equal(t, model.ModeWork, completed[0].Finished)
	assert.Equal(t, state{model.ModeShortBreak, 300, false, 1}, stateOf(h.timer.Snapshot()))

	// Further ticks while stopped do nothing.
	h.tick(10)
	assert.Empty(t, h.completions())
	assert.Equal(t, state{model.ModeShortBreak, 300, false, 1}, stateOf(h.timer.Snapshot()))

	assert.Equal(t, 1, h.alerter.count())
	assert.Equal(t, []string{"Pomodoro Timer: Time for a break!"}, h.notifier.messages())
}

func TestWorkBreakScenario(t *testing.T) {
	h := newHarness(t, model.DefaultTimerConfig())
	assert.Equal(t, state{model.ModeWork, 1500, false, 0}, stateOf(h.timer.Snapshot()))

	h.timer.ToggleRunning()
	assert.Equal(t, state{model.ModeWork, 1500, true, 0}, stateOf(h.timer.Snapshot()))

	h.tick(1500)
	assert.Equal(t, state{model.ModeShortBreak, 300, false, 1}, stateOf(h.timer.Snapshot()))

	h.timer.ToggleRunning()
	h.tick(300)
	assert.Equal(t, state{model.ModeWork, 1500, false, 1}, stateOf(h.timer.Snapshot()))

	assert.Equal(t, []string{
		"Pomodoro Timer: Time for a break!",
		"Pomodoro Timer: Time to get back to work!",
	}, h.notifier.messages())
}

func TestLongBreakEveryFourthWorkSession(t *testing.T) {
	h := newHarness(t, model.DefaultTimerConfig())

	var breaks []model.Mode
	completions := 0
	for cycle := 1; cycle <= 8; cycle++ {
		h.timer.ToggleRunning()
		h.tick(h.timer.Snapshot().Remaining)
		completions += len(h.completions())
		snapshot := h.timer.Snapshot()
		require.Equal(t, cycle, snapshot.CompletedWork)
		breaks = append(breaks, snapshot.Mode)

		h.timer.ToggleRunning()
		h.tick(snapshot.Remaining)
		completions += len(h.completions())
		require.Equal(t, model.ModeWork, h.timer.Snapshot().Mode)
	}

	assert.Equal(t, []model.Mode{
		model.ModeShortBreak, model.ModeShortBreak, model.ModeShortBreak, model.ModeLongBreak,
		model.ModeShortBreak, model.ModeShortBreak, model.ModeShortBreak, model.ModeLongBreak,
	}, breaks)
	assert.Equal(t, 16, completions)
}

func TestBreakAlwaysReturnsToWorkWithoutCounting(t *testing.T) {
	h := newHarness(t, model.DefaultTimerConfig())
	h.timer.SwitchMode(model.ModeLongBreak)
	h.timer.ToggleRunning()

	h.tick(900)

	assert.Equal(t, state{model.ModeWork, 1500, false, 0}, stateOf(h.timer.Snapshot()))
}

func TestResetIsIdempotent(t *testing.T) {
	h := newHarness(t, model.DefaultTimerConfig())
	h.timer.ToggleRunning()
	h.tick(42)

	h.timer.Reset()
	once := h.timer.Snapshot()
	h.timer.Reset()
	twice := h.timer.Snapshot()

	assert.Equal(t, once, twice)
	assert.Equal(t, state{model.ModeWork, 1500, false, 0}, stateOf(twice))
}

func TestResetKeepsModeAndCount(t *testing.T) {
	h := newHarness(t, model.DefaultTimerConfig())
	h.timer.ToggleRunning()
	h.tick(1500)
	h.timer.ToggleRunning()
	h.tick(100)

	h.timer.Reset()

	assert.Equal(t, state{model.ModeShortBreak, 300, false, 1}, stateOf(h.timer.Snapshot()))
}

func TestPauseStopsDecrements(t *testing.T) {
	h := newHarness(t, model.DefaultTimerConfig())
	h.timer.ToggleRunning()
	h.tick(10)

	h.timer.ToggleRunning()
	h.tick(5)
	assert.Equal(t, 1490, h.timer.Snapshot().Remaining)

	h.timer.ToggleRunning()
	h.tick(1)
	assert.Equal(t, 1489, h.timer.Snapshot().Remaining)

	h.timer.Pause()
	h.timer.Pause()
	h.tick(3)
	assert.Equal(t, state{model.ModeWork, 1489, false, 0}, stateOf(h.timer.Snapshot()))
}

func TestSwitchWhileRunningDropsStaleTicks(t *testing.T) {
	h := newHarness(t, model.DefaultTimerConfig())
	h.timer.ToggleRunning()
	h.clock.Advance(500 * time.Millisecond)
	staleTick := h.clock.Now()
	h.tick(20)

	h.timer.SwitchMode(model.ModeShortBreak)
	h.timer.ToggleRunning()

	// A tick timestamped before the switch must not count for the new mode.
	h.timer.Tick(staleTick)
	assert.Equal(t, 300, h.timer.Snapshot().Remaining)

	h.tick(1)
	snapshot := h.timer.Snapshot()
	assert.Equal(t, model.ModeShortBreak, snapshot.Mode)
	assert.Equal(t, 299, snapshot.Remaining)
}

func TestDelayedTicksCatchUp(t *testing.T) {
	h := newHarness(t, model.DefaultTimerConfig())
	h.timer.ToggleRunning()

	h.timer.Tick(h.clock.Advance(10*time.Second + 400*time.Millisecond))
	assert.Equal(t, 1490, h.timer.Snapshot().Remaining)

	// A duplicate of the same tick applies nothing.
	h.timer.Tick(h.clock.Now())
	assert.Equal(t, 1490, h.timer.Snapshot().Remaining)

	h.timer.Tick(h.clock.Advance(600 * time.Millisecond))
	assert.Equal(t, 1489, h.timer.Snapshot().Remaining)
}

func TestDelayedTickPastZeroCompletesOnce(t *testing.T) {
	config := model.DefaultTimerConfig()
	config.ShortBreak = 5 * time.Second
	h := newHarness(t, config)
	h.timer.SwitchMode(model.ModeShortBreak)
	h.timer.ToggleRunning()

	h.timer.Tick(h.clock.Advance(time.Minute))

	assert.Len(t, h.completions(), 1)
	assert.Equal(t, state{model.ModeWork, 1500, false, 0}, stateOf(h.timer.Snapshot()))
}

func TestStartingAtZeroCompletesOnNextTick(t *testing.T) {
	h := newHarness(t, model.DefaultTimerConfig())
	h.timer.mu.Lock()
	h.timer.session.Remaining = 0
	h.timer.mu.Unlock()

	h.timer.ToggleRunning()
	h.timer.Tick(h.clock.Now())

	assert.Len(t, h.completions(), 1)
	assert.Equal(t, state{model.ModeShortBreak, 300, false, 1}, stateOf(h.timer.Snapshot()))
}

func TestToggleRequestsPermissionOnlyWhenDefault(t *testing.T) {
	h := newHarness(t, model.DefaultTimerConfig())
	h.notifier.setPermission(notify.PermissionDefault)

	h.timer.ToggleRunning()
	assert.True(t, h.timer.Snapshot().Running)
	assert.Eventually(t, func() bool { return h.notifier.requestCount() == 1 }, time.Second, 5*time.Millisecond)

	// Pausing never asks.
	h.timer.ToggleRunning()
	h.notifier.setPermission(notify.PermissionDenied)
	h.timer.ToggleRunning()
	assert.Never(t, func() bool { return h.notifier.requestCount() > 1 }, 50*time.Millisecond, 5*time.Millisecond)
}

func TestNotificationRechecksPermissionAtCompletion(t *testing.T) {
	config := model.DefaultTimerConfig()
	config.Work = 3 * time.Second
	h := newHarness(t, config)
	h.notifier.setPermission(notify.PermissionDenied)

	h.timer.ToggleRunning()
	h.tick(3)
	assert.Empty(t, h.notifier.messages())
	assert.Equal(t, 1, h.alerter.count())

	h.notifier.setPermission(notify.PermissionGranted)
	h.timer.SwitchMode(model.ModeWork)
	h.timer.ToggleRunning()
	h.tick(3)
	assert.Equal(t, []string{"Pomodoro Timer: Time for a break!"}, h.notifier.messages())
}

func TestTimerWithoutCollaborators(t *testing.T) {
	config := model.DefaultTimerConfig()
	config.Work = 2 * time.Second
	clock := newFakeClock()
	timer, err := New(config, Options{Now: clock.Now})
	require.NoError(t, err)

	timer.ToggleRunning()
	timer.Tick(clock.Advance(2 * time.Second))

	assert.Equal(t, model.ModeShortBreak, timer.Snapshot().Mode)
}

func TestUpdateConfig(t *testing.T) {
	h := newHarness(t, model.DefaultTimerConfig())

	updated := model.DefaultTimerConfig()
	updated.Work = 50 * time.Minute
	require.NoError(t, h.timer.UpdateConfig(updated))
	assert.Equal(t, 3000, h.timer.Snapshot().Remaining)
	assert.Equal(t, 3000, h.timer.Snapshot().Duration)

	h.timer.ToggleRunning()
	h.tick(100)
	updated.Work = 10 * time.Minute
	require.NoError(t, h.timer.UpdateConfig(updated))
	snapshot := h.timer.Snapshot()
	assert.Equal(t, 600, snapshot.Remaining)
	assert.True(t, snapshot.Running)

	updated.Work = 0
	assert.ErrorIs(t, h.timer.UpdateConfig(updated), model.ErrInvalidConfig)
	assert.Equal(t, 600, h.timer.Snapshot().Duration)
}

func TestCustomLongBreakCadence(t *testing.T) {
	config := model.DefaultTimerConfig()
	config.Work = time.Second
	config.ShortBreak = time.Second
	config.LongBreakEvery = 2
	h := newHarness(t, config)

	h.timer.ToggleRunning()
	h.tick(1)
	assert.Equal(t, model.ModeShortBreak, h.timer.Snapshot().Mode)
	h.timer.ToggleRunning()
	h.tick(1)
	h.timer.ToggleRunning()
	h.tick(1)
	assert.Equal(t, model.ModeLongBreak, h.timer.Snapshot().Mode)
}

type fakeIdle struct {
	mu       sync.Mutex
	duration time.Duration
	err      error
	calls    int
}

func (idle *fakeIdle) IdleDuration() (time.Duration, error) {
	idle.mu.Lock()
	defer idle.mu.Unlock()
	idle.calls++
	return idle.duration, idle.err
}

func TestIdlePausesRunningWork(t *testing.T) {
	config := model.DefaultTimerConfig()
	config.IdlePauseEnabled = true
	config.IdlePauseAfter = time.Minute
	h := newHarness(t, config)
	idle := &fakeIdle{}
	h.timer.SetIdleChecker(idle)

	h.timer.ToggleRunning()
	h.tick(10)
	assert.Equal(t, 1490, h.timer.Snapshot().Remaining)
	assert.Equal(t, 2, idle.calls)

	idle.mu.Lock()
	idle.duration = 2 * time.Minute
	idle.mu.Unlock()
	h.tick(5)

	// The check at the next interval pauses before decrementing.
	snapshot := h.timer.Snapshot()
	assert.False(t, snapshot.Running)
	assert.Equal(t, 1490, snapshot.Remaining)

	var paused bool
	for _, event := range h.drain() {
		if event.Type == EventIdlePause {
			paused = true
		}
	}
	assert.True(t, paused)
}

func TestIdleUnsupportedDisablesCheck(t *testing.T) {
	config := model.DefaultTimerConfig()
	config.IdlePauseEnabled = true
	h := newHarness(t, config)
	idle := &fakeIdle{err: ErrIdleUnsupported}
	h.timer.SetIdleChecker(idle)

	h.timer.ToggleRunning()
	h.tick(20)

	assert.Equal(t, 1, idle.calls)
	assert.Equal(t, 1480, h.timer.Snapshot().Remaining)
}

func TestIdleErrorsKeepCounting(t *testing.T) {
	config := model.DefaultTimerConfig()
	config.IdlePauseEnabled = true
	config.IdleCheckInterval = time.Second
	h := newHarness(t, config)
	idle := &fakeIdle{err: errors.New("xprintidle: exit status 1")}
	h.timer.SetIdleChecker(idle)

	h.timer.ToggleRunning()
	h.tick(3)

	assert.Equal(t, 3, idle.calls)
	assert.True(t, h.timer.Snapshot().Running)
	assert.Equal(t, 1497, h.timer.Snapshot().Remaining)
}

func TestSubscribeReceivesEventsAndStopCloses(t *testing.T) {
	timer, err := New(model.DefaultTimerConfig(), Options{})
	require.NoError(t, err)
	events := timer.Subscribe(8)

	timer.ToggleRunning()
	timer.Reset()
	timer.SwitchMode(model.ModeLongBreak)

	assert.Equal(t, EventRunningChange, (<-events).Type)
	assert.Equal(t, EventReset, (<-events).Type)
	modeChange := <-events
	assert.Equal(t, EventModeChange, modeChange.Type)
	assert.Equal(t, model.ModeLongBreak, modeChange.Snapshot.Mode)

	timer.Stop()
	_, open := <-events
	assert.False(t, open)

	late := timer.Subscribe(1)
	_, open = <-late
	assert.False(t, open)
}

func TestStartRunsLoop(t *testing.T) {
	config := model.DefaultTimerConfig()
	config.Work = 2 * time.Second
	timer, err := New(config, Options{TickInterval: 10 * time.Millisecond})
	require.NoError(t, err)
	alerter := &countingAlerter{}
	timer.options.Alerter = alerter

	timer.Start()
	timer.Start()
	defer timer.Stop()
	timer.ToggleRunning()

	// Each 10ms interval counts as one step of the two-step work session.
	assert.Eventually(t, func() bool {
		return timer.Snapshot().Mode == model.ModeShortBreak
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, alerter.count())
}

func TestStartingCountdownRearmsTicker(t *testing.T) {
	timer, err := New(model.DefaultTimerConfig(), Options{})
	require.NoError(t, err)

	timer.ToggleRunning()
	require.Len(t, timer.rearmCh, 1)

	timer.ToggleRunning()
	timer.ToggleRunning()
	assert.Len(t, timer.rearmCh, 1, "pending rearm requests coalesce")

	<-timer.rearmCh
	timer.Pause()
	timer.Reset()
	assert.Empty(t, timer.rearmCh)
}
