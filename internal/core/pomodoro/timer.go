package pomodoro

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"focusdeck/internal/core/model"
	"focusdeck/internal/notify"

	"github.com/google/uuid"
)

// NotificationTitle is the title of completion notifications.
const NotificationTitle = "Pomodoro Timer"

// ErrIdleUnsupported indicates idle detection is not available on this system.
var ErrIdleUnsupported = errors.New("idle detection unsupported")

// IdleChecker reports the duration of user inactivity.
type IdleChecker interface {
	IdleDuration() (time.Duration, error)
}

// Alerter plays the completion alert. Play must return immediately.
type Alerter interface {
	Play()
}

// Options contains runtime collaborators for a Timer.
type Options struct {
	ID           string
	TickInterval time.Duration
	Now          func() time.Time
	Notifier     notify.Gateway
	Alerter      Alerter
	Logger       *slog.Logger
}

// Timer owns one pomodoro Session and drives it from a ticker.
type Timer struct {
	mu            sync.Mutex
	id            string
	config        model.TimerConfig
	options       Options
	session       Session
	counter       countdown
	idleChecker   IdleChecker
	lastIdleCheck time.Time
	events        []chan Event
	stopCh        chan struct{}
	rearmCh       chan struct{}
	looping       bool
	stopped       bool
	logger        *slog.Logger
}

// New creates a stopped Timer in work mode.
func New(config model.TimerConfig, options Options) (*Timer, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("create timer: %w", err)
	}
	if options.TickInterval <= 0 {
		options.TickInterval = time.Second
	}
	if options.Now == nil {
		options.Now = time.Now
	}
	if options.ID == "" {
		options.ID = uuid.NewString()
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}
	if config.IdleCheckInterval <= 0 {
		config.IdleCheckInterval = 5 * time.Second
	}

	return &Timer{
		id:      options.ID,
		config:  config,
		options: options,
		session: newSession(config),
		counter: countdown{interval: options.TickInterval},
		stopCh:  make(chan struct{}),
		rearmCh: make(chan struct{}, 1),
		logger:  options.Logger.With(slog.String("timer", options.ID)),
	}, nil
}

// ID returns the timer instance id.
func (timer *Timer) ID() string {
	return timer.id
}

// SetIdleChecker injects an idle checker.
func (timer *Timer) SetIdleChecker(checker IdleChecker) {
	timer.mu.Lock()
	defer timer.mu.Unlock()
	timer.idleChecker = checker
}

// Subscribe registers a new observer channel.
func (timer *Timer) Subscribe(buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Event, buffer)
	timer.mu.Lock()
	if timer.stopped {
		close(ch)
	} else {
		timer.events = append(timer.events, ch)
	}
	timer.mu.Unlock()
	return ch
}

// Start launches the ticking loop.
func (timer *Timer) Start() {
	timer.mu.Lock()
	if timer.looping || timer.stopped {
		timer.mu.Unlock()
		return
	}
	timer.looping = true
	timer.mu.Unlock()

	go timer.run()
}

// Stop terminates the ticking loop and closes observers. A stopped timer
// cannot be started again.
func (timer *Timer) Stop() {
	timer.mu.Lock()
	if timer.stopped {
		timer.mu.Unlock()
		return
	}
	timer.stopped = true
	timer.looping = false
	close(timer.stopCh)
	events := timer.events
	timer.events = nil
	timer.mu.Unlock()

	for _, ch := range events {
		close(ch)
	}
}

// Snapshot returns the current session state.
func (timer *Timer) Snapshot() Snapshot {
	timer.mu.Lock()
	defer timer.mu.Unlock()
	return timer.snapshotLocked()
}

// SwitchMode moves to target with its full duration and stops the countdown.
// Switching to the current mode is a hard reset.
func (timer *Timer) SwitchMode(target model.Mode) {
	if !target.Valid() {
		timer.logger.Warn("ignoring unknown mode", slog.String("mode", string(target)))
		return
	}
	timer.mu.Lock()
	timer.session.switchMode(timer.config, target)
	timer.counter.disarm()
	timer.emitLocked(Event{
		Type:     EventModeChange,
		Snapshot: timer.snapshotLocked(),
		At:       timer.options.Now(),
	})
	timer.mu.Unlock()
}

// ToggleRunning starts or pauses the countdown. The first start while
// notification permission is undecided asks for it in the background.
func (timer *Timer) ToggleRunning() {
	timer.mu.Lock()
	now := timer.options.Now()
	started := timer.session.toggle()
	if started {
		timer.counter.arm(now)
		timer.lastIdleCheck = time.Time{}
		timer.requestRearm()
	} else {
		timer.counter.disarm()
	}
	timer.emitLocked(Event{
		Type:     EventRunningChange,
		Snapshot: timer.snapshotLocked(),
		At:       now,
	})
	timer.mu.Unlock()

	notifier := timer.options.Notifier
	if started && notifier != nil && notifier.Permission() == notify.PermissionDefault {
		go notifier.RequestPermission()
	}
}

// Pause stops the countdown if it is running.
func (timer *Timer) Pause() {
	timer.mu.Lock()
	defer timer.mu.Unlock()
	if !timer.session.Running {
		return
	}
	timer.session.Running = false
	timer.counter.disarm()
	timer.emitLocked(Event{
		Type:     EventRunningChange,
		Snapshot: timer.snapshotLocked(),
		At:       timer.options.Now(),
	})
}

// Reset restores the full duration of the current mode and stops the countdown.
func (timer *Timer) Reset() {
	timer.mu.Lock()
	defer timer.mu.Unlock()
	timer.session.reset(timer.config)
	timer.counter.disarm()
	timer.emitLocked(Event{
		Type:     EventReset,
		Snapshot: timer.snapshotLocked(),
		At:       timer.options.Now(),
	})
}

// UpdateConfig swaps durations and cadence. A stopped session still at its
// full duration picks up the new duration; otherwise remaining time is
// clamped to it.
func (timer *Timer) UpdateConfig(config model.TimerConfig) error {
	if err := config.Validate(); err != nil {
		return fmt.Errorf("update timer config: %w", err)
	}
	if config.IdleCheckInterval <= 0 {
		config.IdleCheckInterval = 5 * time.Second
	}

	timer.mu.Lock()
	defer timer.mu.Unlock()
	mode := timer.session.Mode
	previous := timer.config.Seconds(mode)
	timer.config = config
	current := config.Seconds(mode)
	if !timer.session.Running && timer.session.Remaining == previous {
		timer.session.Remaining = current
	} else if timer.session.Remaining > current {
		timer.session.Remaining = current
	}
	timer.emitLocked(Event{
		Type:     EventProgress,
		Snapshot: timer.snapshotLocked(),
		At:       timer.options.Now(),
	})
	return nil
}

// Tick applies the whole seconds elapsed since the countdown was armed.
// Reaching zero completes the session on the same tick.
func (timer *Timer) Tick(now time.Time) {
	timer.mu.Lock()
	if !timer.session.Running {
		timer.mu.Unlock()
		return
	}

	if timer.session.Mode == model.ModeWork && timer.handleIdleCheckLocked(now) {
		timer.mu.Unlock()
		return
	}

	steps := timer.counter.due(now)
	if steps == 0 && timer.session.Remaining > 0 {
		timer.mu.Unlock()
		return
	}

	if !timer.session.advance(steps) {
		timer.emitLocked(Event{
			Type:     EventProgress,
			Snapshot: timer.snapshotLocked(),
			At:       now,
		})
		timer.mu.Unlock()
		return
	}

	completion := timer.session.complete(timer.config)
	timer.counter.disarm()
	snapshot := timer.snapshotLocked()
	timer.emitLocked(Event{
		Type:     EventComplete,
		Snapshot: snapshot,
		Finished: completion.Finished,
		At:       now,
	})
	timer.emitLocked(Event{
		Type:     EventModeChange,
		Snapshot: snapshot,
		At:       now,
	})
	timer.mu.Unlock()

	timer.announce(completion)
}

func (timer *Timer) run() {
	ticker := time.NewTicker(timer.options.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-timer.stopCh:
			return
		case <-timer.rearmCh:
			ticker.Reset(timer.options.TickInterval)
		case <-ticker.C:
			timer.Tick(timer.options.Now())
		}
	}
}

// requestRearm aligns the ticker with a countdown armed just now, so the
// first tick lands one interval after the start.
func (timer *Timer) requestRearm() {
	select {
	case timer.rearmCh <- struct{}{}:
	default:
	}
}

func (timer *Timer) announce(completion Completion) {
	timer.logger.Info("session complete",
		slog.String("finished", string(completion.Finished)),
		slog.String("next", string(completion.Next)),
		slog.Int("completed_work", completion.CompletedWork),
	)

	if timer.options.Alerter != nil {
		timer.options.Alerter.Play()
	}

	notifier := timer.options.Notifier
	if notifier == nil || notifier.Permission() != notify.PermissionGranted {
		return
	}
	notifier.Notify(NotificationTitle, CompletionMessage(completion.Finished))
}

// CompletionMessage returns the notification body for a finished mode.
func CompletionMessage(finished model.Mode) string {
	if finished.IsBreak() {
		return "Time to get back to work!"
	}
	return "Time for a break!"
}

// handleIdleCheckLocked pauses a running work session once the user has
// been idle long enough and reports whether it did.
func (timer *Timer) handleIdleCheckLocked(now time.Time) bool {
	if !timer.config.IdlePauseEnabled || timer.idleChecker == nil {
		return false
	}
	if !timer.lastIdleCheck.IsZero() && now.Sub(timer.lastIdleCheck) < timer.config.IdleCheckInterval {
		return false
	}
	timer.lastIdleCheck = now

	idleDuration, err := timer.idleChecker.IdleDuration()
	if err != nil {
		if errors.Is(err, ErrIdleUnsupported) {
			timer.config.IdlePauseEnabled = false
		}
		timer.emitLocked(Event{
			Type:     EventIdleError,
			Snapshot: timer.snapshotLocked(),
			Message:  err.Error(),
			At:       now,
		})
		return false
	}
	if idleDuration < timer.config.IdlePauseAfter {
		return false
	}

	timer.session.Running = false
	timer.counter.disarm()
	timer.logger.Info("paused for inactivity", slog.Duration("idle", idleDuration))
	timer.emitLocked(Event{
		Type:     EventIdlePause,
		Snapshot: timer.snapshotLocked(),
		Message:  "paused after " + idleDuration.Round(time.Second).String() + " idle",
		At:       now,
	})
	return true
}

func (timer *Timer) snapshotLocked() Snapshot {
	return Snapshot{
		ID:            timer.id,
		Mode:          timer.session.Mode,
		Label:         timer.session.Mode.Label(),
		Remaining:     timer.session.Remaining,
		Duration:      timer.config.Seconds(timer.session.Mode),
		Running:       timer.session.Running,
		CompletedWork: timer.session.CompletedWork,
	}
}

func (timer *Timer) emitLocked(event Event) {
	for _, ch := range timer.events {
		select {
		case ch <- event:
		default:
		}
	}
}
