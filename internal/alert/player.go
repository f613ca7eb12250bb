package alert

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"
)

// Sink plays mono signed 16-bit little-endian PCM.
type Sink interface {
	SampleRate() int
	PlayPCM(ctx context.Context, pcm []byte) error
}

// Player plays the completion chime. It holds no session state and never
// reports failures to its caller.
type Player struct {
	sink     Sink
	sequence []Tone
	timeout  time.Duration
	logger   *slog.Logger
	enabled  atomic.Bool
}

// NewPlayer creates a player for the default chime.
func NewPlayer(sink Sink, logger *slog.Logger) *Player {
	if logger == nil {
		logger = slog.Default()
	}
	player := &Player{
		sink:     sink,
		sequence: Chime(),
		timeout:  5 * time.Second,
		logger:   logger,
	}
	player.enabled.Store(true)
	return player
}

// SetEnabled switches sound on or off.
func (player *Player) SetEnabled(enabled bool) {
	player.enabled.Store(enabled)
}

// Enabled reports whether sound is on.
func (player *Player) Enabled() bool {
	return player.enabled.Load()
}

// Play starts the chime in the background and returns immediately.
func (player *Player) Play() {
	if !player.Enabled() {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), player.timeout)
		defer cancel()
		if err := player.PlaySequence(ctx, player.sequence); err != nil {
			player.logger.Debug("chime skipped", slog.String("error", err.Error()))
		}
	}()
}

// PlaySequence renders tones and blocks until the sink has played them.
func (player *Player) PlaySequence(ctx context.Context, tones []Tone) (err error) {
	if player.sink == nil {
		return fmt.Errorf("play sequence: no audio sink")
	}
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("play sequence: audio panic: %v", recovered)
		}
	}()

	pcm := EncodePCM16(Render(tones, player.sink.SampleRate()))
	if err := player.sink.PlayPCM(ctx, pcm); err != nil {
		return fmt.Errorf("play sequence: %w", err)
	}
	return nil
}
