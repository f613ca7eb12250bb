// Package otosink plays alert PCM on the default audio device through oto.
package otosink

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"focusdeck/internal/alert"

	"github.com/ebitengine/oto/v3"
)

var _ alert.Sink = (*Sink)(nil)

// Sink plays PCM on the default audio device. The device is opened on
// first use; a failure to open it is remembered and returned on every call.
type Sink struct {
	sampleRate int

	once    sync.Once
	context *oto.Context
	err     error
}

// New creates a sink for mono 16-bit audio at sampleRate.
func New(sampleRate int) *Sink {
	if sampleRate <= 0 {
		sampleRate = alert.DefaultSampleRate
	}
	return &Sink{sampleRate: sampleRate}
}

// SampleRate returns the playback rate.
func (sink *Sink) SampleRate() int {
	return sink.sampleRate
}

// PlayPCM plays pcm and waits for it to finish or for ctx to end.
func (sink *Sink) PlayPCM(ctx context.Context, pcm []byte) error {
	audio, err := sink.open()
	if err != nil {
		return err
	}

	player := audio.NewPlayer(bytes.NewReader(pcm))
	defer func() {
		_ = player.Close()
	}()
	player.Play()

	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()
	for player.IsPlaying() {
		select {
		case <-ctx.Done():
			player.Pause()
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return player.Err()
}

func (sink *Sink) open() (*oto.Context, error) {
	sink.once.Do(func() {
		audio, ready, err := oto.NewContext(&oto.NewContextOptions{
			SampleRate:   sink.sampleRate,
			ChannelCount: 1,
			Format:       oto.FormatSignedInt16LE,
		})
		if err != nil {
			sink.err = fmt.Errorf("open audio device: %w", err)
			return
		}
		<-ready
		sink.context = audio
	})
	return sink.context, sink.err
}
