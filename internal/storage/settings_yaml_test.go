package storage

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"focusdeck/internal/notify"
	"focusdeck/internal/ui/preferences"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "settings.yaml"))

	settings, err := store.Load()

	require.NoError(t, err)
	assert.Equal(t, preferences.DefaultSettings(), settings)
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "nested", "settings.yaml"))
	settings := preferences.DefaultSettings()
	settings.WorkDuration = 50 * time.Minute
	settings.LongBreakEvery = 3
	settings.SoundEnabled = false
	settings.NotificationPermission = notify.PermissionGranted
	settings.IdlePauseEnabled = true
	settings.IdlePauseAfter = 10 * time.Minute

	require.NoError(t, store.Save(settings))
	loaded, err := store.Load()

	require.NoError(t, err)
	assert.Equal(t, settings, loaded)
	_, err = os.Stat(store.Path() + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestLoadIgnoresOutOfRangeValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("work_minutes: -5\nshort_break_minutes: 7\nlong_break_every: 0\nnotification_permission: bogus\n"), 0o644))

	settings, err := NewStore(path).Load()

	require.NoError(t, err)
	assert.Equal(t, 25*time.Minute, settings.WorkDuration)
	assert.Equal(t, 7*time.Minute, settings.ShortBreakDuration)
	assert.Equal(t, 4, settings.LongBreakEvery)
	assert.True(t, settings.SoundEnabled)
	assert.Equal(t, notify.PermissionDefault, settings.NotificationPermission)
}

func TestLoadIgnoresMinutesThatOverflow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("work_minutes: 200000000\nlong_break_minutes: 1441\nidle_pause_minutes: 1440\n"), 0o644))

	settings, err := NewStore(path).Load()

	require.NoError(t, err)
	assert.Equal(t, 25*time.Minute, settings.WorkDuration)
	assert.Equal(t, 15*time.Minute, settings.LongBreakDuration)
	assert.Equal(t, 24*time.Hour, settings.IdlePauseAfter)
	assert.NoError(t, settings.TimerConfig().Validate())
}

func TestLoadRejectsMalformedYaml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("work_minutes: [unterminated"), 0o644))

	settings, err := NewStore(path).Load()

	assert.ErrorContains(t, err, "parse settings yaml")
	assert.Equal(t, preferences.DefaultSettings(), settings)
}

func TestWatchReloadsOnChange(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "settings.yaml"))
	ctx, cancel := context.WithCancel(context.Background())

	var mu sync.Mutex
	var reloaded []preferences.Settings
	done := make(chan error, 1)
	go func() {
		done <- store.Watch(ctx, nil, func(settings preferences.Settings) {
			mu.Lock()
			defer mu.Unlock()
			reloaded = append(reloaded, settings)
		})
	}()

	updated := preferences.DefaultSettings()
	updated.ShortBreakDuration = 8 * time.Minute
	assert.Eventually(t, func() bool {
		// The watcher may not be registered yet on the first attempts.
		if err := store.Save(updated); err != nil {
			return false
		}
		mu.Lock()
		defer mu.Unlock()
		return len(reloaded) > 0
	}, 5*time.Second, 300*time.Millisecond)

	mu.Lock()
	assert.Equal(t, 8*time.Minute, reloaded[len(reloaded)-1].ShortBreakDuration)
	mu.Unlock()

	cancel()
	assert.NoError(t, <-done)
}
