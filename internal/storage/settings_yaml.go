package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"focusdeck/internal/notify"
	"focusdeck/internal/ui/preferences"

	"gopkg.in/yaml.v3"
)

const settingsFileName = "settings.yaml"

type yamlSettings struct {
	WorkMinutes            int    `yaml:"work_minutes"`
	ShortBreakMinutes      int    `yaml:"short_break_minutes"`
	LongBreakMinutes       int    `yaml:"long_break_minutes"`
	LongBreakEvery         int    `yaml:"long_break_every"`
	SoundEnabled           *bool  `yaml:"sound_enabled,omitempty"`
	NotificationsEnabled   *bool  `yaml:"notifications_enabled,omitempty"`
	NotificationPermission string `yaml:"notification_permission,omitempty"`
	IdlePauseEnabled       bool   `yaml:"idle_pause_enabled"`
	IdlePauseMinutes       int    `yaml:"idle_pause_minutes"`
}

// Store reads and writes user preferences as YAML at a fixed path.
type Store struct {
	path string
}

// NewStore creates a store for the given settings file.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// DefaultPath returns the settings file location under the user config dir.
func DefaultPath(appName string) (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(configDir, appName, settingsFileName), nil
}

// Path returns the settings file path.
func (store *Store) Path() string {
	return store.path
}

// Load reads user preferences from YAML.
// If the file does not exist, default settings are returned.
func (store *Store) Load() (preferences.Settings, error) {
	settings := preferences.DefaultSettings()

	rawData, err := os.ReadFile(store.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return settings, nil
		}
		return settings, fmt.Errorf("read settings file: %w", err)
	}

	var fileData yamlSettings
	if err := yaml.Unmarshal(rawData, &fileData); err != nil {
		return settings, fmt.Errorf("parse settings yaml: %w", err)
	}

	applyYamlSettings(&settings, fileData)
	return settings, nil
}

// Save writes user preferences to YAML.
func (store *Store) Save(settings preferences.Settings) error {
	if err := os.MkdirAll(filepath.Dir(store.path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	fileData := yamlSettings{
		WorkMinutes:            int(settings.WorkDuration / time.Minute),
		ShortBreakMinutes:      int(settings.ShortBreakDuration / time.Minute),
		LongBreakMinutes:       int(settings.LongBreakDuration / time.Minute),
		LongBreakEvery:         settings.LongBreakEvery,
		SoundEnabled:           &settings.SoundEnabled,
		NotificationsEnabled:   &settings.NotificationsEnabled,
		NotificationPermission: settings.NotificationPermission.String(),
		IdlePauseEnabled:       settings.IdlePauseEnabled,
		IdlePauseMinutes:       int(settings.IdlePauseAfter / time.Minute),
	}

	serialized, err := yaml.Marshal(fileData)
	if err != nil {
		return fmt.Errorf("marshal settings yaml: %w", err)
	}

	// Write then rename so watchers never observe a half-written file.
	tempPath := store.path + ".tmp"
	if err := os.WriteFile(tempPath, serialized, 0o644); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}
	if err := os.Rename(tempPath, store.path); err != nil {
		return fmt.Errorf("replace settings file: %w", err)
	}

	return nil
}

func applyYamlSettings(settings *preferences.Settings, fileData yamlSettings) {
	if preferences.ValidMinutes(fileData.WorkMinutes) {
		settings.WorkDuration = time.Duration(fileData.WorkMinutes) * time.Minute
	}
	if preferences.ValidMinutes(fileData.ShortBreakMinutes) {
		settings.ShortBreakDuration = time.Duration(fileData.ShortBreakMinutes) * time.Minute
	}
	if preferences.ValidMinutes(fileData.LongBreakMinutes) {
		settings.LongBreakDuration = time.Duration(fileData.LongBreakMinutes) * time.Minute
	}
	if fileData.LongBreakEvery > 0 {
		settings.LongBreakEvery = fileData.LongBreakEvery
	}
	if preferences.ValidMinutes(fileData.IdlePauseMinutes) {
		settings.IdlePauseAfter = time.Duration(fileData.IdlePauseMinutes) * time.Minute
	}
	if fileData.SoundEnabled != nil {
		settings.SoundEnabled = *fileData.SoundEnabled
	}
	if fileData.NotificationsEnabled != nil {
		settings.NotificationsEnabled = *fileData.NotificationsEnabled
	}

	settings.NotificationPermission = notify.ParsePermission(fileData.NotificationPermission)
	settings.IdlePauseEnabled = fileData.IdlePauseEnabled
}
