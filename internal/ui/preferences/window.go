package preferences

import (
	"fmt"
	"strconv"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
)

// Window handles the preferences UI.
type Window struct {
	window        fyne.Window
	settings      Settings
	onSave        func(Settings)
	workDur       *widget.Entry
	shortDur      *widget.Entry
	longDur       *widget.Entry
	longEvery     *widget.Entry
	sound         *widget.Check
	notifications *widget.Check
	idleCheck     *widget.Check
	idleAfter     *widget.Entry
}

// New creates a preferences window.
func New(app fyne.App, settings Settings, onSave func(Settings)) *Window {
	window := app.NewWindow("FocusDeck Settings")

	prefs := &Window{
		window:        window,
		onSave:        onSave,
		workDur:       widget.NewEntry(),
		shortDur:      widget.NewEntry(),
		longDur:       widget.NewEntry(),
		longEvery:     widget.NewEntry(),
		sound:         widget.NewCheck("Play a chime when a session ends", nil),
		notifications: widget.NewCheck("Show desktop notifications", nil),
		idleCheck:     widget.NewCheck("Pause work when I am away", nil),
		idleAfter:     widget.NewEntry(),
	}
	prefs.UpdateSettings(settings)

	form := container.NewVBox(
		widget.NewLabelWithStyle("Sessions", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewHBox(widget.NewLabel("Deep work"), prefs.workDur, widget.NewLabel("min")),
		container.NewHBox(widget.NewLabel("Short break"), prefs.shortDur, widget.NewLabel("min")),
		container.NewHBox(widget.NewLabel("Long break"), prefs.longDur, widget.NewLabel("min")),
		container.NewHBox(widget.NewLabel("Long break after"), prefs.longEvery, widget.NewLabel("sessions")),
		widget.NewLabelWithStyle("Alerts", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		prefs.sound,
		prefs.notifications,
		widget.NewLabelWithStyle("Inactivity", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		prefs.idleCheck,
		container.NewHBox(widget.NewLabel("Away for"), prefs.idleAfter, widget.NewLabel("min")),
	)

	saveButton := widget.NewButton("Save", prefs.handleSave)
	cancelButton := widget.NewButton("Cancel", func() {
		prefs.UpdateSettings(prefs.settings)
		window.Hide()
	})
	buttons := container.NewHBox(saveButton, layout.NewSpacer(), cancelButton)

	window.SetContent(container.NewBorder(nil, buttons, nil, nil, form))
	window.Resize(fyne.NewSize(380, 440))
	window.SetCloseIntercept(window.Hide)

	return prefs
}

// Show displays the preferences window.
func (prefs *Window) Show() {
	prefs.window.Show()
	prefs.window.RequestFocus()
}

// UpdateSettings replaces window values.
func (prefs *Window) UpdateSettings(settings Settings) {
	prefs.settings = settings
	prefs.workDur.SetText(fmt.Sprintf("%d", int(settings.WorkDuration.Minutes())))
	prefs.shortDur.SetText(fmt.Sprintf("%d", int(settings.ShortBreakDuration.Minutes())))
	prefs.longDur.SetText(fmt.Sprintf("%d", int(settings.LongBreakDuration.Minutes())))
	prefs.longEvery.SetText(fmt.Sprintf("%d", settings.LongBreakEvery))
	prefs.sound.SetChecked(settings.SoundEnabled)
	prefs.notifications.SetChecked(settings.NotificationsEnabled)
	prefs.idleCheck.SetChecked(settings.IdlePauseEnabled)
	prefs.idleAfter.SetText(fmt.Sprintf("%d", int(settings.IdlePauseAfter.Minutes())))
}

func (prefs *Window) handleSave() {
	settings := prefs.settings

	if minutes, ok := parseMinutes(prefs.workDur.Text); ok {
		settings.WorkDuration = time.Duration(minutes) * time.Minute
	}
	if minutes, ok := parseMinutes(prefs.shortDur.Text); ok {
		settings.ShortBreakDuration = time.Duration(minutes) * time.Minute
	}
	if minutes, ok := parseMinutes(prefs.longDur.Text); ok {
		settings.LongBreakDuration = time.Duration(minutes) * time.Minute
	}
	if count, ok := parsePositiveInt(prefs.longEvery.Text); ok {
		settings.LongBreakEvery = count
	}
	if minutes, ok := parseMinutes(prefs.idleAfter.Text); ok {
		settings.IdlePauseAfter = time.Duration(minutes) * time.Minute
	}

	settings.SoundEnabled = prefs.sound.Checked
	settings.NotificationsEnabled = prefs.notifications.Checked
	settings.IdlePauseEnabled = prefs.idleCheck.Checked

	prefs.settings = settings
	if prefs.onSave != nil {
		prefs.onSave(settings)
	}
	prefs.window.Hide()
}

func parsePositiveInt(value string) (int, bool) {
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		return 0, false
	}
	return parsed, true
}

func parseMinutes(value string) (int, bool) {
	minutes, ok := parsePositiveInt(value)
	if !ok || !ValidMinutes(minutes) {
		return 0, false
	}
	return minutes, true
}
