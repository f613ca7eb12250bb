package timerview

import (
	"fmt"
	"image/color"

	"focusdeck/internal/core/model"
	"focusdeck/internal/core/pomodoro"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// Controller is the subset of the timer the window drives.
type Controller interface {
	Snapshot() pomodoro.Snapshot
	SwitchMode(model.Mode)
	ToggleRunning()
	Reset()
}

var modeColors = map[model.Mode]color.NRGBA{
	model.ModeWork:       {R: 232, G: 96, B: 76, A: 255},
	model.ModeShortBreak: {R: 76, G: 175, B: 130, A: 255},
	model.ModeLongBreak:  {R: 72, G: 130, B: 210, A: 255},
}

// Window shows one timer: mode selector, countdown, controls and the
// completed-session counter.
type Window struct {
	window      fyne.Window
	controller  Controller
	modeButtons map[model.Mode]*widget.Button
	clock       *canvas.Text
	modeLabel   *widget.Label
	progress    *widget.ProgressBar
	toggle      *widget.Button
	completed   *widget.Label
}

// New creates the timer window. Call Apply on the UI goroutine to refresh it.
func New(app fyne.App, controller Controller) *Window {
	window := app.NewWindow("Pomodoro Timer")

	view := &Window{
		window:      window,
		controller:  controller,
		modeButtons: make(map[model.Mode]*widget.Button),
		modeLabel:   widget.NewLabelWithStyle("", fyne.TextAlignCenter, fyne.TextStyle{Italic: true}),
		progress:    widget.NewProgressBar(),
		completed:   widget.NewLabelWithStyle("", fyne.TextAlignCenter, fyne.TextStyle{Bold: true}),
	}

	var selector []fyne.CanvasObject
	for _, mode := range model.Modes() {
		button := widget.NewButton(mode.Label(), func() {
			controller.SwitchMode(mode)
		})
		view.modeButtons[mode] = button
		selector = append(selector, button)
	}

	view.clock = canvas.NewText("--:--", modeColors[model.ModeWork])
	view.clock.Alignment = fyne.TextAlignCenter
	view.clock.TextStyle = fyne.TextStyle{Bold: true, Monospace: true}
	view.clock.TextSize = 56
	view.progress.TextFormatter = func() string { return "" }

	view.toggle = widget.NewButtonWithIcon("Start", theme.MediaPlayIcon(), controller.ToggleRunning)
	view.toggle.Importance = widget.HighImportance
	reset := widget.NewButtonWithIcon("Reset", theme.MediaReplayIcon(), controller.Reset)

	content := container.NewVBox(
		container.NewGridWithColumns(len(selector), selector...),
		layout.NewSpacer(),
		view.clock,
		view.modeLabel,
		view.progress,
		container.NewGridWithColumns(2, view.toggle, reset),
		widget.NewSeparator(),
		view.completed,
	)
	window.SetContent(container.NewPadded(content))
	window.Resize(fyne.NewSize(360, 320))
	window.SetCloseIntercept(window.Hide)

	view.Apply(controller.Snapshot())
	return view
}

// Window returns the underlying fyne window, used as a dialog parent.
func (view *Window) Window() fyne.Window {
	return view.window
}

// Show displays the timer window.
func (view *Window) Show() {
	view.window.Show()
	view.window.RequestFocus()
}

// Apply renders a snapshot.
func (view *Window) Apply(snapshot pomodoro.Snapshot) {
	view.clock.Text = snapshot.Clock()
	view.clock.Color = modeColors[snapshot.Mode]
	view.clock.Refresh()

	view.modeLabel.SetText(snapshot.Label)
	view.progress.SetValue(snapshot.Progress())
	view.completed.SetText(fmt.Sprintf("Completed today: %d", snapshot.CompletedWork))

	if snapshot.Running {
		view.toggle.SetText("Pause")
		view.toggle.SetIcon(theme.MediaPauseIcon())
	} else {
		view.toggle.SetText("Start")
		view.toggle.SetIcon(theme.MediaPlayIcon())
	}

	for mode, button := range view.modeButtons {
		if mode == snapshot.Mode {
			button.Importance = widget.HighImportance
		} else {
			button.Importance = widget.MediumImportance
		}
		button.Refresh()
	}
}
