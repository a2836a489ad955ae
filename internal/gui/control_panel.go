// Operation buttons and preview sliders
package gui

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"image-editor/internal/algorithms"
	"image-editor/internal/config"
)

// ControlPanel holds the one-click operations and the continuous
// adjustments. Only one slider group is previewed at a time: moving the
// scale slider resets brightness and contrast and vice versa.
type ControlPanel struct {
	app *Application
	cfg config.Config

	container *fyne.Container
	buttons   []*widget.Button

	undoBtn *widget.Button
	redoBtn *widget.Button

	scaleSlider      *widget.Slider
	brightnessSlider *widget.Slider
	contrastSlider   *widget.Slider
	scaleLabel       *widget.Label
	toneLabel        *widget.Label

	// resetting suppresses OnChanged while sliders are moved programmatically.
	resetting bool
}

func NewControlPanel(app *Application, cfg config.Config) *ControlPanel {
	panel := &ControlPanel{app: app, cfg: cfg}
	panel.initializeUI()
	return panel
}

func (cp *ControlPanel) initializeUI() {
	filters := cp.cfg.Filters

	operations := container.NewGridWithColumns(2,
		cp.operationButton("Grayscale", algorithms.OpGrayscale, nil),
		cp.operationButton("Blur", algorithms.OpBlur, map[string]interface{}{
			"intensity": float64(filters.BlurIntensity),
		}),
		cp.operationButton("Edges", algorithms.OpEdges, map[string]interface{}{
			"low":  filters.EdgeLow,
			"high": filters.EdgeHigh,
		}),
		cp.operationButton("Remove Background", algorithms.OpRemoveBackground, nil),
	)

	rotate := container.NewGridWithColumns(3,
		cp.operationButton("90°", algorithms.OpRotate, map[string]interface{}{"angle": 90.0}),
		cp.operationButton("180°", algorithms.OpRotate, map[string]interface{}{"angle": 180.0}),
		cp.operationButton("270°", algorithms.OpRotate, map[string]interface{}{"angle": 270.0}),
	)

	flip := container.NewGridWithColumns(2,
		cp.operationButton("Horizontal", algorithms.OpFlip, map[string]interface{}{
			"axis": string(algorithms.FlipHorizontal),
		}),
		cp.operationButton("Vertical", algorithms.OpFlip, map[string]interface{}{
			"axis": string(algorithms.FlipVertical),
		}),
	)

	cp.undoBtn = widget.NewButtonWithIcon("Undo", theme.ContentUndoIcon(), cp.app.Undo)
	cp.redoBtn = widget.NewButtonWithIcon("Redo", theme.ContentRedoIcon(), cp.app.Redo)
	cp.SetHistoryState(false, false)

	sliders := cp.cfg.Sliders
	cp.scaleSlider = newRangeSlider(sliders.Scale, 1.0, 0.05)
	cp.brightnessSlider = newRangeSlider(sliders.Brightness, 0, 1)
	cp.contrastSlider = newRangeSlider(sliders.Contrast, 1.0, 0.05)
	cp.scaleLabel = widget.NewLabel("")
	cp.toneLabel = widget.NewLabel("")
	cp.updateLabels()

	cp.scaleSlider.OnChanged = func(float64) { cp.onScaleChanged() }
	cp.brightnessSlider.OnChanged = func(float64) { cp.onToneChanged() }
	cp.contrastSlider.OnChanged = func(float64) { cp.onToneChanged() }

	applyBtn := widget.NewButtonWithIcon("Apply", theme.ConfirmIcon(), cp.app.CommitPreview)
	applyBtn.Importance = widget.HighImportance
	resetBtn := widget.NewButtonWithIcon("Reset", theme.CancelIcon(), cp.app.DiscardPreview)

	cp.container = container.NewVBox(
		widget.NewCard("History", "", container.NewGridWithColumns(2, cp.undoBtn, cp.redoBtn)),
		widget.NewCard("Filters", "", operations),
		widget.NewCard("Rotate", "", rotate),
		widget.NewCard("Flip", "", flip),
		widget.NewCard("Adjust", "", container.NewVBox(
			cp.scaleLabel,
			cp.scaleSlider,
			cp.toneLabel,
			widget.NewLabel("Brightness"),
			cp.brightnessSlider,
			widget.NewLabel("Contrast"),
			cp.contrastSlider,
			container.NewGridWithColumns(2, applyBtn, resetBtn),
		)),
	)
}

func newRangeSlider(r config.Range, value, step float64) *widget.Slider {
	slider := widget.NewSlider(r.Min, r.Max)
	slider.Step = step
	slider.Value = min(max(value, r.Min), r.Max)
	return slider
}

func (cp *ControlPanel) operationButton(label, name string, params map[string]interface{}) *widget.Button {
	btn := widget.NewButton(label, func() {
		cp.app.Apply(algorithms.NewStep(name, params))
	})
	cp.buttons = append(cp.buttons, btn)
	return btn
}

func (cp *ControlPanel) GetContainer() fyne.CanvasObject {
	return cp.container
}

func (cp *ControlPanel) onScaleChanged() {
	if cp.resetting {
		return
	}
	cp.withReset(func() {
		cp.brightnessSlider.SetValue(0)
		cp.contrastSlider.SetValue(1)
	})
	cp.updateLabels()
	cp.app.Preview(algorithms.NewStep(algorithms.OpResize, map[string]interface{}{
		"scale": cp.scaleSlider.Value,
	}))
}

func (cp *ControlPanel) onToneChanged() {
	if cp.resetting {
		return
	}
	cp.withReset(func() {
		cp.scaleSlider.SetValue(1)
	})
	cp.updateLabels()
	cp.app.Preview(algorithms.NewStep(algorithms.OpBrightnessContrast, map[string]interface{}{
		"brightness": cp.brightnessSlider.Value,
		"contrast":   cp.contrastSlider.Value,
	}))
}

// ResetSliders returns every slider to its neutral value without
// triggering a preview.
func (cp *ControlPanel) ResetSliders() {
	cp.withReset(func() {
		cp.scaleSlider.SetValue(1)
		cp.brightnessSlider.SetValue(0)
		cp.contrastSlider.SetValue(1)
	})
	cp.updateLabels()
}

func (cp *ControlPanel) withReset(fn func()) {
	cp.resetting = true
	defer func() { cp.resetting = false }()
	fn()
}

func (cp *ControlPanel) updateLabels() {
	cp.scaleLabel.SetText(fmt.Sprintf("Scale: %.2fx", cp.scaleSlider.Value))
	cp.toneLabel.SetText(fmt.Sprintf("Brightness %+.0f, contrast %.2f",
		cp.brightnessSlider.Value, cp.contrastSlider.Value))
}

// SetBusy disables the one-click operations while a transform is running.
func (cp *ControlPanel) SetBusy(busy bool) {
	for _, btn := range cp.buttons {
		if busy {
			btn.Disable()
		} else {
			btn.Enable()
		}
	}
}

func (cp *ControlPanel) SetHistoryState(canUndo, canRedo bool) {
	setEnabled(cp.undoBtn, canUndo)
	setEnabled(cp.redoBtn, canRedo)
}

func setEnabled(btn *widget.Button, enabled bool) {
	if enabled {
		btn.Enable()
	} else {
		btn.Disable()
	}
}
