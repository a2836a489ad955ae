// Main editor window wiring history, preview and runner to the widgets
package gui

import (
	"context"
	"errors"
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"image-editor/internal/algorithms"
	"image-editor/internal/config"
	"image-editor/internal/core"
	"image-editor/internal/io"
	"image-editor/internal/metrics"
)

// Application is the editor window. All methods run on the fyne UI
// goroutine; background transforms report back through fyne.Do.
type Application struct {
	app    fyne.App
	window fyne.Window
	logger *logrus.Logger
	cfg    config.Config

	// Core components
	history *core.History
	preview *core.Preview
	runner  *core.Runner
	loader  *io.ImageLoader
	metrics *metrics.Evaluator

	// GUI components
	canvas      *ImageCanvas
	controls    *ControlPanel
	menuHandler *MenuHandler
	status      *widget.Label
}

func NewApplication(app fyne.App, cfg config.Config, logger *logrus.Logger) *Application {
	window := app.NewWindow("Image Editor")
	window.Resize(fyne.NewSize(cfg.Window.Width, cfg.Window.Height))
	window.CenterOnScreen()

	a := &Application{
		app:    app,
		window: window,
		logger: logger,
		cfg:    cfg,
	}

	a.initializeCore()
	a.initializeGUI()
	a.setupLayout()

	window.SetOnClosed(a.shutdown)
	return a
}

func (a *Application) initializeCore() {
	a.loader = io.NewImageLoader(a.logger)
	a.history = core.NewHistory(a.loader, a.logger)
	a.preview = core.NewPreview(a.history, a.logger)
	a.runner = core.NewRunner(a.history, a.logger)
	a.metrics = metrics.NewEvaluator()
}

func (a *Application) initializeGUI() {
	a.canvas = NewImageCanvas(a.logger)
	a.controls = NewControlPanel(a, a.cfg)
	a.menuHandler = NewMenuHandler(a)
	a.status = widget.NewLabel("No image loaded.")
}

func (a *Application) setupLayout() {
	a.window.SetMainMenu(a.menuHandler.GetMainMenu())
	a.menuHandler.RegisterShortcuts(a.window.Canvas())

	content := container.NewBorder(
		nil,      // top
		a.status, // bottom
		nil,      // left
		container.NewVScroll(a.controls.GetContainer()), // right
		a.canvas.GetContainer(),
	)
	a.window.SetContent(content)
}

// ShowAndRun shows the window and runs the event loop
func (a *Application) ShowAndRun() {
	a.window.ShowAndRun()
}

// OpenPath loads path into a fresh session.
func (a *Application) OpenPath(path string) {
	mat, err := a.loader.LoadImage(path)
	if err != nil {
		a.showError("Failed to Load Image", err)
		return
	}
	defer mat.Close()
	a.startSession(mat, path)
}

// OpenData decodes an encoded image picked through the file dialog; path
// becomes the session's save target.
func (a *Application) OpenData(data []byte, path string) {
	mat, err := a.loader.DecodeImage(data, path)
	if err != nil {
		a.showError("Failed to Load Image", err)
		return
	}
	defer mat.Close()
	a.startSession(mat, path)
}

func (a *Application) startSession(mat gocv.Mat, path string) {
	if err := a.history.Load(mat, path); err != nil {
		a.showError("Failed to Load Image", err)
		return
	}
	a.logger.WithFields(logrus.Fields{
		"session":  a.history.Session(),
		"filepath": path,
	}).Info("Editing session started")

	a.window.SetTitle("Image Editor - " + path)
	a.afterHistoryChange()
}

// RevertToOriginal commits the loaded image as a new, undoable state.
func (a *Application) RevertToOriginal() {
	if !a.ensureImage() {
		return
	}
	original := a.history.Original()
	defer original.Close()

	if err := a.history.Commit(original); err != nil {
		a.showError("Revert Failed", err)
		return
	}
	a.afterHistoryChange()
}

// Save writes to the source path, falling back to Save As when there is none.
func (a *Application) Save() {
	if !a.ensureImage() {
		return
	}
	err := a.history.Save("")
	if core.IsNoTargetPath(err) {
		a.menuHandler.saveImageAs()
		return
	}
	if err != nil {
		a.showError("Failed to Save Image", err)
		return
	}
	dialog.ShowInformation("Saved", "Image saved successfully.", a.window)
	a.refreshStatus()
}

// SaveAs writes to path and makes it the source path.
func (a *Application) SaveAs(path string) {
	if err := a.history.Save(path); err != nil {
		a.showError("Failed to Save Image", err)
		return
	}
	a.window.SetTitle("Image Editor - " + path)
	dialog.ShowInformation("Saved", "Image saved successfully.", a.window)
	a.refreshStatus()
}

func (a *Application) Undo() {
	if a.history.Undo() {
		a.afterHistoryChange()
	}
}

func (a *Application) Redo() {
	if a.history.Redo() {
		a.afterHistoryChange()
	}
}

// Apply runs step in the background and commits its result.
func (a *Application) Apply(step algorithms.Step) {
	if !a.ensureImage() {
		return
	}
	if a.preview.State() == core.PreviewActive {
		a.preview.Discard()
		a.controls.ResetSliders()
		a.showCurrent()
	}

	err := a.runner.Submit(context.Background(), step, func(res core.Result) {
		fyne.Do(func() { a.onResult(res) })
	})
	if errors.Is(err, core.ErrBusy) {
		a.status.SetText("Busy: another operation is still running.")
		return
	}
	if err != nil {
		a.showError("Operation Failed", err)
		return
	}
	a.controls.SetBusy(true)
	a.status.SetText(fmt.Sprintf("Applying %s...", step.Name))
}

func (a *Application) onResult(res core.Result) {
	a.controls.SetBusy(false)
	switch {
	case res.Err != nil:
		a.showError("Operation Failed", res.Err)
		a.refreshStatus()
	case res.Stale:
		a.logger.WithField("step", res.Step.String()).Info("Result discarded after newer edit")
		a.refreshStatus()
	default:
		a.afterHistoryChange()
	}
}

// Preview shows step applied to the frozen reference without committing.
func (a *Application) Preview(step algorithms.Step) {
	if !a.history.HasImage() {
		return
	}
	display, err := a.preview.Update(step)
	if err != nil {
		a.logger.WithError(err).Warn("Preview failed")
		return
	}
	a.canvas.Show(display)
	a.status.SetText(core.StatusText(a.history.SourcePath(), display.Cols(), display.Rows()) + " (preview)")
}

// CommitPreview records the previewed adjustment in history.
func (a *Application) CommitPreview() {
	err := a.preview.Commit()
	switch {
	case errors.Is(err, core.ErrNoPreview):
		return
	case errors.Is(err, core.ErrStaleResult):
		a.status.SetText("Preview discarded: the image changed.")
	case err != nil:
		a.showError("Apply Failed", err)
	}
	a.afterHistoryChange()
}

// DiscardPreview drops the preview and shows the current image again.
func (a *Application) DiscardPreview() {
	a.preview.Discard()
	a.afterHistoryChange()
}

// afterHistoryChange ends any preview, resets the sliders and redraws.
func (a *Application) afterHistoryChange() {
	a.preview.Discard()
	a.controls.ResetSliders()
	canUndo, canRedo := a.history.CanUndo(), a.history.CanRedo()
	a.controls.SetHistoryState(canUndo, canRedo)
	a.menuHandler.SetHistoryState(canUndo, canRedo)
	a.showCurrent()
	a.refreshStatus()
}

func (a *Application) showCurrent() {
	_ = a.history.View(func(current, _ gocv.Mat) {
		a.canvas.Show(current)
	})
}

func (a *Application) refreshStatus() {
	info, err := a.history.Info()
	if err != nil {
		a.status.SetText("No image loaded.")
		return
	}

	text := core.StatusText(info.Path, info.Width, info.Height)
	text += fmt.Sprintf(" | undo %d / redo %d", info.UndoDepth, info.RedoDepth)

	_ = a.history.View(func(current, original gocv.Mat) {
		if summary := metrics.Summary(a.metrics.CalculateAll(original, current)); summary != "" {
			text += " | " + summary
		}
	})
	a.status.SetText(text)
}

func (a *Application) ensureImage() bool {
	if a.history.HasImage() {
		return true
	}
	dialog.ShowInformation("Warning", "Please open an image first.", a.window)
	return false
}

func (a *Application) showError(title string, err error) {
	a.logger.WithError(err).Error(title)
	dialog.ShowError(err, a.window)
}

func (a *Application) confirmExit() {
	dialog.ShowConfirm("Exit", "Do you really want to exit?", func(ok bool) {
		if ok {
			a.window.Close()
		}
	}, a.window)
}

func (a *Application) shutdown() {
	a.runner.Wait()
	a.preview.Close()
	a.history.Close()
	a.logger.Info("Editor window closed")
}
