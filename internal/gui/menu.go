// Menu handler for application actions
package gui

import (
	stdio "io"
	"path/filepath"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"image-editor/internal/algorithms"
	"image-editor/internal/io"
)

// MenuHandler handles menu actions
type MenuHandler struct {
	app *Application

	undoItem *fyne.MenuItem
	redoItem *fyne.MenuItem
}

var (
	undoShortcut = &desktop.CustomShortcut{KeyName: fyne.KeyZ, Modifier: fyne.KeyModifierShortcutDefault}
	redoShortcut = &desktop.CustomShortcut{KeyName: fyne.KeyY, Modifier: fyne.KeyModifierShortcutDefault}
	openShortcut = &desktop.CustomShortcut{KeyName: fyne.KeyO, Modifier: fyne.KeyModifierShortcutDefault}
	saveShortcut = &desktop.CustomShortcut{KeyName: fyne.KeyS, Modifier: fyne.KeyModifierShortcutDefault}
)

func NewMenuHandler(app *Application) *MenuHandler {
	return &MenuHandler{app: app}
}

func (mh *MenuHandler) GetMainMenu() *fyne.MainMenu {
	openItem := fyne.NewMenuItem("Open Image...", mh.openImage)
	openItem.Shortcut = openShortcut
	saveItem := fyne.NewMenuItem("Save", mh.app.Save)
	saveItem.Shortcut = saveShortcut

	// File menu
	fileMenu := fyne.NewMenu("File",
		openItem,
		saveItem,
		fyne.NewMenuItem("Save As...", mh.saveImageAs),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Exit", mh.app.confirmExit),
	)
	// fyne appends its own Quit item to the first menu unless one is marked.
	fileMenu.Items[len(fileMenu.Items)-1].IsQuit = true

	mh.undoItem = fyne.NewMenuItem("Undo", mh.app.Undo)
	mh.undoItem.Shortcut = undoShortcut
	mh.redoItem = fyne.NewMenuItem("Redo", mh.app.Redo)
	mh.redoItem.Shortcut = redoShortcut

	// Edit menu
	editMenu := fyne.NewMenu("Edit",
		mh.undoItem,
		mh.redoItem,
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Apply Preview", mh.app.CommitPreview),
		fyne.NewMenuItem("Discard Preview", mh.app.DiscardPreview),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Revert to Original", mh.app.RevertToOriginal),
	)

	// Help menu
	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", mh.showAbout),
	)

	return fyne.NewMainMenu(fileMenu, editMenu, helpMenu)
}

// RegisterShortcuts binds the keyboard shortcuts to the window canvas.
func (mh *MenuHandler) RegisterShortcuts(c fyne.Canvas) {
	c.AddShortcut(undoShortcut, func(fyne.Shortcut) { mh.app.Undo() })
	c.AddShortcut(redoShortcut, func(fyne.Shortcut) { mh.app.Redo() })
	c.AddShortcut(openShortcut, func(fyne.Shortcut) { mh.openImage() })
	c.AddShortcut(saveShortcut, func(fyne.Shortcut) { mh.app.Save() })
}

// SetHistoryState enables Undo and Redo according to the stack depths.
func (mh *MenuHandler) SetHistoryState(canUndo, canRedo bool) {
	if mh.undoItem == nil {
		return
	}
	mh.undoItem.Disabled = !canUndo
	mh.redoItem.Disabled = !canRedo
	mh.app.window.MainMenu().Refresh()
}

func (mh *MenuHandler) openImage() {
	mh.app.logger.Info("Opening file dialog for image selection")

	fileDialog := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			mh.app.showError("File Dialog Error", err)
			return
		}
		if reader == nil {
			return
		}
		defer reader.Close()

		path := reader.URI().Path()
		data, err := stdio.ReadAll(reader)
		if err != nil {
			mh.app.showError("Failed to Read Image", err)
			return
		}

		mh.app.logger.WithField("filepath", path).Info("Loading selected image")
		mh.app.OpenData(data, path)
	}, mh.app.window)

	fileDialog.SetFilter(storage.NewExtensionFileFilter(io.SupportedExtensions()))
	fileDialog.Show()
}

func (mh *MenuHandler) saveImageAs() {
	if !mh.app.ensureImage() {
		return
	}

	mh.app.logger.Info("Opening file dialog for image saving")

	fileDialog := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			mh.app.showError("File Dialog Error", err)
			return
		}
		if writer == nil {
			return
		}
		uri := writer.URI()
		writer.Close()

		path := io.EnsureExtension(uri.Path())
		if path != uri.Path() {
			// The dialog already created the extensionless file.
			if err := storage.Delete(uri); err != nil {
				mh.app.logger.WithError(err).Warn("Failed to remove placeholder file")
			}
		}

		mh.app.logger.WithField("filepath", path).Info("Saving image")
		mh.app.SaveAs(path)
	}, mh.app.window)

	name := "edited_image.jpg"
	if source := mh.app.history.SourcePath(); source != "" {
		name = filepath.Base(source)
	}
	fileDialog.SetFileName(name)
	fileDialog.SetFilter(storage.NewExtensionFileFilter(io.SupportedExtensions()))
	fileDialog.Show()
}

func (mh *MenuHandler) showAbout() {
	content := container.NewVBox(
		widget.NewLabel("Image Editor"),
		widget.NewSeparator(),
		widget.NewLabel("Non-destructive editing with undo, redo and live preview."),
		widget.NewLabel("Operations:"),
	)
	for _, name := range algorithms.Names() {
		content.Add(widget.NewLabel("  " + name))
	}
	content.Add(widget.NewSeparator())
	content.Add(widget.NewLabel("Built with Go, Fyne v2.6, and OpenCV"))

	aboutDialog := dialog.NewCustom("About", "Close", content, mh.app.window)
	aboutDialog.Resize(fyne.NewSize(400, 300))
	aboutDialog.Show()
}
