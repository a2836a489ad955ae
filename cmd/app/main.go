// Image Editor - Interactive Raster Editing
// License: MIT
// Version: 1.0.0 - History + Live Preview + Background Removal

package main

import (
	"flag"
	"os"

	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/theme"
	"github.com/sirupsen/logrus"

	"image-editor/internal/config"
	"image-editor/internal/gui"
)

const (
	AppName    = "Image Editor"
	AppID      = "com.example.image-editor"
	AppVersion = "1.0.0"
)

func main() {
	// Parse command line flags
	debugMode := flag.Bool("debug", false, "Enable debug mode with verbose logging")
	configPath := flag.String("config", "", "Path to a TOML configuration file")
	openPath := flag.String("open", "", "Image to open on start, or the batch input with -apply")
	applySteps := flag.String("apply", "", "Comma-separated operations to run headless, e.g. grayscale,rotate=90")
	outPath := flag.String("out", "", "Output path for headless mode (defaults to the input path)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}

	logger := cfg.NewLogger(*debugMode)
	logger.WithFields(logrus.Fields{
		"version":    AppVersion,
		"debug_mode": *debugMode,
		"config":     *configPath,
	}).Info("Starting " + AppName)

	if *applySteps != "" {
		if err := runBatch(logger, *openPath, *applySteps, *outPath); err != nil {
			logger.WithError(err).Error("Batch run failed")
			os.Exit(1)
		}
		os.Exit(0)
	}

	myApp := app.NewWithID(AppID)
	myApp.SetIcon(theme.DocumentIcon())
	myApp.Settings().SetTheme(theme.DefaultTheme())

	mainApp := gui.NewApplication(myApp, cfg, logger)
	if *openPath != "" {
		mainApp.OpenPath(*openPath)
	}
	mainApp.ShowAndRun()

	logger.Info("Application shutting down gracefully")
	os.Exit(0)
}
