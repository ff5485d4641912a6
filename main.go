// Package main provides the entry point for the Slice Annotator application.
package main

import (
	"log"
	"os"
	"path/filepath"

	appstate "slice-annotator/internal/app"
	"slice-annotator/internal/editor"
	"slice-annotator/internal/version"
	"slice-annotator/pkg/config"
	"slice-annotator/ui/mainwindow"

	fyneapp "fyne.io/fyne/v2/app"
)

const appTitle = "Slice Annotator"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("Starting %s v%s", appTitle, version.Version)

	cfg, err := config.LoadConfig(defaultConfigPath())
	if err != nil {
		log.Printf("Config: %v, using defaults", err)
		cfg = config.DefaultConfig()
	}

	state := appstate.NewState(cfg)

	opts := editor.DefaultOptions()
	opts.VertexHitRadiusPx = cfg.Editor.VertexHitRadiusPx
	opts.PlaneAngleWarnDeg = cfg.Editor.PlaneAngleWarnDeg
	ed := editor.New(state.Images, state.Annotations, state.Views, state.Clipboard, opts)

	fyneApp := fyneapp.NewWithID("io.sliceannotator.app")
	win := mainwindow.New(fyneApp, state, ed)

	// Handle command line arguments
	if len(os.Args) > 1 {
		projectPath := os.Args[1]
		if err := state.LoadProject(projectPath); err != nil {
			log.Printf("Failed to load project %s: %v", projectPath, err)
		}
	}

	win.ShowAndRun()
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "slice-annotator.yaml"
	}
	return filepath.Join(home, ".config", "slice-annotator", "config.yaml")
}
