package main

import (
	"errors"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"picomap/internal/snapshot"
	"picomap/internal/ui"
)

func newPreviewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "preview <snapshot.toml>",
		Short: "Explore a snapshot interactively in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !isTerminal(os.Stdin) || !isTerminal(os.Stdout) {
				return errors.New("preview needs an interactive terminal")
			}
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			_, cleanup, err := setupTracing(cmd, cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			snap, err := snapshot.Load(args[0])
			if err != nil {
				return err
			}
			if snap.Smoothing == "" {
				snap.Smoothing = cfg.Render.Smoothing
			}

			model := ui.NewPreviewModel(filepath.Base(args[0]), snap)
			_, err = tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
			if errors.Is(err, tea.ErrProgramKilled) {
				return nil
			}
			return err
		},
	}
}
