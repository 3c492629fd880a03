package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"phphint/internal/driver"
	"phphint/internal/ui"
)

type dirOutcome struct {
	results []driver.FileResult
	err     error
}

// runDirWithUI runs DiagnoseDir while a progress view renders on stdout.
func runDirWithUI(ctx context.Context, title, dir string, opts driver.DiagnoseOptions) ([]driver.FileResult, error) {
	files, err := driver.ListFiles(dir, opts.Config)
	if err != nil {
		return nil, err
	}
	events := make(chan driver.Progress, 256)
	outcomeCh := make(chan dirOutcome, 1)

	go func() {
		opts.Progress = func(p driver.Progress) { events <- p }
		res, err := driver.DiagnoseDir(ctx, dir, opts)
		outcomeCh <- dirOutcome{results: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout), tea.WithContext(ctx))
	_, uiErr := program.Run()
	if uiErr != nil {
		// keep the workers from blocking on a view that is gone
		go func() {
			for range events {
			}
		}()
	}
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.results, uiErr
	}
	return outcome.results, outcome.err
}
