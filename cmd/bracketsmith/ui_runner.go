package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/CostaMateus/bracketsmith/internal/driver"
	"github.com/CostaMateus/bracketsmith/internal/ui"
)

type formatOutcome struct {
	results []driver.FormatResult
	summary *driver.Summary
	err     error
}

// runFormatWithUI collects the file list up front so the progress view can
// show every file, then formats in the background while the TUI consumes
// events.
func runFormatWithUI(ctx context.Context, title string, paths []string, opts driver.FormatOptions) ([]driver.FormatResult, *driver.Summary, error) {
	files, err := driver.CollectFiles(ctx, paths, opts.Files)
	if err != nil {
		return nil, nil, err
	}
	if len(files) == 0 {
		return driver.FormatPaths(ctx, paths, opts)
	}

	events := make(chan driver.Event, 256)
	outcomeCh := make(chan formatOutcome, 1)

	go func() {
		optsCopy := opts
		optsCopy.Progress = driver.ChannelSink{Ch: events}
		results, summary, runErr := driver.FormatFiles(ctx, files, optsCopy)
		outcomeCh <- formatOutcome{results: results, summary: summary, err: runErr}
		close(events)
	}()

	model := ui.NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.results, outcome.summary, uiErr
	}
	return outcome.results, outcome.summary, outcome.err
}
