package main

import (
	"context"
	"errors"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"jeff/internal/driver"
	"jeff/internal/ui"
)

// errInterrupted is returned when the progress UI was closed before the
// check finished.
var errInterrupted = errors.New("check interrupted")

type checkOutcome struct {
	results []*driver.Result
	err     error
}

func runCheckWithUI(ctx context.Context, title string, files []string, opts driver.Options) ([]*driver.Result, error) {
	return checkWithProgress(ctx, files, opts, func(ctx context.Context, events <-chan driver.Event) error {
		model := ui.NewProgressModel(title, files, events)
		program := tea.NewProgram(model, tea.WithOutput(os.Stdout), tea.WithContext(ctx))
		_, err := program.Run()
		return err
	})
}

// checkWithProgress runs the check in the background while show renders its
// events. When show returns before the check is done, the check is cancelled.
func checkWithProgress(ctx context.Context, files []string, opts driver.Options,
	show func(context.Context, <-chan driver.Event) error) ([]*driver.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := make(chan driver.Event, 256)
	outcomeCh := make(chan checkOutcome, 1)

	go func() {
		optsCopy := opts
		optsCopy.Progress = driver.ChannelSink{Ch: events}
		res, err := driver.CheckFiles(ctx, files, optsCopy)
		outcomeCh <- checkOutcome{results: res, err: err}
		close(events)
	}()

	uiErr := show(ctx, events)
	// UI мог выйти раньше (ctrl+c): останавливаем проверку и дочитываем
	// события, чтобы она не встала на канале
	cancel()
	go func() {
		for range events {
		}
	}()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.results, uiErr
	}
	if errors.Is(outcome.err, context.Canceled) {
		return outcome.results, errInterrupted
	}
	return outcome.results, outcome.err
}
