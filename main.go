package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"feedscroll/internal/config"
	"feedscroll/internal/domain"
	"feedscroll/internal/eventbus"
	"feedscroll/internal/paging"
	"feedscroll/internal/scrollview"
	"feedscroll/internal/source"
	"feedscroll/internal/ui"
)

func main() {
	var configPath string
	var verbose bool
	flag.StringVar(&configPath, "config", config.DefaultFileName, "Path to the config file")
	flag.StringVar(&configPath, "c", config.DefaultFileName, "Path to the config file (shorthand)")
	flag.BoolVar(&verbose, "v", false, "Enable debug logging")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	// The TUI owns the terminal, so logs go to a file.
	logFile, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Could not open log file: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()
	logger.SetOutput(logFile)

	if err := run(logger, cfg); err != nil {
		logger.WithError(err).Error("Exiting with error")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(logger *logrus.Logger, cfg *config.Config) error {
	bus := eventbus.New(logger)
	defer bus.Close()

	svc, err := source.NewService(logger, bus, cfg.Feed)
	if err != nil {
		return fmt.Errorf("failed to start feed service: %w", err)
	}
	defer svc.Stop()

	tracker := scrollview.NewTracker()
	anchor := scrollview.NewAnchor()

	var firstPrev *domain.PageKey
	if cfg.Paging.StartPage > 0 {
		prev := cfg.Paging.StartPage - 1
		firstPrev = &prev
	}

	// Deferred trigger re-arming is routed back onto the bubbletea
	// update loop; p is assigned below, before Start lets any paging
	// activity begin.
	var p *tea.Program
	ctrl := paging.NewController[domain.PageKey, domain.FeedItem](logger, paging.Config[domain.PageKey]{
		FirstPageKey:           cfg.Paging.StartPage,
		FirstPreviousPageKey:   firstPrev,
		NextItemsThreshold:     cfg.Paging.NextItemsThreshold,
		PreviousItemsThreshold: cfg.Paging.PreviousItemsThreshold,
		Schedule: func(fn func()) {
			p.Send(ui.DeferredMsg{Fn: fn})
		},
	})
	defer ctrl.Close()
	ctrl.AttachViewport(tracker, anchor)

	// Controller notifications cross onto the bus; the bus forwards
	// them into the program as messages so all UI mutation stays on
	// the bubbletea update loop.
	ctrl.AddPageRequestListener(func(ctx context.Context, key domain.PageKey, direction paging.Direction) {
		bus.Publish(domain.PageRequestedEvent{
			Ctx:       ctx,
			Key:       key,
			Direction: direction.String(),
			Version:   ctrl.Version(),
		})
	})
	ctrl.AddStatusListener(func(status paging.Status) {
		bus.Publish(domain.StatusChangedEvent{Status: status.String()})
	})
	ctrl.AddBuildListener(func(itemCount int, hasNext, hasPrev bool) {
		logger.WithFields(logrus.Fields{
			"items":    itemCount,
			"has_next": hasNext,
			"has_prev": hasPrev,
		}).Debug("Page build completed")
	})

	model := ui.NewModel(logger, bus, cfg, ctrl, tracker, anchor)
	p = tea.NewProgram(model, tea.WithAltScreen())

	eventChan := make(chan eventbus.DomainEvent, 100)
	forward := func(e eventbus.DomainEvent) {
		select {
		case eventChan <- e:
		default:
			logger.WithField("event", e.Type()).Warn("Event channel full, dropping event")
		}
	}
	bus.Subscribe(domain.EventPageLoaded, forward)
	bus.Subscribe(domain.EventPageFailed, forward)
	bus.Subscribe(domain.EventStatusChanged, forward)
	bus.Subscribe(domain.EventRefreshRequested, func(e eventbus.DomainEvent) {
		logger.Info("Feed refresh requested")
	})

	go func() {
		for e := range eventChan {
			p.Send(ui.EventMsg{Event: e})
		}
	}()

	// The first fetch is driven by the initial status notification.
	ctrl.Start()

	logger.Info("Starting feedscroll")
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("program error: %w", err)
	}
	return nil
}
