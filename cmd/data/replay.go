package main

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	engine_types "github.com/rxtech-lab/argo-replay/internal/backtest/engine"
	engine "github.com/rxtech-lab/argo-replay/internal/backtest/engine/engine_v1"
	"github.com/rxtech-lab/argo-replay/internal/feed"
	"github.com/rxtech-lab/argo-replay/internal/logger"
	"github.com/rxtech-lab/argo-replay/internal/strategy"
	"github.com/rxtech-lab/argo-replay/internal/types"
)

// ReplayConfig describes one interactive replay.
type ReplayConfig struct {
	Strategy string
	Symbols  []string
	Timespan feed.Timespan
	Seed     int64
	Count    int
	// Delay paces the replay so the table is readable.
	Delay time.Duration
}

// Sender is the part of tea.Program the replay talks to.
type Sender interface {
	Send(msg tea.Msg)
}

// runReplay replays a synthetic feed through the strategy and sends one
// SnapshotMsg per snapshot, then ReplayDoneMsg or ReplayErrorMsg.
func runReplay(ctx context.Context, p Sender, config ReplayConfig) {
	f, err := feed.NewSourceFeed(feed.SourceConfig{
		Source:   feed.SourceGenerator,
		Symbols:  config.Symbols,
		Timespan: config.Timespan,
		Seed:     config.Seed,
		Count:    config.Count,
	}, logger.NewNopLogger())
	if err != nil {
		p.Send(ReplayErrorMsg{Err: err})

		return
	}

	s, err := strategy.NewStrategy(config.Strategy, config.Symbols[0], nil)
	if err != nil {
		p.Send(ReplayErrorMsg{Err: err})

		return
	}

	backtester, err := engine.NewBacktester(engine.EmptyConfig(), s, f, logger.NewNopLogger())
	if err != nil {
		p.Send(ReplayErrorMsg{Err: err})

		return
	}

	onProcess := engine_types.OnProcessDataCallback(func(current, total int) error {
		ticks := make([]types.Tick, 0, len(config.Symbols))

		for _, symbol := range config.Symbols {
			if tick, err := backtester.Tick(symbol); err == nil {
				ticks = append(ticks, tick)
			}
		}

		p.Send(SnapshotMsg{Ticks: ticks, Positions: backtester.Positions(), Current: current, Total: total})

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(config.Delay):
			return nil
		}
	})

	err = backtester.Run(ctx, engine_types.LifecycleCallbacks{
		OnBacktestStart: nil,
		OnBacktestEnd:   nil,
		OnProcessData:   &onProcess,
		OnOrderFilled:   nil,
	})

	if ctx.Err() != nil {
		return
	}

	if err != nil {
		p.Send(ReplayErrorMsg{Err: err})

		return
	}

	p.Send(ReplayDoneMsg{Result: backtester.Result()})
}
