package main

import (
	engine "github.com/rxtech-lab/argo-replay/internal/backtest/engine/engine_v1"
	"github.com/rxtech-lab/argo-replay/internal/types"
)

// SnapshotMsg carries the market state after one replayed snapshot.
type SnapshotMsg struct {
	Ticks     []types.Tick
	Positions map[string]types.Position
	Current   int
	Total     int
}

// ReplayErrorMsg indicates the replay stopped with an error.
type ReplayErrorMsg struct {
	Err error
}

// ReplayStartedMsg signals that the replay goroutine is running.
type ReplayStartedMsg struct{}

// ReplayDoneMsg carries the summary of a finished replay.
type ReplayDoneMsg struct {
	Result engine.BacktestResult
}
