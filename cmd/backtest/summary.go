package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	engine "github.com/rxtech-lab/argo-replay/internal/backtest/engine/engine_v1"
)

// Style definitions.
var (
	titleStyle = lipgloss.NewStyle().Bold(true)

	labelStyle = lipgloss.NewStyle().Faint(true).Width(18)

	gainStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))

	lossStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))

	errorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1"))

	boxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

func formatPnL(value decimal.Decimal) string {
	s := value.StringFixed(2)

	switch value.Sign() {
	case 1:
		return gainStyle.Render("+" + s)
	case -1:
		return lossStyle.Render(s)
	default:
		return s
	}
}

func row(label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(label), value)
}

// renderSummary formats a run result for the terminal.
func renderSummary(result engine.BacktestResult, runErr error) string {
	lines := []string{
		titleStyle.Render(fmt.Sprintf("Backtest %s", result.RunID)),
		row("Strategy", result.Strategy),
		row("Feed", result.Feed),
		row("Snapshots", fmt.Sprintf("%d", result.Snapshots)),
		row("Orders", fmt.Sprintf("%d submitted, %d filled, %d pending",
			result.OrdersSubmitted, result.OrdersFilled, result.OrdersPending)),
		row("Realized P&L", formatPnL(result.TotalRealizedPnL)),
		row("Unrealized P&L", formatPnL(result.TotalUnrealizedPnL)),
	}

	if !result.StartTime.IsZero() {
		lines = append(lines, row("Period", fmt.Sprintf("%s to %s",
			result.StartTime.Format("2006-01-02 15:04"), result.EndTime.Format("2006-01-02 15:04"))))
	}

	for _, position := range result.Positions {
		lines = append(lines, row(position.Symbol, fmt.Sprintf("net %d, realized %s, unrealized %s",
			position.Net, formatPnL(position.RealizedPnL), formatPnL(position.UnrealizedPnL))))
	}

	if runErr != nil {
		lines = append(lines, errorStyle.Render("Error: "+runErr.Error()))
	}

	return boxStyle.Render(strings.Join(lines, "\n"))
}
