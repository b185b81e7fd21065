package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/rxtech-lab/argo-replay/internal/feed"
	"github.com/rxtech-lab/argo-replay/internal/strategy"
	"github.com/rxtech-lab/argo-replay/internal/types"
)

// listItem implements list.Item for the strategy and timespan lists.
type listItem struct {
	name        string
	description string
}

func (i listItem) Title() string       { return i.name }
func (i listItem) Description() string { return i.description }
func (i listItem) FilterValue() string { return i.name }

func newList(title string, items []list.Item) list.Model {
	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = true

	l := list.New(items, delegate, 0, 0)
	l.Title = title
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)

	return l
}

// NewStrategyList lists every registered strategy.
func NewStrategyList() list.Model {
	descriptions := map[string]string{
		strategy.MeanRevertingName:      "Trade z-score extremes of close-to-close returns",
		strategy.ConsecutiveCandlesName: "Follow runs of rising or falling candles",
	}

	items := make([]list.Item, 0, len(strategy.Names()))
	for _, name := range strategy.Names() {
		items = append(items, listItem{name: name, description: descriptions[name]})
	}

	return newList("Select Strategy", items)
}

// NewTimespanList lists the bar sizes the synthetic feed can step by.
func NewTimespanList() list.Model {
	timespans := []feed.Timespan{
		feed.TimespanOneMinute, feed.TimespanFiveMinutes, feed.TimespanFifteenMinutes,
		feed.TimespanOneHour, feed.TimespanFourHours, feed.TimespanOneDay,
	}

	items := make([]list.Item, 0, len(timespans))
	for _, t := range timespans {
		items = append(items, listItem{name: string(t), description: fmt.Sprintf("%s bars", t.Duration())})
	}

	return newList("Select Interval", items)
}

// NewSymbolInput creates the text input for symbol entry.
func NewSymbolInput() textinput.Model {
	ti := textinput.New()
	ti.Placeholder = "AAPL,MSFT"
	ti.Focus()
	ti.CharLimit = 200
	ti.Width = 50
	ti.Prompt = "> "

	return ti
}

// ParseSymbols parses comma-separated symbols into upper case.
func ParseSymbols(input string) []string {
	parts := strings.Split(input, ",")
	symbols := make([]string, 0, len(parts))

	for _, p := range parts {
		s := strings.TrimSpace(strings.ToUpper(p))
		if s != "" {
			symbols = append(symbols, s)
		}
	}

	return symbols
}

// NewDataTable creates the table of per-symbol market and position state.
func NewDataTable() table.Model {
	columns := []table.Column{
		{Title: "Symbol", Width: 10},
		{Title: "Price", Width: 16},
		{Title: "Open", Width: 12},
		{Title: "Volume", Width: 10},
		{Title: "Time", Width: 17},
		{Title: "Net", Width: 8},
		{Title: "Unrealized", Width: 12},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)

	t.SetStyles(s)

	return t
}

// UpdateTableRows renders one row per symbol, sorted.
func UpdateTableRows(t table.Model, ticks map[string]types.Tick, prevPrices map[string]decimal.Decimal, positions map[string]types.Position) table.Model {
	symbols := make([]string, 0, len(ticks))
	for symbol := range ticks {
		symbols = append(symbols, symbol)
	}

	sort.Strings(symbols)

	rows := make([]table.Row, 0, len(ticks))

	for _, symbol := range symbols {
		tick := ticks[symbol]
		position := positions[symbol]

		rows = append(rows, table.Row{
			symbol,
			FormatPriceWithColor(tick.LastPrice, prevPrices[symbol]),
			tick.OpenPrice.StringFixed(4),
			fmt.Sprintf("%d", tick.Volume),
			tick.Timestamp.Format("2006-01-02 15:04"),
			fmt.Sprintf("%d", position.Net),
			position.UnrealizedPnL.StringFixed(2),
		})
	}

	t.SetRows(rows)

	return t
}
