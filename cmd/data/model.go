package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"

	engine "github.com/rxtech-lab/argo-replay/internal/backtest/engine/engine_v1"
	"github.com/rxtech-lab/argo-replay/internal/feed"
	"github.com/rxtech-lab/argo-replay/internal/types"
)

// Application states.
const (
	StateStrategySelect = iota
	StateSymbolInput
	StateTimespanSelect
	StateDataDisplay
)

const (
	replayTicks = 500
	replayDelay = 50 * time.Millisecond
)

// Model is the Bubble Tea model of the replay viewer.
type Model struct {
	state        int
	strategyList list.Model
	symbolInput  textinput.Model
	timespanList list.Model
	dataTable    table.Model
	ticks        map[string]types.Tick
	prevPrices   map[string]decimal.Decimal
	positions    map[string]types.Position
	symbols      []string
	strategy     string
	timespan     feed.Timespan
	current      int
	total        int
	result       *engine.BacktestResult
	err          error
	width        int
	height       int

	replayCancel context.CancelFunc
	program      Sender
	seed         int64
}

// NewModel creates a Model at strategy selection.
func NewModel() Model {
	return Model{
		state:        StateStrategySelect,
		strategyList: NewStrategyList(),
		symbolInput:  NewSymbolInput(),
		timespanList: NewTimespanList(),
		dataTable:    NewDataTable(),
		ticks:        make(map[string]types.Tick),
		prevPrices:   make(map[string]decimal.Decimal),
		positions:    make(map[string]types.Position),
		seed:         42,
	}
}

// SetProgram sets where the replay goroutine sends its messages.
func (m *Model) SetProgram(p Sender) {
	m.program = p
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) stopReplay() {
	if m.replayCancel != nil {
		m.replayCancel()
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.stopReplay()

			return m, tea.Quit
		case "q":
			if m.state != StateSymbolInput {
				m.stopReplay()

				return m, tea.Quit
			}
		case "esc":
			return m.handleEsc()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.strategyList.SetSize(msg.Width, msg.Height-4)
		m.timespanList.SetSize(msg.Width, msg.Height-4)
		m.dataTable.SetWidth(msg.Width)
		m.dataTable.SetHeight(msg.Height - 8)

		return m, nil

	case SnapshotMsg:
		for _, tick := range msg.Ticks {
			if existing, ok := m.ticks[tick.Symbol]; ok && !existing.Timestamp.Equal(tick.Timestamp) {
				m.prevPrices[tick.Symbol] = existing.LastPrice
			}

			m.ticks[tick.Symbol] = tick
		}

		m.positions = msg.Positions
		m.current = msg.Current
		m.total = msg.Total
		m.dataTable = UpdateTableRows(m.dataTable, m.ticks, m.prevPrices, m.positions)

		return m, nil

	case ReplayErrorMsg:
		m.err = msg.Err

		return m, nil

	case ReplayDoneMsg:
		m.result = &msg.Result

		return m, nil

	case ReplayStartedMsg:
		m.state = StateDataDisplay

		return m, nil
	}

	switch m.state {
	case StateStrategySelect:
		return m.updateStrategySelect(msg)
	case StateSymbolInput:
		return m.updateSymbolInput(msg)
	case StateTimespanSelect:
		return m.updateTimespanSelect(msg)
	case StateDataDisplay:
		return m.updateDataDisplay(msg)
	}

	return m, nil
}

func (m Model) handleEsc() (tea.Model, tea.Cmd) {
	switch m.state {
	case StateSymbolInput:
		m.state = StateStrategySelect
	case StateTimespanSelect:
		m.state = StateSymbolInput
		m.symbolInput.Focus()
	case StateDataDisplay:
		m.stopReplay()
		m.replayCancel = nil
		m.ticks = make(map[string]types.Tick)
		m.prevPrices = make(map[string]decimal.Decimal)
		m.positions = make(map[string]types.Position)
		m.symbols = nil
		m.timespan = ""
		m.current, m.total = 0, 0
		m.result = nil
		m.err = nil
		m.symbolInput.Reset()
		m.symbolInput.Focus()
		m.state = StateSymbolInput

		return m, textinput.Blink
	}

	return m, nil
}

func (m Model) updateStrategySelect(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "enter" {
		if item, ok := m.strategyList.SelectedItem().(listItem); ok {
			m.strategy = item.name
			m.state = StateSymbolInput
			m.symbolInput.Focus()

			return m, textinput.Blink
		}
	}

	var cmd tea.Cmd
	m.strategyList, cmd = m.strategyList.Update(msg)

	return m, cmd
}

func (m Model) updateSymbolInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "enter" {
		if symbols := ParseSymbols(m.symbolInput.Value()); len(symbols) > 0 {
			m.symbols = symbols
			m.state = StateTimespanSelect
			m.symbolInput.Blur()

			return m, nil
		}
	}

	var cmd tea.Cmd
	m.symbolInput, cmd = m.symbolInput.Update(msg)

	return m, cmd
}

func (m Model) updateTimespanSelect(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "enter" {
		if item, ok := m.timespanList.SelectedItem().(listItem); ok {
			m.timespan = feed.Timespan(item.name)
			m.state = StateDataDisplay

			ctx, cancel := context.WithCancel(context.Background())
			m.replayCancel = cancel

			return m, m.startReplay(ctx)
		}
	}

	var cmd tea.Cmd
	m.timespanList, cmd = m.timespanList.Update(msg)

	return m, cmd
}

func (m Model) updateDataDisplay(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.dataTable, cmd = m.dataTable.Update(msg)

	return m, cmd
}

// startReplay returns a command that launches the replay goroutine.
func (m Model) startReplay(ctx context.Context) tea.Cmd {
	config := ReplayConfig{
		Strategy: m.strategy,
		Symbols:  m.symbols,
		Timespan: m.timespan,
		Seed:     m.seed,
		Count:    replayTicks,
		Delay:    replayDelay,
	}
	p := m.program

	return func() tea.Msg {
		if p == nil {
			return ReplayErrorMsg{Err: fmt.Errorf("program not set")}
		}

		go runReplay(ctx, p, config)

		return ReplayStartedMsg{}
	}
}

// View implements tea.Model.
func (m Model) View() string {
	var s strings.Builder

	switch m.state {
	case StateStrategySelect:
		s.WriteString(TitleStyle.Render("Argo Replay"))
		s.WriteString("\n\n")
		s.WriteString(m.strategyList.View())
		s.WriteString("\n")
		s.WriteString(HelpStyle.Render("Press Enter to select, q to quit"))

	case StateSymbolInput:
		s.WriteString(TitleStyle.Render("Enter Symbols"))
		s.WriteString("\n\n")
		s.WriteString(fmt.Sprintf("Enter comma-separated symbols to replay with %s (e.g., AAPL,MSFT):\n\n", m.strategy))
		s.WriteString(m.symbolInput.View())
		s.WriteString("\n\n")
		s.WriteString(HelpStyle.Render("Press Enter to confirm, Esc to go back"))

	case StateTimespanSelect:
		s.WriteString(m.timespanList.View())
		s.WriteString("\n")
		s.WriteString(HelpStyle.Render("Press Enter to select, Esc to go back"))

	case StateDataDisplay:
		s.WriteString(TitleStyle.Render(fmt.Sprintf("Replay - %s (%s)", m.strategy, m.timespan)))
		s.WriteString("\n\n")

		if m.err != nil {
			s.WriteString(ErrorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
			s.WriteString("\n\n")
		}

		if len(m.ticks) == 0 {
			s.WriteString("Waiting for data...\n")
		} else {
			s.WriteString(m.dataTable.View())
			s.WriteString("\n")
			s.WriteString(fmt.Sprintf("Snapshot %d/%d\n", m.current, m.total))
		}

		if m.result != nil {
			s.WriteString(fmt.Sprintf("Done: %d fills, realized %s, unrealized %s\n",
				m.result.OrdersFilled, m.result.TotalRealizedPnL.StringFixed(2), m.result.TotalUnrealizedPnL.StringFixed(2)))
		}

		s.WriteString("\n")
		s.WriteString(HelpStyle.Render(fmt.Sprintf("q: quit | Esc: back | Replaying: %s", strings.Join(m.symbols, ", "))))
	}

	return s.String()
}
