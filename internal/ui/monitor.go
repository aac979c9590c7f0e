// internal/ui/monitor.go
//
// Package ui renders the console monitor: a one-line price feed plus worker
// status lines. It is a display sink only; all state arrives from the
// coordinator.
package ui

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

var (
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	mintStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("81")).Bold(true)
	priceStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("114"))
	mcapStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	migrateStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	buyStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	sellStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	errStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// Monitor writes styled status lines to a single writer.
type Monitor struct {
	mu  sync.Mutex
	out io.Writer
}

// NewMonitor renders to stdout.
func NewMonitor() *Monitor {
	return &Monitor{out: os.Stdout}
}

// NewMonitorWriter renders to w; used by tests.
func NewMonitorWriter(w io.Writer) *Monitor {
	return &Monitor{out: w}
}

func (m *Monitor) println(line string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fmt.Fprintln(m.out, line)
}

// PriceUpdate renders the rolling market line.
func (m *Monitor) PriceUpdate(symbol string, priceSol, mcapUSD float64, migrated bool) {
	venue := "curve"
	if migrated {
		venue = "amm"
	}
	m.println(fmt.Sprintf("%s %s %s %s %s",
		mintStyle.Render(symbol),
		labelStyle.Render("["+venue+"]"),
		priceStyle.Render(fmt.Sprintf("%.10f SOL", priceSol)),
		labelStyle.Render("mcap"),
		mcapStyle.Render(fmt.Sprintf("$%.0f", mcapUSD)),
	))
}

// Migration renders the one-time migration notice.
func (m *Monitor) Migration(symbol string) {
	m.println(migrateStyle.Render(fmt.Sprintf("▲ %s migrated to AMM", symbol)))
}

// Buy renders a confirmed buy.
func (m *Monitor) Buy(walletName string, sol float64, signature string) {
	m.println(fmt.Sprintf("%s %s %s %s",
		buyStyle.Render("BUY"),
		labelStyle.Render(walletName),
		priceStyle.Render(fmt.Sprintf("%.5f SOL", sol)),
		labelStyle.Render(signature),
	))
}

// Sell renders a confirmed sell.
func (m *Monitor) Sell(walletName string, tokens uint64, signature string) {
	m.println(fmt.Sprintf("%s %s %s %s",
		sellStyle.Render("SELL"),
		labelStyle.Render(walletName),
		priceStyle.Render(fmt.Sprintf("%d tokens", tokens)),
		labelStyle.Render(signature),
	))
}

// Error renders a worker error.
func (m *Monitor) Error(walletName string, err error) {
	m.println(fmt.Sprintf("%s %s %s",
		errStyle.Render("ERR"),
		labelStyle.Render(walletName),
		errStyle.Render(err.Error()),
	))
}
