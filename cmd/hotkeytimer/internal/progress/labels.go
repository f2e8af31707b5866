package progress

import "github.com/charmbracelet/lipgloss"

var (
	resetStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#04B575"))
	stopStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF5F87"))
	expiryStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFD75F"))
)

// Reset labels a freshly armed countdown.
func Reset() string { return resetStyle.Render("[RESET]") }

// Stopped labels a cancelled countdown.
func Stopped() string { return stopStyle.Render("[STOP]") }

// Expired highlights the end-of-countdown banner.
func Expired(msg string) string { return expiryStyle.Render(msg) }
