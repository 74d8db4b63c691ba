package render

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	canvasStyle = lipgloss.NewStyle().Padding(1, 2)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(48)
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(10)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)

	uprightStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00ff88"))
	swingStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ffaa00"))
)

// Phase names the motion regime of the pendulum.
func Phase(alpha float64) string {
	const catch = 20.0
	deg := degrees(alpha)
	if deg < 0 {
		deg = -deg
	}
	switch {
	case deg < catch:
		return "UPRIGHT"
	case deg > 180-catch:
		return "HANGING"
	}
	return "SWINGING"
}

func phaseBadge(alpha float64) string {
	p := Phase(alpha)
	if p == "UPRIGHT" {
		return uprightStyle.Render(p)
	}
	return swingStyle.Render(p)
}

// statsLines renders the frame as label/value rows.
func statsLines(f Frame) string {
	rows := []struct{ label, value string }{
		{"Backend", f.Backend},
		{"Episode", fmt.Sprintf("%d", f.Episode)},
		{"Step", fmt.Sprintf("%d", f.Step)},
		{"Time", fmt.Sprintf("%.2fs", f.Time)},
		{"Theta", fmt.Sprintf("%+7.1f°", degrees(f.Theta))},
		{"Alpha", fmt.Sprintf("%+7.1f°", degrees(f.Alpha))},
		{"Voltage", fmt.Sprintf("%+.2fV", f.Voltage)},
		{"Reward", fmt.Sprintf("%.3f", f.Reward)},
	}
	var b strings.Builder
	for _, r := range rows {
		b.WriteString(labelStyle.Render(r.label) + valueStyle.Render(r.value) + "\n")
	}
	return b.String()
}

func degrees(rad float64) float64 { return rad * 180 / math.Pi }
