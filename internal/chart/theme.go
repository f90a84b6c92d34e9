package chart

import (
	"fmt"
	"strings"
)

const (
	Dark  Theme = "dark"
	Light Theme = "light"
)

// Theme only changes stroke, text and grid colors, never data.
type Theme string

// Palette is cycled by slice index.
var Palette = [8]string{"#ef4444", "#f59e0b", "#10b981", "#3b82f6", "#8b5cf6", "#ec4899", "#14b8a6", "#f97316"}

// Fixed bar colors, independent of the theme.
const (
	IncomeColor  = "#10b981"
	ExpenseColor = "#ef4444"
)

// Colors is the theme-dependent part of both charts.
type Colors struct {
	Background string
	Muted      string
	Text       string
	LegendText string
	Stroke     string
	Axis       string
	Grid       string
}

// ParseTheme accepts "dark" or "light".
func ParseTheme(s string) (Theme, error) {
	switch Theme(strings.ToLower(strings.TrimSpace(s))) {
	case Dark:
		return Dark, nil
	case Light:
		return Light, nil
	}
	return "", fmt.Errorf("unknown theme %q", s)
}

// Toggle flips between dark and light.
func (t Theme) Toggle() Theme {
	if t == Light {
		return Dark
	}
	return Light
}

func (t Theme) String() string {
	return string(t)
}

// Colors returns the palette for t; anything but Light renders dark.
func (t Theme) Colors() Colors {
	if t == Light {
		return Colors{
			Background: "#ffffff",
			Muted:      "#64748b",
			Text:       "#0f172a",
			LegendText: "#0f172a",
			Stroke:     "#ffffff",
			Axis:       "#475569",
			Grid:       "#e2e8f0",
		}
	}
	return Colors{
		Background: "#1e293b",
		Muted:      "#94a3b8",
		Text:       "#cbd5e1",
		LegendText: "#f1f5f9",
		Stroke:     "#1e293b",
		Axis:       "#334155",
		Grid:       "#334155",
	}
}

// SliceColor returns the palette entry for the i-th slice.
func SliceColor(i int) string {
	return Palette[i%len(Palette)]
}
