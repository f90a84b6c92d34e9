package chart

import (
	"fmt"

	"pocketbook/internal/analytics"
	"pocketbook/internal/core"
)

// Category chart surface and layout.
const (
	PieWidth        = 400
	PieHeight       = 400
	PieRadius       = 120
	PieStrokeWidth  = 3
	pieCenterOffset = 20 // center sits above the middle to leave room for the legend
	legendTop       = 100
	legendColumn    = 200
	legendMargin    = 20
	legendRow       = 22
	swatchSize      = 16
	swatchGap       = 22
	labelBaseline   = 12

	StartAngleDeg = -90.0

	NoExpenseData = "No expense data"

	fontEmpty  = "16px Inter"
	fontLegend = "12px Inter"
	fontAxis   = "11px Inter"
)

// CategoryChart lays out a pie chart of expense totals, one slice per
// category in the given order, followed by a two-column legend.
func CategoryChart(totals analytics.CategoryTotals, theme Theme) Drawing {
	colors := theme.Colors()
	d := Drawing{Width: PieWidth, Height: PieHeight}

	total := totals.Total()
	if len(totals) == 0 || total == 0 {
		d.add(noData(PieWidth, PieHeight, NoExpenseData, colors))
		return d
	}

	cx := float64(PieWidth) / 2
	cy := float64(PieHeight)/2 - pieCenterOffset
	angle := StartAngleDeg
	for i, c := range totals {
		sweep := c.Amount / total * 360
		d.add(Slice{
			CX:        cx,
			CY:        cy,
			Radius:    PieRadius,
			StartDeg:  angle,
			SweepDeg:  sweep,
			Fill:      SliceColor(i),
			Stroke:    colors.Stroke,
			LineWidth: PieStrokeWidth,
		})
		angle += sweep
	}

	legendY := float64(PieHeight - legendTop)
	for i, c := range totals {
		x := float64((i%2)*legendColumn + legendMargin)
		y := legendY + float64(i/2*legendRow)
		d.add(Rect{X: x, Y: y, Width: swatchSize, Height: swatchSize, Fill: SliceColor(i)})
		d.add(Text{
			X:     x + swatchGap,
			Y:     y + labelBaseline,
			Value: LegendLabel(c.Name, c.Amount, total),
			Font:  fontLegend,
			Align: AlignLeft,
			Fill:  colors.LegendText,
		})
	}
	return d
}

// LegendLabel renders "Food: 42.5%".
func LegendLabel(category string, value, total float64) string {
	return fmt.Sprintf("%s: %s%%", core.DisplayName(category), Percent(value, total))
}

// Percent formats value/total as a percentage with one decimal, "0.0" when
// total is zero.
func Percent(value, total float64) string {
	if total == 0 {
		return "0.0"
	}
	return fmt.Sprintf("%.1f", value/total*100)
}

func noData(w, h float64, msg string, colors Colors) Text {
	return Text{
		X:     w / 2,
		Y:     h / 2,
		Value: msg,
		Font:  fontEmpty,
		Align: AlignCenter,
		Fill:  colors.Muted,
	}
}
