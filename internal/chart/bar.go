package chart

import (
	"fmt"
	"math"
	"time"

	"pocketbook/internal/analytics"
	"pocketbook/internal/core"
)

// Monthly chart surface and layout.
const (
	BarWidth       = 600
	BarHeight      = 400
	BarPadding     = 60
	GridLines      = 5 // intervals; GridLines+1 lines are drawn
	barGroupFactor = 2.5
	axisLineWidth  = 2
	gridLineWidth  = 1
	labelOffsetY   = 15
	labelRotateDeg = -30
	gridLabelGap   = 10
	gridLabelShift = 4

	NoMonthlyData = "No monthly data"
)

// MonthlyChart lays out a grouped bar chart with an income and an
// expense bar per month, oldest month on the left.
func MonthlyChart(months []analytics.MonthTotal, theme Theme) Drawing {
	colors := theme.Colors()
	d := Drawing{Width: BarWidth, Height: BarHeight}

	if len(months) == 0 {
		d.add(noData(BarWidth, BarHeight, NoMonthlyData, colors))
		return d
	}

	const (
		chartWidth  = BarWidth - 2*BarPadding
		chartHeight = BarHeight - 2*BarPadding
		bottom      = BarHeight - BarPadding
	)

	maxValue := MaxMonthValue(months)
	barWidth := chartWidth / (float64(len(months)) * barGroupFactor)

	d.add(Line{
		Points: []Point{
			{X: BarPadding, Y: BarPadding},
			{X: BarPadding, Y: bottom},
			{X: BarWidth - BarPadding, Y: bottom},
		},
		Stroke:    colors.Axis,
		LineWidth: axisLineWidth,
	})

	for i, m := range months {
		x := BarPadding + float64(i)*barWidth*barGroupFactor
		incomeHeight := BarValueHeight(m.Income, maxValue, chartHeight)
		expenseHeight := BarValueHeight(m.Expense, maxValue, chartHeight)

		d.add(Rect{X: x, Y: bottom - incomeHeight, Width: barWidth, Height: incomeHeight, Fill: IncomeColor})
		d.add(Rect{X: x + barWidth, Y: bottom - expenseHeight, Width: barWidth, Height: expenseHeight, Fill: ExpenseColor})
		d.add(Text{
			X:      x + barWidth,
			Y:      bottom + labelOffsetY,
			Value:  MonthLabel(m.Month),
			Font:   fontAxis,
			Align:  AlignCenter,
			Rotate: labelRotateDeg,
			Fill:   colors.Text,
		})
	}

	for i := 0; i <= GridLines; i++ {
		value := maxValue / GridLines * float64(i)
		y := bottom - float64(chartHeight)/GridLines*float64(i)
		d.add(Text{
			X:     BarPadding - gridLabelGap,
			Y:     y + gridLabelShift,
			Value: GridLabel(value),
			Font:  fontAxis,
			Align: AlignRight,
			Fill:  colors.Muted,
		})
		d.add(Line{
			Points:    []Point{{X: BarPadding, Y: y}, {X: BarWidth - BarPadding, Y: y}},
			Stroke:    colors.Grid,
			LineWidth: gridLineWidth,
		})
	}
	return d
}

// MaxMonthValue is the largest income or expense over all months.
func MaxMonthValue(months []analytics.MonthTotal) float64 {
	var maxValue float64
	for i, m := range months {
		v := math.Max(m.Income, m.Expense)
		if i == 0 || v > maxValue {
			maxValue = v
		}
	}
	return maxValue
}

// BarValueHeight scales value against maxValue; a zero maxValue yields 0.
func BarValueHeight(value, maxValue, chartHeight float64) float64 {
	if maxValue == 0 {
		return 0
	}
	return value / maxValue * chartHeight
}

// MonthLabel turns "2024-01" into "Jan 24". Unparseable keys are returned
// unchanged.
func MonthLabel(key string) string {
	y, m, err := core.ParseMonthKey(key)
	if err != nil {
		return key
	}
	return time.Date(y, time.Month(m), 1, 0, 0, 0, 0, time.UTC).Format("Jan 06")
}

// GridLabel renders a gridline value with no decimals, e.g. "₹120".
func GridLabel(value float64) string {
	return fmt.Sprintf("%s%.0f", core.CurrencySymbol, math.Round(value))
}
