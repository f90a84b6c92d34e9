package chart

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pocketbook/internal/analytics"
)

func TestCategoryChart_Empty(t *testing.T) {
	for _, theme := range []Theme{Dark, Light} {
		d := CategoryChart(nil, theme)
		require.Len(t, d.Shapes, 1)
		txt, ok := d.Shapes[0].(Text)
		require.True(t, ok)
		assert.Equal(t, NoExpenseData, txt.Value)
		assert.Equal(t, AlignCenter, txt.Align)
		assert.Equal(t, theme.Colors().Muted, txt.Fill)
		assert.Equal(t, 200.0, txt.X)
		assert.Equal(t, 200.0, txt.Y)
	}
}

func TestCategoryChart_ZeroTotalIsEmpty(t *testing.T) {
	d := CategoryChart(analytics.CategoryTotals{{Name: "food", Amount: 0}}, Dark)
	require.Len(t, d.Shapes, 1)
	assert.Equal(t, NoExpenseData, d.Texts()[0].Value)
}

func TestCategoryChart_SingleCategory(t *testing.T) {
	d := CategoryChart(analytics.CategoryTotals{{Name: "food", Amount: 50}}, Dark)

	slices := d.Slices()
	require.Len(t, slices, 1)
	assert.Equal(t, StartAngleDeg, slices[0].StartDeg)
	assert.InDelta(t, 360, slices[0].SweepDeg, 1e-9)
	assert.Equal(t, Palette[0], slices[0].Fill)

	texts := d.Texts()
	require.Len(t, texts, 1)
	assert.Equal(t, "Food: 100.0%", texts[0].Value)
}

func TestCategoryChart_Layout(t *testing.T) {
	totals := analytics.CategoryTotals{
		{Name: "food", Amount: 40},
		{Name: "travel", Amount: 30},
		{Name: "bills", Amount: 20},
		{Name: "other", Amount: 10},
	}
	d := CategoryChart(totals, Light)
	assert.Equal(t, float64(PieWidth), d.Width)
	assert.Equal(t, float64(PieHeight), d.Height)

	slices := d.Slices()
	require.Len(t, slices, 4)
	angle := StartAngleDeg
	var sum float64
	for i, s := range slices {
		assert.Equal(t, 200.0, s.CX)
		assert.Equal(t, 180.0, s.CY)
		assert.Equal(t, float64(PieRadius), s.Radius)
		assert.InDelta(t, angle, s.StartDeg, 1e-9)
		assert.Equal(t, "#ffffff", s.Stroke)
		assert.Equal(t, float64(PieStrokeWidth), s.LineWidth)
		assert.Equal(t, Palette[i], s.Fill)
		angle += s.SweepDeg
		sum += s.SweepDeg
	}
	assert.InDelta(t, 360, sum, 1e-9)
	assert.InDelta(t, 144, slices[0].SweepDeg, 1e-9)

	swatches := d.Rects()
	require.Len(t, swatches, 4)
	want := []Point{{20, 300}, {220, 300}, {20, 322}, {220, 322}}
	for i, r := range swatches {
		assert.Equal(t, want[i].X, r.X, "swatch %d x", i)
		assert.Equal(t, want[i].Y, r.Y, "swatch %d y", i)
		assert.Equal(t, 16.0, r.Width)
		assert.Equal(t, 16.0, r.Height)
	}

	labels := d.Texts()
	require.Len(t, labels, 4)
	assert.Equal(t, "Food: 40.0%", labels[0].Value)
	assert.Equal(t, "Travel: 30.0%", labels[1].Value)
	assert.Equal(t, 42.0, labels[0].X)
	assert.Equal(t, 312.0, labels[0].Y)
	assert.Equal(t, "#0f172a", labels[0].Fill)
}

func TestCategoryChart_PaletteCycles(t *testing.T) {
	var totals analytics.CategoryTotals
	for i := 0; i < 10; i++ {
		totals = append(totals, analytics.CategoryAmount{Name: string(rune('a' + i)), Amount: 1})
	}
	slices := CategoryChart(totals, Dark).Slices()
	require.Len(t, slices, 10)
	assert.Equal(t, Palette[0], slices[8].Fill)
	assert.Equal(t, Palette[1], slices[9].Fill)
}

func TestMonthlyChart_Empty(t *testing.T) {
	d := MonthlyChart(nil, Light)
	require.Len(t, d.Shapes, 1)
	txt := d.Texts()[0]
	assert.Equal(t, NoMonthlyData, txt.Value)
	assert.Equal(t, 300.0, txt.X)
	assert.Equal(t, 200.0, txt.Y)
	assert.Equal(t, "#64748b", txt.Fill)
}

func TestMonthlyChart_Scenario(t *testing.T) {
	months := []analytics.MonthTotal{
		{Month: "2024-01", Income: 1000, Expense: 350},
		{Month: "2024-02", Income: 0, Expense: 80},
	}
	d := MonthlyChart(months, Dark)
	assert.Equal(t, float64(BarWidth), d.Width)

	bars := d.Rects()
	require.Len(t, bars, 4)

	barWidth := 480.0 / 5
	assert.InDelta(t, barWidth, bars[0].Width, 1e-9)
	assert.Equal(t, 60.0, bars[0].X)
	assert.Equal(t, IncomeColor, bars[0].Fill)
	assert.InDelta(t, 60+barWidth, bars[1].X, 1e-9)
	assert.Equal(t, ExpenseColor, bars[1].Fill)
	assert.InDelta(t, 60+barWidth*2.5, bars[2].X, 1e-9)

	assert.InDelta(t, 280, bars[0].Height, 1e-9)
	assert.InDelta(t, 60, bars[0].Y, 1e-9)
	assert.InDelta(t, 98, bars[1].Height, 1e-9)
	assert.InDelta(t, 0, bars[2].Height, 1e-9)
	assert.InDelta(t, 340, bars[2].Y, 1e-9)

	var monthLabels, gridLabels []Text
	for _, txt := range d.Texts() {
		if txt.Rotate != 0 {
			monthLabels = append(monthLabels, txt)
		} else {
			gridLabels = append(gridLabels, txt)
		}
	}
	require.Len(t, monthLabels, 2)
	assert.Equal(t, "Jan 24", monthLabels[0].Value)
	assert.Equal(t, "Feb 24", monthLabels[1].Value)
	assert.Equal(t, -30.0, monthLabels[0].Rotate)
	assert.InDelta(t, 60+barWidth, monthLabels[0].X, 1e-9)
	assert.Equal(t, 355.0, monthLabels[0].Y)

	require.Len(t, gridLabels, 6)
	values := make([]string, len(gridLabels))
	for i, g := range gridLabels {
		values[i] = g.Value
		assert.Equal(t, AlignRight, g.Align)
		assert.Equal(t, 50.0, g.X)
	}
	assert.Equal(t, []string{"₹0", "₹200", "₹400", "₹600", "₹800", "₹1000"}, values)

	lines := d.Lines()
	require.Len(t, lines, 7)
	assert.Equal(t, []Point{{60, 60}, {60, 340}, {540, 340}}, lines[0].Points)
	assert.Equal(t, 2.0, lines[0].LineWidth)
	assert.Equal(t, Dark.Colors().Axis, lines[0].Stroke)
	assert.Equal(t, []Point{{60, 340}, {540, 340}}, lines[1].Points)
	assert.Equal(t, []Point{{60, 60}, {540, 60}}, lines[6].Points)
}

func TestMonthlyChart_AllZeroHasNoNaN(t *testing.T) {
	d := MonthlyChart([]analytics.MonthTotal{{Month: "2024-03"}}, Dark)
	for _, r := range d.Rects() {
		assert.False(t, math.IsNaN(r.Height))
		assert.Zero(t, r.Height)
	}
	for _, g := range d.Texts() {
		if g.Rotate == 0 {
			assert.Equal(t, "₹0", g.Value)
		}
	}
}

func TestBarHeightMonotonic(t *testing.T) {
	prev := -1.0
	for v := 0.0; v <= 500; v += 25 {
		h := BarValueHeight(v, 500, 280)
		assert.Greater(t, h, prev)
		prev = h
	}
	assert.Zero(t, BarValueHeight(10, 0, 280))
}

func TestMonthLabel(t *testing.T) {
	tests := []struct{ in, want string }{
		{"2024-01", "Jan 24"},
		{"1999-12", "Dec 99"},
		{"garbage", "garbage"},
	}
	for _, tt := range tests {
		if got := MonthLabel(tt.in); got != tt.want {
			t.Fatalf("MonthLabel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestThemeOnlyChangesColors(t *testing.T) {
	totals := analytics.CategoryTotals{{Name: "food", Amount: 3}, {Name: "bills", Amount: 1}}
	dark := CategoryChart(totals, Dark)
	light := CategoryChart(totals, Light)
	require.Len(t, light.Shapes, len(dark.Shapes))
	for i := range dark.Slices() {
		assert.Equal(t, dark.Slices()[i].SweepDeg, light.Slices()[i].SweepDeg)
	}
	assert.NotEqual(t, dark.Slices()[0].Stroke, light.Slices()[0].Stroke)
}

func TestWriteSVG(t *testing.T) {
	totals := analytics.CategoryTotals{{Name: "food", Amount: 3}, {Name: "bills", Amount: 1}}
	var buf bytes.Buffer
	require.NoError(t, WriteSVG(&buf, CategoryChart(totals, Dark), Dark))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "<svg "))
	assert.True(t, strings.HasSuffix(out, "</svg>"))
	assert.Equal(t, 2, strings.Count(out, "<path "))
	assert.Contains(t, out, "Food: 75.0%")
	assert.Contains(t, out, `text-anchor="start"`)
	assert.Contains(t, out, `fill="#1e293b"`)
}

func TestWriteSVG_FullCircleAndEscaping(t *testing.T) {
	var buf bytes.Buffer
	d := CategoryChart(analytics.CategoryTotals{{Name: "<b>", Amount: 1}}, Light)
	require.NoError(t, WriteSVG(&buf, d, Light))
	out := buf.String()
	assert.Contains(t, out, "<circle ")
	assert.NotContains(t, out, "<b>")
	assert.Contains(t, out, "&lt;b&gt;")
}

func TestWriteSVG_RotatedLabels(t *testing.T) {
	var buf bytes.Buffer
	d := MonthlyChart([]analytics.MonthTotal{{Month: "2024-05", Income: 5, Expense: 1}}, Dark)
	require.NoError(t, WriteSVG(&buf, d, Dark))
	assert.Contains(t, buf.String(), `transform="rotate(-30 `)
	assert.Contains(t, buf.String(), "May 24")
}

func TestWriteSVG_NegativeAmounts(t *testing.T) {
	d := Drawing{Width: 100, Height: 100}
	d.add(Slice{CX: 50, CY: 50, Radius: 40, StartDeg: -90, SweepDeg: -90, Fill: "#000"})
	d.add(Slice{CX: 50, CY: 50, Radius: 40, StartDeg: -90, SweepDeg: -270, Fill: "#111"})
	d.add(Rect{X: 10, Y: 80, Width: 5, Height: -20, Fill: "#222"})

	var buf bytes.Buffer
	require.NoError(t, WriteSVG(&buf, d, Dark))
	out := buf.String()

	assert.Contains(t, out, "A40,40 0 0 0 ")
	assert.Contains(t, out, "A40,40 0 1 0 ")
	assert.NotContains(t, out, `height="-`)
	assert.Contains(t, out, `<rect x="10" y="60" width="5" height="20" fill="#222"/>`)
}

func TestMonthlyChart_NegativeExpenseRendersValidSVG(t *testing.T) {
	d := MonthlyChart([]analytics.MonthTotal{{Month: "2024-05", Income: 10, Expense: -5}}, Light)
	var buf bytes.Buffer
	require.NoError(t, WriteSVG(&buf, d, Light))
	assert.NotContains(t, buf.String(), `height="-`)
	assert.NotContains(t, buf.String(), `width="-`)
}

func TestDrawingJSON(t *testing.T) {
	d := MonthlyChart(nil, Dark)
	raw, err := json.Marshal(d)
	require.NoError(t, err)

	var decoded struct {
		Width  float64 `json:"width"`
		Shapes []struct {
			Kind  string          `json:"kind"`
			Shape json.RawMessage `json:"shape"`
		} `json:"shapes"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, 600.0, decoded.Width)
	require.Len(t, decoded.Shapes, 1)
	assert.Equal(t, "text", decoded.Shapes[0].Kind)
	assert.Contains(t, string(decoded.Shapes[0].Shape), NoMonthlyData)
}
