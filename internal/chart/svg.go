package chart

import (
	"fmt"
	"html"
	"io"
	"math"
	"strconv"
	"strings"
)

// WriteSVG serializes d as a standalone SVG document on a background of the
// given theme.
func WriteSVG(w io.Writer, d Drawing, theme Theme) error {
	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" viewBox="0 0 %s %s">`,
		num(d.Width), num(d.Height), num(d.Width), num(d.Height))
	fmt.Fprintf(&b, `<rect width="100%%" height="100%%" fill="%s"/>`, theme.Colors().Background)

	for _, s := range d.Shapes {
		switch v := s.(type) {
		case Slice:
			writeSlice(&b, v)
		case Rect:
			v = v.normalized()
			fmt.Fprintf(&b, `<rect x="%s" y="%s" width="%s" height="%s" fill="%s"/>`,
				num(v.X), num(v.Y), num(v.Width), num(v.Height), v.Fill)
		case Line:
			pts := make([]string, len(v.Points))
			for i, p := range v.Points {
				pts[i] = num(p.X) + "," + num(p.Y)
			}
			fmt.Fprintf(&b, `<polyline points="%s" fill="none" stroke="%s" stroke-width="%s"/>`,
				strings.Join(pts, " "), v.Stroke, num(v.LineWidth))
		case Text:
			writeText(&b, v)
		}
	}
	b.WriteString(`</svg>`)

	_, err := io.WriteString(w, b.String())
	if err != nil {
		return fmt.Errorf("write svg: %w", err)
	}
	return nil
}

func writeSlice(b *strings.Builder, s Slice) {
	if math.Abs(s.SweepDeg) >= 360 {
		fmt.Fprintf(b, `<circle cx="%s" cy="%s" r="%s" fill="%s" stroke="%s" stroke-width="%s"/>`,
			num(s.CX), num(s.CY), num(s.Radius), s.Fill, s.Stroke, num(s.LineWidth))
		return
	}
	x0, y0 := polar(s.CX, s.CY, s.Radius, s.StartDeg)
	x1, y1 := polar(s.CX, s.CY, s.Radius, s.StartDeg+s.SweepDeg)
	large, sweep := 0, 1
	if math.Abs(s.SweepDeg) > 180 {
		large = 1
	}
	// Negative amounts sweep counter-clockwise.
	if s.SweepDeg < 0 {
		sweep = 0
	}
	fmt.Fprintf(b, `<path d="M%s,%s L%s,%s A%s,%s 0 %d %d %s,%s Z" fill="%s" stroke="%s" stroke-width="%s"/>`,
		num(s.CX), num(s.CY), num(x0), num(y0), num(s.Radius), num(s.Radius), large, sweep, num(x1), num(y1),
		s.Fill, s.Stroke, num(s.LineWidth))
}

// normalized flips a rectangle with negative extent so that width and height
// are non-negative, as SVG requires. The covered area is unchanged.
func (r Rect) normalized() Rect {
	if r.Width < 0 {
		r.X += r.Width
		r.Width = -r.Width
	}
	if r.Height < 0 {
		r.Y += r.Height
		r.Height = -r.Height
	}
	return r
}

func writeText(b *strings.Builder, t Text) {
	family, size := splitFont(t.Font)
	fmt.Fprintf(b, `<text x="%s" y="%s" font-family="%s" font-size="%s" text-anchor="%s" fill="%s"`,
		num(t.X), num(t.Y), family, size, anchor(t.Align), t.Fill)
	if t.Rotate != 0 {
		fmt.Fprintf(b, ` transform="rotate(%s %s %s)"`, num(t.Rotate), num(t.X), num(t.Y))
	}
	fmt.Fprintf(b, `>%s</text>`, html.EscapeString(t.Value))
}

func polar(cx, cy, r, deg float64) (float64, float64) {
	rad := deg * math.Pi / 180
	return cx + r*math.Cos(rad), cy + r*math.Sin(rad)
}

func anchor(align string) string {
	switch align {
	case AlignCenter:
		return "middle"
	case AlignRight:
		return "end"
	}
	return "start"
}

// splitFont turns "12px Inter" into ("Inter", "12px").
func splitFont(font string) (family, size string) {
	size, family, ok := strings.Cut(font, " ")
	if !ok {
		return "sans-serif", font
	}
	return family + ", sans-serif", size
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
