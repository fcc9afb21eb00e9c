package view

import (
	"strconv"

	"github.com/fraudshield/admin-dashboard/internal/model"
)

const defaultBarColor = "#3b82f6"

// Bar is one labelled, proportionally sized bar.
type Bar struct {
	Label   string
	Display string
	Percent float64
	Color   string
}

// Chart is the template model for a bar chart card.
type Chart struct {
	Title string
	Bars  []Bar
}

// BarChart scales a series against its largest value.
func BarChart(s model.Series) Chart {
	max := s.Max()
	c := Chart{Title: s.Title, Bars: make([]Bar, len(s.Points))}
	for i, p := range s.Points {
		pct := 0.0
		if max > 0 {
			pct = p.Value / max * 100
		}
		color := p.Color
		if color == "" {
			color = defaultBarColor
		}
		c.Bars[i] = Bar{
			Label:   p.Name,
			Display: strconv.FormatFloat(p.Value, 'f', -1, 64),
			Percent: pct,
			Color:   color,
		}
	}
	return c
}
