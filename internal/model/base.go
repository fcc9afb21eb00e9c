package model

// Record is implemented by every entity held in a repository.
type Record interface {
	RecordID() string
}

// ChartPoint is one labelled value in a chart series.
type ChartPoint struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Color string  `json:"color,omitempty"`
}

// Series is a named chart dataset.
type Series struct {
	Title  string       `json:"title"`
	Points []ChartPoint `json:"points"`
}

// Max returns the largest value in the series, or 0 when empty.
func (s Series) Max() float64 {
	var m float64
	for _, p := range s.Points {
		if p.Value > m {
			m = p.Value
		}
	}
	return m
}

// Change is the period-over-period delta shown on a stats card.
type Change struct {
	Value      float64 `json:"value"`
	IsPositive bool    `json:"isPositive"`
}

// Stat is a headline figure shown on a stats card.
type Stat struct {
	Title  string  `json:"title"`
	Value  string  `json:"value"`
	Change *Change `json:"change,omitempty"`
}
