package table

import (
	"html/template"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type order struct {
	ID       string  `json:"id"`
	Customer string  `json:"customerName"`
	Amount   float64 `json:"amount"`
	Score    int     `json:"riskScore"`
	Tags     []string
	Flagged  bool `json:"flagged"`
}

func orderTable(t *testing.T) *Table[order] {
	t.Helper()
	tbl, err := New(
		Column[order]{Key: "id", Header: "Order ID"},
		Column[order]{Key: "customerName", Header: "Customer"},
		Column[order]{Key: "riskScore", Header: "Risk", Render: func(o order) template.HTML {
			if o.Score > 80 {
				return "<b>high</b>"
			}
			return "ok"
		}},
		Column[order]{Key: "tags", Header: "Tags"},
	)
	require.NoError(t, err)
	return tbl
}

func TestRenderRows(t *testing.T) {
	tbl := orderTable(t)
	data := []order{
		{ID: "ORD-001", Customer: "John Doe", Score: 85, Tags: []string{"vip", "repeat"}},
		{ID: "ORD-002", Customer: "Jane <Smith>", Score: 45},
	}

	v := tbl.Render(data, false)

	assert.Equal(t, []string{"Order ID", "Customer", "Risk", "Tags"}, v.Headers)
	assert.Empty(t, v.Placeholder)
	assert.Equal(t, 4, v.ColSpan)
	require.Len(t, v.Rows, 2)
	assert.Equal(t, []template.HTML{"ORD-001", "John Doe", "<b>high</b>", "vip, repeat"}, v.Rows[0])
	assert.Equal(t, template.HTML("Jane &lt;Smith&gt;"), v.Rows[1][1])
	assert.Equal(t, template.HTML("ok"), v.Rows[1][2])
}

func TestRenderLoadingIgnoresData(t *testing.T) {
	tbl := orderTable(t)

	v := tbl.Render([]order{{ID: "ORD-001"}}, true)

	assert.Nil(t, v.Rows)
	assert.Equal(t, LoadingText, v.Placeholder)
	assert.Equal(t, tbl.Columns(), v.ColSpan)
}

func TestRenderEmpty(t *testing.T) {
	tbl := orderTable(t)

	for _, data := range [][]order{nil, {}} {
		v := tbl.Render(data, false)
		assert.Nil(t, v.Rows)
		assert.Equal(t, EmptyText, v.Placeholder)
		assert.Equal(t, 4, v.ColSpan)
	}
}

func TestRenderMapRecords(t *testing.T) {
	tbl, err := New(
		Column[map[string]any]{Key: "name", Header: "Name"},
		Column[map[string]any]{Key: "missing", Header: "Missing"},
	)
	require.NoError(t, err)

	v := tbl.Render([]map[string]any{{"name": "Stripe", "count": 3}}, false)

	assert.Equal(t, [][]template.HTML{{"Stripe", ""}}, v.Rows)
}

func TestRenderFieldByNameAndPointer(t *testing.T) {
	tbl, err := New(
		Column[*order]{Key: "flagged", Header: "Flagged"},
		Column[*order]{Key: "amount", Header: "Amount"},
	)
	require.NoError(t, err)

	v := tbl.Render([]*order{{Flagged: true, Amount: 299.99}}, false)

	assert.Equal(t, [][]template.HTML{{"true", "299.99"}}, v.Rows)
}

func TestNewRejectsBadColumns(t *testing.T) {
	_, err := New(Column[order]{Key: "id"}, Column[order]{Key: "id"})
	assert.ErrorIs(t, err, ErrDuplicateKey)

	_, err = New(Column[order]{Key: ""})
	assert.ErrorIs(t, err, ErrEmptyKey)

	_, err = New(Column[order]{Key: "nope", Header: "Nope"})
	assert.ErrorIs(t, err, ErrUnknownField)

	_, err = New(Column[order]{Key: "actions", Render: func(order) template.HTML { return "" }})
	assert.NoError(t, err)
}

func TestMustNewPanics(t *testing.T) {
	assert.Panics(t, func() { MustNew(Column[order]{Key: "x"}, Column[order]{Key: "x"}) })
}
