package view

import (
	"bytes"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fraudshield/admin-dashboard/internal/model"
	"github.com/fraudshield/admin-dashboard/internal/ui/badge"
	"github.com/fraudshield/admin-dashboard/internal/ui/toast"
)

func TestNewParsesEveryRoute(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	pages := r.Pages()
	for _, path := range Routes() {
		name := strings.TrimPrefix(path, "/")
		if name == "" {
			name = "dashboard"
		}
		assert.Contains(t, pages, name, path)
	}
	assert.Len(t, pages, len(Routes()))

	err = r.Render(&bytes.Buffer{}, "reports", nil)
	assert.ErrorContains(t, err, `unknown page template "reports"`)
}

func TestNavMarksOneActive(t *testing.T) {
	nav := Nav("/cases")
	require.Len(t, nav, 16)
	var active []string
	for _, item := range nav {
		if item.Active {
			active = append(active, item.Path)
		}
	}
	assert.Equal(t, []string{"/cases"}, active)
	assert.False(t, Nav("/")[4].Active, "shared table is not mutated")
}

func TestBodyLockCounts(t *testing.T) {
	var b Body
	assert.Empty(t, b.Class())

	b.Lock()
	b.Lock()
	b.Unlock()
	assert.Equal(t, "overflow-hidden", b.Class(), "one modal still open")

	b.Unlock()
	b.Unlock()
	assert.False(t, b.Locked())
	b.Lock()
	assert.True(t, b.Locked(), "extra unlocks do not go negative")
}

func TestNewSelect(t *testing.T) {
	s := NewSelect("status", "", "All Statuses", "under_review", "won=Won back")
	assert.Equal(t, "all", s.Current)
	assert.Equal(t, []Option{
		{Value: "all", Label: "All Statuses"},
		{Value: "under_review", Label: "Under Review"},
		{Value: "won", Label: "Won back"},
	}, s.Options)
}

func TestNewTabs(t *testing.T) {
	u, err := url.Parse("/settings?category=payments&q=stripe&modal=configure&id=INT-001")
	require.NoError(t, err)

	tabs := NewTabs(u, "category", "", "payments", "security=Security & Fraud")
	require.Len(t, tabs, 2)
	assert.True(t, tabs[0].Active, "first tab is the default")
	assert.False(t, tabs[1].Active)
	assert.Equal(t, "Security & Fraud", tabs[1].Label)
	assert.Equal(t, "/settings?category=security&q=stripe", tabs[1].Href)
}

type currentToast struct {
	t  toast.Toast
	ok bool
}

func (c currentToast) Current() (toast.Toast, bool) { return c.t, c.ok }

func TestToastFrom(t *testing.T) {
	now := time.Date(2024, 3, 18, 9, 0, 0, 0, time.UTC)

	assert.Nil(t, ToastFrom(currentToast{}, now))

	v := ToastFrom(currentToast{ok: true, t: toast.Toast{
		Message:   "Case closed",
		Type:      toast.Error,
		ExpiresAt: now.Add(1500 * time.Millisecond),
	}}, now)
	require.NotNil(t, v)
	assert.Equal(t, badge.Danger, v.Variant)
	assert.EqualValues(t, 1500, v.RemainingMs)

	v = ToastFrom(currentToast{ok: true, t: toast.Toast{ExpiresAt: now.Add(-time.Second)}}, now)
	assert.Zero(t, v.RemainingMs)
}

func TestBarChartScalesToLargest(t *testing.T) {
	c := BarChart(model.Series{Title: "Orders", Points: []model.ChartPoint{
		{Name: "Mon", Value: 50},
		{Name: "Tue", Value: 200, Color: "#ef4444"},
	}})
	assert.Equal(t, "Orders", c.Title)
	assert.InDelta(t, 25, c.Bars[0].Percent, 0.001)
	assert.Equal(t, defaultBarColor, c.Bars[0].Color)
	assert.Equal(t, "#ef4444", c.Bars[1].Color)
	assert.Equal(t, "200", c.Bars[1].Display)

	empty := BarChart(model.Series{Points: []model.ChartPoint{{Name: "x"}}})
	assert.Zero(t, empty.Bars[0].Percent)
}
