package detection

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fraudshield/admin-dashboard/internal/clock"
	"github.com/fraudshield/admin-dashboard/internal/model"
	"github.com/fraudshield/admin-dashboard/internal/repository/memory"
	apperrors "github.com/fraudshield/admin-dashboard/pkg/errors"
)

var now = time.Date(2024, 3, 20, 11, 0, 0, 0, time.UTC)

func newService(t *testing.T) (*Service, *memory.Stores) {
	t.Helper()
	stores := memory.Seed()
	return NewService(Stores{
		Patterns:   stores.Patterns,
		SOPs:       stores.SOPs,
		AccessLogs: stores.AccessLogs,
		Orders:     stores.Orders,
	}, clock.Fake(now)), stores
}

func ids[T model.Record](records []T) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.RecordID()
	}
	return out
}

func TestPatternFilters(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	tests := []struct {
		name string
		f    PatternFilter
		want []string
	}{
		{"none", PatternFilter{}, []string{"PAT-001", "PAT-002"}},
		{"search rule set", PatternFilter{Search: "proxy"}, []string{"PAT-001"}},
		{"category", PatternFilter{Category: "refund"}, []string{"PAT-002"}},
		{"severity high", PatternFilter{Severity: "high"}, []string{"PAT-001", "PAT-002"}},
		{"severity medium", PatternFilter{Severity: "medium"}, []string{}},
		{"status all", PatternFilter{Status: "all"}, []string{"PAT-001", "PAT-002"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Patterns(ctx, tt.f)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestSavePatternBumpsVersion(t *testing.T) {
	svc, stores := newService(t)
	ctx := context.Background()

	msg, err := svc.SavePattern(ctx, "PAT-001", PatternUpdate{
		Name: "Proxy Shipping Mismatch", Type: "logic", Status: model.StatusTesting, Definition: "IF proxy THEN HIGH",
	})
	require.NoError(t, err)
	assert.Equal(t, MsgPatternSaved, msg)

	p, err := stores.Patterns.Get(ctx, "PAT-001")
	require.NoError(t, err)
	assert.Equal(t, "Proxy Shipping Mismatch", p.Name)
	assert.Equal(t, 3, p.Version)
	assert.Equal(t, "2024-03-20", p.LastModified)
}

func TestSavePatternRejectsInvalidInput(t *testing.T) {
	svc, stores := newService(t)
	ctx := context.Background()

	_, err := svc.SavePattern(ctx, "PAT-001", PatternUpdate{Name: "x", Type: "sql", Status: model.StatusActive})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, apperrors.StatusOf(err))
	assert.Contains(t, err.Error(), "definition is required")

	p, err := stores.Patterns.Get(ctx, "PAT-001")
	require.NoError(t, err)
	assert.Equal(t, 2, p.Version, "rejected edit leaves the pattern alone")
}

func TestSavePatternUnknownID(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.SavePattern(context.Background(), "PAT-404", PatternUpdate{
		Name: "x", Type: "ml", Status: model.StatusActive, Definition: "y",
	})
	assert.Equal(t, http.StatusNotFound, apperrors.StatusOf(err))
}

func TestSimulateIPPattern(t *testing.T) {
	svc, _ := newService(t)

	_, ok := svc.LastSimulation()
	assert.False(t, ok)

	msg, err := svc.Simulate(context.Background(), "PAT-001")
	require.NoError(t, err)
	assert.Equal(t, MsgSimulated, msg)

	sim, ok := svc.LastSimulation()
	require.True(t, ok)
	assert.Equal(t, "PAT-001", sim.PatternID)
	assert.Equal(t, now, sim.RanAt)
	assert.Equal(t, 6, sim.Scanned)
	require.Equal(t, []string{"ORD-001", "ORD-003", "ORD-005"}, simulated(sim))
	for _, r := range sim.Results {
		assert.Equal(t, []string{"High-Risk IP Detection"}, r.MatchedPatterns)
		assert.Equal(t, []string{"Payment Fraud Investigation"}, r.RecommendedSOPs, "only active SOPs are recommended")
	}
}

func TestSimulateRefundPatternRecommendsAboveThreshold(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.Simulate(context.Background(), "PAT-002")
	require.NoError(t, err)

	sim, _ := svc.LastSimulation()
	require.Equal(t, []string{"ORD-001", "ORD-004", "ORD-006"}, simulated(sim))
	assert.NotEmpty(t, sim.Results[0].RecommendedSOPs, "ORD-001 scores 85")
	assert.Empty(t, sim.Results[1].RecommendedSOPs, "ORD-004 scores 8")
}

func simulated(sim Simulation) []string {
	out := make([]string, len(sim.Results))
	for i, r := range sim.Results {
		out[i] = r.OrderID
	}
	return out
}

func TestSOPFilters(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	got, err := svc.SOPs(ctx, SOPFilter{Tag: "device fingerprint"})
	require.NoError(t, err)
	assert.Equal(t, []string{"SOP-002"}, ids(got))

	got, err = svc.SOPs(ctx, SOPFilter{Search: "payment", Status: model.StatusActive})
	require.NoError(t, err)
	assert.Equal(t, []string{"SOP-001"}, ids(got))
}

func TestDuplicateSOP(t *testing.T) {
	svc, stores := newService(t)
	ctx := context.Background()

	msg, err := svc.DuplicateSOP(ctx, "SOP-001")
	require.NoError(t, err)
	assert.Equal(t, MsgSOPDuplicated, msg)

	all, err := stores.SOPs.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	dup := all[2]
	assert.True(t, strings.HasPrefix(dup.ID, "SOP-"))
	assert.NotEqual(t, "SOP-001", dup.ID)
	assert.Equal(t, "Payment Fraud Investigation (Copy)", dup.Name)
	assert.Equal(t, model.StatusTesting, dup.Status)
	assert.Equal(t, all[0].Steps, dup.Steps)
}

func TestArchiveSOPOnce(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	msg, err := svc.ArchiveSOP(ctx, "SOP-002")
	require.NoError(t, err)
	assert.Equal(t, MsgSOPArchived, msg)

	_, err = svc.ArchiveSOP(ctx, "SOP-002")
	assert.Equal(t, http.StatusConflict, apperrors.StatusOf(err))

	archived, err := svc.SOPs(ctx, SOPFilter{Status: model.StatusArchived})
	require.NoError(t, err)
	assert.Equal(t, []string{"SOP-002"}, ids(archived))
}

func TestSaveSOP(t *testing.T) {
	svc, stores := newService(t)
	ctx := context.Background()

	_, err := svc.SaveSOP(ctx, "SOP-002", SOPUpdate{Name: "ATO Response", Version: "1.6", Status: model.StatusActive, Steps: "1. Lock account"})
	require.NoError(t, err)

	sop, err := stores.SOPs.Get(ctx, "SOP-002")
	require.NoError(t, err)
	assert.Equal(t, "ATO Response", sop.Name)
	assert.Equal(t, "2024-03-20T11:00:00Z", sop.LastModified)

	_, err = svc.SaveSOP(ctx, "SOP-002", SOPUpdate{Name: "ATO Response", Version: "1.7", Status: model.StatusArchived, Steps: "x"})
	assert.Equal(t, http.StatusBadRequest, apperrors.StatusOf(err), "archiving goes through ArchiveSOP")
}

func TestDownloadSOP(t *testing.T) {
	svc, _ := newService(t)

	doc, err := svc.DownloadSOP(context.Background(), "SOP-001")
	require.NoError(t, err)
	assert.Equal(t, "sop-001.md", doc.Filename)
	assert.Equal(t, MsgSOPDownloaded, doc.Message)
	body := string(doc.Body)
	assert.True(t, strings.HasPrefix(body, "# Payment Fraud Investigation"))
	assert.Contains(t, body, "Linked patterns: Multiple Returns, IP Geolocation")
	assert.Contains(t, body, "by John Smith")
}

func TestAccessLogFilters(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	tests := []struct {
		name string
		f    AccessLogFilter
		want []string
	}{
		{"search ip", AccessLogFilter{Search: "1.101"}, []string{"LOG-002"}},
		{"kind", AccessLogFilter{Kind: "camera"}, []string{"LOG-003"}},
		{"risk high", AccessLogFilter{Risk: "high"}, []string{"LOG-002"}},
		{"risk medium", AccessLogFilter{Risk: "medium"}, []string{"LOG-001"}},
		{"combined miss", AccessLogFilter{Kind: "login", Risk: "high"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.AccessLogs(ctx, tt.f)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestFlagAndBlockAccess(t *testing.T) {
	svc, stores := newService(t)
	ctx := context.Background()

	msg, err := svc.FlagAccess(ctx, "LOG-002")
	require.NoError(t, err)
	assert.Equal(t, MsgAccessFlagged, msg)

	_, err = svc.FlagAccess(ctx, "LOG-002")
	assert.Equal(t, http.StatusConflict, apperrors.StatusOf(err))

	msg, err = svc.BlockAccess(ctx, "LOG-002")
	require.NoError(t, err)
	assert.Equal(t, MsgAccessBlocked, msg)

	l, err := stores.AccessLogs.Get(ctx, "LOG-002")
	require.NoError(t, err)
	assert.True(t, l.Flagged)
	assert.True(t, l.Blocked)

	_, err = svc.BlockAccess(ctx, "LOG-999")
	assert.Equal(t, http.StatusNotFound, apperrors.StatusOf(err))
}
