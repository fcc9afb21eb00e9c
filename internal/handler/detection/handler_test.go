package detection

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fraudshield/admin-dashboard/internal/handler/handlertest"
	"github.com/fraudshield/admin-dashboard/internal/model"
	"github.com/fraudshield/admin-dashboard/internal/repository/memory"
	detectionService "github.com/fraudshield/admin-dashboard/internal/service/detection"
	"github.com/fraudshield/admin-dashboard/internal/ui/toast"
)

func setup(t *testing.T) (*handlertest.Env, *memory.Stores) {
	t.Helper()
	env := handlertest.New(t)
	stores := memory.Seed()
	svc := detectionService.NewService(detectionService.Stores{
		Patterns:   stores.Patterns,
		SOPs:       stores.SOPs,
		AccessLogs: stores.AccessLogs,
		Orders:     stores.Orders,
	}, env.Clock)
	NewHandler(svc, env.Pages).RegisterRoutes(env.Engine, env.API)
	return env, stores
}

func TestPatternsLibraryFilters(t *testing.T) {
	env, _ := setup(t)

	w := env.Get("/patterns?category=Refund")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Refund Abuse Pattern")
	assert.NotContains(t, body, "High-Risk IP Detection")
	assert.Contains(t, body, `class="tab active" href="/patterns?category=Refund&amp;tab=library"`)
}

func TestPatternsSeverityMediumIsEmpty(t *testing.T) {
	env, _ := setup(t)

	body := env.Get("/patterns?severity=medium").Body.String()
	assert.Contains(t, body, `colspan="8"`)
	assert.Contains(t, body, "No data available")
}

func TestEditPatternModal(t *testing.T) {
	env, _ := setup(t)

	w := env.Get("/patterns?modal=edit&id=PAT-002")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Edit Pattern")
	assert.Contains(t, body, `name="definition"`)
	assert.Contains(t, body, `value="Refund Abuse Pattern"`)
	assert.Contains(t, body, `class="overflow-hidden"`)
}

func TestSavePattern(t *testing.T) {
	env, stores := setup(t)

	w := env.Post("/patterns/actions", url.Values{
		"id":          {"PAT-002"},
		"modal":       {modalEdit},
		"action":      {actionSave},
		"return":      {"/patterns?status=active"},
		"name":        {"Refund Abuse v2"},
		"type":        {"ml"},
		"status":      {"testing"},
		"definition":  {"score > 0.9"},
		"description": {"Model-based"},
	})
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/patterns?status=active", w.Header().Get("Location"))

	cur, ok := env.Toast(t)
	require.True(t, ok)
	assert.Equal(t, detectionService.MsgPatternSaved, cur.Message)

	p, err := stores.Patterns.Get(context.Background(), "PAT-002")
	require.NoError(t, err)
	assert.Equal(t, "Refund Abuse v2", p.Name)
	assert.Equal(t, 2, p.Version)
}

func TestSavePatternInvalidReopensDialog(t *testing.T) {
	env, _ := setup(t)

	w := env.Post("/patterns/actions", url.Values{
		"id":     {"PAT-001"},
		"modal":  {modalEdit},
		"action": {actionSave},
		"return": {"/patterns"},
		"name":   {"No definition"},
		"type":   {"logic"},
		"status": {"active"},
	})
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/patterns?id=PAT-001&modal=edit", w.Header().Get("Location"))

	cur, ok := env.Toast(t)
	require.True(t, ok)
	assert.Equal(t, toast.Error, cur.Type)
	assert.Contains(t, cur.Message, "definition is required")
}

func TestRunSimulationShowsResultsTab(t *testing.T) {
	env, _ := setup(t)

	w := env.Post("/patterns/actions", url.Values{
		"id":     {"PAT-001"},
		"modal":  {modalSimulate},
		"action": {actionRun},
		"return": {"/patterns"},
	})
	require.Equal(t, http.StatusSeeOther, w.Code)
	loc := w.Header().Get("Location")
	assert.Equal(t, "/patterns?tab=simulation", loc)

	cur, ok := env.Toast(t)
	require.True(t, ok)
	assert.Equal(t, detectionService.MsgSimulated, cur.Message)

	body := env.Get(loc).Body.String()
	assert.Contains(t, body, "3 of 6 orders matched")
	assert.Contains(t, body, "ORD-003")
	assert.NotContains(t, body, "ORD-002")

	api := env.Get("/api/v1/simulations/latest")
	require.Equal(t, http.StatusOK, api.Code)
	var resp struct {
		Data detectionService.Simulation `json:"data"`
	}
	require.NoError(t, json.Unmarshal(api.Body.Bytes(), &resp))
	assert.Equal(t, "PAT-001", resp.Data.PatternID)
}

func TestLatestSimulationNotFoundBeforeRun(t *testing.T) {
	env, _ := setup(t)
	assert.Equal(t, http.StatusNotFound, env.Get("/api/v1/simulations/latest").Code)
}

func TestCloseSimulationStaysOnTab(t *testing.T) {
	env, _ := setup(t)

	w := env.Post("/patterns/actions", url.Values{
		"id":     {"PAT-001"},
		"modal":  {modalSimulate},
		"action": {actionClose},
		"return": {"/patterns?tab=versions"},
	})
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/patterns?tab=versions", w.Header().Get("Location"))
	_, ok := env.Toast(t)
	assert.False(t, ok)
}

func TestPatternActionUnknownDialog(t *testing.T) {
	env, _ := setup(t)
	w := env.Post("/patterns/actions", url.Values{"id": {"PAT-001"}, "modal": {"nope"}, "action": {actionClose}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestVersionsTab(t *testing.T) {
	env, _ := setup(t)
	body := env.Get("/patterns?tab=versions").Body.String()
	assert.Contains(t, body, "Updated IP detection logic")
	assert.NotContains(t, body, "Pattern Library")
}

func TestSOPTagFilter(t *testing.T) {
	env, _ := setup(t)

	body := env.Get("/sops?tag=Login+Anomaly").Body.String()
	assert.Contains(t, body, "Account Takeover Response")
	assert.NotContains(t, body, "Payment Fraud Investigation")
}

func TestSOPActionsDialog(t *testing.T) {
	env, stores := setup(t)

	body := env.Get("/sops?modal=actions&id=SOP-001").Body.String()
	assert.Contains(t, body, "SOP Actions")
	assert.Contains(t, body, `href="/sops/SOP-001/download"`)

	w := env.Post("/sops/actions", url.Values{
		"id": {"SOP-001"}, "modal": {modalSOPActions}, "action": {actionDuplicate}, "return": {"/sops"},
	})
	require.Equal(t, http.StatusSeeOther, w.Code)
	cur, _ := env.Toast(t)
	assert.Equal(t, detectionService.MsgSOPDuplicated, cur.Message)

	all, err := stores.SOPs.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 3)

	w = env.Post("/sops/actions", url.Values{
		"id": {"SOP-001"}, "modal": {modalSOPActions}, "action": {actionArchive}, "return": {"/sops"},
	})
	require.Equal(t, http.StatusSeeOther, w.Code)
	cur, _ = env.Toast(t)
	assert.Equal(t, detectionService.MsgSOPArchived, cur.Message)

	// Archive is disabled once the SOP is archived.
	w = env.Post("/sops/actions", url.Values{
		"id": {"SOP-001"}, "modal": {modalSOPActions}, "action": {actionArchive}, "return": {"/sops"},
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestSaveSOP(t *testing.T) {
	env, stores := setup(t)

	w := env.Post("/sops/actions", url.Values{
		"id": {"SOP-002"}, "modal": {modalEdit}, "action": {actionSave}, "return": {"/sops"},
		"name": {"ATO Response"}, "version": {"1.6"}, "status": {"active"}, "steps": {"1. Lock the account"},
	})
	require.Equal(t, http.StatusSeeOther, w.Code)
	cur, _ := env.Toast(t)
	assert.Equal(t, detectionService.MsgSOPSaved, cur.Message)

	sop, err := stores.SOPs.Get(context.Background(), "SOP-002")
	require.NoError(t, err)
	assert.Equal(t, model.StatusActive, sop.Status)
}

func TestDownloadSOP(t *testing.T) {
	env, _ := setup(t)

	w := env.Get("/sops/SOP-002/download")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="sop-002.md"`, w.Header().Get("Content-Disposition"))
	assert.Contains(t, w.Body.String(), "# Account Takeover Response")

	cur, ok := env.Toast(t)
	require.True(t, ok)
	assert.Equal(t, detectionService.MsgSOPDownloaded, cur.Message)

	assert.Equal(t, http.StatusNotFound, env.Get("/sops/SOP-404/download").Code)
}

func TestInsidersRiskFilter(t *testing.T) {
	env, _ := setup(t)

	body := env.Get("/insiders?risk=high").Body.String()
	assert.Contains(t, body, "LOG-002")
	assert.NotContains(t, body, "LOG-001")
	assert.Contains(t, body, `badge-danger">Mass refund approvals`)
}

func TestInvestigateFlagBlock(t *testing.T) {
	env, stores := setup(t)

	body := env.Get("/insiders?modal=investigate&id=LOG-001").Body.String()
	assert.Contains(t, body, "Investigate LOG-001")

	w := env.Post("/insiders/actions", url.Values{"id": {"LOG-001"}, "action": {actionFlag}, "return": {"/insiders"}})
	require.Equal(t, http.StatusSeeOther, w.Code)
	cur, _ := env.Toast(t)
	assert.Equal(t, detectionService.MsgAccessFlagged, cur.Message)

	w = env.Post("/insiders/actions", url.Values{"id": {"LOG-001"}, "action": {actionFlag}, "return": {"/insiders"}})
	assert.Equal(t, http.StatusConflict, w.Code, "flag is disabled once applied")

	w = env.Post("/insiders/actions", url.Values{"id": {"LOG-001"}, "action": {actionBlock}, "return": {"/insiders"}})
	require.Equal(t, http.StatusSeeOther, w.Code)
	cur, _ = env.Toast(t)
	assert.Equal(t, detectionService.MsgAccessBlocked, cur.Message)

	l, err := stores.AccessLogs.Get(context.Background(), "LOG-001")
	require.NoError(t, err)
	assert.True(t, l.Flagged)
	assert.True(t, l.Blocked)
}

func TestInsidersAPIRejectsBadKind(t *testing.T) {
	env, _ := setup(t)
	w := env.Get("/api/v1/insiders?kind=badge")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"field":"kind"`)
}
