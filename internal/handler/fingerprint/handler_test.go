package fingerprint

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fraudshield/admin-dashboard/internal/handler/handlertest"
	"github.com/fraudshield/admin-dashboard/internal/model"
	"github.com/fraudshield/admin-dashboard/internal/repository/memory"
	fingerprintService "github.com/fraudshield/admin-dashboard/internal/service/fingerprint"
	"github.com/fraudshield/admin-dashboard/internal/service/scan"
	"github.com/fraudshield/admin-dashboard/internal/ui/toast"
	apperrors "github.com/fraudshield/admin-dashboard/pkg/errors"
)

// gatedScanner holds every scan until release is closed.
type gatedScanner struct {
	release chan struct{}
}

func (g gatedScanner) Scan(ctx context.Context, ip string) (model.ScanResult, error) {
	select {
	case <-ctx.Done():
		return model.ScanResult{}, ctx.Err()
	case <-g.release:
	}
	return model.ScanResult{
		Target:        model.ScanTarget{IP: ip, ISP: "Hosting", ASN: "AS9009", Country: "NL", City: "Amsterdam", ReverseDNS: "Unknown"},
		ProxyDetected: true, ProxyType: "Residential", Confidence: "High", Anomaly: "TCP TTL mismatch",
		TCPWindowSize: 65280, TTL: 64, TCPOptions: []string{"MSS", "SACK", "Timestamps"},
		OSGuess: "Linux / Android", SynDelay: 5, KnownSignature: true, RiskLabel: "Proxy Detected",
	}, nil
}

func register(t *testing.T, env *handlertest.Env) *memory.Stores {
	t.Helper()
	stores := memory.Seed()
	svc := fingerprintService.NewService(fingerprintService.Stores{Orders: stores.Orders, Fingerprints: stores.Fingerprints})
	NewHandler(svc, env.Pages).RegisterRoutes(env.Engine, env.API)
	return stores
}

func TestScannerFilters(t *testing.T) {
	env := handlertest.New(t)
	register(t, env)

	body := env.Get("/tcp-fingerprint?score=high").Body.String()
	assert.Contains(t, body, "ORD-001")
	assert.Contains(t, body, "ORD-003")
	assert.NotContains(t, body, "ORD-005")
	assert.Contains(t, body, `name="ip" value="192.168.1.100"`)

	body = env.Get("/tcp-fingerprint?q=nobody").Body.String()
	assert.Contains(t, body, `colspan="11"`)
	assert.Contains(t, body, "No data available")
}

func TestScanShowsLoadingThenResult(t *testing.T) {
	gate := gatedScanner{release: make(chan struct{})}
	env := handlertest.NewWithScanner(t, gate)
	register(t, env)

	w := env.Post("/tcp-fingerprint/scan", url.Values{"ip": {"192.168.1.100"}, "return": {"/tcp-fingerprint?country=US"}})
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/tcp-fingerprint?country=US", w.Header().Get("Location"))

	body := env.Get("/tcp-fingerprint").Body.String()
	assert.Contains(t, body, "Loading...")
	assert.Contains(t, body, `colspan="11"`)
	assert.Contains(t, body, `data-scan-pending="192.168.1.100"`)
	assert.NotContains(t, body, "John Doe", "rows are hidden while scanning")

	close(gate.release)
	env.Session(t).Scans.Wait()

	body = env.Get("/tcp-fingerprint").Body.String()
	assert.NotContains(t, body, "data-scan-pending")
	assert.Contains(t, body, "Target IP Information")
	assert.Contains(t, body, "Amsterdam, NL")
	assert.Contains(t, body, "MSS, SACK, Timestamps")
	assert.Contains(t, body, `badge-warning">Proxy Detected`)

	_, ok := env.Toast(t)
	assert.False(t, ok, "a successful scan raises no toast")
}

func TestScanFailureShowsBannerAndToast(t *testing.T) {
	env := handlertest.NewWithScanner(t, handlertest.Scanner{Err: apperrors.Unavailable(scan.MsgScanFailed, scan.ErrScanFailed)})
	register(t, env)

	env.Post("/tcp-fingerprint/scan", url.Values{"ip": {"10.0.0.123"}, "return": {"/tcp-fingerprint"}})
	env.Session(t).Scans.Wait()

	body := env.Get("/tcp-fingerprint").Body.String()
	assert.Contains(t, body, `class="banner banner-danger" role="alert">Scan failed. Please try again.`)
	assert.NotContains(t, body, "Target IP Information")

	cur, ok := env.Toast(t)
	require.True(t, ok)
	assert.Equal(t, toast.Error, cur.Type)
	assert.Equal(t, scan.MsgScanFailed, cur.Message)
}

func TestEditIPRescans(t *testing.T) {
	env := handlertest.New(t)
	register(t, env)

	env.Post("/tcp-fingerprint/scan", url.Values{"ip": {"192.168.1.100"}, "return": {"/tcp-fingerprint"}})
	sess := env.Session(t)
	sess.Scans.Wait()

	body := env.Get("/tcp-fingerprint?modal=edit-ip").Body.String()
	assert.Contains(t, body, "Edit IP Address")
	assert.Contains(t, body, `name="ip" value="192.168.1.100" required`)

	w := env.Post("/tcp-fingerprint/actions", url.Values{
		"modal": {modalEditIP}, "action": {actionUpdateIP}, "ip": {"203.0.113.1"}, "return": {"/tcp-fingerprint"},
	})
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/tcp-fingerprint", w.Header().Get("Location"))

	sess.Scans.Wait()
	assert.Equal(t, "203.0.113.1", sess.Scans.State().IP)
}

func TestEditIPModalNeedsResult(t *testing.T) {
	env := handlertest.New(t)
	register(t, env)

	body := env.Get("/tcp-fingerprint?modal=edit-ip").Body.String()
	assert.NotContains(t, body, `role="dialog"`)
}

func TestFingerprintFilters(t *testing.T) {
	env := handlertest.New(t)
	register(t, env)

	body := env.Get("/fingerprint?risk=high").Body.String()
	assert.Contains(t, body, "10.0.0.5")
	assert.NotContains(t, body, "192.168.1.100")
	assert.Contains(t, body, `badge-warning">1150`)

	body = env.Get("/fingerprint?flagged=no&os=windows").Body.String()
	assert.Contains(t, body, "192.168.1.100")
	assert.Contains(t, body, `badge-success">1380`)
	assert.NotContains(t, body, "185.222.211.42")
}

func TestBlockRowAction(t *testing.T) {
	env := handlertest.New(t)
	stores := register(t, env)

	w := env.Post("/fingerprint/FP-001/block", url.Values{"return": {"/fingerprint?risk=low"}})
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/fingerprint?risk=low", w.Header().Get("Location"))
	cur, _ := env.Toast(t)
	assert.Equal(t, fingerprintService.MsgBlocked, cur.Message)

	rec, err := stores.Fingerprints.Get(context.Background(), "FP-001")
	require.NoError(t, err)
	assert.True(t, rec.Blocked)

	env.Post("/fingerprint/FP-001/block", url.Values{"return": {"/fingerprint"}})
	cur, _ = env.Toast(t)
	assert.Equal(t, toast.Error, cur.Type)
	assert.Equal(t, "185.222.211.42 is already blocked", cur.Message)
}

func TestViewModalWhitelist(t *testing.T) {
	env := handlertest.New(t)
	register(t, env)

	body := env.Get("/fingerprint?modal=view&id=FP-002").Body.String()
	assert.Contains(t, body, "Fingerprint Details")
	assert.Contains(t, body, "AS1234 Example ISP")

	form := url.Values{"id": {"FP-002"}, "action": {actionWhitelist}, "return": {"/fingerprint"}}
	w := env.Post("/fingerprint/actions", form)
	require.Equal(t, http.StatusSeeOther, w.Code)
	cur, _ := env.Toast(t)
	assert.Equal(t, fingerprintService.MsgWhitelisted, cur.Message)

	w = env.Post("/fingerprint/actions", form)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = env.Post("/fingerprint/actions", url.Values{"id": {"FP-404"}, "action": {actionBlock}})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFingerprintAPI(t *testing.T) {
	env := handlertest.New(t)
	register(t, env)

	w := env.Get("/api/v1/fingerprints?risk=medium")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "FP-002")
	assert.NotContains(t, w.Body.String(), "FP-001")

	w = env.Get("/api/v1/fingerprints?os=solaris")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"field":"os"`)

	assert.Equal(t, http.StatusNotFound, env.Get("/api/v1/fingerprints/FP-404").Code)
	assert.Contains(t, env.Get("/api/v1/scans/current").Body.String(), `"scanning":false`)
}
