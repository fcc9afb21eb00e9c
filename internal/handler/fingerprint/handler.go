package fingerprint

import (
	"context"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/fraudshield/admin-dashboard/internal/handler"
	"github.com/fraudshield/admin-dashboard/internal/model"
	"github.com/fraudshield/admin-dashboard/internal/repository/memory"
	fingerprintService "github.com/fraudshield/admin-dashboard/internal/service/fingerprint"
	"github.com/fraudshield/admin-dashboard/internal/service/scan"
	"github.com/fraudshield/admin-dashboard/internal/session"
	"github.com/fraudshield/admin-dashboard/internal/ui/badge"
	"github.com/fraudshield/admin-dashboard/internal/ui/modal"
	"github.com/fraudshield/admin-dashboard/internal/ui/table"
	"github.com/fraudshield/admin-dashboard/internal/ui/toast"
	"github.com/fraudshield/admin-dashboard/internal/ui/view"
	apperrors "github.com/fraudshield/admin-dashboard/pkg/errors"
)

const (
	modalEditIP = "edit-ip"
	modalView   = "view"

	actionCancel    = "Cancel"
	actionClose     = "Close"
	actionUpdateIP  = "Update IP"
	actionBlock     = "Block"
	actionWhitelist = "Whitelist"
)

type Handler struct {
	service fingerprintService.FingerprintServicer
	pages   *handler.Pages
}

func NewHandler(service fingerprintService.FingerprintServicer, pages *handler.Pages) *Handler {
	return &Handler{service: service, pages: pages}
}

func (h *Handler) RegisterRoutes(r gin.IRoutes, api *gin.RouterGroup) {
	r.GET("/tcp-fingerprint", h.ScannerPage)
	r.POST("/tcp-fingerprint/scan", h.StartScan)
	r.POST("/tcp-fingerprint/actions", h.ScannerAction)
	r.GET("/fingerprint", h.FingerprintPage)
	r.POST("/fingerprint/actions", h.FingerprintAction)
	r.POST("/fingerprint/:id/block", h.BlockIP)
	r.POST("/fingerprint/:id/whitelist", h.WhitelistIP)

	api.GET("/fingerprints", h.ListRecords)
	api.GET("/fingerprints/:id", h.GetRecord)
	api.GET("/scans/current", h.CurrentScan)
}

func compensationBadge(o model.Order) template.HTML {
	switch o.CompensationType {
	case model.CompensationChargeback:
		return badge.HTML(badge.Danger, o.CompensationType)
	case model.CompensationRefund:
		return badge.HTML(badge.Warning, o.CompensationType)
	default:
		return badge.HTML(badge.Success, o.CompensationType)
	}
}

func rootCauseBadge(o model.Order) template.HTML {
	switch {
	case o.SuspiciousRootCause():
		return badge.HTML(badge.Danger, o.RootCause)
	case o.NeedsReview():
		return badge.HTML(badge.Warning, o.RootCause)
	default:
		return badge.HTML(badge.Secondary, o.RootCause)
	}
}

func scannerTable(back string, scanning bool) *table.Table[model.Order] {
	return table.MustNew(
		table.Column[model.Order]{Key: "id", Header: "Order ID"},
		table.Column[model.Order]{Key: "customerName", Header: "Customer"},
		table.Column[model.Order]{Key: "date", Header: "Date"},
		table.Column[model.Order]{Key: "shippingCountry", Header: "Country"},
		table.Column[model.Order]{Key: "deviceType", Header: "Device"},
		table.Column[model.Order]{Key: "ipAddress", Header: "IP Address"},
		table.Column[model.Order]{Key: "compensationType", Header: "Compensation Type", Render: compensationBadge},
		table.Column[model.Order]{Key: "compensationAmount", Header: "Amount", Render: func(o model.Order) template.HTML {
			return handler.Text(fmt.Sprintf("€%.2f", o.CompensationAmount))
		}},
		table.Column[model.Order]{Key: "rootCause", Header: "Root Cause", Render: rootCauseBadge},
		table.Column[model.Order]{Key: "fraudScore", Header: "Fraud Probability", Render: func(o model.Order) template.HTML {
			return badge.HTML(badge.ForScore(o.FraudScore), fmt.Sprintf("%d%%", o.FraudScore))
		}},
		table.Column[model.Order]{Key: "actions", Header: "Actions", Render: func(o model.Order) template.HTML {
			return scanButton(o.IPAddress, back, scanning)
		}},
	)
}

func scanButton(ip, back string, disabled bool) template.HTML {
	dis := ""
	if disabled {
		dis = " disabled"
	}
	return template.HTML(fmt.Sprintf(
		`<form class="inline" method="post" action="/tcp-fingerprint/scan"><input type="hidden" name="ip" value="%s"><input type="hidden" name="return" value="%s"><button class="btn btn-sm btn-primary" type="submit"%s>Scan IP</button></form>`,
		template.HTMLEscapeString(ip), template.HTMLEscapeString(back), dis))
}

type detailRow struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

var detailTable = table.MustNew(
	table.Column[detailRow]{Key: "field", Header: "Field"},
	table.Column[detailRow]{Key: "value", Header: "Value"},
)

func detailRows(r model.ScanResult) []detailRow {
	signature := "No Match"
	if r.KnownSignature {
		signature = "Match"
	}
	return []detailRow{
		{"TCP Window Size", strconv.Itoa(r.TCPWindowSize)},
		{"TTL", strconv.Itoa(r.TTL)},
		{"TCP Options", strings.Join(r.TCPOptions, ", ")},
		{"OS Guess", r.OSGuess},
		{"SYN Delay", fmt.Sprintf("%dms", r.SynDelay)},
		{"Known Signature", signature},
	}
}

// scanResult is the template model for a settled scan.
type scanResult struct {
	model.ScanResult
	Proxy      template.HTML
	Confidence template.HTML
	Verdict    template.HTML
	Details    table.View
	ScannedAt  string
}

func newScanResult(r model.ScanResult, st scan.State) *scanResult {
	proxy := badge.HTML(badge.Success, "Not Detected")
	if r.ProxyDetected {
		proxy = badge.HTML(badge.Danger, "Detected")
	}
	confidence := badge.Secondary
	switch r.Confidence {
	case "High":
		confidence = badge.Danger
	case "Medium":
		confidence = badge.Warning
	}
	verdict := badge.HTML(badge.Danger, "Fraudulent Pattern Detected")
	switch r.RiskLabel {
	case "Clean Device":
		verdict = badge.HTML(badge.Success, "Clean Device")
	case "Proxy Detected":
		verdict = badge.HTML(badge.Warning, "Proxy Detected")
	}
	return &scanResult{
		ScanResult: r,
		Proxy:      proxy,
		Confidence: badge.HTML(confidence, r.Confidence),
		Verdict:    verdict,
		Details:    detailTable.Render(detailRows(r), false),
		ScannedAt:  st.StartedAt.Format("2006-01-02 15:04:05"),
	}
}

type scannerContent struct {
	Filter   fingerprintService.OrderFilter
	Country  view.Select
	Score    view.Select
	Count    int
	Table    table.View
	Scanning bool
	ScanIP   string
	Result   *scanResult
	EditURL  string
}

// ScannerPage lists compensation orders with a Scan IP action per row.
// While the session's scan is in flight the table shows the loading
// row and the page polls itself.
func (h *Handler) ScannerPage(c *gin.Context) {
	var f fingerprintService.OrderFilter
	banner := handler.BindFilter(c, &f)

	content := scannerContent{
		Filter:  f,
		Country: view.NewSelect("country", f.Country, "All Countries", "US", "UK", "CA"),
		Score:   view.NewSelect("score", f.Score, "All Scores", "high=High Risk (>80%)", "medium=Medium Risk (60-80%)", "low=Low Risk (<60%)"),
	}
	page := view.NewPage("Compensation History Scanner", "/tcp-fingerprint", &content)
	page.Banner = banner

	sess, err := session.FromGin(c)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	st := sess.Scans.State()
	content.Scanning = st.Scanning
	content.ScanIP = st.IP
	switch {
	case st.Err != "":
		page.Banner = &view.Banner{Variant: badge.Danger, Message: st.Err}
	case st.Result != nil:
		content.Result = newScanResult(*st.Result, st)
		content.EditURL = handler.WithModal(c.Request.URL.RequestURI(), modalEditIP, "")
	}

	orders, err := h.service.Orders(c.Request.Context(), f)
	if err != nil {
		page.Banner = handler.ErrorBanner(c, err)
	}
	back := handler.WithoutModal(c.Request.URL)
	content.Count = len(orders)
	content.Table = scannerTable(back, st.Scanning).Render(orders, st.Scanning)

	if c.Query(handler.QueryModal) == modalEditIP && st.Result != nil {
		page.OpenModal(editIPModal(page.Body, back, nil))
	}

	h.pages.HTML(c, "tcp-fingerprint", page)
}

func editIPModal(lock modal.ScrollLock, closeURL string, update func() error) *modal.Controller {
	return modal.New("Edit IP Address", []modal.Action{
		{Label: actionCancel, Variant: badge.Secondary, Dismiss: true},
		{Label: actionUpdateIP, Variant: badge.Primary, Dismiss: true, Submit: true, OnClick: update},
	}, modal.WithScrollLock(lock), modal.WithCloseURL(closeURL))
}

// startScan begins a scan in the caller's session. A new scan replaces
// one still in flight.
func startScan(c *gin.Context, ip string) error {
	sess, err := session.FromGin(c)
	if err != nil {
		return err
	}
	if !sess.Scans.Start(ip) {
		return apperrors.Unavailable(scan.MsgScanFailed, sess.Context().Err())
	}
	zerolog.Ctx(c.Request.Context()).Info().Str("ip", ip).Msg("scan started")
	return nil
}

func (h *Handler) StartScan(c *gin.Context) {
	back := handler.SafeReturn(c.PostForm("return"))
	if err := startScan(c, strings.TrimSpace(c.PostForm("ip"))); err != nil {
		handler.Notifier(c).Show(handler.UserMessage(err), toast.Error)
	}
	handler.SeeOther(c, back)
}

// ScannerAction handles the Edit IP dialog. Update IP rescans the
// address typed into the dialog.
func (h *Handler) ScannerAction(c *gin.Context) {
	back := handler.SafeReturn(c.PostForm("return"))
	if c.PostForm("modal") != modalEditIP {
		handler.Fail(c, apperrors.BadRequest("unknown dialog", nil))
		return
	}
	retry := handler.WithModal(back, modalEditIP, "")
	m := editIPModal(nil, back, func() error {
		return startScan(c, strings.TrimSpace(c.PostForm("ip")))
	})
	h.pages.RunAction(c, m, back, retry)
}

type fingerprintContent struct {
	Filter   fingerprintService.RecordFilter
	Risk     view.Select
	OS       view.Select
	Flagged  view.Select
	Count    int
	Table    table.View
	RiskMix  view.Chart
	OSMix    view.Chart
	Selected *model.FingerprintRecord
}

func mssBadge(r model.FingerprintRecord) template.HTML {
	v := badge.Secondary
	switch {
	case r.MSS < 1200:
		v = badge.Warning
	case r.MSS == 1380 || r.MSS == 1460:
		v = badge.Success
	}
	return badge.HTML(v, strconv.Itoa(r.MSS))
}

func ipInfoCell(r model.FingerprintRecord) template.HTML {
	if r.IPInfo == nil {
		return handler.Text("Unknown")
	}
	out := handler.Text(r.IPInfo.ASN + " · " + r.IPInfo.Country)
	if r.IPInfo.Flagged {
		out += " " + badge.HTML(badge.Danger, "Flagged")
	}
	return out
}

func recordState(r model.FingerprintRecord) template.HTML {
	switch {
	case r.Blocked:
		return badge.HTML(badge.Danger, "Blocked")
	case r.Whitelisted:
		return badge.HTML(badge.Success, "Whitelisted")
	default:
		return badge.HTML(badge.Secondary, "Observed")
	}
}

func fingerprintTable(back string) *table.Table[model.FingerprintRecord] {
	return table.MustNew(
		table.Column[model.FingerprintRecord]{Key: "timestamp", Header: "Timestamp"},
		table.Column[model.FingerprintRecord]{Key: "ip", Header: "IP Address"},
		table.Column[model.FingerprintRecord]{Key: "port", Header: "Port"},
		table.Column[model.FingerprintRecord]{Key: "ttl", Header: "TTL"},
		table.Column[model.FingerprintRecord]{Key: "mss", Header: "MSS", Render: mssBadge},
		table.Column[model.FingerprintRecord]{Key: "window", Header: "Window"},
		table.Column[model.FingerprintRecord]{Key: "flags", Header: "Flags"},
		table.Column[model.FingerprintRecord]{Key: "os", Header: "OS"},
		table.Column[model.FingerprintRecord]{Key: "risk", Header: "Risk", Render: func(r model.FingerprintRecord) template.HTML {
			return badge.HTML(badge.ForScore(r.Risk), strconv.Itoa(r.Risk))
		}},
		table.Column[model.FingerprintRecord]{Key: "ipInfo", Header: "IP Info", Render: ipInfoCell},
		table.Column[model.FingerprintRecord]{Key: "state", Header: "State", Render: recordState},
		table.Column[model.FingerprintRecord]{Key: "actions", Header: "Actions", Render: func(r model.FingerprintRecord) template.HTML {
			return handler.Actions(
				handler.LinkButton(handler.WithModal(back, modalView, r.ID), "View", badge.Secondary),
				handler.PostButton("/fingerprint/"+r.ID+"/block", back, actionBlock, badge.Danger, r.Blocked),
				handler.PostButton("/fingerprint/"+r.ID+"/whitelist", back, actionWhitelist, badge.Success, r.Whitelisted),
			)
		}},
	)
}

// FingerprintPage lists observed TCP handshakes. q searches the IP,
// risk is a FingerprintRisk bucket, os an OS family and flagged the
// network flag.
func (h *Handler) FingerprintPage(c *gin.Context) {
	var f fingerprintService.RecordFilter
	banner := handler.BindFilter(c, &f)
	ctx := c.Request.Context()

	content := fingerprintContent{
		Filter:  f,
		Risk:    view.NewSelect("risk", f.Risk, "All Risk Levels", "low=Low (0-40)", "medium=Medium (41-60)", "high=High (61-100)"),
		OS:      view.NewSelect("os", f.OS, "All OS", "windows=Windows", "linux=Linux", "macos=MacOS"),
		Flagged: view.NewSelect("flagged", f.Flagged, "All IPs", "yes=Flagged", "no=Not Flagged"),
		RiskMix: view.BarChart(memory.FingerprintRiskDistribution()),
		OSMix:   view.BarChart(memory.OSDistribution()),
	}
	page := view.NewPage("TCP/IP Fingerprinting", "/fingerprint", &content)
	page.Banner = banner

	records, err := h.service.Records(ctx, f)
	if err != nil {
		page.Banner = handler.ErrorBanner(c, err)
	}
	back := handler.WithoutModal(c.Request.URL)
	content.Count = len(records)
	content.Table = fingerprintTable(back).Render(records, false)

	if c.Query(handler.QueryModal) == modalView {
		if rec, err := h.service.Record(ctx, c.Query(handler.QueryID)); err != nil {
			page.Banner = handler.ErrorBanner(c, err)
		} else {
			content.Selected = &rec
			page.OpenModal(viewModal(page.Body, back, rec, nil, nil))
		}
	}

	h.pages.HTML(c, "fingerprint", page)
}

func viewModal(lock modal.ScrollLock, closeURL string, rec model.FingerprintRecord, block, whitelist func() error) *modal.Controller {
	return modal.New("Fingerprint Details", []modal.Action{
		{Label: actionClose, Variant: badge.Secondary, Dismiss: true},
		{Label: actionWhitelist, Variant: badge.Success, Dismiss: true, Submit: true, Disabled: rec.Whitelisted, OnClick: whitelist},
		{Label: actionBlock, Variant: badge.Danger, Dismiss: true, Submit: true, Disabled: rec.Blocked, OnClick: block},
	}, modal.WithScrollLock(lock), modal.WithCloseURL(closeURL))
}

// FingerprintAction runs a button from the details dialog.
func (h *Handler) FingerprintAction(c *gin.Context) {
	ctx := c.Request.Context()
	back := handler.SafeReturn(c.PostForm("return"))
	id := c.PostForm("id")

	rec, err := h.service.Record(ctx, id)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	notify := func(run func() (string, error)) func() error {
		return func() error {
			msg, err := run()
			if err != nil {
				return err
			}
			handler.Notifier(c).Show(msg, toast.Success)
			return nil
		}
	}
	m := viewModal(nil, back, rec,
		notify(func() (string, error) { return h.service.Block(ctx, id) }),
		notify(func() (string, error) { return h.service.Whitelist(ctx, id) }),
	)
	h.pages.RunAction(c, m, back, handler.WithModal(back, modalView, id))
}

func (h *Handler) BlockIP(c *gin.Context) {
	h.rowAction(c, h.service.Block)
}

func (h *Handler) WhitelistIP(c *gin.Context) {
	h.rowAction(c, h.service.Whitelist)
}

func (h *Handler) rowAction(c *gin.Context, run func(ctx context.Context, id string) (string, error)) {
	back := handler.SafeReturn(c.PostForm("return"))
	msg, err := run(c.Request.Context(), c.Param("id"))
	if err != nil {
		handler.Notifier(c).Show(handler.UserMessage(err), toast.Error)
	} else {
		handler.Notifier(c).Show(msg, toast.Success)
	}
	handler.SeeOther(c, back)
}

func (h *Handler) ListRecords(c *gin.Context) {
	var f fingerprintService.RecordFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		handler.Fail(c, err)
		return
	}
	records, err := h.service.Records(c.Request.Context(), f)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(records))
}

func (h *Handler) GetRecord(c *gin.Context) {
	rec, err := h.service.Record(c.Request.Context(), c.Param("id"))
	if err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(rec))
}

// CurrentScan reports the caller's scan for clients that poll instead
// of reloading the page.
func (h *Handler) CurrentScan(c *gin.Context) {
	sess, err := session.FromGin(c)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	st := sess.Scans.State()
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{
		"scanning": st.Scanning,
		"ip":       st.IP,
		"result":   st.Result,
		"error":    st.Err,
	}))
}
