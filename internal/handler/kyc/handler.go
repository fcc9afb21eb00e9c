package kyc

import (
	"fmt"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/fraudshield/admin-dashboard/internal/handler"
	"github.com/fraudshield/admin-dashboard/internal/middleware"
	"github.com/fraudshield/admin-dashboard/internal/model"
	"github.com/fraudshield/admin-dashboard/internal/repository/memory"
	kycService "github.com/fraudshield/admin-dashboard/internal/service/kyc"
	"github.com/fraudshield/admin-dashboard/internal/ui/badge"
	"github.com/fraudshield/admin-dashboard/internal/ui/modal"
	"github.com/fraudshield/admin-dashboard/internal/ui/table"
	"github.com/fraudshield/admin-dashboard/internal/ui/toast"
	"github.com/fraudshield/admin-dashboard/internal/ui/view"
	apperrors "github.com/fraudshield/admin-dashboard/pkg/errors"
)

const (
	modalReview = "review"
	modalDemo   = "demo"
	modalAPIKey = "api-key"

	actionCancel  = "Cancel"
	actionClose   = "Close"
	actionApprove = "Approve"
	actionReject  = "Reject"
	actionRequest = "Submit Request"
)

type Handler struct {
	service kycService.KYCServicer
	pages   *handler.Pages
}

func NewHandler(service kycService.KYCServicer, pages *handler.Pages) *Handler {
	return &Handler{service: service, pages: pages}
}

func (h *Handler) RegisterRoutes(r gin.IRoutes, api *gin.RouterGroup) {
	r.GET("/kyc", h.Page)
	r.POST("/kyc/submit", h.Submit)
	r.POST("/kyc/actions", h.Action)
	r.POST("/kyc/api-key", h.GenerateAPIKey)

	api.GET("/kyc", h.ListRecords)
	api.GET("/kyc/stats", h.GetStats)
	api.POST("/kyc/verify", middleware.RequireAPIKey(h.service), h.Verify)
}

type content struct {
	Filter    kycService.Filter
	Stats     []model.Stat
	Status    view.Select
	Risk      view.Select
	Country   view.Select
	Count     int
	Table     table.View
	RiskTrend view.Chart
	RiskMix   view.Chart
	Geo       view.Chart
	DemoURL   string
	Back      string
	Dialog    string
	Selected  *model.KYCRecord
	APIKey    string
}

func statusBadge(r model.KYCRecord) template.HTML {
	switch r.Status {
	case model.KYCVerified:
		return badge.HTML(badge.Success, r.Status)
	case model.KYCPending:
		return badge.HTML(badge.Warning, r.Status)
	default:
		return badge.HTML(badge.Danger, r.Status)
	}
}

func recordTable(back string) *table.Table[model.KYCRecord] {
	return table.MustNew(
		table.Column[model.KYCRecord]{Key: "id", Header: "ID"},
		table.Column[model.KYCRecord]{Key: "customerName", Header: "Customer"},
		table.Column[model.KYCRecord]{Key: "email", Header: "Email"},
		table.Column[model.KYCRecord]{Key: "documentType", Header: "Document"},
		table.Column[model.KYCRecord]{Key: "country", Header: "Country"},
		table.Column[model.KYCRecord]{Key: "submissionDate", Header: "Submitted"},
		table.Column[model.KYCRecord]{Key: "riskScore", Header: "Risk Score", Render: func(r model.KYCRecord) template.HTML {
			return badge.Score(r.RiskScore)
		}},
		table.Column[model.KYCRecord]{Key: "status", Header: "Status", Render: statusBadge},
		table.Column[model.KYCRecord]{Key: "actions", Header: "Actions", Render: func(r model.KYCRecord) template.HTML {
			return handler.LinkButton(handler.WithModal(back, modalReview, r.ID), "Review", badge.Secondary)
		}},
	)
}

func statCards(s model.KYCStats) []model.Stat {
	return []model.Stat{
		{Title: "Total Checks", Value: fmt.Sprint(s.TotalChecks)},
		{Title: "Verification Rate", Value: fmt.Sprintf("%d%%", s.VerificationRate)},
		{Title: "Average Risk Score", Value: fmt.Sprint(s.AverageRiskScore)},
	}
}

func scoreSeries(counts []model.ScoreCount) model.Series {
	out := model.Series{Title: "Risk Score Distribution", Points: make([]model.ChartPoint, len(counts))}
	for i, c := range counts {
		out.Points[i] = model.ChartPoint{Name: c.Score, Value: float64(c.Count)}
	}
	return out
}

func geoSeries(counts []model.CountryCount) model.Series {
	out := model.Series{Title: "Geo Mismatches", Points: make([]model.ChartPoint, len(counts))}
	for i, c := range counts {
		out.Points[i] = model.ChartPoint{Name: c.Country, Value: float64(c.Count), Color: "#ef4444"}
	}
	return out
}

// Page is the KYC console. The four backend reads are independent and
// run concurrently.
func (h *Handler) Page(c *gin.Context) {
	h.render(c, "")
}

// render draws the page. apiKey, when set, is shown once in its dialog.
func (h *Handler) render(c *gin.Context, apiKey string) {
	var f kycService.Filter
	banner := handler.BindFilter(c, &f)

	back := handler.WithoutModal(c.Request.URL)
	if apiKey != "" {
		back = "/kyc"
	}
	data := content{
		Filter:    f,
		Status:    view.NewSelect("status", f.Status, "All Statuses", model.KYCPending, model.KYCVerified, model.KYCFailed),
		Risk:      view.NewSelect("risk", f.RiskRange, "All Risk Levels", "low=Low (0-40)", "medium=Medium (41-60)", "high=High (61+)"),
		Country:   view.NewSelect("country", f.Country, "All Countries", "US", "UK", "CA", "AU"),
		RiskTrend: view.BarChart(memory.KYCRiskTrend()),
		DemoURL:   handler.WithModal(back, modalDemo, ""),
		Back:      back,
	}
	page := view.NewPage("KYC Verification", "/kyc", &data)
	page.Banner = banner

	var (
		stats   model.KYCStats
		records []model.KYCRecord
		dist    []model.ScoreCount
		geo     []model.CountryCount
	)
	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() (err error) { stats, err = h.service.Stats(ctx); return err })
	g.Go(func() (err error) { records, err = h.service.Records(ctx, f); return err })
	g.Go(func() (err error) { dist, err = h.service.RiskDistribution(ctx); return err })
	g.Go(func() (err error) { geo, err = h.service.GeoMismatches(ctx); return err })
	if err := g.Wait(); err != nil {
		page.Banner = handler.ErrorBanner(c, err)
	}

	data.Stats = statCards(stats)
	data.Count = len(records)
	data.Table = recordTable(back).Render(records, false)
	data.RiskMix = view.BarChart(scoreSeries(dist))
	data.Geo = view.BarChart(geoSeries(geo))

	switch {
	case apiKey != "":
		data.Dialog = modalAPIKey
		data.APIKey = apiKey
		page.OpenModal(apiKeyModal(page.Body, back))
	case c.Query(handler.QueryModal) == modalReview:
		rec, err := h.service.Record(c.Request.Context(), c.Query(handler.QueryID))
		if err != nil {
			page.Banner = handler.ErrorBanner(c, err)
			break
		}
		data.Dialog = modalReview
		data.Selected = &rec
		page.OpenModal(reviewModal(page.Body, back, rec, nil))
	case c.Query(handler.QueryModal) == modalDemo:
		data.Dialog = modalDemo
		page.OpenModal(demoModal(page.Body, back, nil))
	}

	h.pages.HTML(c, "kyc", page)
}

func reviewModal(lock modal.ScrollLock, closeURL string, r model.KYCRecord, set func(status string) error) *modal.Controller {
	click := func(status string) func() error {
		if set == nil {
			return nil
		}
		return func() error { return set(status) }
	}
	return modal.New("Review "+r.CustomerName, []modal.Action{
		{Label: actionCancel, Variant: badge.Secondary, Dismiss: true},
		{Label: actionReject, Variant: badge.Danger, Dismiss: true, Submit: true, Disabled: r.Status == model.KYCFailed, OnClick: click(model.KYCFailed)},
		{Label: actionApprove, Variant: badge.Success, Dismiss: true, Submit: true, Disabled: r.Status == model.KYCVerified, OnClick: click(model.KYCVerified)},
	}, modal.WithScrollLock(lock), modal.WithCloseURL(closeURL))
}

func demoModal(lock modal.ScrollLock, closeURL string, request func() error) *modal.Controller {
	return modal.New("Request KYC Demo", []modal.Action{
		{Label: actionCancel, Variant: badge.Secondary, Dismiss: true},
		{Label: actionRequest, Variant: badge.Primary, Dismiss: true, Submit: true, OnClick: request},
	}, modal.WithScrollLock(lock), modal.WithCloseURL(closeURL))
}

func apiKeyModal(lock modal.ScrollLock, closeURL string) *modal.Controller {
	return modal.New("API Key Generated", []modal.Action{
		{Label: actionClose, Variant: badge.Secondary, Dismiss: true},
	}, modal.WithScrollLock(lock), modal.WithCloseURL(closeURL))
}

// Submit runs a verification from the inline form. The verdict is
// reported as a toast: success when verified, error when not.
func (h *Handler) Submit(c *gin.Context) {
	back := handler.SafeReturn(c.PostForm("return"))
	var sub kycService.Submission
	if err := c.ShouldBind(&sub); err != nil {
		handler.Fail(c, apperrors.BadRequest("invalid submission", err))
		return
	}

	out, err := h.service.Submit(c.Request.Context(), sub)
	switch {
	case err != nil:
		handler.Notifier(c).Show(handler.UserMessage(err), toast.Error)
	case out.Verified:
		handler.Notifier(c).Show(out.Message, toast.Success)
	default:
		handler.Notifier(c).Show(out.Message, toast.Error)
	}
	handler.SeeOther(c, back)
}

// Action runs a button from the review or demo dialog.
func (h *Handler) Action(c *gin.Context) {
	ctx := c.Request.Context()
	back := handler.SafeReturn(c.PostForm("return"))
	id := c.PostForm("id")
	kind := c.PostForm("modal")

	var m *modal.Controller
	switch kind {
	case modalReview:
		rec, err := h.service.Record(ctx, id)
		if err != nil {
			handler.Fail(c, err)
			return
		}
		m = reviewModal(nil, back, rec, func(status string) error {
			msg, err := h.service.UpdateStatus(ctx, id, status, c.PostForm("notes"))
			if err != nil {
				return err
			}
			handler.Notifier(c).Show(msg, toast.Success)
			return nil
		})
	case modalDemo:
		m = demoModal(nil, back, func() error {
			var req kycService.DemoRequest
			if err := c.ShouldBind(&req); err != nil {
				return apperrors.BadRequest("invalid demo request", err)
			}
			msg, err := h.service.RequestDemo(ctx, req)
			if err != nil {
				return err
			}
			handler.Notifier(c).Show(msg, toast.Success)
			return nil
		})
	default:
		handler.Fail(c, apperrors.BadRequest("unknown dialog", nil))
		return
	}
	h.pages.RunAction(c, m, back, handler.WithModal(back, kind, id))
}

// GenerateAPIKey issues a new key and answers with the page itself so
// the plaintext is shown once and never lands in a URL.
func (h *Handler) GenerateAPIKey(c *gin.Context) {
	key, err := h.service.IssueAPIKey(c.Request.Context())
	if err != nil {
		handler.Notifier(c).Show(handler.UserMessage(err), toast.Error)
		handler.SeeOther(c, "/kyc")
		return
	}
	handler.Notifier(c).Show(kycService.MsgAPIKeyIssued, toast.Success)
	h.render(c, key)
}

func (h *Handler) ListRecords(c *gin.Context) {
	var f kycService.Filter
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

func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(stats))
}

// Verify is the integration endpoint. Callers authenticate with the
// key issued from the console.
func (h *Handler) Verify(c *gin.Context) {
	var sub kycService.Submission
	if err := c.ShouldBindJSON(&sub); err != nil {
		handler.Fail(c, apperrors.BadRequest("invalid submission", err))
		return
	}
	out, err := h.service.Submit(c.Request.Context(), sub)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(out))
}
