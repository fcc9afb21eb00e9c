package overview

import (
	"fmt"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fraudshield/admin-dashboard/internal/handler"
	"github.com/fraudshield/admin-dashboard/internal/model"
	"github.com/fraudshield/admin-dashboard/internal/repository/memory"
	overviewService "github.com/fraudshield/admin-dashboard/internal/service/overview"
	"github.com/fraudshield/admin-dashboard/internal/ui/badge"
	"github.com/fraudshield/admin-dashboard/internal/ui/modal"
	"github.com/fraudshield/admin-dashboard/internal/ui/table"
	"github.com/fraudshield/admin-dashboard/internal/ui/toast"
	"github.com/fraudshield/admin-dashboard/internal/ui/view"
)

const (
	modalPost = "post"

	// MsgExported is shown after the orders CSV is downloaded.
	MsgExported = "Orders exported to CSV"
)

type Handler struct {
	service overviewService.OverviewServicer
	pages   *handler.Pages
}

func NewHandler(service overviewService.OverviewServicer, pages *handler.Pages) *Handler {
	return &Handler{service: service, pages: pages}
}

func (h *Handler) RegisterRoutes(r gin.IRoutes, api *gin.RouterGroup) {
	r.GET("/", h.Dashboard)
	r.GET("/orders/export", h.ExportOrders)
	r.POST("/orders/review", h.PushToReview)
	r.GET("/analytics", h.Analytics)
	r.GET("/blog", h.Blog)

	api.GET("/orders", h.ListOrders)
	api.GET("/analytics/trend", h.GetTrend)
	api.GET("/blog", h.ListPosts)
}

type dashboardContent struct {
	Filter       overviewService.OrderFilter
	Stats        []model.Stat
	Integrations []model.IntegrationSummary
	Country      view.Select
	Compensation view.Select
	Risk         view.Select
	Count        int
	Table        table.View
	ExportURL    string
	Daily        view.Chart
	Reasons      view.Chart
	RiskMix      view.Chart
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

var orderTable = table.MustNew(
	table.Column[model.Order]{Key: "id", Header: "Order ID"},
	table.Column[model.Order]{Key: "customerName", Header: "Customer"},
	table.Column[model.Order]{Key: "date", Header: "Date"},
	table.Column[model.Order]{Key: "compensationType", Header: "Compensation Type", Render: compensationBadge},
	table.Column[model.Order]{Key: "compensationAmount", Header: "Amount", Render: func(o model.Order) template.HTML {
		return handler.Text(fmt.Sprintf("€%.2f", o.CompensationAmount))
	}},
	table.Column[model.Order]{Key: "rootCause", Header: "Root Cause", Render: rootCauseBadge},
	table.Column[model.Order]{Key: "fraudScore", Header: "Fraud Probability", Render: func(o model.Order) template.HTML {
		return badge.HTML(badge.ForScore(o.FraudScore), fmt.Sprintf("%d%%", o.FraudScore))
	}},
	table.Column[model.Order]{Key: "resolutionSummary", Header: "Resolution Summary"},
)

// Dashboard is the compensation overview at "/".
func (h *Handler) Dashboard(c *gin.Context) {
	var f overviewService.OrderFilter
	banner := handler.BindFilter(c, &f)

	content := dashboardContent{
		Filter:       f,
		Stats:        memory.DashboardStats(),
		Integrations: memory.IntegrationSummaries(),
		Country: view.NewSelect("country", f.Country, "All Countries",
			"US=United States", "CA=Canada", "UK=United Kingdom", "AU=Australia", "DE=Germany", "FR=France"),
		Compensation: view.NewSelect("compensation", f.Compensation, "All Compensation Types",
			model.CompensationRefund+"=Refund", model.CompensationReplacement+"=Replacement", model.CompensationChargeback+"=Chargeback"),
		Risk:      view.NewSelect("risk", f.Risk, "All Risk Levels", "high=High Risk (>80%)", "medium=Medium Risk (60-80%)", "low=Low Risk (<60%)"),
		ExportURL: handler.WithQuery("/orders/export", c.Request.URL.Query()),
		Daily:     view.BarChart(memory.DailyFlaggedOrders()),
		Reasons:   view.BarChart(memory.FraudReasons()),
		RiskMix:   view.BarChart(memory.OrderRiskDistribution()),
	}
	page := view.NewPage("Compensation Dashboard", "/", &content)
	page.Banner = banner

	orders, err := h.service.Orders(c.Request.Context(), f)
	if err != nil {
		page.Banner = handler.ErrorBanner(c, err)
	}
	content.Count = len(orders)
	content.Table = orderTable.Render(orders, false)

	h.pages.HTML(c, "dashboard", page)
}

// ExportOrders downloads the filtered orders as CSV.
func (h *Handler) ExportOrders(c *gin.Context) {
	var f overviewService.OrderFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		handler.Fail(c, err)
		return
	}
	data, err := h.service.ExportOrders(c.Request.Context(), f)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	handler.Notifier(c).Show(MsgExported, toast.Success)
	c.Header("Content-Disposition", `attachment; filename="compensations.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}

func (h *Handler) PushToReview(c *gin.Context) {
	back := handler.SafeReturn(c.PostForm("return"))
	msg, err := h.service.PushFlaggedToReview(c.Request.Context())
	if err != nil {
		handler.Notifier(c).Show(handler.UserMessage(err), toast.Warning)
	} else {
		handler.Notifier(c).Show(msg, toast.Success)
	}
	handler.SeeOther(c, back)
}

type analyticsContent struct {
	Filter      overviewService.TrendFilter
	Stats       []model.Stat
	Performance []model.Stat
	Ranges      []view.Tab
	Metrics     []view.Tab
	Trend       view.Chart
	Types       view.Chart
	Risk        view.Chart
	Patterns    view.Chart
}

func (h *Handler) Analytics(c *gin.Context) {
	var f overviewService.TrendFilter
	banner := handler.BindFilter(c, &f)

	content := analyticsContent{
		Filter:      f,
		Stats:       memory.AnalyticsStats(),
		Performance: memory.PerformanceStats(),
		Ranges: view.NewTabs(c.Request.URL, "range", f.Range,
			overviewService.Range7d+"=Last 7 days", overviewService.Range30d+"=Last 30 days", overviewService.Range90d+"=Last 90 days"),
		Metrics: view.NewTabs(c.Request.URL, "metric", f.Metric,
			overviewService.MetricCases+"=Cases", overviewService.MetricPrevented+"=Prevented"),
		Trend:    view.BarChart(h.service.Trend(f)),
		Types:    view.BarChart(memory.FraudTypes()),
		Risk:     view.BarChart(memory.AnalyticsRiskDistribution()),
		Patterns: view.BarChart(memory.PatternEffectiveness()),
	}
	page := view.NewPage("Analytics", "/analytics", &content)
	page.Banner = banner

	h.pages.HTML(c, "analytics", page)
}

type blogContent struct {
	Filter   overviewService.PostFilter
	Posts    []postCard
	Selected *model.BlogPost
}

type postCard struct {
	model.BlogPost
	Href string
}

func (h *Handler) Blog(c *gin.Context) {
	var f overviewService.PostFilter
	banner := handler.BindFilter(c, &f)
	ctx := c.Request.Context()

	content := blogContent{Filter: f}
	page := view.NewPage("Fraud Prevention Blog", "/blog", &content)
	page.Banner = banner

	posts, err := h.service.Posts(ctx, f)
	if err != nil {
		page.Banner = handler.ErrorBanner(c, err)
	}
	base := c.Request.URL.RequestURI()
	for _, p := range posts {
		content.Posts = append(content.Posts, postCard{BlogPost: p, Href: handler.WithModal(base, modalPost, p.ID)})
	}

	if c.Query(handler.QueryModal) == modalPost {
		if sel, err := h.service.Post(ctx, c.Query(handler.QueryID)); err != nil {
			page.Banner = handler.ErrorBanner(c, err)
		} else {
			content.Selected = &sel
			page.OpenModal(modal.New(sel.Title, []modal.Action{
				{Label: "Close", Variant: badge.Secondary, Dismiss: true},
			}, modal.WithScrollLock(page.Body), modal.WithCloseURL(handler.WithoutModal(c.Request.URL))))
		}
	}

	h.pages.HTML(c, "blog", page)
}

func (h *Handler) ListOrders(c *gin.Context) {
	var f overviewService.OrderFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		handler.Fail(c, err)
		return
	}
	orders, err := h.service.Orders(c.Request.Context(), f)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(orders))
}

func (h *Handler) GetTrend(c *gin.Context) {
	var f overviewService.TrendFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(h.service.Trend(f)))
}

func (h *Handler) ListPosts(c *gin.Context) {
	var f overviewService.PostFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		handler.Fail(c, err)
		return
	}
	posts, err := h.service.Posts(c.Request.Context(), f)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(posts))
}
