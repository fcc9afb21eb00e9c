package casework

import (
	"context"
	"fmt"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fraudshield/admin-dashboard/internal/handler"
	"github.com/fraudshield/admin-dashboard/internal/model"
	"github.com/fraudshield/admin-dashboard/internal/repository/memory"
	caseworkService "github.com/fraudshield/admin-dashboard/internal/service/casework"
	"github.com/fraudshield/admin-dashboard/internal/ui/badge"
	"github.com/fraudshield/admin-dashboard/internal/ui/modal"
	"github.com/fraudshield/admin-dashboard/internal/ui/table"
	"github.com/fraudshield/admin-dashboard/internal/ui/toast"
	"github.com/fraudshield/admin-dashboard/internal/ui/view"
)

const (
	modalCase     = "case"
	modalTracking = "tracking"

	actionClose  = "Close"
	actionReview = "Push to Review"
)

type Handler struct {
	service caseworkService.CaseworkServicer
	pages   *handler.Pages
}

func NewHandler(service caseworkService.CaseworkServicer, pages *handler.Pages) *Handler {
	return &Handler{service: service, pages: pages}
}

func (h *Handler) RegisterRoutes(r gin.IRoutes, api *gin.RouterGroup) {
	r.GET("/cases", h.CasesPage)
	r.GET("/chargebacks", h.ChargebacksPage)
	r.POST("/chargebacks/:id/flag", h.FlagChargeback)
	r.POST("/chargebacks/:id/dispute", h.DisputeChargeback)
	r.GET("/warranty", h.WarrantyPage)
	r.GET("/tracking-anomalies", h.TrackingPage)
	r.POST("/tracking-anomalies/actions", h.TrackingAction)

	api.GET("/cases", h.ListCases)
	api.GET("/cases/:id", h.GetCase)
	api.GET("/chargebacks", h.ListChargebacks)
	api.GET("/warranty", h.ListWarranty)
	api.GET("/tracking", h.ListTracking)
}

type casesContent struct {
	Filter   caseworkService.CaseFilter
	Status   view.Select
	Priority view.Select
	Count    int
	Table    table.View
	Trends   view.Chart
	Types    view.Chart
	Selected *model.Case
}

func caseTable(base string) *table.Table[model.Case] {
	return table.MustNew(
		table.Column[model.Case]{Key: "id", Header: "Case ID"},
		table.Column[model.Case]{Key: "title", Header: "Title"},
		table.Column[model.Case]{Key: "type", Header: "Type"},
		table.Column[model.Case]{Key: "status", Header: "Status", Render: func(c model.Case) template.HTML {
			return badge.Status(c.Status)
		}},
		table.Column[model.Case]{Key: "priority", Header: "Priority", Render: func(c model.Case) template.HTML {
			return badge.Status(c.Priority)
		}},
		table.Column[model.Case]{Key: "assignedTo", Header: "Assigned To"},
		table.Column[model.Case]{Key: "createdAt", Header: "Created"},
		table.Column[model.Case]{Key: "actions", Header: "Actions", Render: func(c model.Case) template.HTML {
			return handler.LinkButton(handler.WithModal(base, modalCase, c.ID), "View Details", badge.Secondary)
		}},
	)
}

// CasesPage lists fraud cases. status and priority narrow the queue and
// q searches titles and case types.
func (h *Handler) CasesPage(c *gin.Context) {
	var f caseworkService.CaseFilter
	banner := handler.BindFilter(c, &f)
	ctx := c.Request.Context()

	content := casesContent{
		Filter:   f,
		Status:   view.NewSelect("status", f.Status, "All Statuses", model.CaseOpen, model.CaseInProgress, model.CaseResolved, model.CaseClosed),
		Priority: view.NewSelect("priority", f.Priority, "All Priorities", "high", "medium", "low"),
		Trends:   view.BarChart(memory.CaseTrends()),
		Types:    view.BarChart(memory.CaseTypes()),
	}
	page := view.NewPage("Case Management", "/cases", &content)
	page.Banner = banner

	cases, err := h.service.Cases(ctx, f)
	if err != nil {
		page.Banner = handler.ErrorBanner(c, err)
	}
	content.Count = len(cases)
	content.Table = caseTable(c.Request.URL.RequestURI()).Render(cases, false)

	if c.Query(handler.QueryModal) == modalCase {
		if sel, err := h.service.Case(ctx, c.Query(handler.QueryID)); err != nil {
			page.Banner = handler.ErrorBanner(c, err)
		} else {
			content.Selected = &sel
			page.OpenModal(modal.New("Case "+sel.ID, []modal.Action{
				{Label: actionClose, Variant: badge.Secondary, Dismiss: true},
			}, modal.WithScrollLock(page.Body), modal.WithCloseURL(handler.WithoutModal(c.Request.URL))))
		}
	}

	h.pages.HTML(c, "cases", page)
}

type chargebacksContent struct {
	Filter    caseworkService.ChargebackFilter
	Processor view.Select
	Reason    view.Select
	Risk      view.Select
	Count     int
	Table     table.View
	Countries view.Chart
	Methods   view.Chart
}

func chargebackTable(returnURL string) *table.Table[model.Chargeback] {
	return table.MustNew(
		table.Column[model.Chargeback]{Key: "id", Header: "Chargeback ID"},
		table.Column[model.Chargeback]{Key: "email", Header: "Email"},
		table.Column[model.Chargeback]{Key: "orderId", Header: "Order ID"},
		table.Column[model.Chargeback]{Key: "processor", Header: "Processor"},
		table.Column[model.Chargeback]{Key: "reason", Header: "Reason"},
		table.Column[model.Chargeback]{Key: "riskScore", Header: "Risk Score", Render: func(cb model.Chargeback) template.HTML {
			return badge.HTML(badge.ForScore(cb.RiskScore), fmt.Sprintf("%d%%", cb.RiskScore))
		}},
		table.Column[model.Chargeback]{Key: "actions", Header: "Actions", Render: func(cb model.Chargeback) template.HTML {
			flag := "Flag User"
			if cb.Flagged {
				flag = "Flagged"
			}
			dispute := "Dispute"
			if cb.Disputed {
				dispute = "Disputed"
			}
			return handler.Actions(
				handler.PostButton("/chargebacks/"+cb.ID+"/flag", returnURL, flag, badge.Primary, cb.Flagged),
				handler.PostButton("/chargebacks/"+cb.ID+"/dispute", returnURL, dispute, badge.Secondary, cb.Disputed),
			)
		}},
	)
}

func (h *Handler) ChargebacksPage(c *gin.Context) {
	var f caseworkService.ChargebackFilter
	banner := handler.BindFilter(c, &f)

	content := chargebacksContent{
		Filter:    f,
		Processor: view.NewSelect("processor", f.Processor, "All Processors", "Stripe=Stripe", "PayPal=PayPal", "Bank Transfer=Bank Transfer"),
		Reason: view.NewSelect("reason", f.Reason, "All Reasons",
			"Item Not Received=Item Not Received", "Unauthorized Transaction=Unauthorized Transaction", "Quality Issue=Quality Issue"),
		Risk:      view.NewSelect("risk", f.Risk, "All Risk Levels", "high=High Risk (>80%)", "medium=Medium Risk (60-80%)", "low=Low Risk (<60%)"),
		Countries: view.BarChart(memory.ChargebacksByCountry()),
		Methods:   view.BarChart(memory.PaymentMethods()),
	}
	page := view.NewPage("Chargeback Monitoring", "/chargebacks", &content)
	page.Banner = banner

	chargebacks, err := h.service.Chargebacks(c.Request.Context(), f)
	if err != nil {
		page.Banner = handler.ErrorBanner(c, err)
	}
	content.Count = len(chargebacks)
	content.Table = chargebackTable(c.Request.URL.RequestURI()).Render(chargebacks, false)

	h.pages.HTML(c, "chargebacks", page)
}

func (h *Handler) FlagChargeback(c *gin.Context) {
	h.chargebackAction(c, h.service.FlagChargeback)
}

func (h *Handler) DisputeChargeback(c *gin.Context) {
	h.chargebackAction(c, h.service.DisputeChargeback)
}

func (h *Handler) chargebackAction(c *gin.Context, fn func(context.Context, string) (string, error)) {
	back := handler.SafeReturn(c.PostForm("return"))
	msg, err := fn(c.Request.Context(), c.Param("id"))
	if err != nil {
		handler.Notifier(c).Show(handler.UserMessage(err), toast.Error)
	} else {
		handler.Notifier(c).Show(msg, toast.Success)
	}
	handler.SeeOther(c, back)
}

type warrantyContent struct {
	Status view.Select
	Count  int
	Table  table.View
}

var warrantyTable = table.MustNew(
	table.Column[model.WarrantyClaim]{Key: "orderId", Header: "Order", Render: func(w model.WarrantyClaim) template.HTML {
		return handler.Text("Order #" + w.OrderID)
	}},
	table.Column[model.WarrantyClaim]{Key: "product", Header: "Product"},
	table.Column[model.WarrantyClaim]{Key: "claimedOn", Header: "Claimed On"},
	table.Column[model.WarrantyClaim]{Key: "status", Header: "Status", Render: func(w model.WarrantyClaim) template.HTML {
		if w.Status == "pending" {
			return badge.HTML(badge.Warning, "Pending Review")
		}
		return badge.Status(w.Status)
	}},
)

func (h *Handler) WarrantyPage(c *gin.Context) {
	var f caseworkService.WarrantyFilter
	banner := handler.BindFilter(c, &f)

	content := warrantyContent{
		Status: view.NewSelect("status", f.Status, "All Claims", "pending", "approved", "rejected"),
	}
	page := view.NewPage("Warranty Claims", "/warranty", &content)
	page.Banner = banner

	claims, err := h.service.WarrantyClaims(c.Request.Context(), f)
	if err != nil {
		page.Banner = handler.ErrorBanner(c, err)
	}
	content.Count = len(claims)
	content.Table = warrantyTable.Render(claims, false)

	h.pages.HTML(c, "warranty", page)
}

type trackingContent struct {
	Filter    caseworkService.TrackingFilter
	Courier   view.Select
	Country   view.Select
	Count     int
	Table     table.View
	Couriers  view.Chart
	Refunds   view.Chart
	RefundMix view.Chart
	Selected  *model.TrackingOrder
	Flags     []string
}

func trackingStatus(status string) template.HTML {
	switch status {
	case "Refunded":
		return badge.HTML(badge.Success, status)
	case "Pending":
		return badge.HTML(badge.Warning, status)
	default:
		return badge.HTML(badge.Secondary, status)
	}
}

func trackingTable(base string) *table.Table[model.TrackingOrder] {
	return table.MustNew(
		table.Column[model.TrackingOrder]{Key: "id", Header: "Order ID"},
		table.Column[model.TrackingOrder]{Key: "trackingNumber", Header: "Tracking Number"},
		table.Column[model.TrackingOrder]{Key: "courier", Header: "Courier"},
		table.Column[model.TrackingOrder]{Key: "country", Header: "Country"},
		table.Column[model.TrackingOrder]{Key: "date", Header: "Date"},
		table.Column[model.TrackingOrder]{Key: "fraudScore", Header: "Fraud Score", Render: func(o model.TrackingOrder) template.HTML {
			return badge.HTML(badge.ForScore(o.FraudScore), fmt.Sprintf("%d%%", o.FraudScore))
		}},
		table.Column[model.TrackingOrder]{Key: "status", Header: "Status", Render: func(o model.TrackingOrder) template.HTML {
			return trackingStatus(o.Status)
		}},
		table.Column[model.TrackingOrder]{Key: "refundMethod", Header: "Refund Method"},
		table.Column[model.TrackingOrder]{Key: "refundAmount", Header: "Amount", Render: func(o model.TrackingOrder) template.HTML {
			return handler.Text(fmt.Sprintf("€%.2f", o.RefundAmount))
		}},
		table.Column[model.TrackingOrder]{Key: "actions", Header: "Actions", Render: func(o model.TrackingOrder) template.HTML {
			return handler.LinkButton(handler.WithModal(base, modalTracking, o.ID), "🔍 View", badge.Primary)
		}},
	)
}

// trackingModal is the shipment detail dialog. Shipments already under
// review cannot be pushed again.
func trackingModal(o model.TrackingOrder, lock modal.ScrollLock, closeURL string, push func() error) *modal.Controller {
	return modal.New("Order "+o.ID, []modal.Action{
		{Label: actionClose, Variant: badge.Secondary, Dismiss: true},
		{Label: actionReview, Variant: badge.Primary, Disabled: o.Status == model.OrderUnderReview, Dismiss: true, Submit: true, OnClick: push},
	}, modal.WithScrollLock(lock), modal.WithCloseURL(closeURL))
}

func (h *Handler) TrackingPage(c *gin.Context) {
	var f caseworkService.TrackingFilter
	banner := handler.BindFilter(c, &f)
	ctx := c.Request.Context()

	content := trackingContent{
		Filter:    f,
		Courier:   view.NewSelect("courier", f.Courier, "All Couriers", "DHL=DHL", "FedEx=FedEx", "UPS=UPS"),
		Country:   view.NewSelect("country", f.Country, "All Countries", "DE=Germany", "US=United States", "UK=United Kingdom"),
		Couriers:  view.BarChart(memory.CourierStats()),
		Refunds:   view.BarChart(memory.RefundTrends()),
		RefundMix: view.BarChart(memory.RefundTypeVsScore()),
	}
	page := view.NewPage("Tracking Anomalies", "/tracking-anomalies", &content)
	page.Banner = banner

	orders, err := h.service.TrackingOrders(ctx, f)
	if err != nil {
		page.Banner = handler.ErrorBanner(c, err)
	}
	content.Count = len(orders)
	content.Table = trackingTable(c.Request.URL.RequestURI()).Render(orders, false)

	if c.Query(handler.QueryModal) == modalTracking {
		if sel, err := h.service.TrackingOrder(ctx, c.Query(handler.QueryID)); err != nil {
			page.Banner = handler.ErrorBanner(c, err)
		} else {
			content.Selected = &sel
			content.Flags = sel.RiskFlags()
			page.OpenModal(trackingModal(sel, page.Body, handler.WithoutModal(c.Request.URL), nil))
		}
	}

	h.pages.HTML(c, "tracking-anomalies", page)
}

// TrackingAction runs a button from the shipment dialog.
func (h *Handler) TrackingAction(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.PostForm("id")
	done := handler.SafeReturn(c.PostForm("return"))

	order, err := h.service.TrackingOrder(ctx, id)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	notify := handler.Notifier(c)
	m := trackingModal(order, &view.Body{}, done, func() error {
		msg, err := h.service.PushToReview(ctx, id)
		if err != nil {
			return err
		}
		notify.Show(msg, toast.Success)
		return nil
	})
	h.pages.RunAction(c, m, done, handler.WithModal(done, modalTracking, id))
}

func (h *Handler) ListCases(c *gin.Context) {
	var f caseworkService.CaseFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		handler.Fail(c, err)
		return
	}
	cases, err := h.service.Cases(c.Request.Context(), f)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(cases))
}

func (h *Handler) GetCase(c *gin.Context) {
	cs, err := h.service.Case(c.Request.Context(), c.Param("id"))
	if err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(cs))
}

func (h *Handler) ListChargebacks(c *gin.Context) {
	var f caseworkService.ChargebackFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		handler.Fail(c, err)
		return
	}
	chargebacks, err := h.service.Chargebacks(c.Request.Context(), f)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(chargebacks))
}

func (h *Handler) ListWarranty(c *gin.Context) {
	var f caseworkService.WarrantyFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		handler.Fail(c, err)
		return
	}
	claims, err := h.service.WarrantyClaims(c.Request.Context(), f)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(claims))
}

func (h *Handler) ListTracking(c *gin.Context) {
	var f caseworkService.TrackingFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		handler.Fail(c, err)
		return
	}
	orders, err := h.service.TrackingOrders(c.Request.Context(), f)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(orders))
}
