package integration

import (
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fraudshield/admin-dashboard/internal/handler"
	"github.com/fraudshield/admin-dashboard/internal/model"
	integrationService "github.com/fraudshield/admin-dashboard/internal/service/integration"
	"github.com/fraudshield/admin-dashboard/internal/ui/badge"
	"github.com/fraudshield/admin-dashboard/internal/ui/modal"
	"github.com/fraudshield/admin-dashboard/internal/ui/table"
	"github.com/fraudshield/admin-dashboard/internal/ui/toast"
	"github.com/fraudshield/admin-dashboard/internal/ui/view"
	apperrors "github.com/fraudshield/admin-dashboard/pkg/errors"
)

const (
	modalConfigure = "configure"

	actionCancel = "Cancel"
	actionSave   = "Save Configuration"
)

type Handler struct {
	service integrationService.IntegrationServicer
	pages   *handler.Pages
}

func NewHandler(service integrationService.IntegrationServicer, pages *handler.Pages) *Handler {
	return &Handler{service: service, pages: pages}
}

func (h *Handler) RegisterRoutes(r gin.IRoutes, api *gin.RouterGroup) {
	r.GET("/settings", h.SettingsPage)
	r.POST("/settings/sync", h.SyncAll)
	r.POST("/settings/:id/connect", h.Connect)
	r.POST("/settings/:id/disconnect", h.Disconnect)
	r.POST("/settings/:id/test", h.Test)
	r.POST("/settings/:id/webhook", h.Webhook)

	r.GET("/integrations", h.IntegrationsPage)
	r.POST("/integrations/actions", h.IntegrationAction)
	r.POST("/integrations/offers/:id", h.ConnectOffer)

	api.GET("/integrations", h.ListIntegrations)
	api.GET("/integrations/:id", h.GetIntegration)
	api.GET("/connectors", h.ListConnectors)
	api.GET("/connectors/health", h.GetHealth)
}

type settingsContent struct {
	Category   string
	Tabs       []view.Tab
	Connectors []model.Connector
	Health     integrationService.Health
	Back       string
}

// SettingsPage is the connector board, one category tab at a time,
// with the health summary across every connector.
func (h *Handler) SettingsPage(c *gin.Context) {
	ctx := c.Request.Context()
	var f integrationService.BoardFilter
	banner := handler.BindFilter(c, &f)

	categories := h.service.Categories()
	if f.Category == "" && len(categories) > 0 {
		f.Category = categories[0]
	}

	data := settingsContent{
		Category: f.Category,
		Tabs:     view.NewTabs(c.Request.URL, "category", f.Category, categories...),
		Back:     c.Request.URL.RequestURI(),
	}
	page := view.NewPage("Integration Settings", "/settings", &data)
	page.Banner = banner

	connectors, err := h.service.Connectors(ctx, f.Category)
	if err != nil {
		page.Banner = handler.ErrorBanner(c, err)
	}
	data.Connectors = connectors

	health, err := h.service.Health(ctx)
	if err != nil {
		page.Banner = handler.ErrorBanner(c, err)
	}
	data.Health = health

	h.pages.HTML(c, "settings", page)
}

// mutate runs a connector change and reports it as a toast.
func (h *Handler) mutate(c *gin.Context, fn func() (string, error)) {
	back := handler.SafeReturn(c.PostForm("return"))
	msg, err := fn()
	if err != nil {
		if apperrors.StatusOf(err) == http.StatusNotFound {
			handler.Fail(c, err)
			return
		}
		handler.Notifier(c).Show(handler.UserMessage(err), toast.Error)
	} else {
		handler.Notifier(c).Show(msg, toast.Success)
	}
	handler.SeeOther(c, back)
}

func (h *Handler) Connect(c *gin.Context) {
	h.mutate(c, func() (string, error) {
		var cred integrationService.Credentials
		if err := c.ShouldBind(&cred); err != nil {
			return "", apperrors.BadRequest("invalid API key", err)
		}
		return h.service.Connect(c.Request.Context(), c.Param("id"), cred)
	})
}

func (h *Handler) Disconnect(c *gin.Context) {
	h.mutate(c, func() (string, error) {
		return h.service.Disconnect(c.Request.Context(), c.Param("id"))
	})
}

func (h *Handler) Test(c *gin.Context) {
	h.mutate(c, func() (string, error) {
		return h.service.TestConnection(c.Request.Context(), c.Param("id"))
	})
}

// Webhook sets the webhook state from the submitted "enabled" value.
func (h *Handler) Webhook(c *gin.Context) {
	h.mutate(c, func() (string, error) {
		enabled := c.PostForm("enabled") == "true"
		return h.service.SetWebhook(c.Request.Context(), c.Param("id"), enabled)
	})
}

func (h *Handler) SyncAll(c *gin.Context) {
	back := handler.SafeReturn(c.PostForm("return"))
	n, err := h.service.SyncAll(c.Request.Context())
	switch {
	case err != nil:
		handler.Notifier(c).Show(handler.UserMessage(err), toast.Error)
	case n == 0:
		handler.Notifier(c).Show(integrationService.MsgNothingToSync, toast.Warning)
	default:
		handler.Notifier(c).Show(fmt.Sprintf("Synced %d integrations", n), toast.Success)
	}
	handler.SeeOther(c, back)
}

type integrationsContent struct {
	Filter    integrationService.Filter
	Type      view.Select
	Health    view.Select
	Count     int
	Table     table.View
	Available []integrationService.Offer
	Back      string
	Selected  *model.Integration
}

func healthBadge(i model.Integration) template.HTML {
	switch i.Health {
	case "healthy":
		return badge.HTML(badge.Success, i.Health)
	case "warning":
		return badge.HTML(badge.Warning, i.Health)
	default:
		return badge.HTML(badge.Danger, i.Health)
	}
}

func syncTime(i model.Integration) template.HTML {
	t, err := time.Parse(time.RFC3339, i.LastSync)
	if err != nil {
		return handler.Text(i.LastSync)
	}
	return handler.Text(t.UTC().Format("Jan 2, 2006 15:04"))
}

func integrationTable(back string) *table.Table[model.Integration] {
	return table.MustNew(
		table.Column[model.Integration]{Key: "name", Header: "Integration"},
		table.Column[model.Integration]{Key: "type", Header: "Type", Render: func(i model.Integration) template.HTML {
			return handler.Text(badge.Label(i.Type))
		}},
		table.Column[model.Integration]{Key: "status", Header: "Status", Render: func(i model.Integration) template.HTML {
			return badge.Status(i.Status)
		}},
		table.Column[model.Integration]{Key: "health", Header: "Health", Render: healthBadge},
		table.Column[model.Integration]{Key: "lastSync", Header: "Last Sync", Render: syncTime},
		table.Column[model.Integration]{Key: "actions", Header: "Actions", Render: func(i model.Integration) template.HTML {
			return handler.LinkButton(handler.WithModal(back, modalConfigure, i.ID), "Configure", badge.Secondary)
		}},
	)
}

func configureModal(name string, lock modal.ScrollLock, closeURL string, save func() error) *modal.Controller {
	return modal.New("Configure "+name, []modal.Action{
		{Label: actionCancel, Variant: badge.Secondary, Dismiss: true},
		{Label: actionSave, Variant: badge.Primary, Dismiss: true, Submit: true, OnClick: save},
	}, modal.WithScrollLock(lock), modal.WithCloseURL(closeURL))
}

func (h *Handler) IntegrationsPage(c *gin.Context) {
	ctx := c.Request.Context()
	var f integrationService.Filter
	banner := handler.BindFilter(c, &f)
	back := handler.WithoutModal(c.Request.URL)

	data := integrationsContent{
		Filter: f,
		Type:   view.NewSelect("type", f.Type, "All Types", "payment", "shipping", "analytics", "identity", "ecommerce=E-commerce"),
		Health: view.NewSelect("health", f.Health, "All Health", "healthy", "warning", "critical"),
		Back:   back,
	}
	page := view.NewPage("Integrations", "/integrations", &data)
	page.Banner = banner

	list, err := h.service.Integrations(ctx, f)
	if err != nil {
		page.Banner = handler.ErrorBanner(c, err)
	}
	data.Count = len(list)
	data.Table = integrationTable(back).Render(list, false)

	offers, err := h.service.Available(ctx)
	if err != nil {
		page.Banner = handler.ErrorBanner(c, err)
	}
	data.Available = offers

	if c.Query(handler.QueryModal) == modalConfigure {
		sel, err := h.service.Integration(ctx, c.Query(handler.QueryID))
		if err != nil {
			page.Banner = handler.ErrorBanner(c, err)
		} else {
			data.Selected = &sel
			page.OpenModal(configureModal(sel.Name, page.Body, back, nil))
		}
	}

	h.pages.HTML(c, "integrations", page)
}

// IntegrationAction runs a button from the configure dialog.
func (h *Handler) IntegrationAction(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.PostForm("id")
	back := handler.SafeReturn(c.PostForm("return"))

	if kind := c.PostForm("modal"); kind != modalConfigure {
		handler.Fail(c, apperrors.BadRequest(fmt.Sprintf("unknown dialog %q", kind), nil))
		return
	}
	sel, err := h.service.Integration(ctx, id)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	m := configureModal(sel.Name, nil, back, func() error {
		var cfg integrationService.Config
		if err := c.ShouldBind(&cfg); err != nil {
			return apperrors.BadRequest("invalid configuration", err)
		}
		msg, err := h.service.Configure(ctx, id, cfg)
		if err != nil {
			return err
		}
		handler.Notifier(c).Show(msg, toast.Success)
		return nil
	})
	h.pages.RunAction(c, m, back, handler.WithModal(back, modalConfigure, id))
}

func (h *Handler) ConnectOffer(c *gin.Context) {
	h.mutate(c, func() (string, error) {
		return h.service.ConnectOffer(c.Request.Context(), c.Param("id"))
	})
}

func (h *Handler) ListIntegrations(c *gin.Context) {
	var f integrationService.Filter
	if err := c.ShouldBindQuery(&f); err != nil {
		handler.Fail(c, err)
		return
	}
	list, err := h.service.Integrations(c.Request.Context(), f)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(list))
}

func (h *Handler) GetIntegration(c *gin.Context) {
	i, err := h.service.Integration(c.Request.Context(), c.Param("id"))
	if err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(i))
}

func (h *Handler) ListConnectors(c *gin.Context) {
	var f integrationService.BoardFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		handler.Fail(c, err)
		return
	}
	list, err := h.service.Connectors(c.Request.Context(), f.Category)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(list))
}

func (h *Handler) GetHealth(c *gin.Context) {
	health, err := h.service.Health(c.Request.Context())
	if err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(health))
}
