package user

import (
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fraudshield/admin-dashboard/internal/handler"
	"github.com/fraudshield/admin-dashboard/internal/model"
	userService "github.com/fraudshield/admin-dashboard/internal/service/user"
	"github.com/fraudshield/admin-dashboard/internal/ui/badge"
	"github.com/fraudshield/admin-dashboard/internal/ui/modal"
	"github.com/fraudshield/admin-dashboard/internal/ui/table"
	"github.com/fraudshield/admin-dashboard/internal/ui/toast"
	"github.com/fraudshield/admin-dashboard/internal/ui/view"
	apperrors "github.com/fraudshield/admin-dashboard/pkg/errors"
)

const (
	modalCreate = "create"
	modalEdit   = "edit"
	modalDelete = "delete"

	actionCancel = "Cancel"
	actionCreate = "Create User"
	actionSave   = "Save Changes"
	actionDelete = "Delete"
)

type Handler struct {
	service userService.UserServicer
	pages   *handler.Pages
}

func NewHandler(service userService.UserServicer, pages *handler.Pages) *Handler {
	return &Handler{service: service, pages: pages}
}

func (h *Handler) RegisterRoutes(r gin.IRoutes, api *gin.RouterGroup) {
	r.GET("/users", h.Page)
	r.POST("/users/actions", h.Action)

	api.GET("/users", h.ListUsers)
	api.GET("/users/stats", h.GetStats)
	api.GET("/users/:id", h.GetUser)
}

type content struct {
	Filter     userService.Filter
	Stats      []model.Stat
	Role       view.Select
	Status     view.Select
	Count      int
	Table      table.View
	CreateURL  string
	Dialog     string
	Selected   *model.User
	RoleOpts   []view.Option
	StatusOpts []view.Option
}

var (
	roleOptions = []view.Option{
		{Value: model.RoleAdmin, Label: "Admin"}, {Value: model.RoleAnalyst, Label: "Analyst"}, {Value: model.RoleViewer, Label: "Viewer"},
	}
	statusOptions = []view.Option{
		{Value: userService.StatusActive, Label: "Active"}, {Value: userService.StatusInactive, Label: "Inactive"}, {Value: userService.StatusPending, Label: "Pending"},
	}
)

func roleBadge(u model.User) template.HTML {
	switch u.Role {
	case model.RoleAdmin:
		return badge.HTML(badge.Danger, u.Role)
	case model.RoleAnalyst:
		return badge.HTML(badge.Warning, u.Role)
	default:
		return badge.HTML(badge.Secondary, u.Role)
	}
}

// statusBadge differs from the shared status colours: an inactive
// operator is flagged, not muted.
func statusBadge(u model.User) template.HTML {
	switch u.Status {
	case userService.StatusActive:
		return badge.HTML(badge.Success, u.Status)
	case userService.StatusInactive:
		return badge.HTML(badge.Danger, u.Status)
	default:
		return badge.HTML(badge.Warning, u.Status)
	}
}

func lastLogin(u model.User) template.HTML {
	t, err := time.Parse(time.RFC3339, u.LastLogin)
	if err != nil {
		return handler.Text("Never")
	}
	return handler.Text(t.UTC().Format("Jan 2, 2006 15:04"))
}

func userTable(back string) *table.Table[model.User] {
	return table.MustNew(
		table.Column[model.User]{Key: "name", Header: "Name"},
		table.Column[model.User]{Key: "email", Header: "Email"},
		table.Column[model.User]{Key: "role", Header: "Role", Render: roleBadge},
		table.Column[model.User]{Key: "status", Header: "Status", Render: statusBadge},
		table.Column[model.User]{Key: "lastLogin", Header: "Last Login", Render: lastLogin},
		table.Column[model.User]{Key: "actions", Header: "Actions", Render: func(u model.User) template.HTML {
			return handler.Actions(
				handler.LinkButton(handler.WithModal(back, modalEdit, u.ID), "Edit", badge.Secondary),
				handler.LinkButton(handler.WithModal(back, modalDelete, u.ID), "Delete", badge.Danger),
			)
		}},
	)
}

func statCards(s userService.Stats) []model.Stat {
	return []model.Stat{
		{Title: "Total Users", Value: fmt.Sprint(s.Total)},
		{Title: "Active Users", Value: fmt.Sprint(s.Active)},
		{Title: "Pending Users", Value: fmt.Sprint(s.Pending)},
		{Title: "Inactive Users", Value: fmt.Sprint(s.Inactive)},
	}
}

func formModal(title, submit string, lock modal.ScrollLock, closeURL string, save func() error) *modal.Controller {
	return modal.New(title, []modal.Action{
		{Label: actionCancel, Variant: badge.Secondary, Dismiss: true},
		{Label: submit, Variant: badge.Primary, Dismiss: true, Submit: true, OnClick: save},
	}, modal.WithScrollLock(lock), modal.WithCloseURL(closeURL))
}

func deleteModal(lock modal.ScrollLock, closeURL string, confirm func() error) *modal.Controller {
	return modal.New("Delete User", []modal.Action{
		{Label: actionCancel, Variant: badge.Secondary, Dismiss: true},
		{Label: actionDelete, Variant: badge.Danger, Dismiss: true, Submit: true, OnClick: confirm},
	}, modal.WithScrollLock(lock), modal.WithCloseURL(closeURL))
}

// Page is user management: status counts, the filtered user list and
// the add, edit and delete dialogs.
func (h *Handler) Page(c *gin.Context) {
	ctx := c.Request.Context()
	var f userService.Filter
	banner := handler.BindFilter(c, &f)
	back := handler.WithoutModal(c.Request.URL)

	data := content{
		Filter:     f,
		Role:       view.NewSelect("role", f.Role, "All Roles", model.RoleAdmin, model.RoleAnalyst, model.RoleViewer),
		Status:     view.NewSelect("status", f.Status, "All Status", userService.StatusActive, userService.StatusInactive, userService.StatusPending),
		CreateURL:  handler.WithModal(back, modalCreate, ""),
		RoleOpts:   roleOptions,
		StatusOpts: statusOptions,
	}
	page := view.NewPage("User Management", "/users", &data)
	page.Banner = banner

	stats, err := h.service.Stats(ctx)
	if err != nil {
		page.Banner = handler.ErrorBanner(c, err)
	}
	data.Stats = statCards(stats)

	users, err := h.service.Users(ctx, f)
	if err != nil {
		page.Banner = handler.ErrorBanner(c, err)
	}
	data.Count = len(users)
	data.Table = userTable(back).Render(users, false)

	switch kind := c.Query(handler.QueryModal); kind {
	case modalCreate:
		data.Dialog = kind
		page.OpenModal(formModal("Add New User", actionCreate, page.Body, back, nil))
	case modalEdit, modalDelete:
		sel, err := h.service.User(ctx, c.Query(handler.QueryID))
		if err != nil {
			page.Banner = handler.ErrorBanner(c, err)
			break
		}
		data.Dialog = kind
		data.Selected = &sel
		if kind == modalEdit {
			page.OpenModal(formModal("Edit User", actionSave, page.Body, back, nil))
		} else {
			page.OpenModal(deleteModal(page.Body, back, nil))
		}
	}

	h.pages.HTML(c, "users", page)
}

// Action runs a button from one of the user dialogs.
func (h *Handler) Action(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.PostForm("id")
	kind := c.PostForm("modal")
	back := handler.SafeReturn(c.PostForm("return"))

	notify := handler.Notifier(c)
	run := func(fn func() (string, error)) func() error {
		return func() error {
			msg, err := fn()
			if err != nil {
				return err
			}
			notify.Show(msg, toast.Success)
			return nil
		}
	}
	bindUpdate := func() (userService.Update, error) {
		var u userService.Update
		if err := c.ShouldBind(&u); err != nil {
			return u, apperrors.BadRequest("invalid user form", err)
		}
		return u, nil
	}

	if kind == modalEdit || kind == modalDelete {
		if _, err := h.service.User(ctx, id); err != nil {
			handler.Fail(c, err)
			return
		}
	}

	var m *modal.Controller
	switch kind {
	case modalCreate:
		m = formModal("Add New User", actionCreate, nil, back, run(func() (string, error) {
			u, err := bindUpdate()
			if err != nil {
				return "", err
			}
			return h.service.CreateUser(ctx, u)
		}))
	case modalEdit:
		m = formModal("Edit User", actionSave, nil, back, run(func() (string, error) {
			u, err := bindUpdate()
			if err != nil {
				return "", err
			}
			return h.service.UpdateUser(ctx, id, u)
		}))
	case modalDelete:
		m = deleteModal(nil, back, run(func() (string, error) {
			return h.service.DeleteUser(ctx, id)
		}))
	default:
		handler.Fail(c, apperrors.BadRequest(fmt.Sprintf("unknown dialog %q", kind), nil))
		return
	}
	h.pages.RunAction(c, m, back, handler.WithModal(back, kind, id))
}

func (h *Handler) ListUsers(c *gin.Context) {
	var f userService.Filter
	if err := c.ShouldBindQuery(&f); err != nil {
		handler.Fail(c, err)
		return
	}
	users, err := h.service.Users(c.Request.Context(), f)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(users))
}

func (h *Handler) GetUser(c *gin.Context) {
	u, err := h.service.User(c.Request.Context(), c.Param("id"))
	if err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(u))
}

func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(stats))
}
