package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fraudshield/admin-dashboard/internal/session"
	"github.com/fraudshield/admin-dashboard/internal/ui/view"
)

// Handler serves the toast slot shared by every page.
type Handler struct {
	pages *Pages
}

// NewHandler creates a new handler instance
func NewHandler(pages *Pages) *Handler {
	return &Handler{pages: pages}
}

func (h *Handler) RegisterRoutes(r gin.IRoutes, api *gin.RouterGroup) {
	r.POST("/toast/dismiss", h.DismissToast)
	api.GET("/toast", h.CurrentToast)
}

// DismissToast is the toast's close button.
func (h *Handler) DismissToast(c *gin.Context) {
	sess, err := session.FromGin(c)
	if err != nil {
		Fail(c, err)
		return
	}
	sess.Toasts.Dismiss()
	SeeOther(c, SafeReturn(c.PostForm("return")))
}

// CurrentToast lets scripts poll the slot.
func (h *Handler) CurrentToast(c *gin.Context) {
	sess, err := session.FromGin(c)
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, NewSuccessResponse(view.ToastFrom(sess.Toasts, h.pages.Clock().Now())))
}
