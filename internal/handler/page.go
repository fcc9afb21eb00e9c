package handler

import (
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/fraudshield/admin-dashboard/internal/clock"
	"github.com/fraudshield/admin-dashboard/internal/session"
	"github.com/fraudshield/admin-dashboard/internal/ui/modal"
	"github.com/fraudshield/admin-dashboard/internal/ui/view"
	apperrors "github.com/fraudshield/admin-dashboard/pkg/errors"
	"github.com/fraudshield/admin-dashboard/pkg/metrics"
)

// Renderer executes a named page template.
type Renderer interface {
	Render(w io.Writer, page string, data any) error
}

// Frame is implemented by view.Page; it lets Pages fill in the parts
// of a page every handler shares.
type Frame interface {
	SetToast(*view.ToastView)
	SetReturnURL(string)
}

// Pages renders full HTML pages for the dashboard handlers.
type Pages struct {
	views   Renderer
	clock   clock.Clock
	metrics *metrics.Metrics
}

func NewPages(views Renderer, c clock.Clock, m *metrics.Metrics) *Pages {
	if m == nil {
		m = metrics.Nop()
	}
	return &Pages{views: views, clock: c, metrics: m}
}

// Clock is the clock pages are rendered against.
func (p *Pages) Clock() clock.Clock {
	return p.clock
}

// HTML renders name with the session's current toast.
func (p *Pages) HTML(c *gin.Context, name string, page Frame) {
	start := p.clock.Now()
	if sess, err := session.FromGin(c); err == nil {
		page.SetToast(view.ToastFrom(sess.Toasts, p.clock.Now()))
	}
	page.SetReturnURL(c.Request.URL.RequestURI())

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := p.views.Render(c.Writer, name, page); err != nil {
		c.Writer.Header().Del("Content-Type")
		_ = c.Error(apperrors.Internal(err))
		c.Status(http.StatusInternalServerError)
		return
	}
	p.metrics.PageRenders.WithLabelValues(name).Inc()
	p.metrics.PageLatency.WithLabelValues(name).Observe(p.clock.Now().Sub(start).Seconds())
}

// Invoke opens m and runs the action the form submitted, recording the
// result. The returned error is already attached to c for anything but
// an action's own failure.
func (p *Pages) Invoke(c *gin.Context, m *modal.Controller) error {
	label := c.PostForm("action")
	m.Open()
	err := m.Invoke(label)

	result := "ok"
	switch {
	case err == nil:
	case errors.Is(err, modal.ErrActionDisabled):
		result = "disabled"
		_ = c.Error(apperrors.Conflict("action is disabled", err))
	case errors.Is(err, modal.ErrUnknownAction):
		result = "unknown"
		_ = c.Error(apperrors.BadRequest("unknown action", err))
	default:
		result = "failed"
	}
	p.metrics.ModalActions.WithLabelValues(label, result).Inc()
	return err
}

// Fail reports a request error through the error middleware.
func Fail(c *gin.Context, err error) {
	zerolog.Ctx(c.Request.Context()).Debug().Err(err).Msg("request failed")
	_ = c.Error(err)
	c.Abort()
}

// SeeOther redirects after a mutation.
func SeeOther(c *gin.Context, location string) {
	c.Redirect(http.StatusSeeOther, location)
}

// SafeReturn keeps redirects on this site: anything that is not a
// plain absolute path falls back to "/".
func SafeReturn(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.IsAbs() || u.Host != "" || !strings.HasPrefix(u.Path, "/") || strings.HasPrefix(raw, "//") {
		return "/"
	}
	return u.RequestURI()
}

// WithQuery returns path with values encoded, dropping empty and "all"
// values so the URL only carries active controls.
func WithQuery(path string, values url.Values) string {
	clean := url.Values{}
	for k, vs := range values {
		for _, v := range vs {
			if v != "" && v != "all" {
				clean.Add(k, v)
			}
		}
	}
	if len(clean) == 0 {
		return path
	}
	return path + "?" + clean.Encode()
}
