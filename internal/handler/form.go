package handler

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/fraudshield/admin-dashboard/internal/ui/badge"
	"github.com/fraudshield/admin-dashboard/internal/ui/modal"
	"github.com/fraudshield/admin-dashboard/internal/ui/toast"
	"github.com/fraudshield/admin-dashboard/internal/ui/view"
	apperrors "github.com/fraudshield/admin-dashboard/pkg/errors"
)

// Query keys that open a page's dialog.
const (
	QueryModal = "modal"
	QueryID    = "id"
)

// MsgActionFailed is shown when an action fails without a message of
// its own.
const MsgActionFailed = "Action failed. Please try again."

// BindFilter binds the query string into dst. A page keeps working on
// a bad filter: dst is reset to its zero value and the returned banner
// says which control was rejected.
func BindFilter[T any](c *gin.Context, dst *T) *view.Banner {
	err := c.ShouldBindQuery(dst)
	if err == nil {
		return nil
	}
	var zero T
	*dst = zero

	msg := "Invalid filter"
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		msg = fmt.Sprintf("Invalid value for filter %q", verrs[0].Field())
	}
	zerolog.Ctx(c.Request.Context()).Warn().Err(err).Msg("filter rejected")
	return &view.Banner{Variant: badge.Warning, Message: msg}
}

// ErrorBanner logs err and turns it into the page's inline error.
func ErrorBanner(c *gin.Context, err error) *view.Banner {
	zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("page data failed to load")
	return &view.Banner{Variant: badge.Danger, Message: UserMessage(err)}
}

// UserMessage is the text shown to the user for err.
func UserMessage(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return MsgActionFailed
}

// Notifier returns the request's toast slot.
func Notifier(c *gin.Context) toast.Notifier {
	return toast.FromContext(c.Request.Context())
}

// WithModal returns raw with the dialog for kind/id selected.
func WithModal(raw, kind, id string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	q.Set(QueryModal, kind)
	if id != "" {
		q.Set(QueryID, id)
	} else {
		q.Del(QueryID)
	}
	u.RawQuery = q.Encode()
	return u.RequestURI()
}

// WithParam returns raw with one query value replaced.
func WithParam(raw, key, value string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	q.Set(key, value)
	u.RawQuery = q.Encode()
	return u.RequestURI()
}

// WithoutModal is the page URL with any dialog closed.
func WithoutModal(u *url.URL) string {
	q := u.Query()
	q.Del(QueryModal)
	q.Del(QueryID)
	out := *u
	out.RawQuery = q.Encode()
	return out.RequestURI()
}

// RunAction invokes the submitted modal action and redirects. On
// success the browser returns to done. A failing action raises an
// error toast and reopens the dialog at retry. Disabled and unknown
// actions are left to the error middleware.
func (p *Pages) RunAction(c *gin.Context, m *modal.Controller, done, retry string) {
	err := p.Invoke(c, m)
	switch {
	case err == nil:
		SeeOther(c, done)
	case errors.Is(err, modal.ErrActionDisabled), errors.Is(err, modal.ErrUnknownAction):
		c.Abort()
	default:
		zerolog.Ctx(c.Request.Context()).Warn().Err(err).Str("action", c.PostForm("action")).Msg("modal action failed")
		Notifier(c).Show(UserMessage(err), toast.Error)
		SeeOther(c, retry)
	}
}
