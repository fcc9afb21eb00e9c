package view

import (
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/fraudshield/admin-dashboard/internal/ui/badge"
	"github.com/fraudshield/admin-dashboard/internal/ui/modal"
	"github.com/fraudshield/admin-dashboard/internal/ui/toast"
)

// Brand is shown in the sidebar and page titles.
const Brand = "FraudShield"

// NavItem is one sidebar link.
type NavItem struct {
	Path   string
	Label  string
	Icon   string
	Active bool
}

var routes = []NavItem{
	{Path: "/", Label: "Dashboard", Icon: "📊"},
	{Path: "/analytics", Label: "Analytics", Icon: "📈"},
	{Path: "/patterns", Label: "Patterns", Icon: "🔍"},
	{Path: "/sops", Label: "SOPs", Icon: "📋"},
	{Path: "/cases", Label: "Cases", Icon: "📁"},
	{Path: "/chargebacks", Label: "Chargebacks", Icon: "💳"},
	{Path: "/warranty", Label: "Warranty", Icon: "🛡️"},
	{Path: "/tracking-anomalies", Label: "Tracking Anomalies", Icon: "🚚"},
	{Path: "/tcp-fingerprint", Label: "TCP Fingerprint", Icon: "🔍"},
	{Path: "/insiders", Label: "Insiders", Icon: "👥"},
	{Path: "/users", Label: "Users", Icon: "👤"},
	{Path: "/settings", Label: "Settings", Icon: "⚙️"},
	{Path: "/integrations", Label: "Integrations", Icon: "🔌"},
	{Path: "/blog", Label: "Blog", Icon: "📰"},
	{Path: "/kyc", Label: "KYC", Icon: "🪪"},
	{Path: "/fingerprint", Label: "Fingerprint", Icon: "🖐️"},
}

// Routes returns every page path in navigation order.
func Routes() []string {
	out := make([]string, len(routes))
	for i, r := range routes {
		out[i] = r.Path
	}
	return out
}

// Nav returns the sidebar with active marked.
func Nav(active string) []NavItem {
	out := make([]NavItem, len(routes))
	copy(out, routes)
	for i := range out {
		out[i].Active = out[i].Path == active
	}
	return out
}

// Body stands in for the document body. It is the scroll lock every
// modal on the page shares; the layout disables scrolling while any
// lock is held.
type Body struct {
	mu    sync.Mutex
	locks int
}

func (b *Body) Lock() {
	b.mu.Lock()
	b.locks++
	b.mu.Unlock()
}

func (b *Body) Unlock() {
	b.mu.Lock()
	if b.locks > 0 {
		b.locks--
	}
	b.mu.Unlock()
}

// Locked reports whether scrolling is disabled.
func (b *Body) Locked() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.locks > 0
}

// Class is the body's CSS class list.
func (b *Body) Class() string {
	if b.Locked() {
		return "overflow-hidden"
	}
	return ""
}

// ToastView is the template model for the toast slot.
type ToastView struct {
	Message     string
	Type        toast.Type
	Variant     badge.Variant
	RemainingMs int64
}

// ToastFrom builds the slot model from the dispatcher's current toast.
func ToastFrom(n interface{ Current() (toast.Toast, bool) }, now time.Time) *ToastView {
	t, ok := n.Current()
	if !ok {
		return nil
	}
	remaining := t.ExpiresAt.Sub(now)
	if remaining < 0 {
		remaining = 0
	}
	return &ToastView{
		Message:     t.Message,
		Type:        t.Type,
		Variant:     badge.ForToast(string(t.Type)),
		RemainingMs: remaining.Milliseconds(),
	}
}

// Banner is an inline page-level message.
type Banner struct {
	Variant badge.Variant
	Message string
}

// Page is the data handed to the layout template.
type Page[T any] struct {
	Title     string
	Path      string
	ReturnURL string
	Nav       []NavItem
	Toast     *ToastView
	Modal     *modal.View
	Banner    *Banner
	Body      *Body
	Content   T
}

// NewPage builds a page with navigation and an unlocked body.
func NewPage[T any](title, path string, content T) *Page[T] {
	return &Page[T]{
		Title:     title,
		Path:      path,
		ReturnURL: path,
		Nav:       Nav(path),
		Body:      &Body{},
		Content:   content,
	}
}

// OpenModal opens m against the page body and records its view.
func (p *Page[T]) OpenModal(m *modal.Controller) {
	m.Open()
	v := m.View()
	p.Modal = &v
}

// Option is one choice in a filter select.
type Option struct {
	Value string
	Label string
}

// Select is the template model for a filter dropdown.
type Select struct {
	Name    string
	Current string
	Options []Option
}

// NewSelect builds a select whose first option is "all". Each value
// is displayed through badge.Label unless a label is given as
// "value=Label".
func NewSelect(name, current, allLabel string, values ...string) Select {
	if current == "" {
		current = "all"
	}
	s := Select{Name: name, Current: current, Options: []Option{{Value: "all", Label: allLabel}}}
	for _, v := range values {
		value, label, ok := strings.Cut(v, "=")
		if !ok {
			label = badge.Label(value)
		}
		s.Options = append(s.Options, Option{Value: value, Label: label})
	}
	return s
}

// Tab is one link in a tab strip.
type Tab struct {
	Label  string
	Href   string
	Active bool
}

// NewTabs builds a tab strip switching the query key on the current
// page URL. values use the NewSelect "value=Label" form and the first
// one is active when current is empty. Other query values survive the
// switch except any open dialog.
func NewTabs(u *url.URL, key, current string, values ...string) []Tab {
	tabs := make([]Tab, 0, len(values))
	for i, v := range values {
		value, label, ok := strings.Cut(v, "=")
		if !ok {
			label = badge.Label(value)
		}
		q := u.Query()
		q.Set(key, value)
		q.Del("modal")
		q.Del("id")
		href := url.URL{Path: u.Path, RawQuery: q.Encode()}
		tabs = append(tabs, Tab{
			Label:  label,
			Href:   href.RequestURI(),
			Active: value == current || (current == "" && i == 0),
		})
	}
	return tabs
}

func (p *Page[T]) SetToast(t *ToastView) { p.Toast = t }

func (p *Page[T]) SetReturnURL(u string) { p.ReturnURL = u }
