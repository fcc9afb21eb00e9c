// Package modal implements the dialog state machine shared by every
// page: Closed until the page opens it, Open until one of the dismiss
// paths closes it.
package modal

import (
	"errors"
	"fmt"
	"sync"

	"github.com/fraudshield/admin-dashboard/internal/ui/badge"
)

var (
	ErrClosed         = errors.New("modal is closed")
	ErrActionDisabled = errors.New("modal action is disabled")
	ErrUnknownAction  = errors.New("modal action not found")
)

// KeyEscape is the key name that dismisses an open modal.
const KeyEscape = "Escape"

// Reason records how a modal was closed.
type Reason string

const (
	ReasonEscape   Reason = "escape"
	ReasonBackdrop Reason = "backdrop"
	ReasonDismiss  Reason = "dismiss"
	ReasonAction   Reason = "action"
)

// ScrollLock is held while a modal is open. Unlock is called exactly
// once for every Lock.
type ScrollLock interface {
	Lock()
	Unlock()
}

// Action is a footer button. OnClick may be nil for pure dismiss
// buttons. When Dismiss is set the modal closes after OnClick returns.
// Submit marks a button that posts the dialog's form; a dismiss button
// without it renders as a link to the close URL.
type Action struct {
	Label    string
	Variant  badge.Variant
	Disabled bool
	Dismiss  bool
	Submit   bool
	Href     string
	OnClick  func() error
}

// Controller owns one modal instance. It is safe for concurrent use,
// though OnClick and onClose handlers run without the lock held.
type Controller struct {
	mu       sync.Mutex
	title    string
	open     bool
	lock     ScrollLock
	onClose  func(Reason)
	actions  []Action
	closeURL string
}

// Option configures a Controller.
type Option func(*Controller)

// WithScrollLock sets the lock taken while the modal is open.
func WithScrollLock(l ScrollLock) Option {
	return func(m *Controller) { m.lock = l }
}

// WithOnClose registers a callback fired once per Open to Closed
// transition.
func WithOnClose(fn func(Reason)) Option {
	return func(m *Controller) { m.onClose = fn }
}

// WithCloseURL sets the URL the rendered dialog navigates to when
// dismissed in the browser.
func WithCloseURL(url string) Option {
	return func(m *Controller) { m.closeURL = url }
}

// New returns a closed Controller. Actions keep the given order.
func New(title string, actions []Action, opts ...Option) *Controller {
	m := &Controller{
		title:   title,
		actions: append([]Action(nil), actions...),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Open transitions Closed to Open and acquires the scroll lock. It is
// a no-op when already open.
func (m *Controller) Open() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.open {
		return
	}
	m.open = true
	if m.lock != nil {
		m.lock.Lock()
	}
}

// IsOpen reports the current state.
func (m *Controller) IsOpen() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.open
}

// Close transitions Open to Closed, releases the scroll lock and fires
// onClose. It reports whether a transition happened; closing a closed
// modal does nothing.
func (m *Controller) Close(reason Reason) bool {
	m.mu.Lock()
	if !m.open {
		m.mu.Unlock()
		return false
	}
	m.open = false
	lock, onClose := m.lock, m.onClose
	m.mu.Unlock()

	if lock != nil {
		lock.Unlock()
	}
	if onClose != nil {
		onClose(reason)
	}
	return true
}

// HandleKey closes the modal on Escape.
func (m *Controller) HandleKey(key string) bool {
	if key != KeyEscape {
		return false
	}
	return m.Close(ReasonEscape)
}

// ClickBackdrop closes the modal as a click outside the dialog would.
func (m *Controller) ClickBackdrop() bool {
	return m.Close(ReasonBackdrop)
}

// Invoke runs the action labelled label. Disabled actions never run.
// If OnClick panics the modal is closed before the panic continues, so
// the scroll lock is never left held.
func (m *Controller) Invoke(label string) (err error) {
	m.mu.Lock()
	if !m.open {
		m.mu.Unlock()
		return ErrClosed
	}
	var action *Action
	for i := range m.actions {
		if m.actions[i].Label == label {
			action = &m.actions[i]
			break
		}
	}
	m.mu.Unlock()

	if action == nil {
		return fmt.Errorf("%w: %s", ErrUnknownAction, label)
	}
	if action.Disabled {
		return fmt.Errorf("%w: %s", ErrActionDisabled, label)
	}

	defer func() {
		if r := recover(); r != nil {
			m.Close(ReasonAction)
			panic(r)
		}
	}()

	if action.OnClick != nil {
		if err = action.OnClick(); err != nil {
			return err
		}
	}
	if action.Dismiss {
		m.Close(ReasonDismiss)
	}
	return nil
}

// ActionView is the template model for one footer button.
type ActionView struct {
	Label    string
	Variant  badge.Variant
	Disabled bool
	Dismiss  bool
	Href     string
}

// View is the template model for a modal.
type View struct {
	Open     bool
	Title    string
	CloseURL string
	Actions  []ActionView
}

// View snapshots the controller for rendering.
func (m *Controller) View() View {
	m.mu.Lock()
	defer m.mu.Unlock()

	v := View{
		Open:     m.open,
		Title:    m.title,
		CloseURL: m.closeURL,
		Actions:  make([]ActionView, len(m.actions)),
	}
	for i, a := range m.actions {
		variant := a.Variant
		if variant == "" {
			variant = badge.Primary
		}
		href := a.Href
		if a.Dismiss && !a.Submit && href == "" {
			href = m.closeURL
		}
		v.Actions[i] = ActionView{
			Label:    a.Label,
			Variant:  variant,
			Disabled: a.Disabled,
			Dismiss:  a.Dismiss,
			Href:     href,
		}
	}
	return v
}
