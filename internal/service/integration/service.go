// Package integration manages the third-party connections the fraud
// engine pulls data from: the connector board on the settings page and
// the configured integrations list.
package integration

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/fraudshield/admin-dashboard/internal/clock"
	"github.com/fraudshield/admin-dashboard/internal/model"
	"github.com/fraudshield/admin-dashboard/internal/repository"
	"github.com/fraudshield/admin-dashboard/internal/ui/filter"
	apperrors "github.com/fraudshield/admin-dashboard/pkg/errors"
	"github.com/fraudshield/admin-dashboard/pkg/validator"
)

const (
	MsgConfigured    = "Integration configured successfully"
	MsgNothingToSync = "No connected integrations to sync"
)

// Connector states. A connector that was never set up reports error,
// the same as one whose credentials stopped working.
const (
	StatusError        = "error"
	StatusDisconnected = "disconnected"
)

const lastSyncNow = "Just now"

type IntegrationServicer interface {
	Categories() []string
	Connectors(ctx context.Context, category string) ([]model.Connector, error)
	Health(ctx context.Context) (Health, error)
	Connect(ctx context.Context, id string, cred Credentials) (string, error)
	Disconnect(ctx context.Context, id string) (string, error)
	TestConnection(ctx context.Context, id string) (string, error)
	SetWebhook(ctx context.Context, id string, enabled bool) (string, error)
	SyncAll(ctx context.Context) (int, error)

	Integrations(ctx context.Context, f Filter) ([]model.Integration, error)
	Integration(ctx context.Context, id string) (model.Integration, error)
	Configure(ctx context.Context, id string, cfg Config) (string, error)
	Available(ctx context.Context) ([]Offer, error)
	ConnectOffer(ctx context.Context, id string) (string, error)
}

// Credentials is the connect form on a connector card.
type Credentials struct {
	APIKey string `form:"apiKey" json:"apiKey" validate:"required,min=8,max=200,printascii"`
}

// Config is the configure dialog for one integration. An empty APIKey
// keeps the stored one.
type Config struct {
	APIKey   string `form:"apiKey" json:"apiKey" validate:"omitempty,min=8,max=200,printascii"`
	Endpoint string `form:"endpoint" json:"endpoint" validate:"required,url,startswith=https://"`
	Webhook  string `form:"webhook" json:"webhook" validate:"omitempty,url,startswith=https://"`
}

// BoardFilter selects one tab of the connector board.
type BoardFilter struct {
	Category string `form:"category" json:"category" binding:"omitempty,oneof=payments ecommerce shipping analytics documentation security"`
}

// Filter narrows the configured integrations.
type Filter struct {
	Type   string `form:"type" json:"type" binding:"omitempty,oneof=all payment shipping analytics identity ecommerce"`
	Health string `form:"health" json:"health" binding:"omitempty,oneof=all healthy warning critical"`
}

// Health summarises the connector board.
type Health struct {
	Connected int `json:"connected"`
	Errors    int `json:"errors"`
	Total     int `json:"total"`
}

// Offer is an integration that can be connected from the list.
type Offer struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Type        string `json:"type"`
	Endpoint    string `json:"endpoint"`
}

var offers = []Offer{
	{ID: "payment-gateway", Name: "Payment Gateway", Description: "Connect your payment processor", Type: "payment", Endpoint: "https://payments.example.com/v1"},
	{ID: "ecommerce-platform", Name: "E-commerce Platform", Description: "Link your online store", Type: "ecommerce", Endpoint: "https://store.example.com/api"},
}

type Stores struct {
	Connectors   repository.ConnectorRepository
	Integrations repository.IntegrationRepository
}

type Service struct {
	connectors   repository.ConnectorRepository
	integrations repository.IntegrationRepository
	categories   []string
	clock        clock.Clock
	validator    validator.Validator

	// mu serialises read-modify-write on both stores.
	mu sync.Mutex
}

func NewService(s Stores, categories []string, c clock.Clock) *Service {
	return &Service{
		connectors:   s.Connectors,
		integrations: s.Integrations,
		categories:   slices.Clone(categories),
		clock:        c,
		validator:    validator.New(),
	}
}

func (s *Service) Categories() []string {
	return slices.Clone(s.categories)
}

func (s *Service) Connectors(ctx context.Context, category string) ([]model.Connector, error) {
	connectors, err := s.connectors.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list connectors: %w", err)
	}
	return filter.Apply(connectors,
		filter.Equals(category, func(c model.Connector) string { return c.Category }),
	), nil
}

func (s *Service) Health(ctx context.Context) (Health, error) {
	connectors, err := s.connectors.List(ctx)
	if err != nil {
		return Health{}, fmt.Errorf("failed to list connectors: %w", err)
	}
	h := Health{Total: len(connectors)}
	for _, c := range connectors {
		switch {
		case c.Connected():
			h.Connected++
		case c.Status == StatusError:
			h.Errors++
		}
	}
	return h, nil
}

// Connect stores a masked copy of the key and marks the connector live.
func (s *Service) Connect(ctx context.Context, id string, cred Credentials) (string, error) {
	if err := s.validator.Validate(cred); err != nil {
		return "", apperrors.BadRequest(err.Error(), err)
	}
	return s.updateConnector(ctx, id, func(c *model.Connector) (string, error) {
		if c.Connected() {
			return "", apperrors.Conflict(fmt.Sprintf("%s is already connected", c.Name), nil)
		}
		c.Status = model.StatusActive
		c.APIKey = maskKey(cred.APIKey)
		c.LastSync = lastSyncNow
		c.WebhookEnabled = false
		return fmt.Sprintf("%s connected successfully", c.Name), nil
	})
}

func (s *Service) Disconnect(ctx context.Context, id string) (string, error) {
	return s.updateConnector(ctx, id, func(c *model.Connector) (string, error) {
		if !c.Connected() {
			return "", notConnected(*c)
		}
		c.Status = StatusDisconnected
		c.APIKey = ""
		c.WebhookEnabled = false
		return fmt.Sprintf("%s disconnected", c.Name), nil
	})
}

// TestConnection pings a connected connector and refreshes its sync
// time.
func (s *Service) TestConnection(ctx context.Context, id string) (string, error) {
	return s.updateConnector(ctx, id, func(c *model.Connector) (string, error) {
		if !c.Connected() {
			return "", notConnected(*c)
		}
		c.LastSync = lastSyncNow
		return fmt.Sprintf("Connection to %s is healthy", c.Name), nil
	})
}

func (s *Service) SetWebhook(ctx context.Context, id string, enabled bool) (string, error) {
	return s.updateConnector(ctx, id, func(c *model.Connector) (string, error) {
		if !c.Connected() {
			return "", notConnected(*c)
		}
		c.WebhookEnabled = enabled
		if enabled {
			return fmt.Sprintf("Webhooks enabled for %s", c.Name), nil
		}
		return fmt.Sprintf("Webhooks disabled for %s", c.Name), nil
	})
}

// SyncAll refreshes every connected connector and returns how many
// were synced.
func (s *Service) SyncAll(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	connectors, err := s.connectors.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list connectors: %w", err)
	}
	n := 0
	for _, c := range connectors {
		if !c.Connected() {
			continue
		}
		c.LastSync = lastSyncNow
		if err := s.connectors.Save(ctx, c); err != nil {
			return n, fmt.Errorf("failed to sync %s: %w", c.ID, err)
		}
		n++
	}
	zerolog.Ctx(ctx).Info().Int("synced", n).Msg("integrations synced")
	return n, nil
}

func (s *Service) updateConnector(ctx context.Context, id string, apply func(*model.Connector) (string, error)) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.connectors.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return "", apperrors.NotFound("integration", err)
	}
	if err != nil {
		return "", fmt.Errorf("failed to get connector: %w", err)
	}

	msg, err := apply(&c)
	if err != nil {
		return "", err
	}
	if err := s.connectors.Save(ctx, c); err != nil {
		return "", fmt.Errorf("failed to save connector: %w", err)
	}
	zerolog.Ctx(ctx).Info().Str("connector", c.ID).Str("status", c.Status).Msg(msg)
	return msg, nil
}

func notConnected(c model.Connector) error {
	return apperrors.Conflict(fmt.Sprintf("%s is not connected", c.Name), nil)
}

// maskKey keeps the key's leading characters up to its first
// underscore-delimited prefix, the way keys are shown on the board.
func maskKey(key string) string {
	if i := strings.LastIndex(key, "_"); i > 0 && i < len(key)-1 {
		return key[:i+1] + "..."
	}
	if len(key) > 4 {
		return key[:4] + "..."
	}
	return "..."
}

func (s *Service) Integrations(ctx context.Context, f Filter) ([]model.Integration, error) {
	integrations, err := s.integrations.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list integrations: %w", err)
	}
	return filter.Apply(integrations,
		filter.Equals(f.Type, func(i model.Integration) string { return i.Type }),
		filter.Equals(f.Health, func(i model.Integration) string { return i.Health }),
	), nil
}

func (s *Service) Integration(ctx context.Context, id string) (model.Integration, error) {
	i, err := s.integrations.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return model.Integration{}, apperrors.NotFound("integration", err)
	}
	if err != nil {
		return model.Integration{}, fmt.Errorf("failed to get integration: %w", err)
	}
	return i, nil
}

// Configure replaces an integration's connection details.
func (s *Service) Configure(ctx context.Context, id string, cfg Config) (string, error) {
	if err := s.validator.Validate(cfg); err != nil {
		return "", apperrors.BadRequest(err.Error(), err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i, err := s.Integration(ctx, id)
	if err != nil {
		return "", err
	}
	if cfg.APIKey != "" {
		i.Config.APIKey = maskKey(cfg.APIKey)
	}
	i.Config.Endpoint = cfg.Endpoint
	i.Config.Webhook = cfg.Webhook
	i.LastSync = s.clock.Now().UTC().Format(time.RFC3339)

	if err := s.integrations.Save(ctx, i); err != nil {
		return "", fmt.Errorf("failed to save integration: %w", err)
	}
	return MsgConfigured, nil
}

// Available lists the offers that are not yet configured.
func (s *Service) Available(ctx context.Context) ([]Offer, error) {
	integrations, err := s.integrations.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list integrations: %w", err)
	}
	out := make([]Offer, 0, len(offers))
	for _, o := range offers {
		if !slices.ContainsFunc(integrations, func(i model.Integration) bool { return i.Name == o.Name }) {
			out = append(out, o)
		}
	}
	return out, nil
}

// ConnectOffer configures an offer as a new active integration.
func (s *Service) ConnectOffer(ctx context.Context, id string) (string, error) {
	idx := slices.IndexFunc(offers, func(o Offer) bool { return o.ID == id })
	if idx < 0 {
		return "", apperrors.NotFound("integration", nil)
	}
	o := offers[idx]

	s.mu.Lock()
	defer s.mu.Unlock()

	integrations, err := s.integrations.List(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list integrations: %w", err)
	}
	if slices.ContainsFunc(integrations, func(i model.Integration) bool { return i.Name == o.Name }) {
		return "", apperrors.Conflict(fmt.Sprintf("%s is already connected", o.Name), nil)
	}

	i := model.Integration{
		ID:       fmt.Sprintf("INT-%03d", len(integrations)+1),
		Name:     o.Name,
		Type:     o.Type,
		Status:   model.StatusActive,
		LastSync: s.clock.Now().UTC().Format(time.RFC3339),
		Health:   "healthy",
		Config:   model.IntegrationConfig{Endpoint: o.Endpoint},
	}
	if err := s.integrations.Save(ctx, i); err != nil {
		return "", fmt.Errorf("failed to save integration: %w", err)
	}
	return fmt.Sprintf("%s connected successfully", o.Name), nil
}
