// Package fingerprint backs the network pages: the TCP compensation
// scanner and the passive fingerprint log.
package fingerprint

import (
	"context"
	"errors"
	"fmt"

	"github.com/fraudshield/admin-dashboard/internal/model"
	"github.com/fraudshield/admin-dashboard/internal/repository"
	"github.com/fraudshield/admin-dashboard/internal/ui/filter"
	apperrors "github.com/fraudshield/admin-dashboard/pkg/errors"
)

const (
	MsgBlocked     = "IP blocked successfully"
	MsgWhitelisted = "IP whitelisted successfully"
)

type FingerprintServicer interface {
	Orders(ctx context.Context, f OrderFilter) ([]model.Order, error)
	Records(ctx context.Context, f RecordFilter) ([]model.FingerprintRecord, error)
	Record(ctx context.Context, id string) (model.FingerprintRecord, error)
	Block(ctx context.Context, id string) (string, error)
	Whitelist(ctx context.Context, id string) (string, error)
}

// OrderFilter narrows the compensation history shown on the scanner.
// Score is a CompensationRisk bucket.
type OrderFilter struct {
	Search  string `form:"q" json:"q"`
	Country string `form:"country" json:"country"`
	Score   string `form:"score" json:"score" binding:"omitempty,oneof=all low medium high"`
}

// RecordFilter narrows the fingerprint log. OS is an OS family matched
// against the full OS string and Flagged tests the network flag.
type RecordFilter struct {
	Search  string `form:"q" json:"q"`
	Risk    string `form:"risk" json:"risk" binding:"omitempty,oneof=all low medium high"`
	OS      string `form:"os" json:"os" binding:"omitempty,oneof=all windows linux macos"`
	Flagged string `form:"flagged" json:"flagged" binding:"omitempty,oneof=all yes no"`
}

type Stores struct {
	Orders       repository.OrderRepository
	Fingerprints repository.FingerprintRepository
}

type Service struct {
	orders       repository.OrderRepository
	fingerprints repository.FingerprintRepository
}

func NewService(s Stores) *Service {
	return &Service{orders: s.Orders, fingerprints: s.Fingerprints}
}

func (s *Service) Orders(ctx context.Context, f OrderFilter) ([]model.Order, error) {
	orders, err := s.orders.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return filter.Apply(orders,
		filter.Search(f.Search,
			func(o model.Order) string { return o.ID },
			func(o model.Order) string { return o.CustomerName },
		),
		filter.Equals(f.Country, func(o model.Order) string { return o.ShippingCountry }),
		filter.InBucket(filter.CompensationRisk, f.Score, func(o model.Order) int { return o.FraudScore }),
	), nil
}

func (s *Service) Records(ctx context.Context, f RecordFilter) ([]model.FingerprintRecord, error) {
	records, err := s.fingerprints.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list fingerprints: %w", err)
	}
	return filter.Apply(records,
		filter.Search(f.Search, func(r model.FingerprintRecord) string { return r.IP }),
		filter.InBucket(filter.FingerprintRisk, f.Risk, func(r model.FingerprintRecord) int { return r.Risk }),
		filter.Contains(f.OS, func(r model.FingerprintRecord) string { return r.OS }),
		filter.Flag(f.Flagged, model.FingerprintRecord.Flagged),
	), nil
}

func (s *Service) Record(ctx context.Context, id string) (model.FingerprintRecord, error) {
	r, err := s.fingerprints.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return model.FingerprintRecord{}, apperrors.NotFound("fingerprint", err)
	}
	if err != nil {
		return model.FingerprintRecord{}, fmt.Errorf("failed to get fingerprint: %w", err)
	}
	return r, nil
}

// Block denies the record's address. A blocked address is no longer
// whitelisted.
func (s *Service) Block(ctx context.Context, id string) (string, error) {
	r, err := s.Record(ctx, id)
	if err != nil {
		return "", err
	}
	if r.Blocked {
		return "", apperrors.Conflict(fmt.Sprintf("%s is already blocked", r.IP), nil)
	}
	r.Blocked, r.Whitelisted = true, false
	if err := s.fingerprints.Save(ctx, r); err != nil {
		return "", fmt.Errorf("failed to block %s: %w", r.IP, err)
	}
	return MsgBlocked, nil
}

// Whitelist trusts the record's address and lifts any block.
func (s *Service) Whitelist(ctx context.Context, id string) (string, error) {
	r, err := s.Record(ctx, id)
	if err != nil {
		return "", err
	}
	if r.Whitelisted {
		return "", apperrors.Conflict(fmt.Sprintf("%s is already whitelisted", r.IP), nil)
	}
	r.Blocked, r.Whitelisted = false, true
	if err := s.fingerprints.Save(ctx, r); err != nil {
		return "", fmt.Errorf("failed to whitelist %s: %w", r.IP, err)
	}
	return MsgWhitelisted, nil
}
