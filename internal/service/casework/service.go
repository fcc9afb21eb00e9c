// Package casework serves the investigation queues: fraud cases,
// chargebacks, warranty claims and tracking anomalies.
package casework

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
	MsgChargebackFlagged  = "User flagged successfully"
	MsgChargebackDisputed = "Dispute opened successfully"
	MsgPushedToReview     = "Order pushed to review queue"
)

type CaseworkServicer interface {
	Cases(ctx context.Context, f CaseFilter) ([]model.Case, error)
	Case(ctx context.Context, id string) (model.Case, error)
	Chargebacks(ctx context.Context, f ChargebackFilter) ([]model.Chargeback, error)
	FlagChargeback(ctx context.Context, id string) (string, error)
	DisputeChargeback(ctx context.Context, id string) (string, error)
	WarrantyClaims(ctx context.Context, f WarrantyFilter) ([]model.WarrantyClaim, error)
	TrackingOrders(ctx context.Context, f TrackingFilter) ([]model.TrackingOrder, error)
	TrackingOrder(ctx context.Context, id string) (model.TrackingOrder, error)
	PushToReview(ctx context.Context, id string) (string, error)
}

// CaseFilter narrows the case queue. Search matches title or type.
type CaseFilter struct {
	Status   string `form:"status" json:"status" binding:"omitempty,oneof=all open in_progress resolved closed"`
	Priority string `form:"priority" json:"priority" binding:"omitempty,oneof=all high medium low"`
	Search   string `form:"q" json:"q"`
}

// ChargebackFilter narrows the chargeback list. Search matches id,
// email or order id.
type ChargebackFilter struct {
	Processor string `form:"processor" json:"processor"`
	Reason    string `form:"reason" json:"reason"`
	Risk      string `form:"risk" json:"risk" binding:"omitempty,oneof=all low medium high"`
	Search    string `form:"q" json:"q"`
}

type WarrantyFilter struct {
	Status string `form:"status" json:"status" binding:"omitempty,oneof=all pending approved rejected"`
}

// TrackingFilter narrows anomalous shipments. Search matches order id
// or tracking number.
type TrackingFilter struct {
	Courier string `form:"courier" json:"courier"`
	Country string `form:"country" json:"country"`
	Status  string `form:"status" json:"status"`
	Search  string `form:"q" json:"q"`
}

type Stores struct {
	Cases       repository.CaseRepository
	Chargebacks repository.ChargebackRepository
	Warranty    repository.WarrantyRepository
	Tracking    repository.TrackingRepository
}

type Service struct {
	cases       repository.CaseRepository
	chargebacks repository.ChargebackRepository
	warranty    repository.WarrantyRepository
	tracking    repository.TrackingRepository
}

func NewService(s Stores) *Service {
	return &Service{
		cases:       s.Cases,
		chargebacks: s.Chargebacks,
		warranty:    s.Warranty,
		tracking:    s.Tracking,
	}
}

func (s *Service) Cases(ctx context.Context, f CaseFilter) ([]model.Case, error) {
	cases, err := s.cases.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list cases: %w", err)
	}
	return filter.Apply(cases,
		filter.Equals(f.Status, func(c model.Case) string { return c.Status }),
		filter.Equals(f.Priority, func(c model.Case) string { return c.Priority }),
		filter.Search(f.Search,
			func(c model.Case) string { return c.Title },
			func(c model.Case) string { return c.Type },
		),
	), nil
}

func (s *Service) Case(ctx context.Context, id string) (model.Case, error) {
	c, err := s.cases.Get(ctx, id)
	if err != nil {
		return model.Case{}, notFound("case", err)
	}
	return c, nil
}

func (s *Service) Chargebacks(ctx context.Context, f ChargebackFilter) ([]model.Chargeback, error) {
	chargebacks, err := s.chargebacks.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list chargebacks: %w", err)
	}
	return filter.Apply(chargebacks,
		filter.Equals(f.Processor, func(c model.Chargeback) string { return c.Processor }),
		filter.Equals(f.Reason, func(c model.Chargeback) string { return c.Reason }),
		filter.InBucket(filter.CompensationRisk, f.Risk, func(c model.Chargeback) int { return c.RiskScore }),
		filter.Search(f.Search,
			func(c model.Chargeback) string { return c.ID },
			func(c model.Chargeback) string { return c.Email },
			func(c model.Chargeback) string { return c.OrderID },
		),
	), nil
}

// FlagChargeback marks the customer behind a chargeback.
func (s *Service) FlagChargeback(ctx context.Context, id string) (string, error) {
	err := s.updateChargeback(ctx, id, func(c *model.Chargeback) { c.Flagged = true })
	if err != nil {
		return "", err
	}
	return MsgChargebackFlagged, nil
}

// DisputeChargeback opens a dispute with the processor. A chargeback
// can only be disputed once.
func (s *Service) DisputeChargeback(ctx context.Context, id string) (string, error) {
	var already bool
	err := s.updateChargeback(ctx, id, func(c *model.Chargeback) {
		already = c.Disputed
		c.Disputed = true
	})
	if err != nil {
		return "", err
	}
	if already {
		return "", apperrors.Conflict(fmt.Sprintf("chargeback %s is already disputed", id), nil)
	}
	return MsgChargebackDisputed, nil
}

func (s *Service) updateChargeback(ctx context.Context, id string, fn func(*model.Chargeback)) error {
	cb, err := s.chargebacks.Get(ctx, id)
	if err != nil {
		return notFound("chargeback", err)
	}
	fn(&cb)
	if err := s.chargebacks.Save(ctx, cb); err != nil {
		return fmt.Errorf("failed to update chargeback: %w", err)
	}
	return nil
}

func (s *Service) WarrantyClaims(ctx context.Context, f WarrantyFilter) ([]model.WarrantyClaim, error) {
	claims, err := s.warranty.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list warranty claims: %w", err)
	}
	return filter.Apply(claims,
		filter.Equals(f.Status, func(w model.WarrantyClaim) string { return w.Status }),
	), nil
}

func (s *Service) TrackingOrders(ctx context.Context, f TrackingFilter) ([]model.TrackingOrder, error) {
	orders, err := s.tracking.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tracking orders: %w", err)
	}
	return filter.Apply(orders,
		filter.Equals(f.Courier, func(o model.TrackingOrder) string { return o.Courier }),
		filter.Equals(f.Country, func(o model.TrackingOrder) string { return o.Country }),
		filter.Equals(f.Status, func(o model.TrackingOrder) string { return o.Status }),
		filter.Search(f.Search,
			func(o model.TrackingOrder) string { return o.ID },
			func(o model.TrackingOrder) string { return o.TrackingNumber },
		),
	), nil
}

func (s *Service) TrackingOrder(ctx context.Context, id string) (model.TrackingOrder, error) {
	o, err := s.tracking.Get(ctx, id)
	if err != nil {
		return model.TrackingOrder{}, notFound("tracking order", err)
	}
	return o, nil
}

// PushToReview moves a shipment into the manual review queue.
func (s *Service) PushToReview(ctx context.Context, id string) (string, error) {
	o, err := s.tracking.Get(ctx, id)
	if err != nil {
		return "", notFound("tracking order", err)
	}
	o.Status = model.OrderUnderReview
	if err := s.tracking.Save(ctx, o); err != nil {
		return "", fmt.Errorf("failed to update tracking order: %w", err)
	}
	return MsgPushedToReview, nil
}

func notFound(resource string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NotFound(resource, err)
	}
	return fmt.Errorf("failed to get %s: %w", resource, err)
}
