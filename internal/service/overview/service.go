// Package overview backs the summary pages: the compensation dashboard,
// analytics and the blog.
package overview

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/fraudshield/admin-dashboard/internal/model"
	"github.com/fraudshield/admin-dashboard/internal/repository"
	"github.com/fraudshield/admin-dashboard/internal/repository/memory"
	"github.com/fraudshield/admin-dashboard/internal/ui/filter"
	apperrors "github.com/fraudshield/admin-dashboard/pkg/errors"
)

// Analytics controls.
const (
	Range7d  = "7d"
	Range30d = "30d"
	Range90d = "90d"

	MetricCases     = "cases"
	MetricPrevented = "prevented"
)

type OverviewServicer interface {
	Orders(ctx context.Context, f OrderFilter) ([]model.Order, error)
	ExportOrders(ctx context.Context, f OrderFilter) ([]byte, error)
	PushFlaggedToReview(ctx context.Context) (string, error)
	Trend(f TrendFilter) model.Series
	Posts(ctx context.Context, f PostFilter) ([]model.BlogPost, error)
	Post(ctx context.Context, id string) (model.BlogPost, error)
}

// OrderFilter narrows the recent compensations. Search matches order
// id, customer or email and Risk is a CompensationRisk bucket.
type OrderFilter struct {
	Search       string `form:"q" json:"q"`
	Country      string `form:"country" json:"country"`
	Compensation string `form:"compensation" json:"compensation" binding:"omitempty,oneof=all Refund Replacement Chargeback"`
	Risk         string `form:"risk" json:"risk" binding:"omitempty,oneof=all low medium high"`
}

// TrendFilter picks the analytics window and the plotted metric.
type TrendFilter struct {
	Range  string `form:"range" json:"range" binding:"omitempty,oneof=7d 30d 90d"`
	Metric string `form:"metric" json:"metric" binding:"omitempty,oneof=cases prevented"`
}

type PostFilter struct {
	Search string `form:"q" json:"q"`
}

type Stores struct {
	Orders repository.OrderRepository
	Blog   repository.BlogRepository
}

type Service struct {
	orders repository.OrderRepository
	blog   repository.BlogRepository
}

func NewService(s Stores) *Service {
	return &Service{orders: s.Orders, blog: s.Blog}
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
			func(o model.Order) string { return o.Email },
		),
		filter.Equals(f.Country, func(o model.Order) string { return o.ShippingCountry }),
		filter.Equals(f.Compensation, func(o model.Order) string { return o.CompensationType }),
		filter.InBucket(filter.CompensationRisk, f.Risk, func(o model.Order) int { return o.FraudScore }),
	), nil
}

var exportHeader = []string{
	"Order ID", "Customer", "Email", "Country", "Date", "Compensation Type",
	"Amount", "Root Cause", "Fraud Score", "Status", "Resolution Summary",
}

// ExportOrders writes the filtered orders as CSV.
func (s *Service) ExportOrders(ctx context.Context, f OrderFilter) ([]byte, error) {
	orders, err := s.Orders(ctx, f)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(exportHeader); err != nil {
		return nil, fmt.Errorf("failed to write export header: %w", err)
	}
	for _, o := range orders {
		row := []string{
			o.ID, o.CustomerName, o.Email, o.ShippingCountry, o.Date, o.CompensationType,
			strconv.FormatFloat(o.CompensationAmount, 'f', 2, 64),
			o.RootCause, strconv.Itoa(o.FraudScore), o.Status, o.ResolutionSummary,
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write export row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush export: %w", err)
	}
	return buf.Bytes(), nil
}

// PushFlaggedToReview moves every flagged order into the manual review
// queue.
func (s *Service) PushFlaggedToReview(ctx context.Context) (string, error) {
	orders, err := s.orders.List(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list orders: %w", err)
	}

	var pushed int
	for _, o := range orders {
		if o.Status != model.OrderFlagged {
			continue
		}
		o.Status = model.OrderUnderReview
		if err := s.orders.Save(ctx, o); err != nil {
			return "", fmt.Errorf("failed to update order %s: %w", o.ID, err)
		}
		pushed++
	}
	if pushed == 0 {
		return "", apperrors.Conflict("No flagged orders to push", nil)
	}
	if pushed == 1 {
		return "1 order pushed to review queue", nil
	}
	return fmt.Sprintf("%d orders pushed to review queue", pushed), nil
}

func rangeDays(r string) int {
	switch r {
	case Range30d:
		return 30
	case Range90d:
		return 90
	default:
		return 7
	}
}

// Trend is the analytics line for the chosen window, counted back from
// the latest recorded day.
func (s *Service) Trend(f TrendFilter) model.Series {
	trends := memory.FraudTrends()
	days := rangeDays(f.Range)

	title := "Fraud Cases"
	if f.Metric == MetricPrevented {
		title = "Prevented Fraud"
	}
	out := model.Series{Title: fmt.Sprintf("%s · Last %d days", title, days), Points: []model.ChartPoint{}}
	if len(trends) == 0 {
		return out
	}

	latest, err := time.Parse(time.DateOnly, trends[len(trends)-1].Date)
	if err != nil {
		return out
	}
	cutoff := latest.AddDate(0, 0, -days)
	for _, t := range trends {
		day, err := time.Parse(time.DateOnly, t.Date)
		if err != nil || !day.After(cutoff) {
			continue
		}
		v := t.Cases
		if f.Metric == MetricPrevented {
			v = t.Prevented
		}
		out.Points = append(out.Points, model.ChartPoint{Name: t.Date, Value: float64(v)})
	}
	return out
}

func (s *Service) Posts(ctx context.Context, f PostFilter) ([]model.BlogPost, error) {
	posts, err := s.blog.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return filter.Apply(posts,
		filter.Search(f.Search,
			func(p model.BlogPost) string { return p.Title },
			func(p model.BlogPost) string { return p.Excerpt },
			func(p model.BlogPost) string { return p.Author },
		),
	), nil
}

func (s *Service) Post(ctx context.Context, id string) (model.BlogPost, error) {
	p, err := s.blog.Get(ctx, id)
	if err != nil {
		return model.BlogPost{}, apperrors.NotFound("post", err)
	}
	return p, nil
}
