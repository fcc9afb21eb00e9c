// Package detection manages the rules side of the dashboard: fraud
// patterns, the SOPs analysts follow when one fires, and the employee
// access logs reviewed for insider threats.
package detection

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fraudshield/admin-dashboard/internal/clock"
	"github.com/fraudshield/admin-dashboard/internal/model"
	"github.com/fraudshield/admin-dashboard/internal/repository"
	"github.com/fraudshield/admin-dashboard/internal/ui/filter"
	apperrors "github.com/fraudshield/admin-dashboard/pkg/errors"
	"github.com/fraudshield/admin-dashboard/pkg/validator"
)

const (
	MsgPatternSaved  = "Pattern updated successfully"
	MsgSimulated     = "Simulation completed successfully"
	MsgSOPSaved      = "SOP updated successfully"
	MsgSOPDuplicated = "SOP duplicated successfully"
	MsgSOPArchived   = "SOP archived successfully"
	MsgSOPDownloaded = "SOP downloaded successfully"
	MsgAccessFlagged = "Activity flagged for review"
	MsgAccessBlocked = "Employee access blocked"
)

// Simulated orders above this fraud score get the active SOPs
// recommended.
const recommendAboveRisk = 60

type DetectionServicer interface {
	Patterns(ctx context.Context, f PatternFilter) ([]model.Pattern, error)
	Pattern(ctx context.Context, id string) (model.Pattern, error)
	SavePattern(ctx context.Context, id string, u PatternUpdate) (string, error)
	Simulate(ctx context.Context, id string) (string, error)
	LastSimulation() (Simulation, bool)

	SOPs(ctx context.Context, f SOPFilter) ([]model.SOP, error)
	SOP(ctx context.Context, id string) (model.SOP, error)
	SaveSOP(ctx context.Context, id string, u SOPUpdate) (string, error)
	DuplicateSOP(ctx context.Context, id string) (string, error)
	ArchiveSOP(ctx context.Context, id string) (string, error)
	DownloadSOP(ctx context.Context, id string) (Document, error)

	AccessLogs(ctx context.Context, f AccessLogFilter) ([]model.AccessLog, error)
	AccessLog(ctx context.Context, id string) (model.AccessLog, error)
	FlagAccess(ctx context.Context, id string) (string, error)
	BlockAccess(ctx context.Context, id string) (string, error)
}

// PatternFilter narrows the pattern library. Search matches name or
// rule set and Severity is a PatternSeverity bucket.
type PatternFilter struct {
	Search   string `form:"q" json:"q"`
	Category string `form:"category" json:"category"`
	Severity string `form:"severity" json:"severity" binding:"omitempty,oneof=all low medium high"`
	Status   string `form:"status" json:"status" binding:"omitempty,oneof=all active testing deprecated"`
}

// PatternUpdate is the edit form for one pattern.
type PatternUpdate struct {
	Name        string `form:"name" json:"name" validate:"required,max=120"`
	Description string `form:"description" json:"description" validate:"max=500"`
	Type        string `form:"type" json:"type" validate:"required,oneof=regex logic ml"`
	Status      string `form:"status" json:"status" validate:"required,oneof=active testing deprecated"`
	Definition  string `form:"definition" json:"definition" validate:"required"`
}

// Simulation is the last pattern replay against the order history.
type Simulation struct {
	PatternID   string                   `json:"patternId"`
	PatternName string                   `json:"patternName"`
	RanAt       time.Time                `json:"ranAt"`
	Scanned     int                      `json:"scanned"`
	Results     []model.SimulationResult `json:"results"`
}

type SOPFilter struct {
	Search string `form:"q" json:"q"`
	Tag    string `form:"tag" json:"tag"`
	Status string `form:"status" json:"status" binding:"omitempty,oneof=all active testing deprecated archived"`
}

type SOPUpdate struct {
	Name    string `form:"name" json:"name" validate:"required,max=120"`
	Version string `form:"version" json:"version" validate:"required,max=16"`
	Status  string `form:"status" json:"status" validate:"required,oneof=active testing deprecated"`
	Steps   string `form:"steps" json:"steps" validate:"required"`
}

// Document is a downloadable SOP.
type Document struct {
	Filename string
	Body     []byte
	Message  string
}

// AccessLogFilter narrows the insider log. Search matches employee, IP
// or action. Kind is a coarse action family such as "login" and Risk is
// the log's severity.
type AccessLogFilter struct {
	Search string `form:"q" json:"q"`
	Kind   string `form:"kind" json:"kind" binding:"omitempty,oneof=all login refund camera"`
	Risk   string `form:"risk" json:"risk" binding:"omitempty,oneof=all low medium high"`
}

type Stores struct {
	Patterns   repository.PatternRepository
	SOPs       repository.SOPRepository
	AccessLogs repository.AccessLogRepository
	Orders     repository.OrderRepository
}

type Service struct {
	patterns   repository.PatternRepository
	sops       repository.SOPRepository
	accessLogs repository.AccessLogRepository
	orders     repository.OrderRepository
	clock      clock.Clock
	validator  validator.Validator

	mu   sync.RWMutex
	last *Simulation
}

func NewService(s Stores, c clock.Clock) *Service {
	return &Service{
		patterns:   s.Patterns,
		sops:       s.SOPs,
		accessLogs: s.AccessLogs,
		orders:     s.Orders,
		clock:      c,
		validator:  validator.New(),
	}
}

func (s *Service) Patterns(ctx context.Context, f PatternFilter) ([]model.Pattern, error) {
	patterns, err := s.patterns.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list patterns: %w", err)
	}
	return filter.Apply(patterns,
		filter.Search(f.Search,
			func(p model.Pattern) string { return p.Name },
			func(p model.Pattern) string { return p.RuleSet },
		),
		filter.Equals(f.Category, func(p model.Pattern) string { return p.FraudCategory }),
		filter.InBucket(filter.PatternSeverity, f.Severity, func(p model.Pattern) int { return p.Severity }),
		filter.Equals(f.Status, func(p model.Pattern) string { return p.Status }),
	), nil
}

func (s *Service) Pattern(ctx context.Context, id string) (model.Pattern, error) {
	p, err := s.patterns.Get(ctx, id)
	if err != nil {
		return model.Pattern{}, notFound("pattern", err)
	}
	return p, nil
}

// SavePattern applies an edit and bumps the pattern's version.
func (s *Service) SavePattern(ctx context.Context, id string, u PatternUpdate) (string, error) {
	if err := s.validator.Validate(u); err != nil {
		return "", apperrors.BadRequest(err.Error(), err)
	}
	p, err := s.Pattern(ctx, id)
	if err != nil {
		return "", err
	}

	p.Name = u.Name
	p.Description = u.Description
	p.Type = u.Type
	p.Status = u.Status
	p.Definition = u.Definition
	p.Version++
	p.LastModified = s.clock.Now().Format(time.DateOnly)

	if err := s.patterns.Save(ctx, p); err != nil {
		return "", fmt.Errorf("failed to update pattern: %w", err)
	}
	return MsgPatternSaved, nil
}

// Simulate replays a pattern over the order history and keeps the
// matches as the latest simulation.
func (s *Service) Simulate(ctx context.Context, id string) (string, error) {
	p, err := s.Pattern(ctx, id)
	if err != nil {
		return "", err
	}
	orders, err := s.orders.List(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list orders: %w", err)
	}
	sops, err := s.sops.List(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list SOPs: %w", err)
	}

	var recommended []string
	for _, sop := range sops {
		if sop.Status == model.StatusActive {
			recommended = append(recommended, sop.Name)
		}
	}

	results := make([]model.SimulationResult, 0)
	for _, o := range orders {
		if !matches(p, o) {
			continue
		}
		r := model.SimulationResult{
			OrderID:         o.ID,
			FraudScore:      o.FraudScore,
			MatchedPatterns: []string{p.Name},
			RecommendedSOPs: []string{},
		}
		if o.FraudScore > recommendAboveRisk {
			r.RecommendedSOPs = slices.Clone(recommended)
		}
		results = append(results, r)
	}

	s.mu.Lock()
	s.last = &Simulation{
		PatternID:   p.ID,
		PatternName: p.Name,
		RanAt:       s.clock.Now(),
		Scanned:     len(orders),
		Results:     results,
	}
	s.mu.Unlock()
	return MsgSimulated, nil
}

// matches decides whether a pattern would have fired on an order. IP
// rules look for proxies, refund and chargeback rules for the matching
// compensation, and anything else compares the fraud score against the
// pattern's severity.
func matches(p model.Pattern, o model.Order) bool {
	switch p.FraudCategory {
	case "IP":
		return o.ProxyUsed
	case model.CompensationRefund, model.CompensationChargeback:
		return o.CompensationType == p.FraudCategory
	default:
		return o.FraudScore >= p.Severity
	}
}

func (s *Service) LastSimulation() (Simulation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.last == nil {
		return Simulation{}, false
	}
	sim := *s.last
	sim.Results = slices.Clone(sim.Results)
	return sim, true
}

func (s *Service) SOPs(ctx context.Context, f SOPFilter) ([]model.SOP, error) {
	sops, err := s.sops.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list SOPs: %w", err)
	}
	return filter.Apply(sops,
		filter.Search(f.Search,
			func(p model.SOP) string { return p.Name },
			func(p model.SOP) string { return p.Steps },
		),
		filter.AnyOf(f.Tag, func(p model.SOP) []string { return p.Patterns }),
		filter.Equals(f.Status, func(p model.SOP) string { return p.Status }),
	), nil
}

func (s *Service) SOP(ctx context.Context, id string) (model.SOP, error) {
	sop, err := s.sops.Get(ctx, id)
	if err != nil {
		return model.SOP{}, notFound("SOP", err)
	}
	return sop, nil
}

func (s *Service) SaveSOP(ctx context.Context, id string, u SOPUpdate) (string, error) {
	if err := s.validator.Validate(u); err != nil {
		return "", apperrors.BadRequest(err.Error(), err)
	}
	sop, err := s.SOP(ctx, id)
	if err != nil {
		return "", err
	}

	sop.Name = u.Name
	sop.Version = u.Version
	sop.Status = u.Status
	sop.Steps = u.Steps
	sop.LastModified = s.clock.Now().UTC().Format(time.RFC3339)

	if err := s.sops.Save(ctx, sop); err != nil {
		return "", fmt.Errorf("failed to update SOP: %w", err)
	}
	return MsgSOPSaved, nil
}

// DuplicateSOP copies an SOP into a new draft in testing.
func (s *Service) DuplicateSOP(ctx context.Context, id string) (string, error) {
	sop, err := s.SOP(ctx, id)
	if err != nil {
		return "", err
	}

	sop.ID = "SOP-" + strings.ToUpper(uuid.NewString()[:8])
	sop.Name += " (Copy)"
	sop.Status = model.StatusTesting
	sop.LastModified = s.clock.Now().UTC().Format(time.RFC3339)

	if err := s.sops.Save(ctx, sop); err != nil {
		return "", fmt.Errorf("failed to save SOP: %w", err)
	}
	return MsgSOPDuplicated, nil
}

func (s *Service) ArchiveSOP(ctx context.Context, id string) (string, error) {
	sop, err := s.SOP(ctx, id)
	if err != nil {
		return "", err
	}
	if sop.Status == model.StatusArchived {
		return "", apperrors.Conflict(fmt.Sprintf("SOP %s is already archived", id), nil)
	}

	sop.Status = model.StatusArchived
	sop.LastModified = s.clock.Now().UTC().Format(time.RFC3339)
	if err := s.sops.Save(ctx, sop); err != nil {
		return "", fmt.Errorf("failed to archive SOP: %w", err)
	}
	return MsgSOPArchived, nil
}

// DownloadSOP renders an SOP as a markdown document.
func (s *Service) DownloadSOP(ctx context.Context, id string) (Document, error) {
	sop, err := s.SOP(ctx, id)
	if err != nil {
		return Document{}, err
	}

	var b strings.Builder
	b.WriteString(strings.TrimRight(sop.Steps, "\n"))
	b.WriteString("\n\n---\n")
	fmt.Fprintf(&b, "Version %s, %s\n", sop.Version, sop.Status)
	if len(sop.Patterns) > 0 {
		fmt.Fprintf(&b, "Linked patterns: %s\n", strings.Join(sop.Patterns, ", "))
	}
	fmt.Fprintf(&b, "Last modified %s by %s\n", sop.LastModified, sop.ModifiedBy)

	return Document{
		Filename: strings.ToLower(sop.ID) + ".md",
		Body:     []byte(b.String()),
		Message:  MsgSOPDownloaded,
	}, nil
}

func (s *Service) AccessLogs(ctx context.Context, f AccessLogFilter) ([]model.AccessLog, error) {
	logs, err := s.accessLogs.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list access logs: %w", err)
	}
	return filter.Apply(logs,
		filter.Search(f.Search,
			func(l model.AccessLog) string { return l.EmployeeID },
			func(l model.AccessLog) string { return l.IP },
			func(l model.AccessLog) string { return l.Action },
		),
		filter.Contains(f.Kind, func(l model.AccessLog) string { return l.Action }),
		filter.Equals(f.Risk, func(l model.AccessLog) string { return l.Severity() }),
	), nil
}

func (s *Service) AccessLog(ctx context.Context, id string) (model.AccessLog, error) {
	l, err := s.accessLogs.Get(ctx, id)
	if err != nil {
		return model.AccessLog{}, notFound("access log", err)
	}
	return l, nil
}

// FlagAccess marks a logged action for follow-up.
func (s *Service) FlagAccess(ctx context.Context, id string) (string, error) {
	return s.updateAccess(ctx, id, MsgAccessFlagged, "flagged", func(l *model.AccessLog) *bool { return &l.Flagged })
}

// BlockAccess suspends the employee behind a logged action.
func (s *Service) BlockAccess(ctx context.Context, id string) (string, error) {
	return s.updateAccess(ctx, id, MsgAccessBlocked, "blocked", func(l *model.AccessLog) *bool { return &l.Blocked })
}

func (s *Service) updateAccess(ctx context.Context, id, msg, state string, field func(*model.AccessLog) *bool) (string, error) {
	l, err := s.AccessLog(ctx, id)
	if err != nil {
		return "", err
	}
	set := field(&l)
	if *set {
		return "", apperrors.Conflict(fmt.Sprintf("access log %s is already %s", id, state), nil)
	}
	*set = true
	if err := s.accessLogs.Save(ctx, l); err != nil {
		return "", fmt.Errorf("failed to update access log: %w", err)
	}
	return msg, nil
}

func notFound(resource string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NotFound(resource, err)
	}
	return fmt.Errorf("failed to get %s: %w", resource, err)
}
