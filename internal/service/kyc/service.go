package kyc

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/fraudshield/admin-dashboard/internal/clock"
	"github.com/fraudshield/admin-dashboard/internal/model"
	"github.com/fraudshield/admin-dashboard/internal/repository"
	"github.com/fraudshield/admin-dashboard/internal/ui/filter"
	apperrors "github.com/fraudshield/admin-dashboard/pkg/errors"
	"github.com/fraudshield/admin-dashboard/pkg/metrics"
	"github.com/fraudshield/admin-dashboard/pkg/security"
	"github.com/fraudshield/admin-dashboard/pkg/validator"
)

const (
	MsgVerified      = "KYC verification completed successfully"
	MsgFailed        = "KYC verification failed - document mismatch detected"
	MsgDemoRequested = "Demo request submitted successfully"
	MsgAPIKeyIssued  = "API key generated successfully"
)

// verifyThreshold is the draw a submission must exceed to verify.
const verifyThreshold = 0.3

var (
	ErrNotFound      = errors.New("KYC record not found")
	ErrInvalidStatus = errors.New("status must be verified or failed")
	ErrNoAPIKey      = errors.New("no API key issued")
)

type KYCServicer interface {
	Records(ctx context.Context, f Filter) ([]model.KYCRecord, error)
	Record(ctx context.Context, id string) (model.KYCRecord, error)
	Stats(ctx context.Context) (model.KYCStats, error)
	Submit(ctx context.Context, sub Submission) (Outcome, error)
	UpdateStatus(ctx context.Context, id, status, notes string) (string, error)
	RiskDistribution(ctx context.Context) ([]model.ScoreCount, error)
	GeoMismatches(ctx context.Context) ([]model.CountryCount, error)
	RequestDemo(ctx context.Context, req DemoRequest) (string, error)
	IssueAPIKey(ctx context.Context) (string, error)
	VerifyAPIKey(key string) error
}

// Filter selects records. Empty fields and "all" impose no constraint.
type Filter struct {
	Status    string `form:"status" json:"status" binding:"omitempty,oneof=all pending verified failed"`
	RiskRange string `form:"risk" json:"risk" binding:"omitempty,oneof=all low medium high"`
	Country   string `form:"country" json:"country"`
	Search    string `form:"q" json:"q"`
}

// Submission is a new verification request.
type Submission struct {
	CustomerName string `form:"customerName" json:"customerName" validate:"required,max=120"`
	Email        string `form:"email" json:"email" validate:"required,email"`
	CustomerID   string `form:"customerId" json:"customerId" validate:"required"`
	DocumentType string `form:"documentType" json:"documentType" validate:"required,oneof=Passport ID Driver_License"`
	Country      string `form:"country" json:"country" validate:"omitempty,len=2,uppercase"`
}

// DemoRequest asks sales to set up KYC for a company.
type DemoRequest struct {
	Company string `form:"company" json:"company" validate:"required,max=120"`
	Email   string `form:"email" json:"email" validate:"required,email"`
	UseCase string `form:"useCase" json:"useCase" validate:"required,oneof=retail marketplace subscription other"`
	Message string `form:"message" json:"message" validate:"max=1000"`
}

// Outcome is the verdict of one submission.
type Outcome struct {
	Record   model.KYCRecord `json:"record"`
	Verified bool            `json:"verified"`
	Message  string          `json:"message"`
}

// Latency is the simulated backend delay per call class.
type Latency struct {
	Read   time.Duration
	Submit time.Duration
}

// DefaultLatency mirrors the hosted verification API.
func DefaultLatency() Latency {
	return Latency{Read: 500 * time.Millisecond, Submit: time.Second}
}

type Option func(*Service)

// WithRand replaces the verdict source. fn must return values in [0, 1).
func WithRand(fn func() float64) Option {
	return func(s *Service) { s.rand = fn }
}

func WithLatency(l Latency) Option {
	return func(s *Service) { s.latency = l }
}

func WithHasher(h security.KeyHasher) Option {
	return func(s *Service) { s.hasher = h }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

type Service struct {
	repo      repository.KYCRepository
	clock     clock.Clock
	validator validator.Validator
	hasher    security.KeyHasher
	latency   Latency
	metrics   *metrics.Metrics
	rand      func() float64

	mu      sync.RWMutex
	keyHash string
}

func NewService(repo repository.KYCRepository, c clock.Clock, opts ...Option) *Service {
	s := &Service{
		repo:      repo,
		clock:     c,
		validator: validator.New(),
		hasher:    security.NewBcryptHasher(0),
		latency:   DefaultLatency(),
		metrics:   metrics.Nop(),
		rand:      rand.Float64,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Records(ctx context.Context, f Filter) ([]model.KYCRecord, error) {
	if err := clock.Sleep(ctx, s.clock, s.latency.Read); err != nil {
		return nil, err
	}

	records, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list KYC records: %w", err)
	}

	return filter.Apply(records,
		filter.Equals(f.Status, func(r model.KYCRecord) string { return r.Status }),
		filter.InBucket(filter.KYCRisk, f.RiskRange, func(r model.KYCRecord) int { return r.RiskScore }),
		filter.Equals(f.Country, func(r model.KYCRecord) string { return r.Country }),
		filter.Search(f.Search,
			func(r model.KYCRecord) string { return r.CustomerName },
			func(r model.KYCRecord) string { return r.Email },
		),
	), nil
}

func (s *Service) Record(ctx context.Context, id string) (model.KYCRecord, error) {
	if err := clock.Sleep(ctx, s.clock, s.latency.Read); err != nil {
		return model.KYCRecord{}, err
	}
	r, err := s.repo.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return model.KYCRecord{}, apperrors.NotFound("KYC record", ErrNotFound)
	}
	if err != nil {
		return model.KYCRecord{}, fmt.Errorf("failed to get KYC record: %w", err)
	}
	return r, nil
}

func (s *Service) Stats(ctx context.Context) (model.KYCStats, error) {
	if err := clock.Sleep(ctx, s.clock, s.latency.Read); err != nil {
		return model.KYCStats{}, err
	}

	records, err := s.repo.List(ctx)
	if err != nil {
		return model.KYCStats{}, fmt.Errorf("failed to list KYC records: %w", err)
	}
	return computeStats(records), nil
}

func computeStats(records []model.KYCRecord) model.KYCStats {
	if len(records) == 0 {
		return model.KYCStats{}
	}
	var verified, riskSum int
	for _, r := range records {
		if r.Status == model.KYCVerified {
			verified++
		}
		riskSum += r.RiskScore
	}
	total := float64(len(records))
	return model.KYCStats{
		TotalChecks:      len(records),
		VerificationRate: int(math.Round(float64(verified) / total * 100)),
		AverageRiskScore: int(math.Round(float64(riskSum) / total)),
	}
}

// Submit runs a simulated verification and records its result.
func (s *Service) Submit(ctx context.Context, sub Submission) (Outcome, error) {
	if err := s.validator.Validate(sub); err != nil {
		s.metrics.KYCSubmissions.WithLabelValues("invalid").Inc()
		return Outcome{}, apperrors.BadRequest(err.Error(), fmt.Errorf("invalid submission: %w", err))
	}
	if err := clock.Sleep(ctx, s.clock, s.latency.Submit); err != nil {
		return Outcome{}, err
	}

	verified := s.rand() > verifyThreshold
	record := model.KYCRecord{
		ID:             "KYC-" + strings.ToUpper(uuid.NewString()[:8]),
		CustomerName:   sub.CustomerName,
		Email:          sub.Email,
		Status:         model.KYCFailed,
		RiskScore:      int(s.rand() * 100),
		SubmissionDate: s.clock.Now().Format("2006-01-02"),
		DocumentType:   strings.ReplaceAll(sub.DocumentType, "_", " "),
		Country:        sub.Country,
	}
	message, outcome := MsgFailed, "failed"
	if verified {
		record.Status = model.KYCVerified
		message, outcome = MsgVerified, "verified"
	}

	if err := s.repo.Save(ctx, record); err != nil {
		return Outcome{}, fmt.Errorf("failed to save KYC record: %w", err)
	}
	s.metrics.KYCSubmissions.WithLabelValues(outcome).Inc()
	return Outcome{Record: record, Verified: verified, Message: message}, nil
}

// UpdateStatus sets a manual verdict and returns the confirmation
// message.
func (s *Service) UpdateStatus(ctx context.Context, id, status, notes string) (string, error) {
	if status != model.KYCVerified && status != model.KYCFailed {
		return "", apperrors.BadRequest(ErrInvalidStatus.Error(), ErrInvalidStatus)
	}
	if err := clock.Sleep(ctx, s.clock, s.latency.Read); err != nil {
		return "", err
	}

	record, err := s.repo.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return "", apperrors.NotFound("KYC record", ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("failed to get KYC record: %w", err)
	}

	record.Status = status
	if notes != "" {
		record.InternalNotes = notes
	}
	if err := s.repo.Save(ctx, record); err != nil {
		return "", fmt.Errorf("failed to update KYC record: %w", err)
	}
	return fmt.Sprintf("KYC status updated to %s", status), nil
}

// RequestDemo records a setup request. Nothing is sent; the request is
// logged for the sales queue.
func (s *Service) RequestDemo(ctx context.Context, req DemoRequest) (string, error) {
	if err := s.validator.Validate(req); err != nil {
		return "", apperrors.BadRequest(err.Error(), fmt.Errorf("invalid demo request: %w", err))
	}
	zerolog.Ctx(ctx).Info().
		Str("company", req.Company).
		Str("use_case", req.UseCase).
		Msg("KYC demo requested")
	return MsgDemoRequested, nil
}

func (s *Service) RiskDistribution(ctx context.Context) ([]model.ScoreCount, error) {
	if err := clock.Sleep(ctx, s.clock, s.latency.Read); err != nil {
		return nil, err
	}
	return []model.ScoreCount{
		{Score: "0-20", Count: 150},
		{Score: "21-40", Count: 200},
		{Score: "41-60", Count: 100},
		{Score: "61-80", Count: 50},
		{Score: "81-100", Count: 25},
	}, nil
}

func (s *Service) GeoMismatches(ctx context.Context) ([]model.CountryCount, error) {
	if err := clock.Sleep(ctx, s.clock, s.latency.Read); err != nil {
		return nil, err
	}
	return []model.CountryCount{
		{Country: "US", Count: 15},
		{Country: "UK", Count: 8},
		{Country: "CA", Count: 12},
		{Country: "AU", Count: 5},
	}, nil
}

// IssueAPIKey generates a new key, replacing any previous one. The
// plaintext is returned once and only its hash is kept.
func (s *Service) IssueAPIKey(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	key, err := security.GenerateAPIKey(nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate API key: %w", err)
	}
	hash, err := s.hasher.Hash(key)
	if err != nil {
		return "", fmt.Errorf("failed to hash API key: %w", err)
	}

	s.mu.Lock()
	s.keyHash = hash
	s.mu.Unlock()
	return key, nil
}

func (s *Service) VerifyAPIKey(key string) error {
	s.mu.RLock()
	hash := s.keyHash
	s.mu.RUnlock()

	if hash == "" {
		return ErrNoAPIKey
	}
	return s.hasher.Compare(hash, key)
}
