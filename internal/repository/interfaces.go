package repository

import (
	"context"
	"errors"

	"github.com/fraudshield/admin-dashboard/internal/model"
)

// ErrNotFound is returned when no record has the requested id.
var ErrNotFound = errors.New("record not found")

// Store is the record-array boundary every page reads through. List
// returns records in insertion order. Results are copies: mutating
// them does not change the store.
type Store[T model.Record] interface {
	List(ctx context.Context) ([]T, error)
	Get(ctx context.Context, id string) (T, error)
	Save(ctx context.Context, record T) error
	Delete(ctx context.Context, id string) error
}

// All repositories in one place
type (
	OrderRepository       = Store[model.Order]
	CaseRepository        = Store[model.Case]
	ChargebackRepository  = Store[model.Chargeback]
	WarrantyRepository    = Store[model.WarrantyClaim]
	TrackingRepository    = Store[model.TrackingOrder]
	PatternRepository     = Store[model.Pattern]
	SOPRepository         = Store[model.SOP]
	AccessLogRepository   = Store[model.AccessLog]
	FingerprintRepository = Store[model.FingerprintRecord]
	KYCRepository         = Store[model.KYCRecord]
	UserRepository        = Store[model.User]
	IntegrationRepository = Store[model.Integration]
	ConnectorRepository   = Store[model.Connector]
	BlogRepository        = Store[model.BlogPost]
)
