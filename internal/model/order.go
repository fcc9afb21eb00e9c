package model

import "strings"

// Order is a compensated order reviewed for fraud.
type Order struct {
	ID                 string   `json:"id"`
	CustomerName       string   `json:"customerName"`
	Email              string   `json:"email"`
	ShippingCountry    string   `json:"shippingCountry"`
	DeviceType         string   `json:"deviceType"`
	ProxyUsed          bool     `json:"proxyUsed"`
	FraudScore         int      `json:"fraudScore"`
	RiskLabels         []string `json:"riskLabels"`
	Status             string   `json:"status"`
	IPAddress          string   `json:"ipAddress"`
	Date               string   `json:"date"`
	CompensationType   string   `json:"compensationType"`
	CompensationAmount float64  `json:"compensationAmount"`
	RootCause          string   `json:"rootCause"`
	ResolutionSummary  string   `json:"resolutionSummary"`
}

func (o Order) RecordID() string { return o.ID }

// Order statuses.
const (
	OrderFlagged     = "Flagged"
	OrderClear       = "Clear"
	OrderUnderReview = "Under Review"
)

// Compensation types.
const (
	CompensationRefund      = "Refund"
	CompensationReplacement = "Replacement"
	CompensationChargeback  = "Chargeback"
)

// SuspiciousRootCause reports whether the root cause points at abuse
// rather than a logistics or product failure.
func (o Order) SuspiciousRootCause() bool {
	return strings.Contains(o.RootCause, "Social Engineering") || strings.Contains(o.RootCause, "EBA")
}

// NeedsReview reports whether the root cause is still undetermined.
func (o Order) NeedsReview() bool {
	return strings.Contains(o.RootCause, "Unknown")
}

// IntegrationSummary is a dashboard tile for one connected data source.
type IntegrationSummary struct {
	Name      string            `json:"name"`
	RiskLevel string            `json:"riskLevel"`
	LastSync  string            `json:"lastSync"`
	Figures   []IntegrationStat `json:"figures"`
}

// IntegrationStat is a single labelled figure inside a summary tile.
type IntegrationStat struct {
	Label string `json:"label"`
	Value string `json:"value"`
}
