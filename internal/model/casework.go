package model

// Case is a fraud investigation.
type Case struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Type       string `json:"type"`
	Status     string `json:"status"`
	Priority   string `json:"priority"`
	AssignedTo string `json:"assignedTo"`
	CreatedAt  string `json:"createdAt"`
}

func (c Case) RecordID() string { return c.ID }

// Case statuses.
const (
	CaseOpen       = "open"
	CaseInProgress = "in_progress"
	CaseResolved   = "resolved"
	CaseClosed     = "closed"
)

// Chargeback is a disputed payment.
type Chargeback struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	OrderID   string `json:"orderId"`
	Processor string `json:"processor"`
	Reason    string `json:"reason"`
	RiskScore int    `json:"riskScore"`
	Flagged   bool   `json:"flagged"`
	Disputed  bool   `json:"disputed"`
}

func (c Chargeback) RecordID() string { return c.ID }

// WarrantyClaim is a product warranty request.
type WarrantyClaim struct {
	ID        string `json:"id"`
	OrderID   string `json:"orderId"`
	Product   string `json:"product"`
	ClaimedOn string `json:"claimedOn"`
	Status    string `json:"status"`
}

func (w WarrantyClaim) RecordID() string { return w.ID }

// TrackingEvent is one courier scan.
type TrackingEvent struct {
	Timestamp string `json:"timestamp"`
	Status    string `json:"status"`
	Location  string `json:"location,omitempty"`
	Risk      string `json:"risk,omitempty"`
}

// SOPOverride records whether a refund bypassed the standard procedure.
type SOPOverride struct {
	Approved bool   `json:"approved"`
	Approver string `json:"approver,omitempty"`
}

// TrackingOrder is a shipment under anomaly review.
type TrackingOrder struct {
	ID              string          `json:"id"`
	TrackingNumber  string          `json:"trackingNumber"`
	Courier         string          `json:"courier"`
	Country         string          `json:"country"`
	Date            string          `json:"date"`
	FraudScore      int             `json:"fraudScore"`
	Status          string          `json:"status"`
	RefundMethod    string          `json:"refundMethod"`
	RefundAmount    float64         `json:"refundAmount"`
	ProxyUsed       bool            `json:"proxyUsed"`
	AddressMismatch bool            `json:"addressMismatch"`
	HighRiskZip     bool            `json:"highRiskZip"`
	RegionHop       bool            `json:"regionHop"`
	MultipleClaims  bool            `json:"multipleClaims"`
	DamageReport    bool            `json:"damageReport"`
	SOPOverride     SOPOverride     `json:"sopOverride"`
	TrackingEvents  []TrackingEvent `json:"trackingEvents"`
}

func (t TrackingOrder) RecordID() string { return t.ID }

// RiskFlags lists the anomaly indicators raised on the shipment.
func (t TrackingOrder) RiskFlags() []string {
	var flags []string
	for _, f := range []struct {
		on    bool
		label string
	}{
		{t.ProxyUsed, "Proxy Used"},
		{t.AddressMismatch, "Address Mismatch"},
		{t.HighRiskZip, "High-Risk ZIP"},
		{t.RegionHop, "Region Hop"},
		{t.MultipleClaims, "Multiple Claims"},
		{t.DamageReport, "Damage Report"},
	} {
		if f.on {
			flags = append(flags, f.label)
		}
	}
	return flags
}
