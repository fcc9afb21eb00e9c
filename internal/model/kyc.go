package model

// KYC statuses.
const (
	KYCPending  = "pending"
	KYCVerified = "verified"
	KYCFailed   = "failed"
)

// VerificationResults is the identity provider's verdict.
type VerificationResults struct {
	Provider    string `json:"provider"`
	Score       int    `json:"score"`
	Matches     bool   `json:"matches"`
	GeoMismatch bool   `json:"geoMismatch"`
}

// SessionMetadata describes the browser session a submission came from.
type SessionMetadata struct {
	Browser     string `json:"browser"`
	Fingerprint string `json:"fingerprint"`
	IP          string `json:"ip"`
}

// KYCRecord is one identity verification.
type KYCRecord struct {
	ID                  string               `json:"id"`
	CustomerName        string               `json:"customerName"`
	Email               string               `json:"email"`
	Status              string               `json:"status"`
	RiskScore           int                  `json:"riskScore"`
	SubmissionDate      string               `json:"submissionDate"`
	DocumentType        string               `json:"documentType"`
	Country             string               `json:"country"`
	VerificationResults *VerificationResults `json:"verificationResults,omitempty"`
	SessionMetadata     *SessionMetadata     `json:"sessionMetadata,omitempty"`
	InternalNotes       string               `json:"internalNotes,omitempty"`
}

func (k KYCRecord) RecordID() string { return k.ID }

// KYCStats summarises the verification queue.
type KYCStats struct {
	TotalChecks      int `json:"totalChecks"`
	VerificationRate int `json:"verificationRate"`
	AverageRiskScore int `json:"averageRiskScore"`
}

// ScoreCount is a histogram bucket.
type ScoreCount struct {
	Score string `json:"score"`
	Count int    `json:"count"`
}

// CountryCount is a per-country tally.
type CountryCount struct {
	Country string `json:"country"`
	Count   int    `json:"count"`
}
