package model

import "strings"

// Pattern is a fraud detection rule.
type Pattern struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	RuleSet       string   `json:"ruleSet"`
	Severity      int      `json:"severity"`
	Tags          []string `json:"tags"`
	Triggers      int      `json:"triggers"`
	LastModified  string   `json:"lastModified"`
	Version       int      `json:"version"`
	FraudCategory string   `json:"fraudCategory"`
	Description   string   `json:"description"`
	Type          string   `json:"type"`
	Status        string   `json:"status"`
	Definition    string   `json:"definition"`
	ModifiedBy    string   `json:"modifiedBy"`
	Effectiveness int      `json:"effectiveness"`
}

func (p Pattern) RecordID() string { return p.ID }

// SimulationResult is the outcome of replaying a pattern against one order.
type SimulationResult struct {
	OrderID         string   `json:"orderId"`
	FraudScore      int      `json:"fraudScore"`
	MatchedPatterns []string `json:"matchedPatterns"`
	RecommendedSOPs []string `json:"recommendedSOPs"`
}

// SOP is a standard operating procedure.
type SOP struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Version      string   `json:"version"`
	Status       string   `json:"status"`
	Patterns     []string `json:"patterns"`
	Steps        string   `json:"steps"`
	LastModified string   `json:"lastModified"`
	ModifiedBy   string   `json:"modifiedBy"`
}

func (s SOP) RecordID() string { return s.ID }

// Lifecycle statuses shared by patterns and SOPs.
const (
	StatusActive     = "active"
	StatusTesting    = "testing"
	StatusDeprecated = "deprecated"
	StatusArchived   = "archived"
)

// AccessLog is an employee action captured for insider-threat review.
type AccessLog struct {
	ID         string `json:"id"`
	EmployeeID string `json:"employeeId"`
	Action     string `json:"action"`
	IP         string `json:"ip"`
	Timestamp  string `json:"timestamp"`
	Risk       string `json:"risk"`
	Flagged    bool   `json:"flagged"`
	Blocked    bool   `json:"blocked"`
}

func (a AccessLog) RecordID() string { return a.ID }

// Severity grades the log's risk note: mass actions are high, failed
// logins medium, anything else low.
func (a AccessLog) Severity() string {
	switch {
	case strings.Contains(a.Risk, "Mass"):
		return "high"
	case strings.Contains(a.Risk, "failed"):
		return "medium"
	default:
		return "low"
	}
}

// PatternVersion is one entry in a pattern's change history.
type PatternVersion struct {
	Version string `json:"version"`
	Date    string `json:"date"`
	Author  string `json:"author"`
	Changes string `json:"changes"`
}
