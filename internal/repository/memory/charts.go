package memory

import "github.com/fraudshield/admin-dashboard/internal/model"

// Fixed chart series. Each call returns a fresh copy.

func points(pairs ...any) []model.ChartPoint {
	out := make([]model.ChartPoint, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		var v float64
		switch n := pairs[i+1].(type) {
		case int:
			v = float64(n)
		case float64:
			v = n
		}
		out = append(out, model.ChartPoint{Name: pairs[i].(string), Value: v})
	}
	return out
}

func series(title string, pairs ...any) model.Series {
	return model.Series{Title: title, Points: points(pairs...)}
}

// DashboardStats are the headline cards on the overview page.
func DashboardStats() []model.Stat {
	return []model.Stat{
		{Title: "Total Orders Compensated", Value: "1,234", Change: &model.Change{Value: 12.5, IsPositive: true}},
		{Title: "Avg. Compensation per Order", Value: "€245.50", Change: &model.Change{Value: 5.2, IsPositive: false}},
		{Title: "High-Risk Compensation %", Value: "7.2%", Change: &model.Change{Value: 2.1, IsPositive: true}},
		{Title: "Serial Refunder Risk", Value: "3.8%", Change: &model.Change{Value: 1.5, IsPositive: true}},
	}
}

// IntegrationSummaries are the data-source tiles on the overview page.
func IntegrationSummaries() []model.IntegrationSummary {
	return []model.IntegrationSummary{
		{Name: "Stripe", RiskLevel: "low", LastSync: "2 minutes ago", Figures: []model.IntegrationStat{
			{Label: "Transactions", Value: "1,250"}, {Label: "Fraud Score", Value: "2.4%"},
		}},
		{Name: "Shopify", RiskLevel: "medium", LastSync: "5 minutes ago", Figures: []model.IntegrationStat{
			{Label: "Orders", Value: "850"}, {Label: "Risk Orders", Value: "45"},
		}},
		{Name: "MaxMind", RiskLevel: "low", LastSync: "Just now", Figures: []model.IntegrationStat{
			{Label: "IPs Checked", Value: "2,500"}, {Label: "High-Risk IPs", Value: "12"},
		}},
		{Name: "Fingerprint", RiskLevel: "low", LastSync: "1 minute ago", Figures: []model.IntegrationStat{
			{Label: "Devices", Value: "1,800"}, {Label: "Suspicious", Value: "8"},
		}},
	}
}

func DailyFlaggedOrders() model.Series {
	return series("Daily Flagged Orders", "Mon", 12, "Tue", 8, "Wed", 15, "Thu", 10, "Fri", 18, "Sat", 14, "Sun", 9)
}

func FraudReasons() model.Series {
	s := series("Fraud Reasons",
		"Empty Box (EBA)", 35, "Lost in Transit", 25, "Legitimate Returns", 20, "Defective/Warranty", 15, "Social Engineering", 5)
	colors := []string{"#ef4444", "#f59e0b", "#3b82f6", "#10b981", "#8b5cf6"}
	for i := range s.Points {
		s.Points[i].Color = colors[i]
	}
	return s
}

func OrderRiskDistribution() model.Series {
	s := series("Risk Distribution", "Low Risk", 65, "Medium Risk", 25, "High Risk", 10)
	for i, c := range []string{"#10b981", "#f59e0b", "#ef4444"} {
		s.Points[i].Color = c
	}
	return s
}

// AnalyticsStats are the KPI cards on the analytics page.
func AnalyticsStats() []model.Stat {
	return []model.Stat{
		{Title: "Total Fraud Cases", Value: "98", Change: &model.Change{Value: 12, IsPositive: true}},
		{Title: "Prevented Losses", Value: "$45,678", Change: &model.Change{Value: 8, IsPositive: true}},
		{Title: "Detection Rate", Value: "94.7%", Change: &model.Change{Value: 2.3, IsPositive: true}},
		{Title: "Avg. Resolution Time", Value: "2.5h", Change: &model.Change{Value: 0.5, IsPositive: false}},
	}
}

// PerformanceStats are the detection performance figures.
func PerformanceStats() []model.Stat {
	return []model.Stat{
		{Title: "False Positive Rate", Value: "2.3%", Change: &model.Change{Value: 0.5, IsPositive: true}},
		{Title: "Detection Latency", Value: "45ms", Change: &model.Change{Value: 5, IsPositive: true}},
		{Title: "Pattern Coverage", Value: "98.5%", Change: &model.Change{Value: 0.5, IsPositive: true}},
	}
}

// FraudTrend is one day of analytics.
type FraudTrend struct {
	Date      string
	Cases     int
	Prevented int
}

func FraudTrends() []FraudTrend {
	return []FraudTrend{
		{"2024-03-10", 12, 8},
		{"2024-03-11", 15, 10},
		{"2024-03-12", 8, 6},
		{"2024-03-13", 20, 15},
		{"2024-03-14", 18, 12},
		{"2024-03-15", 25, 18},
	}
}

func FraudTypes() model.Series {
	return series("Fraud Types", "Payment Fraud", 35, "Account Takeover", 25, "Identity Theft", 20, "Friendly Fraud", 15, "Other", 5)
}

func AnalyticsRiskDistribution() model.Series {
	return series("Risk Distribution", "High Risk", 15, "Medium Risk", 45, "Low Risk", 40)
}

func PatternEffectiveness() model.Series {
	return series("Pattern Effectiveness", "IP Geolocation", 92, "Device Fingerprint", 88, "Behavior Analysis", 85, "Transaction History", 82)
}

func PatternTriggers() model.Series {
	return series("Weekly Triggers", "2024-W10", 120, "2024-W11", 150, "2024-W12", 180)
}

func PatternCategories() model.Series {
	return series("Fraud Categories", "Refund", 45, "Chargeback", 35, "IP", 20)
}

func SOPIncidents() model.Series {
	return series("Incidents", "2024-01", 120, "2024-02", 150, "2024-03", 180)
}

func CaseTrends() model.Series {
	return series("Case Trends", "2024-03-10", 12, "2024-03-11", 15, "2024-03-12", 18, "2024-03-13", 14, "2024-03-14", 16, "2024-03-15", 20)
}

func CaseTypes() model.Series {
	return series("Case Types", "Fraud", 45, "Suspicious", 30, "Investigation", 25)
}

func ChargebacksByCountry() model.Series {
	return series("Chargebacks by Country", "US", 45, "UK", 25, "CA", 15, "AU", 10, "Other", 5)
}

func PaymentMethods() model.Series {
	return series("Payment Methods", "Card", 60, "PayPal", 25, "Bank", 15)
}

func InsiderBehavior() model.Series {
	return series("Suspicious Actions", "Mon", 5, "Tue", 3, "Wed", 7, "Thu", 4, "Fri", 6, "Sat", 2, "Sun", 1)
}

func CourierStats() model.Series {
	return series("Courier Share", "DHL", 45, "FedEx", 30, "UPS", 25)
}

func RefundTrends() model.Series {
	return series("Refund Trends", "2024-03-10", 12, "2024-03-11", 8, "2024-03-12", 15, "2024-03-13", 10, "2024-03-14", 18, "2024-03-15", 14)
}

func RefundTypeVsScore() model.Series {
	return series("Refund Type vs Score", "Claim", 85, "RTS", 45, "LIT", 65, "Override", 75)
}

func FingerprintRiskDistribution() model.Series {
	return series("Risk Distribution", "0-20", 150, "21-40", 200, "41-60", 100, "61-80", 50, "81-100", 25)
}

func OSDistribution() model.Series {
	return series("OS Distribution", "Windows", 300, "Linux", 200, "MacOS", 100, "Unknown", 50)
}

func KYCRiskTrend() model.Series {
	return series("Risk Score Trend", "2024-03-10", 75, "2024-03-11", 82, "2024-03-12", 78, "2024-03-13", 85, "2024-03-14", 88, "2024-03-15", 85)
}

func PatternVersions() []model.PatternVersion {
	return []model.PatternVersion{
		{Version: "v2.0", Date: "2024-03-15", Author: "John Doe", Changes: "Updated IP detection logic"},
		{Version: "v1.0", Date: "2024-03-01", Author: "Jane Smith", Changes: "Initial version"},
	}
}
