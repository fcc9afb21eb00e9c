package memory

import (
	"slices"

	"github.com/fraudshield/admin-dashboard/internal/model"
)

// Stores is every record store the dashboard reads.
type Stores struct {
	Orders       *Store[model.Order]
	Cases        *Store[model.Case]
	Chargebacks  *Store[model.Chargeback]
	Warranty     *Store[model.WarrantyClaim]
	Tracking     *Store[model.TrackingOrder]
	Patterns     *Store[model.Pattern]
	SOPs         *Store[model.SOP]
	AccessLogs   *Store[model.AccessLog]
	Fingerprints *Store[model.FingerprintRecord]
	KYC          *Store[model.KYCRecord]
	Users        *Store[model.User]
	Integrations *Store[model.Integration]
	Connectors   *Store[model.Connector]
	Blog         *Store[model.BlogPost]
}

// Seed returns stores filled with fresh copies of the mock data.
func Seed() *Stores {
	return &Stores{
		Orders:       NewStore(cloneOrder, seedOrders()...),
		Cases:        NewStore[model.Case](nil, seedCases()...),
		Chargebacks:  NewStore[model.Chargeback](nil, seedChargebacks()...),
		Warranty:     NewStore[model.WarrantyClaim](nil, seedWarranty()...),
		Tracking:     NewStore(cloneTracking, seedTracking()...),
		Patterns:     NewStore(clonePattern, seedPatterns()...),
		SOPs:         NewStore(cloneSOP, seedSOPs()...),
		AccessLogs:   NewStore[model.AccessLog](nil, seedAccessLogs()...),
		Fingerprints: NewStore(cloneFingerprint, seedFingerprints()...),
		KYC:          NewStore(cloneKYC, seedKYC()...),
		Users:        NewStore(cloneUser, seedUsers()...),
		Integrations: NewStore[model.Integration](nil, seedIntegrations()...),
		Connectors:   NewStore[model.Connector](nil, seedConnectors()...),
		Blog:         NewStore[model.BlogPost](nil, seedBlog()...),
	}
}

func cloneOrder(o model.Order) model.Order {
	o.RiskLabels = slices.Clone(o.RiskLabels)
	return o
}

func cloneTracking(t model.TrackingOrder) model.TrackingOrder {
	t.TrackingEvents = slices.Clone(t.TrackingEvents)
	return t
}

func clonePattern(p model.Pattern) model.Pattern {
	p.Tags = slices.Clone(p.Tags)
	return p
}

func cloneSOP(s model.SOP) model.SOP {
	s.Patterns = slices.Clone(s.Patterns)
	return s
}

func cloneFingerprint(f model.FingerprintRecord) model.FingerprintRecord {
	if f.IPInfo != nil {
		info := *f.IPInfo
		f.IPInfo = &info
	}
	return f
}

func cloneKYC(k model.KYCRecord) model.KYCRecord {
	if k.VerificationResults != nil {
		v := *k.VerificationResults
		k.VerificationResults = &v
	}
	if k.SessionMetadata != nil {
		m := *k.SessionMetadata
		k.SessionMetadata = &m
	}
	return k
}

func cloneUser(u model.User) model.User {
	u.Permissions = slices.Clone(u.Permissions)
	return u
}

func seedOrders() []model.Order {
	return []model.Order{
		{
			ID: "ORD-001", CustomerName: "John Doe", Email: "j***@example.com",
			ShippingCountry: "US", DeviceType: "Desktop", ProxyUsed: true, FraudScore: 85,
			RiskLabels: []string{"High Returner", "Proxy Detected"}, Status: model.OrderFlagged,
			IPAddress: "192.168.1.100", Date: "2024-03-15",
			CompensationType: model.CompensationRefund, CompensationAmount: 299.99,
			RootCause: "Empty Box (EBA)", ResolutionSummary: "Customer reported empty box, investigation pending",
		},
		{
			ID: "ORD-002", CustomerName: "Jane Smith", Email: "j***@example.com",
			ShippingCountry: "CA", DeviceType: "Mobile", FraudScore: 15,
			RiskLabels: []string{}, Status: model.OrderClear,
			IPAddress: "10.0.0.123", Date: "2024-03-14",
			CompensationType: model.CompensationReplacement, CompensationAmount: 149.99,
			RootCause: "Defective / Warranty", ResolutionSummary: "Product malfunction confirmed, replacement shipped",
		},
		{
			ID: "ORD-003", CustomerName: "Mike Johnson", Email: "m***@example.com",
			ShippingCountry: "UK", DeviceType: "Desktop", ProxyUsed: true, FraudScore: 92,
			RiskLabels: []string{"Velocity Alert", "Proxy Detected"}, Status: model.OrderFlagged,
			IPAddress: "172.16.0.1", Date: "2024-03-13",
			CompensationType: model.CompensationChargeback, CompensationAmount: 199.99,
			RootCause: "Social Engineering Suspected", ResolutionSummary: "Multiple similar claims from same IP, investigation ongoing",
		},
		{
			ID: "ORD-004", CustomerName: "Sarah Williams", Email: "s***@example.com",
			ShippingCountry: "AU", DeviceType: "Mobile", FraudScore: 8,
			RiskLabels: []string{}, Status: model.OrderClear,
			IPAddress: "203.0.113.1", Date: "2024-03-12",
			CompensationType: model.CompensationRefund, CompensationAmount: 79.99,
			RootCause: "Returned — Legitimate", ResolutionSummary: "Product returned in original condition",
		},
		{
			ID: "ORD-005", CustomerName: "David Brown", Email: "d***@example.com",
			ShippingCountry: "DE", DeviceType: "Desktop", ProxyUsed: true, FraudScore: 78,
			RiskLabels: []string{"High Returner"}, Status: model.OrderUnderReview,
			IPAddress: "198.51.100.1", Date: "2024-03-11",
			CompensationType: model.CompensationReplacement, CompensationAmount: 399.99,
			RootCause: "Lost in Transit", ResolutionSummary: "Package lost during shipping, replacement issued",
		},
		{
			ID: "ORD-006", CustomerName: "Emma Davis", Email: "e***@example.com",
			ShippingCountry: "FR", DeviceType: "Mobile", FraudScore: 12,
			RiskLabels: []string{}, Status: model.OrderClear,
			IPAddress: "192.0.2.1", Date: "2024-03-10",
			CompensationType: model.CompensationRefund, CompensationAmount: 129.99,
			RootCause: "Unknown – Needs Review", ResolutionSummary: "Customer reported issues, needs further investigation",
		},
	}
}

func seedCases() []model.Case {
	return []model.Case{
		{ID: "1", Title: "Suspicious Transaction Pattern", Type: "Payment Fraud", Status: model.CaseOpen, Priority: "high", AssignedTo: "John Doe", CreatedAt: "2024-03-15"},
		{ID: "CASE-001", Title: "Suspicious Multiple Returns", Type: "Returns Abuse", Status: model.CaseOpen, Priority: "high", AssignedTo: "John Smith", CreatedAt: "2024-03-15T10:00:00Z"},
		{ID: "CASE-002", Title: "IP Geolocation Mismatch", Type: "Account Takeover", Status: model.CaseInProgress, Priority: "medium", AssignedTo: "Sarah Johnson", CreatedAt: "2024-03-14T15:20:00Z"},
		{ID: "CASE-003", Title: "Serial Returns Investigation", Type: "Returns Abuse", Status: model.CaseResolved, Priority: "low", AssignedTo: "Mike Chen", CreatedAt: "2024-03-13T09:45:00Z"},
		{ID: "CASE-004", Title: "Empty Box Claim Cluster", Type: "Refund Abuse", Status: model.CaseOpen, Priority: "medium", AssignedTo: "Emma Davis", CreatedAt: "2024-03-12T11:10:00Z"},
		{ID: "CASE-005", Title: "Warehouse Claim Spike", Type: "Returns Abuse", Status: model.CaseOpen, Priority: "low", AssignedTo: "Sarah Johnson", CreatedAt: "2024-03-11T16:30:00Z"},
		{ID: "CASE-006", Title: "Chargeback Ring Review", Type: "Friendly Fraud", Status: model.CaseClosed, Priority: "high", AssignedTo: "John Doe", CreatedAt: "2024-03-09T08:00:00Z"},
	}
}

func seedChargebacks() []model.Chargeback {
	return []model.Chargeback{
		{ID: "CB-001", Email: "customer1@example.com", OrderID: "ORD-001", Processor: "Stripe", Reason: "Item Not Received", RiskScore: 85},
		{ID: "CB-002", Email: "customer2@example.com", OrderID: "ORD-002", Processor: "PayPal", Reason: "Unauthorized Transaction", RiskScore: 75},
		{ID: "CB-003", Email: "customer3@example.com", OrderID: "ORD-003", Processor: "Stripe", Reason: "Quality Issue", RiskScore: 45},
	}
}

func seedWarranty() []model.WarrantyClaim {
	return []model.WarrantyClaim{
		{ID: "WC-12345", OrderID: "12345", Product: "Premium Widget", ClaimedOn: "2024-03-15", Status: "pending"},
		{ID: "WC-12344", OrderID: "12344", Product: "Deluxe Package", ClaimedOn: "2024-03-14", Status: "approved"},
		{ID: "WC-12338", OrderID: "12338", Product: "Premium Widget", ClaimedOn: "2024-03-12", Status: "rejected"},
	}
}

func seedTracking() []model.TrackingOrder {
	return []model.TrackingOrder{
		{
			ID: "ORD-001", TrackingNumber: "TRK123456789", Courier: "DHL", Country: "DE", Date: "2024-03-15",
			FraudScore: 85, Status: "Refunded", RefundMethod: "Claim", RefundAmount: 299.99,
			ProxyUsed: true, AddressMismatch: true, HighRiskZip: true, RegionHop: true, MultipleClaims: true,
			SOPOverride: model.SOPOverride{Approved: true, Approver: "John Smith"},
			TrackingEvents: []model.TrackingEvent{
				{Timestamp: "2024-03-15 10:00", Status: "Pickup", Location: "Berlin, DE"},
				{Timestamp: "2024-03-15 11:30", Status: "Transit", Location: "Hamburg, DE", Risk: "high"},
				{Timestamp: "2024-03-15 13:00", Status: "Delivered", Location: "Munich, DE"},
			},
		},
		{
			ID: "ORD-007", TrackingNumber: "FDX987654321", Courier: "FedEx", Country: "US", Date: "2024-03-14",
			FraudScore: 65, Status: "Under Review", RefundMethod: "LIT", RefundAmount: 149.5,
			AddressMismatch: true, DamageReport: true,
			TrackingEvents: []model.TrackingEvent{
				{Timestamp: "2024-03-13 08:15", Status: "Pickup", Location: "Memphis, US"},
				{Timestamp: "2024-03-14 17:40", Status: "Exception", Location: "Chicago, US", Risk: "medium"},
			},
		},
		{
			ID: "ORD-008", TrackingNumber: "1Z999AA10123456784", Courier: "UPS", Country: "UK", Date: "2024-03-13",
			FraudScore: 45, Status: "Pending", RefundMethod: "RTS", RefundAmount: 89.99,
			TrackingEvents: []model.TrackingEvent{
				{Timestamp: "2024-03-12 09:00", Status: "Pickup", Location: "London, UK"},
				{Timestamp: "2024-03-13 12:20", Status: "Returned to Sender", Location: "London, UK", Risk: "low"},
			},
		},
	}
}

func seedPatterns() []model.Pattern {
	return []model.Pattern{
		{
			ID: "PAT-001", Name: "High-Risk IP Detection",
			RuleSet:  "IF IP = Proxy + shipping ≠ billing + delivery < 3d → HIGH",
			Severity: 85, Tags: []string{"IP", "Proxy", "Shipping"}, Triggers: 145,
			LastModified: "2024-03-15", Version: 2, FraudCategory: "IP",
			Description: "Detects high-risk IP activities", Type: "logic", Status: model.StatusActive,
			Definition: "IF IP = Proxy + shipping ≠ billing + delivery < 3d THEN HIGH",
			ModifiedBy: "John Doe", Effectiveness: 85,
		},
		{
			ID: "PAT-002", Name: "Refund Abuse Pattern",
			RuleSet:  "IF refunds > 3 in 30d + different cards used → HIGH",
			Severity: 90, Tags: []string{"Refund", "Payment"}, Triggers: 89,
			LastModified: "2024-03-14", Version: 1, FraudCategory: "Refund",
			Description: "Detects refund abuse", Type: "logic", Status: model.StatusActive,
			Definition: "IF refunds > 3 in 30d + different cards used THEN HIGH",
			ModifiedBy: "Jane Smith", Effectiveness: 90,
		},
	}
}

func seedSOPs() []model.SOP {
	return []model.SOP{
		{
			ID: "SOP-001", Name: "Payment Fraud Investigation", Version: "2.1", Status: model.StatusActive,
			Patterns:     []string{"Multiple Returns", "IP Geolocation"},
			Steps:        "# Payment Fraud Investigation\n\n1. Review transaction details\n2. Check customer history\n3. Verify IP location\n4. Document findings",
			LastModified: "2024-03-15T14:30:00Z", ModifiedBy: "John Smith",
		},
		{
			ID: "SOP-002", Name: "Account Takeover Response", Version: "1.5", Status: model.StatusTesting,
			Patterns:     []string{"Login Anomaly", "Device Fingerprint"},
			Steps:        "# Account Takeover Response\n\n1. Verify account ownership\n2. Review recent activity\n3. Check security settings\n4. Update security measures",
			LastModified: "2024-03-14T09:15:00Z", ModifiedBy: "Sarah Johnson",
		},
	}
}

func seedAccessLogs() []model.AccessLog {
	return []model.AccessLog{
		{ID: "LOG-001", EmployeeID: "EMP-001", Action: "Failed Login", IP: "192.168.1.100", Timestamp: "2024-03-15 14:30:00", Risk: "3 failed logins"},
		{ID: "LOG-002", EmployeeID: "EMP-002", Action: "Mass Refund", IP: "192.168.1.101", Timestamp: "2024-03-15 13:15:00", Risk: "Mass refund approvals"},
		{ID: "LOG-003", EmployeeID: "EMP-003", Action: "Camera Disabled", IP: "192.168.1.102", Timestamp: "2024-03-15 12:45:00", Risk: "Disabled camera"},
	}
}

func seedFingerprints() []model.FingerprintRecord {
	return []model.FingerprintRecord{
		{
			ID: "FP-001", Timestamp: "2024-03-15T10:30:00Z", IP: "185.222.211.42", Port: 443,
			TTL: 64, MSS: 1460, Window: 65535, Flags: "SYN,ACK", OS: "Linux 5.15", Risk: 25,
			IPInfo: &model.IPInfo{ASN: "AS9009 M247 Europe SRL", Country: "Netherlands", Range: "185.222.208.0/21", Type: "Hosting", Flagged: true},
		},
		{
			ID: "FP-002", Timestamp: "2024-03-15T10:31:00Z", IP: "192.168.1.100", Port: 80,
			TTL: 128, MSS: 1380, Window: 65535, Flags: "SYN", OS: "Windows 10", Risk: 45,
			IPInfo: &model.IPInfo{ASN: "AS1234 Example ISP", Country: "US", Range: "192.168.1.0/24", Type: "Residential", Flagged: false},
		},
		{
			ID: "FP-003", Timestamp: "2024-03-15T10:32:00Z", IP: "10.0.0.5", Port: 443,
			TTL: 64, MSS: 1150, Window: 65535, Flags: "SYN,ACK", OS: "Unknown", Risk: 85,
			IPInfo: &model.IPInfo{ASN: "AS5678 Private Network", Country: "Unknown", Range: "10.0.0.0/8", Type: "Private", Flagged: true},
		},
	}
}

func seedKYC() []model.KYCRecord {
	return []model.KYCRecord{
		{
			ID: "KYC-001", CustomerName: "John Doe", Email: "john@example.com", Status: model.KYCVerified,
			RiskScore: 25, SubmissionDate: "2024-03-15", DocumentType: "Passport", Country: "US",
			VerificationResults: &model.VerificationResults{Provider: "Sumsub", Score: 95, Matches: true},
			SessionMetadata:     &model.SessionMetadata{Browser: "Chrome 122.0", Fingerprint: "abc123", IP: "192.168.1.1"},
			InternalNotes:       "Customer verified successfully",
		},
		{
			ID: "KYC-002", CustomerName: "Jane Smith", Email: "jane@example.com", Status: model.KYCPending,
			RiskScore: 65, SubmissionDate: "2024-03-16", DocumentType: "ID", Country: "UK",
		},
		{
			ID: "KYC-003", CustomerName: "Bob Wilson", Email: "bob@example.com", Status: model.KYCFailed,
			RiskScore: 85, SubmissionDate: "2024-03-17", DocumentType: "Driver License", Country: "CA",
			VerificationResults: &model.VerificationResults{Provider: "Veriff", Score: 45, Matches: false, GeoMismatch: true},
		},
	}
}

func seedUsers() []model.User {
	return []model.User{
		{ID: "1", Name: "John Doe", Email: "john.doe@example.com", Role: model.RoleAdmin, Status: "active", LastLogin: "2024-03-15T10:30:00Z", Permissions: []string{"manage_users", "view_analytics", "edit_patterns"}},
		{ID: "2", Name: "Jane Smith", Email: "jane.smith@example.com", Role: model.RoleAnalyst, Status: "active", LastLogin: "2024-03-15T09:15:00Z", Permissions: []string{"view_analytics", "edit_patterns"}},
		{ID: "3", Name: "Bob Wilson", Email: "bob.wilson@example.com", Role: model.RoleViewer, Status: "inactive", LastLogin: "2024-03-14T15:45:00Z", Permissions: []string{"view_analytics"}},
		{ID: "4", Name: "Alice Brown", Email: "alice.brown@example.com", Role: model.RoleAnalyst, Status: "pending", LastLogin: "2024-03-15T11:20:00Z", Permissions: []string{"view_analytics", "edit_patterns"}},
	}
}

func seedIntegrations() []model.Integration {
	return []model.Integration{
		{
			ID: "INT-001", Name: "Stripe Payment Gateway", Type: "payment", Status: model.StatusActive,
			LastSync: "2024-03-15T14:30:00Z", Health: "healthy",
			Config: model.IntegrationConfig{APIKey: "sk_live_...", Endpoint: "https://api.stripe.com/v1"},
		},
		{
			ID: "INT-002", Name: "MaxMind GeoIP", Type: "identity", Status: model.StatusActive,
			LastSync: "2024-03-15T14:25:00Z", Health: "warning",
			Config: model.IntegrationConfig{APIKey: "maxmind_...", Endpoint: "https://geoip.maxmind.com"},
		},
	}
}

func seedConnectors() []model.Connector {
	c := func(id, category, name, desc, icon, typ, status, sync, key string) model.Connector {
		return model.Connector{
			ID: id, Category: category, Name: name, Description: desc, Icon: icon, Type: typ,
			Status: status, LastSync: sync, APIKey: key, WebhookEnabled: status == model.StatusActive,
		}
	}
	const on, off = model.StatusActive, "error"
	return []model.Connector{
		c("stripe", "payments", "Stripe", "Payment processing and fraud detection", "💳", "payment", on, "2 minutes ago", "sk_live_..."),
		c("paypal", "payments", "PayPal", "Alternative payment processing", "🔵", "payment", off, "Never", ""),
		c("maxmind", "payments", "MaxMind", "IP geolocation and fraud detection", "🌍", "risk", on, "5 minutes ago", "maxmind_..."),
		c("shopify", "ecommerce", "Shopify", "E-commerce platform integration", "🛍️", "ecom", on, "1 minute ago", "shopify_..."),
		c("woocommerce", "ecommerce", "WooCommerce", "WordPress e-commerce integration", "🛒", "ecom", off, "Never", ""),
		c("magento", "ecommerce", "Magento", "Enterprise e-commerce platform", "🏢", "ecom", off, "Never", ""),
		c("dhl", "shipping", "DHL", "Shipping and tracking integration", "📦", "ecom", on, "3 minutes ago", "dhl_..."),
		c("fedex", "shipping", "FedEx", "Express shipping integration", "✈️", "ecom", off, "Never", ""),
		c("ups", "shipping", "UPS", "Global shipping integration", "🚚", "ecom", off, "Never", ""),
		c("google-analytics", "analytics", "Google Analytics", "Website analytics and tracking", "📊", "analytics", on, "Just now", "ga_..."),
		c("mixpanel", "analytics", "Mixpanel", "User behavior analytics", "📈", "analytics", off, "Never", ""),
		c("segment", "analytics", "Segment", "Customer data platform", "🔗", "analytics", off, "Never", ""),
		c("confluence", "documentation", "Confluence", "Documentation and knowledge base", "📚", "docs", on, "1 hour ago", "confluence_..."),
		c("notion", "documentation", "Notion", "Team documentation platform", "📝", "docs", off, "Never", ""),
		c("github", "documentation", "GitHub", "Code repository and documentation", "💻", "docs", on, "30 minutes ago", "github_..."),
		c("auth0", "security", "Auth0", "Authentication and authorization", "🔐", "risk", on, "Just now", "auth0_..."),
		c("okta", "security", "Okta", "Identity management", "👤", "risk", off, "Never", ""),
		c("cloudflare", "security", "Cloudflare", "DDoS protection and security", "🛡️", "risk", on, "5 minutes ago", "cloudflare_..."),
	}
}

// ConnectorCategories lists the settings board tabs in display order.
var ConnectorCategories = []string{"payments", "ecommerce", "shipping", "analytics", "documentation", "security"}

func seedBlog() []model.BlogPost {
	return []model.BlogPost{
		{ID: "1", Title: "Understanding Modern Fraud Patterns", Excerpt: "Learn about the latest trends in fraud detection and prevention...", Date: "2024-03-15", Author: "John Doe", ReadTime: "5 min read"},
		{ID: "2", Title: "Best Practices for Chargeback Prevention", Excerpt: "Discover effective strategies to reduce chargebacks and protect your revenue.", Date: "2024-03-14", Author: "Michael Chen", ReadTime: "4 min read"},
		{ID: "3", Title: "Insider Threats: A Growing Concern", Excerpt: "How to identify and prevent insider threats in your organization.", Date: "2024-03-13", Author: "David Smith", ReadTime: "6 min read"},
	}
}
