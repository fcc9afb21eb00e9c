package model

// User is a dashboard operator.
type User struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	Role        string   `json:"role"`
	Status      string   `json:"status"`
	LastLogin   string   `json:"lastLogin"`
	Permissions []string `json:"permissions"`
}

func (u User) RecordID() string { return u.ID }

// Roles.
const (
	RoleAdmin   = "admin"
	RoleAnalyst = "analyst"
	RoleViewer  = "viewer"
)

// Integration is a connected third-party system.
type Integration struct {
	ID       string            `json:"id"`
	Name     string            `json:"name"`
	Type     string            `json:"type"`
	Status   string            `json:"status"`
	LastSync string            `json:"lastSync"`
	Health   string            `json:"health"`
	Config   IntegrationConfig `json:"config"`
}

func (i Integration) RecordID() string { return i.ID }

// IntegrationConfig holds masked connection details.
type IntegrationConfig struct {
	APIKey   string `json:"apiKey,omitempty"`
	Endpoint string `json:"endpoint,omitempty"`
	Webhook  string `json:"webhook,omitempty"`
}

// Connector is an entry on the integration settings board.
type Connector struct {
	ID             string `json:"id"`
	Category       string `json:"category"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	Icon           string `json:"icon"`
	Type           string `json:"type"`
	Status         string `json:"status"`
	LastSync       string `json:"lastSync"`
	APIKey         string `json:"apiKey"`
	WebhookEnabled bool   `json:"webhookEnabled"`
}

func (c Connector) RecordID() string { return c.ID }

// Connected reports whether the connector is live.
func (c Connector) Connected() bool { return c.Status == StatusActive }

// BlogPost is an article on the knowledge blog.
type BlogPost struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Excerpt  string `json:"excerpt"`
	Date     string `json:"date"`
	Author   string `json:"author"`
	ReadTime string `json:"readTime"`
}

func (b BlogPost) RecordID() string { return b.ID }
