// internal/models/notification.go
package models

// Notification describes one delivery attempt for a submitted project.
type Notification struct {
	ID        string                 `json:"id"`
	ProjectID string                 `json:"projectId"`
	UserID    string                 `json:"userId"`
	Type      string                 `json:"type"`    // "project.submitted"
	Channel   string                 `json:"channel"` // "event", "email"
	Status    string                 `json:"status"`  // "sent", "failed", "disabled"
	Payload   map[string]interface{} `json:"payload"`
	SentAt    string                 `json:"sentAt,omitempty"`
	CreatedAt string                 `json:"createdAt"`
}

// ProjectSubmittedEvent is the message body published for a new record.
type ProjectSubmittedEvent struct {
	Type        string  `json:"type"`
	ProjectID   string  `json:"projectId"`
	UserID      string  `json:"userId"`
	ProjectName string  `json:"projectName"`
	ProjectType string  `json:"projectType"`
	RiskScore   float64 `json:"riskScore"`
	SubmittedAt string  `json:"submittedAt"`
}
