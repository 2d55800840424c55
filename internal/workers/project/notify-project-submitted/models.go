// internal/workers/project/notify-project-submitted/models.go
package notifyprojectsubmitted

type Input struct {
	ProjectID   string  `json:"projectId"`
	UserID      string  `json:"userId"`
	ProjectName string  `json:"projectName"`
	ProjectType string  `json:"projectType,omitempty"`
	RiskScore   float64 `json:"riskScore"`
}

type Output struct {
	NotificationID string `json:"notificationId"`
	Status         string `json:"status"`
	SentAt         string `json:"sentAt,omitempty"`
}
