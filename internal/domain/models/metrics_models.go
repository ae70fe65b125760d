package models

import "time"

// MetricsSnapshot — моментальный снимок агрегированных метрик планировщика.
type MetricsSnapshot struct {
	RunID                  string    `json:"run_id"`
	Running                bool      `json:"running"`
	StartedAt              time.Time `json:"started_at,omitempty"`
	UptimeSeconds          float64   `json:"uptime_seconds"`
	TotalMessagesPublished int64     `json:"total_messages_published"`
	MessagesPerSecond      float64   `json:"messages_per_second"`
	BatchesSent            int64     `json:"batches_sent"`
	ActiveMachines         int       `json:"active_machines"`
	ValidationFailures     int64     `json:"validation_failures"`
	TicksCompleted         int64     `json:"ticks_completed"`

	// Последние ошибки публикации, не более 10, старые вытесняются.
	RecentErrors []string `json:"recent_errors"`
}
