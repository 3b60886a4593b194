package domain

import "time"

// Task is one user-submitted download request and its lifecycle record.
// Rows are never deleted; FilePath may dangle after the retention sweeper
// removes the artifact.
type Task struct {
	ID           uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	UserID       int64     `gorm:"column:user_id;index:idx_tasks_user" json:"user_id"`
	URL          string    `gorm:"column:url;size:2048" json:"url"`
	Status       Status    `gorm:"column:status;size:16;index:idx_tasks_status" json:"status"`
	FilePath     string    `gorm:"column:file_path;size:1024" json:"file_path,omitempty"`
	ErrorMessage string    `gorm:"column:error_message;size:1024" json:"error_message,omitempty"`
	CreatedAt    time.Time `gorm:"column:created_at;index:idx_tasks_created" json:"created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Task) TableName() string {
	return "tasks"
}

// UserStat is per-user rate accounting. Created lazily on first request,
// never deleted.
type UserStat struct {
	UserID         int64     `gorm:"column:user_id;primaryKey" json:"user_id"`
	DownloadsCount int       `gorm:"column:downloads_count" json:"downloads_count"`
	LastRequest    time.Time `gorm:"column:last_request" json:"last_request"`
	RequestsHour   int       `gorm:"column:requests_hour" json:"requests_hour"`
	LastHourReset  string    `gorm:"column:last_hour_reset;size:16" json:"last_hour_reset"`
}

func (UserStat) TableName() string {
	return "user_stats"
}

// HourBucket labels t at hour granularity. Rate-limit counters reset when the
// stored label no longer matches the current one, so budgets roll over at
// wall-clock hour boundaries, not on a sliding window.
func HourBucket(t time.Time) string {
	return t.Format("2006-01-02-15")
}
