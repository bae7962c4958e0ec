package models

// Contact is the user view returned by the learn service contact endpoint
type Contact struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	IsActive bool   `json:"isActive"`
}

// ReminderRecipient is an active learner below the daily goal
type ReminderRecipient struct {
	UserID           string
	Username         string
	Email            string
	MinutesToday     int
	DailyGoalMinutes int
}

// EnqueuedTask is returned when a task is triggered through the admin API
type EnqueuedTask struct {
	TaskID string `json:"taskId"`
	Type   string `json:"type"`
	Queue  string `json:"queue"`
}

// ScheduleEntry describes one cron job and its upcoming runs
type ScheduleEntry struct {
	Name     string   `json:"name"`
	Cron     string   `json:"cron"`
	NextRuns []string `json:"nextRuns"`
}
