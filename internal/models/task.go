package models

// UpcomingTask is one checklist row from the launch tracker export.
// DueInDays nil means the date is not yet known, which is distinct
// from zero days left.
type UpcomingTask struct {
	ID                string   `json:"id"`
	Workstream        string   `json:"workstream"`
	Task              string   `json:"task"`
	MandatoryCategory string   `json:"mandatoryCategory"`
	Urgency           string   `json:"urgency"`
	CriticalPath      bool     `json:"criticalPath"`
	Owner             string   `json:"owner"`
	Dependencies      []string `json:"dependencies"`
	DueDate           *string  `json:"dueDate"`
	DueInDays         *int     `json:"dueInDays"`
	Status            string   `json:"status"`
	Pressing          bool     `json:"pressing"`
}
