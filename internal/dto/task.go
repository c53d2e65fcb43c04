package dto

import "launchdash/internal/models"

type TaskList struct {
	Tasks []models.UpcomingTask `json:"tasks"`
}
