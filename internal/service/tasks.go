package service

import (
	"context"
	"encoding/csv"
	"math"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"launchdash/internal/dto"
	"launchdash/internal/models"
	"launchdash/pkg/config"

	"go.uber.org/zap"
)

// TaskService turns the launch checklist CSV export into typed, sorted
// task records. It shares the finance pipeline's normalization policy:
// bad fields degrade, bad documents fail.
type TaskService struct {
	sources *config.SourcesConfig
	client  *http.Client
	logger  *zap.Logger
}

func NewTaskService(sources *config.SourcesConfig, client *http.Client, logger *zap.Logger) *TaskService {
	return &TaskService{
		sources: sources,
		client:  client,
		logger:  logger,
	}
}

func (s *TaskService) LoadTasks(ctx context.Context) (*dto.TaskList, error) {
	body, err := fetchSource(ctx, s.client, s.sources.TaskExportURL)
	if err != nil {
		return nil, err
	}

	tasks, err := parseTasks(string(body))
	if err != nil {
		return nil, err
	}

	s.logger.Debug("task list built", zap.Int("tasks", len(tasks)))
	return &dto.TaskList{Tasks: tasks}, nil
}

// parseTasks reads the header-first CSV export. Rows missing an id or
// task text are dropped; a structurally broken document is a
// MalformedDocumentError carrying the parser diagnostic.
func parseTasks(csvText string) ([]models.UpcomingTask, error) {
	// Google's CSV export may lead with a UTF-8 BOM.
	reader := csv.NewReader(strings.NewReader(strings.TrimPrefix(csvText, "\uFEFF")))
	grid, err := reader.ReadAll()
	if err != nil {
		return nil, &MalformedDocumentError{Details: err.Error()}
	}

	tasks := make([]models.UpcomingTask, 0, len(grid))
	if len(grid) == 0 {
		return tasks, nil
	}

	header := make([]string, len(grid[0]))
	for i, name := range grid[0] {
		header[i] = strings.ToLower(strings.TrimSpace(name))
	}

	for _, cells := range grid[1:] {
		record := make(row, len(header))
		for i, name := range header {
			if name == "" || i >= len(cells) {
				continue
			}
			record[name] = cells[i]
		}

		id := record.get("id")
		task := record.get("task")
		if id == "" || task == "" {
			continue
		}

		// "date not yet known" is distinct from "zero days": only a
		// non-blank cell that parses cleanly yields a number.
		var dueInDays *int
		if raw := record.get("dueindays"); raw != "" {
			if value, err := strconv.Atoi(raw); err == nil {
				dueInDays = &value
			}
		}
		var dueDate *string
		if raw := record.get("duedate"); raw != "" {
			dueDate = parseDateToISO(raw)
		}

		tasks = append(tasks, models.UpcomingTask{
			ID:                id,
			Workstream:        record.getOr("workstream", "General"),
			Task:              task,
			MandatoryCategory: record.get("mandatorycategory"),
			Urgency:           record.get("urgency"),
			CriticalPath:      parseFlag(record.get("criticalpath")),
			Owner:             record.get("owner"),
			Dependencies:      splitDependencies(record.get("dependencies")),
			DueDate:           dueDate,
			DueInDays:         dueInDays,
			Status:            record.getOr("status", "Not Started"),
			Pressing:          parseFlag(record.get("pressing")),
		})
	}

	// Soonest due first; tasks without a known due-in-days go last, ties
	// break on the due date string.
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := dueOrder(tasks[i].DueInDays), dueOrder(tasks[j].DueInDays)
		if a == b {
			return isoOrEmpty(tasks[i].DueDate) < isoOrEmpty(tasks[j].DueDate)
		}
		return a < b
	})

	return tasks, nil
}

func dueOrder(days *int) float64 {
	if days == nil {
		return math.Inf(1)
	}
	return float64(*days)
}

// parseFlag reads the sheet's permissive booleans: true/y/yes in any
// case are true, everything else is false.
func parseFlag(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "y", "yes":
		return true
	default:
		return false
	}
}

func splitDependencies(value string) []string {
	deps := make([]string, 0)
	for _, part := range strings.Split(value, "|") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			deps = append(deps, trimmed)
		}
	}
	return deps
}
