package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"launchdash/internal/api"
	"launchdash/internal/api/handlers"
	"launchdash/internal/dto"
	"launchdash/internal/service"
	"launchdash/pkg/config"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

func newTestApp(t *testing.T, financeURL, taskURL string) *fiber.App {
	t.Helper()

	sources := &config.SourcesConfig{
		FinanceWorkbookURL: financeURL,
		TaskExportURL:      taskURL,
		FetchTimeout:       5 * time.Second,
	}
	serverCfg := &config.ServerConfig{
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
	log := zap.NewNop()
	client := &http.Client{Timeout: sources.FetchTimeout}

	financeHandler := handlers.NewFinanceHandler(service.NewFinanceService(sources, client, log), log)
	taskHandler := handlers.NewTaskHandler(service.NewTaskService(sources, client, log), log)
	return api.SetupRouter(serverCfg, financeHandler, taskHandler, log)
}

// sourceWorkbook builds a minimal but complete finance export: all four
// sheets, one joined transaction, one rule.
func sourceWorkbook(t *testing.T) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheets := map[string][][]interface{}{
		"Burn_Dashboard": {
			{"Opening Capital", "$120,000"},
			{"Runway (Days)", "45"},
			{"Last 30 Days Burn", "2,500.00"},
		},
		"Transactions": {
			{"Date", "Account", "Type", "Payee", "Memo", "Category", "Subcategory", "Amount", "GST/HST", "Tip", "Total", "Source", "EmailId", "ThreadId", "AttachmentFolder", "AttachmentCount", "Status", "Notes", "Month"},
			{"2024-01-05", "Visa", "Expense", "Staples", "", "Office", "", "-20.00", "-2.60", "", "-22.60", "email", "em-1", "th-1", "", "1", "Logged", "", "2024-01"},
			{"", "Visa", "Expense", "No date row", "", "", "", "-5.00", "", "", "", "", "", "", "", "", "", "", ""},
		},
		"Attachments_Log": {
			{"SavedAt", "EmailId", "ThreadId", "FileName", "DrivePath", "VendorGuess", "ParsedAmount", "Notes"},
			{"2024-01-05 10:00:00", "em-1", "th-1", "receipt.pdf", "https://drive.example/r1", "Staples", "$22.60", ""},
		},
		"Rules_Vendors": {
			{"Vendor_Contains", "Assign_Category", "Assign_Subcategory", "Tag"},
			{"staples", "Office", "Supplies", "ops"},
		},
	}

	for name, rows := range sheets {
		_, err := f.NewSheet(name)
		require.NoError(t, err)
		for i, cells := range rows {
			axis, err := excelize.CoordinatesToCellName(1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(name, axis, &cells))
		}
	}
	require.NoError(t, f.DeleteSheet("Sheet1"))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestFinanceEndpoint(t *testing.T) {
	workbook := sourceWorkbook(t)
	source := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(workbook)
	}))
	defer source.Close()

	app := newTestApp(t, source.URL, source.URL)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/finance", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "public, max-age=600", resp.Header.Get(fiber.HeaderCacheControl))

	var report dto.FinanceReport
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))

	assert.Equal(t, 120000.0, report.Metrics.OpeningCapital)
	assert.Equal(t, 45.0, report.Metrics.RunwayDays)
	assert.Equal(t, 2500.0, report.Metrics.Last30Burn)

	// The dateless ledger row is excluded; the surviving one carries
	// its attachment join.
	require.Len(t, report.Transactions, 1)
	tx := report.Transactions[0]
	assert.Equal(t, "em-1", tx.ID)
	require.NotNil(t, tx.Date)
	assert.Equal(t, "2024-01-05T00:00:00.000Z", *tx.Date)
	require.Len(t, tx.Attachments, 1)
	assert.Equal(t, "receipt.pdf", tx.Attachments[0].FileName)

	require.Len(t, report.Attachments, 1)
	require.NotNil(t, report.Attachments[0].Link)
	assert.Equal(t, "https://drive.example/r1", *report.Attachments[0].Link)

	require.Len(t, report.VendorRules, 1)
	assert.Equal(t, "staples", report.VendorRules[0].VendorContains)

	// The ledger date is far outside any real trailing window, so the
	// trend is empty but present.
	assert.NotNil(t, report.BurnTrend)
	require.Len(t, report.RecentExpenses, 1)
	assert.Equal(t, 22.60, report.RecentExpenses[0].Total)
}

func TestFinanceEndpoint_SourceUnavailable(t *testing.T) {
	source := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer source.Close()

	app := newTestApp(t, source.URL, source.URL)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/finance", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusBadGateway, resp.StatusCode)

	var body dto.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.NotEmpty(t, body.Error)
	assert.Empty(t, body.Details)
}

func TestFinanceEndpoint_MalformedWorkbook(t *testing.T) {
	source := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("this is not a spreadsheet"))
	}))
	defer source.Close()

	app := newTestApp(t, source.URL, source.URL)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/finance", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	var body dto.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.NotEmpty(t, body.Details)
}

func TestUpcomingEndpoint(t *testing.T) {
	csvBody := "ID,Workstream,Task,MandatoryCategory,Urgency,CriticalPath,Owner,Dependencies,DueDate,Status,DueInDays,Pressing\n" +
		"T-2,Marketing,Launch site,,Medium,,Alex,T-1,2024-02-10,Not Started,12,\n" +
		"T-1,Business & Legal,Register corporation,Mandatory,High,Y,Sam,,2024-02-01,In Progress,3,yes\n"

	source := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(csvBody))
	}))
	defer source.Close()

	app := newTestApp(t, source.URL, source.URL)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/upcoming", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list dto.TaskList
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))

	require.Len(t, list.Tasks, 2)
	assert.Equal(t, "T-1", list.Tasks[0].ID)
	assert.True(t, list.Tasks[0].CriticalPath)
	assert.Equal(t, "T-2", list.Tasks[1].ID)
	assert.Equal(t, []string{"T-1"}, list.Tasks[1].Dependencies)
}

func TestUpcomingEndpoint_SourceUnavailable(t *testing.T) {
	source := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer source.Close()

	app := newTestApp(t, source.URL, source.URL)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/upcoming", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestUpcomingEndpoint_MalformedCSV(t *testing.T) {
	source := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ID,Task\nT-1,only,too,many,fields\n"))
	}))
	defer source.Close()

	app := newTestApp(t, source.URL, source.URL)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/upcoming", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	var body dto.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.NotEmpty(t, body.Details)
}

func TestHealthEndpoint(t *testing.T) {
	app := newTestApp(t, "http://127.0.0.1:0", "http://127.0.0.1:0")

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
