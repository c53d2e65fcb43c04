package service

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"regexp"
	"sort"
	"strings"
	"time"

	"launchdash/internal/dto"
	"launchdash/internal/models"
	"launchdash/pkg/config"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const recentExpenseLimit = 5

// burnWindowDays is the trailing window of the burn trend, today
// included.
const burnWindowDays = 30

var (
	// linkShaped accepts bare "https:" prefixes the way rich-cell link
	// candidates are matched in the source export.
	linkShaped   = regexp.MustCompile(`(?i)^https?:`)
	folderShaped = regexp.MustCompile(`(?i)^https?://`)
)

// FinanceService turns the remote finance workbook into the dashboard
// report. Nothing is cached or persisted; every call is a fresh fetch
// and a fresh derivation.
type FinanceService struct {
	sources *config.SourcesConfig
	client  *http.Client
	logger  *zap.Logger
}

func NewFinanceService(sources *config.SourcesConfig, client *http.Client, logger *zap.Logger) *FinanceService {
	return &FinanceService{
		sources: sources,
		client:  client,
		logger:  logger,
	}
}

// BuildReport fetches the workbook and runs the builders in dependency
// order: attachments feed transactions, transactions feed the derived
// series.
func (s *FinanceService) BuildReport(ctx context.Context) (*dto.FinanceReport, error) {
	data, err := fetchSource(ctx, s.client, s.sources.FinanceWorkbookURL)
	if err != nil {
		return nil, err
	}

	wb, err := openWorkbook(data)
	if err != nil {
		return nil, &MalformedDocumentError{Details: err.Error()}
	}
	defer wb.close()

	attachments := buildAttachments(wb)
	transactions := buildTransactions(wb.records(sheetTransactions), attachments)

	report := &dto.FinanceReport{
		Metrics:        collectMetrics(wb.grid(sheetMetrics)),
		Transactions:   transactions,
		Attachments:    attachments,
		VendorRules:    buildVendorRules(wb.records(sheetVendorRules)),
		BurnTrend:      buildBurnTrend(transactions, time.Now()),
		RecentExpenses: buildRecentExpenses(transactions),
	}

	s.logger.Debug("finance report built",
		zap.Int("transactions", len(transactions)),
		zap.Int("attachments", len(attachments)),
		zap.Int("vendorRules", len(report.VendorRules)))

	return report, nil
}

// collectMetrics reduces the label/value dashboard sheet into the fixed
// metrics record. Lookup is case- and whitespace-insensitive and a
// renamed or deleted label degrades to zero instead of failing the
// request.
func collectMetrics(rows [][]string) models.FinanceMetrics {
	lookup := make(map[string]float64, len(rows))
	for _, cells := range rows {
		if len(cells) == 0 {
			continue
		}
		label := strings.TrimSpace(cells[0])
		if label == "" {
			continue
		}
		var raw string
		if len(cells) > 1 {
			raw = cells[1]
		}
		value := parseNumeric(raw)
		if value == nil {
			continue
		}
		lookup[strings.ToLower(label)] = *value
	}

	get := func(label string) float64 {
		return lookup[label]
	}

	return models.FinanceMetrics{
		OpeningCapital:     get("opening capital"),
		CurrentSpendToDate: get("current spend to date (all)"),
		IncomeToDate:       get("income to date (all)"),
		NetCashOut:         get("net cash out"),
		CapitalRemaining:   get("current capital remaining"),
		MonthBurn:          get("this month burn (expenses)"),
		Last30Burn:         get("last 30 days burn"),
		AvgDailyBurn:       get("avg daily burn (30d)"),
		RunwayDays:         get("runway (days)"),
	}
}

// buildAttachments parses the attachment log sheet. A row needs at least
// a file name or a drive path to exist. The link is resolved by scanning
// the row's cells left to right for a hyperlink annotation or a
// URL-shaped value, falling back to the drive path when it is itself
// URL-shaped.
func buildAttachments(wb *workbook) []models.FinanceAttachment {
	results := make([]models.FinanceAttachment, 0)

	grid := wb.grid(sheetAttachments)
	if len(grid) == 0 {
		return results
	}

	header := make(map[string]int, len(grid[0]))
	for i, name := range grid[0] {
		key := strings.ToLower(strings.TrimSpace(name))
		if _, seen := header[key]; !seen {
			header[key] = i
		}
	}
	cellAt := func(cells []string, name string) string {
		idx, ok := header[name]
		if !ok || idx >= len(cells) {
			return ""
		}
		return strings.TrimSpace(cells[idx])
	}

	for i, cells := range grid[1:] {
		fileName := cellAt(cells, "filename")
		drivePath := cellAt(cells, "drivepath")
		if fileName == "" && drivePath == "" {
			continue
		}

		var link *string
		sheetRow := i + 2 // one-based, header is row 1
		scanWidth := len(grid[0])
		if len(cells) > scanWidth {
			scanWidth = len(cells)
		}
		for c := 1; c <= scanWidth; c++ {
			candidate := wb.hyperlink(sheetAttachments, sheetRow, c)
			if candidate == "" && c-1 < len(cells) {
				candidate = strings.TrimSpace(cells[c-1])
			}
			if candidate != "" && linkShaped.MatchString(candidate) {
				link = &candidate
				break
			}
		}
		if link == nil && drivePath != "" && linkShaped.MatchString(drivePath) {
			path := drivePath
			link = &path
		}

		results = append(results, models.FinanceAttachment{
			SavedAt:      parseDateToISO(cellAt(cells, "savedat")),
			EmailID:      cellAt(cells, "emailid"),
			ThreadID:     cellAt(cells, "threadid"),
			FileName:     fileName,
			DrivePath:    drivePath,
			Link:         link,
			VendorGuess:  cellAt(cells, "vendorguess"),
			ParsedAmount: parseNumeric(cellAt(cells, "parsedamount")),
			Notes:        cellAt(cells, "notes"),
		})
	}

	// Newest first; rows without a timestamp keep their sheet order at
	// the end.
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i].SavedAt, results[j].SavedAt
		if a == nil {
			return false
		}
		if b == nil {
			return true
		}
		return *a > *b
	})

	return results
}

// buildTransactions parses the ledger sheet and joins each row to its
// attachments through both key spaces, email id and thread id. Rows with
// an empty date cell are excluded entirely.
func buildTransactions(rows []row, attachments []models.FinanceAttachment) []models.FinanceTransaction {
	byEmail := make(map[string][]models.FinanceAttachment)
	byThread := make(map[string][]models.FinanceAttachment)
	for _, attachment := range attachments {
		if attachment.EmailID != "" {
			byEmail[attachment.EmailID] = append(byEmail[attachment.EmailID], attachment)
		}
		if attachment.ThreadID != "" {
			byThread[attachment.ThreadID] = append(byThread[attachment.ThreadID], attachment)
		}
	}

	transactions := make([]models.FinanceTransaction, 0, len(rows))
	for _, record := range rows {
		if record.get("date") == "" {
			continue
		}

		emailID := record.get("emailid")
		threadID := record.get("threadid")
		folder := record.get("attachmentfolder")

		// Union of both key spaces, de-duplicated, first match wins the
		// slot so ordering stays deterministic.
		keys := make([]string, 0, 4)
		matched := make(map[string]models.FinanceAttachment)
		add := func(key string, attachment models.FinanceAttachment) {
			if _, seen := matched[key]; !seen {
				keys = append(keys, key)
			}
			matched[key] = attachment
		}
		for _, attachment := range byEmail[emailID] {
			add(attachmentKey(attachment), attachment)
		}
		for _, attachment := range byThread[threadID] {
			add(attachmentKey(attachment), attachment)
		}
		if folder != "" {
			var link *string
			if folderShaped.MatchString(folder) {
				value := folder
				link = &value
			}
			add(folder+"-folder", models.FinanceAttachment{
				EmailID:   emailID,
				ThreadID:  threadID,
				FileName:  folder,
				DrivePath: folder,
				Link:      link,
			})
		}
		attached := make([]models.FinanceAttachment, 0, len(keys))
		for _, key := range keys {
			attached = append(attached, matched[key])
		}

		var attachmentCount float64
		if count := parseNumeric(record.get("attachmentcount")); count != nil {
			attachmentCount = *count
		}

		transactions = append(transactions, models.FinanceTransaction{
			ID:               displayID(emailID, threadID, len(transactions)),
			Date:             parseDateToISO(record.get("date")),
			Account:          record.get("account"),
			Type:             record.get("type"),
			Payee:            record.get("payee"),
			Memo:             record.get("memo"),
			Category:         record.get("category"),
			Subcategory:      record.get("subcategory"),
			Amount:           parseNumeric(record.get("amount")),
			GstHst:           parseNumeric(record.get("gst/hst")),
			Tip:              parseNumeric(record.get("tip")),
			Total:            totalOrAmount(record),
			Source:           record.get("source"),
			EmailID:          emailID,
			ThreadID:         threadID,
			AttachmentFolder: folder,
			AttachmentCount:  attachmentCount,
			Status:           record.get("status"),
			Notes:            record.get("notes"),
			Month:            record.get("month"),
			Attachments:      attached,
		})
	}

	sort.SliceStable(transactions, func(i, j int) bool {
		a, b := transactions[i].Date, transactions[j].Date
		if a == nil {
			return false
		}
		if b == nil {
			return true
		}
		return *a > *b
	})

	return transactions
}

// buildVendorRules projects the rules sheet; rows without a vendor match
// value are dropped.
func buildVendorRules(rows []row) []models.VendorRule {
	rules := make([]models.VendorRule, 0, len(rows))
	for _, record := range rows {
		vendor := record.get("vendor_contains")
		if vendor == "" {
			continue
		}
		rules = append(rules, models.VendorRule{
			VendorContains:    vendor,
			AssignCategory:    record.get("assign_category"),
			AssignSubcategory: record.get("assign_subcategory"),
			Tag:               record.get("tag"),
		})
	}
	return rules
}

// buildBurnTrend buckets qualifying expenses inside the trailing 30-day
// window by calendar day (the UTC date portion of the timestamp) and
// sums absolute values. Days with no expense produce no point.
func buildBurnTrend(transactions []models.FinanceTransaction, now time.Time) []models.BurnTrendPoint {
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).
		AddDate(0, 0, -(burnWindowDays - 1))
	end := time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 999_000_000, now.Location())

	buckets := make(map[string]decimal.Decimal)
	for _, tx := range transactions {
		if tx.Date == nil || !qualifiesAsExpense(tx) {
			continue
		}
		when, err := time.Parse(time.RFC3339, *tx.Date)
		if err != nil {
			continue
		}
		if when.Before(start) || when.After(end) {
			continue
		}
		day := (*tx.Date)[:len("2006-01-02")]
		buckets[day] = buckets[day].Add(decimal.NewFromFloat(math.Abs(effectiveTotal(tx))))
	}

	days := make([]string, 0, len(buckets))
	for day := range buckets {
		days = append(days, day)
	}
	sort.Strings(days)

	points := make([]models.BurnTrendPoint, 0, len(days))
	for _, day := range days {
		iso := day + "T00:00:00.000Z"
		amount, _ := buckets[day].Round(2).Float64()
		points = append(points, models.BurnTrendPoint{
			Date:   day,
			Label:  shortDateLabel(&iso),
			Amount: amount,
		})
	}
	return points
}

// buildRecentExpenses projects the newest qualifying transactions (the
// input list is already newest first) into display records.
func buildRecentExpenses(transactions []models.FinanceTransaction) []models.RecentExpense {
	expenses := make([]models.RecentExpense, 0, recentExpenseLimit)
	for _, tx := range transactions {
		if !qualifiesAsExpense(tx) {
			continue
		}
		expenses = append(expenses, models.RecentExpense{
			Date:     tx.Date,
			Label:    shortDateLabel(tx.Date),
			Payee:    firstNonEmpty(tx.Payee, tx.Memo, tx.Category, "Unknown"),
			Total:    math.Abs(effectiveTotal(tx)),
			Category: firstNonEmpty(tx.Category, tx.Subcategory),
		})
		if len(expenses) == recentExpenseLimit {
			break
		}
	}
	return expenses
}

// qualifiesAsExpense treats unlabeled rows as expenses on purpose: a row
// qualifies when its type does not mention income and it is negative,
// untyped, or explicitly an expense.
func qualifiesAsExpense(tx models.FinanceTransaction) bool {
	typeName := strings.ToLower(tx.Type)
	if strings.Contains(typeName, "income") {
		return false
	}
	return effectiveTotal(tx) < 0 || typeName == "" || strings.Contains(typeName, "expense")
}

// effectiveTotal is the amount a transaction actually moved: total, else
// amount, else zero.
func effectiveTotal(tx models.FinanceTransaction) float64 {
	if tx.Total != nil {
		return *tx.Total
	}
	if tx.Amount != nil {
		return *tx.Amount
	}
	return 0
}

// totalOrAmount parses the total column, reading the amount column
// instead when the total cell is blank.
func totalOrAmount(record row) *float64 {
	if raw := record.get("total"); raw != "" {
		return parseNumeric(raw)
	}
	return parseNumeric(record.get("amount"))
}

// displayID picks a stable display key for a ledger row: email id, else
// thread id, else a positional placeholder. Never empty.
func displayID(emailID, threadID string, position int) string {
	if emailID != "" {
		return emailID
	}
	if threadID != "" {
		return threadID
	}
	return fmt.Sprintf("tx-%d", position)
}

// attachmentKey is the dedupe identity of an attachment within one
// transaction: link when present, else drive path, plus file name.
func attachmentKey(attachment models.FinanceAttachment) string {
	base := attachment.DrivePath
	if attachment.Link != nil {
		base = *attachment.Link
	}
	return base + "-" + attachment.FileName
}
