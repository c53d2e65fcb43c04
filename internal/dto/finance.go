package dto

import "launchdash/internal/models"

// FinanceReport is the full payload of the finance endpoint, rebuilt
// from the source workbook on every request.
type FinanceReport struct {
	Metrics        models.FinanceMetrics       `json:"metrics"`
	Transactions   []models.FinanceTransaction `json:"transactions"`
	Attachments    []models.FinanceAttachment  `json:"attachments"`
	VendorRules    []models.VendorRule         `json:"vendorRules"`
	BurnTrend      []models.BurnTrendPoint     `json:"burnTrend"`
	RecentExpenses []models.RecentExpense      `json:"recentExpenses"`
}
