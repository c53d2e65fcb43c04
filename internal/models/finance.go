package models

// FinanceMetrics is the point-in-time aggregate read off the dashboard
// sheet. Labels missing from the source degrade to zero, so every field
// is always present in the response.
type FinanceMetrics struct {
	OpeningCapital     float64 `json:"openingCapital"`
	CurrentSpendToDate float64 `json:"currentSpendToDate"`
	IncomeToDate       float64 `json:"incomeToDate"`
	NetCashOut         float64 `json:"netCashOut"`
	CapitalRemaining   float64 `json:"capitalRemaining"`
	MonthBurn          float64 `json:"monthBurn"`
	Last30Burn         float64 `json:"last30Burn"`
	AvgDailyBurn       float64 `json:"avgDailyBurn"`
	RunwayDays         float64 `json:"runwayDays"`
}

// FinanceAttachment is one receipt or file logged against a transaction.
type FinanceAttachment struct {
	SavedAt      *string  `json:"savedAt"`
	EmailID      string   `json:"emailId"`
	ThreadID     string   `json:"threadId"`
	FileName     string   `json:"fileName"`
	DrivePath    string   `json:"drivePath"`
	Link         *string  `json:"link"`
	VendorGuess  string   `json:"vendorGuess"`
	ParsedAmount *float64 `json:"parsedAmount"`
	Notes        string   `json:"notes"`
}

// FinanceTransaction is one ledger row joined with its attachments.
type FinanceTransaction struct {
	ID               string              `json:"id"`
	Date             *string             `json:"date"`
	Account          string              `json:"account"`
	Type             string              `json:"type"`
	Payee            string              `json:"payee"`
	Memo             string              `json:"memo"`
	Category         string              `json:"category"`
	Subcategory      string              `json:"subcategory"`
	Amount           *float64            `json:"amount"`
	GstHst           *float64            `json:"gstHst"`
	Tip              *float64            `json:"tip"`
	Total            *float64            `json:"total"`
	Source           string              `json:"source"`
	EmailID          string              `json:"emailId"`
	ThreadID         string              `json:"threadId"`
	AttachmentFolder string              `json:"attachmentFolder"`
	AttachmentCount  float64             `json:"attachmentCount"`
	Status           string              `json:"status"`
	Notes            string              `json:"notes"`
	Month            string              `json:"month"`
	Attachments      []FinanceAttachment `json:"attachments"`
}

// VendorRule maps a payee-name substring to a category and tag.
type VendorRule struct {
	VendorContains    string `json:"vendorContains"`
	AssignCategory    string `json:"assignCategory"`
	AssignSubcategory string `json:"assignSubcategory"`
	Tag               string `json:"tag"`
}

// BurnTrendPoint is one day's aggregate expense inside the trailing
// 30-day window. Days with no qualifying expense produce no point.
type BurnTrendPoint struct {
	Date   string  `json:"date"`
	Label  string  `json:"label"`
	Amount float64 `json:"amount"`
}

// RecentExpense is a display projection of a qualifying transaction.
type RecentExpense struct {
	Date     *string `json:"date"`
	Label    string  `json:"label"`
	Payee    string  `json:"payee"`
	Total    float64 `json:"total"`
	Category string  `json:"category"`
}
