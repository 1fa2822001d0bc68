package quota

import "time"

const (
	// DefaultMonthlyQuota is the total every drug resets to at each
	// calendar-month rollover.
	DefaultMonthlyQuota = 10000

	// DefaultTopUpExpiryDays applies when a top-up request carries no
	// explicit expiry.
	DefaultTopUpExpiryDays = 30

	// DefaultWarningThreshold is the remaining total below which a
	// low-quota warning fires, unless QUOTA_WARNING_THRESHOLD overrides it.
	DefaultWarningThreshold = 1000
)

// GlobalQuota maps drug name to its clinic-wide quota state. This is the
// shape of the global-quota document.
type GlobalQuota map[string]*DrugQuota

// DrugQuota is the per-drug ledger entry.
type DrugQuota struct {
	TotalQuota        int                `json:"totalQuota"`
	LastUpdated       time.Time          `json:"lastUpdated"`
	WarningSent       bool               `json:"warningSent"`
	MonthlyQuotas     []MonthlyQuota     `json:"monthlyQuotas"`
	ManualAdjustments []ManualAdjustment `json:"manualAdjustments"`
}

// MonthlyQuota is one top-up with its own expiry. Top-ups add to the total
// immediately; expired entries are pruned at the monthly reset.
type MonthlyQuota struct {
	Month      string    `json:"month"`
	Amount     int       `json:"amount"`
	ExpiryDays int       `json:"expiryDays"`
	AddedAt    time.Time `json:"addedAt"`
	ExpiresAt  time.Time `json:"expiresAt"`
}

// ManualAdjustment records one operator change to a drug's total,
// newest first.
type ManualAdjustment struct {
	Date          time.Time `json:"date"`
	Action        string    `json:"action"`
	Amount        int       `json:"amount"`
	Description   string    `json:"description"`
	PreviousQuota int       `json:"previousQuota"`
	NewQuota      int       `json:"newQuota"`
}

// AdjustRequest is the payload of PUT /api/global-quota.
type AdjustRequest struct {
	Drug        string `json:"drug"`
	Action      string `json:"action"` // add | subtract | set
	Amount      int    `json:"amount"`
	Description string `json:"description"`
}

// TopUpRequest is the payload of POST /api/global-quota/monthly.
type TopUpRequest struct {
	Drug       string `json:"drug"`
	Month      string `json:"month"`
	Amount     int    `json:"amount"`
	ExpiryDays int    `json:"expiryDays"`
}
