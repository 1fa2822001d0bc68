package store

import "context"

// Logical document names. Every persistent collection lives in exactly one
// whole-document JSON value under one of these keys.
const (
	DocPatients       = "patients"
	DocQuotaHistory   = "quota-history"
	DocGlobalQuota    = "global-quota"
	DocDeliveries     = "drug-deliveries"
	DocMonthlyReports = "monthly-reports"
	DocNotifications  = "notifications"
)

// Store reads and writes whole JSON documents by logical name.
//
// Load decodes the stored document into out; when the document does not
// exist yet it is created with def and def's content is decoded into out.
// Save serializes doc and overwrites whatever is stored. There is no
// locking across Load/Save: concurrent writers to the same document race
// and the last save wins.
type Store interface {
	Load(ctx context.Context, name string, out interface{}, def interface{}) error
	Save(ctx context.Context, name string, doc interface{}) error
}
