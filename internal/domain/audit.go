package domain

import "time"

// AuditAction enumerates recorded operator actions.
type AuditAction string

const (
	AuditActionCreate  AuditAction = "CREATE"
	AuditActionUpdate  AuditAction = "UPDATE"
	AuditActionArchive AuditAction = "ARCHIVE"
	AuditActionRestore AuditAction = "RESTORE"
	AuditActionExport  AuditAction = "EXPORT"
)

// AuditEntry is one row of the tamper-evident change trail. Entries are
// written explicitly by the service layer as part of each mutation, never as
// an implicit side effect of persistence.
type AuditEntry struct {
	ID       string
	UserID   *string
	Action   AuditAction
	Domain   NetworkDomain
	ObjectID string
	Changes  map[string]any
	At       time.Time
}
