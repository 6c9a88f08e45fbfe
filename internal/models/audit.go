package models

import "time"

// AuditAction constants represent mutations worth tracing.
const (
	AuditActionRoomWrite     = "ROOM_WRITE"
	AuditActionPeriodWrite   = "PERIOD_WRITE"
	AuditActionScheduleWrite = "SCHEDULE_WRITE"
	AuditActionPromotion     = "PROMOTION"
	AuditActionReversion     = "REVERSION"
	AuditActionAccountDelete = "ACCOUNT_DELETE"
)

// AuditLog represents an audit trail record. The actor is taken from the
// X-Actor-Id request header since authentication lives outside this service.
type AuditLog struct {
	ID         string    `db:"id" json:"id"`
	ActorID    *string   `db:"actor_id" json:"actor_id,omitempty"`
	Action     string    `db:"action" json:"action"`
	Resource   string    `db:"resource" json:"resource"`
	ResourceID *string   `db:"resource_id" json:"resource_id,omitempty"`
	Detail     []byte    `db:"detail" json:"detail,omitempty"`
	IPAddress  string    `db:"ip_address" json:"ip_address"`
	UserAgent  string    `db:"user_agent" json:"user_agent"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
