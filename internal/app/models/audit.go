package models

import "time"

// AuditLogEntry is append-only; nothing updates it once stored.
type AuditLogEntry struct {
	ID           string    `bson:"_id"`
	Action       string    `bson:"action"`
	ActorUserID  string    `bson:"actorUserId"`
	EntityType   string    `bson:"entityType"`
	EntityID     string    `bson:"entityId"`
	HospitalID   string    `bson:"hospitalId,omitempty"`
	Success      bool      `bson:"success"`
	Outcome      string    `bson:"outcome"`
	LatencyMs    int64     `bson:"latencyMs"`
	ErrorMessage string    `bson:"errorMessage,omitempty"`
	RequestID    string    `bson:"requestId,omitempty"`
	Timestamp    time.Time `bson:"timestamp"`
}
