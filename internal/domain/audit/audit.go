package audit

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// EntityType identifies the audited record kind.
type EntityType string

const (
	EntityTypeUser          EntityType = "USER"
	EntityTypeLand          EntityType = "LAND"
	EntityTypeLease         EntityType = "LEASE"
	EntityTypePayoutRequest EntityType = "PAYOUT_REQUEST"
	EntityTypePayment       EntityType = "PAYMENT"
	EntityTypeInvestment    EntityType = "INVESTMENT"
	EntityTypeDispute       EntityType = "DISPUTE"
)

// Action identifies what happened.
type Action string

const (
	ActionCreate         Action = "CREATE"
	ActionApprove        Action = "APPROVE"
	ActionReject         Action = "REJECT"
	ActionCancel         Action = "CANCEL"
	ActionPay            Action = "PAY"
	ActionRelease        Action = "RELEASE"
	ActionRefund         Action = "REFUND"
	ActionRequestRelease Action = "REQUEST_RELEASE"
	ActionUpdateStatus   Action = "UPDATE_STATUS"
	ActionDelete         Action = "DELETE"
	ActionLogin          Action = "LOGIN"
	ActionLogout         Action = "LOGOUT"
)

// AuditEntry is the caller-facing input for one audit record.
type AuditEntry struct {
	EntityType EntityType
	EntityID   string
	Action     Action
	Actor      string
	ActorRoles []string
	Reason     string
}

// AuditLog is the persisted audit record.
type AuditLog struct {
	ID         int64      `json:"id"`
	AuditID    uuid.UUID  `json:"auditId"`
	EntityType EntityType `json:"entityType"`
	EntityID   string     `json:"entityId"`
	Action     Action     `json:"action"`
	Actor      string     `json:"actor"`
	ActorRoles []string   `json:"actorRoles,omitempty"`
	Reason     string     `json:"reason,omitempty"`
	Signature  string     `json:"signature,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// NewAuditLog validates an entry and builds the persisted record.
func NewAuditLog(entry *AuditEntry) (*AuditLog, error) {
	if entry == nil {
		return nil, errors.New("audit entry is nil")
	}
	if entry.EntityType == "" || entry.EntityID == "" || entry.Action == "" {
		return nil, errors.New("entity type, entity id and action are required")
	}
	actor := entry.Actor
	if actor == "" {
		actor = "system"
	}
	return &AuditLog{
		AuditID:    uuid.New(),
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
		Action:     entry.Action,
		Actor:      actor,
		ActorRoles: entry.ActorRoles,
		Reason:     entry.Reason,
		CreatedAt:  time.Now().UTC(),
	}, nil
}

// SignAuditLog computes an HMAC-SHA256 over the log's canonical fields so
// tampering with stored entries is detectable.
func SignAuditLog(l *AuditLog, key []byte) (string, error) {
	if len(key) == 0 {
		return "", errors.New("signing key is empty")
	}
	mac := hmac.New(sha256.New, key)
	canonical := fmt.Sprintf("%s|%s|%s|%s|%s|%s|%d",
		l.AuditID, l.EntityType, l.EntityID, l.Action, l.Actor,
		strings.Join(l.ActorRoles, ","), l.CreatedAt.UnixNano())
	if _, err := mac.Write([]byte(canonical)); err != nil {
		return "", err
	}
	return hex.EncodeToString(mac.Sum(nil)), nil
}

// VerifyAuditLog recomputes the signature and compares in constant time.
func VerifyAuditLog(l *AuditLog, key []byte) (bool, error) {
	expected, err := SignAuditLog(l, key)
	if err != nil {
		return false, err
	}
	return hmac.Equal([]byte(expected), []byte(l.Signature)), nil
}
