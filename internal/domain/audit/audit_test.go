package audit

import "testing"

func TestNewAuditLog(t *testing.T) {
	l, err := NewAuditLog(&AuditEntry{
		EntityType: EntityTypeLease,
		EntityID:   "abc",
		Action:     ActionApprove,
		Actor:      "user:olu",
		ActorRoles: []string{"LANDOWNER"},
	})
	if err != nil {
		t.Fatalf("NewAuditLog: %v", err)
	}
	if l.AuditID.String() == "" || l.CreatedAt.IsZero() {
		t.Fatal("audit id and timestamp must be set")
	}
	if l.Actor != "user:olu" {
		t.Fatalf("actor = %q", l.Actor)
	}
}

func TestNewAuditLogDefaultsActor(t *testing.T) {
	l, err := NewAuditLog(&AuditEntry{EntityType: EntityTypeUser, EntityID: "x", Action: ActionCreate})
	if err != nil {
		t.Fatalf("NewAuditLog: %v", err)
	}
	if l.Actor != "system" {
		t.Fatalf("actor = %q, want system", l.Actor)
	}
}

func TestNewAuditLogRejectsIncomplete(t *testing.T) {
	if _, err := NewAuditLog(nil); err == nil {
		t.Fatal("nil entry must fail")
	}
	if _, err := NewAuditLog(&AuditEntry{EntityID: "x", Action: ActionCreate}); err == nil {
		t.Fatal("missing entity type must fail")
	}
}

func TestSignAndVerify(t *testing.T) {
	key := []byte("0123456789abcdef0123456789abcdef")
	l, err := NewAuditLog(&AuditEntry{
		EntityType: EntityTypePayoutRequest,
		EntityID:   "req-1",
		Action:     ActionPay,
		Actor:      "user:root",
		ActorRoles: []string{"ADMIN"},
	})
	if err != nil {
		t.Fatalf("NewAuditLog: %v", err)
	}
	sig, err := SignAuditLog(l, key)
	if err != nil {
		t.Fatalf("SignAuditLog: %v", err)
	}
	l.Signature = sig

	ok, err := VerifyAuditLog(l, key)
	if err != nil || !ok {
		t.Fatalf("verify = %v, %v, want true", ok, err)
	}

	l.EntityID = "req-2"
	ok, err = VerifyAuditLog(l, key)
	if err != nil {
		t.Fatalf("VerifyAuditLog: %v", err)
	}
	if ok {
		t.Fatal("tampered entry must not verify")
	}
}

func TestSignRequiresKey(t *testing.T) {
	l, _ := NewAuditLog(&AuditEntry{EntityType: EntityTypeUser, EntityID: "x", Action: ActionCreate})
	if _, err := SignAuditLog(l, nil); err == nil {
		t.Fatal("empty key must fail")
	}
}
