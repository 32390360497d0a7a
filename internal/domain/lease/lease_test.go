package lease

import "testing"

func TestCanTransitionTo(t *testing.T) {
	cases := []struct {
		from, to Status
		ok       bool
	}{
		{StatusPending, StatusApproved, true},
		{StatusPending, StatusRejected, true},
		{StatusPending, StatusActive, false},
		{StatusPending, StatusCompleted, false},
		{StatusApproved, StatusActive, true},
		{StatusApproved, StatusRejected, false},
		{StatusActive, StatusCompleted, true},
		{StatusActive, StatusApproved, false},
		{StatusRejected, StatusApproved, false},
		{StatusCompleted, StatusActive, false},
	}
	for _, c := range cases {
		l := &Lease{Status: c.from}
		if got := l.CanTransitionTo(c.to); got != c.ok {
			t.Fatalf("%s -> %s: expected %v, got %v", c.from, c.to, c.ok, got)
		}
	}
}

func TestApproveReject(t *testing.T) {
	l := &Lease{Status: StatusPending}
	if err := l.Approve(); err != nil {
		t.Fatalf("approve pending lease: %v", err)
	}
	if l.Status != StatusApproved {
		t.Fatalf("expected APPROVED, got %s", l.Status)
	}
	if err := l.Reject(); err != ErrInvalidTransition {
		t.Fatalf("expected ErrInvalidTransition rejecting approved lease, got %v", err)
	}
}

func TestRecordPayment(t *testing.T) {
	l := &Lease{Status: StatusActive, TotalPayments: 3, PaymentsMade: 2}
	completed, err := l.RecordPayment()
	if err != nil {
		t.Fatalf("record payment: %v", err)
	}
	if !completed {
		t.Fatal("expected lease completion at final payment")
	}
	if l.Status != StatusCompleted {
		t.Fatalf("expected COMPLETED, got %s", l.Status)
	}
	if l.PaymentsMade != l.TotalPayments {
		t.Fatalf("expected counter %d, got %d", l.TotalPayments, l.PaymentsMade)
	}
}

func TestRecordPaymentMidway(t *testing.T) {
	l := &Lease{Status: StatusActive, TotalPayments: 6, PaymentsMade: 0}
	completed, err := l.RecordPayment()
	if err != nil {
		t.Fatalf("record payment: %v", err)
	}
	if completed {
		t.Fatal("did not expect completion after first of six payments")
	}
	if l.Status != StatusActive {
		t.Fatalf("expected lease to stay ACTIVE, got %s", l.Status)
	}
}

func TestRecordPaymentNeverExceedsTotal(t *testing.T) {
	l := &Lease{Status: StatusCompleted, TotalPayments: 2, PaymentsMade: 2}
	if _, err := l.RecordPayment(); err != ErrAllPaymentsComplete {
		t.Fatalf("expected ErrAllPaymentsComplete, got %v", err)
	}
	if l.PaymentsMade != 2 {
		t.Fatalf("counter must not move past total, got %d", l.PaymentsMade)
	}
}

func TestDeletable(t *testing.T) {
	if !(&Lease{Status: StatusPending}).Deletable() {
		t.Fatal("pending lease should be deletable")
	}
	for _, s := range []Status{StatusApproved, StatusActive, StatusRejected, StatusCompleted} {
		if (&Lease{Status: s}).Deletable() {
			t.Fatalf("%s lease must not be deletable", s)
		}
	}
}
