package payout

import "testing"

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		ok       bool
	}{
		{StatusPending, StatusApproved, true},
		{StatusPending, StatusRejected, true},
		{StatusPending, StatusCanceled, true},
		{StatusPending, StatusPaid, false},
		{StatusApproved, StatusPaid, true},
		{StatusApproved, StatusRejected, false},
		{StatusApproved, StatusCanceled, false},
		{StatusRejected, StatusApproved, false},
		{StatusPaid, StatusApproved, false},
		{StatusPaid, StatusPaid, false},
		{StatusCanceled, StatusPending, false},
	}
	for _, c := range cases {
		if got := CanTransition(c.from, c.to); got != c.ok {
			t.Fatalf("%s -> %s: expected %v, got %v", c.from, c.to, c.ok, got)
		}
	}
}

func TestIsTerminal(t *testing.T) {
	terminal := []Status{StatusRejected, StatusPaid, StatusCanceled}
	for _, s := range terminal {
		if !IsTerminal(s) {
			t.Fatalf("expected %s to be terminal", s)
		}
	}
	for _, s := range []Status{StatusPending, StatusApproved} {
		if IsTerminal(s) {
			t.Fatalf("expected %s not to be terminal", s)
		}
	}
}

func TestValidateKind(t *testing.T) {
	if err := ValidateKind(KindLeaseRent); err != nil {
		t.Fatalf("lease rent kind: %v", err)
	}
	if err := ValidateKind(KindInvestmentReturn); err != nil {
		t.Fatalf("investment return kind: %v", err)
	}
	if err := ValidateKind(Kind("DIVIDEND")); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}

func TestValidateStatus(t *testing.T) {
	if err := ValidateStatus(StatusPaid); err != nil {
		t.Fatalf("paid status: %v", err)
	}
	if err := ValidateStatus(Status("COMPLETED")); err == nil {
		t.Fatal("expected error for unknown status")
	}
}
