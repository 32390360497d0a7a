package payment

import "testing"

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		ok       bool
	}{
		{StatusEscrow, StatusReleased, true},
		{StatusEscrow, StatusRefunded, true},
		{StatusReleased, StatusRefunded, false},
		{StatusReleased, StatusEscrow, false},
		{StatusRefunded, StatusReleased, false},
		{StatusRefunded, StatusEscrow, false},
	}
	for _, c := range cases {
		if got := CanTransition(c.from, c.to); got != c.ok {
			t.Fatalf("%s -> %s: expected %v, got %v", c.from, c.to, c.ok, got)
		}
	}
}

func TestCanRequestRelease(t *testing.T) {
	p := &Payment{Status: StatusEscrow}
	if err := p.CanRequestRelease(); err != nil {
		t.Fatalf("escrow payment: %v", err)
	}
	p.ReleaseRequested = true
	if err := p.CanRequestRelease(); err != ErrReleaseAlreadyRequested {
		t.Fatalf("expected ErrReleaseAlreadyRequested, got %v", err)
	}
	released := &Payment{Status: StatusReleased}
	if err := released.CanRequestRelease(); err != ErrInvalidTransition {
		t.Fatalf("expected ErrInvalidTransition on released payment, got %v", err)
	}
	refunded := &Payment{Status: StatusRefunded}
	if err := refunded.CanRequestRelease(); err != ErrInvalidTransition {
		t.Fatalf("expected ErrInvalidTransition on refunded payment, got %v", err)
	}
}

func TestIsTerminal(t *testing.T) {
	if IsTerminal(StatusEscrow) {
		t.Fatal("escrow is not terminal")
	}
	if !IsTerminal(StatusReleased) || !IsTerminal(StatusRefunded) {
		t.Fatal("released and refunded are terminal")
	}
}
