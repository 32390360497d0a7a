package dispute

import "testing"

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		ok       bool
	}{
		{StatusOpen, StatusInReview, true},
		{StatusOpen, StatusResolved, true},
		{StatusOpen, StatusRejected, true},
		{StatusInReview, StatusResolved, true},
		{StatusInReview, StatusRejected, true},
		{StatusInReview, StatusOpen, false},
		{StatusResolved, StatusInReview, false},
		{StatusRejected, StatusOpen, false},
	}
	for _, c := range cases {
		if got := CanTransition(c.from, c.to); got != c.ok {
			t.Fatalf("%s -> %s: expected %v, got %v", c.from, c.to, c.ok, got)
		}
	}
}

func TestValidateCategory(t *testing.T) {
	ok := []Category{CategoryPayment, CategoryLandCondition, CategoryContractBreach, CategoryFraud, CategoryOther}
	for _, c := range ok {
		if err := ValidateCategory(c); err != nil {
			t.Fatalf("expected valid category %q: %v", c, err)
		}
	}
	if err := ValidateCategory(Category("WEATHER")); err == nil {
		t.Fatal("expected invalid category")
	}
}
