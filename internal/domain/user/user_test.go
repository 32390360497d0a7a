package user

import "testing"

func TestValidateUsername(t *testing.T) {
	valid := []string{"tunde", "olu.farms", "Ada_42", "jo-anne"}
	for _, u := range valid {
		if err := ValidateUsername(u); err != nil {
			t.Errorf("ValidateUsername(%q) = %v, want nil", u, err)
		}
	}
	invalid := []string{"", "ab", "1tunde", "tunde!", "ends-with-dot.", "x"}
	for _, u := range invalid {
		if err := ValidateUsername(u); err == nil {
			t.Errorf("ValidateUsername(%q) = nil, want error", u)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	if err := ValidatePassword("Str0ng!Passw0rd", "tunde"); err != nil {
		t.Fatalf("strong password rejected: %v", err)
	}

	cases := map[string]string{
		"too short":         "Ab1!",
		"no upper":          "weak!passw0rd",
		"no digit":          "Weak!Password",
		"no special":        "Weak1Password",
		"contains username": "Tunde!Passw0rd",
	}
	for name, pw := range cases {
		if err := ValidatePassword(pw, "tunde"); err == nil {
			t.Errorf("%s: ValidatePassword(%q) = nil, want error", name, pw)
		}
	}
}

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("Str0ng!Passw0rd")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !VerifyPassword(hash, "Str0ng!Passw0rd") {
		t.Fatal("correct password must verify")
	}
	if VerifyPassword(hash, "wrong password") {
		t.Fatal("wrong password must not verify")
	}
	if VerifyPassword("", "Str0ng!Passw0rd") {
		t.Fatal("empty hash must not verify")
	}
}

func TestRegistrableRole(t *testing.T) {
	for _, r := range []Role{RoleLandowner, RoleFarmer, RoleInvestor} {
		if err := RegistrableRole(r); err != nil {
			t.Errorf("RegistrableRole(%s) = %v, want nil", r, err)
		}
	}
	if err := RegistrableRole(RoleAdmin); err == nil {
		t.Error("admin self-registration must be rejected")
	}
	if err := RegistrableRole(Role("SUPERUSER")); err == nil {
		t.Error("unknown role must be rejected")
	}
}
