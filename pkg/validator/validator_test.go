package validator

import "testing"

type sampleRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Slug     string `json:"slug" validate:"required,slug"`
}

func TestValidateStruct(t *testing.T) {
	valid := sampleRequest{
		Email:    "editor@example.com",
		Password: "long-enough",
		Slug:     "acta-exemplaria",
	}
	if err := ValidateStruct(&valid); err != nil {
		t.Errorf("expected valid struct, got %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*sampleRequest)
	}{
		{"missing email", func(r *sampleRequest) { r.Email = "" }},
		{"malformed email", func(r *sampleRequest) { r.Email = "not-an-email" }},
		{"short password", func(r *sampleRequest) { r.Password = "short" }},
		{"uppercase slug", func(r *sampleRequest) { r.Slug = "Acta-Exemplaria" }},
		{"slug with spaces", func(r *sampleRequest) { r.Slug = "acta exemplaria" }},
		{"slug with trailing dash", func(r *sampleRequest) { r.Slug = "acta-" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)
			if err := ValidateStruct(&req); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestValidateEmail(t *testing.T) {
	if err := ValidateEmail("a@b.co"); err != nil {
		t.Errorf("expected valid email, got %v", err)
	}
	if err := ValidateEmail(""); err == nil {
		t.Error("expected error for empty email")
	}
	if err := ValidateEmail("missing-at.example.com"); err == nil {
		t.Error("expected error for malformed email")
	}
}

func TestValidatePassword(t *testing.T) {
	if err := ValidatePassword("12345678"); err != nil {
		t.Errorf("expected valid password, got %v", err)
	}
	if err := ValidatePassword("1234567"); err == nil {
		t.Error("expected error for short password")
	}
}

func TestSanitize(t *testing.T) {
	if got := SanitizeString("  hello\x00 "); got != "hello" {
		t.Errorf("expected %q, got %q", "hello", got)
	}
	if got := SanitizeEmail(" Editor@Example.COM "); got != "editor@example.com" {
		t.Errorf("expected lowercase email, got %q", got)
	}
}
