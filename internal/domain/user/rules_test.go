package user

import (
	"errors"
	"strings"
	"testing"
)

func validFields() Fields {
	return Fields{
		FirstName: "Jane",
		LastName:  "Doe",
		Email:     "jane.doe@example.com",
		Mobile:    "5551234567",
		Gender:    GenderFemale,
		Status:    StatusActive,
		Location:  "Berlin",
	}
}

func TestValidate_OK(t *testing.T) {
	if err := Validate(validFields()); err != nil {
		t.Fatalf("expected valid fields, got %v", err)
	}
}

func TestValidate_Violations(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Fields)
		message string
	}{
		{
			name:    "missing first name",
			mutate:  func(f *Fields) { f.FirstName = "" },
			message: "First name is required",
		},
		{
			name:    "short first name",
			mutate:  func(f *Fields) { f.FirstName = "J" },
			message: "First name must be at least 2 characters",
		},
		{
			name:    "missing last name",
			mutate:  func(f *Fields) { f.LastName = "" },
			message: "Last name is required",
		},
		{
			name:    "missing email",
			mutate:  func(f *Fields) { f.Email = "" },
			message: "Email is required",
		},
		{
			name:    "malformed email",
			mutate:  func(f *Fields) { f.Email = "not-an-email" },
			message: "Please enter a valid email address",
		},
		{
			name:    "missing mobile",
			mutate:  func(f *Fields) { f.Mobile = "" },
			message: "Mobile number is required",
		},
		{
			name:    "short mobile",
			mutate:  func(f *Fields) { f.Mobile = "12345" },
			message: "Mobile number must be exactly 10 digits",
		},
		{
			name:    "non numeric mobile",
			mutate:  func(f *Fields) { f.Mobile = "55512345ab" },
			message: "Mobile number must be exactly 10 digits",
		},
		{
			name:    "missing gender",
			mutate:  func(f *Fields) { f.Gender = "" },
			message: "Gender is required",
		},
		{
			name:    "unknown gender",
			mutate:  func(f *Fields) { f.Gender = "Robot" },
			message: "Gender must be one of Male, Female, Other",
		},
		{
			name:    "unknown status",
			mutate:  func(f *Fields) { f.Status = "Paused" },
			message: "Status must be one of Active, Inactive",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := validFields()
			tc.mutate(&f)

			err := Validate(f)
			if err == nil {
				t.Fatalf("expected a violation")
			}

			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected *ValidationError, got %T", err)
			}

			found := false
			for _, v := range vErr.Violations {
				if v == tc.message {
					found = true
				}
			}

			if !found {
				t.Fatalf("expected %q among %v", tc.message, vErr.Violations)
			}
		})
	}
}

func TestValidate_CollectsAllViolations(t *testing.T) {
	err := Validate(Fields{})
	if err == nil {
		t.Fatalf("expected violations")
	}

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}

	// every required rule fires for an empty record
	want := []string{
		"First name is required",
		"Last name is required",
		"Email is required",
		"Mobile number is required",
		"Gender is required",
	}

	if len(vErr.Violations) != len(want) {
		t.Fatalf("expected %d violations, got %v", len(want), vErr.Violations)
	}

	for i, msg := range want {
		if vErr.Violations[i] != msg {
			t.Fatalf("violation %d: expected %q, got %q", i, msg, vErr.Violations[i])
		}
	}

	joined := strings.Join(want, ", ")
	if vErr.Error() != joined {
		t.Fatalf("expected message %q, got %q", joined, vErr.Error())
	}
}

func TestNormalized(t *testing.T) {
	f := Fields{
		FirstName: "  Jane ",
		LastName:  " Doe",
		Email:     " Jane.DOE@Example.COM ",
		Mobile:    " 5551234567 ",
		Gender:    " Female ",
		Location:  " Berlin ",
	}

	got := f.Normalized()

	if got.FirstName != "Jane" || got.LastName != "Doe" {
		t.Fatalf("names not trimmed: %+v", got)
	}

	if got.Email != "jane.doe@example.com" {
		t.Fatalf("email not lowercased: %q", got.Email)
	}

	if got.Status != StatusActive {
		t.Fatalf("expected default status %q, got %q", StatusActive, got.Status)
	}
}

func TestPatchApplyTo(t *testing.T) {
	base := validFields()

	email := "new@example.com"
	location := ""

	got := Patch{Email: &email, Location: &location}.ApplyTo(base)

	if got.Email != email {
		t.Fatalf("expected patched email %q, got %q", email, got.Email)
	}

	if got.Location != "" {
		t.Fatalf("expected location cleared, got %q", got.Location)
	}

	if got.FirstName != base.FirstName || got.Mobile != base.Mobile {
		t.Fatalf("unpatched fields changed: %+v", got)
	}
}

func TestConflictErrorMessage(t *testing.T) {
	tests := []struct {
		field string
		want  string
	}{
		{field: "email", want: "Email already exists"},
		{field: "mobile", want: "Mobile already exists"},
	}

	for _, tc := range tests {
		err := &ConflictError{Field: tc.field}
		if err.Error() != tc.want {
			t.Fatalf("expected %q, got %q", tc.want, err.Error())
		}
	}
}
