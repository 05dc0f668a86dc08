package user

import "github.com/go-playground/validator/v10"

// Rule binds one field to one predicate (a validator tag expression) and the
// message reported when it fails.
type Rule struct {
	Field   string
	Tag     string
	Message string
}

// Rules is the declarative validation table for a user record. It is applied
// on every create and on the merged record of every update; violations are
// collected in declaration order so a response lists every broken rule.
var Rules = []Rule{
	{Field: "firstName", Tag: "required", Message: "First name is required"},
	{Field: "firstName", Tag: "omitempty,min=2", Message: "First name must be at least 2 characters"},
	{Field: "lastName", Tag: "required", Message: "Last name is required"},
	{Field: "email", Tag: "required", Message: "Email is required"},
	{Field: "email", Tag: "omitempty,email", Message: "Please enter a valid email address"},
	{Field: "mobile", Tag: "required", Message: "Mobile number is required"},
	{Field: "mobile", Tag: "omitempty,len=10,number", Message: "Mobile number must be exactly 10 digits"},
	{Field: "gender", Tag: "required", Message: "Gender is required"},
	{Field: "gender", Tag: "omitempty,oneof=Male Female Other", Message: "Gender must be one of Male, Female, Other"},
	{Field: "status", Tag: "omitempty,oneof=Active Inactive", Message: "Status must be one of Active, Inactive"},
}

var validate = validator.New()

// Validate evaluates the rule table against normalized fields. It returns a
// *ValidationError listing all violations, or nil when every rule holds.
func Validate(f Fields) error {
	values := map[string]string{
		"firstName": f.FirstName,
		"lastName":  f.LastName,
		"email":     f.Email,
		"mobile":    f.Mobile,
		"gender":    f.Gender,
		"status":    f.Status,
		"location":  f.Location,
	}

	var violations []string

	for _, r := range Rules {
		if err := validate.Var(values[r.Field], r.Tag); err != nil {
			violations = append(violations, r.Message)
		}
	}

	if len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}

	return nil
}
