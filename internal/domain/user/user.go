package user

import (
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Gender and status enums, stored verbatim in the collection.
const (
	GenderMale   = "Male"
	GenderFemale = "Female"
	GenderOther  = "Other"

	StatusActive   = "Active"
	StatusInactive = "Inactive"
)

// User is one document in the users collection.
type User struct {
	ID           primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	FirstName    string             `json:"firstName" bson:"firstName"`
	LastName     string             `json:"lastName" bson:"lastName"`
	Email        string             `json:"email" bson:"email"`
	Mobile       string             `json:"mobile" bson:"mobile"`
	Gender       string             `json:"gender" bson:"gender"`
	Status       string             `json:"status" bson:"status"`
	Location     string             `json:"location" bson:"location"`
	ProfileImage *string            `json:"profileImage" bson:"profileImage"`
	CreatedAt    time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// Fields carries the mutable attributes of a record, as submitted by a client.
type Fields struct {
	FirstName string
	LastName  string
	Email     string
	Mobile    string
	Gender    string
	Status    string
	Location  string
}

// Normalized trims every text field, lowercases the email and applies the
// Active status default. Runs before validation so rules see canonical values.
func (f Fields) Normalized() Fields {
	f.FirstName = strings.TrimSpace(f.FirstName)
	f.LastName = strings.TrimSpace(f.LastName)
	f.Email = strings.ToLower(strings.TrimSpace(f.Email))
	f.Mobile = strings.TrimSpace(f.Mobile)
	f.Gender = strings.TrimSpace(f.Gender)
	f.Status = strings.TrimSpace(f.Status)
	f.Location = strings.TrimSpace(f.Location)

	if f.Status == "" {
		f.Status = StatusActive
	}

	return f
}

// Patch is a partial update; nil fields are left unchanged.
type Patch struct {
	FirstName *string
	LastName  *string
	Email     *string
	Mobile    *string
	Gender    *string
	Status    *string
	Location  *string
}

// ApplyTo merges the patch onto an existing field set.
func (p Patch) ApplyTo(f Fields) Fields {
	if p.FirstName != nil {
		f.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		f.LastName = *p.LastName
	}
	if p.Email != nil {
		f.Email = *p.Email
	}
	if p.Mobile != nil {
		f.Mobile = *p.Mobile
	}
	if p.Gender != nil {
		f.Gender = *p.Gender
	}
	if p.Status != nil {
		f.Status = *p.Status
	}
	if p.Location != nil {
		f.Location = *p.Location
	}
	return f
}

// Fields extracts the mutable attributes of a stored record, so a patch can
// be merged onto it.
func (u User) Fields() Fields {
	return Fields{
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Mobile:    u.Mobile,
		Gender:    u.Gender,
		Status:    u.Status,
		Location:  u.Location,
	}
}

// New builds an unsaved record from validated fields. The store assigns the
// identifier on insert.
func New(f Fields, imageRef *string) User {
	now := time.Now().UTC()

	return User{
		FirstName:    f.FirstName,
		LastName:     f.LastName,
		Email:        f.Email,
		Mobile:       f.Mobile,
		Gender:       f.Gender,
		Status:       f.Status,
		Location:     f.Location,
		ProfileImage: imageRef,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// SearchQuery selects one page of records. Search matches firstName,
// lastName or email as a case-insensitive substring; empty matches all.
type SearchQuery struct {
	Page     int
	PageSize int
	Search   string
}

var (
	ErrNotFound    = errors.New("user not found")
	ErrEmptyExport = errors.New("no users found to export")
)

// ConflictError reports a violated uniqueness constraint, naming the field.
type ConflictError struct {
	Field string
}

func (e *ConflictError) Error() string {
	f := e.Field
	if f != "" {
		f = strings.ToUpper(f[:1]) + f[1:]
	}
	return f + " already exists"
}

// ValidationError carries every violated field rule, not just the first.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Violations, ", ")
}
