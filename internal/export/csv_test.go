package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/bnvdash/user-directory/internal/domain/user"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestWriteUsersCSV(t *testing.T) {
	created := time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)

	u := user.User{
		ID:        primitive.NewObjectID(),
		FirstName: "Jane",
		LastName:  "Doe",
		Email:     "jane@example.com",
		Mobile:    "5551234567",
		Gender:    user.GenderFemale,
		Status:    user.StatusActive,
		Location:  "Berlin, Mitte",
		CreatedAt: created,
		UpdatedAt: created.Add(time.Hour),
	}

	var buf bytes.Buffer
	if err := WriteUsersCSV(&buf, []user.User{u}); err != nil {
		t.Fatalf("WriteUsersCSV: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("parse output: %v", err)
	}

	if len(rows) != 2 {
		t.Fatalf("expected header plus one row, got %d rows", len(rows))
	}

	for i, col := range Columns {
		if rows[0][i] != col {
			t.Fatalf("header %d: expected %q, got %q", i, col, rows[0][i])
		}
	}

	row := rows[1]

	if row[0] != u.ID.Hex() {
		t.Fatalf("expected id %q, got %q", u.ID.Hex(), row[0])
	}

	// the comma in the location must survive as one cell
	if row[7] != "Berlin, Mitte" {
		t.Fatalf("expected quoted location, got %q", row[7])
	}

	if row[8] != "2024-03-01T10:30:00Z" {
		t.Fatalf("expected RFC3339 createdAt, got %q", row[8])
	}

	if row[9] != "2024-03-01T11:30:00Z" {
		t.Fatalf("expected RFC3339 updatedAt, got %q", row[9])
	}
}

func TestWriteUsersCSV_NoRows(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteUsersCSV(&buf, nil); err != nil {
		t.Fatalf("WriteUsersCSV: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("parse output: %v", err)
	}

	if len(rows) != 1 {
		t.Fatalf("expected just the header, got %d rows", len(rows))
	}
}
