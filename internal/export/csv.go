package export

import (
	"encoding/csv"
	"io"
	"time"

	"github.com/bnvdash/user-directory/internal/domain/user"
)

// Columns is the fixed export order; rows are written exactly in this shape.
var Columns = []string{
	"ID",
	"First Name",
	"Last Name",
	"Email",
	"Mobile",
	"Gender",
	"Status",
	"Location",
	"Created At",
	"Updated At",
}

// WriteUsersCSV renders the records as CSV in the order given (callers pass
// them newest-first), one row per record plus a header row.
func WriteUsersCSV(w io.Writer, users []user.User) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Columns); err != nil {
		return err
	}

	for _, u := range users {
		row := []string{
			u.ID.Hex(),
			u.FirstName,
			u.LastName,
			u.Email,
			u.Mobile,
			u.Gender,
			u.Status,
			u.Location,
			u.CreatedAt.UTC().Format(time.RFC3339),
			u.UpdatedAt.UTC().Format(time.RFC3339),
		}

		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()

	return cw.Error()
}
