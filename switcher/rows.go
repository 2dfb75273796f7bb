package switcher

import (
	"fmt"
	"strconv"
	"strings"

	"userswitch/auth"
)

// Row is the data of one switch form.
type Row struct {
	UserID      int64
	FirstName   string
	LastName    string
	DisplayName string
	Nonce       string
	// AdminURL links to the edit screen of the user. It is only set for
	// actors holding manage_options and grants nothing by itself.
	AdminURL string
}

// FullName joins first and last name the way the listing shows them.
func (r Row) FullName() string {
	return r.FirstName + " " + r.LastName
}

// Rows builds one switch form per user of listing, each with a token scoped
// to its target.
func (f *Flow) Rows(actor Actor, listing Listing) ([]Row, error) {
	showAdmin := actor.Can(auth.CapManageOptions)

	rows := make([]Row, 0, len(listing.Users))
	for _, user := range listing.Users {
		token, err := f.tokens.Issue(actor.ID, actor.SessionID, Purpose(user.ID))
		if err != nil {
			return nil, fmt.Errorf("switcher: issue token for user %d: %w", user.ID, err)
		}

		row := Row{
			UserID:      user.ID,
			FirstName:   user.FirstName,
			LastName:    user.LastName,
			DisplayName: user.DisplayName,
			Nonce:       token,
		}
		if showAdmin {
			row.AdminURL = f.adminEditURL(user.ID)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (f *Flow) adminEditURL(userID int64) string {
	return strings.TrimRight(f.cfg.AdminURL, "/") + "/user-edit.php?user_id=" + strconv.FormatInt(userID, 10)
}
