package switcher

import (
	"context"
	"fmt"

	"userswitch/auth"
)

// Listing is one page of the actor's customers.
type Listing struct {
	Users       []auth.User
	TotalUsers  int
	TotalPages  int
	CurrentPage int
	PerPage     int
}

// List returns the requested page of users assigned to actor. An anonymous
// actor lists users with no sales rep.
func (f *Flow) List(ctx context.Context, actor Actor, page, perPage int) (Listing, error) {
	var repID int64
	if actor.Authenticated() {
		repID = actor.ID
	}

	users, err := f.directory.ListBySalesRep(ctx, repID)
	if err != nil {
		return Listing{}, fmt.Errorf("switcher: list customers: %w", err)
	}

	if perPage <= 0 {
		perPage = f.cfg.PageSize
	}
	return Paginate(users, page, perPage), nil
}

// Paginate slices users down to one page. The page is clamped to
// [1, total pages]; an empty set yields page 1 of 0. A non-positive perPage
// falls back to DefaultPageSize.
func Paginate(users []auth.User, page, perPage int) Listing {
	if perPage <= 0 {
		perPage = DefaultPageSize
	}

	total := len(users)
	totalPages := total / perPage
	if total%perPage != 0 {
		totalPages++
	}

	page = max(1, min(page, totalPages))
	offset := (page - 1) * perPage
	end := offset + min(perPage, total-offset)

	var slice []auth.User
	if offset < end {
		slice = users[offset:end]
	}

	return Listing{
		Users:       slice,
		TotalUsers:  total,
		TotalPages:  totalPages,
		CurrentPage: page,
		PerPage:     perPage,
	}
}
