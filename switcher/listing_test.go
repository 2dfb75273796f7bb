package switcher

import (
	"context"
	"errors"
	"math"
	"net/url"
	"strconv"
	"testing"

	"userswitch/auth"
)

func TestPaginate_TwentyFiveCustomers(t *testing.T) {
	users := customersOf(7, 25)

	first := Paginate(users, 1, 10)
	if len(first.Users) != 10 || first.TotalPages != 3 || first.CurrentPage != 1 || first.TotalUsers != 25 {
		t.Fatalf("page 1: got %d users, %d pages, current %d", len(first.Users), first.TotalPages, first.CurrentPage)
	}
	if first.Users[0].ID != 101 {
		t.Fatalf("page 1 should start at the first user, got %d", first.Users[0].ID)
	}

	third := Paginate(users, 3, 10)
	if len(third.Users) != 5 || third.CurrentPage != 3 {
		t.Fatalf("page 3: got %d users, current %d", len(third.Users), third.CurrentPage)
	}
	if third.Users[0].ID != 121 || third.Users[4].ID != 125 {
		t.Fatalf("page 3 holds users %d..%d", third.Users[0].ID, third.Users[4].ID)
	}

	fifth := Paginate(users, 5, 10)
	if fifth.CurrentPage != 3 || len(fifth.Users) != 5 || fifth.Users[0].ID != third.Users[0].ID {
		t.Fatalf("page 5 should clamp to page 3, got current %d with %d users", fifth.CurrentPage, len(fifth.Users))
	}
}

func TestPaginate_CountsForEveryPage(t *testing.T) {
	for n := 0; n <= 23; n++ {
		for p := 1; p <= 7; p++ {
			users := customersOf(7, n)
			wantPages := (n + p - 1) / p

			for page := 1; page <= max(wantPages, 1); page++ {
				got := Paginate(users, page, p)
				if got.TotalPages != wantPages {
					t.Fatalf("n=%d p=%d: total pages %d, want %d", n, p, got.TotalPages, wantPages)
				}
				want := min(p, n-(page-1)*p)
				if n == 0 {
					want = 0
				}
				if len(got.Users) != want {
					t.Fatalf("n=%d p=%d page=%d: got %d users, want %d", n, p, page, len(got.Users), want)
				}
				if n > 0 && len(got.Users) == 0 {
					t.Fatalf("n=%d p=%d page=%d: empty page for non-empty set", n, p, page)
				}
			}
		}
	}
}

func TestPaginate_Clamping(t *testing.T) {
	users := customersOf(7, 12)

	for _, requested := range []int{0, -4} {
		got := Paginate(users, requested, 5)
		want := Paginate(users, 1, 5)
		if got.CurrentPage != 1 || got.Users[0].ID != want.Users[0].ID {
			t.Fatalf("page %d should clamp to page 1, got %d", requested, got.CurrentPage)
		}
	}

	got := Paginate(users, 99, 5)
	if got.CurrentPage != 3 || len(got.Users) != 2 {
		t.Fatalf("page 99 should clamp to the last page, got current %d with %d users", got.CurrentPage, len(got.Users))
	}
}

func TestPaginate_HugePageSize(t *testing.T) {
	users := customersOf(7, 25)
	query := url.Values{
		ParamPage:    {strconv.FormatInt(math.MaxInt64, 10)},
		ParamPerPage: {"9223372036854775807"},
	}
	req := ParseRequest(query, nil)
	if req.PerPage != math.MaxInt {
		t.Fatalf("per page should saturate, got %d", req.PerPage)
	}

	got := Paginate(users, req.Page, req.PerPage)
	if got.TotalPages != 1 || got.CurrentPage != 1 || len(got.Users) != 25 {
		t.Fatalf("expected all 25 users on a single page, got %d users over %d pages at page %d", len(got.Users), got.TotalPages, got.CurrentPage)
	}

	empty := Paginate(nil, 1, math.MaxInt)
	if empty.TotalPages != 0 || len(empty.Users) != 0 {
		t.Fatalf("unexpected empty listing: %+v", empty)
	}
}

func TestPaginate_EmptyAndDefaults(t *testing.T) {
	empty := Paginate(nil, 4, 10)
	if empty.TotalPages != 0 || empty.CurrentPage != 1 || len(empty.Users) != 0 || empty.TotalUsers != 0 {
		t.Fatalf("unexpected empty listing: %+v", empty)
	}

	got := Paginate(customersOf(7, 15), 1, 0)
	if got.PerPage != DefaultPageSize || len(got.Users) != DefaultPageSize {
		t.Fatalf("expected default page size, got %d users with per page %d", len(got.Users), got.PerPage)
	}
}

func TestFlow_ListFiltersByActor(t *testing.T) {
	unassigned := auth.User{ID: 300, Login: "orphan", Role: auth.RoleCustomer}
	users := append(customersOf(7, 3), customersOf(8, 2)...)
	users = append(users, unassigned)
	dir := &fakeDirectory{users: users}
	flow := newTestFlow(dir, newFakeSessions(), &fakeTokens{})
	ctx := context.Background()

	listing, err := flow.List(ctx, repActor, 1, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if dir.lastRep != repActor.ID {
		t.Fatalf("expected query for rep %d, got %d", repActor.ID, dir.lastRep)
	}
	if listing.TotalUsers != 3 || listing.PerPage != DefaultPageSize {
		t.Fatalf("expected 3 users with default page size, got %+v", listing)
	}

	anon, err := flow.List(ctx, Actor{}, 1, 10)
	if err != nil {
		t.Fatalf("anonymous list: %v", err)
	}
	if anon.TotalUsers != 1 || anon.Users[0].ID != unassigned.ID {
		t.Fatalf("anonymous actor should list unassigned users, got %+v", anon.Users)
	}
}

func TestFlow_ListConfiguredPageSize(t *testing.T) {
	dir := &fakeDirectory{users: customersOf(7, 9)}
	flow := NewFlow(dir, newFakeSessions(), &fakeTokens{}, Config{PageSize: 4}, discardLogger())

	listing, err := flow.List(context.Background(), repActor, 3, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if listing.TotalPages != 3 || len(listing.Users) != 1 {
		t.Fatalf("expected last page of 3 with 1 user, got %+v", listing)
	}
}

func TestFlow_ListError(t *testing.T) {
	boom := errors.New("boom")
	flow := newTestFlow(&fakeDirectory{listErr: boom}, newFakeSessions(), &fakeTokens{})
	if _, err := flow.List(context.Background(), repActor, 1, 10); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped directory error, got %v", err)
	}
}
