package migrations

import (
	"slices"
	"testing"
)

func TestNamesAreOrdered(t *testing.T) {
	names := Names()
	want := []string{"0001_users.sql", "0002_sessions.sql"}
	if !slices.Equal(names, want) {
		t.Fatalf("expected %v, got %v", want, names)
	}
}
