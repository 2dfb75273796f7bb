package switcher

import (
	"context"
	"errors"
	"testing"

	"userswitch/auth"
	"userswitch/fields"
)

func repDirectory() *fakeDirectory {
	return &fakeDirectory{users: []auth.User{
		{ID: 1, DisplayName: "Zoe Admin", Role: auth.RoleAdministrator},
		{ID: 2, DisplayName: "Bob Rep", Role: auth.RoleSalesRep},
		{ID: 3, DisplayName: "Ann Both", Role: auth.RoleSalesRep, Capabilities: []auth.Capability{auth.CapManageOptions}},
		{ID: 4, DisplayName: "Carl Customer", Role: auth.RoleCustomer},
		{ID: 5, DisplayName: "Bob Rep", Role: auth.RoleSalesRep},
	}}
}

func TestFlow_ChoicesUnionWithoutDuplicates(t *testing.T) {
	flow := newTestFlow(repDirectory(), newFakeSessions(), &fakeTokens{})

	choices, err := flow.Choices(context.Background())
	if err != nil {
		t.Fatalf("choices: %v", err)
	}

	want := []fields.Choice{
		{Value: "3", Label: "Ann Both"},
		{Value: "2", Label: "Bob Rep"},
		{Value: "5", Label: "Bob Rep"},
		{Value: "1", Label: "Zoe Admin"},
	}
	if len(choices) != len(want) {
		t.Fatalf("expected %d choices, got %+v", len(want), choices)
	}
	for i := range want {
		if choices[i] != want[i] {
			t.Fatalf("choice %d = %+v, want %+v", i, choices[i], want[i])
		}
	}
}

func TestFlow_ChoicesErrors(t *testing.T) {
	boom := errors.New("boom")

	flow := newTestFlow(&fakeDirectory{roleErr: boom}, newFakeSessions(), &fakeTokens{})
	if _, err := flow.Choices(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected role query error, got %v", err)
	}

	flow = newTestFlow(&fakeDirectory{capErr: boom}, newFakeSessions(), &fakeTokens{})
	if _, err := flow.Choices(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected capability query error, got %v", err)
	}
}

func TestFlow_RegisterFields(t *testing.T) {
	flow := newTestFlow(repDirectory(), newFakeSessions(), &fakeTokens{})
	reg := fields.NewRegistry()
	flow.RegisterFields(reg)

	field, err := reg.Load(context.Background(), FieldSalesRep)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(field.Choices) != 4 {
		t.Fatalf("expected 4 choices, got %+v", field.Choices)
	}
	if err := fields.Validate(field, "2"); err != nil {
		t.Fatalf("sales rep should be a valid choice: %v", err)
	}
	if err := fields.Validate(field, "4"); !errors.Is(err, fields.ErrInvalidChoice) {
		t.Fatalf("customer must not be a valid choice, got %v", err)
	}
}
