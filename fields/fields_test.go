package fields

import (
	"context"
	"errors"
	"testing"
)

func TestRegistry_LoadRunsFiltersInOrder(t *testing.T) {
	reg := NewRegistry()
	reg.Define(Field{Name: "customer_sales_rep", Label: "Sales Rep", Choices: []Choice{{Value: "1", Label: "static"}}})

	reg.OnLoad("customer_sales_rep", func(_ context.Context, f Field) (Field, error) {
		f.Choices = []Choice{{Value: "2", Label: "Dana"}}
		return f, nil
	})
	reg.OnLoad("customer_sales_rep", func(_ context.Context, f Field) (Field, error) {
		f.Choices = append(f.Choices, Choice{Value: "3", Label: "Eli"})
		return f, nil
	})
	reg.OnLoad("other_field", func(_ context.Context, f Field) (Field, error) {
		t.Fatal("filter for another field must not run")
		return f, nil
	})

	field, err := reg.Load(context.Background(), "customer_sales_rep")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(field.Choices) != 2 || field.Choices[0].Value != "2" || field.Choices[1].Value != "3" {
		t.Fatalf("unexpected choices: %+v", field.Choices)
	}

	again, err := reg.Load(context.Background(), "customer_sales_rep")
	if err != nil {
		t.Fatalf("second load: %v", err)
	}
	if len(again.Choices) != 2 {
		t.Fatalf("filters must not mutate the stored definition, got %+v", again.Choices)
	}
}

func TestRegistry_LoadErrors(t *testing.T) {
	reg := NewRegistry()
	if _, err := reg.Load(context.Background(), "missing"); !errors.Is(err, ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}

	boom := errors.New("boom")
	reg.Define(Field{Name: "f"})
	reg.OnLoad("f", func(_ context.Context, f Field) (Field, error) { return f, boom })
	if _, err := reg.Load(context.Background(), "f"); !errors.Is(err, boom) {
		t.Fatalf("expected filter error, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	field := Field{Name: "customer_sales_rep", AllowEmpty: true, Choices: []Choice{{Value: "4", Label: "Rep"}}}
	if err := Validate(field, "4"); err != nil {
		t.Fatalf("expected valid choice, got %v", err)
	}
	if err := Validate(field, ""); err != nil {
		t.Fatalf("expected empty value to be allowed, got %v", err)
	}
	if err := Validate(field, "5"); !errors.Is(err, ErrInvalidChoice) {
		t.Fatalf("expected ErrInvalidChoice, got %v", err)
	}

	field.AllowEmpty = false
	if err := Validate(field, ""); !errors.Is(err, ErrInvalidChoice) {
		t.Fatalf("expected empty value to be rejected, got %v", err)
	}
}
