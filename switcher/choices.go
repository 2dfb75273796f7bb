package switcher

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strconv"

	"golang.org/x/sync/errgroup"

	"userswitch/auth"
	"userswitch/fields"
)

// Choices lists everyone who may be assigned as a customer's sales rep: users
// with the sales_rep role plus users holding manage_options. Each user appears
// once; the list is ordered by display name, then ID.
func (f *Flow) Choices(ctx context.Context) ([]fields.Choice, error) {
	var reps, admins []auth.User

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		reps, err = f.directory.ListByRole(gctx, auth.RoleSalesRep)
		if err != nil {
			return fmt.Errorf("switcher: list sales reps: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		admins, err = f.directory.ListByCapability(gctx, auth.CapManageOptions)
		if err != nil {
			return fmt.Errorf("switcher: list administrators: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	seen := make(map[int64]struct{}, len(reps)+len(admins))
	merged := make([]auth.User, 0, len(reps)+len(admins))
	for _, u := range slices.Concat(reps, admins) {
		if _, dup := seen[u.ID]; dup {
			continue
		}
		seen[u.ID] = struct{}{}
		merged = append(merged, u)
	}

	slices.SortFunc(merged, func(a, b auth.User) int {
		return cmp.Or(cmp.Compare(a.DisplayName, b.DisplayName), cmp.Compare(a.ID, b.ID))
	})

	choices := make([]fields.Choice, 0, len(merged))
	for _, u := range merged {
		choices = append(choices, fields.Choice{
			Value: strconv.FormatInt(u.ID, 10),
			Label: u.DisplayName,
		})
	}
	return choices, nil
}

// RegisterFields defines the sales rep field on reg and installs the load
// filter that fills its choices.
func (f *Flow) RegisterFields(reg *fields.Registry) {
	reg.Define(fields.Field{
		Name:       FieldSalesRep,
		Label:      "Sales Rep",
		AllowEmpty: true,
	})
	reg.OnLoad(FieldSalesRep, func(ctx context.Context, field fields.Field) (fields.Field, error) {
		if field.Name != FieldSalesRep {
			return field, nil
		}
		choices, err := f.Choices(ctx)
		if err != nil {
			return fields.Field{}, err
		}
		field.Choices = choices
		return field, nil
	})
}
