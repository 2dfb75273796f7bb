package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"userswitch/auth"
	"userswitch/config"
	"userswitch/db"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage accounts",
}

type userAddFlags struct {
	login       string
	email       string
	password    string
	firstName   string
	lastName    string
	displayName string
	role        string
	salesRep    int64
}

var addFlags userAddFlags

var userAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create an account",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		pool, err := db.Open(cmd.Context(), cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("user add: %w", err)
		}
		defer pool.Close()

		user, err := addUser(cmd.Context(), auth.NewService(auth.NewRepository(pool)), addFlags)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created user %d (%s, %s)\n", user.ID, user.Login, user.Role)
		return nil
	},
}

func init() {
	f := userAddCmd.Flags()
	f.StringVar(&addFlags.login, "login", "", "login name")
	f.StringVar(&addFlags.email, "email", "", "email address")
	f.StringVar(&addFlags.password, "password", "", "password, at least 8 characters")
	f.StringVar(&addFlags.firstName, "first-name", "", "first name")
	f.StringVar(&addFlags.lastName, "last-name", "", "last name")
	f.StringVar(&addFlags.displayName, "display-name", "", "display name, defaults to the login")
	f.StringVar(&addFlags.role, "role", string(auth.RoleCustomer), "administrator, sales_rep or customer")
	f.Int64Var(&addFlags.salesRep, "sales-rep", 0, "id of the customer's sales rep")
	_ = userAddCmd.MarkFlagRequired("login")
	_ = userAddCmd.MarkFlagRequired("email")
	_ = userAddCmd.MarkFlagRequired("password")

	userCmd.AddCommand(userAddCmd)
	rootCmd.AddCommand(userCmd)
}

type registrar interface {
	Register(ctx context.Context, req auth.RegisterRequest) (*auth.User, error)
}

func addUser(ctx context.Context, svc registrar, flags userAddFlags) (*auth.User, error) {
	req := auth.RegisterRequest{
		Login:       flags.login,
		Email:       flags.email,
		Password:    flags.password,
		FirstName:   flags.firstName,
		LastName:    flags.lastName,
		DisplayName: flags.displayName,
		Role:        auth.Role(flags.role),
	}
	if flags.salesRep > 0 {
		rep := flags.salesRep
		req.SalesRepID = &rep
	}

	user, err := svc.Register(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("user add: %w", err)
	}
	return user, nil
}
