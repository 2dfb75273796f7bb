// Package i18n holds the translatable copy of the account area.
package i18n

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// AccountCopy holds translatable copy for the account area pages.
type AccountCopy struct {
	Dashboard        string
	Users            string
	Logout           string
	FullName         string
	UserName         string
	SwitchToUser     string
	ViewInDashboard  string
	NoCustomers      string
	Previous         string
	Next             string
	LoginHeading     string
	LoginUsername    string
	LoginPassword    string
	LoginSubmit      string
	LoginFailed      string
	Welcome          string
	PageTitleAccount string
}

var supported = []language.Tag{
	language.AmericanEnglish,
	language.Spanish,
}

var matcher = language.NewMatcher(supported)

func init() {
	es := language.Spanish
	for key, value := range map[string]string{
		"menu.dashboard":       "Escritorio",
		"menu.users":           "Usuarios",
		"menu.logout":          "Cerrar sesión",
		"users.full_name":      "Nombre completo",
		"users.user_name":      "Nombre de usuario",
		"users.switch":         "Cambiar a usuario",
		"users.view_dashboard": "Ver en el escritorio",
		"users.none":           "No se encontraron clientes",
		"pagination.previous":  "« Anterior",
		"pagination.next":      "Siguiente »",
		"login.heading":        "Acceder",
		"login.username":       "Nombre de usuario",
		"login.password":       "Contraseña",
		"login.submit":         "Acceder",
		"login.failed":         "Nombre de usuario o contraseña incorrectos.",
		"dashboard.welcome":    "Hola",
		"title.account":        "Mi cuenta",
	} {
		_ = message.SetString(es, key, value)
	}
}

// Match picks the supported language closest to an Accept-Language header.
func Match(acceptLanguage string) language.Tag {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return language.AmericanEnglish
	}
	_, index, _ := matcher.Match(tags...)
	return supported[index]
}

// Account returns localized account copy for the provided language tag.
func Account(tag language.Tag) AccountCopy {
	loc := message.NewPrinter(tag)

	return AccountCopy{
		Dashboard:        localizeWithFallback(loc, "menu.dashboard", "Dashboard"),
		Users:            localizeWithFallback(loc, "menu.users", "Users"),
		Logout:           localizeWithFallback(loc, "menu.logout", "Log out"),
		FullName:         localizeWithFallback(loc, "users.full_name", "Full Name"),
		UserName:         localizeWithFallback(loc, "users.user_name", "User Name"),
		SwitchToUser:     localizeWithFallback(loc, "users.switch", "Switch to User"),
		ViewInDashboard:  localizeWithFallback(loc, "users.view_dashboard", "View in Dashboard"),
		NoCustomers:      localizeWithFallback(loc, "users.none", "No Customers found"),
		Previous:         localizeWithFallback(loc, "pagination.previous", "« Previous"),
		Next:             localizeWithFallback(loc, "pagination.next", "Next »"),
		LoginHeading:     localizeWithFallback(loc, "login.heading", "Login"),
		LoginUsername:    localizeWithFallback(loc, "login.username", "Username"),
		LoginPassword:    localizeWithFallback(loc, "login.password", "Password"),
		LoginSubmit:      localizeWithFallback(loc, "login.submit", "Log in"),
		LoginFailed:      localizeWithFallback(loc, "login.failed", "Unknown username or incorrect password."),
		Welcome:          localizeWithFallback(loc, "dashboard.welcome", "Hello"),
		PageTitleAccount: localizeWithFallback(loc, "title.account", "My account"),
	}
}

func localizeWithFallback(loc *message.Printer, key string, fallback string, args ...any) string {
	if loc != nil {
		value := strings.TrimSpace(loc.Sprintf(key, args...))
		if value != "" && value != key {
			return value
		}
	}
	if len(args) > 0 {
		return fmt.Sprintf(fallback, args...)
	}
	return fallback
}
