package web

import (
	"github.com/a-h/templ"

	"userswitch/i18n"
)

type pageView struct {
	Title  string
	Menu   []MenuItem
	Active string
	Copy   i18n.AccountCopy
	Body   templ.Component
}

func navClass(key, active string) string {
	class := "account-navigation-link account-navigation-link--" + key
	if key == active {
		class += " is-active"
	}
	return class
}
