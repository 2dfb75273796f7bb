package web

import (
	"userswitch/i18n"
	"userswitch/switcher"
)

// MenuItem is one tab of the account navigation.
type MenuItem struct {
	Key   string
	Label string
	Href  string
}

const (
	menuDashboard = "dashboard"
	menuLogout    = "customer-logout"
)

// menuItems returns the account navigation for actor. The Users tab is only
// appended when the actor passes the switch gate.
func (s *Server) menuItems(actor switcher.Actor, msgs i18n.AccountCopy) []MenuItem {
	base := s.flow.AccountURL()
	items := []MenuItem{
		{Key: menuDashboard, Label: msgs.Dashboard, Href: base + "/"},
		{Key: menuLogout, Label: msgs.Logout, Href: base + "/logout"},
	}
	if s.flow.CanSwitch(actor) {
		items = append(items, MenuItem{Key: switcher.Endpoint, Label: msgs.Users, Href: s.flow.FormAction()})
	}
	return items
}
