// Package policy holds the role/action access table. Decisions are pure
// data lookups so they can be checked anywhere without a database round trip.
package policy

import "hd-tickets/internal/model"

type Action string

const (
	ActionPurchase        Action = "purchase"
	ActionManagePlatforms Action = "manage_platforms"
	ActionViewStatistics  Action = "view_statistics"
	ActionManageAlerts    Action = "manage_alerts"
	ActionScrape          Action = "scrape"
)

var grants = map[model.Role]map[Action]bool{
	model.RoleCustomer: {
		ActionPurchase:     true,
		ActionManageAlerts: true,
	},
	model.RoleAgent: {
		ActionPurchase:       true,
		ActionManageAlerts:   true,
		ActionViewStatistics: true,
	},
	model.RoleAdmin: {
		ActionPurchase:        true,
		ActionManageAlerts:    true,
		ActionViewStatistics:  true,
		ActionManagePlatforms: true,
		ActionScrape:          true,
	},
	model.RoleScraper: {
		// Scraper accounts feed the pipeline and never buy tickets.
		ActionScrape: true,
	},
}

// CanAccess reports whether the role may perform the action.
// Unknown roles and unknown actions are both denied.
func CanAccess(role model.Role, action Action) bool {
	actions, ok := grants[role]
	if !ok {
		return false
	}
	return actions[action]
}
