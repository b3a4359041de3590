// Package tenant identifies the installed workspace an inbound payload belongs to.
package tenant

import "fmt"

// Identity uniquely identifies an installed workspace.
type Identity struct {
	// EnterpriseID is the enterprise-grid organization id, empty for
	// standalone workspaces.
	EnterpriseID string
	// TeamID is the workspace id.
	TeamID string
	// IsEnterpriseInstall reports whether the app was installed org-wide.
	IsEnterpriseInstall bool
}

// Key returns the storage key for this identity in the form
// {enterpriseId|"none"}-{teamId|"none"}.
func (i Identity) Key() string {
	enterprise := i.EnterpriseID
	if enterprise == "" {
		enterprise = "none"
	}
	team := i.TeamID
	if team == "" {
		team = "none"
	}
	return fmt.Sprintf("%s-%s", enterprise, team)
}

// Source exposes the identity-bearing fields of an inbound payload.
// Explicit ids take precedence over nested enterprise/team objects, which in
// turn take precedence over the user's own team id.
type Source struct {
	// EnterpriseID is the explicit enterprise id field, if present.
	EnterpriseID string
	// TeamID is the explicit team id field, if present.
	TeamID string
	// Enterprise is the nested enterprise object id, if present.
	Enterprise string
	// Team is the nested team object id, if present.
	Team string
	// UserTeamID is the team id attached to the acting user, if present.
	UserTeamID string
	// IsEnterpriseInstall is the install-type flag from the payload.
	IsEnterpriseInstall bool
}

// Derive computes the tenant identity for an inbound payload.
// Recomputed per request; never stored.
func Derive(src Source) Identity {
	enterprise := src.EnterpriseID
	if enterprise == "" {
		enterprise = src.Enterprise
	}

	team := src.TeamID
	if team == "" {
		team = src.Team
	}
	if team == "" {
		team = src.UserTeamID
	}

	return Identity{
		EnterpriseID:        enterprise,
		TeamID:              team,
		IsEnterpriseInstall: src.IsEnterpriseInstall,
	}
}
