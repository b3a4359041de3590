// Package dispatch routes decoded platform payloads to registered handlers.
package dispatch

import (
	"encoding/json"
	"fmt"

	"github.com/reviewflow/reviewbot/internal/platform"
	"github.com/reviewflow/reviewbot/internal/tenant"
)

// CommandPayload is a decoded slash command invocation.
type CommandPayload struct {
	Command             string
	Text                string
	UserID              string
	ChannelID           string
	TriggerID           string
	TeamID              string
	EnterpriseID        string
	IsEnterpriseInstall bool
	ResponseURL         string
}

// Tenant derives the tenant identity for the command.
func (p *CommandPayload) Tenant() tenant.Identity {
	return tenant.Derive(tenant.Source{
		EnterpriseID:        p.EnterpriseID,
		TeamID:              p.TeamID,
		IsEnterpriseInstall: p.IsEnterpriseInstall,
	})
}

// InteractionType discriminates the interaction payload variants.
type InteractionType string

// The interaction payload variants the boundary can deliver.
const (
	InteractionBlockActions   InteractionType = "block_actions"
	InteractionViewSubmission InteractionType = "view_submission"
	InteractionViewClosed     InteractionType = "view_closed"
)

// UserRef identifies the acting user inside an interaction payload.
type UserRef struct {
	ID     string `json:"id"`
	TeamID string `json:"team_id"`
}

// IDRef is a nested object carrying only an id.
type IDRef struct {
	ID string `json:"id"`
}

// Action is one block action inside a block_actions payload.
type Action struct {
	BlockID         string       `json:"block_id"`
	ActionID        string       `json:"action_id"`
	Value           string       `json:"value"`
	SelectedOptions []OptionItem `json:"selected_options"`
}

// OptionItem is a selected option of a checkbox or select element.
type OptionItem struct {
	Value string `json:"value"`
}

// ViewStateValue is one element's submitted value inside a view state.
type ViewStateValue struct {
	Value           string       `json:"value"`
	SelectedOptions []OptionItem `json:"selected_options"`
}

// ViewState holds the submitted values of a modal, keyed by block then action.
type ViewState struct {
	Values map[string]map[string]ViewStateValue `json:"values"`
}

// ViewRef is the view object attached to modal interactions.
type ViewRef struct {
	ID              string    `json:"id"`
	CallbackID      string    `json:"callback_id"`
	PrivateMetadata string    `json:"private_metadata"`
	State           ViewState `json:"state"`
}

// MessageRef is the message a block action was triggered on. Blocks carry
// the message's current rendering so handlers can rewrite it in place.
type MessageRef struct {
	Timestamp string                    `json:"ts"`
	Text      string                    `json:"text"`
	Blocks    []platform.Block          `json:"blocks"`
	Metadata  *platform.MessageMetadata `json:"metadata"`
}

// InteractionPayload is the decoded body of a block action, view submission
// or view close.
type InteractionPayload struct {
	Type                InteractionType `json:"type"`
	TriggerID           string          `json:"trigger_id"`
	User                UserRef         `json:"user"`
	Team                IDRef           `json:"team"`
	Enterprise          IDRef           `json:"enterprise"`
	IsEnterpriseInstall bool            `json:"is_enterprise_install"`
	Channel             IDRef           `json:"channel"`
	View                *ViewRef        `json:"view"`
	Message             *MessageRef     `json:"message"`
	Actions             []Action        `json:"actions"`
}

// Tenant derives the tenant identity for the interaction.
func (p *InteractionPayload) Tenant() tenant.Identity {
	return tenant.Derive(tenant.Source{
		Enterprise:          p.Enterprise.ID,
		Team:                p.Team.ID,
		UserTeamID:          p.User.TeamID,
		IsEnterpriseInstall: p.IsEnterpriseInstall,
	})
}

// DecodeInteraction parses the interaction JSON and validates its
// discriminator exhaustively.
func DecodeInteraction(data []byte) (*InteractionPayload, error) {
	var payload InteractionPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode interaction payload: %w", err)
	}

	switch payload.Type {
	case InteractionBlockActions, InteractionViewSubmission, InteractionViewClosed:
		return &payload, nil
	default:
		return nil, fmt.Errorf("unknown interaction type: %q", payload.Type)
	}
}

// InnerEvent is the platform event wrapped inside an event callback.
type InnerEvent struct {
	Type    string `json:"type"`
	Subtype string `json:"subtype"`
	BotID   string `json:"bot_id"`
	User    string `json:"user"`
	Channel string `json:"channel"`
	Tab     string `json:"tab"`
	TS      string `json:"ts"`
}

// EventPayload is a decoded event callback envelope.
type EventPayload struct {
	Type                string     `json:"type"`
	Challenge           string     `json:"challenge"`
	TeamID              string     `json:"team_id"`
	EnterpriseID        string     `json:"enterprise_id"`
	IsEnterpriseInstall bool       `json:"is_enterprise_install"`
	Event               InnerEvent `json:"event"`
}

// Tenant derives the tenant identity for the event.
func (p *EventPayload) Tenant() tenant.Identity {
	return tenant.Derive(tenant.Source{
		EnterpriseID:        p.EnterpriseID,
		TeamID:              p.TeamID,
		IsEnterpriseInstall: p.IsEnterpriseInstall,
	})
}
