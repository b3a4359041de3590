package dispatch

import "context"

// CommandHandler handles a slash command.
type CommandHandler func(ctx context.Context, payload *CommandPayload) error

// ActionHandler handles a block action.
type ActionHandler func(ctx context.Context, payload *InteractionPayload) error

// ViewHandler handles a view submission or close.
type ViewHandler func(ctx context.Context, payload *InteractionPayload) error

// EventHandler handles a platform event.
type EventHandler func(ctx context.Context, payload *EventPayload) error

// ActionBinding binds a block action key to its handler. BlockID or ActionID
// may be empty to bind broadly; exact bindings always win over broad ones.
type ActionBinding struct {
	BlockID  string
	ActionID string
	Handler  ActionHandler
}

// Bindings is the set of handler registrations one feature module
// contributes at startup.
type Bindings struct {
	// Commands maps normalized command text to its handler.
	Commands map[string]CommandHandler
	// Actions lists block-action bindings in registration order.
	Actions []ActionBinding
	// ViewSubmissions maps a modal callback id to its submit handler.
	ViewSubmissions map[string]ViewHandler
	// ViewClosed maps a modal callback id to its close handler; only modals
	// that opted into close notifications appear here.
	ViewClosed map[string]ViewHandler
	// Events maps an event type string to its handler.
	Events map[string]EventHandler
}
