package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// ErrUnhandled indicates that no registered handler matches the payload.
var ErrUnhandled = errors.New("no handler registered")

// environment-specific command prefixes stripped before lookup, so
// non-production deployments reuse production command names.
var commandPrefixes = []string{"/dev_", "/stage_"}

// Router matches inbound payloads to exactly one handler. Lookup tables are
// built once at startup and immutable afterwards; the router performs no
// retries and no side effects beyond invoking the resolved handler.
type Router struct {
	commands        map[string]CommandHandler
	actions         []ActionBinding
	viewSubmissions map[string]ViewHandler
	viewClosed      map[string]ViewHandler
	events          map[string]EventHandler
	logger          *zap.SugaredLogger
}

// NewRouter merges the bindings contributed by feature modules into one
// immutable router. On a duplicate key the first registration wins and the
// conflict is logged.
func NewRouter(logger *zap.SugaredLogger, modules ...Bindings) *Router {
	r := &Router{
		commands:        map[string]CommandHandler{},
		viewSubmissions: map[string]ViewHandler{},
		viewClosed:      map[string]ViewHandler{},
		events:          map[string]EventHandler{},
		logger:          logger,
	}

	for _, module := range modules {
		for command, handler := range module.Commands {
			if _, exists := r.commands[command]; exists {
				logger.Warnw("duplicate command binding ignored", "command", command)
				continue
			}
			r.commands[command] = handler
		}
		r.actions = append(r.actions, module.Actions...)
		for callbackID, handler := range module.ViewSubmissions {
			if _, exists := r.viewSubmissions[callbackID]; exists {
				logger.Warnw("duplicate view submission binding ignored", "callback_id", callbackID)
				continue
			}
			r.viewSubmissions[callbackID] = handler
		}
		for callbackID, handler := range module.ViewClosed {
			if _, exists := r.viewClosed[callbackID]; exists {
				logger.Warnw("duplicate view closed binding ignored", "callback_id", callbackID)
				continue
			}
			r.viewClosed[callbackID] = handler
		}
		for eventType, handler := range module.Events {
			if _, exists := r.events[eventType]; exists {
				logger.Warnw("duplicate event binding ignored", "event_type", eventType)
				continue
			}
			r.events[eventType] = handler
		}
	}

	return r
}

// NormalizeCommand strips environment-specific prefixes from a command.
func NormalizeCommand(command string) string {
	for _, prefix := range commandPrefixes {
		if strings.HasPrefix(command, prefix) {
			return "/" + strings.TrimPrefix(command, prefix)
		}
	}
	return command
}

// HandleCommand resolves and invokes the handler for a slash command.
func (r *Router) HandleCommand(ctx context.Context, payload *CommandPayload) Result {
	command := NormalizeCommand(payload.Command)
	handler, ok := r.commands[command]
	if !ok {
		r.logger.Warnw("unhandled command", "command", command)
		return Failure(fmt.Errorf("%w for command %s", ErrUnhandled, command))
	}

	if err := handler(ctx, payload); err != nil {
		return Failure(err)
	}
	return Success()
}

// HandleInteraction resolves and invokes the handler for a block action,
// view submission or view close.
func (r *Router) HandleInteraction(ctx context.Context, payload *InteractionPayload) Result {
	switch payload.Type {
	case InteractionBlockActions:
		return r.handleBlockAction(ctx, payload)
	case InteractionViewSubmission:
		return r.handleView(ctx, payload, r.viewSubmissions, "view submission")
	case InteractionViewClosed:
		return r.handleView(ctx, payload, r.viewClosed, "view closed")
	default:
		r.logger.Warnw("unhandled interaction type", "type", payload.Type)
		return Failure(fmt.Errorf("%w for interaction type %s", ErrUnhandled, payload.Type))
	}
}

// handleBlockAction dispatches on the first action of the payload with
// three-tier fallback: exact (blockId, actionId), then blockId only, then
// actionId only. Within a tier the first registered binding wins.
func (r *Router) handleBlockAction(ctx context.Context, payload *InteractionPayload) Result {
	if len(payload.Actions) == 0 {
		r.logger.Warnw("block action payload without actions")
		return Failure(fmt.Errorf("%w: empty block action payload", ErrUnhandled))
	}

	action := payload.Actions[0]
	handler := r.resolveAction(action.BlockID, action.ActionID)
	if handler == nil {
		r.logger.Warnw("unhandled block action",
			"block_id", action.BlockID,
			"action_id", action.ActionID,
		)
		return Failure(fmt.Errorf("%w for action %s/%s", ErrUnhandled, action.BlockID, action.ActionID))
	}

	if err := handler(ctx, payload); err != nil {
		return Failure(err)
	}
	return Success()
}

// resolveAction walks the fallback tiers in priority order.
func (r *Router) resolveAction(blockID, actionID string) ActionHandler {
	tiers := [][2]string{
		{blockID, actionID},
		{blockID, ""},
		{"", actionID},
	}
	for _, tier := range tiers {
		for _, binding := range r.actions {
			if binding.BlockID == tier[0] && binding.ActionID == tier[1] {
				return binding.Handler
			}
		}
	}
	return nil
}

// handleView dispatches a view interaction by its callback id.
func (r *Router) handleView(ctx context.Context, payload *InteractionPayload, handlers map[string]ViewHandler, kind string) Result {
	if payload.View == nil {
		r.logger.Warnw("view interaction without view", "kind", kind)
		return Failure(fmt.Errorf("%w: %s payload without view", ErrUnhandled, kind))
	}

	handler, ok := handlers[payload.View.CallbackID]
	if !ok {
		r.logger.Warnw("unhandled view interaction",
			"kind", kind,
			"callback_id", payload.View.CallbackID,
		)
		return Failure(fmt.Errorf("%w for %s %s", ErrUnhandled, kind, payload.View.CallbackID))
	}

	if err := handler(ctx, payload); err != nil {
		return Failure(err)
	}
	return Success()
}

// HandleEvent resolves and invokes the handler for a platform event.
// Synthetic message events (subtype set, or an echo of the bot's own post)
// are recognized and silently dropped before dispatch.
func (r *Router) HandleEvent(ctx context.Context, payload *EventPayload) Result {
	if payload.Event.Subtype != "" || payload.Event.BotID != "" {
		return Success()
	}

	handler, ok := r.events[payload.Event.Type]
	if !ok {
		r.logger.Warnw("unhandled event", "event_type", payload.Event.Type)
		return Failure(fmt.Errorf("%w for event %s", ErrUnhandled, payload.Event.Type))
	}

	if err := handler(ctx, payload); err != nil {
		return Failure(err)
	}
	return Success()
}
