package pullrequest

import (
	"context"
	"errors"
	"fmt"

	"github.com/reviewflow/reviewbot/internal/dispatch"
	"github.com/reviewflow/reviewbot/internal/platform"
)

// handleReviewAction handles every button press on a review message. The
// binding is by block id; the action id selects the transition.
func (m *Module) handleReviewAction(ctx context.Context, payload *dispatch.InteractionPayload) error {
	if payload.Message == nil {
		return ErrMissingMessage
	}
	if len(payload.Actions) == 0 {
		return fmt.Errorf("review action payload carries no action")
	}

	meta, err := DecodeMetadata(payload.Message.Metadata)
	if err != nil {
		if errors.Is(err, ErrNoMetadata) {
			// Stale click on a message that already reached a terminal state.
			m.logger.Debugw("review action on message without metadata",
				"message_ts", payload.Message.Timestamp,
			)
			return nil
		}
		return err
	}

	id := payload.Tenant()
	token, err := m.botToken(ctx, id)
	if err != nil {
		return err
	}

	actor := payload.User.ID
	action := payload.Actions[0].ActionID

	switch action {
	case actionReview:
		if !meta.AddReviewer(actor) {
			return nil
		}
		m.cacheProfile(ctx, token, meta, actor)
		return m.updateReviewMessage(ctx, token, payload, meta)

	case actionApprove:
		changed, err := meta.AddApproval(actor)
		if err != nil {
			return err
		}
		if !changed {
			return nil
		}
		return m.updateReviewMessage(ctx, token, payload, meta)

	case actionMerge, actionClose:
		authorClose := action == actionClose && actor == meta.Author
		if !meta.HasReviewer(actor) && !authorClose {
			return ErrNotReviewer
		}
		return m.finishReview(ctx, token, payload, meta, action)

	default:
		return fmt.Errorf("unknown review action %q", action)
	}
}

// cacheProfile fetches and caches a user's display profile on first
// appearance. A fetch failure degrades to the bare user id in the
// reviewers block.
func (m *Module) cacheProfile(ctx context.Context, token string, meta *Metadata, userID string) {
	if _, ok := meta.Profiles[userID]; ok {
		return
	}

	info, err := m.api.GetUserInfo(ctx, token, userID)
	if err != nil {
		m.logger.Warnw("failed to fetch reviewer profile",
			"user", userID,
			"error", err,
		)
		return
	}

	name := info.DisplayName
	if name == "" {
		name = info.RealName
	}
	if name == "" {
		name = info.Name
	}
	meta.Profiles[userID] = Profile{Name: name, Image: info.Image}
}

// updateReviewMessage rebuilds the reviewers context block from scratch and
// rewrites the message with the mutated metadata.
func (m *Module) updateReviewMessage(ctx context.Context, token string, payload *dispatch.InteractionPayload, meta *Metadata) error {
	blocks := stripBlock(payload.Message.Blocks, blockReviewers)
	blocks = append(blocks, reviewersBlock(meta))

	encoded, err := meta.Encode()
	if err != nil {
		return err
	}

	_, err = m.api.UpdateMessage(ctx, token, &platform.MessageRequest{
		Channel:   payload.Channel.ID,
		Timestamp: payload.Message.Timestamp,
		Text:      payload.Message.Text,
		Blocks:    blocks,
		Metadata:  encoded,
	})
	return err
}

// finishReview drives the terminal transition: the action and reviewers
// blocks are stripped, the primary section announces the outcome, a thread
// reply is posted, the queue entries are popped and the metadata cleared.
func (m *Module) finishReview(ctx context.Context, token string, payload *dispatch.InteractionPayload, meta *Metadata, action string) error {
	actor := payload.User.ID
	announcement := terminalText(action, meta.Author, actor)

	blocks := stripBlock(payload.Message.Blocks, blockReviewers)
	blocks = stripBlock(blocks, blockReviewActions)
	blocks = rewriteSection(blocks, blockMain, announcement)

	_, err := m.api.UpdateMessage(ctx, token, &platform.MessageRequest{
		Channel:   payload.Channel.ID,
		Timestamp: payload.Message.Timestamp,
		Text:      announcement,
		Blocks:    blocks,
		Metadata:  ClearedMetadata(),
	})
	if err != nil {
		return err
	}

	if _, replyErr := m.api.PostMessage(ctx, token, &platform.MessageRequest{
		Channel:  payload.Channel.ID,
		ThreadTS: payload.Message.Timestamp,
		Text:     terminalReply(action, actor),
	}); replyErr != nil {
		m.logger.Warnw("failed to post terminal thread reply",
			"message_ts", payload.Message.Timestamp,
			"error", replyErr,
		)
	}

	id := payload.Tenant()
	if err := m.queue.FinishReview(ctx, id, payload.Message.Timestamp, meta.Branches); err != nil {
		return err
	}

	m.logger.Infow("pull request finished",
		"tenant", id.Key(),
		"action", action,
		"actor", actor,
		"message_ts", payload.Message.Timestamp,
	)
	return nil
}

// stripBlock removes the block with the given id, if present.
func stripBlock(blocks []platform.Block, blockID string) []platform.Block {
	out := make([]platform.Block, 0, len(blocks))
	for _, block := range blocks {
		if blockIDOf(block) == blockID {
			continue
		}
		out = append(out, block)
	}
	return out
}

// rewriteSection replaces the text of the section block with the given id.
func rewriteSection(blocks []platform.Block, blockID, text string) []platform.Block {
	out := make([]platform.Block, 0, len(blocks))
	for _, block := range blocks {
		if blockIDOf(block) == blockID {
			out = append(out, platform.SectionBlock(blockID, text))
			continue
		}
		out = append(out, block)
	}
	return out
}

func blockIDOf(block platform.Block) string {
	id, _ := block["block_id"].(string)
	return id
}
