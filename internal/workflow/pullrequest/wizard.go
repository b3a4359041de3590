package pullrequest

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/reviewflow/reviewbot/internal/dispatch"
	"github.com/reviewflow/reviewbot/internal/platform"
)

// handleCreateCommand runs the slash command that opens the creation wizard.
// The creation slot is claimed first; a user who already holds it resumes
// into the same announcement message instead of posting a second one.
func (m *Module) handleCreateCommand(ctx context.Context, payload *dispatch.CommandPayload) error {
	id := payload.Tenant()

	token, err := m.botToken(ctx, id)
	if err != nil {
		return err
	}

	review, err := m.queue.StartCreation(ctx, id, payload.UserID)
	if err != nil {
		return err
	}

	channelID, err := m.settings.Channel(ctx, id)
	if err != nil {
		return err
	}
	pinned := channelID != ""
	if channelID == "" {
		channelID = payload.ChannelID
	}

	messageTS := review.MessageTimestamp
	if messageTS == "" {
		resp, postErr := m.api.PostMessage(ctx, token, &platform.MessageRequest{
			Channel: channelID,
			Text:    fmt.Sprintf("<@%s> is preparing a pull request", payload.UserID),
			Blocks:  announcementBlocks(payload.UserID),
		})
		if postErr != nil {
			if cancelErr := m.queue.CancelCreation(ctx, id, payload.UserID, false); cancelErr != nil {
				m.logger.Errorw("failed to release creation slot after announcement failure",
					"tenant", id.Key(),
					"user", payload.UserID,
					"error", cancelErr,
				)
			}
			return postErr
		}
		messageTS = resp.Timestamp
		channelID = resp.Channel

		if err := m.queue.UpdateCreation(ctx, id, payload.UserID, messageTS); err != nil {
			return err
		}

		// The first announcement pins the review channel for the tenant.
		if !pinned {
			if saveErr := m.settings.Save(ctx, id, channelID, nil); saveErr != nil {
				m.logger.Warnw("failed to pin review channel",
					"tenant", id.Key(),
					"channel", channelID,
					"error", saveErr,
				)
			}
		}
	}

	available, err := m.queue.GetAvailableBranches(ctx, id, payload.UserID)
	if err != nil {
		return err
	}

	state := &formState{
		ChannelID:  channelID,
		MessageTS:  messageTS,
		Available:  available,
		Branches:   []string{},
		IssueCount: 1,
	}
	view, err := wizardView(state)
	if err != nil {
		return err
	}

	_, err = m.api.OpenModal(ctx, token, payload.TriggerID, view)
	return err
}

// handleManageDetails stacks the details sub-modal on top of the wizard.
func (m *Module) handleManageDetails(ctx context.Context, payload *dispatch.InteractionPayload) error {
	if payload.View == nil {
		return fmt.Errorf("manage details action without a view")
	}

	state, err := decodeFormState(payload.View.PrivateMetadata)
	if err != nil {
		return err
	}
	state.ParentViewID = payload.View.ID

	view, err := detailsView(state)
	if err != nil {
		return err
	}

	token, err := m.botToken(ctx, payload.Tenant())
	if err != nil {
		return err
	}

	_, err = m.api.PushModal(ctx, token, payload.TriggerID, view)
	return err
}

// handleDetailsSubmit applies the sub-modal's branch and link-count choices
// and re-renders the wizard underneath it.
func (m *Module) handleDetailsSubmit(ctx context.Context, payload *dispatch.InteractionPayload) error {
	if payload.View == nil {
		return fmt.Errorf("details submission without a view")
	}

	state, err := decodeFormState(payload.View.PrivateMetadata)
	if err != nil {
		return err
	}

	values := payload.View.State.Values

	branches := make([]string, 0)
	for _, option := range values[blockDetailsBranches][actionBranches].SelectedOptions {
		branches = append(branches, option.Value)
	}

	countRaw := strings.TrimSpace(values[blockDetailsCount][actionCount].Value)
	count, err := strconv.Atoi(countRaw)
	if err != nil || count < 1 || count > maxIssueCount {
		return &dispatch.FieldErrors{Errors: map[string]string{
			blockDetailsCount: fmt.Sprintf("Enter a number between 1 and %d", maxIssueCount),
		}}
	}

	parentViewID := state.ParentViewID
	state.Branches = branches
	state.IssueCount = count
	state.ParentViewID = ""

	view, err := wizardView(state)
	if err != nil {
		return err
	}

	token, err := m.botToken(ctx, payload.Tenant())
	if err != nil {
		return err
	}

	_, err = m.api.UpdateModal(ctx, token, parentViewID, view)
	return err
}

// handleWizardSubmit turns the announcement into the final review message
// and fans the review into every selected branch queue.
func (m *Module) handleWizardSubmit(ctx context.Context, payload *dispatch.InteractionPayload) error {
	if payload.View == nil {
		return fmt.Errorf("wizard submission without a view")
	}

	state, err := decodeFormState(payload.View.PrivateMetadata)
	if err != nil {
		return err
	}

	if len(state.Branches) == 0 {
		return &dispatch.FieldErrors{Errors: map[string]string{
			linkBlockID(1): "Select at least one target branch via Manage details",
		}}
	}

	values := payload.View.State.Values
	links := make([]string, 0, state.IssueCount)
	for n := 1; n <= state.IssueCount; n++ {
		link := strings.TrimSpace(values[linkBlockID(n)][actionLink].Value)
		if link != "" {
			links = append(links, link)
		}
	}
	if len(links) == 0 {
		return &dispatch.FieldErrors{Errors: map[string]string{
			linkBlockID(1): "Provide at least one pull request link",
		}}
	}

	id := payload.Tenant()
	token, err := m.botToken(ctx, id)
	if err != nil {
		return err
	}

	meta := NewMetadata(payload.User.ID, state.Branches)
	encoded, err := meta.Encode()
	if err != nil {
		return err
	}

	_, err = m.api.UpdateMessage(ctx, token, &platform.MessageRequest{
		Channel:   state.ChannelID,
		Timestamp: state.MessageTS,
		Text:      fmt.Sprintf("<@%s> requests a review", payload.User.ID),
		Blocks:    reviewMessageBlocks(payload.User.ID, links, state.Branches),
		Metadata:  encoded,
	})
	if err != nil {
		return err
	}

	if err := m.queue.FinishCreation(ctx, id, payload.User.ID, state.MessageTS, state.Branches); err != nil {
		return err
	}

	m.logger.Infow("pull request submitted",
		"tenant", id.Key(),
		"user", payload.User.ID,
		"message_ts", state.MessageTS,
		"branches", state.Branches,
	)
	return nil
}

// handleWizardClosed deletes the announcement and releases the creation
// slot when the user abandons the wizard.
func (m *Module) handleWizardClosed(ctx context.Context, payload *dispatch.InteractionPayload) error {
	if payload.View == nil {
		return fmt.Errorf("wizard close without a view")
	}

	state, err := decodeFormState(payload.View.PrivateMetadata)
	if err != nil {
		return err
	}

	id := payload.Tenant()

	token, err := m.botToken(ctx, id)
	if err != nil {
		return err
	}

	if state.MessageTS != "" {
		if delErr := m.api.DeleteMessage(ctx, token, state.ChannelID, state.MessageTS); delErr != nil {
			m.logger.Warnw("failed to delete abandoned announcement",
				"tenant", id.Key(),
				"channel", state.ChannelID,
				"message_ts", state.MessageTS,
				"error", delErr,
			)
		}
	}

	return m.queue.CancelCreation(ctx, id, payload.User.ID, false)
}
