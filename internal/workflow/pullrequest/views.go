package pullrequest

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/reviewflow/reviewbot/internal/platform"
)

// Block and action identifiers of the wizard and review surfaces.
const (
	createCommand = "/create_pull_request"

	wizardCallbackID  = "pr_create"
	detailsCallbackID = "pr_details"

	blockSummary       = "pr_summary"
	blockManage        = "pr_manage"
	blockMain          = "pr_main"
	blockReviewActions = "pr_review_actions"
	blockReviewers     = "pr_reviewers"

	blockDetailsBranches = "details_branches"
	blockDetailsCount    = "details_count"

	actionManageDetails = "manage_details"
	actionLink          = "link"
	actionBranches      = "branches"
	actionCount         = "count"
	actionReview        = "review"
	actionApprove       = "approve"
	actionMerge         = "merge"
	actionClose         = "close"
)

const maxIssueCount = 5

// formState is the wizard's transient form data, serialized into the modal's
// private metadata and re-read on every sub-modal and submit interaction.
type formState struct {
	ChannelID  string   `json:"channel_id"`
	MessageTS  string   `json:"message_ts"`
	Available  []string `json:"available"`
	Branches   []string `json:"branches"`
	IssueCount int      `json:"issue_count"`
	// ParentViewID is set only inside the manage-details sub-modal so its
	// submit can re-render the wizard underneath.
	ParentViewID string `json:"parent_view_id,omitempty"`
}

func (s *formState) encode() (string, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("failed to encode wizard form state: %w", err)
	}
	return string(raw), nil
}

func decodeFormState(privateMetadata string) (*formState, error) {
	var state formState
	if err := json.Unmarshal([]byte(privateMetadata), &state); err != nil {
		return nil, fmt.Errorf("failed to decode wizard form state: %w", err)
	}
	if state.IssueCount < 1 {
		state.IssueCount = 1
	}
	return &state, nil
}

// linkBlockID names the Nth pull-request link input block, 1-based. The
// first one doubles as the anchor for branch validation errors.
func linkBlockID(n int) string {
	return fmt.Sprintf("pr_link_%d", n)
}

// announcementBlocks renders the placeholder posted while a user is still
// composing in the wizard.
func announcementBlocks(userID string) []platform.Block {
	return []platform.Block{
		platform.SectionBlock(blockMain,
			fmt.Sprintf(":construction: <@%s> is preparing a pull request...", userID)),
	}
}

// wizardView renders the creation wizard modal from the current form state.
func wizardView(state *formState) (platform.View, error) {
	summary := "No target branches selected yet."
	if len(state.Branches) > 0 {
		summary = "Target branches: " + formatBranches(state.Branches)
	}

	blocks := []platform.Block{
		platform.SectionBlock(blockSummary, summary),
	}
	for n := 1; n <= state.IssueCount; n++ {
		blocks = append(blocks, platform.InputBlock(
			linkBlockID(n),
			fmt.Sprintf("Pull request link %d", n),
			platform.PlainTextInput(actionLink, ""),
		))
	}
	blocks = append(blocks, platform.ActionsBlock(blockManage,
		platform.Button(actionManageDetails, "Manage details", "manage", ""),
	))

	metadata, err := state.encode()
	if err != nil {
		return nil, err
	}
	return platform.ModalView(wizardCallbackID, "New pull request", metadata, true, blocks), nil
}

// detailsView renders the manage-details sub-modal stacked on the wizard.
func detailsView(state *formState) (platform.View, error) {
	blocks := []platform.Block{
		platform.InputBlock(blockDetailsBranches, "Target branches",
			platform.CheckboxInput(actionBranches, state.Available, state.Branches)),
		platform.InputBlock(blockDetailsCount, "Number of pull request links",
			platform.PlainTextInput(actionCount, strconv.Itoa(state.IssueCount))),
	}

	metadata, err := state.encode()
	if err != nil {
		return nil, err
	}
	return platform.ModalView(detailsCallbackID, "Pull request details", metadata, false, blocks), nil
}

// reviewMessageBlocks renders the submitted pull request: the primary
// section with links and branches plus the review action buttons. The
// reviewers context block is appended separately as reviewers accumulate.
func reviewMessageBlocks(author string, links, branches []string) []platform.Block {
	var text strings.Builder
	fmt.Fprintf(&text, "<@%s> requests a review:", author)
	for _, link := range links {
		fmt.Fprintf(&text, "\n• %s", link)
	}
	fmt.Fprintf(&text, "\nTarget branches: %s", formatBranches(branches))

	return []platform.Block{
		platform.SectionBlock(blockMain, text.String()),
		reviewActionsBlock(),
	}
}

func reviewActionsBlock() platform.Block {
	return platform.ActionsBlock(blockReviewActions,
		platform.Button(actionReview, "Review", actionReview, ""),
		platform.Button(actionApprove, "Approve", actionApprove, ""),
		platform.Button(actionMerge, "Merge", actionMerge, "primary"),
		platform.Button(actionClose, "Close", actionClose, "danger"),
	)
}

// reviewersBlock rebuilds the reviewers context block from the metadata's
// reviewer set and cached profiles.
func reviewersBlock(meta *Metadata) platform.Block {
	elements := make([]interface{}, 0, len(meta.Reviewing)*2+1)
	elements = append(elements, platform.TextElement("Reviewing:"))
	for _, userID := range meta.Reviewing {
		profile := meta.Profiles[userID]
		name := profile.Name
		if name == "" {
			name = userID
		}
		if profile.Image != "" {
			elements = append(elements, platform.ImageElement(profile.Image, name))
		}
		if contains(meta.Approved, userID) {
			name += " :white_check_mark:"
		}
		elements = append(elements, platform.TextElement(name))
	}
	return platform.ContextBlock(blockReviewers, elements)
}

// terminalText rewrites the primary section for a merged or closed PR.
func terminalText(action, author, actor string) string {
	switch action {
	case actionMerge:
		return fmt.Sprintf(":tada: Pull request by <@%s> was merged by <@%s>.", author, actor)
	default:
		return fmt.Sprintf(":no_entry_sign: Pull request by <@%s> was closed by <@%s>.", author, actor)
	}
}

// terminalReply is the thread reply posted under a terminal message.
func terminalReply(action, actor string) string {
	switch action {
	case actionMerge:
		return fmt.Sprintf("This pull request was merged by <@%s>.", actor)
	default:
		return fmt.Sprintf("This pull request was closed by <@%s>.", actor)
	}
}

func formatBranches(branches []string) string {
	quoted := make([]string, 0, len(branches))
	for _, branch := range branches {
		quoted = append(quoted, "`"+branch+"`")
	}
	return strings.Join(quoted, ", ")
}
