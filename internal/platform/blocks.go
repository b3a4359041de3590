package platform

// Small builders for the opaque block payloads. The platform's block schema
// is not modeled here; callers compose maps and the client ships them as-is.

// SectionBlock builds a markdown section block.
func SectionBlock(blockID, text string) Block {
	return Block{
		"type":     "section",
		"block_id": blockID,
		"text": map[string]interface{}{
			"type": "mrkdwn",
			"text": text,
		},
	}
}

// ContextBlock builds a context block from pre-built elements.
func ContextBlock(blockID string, elements []interface{}) Block {
	return Block{
		"type":     "context",
		"block_id": blockID,
		"elements": elements,
	}
}

// ImageElement builds a context-block image element.
func ImageElement(imageURL, altText string) map[string]interface{} {
	return map[string]interface{}{
		"type":      "image",
		"image_url": imageURL,
		"alt_text":  altText,
	}
}

// TextElement builds a context-block markdown element.
func TextElement(text string) map[string]interface{} {
	return map[string]interface{}{
		"type": "mrkdwn",
		"text": text,
	}
}

// ActionsBlock builds an actions block from pre-built button elements.
func ActionsBlock(blockID string, elements ...map[string]interface{}) Block {
	return Block{
		"type":     "actions",
		"block_id": blockID,
		"elements": elements,
	}
}

// Button builds a button element. Style may be empty, "primary" or "danger".
func Button(actionID, text, value, style string) map[string]interface{} {
	button := map[string]interface{}{
		"type":      "button",
		"action_id": actionID,
		"value":     value,
		"text": map[string]interface{}{
			"type": "plain_text",
			"text": text,
		},
	}
	if style != "" {
		button["style"] = style
	}
	return button
}

// InputBlock builds a modal input block around a pre-built element.
func InputBlock(blockID, label string, element map[string]interface{}) Block {
	return Block{
		"type":     "input",
		"block_id": blockID,
		"label": map[string]interface{}{
			"type": "plain_text",
			"text": label,
		},
		"element": element,
	}
}

// PlainTextInput builds a plain-text input element.
func PlainTextInput(actionID, initialValue string) map[string]interface{} {
	element := map[string]interface{}{
		"type":      "plain_text_input",
		"action_id": actionID,
	}
	if initialValue != "" {
		element["initial_value"] = initialValue
	}
	return element
}

// CheckboxInput builds a checkboxes element with the given options selected.
func CheckboxInput(actionID string, options, selected []string) map[string]interface{} {
	buildOptions := func(values []string) []interface{} {
		out := make([]interface{}, 0, len(values))
		for _, value := range values {
			out = append(out, map[string]interface{}{
				"value": value,
				"text": map[string]interface{}{
					"type": "plain_text",
					"text": value,
				},
			})
		}
		return out
	}

	element := map[string]interface{}{
		"type":      "checkboxes",
		"action_id": actionID,
		"options":   buildOptions(options),
	}
	if len(selected) > 0 {
		element["initial_options"] = buildOptions(selected)
	}
	return element
}

// ModalView builds a modal view shell around the given blocks.
func ModalView(callbackID, title, privateMetadata string, notifyOnClose bool, blocks []Block) View {
	view := View{
		"type":        "modal",
		"callback_id": callbackID,
		"title": map[string]interface{}{
			"type": "plain_text",
			"text": title,
		},
		"submit": map[string]interface{}{
			"type": "plain_text",
			"text": "Submit",
		},
		"close": map[string]interface{}{
			"type": "plain_text",
			"text": "Cancel",
		},
		"blocks": blocks,
	}
	if privateMetadata != "" {
		view["private_metadata"] = privateMetadata
	}
	if notifyOnClose {
		view["notify_on_close"] = true
	}
	return view
}

// HomeView builds a home-surface view around the given blocks.
func HomeView(blocks []Block) View {
	return View{
		"type":   "home",
		"blocks": blocks,
	}
}
