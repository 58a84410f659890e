package slack

import (
	"fmt"

	"github.com/slack-go/slack"
	modelslack "github.com/taskdeck/taskdeck/pkg/domain/model/slack"
	"github.com/taskdeck/taskdeck/pkg/domain/types"
)

// Identifiers of the task creation modal. The submission handler reads the
// captured values by these keys, so they are part of the wire contract.
const (
	TaskModalCallbackID = "create_task_modal"

	BlockIDTitle       = "title_block"
	BlockIDDescription = "description_block"
	BlockIDAssignee    = "assignee_block"
	BlockIDDueDate     = "due_date_block"
	BlockIDPriority    = "priority_block"
	BlockIDContext     = "context_block"

	ActionIDTitle       = "title_input"
	ActionIDDescription = "description_input"
	ActionIDAssignee    = "assignee_select"
	ActionIDDueDate     = "due_date_select"
	ActionIDPriority    = "priority_select"
)

// BuildTaskModal produces the task creation modal. It is a pure function: the
// correlation context (permalink, channel, response URL) is serialized into
// private_metadata and round-trips unchanged through the open -> submit
// boundary, invisible to the user.
func BuildTaskModal(initialTitle, sourcePermalink, channelID, responseURL string) slack.ModalViewRequest {
	titleInput := slack.NewPlainTextInputBlockElement(
		slack.NewTextBlockObject(slack.PlainTextType, "What needs to be done?", false, false),
		ActionIDTitle,
	)
	titleInput.InitialValue = initialTitle

	descriptionInput := slack.NewPlainTextInputBlockElement(
		slack.NewTextBlockObject(slack.PlainTextType, "Add some details (optional)", false, false),
		ActionIDDescription,
	)
	descriptionInput.Multiline = true

	assigneeSelect := slack.NewOptionsSelectBlockElement(
		slack.OptTypeUser,
		slack.NewTextBlockObject(slack.PlainTextType, "Select an assignee", false, false),
		ActionIDAssignee,
	)

	dueDatePicker := slack.NewDatePickerBlockElement(ActionIDDueDate)
	dueDatePicker.Placeholder = slack.NewTextBlockObject(slack.PlainTextType, "Select a date", false, false)

	priorityOptions := make([]*slack.OptionBlockObject, 0, len(types.AllPriorities()))
	for _, p := range types.AllPriorities() {
		priorityOptions = append(priorityOptions, slack.NewOptionBlockObject(
			p.String(),
			slack.NewTextBlockObject(slack.PlainTextType, p.Label(), false, false),
			nil,
		))
	}
	prioritySelect := slack.NewOptionsSelectBlockElement(
		slack.OptTypeStatic,
		nil,
		ActionIDPriority,
		priorityOptions...,
	)
	prioritySelect.InitialOption = slack.NewOptionBlockObject(
		types.DefaultPriority.String(),
		slack.NewTextBlockObject(slack.PlainTextType, types.DefaultPriority.Label(), false, false),
		nil,
	)

	contextText := "Manual task"
	if sourcePermalink != "" {
		contextText = fmt.Sprintf("Created from <%s|this message>", sourcePermalink)
	}

	descriptionBlock := slack.NewInputBlock(BlockIDDescription,
		slack.NewTextBlockObject(slack.PlainTextType, "Description", false, false),
		nil, descriptionInput)
	descriptionBlock.Optional = true

	dueDateBlock := slack.NewInputBlock(BlockIDDueDate,
		slack.NewTextBlockObject(slack.PlainTextType, "Due Date", false, false),
		nil, dueDatePicker)
	dueDateBlock.Optional = true

	metadata := modelslack.ViewMetadata{
		SourcePermalink: sourcePermalink,
		ChannelID:       channelID,
		ResponseURL:     responseURL,
	}

	return slack.ModalViewRequest{
		Type:            slack.VTModal,
		CallbackID:      TaskModalCallbackID,
		PrivateMetadata: metadata.Encode(),
		Title:           slack.NewTextBlockObject(slack.PlainTextType, "Create New Task", true, false),
		Submit:          slack.NewTextBlockObject(slack.PlainTextType, "Create", true, false),
		Close:           slack.NewTextBlockObject(slack.PlainTextType, "Cancel", true, false),
		Blocks: slack.Blocks{
			BlockSet: []slack.Block{
				slack.NewInputBlock(BlockIDTitle,
					slack.NewTextBlockObject(slack.PlainTextType, "Task Name", false, false),
					nil, titleInput),
				descriptionBlock,
				slack.NewInputBlock(BlockIDAssignee,
					slack.NewTextBlockObject(slack.PlainTextType, "Assignee", false, false),
					nil, assigneeSelect),
				dueDateBlock,
				slack.NewInputBlock(BlockIDPriority,
					slack.NewTextBlockObject(slack.PlainTextType, "Priority", false, false),
					nil, prioritySelect),
				slack.NewContextBlock(BlockIDContext,
					slack.NewTextBlockObject(slack.MarkdownType, contextText, false, false)),
			},
		},
	}
}
