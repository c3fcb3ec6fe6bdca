package core

// Choice ids round-trip between the response builder and the intent parser:
// the builder stamps them onto options and list rows, the transport echoes
// them back as InboundEvent.ChoiceID, and the parser maps them to intents
// without touching the NLU capability.
const (
	// ChoicePickPrefix prefixes disambiguation rows; the suffix is the
	// entity id, so a follow-up selection resolves without a second search.
	ChoicePickPrefix = "pick:"
	// ChoiceActionPrefix prefixes action buttons on a focused entity; the
	// suffix is the ActionName.
	ChoiceActionPrefix = "action:"

	ChoiceViewEntities = "view"
	ChoiceCreateEntity = "create"
	ChoiceExitFocus    = "exit"
	ChoiceConfirm      = "confirm"
	ChoiceCancel       = "cancel"
	ChoiceHelp         = "help"
	ChoiceSendArtifact = "send"
)
