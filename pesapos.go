package pesapos

// Level severity of a status report surfaced to the presentation layer.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Action a recovery decision offered to the cashier.
type Action string

const (
	ActionRetry        Action = "retry"
	ActionSwitchToCash Action = "switch_to_cash"
	ActionCancel       Action = "cancel"
	ActionManualCheck  Action = "manual_check"
)

// Reporter surfaces checkout state changes to a presentation shell.
type Reporter interface {
	// Report publish message with severity level.
	Report(msg string, level Level)

	// OfferActions offer recovery decisions to the user.
	OfferActions(actions ...Action)
}
