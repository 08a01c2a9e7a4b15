package session

import "time"

// Config controls session behaviour. Zero fields take DefaultConfig values.
type Config struct {
	// PromptPattern is an explicit regex matching the device prompt. When
	// empty the prompt is auto-detected from the login banner.
	PromptPattern string

	// PromptTimeout bounds the quiet period used for prompt auto-detection.
	PromptTimeout time.Duration

	// CommandTimeout bounds how long Send waits for the prompt to return
	// after a command.
	CommandTimeout time.Duration

	// InitCmds run immediately after the prompt is captured, responses
	// discarded. Used for paging suppression.
	InitCmds []string
}

// DefaultConfig supplies the values merged into unset Config fields.
var DefaultConfig = Config{
	PromptTimeout:  2 * time.Second,
	CommandTimeout: 30 * time.Second,
}
