package generate

import "errors"

var (
	// ErrChatModelRequired is returned when a Generator is constructed
	// without a chat model.
	ErrChatModelRequired = errors.New("chat model is required")

	// ErrEmptyResponse is returned when the model produces no content.
	ErrEmptyResponse = errors.New("model returned an empty response")
)
