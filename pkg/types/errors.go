package types

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrNeedNotFound       = errors.New("need not found")
	ErrChatNotFound       = errors.New("coffee chat not found")
	ErrSlotNotFound       = errors.New("proposed slot not found")
	ErrSuggestionNotFound = errors.New("match suggestion not found")

	// ErrInvalidInput marks validation failures; handlers surface it as 400.
	ErrInvalidInput = errors.New("invalid input")

	// ErrSlotWrongChat rejects a slot id that belongs to a different chat.
	ErrSlotWrongChat = errors.New("slot does not belong to chat")

	// ErrChatAlreadyScheduled is the losing side of a concurrent select: the
	// chat moved to scheduled before this selection could apply.
	ErrChatAlreadyScheduled = errors.New("coffee chat already scheduled")

	ErrInvalidCredentials = errors.New("invalid credentials")
)
