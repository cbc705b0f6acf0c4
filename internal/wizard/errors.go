package wizard

import "errors"

var (
	ErrSessionNotFound     = errors.New("wizard session not found")
	ErrExitBlocked         = errors.New("unsaved changes")
	ErrNoPendingExit       = errors.New("no exit awaiting confirmation")
	ErrConfirmationPending = errors.New("exit confirmation pending")
	ErrInvalidChoice       = errors.New("invalid confirmation choice")
)
