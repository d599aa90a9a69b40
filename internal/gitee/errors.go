package gitee

import "errors"

var (
	// ErrConflict is returned when a write is rejected because the file
	// revision moved since it was read.
	ErrConflict = errors.New("gitee: revision conflict")

	ErrFileNotFound       = errors.New("gitee: file not found")
	ErrUnauthorized       = errors.New("gitee: unauthorized")
	ErrIncompleteSettings = errors.New("gitee: incomplete settings")
)
