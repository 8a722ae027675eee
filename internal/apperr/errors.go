// Package apperr defines the error kinds shared by the notes store and its callers.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means the operation required an existing entry of a given
	// kind (note or folder) and there was none.
	ErrNotFound = errors.New("not found")

	// ErrInvalidPath means the operation is structurally disallowed: the path
	// escapes the notes root, or it targets the root itself.
	ErrInvalidPath = errors.New("invalid path")

	// ErrFolderNotEmpty is the delete-folder variant of ErrInvalidPath.
	ErrFolderNotEmpty = fmt.Errorf("%w: folder not empty", ErrInvalidPath)

	ErrAlreadyExists = errors.New("already exists")

	// ErrConflict means the note changed since the caller last read it.
	ErrConflict = errors.New("conflict")
)
