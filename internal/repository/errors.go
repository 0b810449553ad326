package repository

import "errors"

// ErrNotFound is returned when a requested record is not found in the repository.
// This abstracts away the underlying storage implementation from the service layer.
var ErrNotFound = errors.New("record not found")

// ErrDuplicateSelection is returned when the journal already holds a
// selection for the participant.
var ErrDuplicateSelection = errors.New("selection already recorded for participant")
