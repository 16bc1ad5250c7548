package localstore

import "errors"

var (
	// ErrStorageQuota is returned when neither the compressed nor the raw
	// representation could be written.
	ErrStorageQuota = errors.New("local storage quota exceeded: remove some attachments or clear storage")
	// ErrUnreadableData is returned by helpers that would rewrite a stored
	// data set they could not read.
	ErrUnreadableData = errors.New("stored employee data could not be read: export or clear it before making changes")

	ErrRecordNotFound    = errors.New("record not found")
	ErrNoEntries         = errors.New("no entries to delete")
	ErrUnknownCollection = errors.New("unknown collection")
	ErrUnknownFileSlot   = errors.New("unknown attachment field")
)
