package storage

import "strconv"

// NotFoundError is returned when a memo doesn't exist in the store.
type NotFoundError struct {
	ID int64
}

func (e NotFoundError) Error() string {
	if e.ID == 0 {
		return "memo not found"
	}

	return "memo not found: " + strconv.FormatInt(e.ID, 10)
}
