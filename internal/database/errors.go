package database

import "errors"

// Expected outcomes of the credit-accounted operations. Handlers match these
// with errors.Is and map them to distinct response codes; anything else that
// comes out of the store is a storage failure and has already been rolled back.
var (
	ErrNoUploadCredit     = errors.New("no upload credit left")
	ErrNoGenerationCredit = errors.New("no generation credit left")
	ErrNoRecentsSlot      = errors.New("no recents storage slot left")
	ErrImageNotFound      = errors.New("image not found or user is not the owner")
	ErrGenerationNotFound = errors.New("generation not found or user is not the owner")
	ErrUserNotFound       = errors.New("user not found")
	ErrFeedbackLimit      = errors.New("feedback limit reached for this user")
)
