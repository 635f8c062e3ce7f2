package domain

import "errors"

// Validation errors
var (
	ErrInvalidEmail   = errors.New("a valid email address is required")
	ErrCodeRequired   = errors.New("code is required")
	ErrTitleRequired  = errors.New("title is required")
	ErrArtistRequired = errors.New("artist is required")
	ErrTitleTooLong   = errors.New("title must be at most 200 characters")
	ErrArtistTooLong  = errors.New("artist must be at most 200 characters")
	ErrInvalidYear    = errors.New("year must be between 0 and 9999")
	ErrInvalidAlbumID = errors.New("invalid album id")
	ErrInvalidInput   = errors.New("invalid request")
)

// Lookup errors. ErrInvalidCode covers both unknown and already used codes.
var (
	ErrUserNotFound  = errors.New("user not found")
	ErrAlbumNotFound = errors.New("album not found")
	ErrInvalidCode   = errors.New("invalid or expired code")
)

var ErrCodeExpired = errors.New("code has expired")

var ErrUnauthorized = errors.New("invalid token")

var ErrTooManyRequests = errors.New("too many code requests, try again later")

// Internal errors never carry their cause to the caller.
var (
	ErrInternal       = errors.New("internal server error")
	ErrDeliveryFailed = errors.New("failed to send email")
)

type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindValidation
	KindNotFound
	KindExpired
	KindUnauthorized
	KindThrottled
)

// Kind classifies err. Anything unrecognised is internal.
func Kind(err error) ErrorKind {
	switch {
	case errors.Is(err, ErrInvalidEmail),
		errors.Is(err, ErrCodeRequired),
		errors.Is(err, ErrTitleRequired),
		errors.Is(err, ErrArtistRequired),
		errors.Is(err, ErrTitleTooLong),
		errors.Is(err, ErrArtistTooLong),
		errors.Is(err, ErrInvalidYear),
		errors.Is(err, ErrInvalidAlbumID),
		errors.Is(err, ErrInvalidInput):
		return KindValidation
	case errors.Is(err, ErrUserNotFound),
		errors.Is(err, ErrAlbumNotFound),
		errors.Is(err, ErrInvalidCode):
		return KindNotFound
	case errors.Is(err, ErrCodeExpired):
		return KindExpired
	case errors.Is(err, ErrUnauthorized):
		return KindUnauthorized
	case errors.Is(err, ErrTooManyRequests):
		return KindThrottled
	default:
		return KindInternal
	}
}

// PublicMessage returns the text safe to show a caller for err.
func PublicMessage(err error) string {
	if Kind(err) == KindInternal {
		if errors.Is(err, ErrDeliveryFailed) {
			return ErrDeliveryFailed.Error()
		}
		return ErrInternal.Error()
	}
	return err.Error()
}
