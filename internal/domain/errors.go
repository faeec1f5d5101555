package domain

import (
	"errors"
	"fmt"
)

// Kind classifies a domain error for the adapters: validation, not-found and
// permission errors are shown to the user, transient ones are only logged.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindNotFound
	KindPermission
	KindTransient
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindPermission:
		return "permission"
	case KindTransient:
		return "transient"
	default:
		return "unknown"
	}
}

// Error is a domain error carrying a stable code. The code doubles as the
// i18n key suffix ("errors.<code>").
type Error struct {
	Kind Kind
	Code string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	}
	return e.Code
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on kind and code so wrapped copies of a sentinel still compare equal.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Code == t.Code
}

func newError(kind Kind, code string) *Error {
	return &Error{Kind: kind, Code: code}
}

// Domain errors.
var (
	ErrEmptyName          = newError(KindValidation, "empty_name")
	ErrInvalidDateTime    = newError(KindValidation, "invalid_datetime")
	ErrDateTimeInPast     = newError(KindValidation, "datetime_in_past")
	ErrUnknownFormation   = newError(KindValidation, "unknown_formation")
	ErrChannelRequired    = newError(KindValidation, "channel_required")
	ErrInvalidPosition    = newError(KindValidation, "invalid_position")
	ErrNoPositionSelected = newError(KindValidation, "no_position_selected")
	ErrFormationChange    = newError(KindValidation, "formation_change_in_progress")
	ErrNotChangingFormat  = newError(KindValidation, "not_changing_formation")
	ErrNothingToClear     = newError(KindValidation, "nothing_to_clear")
	ErrPositionEmpty      = newError(KindValidation, "position_empty")
	ErrNotAssignable      = newError(KindValidation, "not_assignable")
	ErrEventClosed        = newError(KindValidation, "event_closed")
	ErrNotPendingArrival  = newError(KindValidation, "not_pending_arrival")
	ErrInvalidArrival     = newError(KindValidation, "invalid_arrival")

	ErrEventNotFound   = newError(KindNotFound, "event_not_found")
	ErrLineupNotFound  = newError(KindNotFound, "lineup_not_found")
	ErrMessageNotFound = newError(KindNotFound, "message_not_found")

	ErrNotOrganizer = newError(KindPermission, "not_organizer")
	ErrNotPrompted  = newError(KindPermission, "not_prompted_user")
)

// Transient wraps an adapter or store failure.
func Transient(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: KindTransient, Code: "transient", Err: fmt.Errorf("%s: %w", op, err)}
}

// NotFound wraps an adapter error reporting a vanished resource.
func NotFound(op string, err error) error {
	return &Error{Kind: KindNotFound, Code: "message_not_found", Err: fmt.Errorf("%s: %w", op, err)}
}

// Code returns the stable code of a domain error, or "" for foreign errors.
func Code(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// KindOf returns the kind of a domain error; foreign errors count as transient.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindTransient
}

// IsUserFacing reports whether err should be shown to the invoking user.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	k := KindOf(err)
	return k == KindValidation || k == KindNotFound || k == KindPermission
}
