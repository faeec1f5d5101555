package discord

import "rosterbot/internal/domain"

// ErrorKey maps an error to the i18n key shown to the user. Errors that are
// not meant for users (transient failures) all share "errors.generic".
func ErrorKey(err error) string {
	if err == nil {
		return ""
	}
	if !domain.IsUserFacing(err) {
		return "errors.generic"
	}
	if code := domain.Code(err); code != "" {
		return "errors." + code
	}
	return "errors.generic"
}
