package i18n

import (
	"embed"
	"io/fs"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pelletier/go-toml/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/language"

	"rosterbot/internal/ports/output"
)

//go:embed active.*.toml
var localeFS embed.FS

var _ output.T = (*Translator)(nil)

// Translator est une fine couche au-dessus du Bundle de go-i18n.
type Translator struct {
	bundle          *i18n.Bundle
	defaultLanguage language.Tag
	log             *logrus.Entry
}

// NewTranslator loads every embedded active.*.toml catalogue. Unknown
// locales fall back to English.
func NewTranslator(defaultLocale string, log *logrus.Logger) *Translator {
	tag, err := language.Parse(defaultLocale)
	if err != nil {
		tag = language.English
	}
	bundle := i18n.NewBundle(tag)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	entry := log.WithField("component", "i18n")
	files, _ := fs.Glob(localeFS, "active.*.toml")
	for _, file := range files {
		if _, err := bundle.LoadMessageFileFS(localeFS, file); err != nil {
			entry.WithField("file", file).WithError(err).Error("catalogue not loaded")
		}
	}

	return &Translator{bundle: bundle, defaultLanguage: tag, log: entry}
}

// T renders key for locale, then for the default locale, then returns the
// key itself.
func (t *Translator) T(locale, key string, data map[string]any) string {
	if key == "" {
		return ""
	}
	languages := []string{}
	if locale != "" {
		languages = append(languages, locale)
	}
	languages = append(languages, t.defaultLanguage.String(), language.English.String())

	localizer := i18n.NewLocalizer(t.bundle, languages...)
	msg, err := localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: data,
	})
	if err != nil {
		t.log.WithFields(logrus.Fields{"key": key, "locales": languages}).Debug("missing translation")
		return key
	}
	return msg
}
