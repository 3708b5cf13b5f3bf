package i18n

import (
	"embed"
	"encoding/json"
	"fmt"

	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var locales embed.FS

type Translator struct {
	bundle *goi18n.Bundle
}

// New loads the embedded English and Malay catalogues. English is the fallback.
func New() (*Translator, error) {
	bundle := goi18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	for _, file := range []string{"locales/active.en.json", "locales/active.ms.json"} {
		if _, err := bundle.LoadMessageFileFS(locales, file); err != nil {
			return nil, fmt.Errorf("load %s: %w", file, err)
		}
	}
	return &Translator{bundle: bundle}, nil
}

// Localizer returns a message lookup bound to the caller's preferred languages,
// typically the raw Accept-Language header.
func (t *Translator) Localizer(langs ...string) *Localizer {
	return &Localizer{l: goi18n.NewLocalizer(t.bundle, langs...)}
}

type Localizer struct {
	l *goi18n.Localizer
}

// T never fails: an unknown id comes back as the id itself.
func (l *Localizer) T(id string, data map[string]interface{}) string {
	if l == nil {
		return id
	}
	msg, err := l.l.Localize(&goi18n.LocalizeConfig{MessageID: id, TemplateData: data})
	if err != nil || msg == "" {
		return id
	}
	return msg
}
