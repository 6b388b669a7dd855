package i18n

import (
	"fmt"
	"strings"

	"github.com/assinahub/assinahub/internal/constants"

	"github.com/gin-gonic/gin"
)

// DefaultLocale is used whenever resolution fails.
const DefaultLocale = constants.LocalePtBR

// ResolveLocale picks the response locale from the explicit query
// parameter, the X-Locale header or Accept-Language, in that order.
func ResolveLocale(c *gin.Context) string {
	if c == nil {
		return DefaultLocale
	}
	if locale := normalizeLocale(c.Query("locale")); locale != "" {
		return locale
	}
	if locale := normalizeLocale(c.GetHeader("X-Locale")); locale != "" {
		return locale
	}
	accept := c.GetHeader("Accept-Language")
	for _, part := range strings.Split(accept, ",") {
		tag := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		if locale := normalizeLocale(tag); locale != "" {
			return locale
		}
	}
	return DefaultLocale
}

// T translates a message key for the given locale, falling back to the
// default locale and finally to the key itself.
func T(locale, key string) string {
	locale = normalizeLocale(locale)
	if locale == "" {
		locale = DefaultLocale
	}
	if catalog, ok := catalogs[locale]; ok {
		if msg, ok := catalog[key]; ok {
			return msg
		}
	}
	if locale != DefaultLocale {
		if msg, ok := catalogs[DefaultLocale][key]; ok {
			return msg
		}
	}
	return key
}

// Sprintf translates a key and formats it with args.
func Sprintf(locale, key string, args ...interface{}) string {
	msg := T(locale, key)
	if len(args) == 0 {
		return msg
	}
	return fmt.Sprintf(msg, args...)
}

func normalizeLocale(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	for _, supported := range constants.SupportedLocales {
		if strings.EqualFold(raw, supported) {
			return supported
		}
	}
	// Language-only tags ("pt", "en") map to the regional variants.
	lang := strings.ToLower(strings.SplitN(raw, "-", 2)[0])
	switch lang {
	case "pt":
		return constants.LocalePtBR
	case "en":
		return constants.LocaleEnUS
	}
	return ""
}
