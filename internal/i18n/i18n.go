package i18n

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"
)

const (
	LocaleZH = "zh-CN"
	LocaleTW = "zh-TW"
	LocaleEN = "en-US"

	// DefaultLocale 未识别语言时的回退
	DefaultLocale = LocaleZH

	localeQueryKey  = "lang"
	localeHeaderKey = "X-Locale"
)

var (
	supportedTags = []language.Tag{
		language.SimplifiedChinese,
		language.TraditionalChinese,
		language.AmericanEnglish,
	}
	matcher = language.NewMatcher(supportedTags)
)

// NormalizeLocale 把任意语言标签映射到受支持的 locale
func NormalizeLocale(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultLocale
	}
	tags, _, err := language.ParseAcceptLanguage(raw)
	if err != nil || len(tags) == 0 {
		return DefaultLocale
	}
	_, index, confidence := matcher.Match(tags...)
	if confidence == language.No {
		return DefaultLocale
	}
	return localeByIndex(index)
}

// ResolveLocale 依次从 ?lang=、X-Locale、Accept-Language 解析请求语言
func ResolveLocale(c *gin.Context) string {
	if c == nil || c.Request == nil {
		return DefaultLocale
	}
	if v := strings.TrimSpace(c.Query(localeQueryKey)); v != "" {
		return NormalizeLocale(v)
	}
	if v := strings.TrimSpace(c.GetHeader(localeHeaderKey)); v != "" {
		return NormalizeLocale(v)
	}
	return NormalizeLocale(c.GetHeader("Accept-Language"))
}

// T 翻译消息，缺失时依次回退到默认语言与 key 本身
func T(locale, key string) string {
	if msg, ok := lookup(NormalizeLocale(locale), key); ok {
		return msg
	}
	if msg, ok := lookup(DefaultLocale, key); ok {
		return msg
	}
	return key
}

// Sprintf 翻译并格式化消息
func Sprintf(locale, key string, args ...interface{}) string {
	return fmt.Sprintf(T(locale, key), args...)
}

func lookup(locale, key string) (string, bool) {
	table, ok := catalog[locale]
	if !ok {
		return "", false
	}
	msg, ok := table[key]
	return msg, ok
}

func localeByIndex(index int) string {
	switch index {
	case 1:
		return LocaleTW
	case 2:
		return LocaleEN
	default:
		return LocaleZH
	}
}
