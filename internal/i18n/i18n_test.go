package i18n

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestNormalizeLocale(t *testing.T) {
	cases := map[string]string{
		"":                      LocaleZH,
		"zh-CN":                 LocaleZH,
		"zh-TW":                 LocaleTW,
		"zh-Hant":               LocaleTW,
		"en":                    LocaleEN,
		"en-US,en;q=0.9":        LocaleEN,
		"fr-FR":                 LocaleZH,
		"not a language tag!!!": LocaleZH,
	}
	for raw, want := range cases {
		if got := NormalizeLocale(raw); got != want {
			t.Fatalf("NormalizeLocale(%q) want %s got %s", raw, want, got)
		}
	}
}

func TestResolveLocalePriority(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/x?lang=en-US", nil)
	c.Request.Header.Set("X-Locale", "zh-TW")
	if got := ResolveLocale(c); got != LocaleEN {
		t.Fatalf("query lang should win, got %s", got)
	}

	c, _ = gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)
	c.Request.Header.Set("X-Locale", "zh-TW")
	c.Request.Header.Set("Accept-Language", "en-US")
	if got := ResolveLocale(c); got != LocaleTW {
		t.Fatalf("X-Locale should win over Accept-Language, got %s", got)
	}

	c, _ = gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)
	c.Request.Header.Set("Accept-Language", "en-US,en;q=0.8")
	if got := ResolveLocale(c); got != LocaleEN {
		t.Fatalf("Accept-Language fallback failed, got %s", got)
	}
}

func TestTFallbacks(t *testing.T) {
	if got := T(LocaleEN, "error.email_exists"); got != "Email already registered" {
		t.Fatalf("unexpected en message: %s", got)
	}
	if got := T(LocaleEN, "missing.key"); got != "missing.key" {
		t.Fatalf("missing key should echo key, got %s", got)
	}
	if got := Sprintf(LocaleZH, "error.verify_locked", 15); !strings.Contains(got, "15") {
		t.Fatalf("formatted message should contain minutes, got %s", got)
	}
}

func TestCatalogKeysAligned(t *testing.T) {
	base := catalog[DefaultLocale]
	for locale, table := range catalog {
		for key := range base {
			if _, ok := table[key]; !ok {
				t.Fatalf("locale %s missing key %s", locale, key)
			}
		}
	}
}
