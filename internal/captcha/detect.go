package captcha

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Detect scans page HTML for a known CAPTCHA widget. Selectors are
// checked in order; bare [data-sitekey] elements are treated as
// reCAPTCHA since that is the common case for unbadged embeds.
func Detect(html, pageURL string) (Challenge, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return Challenge{}, false
	}

	checks := []struct {
		sel string
		typ Type
	}{
		{".g-recaptcha", TypeRecaptchaV2},
		{".h-captcha", TypeHCaptcha},
		{".cf-turnstile", TypeTurnstile},
		{"[data-sitekey]", TypeRecaptchaV2},
	}

	for _, c := range checks {
		sel := doc.Find(c.sel).First()
		if sel.Length() == 0 {
			continue
		}
		key, _ := sel.Attr("data-sitekey")
		if key == "" {
			continue
		}
		return Challenge{Type: c.typ, SiteKey: key, PageURL: pageURL}, true
	}
	return Challenge{}, false
}
