package apply

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	reNonSlug   = regexp.MustCompile(`[^\w\s-]`)
	reSlugSep   = regexp.MustCompile(`[-\s]+`)
	reWWW       = regexp.MustCompile(`^www\.`)
	reATSSuffix = regexp.MustCompile(
		`\.(com|org|net|io|co|careers|jobs|greenhouse\.io|lever\.co|workday\.com` +
			`|myworkdayjobs\.com|smartrecruiters\.com|ashbyhq\.com|bamboohr\.com|icims\.com)$`)
)

// Slugify converts text to a directory-safe slug.
func Slugify(text string) string {
	s := strings.ToLower(strings.TrimSpace(text))
	s = reNonSlug.ReplaceAllString(s, "")
	s = reSlugSep.ReplaceAllString(s, "-")
	if len(s) > 60 {
		s = s[:60]
	}
	return strings.Trim(s, "-")
}

// GuessCompany extracts a company-name guess from a job posting URL's
// domain, stripping the usual ATS host suffixes.
func GuessCompany(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "unknown"
	}
	domain := reWWW.ReplaceAllString(u.Host, "")
	domain = reATSSuffix.ReplaceAllString(domain, "")

	parts := strings.Split(domain, ".")
	if len(parts) == 0 || parts[0] == "" {
		return "unknown"
	}
	if s := Slugify(parts[0]); s != "" {
		return s
	}
	return "unknown"
}
