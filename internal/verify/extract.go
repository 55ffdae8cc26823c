package verify

import (
	"regexp"
	"strings"
)

// Ordered extraction rules. Contextual phrasings run before bare-digit
// heuristics so dates and dollar amounts in the body don't win, and the
// digit rules run before the alphanumeric ones so an 8-digit code is
// always reported as digits (rule 4), never as an ATS-style token (rule 6).
var codeRules = []*regexp.Regexp{
	// "verification code: 482913" / "security pin 1234"
	regexp.MustCompile(`(?i)(?:verification|confirm|security|auth)\s*(?:code|number|pin)[:\s]+(\d{4,8})`),
	// "your code is: 123456" / "enter 123456"
	regexp.MustCompile(`(?i)(?:your|the|enter)\s+(?:code|pin|otp)[:\s]+(\d{4,8})`),
	// "123456 is your verification code"
	regexp.MustCompile(`(?i)(\d{4,8})\s+is\s+your\s+(?:verification|confirm|security)`),
	// prominent code on its own line
	regexp.MustCompile(`(?:^|\n)[ \t]*(\d{4,8})[ \t]*(?:\r?\n|$)`),
	// alphanumeric codes like "AB12CD"
	regexp.MustCompile(`(?i)(?:code|pin|otp)[:\s]+([A-Za-z0-9]{4,10})`),
	// 8-char alphanumeric on its own line (Greenhouse style)
	regexp.MustCompile(`(?:^|\n)[ \t]*([A-Za-z0-9]{8})[ \t]*(?:\r?\n|$)`),
}

// ExtractCode scans email text (subject + body) for a verification code
// using the ordered rule list above. The first rule that matches wins.
func ExtractCode(text string) (string, bool) {
	if strings.TrimSpace(text) == "" {
		return "", false
	}
	for _, re := range codeRules {
		if m := re.FindStringSubmatch(text); m != nil {
			return m[1], true
		}
	}
	return "", false
}
