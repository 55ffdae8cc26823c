package captcha

import (
	"encoding/json"
	"fmt"
)

// InjectionScript returns the JavaScript that plants a solution token
// into the page for the given widget type. The script also fires the
// widget's completion callback where one is registered, since many
// forms gate their submit button on it.
func InjectionScript(typ Type, token string) (string, error) {
	// JSON-encode so the token can never break out of the JS string.
	quoted, err := json.Marshal(token)
	if err != nil {
		return "", err
	}
	t := string(quoted)

	switch typ {
	case TypeRecaptchaV2:
		return fmt.Sprintf(`(function() {
    var ta = document.getElementById('g-recaptcha-response');
    if (ta) { ta.style.display=''; ta.value=%s; }
    if (typeof ___grecaptcha_cfg !== 'undefined') {
        var c = ___grecaptcha_cfg.clients;
        if (c) for (var k in c) {
            var cl = c[k];
            if (cl && cl.$ && cl.$.$ && typeof cl.$.$.callback === 'function') cl.$.$.callback(%s);
        }
    }
})()`, t, t), nil
	case TypeHCaptcha:
		return fmt.Sprintf(`(function() {
    var ta = document.querySelector('[name="h-captcha-response"]');
    if (ta) ta.value = %s;
    var iframe = document.querySelector('iframe[src*="hcaptcha"]');
    if (iframe) iframe.setAttribute('data-hcaptcha-response', %s);
})()`, t, t), nil
	case TypeTurnstile:
		return fmt.Sprintf(`(function() {
    var inp = document.querySelector('[name="cf-turnstile-response"]');
    if (inp) inp.value = %s;
    if (typeof turnstile !== 'undefined' && turnstile.getResponse) {
        var widgets = document.querySelectorAll('.cf-turnstile');
        widgets.forEach(function(w) {
            var cb = w.getAttribute('data-callback');
            if (cb && typeof window[cb] === 'function') window[cb](%s);
        });
    }
})()`, t, t), nil
	default:
		return "", fmt.Errorf("no injection script for type %q", typ)
	}
}
