package crawlers

import (
	"fmt"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// clearStorageJS wipes client-side state the page could use to fingerprint the session.
const clearStorageJS = `() => {
	if (typeof localStorage !== 'undefined' && localStorage !== null) {
		try {
			localStorage.clear();
		} catch (e) {}
	}

	if (typeof sessionStorage !== 'undefined' && sessionStorage !== null) {
		try {
			sessionStorage.clear();
		} catch (e) {}
	}

	if (typeof document !== 'undefined' && document !== null && document.cookie) {
		try {
			var cookies = document.cookie.split(";");
			for (var i = 0; i < cookies.length; i++) {
				var c = cookies[i];
				var eqPos = c.indexOf("=");
				var name = eqPos > -1 ? c.substr(0, eqPos) : c;
				document.cookie = name.trim() + "=;expires=Thu, 01 Jan 1970 00:00:00 GMT;path=/";
			}
		} catch (e) {}
	}

	return true;
}`

// clearPageState removes storage and cookies from the current page.
// The document itself is left untouched so it can still be inspected afterwards.
func clearPageState(page *rod.Page) error {
	if _, err := page.Evaluate(&rod.EvalOptions{JS: clearStorageJS}); err != nil {
		return fmt.Errorf("clear storage: %w", err)
	}

	if err := (proto.NetworkClearBrowserCookies{}).Call(page); err != nil {
		return fmt.Errorf("clear cookies: %w", err)
	}
	return nil
}
