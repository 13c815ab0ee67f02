// Package crawlers turns a URL, a saved snapshot or an inline string into a parsed page.
//
// Two live back ends exist. StaticFetcher issues a single colly request with browser-like
// headers and is used for dashboard pages by default. DynamicFetcher drives Chromium through
// go-rod and is the only back end able to follow the script-driven links and PDF downloads
// of bill-text pages, which is why Session is exported for the billtext package.
//
// Browser lifetime is scoped: WithSession launches Chromium, hands a Session to the callback
// and always kills the process and removes its profile directory afterwards, including when
// the callback panics.
//
// Every live fetch follows the same steps:
//
//	identity := provider.NextIdentity(proxy)
//	delay.Wait(ctx)
//	navigate (page-load timeout)
//	AwaitClearance: inspect, cool down once, inspect again
//
// No retries happen here. Callers rotate proxies or move on to the next unit.
package crawlers
