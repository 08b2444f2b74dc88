/*
Package browser provides the browser sessions used to reach a captive
portal's login page.

# Sessions

A Session is one browser window. Two implementations exist:

  - FormSession fetches pages over HTTP with a cookie jar and keeps the parsed
    document. It locates elements with CSS selectors (goquery) or XPath
    (htmlquery), records typed text and submits the owning form when a
    submit control is clicked. No scripts run, so portals that build their
    login form in JavaScript need the system browser.
  - SystemSession hands the URL to the desktop browser (xdg-open, open or
    rundll32, or the command in BROWSER_OPENER). It cannot inspect the page.

# Factories

DefaultFactory picks FormSession for headless requests and SystemSession
otherwise. Guarded wraps any factory with a circuit breaker so a service
loop stops hammering a browser backend that keeps failing.

# Selectors

	input[name=username]          CSS
	xpath://input[@type='password']
	//button[contains(., 'Login')] XPath (leading slash)
*/
package browser
