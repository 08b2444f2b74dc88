/*
Package login drives one pass of the captive-portal login flow:

	Idle → Checking → Connected
	               ↘ Detecting → Failed
	                          ↘ Opening → Failed
	                                   ↘ Waiting → Connected | TimedOut

A Runner checks connectivity, asks the Detector for the portal URL, opens it
in a browser session and polls connectivity until it returns or the attempt
budget runs out. Progress goes to a Reporter as Events; the result comes back
as an Outcome.

The browser session is closed exactly once on every path after it was
created. A failing session factory is a hard failure wrapping
ErrBrowserUnavailable.
*/
package login
