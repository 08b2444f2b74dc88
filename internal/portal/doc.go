/*
Package portal discovers the URL of a captive portal's login page.

Captive portals intercept cleartext HTTP to arbitrary hosts and redirect (or
serve substitute content from a different final URL) to their login page.
The Detector requests the well-known connectivity-check endpoints used by
major operating systems, strictly one after another in list order, and
returns the first final URL that differs from the URL it asked for.

# Known false positives

The heuristic also fires when a probe endpoint redirects for reasons of its
own, for instance a bare-domain to www or http to https redirect. Nothing in
the response distinguishes that from an intercept, so the heuristic is kept
as is and callers should treat a candidate as a best guess.

# Overrides

A caller-supplied URL short-circuits probing entirely. It must be absolute,
use http or https and name a host; anything else yields no candidate.
*/
package portal
