// Command wifi-login gets a machine past a captive portal.
//
// It checks connectivity, finds the portal login page by probing well-known
// connectivity-check URLs, opens it and waits until the internet is
// reachable.
//
// Usage:
//
//	wifi-login                         detect the portal and open it in the desktop browser
//	wifi-login -url http://10.0.0.1    open a known portal
//	wifi-login -headless               submit the portal form without a window
//	wifi-login -test                   only check connectivity
//	wifi-login -p                      print the portal URL instead of opening it
//
// Exit status is 0 when the machine is online, 1 otherwise.
package main
