package portal

import "net/url"

// probeEndpoints are cleartext connectivity-check URLs used as bait. Order
// matters: the operating-system endpoints come first because they are the
// ones portal vendors are built to intercept.
var probeEndpoints = [...]string{
	"http://captive.apple.com",
	"http://www.msftconnecttest.com/redirect",
	"http://connectivitycheck.gstatic.com/generate_204",
	"http://www.google.com/generate_204",
	"http://clients3.google.com/generate_204",
	"http://www.msftncsi.com/ncsi.txt",
	"http://www.apple.com/library/test/success.html",
	"http://1.1.1.1",
	"http://8.8.8.8",
}

// DefaultProbeEndpoints returns a copy of the built-in probe list.
func DefaultProbeEndpoints() []string {
	out := make([]string, len(probeEndpoints))
	copy(out, probeEndpoints[:])
	return out
}

// ValidURL reports whether raw is an absolute http(s) URL with a host.
func ValidURL(raw string) bool {
	if raw == "" {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return u.Hostname() != ""
}
