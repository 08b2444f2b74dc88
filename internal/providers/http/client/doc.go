// Package client provides the HTTP client used by connectivity checks, portal
// probes and the headless form browser.
//
// Built on go-resty/resty over the pooled transport that
// hashicorp/go-retryablehttp (via cleanhttp) configures. Unlike a general
// purpose client it never retries: every call is single shot, and the
// orchestration loop owns retry policy.
//
// Features:
//   - Redirect following with a hop limit, or no following at all
//   - The final resolved URL reported apart from the requested URL
//   - Optional token-bucket pacing (golang.org/x/time/rate)
//   - Optional public-suffix cookie jar (golang.org/x/net/publicsuffix)
//
// Example Usage:
//
//	c := client.NewClient(client.DefaultOptions())
//	resp, err := c.Get(ctx, "http://captive.apple.com", true)
//	if err == nil && resp.Redirected() {
//		fmt.Println("landed on", resp.FinalURL)
//	}
package client
