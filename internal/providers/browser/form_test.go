package browser

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/wifi-login/internal/providers/http/client"
)

const loginPage = `<!DOCTYPE html>
<html>
<head><title>Guest <b>WiFi</b></title></head>
<body>
  <a id="terms" href="/terms">Terms</a>
  <form id="login" action="/auth" method="post">
    <input type="hidden" name="zone" value="lobby">
    <input type="text" name="username">
    <input type="password" name="password">
    <input type="checkbox" name="accept" checked>
    <input type="checkbox" name="newsletter">
    <select name="plan"><option value="free">Free</option><option value="paid" selected>Paid</option></select>
    <input type="text" name="disabled_field" value="x" disabled>
    <button type="submit" name="action" value="login">Log in</button>
  </form>
  <form id="search" action="/search">
    <input type="text" name="q">
    <input type="submit" value="Go">
  </form>
  <input type="submit" id="orphan" value="Lost">
</body>
</html>`

type portalServer struct {
	*httptest.Server
	mu       sync.Mutex
	posted   url.Values
	searched url.Values
}

func newPortalServer(t *testing.T) *portalServer {
	t.Helper()
	ps := &portalServer{}
	mux := http.NewServeMux()
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "portal_session", Value: "abc", Path: "/"})
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(loginPage))
	})
	mux.HandleFunc("/auth", func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		ps.mu.Lock()
		ps.posted = r.PostForm
		ps.mu.Unlock()
		if c, err := r.Cookie("portal_session"); err != nil || c.Value != "abc" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		http.Redirect(w, r, "/welcome", http.StatusSeeOther)
	})
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		ps.mu.Lock()
		ps.searched = r.URL.Query()
		ps.mu.Unlock()
		_, _ = w.Write([]byte("<html><title>Results</title></html>"))
	})
	mux.HandleFunc("/welcome", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><head><title>Welcome</title></head><body>You are online</body></html>"))
	})
	mux.HandleFunc("/terms", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><title>Terms</title></html>"))
	})
	mux.HandleFunc("/plain", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("Microsoft NCSI"))
	})
	ps.Server = httptest.NewServer(mux)
	t.Cleanup(ps.Close)
	return ps
}

func newTestSession() *FormSession {
	opts := client.DefaultOptions()
	opts.Cookies = true
	return NewFormSession(client.NewClient(opts), nil)
}

func TestFormSessionLogin(t *testing.T) {
	srv := newPortalServer(t)
	s := newTestSession()
	defer s.Close()
	ctx := context.Background()

	require.NoError(t, s.Navigate(ctx, srv.URL+"/login"))
	assert.Equal(t, srv.URL+"/login", s.CurrentURL())
	assert.Equal(t, "Guest WiFi", s.Title())

	user, err := s.Find("input[name=username]")
	require.NoError(t, err)
	assert.Equal(t, "input", user.Tag())
	require.NoError(t, s.SetText(user, "guest"))

	pass, err := s.Find("xpath://input[@type='password']")
	require.NoError(t, err)
	require.NoError(t, s.SetText(pass, "s3cret"))

	submit, err := s.Find("//button[@type='submit']")
	require.NoError(t, err)
	require.NoError(t, s.Click(ctx, submit))

	assert.Equal(t, srv.URL+"/welcome", s.CurrentURL())
	assert.Equal(t, "Welcome", s.Title())

	srv.mu.Lock()
	posted := srv.posted
	srv.mu.Unlock()
	assert.Equal(t, "guest", posted.Get("username"))
	assert.Equal(t, "s3cret", posted.Get("password"))
	assert.Equal(t, "lobby", posted.Get("zone"))
	assert.Equal(t, "on", posted.Get("accept"))
	assert.Equal(t, "paid", posted.Get("plan"))
	assert.Equal(t, "login", posted.Get("action"))
	assert.NotContains(t, posted, "newsletter")
	assert.NotContains(t, posted, "disabled_field")

	assert.Equal(t, []string{srv.URL + "/login", srv.URL + "/welcome"}, s.History())
}

func TestFormSessionGetForm(t *testing.T) {
	srv := newPortalServer(t)
	s := newTestSession()
	ctx := context.Background()

	require.NoError(t, s.Navigate(ctx, srv.URL+"/login"))
	q, err := s.Find("#search input[name=q]")
	require.NoError(t, err)
	require.NoError(t, s.SetText(q, "hello world"))

	submitBtn, err := s.Find("#search input[type=submit]")
	require.NoError(t, err)
	require.NoError(t, s.Click(ctx, submitBtn))

	srv.mu.Lock()
	defer srv.mu.Unlock()
	assert.Equal(t, "hello world", srv.searched.Get("q"))
	assert.Equal(t, "Results", s.Title())
}

func TestFormSessionFollowLink(t *testing.T) {
	srv := newPortalServer(t)
	s := newTestSession()
	ctx := context.Background()

	require.NoError(t, s.Navigate(ctx, srv.URL+"/login"))
	link, err := s.Find("#terms")
	require.NoError(t, err)
	require.NoError(t, s.Click(ctx, link))
	assert.Equal(t, srv.URL+"/terms", s.CurrentURL())
}

func TestFormSessionErrors(t *testing.T) {
	srv := newPortalServer(t)
	s := newTestSession()
	ctx := context.Background()

	_, err := s.Find("input")
	assert.ErrorIs(t, err, ErrElementNotFound)

	require.NoError(t, s.Navigate(ctx, srv.URL+"/login"))

	_, err = s.Find("input[name=missing]")
	assert.ErrorIs(t, err, ErrElementNotFound)

	_, err = s.Find("xpath://div[@id='missing']")
	assert.ErrorIs(t, err, ErrElementNotFound)

	_, err = s.Find("xpath://[")
	assert.Error(t, err)

	orphan, err := s.Find("#orphan")
	require.NoError(t, err)
	assert.ErrorIs(t, s.Click(ctx, orphan), ErrUnsupported)

	checkbox, err := s.Find("input[name=accept]")
	require.NoError(t, err)
	assert.ErrorIs(t, s.SetText(checkbox, "x"), ErrUnsupported)

	assert.ErrorIs(t, s.SetText(Element{}, "x"), ErrElementNotFound)
	assert.ErrorIs(t, s.Click(ctx, Element{}), ErrElementNotFound)
}

func TestFormSessionNonHTML(t *testing.T) {
	srv := newPortalServer(t)
	s := newTestSession()

	require.NoError(t, s.Navigate(context.Background(), srv.URL+"/plain"))
	assert.Equal(t, srv.URL+"/plain", s.CurrentURL())
	_, err := s.Find("body")
	assert.ErrorIs(t, err, ErrElementNotFound)
}

func TestFormSessionNavigateFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	s := newTestSession()
	assert.Error(t, s.Navigate(context.Background(), addr))
	assert.Empty(t, s.CurrentURL())
}

func TestFormSessionSelfSignedPortal(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(loginPage))
	})
	mux.HandleFunc("/auth", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/welcome", http.StatusSeeOther)
	})
	mux.HandleFunc("/welcome", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><head><title>Welcome</title></head></html>"))
	})
	srv := httptest.NewTLSServer(mux)
	defer srv.Close()
	ctx := context.Background()

	t.Run("accepted when insecure TLS is on", func(t *testing.T) {
		f := NewFactory(client.Options{InsecureTLS: true}, nil, nil)
		s, err := f.NewSession(ctx, Options{Headless: true})
		require.NoError(t, err)
		defer s.Close()

		require.NoError(t, s.Navigate(ctx, srv.URL+"/login"))
		submit, err := s.Find("button[type=submit]")
		require.NoError(t, err)
		require.NoError(t, s.Click(ctx, submit))
		assert.Equal(t, srv.URL+"/welcome", s.CurrentURL())
	})

	t.Run("rejected when certificates are verified", func(t *testing.T) {
		f := NewFactory(client.Options{}, nil, nil)
		s, err := f.NewSession(ctx, Options{Headless: true})
		require.NoError(t, err)
		defer s.Close()

		err = s.Navigate(ctx, srv.URL+"/login")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "certificate")
		assert.Empty(t, s.CurrentURL())
	})
}

func TestFormSessionClose(t *testing.T) {
	srv := newPortalServer(t)
	s := newTestSession()
	ctx := context.Background()

	require.NoError(t, s.Navigate(ctx, srv.URL+"/login"))
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	assert.ErrorIs(t, s.Navigate(ctx, srv.URL+"/login"), ErrClosed)
	_, err := s.Find("input")
	assert.ErrorIs(t, err, ErrClosed)
}

func TestIsXPath(t *testing.T) {
	tests := []struct {
		selector string
		want     string
		xpath    bool
	}{
		{"input[name=user]", "input[name=user]", false},
		{"#login button", "#login button", false},
		{"xpath://input", "//input", true},
		{"//input[@name='user']", "//input[@name='user']", true},
		{"(//button)[1]", "(//button)[1]", true},
	}

	for _, tt := range tests {
		t.Run(tt.selector, func(t *testing.T) {
			got, ok := isXPath(tt.selector)
			assert.Equal(t, tt.xpath, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestElementZero(t *testing.T) {
	var el Element
	assert.True(t, el.IsZero())
	assert.Empty(t, el.Tag())
	_, ok := el.Attr("name")
	assert.False(t, ok)
}
