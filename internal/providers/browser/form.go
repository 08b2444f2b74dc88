package browser

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"github.com/gabriel-vasile/mimetype"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"

	"github.com/GriffinCanCode/wifi-login/internal/infrastructure/logging"
	"github.com/GriffinCanCode/wifi-login/internal/providers/http/client"
	"github.com/GriffinCanCode/wifi-login/internal/shared/id"
)

// FormSession is a headless session that drives HTML forms over plain HTTP.
// It keeps cookies and the current document between requests but runs no
// scripts, so it works for the simple form-based portals most venues use.
type FormSession struct {
	id        id.SessionID
	http      *client.Client
	logger    *logging.Logger
	sanitizer *bluemonday.Policy

	mu      sync.Mutex
	current string
	title   string
	root    *html.Node
	doc     *goquery.Document
	values  map[*html.Node]string
	history []string
	closed  bool
}

// NewFormSession creates a form session. The client should have cookies
// enabled so portal session state survives a form submission.
func NewFormSession(httpClient *client.Client, logger *logging.Logger) *FormSession {
	if logger == nil {
		logger = logging.NewNop()
	}
	sid := id.NewSessionID()
	return &FormSession{
		id:        sid,
		http:      httpClient,
		logger:    logger.Named("browser").With(zap.String("session_id", sid.String())),
		sanitizer: bluemonday.StrictPolicy(),
		values:    make(map[*html.Node]string),
	}
}

// ID returns the session identifier.
func (s *FormSession) ID() id.SessionID {
	return s.id
}

// Navigate fetches rawURL, following redirects, and loads the response.
func (s *FormSession) Navigate(ctx context.Context, rawURL string) error {
	if err := s.checkOpen(); err != nil {
		return err
	}

	resp, err := s.http.Get(ctx, rawURL, true)
	if err != nil {
		return fmt.Errorf("navigate %s: %w", rawURL, err)
	}
	return s.load(resp)
}

// Find locates the first element matching selector in the current page.
func (s *FormSession) Find(selector string) (Element, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return Element{}, ErrClosed
	}
	if s.root == nil {
		return Element{}, fmt.Errorf("%w: no document loaded", ErrElementNotFound)
	}

	if expr, ok := isXPath(selector); ok {
		node, err := htmlquery.Query(s.root, expr)
		if err != nil {
			return Element{}, fmt.Errorf("xpath %q: %w", expr, err)
		}
		if node == nil {
			return Element{}, fmt.Errorf("%w: %s", ErrElementNotFound, selector)
		}
		return Element{node: node}, nil
	}

	sel := s.doc.Find(selector).First()
	if sel.Length() == 0 {
		return Element{}, fmt.Errorf("%w: %s", ErrElementNotFound, selector)
	}
	return Element{node: sel.Get(0)}, nil
}

// SetText records value for a text-like control. The value is sent when the
// enclosing form is submitted.
func (s *FormSession) SetText(el Element, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if el.IsZero() {
		return ErrElementNotFound
	}
	switch el.Tag() {
	case "input":
		switch el.inputType() {
		case "submit", "image", "button", "reset", "checkbox", "radio", "file":
			return fmt.Errorf("%w: set text on %s input", ErrUnsupported, el.inputType())
		}
	case "textarea":
	default:
		return fmt.Errorf("%w: set text on <%s>", ErrUnsupported, el.Tag())
	}

	s.values[el.node] = value
	return nil
}

// Click follows a link or submits the form that owns a submit control.
func (s *FormSession) Click(ctx context.Context, el Element) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if el.IsZero() {
		return ErrElementNotFound
	}

	switch {
	case el.Tag() == "a":
		href, ok := el.Attr("href")
		if !ok {
			return fmt.Errorf("%w: link without href", ErrUnsupported)
		}
		target, err := s.resolve(href)
		if err != nil {
			return err
		}
		return s.Navigate(ctx, target)
	case el.isSubmit():
		form := el.form()
		if form.IsZero() {
			return fmt.Errorf("%w: submit control outside a form", ErrUnsupported)
		}
		return s.submit(ctx, form, el)
	case el.Tag() == "form":
		return s.submit(ctx, el, Element{})
	default:
		return fmt.Errorf("%w: click on <%s>", ErrUnsupported, el.Tag())
	}
}

// CurrentURL returns the URL of the loaded page.
func (s *FormSession) CurrentURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Title returns the sanitized title of the loaded page.
func (s *FormSession) Title() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.title
}

// History returns the URLs loaded so far, oldest first.
func (s *FormSession) History() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.history...)
}

// Close drops the loaded document. It is safe to call more than once.
func (s *FormSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	s.root = nil
	s.doc = nil
	s.values = nil
	s.logger.Debug("Closed session")
	return nil
}

func (s *FormSession) checkOpen() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	return nil
}

func (s *FormSession) load(resp *client.Response) error {
	var root *html.Node
	if isHTML(resp) {
		reader, err := charset.NewReader(bytes.NewReader(resp.Body), resp.ContentType())
		if err != nil {
			reader = bytes.NewReader(resp.Body)
		}
		root, err = html.Parse(reader)
		if err != nil {
			return fmt.Errorf("parse %s: %w", resp.FinalURL, err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	s.current = resp.FinalURL
	s.history = append(s.history, resp.FinalURL)
	s.values = make(map[*html.Node]string)
	s.root = root
	s.doc = nil
	s.title = ""
	if root != nil {
		s.doc = goquery.NewDocumentFromNode(root)
		s.title = strings.TrimSpace(s.sanitizer.Sanitize(s.doc.Find("title").First().Text()))
	}

	s.logger.Info("Loaded page",
		zap.String("url", resp.FinalURL),
		zap.Int("status", resp.StatusCode),
		zap.String("title", s.title),
		zap.Bool("html", root != nil),
	)
	return nil
}

func isHTML(resp *client.Response) bool {
	if ct := resp.ContentType(); ct != "" {
		if strings.Contains(ct, "html") {
			return true
		}
	}
	if len(resp.Body) == 0 {
		return false
	}
	mt := mimetype.Detect(resp.Body)
	return mt.Is("text/html") || mt.Is("application/xhtml+xml")
}

func (s *FormSession) resolve(ref string) (string, error) {
	s.mu.Lock()
	current := s.current
	s.mu.Unlock()

	base, err := url.Parse(current)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}
	parsed, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return "", fmt.Errorf("invalid URL %q: %w", ref, err)
	}
	return base.ResolveReference(parsed).String(), nil
}

func (s *FormSession) submit(ctx context.Context, form, submitter Element) error {
	s.mu.Lock()
	values := s.formValues(form, submitter)
	s.mu.Unlock()

	action, err := s.resolve(form.attr("action"))
	if err != nil {
		return err
	}
	method := strings.ToUpper(form.attr("method"))
	if v, ok := submitter.Attr("formmethod"); ok {
		method = strings.ToUpper(v)
	}

	s.logger.Info("Submitting form",
		zap.String("action", action),
		zap.String("method", method),
		zap.Int("fields", len(values)),
	)

	if method != "POST" {
		target, err := url.Parse(action)
		if err != nil {
			return fmt.Errorf("invalid form action: %w", err)
		}
		target.RawQuery = values.Encode()
		return s.Navigate(ctx, target.String())
	}

	if err := s.checkOpen(); err != nil {
		return err
	}
	resp, err := s.http.PostForm(ctx, action, values)
	if err != nil {
		return fmt.Errorf("submit %s: %w", action, err)
	}
	return s.load(resp)
}

// formValues collects the successful controls of form. Caller holds s.mu.
func (s *FormSession) formValues(form, submitter Element) url.Values {
	values := url.Values{}

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			el := Element{node: n}
			name := el.attr("name")
			_, disabled := el.Attr("disabled")
			if name != "" && !disabled {
				s.collect(values, el, name, submitter)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(form.node)
	return values
}

func (s *FormSession) collect(values url.Values, el Element, name string, submitter Element) {
	typed, hasTyped := s.values[el.node]

	switch el.Tag() {
	case "input":
		switch el.inputType() {
		case "submit", "image":
			if el.node == submitter.node {
				values.Add(name, el.attr("value"))
			}
		case "button", "reset", "file":
		case "checkbox", "radio":
			if _, checked := el.Attr("checked"); checked {
				v, ok := el.Attr("value")
				if !ok {
					v = "on"
				}
				values.Add(name, v)
			}
		default:
			if hasTyped {
				values.Add(name, typed)
			} else {
				values.Add(name, el.attr("value"))
			}
		}
	case "button":
		if el.node == submitter.node {
			values.Add(name, el.attr("value"))
		}
	case "textarea":
		if hasTyped {
			values.Add(name, typed)
		} else {
			values.Add(name, goquery.NewDocumentFromNode(el.node).Text())
		}
	case "select":
		sel := goquery.NewDocumentFromNode(el.node)
		opt := sel.Find("option[selected]").First()
		if opt.Length() == 0 {
			opt = sel.Find("option").First()
		}
		if opt.Length() > 0 {
			v, ok := opt.Attr("value")
			if !ok {
				v = strings.TrimSpace(opt.Text())
			}
			values.Add(name, v)
		}
	}
}
