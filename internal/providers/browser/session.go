package browser

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/net/html"
)

var (
	// ErrUnsupported is returned by sessions that cannot perform an operation.
	ErrUnsupported = errors.New("operation not supported by this session")
	// ErrElementNotFound is returned when a selector matches nothing.
	ErrElementNotFound = errors.New("element not found")
	// ErrClosed is returned by operations on a closed session.
	ErrClosed = errors.New("session is closed")
)

// Options configures a new session.
type Options struct {
	// Headless asks for a session without a visible window.
	Headless bool
}

// Session is a single browser window driven by the login flow.
type Session interface {
	// Navigate loads rawURL and makes it the current page.
	Navigate(ctx context.Context, rawURL string) error
	// Find locates the first element matching a CSS selector, or an XPath
	// expression when prefixed with "xpath:" or starting with "/".
	Find(selector string) (Element, error)
	// SetText types value into a text control.
	SetText(el Element, value string) error
	// Click activates el.
	Click(ctx context.Context, el Element) error
	// CurrentURL returns the URL of the current page.
	CurrentURL() string
	// Close releases the session. Calling it more than once is safe.
	Close() error
}

// Factory creates sessions.
type Factory interface {
	NewSession(ctx context.Context, opts Options) (Session, error)
}

// FactoryFunc adapts a function to Factory.
type FactoryFunc func(ctx context.Context, opts Options) (Session, error)

// NewSession calls f.
func (f FactoryFunc) NewSession(ctx context.Context, opts Options) (Session, error) {
	return f(ctx, opts)
}

// Element is a handle to a node in the current page. The zero value refers
// to nothing.
type Element struct {
	node *html.Node
}

// Tag returns the lower-case element name.
func (e Element) Tag() string {
	if e.node == nil {
		return ""
	}
	return e.node.Data
}

// Attr returns the value of attribute name.
func (e Element) Attr(name string) (string, bool) {
	if e.node == nil {
		return "", false
	}
	for _, a := range e.node.Attr {
		if strings.EqualFold(a.Key, name) {
			return a.Val, true
		}
	}
	return "", false
}

// IsZero reports whether e refers to nothing.
func (e Element) IsZero() bool {
	return e.node == nil
}

func (e Element) attr(name string) string {
	v, _ := e.Attr(name)
	return v
}

// inputType returns the effective type of an input or button.
func (e Element) inputType() string {
	t := strings.ToLower(e.attr("type"))
	switch e.Tag() {
	case "button":
		if t == "" {
			return "submit"
		}
	case "input":
		if t == "" {
			return "text"
		}
	}
	return t
}

func (e Element) isSubmit() bool {
	switch e.Tag() {
	case "button":
		return e.inputType() == "submit"
	case "input":
		t := e.inputType()
		return t == "submit" || t == "image"
	}
	return false
}

func (e Element) form() Element {
	for n := e.node; n != nil; n = n.Parent {
		if n.Type == html.ElementNode && n.Data == "form" {
			return Element{node: n}
		}
	}
	return Element{}
}

// isXPath reports whether selector should be evaluated as XPath.
func isXPath(selector string) (string, bool) {
	if expr, ok := strings.CutPrefix(selector, "xpath:"); ok {
		return expr, true
	}
	if strings.HasPrefix(selector, "/") || strings.HasPrefix(selector, "(") {
		return selector, true
	}
	return selector, false
}
