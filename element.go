package html2uri

import (
	"context"
	"sync"
)

// Attributes understood by Element.
const (
	AttrSettings = "data-settings" // JSON-encoded Settings
	AttrContent  = "data-content"  // URI-encoded content; setting it triggers a render
	AttrURL      = "data-url"      // published image URI
	AttrError    = "data-error"    // published failure message
)

// ContentRenderer renders content to an image URI.
// Both Renderer and RendererPool implement it.
type ContentRenderer interface {
	Render(ctx context.Context, s Settings, content string) (*Result, error)
}

// Compile-time interface checks.
var (
	_ ContentRenderer = (*Renderer)(nil)
	_ ContentRenderer = (*RendererPool)(nil)
)

// AttributeChange describes one attribute mutation seen by observers.
type AttributeChange struct {
	Name     string
	OldValue string
	NewValue string
	Removed  bool
}

// Element is an attribute-driven render host. Writing AttrContent starts
// an asynchronous render using the settings in AttrSettings (or
// DefaultSettings when absent); the outcome is published by writing
// AttrURL on success or AttrError on failure. Observers registered with
// Observe see every attribute change, including the published ones.
//
// Each write of AttrContent is an independent request. When several are in
// flight, each publishes on completion, so the last one to finish wins.
// Observers are called outside the element lock, so concurrent publishes
// may reach an observer in a different order than they were stored. Read
// the final value with GetAttribute after Wait.
type Element struct {
	ctx      context.Context
	renderer ContentRenderer

	mu        sync.Mutex
	attrs     map[string]string
	observers map[int]func(AttributeChange)
	nextID    int

	inflight sync.WaitGroup
}

// NewElement creates an Element whose renders run under ctx.
func NewElement(ctx context.Context, r ContentRenderer) *Element {
	return &Element{
		ctx:       ctx,
		renderer:  r,
		attrs:     make(map[string]string),
		observers: make(map[int]func(AttributeChange)),
	}
}

// SetAttribute sets an attribute and notifies observers.
// Setting AttrContent triggers a render.
func (e *Element) SetAttribute(name, value string) {
	e.set(name, value)
	if name == AttrContent {
		e.contentChanged(value)
	}
}

// RemoveAttribute removes an attribute and notifies observers if it was set.
func (e *Element) RemoveAttribute(name string) {
	e.mu.Lock()
	old, ok := e.attrs[name]
	if !ok {
		e.mu.Unlock()
		return
	}
	delete(e.attrs, name)
	observers := e.snapshotObservers()
	e.mu.Unlock()

	notify(observers, AttributeChange{Name: name, OldValue: old, Removed: true})
}

// GetAttribute returns the value of an attribute and whether it is set.
func (e *Element) GetAttribute(name string) (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	v, ok := e.attrs[name]
	return v, ok
}

// HasAttribute reports whether an attribute is set.
func (e *Element) HasAttribute(name string) bool {
	_, ok := e.GetAttribute(name)
	return ok
}

// Observe registers fn for attribute changes and returns a function that
// unregisters it. fn runs on the goroutine that made the change and must
// not block. Changes made by different goroutines are not ordered.
func (e *Element) Observe(fn func(AttributeChange)) (unsubscribe func()) {
	e.mu.Lock()
	id := e.nextID
	e.nextID++
	e.observers[id] = fn
	e.mu.Unlock()

	return func() {
		e.mu.Lock()
		delete(e.observers, id)
		e.mu.Unlock()
	}
}

// Wait blocks until every render started so far has published.
func (e *Element) Wait() {
	e.inflight.Wait()
}

// contentChanged resolves the settings and content for a render request.
// Invalid settings or content are published right away; nothing
// asynchronous is started for them.
func (e *Element) contentChanged(encoded string) {
	settings := DefaultSettings()
	if raw, ok := e.GetAttribute(AttrSettings); ok {
		parsed, err := ParseSettings([]byte(raw))
		if err != nil {
			e.publishError(err)
			return
		}
		settings = parsed
	}

	content, err := decodeURIComponent(encoded)
	if err != nil {
		e.publishError(err)
		return
	}

	e.inflight.Add(1)
	go func() {
		defer e.inflight.Done()

		res, err := e.renderer.Render(e.ctx, settings, content)
		if err != nil {
			e.publishError(err)
			return
		}
		e.RemoveAttribute(AttrError)
		e.set(AttrURL, res.URI)
	}()
}

// publishError writes the failure where observers can see it.
func (e *Element) publishError(err error) {
	e.set(AttrError, err.Error())
}

// set stores an attribute without triggering a render.
func (e *Element) set(name, value string) {
	e.mu.Lock()
	old := e.attrs[name]
	e.attrs[name] = value
	observers := e.snapshotObservers()
	e.mu.Unlock()

	notify(observers, AttributeChange{Name: name, OldValue: old, NewValue: value})
}

// snapshotObservers copies the observer set. Caller must hold e.mu.
func (e *Element) snapshotObservers() []func(AttributeChange) {
	fns := make([]func(AttributeChange), 0, len(e.observers))
	for _, fn := range e.observers {
		fns = append(fns, fn)
	}
	return fns
}

func notify(observers []func(AttributeChange), change AttributeChange) {
	for _, fn := range observers {
		fn(change)
	}
}
