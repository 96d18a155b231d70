// Package eventbus implements the publish/subscribe control plane that
// coordinates mutations to shared effect state between the control
// transport and the effect instances (spec §4.6).
//
// The original source used a process-global EventManager singleton; per
// spec §9's redesign note, this implementation makes the bus an explicit
// collaborator constructed once and passed into every component that
// needs it, which removes the hidden global and lets tests build an
// isolated bus per case. The synchronous, typed-per-event dispatch
// semantics are preserved exactly.
package eventbus

import "sync"

// Token is an opaque per-event subscription id. Passing it to Off
// removes exactly that subscription.
type Token uint64

// Handler is any function value. The bus is polymorphic over a
// per-event argument shape: callers type-assert a Handler back to the
// concrete function type they registered before invoking it, via the
// event-specific wrapper helpers (see events.go).
type Handler interface{}

type subscription struct {
	token   Token
	handler Handler
}

// Bus is a synchronous, typed publish/subscribe registry. Emits run
// every live subscriber for a name on the calling goroutine, in
// registration order; handlers may themselves emit (re-entrance is
// permitted, matching spec §4.6).
type Bus struct {
	mu        sync.Mutex
	nextToken Token
	subs      map[string][]subscription
}

// New constructs an empty bus.
func New() *Bus {
	return &Bus{subs: make(map[string][]subscription)}
}

// on registers handler under name and returns a token unique within
// that name. Unexported: callers go through the typed On* wrappers in
// events.go so a handler's signature can never drift from its event's
// contract.
func (b *Bus) on(name string, handler Handler) Token {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextToken++
	tok := b.nextToken
	b.subs[name] = append(b.subs[name], subscription{token: tok, handler: handler})
	return tok
}

// Off removes the subscription registered under name with the given
// token. A no-op if the token is not present.
func (b *Bus) Off(name string, token Token) {
	b.mu.Lock()
	defer b.mu.Unlock()

	list := b.subs[name]
	for i, s := range list {
		if s.token == token {
			b.subs[name] = append(list[:i], list[i+1:]...)
			return
		}
	}
}

// handlersFor returns a snapshot of the current subscriber list for
// name, so dispatch never races a concurrent On/Off on the same event.
func (b *Bus) handlersFor(name string) []Handler {
	b.mu.Lock()
	defer b.mu.Unlock()

	list := b.subs[name]
	out := make([]Handler, len(list))
	for i, s := range list {
		out[i] = s.handler
	}
	return out
}
