// Package session owns the set of open editor sessions.
//
// A session is a named text buffer with its own view state (cursor, scroll)
// and optional file binding. The Registry keeps sessions in insertion order
// (the tab bar order), tracks which one is visible and which one was visible
// before it, and remembers the last ten closed sessions so they can be
// reopened.
//
// Invariants:
//   - No two live sessions share a name.
//   - Once a session has been created, closing sessions never leaves the
//     registry empty; closing the last one creates a blank replacement.
//   - Every operation is atomic as seen by subscribers. Events produced by
//     an operation are delivered after the registry lock is released, in
//     the order they were produced.
//
// Caller mistakes (unknown names, taken names) are logged at warn level and
// reported through a false return. No operation returns an error.
//
// Example Usage:
//
//	reg := session.NewRegistry(view, editor.NewBuffer, session.WithLogger(log))
//	cancel := reg.Subscribe(func(ev session.Event) { ... })
//	defer cancel()
//	reg.CreateSession(session.Spec{Code: "print(1)", IsFocused: true})
//	reg.RenameSession("init.lua", "")
package session
