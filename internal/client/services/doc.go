// Package services holds the client state owners: auth, credits, meetings
// and messaging, plus the stateless directory and admin services.
//
// Each stateful service guards one slice of state with a mutex, exposes a
// snapshot through State and pushes every change to Subscribe callbacks.
// Mutations go through the REST adapter and then re-read server truth;
// balances and meeting statuses are never patched locally. A response that
// arrives after its context was cancelled is dropped and ctx.Err() is
// returned.
package services
