// Package cli provides the interactive ExpertConnect command-line client.
//
// NewApp wires configuration, the token store, the REST adapter, the
// services, the realtime socket and the call stack. App.Run resumes a saved
// session, starts the connectivity watcher and blocks in the REPL:
//
//	ec (ada online)> meetings upcoming
//	ec (ada online)> join 12
//	call #12 (awaiting-peer)> end
//
// Commands map to the pages of the web client: dashboard, experts, meetings,
// the meeting room, messages, credits, profile and admin. Type "help" for the
// list available in the current state.
package cli
