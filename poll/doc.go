// Package poll implements the wait-for-completion helper: it repeatedly
// fetches a task's status until a terminal state is observed or a deadline
// elapses.
//
// The loop is an explicit state machine driven by two injected
// capabilities, a Fetcher (how to query the task) and a Clock (how time
// passes), so tests can simulate long waits without real delays. Progress
// is reported through an injected ProgressSink; the package never writes
// to the console.
package poll
