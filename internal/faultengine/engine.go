// Package faultengine implements the fault engine (C4): given a Redis
// command and the fault registry, it decides whether to delay, error, or
// drop the current request. It also provides the cancellable delay and the
// RESP error encoding; writing the error reply and closing the connection
// are left to the proxy session.
package faultengine

import (
	"context"
	"time"

	"github.com/Toyota-Connected-India/red-monkey-go/internal/faultstore"
)

// Kind distinguishes the shape of a FaultDecision without exposing the
// registry's FaultType directly, keeping the engine's public contract
// independent of the store's internal representation.
type Kind int

const (
	// PassThrough forwards the request unchanged.
	PassThrough Kind = iota
	// DelayThenPass suspends forwarding for Duration, then forwards.
	DelayThenPass
	// ReplyErrorAndDiscard writes ErrorMsg to the client and discards
	// the request instead of forwarding it.
	ReplyErrorAndDiscard
	// Drop closes both sockets of the session immediately.
	Drop
)

// Decision is the ephemeral result of evaluating one client request
// against the registry.
type Decision struct {
	Kind     Kind
	Duration time.Duration
	ErrorMsg string
}

// Decide resolves the fault decision for cmdUpper: pass through, delay,
// reply with a synthetic error, or drop the connection, based on any
// fault plan registered for the command (falling back to the wildcard
// plan). It also records the request in the registry's stats.
func Decide(reg *faultstore.Registry, cmdUpper string) Decision {
	reg.RecordRequest()

	plan, ok := reg.LookupForCommand(cmdUpper)
	if !ok {
		return Decision{Kind: PassThrough}
	}

	switch plan.FaultType {
	case faultstore.Delay:
		return Decision{Kind: DelayThenPass, Duration: time.Duration(plan.DurationMs) * time.Millisecond}
	case faultstore.Error:
		return Decision{Kind: ReplyErrorAndDiscard, ErrorMsg: plan.ErrorMsg}
	case faultstore.DropConn:
		return Decision{Kind: Drop}
	default:
		return Decision{Kind: PassThrough}
	}
}

// Sleep performs a Delay decision's wait, cancellable via ctx: if ctx is
// done before d elapses, Sleep returns ctx.Err() so the caller can
// abandon the held frame and tear the session down instead of forwarding
// it.
func Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// EncodeError renders a RESP error reply for msg: "-<msg>\r\n". Callers
// must have already validated msg contains no CR/LF (the registry enforces
// this at Create time), so this performs no further escaping.
func EncodeError(msg string) []byte {
	out := make([]byte, 0, len(msg)+3)
	out = append(out, '-')
	out = append(out, msg...)
	out = append(out, '\r', '\n')
	return out
}
