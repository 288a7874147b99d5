// Package faultstore implements the fault registry (C1): a concurrent
// in-memory map from Redis command to fault plan, shared read-mostly by
// every proxy session and mutated by the control plane.
package faultstore

import (
	"strings"
	"time"
)

// FaultType identifies the kind of disruption a plan injects.
type FaultType string

const (
	// Delay suspends forwarding of the matching request for DurationMs.
	Delay FaultType = "Delay"
	// Error replies to the client with a synthetic RESP error instead of
	// forwarding the request upstream.
	Error FaultType = "Error"
	// DropConn closes both sockets of the session immediately.
	DropConn FaultType = "DropConn"
)

// Wildcard is the sentinel command key matching any Redis command that has
// no more specific plan.
const Wildcard = "*"

// FaultPlan is one configured behavior. Plans are immutable once created;
// an update replaces the plan wholesale rather than mutating it in place.
type FaultPlan struct {
	Name         string
	Description  string
	FaultType    FaultType
	DurationMs   uint64
	ErrorMsg     string
	Command      string
	LastModified time.Time
}

// normalizeCommand upper-cases a command token, leaving the wildcard as-is.
func normalizeCommand(cmd string) string {
	if cmd == Wildcard {
		return Wildcard
	}
	return strings.ToUpper(cmd)
}

// validate checks the Invalid criteria from the registry contract. It does
// not check for name/command conflicts against other plans; that is the
// registry's job since it requires the full index.
func (p FaultPlan) validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrInvalid
	}
	if strings.TrimSpace(p.Command) == "" {
		return ErrInvalid
	}
	switch p.FaultType {
	case Delay:
		if p.DurationMs == 0 {
			return ErrInvalid
		}
	case Error:
		if p.ErrorMsg == "" {
			return ErrInvalid
		}
		if strings.ContainsAny(p.ErrorMsg, "\r\n") {
			return ErrInvalid
		}
	case DropConn:
		// no required fields
	default:
		return ErrInvalid
	}
	return nil
}
