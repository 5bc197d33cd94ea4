// Package gate decides whether the two parties of an application may
// exchange messages, based solely on the application's status.
package gate

import (
	"fmt"
	"slices"
	"strings"
)

// Status is an application lifecycle state.
type Status string

const (
	Applied     Status = "applied"
	Viewed      Status = "viewed"
	Shortlisted Status = "shortlisted"
	Rejected    Status = "rejected"
	Hired       Status = "hired"
)

var knownStatuses = []Status{Applied, Viewed, Shortlisted, Rejected, Hired}

// DefaultUnlocked is the unlocked set used when configuration names none.
var DefaultUnlocked = []Status{Shortlisted}

// ParseStatus normalises s and reports whether it names a known status.
func ParseStatus(s string) (Status, bool) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if !slices.Contains(knownStatuses, st) {
		return "", false
	}
	return st, true
}

// KnownStatuses returns the closed set of application statuses.
func KnownStatuses() []Status {
	return slices.Clone(knownStatuses)
}

// Gate holds the set of statuses for which messaging is unlocked.
type Gate struct {
	unlocked map[Status]struct{}
}

// New builds a gate from an explicit unlocked set. Unknown statuses and an
// empty set are rejected.
func New(unlocked []Status) (*Gate, error) {
	if len(unlocked) == 0 {
		return nil, fmt.Errorf("unlocked status set is empty")
	}
	g := &Gate{unlocked: make(map[Status]struct{}, len(unlocked))}
	for _, s := range unlocked {
		st, ok := ParseStatus(string(s))
		if !ok {
			return nil, fmt.Errorf("unknown application status %q", s)
		}
		g.unlocked[st] = struct{}{}
	}
	return g, nil
}

// Parse builds a gate from status names, as read from configuration.
func Parse(names []string) (*Gate, error) {
	statuses := make([]Status, 0, len(names))
	for _, n := range names {
		statuses = append(statuses, Status(n))
	}
	return New(statuses)
}

// Allowed reports whether messaging is permitted for an application in the
// given status. Unrecognised statuses are never allowed.
func (g *Gate) Allowed(status string) bool {
	if g == nil {
		return false
	}
	st, ok := ParseStatus(status)
	if !ok {
		return false
	}
	_, unlocked := g.unlocked[st]
	return unlocked
}

// Unlocked returns the unlocked set in lifecycle order.
func (g *Gate) Unlocked() []Status {
	if g == nil {
		return nil
	}
	var out []Status
	for _, s := range knownStatuses {
		if _, ok := g.unlocked[s]; ok {
			out = append(out, s)
		}
	}
	return out
}
