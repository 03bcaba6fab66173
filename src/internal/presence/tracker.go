package presence

import (
	"strings"

	"github.com/maksimkurb/ikuai-bridge/src/internal/ikuai"
)

// DefaultGrace is the number of consecutive missed cycles tolerated by default.
const DefaultGrace = 2

// Kind selects which host index a target is looked up in.
type Kind string

const (
	KindIP  Kind = "ip"
	KindMAC Kind = "mac"
)

// Target is one tracked device.
type Target struct {
	ID    string `json:"id"`
	Kind  Kind   `json:"kind"`
	Name  string `json:"name"`
	Grace int    `json:"grace"`
}

// NewTarget builds a target with a normalized ID. MAC addresses are lower-cased;
// a negative grace is treated as zero.
func NewTarget(id string, kind Kind, name string, grace int) Target {
	id = strings.TrimSpace(id)
	if kind == KindMAC {
		id = strings.ToLower(id)
	}
	if grace < 0 {
		grace = 0
	}
	if name == "" {
		name = id
	}
	return Target{ID: id, Kind: kind, Name: name, Grace: grace}
}

// Record is emitted for every target considered present in a cycle.
type Record struct {
	TargetID string     `json:"target_id"`
	Kind     Kind       `json:"kind"`
	Name     string     `json:"name"`
	Stale    bool       `json:"stale"`
	Missed   int        `json:"missed"`
	Host     ikuai.Host `json:"host"`
}

type state struct {
	lastSeen ikuai.Host
	missed   int
}

// Tracker damps presence flapping: a device that disappears from the router's
// host table keeps being reported for up to Grace consecutive cycles.
//
// A Tracker is not safe for concurrent use; the poller calls Resolve from its
// serialized refresh cycle only.
type Tracker struct {
	states map[string]*state
	last   []Record
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{states: make(map[string]*state)}
}

// Resolve updates per-target state from the current host index and returns the
// records of present targets in target order.
//
// A nil index means the host listing could not be fetched this cycle: nothing
// decays and the previous cycle's records are returned again.
func (t *Tracker) Resolve(index *ikuai.HostIndex, targets []Target) []Record {
	if index == nil {
		return t.frozen(targets)
	}

	records := make([]Record, 0, len(targets))
	for _, target := range targets {
		st, ok := t.states[target.ID]
		if !ok {
			st = &state{}
			t.states[target.ID] = st
		}

		if host, found := lookup(index, target); found {
			st.lastSeen = host
			st.missed = 0
			records = append(records, newRecord(target, host, false, 0))
			continue
		}

		if st.lastSeen != nil && st.missed < target.Grace {
			st.missed++
			records = append(records, newRecord(target, st.lastSeen, true, st.missed))
			continue
		}

		st.lastSeen = nil
	}

	t.last = records
	return cloneRecords(records)
}

// Reset drops all per-target state.
func (t *Tracker) Reset() {
	t.states = make(map[string]*state)
	t.last = nil
}

// Missed returns the consecutive missed cycles for a target.
func (t *Tracker) Missed(id string) int {
	if st, ok := t.states[id]; ok {
		return st.missed
	}
	return 0
}

func (t *Tracker) frozen(targets []Target) []Record {
	wanted := make(map[string]struct{}, len(targets))
	for _, target := range targets {
		wanted[target.ID] = struct{}{}
	}
	var out []Record
	for _, r := range t.last {
		if _, ok := wanted[r.TargetID]; ok {
			out = append(out, r)
		}
	}
	return out
}

func lookup(index *ikuai.HostIndex, target Target) (ikuai.Host, bool) {
	if target.Kind == KindMAC {
		return index.LookupMAC(target.ID)
	}
	return index.LookupIP(target.ID)
}

func newRecord(target Target, host ikuai.Host, stale bool, missed int) Record {
	return Record{
		TargetID: target.ID,
		Kind:     target.Kind,
		Name:     target.Name,
		Stale:    stale,
		Missed:   missed,
		Host:     host,
	}
}

func cloneRecords(records []Record) []Record {
	out := make([]Record, len(records))
	copy(out, records)
	return out
}
