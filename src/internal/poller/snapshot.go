package poller

import (
	"time"

	"github.com/maksimkurb/ikuai-bridge/src/internal/ikuai"
	"github.com/maksimkurb/ikuai-bridge/src/internal/presence"
)

// Snapshot is one internally consistent set of values produced by a single
// polling cycle. It is never modified after Refresh returns it.
type Snapshot struct {
	Timestamp  time.Time           `json:"timestamp"`
	Duration   time.Duration       `json:"duration"`
	System     ikuai.SystemMetrics `json:"system"`
	WAN        ikuai.WANInfo       `json:"wan"`
	WAN6       ikuai.IPv6Info      `json:"wan6"`
	LAN6       ikuai.IPv6Info      `json:"lan6"`
	MACControl []ikuai.ACLEntry    `json:"mac_control"`
	// Switches holds only switches whose state could be resolved.
	Switches []ikuai.SwitchState `json:"switches"`
	// Hosts is nil when the host listing failed this cycle.
	Hosts          *ikuai.HostIndex  `json:"hosts,omitempty"`
	HostsAvailable bool              `json:"hosts_available"`
	Presence       []presence.Record `json:"presence"`
	Targets        []presence.Status `json:"targets"`
	// Failures maps a sub-fetch name to the error it failed with.
	Failures map[string]string `json:"failures,omitempty"`
}

// Switch returns the state of the named switch.
func (s *Snapshot) Switch(name string) (ikuai.SwitchState, bool) {
	for _, sw := range s.Switches {
		if sw.Name == name {
			return sw, true
		}
	}
	return ikuai.SwitchState{}, false
}

// Present reports whether the target with the given ID is present.
func (s *Snapshot) Present(id string) bool {
	for _, r := range s.Presence {
		if r.TargetID == id {
			return true
		}
	}
	return false
}

// ACLEntry returns the MAC access-control entry with the given id.
func (s *Snapshot) ACLEntry(id int) (ikuai.ACLEntry, bool) {
	for _, e := range s.MACControl {
		if e.ID == id {
			return e, true
		}
	}
	return ikuai.ACLEntry{}, false
}
