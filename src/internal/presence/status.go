package presence

import "github.com/maksimkurb/ikuai-bridge/src/internal/ikuai"

// Status is the per-target view exposed to hosts: every configured target,
// present or not.
type Status struct {
	TargetID string     `json:"target_id"`
	Kind     Kind       `json:"kind"`
	Name     string     `json:"name"`
	Present  bool       `json:"present"`
	Stale    bool       `json:"stale"`
	Missed   int        `json:"missed"`
	IP       string     `json:"ip,omitempty"`
	MAC      string     `json:"mac,omitempty"`
	Hostname string     `json:"hostname,omitempty"`
	Host     ikuai.Host `json:"host,omitempty"`
}

// Summarize joins the configured targets with the present records of one cycle.
func Summarize(targets []Target, records []Record) []Status {
	byID := make(map[string]Record, len(records))
	for _, r := range records {
		byID[r.TargetID] = r
	}

	out := make([]Status, 0, len(targets))
	for _, target := range targets {
		st := Status{
			TargetID: target.ID,
			Kind:     target.Kind,
			Name:     target.Name,
		}
		if r, ok := byID[target.ID]; ok {
			st.Present = true
			st.Stale = r.Stale
			st.Missed = r.Missed
			st.Host = r.Host
			st.IP = r.Host.IP()
			st.MAC = r.Host.MAC()
			st.Hostname = r.Host.Hostname()
		}
		out = append(out, st)
	}
	return out
}
