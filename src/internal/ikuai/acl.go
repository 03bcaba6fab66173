package ikuai

import (
	"strconv"
	"strings"
)

// ACLRequest lists the MAC access-control entries.
var ACLRequest = Request{
	FuncName: "acl_mac",
	Action:   "show",
	Param:    map[string]any{"TYPE": "total,data", "limit": "0,100", "ORDER_BY": "", "ORDER": ""},
}

// ACLEntry is one MAC access-control rule.
type ACLEntry struct {
	ID      int            `json:"id"`
	MAC     string         `json:"mac"`
	Comment string         `json:"comment,omitempty"`
	Enabled bool           `json:"enabled"`
	Attrs   map[string]any `json:"attrs,omitempty"`
}

// Label returns a short display name: the last six MAC hex digits plus the comment.
func (e ACLEntry) Label() string {
	mac := strings.ReplaceAll(e.MAC, ":", "")
	if len(mac) > 6 {
		mac = mac[len(mac)-6:]
	}
	if e.Comment == "" {
		return "mac_control_" + mac
	}
	return "mac_control_" + mac + " (" + e.Comment + ")"
}

// ParseACL returns the MAC access-control entries. Entries without an id are skipped.
func ParseACL(resp *Response) []ACLEntry {
	var entries []ACLEntry
	for _, item := range getObjects(resp.Data, "data") {
		id, ok := asInt(item["id"])
		if !ok {
			continue
		}
		entries = append(entries, ACLEntry{
			ID:      id,
			MAC:     strings.ToLower(getString(item, "mac")),
			Comment: getString(item, "comment"),
			Enabled: isEnabled(item["enabled"]),
			Attrs:   item,
		})
	}
	return entries
}

func isEnabled(v any) bool {
	switch t := v.(type) {
	case string:
		return t == "yes" || t == "1" || t == "true"
	case bool:
		return t
	default:
		n, ok := asInt(v)
		return ok && n != 0
	}
}

// ACLToggleRequest enables (up) or disables (down) an access-control entry.
func ACLToggleRequest(id int, enable bool) Request {
	action := "down"
	if enable {
		action = "up"
	}
	return Request{
		FuncName: "acl_mac",
		Action:   action,
		Param:    map[string]any{"id": strconv.Itoa(id)},
	}
}
