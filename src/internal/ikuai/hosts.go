package ikuai

import "strings"

// LANHostsRequest lists up to 2000 online LAN hosts.
var LANHostsRequest = Request{
	FuncName: "monitor_lanip",
	Action:   "show",
	Param:    map[string]any{"TYPE": "data,total", "limit": "0,2000", "ORDER_BY": "", "ORDER": ""},
}

// Host is one online LAN host record as reported by the router.
type Host map[string]any

// IP returns the host's IP address.
func (h Host) IP() string { return getString(h, "ip_addr") }

// MAC returns the host's MAC address in lower case.
func (h Host) MAC() string { return strings.ToLower(getString(h, "mac")) }

// Hostname returns the host's name, falling back to its comment.
func (h Host) Hostname() string {
	if name := getString(h, "hostname"); name != "" && name != "unknown" {
		return name
	}
	return getString(h, "comment")
}

// HostIndex indexes online hosts by IP and by lower-cased MAC.
type HostIndex struct {
	ByIP  map[string]Host `json:"by_ip"`
	ByMAC map[string]Host `json:"by_mac"`
}

// NewHostIndex builds an index from host records.
func NewHostIndex(hosts []Host) *HostIndex {
	idx := &HostIndex{
		ByIP:  make(map[string]Host, len(hosts)),
		ByMAC: make(map[string]Host, len(hosts)),
	}
	for _, h := range hosts {
		if ip := h.IP(); ip != "" {
			idx.ByIP[ip] = h
		}
		if mac := h.MAC(); mac != "" {
			idx.ByMAC[mac] = h
		}
	}
	return idx
}

// LookupIP returns the host with the given IP.
func (idx *HostIndex) LookupIP(ip string) (Host, bool) {
	h, ok := idx.ByIP[ip]
	return h, ok
}

// LookupMAC returns the host with the given MAC, ignoring case.
func (idx *HostIndex) LookupMAC(mac string) (Host, bool) {
	h, ok := idx.ByMAC[strings.ToLower(mac)]
	return h, ok
}

// Len returns the number of distinct hosts by IP or MAC, whichever is larger.
func (idx *HostIndex) Len() int {
	if len(idx.ByIP) > len(idx.ByMAC) {
		return len(idx.ByIP)
	}
	return len(idx.ByMAC)
}

// ParseHosts builds a HostIndex from a LAN host listing.
func ParseHosts(resp *Response) *HostIndex {
	items := getObjects(resp.Data, "data")
	hosts := make([]Host, 0, len(items))
	for _, item := range items {
		hosts = append(hosts, Host(item))
	}
	return NewHostIndex(hosts)
}
