package ikuai

import "time"

var (
	// WANRequest lists physical interfaces and the WAN snapshot.
	WANRequest = Request{
		FuncName: "lan",
		Action:   "show",
		Param:    map[string]any{"TYPE": "ether_info,snapshoot"},
	}
	// WAN6Request lists WAN IPv6 addresses.
	WAN6Request = Request{
		FuncName: "ipv6",
		Action:   "show",
		Param:    map[string]any{"TYPE": "data,total", "limit": "0,20", "ORDER_BY": "", "ORDER": ""},
	}
	// LAN6Request lists LAN IPv6 addresses.
	LAN6Request = Request{
		FuncName: "ipv6",
		Action:   "show",
		Param:    map[string]any{"TYPE": "lan_data,lan_total", "limit": "0,20", "ORDER_BY": "", "ORDER": ""},
	}
)

// VLANRequest lists the PPPoE/VLAN sub-lines of a WAN interface.
func VLANRequest(iface string) Request {
	return Request{
		FuncName: "wan",
		Action:   "show",
		Param: map[string]any{
			"TYPE":          "vlan_data,vlan_total",
			"ORDER_BY":      "vlan_name",
			"ORDER":         "asc",
			"vlan_internet": 2,
			"interface":     iface,
			"limit":         "0,20",
		},
	}
}

// NoDefaultGateway is shown instead of the WAN address when no line carries the default route.
const NoDefaultGateway = "no default gateway"

// WANInfo describes the line that carries the default route.
type WANInfo struct {
	IP              string         `json:"ip"`
	Interface       string         `json:"interface,omitempty"`
	HasDefaultRoute bool           `json:"has_default_route"`
	UptimeSeconds   int64          `json:"uptime_seconds"`
	Uptime          string         `json:"uptime"`
	Attrs           map[string]any `json:"attrs,omitempty"`
}

// DisplayIP returns the WAN address or the NoDefaultGateway marker.
func (w WANInfo) DisplayIP() string {
	if !w.HasDefaultRoute {
		return NoDefaultGateway
	}
	return w.IP
}

// IPv6Info is the first IPv6 entry of a WAN or LAN listing.
type IPv6Info struct {
	Address string         `json:"address"`
	Attrs   map[string]any `json:"attrs,omitempty"`
}

// ParseWAN returns the default-route line and the interfaces of VLAN/PPPoE
// parents (internet type 3 or 4) that need a VLANRequest to resolve.
// A line that carries the default route directly wins over VLAN parents.
func ParseWAN(resp *Response, now time.Time) (WANInfo, []string) {
	var info WANInfo
	var vlanParents []string

	for _, item := range getObjects(resp.Data, "snapshoot_wan") {
		if getInt(item, "default_route") == 1 {
			if info.HasDefaultRoute {
				continue
			}
			info = WANInfo{
				IP:              getString(item, "ip_addr"),
				Interface:       getString(item, "interface"),
				HasDefaultRoute: true,
				Attrs:           item,
			}
			setUptime(&info, getInt64(item, "updatetime"), now)
			continue
		}
		switch getInt(item, "internet") {
		case 3, 4:
			if iface := getString(item, "interface"); iface != "" {
				vlanParents = append(vlanParents, iface)
			}
		}
	}

	if info.HasDefaultRoute {
		return info, nil
	}
	return info, vlanParents
}

// ParseVLAN returns the PPPoE sub-line that carries the default route, if any.
func ParseVLAN(resp *Response, iface string, now time.Time) (WANInfo, bool) {
	for _, item := range getObjects(resp.Data, "vlan_data") {
		updated := getInt64(item, "pppoe_updatetime")
		if updated != 0 && getInt(item, "default_route") == 1 {
			info := WANInfo{
				IP:              getString(item, "pppoe_ip_addr"),
				Interface:       iface,
				HasDefaultRoute: true,
				Attrs:           item,
			}
			setUptime(&info, updated, now)
			return info, true
		}
	}
	return WANInfo{}, false
}

// setUptime derives uptime from a unix timestamp; 0 means unknown.
func setUptime(info *WANInfo, updated int64, now time.Time) {
	if updated == 0 {
		return
	}
	info.UptimeSeconds = now.Unix() - updated
	if info.UptimeSeconds < 0 {
		info.UptimeSeconds = 0
	}
	info.Uptime = FormatUptime(info.UptimeSeconds)
}

// ParseWAN6 returns the first WAN IPv6 entry.
func ParseWAN6(resp *Response) IPv6Info {
	return firstIPv6(resp, "data", "dhcp6_ip_addr")
}

// ParseLAN6 returns the first LAN IPv6 entry.
func ParseLAN6(resp *Response) IPv6Info {
	return firstIPv6(resp, "lan_data", "ipv6_addr")
}

func firstIPv6(resp *Response, listKey, addrKey string) IPv6Info {
	items := getObjects(resp.Data, listKey)
	if len(items) == 0 {
		return IPv6Info{}
	}
	return IPv6Info{
		Address: getString(items[0], addrKey),
		Attrs:   items[0],
	}
}
