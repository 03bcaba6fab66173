package ikuaitest

// Fixture host records used by LoadDefaults.
var (
	PhoneHost = map[string]any{
		"ip_addr":  "192.168.9.21",
		"mac":      "AA:BB:CC:DD:EE:FF",
		"hostname": "phone",
		"upload":   1024,
		"download": 4096,
	}
	LaptopHost = map[string]any{
		"ip_addr":  "192.168.9.30",
		"mac":      "11:22:33:44:55:66",
		"hostname": "laptop",
	}
)

// StatusData is a representative homepage/show sysstat,ac_status payload.
func StatusData() map[string]any {
	return map[string]any{
		"sysstat": map[string]any{
			"hostname": "iKuai",
			"verinfo":  map[string]any{"verstring": "3.7.10 x64 Build202401011200"},
			"cpu":      []any{"12.50%", "10%", "15%"},
			"cputemp":  []any{48},
			"memory": map[string]any{
				"total":     8000000,
				"available": 6000000,
				"used":      "25%",
			},
			"uptime":      273906,
			"online_user": map[string]any{"count": 17, "count_2g": 5, "count_5g": 12},
			"stream": map[string]any{
				"connect_num": 1234,
				"upload":      1572864,
				"download":    10485760,
				"total_up":    5368709120,
				"total_down":  53687091200,
			},
		},
		"ac_status": map[string]any{"ap_count": 3, "ap_online": 2},
	}
}

// WANData is a lan/show ether_info,snapshoot payload with a direct default route.
func WANData(updatetime int64) map[string]any {
	return map[string]any{
		"snapshoot_wan": []any{
			map[string]any{"interface": "wan1", "default_route": 1, "internet": 1, "ip_addr": "100.64.1.2", "updatetime": updatetime},
			map[string]any{"interface": "wan2", "default_route": 0, "internet": 1, "ip_addr": "10.0.0.2", "updatetime": 0},
		},
	}
}

// LoadDefaults registers realistic replies for every call a polling cycle makes.
// The ARP filter switch reports on.
func (r *Router) LoadDefaults() {
	r.HandleData("homepage", "show", "sysstat,ac_status", StatusData())
	r.HandleData("lan", "show", "ether_info,snapshoot", WANData(0))
	r.HandleData("ipv6", "show", "data,total", map[string]any{
		"data": []any{map[string]any{"dhcp6_ip_addr": "2001:db8::2", "interface": "wan1"}},
	})
	r.HandleData("ipv6", "show", "lan_data,lan_total", map[string]any{
		"lan_data": []any{map[string]any{"ipv6_addr": "2001:db8:1::1", "interface": "lan1"}},
	})
	r.HandleData("acl_mac", "show", "total,data", map[string]any{
		"total": 2,
		"data": []any{
			map[string]any{"id": 1, "mac": "AA:BB:CC:DD:EE:FF", "comment": "phone", "enabled": "yes"},
			map[string]any{"id": 2, "mac": "11:22:33:44:55:66", "comment": "", "enabled": "no"},
		},
	})
	r.SetHosts(PhoneHost, LaptopHost)
	r.HandleData("arp", "show", "options", map[string]any{"arp_filter": 1})
}

// SetHosts replaces the online LAN host list.
func (r *Router) SetHosts(hosts ...map[string]any) {
	list := make([]any, 0, len(hosts))
	for _, h := range hosts {
		list = append(list, h)
	}
	r.HandleData("monitor_lanip", "show", "data,total", map[string]any{
		"total": len(list),
		"data":  list,
	})
}
