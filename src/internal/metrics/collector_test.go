package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maksimkurb/ikuai-bridge/src/internal/ikuai"
	"github.com/maksimkurb/ikuai-bridge/src/internal/poller"
	"github.com/maksimkurb/ikuai-bridge/src/internal/presence"
)

type fakeSource struct {
	snap      *poller.Snapshot
	available bool
	stats     poller.Stats
	session   ikuai.SessionState
}

func (f *fakeSource) Last() *poller.Snapshot      { return f.snap }
func (f *fakeSource) Available() bool             { return f.available }
func (f *fakeSource) Stats() poller.Stats         { return f.stats }
func (f *fakeSource) Session() ikuai.SessionState { return f.session }

func sampleSource() *fakeSource {
	return &fakeSource{
		available: true,
		stats: poller.Stats{
			Cycles:       12,
			Failures:     2,
			AuthExpired:  1,
			Actions:      3,
			LastSuccess:  time.Unix(1700000000, 0),
			LastDuration: 250 * time.Millisecond,
		},
		session: ikuai.SessionState{HasKey: true, Logins: 2},
		snap: &poller.Snapshot{
			System: ikuai.SystemMetrics{
				CPUPercent:     12.5,
				CPUTemperature: 48,
				HasCPUTemp:     true,
				MemoryPercent:  25,
				UptimeSeconds:  273906,
				OnlineUsers:    17,
				Connections:    1234,
				UploadMBps:     1.5,
				DownloadMBps:   10,
			},
			WAN:        ikuai.WANInfo{IP: "100.64.1.2", Interface: "wan1", HasDefaultRoute: true, UptimeSeconds: 3600, Uptime: "1h 0m"},
			Switches:   []ikuai.SwitchState{{Name: "arp_filter", On: true}},
			MACControl: []ikuai.ACLEntry{{ID: 1, MAC: "aa:bb:cc:dd:ee:ff", Enabled: true}, {ID: 2, MAC: "11:22:33:44:55:66"}},
			Hosts:      ikuai.NewHostIndex([]ikuai.Host{{"ip_addr": "192.168.9.21", "mac": "AA:BB:CC:DD:EE:FF"}}),
			Targets: []presence.Status{
				{TargetID: "192.168.9.21", Name: "phone", Present: true, Stale: true, Missed: 1},
				{TargetID: "11:22:33:44:55:66", Name: "laptop"},
			},
		},
	}
}

func TestCollector_Values(t *testing.T) {
	c := NewCollector("ikuai", "main", sampleSource(), func() ikuai.TransportStats {
		return ikuai.TransportStats{Requests: 40, Failures: 1}
	})

	expected := `
# HELP ikuai_up Whether the last polling cycle succeeded.
# TYPE ikuai_up gauge
ikuai_up{router="main"} 1
# HELP ikuai_device_present Whether a tracked device is present.
# TYPE ikuai_device_present gauge
ikuai_device_present{name="laptop",router="main",target="11:22:33:44:55:66"} 0
ikuai_device_present{name="phone",router="main",target="192.168.9.21"} 1
# HELP ikuai_switch_on Switch state (1 = on). Switches with unknown state are absent.
# TYPE ikuai_switch_on gauge
ikuai_switch_on{router="main",switch="arp_filter"} 1
# HELP ikuai_router_requests_total HTTP requests sent to the router.
# TYPE ikuai_router_requests_total counter
ikuai_router_requests_total{router="main"} 40
`
	err := testutil.CollectAndCompare(c, strings.NewReader(expected),
		"ikuai_up", "ikuai_device_present", "ikuai_switch_on", "ikuai_router_requests_total")
	assert.NoError(t, err)
}

func TestCollector_Families(t *testing.T) {
	c := NewCollector("ikuai", "main", sampleSource(), nil)

	registry := prometheus.NewRegistry()
	require.NoError(t, registry.Register(c))

	families, err := registry.Gather()
	require.NoError(t, err)

	values := make(map[string]int)
	for _, f := range families {
		values[f.GetName()] = len(f.GetMetric())
	}

	assert.Equal(t, 2, values["ikuai_rate_megabytes_per_second"])
	assert.Equal(t, 2, values["ikuai_mac_control_enabled"])
	assert.Equal(t, 1, values["ikuai_device_missed_cycles"], "missed cycles only for present targets")
	assert.Equal(t, 1, values["ikuai_hosts_online"])
	assert.Equal(t, 1, values["ikuai_wan_uptime_seconds"])
	assert.NotContains(t, values, "ikuai_router_requests_total", "no transport stats without a source")
}

func TestCollector_NoSnapshot(t *testing.T) {
	src := &fakeSource{session: ikuai.SessionState{Rejected: true}}
	c := NewCollector("ikuai", "main", src, nil)

	registry := prometheus.NewRegistry()
	require.NoError(t, registry.Register(c))
	families, err := registry.Gather()
	require.NoError(t, err)

	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "ikuai_credentials_rejected")
	assert.Contains(t, names, "ikuai_up")
	assert.NotContains(t, names, "ikuai_cpu_percent")
	assert.NotContains(t, names, "ikuai_last_success_timestamp_seconds")
}

func TestHandler(t *testing.T) {
	srv := httptest.NewServer(Handler(NewCollector("ikuai", "main", sampleSource(), nil)))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `ikuai_cpu_percent{router="main"} 12.5`)
	assert.Contains(t, string(body), `ikuai_cpu_temperature_celsius{router="main"} 48`)
}
