package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/maksimkurb/ikuai-bridge/src/internal/ikuai"
	"github.com/maksimkurb/ikuai-bridge/src/internal/poller"
)

// Source is what the collector reads on every scrape.
type Source interface {
	Last() *poller.Snapshot
	Available() bool
	Stats() poller.Stats
	Session() ikuai.SessionState
}

// TransportStatsFunc returns router request counters. May be nil.
type TransportStatsFunc func() ikuai.TransportStats

// Collector implements prometheus.Collector over the poller's last snapshot.
// Nothing is cached: every scrape reads current state.
type Collector struct {
	src       Source
	transport TransportStatsFunc

	up            *prometheus.Desc
	cpuPercent    *prometheus.Desc
	cpuTemp       *prometheus.Desc
	memoryPercent *prometheus.Desc
	uptime        *prometheus.Desc
	onlineUsers   *prometheus.Desc
	apOnline      *prometheus.Desc
	connections   *prometheus.Desc
	rate          *prometheus.Desc
	transferred   *prometheus.Desc
	hostsOnline   *prometheus.Desc

	wanDefaultRoute *prometheus.Desc
	wanUptime       *prometheus.Desc
	switchOn        *prometheus.Desc
	macControl      *prometheus.Desc
	present         *prometheus.Desc
	missed          *prometheus.Desc

	polls         *prometheus.Desc
	pollFailures  *prometheus.Desc
	authExpired   *prometheus.Desc
	actions       *prometheus.Desc
	lastSuccess   *prometheus.Desc
	pollDuration  *prometheus.Desc
	logins        *prometheus.Desc
	rejected      *prometheus.Desc
	requests      *prometheus.Desc
	requestErrors *prometheus.Desc
}

// NewCollector creates a collector. Every metric carries a constant router label.
func NewCollector(namespace, router string, src Source, transport TransportStatsFunc) *Collector {
	labels := prometheus.Labels{"router": router}
	desc := func(name, help string, variable ...string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "", name), help, variable, labels)
	}

	return &Collector{
		src:       src,
		transport: transport,

		up:            desc("up", "Whether the last polling cycle succeeded."),
		cpuPercent:    desc("cpu_percent", "Router CPU usage in percent."),
		cpuTemp:       desc("cpu_temperature_celsius", "Router CPU temperature."),
		memoryPercent: desc("memory_percent", "Router memory usage in percent."),
		uptime:        desc("uptime_seconds", "Router uptime."),
		onlineUsers:   desc("online_users", "Number of online users."),
		apOnline:      desc("ap_online", "Number of online access points."),
		connections:   desc("connections", "Number of tracked connections."),
		rate:          desc("rate_megabytes_per_second", "Current WAN throughput.", "direction"),
		transferred:   desc("transferred_gigabytes", "Cumulative WAN traffic.", "direction"),
		hostsOnline:   desc("hosts_online", "Number of hosts in the LAN host table."),

		wanDefaultRoute: desc("wan_default_route", "Whether a WAN line carries the default route.", "interface"),
		wanUptime:       desc("wan_uptime_seconds", "Uptime of the default-route WAN line.", "interface"),
		switchOn:        desc("switch_on", "Switch state (1 = on). Switches with unknown state are absent.", "switch"),
		macControl:      desc("mac_control_enabled", "Whether a MAC access-control entry is enabled.", "id", "mac"),
		present:         desc("device_present", "Whether a tracked device is present.", "target", "name"),
		missed:          desc("device_missed_cycles", "Consecutive cycles a present device was missing from the host table.", "target", "name"),

		polls:         desc("polls_total", "Polling cycles run."),
		pollFailures:  desc("poll_failures_total", "Polling cycles that failed."),
		authExpired:   desc("session_expired_total", "Cycles aborted because the session expired."),
		actions:       desc("actions_total", "Control commands sent."),
		lastSuccess:   desc("last_success_timestamp_seconds", "Unix time of the last successful cycle."),
		pollDuration:  desc("poll_duration_seconds", "Duration of the last successful cycle."),
		logins:        desc("session_logins_total", "Successful logins."),
		rejected:      desc("credentials_rejected", "Whether the router rejected the configured credentials."),
		requests:      desc("router_requests_total", "HTTP requests sent to the router."),
		requestErrors: desc("router_request_failures_total", "HTTP requests to the router that failed at transport level."),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range []*prometheus.Desc{
		c.up, c.cpuPercent, c.cpuTemp, c.memoryPercent, c.uptime, c.onlineUsers,
		c.apOnline, c.connections, c.rate, c.transferred, c.hostsOnline,
		c.wanDefaultRoute, c.wanUptime, c.switchOn, c.macControl, c.present, c.missed,
		c.polls, c.pollFailures, c.authExpired, c.actions, c.lastSuccess,
		c.pollDuration, c.logins, c.rejected, c.requests, c.requestErrors,
	} {
		ch <- d
	}
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.up, prometheus.GaugeValue, boolValue(c.src.Available()))

	c.collectCounters(ch)

	if snap := c.src.Last(); snap != nil {
		c.collectSystem(ch, snap)
		c.collectDevices(ch, snap)
	}
}

func (c *Collector) collectCounters(ch chan<- prometheus.Metric) {
	stats := c.src.Stats()
	ch <- prometheus.MustNewConstMetric(c.polls, prometheus.CounterValue, float64(stats.Cycles))
	ch <- prometheus.MustNewConstMetric(c.pollFailures, prometheus.CounterValue, float64(stats.Failures))
	ch <- prometheus.MustNewConstMetric(c.authExpired, prometheus.CounterValue, float64(stats.AuthExpired))
	ch <- prometheus.MustNewConstMetric(c.actions, prometheus.CounterValue, float64(stats.Actions))
	if !stats.LastSuccess.IsZero() {
		ch <- prometheus.MustNewConstMetric(c.lastSuccess, prometheus.GaugeValue, float64(stats.LastSuccess.Unix()))
		ch <- prometheus.MustNewConstMetric(c.pollDuration, prometheus.GaugeValue, stats.LastDuration.Seconds())
	}

	session := c.src.Session()
	ch <- prometheus.MustNewConstMetric(c.logins, prometheus.CounterValue, float64(session.Logins))
	ch <- prometheus.MustNewConstMetric(c.rejected, prometheus.GaugeValue, boolValue(session.Rejected))

	if c.transport != nil {
		ts := c.transport()
		ch <- prometheus.MustNewConstMetric(c.requests, prometheus.CounterValue, float64(ts.Requests))
		ch <- prometheus.MustNewConstMetric(c.requestErrors, prometheus.CounterValue, float64(ts.Failures))
	}
}

func (c *Collector) collectSystem(ch chan<- prometheus.Metric, snap *poller.Snapshot) {
	sys := snap.System
	ch <- prometheus.MustNewConstMetric(c.cpuPercent, prometheus.GaugeValue, sys.CPUPercent)
	if sys.HasCPUTemp {
		ch <- prometheus.MustNewConstMetric(c.cpuTemp, prometheus.GaugeValue, sys.CPUTemperature)
	}
	ch <- prometheus.MustNewConstMetric(c.memoryPercent, prometheus.GaugeValue, sys.MemoryPercent)
	ch <- prometheus.MustNewConstMetric(c.uptime, prometheus.GaugeValue, float64(sys.UptimeSeconds))
	ch <- prometheus.MustNewConstMetric(c.onlineUsers, prometheus.GaugeValue, float64(sys.OnlineUsers))
	ch <- prometheus.MustNewConstMetric(c.apOnline, prometheus.GaugeValue, float64(sys.APOnline))
	ch <- prometheus.MustNewConstMetric(c.connections, prometheus.GaugeValue, float64(sys.Connections))
	ch <- prometheus.MustNewConstMetric(c.rate, prometheus.GaugeValue, sys.UploadMBps, "upload")
	ch <- prometheus.MustNewConstMetric(c.rate, prometheus.GaugeValue, sys.DownloadMBps, "download")
	ch <- prometheus.MustNewConstMetric(c.transferred, prometheus.GaugeValue, sys.TotalUpGB, "upload")
	ch <- prometheus.MustNewConstMetric(c.transferred, prometheus.GaugeValue, sys.TotalDownGB, "download")

	if snap.Hosts != nil {
		ch <- prometheus.MustNewConstMetric(c.hostsOnline, prometheus.GaugeValue, float64(snap.Hosts.Len()))
	}

	ch <- prometheus.MustNewConstMetric(c.wanDefaultRoute, prometheus.GaugeValue, boolValue(snap.WAN.HasDefaultRoute), snap.WAN.Interface)
	if snap.WAN.HasDefaultRoute && snap.WAN.Uptime != "" {
		ch <- prometheus.MustNewConstMetric(c.wanUptime, prometheus.GaugeValue, float64(snap.WAN.UptimeSeconds), snap.WAN.Interface)
	}
}

func (c *Collector) collectDevices(ch chan<- prometheus.Metric, snap *poller.Snapshot) {
	for _, sw := range snap.Switches {
		ch <- prometheus.MustNewConstMetric(c.switchOn, prometheus.GaugeValue, boolValue(sw.On), sw.Name)
	}
	for _, e := range snap.MACControl {
		ch <- prometheus.MustNewConstMetric(c.macControl, prometheus.GaugeValue, boolValue(e.Enabled), strconv.Itoa(e.ID), e.MAC)
	}
	for _, t := range snap.Targets {
		ch <- prometheus.MustNewConstMetric(c.present, prometheus.GaugeValue, boolValue(t.Present), t.TargetID, t.Name)
		if t.Present {
			ch <- prometheus.MustNewConstMetric(c.missed, prometheus.GaugeValue, float64(t.Missed), t.TargetID, t.Name)
		}
	}
}

// Handler returns an HTTP handler serving c from its own registry.
func Handler(c *Collector) http.Handler {
	registry := prometheus.NewRegistry()
	registry.MustRegister(c)
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
