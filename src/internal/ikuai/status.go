package ikuai

import (
	"fmt"
	"time"
)

// StatusRequest reads system statistics and access-controller status.
var StatusRequest = Request{
	FuncName: "homepage",
	Action:   "show",
	Param:    map[string]any{"TYPE": "sysstat,ac_status"},
}

// SystemMetrics are the values derived from the status call.
type SystemMetrics struct {
	FirmwareVersion string  `json:"firmware_version"`
	Hostname        string  `json:"hostname"`
	CPUPercent      float64 `json:"cpu_percent"`
	CPUTemperature  float64 `json:"cpu_temperature"`
	HasCPUTemp      bool    `json:"has_cpu_temperature"`
	MemoryPercent   float64 `json:"memory_percent"`
	// Memory holds the raw memory block (total, available, buffers, ...).
	Memory        map[string]any `json:"memory,omitempty"`
	UptimeSeconds int64          `json:"uptime_seconds"`
	Uptime        string         `json:"uptime"`
	OnlineUsers   int            `json:"online_users"`
	// OnlineUserDetail holds the raw online_user block (per-band counts).
	OnlineUserDetail map[string]any `json:"online_user_detail,omitempty"`
	APOnline         int            `json:"ap_online"`
	APStatus         map[string]any `json:"ap_status,omitempty"`
	Connections      int            `json:"connections"`
	// UploadMBps and DownloadMBps are current rates in MB/s, 3 decimals.
	UploadMBps   float64 `json:"upload_mbps"`
	DownloadMBps float64 `json:"download_mbps"`
	// TotalUpGB and TotalDownGB are cumulative totals in GB, 2 decimals.
	TotalUpGB   float64   `json:"total_up_gb"`
	TotalDownGB float64   `json:"total_down_gb"`
	QueryTime   time.Time `json:"query_time"`
}

// ParseStatus extracts system metrics from a status response. Missing blocks
// leave the corresponding metrics at zero.
func ParseStatus(resp *Response, now time.Time) SystemMetrics {
	m := SystemMetrics{QueryTime: now}

	sysstat := getMap(resp.Data, "sysstat")
	acStatus := getMap(resp.Data, "ac_status")
	if sysstat == nil {
		return m
	}

	m.FirmwareVersion = getString(getMap(sysstat, "verinfo"), "verstring")
	m.Hostname = getString(sysstat, "hostname")

	if temp, ok := asFloat(firstString(sysstat, "cputemp")); ok {
		m.CPUTemperature = temp
		m.HasCPUTemp = true
	}
	m.CPUPercent, _ = asFloat(firstString(sysstat, "cpu"))

	if memory := getMap(sysstat, "memory"); memory != nil {
		m.MemoryPercent, _ = asFloat(memory["used"])
		m.Memory = memory
	}

	m.UptimeSeconds = getInt64(sysstat, "uptime")
	m.Uptime = FormatUptime(m.UptimeSeconds)

	if online := getMap(sysstat, "online_user"); online != nil {
		m.OnlineUsers = getInt(online, "count")
		m.OnlineUserDetail = online
	}

	if stream := getMap(sysstat, "stream"); stream != nil {
		m.Connections = getInt(stream, "connect_num")
		m.UploadMBps = round(getFloat(stream, "upload")/1024/1024, 3)
		m.DownloadMBps = round(getFloat(stream, "download")/1024/1024, 3)
		m.TotalUpGB = round(getFloat(stream, "total_up")/1024/1024/1024, 2)
		m.TotalDownGB = round(getFloat(stream, "total_down")/1024/1024/1024, 2)
	}

	if acStatus != nil {
		m.APOnline = getInt(acStatus, "ap_online")
		m.APStatus = acStatus
	}

	return m
}

// FormatUptime renders seconds as "3d 4h 5m", "4h 5m", "5m 6s" or "6s".
func FormatUptime(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	days := seconds / 86400
	hours := (seconds / 3600) % 24
	minutes := (seconds / 60) % 60
	secs := seconds % 60

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, secs)
	default:
		return fmt.Sprintf("%ds", secs)
	}
}
