package presence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maksimkurb/ikuai-bridge/src/internal/ikuai"
)

func phone() ikuai.Host {
	return ikuai.Host{"ip_addr": "192.168.9.21", "mac": "AA:BB:CC:DD:EE:FF", "hostname": "phone"}
}

func index(hosts ...ikuai.Host) *ikuai.HostIndex {
	return ikuai.NewHostIndex(hosts)
}

func TestTracker_GraceScenario(t *testing.T) {
	tracker := NewTracker()
	targets := []Target{NewTarget("aa:bb:cc:dd:ee:ff", KindMAC, "Phone", 2)}

	// cycle 1: present
	records := tracker.Resolve(index(phone()), targets)
	require.Len(t, records, 1)
	assert.False(t, records[0].Stale)
	assert.Equal(t, "phone", records[0].Host.Hostname())

	// cycles 2-3: absent from the table but still reported
	for cycle := 2; cycle <= 3; cycle++ {
		records = tracker.Resolve(index(), targets)
		require.Len(t, records, 1, "cycle %d", cycle)
		assert.True(t, records[0].Stale)
		assert.Equal(t, cycle-1, records[0].Missed)
		assert.Equal(t, "192.168.9.21", records[0].Host.IP())
	}

	// cycle 4: grace exhausted
	records = tracker.Resolve(index(), targets)
	assert.Empty(t, records)

	// stays absent without a fresh sighting
	records = tracker.Resolve(index(), targets)
	assert.Empty(t, records)
}

func TestTracker_GraceProperty(t *testing.T) {
	for grace := 0; grace <= 4; grace++ {
		tracker := NewTracker()
		targets := []Target{NewTarget("192.168.9.21", KindIP, "", grace)}
		require.Len(t, tracker.Resolve(index(phone()), targets), 1)

		for n := 1; n <= grace; n++ {
			assert.Len(t, tracker.Resolve(index(), targets), 1, "grace=%d absences=%d", grace, n)
		}
		assert.Empty(t, tracker.Resolve(index(), targets), "grace=%d absences=%d", grace, grace+1)
	}
}

func TestTracker_ReappearanceResetsCounter(t *testing.T) {
	tracker := NewTracker()
	targets := []Target{NewTarget("192.168.9.21", KindIP, "Phone", 1)}

	tracker.Resolve(index(phone()), targets)
	tracker.Resolve(index(), targets)
	assert.Equal(t, 1, tracker.Missed("192.168.9.21"))

	records := tracker.Resolve(index(phone()), targets)
	require.Len(t, records, 1)
	assert.False(t, records[0].Stale)
	assert.Equal(t, 0, tracker.Missed("192.168.9.21"))

	// a full grace window is available again
	assert.Len(t, tracker.Resolve(index(), targets), 1)
	assert.Empty(t, tracker.Resolve(index(), targets))
}

func TestTracker_NeverSeenIsAbsent(t *testing.T) {
	tracker := NewTracker()
	targets := []Target{NewTarget("10.0.0.9", KindIP, "", 5)}
	assert.Empty(t, tracker.Resolve(index(phone()), targets))
}

func TestTracker_MACIsCaseInsensitive(t *testing.T) {
	tracker := NewTracker()
	host := phone()
	targets := []Target{NewTarget("AA:bb:CC:dd:EE:ff", KindMAC, "Phone", 2)}
	assert.Equal(t, "aa:bb:cc:dd:ee:ff", targets[0].ID)

	records := tracker.Resolve(index(host), targets)
	require.Len(t, records, 1)
	assert.Equal(t, host, records[0].Host)
	assert.Equal(t, "Phone", records[0].Name)
}

func TestTracker_NilIndexFreezesState(t *testing.T) {
	tracker := NewTracker()
	targets := []Target{
		NewTarget("192.168.9.21", KindIP, "Phone", 1),
		NewTarget("192.168.9.30", KindIP, "Laptop", 1),
	}
	laptop := ikuai.Host{"ip_addr": "192.168.9.30", "mac": "11:22:33:44:55:66"}

	tracker.Resolve(index(phone(), laptop), targets)
	before := tracker.Resolve(index(phone()), targets)
	require.Len(t, before, 2)
	assert.Equal(t, 1, tracker.Missed("192.168.9.30"))

	for i := 0; i < 3; i++ {
		frozen := tracker.Resolve(nil, targets)
		assert.Equal(t, before, frozen)
	}
	assert.Equal(t, 1, tracker.Missed("192.168.9.30"), "a failed fetch must not decay state")

	// next real cycle continues from the frozen state
	after := tracker.Resolve(index(phone()), targets)
	require.Len(t, after, 1)
	assert.Equal(t, "192.168.9.21", after[0].TargetID)
}

func TestTracker_NilIndexDropsRemovedTargets(t *testing.T) {
	tracker := NewTracker()
	targets := []Target{NewTarget("192.168.9.21", KindIP, "Phone", 1)}
	tracker.Resolve(index(phone()), targets)

	assert.Empty(t, tracker.Resolve(nil, nil))
}

func TestTracker_Reset(t *testing.T) {
	tracker := NewTracker()
	targets := []Target{NewTarget("192.168.9.21", KindIP, "Phone", 3)}
	tracker.Resolve(index(phone()), targets)

	tracker.Reset()
	assert.Empty(t, tracker.Resolve(index(), targets))
	assert.Empty(t, tracker.Resolve(nil, targets))
}

func TestNewTarget(t *testing.T) {
	target := NewTarget(" 192.168.9.21 ", KindIP, "", -1)
	assert.Equal(t, "192.168.9.21", target.ID)
	assert.Equal(t, "192.168.9.21", target.Name)
	assert.Equal(t, 0, target.Grace)
}

func TestSummarize(t *testing.T) {
	targets := []Target{
		NewTarget("aa:bb:cc:dd:ee:ff", KindMAC, "Phone", 2),
		NewTarget("10.0.0.9", KindIP, "Printer", 2),
	}
	records := NewTracker().Resolve(index(phone()), targets)

	statuses := Summarize(targets, records)
	require.Len(t, statuses, 2)

	assert.True(t, statuses[0].Present)
	assert.Equal(t, "192.168.9.21", statuses[0].IP)
	assert.Equal(t, "aa:bb:cc:dd:ee:ff", statuses[0].MAC)
	assert.Equal(t, "phone", statuses[0].Hostname)

	assert.False(t, statuses[1].Present)
	assert.Equal(t, "Printer", statuses[1].Name)
	assert.Nil(t, statuses[1].Host)
}
