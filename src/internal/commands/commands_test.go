package commands

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maksimkurb/ikuai-bridge/src/internal/ikuai/ikuaitest"
)

func writeConfig(t *testing.T, host string, extra string) string {
	t.Helper()
	content := fmt.Sprintf(`[general]
update_interval_seconds = 5

[router]
name = "home"
host = %q
username = %q
password = %q

[[tracker]]
target = "192.168.9.21"
name = "phone"

[[tracker]]
target = "de:ad:be:ef:00:01"
name = "tablet"
%s`, host, ikuaitest.DefaultUsername, ikuaitest.DefaultPassword, extra)

	path := filepath.Join(t.TempDir(), "ikuai-bridge.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func newFakeRouter(t *testing.T) *ikuaitest.Router {
	fake := ikuaitest.NewRouter(t)
	fake.LoadDefaults()
	return fake
}

func TestRestartableRunner_RestartsOnError(t *testing.T) {
	var calls atomic.Int32
	r := NewRestartableRunner(RunnerConfig{
		Name:           "test",
		MaxRestarts:    3,
		RestartBackoff: time.Millisecond,
		MaxBackoff:     time.Millisecond,
	}, func(ctx context.Context) error {
		calls.Add(1)
		return errors.New("boom")
	})

	require.NoError(t, r.Start(context.Background()))
	select {
	case <-r.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("runner did not give up")
	}

	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, 3, r.RestartCount())
	assert.EqualError(t, r.LastError(), "boom")
	assert.False(t, r.IsRunning())
}

func TestRestartableRunner_RecoversPanic(t *testing.T) {
	var calls atomic.Int32
	r := NewRestartableRunner(RunnerConfig{Name: "test", RestartBackoff: time.Millisecond}, func(ctx context.Context) error {
		if calls.Add(1) == 1 {
			panic("first run")
		}
		return nil
	})

	require.NoError(t, r.Start(context.Background()))
	<-r.Done()

	assert.Equal(t, int32(2), calls.Load())
	assert.NoError(t, r.LastError())
}

func TestRestartableRunner_Stop(t *testing.T) {
	r := NewRestartableRunner(RunnerConfig{Name: "test"}, func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	require.NoError(t, r.Start(context.Background()))
	assert.True(t, r.IsRunning())
	assert.Error(t, r.Start(context.Background()))

	require.NoError(t, r.Stop())
	assert.False(t, r.IsRunning())
	assert.Zero(t, r.RestartCount())
}

func TestServiceManager_Lifecycle(t *testing.T) {
	fake := newFakeRouter(t)
	ctx := &AppContext{ConfigPath: writeConfig(t, fake.URL(), "")}

	cfg, err := loadAndValidateConfigOrFail(ctx)
	require.NoError(t, err)

	sm := NewServiceManager(ctx, cfg, nil)
	assert.False(t, sm.IsRunning())
	assert.Nil(t, sm.Dependencies())

	require.NoError(t, sm.Start())
	assert.True(t, sm.IsRunning())
	assert.NotEmpty(t, sm.GetAppliedConfigHash())
	assert.Error(t, sm.Start())

	deps := sm.Dependencies()
	require.NotNil(t, deps)
	assert.Eventually(t, func() bool { return deps.Coordinator().Last() != nil }, 5*time.Second, 10*time.Millisecond)
	assert.True(t, deps.Coordinator().Available())

	require.NoError(t, sm.Stop())
	assert.False(t, sm.IsRunning())
	assert.Nil(t, sm.Dependencies())
	assert.Error(t, sm.Stop())
}

func TestServiceManager_RestartReloadsConfig(t *testing.T) {
	fake := newFakeRouter(t)
	path := writeConfig(t, fake.URL(), "")
	ctx := &AppContext{ConfigPath: path}

	cfg, err := loadAndValidateConfigOrFail(ctx)
	require.NoError(t, err)

	sm := NewServiceManager(ctx, cfg, nil)
	require.NoError(t, sm.Start())
	t.Cleanup(func() { _ = sm.Stop() })
	first := sm.GetAppliedConfigHash()

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	content = bytes.Replace(content, []byte(`name = "tablet"`), []byte(`name = "ipad"`), 1)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	require.NoError(t, sm.Restart())
	assert.True(t, sm.IsRunning())
	assert.NotEqual(t, first, sm.GetAppliedConfigHash())

	targets := sm.Dependencies().Poller().Targets()
	require.Len(t, targets, 2)
	assert.Equal(t, "ipad", targets[1].Name)
}

func TestServiceManager_RestartWhenStopped(t *testing.T) {
	fake := newFakeRouter(t)
	ctx := &AppContext{ConfigPath: writeConfig(t, fake.URL(), "")}

	sm := NewServiceManager(ctx, nil, nil)
	require.NoError(t, sm.Restart())
	assert.True(t, sm.IsRunning())
	require.NoError(t, sm.Stop())
}

func TestLiveSource(t *testing.T) {
	fake := newFakeRouter(t)
	ctx := &AppContext{ConfigPath: writeConfig(t, fake.URL(), "")}
	sm := NewServiceManager(ctx, nil, nil)
	src := &liveSource{mgr: sm}

	assert.Nil(t, src.Last())
	assert.False(t, src.Available())
	assert.Zero(t, src.TransportStats().Requests)

	require.NoError(t, sm.Start())
	t.Cleanup(func() { _ = sm.Stop() })

	assert.Eventually(t, func() bool { return src.Last() != nil }, 5*time.Second, 10*time.Millisecond)
	assert.True(t, src.Available())
	assert.Equal(t, int64(1), src.Session().Logins)
	assert.Positive(t, src.TransportStats().Requests)
}

func TestStatusCommand(t *testing.T) {
	fake := newFakeRouter(t)
	var out bytes.Buffer
	ctx := &AppContext{ConfigPath: writeConfig(t, fake.URL(), ""), Out: &out}

	cmd := CreateStatusCommand()
	require.NoError(t, cmd.Init(nil, ctx))
	require.NoError(t, cmd.Run())

	s := out.String()
	assert.Contains(t, s, "home")
	assert.Contains(t, s, "100.64.1.2")
	assert.Contains(t, s, "arp_filter")
	assert.Contains(t, s, "phone")
}

func TestStatusCommand_JSON(t *testing.T) {
	fake := newFakeRouter(t)
	var out bytes.Buffer
	ctx := &AppContext{ConfigPath: writeConfig(t, fake.URL(), ""), Out: &out}

	cmd := CreateStatusCommand()
	require.NoError(t, cmd.Init([]string{"-json"}, ctx))
	require.NoError(t, cmd.Run())

	assert.True(t, strings.HasPrefix(out.String(), "{"))
	assert.Contains(t, out.String(), `"cpu_percent": 12.5`)
}

func TestStatusCommand_RejectedCredentials(t *testing.T) {
	fake := newFakeRouter(t)
	fake.RejectLogins()
	ctx := &AppContext{ConfigPath: writeConfig(t, fake.URL(), ""), Out: &bytes.Buffer{}}

	cmd := CreateStatusCommand()
	require.NoError(t, cmd.Init(nil, ctx))
	assert.Error(t, cmd.Run())
}

func TestActionCommand(t *testing.T) {
	fake := newFakeRouter(t)
	var out bytes.Buffer
	ctx := &AppContext{ConfigPath: writeConfig(t, fake.URL(), ""), Out: &out}

	cmd := CreateActionCommand()
	require.NoError(t, cmd.Init([]string{"reboot"}, ctx))
	require.NoError(t, cmd.Run())

	assert.Equal(t, 1, fake.CallsTo("reboots", "reboots"))
	assert.Contains(t, out.String(), "reboot")
}

func TestActionCommand_List(t *testing.T) {
	fake := newFakeRouter(t)
	var out bytes.Buffer
	ctx := &AppContext{ConfigPath: writeConfig(t, fake.URL(), ""), Out: &out}

	cmd := CreateActionCommand()
	require.NoError(t, cmd.Init([]string{"-list"}, ctx))
	require.NoError(t, cmd.Run())

	s := out.String()
	assert.Contains(t, s, "reconnect_wan")
	assert.Contains(t, s, "switch.arp_filter.on")
	assert.Contains(t, s, "acl.2.enable")
}

func TestActionCommand_Errors(t *testing.T) {
	fake := newFakeRouter(t)
	ctx := &AppContext{ConfigPath: writeConfig(t, fake.URL(), ""), Out: &bytes.Buffer{}}

	assert.Error(t, CreateActionCommand().Init(nil, ctx))

	cmd := CreateActionCommand()
	require.NoError(t, cmd.Init([]string{"format_disk"}, ctx))
	assert.Error(t, cmd.Run())
	assert.Zero(t, fake.Requests())
}

func TestHashPasswordCommand(t *testing.T) {
	var out bytes.Buffer
	cmd := CreateHashPasswordCommand()
	require.NoError(t, cmd.Init([]string{"secret"}, &AppContext{Out: &out}))
	require.NoError(t, cmd.Run())

	assert.Equal(t,
		"password_hash = \"5ebe2294ecd0e0f08eab7690d2a6ee69\"\n"+
			"password_obfuscated = \"c2FsdF8xMXNlY3JldA==\"\n",
		out.String())
}

func TestHashPasswordCommand_Stdin(t *testing.T) {
	var out bytes.Buffer
	cmd := CreateHashPasswordCommand()
	cmd.stdin = strings.NewReader("secret\n")
	require.NoError(t, cmd.Init(nil, &AppContext{Out: &out}))
	require.NoError(t, cmd.Run())
	assert.Contains(t, out.String(), "5ebe2294ecd0e0f08eab7690d2a6ee69")

	cmd = CreateHashPasswordCommand()
	cmd.stdin = strings.NewReader("")
	assert.Error(t, cmd.Init(nil, &AppContext{}))
}

func TestCheckConfigCommand(t *testing.T) {
	var out bytes.Buffer
	ctx := &AppContext{ConfigPath: writeConfig(t, "http://192.168.1.1", ""), Out: &out}

	cmd := CreateCheckConfigCommand()
	require.NoError(t, cmd.Init(nil, ctx))
	require.NoError(t, cmd.Run())
	assert.Contains(t, out.String(), "trackers: 2")

	out.Reset()
	bad := &AppContext{ConfigPath: writeConfig(t, "not a url", ""), Out: &out}
	cmd = CreateCheckConfigCommand()
	require.NoError(t, cmd.Init(nil, bad))
	assert.Error(t, cmd.Run())
	assert.Contains(t, out.String(), "invalid:")
}
