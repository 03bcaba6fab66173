package ikuai

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/maksimkurb/ikuai-bridge/src/internal/errors"
	"github.com/maksimkurb/ikuai-bridge/src/internal/log"
)

// RebootRequest reboots the router.
var RebootRequest = Request{FuncName: "reboots", Action: "reboots"}

// ReconnectWANRequest redials the first WAN line.
var ReconnectWANRequest = Request{
	FuncName: "wan",
	Action:   "link_dhcp_reconnect",
	Param:    map[string]any{"id": 1},
}

// Client is the client for the iKuai web management API.
//
// Every method except Login takes a session key obtained from a SessionManager.
// A call answered with a session-expired code returns an error matching
// errors.ErrAuthExpired; the caller is expected to invalidate the session.
// All methods are safe for concurrent use.
type Client struct {
	transport *Transport
	creds     Credentials
	now       func() time.Time
}

type ClientOption func(*Client)

// WithClientClock replaces time.Now when deriving uptimes and query times.
func WithClientClock(now func() time.Time) ClientOption {
	return func(c *Client) {
		c.now = now
	}
}

// NewClient creates a client that authenticates with creds.
func NewClient(transport *Transport, creds Credentials, opts ...ClientOption) *Client {
	c := &Client{
		transport: transport,
		creds:     creds,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Transport returns the underlying transport.
func (c *Client) Transport() *Transport {
	return c.transport
}

// Login authenticates and returns the session key from the sess_key cookie.
// Invalid credentials yield errors.ErrAuthRejected; anything else is transient.
func (c *Client) Login(ctx context.Context) (string, error) {
	raw, err := c.transport.post(ctx, loginPath, "", c.creds.loginBody())
	if err != nil {
		return "", err
	}

	if raw.Status == http.StatusOK {
		for _, cookie := range raw.Cookies {
			if cookie.Name == "sess_key" && cookie.Value != "" {
				return cookie.Value, nil
			}
		}
	}

	resp := Normalize(raw.Status, raw.Body)
	if resp.InvalidCredentials() {
		return "", errors.NewAuthRejectedError(fmt.Sprintf("login refused for user %q: %s", c.creds.Username, resp.Describe()))
	}
	if raw.Status != http.StatusOK {
		return "", errors.NewNetworkError(fmt.Sprintf("login failed: %s", resp.Describe()), nil)
	}
	return "", errors.NewMalformedError(fmt.Sprintf("login returned no session key: %s", resp.Describe()), nil)
}

// Call performs one authenticated call and returns the normalized response.
func (c *Client) Call(ctx context.Context, key string, req Request) (*Response, error) {
	raw, err := c.transport.post(ctx, actionPath, sessionCookie(c.creds.Username, key), req)
	if err != nil {
		return nil, err
	}

	resp := Normalize(raw.Status, raw.Body)
	if resp.Expired() {
		return resp, errors.NewAuthExpiredError(fmt.Sprintf("%s/%s: session expired", req.FuncName, req.Action))
	}
	if raw.Status != http.StatusOK {
		return resp, errors.NewNetworkError(fmt.Sprintf("%s/%s: %s", req.FuncName, req.Action, resp.Describe()), nil)
	}
	return resp, nil
}

// Execute sends a control command. Apart from session expiry, the response is
// returned as-is; callers decide what counts as success via Response.Succeeded.
func (c *Client) Execute(ctx context.Context, key string, req Request) (*Response, error) {
	resp, err := c.Call(ctx, key, req)
	if err != nil {
		return resp, err
	}
	log.Debugf("Action %s/%s answered: %s", req.FuncName, req.Action, resp.Describe())
	return resp, nil
}

// Status reads system metrics.
func (c *Client) Status(ctx context.Context, key string) (SystemMetrics, error) {
	resp, err := c.Call(ctx, key, StatusRequest)
	if err != nil {
		return SystemMetrics{}, err
	}
	return ParseStatus(resp, c.now()), nil
}

// WAN reads the default-route WAN line, following VLAN/PPPoE parents when needed.
func (c *Client) WAN(ctx context.Context, key string) (WANInfo, error) {
	resp, err := c.Call(ctx, key, WANRequest)
	if err != nil {
		return WANInfo{}, err
	}

	info, vlanParents := ParseWAN(resp, c.now())
	for _, iface := range vlanParents {
		vlanResp, err := c.Call(ctx, key, VLANRequest(iface))
		if err != nil {
			return info, err
		}
		if vlan, ok := ParseVLAN(vlanResp, iface, c.now()); ok {
			return vlan, nil
		}
	}
	return info, nil
}

// WAN6 reads the first WAN IPv6 address.
func (c *Client) WAN6(ctx context.Context, key string) (IPv6Info, error) {
	resp, err := c.Call(ctx, key, WAN6Request)
	if err != nil {
		return IPv6Info{}, err
	}
	return ParseWAN6(resp), nil
}

// LAN6 reads the first LAN IPv6 address.
func (c *Client) LAN6(ctx context.Context, key string) (IPv6Info, error) {
	resp, err := c.Call(ctx, key, LAN6Request)
	if err != nil {
		return IPv6Info{}, err
	}
	return ParseLAN6(resp), nil
}

// MACControl reads the MAC access-control list.
func (c *Client) MACControl(ctx context.Context, key string) ([]ACLEntry, error) {
	resp, err := c.Call(ctx, key, ACLRequest)
	if err != nil {
		return nil, err
	}
	return ParseACL(resp), nil
}

// LANHosts reads the online LAN hosts.
func (c *Client) LANHosts(ctx context.Context, key string) (*HostIndex, error) {
	resp, err := c.Call(ctx, key, LANHostsRequest)
	if err != nil {
		return nil, err
	}
	return ParseHosts(resp), nil
}

// Switch reads one switch. ok is false when its state is ambiguous.
func (c *Client) Switch(ctx context.Context, key string, spec SwitchSpec) (state SwitchState, ok bool, err error) {
	resp, err := c.Call(ctx, key, spec.Show)
	if err != nil {
		return SwitchState{}, false, err
	}
	state, ok = ResolveSwitch(spec, resp)
	if !ok {
		log.Debugf("Switch %s state is ambiguous (%s), omitting", spec.Name, resp.Describe())
	}
	return state, ok, nil
}
