// Package ikuai provides a client for the iKuai router web management API.
//
// The API has two endpoints: /Action/login, which returns a session key in the
// sess_key cookie, and /Action/call, which accepts {func_name, action, param}
// envelopes. Replies come in two incompatible shapes (legacy Result/ErrMsg/Data
// and newer code/message/results) or as bare codes; Normalize turns every reply
// into one Response before any field is read.
//
// # Components
//
//   - Transport: POST with session cookie, shared concurrency gate, per-call
//     timeout, UTF-8/GB18030 body decoding
//   - SessionManager: cached session key with a fixed TTL and a permanent
//     rejected flag
//   - Client: login, generic Call/Execute and typed readers (Status, WAN, WAN6,
//     LAN6, MACControl, LANHosts, Switch)
//
// Readers are lenient: missing or mistyped fields yield zero values. Only
// transport failures and session expiry are reported as errors.
//
// # Example Usage
//
//	transport := ikuai.NewTransport("http://192.168.1.1", nil, ikuai.WithConcurrency(3))
//	client := ikuai.NewClient(transport, ikuai.NewCredentials("admin", "secret"))
//	session := ikuai.NewSessionManager(client)
//
//	key, err := session.SessionKey(ctx)
//	if err != nil {
//	    return err
//	}
//	metrics, err := client.Status(ctx, key)
//	if errors.Is(err, errors.ErrAuthExpired) {
//	    session.Invalidate()
//	}
package ikuai
