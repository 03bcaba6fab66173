// Package ikuaitest provides an in-process fake iKuai router for tests.
//
// The fake speaks the same protocol as the real API: /Action/login checks the
// encoded password and sets a sess_key cookie; /Action/call checks that cookie
// and dispatches on func_name, action and param TYPE. Every request is counted.
package ikuaitest

import (
	"crypto/md5"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

const (
	DefaultUsername = "admin"
	DefaultPassword = "secret"
)

// Call is one decoded /Action/call request.
type Call struct {
	FuncName string         `json:"func_name"`
	Action   string         `json:"action"`
	Param    map[string]any `json:"param"`
}

// Type returns param TYPE.
func (c Call) Type() string {
	s, _ := c.Param["TYPE"].(string)
	return s
}

// HandlerFunc answers a call with an HTTP status and a JSON-encodable body.
// A []byte body is written verbatim.
type HandlerFunc func(call Call) (status int, body any)

// Router is a fake router backed by httptest.Server.
type Router struct {
	Server *httptest.Server

	mu           sync.Mutex
	username     string
	passwordHash string
	passwordObf  string
	sessionKey   string
	keySeq       int
	rejectLogins bool
	handlers     map[string]HandlerFunc

	logins   int
	requests int
	calls    []Call
}

// NewRouter starts a fake router accepting DefaultUsername/DefaultPassword.
// It is closed automatically when the test ends.
func NewRouter(t testing.TB) *Router {
	t.Helper()
	sum := md5.Sum([]byte(DefaultPassword))
	r := &Router{
		username:     DefaultUsername,
		passwordHash: hex.EncodeToString(sum[:]),
		passwordObf:  base64.StdEncoding.EncodeToString([]byte("salt_11" + DefaultPassword)),
		handlers:     make(map[string]HandlerFunc),
	}
	r.Server = httptest.NewServer(http.HandlerFunc(r.serve))
	t.Cleanup(r.Server.Close)
	return r
}

// URL returns the router base URL.
func (r *Router) URL() string {
	return r.Server.URL
}

// Handle registers h for func_name/action, optionally restricted to a param TYPE.
func (r *Router) Handle(funcName, action, typ string, h HandlerFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[routeKey(funcName, action, typ)] = h
}

// HandleData answers func_name/action[/TYPE] with a legacy success envelope around data.
func (r *Router) HandleData(funcName, action, typ string, data map[string]any) {
	r.Handle(funcName, action, typ, func(Call) (int, any) {
		return http.StatusOK, Legacy(data)
	})
}

// RejectLogins makes every subsequent login fail with the invalid-credentials code.
func (r *Router) RejectLogins() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rejectLogins = true
}

// ExpireSession invalidates the current session key on the router side.
func (r *Router) ExpireSession() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessionKey = ""
}

// Requests returns the total number of HTTP requests, logins included.
func (r *Router) Requests() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.requests
}

// Logins returns the number of login requests.
func (r *Router) Logins() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.logins
}

// Calls returns a copy of every /Action/call request seen so far.
func (r *Router) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Call, len(r.calls))
	copy(out, r.calls)
	return out
}

// CallsTo counts calls to func_name/action.
func (r *Router) CallsTo(funcName, action string) int {
	n := 0
	for _, c := range r.Calls() {
		if c.FuncName == funcName && c.Action == action {
			n++
		}
	}
	return n
}

// Legacy wraps data in the legacy success envelope.
func Legacy(data map[string]any) map[string]any {
	return map[string]any{"Result": 30000, "ErrMsg": "Success", "Data": data}
}

// Modern wraps data in the newer success envelope.
func Modern(data map[string]any) map[string]any {
	return map[string]any{"code": 0, "message": "success", "results": data}
}

// Expired is the legacy session-expired reply.
func Expired() map[string]any {
	return map[string]any{"Result": 10014, "ErrMsg": "no login authentication"}
}

func routeKey(funcName, action, typ string) string {
	return funcName + "/" + action + "/" + typ
}

func (r *Router) serve(w http.ResponseWriter, req *http.Request) {
	r.mu.Lock()
	r.requests++
	r.mu.Unlock()

	if req.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	switch req.URL.Path {
	case "/Action/login":
		r.serveLogin(w, req)
	case "/Action/call":
		r.serveCall(w, req)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (r *Router) serveLogin(w http.ResponseWriter, req *http.Request) {
	var body struct {
		Username string `json:"username"`
		Passwd   string `json:"passwd"`
		Pass     string `json:"pass"`
	}
	_ = json.NewDecoder(req.Body).Decode(&body)

	r.mu.Lock()
	r.logins++
	ok := !r.rejectLogins && body.Username == r.username && body.Passwd == r.passwordHash && body.Pass == r.passwordObf
	if ok {
		r.keySeq++
		r.sessionKey = fmt.Sprintf("key-%d", r.keySeq)
		http.SetCookie(w, &http.Cookie{Name: "sess_key", Value: r.sessionKey, Path: "/"})
	}
	r.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{"Result": 10001, "ErrMsg": "wrong username or password"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"Result": 10000, "ErrMsg": "Success"})
}

func (r *Router) serveCall(w http.ResponseWriter, req *http.Request) {
	var call Call
	if err := json.NewDecoder(req.Body).Decode(&call); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	r.mu.Lock()
	r.calls = append(r.calls, call)
	valid := r.sessionKey != "" && strings.Contains(req.Header.Get("Cookie"), "sess_key="+r.sessionKey)
	h, found := r.handlers[routeKey(call.FuncName, call.Action, call.Type())]
	if !found {
		h, found = r.handlers[routeKey(call.FuncName, call.Action, "")]
	}
	r.mu.Unlock()

	if !valid {
		writeJSON(w, http.StatusOK, Expired())
		return
	}
	if !found {
		writeJSON(w, http.StatusOK, Legacy(map[string]any{}))
		return
	}

	status, body := h(call)
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	if raw, ok := body.([]byte); ok {
		w.WriteHeader(status)
		_, _ = w.Write(raw)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
