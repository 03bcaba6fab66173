package ikuai

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
)

// Router result codes.
const (
	ResultSuccess            = 30000
	ResultLoginSuccess       = 10000
	ResultInvalidCredentials = 10001
	ResultSessionExpired     = 10014
	CodeSuccess              = 0
	CodeSessionExpired       = 401
)

// Shape identifies which wire format a response arrived in.
type Shape int

const (
	// ShapeLegacy is {"Result": 30000, "ErrMsg": "...", "Data": {...}}.
	ShapeLegacy Shape = iota
	// ShapeModern is {"code": 0, "message": "...", "results": {...}}.
	ShapeModern
	// ShapeCode is a bare JSON number, e.g. 401.
	ShapeCode
	// ShapeObject is a JSON object in neither known envelope.
	ShapeObject
	// ShapeText is a body that is not JSON at all.
	ShapeText
)

func (s Shape) String() string {
	switch s {
	case ShapeLegacy:
		return "legacy"
	case ShapeModern:
		return "modern"
	case ShapeCode:
		return "code"
	case ShapeObject:
		return "object"
	default:
		return "text"
	}
}

// Request is a call envelope for the /Action/call endpoint.
type Request struct {
	FuncName string         `json:"func_name"`
	Action   string         `json:"action"`
	Param    map[string]any `json:"param,omitempty"`
}

// Type returns the param TYPE of the request, if any.
func (r Request) Type() string {
	if r.Param == nil {
		return ""
	}
	s, _ := r.Param["TYPE"].(string)
	return s
}

// Response is the canonical form of every router reply. Field access
// elsewhere goes through Response, never through the raw JSON.
type Response struct {
	Shape      Shape          `json:"shape"`
	HTTPStatus int            `json:"http_status"`
	Code       int            `json:"code"`
	HasCode    bool           `json:"-"`
	Message    string         `json:"message,omitempty"`
	Data       map[string]any `json:"data,omitempty"`
	// RawData holds the payload when it is present but not an object.
	RawData any    `json:"raw_data,omitempty"`
	Text    string `json:"text,omitempty"`
}

// Normalize converts an HTTP status and UTF-8 body into a Response.
// It never fails: unparseable bodies become ShapeText.
func Normalize(status int, body []byte) *Response {
	r := &Response{HTTPStatus: status}

	trimmed := bytes.TrimSpace(body)
	var decoded any
	if len(trimmed) == 0 || json.Unmarshal(trimmed, &decoded) != nil {
		r.Shape = ShapeText
		r.Text = string(trimmed)
		if code, err := strconv.Atoi(r.Text); err == nil {
			r.Shape = ShapeCode
			r.Code = code
			r.HasCode = true
		}
		return r
	}

	switch v := decoded.(type) {
	case float64:
		r.Shape = ShapeCode
		r.Code = int(v)
		r.HasCode = true
	case map[string]any:
		normalizeObject(r, v)
	default:
		r.Shape = ShapeText
		r.Text = string(trimmed)
		r.RawData = v
	}
	return r
}

func normalizeObject(r *Response, obj map[string]any) {
	_, hasResult := obj["Result"]
	_, hasData := obj["Data"]
	_, hasCode := obj["code"]
	_, hasResults := obj["results"]

	var payload any
	switch {
	case hasResult || hasData:
		r.Shape = ShapeLegacy
		r.Code, r.HasCode = asInt(obj["Result"])
		r.Message = asString(obj["ErrMsg"])
		payload = obj["Data"]
	case hasCode || hasResults:
		r.Shape = ShapeModern
		r.Code, r.HasCode = asInt(obj["code"])
		r.Message = asString(obj["message"])
		payload = obj["results"]
	default:
		r.Shape = ShapeObject
		r.Data = obj
		return
	}

	switch p := payload.(type) {
	case map[string]any:
		r.Data = p
	case nil:
	default:
		r.RawData = p
	}
}

// Expired reports whether the router rejected the session key.
func (r *Response) Expired() bool {
	if r.HTTPStatus == http.StatusUnauthorized {
		return true
	}
	if !r.HasCode {
		return false
	}
	switch r.Shape {
	case ShapeLegacy:
		return r.Code == ResultSessionExpired
	case ShapeModern, ShapeCode:
		return r.Code == CodeSessionExpired
	}
	return false
}

// InvalidCredentials reports whether a login was refused because of bad credentials.
func (r *Response) InvalidCredentials() bool {
	return r.HasCode && r.Code == ResultInvalidCredentials &&
		(r.Shape == ShapeLegacy || r.Shape == ShapeModern)
}

// Succeeded reports whether the router accepted the call.
func (r *Response) Succeeded() bool {
	if r.HTTPStatus != http.StatusOK || !r.HasCode {
		return false
	}
	switch r.Shape {
	case ShapeLegacy:
		return r.Code == ResultSuccess || r.Code == ResultLoginSuccess
	case ShapeModern:
		return r.Code == CodeSuccess
	}
	return false
}

// Describe returns a short human-readable summary used in errors and logs.
func (r *Response) Describe() string {
	var sb strings.Builder
	sb.WriteString(r.Shape.String())
	if r.HasCode {
		sb.WriteString(" code=")
		sb.WriteString(strconv.Itoa(r.Code))
	}
	if r.Message != "" {
		sb.WriteString(" message=")
		sb.WriteString(strconv.Quote(r.Message))
	}
	if r.Shape == ShapeText && r.Text != "" {
		text := r.Text
		if len(text) > 64 {
			text = text[:64] + "..."
		}
		sb.WriteString(" body=")
		sb.WriteString(strconv.Quote(text))
	}
	if r.HTTPStatus != http.StatusOK {
		sb.WriteString(" http=")
		sb.WriteString(strconv.Itoa(r.HTTPStatus))
	}
	return sb.String()
}
