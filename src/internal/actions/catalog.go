package actions

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/maksimkurb/ikuai-bridge/src/internal/errors"
	"github.com/maksimkurb/ikuai-bridge/src/internal/ikuai"
)

const (
	Reboot       = "reboot"
	ReconnectWAN = "reconnect_wan"

	switchPrefix = "switch."
	aclPrefix    = "acl."
)

// Kind groups actions the way hosts render them.
type Kind string

const (
	KindButton     Kind = "button"
	KindSwitch     Kind = "switch"
	KindMACControl Kind = "mac_control"
)

// Action is a named control command.
type Action struct {
	Name    string        `json:"name"`
	Label   string        `json:"label"`
	Kind    Kind          `json:"kind"`
	Request ikuai.Request `json:"request"`
}

// Options selects which actions a Catalog exposes.
type Options struct {
	Reboot       bool
	ReconnectWAN bool
	MACControl   bool
	Switches     []ikuai.SwitchSpec
}

// Catalog resolves action names to router requests.
//
// Names are "reboot", "reconnect_wan", "switch.<name>.on", "switch.<name>.off",
// "acl.<id>.enable" and "acl.<id>.disable".
type Catalog struct {
	static     map[string]Action
	order      []string
	macControl bool
}

// NewCatalog builds a catalog.
func NewCatalog(opts Options) *Catalog {
	c := &Catalog{
		static:     make(map[string]Action),
		macControl: opts.MACControl,
	}
	if opts.Reboot {
		c.add(Action{Name: Reboot, Label: "Reboot router", Kind: KindButton, Request: ikuai.RebootRequest})
	}
	if opts.ReconnectWAN {
		c.add(Action{Name: ReconnectWAN, Label: "Reconnect WAN", Kind: KindButton, Request: ikuai.ReconnectWANRequest})
	}
	for _, spec := range opts.Switches {
		label := spec.Label
		if label == "" {
			label = spec.Name
		}
		c.add(Action{Name: SwitchAction(spec.Name, true), Label: label + ": on", Kind: KindSwitch, Request: spec.TurnOn})
		c.add(Action{Name: SwitchAction(spec.Name, false), Label: label + ": off", Kind: KindSwitch, Request: spec.TurnOff})
	}
	return c
}

func (c *Catalog) add(a Action) {
	c.static[a.Name] = a
	c.order = append(c.order, a.Name)
}

// SwitchAction returns the action name that turns a switch on or off.
func SwitchAction(name string, on bool) string {
	if on {
		return switchPrefix + name + ".on"
	}
	return switchPrefix + name + ".off"
}

// ACLAction returns the action name that enables or disables an access-control entry.
func ACLAction(id int, enable bool) string {
	if enable {
		return aclPrefix + strconv.Itoa(id) + ".enable"
	}
	return aclPrefix + strconv.Itoa(id) + ".disable"
}

// List returns the static actions in definition order followed by the
// enable/disable pair of every given access-control entry.
func (c *Catalog) List(entries []ikuai.ACLEntry) []Action {
	out := make([]Action, 0, len(c.order)+2*len(entries))
	for _, name := range c.order {
		out = append(out, c.static[name])
	}
	if !c.macControl {
		return out
	}

	sorted := make([]ikuai.ACLEntry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })
	for _, e := range sorted {
		out = append(out,
			Action{Name: ACLAction(e.ID, true), Label: e.Label() + ": enable", Kind: KindMACControl, Request: ikuai.ACLToggleRequest(e.ID, true)},
			Action{Name: ACLAction(e.ID, false), Label: e.Label() + ": disable", Kind: KindMACControl, Request: ikuai.ACLToggleRequest(e.ID, false)},
		)
	}
	return out
}

// Lookup resolves an action name.
func (c *Catalog) Lookup(name string) (Action, error) {
	if a, ok := c.static[name]; ok {
		return a, nil
	}

	if strings.HasPrefix(name, aclPrefix) && c.macControl {
		rest := strings.TrimPrefix(name, aclPrefix)
		idPart, verb, ok := strings.Cut(rest, ".")
		if ok && (verb == "enable" || verb == "disable") {
			if id, err := strconv.Atoi(idPart); err == nil && id > 0 {
				enable := verb == "enable"
				return Action{
					Name:    name,
					Label:   fmt.Sprintf("MAC control %d: %s", id, verb),
					Kind:    KindMACControl,
					Request: ikuai.ACLToggleRequest(id, enable),
				}, nil
			}
		}
	}

	return Action{}, errors.NewValidationError(fmt.Sprintf("unknown action %q", name), nil)
}

// Controller sends a control command to the router.
type Controller interface {
	ControlDevice(ctx context.Context, req ikuai.Request) (*ikuai.Response, error)
}

// Result describes how the router answered an action.
type Result struct {
	Action    string `json:"action"`
	Succeeded bool   `json:"succeeded"`
	Code      int    `json:"code"`
	Message   string `json:"message,omitempty"`
}

// Run resolves name and sends it through ctrl. A router answer other than
// success is reported as an ACTION_ERROR together with the Result.
func (c *Catalog) Run(ctx context.Context, ctrl Controller, name string) (Result, error) {
	action, err := c.Lookup(name)
	if err != nil {
		return Result{Action: name}, err
	}
	return Execute(ctx, ctrl, action.Name, action.Request)
}

// Execute sends req through ctrl and interprets the answer.
func Execute(ctx context.Context, ctrl Controller, name string, req ikuai.Request) (Result, error) {
	resp, err := ctrl.ControlDevice(ctx, req)
	if err != nil {
		return Result{Action: name}, err
	}

	result := Result{
		Action:    name,
		Succeeded: resp.Succeeded(),
		Code:      resp.Code,
		Message:   resp.Message,
	}
	if !result.Succeeded {
		return result, errors.NewActionError(fmt.Sprintf("router refused %s: %s", name, resp.Describe()), nil)
	}
	return result, nil
}
