package ikuai

// SwitchSpec describes a router toggle: how to read it and how to flip it.
type SwitchSpec struct {
	Name  string
	Label string
	Show  Request
	// On and Off are field predicates; every field must match.
	On      map[string]any
	Off     map[string]any
	TurnOn  Request
	TurnOff Request
}

// SwitchState is the resolved state of one switch.
type SwitchState struct {
	Name string `json:"name"`
	On   bool   `json:"on"`
}

// ARPFilterSwitch only lets MAC-bound clients reach the internet.
var ARPFilterSwitch = SwitchSpec{
	Name:    "arp_filter",
	Label:   "Only bound MAC addresses may access the internet",
	Show:    Request{FuncName: "arp", Action: "show", Param: map[string]any{"TYPE": "options"}},
	On:      map[string]any{"arp_filter": 1},
	Off:     map[string]any{"arp_filter": 0},
	TurnOn:  Request{FuncName: "arp", Action: "seting", Param: map[string]any{"arp_filter": 1}},
	TurnOff: Request{FuncName: "arp", Action: "seting", Param: map[string]any{"arp_filter": 0}},
}

// switchRecord picks the record a switch's predicates apply to: the first
// element of the data list when the show call asks for TYPE=data, otherwise the
// data object itself.
func switchRecord(spec SwitchSpec, resp *Response) map[string]any {
	if resp.Data == nil {
		return nil
	}
	if list, ok := resp.Data["data"].([]any); ok && len(list) == 0 {
		return nil
	}
	if spec.Show.Type() == "data" {
		items := getObjects(resp.Data, "data")
		if len(items) == 0 {
			return nil
		}
		return items[0]
	}
	return resp.Data
}

// matches reports whether every predicate field equals the record's value.
// An empty predicate never matches.
func matches(record, predicate map[string]any) bool {
	if len(predicate) == 0 {
		return false
	}
	for key, want := range predicate {
		got, ok := record[key]
		if !ok || !equalValues(got, want) {
			return false
		}
	}
	return true
}

// ResolveSwitch evaluates spec against its show response. ok is false when the
// record matches neither predicate; such a switch must be left out of the
// results rather than reported as off.
func ResolveSwitch(spec SwitchSpec, resp *Response) (state SwitchState, ok bool) {
	record := switchRecord(spec, resp)
	if record == nil {
		return SwitchState{}, false
	}
	switch {
	case matches(record, spec.On):
		return SwitchState{Name: spec.Name, On: true}, true
	case matches(record, spec.Off):
		return SwitchState{Name: spec.Name, On: false}, true
	default:
		return SwitchState{}, false
	}
}
