package messaging

import (
	"io"
	"strings"

	"github.com/valyala/fasttemplate"

	"github.com/maksimkurb/ikuai-bridge/src/internal/config"
	"github.com/maksimkurb/ikuai-bridge/src/internal/errors"
	"github.com/maksimkurb/ikuai-bridge/src/internal/presence"
)

const resultSuffix = "/result"

// Topics renders the configured topic templates for one router.
//
// Templates use {{prefix}} and {{router}}; the presence template also takes
// {{name}} and {{target}}.
type Topics struct {
	State   string
	Command string
	Result  string

	presence *fasttemplate.Template
	vars     map[string]interface{}
}

// NewTopics parses the topic templates of cfg.
func NewTopics(cfg *config.MessagingConfig, router string) (*Topics, error) {
	vars := map[string]interface{}{
		"prefix": strings.Trim(cfg.TopicPrefix, "/"),
		"router": topicSegment(router),
	}

	render := func(name, tmpl string) (string, error) {
		t, err := fasttemplate.NewTemplate(tmpl, "{{", "}}")
		if err != nil {
			return "", errors.NewConfigError("invalid "+name+" template", err)
		}
		return t.ExecuteString(vars), nil
	}

	state, err := render("state_topic", cfg.StateTopic)
	if err != nil {
		return nil, err
	}
	command, err := render("command_topic", cfg.CommandTopic)
	if err != nil {
		return nil, err
	}
	presenceTmpl, err := fasttemplate.NewTemplate(cfg.PresenceTopic, "{{", "}}")
	if err != nil {
		return nil, errors.NewConfigError("invalid presence_topic template", err)
	}

	return &Topics{
		State:    state,
		Command:  command,
		Result:   command + resultSuffix,
		presence: presenceTmpl,
		vars:     vars,
	}, nil
}

// Presence returns the topic for one tracked device.
func (t *Topics) Presence(st presence.Status) string {
	return t.presence.ExecuteFuncString(func(w io.Writer, tag string) (int, error) {
		switch tag {
		case "name":
			return w.Write([]byte(topicSegment(st.Name)))
		case "target":
			return w.Write([]byte(topicSegment(st.TargetID)))
		}
		if v, ok := t.vars[tag].(string); ok {
			return w.Write([]byte(v))
		}
		return 0, nil
	})
}

// topicSegment makes s safe to use as one topic level.
func topicSegment(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '+', '#', ' ', ':', '.':
			return '_'
		}
		return r
	}, s)
}
