package messaging

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"github.com/maksimkurb/ikuai-bridge/src/internal/actions"
	"github.com/maksimkurb/ikuai-bridge/src/internal/errors"
	"github.com/maksimkurb/ikuai-bridge/src/internal/ikuai"
	"github.com/maksimkurb/ikuai-bridge/src/internal/log"
)

const commandTimeout = 30 * time.Second

// Command is an inbound control request. Exactly one of Action and Request
// must be set.
type Command struct {
	ID      string         `json:"id,omitempty"`
	Action  string         `json:"action,omitempty"`
	Request *ikuai.Request `json:"request,omitempty"`
}

// CommandResult is published to the result topic for every command.
type CommandResult struct {
	ID string `json:"id,omitempty"`
	actions.Result
	Error     string `json:"error,omitempty"`
	ErrorCode string `json:"error_code,omitempty"`
}

// CommandHandler runs commands received on the command topic.
type CommandHandler struct {
	broker  Broker
	topics  *Topics
	catalog *actions.Catalog
	ctrl    actions.Controller
	logger  zerolog.Logger
}

// NewCommandHandler creates a command handler.
func NewCommandHandler(broker Broker, topics *Topics, catalog *actions.Catalog, ctrl actions.Controller) *CommandHandler {
	return &CommandHandler{
		broker:  broker,
		topics:  topics,
		catalog: catalog,
		ctrl:    ctrl,
		logger:  log.With("messaging"),
	}
}

// Start subscribes to the command topic.
func (h *CommandHandler) Start() error {
	h.logger.Info().Str("topic", h.topics.Command).Msg("Listening for commands")
	return h.broker.Subscribe(h.topics.Command, func(payload []byte) {
		go h.Handle(context.Background(), payload)
	})
}

// Handle runs one command and publishes its result.
func (h *CommandHandler) Handle(ctx context.Context, payload []byte) CommandResult {
	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	result := h.run(ctx, payload)

	out, err := json.Marshal(result)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to encode command result")
		return result
	}
	if err := h.broker.Publish(ctx, h.topics.Result, out); err != nil {
		h.logger.Warn().Err(err).Str("topic", h.topics.Result).Msg("Failed to publish command result")
	}
	return result
}

func (h *CommandHandler) run(ctx context.Context, payload []byte) CommandResult {
	var cmd Command
	if err := json.Unmarshal(payload, &cmd); err != nil {
		return failed(cmd, errors.NewValidationError("invalid command payload", err))
	}

	var (
		res actions.Result
		err error
	)
	switch {
	case cmd.Action != "" && cmd.Request != nil:
		err = errors.NewValidationError("command must set either action or request, not both", nil)
	case cmd.Action != "":
		res, err = h.catalog.Run(ctx, h.ctrl, cmd.Action)
	case cmd.Request != nil:
		if cmd.Request.FuncName == "" || cmd.Request.Action == "" {
			err = errors.NewValidationError("request needs func_name and action", nil)
			break
		}
		res, err = actions.Execute(ctx, h.ctrl, cmd.Request.FuncName+"/"+cmd.Request.Action, *cmd.Request)
	default:
		err = errors.NewValidationError("command must set action or request", nil)
	}

	out := CommandResult{ID: cmd.ID, Result: res}
	if err != nil {
		if out.Action == "" {
			out.Action = cmd.Action
		}
		out.Error = err.Error()
		out.ErrorCode = string(errors.CodeOf(err))
		h.logger.Warn().Err(err).Str("id", cmd.ID).Str("action", cmd.Action).Msg("Command failed")
	} else {
		h.logger.Info().Str("id", cmd.ID).Str("action", res.Action).Msg("Command executed")
	}
	return out
}

func failed(cmd Command, err error) CommandResult {
	return CommandResult{
		ID:        cmd.ID,
		Result:    actions.Result{Action: cmd.Action},
		Error:     err.Error(),
		ErrorCode: string(errors.CodeOf(err)),
	}
}
