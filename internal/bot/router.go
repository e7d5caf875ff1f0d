package bot

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"anarchy-bot/internal/modules/anarchy"
	"anarchy-bot/internal/modules/roles"
	"anarchy-bot/internal/platform"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Invocation is one parsed command message.
type Invocation struct {
	ID     string
	Msg    *discordgo.Message
	Args   []string
	Logger *zap.Logger
}

// Rest joins the arguments from index i onwards.
func (inv Invocation) Rest(i int) string {
	if i >= len(inv.Args) {
		return ""
	}
	return strings.Join(inv.Args[i:], " ")
}

type Command struct {
	Name    string
	Usage   string
	MinArgs int
	ModOnly bool
	Run     func(ctx context.Context, inv Invocation) error
}

type Router struct {
	prefix   string
	api      platform.API
	mods     *ModCheck
	logger   *zap.Logger
	commands map[string]Command
}

func NewRouter(prefix string, api platform.API, mods *ModCheck, logger *zap.Logger) *Router {
	return &Router{
		prefix:   prefix,
		api:      api,
		mods:     mods,
		logger:   logger,
		commands: make(map[string]Command),
	}
}

func (r *Router) Register(cmd Command) {
	if _, exists := r.commands[cmd.Name]; exists {
		panic(fmt.Sprintf("command %q registered twice", cmd.Name))
	}
	r.commands[cmd.Name] = cmd
}

// Commands returns the registered commands sorted by name.
func (r *Router) Commands() []Command {
	out := make([]Command, 0, len(r.commands))
	for _, cmd := range r.commands {
		out = append(out, cmd)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Dispatch runs the command addressed by msg. It reports whether msg named a
// registered command; unknown commands are ignored.
func (r *Router) Dispatch(ctx context.Context, msg *discordgo.Message) bool {
	name, args, ok := Parse(r.prefix, msg.Content)
	if !ok {
		return false
	}
	cmd, ok := r.commands[name]
	if !ok {
		return false
	}

	inv := Invocation{ID: uuid.NewString(), Msg: msg, Args: args}
	inv.Logger = r.logger.With(
		zap.String("invocation_id", inv.ID),
		zap.String("command", cmd.Name),
		zap.String("channel_id", msg.ChannelID),
		zap.String("author_id", authorID(msg)),
	)

	if cmd.ModOnly && !r.mods.Allowed(ctx, authorID(msg)) {
		inv.Logger.Info("moderator command refused")
		return true
	}
	if len(args) < cmd.MinArgs {
		platform.Reply(r.api, msg.ChannelID, "Usage: "+r.prefix+cmd.Usage, inv.Logger)
		return true
	}

	if err := cmd.Run(ctx, inv); err != nil {
		if isUserError(err) {
			inv.Logger.Info("command rejected", zap.Error(err))
		} else {
			inv.Logger.Warn("command failed", zap.Error(err))
		}
		return true
	}
	inv.Logger.Debug("command completed")
	return true
}

// isUserError reports errors caused by the invoker's input rather than by
// the platform or storage.
func isUserError(err error) bool {
	for _, target := range []error{
		anarchy.ErrNotFound,
		anarchy.ErrAmbiguous,
		anarchy.ErrWrongCategory,
		anarchy.ErrWrongChannelKind,
		anarchy.ErrEmptyValue,
		roles.ErrUnknownReference,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func authorID(msg *discordgo.Message) string {
	if msg.Author == nil {
		return ""
	}
	return msg.Author.ID
}
