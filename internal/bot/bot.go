package bot

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"anarchy-bot/internal/config"
	"anarchy-bot/internal/modules/anarchy"
	"anarchy-bot/internal/modules/audit"
	"anarchy-bot/internal/modules/reactor"
	"anarchy-bot/internal/modules/roles"
	"anarchy-bot/internal/modules/tags"
	"anarchy-bot/internal/platform"
	"anarchy-bot/internal/storage"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

type Bot struct {
	cfg      config.Config
	logger   *zap.Logger
	session  *discordgo.Session
	api      platform.API
	router   *Router
	anarchy  *anarchy.Service
	reactor  *reactor.Module
	registry *roles.Registry
	roles    *roles.Module
	tags     *tags.Module
}

func New(cfg config.Config, logger *zap.Logger, store storage.TagStore) (*Bot, error) {
	session, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, err
	}

	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsDirectMessages |
		discordgo.IntentsMessageContent

	b, err := newBot(cfg, logger, platform.NewSession(session), store)
	if err != nil {
		return nil, err
	}
	b.session = session
	return b, nil
}

func newBot(cfg config.Config, logger *zap.Logger, api platform.API, store storage.TagStore) (*Bot, error) {
	registry, err := roles.NewRegistry(cfg.RolesPath)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Warn("role categories file missing, starting empty", zap.String("path", cfg.RolesPath))
		registry = roles.EmptyRegistry(cfg.RolesPath)
	} else if err != nil {
		return nil, fmt.Errorf("load role categories: %w", err)
	}

	auditLogger := audit.NewLogger(api, cfg.Anarchy.FullLogChannelID, cfg.Anarchy.AnonLogChannelID, logger.Named("audit"))

	b := &Bot{
		cfg:      cfg,
		logger:   logger,
		api:      api,
		anarchy:  anarchy.New(api, cfg.GuildID, cfg.Anarchy.CategoryID, auditLogger, logger.Named("anarchy")),
		reactor:  reactor.New(api, cfg.Reactor, logger.Named("reactor")),
		registry: registry,
		roles:    roles.New(api, registry, cfg.GuildID, logger.Named("roles")),
		tags:     tags.New(api, store, logger.Named("tags")),
	}
	b.router = NewRouter(cfg.CommandPrefix, api, NewModCheck(api, cfg.GuildID, cfg.ModRoleID, logger), logger.Named("commands"))
	b.registerCommands()
	return b, nil
}

func (b *Bot) Start() error {
	b.session.AddHandler(b.onReady)
	b.session.AddHandler(b.onMessageCreate)
	b.session.AddHandler(b.onInteractionCreate)

	return b.session.Open()
}

func (b *Bot) Close(ctx context.Context) {
	_ = ctx
	if b.session != nil {
		_ = b.session.Close()
	}
}

func (b *Bot) onReady(session *discordgo.Session, event *discordgo.Ready) {
	b.logger.Info("discord ready",
		zap.String("user", event.User.Username),
		zap.Int("guilds", len(event.Guilds)),
		zap.Int("role_categories", b.registry.Len()),
	)
}

func (b *Bot) onMessageCreate(session *discordgo.Session, msg *discordgo.MessageCreate) {
	b.handleMessage(context.Background(), msg.Message)
}

func (b *Bot) handleMessage(ctx context.Context, msg *discordgo.Message) {
	if msg.Author == nil || msg.Author.Bot {
		return
	}
	b.reactor.HandleMessage(ctx, msg)
	b.router.Dispatch(ctx, msg)
}

func (b *Bot) onInteractionCreate(session *discordgo.Session, event *discordgo.InteractionCreate) {
	b.handleInteraction(context.Background(), event.Interaction)
}

func (b *Bot) handleInteraction(ctx context.Context, interaction *discordgo.Interaction) {
	if interaction.Type != discordgo.InteractionMessageComponent {
		return
	}
	if err := b.roles.HandleButton(ctx, interaction); err != nil {
		b.logger.Info("role toggle failed",
			zap.String("interaction_id", interaction.ID),
			zap.Error(err),
		)
	}
}
