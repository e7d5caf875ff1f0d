package tags

import (
	"context"
	"errors"
	"fmt"

	"anarchy-bot/internal/platform"
	"anarchy-bot/internal/storage"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

const unknownTag = "I don't know that tag"

type Module struct {
	api    platform.API
	store  storage.TagStore
	logger *zap.Logger
}

func New(api platform.API, store storage.TagStore, logger *zap.Logger) *Module {
	return &Module{api: api, store: store, logger: logger}
}

func (m *Module) Get(ctx context.Context, msg *discordgo.Message, name string) error {
	tag, err := m.store.GetTag(ctx, name)
	if err != nil {
		if errors.Is(err, storage.ErrTagNotFound) {
			platform.Reply(m.api, msg.ChannelID, unknownTag, m.logger)
			return nil
		}
		m.logger.Error("tag lookup failed", zap.String("tag", name), zap.Error(err))
		platform.Fail(m.api, msg, platform.EmojiStoreFailure, m.logger)
		return fmt.Errorf("get tag %q: %w", name, err)
	}
	platform.Reply(m.api, msg.ChannelID, tag.Contents, m.logger)
	return nil
}

func (m *Module) Set(ctx context.Context, msg *discordgo.Message, name, contents string) error {
	if err := m.store.SetTag(ctx, name, contents); err != nil {
		m.logger.Error("tag write failed", zap.String("tag", name), zap.Error(err))
		platform.Fail(m.api, msg, platform.EmojiStoreFailure, m.logger)
		return fmt.Errorf("set tag %q: %w", name, err)
	}
	platform.Succeed(m.api, msg, m.logger)
	return nil
}

func (m *Module) Delete(ctx context.Context, msg *discordgo.Message, name string) error {
	if err := m.store.DeleteTag(ctx, name); err != nil {
		if errors.Is(err, storage.ErrTagNotFound) {
			platform.Fail(m.api, msg, platform.EmojiUnknown, m.logger)
			return nil
		}
		m.logger.Error("tag delete failed", zap.String("tag", name), zap.Error(err))
		platform.Fail(m.api, msg, platform.EmojiStoreFailure, m.logger)
		return fmt.Errorf("delete tag %q: %w", name, err)
	}
	platform.Succeed(m.api, msg, m.logger)
	return nil
}
