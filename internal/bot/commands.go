package bot

import (
	"context"
	"fmt"
	"strings"

	"anarchy-bot/internal/modules/anarchy"
	"anarchy-bot/internal/platform"
)

func (b *Bot) registerCommands() {
	b.router.Register(Command{
		Name:    "add_text_channel",
		Usage:   "add_text_channel <name>",
		MinArgs: 1,
		Run: func(ctx context.Context, inv Invocation) error {
			return b.anarchy.Create(ctx, inv.Msg, inv.Rest(0), anarchy.KindText)
		},
	})
	b.router.Register(Command{
		Name:    "add_voice_channel",
		Usage:   "add_voice_channel <name>",
		MinArgs: 1,
		Run: func(ctx context.Context, inv Invocation) error {
			return b.anarchy.Create(ctx, inv.Msg, inv.Rest(0), anarchy.KindVoice)
		},
	})
	b.router.Register(Command{
		Name:    "remove_channel",
		Usage:   "remove_channel <channel>",
		MinArgs: 1,
		Run: func(ctx context.Context, inv Invocation) error {
			return b.anarchy.Delete(ctx, inv.Msg, anarchy.ParseReference(inv.Args[0]))
		},
	})
	b.router.Register(Command{
		Name:    "rename_channel",
		Usage:   "rename_channel <channel> <new name>",
		MinArgs: 2,
		Run: func(ctx context.Context, inv Invocation) error {
			return b.anarchy.Rename(ctx, inv.Msg, anarchy.ParseReference(inv.Args[0]), inv.Rest(1))
		},
	})
	b.router.Register(Command{
		Name:    "set_description",
		Usage:   "set_description <channel> <text>",
		MinArgs: 2,
		Run: func(ctx context.Context, inv Invocation) error {
			return b.anarchy.SetTopic(ctx, inv.Msg, anarchy.ParseReference(inv.Args[0]), inv.Rest(1))
		},
	})
	b.router.Register(Command{
		Name:  "toggle_nsfw",
		Usage: "toggle_nsfw [channel]",
		Run:   b.toggleNSFW,
	})

	b.router.Register(Command{
		Name:    "tag",
		Usage:   "tag <name>",
		MinArgs: 1,
		Run: func(ctx context.Context, inv Invocation) error {
			return b.tags.Get(ctx, inv.Msg, inv.Args[0])
		},
	})
	b.router.Register(Command{
		Name:    "set_tag",
		Usage:   "set_tag <name> <contents>",
		MinArgs: 2,
		ModOnly: true,
		Run: func(ctx context.Context, inv Invocation) error {
			contents := inv.Rest(1)
			if strings.TrimSpace(contents) == "" {
				platform.Reply(b.api, inv.Msg.ChannelID, "Usage: "+b.cfg.CommandPrefix+"set_tag <name> <contents>", inv.Logger)
				return nil
			}
			return b.tags.Set(ctx, inv.Msg, inv.Args[0], contents)
		},
	})
	b.router.Register(Command{
		Name:    "del_tag",
		Usage:   "del_tag <name>",
		MinArgs: 1,
		ModOnly: true,
		Run: func(ctx context.Context, inv Invocation) error {
			return b.tags.Delete(ctx, inv.Msg, inv.Args[0])
		},
	})

	b.router.Register(Command{
		Name:    "post_role_msg",
		Usage:   "post_role_msg <reference>",
		MinArgs: 1,
		ModOnly: true,
		Run: func(ctx context.Context, inv Invocation) error {
			return b.roles.Post(ctx, inv.Msg, inv.Args[0])
		},
	})
	b.router.Register(Command{
		Name:    "reload_role_categories",
		Usage:   "reload_role_categories",
		ModOnly: true,
		Run:     b.reloadRoles,
	})

	b.router.Register(Command{
		Name:  "help",
		Usage: "help",
		Run:   b.help,
	})
}

// toggleNSFW defaults to the channel the command was sent in.
func (b *Bot) toggleNSFW(ctx context.Context, inv Invocation) error {
	if len(inv.Args) > 0 {
		return b.anarchy.ToggleNSFW(ctx, inv.Msg, anarchy.ParseReference(inv.Args[0]))
	}
	channel, err := b.api.Channel(inv.Msg.ChannelID)
	if err != nil {
		platform.Fail(b.api, inv.Msg, platform.EmojiFailure, inv.Logger)
		return fmt.Errorf("load current channel: %w", err)
	}
	return b.anarchy.ToggleNSFW(ctx, inv.Msg, anarchy.ByHandle(channel))
}

func (b *Bot) reloadRoles(ctx context.Context, inv Invocation) error {
	if err := b.registry.Reload(); err != nil {
		platform.Fail(b.api, inv.Msg, platform.EmojiStoreFailure, inv.Logger)
		return fmt.Errorf("reload role categories: %w", err)
	}
	inv.Logger.Info("role categories reloaded")
	platform.Succeed(b.api, inv.Msg, inv.Logger)
	return nil
}

func (b *Bot) help(ctx context.Context, inv Invocation) error {
	var sb strings.Builder
	sb.WriteString("Commands:\n")
	for _, cmd := range b.router.Commands() {
		sb.WriteString("`")
		sb.WriteString(b.cfg.CommandPrefix)
		sb.WriteString(cmd.Usage)
		sb.WriteString("`")
		if cmd.ModOnly {
			sb.WriteString(" (moderators)")
		}
		sb.WriteString("\n")
	}
	platform.Reply(b.api, inv.Msg.ChannelID, strings.TrimSuffix(sb.String(), "\n"), inv.Logger)
	return nil
}
