package audit

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"anarchy-bot/internal/platform"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

const (
	title       = "Anarchy"
	colorAction = 0xF59E0B
	sourceDMs   = "DMs"
)

type Record struct {
	Source string
	Actor  string
	Action string
	Detail string
}

// Logger forwards channel mutations to the anonymous and full log channels.
// Either channel ID may be empty.
type Logger struct {
	api    platform.API
	fullID string
	anonID string
	logger *zap.Logger
	now    func() time.Time
}

func NewLogger(api platform.API, fullChannelID, anonChannelID string, logger *zap.Logger) *Logger {
	return &Logger{api: api, fullID: fullChannelID, anonID: anonChannelID, logger: logger, now: time.Now}
}

// Log never fails: a dispatch error is logged and the next destination is
// still attempted.
func (l *Logger) Log(ctx context.Context, rec Record) {
	l.logger.Info("audit",
		zap.String("source", rec.Source),
		zap.String("actor", rec.Actor),
		zap.String("action", rec.Action),
		zap.String("detail", rec.Detail),
	)
	if ctx.Err() != nil {
		return
	}
	if l.anonID != "" {
		if _, err := l.api.ChannelMessageSendEmbed(l.anonID, l.anonymousEmbed(rec)); err != nil {
			l.logger.Warn("anonymous audit dispatch failed", zap.String("channel_id", l.anonID), zap.Error(err))
		}
	}
	if l.fullID != "" {
		if _, err := l.api.ChannelMessageSendEmbed(l.fullID, l.fullEmbed(rec)); err != nil {
			l.logger.Warn("full audit dispatch failed", zap.String("channel_id", l.fullID), zap.Error(err))
		}
	}
}

func (l *Logger) anonymousEmbed(rec Record) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:     title,
		Color:     colorAction,
		Fields:    []*discordgo.MessageEmbedField{{Name: rec.Action, Value: fieldValue(rec.Detail)}},
		Timestamp: l.now().UTC().Format(time.RFC3339),
	}
}

func (l *Logger) fullEmbed(rec Record) *discordgo.MessageEmbed {
	embed := l.anonymousEmbed(rec)
	embed.Footer = &discordgo.MessageEmbedFooter{Text: footer(rec)}
	return embed
}

func footer(rec Record) string {
	source := rec.Source
	if source == "" {
		source = sourceDMs
	}
	return "In " + source + " by " + rec.Actor
}

// Discord rejects empty field values.
func fieldValue(detail string) string {
	if strings.TrimSpace(detail) == "" {
		return "-"
	}
	if len(detail) > 1024 {
		cut := 1021
		for cut > 0 && !utf8.RuneStart(detail[cut]) {
			cut--
		}
		return detail[:cut] + "..."
	}
	return detail
}

// Source names where a command was issued: "DMs" or "#channel-name".
func Source(channel *discordgo.Channel) string {
	if channel == nil || channel.Type == discordgo.ChannelTypeDM || channel.Type == discordgo.ChannelTypeGroupDM {
		return sourceDMs
	}
	return "#" + channel.Name
}

// Actor formats a user for the full log.
func Actor(user *discordgo.User) string {
	if user == nil {
		return "unknown"
	}
	return user.Username + " (" + user.ID + ")"
}
