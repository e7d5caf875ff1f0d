package reactor

import (
	"context"
	"math/rand"
	"strings"

	"anarchy-bot/internal/config"
	"anarchy-bot/internal/platform"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// Module reacts to trigger words in direct messages and in the monitored
// channels or categories.
type Module struct {
	api          platform.API
	channels     map[string]struct{}
	triggerWords []string
	triggerEmoji string
	chance       int
	angerWords   []string
	angerEmoji   []string
	roll         func(n int) int
	logger       *zap.Logger
}

func New(api platform.API, cfg config.ReactorConfig, logger *zap.Logger) *Module {
	channels := make(map[string]struct{}, len(cfg.ChannelIDs))
	for _, id := range cfg.ChannelIDs {
		channels[id] = struct{}{}
	}
	chance := cfg.Chance
	if chance <= 0 {
		chance = 10
	}
	return &Module{
		api:          api,
		channels:     channels,
		triggerWords: lowerAll(cfg.TriggerWords),
		triggerEmoji: cfg.TriggerEmoji,
		chance:       chance,
		angerWords:   lowerAll(cfg.AngerWords),
		angerEmoji:   cfg.AngerEmoji,
		roll:         rand.Intn,
		logger:       logger,
	}
}

// WithRoll replaces the random source; roll must return a value in [0, n).
func (m *Module) WithRoll(roll func(n int) int) *Module {
	m.roll = roll
	return m
}

// HandleMessage returns how many reactions were attached.
func (m *Module) HandleMessage(ctx context.Context, msg *discordgo.Message) int {
	if msg == nil || msg.Content == "" || (msg.Author != nil && msg.Author.Bot) {
		return 0
	}
	if ctx.Err() != nil || !m.monitored(msg) {
		return 0
	}

	content := strings.ToLower(msg.Content)
	var emoji []string
	if containsAny(content, m.triggerWords) && m.roll(m.chance) == m.chance-1 {
		emoji = append(emoji, m.triggerEmoji)
	}
	if len(m.angerWords) == 2 && strings.Contains(content, m.angerWords[0]) && strings.Contains(content, m.angerWords[1]) {
		emoji = append(emoji, m.angerEmoji...)
	}

	attached := 0
	for _, e := range emoji {
		if e == "" {
			continue
		}
		if err := platform.React(m.api, msg.ChannelID, msg.ID, e); err != nil {
			m.logger.Debug("keyword reaction failed", zap.String("channel_id", msg.ChannelID), zap.String("emoji", e), zap.Error(err))
			continue
		}
		attached++
	}
	return attached
}

func (m *Module) monitored(msg *discordgo.Message) bool {
	if msg.GuildID == "" {
		return true
	}
	if _, ok := m.channels[msg.ChannelID]; ok {
		return true
	}
	if len(m.channels) == 0 {
		return false
	}
	channel, err := m.api.Channel(msg.ChannelID)
	if err != nil || channel.ParentID == "" {
		return false
	}
	_, ok := m.channels[channel.ParentID]
	return ok
}

func containsAny(content string, words []string) bool {
	for _, word := range words {
		if word != "" && strings.Contains(content, word) {
			return true
		}
	}
	return false
}

func lowerAll(words []string) []string {
	out := make([]string, 0, len(words))
	for _, word := range words {
		out = append(out, strings.ToLower(word))
	}
	return out
}
