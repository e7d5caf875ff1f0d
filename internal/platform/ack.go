package platform

import (
	"anarchy-bot/internal/utils"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

const (
	EmojiSuccess      = "✅"
	EmojiFailure      = "❌"
	EmojiStoreFailure = "❎"
	EmojiUnknown      = "❓"
)

const successNotice = "succeeded"

// Succeed marks msg with a checkmark. When the reaction cannot be added the
// notice is sent as text instead; if that fails too the failure is only logged,
// the operation itself already happened.
func Succeed(api API, msg *discordgo.Message, logger *zap.Logger) {
	err := api.MessageReactionAdd(msg.ChannelID, msg.ID, EmojiSuccess)
	if err == nil {
		return
	}
	logger.Debug("success reaction failed", zap.String("channel_id", msg.ChannelID), zap.Error(err))
	if _, err := api.ChannelMessageSend(msg.ChannelID, successNotice); err != nil {
		logger.Warn("success notice failed", zap.String("channel_id", msg.ChannelID), zap.Error(err))
	}
}

// Fail marks msg with emoji and nothing else.
func Fail(api API, msg *discordgo.Message, emoji string, logger *zap.Logger) {
	if err := api.MessageReactionAdd(msg.ChannelID, msg.ID, emoji); err != nil {
		logger.Debug("failure reaction failed", zap.String("channel_id", msg.ChannelID), zap.Error(err))
	}
}

// React adds a reaction, retrying once unless the platform refused it.
func React(api API, channelID, messageID, emoji string) error {
	return utils.RetryOnce(func() error {
		return api.MessageReactionAdd(channelID, messageID, emoji)
	}, func(err error) bool {
		return !IsForbidden(err)
	})
}

func Reply(api API, channelID, content string, logger *zap.Logger) {
	if _, err := api.ChannelMessageSend(channelID, content); err != nil {
		logger.Warn("reply failed", zap.String("channel_id", channelID), zap.Error(err))
	}
}
