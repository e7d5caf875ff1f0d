package bot

import (
	"context"

	"anarchy-bot/internal/platform"

	"go.uber.org/zap"
)

// ModCheck decides who may run moderator commands: holders of the moderator
// role and the guild owner.
type ModCheck struct {
	api     platform.API
	guildID string
	roleID  string
	logger  *zap.Logger
}

func NewModCheck(api platform.API, guildID, roleID string, logger *zap.Logger) *ModCheck {
	return &ModCheck{api: api, guildID: guildID, roleID: roleID, logger: logger}
}

func (m *ModCheck) Allowed(ctx context.Context, userID string) bool {
	if userID == "" || ctx.Err() != nil {
		return false
	}
	if guild, err := m.api.Guild(m.guildID); err == nil && guild.OwnerID == userID {
		return true
	} else if err != nil {
		m.logger.Warn("guild lookup failed", zap.Error(err))
	}
	if m.roleID == "" {
		return false
	}
	member, err := m.api.GuildMember(m.guildID, userID)
	if err != nil {
		if !platform.IsNotFound(err) {
			m.logger.Warn("member lookup failed", zap.String("user_id", userID), zap.Error(err))
		}
		return false
	}
	for _, id := range member.Roles {
		if id == m.roleID {
			return true
		}
	}
	return false
}
