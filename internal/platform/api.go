// Package platform is the narrow slice of the Discord REST API the bot
// modules call into, plus the helpers shared by every command.
package platform

import (
	"github.com/bwmarrin/discordgo"
)

type API interface {
	Channel(channelID string) (*discordgo.Channel, error)
	GuildChannels(guildID string) ([]*discordgo.Channel, error)
	GuildChannelCreate(guildID string, data discordgo.GuildChannelCreateData) (*discordgo.Channel, error)
	ChannelEdit(channelID string, data *discordgo.ChannelEdit) (*discordgo.Channel, error)
	ChannelDelete(channelID string) (*discordgo.Channel, error)

	ChannelMessage(channelID, messageID string) (*discordgo.Message, error)
	ChannelMessageSend(channelID, content string) (*discordgo.Message, error)
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend) (*discordgo.Message, error)
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed) (*discordgo.Message, error)
	ChannelMessageEditComplex(data *discordgo.MessageEdit) (*discordgo.Message, error)
	MessageReactionAdd(channelID, messageID, emoji string) error

	Guild(guildID string) (*discordgo.Guild, error)
	GuildRoles(guildID string) ([]*discordgo.Role, error)
	GuildMember(guildID, userID string) (*discordgo.Member, error)
	GuildMemberRoleAdd(guildID, userID, roleID string) error
	GuildMemberRoleRemove(guildID, userID, roleID string) error

	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse) error
}

// Session adapts a discordgo session. Lookups try the gateway state cache
// before falling back to REST.
type Session struct {
	s *discordgo.Session
}

func NewSession(s *discordgo.Session) *Session {
	return &Session{s: s}
}

func (p *Session) Channel(channelID string) (*discordgo.Channel, error) {
	if p.s.State != nil {
		if channel, err := p.s.State.Channel(channelID); err == nil {
			return channel, nil
		}
	}
	return p.s.Channel(channelID)
}

func (p *Session) GuildChannels(guildID string) ([]*discordgo.Channel, error) {
	return p.s.GuildChannels(guildID)
}

func (p *Session) GuildChannelCreate(guildID string, data discordgo.GuildChannelCreateData) (*discordgo.Channel, error) {
	return p.s.GuildChannelCreateComplex(guildID, data)
}

func (p *Session) ChannelEdit(channelID string, data *discordgo.ChannelEdit) (*discordgo.Channel, error) {
	return p.s.ChannelEdit(channelID, data)
}

func (p *Session) ChannelDelete(channelID string) (*discordgo.Channel, error) {
	return p.s.ChannelDelete(channelID)
}

func (p *Session) ChannelMessage(channelID, messageID string) (*discordgo.Message, error) {
	return p.s.ChannelMessage(channelID, messageID)
}

func (p *Session) ChannelMessageSend(channelID, content string) (*discordgo.Message, error) {
	return p.s.ChannelMessageSend(channelID, content)
}

func (p *Session) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend) (*discordgo.Message, error) {
	return p.s.ChannelMessageSendComplex(channelID, data)
}

func (p *Session) ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed) (*discordgo.Message, error) {
	return p.s.ChannelMessageSendEmbed(channelID, embed)
}

func (p *Session) ChannelMessageEditComplex(data *discordgo.MessageEdit) (*discordgo.Message, error) {
	return p.s.ChannelMessageEditComplex(data)
}

func (p *Session) MessageReactionAdd(channelID, messageID, emoji string) error {
	return p.s.MessageReactionAdd(channelID, messageID, emoji)
}

func (p *Session) Guild(guildID string) (*discordgo.Guild, error) {
	if p.s.State != nil {
		if guild, err := p.s.State.Guild(guildID); err == nil {
			return guild, nil
		}
	}
	return p.s.Guild(guildID)
}

func (p *Session) GuildRoles(guildID string) ([]*discordgo.Role, error) {
	return p.s.GuildRoles(guildID)
}

func (p *Session) GuildMember(guildID, userID string) (*discordgo.Member, error) {
	if p.s.State != nil {
		if member, err := p.s.State.Member(guildID, userID); err == nil {
			return member, nil
		}
	}
	return p.s.GuildMember(guildID, userID)
}

func (p *Session) GuildMemberRoleAdd(guildID, userID, roleID string) error {
	return p.s.GuildMemberRoleAdd(guildID, userID, roleID)
}

func (p *Session) GuildMemberRoleRemove(guildID, userID, roleID string) error {
	return p.s.GuildMemberRoleRemove(guildID, userID, roleID)
}

func (p *Session) InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse) error {
	return p.s.InteractionRespond(interaction, resp)
}
