package roles

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"anarchy-bot/internal/platform"
	"anarchy-bot/internal/utils"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

const (
	customIDPrefix = "role:"
	buttonsPerRow  = 5
)

var (
	ErrUnknownReference = errors.New("unknown role category")
	ErrUnknownRole      = errors.New("role no longer exists")
	ErrNotMember        = errors.New("user is not a guild member")
)

type Module struct {
	api      platform.API
	registry *Registry
	guildID  string
	logger   *zap.Logger
}

func New(api platform.API, registry *Registry, guildID string, logger *zap.Logger) *Module {
	return &Module{api: api, registry: registry, guildID: guildID, logger: logger}
}

func CustomID(roleID string) string { return customIDPrefix + roleID }

// RoleID extracts the role from a button custom ID.
func RoleID(customID string) (string, bool) {
	if !strings.HasPrefix(customID, customIDPrefix) {
		return "", false
	}
	id := strings.TrimPrefix(customID, customIDPrefix)
	return id, id != ""
}

// Components lays the category's buttons out in rows of five.
func Components(category Category) []discordgo.MessageComponent {
	buttons := make([]discordgo.MessageComponent, 0, len(category.Roles))
	for _, role := range category.Roles {
		button := discordgo.Button{
			Label:    role.Title,
			Style:    discordgo.SecondaryButton,
			CustomID: CustomID(role.ID),
		}
		if role.Emoji != "" {
			button.Emoji = &discordgo.ComponentEmoji{Name: role.Emoji}
		}
		buttons = append(buttons, button)
	}
	var rows []discordgo.MessageComponent
	for _, chunk := range utils.Chunk(buttons, buttonsPerRow) {
		rows = append(rows, discordgo.ActionsRow{Components: chunk})
	}
	return rows
}

// Post sends the role message for reference, or rewrites the message msg
// replies to.
func (m *Module) Post(ctx context.Context, msg *discordgo.Message, reference string) error {
	category, ok := m.registry.Lookup(reference)
	if !ok {
		platform.Reply(m.api, msg.ChannelID, "Unknown reference given", m.logger)
		return fmt.Errorf("%q: %w", reference, ErrUnknownReference)
	}
	components := Components(category)
	content := category.Content()

	if msg.MessageReference == nil {
		_, err := m.api.ChannelMessageSendComplex(msg.ChannelID, &discordgo.MessageSend{Content: content, Components: components})
		return err
	}

	channelID := msg.MessageReference.ChannelID
	if channelID == "" {
		channelID = msg.ChannelID
	}
	target, err := m.api.ChannelMessage(channelID, msg.MessageReference.MessageID)
	if err != nil {
		platform.Reply(m.api, msg.ChannelID, "Could not load message being replied to.", m.logger)
		return fmt.Errorf("load replied message: %w", err)
	}
	_, err = m.api.ChannelMessageEditComplex(&discordgo.MessageEdit{
		ID:         target.ID,
		Channel:    target.ChannelID,
		Content:    &content,
		Components: &components,
	})
	return err
}

// HandleButton toggles the clicked role on the member who clicked it.
func (m *Module) HandleButton(ctx context.Context, interaction *discordgo.Interaction) error {
	if interaction.Type != discordgo.InteractionMessageComponent {
		return nil
	}
	roleID, ok := RoleID(interaction.MessageComponentData().CustomID)
	if !ok {
		return nil
	}
	label := buttonLabel(interaction.Message, interaction.MessageComponentData().CustomID)
	if label == "" {
		label = roleID
	}

	roles, err := m.api.GuildRoles(m.guildID)
	if err != nil {
		m.respond(interaction, "Error: could not load the server roles, please try again")
		return fmt.Errorf("list roles: %w", err)
	}
	if !hasRole(roles, roleID) {
		m.respond(interaction, "Error: could not find role "+label)
		return fmt.Errorf("%s: %w", roleID, ErrUnknownRole)
	}

	userID := interactionUserID(interaction)
	member, err := m.api.GuildMember(m.guildID, userID)
	if err != nil {
		if platform.IsNotFound(err) {
			m.respond(interaction, "Error: You are not in the server!")
			return fmt.Errorf("%s: %w", userID, ErrNotMember)
		}
		m.respond(interaction, "Error: could not load your membership, please try again")
		return fmt.Errorf("load member %s: %w", userID, err)
	}

	if memberHasRole(member, roleID) {
		if err := m.api.GuildMemberRoleRemove(m.guildID, userID, roleID); err != nil {
			if platform.IsForbidden(err) {
				m.respond(interaction, "Error: I am not allowed to remove your roles!")
				return fmt.Errorf("remove role %s: %w", roleID, platform.ErrPermissionDenied)
			}
			m.respond(interaction, "Error: could not remove the "+label+" role, please try again")
			return fmt.Errorf("remove role %s: %w", roleID, err)
		}
		m.respond(interaction, "Okay! I have removed the "+label+" role from you.")
		return nil
	}

	if err := m.api.GuildMemberRoleAdd(m.guildID, userID, roleID); err != nil {
		if platform.IsForbidden(err) {
			m.respond(interaction, "Error: I am not allowed to add roles to you!")
			return fmt.Errorf("add role %s: %w", roleID, platform.ErrPermissionDenied)
		}
		m.respond(interaction, "Error: could not add the "+label+" role, please try again")
		return fmt.Errorf("add role %s: %w", roleID, err)
	}
	m.respond(interaction, "Okay! I have added the "+label+" role to you.")
	return nil
}

func (m *Module) respond(interaction *discordgo.Interaction, content string) {
	err := m.api.InteractionRespond(interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		m.logger.Warn("interaction response failed", zap.String("interaction_id", interaction.ID), zap.Error(err))
	}
}

func interactionUserID(interaction *discordgo.Interaction) string {
	if interaction.Member != nil && interaction.Member.User != nil {
		return interaction.Member.User.ID
	}
	if interaction.User != nil {
		return interaction.User.ID
	}
	return ""
}

func hasRole(roles []*discordgo.Role, roleID string) bool {
	for _, role := range roles {
		if role != nil && role.ID == roleID {
			return true
		}
	}
	return false
}

func memberHasRole(member *discordgo.Member, roleID string) bool {
	for _, id := range member.Roles {
		if id == roleID {
			return true
		}
	}
	return false
}

func buttonLabel(msg *discordgo.Message, customID string) string {
	if msg == nil {
		return ""
	}
	for _, component := range msg.Components {
		for _, child := range rowChildren(component) {
			switch button := child.(type) {
			case *discordgo.Button:
				if button.CustomID == customID {
					return button.Label
				}
			case discordgo.Button:
				if button.CustomID == customID {
					return button.Label
				}
			}
		}
	}
	return ""
}

func rowChildren(component discordgo.MessageComponent) []discordgo.MessageComponent {
	switch row := component.(type) {
	case *discordgo.ActionsRow:
		return row.Components
	case discordgo.ActionsRow:
		return row.Components
	}
	return nil
}
