package anarchy

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"anarchy-bot/internal/modules/audit"
	"anarchy-bot/internal/platform"
	"anarchy-bot/internal/utils"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

var (
	ErrNotFound         = errors.New("channel not found")
	ErrAmbiguous        = errors.New("channel name is ambiguous")
	ErrWrongCategory    = errors.New("channel is outside the anarchy category")
	ErrWrongChannelKind = errors.New("wrong channel kind")
	ErrEmptyValue       = errors.New("name or description is empty")
)

const noTopic = "[nothing]"

const (
	ActionCreated      = "Channel created"
	ActionRemoved      = "Channel removed"
	ActionRenamed      = "Channel renamed"
	ActionDescribed    = "Channel description changed"
	ActionNSFWToggled  = "NSFW toggled"
	msgNotFound        = "channel not found"
	msgAmbiguous       = "multiple channels named `%s` found, please use the channel id instead"
	msgWrongCategory   = "I can only manage channels in the anarchy category"
	msgWrongKind       = "cannot set description on this type of channel"
	msgCreateForbidden = "I am not allowed to create channels there"
	msgDeleteForbidden = "I am not allowed to delete that channel"
	msgEditForbidden   = "I am not allowed to edit that channel"
)

type ChannelKind int

const (
	KindText ChannelKind = iota
	KindVoice
)

// Service implements the anarchy channel commands. Every method acknowledges
// msg itself and returns the failure, if any, for the caller to log.
type Service struct {
	api        platform.API
	resolver   *Resolver
	audit      *audit.Logger
	guildID    string
	categoryID string
	logger     *zap.Logger
}

func New(api platform.API, guildID, categoryID string, auditLogger *audit.Logger, logger *zap.Logger) *Service {
	return &Service{
		api:        api,
		resolver:   NewResolver(api, guildID, categoryID),
		audit:      auditLogger,
		guildID:    guildID,
		categoryID: categoryID,
		logger:     logger,
	}
}

func (s *Service) Resolver() *Resolver { return s.resolver }

func (s *Service) Create(ctx context.Context, msg *discordgo.Message, name string, kind ChannelKind) error {
	data := discordgo.GuildChannelCreateData{
		Name:     name,
		Type:     discordgo.ChannelTypeGuildText,
		ParentID: s.categoryID,
	}
	if strings.TrimSpace(name) == "" {
		platform.Fail(s.api, msg, platform.EmojiFailure, s.logger)
		return ErrEmptyValue
	}
	// Position is omitempty on the wire: zero leaves placement to Discord and
	// has to be applied with an edit after the create.
	moveToTop := false
	if kind == KindVoice {
		data.Type = discordgo.ChannelTypeGuildVoice
	} else {
		siblings, err := s.resolver.Children(ctx)
		if err != nil {
			platform.Fail(s.api, msg, platform.EmojiFailure, s.logger)
			return err
		}
		data.Position = InsertPosition(siblings, name)
		moveToTop = data.Position == 0 && hasTextChannel(siblings)
	}

	channel, err := s.api.GuildChannelCreate(s.guildID, data)
	if err != nil {
		if platform.IsForbidden(err) {
			platform.Reply(s.api, msg.ChannelID, msgCreateForbidden, s.logger)
			return fmt.Errorf("create channel %q: %w", name, platform.ErrPermissionDenied)
		}
		platform.Fail(s.api, msg, platform.EmojiFailure, s.logger)
		return fmt.Errorf("create channel %q: %w", name, err)
	}

	if moveToTop {
		top := 0
		if _, err := s.api.ChannelEdit(channel.ID, &discordgo.ChannelEdit{Position: &top}); err != nil {
			s.logger.Warn("channel created out of order", zap.String("channel_id", channel.ID), zap.Error(err))
		}
	}

	platform.Succeed(s.api, msg, s.logger)
	s.log(ctx, msg, ActionCreated, channel.Name)
	return nil
}

func (s *Service) Delete(ctx context.Context, msg *discordgo.Message, ref Reference) error {
	channel, err := s.target(ctx, msg, ref)
	if err != nil {
		return err
	}

	err = utils.RetryOnce(func() error {
		_, err := s.api.ChannelDelete(channel.ID)
		return err
	}, platform.IsTransient)
	if err != nil {
		if platform.IsForbidden(err) {
			platform.Reply(s.api, msg.ChannelID, msgDeleteForbidden, s.logger)
			return fmt.Errorf("delete channel %s: %w", channel.ID, platform.ErrPermissionDenied)
		}
		platform.Fail(s.api, msg, platform.EmojiFailure, s.logger)
		return fmt.Errorf("delete channel %s: %w", channel.ID, err)
	}

	platform.Succeed(s.api, msg, s.logger)
	s.log(ctx, msg, ActionRemoved, channel.Name)
	return nil
}

// Rename reacts with the failure mark on any platform rejection and never
// retries.
func (s *Service) Rename(ctx context.Context, msg *discordgo.Message, ref Reference, newName string) error {
	if strings.TrimSpace(newName) == "" {
		platform.Fail(s.api, msg, platform.EmojiFailure, s.logger)
		return ErrEmptyValue
	}
	channel, err := s.target(ctx, msg, ref)
	if err != nil {
		return err
	}

	updated, err := s.api.ChannelEdit(channel.ID, &discordgo.ChannelEdit{Name: newName})
	if err != nil {
		platform.Fail(s.api, msg, platform.EmojiFailure, s.logger)
		return fmt.Errorf("rename channel %s: %w", channel.ID, err)
	}

	platform.Succeed(s.api, msg, s.logger)
	s.log(ctx, msg, ActionRenamed, channel.Name+" => "+updated.Name)
	return nil
}

func (s *Service) SetTopic(ctx context.Context, msg *discordgo.Message, ref Reference, topic string) error {
	if strings.TrimSpace(topic) == "" {
		platform.Fail(s.api, msg, platform.EmojiFailure, s.logger)
		return ErrEmptyValue
	}
	channel, err := s.target(ctx, msg, ref)
	if err != nil {
		return err
	}
	if !isTextKind(channel.Type) {
		platform.Reply(s.api, msg.ChannelID, msgWrongKind, s.logger)
		return fmt.Errorf("set topic on %s: %w", channel.ID, ErrWrongChannelKind)
	}

	old := channel.Topic
	if old == "" {
		old = noTopic
	}
	if _, err := s.api.ChannelEdit(channel.ID, &discordgo.ChannelEdit{Topic: topic}); err != nil {
		return s.editFailed(msg, channel, err)
	}

	platform.Succeed(s.api, msg, s.logger)
	s.log(ctx, msg, ActionDescribed, old+" => "+topic)
	return nil
}

func (s *Service) ToggleNSFW(ctx context.Context, msg *discordgo.Message, ref Reference) error {
	channel, err := s.target(ctx, msg, ref)
	if err != nil {
		return err
	}

	nsfw := !channel.NSFW
	if _, err := s.api.ChannelEdit(channel.ID, &discordgo.ChannelEdit{NSFW: &nsfw}); err != nil {
		return s.editFailed(msg, channel, err)
	}

	platform.Succeed(s.api, msg, s.logger)
	s.log(ctx, msg, ActionNSFWToggled, strconv.FormatBool(nsfw))
	return nil
}

// target resolves ref and enforces category membership, telling the user
// what went wrong.
func (s *Service) target(ctx context.Context, msg *discordgo.Message, ref Reference) (*discordgo.Channel, error) {
	res, err := s.resolver.Resolve(ctx, ref)
	if err != nil {
		platform.Fail(s.api, msg, platform.EmojiFailure, s.logger)
		return nil, err
	}
	switch res.Status {
	case NotFound:
		platform.Reply(s.api, msg.ChannelID, msgNotFound, s.logger)
		return nil, fmt.Errorf("%s: %w", ref, ErrNotFound)
	case Ambiguous:
		platform.Reply(s.api, msg.ChannelID, fmt.Sprintf(msgAmbiguous, ref.Name), s.logger)
		return nil, fmt.Errorf("%s matches %d channels: %w", ref, res.Matches, ErrAmbiguous)
	}
	if res.Channel.ParentID != s.categoryID {
		platform.Reply(s.api, msg.ChannelID, msgWrongCategory, s.logger)
		return nil, fmt.Errorf("%s: %w", res.Channel.ID, ErrWrongCategory)
	}
	return res.Channel, nil
}

func (s *Service) editFailed(msg *discordgo.Message, channel *discordgo.Channel, err error) error {
	if platform.IsForbidden(err) {
		platform.Reply(s.api, msg.ChannelID, msgEditForbidden, s.logger)
		return fmt.Errorf("edit channel %s: %w", channel.ID, platform.ErrPermissionDenied)
	}
	platform.Fail(s.api, msg, platform.EmojiFailure, s.logger)
	return fmt.Errorf("edit channel %s: %w", channel.ID, err)
}

func (s *Service) log(ctx context.Context, msg *discordgo.Message, action, detail string) {
	if s.audit == nil {
		return
	}
	s.audit.Log(ctx, audit.Record{
		Source: s.source(msg),
		Actor:  audit.Actor(msg.Author),
		Action: action,
		Detail: detail,
	})
}

func (s *Service) source(msg *discordgo.Message) string {
	if msg.GuildID == "" {
		return audit.Source(nil)
	}
	channel, err := s.api.Channel(msg.ChannelID)
	if err != nil {
		return "#" + msg.ChannelID
	}
	return audit.Source(channel)
}

// InsertPosition places name before the first text sibling that sorts after
// it, or after the last one.
func InsertPosition(siblings []*discordgo.Channel, name string) int {
	var text []*discordgo.Channel
	for _, channel := range siblings {
		if channel != nil && isTextKind(channel.Type) {
			text = append(text, channel)
		}
	}
	sort.SliceStable(text, func(i, j int) bool { return text[i].Position < text[j].Position })
	for _, channel := range text {
		if channel.Name > name {
			return channel.Position
		}
	}
	if len(text) == 0 {
		return 0
	}
	return text[len(text)-1].Position + 1
}

func hasTextChannel(channels []*discordgo.Channel) bool {
	for _, channel := range channels {
		if channel != nil && isTextKind(channel.Type) {
			return true
		}
	}
	return false
}

func isTextKind(kind discordgo.ChannelType) bool {
	return kind == discordgo.ChannelTypeGuildText || kind == discordgo.ChannelTypeGuildNews
}
