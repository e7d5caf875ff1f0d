// Package platformtest provides an in-memory stand-in for the Discord API.
package platformtest

import (
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"sync"

	"github.com/bwmarrin/discordgo"
)

type Sent struct {
	ChannelID  string
	Content    string
	Embed      *discordgo.MessageEmbed
	Components []discordgo.MessageComponent
}

type Reaction struct {
	ChannelID string
	MessageID string
	Emoji     string
}

// Fake records every call. Errors queued with FailNext are returned by the
// named method before it touches any state.
type Fake struct {
	mu sync.Mutex

	GuildInfo *discordgo.Guild
	Channels  []*discordgo.Channel
	Roles     []*discordgo.Role
	Members   map[string]*discordgo.Member
	Messages  map[string]*discordgo.Message

	Sent         []Sent
	Edits        []*discordgo.MessageEdit
	Creates      []discordgo.GuildChannelCreateData
	ChannelEdits []discordgo.ChannelEdit
	Reactions []Reaction
	Responses []*discordgo.InteractionResponse

	errs   map[string][]error
	calls  map[string]int
	nextID int
}

func New(guildID string) *Fake {
	return &Fake{
		GuildInfo: &discordgo.Guild{ID: guildID, Name: "guild"},
		Members:   make(map[string]*discordgo.Member),
		Messages:  make(map[string]*discordgo.Message),
		errs:      make(map[string][]error),
		calls:     make(map[string]int),
		nextID:    1000,
	}
}

func (f *Fake) FailNext(method string, errs ...error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[method] = append(f.errs[method], errs...)
}

func (f *Fake) Calls(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

// AddChannel appends a channel under parentID at the next free position.
func (f *Fake) AddChannel(name, parentID string, kind discordgo.ChannelType) *discordgo.Channel {
	f.mu.Lock()
	defer f.mu.Unlock()
	channel := &discordgo.Channel{
		ID:       f.newID(),
		GuildID:  f.GuildInfo.ID,
		Name:     name,
		ParentID: parentID,
		Type:     kind,
		Position: f.nextPosition(parentID),
	}
	f.Channels = append(f.Channels, channel)
	return copyChannel(channel)
}

func (f *Fake) AddMember(userID string, roles ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Members[userID] = &discordgo.Member{
		GuildID: f.GuildInfo.ID,
		User:    &discordgo.User{ID: userID, Username: "user" + userID},
		Roles:   append([]string(nil), roles...),
	}
}

func (f *Fake) AddRole(id, name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Roles = append(f.Roles, &discordgo.Role{ID: id, Name: name})
}

func (f *Fake) MemberRoles(userID string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	member, ok := f.Members[userID]
	if !ok {
		return nil
	}
	return append([]string(nil), member.Roles...)
}

// ChildNames lists the names under parentID in display order.
func (f *Fake) ChildNames(parentID string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var children []*discordgo.Channel
	for _, channel := range f.Channels {
		if channel.ParentID == parentID {
			children = append(children, channel)
		}
	}
	sort.SliceStable(children, func(i, j int) bool { return children[i].Position < children[j].Position })
	names := make([]string, 0, len(children))
	for _, channel := range children {
		names = append(names, channel.Name)
	}
	return names
}

func (f *Fake) SentTo(channelID string) []Sent {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Sent
	for _, sent := range f.Sent {
		if sent.ChannelID == channelID {
			out = append(out, sent)
		}
	}
	return out
}

func (f *Fake) ReactionsOn(messageID string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, reaction := range f.Reactions {
		if reaction.MessageID == messageID {
			out = append(out, reaction.Emoji)
		}
	}
	return out
}

func (f *Fake) LastResponse() *discordgo.InteractionResponse {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Responses) == 0 {
		return nil
	}
	return f.Responses[len(f.Responses)-1]
}

func (f *Fake) Channel(channelID string) (*discordgo.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("Channel"); err != nil {
		return nil, err
	}
	if channel := f.findChannel(channelID); channel != nil {
		return copyChannel(channel), nil
	}
	return nil, NotFound(discordgo.ErrCodeUnknownChannel)
}

func (f *Fake) GuildChannels(guildID string) ([]*discordgo.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("GuildChannels"); err != nil {
		return nil, err
	}
	out := make([]*discordgo.Channel, 0, len(f.Channels))
	for _, channel := range f.Channels {
		if channel.GuildID == guildID {
			out = append(out, copyChannel(channel))
		}
	}
	return out, nil
}

// GuildChannelCreate inserts text channels at data.Position, shifting the
// siblings at or after it; other kinds go to the end. A zero position is not
// serialized, so like Discord the fake appends the channel.
func (f *Fake) GuildChannelCreate(guildID string, data discordgo.GuildChannelCreateData) (*discordgo.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("GuildChannelCreate"); err != nil {
		return nil, err
	}
	channel := &discordgo.Channel{
		ID:       f.newID(),
		GuildID:  guildID,
		Name:     data.Name,
		Topic:    data.Topic,
		NSFW:     data.NSFW,
		ParentID: data.ParentID,
		Type:     data.Type,
	}
	f.Creates = append(f.Creates, data)
	if data.Type == discordgo.ChannelTypeGuildText && data.Position != 0 {
		f.shift(data.ParentID, data.Position, "")
		channel.Position = data.Position
	} else {
		channel.Position = f.nextPosition(data.ParentID)
	}
	f.Channels = append(f.Channels, channel)
	return copyChannel(channel), nil
}

func (f *Fake) ChannelEdit(channelID string, data *discordgo.ChannelEdit) (*discordgo.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("ChannelEdit"); err != nil {
		return nil, err
	}
	channel := f.findChannel(channelID)
	if channel == nil {
		return nil, NotFound(discordgo.ErrCodeUnknownChannel)
	}
	if data.Name != "" {
		channel.Name = data.Name
	}
	if data.Topic != "" {
		channel.Topic = data.Topic
	}
	if data.NSFW != nil {
		channel.NSFW = *data.NSFW
	}
	if data.Position != nil {
		f.shift(channel.ParentID, *data.Position, channel.ID)
		channel.Position = *data.Position
	}
	f.ChannelEdits = append(f.ChannelEdits, *data)
	return copyChannel(channel), nil
}

func (f *Fake) ChannelDelete(channelID string) (*discordgo.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("ChannelDelete"); err != nil {
		return nil, err
	}
	for i, channel := range f.Channels {
		if channel.ID == channelID {
			f.Channels = append(f.Channels[:i], f.Channels[i+1:]...)
			return channel, nil
		}
	}
	return nil, NotFound(discordgo.ErrCodeUnknownChannel)
}

func (f *Fake) ChannelMessage(channelID, messageID string) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("ChannelMessage"); err != nil {
		return nil, err
	}
	msg, ok := f.Messages[messageID]
	if !ok || msg.ChannelID != channelID {
		return nil, NotFound(discordgo.ErrCodeUnknownMessage)
	}
	return msg, nil
}

func (f *Fake) ChannelMessageSend(channelID, content string) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("ChannelMessageSend"); err != nil {
		return nil, err
	}
	return f.record(Sent{ChannelID: channelID, Content: content}), nil
}

func (f *Fake) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("ChannelMessageSendComplex"); err != nil {
		return nil, err
	}
	return f.record(Sent{ChannelID: channelID, Content: data.Content, Embed: data.Embed, Components: data.Components}), nil
}

func (f *Fake) ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("ChannelMessageSendEmbed"); err != nil {
		return nil, err
	}
	return f.record(Sent{ChannelID: channelID, Embed: embed}), nil
}

func (f *Fake) ChannelMessageEditComplex(data *discordgo.MessageEdit) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("ChannelMessageEditComplex"); err != nil {
		return nil, err
	}
	msg, ok := f.Messages[data.ID]
	if !ok {
		return nil, NotFound(discordgo.ErrCodeUnknownMessage)
	}
	f.Edits = append(f.Edits, data)
	if data.Content != nil {
		msg.Content = *data.Content
	}
	if data.Components != nil {
		msg.Components = *data.Components
	}
	return msg, nil
}

func (f *Fake) MessageReactionAdd(channelID, messageID, emoji string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("MessageReactionAdd"); err != nil {
		return err
	}
	f.Reactions = append(f.Reactions, Reaction{ChannelID: channelID, MessageID: messageID, Emoji: emoji})
	return nil
}

func (f *Fake) Guild(guildID string) (*discordgo.Guild, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("Guild"); err != nil {
		return nil, err
	}
	if guildID != f.GuildInfo.ID {
		return nil, NotFound(discordgo.ErrCodeUnknownGuild)
	}
	guild := *f.GuildInfo
	return &guild, nil
}

func (f *Fake) GuildRoles(guildID string) ([]*discordgo.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("GuildRoles"); err != nil {
		return nil, err
	}
	out := make([]*discordgo.Role, 0, len(f.Roles))
	for _, role := range f.Roles {
		copied := *role
		out = append(out, &copied)
	}
	return out, nil
}

func (f *Fake) GuildMember(guildID, userID string) (*discordgo.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("GuildMember"); err != nil {
		return nil, err
	}
	member, ok := f.Members[userID]
	if !ok {
		return nil, NotFound(discordgo.ErrCodeUnknownMember)
	}
	copied := *member
	copied.Roles = append([]string(nil), member.Roles...)
	return &copied, nil
}

func (f *Fake) GuildMemberRoleAdd(guildID, userID, roleID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("GuildMemberRoleAdd"); err != nil {
		return err
	}
	member, ok := f.Members[userID]
	if !ok {
		return NotFound(discordgo.ErrCodeUnknownMember)
	}
	for _, id := range member.Roles {
		if id == roleID {
			return nil
		}
	}
	member.Roles = append(member.Roles, roleID)
	return nil
}

func (f *Fake) GuildMemberRoleRemove(guildID, userID, roleID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("GuildMemberRoleRemove"); err != nil {
		return err
	}
	member, ok := f.Members[userID]
	if !ok {
		return NotFound(discordgo.ErrCodeUnknownMember)
	}
	kept := member.Roles[:0]
	for _, id := range member.Roles {
		if id != roleID {
			kept = append(kept, id)
		}
	}
	member.Roles = kept
	return nil
}

func (f *Fake) InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("InteractionRespond"); err != nil {
		return err
	}
	f.Responses = append(f.Responses, resp)
	return nil
}

func (f *Fake) enter(method string) error {
	f.calls[method]++
	queue := f.errs[method]
	if len(queue) == 0 {
		return nil
	}
	f.errs[method] = queue[1:]
	return queue[0]
}

func (f *Fake) record(sent Sent) *discordgo.Message {
	f.Sent = append(f.Sent, sent)
	msg := &discordgo.Message{ID: f.newID(), ChannelID: sent.ChannelID, Content: sent.Content, Components: sent.Components}
	f.Messages[msg.ID] = msg
	return msg
}

func (f *Fake) findChannel(channelID string) *discordgo.Channel {
	for _, channel := range f.Channels {
		if channel.ID == channelID {
			return channel
		}
	}
	return nil
}

// shift moves the siblings at or after position down by one.
func (f *Fake) shift(parentID string, position int, skipID string) {
	for _, sibling := range f.Channels {
		if sibling.ParentID == parentID && sibling.ID != skipID && sibling.Position >= position {
			sibling.Position++
		}
	}
}

func (f *Fake) nextPosition(parentID string) int {
	next := 0
	for _, channel := range f.Channels {
		if channel.ParentID == parentID && channel.Position >= next {
			next = channel.Position + 1
		}
	}
	return next
}

func (f *Fake) newID() string {
	f.nextID++
	return strconv.Itoa(f.nextID)
}

func copyChannel(channel *discordgo.Channel) *discordgo.Channel {
	copied := *channel
	return &copied
}

func restError(status int, code int) *discordgo.RESTError {
	return &discordgo.RESTError{
		Response:     &http.Response{StatusCode: status, Status: fmt.Sprintf("%d %s", status, http.StatusText(status))},
		ResponseBody: []byte(fmt.Sprintf(`{"code": %d}`, code)),
		Message:      &discordgo.APIErrorMessage{Code: code, Message: http.StatusText(status)},
	}
}

func NotFound(code int) error { return restError(http.StatusNotFound, code) }

func Forbidden() error { return restError(http.StatusForbidden, discordgo.ErrCodeMissingPermissions) }

func BadRequest() error { return restError(http.StatusBadRequest, 50035) }

func ServerError() error { return restError(http.StatusInternalServerError, 0) }
