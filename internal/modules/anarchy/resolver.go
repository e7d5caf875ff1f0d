package anarchy

import (
	"context"
	"fmt"
	"strings"

	"anarchy-bot/internal/platform"

	"github.com/bwmarrin/discordgo"
)

type RefKind int

const (
	RefID RefKind = iota
	RefName
	RefHandle
)

// Reference is what a user typed to point at a channel. Exactly one of ID,
// Name or Channel is set, according to Kind.
type Reference struct {
	Kind    RefKind
	ID      string
	Name    string
	Channel *discordgo.Channel
}

func ByID(id string) Reference { return Reference{Kind: RefID, ID: id} }

func ByName(name string) Reference { return Reference{Kind: RefName, Name: name} }

func ByHandle(channel *discordgo.Channel) Reference {
	return Reference{Kind: RefHandle, Channel: channel}
}

// ParseReference reads a channel mention or a bare snowflake as an ID and
// anything else as a name.
func ParseReference(token string) Reference {
	if strings.HasPrefix(token, "<#") && strings.HasSuffix(token, ">") {
		if id := token[2 : len(token)-1]; isDigits(id) {
			return ByID(id)
		}
	}
	if isDigits(token) {
		return ByID(token)
	}
	return ByName(token)
}

func (r Reference) String() string {
	switch r.Kind {
	case RefID:
		return r.ID
	case RefHandle:
		if r.Channel != nil {
			return r.Channel.Name
		}
		return ""
	default:
		return r.Name
	}
}

type Status int

const (
	Found Status = iota
	NotFound
	Ambiguous
)

func (s Status) String() string {
	switch s {
	case Found:
		return "found"
	case NotFound:
		return "not_found"
	default:
		return "ambiguous"
	}
}

type Resolution struct {
	Status  Status
	Channel *discordgo.Channel
	Matches int
}

// Resolver looks references up. IDs are global; names are searched only in
// the managed category and must match exactly, case included.
type Resolver struct {
	api        platform.API
	guildID    string
	categoryID string
}

func NewResolver(api platform.API, guildID, categoryID string) *Resolver {
	return &Resolver{api: api, guildID: guildID, categoryID: categoryID}
}

// Resolve returns an error only for platform failures other than "unknown
// channel".
func (r *Resolver) Resolve(ctx context.Context, ref Reference) (Resolution, error) {
	if err := ctx.Err(); err != nil {
		return Resolution{}, err
	}
	switch ref.Kind {
	case RefHandle:
		if ref.Channel == nil {
			return Resolution{Status: NotFound}, nil
		}
		return Resolution{Status: Found, Channel: ref.Channel, Matches: 1}, nil
	case RefID:
		channel, err := r.api.Channel(ref.ID)
		if err != nil {
			if platform.IsNotFound(err) {
				return Resolution{Status: NotFound}, nil
			}
			return Resolution{}, fmt.Errorf("lookup channel %s: %w", ref.ID, err)
		}
		return Resolution{Status: Found, Channel: channel, Matches: 1}, nil
	case RefName:
		channels, err := r.api.GuildChannels(r.guildID)
		if err != nil {
			return Resolution{}, fmt.Errorf("list channels: %w", err)
		}
		var match *discordgo.Channel
		matches := 0
		for _, channel := range channels {
			if channel == nil || channel.ParentID != r.categoryID || channel.Name != ref.Name {
				continue
			}
			matches++
			match = channel
		}
		switch matches {
		case 0:
			return Resolution{Status: NotFound}, nil
		case 1:
			return Resolution{Status: Found, Channel: match, Matches: 1}, nil
		default:
			return Resolution{Status: Ambiguous, Matches: matches}, nil
		}
	default:
		return Resolution{}, fmt.Errorf("unknown reference kind %d", ref.Kind)
	}
}

// Children lists the managed category's channels.
func (r *Resolver) Children(ctx context.Context) ([]*discordgo.Channel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	channels, err := r.api.GuildChannels(r.guildID)
	if err != nil {
		return nil, fmt.Errorf("list channels: %w", err)
	}
	var children []*discordgo.Channel
	for _, channel := range channels {
		if channel != nil && channel.ParentID == r.categoryID {
			children = append(children, channel)
		}
	}
	return children, nil
}

func isDigits(value string) bool {
	if value == "" {
		return false
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
