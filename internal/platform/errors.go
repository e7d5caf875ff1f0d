package platform

import (
	"errors"
	"net/http"

	"github.com/bwmarrin/discordgo"
)

var ErrPermissionDenied = errors.New("permission denied")

type ErrorKind int

const (
	KindNone ErrorKind = iota
	KindNotFound
	KindForbidden
	KindRejected
	KindTransient
)

func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindRejected:
		return "rejected"
	default:
		return "transient"
	}
}

// Classify maps a discordgo error onto the failure kinds the handlers react
// to. Errors that are not REST responses (network, timeouts) are transient.
func Classify(err error) ErrorKind {
	if err == nil {
		return KindNone
	}
	if errors.Is(err, ErrPermissionDenied) {
		return KindForbidden
	}
	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) {
		return KindTransient
	}
	if restErr.Message != nil {
		switch restErr.Message.Code {
		case discordgo.ErrCodeMissingPermissions, discordgo.ErrCodeMissingAccess:
			return KindForbidden
		case discordgo.ErrCodeUnknownChannel, discordgo.ErrCodeUnknownRole, discordgo.ErrCodeUnknownMember, discordgo.ErrCodeUnknownMessage:
			return KindNotFound
		}
	}
	if restErr.Response == nil {
		return KindTransient
	}
	status := restErr.Response.StatusCode
	switch {
	case status == http.StatusForbidden:
		return KindForbidden
	case status == http.StatusNotFound:
		return KindNotFound
	case status == http.StatusTooManyRequests:
		return KindTransient
	case status >= 400 && status < 500:
		return KindRejected
	default:
		return KindTransient
	}
}

func IsForbidden(err error) bool { return Classify(err) == KindForbidden }

func IsNotFound(err error) bool { return Classify(err) == KindNotFound }

func IsTransient(err error) bool { return Classify(err) == KindTransient }
