package roles

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"anarchy-bot/internal/platform"
	"anarchy-bot/internal/platform/platformtest"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

const rolesJSON = `{
	"games": {
		"topic": "Pick your games",
		"body": "\nClick again to remove.",
		"roles": [
			{"title": "Minecraft", "id": 501, "emoji": "⛏️"},
			{"title": "Factorio", "id": "502"},
			{"title": "Celeste", "id": 503},
			{"title": "Hades", "id": 504},
			{"title": "Tetris", "id": 505},
			{"title": "Chess", "id": 506}
		]
	}
}`

func writeRoles(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "roles.json")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write roles: %v", err)
	}
	return path
}

func newModule(t *testing.T) (*Module, *platformtest.Fake, *Registry) {
	t.Helper()
	registry, err := NewRegistry(writeRoles(t, rolesJSON))
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	fake := platformtest.New("g1")
	fake.AddRole("501", "Minecraft")
	return New(fake, registry, "g1", zap.NewNop()), fake, registry
}

func click(userID, roleID, label string) *discordgo.Interaction {
	customID := CustomID(roleID)
	return &discordgo.Interaction{
		ID:      "i1",
		Type:    discordgo.InteractionMessageComponent,
		GuildID: "g1",
		Member:  &discordgo.Member{User: &discordgo.User{ID: userID}},
		Data:    discordgo.MessageComponentInteractionData{CustomID: customID, ComponentType: discordgo.ButtonComponent},
		Message: &discordgo.Message{
			Components: []discordgo.MessageComponent{
				&discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					&discordgo.Button{Label: label, CustomID: customID},
				}},
			},
		},
	}
}

func TestParseAcceptsNumericAndStringIDs(t *testing.T) {
	categories, err := Parse([]byte(rolesJSON))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	games := categories["games"]
	if len(games.Roles) != 6 || games.Roles[0].ID != "501" || games.Roles[1].ID != "502" {
		t.Fatalf("unexpected roles %+v", games.Roles)
	}
	if games.Roles[0].Emoji != "⛏️" {
		t.Fatalf("expected emoji, got %q", games.Roles[0].Emoji)
	}
}

func TestParseYAML(t *testing.T) {
	categories, err := Parse([]byte("games:\n  topic: Pick\n  roles:\n    - title: Go\n      id: 700\n"))
	if err != nil {
		t.Fatalf("parse yaml: %v", err)
	}
	if categories["games"].Roles[0].ID != "700" {
		t.Fatalf("unexpected roles %+v", categories["games"].Roles)
	}
}

func TestParseRejectsRoleWithoutID(t *testing.T) {
	if _, err := Parse([]byte(`{"x": {"topic": "t", "roles": [{"title": "nope"}]}}`)); err == nil {
		t.Fatalf("expected error for role without id")
	}
}

func TestComponentsRowsOfFive(t *testing.T) {
	categories, _ := Parse([]byte(rolesJSON))
	rows := Components(categories["games"])
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	first := rows[0].(discordgo.ActionsRow)
	if len(first.Components) != 5 {
		t.Fatalf("expected 5 buttons in first row, got %d", len(first.Components))
	}
	button := first.Components[0].(discordgo.Button)
	if button.CustomID != "role:501" || button.Label != "Minecraft" || button.Emoji == nil {
		t.Fatalf("unexpected button %+v", button)
	}
}

func TestToggleTwiceRestoresRoles(t *testing.T) {
	module, fake, _ := newModule(t)
	fake.AddMember("u1", "900")

	if err := module.HandleButton(context.Background(), click("u1", "501", "Minecraft")); err != nil {
		t.Fatalf("first press: %v", err)
	}
	if got := fake.LastResponse().Data.Content; got != "Okay! I have added the Minecraft role to you." {
		t.Fatalf("unexpected response %q", got)
	}
	if roles := fake.MemberRoles("u1"); len(roles) != 2 {
		t.Fatalf("expected role added, got %v", roles)
	}

	if err := module.HandleButton(context.Background(), click("u1", "501", "Minecraft")); err != nil {
		t.Fatalf("second press: %v", err)
	}
	if got := fake.LastResponse().Data.Content; got != "Okay! I have removed the Minecraft role from you." {
		t.Fatalf("unexpected response %q", got)
	}
	if roles := fake.MemberRoles("u1"); len(roles) != 1 || roles[0] != "900" {
		t.Fatalf("expected original roles, got %v", roles)
	}
	if fake.LastResponse().Data.Flags != discordgo.MessageFlagsEphemeral {
		t.Fatalf("expected ephemeral response")
	}
}

func TestToggleMissingRole(t *testing.T) {
	module, fake, _ := newModule(t)
	fake.AddMember("u1")

	err := module.HandleButton(context.Background(), click("u1", "777", "Ghost"))
	if !errors.Is(err, ErrUnknownRole) {
		t.Fatalf("expected unknown role, got %v", err)
	}
	if got := fake.LastResponse().Data.Content; got != "Error: could not find role Ghost" {
		t.Fatalf("unexpected response %q", got)
	}
}

func TestToggleNonMember(t *testing.T) {
	module, fake, _ := newModule(t)

	if err := module.HandleButton(context.Background(), click("u2", "501", "Minecraft")); !errors.Is(err, ErrNotMember) {
		t.Fatalf("expected not member, got %v", err)
	}
	if got := fake.LastResponse().Data.Content; got != "Error: You are not in the server!" {
		t.Fatalf("unexpected response %q", got)
	}
}

func TestToggleForbiddenDistinguishesAddAndRemove(t *testing.T) {
	module, fake, _ := newModule(t)
	fake.AddMember("u1")
	fake.FailNext("GuildMemberRoleAdd", platformtest.Forbidden())

	if err := module.HandleButton(context.Background(), click("u1", "501", "Minecraft")); !errors.Is(err, platform.ErrPermissionDenied) {
		t.Fatalf("expected permission denied, got %v", err)
	}
	if got := fake.LastResponse().Data.Content; got != "Error: I am not allowed to add roles to you!" {
		t.Fatalf("unexpected add response %q", got)
	}

	fake.AddMember("u3", "501")
	fake.FailNext("GuildMemberRoleRemove", platformtest.Forbidden())
	_ = module.HandleButton(context.Background(), click("u3", "501", "Minecraft"))
	if got := fake.LastResponse().Data.Content; got != "Error: I am not allowed to remove your roles!" {
		t.Fatalf("unexpected remove response %q", got)
	}
}

func TestForeignButtonsIgnored(t *testing.T) {
	module, fake, _ := newModule(t)
	interaction := click("u1", "501", "Minecraft")
	interaction.Data = discordgo.MessageComponentInteractionData{CustomID: "vote:1"}

	if err := module.HandleButton(context.Background(), interaction); err != nil {
		t.Fatalf("expected foreign button ignored, got %v", err)
	}
	if fake.LastResponse() != nil {
		t.Fatalf("no response expected")
	}
}

func TestPostSendsNewMessage(t *testing.T) {
	module, fake, _ := newModule(t)
	msg := &discordgo.Message{ID: "m1", ChannelID: "c1"}

	if err := module.Post(context.Background(), msg, "games"); err != nil {
		t.Fatalf("post: %v", err)
	}
	sent := fake.SentTo("c1")
	if len(sent) != 1 || sent[0].Content != "Pick your games\nClick again to remove." || len(sent[0].Components) != 2 {
		t.Fatalf("unexpected post %+v", sent)
	}
}

func TestPostEditsRepliedMessage(t *testing.T) {
	module, fake, _ := newModule(t)
	old, _ := fake.ChannelMessageSend("c1", "old roles")
	msg := &discordgo.Message{ID: "m2", ChannelID: "c1", MessageReference: &discordgo.MessageReference{MessageID: old.ID, ChannelID: "c1"}}

	if err := module.Post(context.Background(), msg, "games"); err != nil {
		t.Fatalf("post: %v", err)
	}
	if len(fake.Edits) != 1 || fake.Messages[old.ID].Content != "Pick your games\nClick again to remove." {
		t.Fatalf("expected replied message edited, got %+v", fake.Messages[old.ID])
	}
}

func TestPostUnknownReference(t *testing.T) {
	module, fake, _ := newModule(t)
	msg := &discordgo.Message{ID: "m1", ChannelID: "c1"}

	if err := module.Post(context.Background(), msg, "nope"); !errors.Is(err, ErrUnknownReference) {
		t.Fatalf("expected unknown reference, got %v", err)
	}
	if sent := fake.SentTo("c1"); len(sent) != 1 || sent[0].Content != "Unknown reference given" {
		t.Fatalf("unexpected reply %+v", sent)
	}
}

func TestReloadKeepsPreviousOnError(t *testing.T) {
	path := writeRoles(t, rolesJSON)
	registry, err := NewRegistry(path)
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	if err := registry.Reload(); err == nil {
		t.Fatalf("expected reload error")
	}
	if _, ok := registry.Lookup("games"); !ok {
		t.Fatalf("previous categories must survive a failed reload")
	}

	if err := os.WriteFile(path, []byte(`{"music": {"topic": "Music", "roles": []}}`), 0o600); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	if err := registry.Reload(); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if _, ok := registry.Lookup("games"); ok {
		t.Fatalf("reload should replace the whole set")
	}
	if registry.Len() != 1 {
		t.Fatalf("expected one category, got %d", registry.Len())
	}
}
