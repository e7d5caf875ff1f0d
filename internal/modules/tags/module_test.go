package tags

import (
	"context"
	"errors"
	"testing"

	"anarchy-bot/internal/platform"
	"anarchy-bot/internal/platform/platformtest"
	"anarchy-bot/internal/storage"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type brokenStore struct{}

var errDiskFull = errors.New("disk I/O error: /var/lib/anarchy/data.db")

func (brokenStore) GetTag(context.Context, string) (storage.Tag, error) { return storage.Tag{}, errDiskFull }
func (brokenStore) SetTag(context.Context, string, string) error       { return errDiskFull }
func (brokenStore) DeleteTag(context.Context, string) error            { return errDiskFull }
func (brokenStore) Close()                                             {}

func newModule(t *testing.T) (*Module, *platformtest.Fake) {
	t.Helper()
	store, err := storage.New(":memory:")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(store.Close)
	if err := store.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	fake := platformtest.New("g1")
	return New(fake, store, zap.NewNop()), fake
}

func command(id string) *discordgo.Message {
	return &discordgo.Message{ID: id, ChannelID: "c1", GuildID: "g1"}
}

func lastReply(fake *platformtest.Fake) string {
	sent := fake.SentTo("c1")
	if len(sent) == 0 {
		return ""
	}
	return sent[len(sent)-1].Content
}

func TestTagSetGetOverwriteDelete(t *testing.T) {
	module, fake := newModule(t)
	ctx := context.Background()

	if err := module.Set(ctx, command("m1"), "x", "hello"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := module.Get(ctx, command("m2"), "x"); err != nil {
		t.Fatalf("get: %v", err)
	}
	if got := lastReply(fake); got != "hello" {
		t.Fatalf("expected hello, got %q", got)
	}

	if err := module.Set(ctx, command("m3"), "x", "world"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	_ = module.Get(ctx, command("m4"), "x")
	if got := lastReply(fake); got != "world" {
		t.Fatalf("expected world, got %q", got)
	}

	if err := module.Delete(ctx, command("m5"), "x"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	_ = module.Get(ctx, command("m6"), "x")
	if got := lastReply(fake); got != unknownTag {
		t.Fatalf("expected not found sentinel, got %q", got)
	}

	for _, id := range []string{"m1", "m3", "m5"} {
		if reactions := fake.ReactionsOn(id); len(reactions) != 1 || reactions[0] != platform.EmojiSuccess {
			t.Fatalf("%s: expected success mark, got %v", id, reactions)
		}
	}
}

func TestDeleteUnknownTag(t *testing.T) {
	module, fake := newModule(t)

	if err := module.Delete(context.Background(), command("m1"), "ghost"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if reactions := fake.ReactionsOn("m1"); len(reactions) != 1 || reactions[0] != platform.EmojiUnknown {
		t.Fatalf("expected unknown mark, got %v", reactions)
	}
}

func TestPersistenceFailureIsNotExposed(t *testing.T) {
	fake := platformtest.New("g1")
	core, logs := observer.New(zap.ErrorLevel)
	module := New(fake, brokenStore{}, zap.New(core))

	if err := module.Set(context.Background(), command("m1"), "x", "hello"); !errors.Is(err, errDiskFull) {
		t.Fatalf("expected store error, got %v", err)
	}
	if reactions := fake.ReactionsOn("m1"); len(reactions) != 1 || reactions[0] != platform.EmojiStoreFailure {
		t.Fatalf("expected store failure mark, got %v", reactions)
	}
	if len(fake.Sent) != 0 {
		t.Fatalf("cause must not be sent to the channel")
	}
	if logs.FilterMessage("tag write failed").Len() != 1 {
		t.Fatalf("expected cause logged for operators")
	}

	_ = module.Get(context.Background(), command("m2"), "x")
	_ = module.Delete(context.Background(), command("m3"), "x")
	if len(fake.Sent) != 0 {
		t.Fatalf("cause must not be sent to the channel")
	}
}
