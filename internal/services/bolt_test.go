package services_test

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/basedoracle/oracle-web-ui/internal/models"
	"github.com/basedoracle/oracle-web-ui/internal/services"
)

func newTestBoltDB(t *testing.T) services.BoltDB {
	t.Helper()

	store, err := services.NewBoltDB(filepath.Join(t.TempDir(), "oracle.db"))
	if err != nil {
		t.Fatalf("NewBoltDB() error = %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})

	return store
}

func TestBoltDBAppendPreservesOrder(t *testing.T) {
	store := newTestBoltDB(t)
	ctx := context.Background()

	want := make([]string, 0, 5)
	for i := range 5 {
		msg := newMessage(models.RoleUser, fmt.Sprintf("message %d", i))
		want = append(want, msg.Content)
		if _, err := store.AppendMessage(ctx, "s1", msg); err != nil {
			t.Fatalf("AppendMessage() error = %v", err)
		}
	}

	got, err := store.Messages(ctx, "s1")
	if err != nil {
		t.Fatalf("Messages() error = %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("Messages() returned %d messages, want %d", len(got), len(want))
	}
	for i, msg := range got {
		if msg.Content != want[i] {
			t.Errorf("Messages()[%d] = %q, want %q", i, msg.Content, want[i])
		}
	}
}

func TestBoltDBMessagesUnknownSession(t *testing.T) {
	store := newTestBoltDB(t)

	got, err := store.Messages(context.Background(), "never-seen")
	if err != nil {
		t.Fatalf("Messages() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Messages() for unknown session returned %d messages, want 0", len(got))
	}
}

func TestBoltDBReset(t *testing.T) {
	store := newTestBoltDB(t)
	ctx := context.Background()

	for range 3 {
		if _, err := store.AppendMessage(ctx, "s1", newMessage(models.RoleUser, "hello")); err != nil {
			t.Fatal(err)
		}
	}

	welcome, err := store.Reset(ctx, "s1")
	if err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	if welcome.Role != models.RoleAssistant {
		t.Errorf("Reset() welcome role = %q, want %q", welcome.Role, models.RoleAssistant)
	}

	got, err := store.Messages(ctx, "s1")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("Messages() after Reset() returned %d messages, want 1", len(got))
	}
	if got[0].Role != models.RoleAssistant {
		t.Errorf("seeded message role = %q, want %q", got[0].Role, models.RoleAssistant)
	}
}

func TestBoltDBUpdateMessage(t *testing.T) {
	store := newTestBoltDB(t)
	ctx := context.Background()

	msg := newMessage(models.RoleAssistant, "")
	if _, err := store.AppendMessage(ctx, "s1", msg); err != nil {
		t.Fatal(err)
	}

	msg.Content = "streamed reply"
	if err := store.UpdateMessage(ctx, "s1", msg); err != nil {
		t.Fatalf("UpdateMessage() error = %v", err)
	}

	got, err := store.Messages(ctx, "s1")
	if err != nil {
		t.Fatal(err)
	}
	if got[0].Content != "streamed reply" {
		t.Errorf("updated content = %q, want %q", got[0].Content, "streamed reply")
	}
}

func TestBoltDBPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "oracle.db")
	ctx := context.Background()

	store, err := services.NewBoltDB(path)
	if err != nil {
		t.Fatalf("NewBoltDB() error = %v", err)
	}
	if _, err := store.AppendMessage(ctx, "s1", newMessage(models.RoleUser, "survives restart")); err != nil {
		t.Fatal(err)
	}
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := services.NewBoltDB(path)
	if err != nil {
		t.Fatalf("NewBoltDB() reopen error = %v", err)
	}
	defer reopened.Close()

	got, err := reopened.Messages(ctx, "s1")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Content != "survives restart" {
		t.Errorf("Messages() after reopen = %+v, want the single appended message", got)
	}
}
