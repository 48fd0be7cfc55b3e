package audit

import (
	"context"
	"os"
	"testing"
	"time"

	"warehouse-dashboard/pkg/utils"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Runs only when AUDIT_TEST_DSN points at a disposable database.
func TestPostgresRepo_AppendAndList(t *testing.T) {
	dsn := os.Getenv("AUDIT_TEST_DSN")
	if dsn == "" {
		t.Skip("AUDIT_TEST_DSN not set")
	}
	ctx := context.Background()

	db, err := utils.OpenPostgres(ctx, "pgx", dsn, utils.PostgresPoolConfig{})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	repo := NewPostgresRepo(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		t.Fatalf("schema: %v", err)
	}

	sid := uuid.NewString()
	svc := NewService(repo, nil)
	if err := svc.Append(ctx, Event{SessionID: sid, Type: EventLogin, Username: "u"}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := svc.Append(ctx, Event{SessionID: sid, Type: EventLogout, CreatedAt: time.Now().Add(time.Second)}); err != nil {
		t.Fatalf("append: %v", err)
	}

	evs, err := repo.BySession(ctx, sid)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(evs) != 2 || evs[0].Type != EventLogin || evs[1].Type != EventLogout {
		t.Fatalf("unexpected events: %+v", evs)
	}
}
