package services

import (
	"context"
	"testing"

	"github.com/clipshare/clipshare-backend/internal/platform/apierr"
	"github.com/clipshare/clipshare-backend/internal/repos"
	"github.com/clipshare/clipshare-backend/internal/types"
)

func newAdminEnv(t *testing.T) (*videoEnv, AdminService) {
	t.Helper()
	env := newVideoEnv(t, types.IdentitySerial)
	log := mustLogger(t)
	return env, NewAdminService(repos.NewUserRepo(env.db, log), env.svc, log)
}

func TestUpdateUserRole(t *testing.T) {
	env, svc := newAdminEnv(t)
	ctx := context.Background()

	target := &types.User{Email: "target@example.com", Username: "target", Password: "x", RoleID: types.RoleUser}
	if err := env.db.Create(target).Error; err != nil {
		t.Fatalf("seed target: %v", err)
	}
	actor := TokenClaims{UserID: env.userID, RoleID: types.RoleAdmin}

	user, err := svc.UpdateUserRole(ctx, actor, target.ID, types.RoleAdmin)
	if err != nil {
		t.Fatalf("promote: %v", err)
	}
	if user.RoleID != types.RoleAdmin {
		t.Fatalf("promoted role: want=%d got=%d", types.RoleAdmin, user.RoleID)
	}

	if _, err := svc.UpdateUserRole(ctx, actor, target.ID, 7); !apierr.IsCode(err, apierr.CodeSchemaError) {
		t.Fatalf("bogus role: want schema_error, got %v", err)
	}
	if _, err := svc.UpdateUserRole(ctx, actor, actor.UserID, types.RoleUser); !apierr.IsCode(err, apierr.CodeForbidden) {
		t.Fatalf("self demotion: want forbidden, got %v", err)
	}
	if _, err := svc.UpdateUserRole(ctx, actor, 999, types.RoleUser); !apierr.IsCode(err, apierr.CodeNotFound) {
		t.Fatalf("missing user: want not_found, got %v", err)
	}
}

func TestAdminDeleteVideo(t *testing.T) {
	env, svc := newAdminEnv(t)
	ctx := context.Background()

	record, err := env.create(t, "to be removed")
	if err != nil {
		t.Fatalf("create video: %v", err)
	}
	deleted, err := svc.DeleteVideo(ctx, record.ID.String())
	if err != nil {
		t.Fatalf("admin delete: %v", err)
	}
	if deleted.ID.String() != record.ID.String() {
		t.Fatalf("deleted record id: want=%s got=%s", record.ID, deleted.ID)
	}
	if _, err := env.svc.Get(ctx, record.ID.String()); !apierr.IsCode(err, apierr.CodeNotFound) {
		t.Fatalf("get after admin delete: want not_found, got %v", err)
	}
	if n := stagedFileCount(t, env.uploadDir); n != 0 {
		t.Fatalf("file survived admin delete: %d files", n)
	}
}

func TestListUsers(t *testing.T) {
	env, svc := newAdminEnv(t)

	if err := env.db.Create(&types.User{Email: "b@example.com", Username: "b", Password: "x", RoleID: types.RoleUser}).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	users, err := svc.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("list users: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("user count: want=2 got=%d", len(users))
	}
	if users[0].ID > users[1].ID {
		t.Fatalf("users must come back ordered by id")
	}
}
