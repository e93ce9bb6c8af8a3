package services

import (
	"context"
	"strings"
	"testing"

	"github.com/clipshare/clipshare-backend/internal/platform/apierr"
	"github.com/clipshare/clipshare-backend/internal/repos"
	"github.com/clipshare/clipshare-backend/internal/types"
)

func newCommentEnv(t *testing.T) (*videoEnv, CommentService) {
	t.Helper()
	env := newVideoEnv(t, types.IdentitySerial)
	log := mustLogger(t)
	return env, NewCommentService(repos.NewCommentRepo(env.db, log), env.svc, log)
}

func TestCommentCreateAndList(t *testing.T) {
	env, svc := newCommentEnv(t)
	ctx := context.Background()

	record, err := env.create(t, "commented")
	if err != nil {
		t.Fatalf("create video: %v", err)
	}
	comment, err := svc.Create(ctx, record.ID.String(), env.userID, "  first!  ")
	if err != nil {
		t.Fatalf("create comment: %v", err)
	}
	if comment.Content != "first!" {
		t.Fatalf("content trimming: got %q", comment.Content)
	}

	comments, err := svc.ListForVideo(ctx, record.ID.String())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(comments) != 1 || comments[0].ID != comment.ID {
		t.Fatalf("list: got %+v", comments)
	}
}

func TestCommentRequiresExistingVideo(t *testing.T) {
	_, svc := newCommentEnv(t)

	if _, err := svc.Create(context.Background(), "999", 1, "hello"); !apierr.IsCode(err, apierr.CodeNotFound) {
		t.Fatalf("comment on missing video: want not_found, got %v", err)
	}
	if _, err := svc.ListForVideo(context.Background(), "999"); !apierr.IsCode(err, apierr.CodeNotFound) {
		t.Fatalf("list for missing video: want not_found, got %v", err)
	}
}

func TestCommentContentRules(t *testing.T) {
	env, svc := newCommentEnv(t)
	ctx := context.Background()

	record, err := env.create(t, "strict")
	if err != nil {
		t.Fatalf("create video: %v", err)
	}
	if _, err := svc.Create(ctx, record.ID.String(), env.userID, "   "); !apierr.IsCode(err, apierr.CodeSchemaError) {
		t.Fatalf("blank content: want schema_error, got %v", err)
	}
	if _, err := svc.Create(ctx, record.ID.String(), env.userID, strings.Repeat("a", 1001)); !apierr.IsCode(err, apierr.CodeSchemaError) {
		t.Fatalf("oversize content: want schema_error, got %v", err)
	}
	if _, err := svc.Create(ctx, record.ID.String(), env.userID, strings.Repeat("a", 1000)); err != nil {
		t.Fatalf("content at the limit: %v", err)
	}
}

func TestCommentAuthorOrAdminRule(t *testing.T) {
	env, svc := newCommentEnv(t)
	ctx := context.Background()

	record, err := env.create(t, "guarded")
	if err != nil {
		t.Fatalf("create video: %v", err)
	}
	comment, err := svc.Create(ctx, record.ID.String(), env.userID, "mine")
	if err != nil {
		t.Fatalf("create comment: %v", err)
	}

	author := TokenClaims{UserID: env.userID, RoleID: types.RoleUser}
	stranger := TokenClaims{UserID: env.userID + 1, RoleID: types.RoleUser}
	admin := TokenClaims{UserID: env.userID + 2, RoleID: types.RoleAdmin}

	if _, err := svc.Update(ctx, comment.ID, stranger, "hijacked"); !apierr.IsCode(err, apierr.CodeForbidden) {
		t.Fatalf("stranger update: want forbidden, got %v", err)
	}
	updated, err := svc.Update(ctx, comment.ID, author, "edited")
	if err != nil {
		t.Fatalf("author update: %v", err)
	}
	if updated.Content != "edited" {
		t.Fatalf("author update: got %q", updated.Content)
	}
	if err := svc.Delete(ctx, comment.ID, stranger); !apierr.IsCode(err, apierr.CodeForbidden) {
		t.Fatalf("stranger delete: want forbidden, got %v", err)
	}
	if err := svc.Delete(ctx, comment.ID, admin); err != nil {
		t.Fatalf("admin delete: %v", err)
	}
	if err := svc.Delete(ctx, comment.ID, admin); !apierr.IsCode(err, apierr.CodeNotFound) {
		t.Fatalf("delete of deleted comment: want not_found, got %v", err)
	}
}
