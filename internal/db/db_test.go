package db

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("db open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func mustUser(t *testing.T, s *Store, email string) *User {
	t.Helper()
	u, err := s.CreateUser(context.Background(), NewUser{Email: email, Password: "hash", Name: email})
	if err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return u
}

func mustPost(t *testing.T, s *Store, author *User, title string) *Post {
	t.Helper()
	p := &Post{Title: title, Subtitle: "sub", Date: "January 02, 2006", Body: "<p>body</p>", ImgUrl: "http://img", AuthorId: author.Id}
	if err := s.CreatePost(context.Background(), p); err != nil {
		t.Fatalf("create post %s: %v", title, err)
	}
	return p
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "blog.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	mustUser(t, s, "a@b.com")
	s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	defer s.Close()
	u, err := s.FindUserByEmail(context.Background(), "a@b.com")
	if err != nil || u == nil {
		t.Fatalf("user lost across reopen: %v %v", u, err)
	}
}

func TestCreateUserFirstIsAdmin(t *testing.T) {
	s := newTestStore(t)
	first := mustUser(t, s, "admin@blog.com")
	second := mustUser(t, s, "reader@blog.com")
	if !first.IsAdmin {
		t.Errorf("first user should be admin")
	}
	if second.IsAdmin {
		t.Errorf("second user should not be admin")
	}
	if first.Id == second.Id {
		t.Errorf("ids not unique")
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	s := newTestStore(t)
	mustUser(t, s, "a@b.com")
	_, err := s.CreateUser(context.Background(), NewUser{Email: "a@b.com", Password: "x", Name: "other"})
	if !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("err = %v, want ErrDuplicateEmail", err)
	}
	// emails are case-sensitive as stored
	if _, err := s.CreateUser(context.Background(), NewUser{Email: "A@b.com", Password: "x", Name: "other"}); err != nil {
		t.Fatalf("different case: %v", err)
	}
}

func TestFindUserByEmail(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u, err := s.FindUserByEmail(ctx, "nobody@b.com")
	if err != nil || u != nil {
		t.Fatalf("missing user = %v, %v; want nil, nil", u, err)
	}
	created := mustUser(t, s, "a@b.com")
	u, err = s.FindUserByEmail(ctx, "a@b.com")
	if err != nil || u == nil || u.Id != created.Id {
		t.Fatalf("found = %+v, %v", u, err)
	}
	if _, err := s.GetUser(ctx, 999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetUser(999) err = %v", err)
	}
}

func TestPostsCreationOrder(t *testing.T) {
	s := newTestStore(t)
	admin := mustUser(t, s, "admin@blog.com")
	titles := []string{"first", "second", "third"}
	for _, title := range titles {
		mustPost(t, s, admin, title)
	}
	posts, err := s.ListPosts(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(posts) != len(titles) {
		t.Fatalf("got %d posts", len(posts))
	}
	for i, p := range posts {
		if p.Title != titles[i] {
			t.Errorf("posts[%d] = %q, want %q", i, p.Title, titles[i])
		}
		if p.Author == nil || p.Author.Id != admin.Id {
			t.Errorf("posts[%d] author = %+v", i, p.Author)
		}
	}
}

func TestCreatePostDuplicateTitle(t *testing.T) {
	s := newTestStore(t)
	admin := mustUser(t, s, "admin@blog.com")
	mustPost(t, s, admin, "same")
	err := s.CreatePost(context.Background(), &Post{Title: "same", AuthorId: admin.Id})
	if !errors.Is(err, ErrDuplicateTitle) {
		t.Fatalf("err = %v, want ErrDuplicateTitle", err)
	}
}

func TestCreatePostUnknownAuthor(t *testing.T) {
	s := newTestStore(t)
	err := s.CreatePost(context.Background(), &Post{Title: "orphan", AuthorId: 42})
	if err == nil {
		t.Fatal("expected foreign key failure")
	}
}

func TestUpdatePost(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	admin := mustUser(t, s, "admin@blog.com")
	p := mustPost(t, s, admin, "old")
	mustPost(t, s, admin, "taken")

	updated, err := s.UpdatePost(ctx, p.Id, PostFields{Title: "new", Subtitle: "s2", ImgUrl: "i2", Body: "<b>b2</b>"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != "new" || updated.Subtitle != "s2" || updated.ImgUrl != "i2" || updated.Body != "<b>b2</b>" {
		t.Errorf("updated = %+v", updated)
	}
	if updated.Date != p.Date || updated.AuthorId != admin.Id {
		t.Errorf("date/author changed: %+v", updated)
	}

	if _, err := s.UpdatePost(ctx, 999, PostFields{Title: "x"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("update missing err = %v", err)
	}
	if _, err := s.UpdatePost(ctx, p.Id, PostFields{Title: "taken"}); !errors.Is(err, ErrDuplicateTitle) {
		t.Errorf("update duplicate err = %v", err)
	}
}

func TestDeletePostCascadesComments(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	admin := mustUser(t, s, "admin@blog.com")
	reader := mustUser(t, s, "reader@blog.com")
	p := mustPost(t, s, admin, "doomed")
	keep := mustPost(t, s, admin, "kept")
	for _, post := range []*Post{p, keep} {
		if _, err := s.CreateComment(ctx, post.Id, reader.Id, "hi"); err != nil {
			t.Fatalf("comment: %v", err)
		}
	}

	if err := s.DeletePost(ctx, p.Id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.GetPost(ctx, p.Id); !errors.Is(err, ErrNotFound) {
		t.Errorf("get deleted err = %v", err)
	}
	var n int
	if err := s.DB.QueryRow("SELECT COUNT(*) FROM comments WHERE post_id = ?", p.Id).Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("%d orphaned comments remain", n)
	}
	if cs, _ := s.ListComments(ctx, keep.Id); len(cs) != 1 {
		t.Errorf("other post lost comments: %d", len(cs))
	}
	if err := s.DeletePost(ctx, p.Id); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete err = %v", err)
	}
}

func TestCreateComment(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	admin := mustUser(t, s, "admin@blog.com")
	reader := mustUser(t, s, "reader@blog.com")
	p := mustPost(t, s, admin, "post")

	c, err := s.CreateComment(ctx, p.Id, reader.Id, "nice post")
	if err != nil {
		t.Fatalf("comment: %v", err)
	}
	if c.PostId != p.Id || c.AuthorId != reader.Id {
		t.Errorf("comment = %+v", c)
	}
	comments, err := s.ListComments(ctx, p.Id)
	if err != nil {
		t.Fatalf("list comments: %v", err)
	}
	if len(comments) != 1 || comments[0].Text != "nice post" || comments[0].Author.Email != "reader@blog.com" {
		t.Fatalf("comments = %+v", comments)
	}

	if _, err := s.CreateComment(ctx, 999, reader.Id, "lost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("comment on missing post err = %v", err)
	}
}

func TestSessions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := mustUser(t, s, "a@b.com")

	sid, err := s.CreateSession(ctx, u.Id, time.Hour)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	got, err := s.SessionUser(ctx, sid)
	if err != nil || got != u.Id {
		t.Fatalf("session user = %d, %v", got, err)
	}
	if err := s.DeleteSession(ctx, sid); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.DeleteSession(ctx, sid); err != nil {
		t.Fatalf("delete twice: %v", err)
	}
	if _, err := s.SessionUser(ctx, sid); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("deleted session err = %v", err)
	}
}

func TestExpiredSessions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := mustUser(t, s, "a@b.com")

	expired, err := s.CreateSession(ctx, u.Id, -time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.SessionUser(ctx, expired); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expired session err = %v", err)
	}

	if _, err := s.CreateSession(ctx, u.Id, -time.Minute); err != nil {
		t.Fatal(err)
	}
	if _, err := s.CreateSession(ctx, u.Id, time.Hour); err != nil {
		t.Fatal(err)
	}
	n, err := s.CleanupExpiredSessions(ctx)
	if err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if n != 1 {
		t.Errorf("cleaned %d sessions, want 1", n)
	}
}
