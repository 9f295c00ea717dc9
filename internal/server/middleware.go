package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/kraig-tester/Simple-blog-website/internal/auth"
	"github.com/kraig-tester/Simple-blog-website/internal/db"
)

type key int

const (
	postKey key = iota
	userKey
	sessionKey
)

var (
	errForbidden     = errors.New("only the administrator can do that")
	errPostNotFound  = errors.New("that post does not exist")
	errInvalidPostID = errors.New("invalid post id")
)

// SessionCtx resolves the verified session cookie to the current user. It
// never rejects a request; anonymous requests carry no user.
func (s *Server) SessionCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sid := auth.SessionID(ctx)
		if sid != "" {
			ctx = context.WithValue(ctx, sessionKey, sid)
			if user := s.auth.CurrentUser(ctx, sid); user != nil {
				ctx = context.WithValue(ctx, userKey, user)
			}
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin answers 403 unless the current user is an administrator. It
// must run before anything that touches the post being managed.
func (s *Server) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.auth.IsAdmin(currentUser(r)) {
			s.fail(w, r, errForbidden, http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// middleware to add post to context, 404 if not found
func (s *Server) PostCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		postID, err := strconv.ParseInt(chi.URLParam(r, "postID"), 10, 64)
		if err != nil {
			s.fail(w, r, errInvalidPostID, http.StatusBadRequest)
			return
		}
		post, err := s.store.GetPost(r.Context(), postID)
		if errors.Is(err, db.ErrNotFound) {
			s.fail(w, r, errPostNotFound, http.StatusNotFound)
			return
		}
		if err != nil {
			s.fail(w, r, err, http.StatusInternalServerError)
			return
		}
		ctx := context.WithValue(r.Context(), postKey, post)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func currentUser(r *http.Request) *db.User {
	user, _ := r.Context().Value(userKey).(*db.User)
	return user
}

func sessionID(r *http.Request) string {
	sid, _ := r.Context().Value(sessionKey).(string)
	return sid
}

func postFromContext(r *http.Request) (*db.Post, bool) {
	post, ok := r.Context().Value(postKey).(*db.Post)
	return post, ok
}
