package server

import (
	"context"
	"net/http"

	"github.com/aarol/reload"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/kraig-tester/Simple-blog-website/internal/auth"
	"github.com/kraig-tester/Simple-blog-website/internal/db"
	"github.com/kraig-tester/Simple-blog-website/web/static/html"
)

// Store is the persistence the handlers use.
type Store interface {
	ListPosts(ctx context.Context) ([]*db.Post, error)
	GetPost(ctx context.Context, id int64) (*db.Post, error)
	CreatePost(ctx context.Context, post *db.Post) error
	UpdatePost(ctx context.Context, id int64, f db.PostFields) (*db.Post, error)
	DeletePost(ctx context.Context, id int64) error
	CreateComment(ctx context.Context, postID, authorID int64, text string) (*db.Comment, error)
	ListComments(ctx context.Context, postID int64) ([]*db.Comment, error)
}

type Options struct {
	IsDev bool
	// StaticDir is served under /static.
	StaticDir string
}

type Server struct {
	store     Store
	auth      *auth.Manager
	html      *html.Templates
	isDev     bool
	staticDir string
}

func New(store Store, authManager *auth.Manager, opts Options) (*Server, error) {
	templates, err := html.New(opts.IsDev)
	if err != nil {
		return nil, err
	}
	if opts.StaticDir == "" {
		opts.StaticDir = "./web/static"
	}
	return &Server{
		store:     store,
		auth:      authManager,
		html:      templates,
		isDev:     opts.IsDev,
		staticDir: opts.StaticDir,
	}, nil
}

// Handler builds the router. In development it also live-reloads templates and css.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)    // log start and end of each request
	r.Use(middleware.RequestID) // add unique id to each request context
	r.Use(middleware.Recoverer) // recover and log from panic, return 500
	r.Use(middleware.RealIP)    // add request RemoteAddr to X-Real-IP
	r.Use(s.auth.Verifier())
	r.Use(s.SessionCtx)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.fail(w, r, errPageNotFound, http.StatusNotFound)
	})

	var handler http.Handler = r

	if s.isDev {
		// list of directories to recursively watch
		reloader := reload.New(html.DevDir+"/", "web/static/css/")
		handler = reloader.Handle(handler)
	}

	// handle static assets
	r.Route("/static", func(r chi.Router) {
		r.Get("/*", http.StripPrefix("/static/", http.FileServer(http.Dir(s.staticDir))).ServeHTTP)
	})

	// admin routes
	r.Group(func(r chi.Router) {
		r.Use(s.RequireAdmin)

		r.Get("/new-post", s.GetNewPost)
		r.Post("/new-post", s.HandleCreatePost)
		r.With(s.PostCtx).Get("/edit-post/{postID}", s.GetEditPost)
		r.With(s.PostCtx).Post("/edit-post/{postID}", s.HandleEditPost)
		r.With(s.PostCtx).Get("/delete/{postID}", s.HandleDeletePost)
		r.With(s.PostCtx).Post("/delete/{postID}", s.HandleDeletePost)
	})

	// public routes
	r.Group(func(r chi.Router) {
		r.Get("/", s.GetHomePage)
		r.Get("/index.html", s.GetHomePage)
		r.Get("/about.html", s.GetAboutPage)
		r.Get("/contact.html", s.GetContactPage)
		r.Post("/contact.html", s.HandleContact)
		r.With(s.PostCtx).Get("/post/{postID}.html", s.GetPost)
		r.With(s.PostCtx).Post("/post/{postID}.html", s.HandleComment)
		r.Get("/register", s.GetRegisterPage)
		r.Post("/register", s.HandleRegister)
		r.Get("/login", s.GetLoginPage)
		r.Post("/login", s.HandleLogin)
		r.Get("/logout", s.HandleLogout)
	})

	return handler
}
