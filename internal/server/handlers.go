package server

import (
	"errors"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/kraig-tester/Simple-blog-website/internal/auth"
	"github.com/kraig-tester/Simple-blog-website/internal/db"
	"github.com/kraig-tester/Simple-blog-website/internal/log"
	"github.com/kraig-tester/Simple-blog-website/internal/sanitize"
	"github.com/kraig-tester/Simple-blog-website/internal/types"
	"github.com/kraig-tester/Simple-blog-website/pkg/utils"
	"github.com/kraig-tester/Simple-blog-website/pkg/utils/markdown"
	"github.com/kraig-tester/Simple-blog-website/web/static/html"
)

var errPageNotFound = errors.New("the page you are looking for does not exist")

const (
	msgLoginToComment   = "You should be authenticated in order to leave comments."
	msgEmptyComment     = "Your comment is empty."
	msgUserExists       = "User with this email already exists."
	msgUserDoesNotExist = "User does not exist."
	msgWrongPassword    = "Incorrect password."
	msgMissingFields    = "All fields are required."
	msgPostIncomplete   = "A post needs a title and some content."
	msgDuplicateTitle   = "A post with this title already exists."
	msgContactDefault   = "Contact me"
	msgContactSent      = "Successfully sent your message!"
)

// page starts the template data shared by every page.
func (s *Server) page(w http.ResponseWriter, r *http.Request, title string) *html.Data {
	user := currentUser(r)
	return &html.Data{
		Title:   title,
		User:    user,
		IsAdmin: s.auth.IsAdmin(user),
		Flash:   popFlash(w, r),
	}
}

func (s *Server) renderError(w http.ResponseWriter, err error) {
	if err != nil {
		log.Error.Printf("render: %v", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// fail terminates the request with status and the error page.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error, status int) {
	if status >= http.StatusInternalServerError {
		log.Error.Printf("%s %s: %v", r.Method, r.URL.Path, err)
	}
	data := s.page(w, r, http.StatusText(status))
	data.Error = types.NewStatusError(err, status)
	s.renderError(w, s.html.Error(w, data))
}

func (s *Server) setSessionCookie(w http.ResponseWriter, sess *auth.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    sess.Token,
		HttpOnly: true,
		Secure:   !s.isDev,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		Expires:  sess.ExpiresAt,
	})
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    "",
		HttpOnly: true,
		Path:     "/",
		MaxAge:   -1,
	})
}

func (s *Server) GetHomePage(w http.ResponseWriter, r *http.Request) {
	posts, err := s.store.ListPosts(r.Context())
	if err != nil {
		s.fail(w, r, err, http.StatusInternalServerError)
		return
	}
	data := s.page(w, r, "")
	data.Posts = posts
	s.renderError(w, s.html.Home(w, data))
}

func (s *Server) GetAboutPage(w http.ResponseWriter, r *http.Request) {
	s.renderError(w, s.html.About(w, s.page(w, r, "About")))
}

func (s *Server) GetContactPage(w http.ResponseWriter, r *http.Request) {
	data := s.page(w, r, "Contact")
	data.Message = msgContactDefault
	s.renderError(w, s.html.Contact(w, data))
}

// HandleContact only acknowledges the message; nothing is delivered.
func (s *Server) HandleContact(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.fail(w, r, err, http.StatusBadRequest)
		return
	}
	log.Info.Printf("Contact message from %q <%s>", r.FormValue("name"), r.FormValue("email"))
	data := s.page(w, r, "Contact")
	data.Message = msgContactSent
	s.renderError(w, s.html.Contact(w, data))
}

func (s *Server) renderPost(w http.ResponseWriter, r *http.Request, post *db.Post, flash string) {
	comments, err := s.store.ListComments(r.Context(), post.Id)
	if err != nil {
		s.fail(w, r, err, http.StatusInternalServerError)
		return
	}
	data := s.page(w, r, post.Title)
	if flash != "" {
		data.Flash = flash
	}
	data.Post = post
	data.Comments = comments
	s.renderError(w, s.html.Post(w, data))
}

func (s *Server) GetPost(w http.ResponseWriter, r *http.Request) {
	post, ok := postFromContext(r)
	if !ok {
		s.fail(w, r, errPostNotFound, http.StatusNotFound)
		return
	}
	s.renderPost(w, r, post, "")
}

// HandleComment stores a comment from a logged-in reader and shows the post again.
func (s *Server) HandleComment(w http.ResponseWriter, r *http.Request) {
	post, ok := postFromContext(r)
	if !ok {
		s.fail(w, r, errPostNotFound, http.StatusNotFound)
		return
	}
	user := currentUser(r)
	if user == nil {
		setFlash(w, msgLoginToComment)
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}
	if err := r.ParseForm(); err != nil {
		s.fail(w, r, err, http.StatusBadRequest)
		return
	}

	text := sanitize.HTML(strings.TrimSpace(r.FormValue("body")))
	if strings.TrimSpace(text) == "" {
		s.renderPost(w, r, post, msgEmptyComment)
		return
	}

	_, err := s.store.CreateComment(r.Context(), post.Id, user.Id, text)
	if errors.Is(err, db.ErrNotFound) {
		s.fail(w, r, errPostNotFound, http.StatusNotFound)
		return
	}
	if err != nil {
		s.fail(w, r, err, http.StatusInternalServerError)
		return
	}
	log.Info.Printf("Comment added: post=%d author=%q", post.Id, user.Email)
	s.renderPost(w, r, post, "")
}

func (s *Server) GetNewPost(w http.ResponseWriter, r *http.Request) {
	s.renderError(w, s.html.Edit(w, s.page(w, r, "New Post")))
}

// postForm reads the submitted post form and produces the sanitized body.
func postForm(r *http.Request) (html.PostForm, template.HTML, error) {
	form := html.PostForm{
		Title:    strings.TrimSpace(r.FormValue("title")),
		Subtitle: strings.TrimSpace(r.FormValue("subtitle")),
		ImgUrl:   strings.TrimSpace(r.FormValue("img_url")),
		Author:   r.FormValue("author"),
		Body:     r.FormValue("body"),
		Markdown: r.FormValue("format") == "markdown",
	}
	body := form.Body
	if form.Markdown {
		rendered, err := markdown.ParseMD(body)
		if err != nil {
			return form, "", err
		}
		body = rendered
	}
	return form, template.HTML(sanitize.HTML(body)), nil
}

func (s *Server) HandleCreatePost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.fail(w, r, err, http.StatusBadRequest)
		return
	}
	form, body, err := postForm(r)
	if err != nil {
		s.fail(w, r, err, http.StatusBadRequest)
		return
	}

	data := s.page(w, r, "New Post")
	data.Form = form
	if form.Title == "" || strings.TrimSpace(string(body)) == "" {
		data.Flash = msgPostIncomplete
		s.renderError(w, s.html.Edit(w, data))
		return
	}

	user := currentUser(r)
	post := db.Post{
		AuthorId: user.Id,
		Title:    form.Title,
		Subtitle: form.Subtitle,
		Date:     utils.FormatPostDate(time.Now()),
		Body:     body,
		ImgUrl:   form.ImgUrl,
	}
	err = s.store.CreatePost(r.Context(), &post)
	if errors.Is(err, db.ErrDuplicateTitle) {
		data.Flash = msgDuplicateTitle
		s.renderError(w, s.html.Edit(w, data))
		return
	}
	if err != nil {
		s.fail(w, r, err, http.StatusInternalServerError)
		return
	}
	log.Info.Printf("Post created: id=%d title=%q author=%q", post.Id, post.Title, user.Email)
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *Server) GetEditPost(w http.ResponseWriter, r *http.Request) {
	post, ok := postFromContext(r)
	if !ok {
		s.fail(w, r, errPostNotFound, http.StatusNotFound)
		return
	}
	data := s.page(w, r, "Edit Post")
	data.EditId = post.Id
	data.Form = html.PostForm{
		Title:    post.Title,
		Subtitle: post.Subtitle,
		ImgUrl:   post.ImgUrl,
		Author:   post.Author.Name,
		Body:     string(post.Body),
	}
	s.renderError(w, s.html.Edit(w, data))
}

// HandleEditPost overwrites a post's content. The author field on the form is
// display-only; the post keeps its original author.
func (s *Server) HandleEditPost(w http.ResponseWriter, r *http.Request) {
	post, ok := postFromContext(r)
	if !ok {
		s.fail(w, r, errPostNotFound, http.StatusNotFound)
		return
	}
	if err := r.ParseForm(); err != nil {
		s.fail(w, r, err, http.StatusBadRequest)
		return
	}
	form, body, err := postForm(r)
	if err != nil {
		s.fail(w, r, err, http.StatusBadRequest)
		return
	}

	data := s.page(w, r, "Edit Post")
	data.EditId = post.Id
	data.Form = form
	if form.Title == "" || strings.TrimSpace(string(body)) == "" {
		data.Flash = msgPostIncomplete
		s.renderError(w, s.html.Edit(w, data))
		return
	}

	_, err = s.store.UpdatePost(r.Context(), post.Id, db.PostFields{
		Title:    form.Title,
		Subtitle: form.Subtitle,
		ImgUrl:   form.ImgUrl,
		Body:     body,
	})
	switch {
	case errors.Is(err, db.ErrNotFound):
		s.fail(w, r, errPostNotFound, http.StatusNotFound)
		return
	case errors.Is(err, db.ErrDuplicateTitle):
		data.Flash = msgDuplicateTitle
		s.renderError(w, s.html.Edit(w, data))
		return
	case err != nil:
		s.fail(w, r, err, http.StatusInternalServerError)
		return
	}
	log.Info.Printf("Post updated: id=%d title=%q", post.Id, form.Title)
	http.Redirect(w, r, "/", http.StatusFound)
}

// HandleDeletePost deletes the post and its comments.
func (s *Server) HandleDeletePost(w http.ResponseWriter, r *http.Request) {
	post, ok := postFromContext(r)
	if !ok {
		s.fail(w, r, errPostNotFound, http.StatusNotFound)
		return
	}
	err := s.store.DeletePost(r.Context(), post.Id)
	if errors.Is(err, db.ErrNotFound) {
		s.fail(w, r, errPostNotFound, http.StatusNotFound)
		return
	}
	if err != nil {
		s.fail(w, r, err, http.StatusInternalServerError)
		return
	}
	log.Info.Printf("Post deleted: id=%d title=%q", post.Id, post.Title)
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *Server) GetRegisterPage(w http.ResponseWriter, r *http.Request) {
	s.renderError(w, s.html.Register(w, s.page(w, r, "Register")))
}

func (s *Server) HandleRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.fail(w, r, err, http.StatusBadRequest)
		return
	}
	email := strings.TrimSpace(r.FormValue("email"))
	name := strings.TrimSpace(r.FormValue("name"))
	password := r.FormValue("password")

	data := s.page(w, r, "Register")
	data.Email, data.Name = email, name
	if email == "" || name == "" || password == "" {
		data.Flash = msgMissingFields
		s.renderError(w, s.html.Register(w, data))
		return
	}

	sess, err := s.auth.Register(r.Context(), email, password, name)
	if errors.Is(err, auth.ErrEmailAlreadyInUse) {
		data.Flash = msgUserExists
		s.renderError(w, s.html.Register(w, data))
		return
	}
	if err != nil {
		s.fail(w, r, err, http.StatusInternalServerError)
		return
	}
	log.Info.Printf("Registered user %q (id %d, admin %t)", sess.User.Email, sess.User.Id, s.auth.IsAdmin(sess.User))

	s.setSessionCookie(w, sess)
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *Server) GetLoginPage(w http.ResponseWriter, r *http.Request) {
	s.renderError(w, s.html.Login(w, s.page(w, r, "Log In")))
}

func (s *Server) HandleLogin(w http.ResponseWriter, r *http.Request) {
	// request validation
	if err := r.ParseForm(); err != nil {
		s.fail(w, r, err, http.StatusBadRequest)
		return
	}
	email, password := strings.TrimSpace(r.FormValue("email")), r.FormValue("password")

	data := s.page(w, r, "Log In")
	data.Email = email

	sess, err := s.auth.Login(r.Context(), email, password)
	switch {
	case errors.Is(err, auth.ErrUserNotFound):
		log.Warn.Printf("Login failed for %q: no such user", email)
		data.Flash = msgUserDoesNotExist
		s.renderError(w, s.html.Login(w, data))
		return
	case errors.Is(err, auth.ErrInvalidCredentials):
		log.Warn.Printf("Login failed for %q: wrong password", email)
		data.Flash = msgWrongPassword
		s.renderError(w, s.html.Login(w, data))
		return
	case err != nil:
		s.fail(w, r, err, http.StatusInternalServerError)
		return
	}
	log.Info.Printf("Login successful: %q", email)

	s.setSessionCookie(w, sess)
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *Server) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.auth.Logout(r.Context(), sessionID(r)); err != nil {
		log.Error.Printf("logout: %v", err)
	}
	s.clearSessionCookie(w)
	http.Redirect(w, r, "/", http.StatusFound)
}
