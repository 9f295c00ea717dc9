package html

import (
	"bytes"
	"embed"
	"html/template"
	"io"
	"net/http"
	"path/filepath"

	"github.com/kraig-tester/Simple-blog-website/internal/db"
	"github.com/kraig-tester/Simple-blog-website/internal/types"
	"github.com/kraig-tester/Simple-blog-website/pkg/utils"
)

//go:embed *.html
var files embed.FS

// DevDir is where templates are read from in development, relative to the
// repository root.
const DevDir = "web/static/html"

var functions = template.FuncMap{
	"gravatar": utils.Gravatar,
}

// Data is everything a page can show. Handlers fill in what they need.
type Data struct {
	Title   string
	User    *db.User
	IsAdmin bool
	Flash   string
	Message string

	Posts    []*db.Post
	Post     *db.Post
	Comments []*db.Comment

	Form   PostForm
	EditId int64

	Email string
	Name  string

	Error types.StatusError
}

// PostForm backs the create and edit post page.
type PostForm struct {
	Title    string
	Subtitle string
	ImgUrl   string
	Author   string
	Body     string
	Markdown bool
}

type Templates struct {
	dev   bool
	pages map[string]*template.Template
}

var pages = []string{
	"index.html", "post.html", "add.html", "about.html", "contact.html",
	"register.html", "login.html", "error.html",
}

// New parses every page up front. In development pages are instead re-read
// from disk on each render.
func New(dev bool) (*Templates, error) {
	t := &Templates{dev: dev, pages: make(map[string]*template.Template, len(pages))}
	if dev {
		return t, nil
	}
	for _, page := range pages {
		tmpl, err := template.New("layout.html").Funcs(functions).ParseFS(files, "layout.html", page)
		if err != nil {
			return nil, err
		}
		t.pages[page] = tmpl
	}
	return t, nil
}

func (t *Templates) parse(file string) (*template.Template, error) {
	if t.dev {
		// dynamically read from files for dynamic template parsing
		return template.New("layout.html").Funcs(functions).ParseFiles(
			filepath.Join(DevDir, "layout.html"), filepath.Join(DevDir, file))
	}
	return t.pages[file], nil
}

// render executes into a buffer first so a template failure never leaves a
// half-written page behind a 200.
func (t *Templates) render(w io.Writer, status int, file string, data *Data) error {
	tmpl, err := t.parse(file)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return err
	}
	if rw, ok := w.(http.ResponseWriter); ok {
		rw.Header().Set("Content-Type", "text/html; charset=utf-8")
		rw.WriteHeader(status)
	}
	_, err = buf.WriteTo(w)
	return err
}

func (t *Templates) Home(w io.Writer, data *Data) error {
	return t.render(w, http.StatusOK, "index.html", data)
}

func (t *Templates) Post(w io.Writer, data *Data) error {
	return t.render(w, http.StatusOK, "post.html", data)
}

// Edit renders the post form, empty for a new post or pre-filled for data.EditId.
func (t *Templates) Edit(w io.Writer, data *Data) error {
	return t.render(w, http.StatusOK, "add.html", data)
}

func (t *Templates) About(w io.Writer, data *Data) error {
	return t.render(w, http.StatusOK, "about.html", data)
}

func (t *Templates) Contact(w io.Writer, data *Data) error {
	return t.render(w, http.StatusOK, "contact.html", data)
}

func (t *Templates) Register(w io.Writer, data *Data) error {
	return t.render(w, http.StatusOK, "register.html", data)
}

func (t *Templates) Login(w io.Writer, data *Data) error {
	return t.render(w, http.StatusOK, "login.html", data)
}

func (t *Templates) Error(w io.Writer, data *Data) error {
	return t.render(w, data.Error.HTTPStatus(), "error.html", data)
}
