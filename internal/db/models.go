package db

import "html/template"

type User struct {
	Id       int64
	Email    string
	Password string
	Name     string
	IsAdmin  bool
}

// NewUser holds the fields supplied at registration. Password is already hashed.
type NewUser struct {
	Email    string
	Password string
	Name     string
}

type Post struct {
	Id       int64
	AuthorId int64
	Author   *User
	Title    string
	Subtitle string
	Date     string
	Body     template.HTML
	ImgUrl   string
}

// PostFields are the editable columns of a post.
type PostFields struct {
	Title    string
	Subtitle string
	ImgUrl   string
	Body     template.HTML
}

type Comment struct {
	Id       int64
	PostId   int64
	AuthorId int64
	Author   *User
	Text     template.HTML
}
