package dto

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/inkpost/inkpost/internal/model"
)

// PostParams holds the allow-listed post fields of a request.
// Any other field in the payload is dropped on decode.
type PostParams struct {
	Title     *string   `json:"title"`
	Body      *string   `json:"body"`
	Published *FormBool `json:"published"`
}

// CreatePostRequest is the JSON body for POST /posts and PATCH /posts/{id}.
type CreatePostRequest struct {
	Post *PostParams `json:"post"`
}

// FormBool accepts true/false as well as the strings a checkbox submits.
type FormBool bool

// UnmarshalJSON implements json.Unmarshaler.
func (b *FormBool) UnmarshalJSON(data []byte) error {
	var v bool
	if err := json.Unmarshal(data, &v); err == nil {
		*b = FormBool(v)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*b = FormBool(ParseFormBool(s))
	return nil
}

// ParseFormBool reports whether a form value means "checked".
func ParseFormBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "on", "yes":
		return true
	default:
		return false
	}
}

// PostResponse is the API representation of a post.
type PostResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Published bool      `json:"published"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PostEnvelope wraps a single post.
type PostEnvelope struct {
	Post  PostResponse `json:"post"`
	Flash *Flash       `json:"flash,omitempty"`
}

// PostListEnvelope wraps the post list.
type PostListEnvelope struct {
	Posts []PostResponse `json:"posts"`
	Flash *Flash         `json:"flash,omitempty"`
}

// Flash mirrors the one-shot message returned after a redirect.
type Flash struct {
	Notice string `json:"notice,omitempty"`
	Alert  string `json:"alert,omitempty"`
}

// Form describes where and how a client submits a form.
type Form struct {
	Action string   `json:"action"`
	Method string   `json:"method"`
	Fields []string `json:"fields"`
}

// PostFormValues prefills a post form.
type PostFormValues struct {
	Title     string `json:"title"`
	Body      string `json:"body"`
	Published bool   `json:"published"`
}

// PostFormResponse is the shell for the new and edit forms.
type PostFormResponse struct {
	Form   Form           `json:"form"`
	Values PostFormValues `json:"values"`
	Flash  *Flash         `json:"flash,omitempty"`
}

// PostFields are the names a post form submits.
var PostFields = []string{"title", "body", "published"}

// FromPost converts a model.Post to PostResponse.
func FromPost(post *model.Post) PostResponse {
	return PostResponse{
		ID:        post.ID,
		UserID:    post.UserID,
		Title:     post.Title,
		Body:      post.Body,
		Published: post.Published,
		URL:       PostURL(post.ID),
		CreatedAt: post.CreatedAt,
		UpdatedAt: post.UpdatedAt,
	}
}

// FromPosts converts a slice of posts.
func FromPosts(posts []*model.Post) []PostResponse {
	out := make([]PostResponse, 0, len(posts))
	for _, p := range posts {
		out = append(out, FromPost(p))
	}
	return out
}

// PostURL returns the canonical path of a post.
func PostURL(id string) string {
	return "/posts/" + id
}
