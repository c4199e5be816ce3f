package ytserver

import "github.com/anatolykoptev/go_ytcomments/internal/engine/youtube"

// CommentsInput is the input for youtube_comments.
type CommentsInput struct {
	Video    string `json:"video" jsonschema:"YouTube video id or URL (youtube.com/watch, youtu.be, shorts)"`
	Limit    int    `json:"limit,omitempty" jsonschema:"Maximum number of comments, replies included (default: 50, max: 2000)"`
	Language string `json:"language,omitempty" jsonschema:"Interface language sent to YouTube, e.g. pt, en, es (default: pt; auto keeps the page language)"`
	Sort     string `json:"sort,omitempty" jsonschema:"Sort order: recent (default) or popular"`
	Full     bool   `json:"full,omitempty" jsonschema:"Return full records (author channel, votes, heart, paid chip, parsed time) instead of the compact schema"`
}

// CommentsOutput is the output for youtube_comments.
type CommentsOutput struct {
	Video    string                  `json:"video"`
	Sort     string                  `json:"sort"`
	Count    int                     `json:"count"`
	Comments []youtube.PublicComment `json:"comments,omitempty"`
	Records  []youtube.Comment       `json:"records,omitempty"`
}
