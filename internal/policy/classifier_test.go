package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/modtools/tubeguard/internal/domain"
)

func linkPost(url string) domain.Post {
	return domain.Post{Kind: domain.KindSubmission, URL: url}
}

func commentPost(body string) domain.Post {
	return domain.Post{Kind: domain.KindComment, Body: body}
}

func TestIsTargetLinkSubmissions(t *testing.T) {
	cases := []struct {
		name string
		url  string
		want bool
	}{
		{"canonical watch", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", true},
		{"short link", "https://youtu.be/dQw4w9WgXcQ", true},
		{"mobile", "https://m.youtube.com/watch?v=abc", true},
		{"music subdomain", "https://music.youtube.com/playlist?list=x", true},
		{"no scheme", "youtube.com/channel/UCabc", true},
		{"uppercase host", "HTTPS://WWW.YOUTUBE.COM/watch?v=abc", true},
		{"embed", "https://www.youtube-nocookie.com/embed/abc", true},
		{"unrelated", "https://example.com/article", false},
		{"substring host", "https://notyoutube.com/watch?v=abc", false},
		{"lookalike suffix", "https://youtube.com.evil.example/watch", false},
		{"youtube in path only", "https://example.com/youtube.com/mirror", false},
		{"empty", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsTargetLink(linkPost(tc.url)))
		})
	}
}

func TestIsTargetLinkComments(t *testing.T) {
	cases := []struct {
		name string
		body string
		want bool
	}{
		{"bare mention", "new upload: youtu.be/dQw4w9WgXcQ check it out", true},
		{"markdown", "see [my video](https://www.youtube.com/watch?v=abc) please", true},
		{"www without scheme", "www.youtube.com/watch?v=abc", true},
		{"bare domain at start", "youtube.com/watch?v=abc is the upload", true},
		{"plain text", "I prefer long form blog posts", false},
		{"embedded in longer domain", "get it at notyoutube.com/watch?v=abc today", false},
		{"embedded short-link domain", "mirror: myyoutu.be/xyz", false},
		{"mentions the word", "youtube is fine in moderation", false},
		{"other video site", "https://vimeo.com/12345", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsTargetLink(commentPost(tc.body)))
		})
	}
}

func TestIsTargetLinkSelfPostUsesBody(t *testing.T) {
	p := domain.Post{
		Kind:   domain.KindSubmission,
		IsSelf: true,
		Body:   "subscribe: https://youtube.com/channel/UCabc",
	}
	assert.True(t, IsTargetLink(p))

	p.Body = "no links here"
	assert.False(t, IsTargetLink(p))
}
