package services

import (
	"strings"

	"github.com/engagemint-io/engagemint-indexer/models"
)

// FilterPosts retains the posts whose text mentions the ticker as a cashtag
// ($TICKER) or hashtag (#TICKER), case-insensitively, and drops the user's
// retweets of their own posts. Matching is substring-based, so a ticker also
// matches inside a longer token. Input order is preserved.
func FilterPosts(posts []models.Post, ticker string, username string) []models.Post {
	cashtag := "$" + strings.ToLower(ticker)
	hashtag := "#" + strings.ToLower(ticker)
	selfRetweet := "rt @" + strings.ToLower(username) + ":"

	var filtered []models.Post
	for _, post := range posts {
		text := strings.ToLower(post.Text)
		if strings.HasPrefix(text, selfRetweet) {
			continue
		}
		if strings.Contains(text, cashtag) || strings.Contains(text, hashtag) {
			filtered = append(filtered, post)
		}
	}
	return filtered
}
