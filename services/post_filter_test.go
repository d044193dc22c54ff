package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/engagemint-io/engagemint-indexer/models"
)

func postsWithText(texts ...string) []models.Post {
	posts := make([]models.Post, 0, len(texts))
	for _, text := range texts {
		posts = append(posts, models.Post{Text: text})
	}
	return posts
}

func TestFilterPosts_RetainsCashtagAndHashtagMentions(t *testing.T) {
	ticker := "TESTSEITOKEN"
	posts := postsWithText(
		"Post containing token name $TESTSEITOKEN",
		"Post containing token name #TESTSEITOKEN",
		"Post containing token name TESTSEITOKEN",
	)

	filtered := FilterPosts(posts, ticker, "testuser")

	assert.Equal(t, postsWithText(
		"Post containing token name $TESTSEITOKEN",
		"Post containing token name #TESTSEITOKEN",
	), filtered)
}

func TestFilterPosts_MatchIsCaseInsensitive(t *testing.T) {
	posts := postsWithText(
		"Post containing token name $tESTSEITOKEN",
		"Post containing token name #Testseitoken",
		"Post containing token name TESTSEITOKEN",
	)

	filtered := FilterPosts(posts, "TESTSEITOKEN", "testuser")

	assert.Equal(t, postsWithText(
		"Post containing token name $tESTSEITOKEN",
		"Post containing token name #Testseitoken",
	), filtered)
}

func TestFilterPosts_DropsSelfRetweets(t *testing.T) {
	posts := postsWithText(
		"RT @testuser: Post containing token name $TESTSEITOKEN",
		"RT @testuser: Post containing token name #TESTSEITOKEN",
		"RT @testuser: Post containing token name TESTSEITOKEN",
	)

	filtered := FilterPosts(posts, "TESTSEITOKEN", "testuser")
	assert.Empty(t, filtered)
}

func TestFilterPosts_KeepsOtherPostsAroundSelfRetweets(t *testing.T) {
	posts := postsWithText(
		"RT @testuser: Post containing token name $TESTSEITOKEN",
		"Post containing token name $tESTSEITOKEN",
		"RT @otheruser: Post containing token name #TESTSEITOKEN",
	)

	filtered := FilterPosts(posts, "TESTSEITOKEN", "testuser")

	assert.Equal(t, postsWithText(
		"Post containing token name $tESTSEITOKEN",
		"RT @otheruser: Post containing token name #TESTSEITOKEN",
	), filtered)
}

// Substring matching is intentional: a ticker also matches inside a longer
// token.
func TestFilterPosts_MatchesTickerInsideLongerToken(t *testing.T) {
	posts := postsWithText("Big fan of $SEICOIN today")

	filtered := FilterPosts(posts, "SEI", "testuser")
	assert.Len(t, filtered, 1)
}

func TestFilterPosts_PreservesOrder(t *testing.T) {
	posts := postsWithText("$TOK first", "no mention", "#TOK second", "$TOK third")

	filtered := FilterPosts(posts, "TOK", "testuser")

	assert.Equal(t, postsWithText("$TOK first", "#TOK second", "$TOK third"), filtered)
}
