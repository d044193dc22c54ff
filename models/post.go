package models

// EngagementCounts are the public engagement metrics attached to a post.
// Absent counts decode as zero.
type EngagementCounts struct {
	LikeCount       int `json:"like_count"`
	QuoteCount      int `json:"quote_count"`
	RetweetCount    int `json:"retweet_count"`
	ImpressionCount int `json:"impression_count"`
}

// Attachments lists the media keys referenced by a post.
type Attachments struct {
	MediaKeys []string `json:"media_keys"`
}

// Post is one social-media post as returned by the X API v2 search endpoint.
type Post struct {
	Text          string           `json:"text"`
	PublicMetrics EngagementCounts `json:"public_metrics"`
	Attachments   Attachments      `json:"attachments"`
}

// MediaMetrics carries the view count of an attached media item.
type MediaMetrics struct {
	ViewCount int `json:"view_count"`
}

// MediaAttachment is one media include resolved via attachments.media_keys.
type MediaAttachment struct {
	MediaKey      string       `json:"media_key"`
	PublicMetrics MediaMetrics `json:"public_metrics"`
}

// PostBatch is the result of one per-user post fetch: the posts plus the
// media includes they reference.
type PostBatch struct {
	Posts []Post
	Media []MediaAttachment
}

// MediaByKey indexes the batch's media includes by media key for scoring.
func (b PostBatch) MediaByKey() map[string]MediaAttachment {
	byKey := make(map[string]MediaAttachment, len(b.Media))
	for _, m := range b.Media {
		byKey[m.MediaKey] = m
	}
	return byKey
}
