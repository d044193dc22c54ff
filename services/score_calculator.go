package services

import (
	"github.com/engagemint-io/engagemint-indexer/models"
)

// PointsBreakdown is the per-category and total point contribution of one or
// more posts. Points are float64 since multipliers may be fractional.
type PointsBreakdown struct {
	Favorite  float64
	Quote     float64
	Retweet   float64
	View      float64
	VideoView float64
	Total     float64
}

// Add accumulates another breakdown into this one.
func (p *PointsBreakdown) Add(other PointsBreakdown) {
	p.Favorite += other.Favorite
	p.Quote += other.Quote
	p.Retweet += other.Retweet
	p.View += other.View
	p.VideoView += other.VideoView
	p.Total += other.Total
}

// ScorePost computes the point contribution of a single post under the
// ticker's multiplier rubric. Video-view points sum the view counts of every
// media item the post attaches, resolved through mediaByKey.
func ScorePost(post models.Post, mediaByKey map[string]models.MediaAttachment, m models.Multipliers) PointsBreakdown {
	points := PointsBreakdown{
		Favorite: float64(post.PublicMetrics.LikeCount) * m.Like,
		Quote:    float64(post.PublicMetrics.QuoteCount) * m.Quote,
		Retweet:  float64(post.PublicMetrics.RetweetCount) * m.Retweet,
		View:     float64(post.PublicMetrics.ImpressionCount) * m.View,
	}

	for _, key := range post.Attachments.MediaKeys {
		if media, ok := mediaByKey[key]; ok {
			points.VideoView += float64(media.PublicMetrics.ViewCount) * m.VideoView
		}
	}

	points.Total = points.Favorite + points.Quote + points.Retweet + points.View + points.VideoView
	return points
}
