// Engagement rate computation from raw counters
package metrics

// Interaction weights. Comments and shares signal more intent than likes.
const (
	likeWeight    = 1
	commentWeight = 2
	shareWeight   = 3
)

// EngagementRate returns the weighted engagement percentage for a content
// item. Returns 0 when there are no views, and never exceeds 100.
func EngagementRate(views, likes, comments, shares int64) float64 {
	if views == 0 {
		return 0
	}
	weighted := likes*likeWeight + comments*commentWeight + shares*shareWeight
	rate := float64(weighted) / float64(views) * 100
	if rate > 100 {
		return 100
	}
	return rate
}
