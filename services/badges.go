package services

// BadgeID identifies a badge in the static catalog.
type BadgeID string

const (
	BadgeFirstReview   BadgeID = "first_review"
	BadgeFiveStarFan   BadgeID = "five_star_fan"
	BadgeReviewMachine BadgeID = "review_machine"
	BadgeHotStreak     BadgeID = "hot_streak"
	BadgeStoryTeller   BadgeID = "story_teller"
	BadgeCommunityKing BadgeID = "community_king"
	BadgeLegend        BadgeID = "legend"
)

// Badge is a static catalog entry. The award of a badge to a user is a
// separate append-only fact (models.BadgeAward).
type Badge struct {
	ID          BadgeID `json:"id"`
	Emoji       string  `json:"emoji"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
}

// Catalog lists all badges in evaluation order. Legend must stay last:
// its rule counts every other badge and excludes itself.
var Catalog = []Badge{
	{BadgeFirstReview, "🏆", "First Review", "Write your first review"},
	{BadgeFiveStarFan, "⭐", "Five Star Fan", "Give five 5-star reviews"},
	{BadgeReviewMachine, "📝", "Review Machine", "Write 50 reviews"},
	{BadgeHotStreak, "🔥", "Hot Streak", "Claim the daily bonus 7 days in a row"},
	{BadgeStoryTeller, "💬", "Story Teller", "Write 5 reviews over 500 words"},
	{BadgeCommunityKing, "👑", "Community King", "Get 100 upvotes on your reviews"},
	{BadgeLegend, "🌟", "Legend", "Earn all other badges"},
}

// CatalogEntry looks a badge up by id.
func CatalogEntry(id BadgeID) (Badge, bool) {
	for _, b := range Catalog {
		if b.ID == id {
			return b, true
		}
	}
	return Badge{}, false
}

// BadgeStats are the aggregate user statistics the unlock rules read.
type BadgeStats struct {
	Reviews         int
	FiveStarReviews int
	LongReviews     int // reviews with more than 500 words
	Upvotes         int
	CurrentStreak   int
}

// unlocked reports whether the stats satisfy a single badge's rule.
// Legend is handled separately in eligibleBadges.
func unlocked(id BadgeID, stats BadgeStats) bool {
	switch id {
	case BadgeFirstReview:
		return stats.Reviews >= 1
	case BadgeFiveStarFan:
		return stats.FiveStarReviews >= 5
	case BadgeReviewMachine:
		return stats.Reviews >= 50
	case BadgeHotStreak:
		return stats.CurrentStreak >= 7
	case BadgeStoryTeller:
		return stats.LongReviews >= 5
	case BadgeCommunityKing:
		return stats.Upvotes >= 100
	default:
		return false
	}
}

// eligibleBadges returns the badges newly unlocked by stats given the set
// already held. Already-held badges are skipped, so repeated evaluation is
// a no-op. Legend runs in a final pass over the catalog minus itself.
func eligibleBadges(stats BadgeStats, held map[BadgeID]bool) []BadgeID {
	var earned []BadgeID
	haveAll := true
	for _, b := range Catalog {
		if b.ID == BadgeLegend {
			continue
		}
		if held[b.ID] {
			continue
		}
		if unlocked(b.ID, stats) {
			earned = append(earned, b.ID)
		} else {
			haveAll = false
		}
	}
	if haveAll && !held[BadgeLegend] {
		earned = append(earned, BadgeLegend)
	}
	return earned
}
