package domain

type ReactionKind string

const (
	ThumbsUp   ReactionKind = "THUMBS_UP"
	Heart      ReactionKind = "HEART"
	Laugh      ReactionKind = "LAUGH"
	ThumbsDown ReactionKind = "THUMBS_DOWN"
	Angry      ReactionKind = "ANGRY"
)

// ReactionKinds is the closed set of reaction kinds. Requests naming anything
// else are rejected before any mutation.
var ReactionKinds = []ReactionKind{ThumbsUp, Heart, Laugh, ThumbsDown, Angry}

func (k ReactionKind) Valid() bool {
	for _, known := range ReactionKinds {
		if k == known {
			return true
		}
	}
	return false
}

// ReactionCounts always carries all five kinds, zero-valued when no row exists.
type ReactionCounts map[ReactionKind]int64

func EmptyReactionCounts() ReactionCounts {
	counts := make(ReactionCounts, len(ReactionKinds))
	for _, kind := range ReactionKinds {
		counts[kind] = 0
	}
	return counts
}

// BuildReactionCounts shapes stored (kind, count) rows into the full
// five-kind map the API returns.
func BuildReactionCounts(rows map[ReactionKind]int64) ReactionCounts {
	counts := EmptyReactionCounts()
	for kind, count := range rows {
		counts[kind] = count
	}
	return counts
}
