package domain

import "time"

// MsgId is a UUIDv7 in string form. Ids are time-ordered, so their string
// form is also the opaque pagination cursor.
type MsgId = string

type Message struct {
	Id        MsgId          `json:"id"`
	Content   string         `json:"content"`
	CreatedAt time.Time      `json:"created_at"`
	IpHash    *string        `json:"ip_hash"`
	Deleted   bool           `json:"deleted"`
	UserName  *string        `json:"user_name"`
	ParentId  *MsgId         `json:"parent_id"`
	Reactions ReactionCounts `json:"reactions"`
	// Replies is populated for top-level messages only and is always an empty
	// slice on a reply's own record. Thread depth never exceeds 2.
	Replies []Message `json:"replies"`
}

// MessageFeed is one page of top-level messages.
type MessageFeed struct {
	Messages   []Message
	HasMore    bool
	NextCursor MsgId // empty when HasMore is false
}

type MessageCreationData struct {
	Content  string
	UserName *string
	ParentId *MsgId
	IpHash   *string
}
