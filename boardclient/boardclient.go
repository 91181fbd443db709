// Package boardclient is a Go client for the community board API. It keeps
// the fetched thread tree, pagination cursor and an advisory "already
// reacted" guard in memory, mirroring what the site's board page does.
package boardclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"
)

type State int

const (
	StateIdle State = iota
	StateLoading
	StateLoaded
	StateSubmitting
	StateLoadingMore
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateSubmitting:
		return "submitting"
	case StateLoadingMore:
		return "loadingMore"
	default:
		return "unknown"
	}
}

// Message mirrors the API wire shape.
type Message struct {
	Id        string           `json:"id"`
	Content   string           `json:"content"`
	CreatedAt time.Time        `json:"created_at"`
	IpHash    *string          `json:"ip_hash"`
	Deleted   bool             `json:"deleted"`
	UserName  *string          `json:"user_name"`
	ParentId  *string          `json:"parent_id"`
	Reactions map[string]int64 `json:"reactions"`
	Replies   []Message        `json:"replies"`
}

type messagesResponse struct {
	Messages   []Message `json:"messages"`
	HasMore    bool      `json:"hasMore"`
	NextCursor string    `json:"nextCursor"`
}

type createMessageResponse struct {
	Message Message `json:"message"`
}

type reactionResponse struct {
	MessageId string           `json:"messageId"`
	Reactions map[string]int64 `json:"reactions"`
}

type apiError struct {
	Message string `json:"error"`
	Code    string `json:"code"`
}

// Error is a classified API failure.
type Error struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("api error %d (%s): %s", e.StatusCode, e.Code, e.Message)
}

// ErrAlreadyReacted is returned by React when the local advisory guard has
// already seen a reaction to the message in this session. It is a UI nicety,
// not a server-enforced rule.
var ErrAlreadyReacted = fmt.Errorf("already reacted to this message")

type Client struct {
	httpClient *http.Client
	baseURL    string
	pageSize   int

	mu         sync.Mutex
	state      State
	messages   []Message
	hasMore    bool
	nextCursor string
	reacted    map[string]bool
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

func WithPageSize(pageSize int) Option {
	return func(c *Client) { c.pageSize = pageSize }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    baseURL,
		pageSize:   20,
		state:      StateIdle,
		reacted:    make(map[string]bool),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Messages returns a snapshot of the current thread tree.
func (c *Client) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	snapshot := make([]Message, len(c.messages))
	copy(snapshot, c.messages)
	return snapshot
}

func (c *Client) HasMore() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hasMore
}

func (c *Client) HasReacted(messageId string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reacted[messageId]
}

// Load fetches the first page, replacing any loaded state.
func (c *Client) Load(ctx context.Context) error {
	if err := c.transition(StateIdle, StateLoaded, StateLoading); err != nil {
		return err
	}

	page, err := c.fetchPage(ctx, "")
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = StateLoaded
	if err != nil {
		return err
	}
	c.messages = page.Messages
	c.hasMore = page.HasMore
	c.nextCursor = page.NextCursor
	return nil
}

// LoadMore fetches the next page and appends it.
func (c *Client) LoadMore(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateLoaded {
		c.mu.Unlock()
		return fmt.Errorf("cannot load more in state %s", c.state)
	}
	if !c.hasMore {
		c.mu.Unlock()
		return nil
	}
	cursor := c.nextCursor
	c.state = StateLoadingMore
	c.mu.Unlock()

	page, err := c.fetchPage(ctx, cursor)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = StateLoaded
	if err != nil {
		return err
	}
	c.messages = append(c.messages, page.Messages...)
	c.hasMore = page.HasMore
	c.nextCursor = page.NextCursor
	return nil
}

// Post submits a message and refetches the first page on success so the new
// message shows up.
func (c *Client) Post(ctx context.Context, content string, username, parentId *string) (*Message, error) {
	c.mu.Lock()
	if c.state != StateLoaded {
		c.mu.Unlock()
		return nil, fmt.Errorf("cannot post in state %s", c.state)
	}
	c.state = StateSubmitting
	c.mu.Unlock()

	body := map[string]interface{}{"content": content}
	if username != nil {
		body["username"] = *username
	}
	if parentId != nil {
		body["parentId"] = *parentId
	}

	var created createMessageResponse
	err := c.do(ctx, http.MethodPost, "/api/messages", body, nil, &created)
	if err != nil {
		c.mu.Lock()
		c.state = StateLoaded
		c.mu.Unlock()
		return nil, err
	}

	page, fetchErr := c.fetchPage(ctx, "")
	c.mu.Lock()
	c.state = StateLoaded
	if fetchErr == nil {
		c.messages = page.Messages
		c.hasMore = page.HasMore
		c.nextCursor = page.NextCursor
	}
	c.mu.Unlock()

	return &created.Message, nil
}

// React sends a reaction and merges the returned counts into the loaded tree
// without a full refetch. The local guard blocks repeat reactions for this
// session only.
func (c *Client) React(ctx context.Context, messageId, kind string) error {
	c.mu.Lock()
	if c.reacted[messageId] {
		c.mu.Unlock()
		return ErrAlreadyReacted
	}
	c.mu.Unlock()

	var resp reactionResponse
	err := c.do(ctx, http.MethodPost, "/api/messages/"+url.PathEscape(messageId)+"/reactions",
		map[string]interface{}{"reaction": kind}, nil, &resp)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.reacted[messageId] = true
	mergeReactions(c.messages, resp.MessageId, resp.Reactions)
	return nil
}

// mergeReactions finds the message by id in the top-level list or one level
// of replies and swaps in the fresh counts.
func mergeReactions(messages []Message, messageId string, reactions map[string]int64) bool {
	for i := range messages {
		if messages[i].Id == messageId {
			messages[i].Reactions = reactions
			return true
		}
		if mergeReactions(messages[i].Replies, messageId, reactions) {
			return true
		}
	}
	return false
}

func (c *Client) transition(from1, from2, to State) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != from1 && c.state != from2 {
		return fmt.Errorf("cannot transition to %s from %s", to, c.state)
	}
	c.state = to
	return nil
}

func (c *Client) fetchPage(ctx context.Context, cursor string) (*messagesResponse, error) {
	query := url.Values{"limit": {strconv.Itoa(c.pageSize)}}
	if cursor != "" {
		query.Set("before", cursor)
	}

	var page messagesResponse
	if err := c.do(ctx, http.MethodGet, "/api/messages?"+query.Encode(), nil, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}, headers map[string]string, out interface{}) error {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var e apiError
		if err := json.NewDecoder(resp.Body).Decode(&e); err != nil {
			return &Error{StatusCode: resp.StatusCode, Code: "UNKNOWN", Message: resp.Status}
		}
		return &Error{StatusCode: resp.StatusCode, Code: e.Code, Message: e.Message}
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
