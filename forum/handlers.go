package forum

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/tailored-agentic-units/agentbook/memory"
	"github.com/tailored-agentic-units/agentbook/tools"
)

// handlers binds the bot-book client to the memory journal. Every handler
// follows the same shape: decode arguments, call the API, convert any
// failure into an error Result, and on success record the action.
type handlers struct {
	client *Client
	mem    *memory.Store
}

func (h *handlers) listPosts(ctx context.Context, args json.RawMessage) (tools.Result, error) {
	var params struct {
		Sort    string `json:"sort"`
		Page    int    `json:"page"`
		PerPage int    `json:"per_page"`
	}
	if err := decodeArgs(args, &params); err != nil {
		return tools.Errorf("Invalid arguments: %s", err), nil
	}

	q := url.Values{}
	if params.Sort != "" {
		q.Set("sort", params.Sort)
	}
	if params.Page > 0 {
		q.Set("page", strconv.Itoa(params.Page))
	}
	if params.PerPage > 0 {
		q.Set("per_page", strconv.Itoa(params.PerPage))
	}

	body, err := h.client.Get(ctx, "/posts", q)
	if err != nil {
		return tools.Errorf("%s", err), nil
	}
	return tools.Result{Content: body}, nil
}

func (h *handlers) readPost(ctx context.Context, args json.RawMessage) (tools.Result, error) {
	var params struct {
		PostID int `json:"post_id"`
	}
	if err := decodeArgs(args, &params); err != nil {
		return tools.Errorf("Invalid arguments: %s", err), nil
	}

	body, err := h.client.Get(ctx, fmt.Sprintf("/posts/%d", params.PostID), nil)
	if err != nil {
		return tools.Errorf("%s", err), nil
	}

	if h.mem != nil {
		h.mem.RecordRead(params.PostID, authorNames(body), nil)
	}
	return tools.Result{Content: body}, nil
}

func (h *handlers) createPost(ctx context.Context, args json.RawMessage) (tools.Result, error) {
	var params struct {
		Title string `json:"title"`
		Body  string `json:"body"`
	}
	if err := decodeArgs(args, &params); err != nil {
		return tools.Errorf("Invalid arguments: %s", err), nil
	}

	body, err := h.client.Post(ctx, "/posts", map[string]any{
		"title": params.Title,
		"body":  params.Body,
	})
	if err != nil {
		return tools.Errorf("%s", err), nil
	}

	if h.mem != nil {
		h.mem.RecordCreated(resourceID(body), params.Title)
	}
	return tools.Result{Content: body}, nil
}

func (h *handlers) replyToPost(ctx context.Context, args json.RawMessage) (tools.Result, error) {
	var params struct {
		PostID    int    `json:"post_id"`
		Body      string `json:"body"`
		ParentID  int    `json:"parent_id"`
		Influence *int   `json:"influence"`
	}
	if err := decodeArgs(args, &params); err != nil {
		return tools.Errorf("Invalid arguments: %s", err), nil
	}
	if params.Influence == nil {
		return tools.Errorf("Error: influence is required (-5 to 5)"), nil
	}
	if *params.Influence < -5 || *params.Influence > 5 {
		return tools.Errorf("Error: influence must be between -5 and 5"), nil
	}

	payload := map[string]any{
		"body":      params.Body,
		"influence": *params.Influence,
	}
	if params.ParentID > 0 {
		payload["parent_id"] = params.ParentID
	}

	body, err := h.client.Post(ctx, fmt.Sprintf("/posts/%d/replies", params.PostID), payload)
	if err != nil {
		return tools.Errorf("%s", err), nil
	}

	if h.mem != nil {
		h.mem.RecordReplied(params.PostID, params.Body, authorNames(body), nil)
	}
	return tools.Result{Content: body}, nil
}

func (h *handlers) replyToReply(ctx context.Context, args json.RawMessage) (tools.Result, error) {
	var params struct {
		ReplyID   int    `json:"reply_id"`
		Body      string `json:"body"`
		Influence *int   `json:"influence"`
	}
	if err := decodeArgs(args, &params); err != nil {
		return tools.Errorf("Invalid arguments: %s", err), nil
	}
	if params.Influence == nil {
		return tools.Errorf("Error: influence is required (-5 to 5)"), nil
	}
	if *params.Influence < -5 || *params.Influence > 5 {
		return tools.Errorf("Error: influence must be between -5 and 5"), nil
	}

	body, err := h.client.Post(ctx, fmt.Sprintf("/replies/%d/replies", params.ReplyID), map[string]any{
		"body":      params.Body,
		"influence": *params.Influence,
	})
	if err != nil {
		return tools.Errorf("%s", err), nil
	}

	if h.mem != nil {
		h.mem.RecordReplied(params.ReplyID, params.Body, authorNames(body), nil)
	}
	return tools.Result{Content: body}, nil
}

func (h *handlers) vote(ctx context.Context, args json.RawMessage) (tools.Result, error) {
	var params struct {
		PostID  int `json:"post_id"`
		ReplyID int `json:"reply_id"`
		Value   int `json:"value"`
	}
	if err := decodeArgs(args, &params); err != nil {
		return tools.Errorf("Invalid arguments: %s", err), nil
	}
	if params.Value != 1 && params.Value != -1 {
		return tools.Errorf("Error: value must be 1 or -1"), nil
	}

	var path, key string
	switch {
	case params.PostID > 0 && params.ReplyID > 0:
		return tools.Errorf("Error: must provide either post_id or reply_id, not both"), nil
	case params.PostID > 0:
		path = fmt.Sprintf("/posts/%d/vote", params.PostID)
		key = memory.VoteKey("post", params.PostID)
	case params.ReplyID > 0:
		path = fmt.Sprintf("/replies/%d/vote", params.ReplyID)
		key = memory.VoteKey("reply", params.ReplyID)
	default:
		return tools.Errorf("Error: must provide either post_id or reply_id"), nil
	}

	body, err := h.client.Post(ctx, path, map[string]any{"value": params.Value})
	if err != nil {
		return tools.Errorf("%s", err), nil
	}

	if h.mem != nil {
		h.mem.RecordVote(key, params.Value)
	}
	return tools.Result{Content: body}, nil
}

func (h *handlers) searchPosts(ctx context.Context, args json.RawMessage) (tools.Result, error) {
	var params struct {
		Query string `json:"query"`
		Page  int    `json:"page"`
	}
	if err := decodeArgs(args, &params); err != nil {
		return tools.Errorf("Invalid arguments: %s", err), nil
	}

	q := url.Values{}
	q.Set("q", params.Query)
	if params.Page > 0 {
		q.Set("page", strconv.Itoa(params.Page))
	}

	body, err := h.client.Get(ctx, "/search", q)
	if err != nil {
		return tools.Errorf("%s", err), nil
	}
	return tools.Result{Content: body}, nil
}

func (h *handlers) checkNotifications(ctx context.Context, args json.RawMessage) (tools.Result, error) {
	var params struct {
		UnreadOnly *bool `json:"unread_only"`
	}
	if err := decodeArgs(args, &params); err != nil {
		return tools.Errorf("Invalid arguments: %s", err), nil
	}

	unreadOnly := true
	if params.UnreadOnly != nil {
		unreadOnly = *params.UnreadOnly
	}

	q := url.Values{}
	q.Set("unread_only", strconv.FormatBool(unreadOnly))

	body, err := h.client.Get(ctx, "/notifications", q)
	if err != nil {
		return tools.Errorf("%s", err), nil
	}

	if h.mem != nil {
		h.mem.RecordBotsSeen(authorNames(body))
	}
	return tools.Result{Content: body}, nil
}

func (h *handlers) listBots(ctx context.Context, args json.RawMessage) (tools.Result, error) {
	var params struct {
		Page    int `json:"page"`
		PerPage int `json:"per_page"`
	}
	if err := decodeArgs(args, &params); err != nil {
		return tools.Errorf("Invalid arguments: %s", err), nil
	}

	q := url.Values{}
	if params.Page > 0 {
		q.Set("page", strconv.Itoa(params.Page))
	}
	if params.PerPage > 0 {
		q.Set("per_page", strconv.Itoa(params.PerPage))
	}

	body, err := h.client.Get(ctx, "/bots", q)
	if err != nil {
		return tools.Errorf("%s", err), nil
	}

	if h.mem != nil {
		h.mem.RecordBotsSeen(authorNames(body))
	}
	return tools.Result{Content: body}, nil
}

func (h *handlers) getBot(ctx context.Context, args json.RawMessage) (tools.Result, error) {
	var params struct {
		BotName string `json:"bot_name"`
	}
	if err := decodeArgs(args, &params); err != nil {
		return tools.Errorf("Invalid arguments: %s", err), nil
	}
	if params.BotName == "" {
		return tools.Errorf("Error: bot_name is required"), nil
	}

	body, err := h.client.Get(ctx, "/bots/"+url.PathEscape(params.BotName), nil)
	if err != nil {
		return tools.Errorf("%s", err), nil
	}

	if h.mem != nil {
		h.mem.RecordBotsSeen([]string{params.BotName})
	}
	return tools.Result{Content: body}, nil
}

func (h *handlers) getInfluence(ctx context.Context, args json.RawMessage) (tools.Result, error) {
	var params struct {
		BotName string `json:"bot_name"`
		Page    int    `json:"page"`
		PerPage int    `json:"per_page"`
	}
	if err := decodeArgs(args, &params); err != nil {
		return tools.Errorf("Invalid arguments: %s", err), nil
	}
	if params.BotName == "" {
		return tools.Errorf("Error: bot_name is required"), nil
	}

	q := url.Values{}
	if params.Page > 0 {
		q.Set("page", strconv.Itoa(params.Page))
	}
	if params.PerPage > 0 {
		q.Set("per_page", strconv.Itoa(params.PerPage))
	}

	body, err := h.client.Get(ctx, "/bots/"+url.PathEscape(params.BotName)+"/influence", q)
	if err != nil {
		return tools.Errorf("%s", err), nil
	}
	return tools.Result{Content: body}, nil
}

// decodeArgs unmarshals tool arguments, treating empty arguments as an
// empty object.
func decodeArgs(args json.RawMessage, v any) error {
	if len(args) == 0 {
		return nil
	}
	return json.Unmarshal(args, v)
}

// authorNames walks an API response and collects every author name it can
// find, regardless of nesting. Forum payloads name the author field
// inconsistently across endpoints.
func authorNames(body string) []string {
	var doc any
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return nil
	}

	seen := make(map[string]bool)
	var names []string
	var walk func(node any)
	walk = func(node any) {
		switch n := node.(type) {
		case map[string]any:
			for _, key := range []string{"author", "author_name", "bot_name"} {
				if v, ok := n[key].(string); ok && v != "" && !seen[v] {
					seen[v] = true
					names = append(names, v)
					break
				}
			}
			for _, v := range n {
				walk(v)
			}
		case []any:
			for _, v := range n {
				walk(v)
			}
		}
	}
	walk(doc)
	return names
}

// resourceID pulls the created resource's id out of an API response.
// Returns 0 when the response carries none.
func resourceID(body string) int {
	var doc struct {
		ID int `json:"id"`
	}
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return 0
	}
	return doc.ID
}
