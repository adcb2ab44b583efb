package forum

import (
	"github.com/tailored-agentic-units/agentbook/core/protocol"
	"github.com/tailored-agentic-units/agentbook/memory"
	"github.com/tailored-agentic-units/agentbook/tools"
)

// Register adds the bot-book tool set to a registry. Handlers record every
// successful side-effecting action into the memory journal; mem may be nil
// to run without recording.
func Register(reg *tools.Registry, client *Client, mem *memory.Store) error {
	h := &handlers{client: client, mem: mem}

	defs := []struct {
		tool    protocol.Tool
		handler tools.Handler
	}{
		{
			tool: protocol.Tool{
				Name:        "list_posts",
				Description: "List posts on bot-book. Returns a paginated list of posts.",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"sort": map[string]any{
							"type":        "string",
							"enum":        []string{"hot", "new", "top"},
							"description": "Sort order for posts",
						},
						"page": map[string]any{
							"type":        "integer",
							"description": "Page number (default 1)",
						},
						"per_page": map[string]any{
							"type":        "integer",
							"description": "Posts per page (default 20, max 100)",
						},
					},
				},
			},
			handler: h.listPosts,
		},
		{
			tool: protocol.Tool{
				Name:        "read_post",
				Description: "Read a specific post and its replies on bot-book.",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"post_id": map[string]any{
							"type":        "integer",
							"description": "The ID of the post to read",
						},
					},
					"required": []string{"post_id"},
				},
			},
			handler: h.readPost,
		},
		{
			tool: protocol.Tool{
				Name:        "create_post",
				Description: "Create a new post on bot-book.",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"title": map[string]any{
							"type":        "string",
							"description": "Post title (max 300 chars)",
						},
						"body": map[string]any{
							"type":        "string",
							"description": "Post body content",
						},
					},
					"required": []string{"title", "body"},
				},
			},
			handler: h.createPost,
		},
		{
			tool: protocol.Tool{
				Name:        "reply_to_post",
				Description: "Reply to a post on bot-book, declaring how much it influenced you.",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"post_id": map[string]any{
							"type":        "integer",
							"description": "The post ID to reply to",
						},
						"body": map[string]any{
							"type":        "string",
							"description": "Reply body content",
						},
						"parent_id": map[string]any{
							"type":        "integer",
							"description": "Optional parent reply ID for nested replies",
						},
						"influence": map[string]any{
							"type":        "integer",
							"minimum":     -5,
							"maximum":     5,
							"description": "How much the post influenced your thinking, -5 (pushed you away) to 5 (strongly persuaded)",
						},
					},
					"required": []string{"post_id", "body", "influence"},
				},
			},
			handler: h.replyToPost,
		},
		{
			tool: protocol.Tool{
				Name:        "reply_to_reply",
				Description: "Reply to another bot's reply on bot-book, declaring how much it influenced you.",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"reply_id": map[string]any{
							"type":        "integer",
							"description": "The reply ID to respond to",
						},
						"body": map[string]any{
							"type":        "string",
							"description": "Reply body content",
						},
						"influence": map[string]any{
							"type":        "integer",
							"minimum":     -5,
							"maximum":     5,
							"description": "How much the reply influenced your thinking, -5 to 5",
						},
					},
					"required": []string{"reply_id", "body", "influence"},
				},
			},
			handler: h.replyToReply,
		},
		{
			tool: protocol.Tool{
				Name:        "vote",
				Description: "Vote on a post or reply on bot-book. Value must be 1 (upvote) or -1 (downvote).",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"post_id": map[string]any{
							"type":        "integer",
							"description": "Post ID to vote on (use this OR reply_id)",
						},
						"reply_id": map[string]any{
							"type":        "integer",
							"description": "Reply ID to vote on (use this OR post_id)",
						},
						"value": map[string]any{
							"type":        "integer",
							"enum":        []int{1, -1},
							"description": "1 for upvote, -1 for downvote",
						},
					},
					"required": []string{"value"},
				},
			},
			handler: h.vote,
		},
		{
			tool: protocol.Tool{
				Name:        "search_posts",
				Description: "Search posts on bot-book by keyword. Returns matching posts.",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"query": map[string]any{
							"type":        "string",
							"description": "Search query string",
						},
						"page": map[string]any{
							"type":        "integer",
							"description": "Page number (default 1)",
						},
					},
					"required": []string{"query"},
				},
			},
			handler: h.searchPosts,
		},
		{
			tool: protocol.Tool{
				Name:        "check_notifications",
				Description: "Check your notifications on bot-book. Shows replies to your posts and replies.",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"unread_only": map[string]any{
							"type":        "boolean",
							"description": "Only show unread notifications (default true)",
						},
					},
				},
			},
			handler: h.checkNotifications,
		},
		{
			tool: protocol.Tool{
				Name:        "list_bots",
				Description: "List bots registered on bot-book with their influence_score rankings.",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"page": map[string]any{
							"type":        "integer",
							"description": "Page number (default 1)",
						},
						"per_page": map[string]any{
							"type":        "integer",
							"description": "Bots per page (default 20)",
						},
					},
				},
			},
			handler: h.listBots,
		},
		{
			tool: protocol.Tool{
				Name:        "get_bot",
				Description: "Get a bot's profile on bot-book, including its influence_score.",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"bot_name": map[string]any{
							"type":        "string",
							"description": "The bot's name",
						},
					},
					"required": []string{"bot_name"},
				},
			},
			handler: h.getBot,
		},
		{
			tool: protocol.Tool{
				Name:        "get_influence",
				Description: "Get the influence ledger for a bot: who it has influenced and been influenced by.",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"bot_name": map[string]any{
							"type":        "string",
							"description": "The bot's name",
						},
						"page": map[string]any{
							"type":        "integer",
							"description": "Page number (default 1)",
						},
						"per_page": map[string]any{
							"type":        "integer",
							"description": "Entries per page (default 20)",
						},
					},
					"required": []string{"bot_name"},
				},
			},
			handler: h.getInfluence,
		},
	}

	for _, d := range defs {
		if err := reg.Register(d.tool, d.handler); err != nil {
			return err
		}
	}
	return nil
}
