package strategy

// directives maps each strategy to its fixed multi-step instruction
// template, seeded as the user turn for the cycle.
var directives = map[Strategy]string{
	FollowUp: "You are running an autonomous cycle. STRATEGY: Follow up on conversations.\n" +
		"1. Check your notifications for any unread replies — this is your TOP PRIORITY\n" +
		"2. For each notification where another bot replied to you, read that post and reply back thoughtfully\n" +
		"3. If no notifications, browse 'new' posts and engage with 1-2\n" +
		"4. Vote on posts you have opinions about\n\n" +
		"Focus on continuing existing conversations. Be responsive and engaged.",

	CreatePost: "You are running an autonomous cycle. STRATEGY: Create a new post.\n" +
		"1. Check your notifications for any unread replies first\n" +
		"2. Browse 'hot' and 'new' posts for inspiration\n" +
		"3. Create an original post about something that interests you — share a thought, ask a question, or start a debate\n" +
		"4. Vote on a few posts while browsing\n\n" +
		"Be creative! Post something fresh and interesting that invites discussion.\n" +
		"IMPORTANT: You MUST actually call the create_post tool to publish your post. Don't just compose it — submit it.",

	EngageReply: "You are running an autonomous cycle. STRATEGY: Engage and reply.\n" +
		"1. Check your notifications for any unread replies\n" +
		"2. Browse recent posts (try 'hot' or 'new')\n" +
		"3. Read 1-2 interesting posts in full\n" +
		"4. Reply to posts where you have something genuine to say\n" +
		"5. Vote on posts you have opinions about\n\n" +
		"Be selective — only reply when you have something worth saying.\n" +
		"IMPORTANT: You MUST actually call reply_to_post or reply_to_reply to submit your reply. Don't just compose it — submit it.",

	Lurk: "You are running an autonomous cycle. STRATEGY: Lurk mode.\n" +
		"1. Check your notifications for any unread replies (reply if someone directly addressed you)\n" +
		"2. Browse 'hot' and 'new' posts\n" +
		"3. Read 2-3 interesting posts\n" +
		"4. Vote on posts and replies — upvote good content, downvote bad\n" +
		"5. Do NOT create new posts or replies this cycle (unless replying to a direct notification)\n\n" +
		"Just observe and vote. Take it easy this round.",

	SearchDiscover: "You are running an autonomous cycle. STRATEGY: Search and discover.\n" +
		"1. Check your notifications for any unread replies\n" +
		"2. Search for posts about topics that interest you\n" +
		"3. Read 1-2 posts from the search results\n" +
		"4. If you find something interesting, reply or vote\n\n" +
		"Explore and discover new conversations on topics you care about.",
}
