package main

import (
	"context"
	"fmt"
	"os"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerTools(server *mcp.Server, ts *toolServer) {
	readOnly := &mcp.ToolAnnotations{ReadOnlyHint: true}

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_user_info",
		Description: "Get a Twitter user's profile by handle",
		Annotations: readOnly,
	}, ts.GetUserInfo)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_user_last_tweets",
		Description: "Get a user's most recent tweets, optionally including replies",
		Annotations: readOnly,
	}, ts.GetUserLastTweets)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_tweets",
		Description: "Search tweets by keyword or advanced query (Latest or Top)",
		Annotations: readOnly,
	}, ts.SearchTweets)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_tweets_by_ids",
		Description: "Fetch specific tweets by their IDs",
		Annotations: readOnly,
	}, ts.GetTweetsByIDs)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_tweet_replies",
		Description: "Get replies to a tweet",
		Annotations: readOnly,
	}, ts.GetTweetReplies)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_user_mentions",
		Description: "Get tweets mentioning a user",
		Annotations: readOnly,
	}, ts.GetUserMentions)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_user_followers",
		Description: "Get a user's followers",
		Annotations: readOnly,
	}, ts.GetUserFollowers)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_user_followings",
		Description: "Get the accounts a user follows",
		Annotations: readOnly,
	}, ts.GetUserFollowings)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_users",
		Description: "Search Twitter users by keyword",
		Annotations: readOnly,
	}, ts.SearchUsers)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "login",
		Description: "Log in to a Twitter account and store the session for post_tweet",
	}, ts.Login)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "post_tweet",
		Description: "Post a tweet (requires a prior login), optionally as a reply or quote",
	}, ts.PostTweet)
}

func main() {
	InitLogger()
	cfg := LoadConfig()
	sessions := NewSessionStore()
	client := NewClient(cfg, sessions)
	ts := newToolServer(client, sessions)

	server := mcp.NewServer(&mcp.Implementation{Name: "twitterapi", Version: "v1.0.0"}, nil)
	registerTools(server, ts)

	if err := server.Run(context.Background(), &mcp.StdioTransport{}); err != nil {
		fmt.Fprintln(os.Stderr, "twitterapi MCP:", err)
		os.Exit(1)
	}
}
