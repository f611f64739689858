package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/pquerna/otp/totp"
)

const (
	defaultPageSize = 200
	maxPageSize     = 200
)

// toolServer holds the collaborators shared by all tool handlers.
type toolServer struct {
	client   *Client
	sessions *SessionStore
	log      *Logger
}

func newToolServer(client *Client, sessions *SessionStore) *toolServer {
	return &toolServer{
		client:   client,
		sessions: sessions,
		log:      GetLogger(),
	}
}

// requestID tags a call's log lines so interleaved output stays readable.
func requestID() string {
	return uuid.NewString()[:8]
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

func formatJSON(v interface{}) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}

// clampPageSize applies the upstream page size default and maximum.
func clampPageSize(n int) int {
	if n <= 0 {
		return defaultPageSize
	}
	if n > maxPageSize {
		return maxPageSize
	}
	return n
}

// resolveQueryType defaults to Latest and restricts to the two values the
// upstream accepts.
func resolveQueryType(queryType string) (string, error) {
	switch queryType {
	case "":
		return "Latest", nil
	case "Latest", "Top":
		return queryType, nil
	default:
		return "", fmt.Errorf("queryType must be Latest or Top, got %q", queryType)
	}
}

// listField returns the first present list-bearing field of an upstream
// response envelope.
func listField(resp map[string]interface{}, keys ...string) interface{} {
	v, _ := firstPresent(resp, keys...)
	return v
}

// --- Read tools ---

func (s *toolServer) GetUserInfo(ctx context.Context, req *mcp.CallToolRequest, input GetUserInfoInput) (*mcp.CallToolResult, any, error) {
	if input.UserName == "" {
		return nil, nil, fmt.Errorf("userName is required")
	}
	rid := requestID()
	s.log.Debug("[%s] get_user_info userName=%s", rid, input.UserName)

	q := url.Values{}
	q.Set("userName", input.UserName)
	resp, err := s.client.Get(ctx, "/user/info", q)
	if err != nil {
		return nil, nil, fmt.Errorf("user info: %w", err)
	}
	raw, ok := firstPresent(resp, "data", "user")
	if !ok {
		raw = resp
	}
	text, err := shapeEntity(shapeOptions{
		operation: "get_user_info",
		saveDir:   input.SaveDir,
	}, normalizeUser(raw))
	if err != nil {
		return nil, nil, err
	}
	return textResult(text), nil, nil
}

func (s *toolServer) GetUserLastTweets(ctx context.Context, req *mcp.CallToolRequest, input GetUserLastTweetsInput) (*mcp.CallToolResult, any, error) {
	if input.UserName == "" {
		return nil, nil, fmt.Errorf("userName is required")
	}
	rid := requestID()
	s.log.Debug("[%s] get_user_last_tweets userName=%s includeReplies=%v", rid, input.UserName, input.IncludeReplies)

	q := url.Values{}
	q.Set("userName", input.UserName)
	q.Set("includeReplies", strconv.FormatBool(input.IncludeReplies))
	if input.Cursor != "" {
		q.Set("cursor", input.Cursor)
	}
	resp, err := s.client.Get(ctx, "/user/last_tweets", q)
	if err != nil {
		return nil, nil, fmt.Errorf("user last tweets: %w", err)
	}
	tweets := normalizeTweetList(listField(resp, "tweets", "data"))
	text, err := shapeList(shapeOptions{
		operation:  "get_user_last_tweets",
		maxItems:   input.MaxItems,
		saveDir:    input.SaveDir,
		pagination: normalizePagination(resp),
	}, tweets)
	if err != nil {
		return nil, nil, err
	}
	return textResult(text), nil, nil
}

func (s *toolServer) SearchTweets(ctx context.Context, req *mcp.CallToolRequest, input SearchTweetsInput) (*mcp.CallToolResult, any, error) {
	if input.Query == "" {
		return nil, nil, fmt.Errorf("query is required")
	}
	queryType, err := resolveQueryType(input.QueryType)
	if err != nil {
		return nil, nil, err
	}
	rid := requestID()
	s.log.Debug("[%s] search_tweets query=%q queryType=%s", rid, input.Query, queryType)

	q := url.Values{}
	q.Set("query", input.Query)
	q.Set("queryType", queryType)
	if input.Cursor != "" {
		q.Set("cursor", input.Cursor)
	}
	resp, err := s.client.Get(ctx, "/tweet/advanced_search", q)
	if err != nil {
		return nil, nil, fmt.Errorf("search tweets: %w", err)
	}
	tweets := normalizeTweetList(listField(resp, "tweets", "data"))
	text, err := shapeList(shapeOptions{
		operation:  "search_tweets",
		maxItems:   input.MaxItems,
		saveDir:    input.SaveDir,
		pagination: normalizePagination(resp),
	}, tweets)
	if err != nil {
		return nil, nil, err
	}
	return textResult(text), nil, nil
}

func (s *toolServer) GetTweetsByIDs(ctx context.Context, req *mcp.CallToolRequest, input GetTweetsByIDsInput) (*mcp.CallToolResult, any, error) {
	if len(input.TweetIDs) == 0 {
		return nil, nil, fmt.Errorf("tweet_ids is required")
	}
	rid := requestID()
	s.log.Debug("[%s] get_tweets_by_ids count=%d", rid, len(input.TweetIDs))

	q := url.Values{}
	q.Set("tweet_ids", strings.Join(input.TweetIDs, ","))
	resp, err := s.client.Get(ctx, "/tweets", q)
	if err != nil {
		return nil, nil, fmt.Errorf("tweets by ids: %w", err)
	}
	tweets := normalizeTweetList(listField(resp, "tweets", "data"))
	text, err := shapeList(shapeOptions{
		operation:  "get_tweets_by_ids",
		maxItems:   input.MaxItems,
		saveDir:    input.SaveDir,
		pagination: normalizePagination(resp),
	}, tweets)
	if err != nil {
		return nil, nil, err
	}
	return textResult(text), nil, nil
}

func (s *toolServer) GetTweetReplies(ctx context.Context, req *mcp.CallToolRequest, input GetTweetRepliesInput) (*mcp.CallToolResult, any, error) {
	if input.TweetID == "" {
		return nil, nil, fmt.Errorf("tweetId is required")
	}
	rid := requestID()
	s.log.Debug("[%s] get_tweet_replies tweetId=%s", rid, input.TweetID)

	q := url.Values{}
	q.Set("tweetId", input.TweetID)
	if input.Cursor != "" {
		q.Set("cursor", input.Cursor)
	}
	resp, err := s.client.Get(ctx, "/tweet/replies", q)
	if err != nil {
		return nil, nil, fmt.Errorf("tweet replies: %w", err)
	}
	tweets := normalizeTweetList(listField(resp, "replies", "tweets", "data"))
	text, err := shapeList(shapeOptions{
		operation:  "get_tweet_replies",
		maxItems:   input.MaxItems,
		saveDir:    input.SaveDir,
		pagination: normalizePagination(resp),
	}, tweets)
	if err != nil {
		return nil, nil, err
	}
	return textResult(text), nil, nil
}

func (s *toolServer) GetUserMentions(ctx context.Context, req *mcp.CallToolRequest, input GetUserMentionsInput) (*mcp.CallToolResult, any, error) {
	if input.UserName == "" {
		return nil, nil, fmt.Errorf("userName is required")
	}
	rid := requestID()
	s.log.Debug("[%s] get_user_mentions userName=%s", rid, input.UserName)

	q := url.Values{}
	q.Set("userName", input.UserName)
	if input.Cursor != "" {
		q.Set("cursor", input.Cursor)
	}
	resp, err := s.client.Get(ctx, "/user/mentions", q)
	if err != nil {
		return nil, nil, fmt.Errorf("user mentions: %w", err)
	}
	tweets := normalizeTweetList(listField(resp, "tweets", "data"))
	text, err := shapeList(shapeOptions{
		operation:  "get_user_mentions",
		maxItems:   input.MaxItems,
		saveDir:    input.SaveDir,
		pagination: normalizePagination(resp),
	}, tweets)
	if err != nil {
		return nil, nil, err
	}
	return textResult(text), nil, nil
}

func (s *toolServer) GetUserFollowers(ctx context.Context, req *mcp.CallToolRequest, input GetUserFollowersInput) (*mcp.CallToolResult, any, error) {
	if input.UserName == "" {
		return nil, nil, fmt.Errorf("userName is required")
	}
	rid := requestID()
	s.log.Debug("[%s] get_user_followers userName=%s", rid, input.UserName)

	q := url.Values{}
	q.Set("userName", input.UserName)
	q.Set("pageSize", strconv.Itoa(clampPageSize(input.PageSize)))
	if input.Cursor != "" {
		q.Set("cursor", input.Cursor)
	}
	resp, err := s.client.Get(ctx, "/user/followers", q)
	if err != nil {
		return nil, nil, fmt.Errorf("user followers: %w", err)
	}
	users := normalizeUserList(listField(resp, "followers", "users", "data"))
	text, err := shapeList(shapeOptions{
		operation:  "get_user_followers",
		maxItems:   input.MaxItems,
		saveDir:    input.SaveDir,
		pagination: normalizePagination(resp),
	}, users)
	if err != nil {
		return nil, nil, err
	}
	return textResult(text), nil, nil
}

func (s *toolServer) GetUserFollowings(ctx context.Context, req *mcp.CallToolRequest, input GetUserFollowingsInput) (*mcp.CallToolResult, any, error) {
	if input.UserName == "" {
		return nil, nil, fmt.Errorf("userName is required")
	}
	rid := requestID()
	s.log.Debug("[%s] get_user_followings userName=%s", rid, input.UserName)

	q := url.Values{}
	q.Set("userName", input.UserName)
	q.Set("pageSize", strconv.Itoa(clampPageSize(input.PageSize)))
	if input.Cursor != "" {
		q.Set("cursor", input.Cursor)
	}
	resp, err := s.client.Get(ctx, "/user/followings", q)
	if err != nil {
		return nil, nil, fmt.Errorf("user followings: %w", err)
	}
	users := normalizeUserList(listField(resp, "followings", "users", "data"))
	text, err := shapeList(shapeOptions{
		operation:  "get_user_followings",
		maxItems:   input.MaxItems,
		saveDir:    input.SaveDir,
		pagination: normalizePagination(resp),
	}, users)
	if err != nil {
		return nil, nil, err
	}
	return textResult(text), nil, nil
}

func (s *toolServer) SearchUsers(ctx context.Context, req *mcp.CallToolRequest, input SearchUsersInput) (*mcp.CallToolResult, any, error) {
	if input.Query == "" {
		return nil, nil, fmt.Errorf("query is required")
	}
	rid := requestID()
	s.log.Debug("[%s] search_users query=%q", rid, input.Query)

	q := url.Values{}
	q.Set("query", input.Query)
	resp, err := s.client.Get(ctx, "/user/search", q)
	if err != nil {
		return nil, nil, fmt.Errorf("search users: %w", err)
	}
	users := normalizeUserList(listField(resp, "users", "data"))
	text, err := shapeList(shapeOptions{
		operation:  "search_users",
		maxItems:   input.MaxItems,
		saveDir:    input.SaveDir,
		pagination: normalizePagination(resp),
	}, users)
	if err != nil {
		return nil, nil, err
	}
	return textResult(text), nil, nil
}

// --- Write tools ---

// Login authenticates against the upstream and stores the returned session
// cookie. Failures are written into the structured result instead of being
// raised as protocol errors, so agents can inspect them.
func (s *toolServer) Login(ctx context.Context, req *mcp.CallToolRequest, input LoginInput) (*mcp.CallToolResult, LoginOutput, error) {
	fail := func(msg string) (*mcp.CallToolResult, LoginOutput, error) {
		out := LoginOutput{Success: false, Message: msg}
		return textResult(formatJSON(out)), out, nil
	}

	if input.UserName == "" || input.Password == "" {
		return fail("user_name and password are required")
	}
	if input.Proxy == "" {
		return fail("proxy is required for login")
	}
	rid := requestID()
	s.log.Debug("[%s] login user_name=%s", rid, input.UserName)

	if input.TOTPSecret != "" {
		// Reject malformed secrets locally before shipping credentials upstream.
		if _, err := totp.GenerateCode(input.TOTPSecret, time.Now()); err != nil {
			return fail(fmt.Sprintf("invalid totp_secret: %v", err))
		}
	}

	body := map[string]interface{}{
		"user_name": input.UserName,
		"password":  input.Password,
		"proxy":     input.Proxy,
	}
	if input.Email != "" {
		body["email"] = input.Email
	}
	if input.TOTPSecret != "" {
		body["totp_secret"] = input.TOTPSecret
	}

	resp, err := s.client.Post(ctx, "/user_login_v2", body)
	if err != nil {
		return fail(fmt.Sprintf("login failed: %v", err))
	}

	status := asString(firstPresent(resp, "status"))
	cookie := asString(firstPresent(resp, "login_cookies", "login_cookie", "session"))
	if cookie == "" {
		return fail(fmt.Sprintf("login failed: %s", upstreamMessage(resp, "no session cookie in response")))
	}

	s.sessions.Set(cookie)
	s.log.Info("[%s] login succeeded for %s", rid, input.UserName)
	out := LoginOutput{
		Success: true,
		Status:  status,
		Message: "login successful, session stored for post_tweet",
	}
	return textResult(formatJSON(out)), out, nil
}

// PostTweet posts a tweet through the stored session. The upstream
// response is returned verbatim; posting responses are not part of the
// read-shaping pipeline.
func (s *toolServer) PostTweet(ctx context.Context, req *mcp.CallToolRequest, input PostTweetInput) (*mcp.CallToolResult, any, error) {
	if !s.sessions.Active() {
		return nil, nil, fmt.Errorf("post_tweet requires a prior successful login")
	}
	if input.TweetText == "" {
		return nil, nil, fmt.Errorf("tweet_text is required")
	}
	if input.Proxy == "" {
		return nil, nil, fmt.Errorf("proxy is required")
	}
	rid := requestID()
	s.log.Debug("[%s] post_tweet len=%d", rid, len(input.TweetText))

	body := map[string]interface{}{
		"login_cookies": s.sessions.Get(),
		"tweet_text":    input.TweetText,
		"proxy":         input.Proxy,
	}
	if input.ReplyToTweetID != "" {
		body["reply_to_tweet_id"] = input.ReplyToTweetID
	}
	if input.AttachmentURL != "" {
		body["attachment_url"] = input.AttachmentURL
	}
	if input.MediaID != "" {
		body["media_id"] = input.MediaID
	}

	resp, err := s.client.Post(ctx, "/create_tweet_v2", body)
	if err != nil {
		return nil, nil, fmt.Errorf("create tweet: %w", err)
	}
	return textResult(formatJSON(resp)), nil, nil
}
