package main

import (
	"strings"
)

// Normalization maps the loosely-typed upstream JSON into the canonical
// User/Tweet shapes. Field names vary across endpoints and API versions
// (userName vs screen_name, retweetCount vs public_metrics.retweet_count),
// so each canonical field is resolved from a fixed, ordered candidate list:
// the first present value wins, even when it is zero or false.
//
// Normalization is total: nil or non-object input yields nil, non-array
// list input yields an empty list, and it never returns an error.

// lookup resolves a dot-separated path inside a decoded JSON object.
func lookup(obj map[string]interface{}, path string) (interface{}, bool) {
	parts := strings.Split(path, ".")
	var cur interface{} = obj
	for _, part := range parts {
		m, ok := cur.(map[string]interface{})
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// firstPresent returns the value of the first candidate path that exists,
// even if that value is falsy. A present-but-null value counts as absent
// so later candidates can still apply.
func firstPresent(obj map[string]interface{}, paths ...string) (interface{}, bool) {
	for _, p := range paths {
		if v, ok := lookup(obj, p); ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func asString(v interface{}, ok bool) string {
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

func asInt64(v interface{}, ok bool) int64 {
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return int64(n)
	case int:
		return int64(n)
	case int64:
		return n
	}
	return 0
}

func asBool(v interface{}, ok bool) bool {
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// normalizeUser maps one raw user entity into the canonical shape.
// Returns nil for nil or non-object input.
func normalizeUser(raw interface{}) *User {
	obj, ok := raw.(map[string]interface{})
	if !ok {
		return nil
	}
	return &User{
		ID:            asString(firstPresent(obj, "id", "id_str", "userId", "rest_id")),
		UserName:      asString(firstPresent(obj, "userName", "screen_name", "username")),
		Name:          asString(firstPresent(obj, "name", "displayName")),
		Description:   asString(firstPresent(obj, "description", "bio")),
		IsVerified:    asBool(firstPresent(obj, "isBlueVerified", "isVerified", "verified")),
		Followers:     asInt64(firstPresent(obj, "followers", "followers_count", "followersCount")),
		Following:     asInt64(firstPresent(obj, "following", "friends_count", "followingCount")),
		StatusesCount: asInt64(firstPresent(obj, "statusesCount", "statuses_count", "tweetCount")),
		Location:      asString(firstPresent(obj, "location")),
		URL:           asString(firstPresent(obj, "url", "profile_url")),
		CreatedAt:     asString(firstPresent(obj, "createdAt", "created_at")),
	}
}

// normalizeTweet maps one raw tweet entity into the canonical shape.
// Flattened count fields win over the nested public_metrics object.
// Returns nil for nil or non-object input.
func normalizeTweet(raw interface{}) *Tweet {
	obj, ok := raw.(map[string]interface{})
	if !ok {
		return nil
	}
	var author *User
	if v, ok := firstPresent(obj, "author", "user"); ok {
		author = normalizeUser(v)
	}
	return &Tweet{
		ID:             asString(firstPresent(obj, "id", "id_str", "tweet_id", "rest_id")),
		Text:           asString(firstPresent(obj, "text", "full_text")),
		Author:         author,
		CreatedAt:      asString(firstPresent(obj, "createdAt", "created_at")),
		RetweetCount:   asInt64(firstPresent(obj, "retweetCount", "retweet_count", "public_metrics.retweet_count")),
		LikeCount:      asInt64(firstPresent(obj, "likeCount", "favorite_count", "public_metrics.like_count")),
		ReplyCount:     asInt64(firstPresent(obj, "replyCount", "reply_count", "public_metrics.reply_count")),
		QuoteCount:     asInt64(firstPresent(obj, "quoteCount", "quote_count", "public_metrics.quote_count")),
		ViewCount:      asInt64(firstPresent(obj, "viewCount", "views_count", "public_metrics.impression_count")),
		IsReply:        asBool(firstPresent(obj, "isReply", "is_reply")),
		IsRetweet:      asBool(firstPresent(obj, "isRetweet", "retweeted")),
		InReplyToID:    asString(firstPresent(obj, "inReplyToId", "in_reply_to_status_id_str", "inReplyToStatusId")),
		ConversationID: asString(firstPresent(obj, "conversationId", "conversation_id_str")),
		Lang:           asString(firstPresent(obj, "lang")),
	}
}

// normalizeUserList applies normalizeUser element-wise, dropping elements
// that normalize to nil. Non-array input yields an empty list.
func normalizeUserList(raw interface{}) []*User {
	items, ok := raw.([]interface{})
	if !ok {
		return []*User{}
	}
	users := make([]*User, 0, len(items))
	for _, item := range items {
		if u := normalizeUser(item); u != nil {
			users = append(users, u)
		}
	}
	return users
}

// normalizeTweetList applies normalizeTweet element-wise, dropping elements
// that normalize to nil. Non-array input yields an empty list.
func normalizeTweetList(raw interface{}) []*Tweet {
	items, ok := raw.([]interface{})
	if !ok {
		return []*Tweet{}
	}
	tweets := make([]*Tweet, 0, len(items))
	for _, item := range items {
		if t := normalizeTweet(item); t != nil {
			tweets = append(tweets, t)
		}
	}
	return tweets
}

// normalizePagination extracts the opaque cursor block from an upstream
// response envelope. Returns nil when the response carries no cursor info.
func normalizePagination(resp map[string]interface{}) *Pagination {
	hasNextRaw, hasNextOK := firstPresent(resp, "has_next_page", "hasNextPage")
	cursorRaw, cursorOK := firstPresent(resp, "next_cursor", "nextCursor", "cursor")
	if !hasNextOK && !cursorOK {
		return nil
	}
	return &Pagination{
		HasNextPage: asBool(hasNextRaw, hasNextOK),
		NextCursor:  asString(cursorRaw, cursorOK),
	}
}
