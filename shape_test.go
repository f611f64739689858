package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gopkg.in/yaml.v3"
)

type decodedTweetEnvelope struct {
	Data       []Tweet     `yaml:"data" json:"data"`
	Pagination *Pagination `yaml:"pagination" json:"pagination"`
}

func makeTweets(n int) []*Tweet {
	tweets := make([]*Tweet, 0, n)
	for i := 1; i <= n; i++ {
		tweets = append(tweets, &Tweet{ID: fmt.Sprintf("tweet-%d", i), Text: fmt.Sprintf("text %d", i)})
	}
	return tweets
}

var _ = Describe("Shaping", func() {
	Context("truncation", func() {
		It("keeps the first N elements in order", func() {
			text, err := shapeList(shapeOptions{operation: "search_tweets", maxItems: 3}, makeTweets(20))
			Expect(err).NotTo(HaveOccurred())

			var env decodedTweetEnvelope
			Expect(yaml.Unmarshal([]byte(text), &env)).To(Succeed())
			Expect(env.Data).To(HaveLen(3))
			Expect(env.Data[0].ID).To(Equal("tweet-1"))
			Expect(env.Data[2].ID).To(Equal("tweet-3"))
		})

		It("returns the whole list when the bound exceeds its length", func() {
			text, err := shapeList(shapeOptions{operation: "search_tweets", maxItems: 50}, makeTweets(4))
			Expect(err).NotTo(HaveOccurred())

			var env decodedTweetEnvelope
			Expect(yaml.Unmarshal([]byte(text), &env)).To(Succeed())
			Expect(env.Data).To(HaveLen(4))
		})

		It("defaults the bound to 10", func() {
			text, err := shapeList(shapeOptions{operation: "search_tweets"}, makeTweets(20))
			Expect(err).NotTo(HaveOccurred())

			var env decodedTweetEnvelope
			Expect(yaml.Unmarshal([]byte(text), &env)).To(Succeed())
			Expect(env.Data).To(HaveLen(10))
		})
	})

	Context("pagination", func() {
		It("attaches the upstream cursor block", func() {
			text, err := shapeList(shapeOptions{
				operation:  "search_tweets",
				pagination: &Pagination{HasNextPage: true, NextCursor: "abc"},
			}, makeTweets(2))
			Expect(err).NotTo(HaveOccurred())

			var env decodedTweetEnvelope
			Expect(yaml.Unmarshal([]byte(text), &env)).To(Succeed())
			Expect(env.Pagination).NotTo(BeNil())
			Expect(env.Pagination.HasNextPage).To(BeTrue())
			Expect(env.Pagination.NextCursor).To(Equal("abc"))
		})

		It("omits pagination when none was reported", func() {
			text, err := shapeList(shapeOptions{operation: "search_tweets"}, makeTweets(1))
			Expect(err).NotTo(HaveOccurred())
			Expect(text).NotTo(ContainSubstring("pagination"))
		})
	})

	Context("single entities", func() {
		It("never truncates", func() {
			user := &User{ID: "1", UserName: "jack", Followers: 10}
			text, err := shapeEntity(shapeOptions{operation: "get_user_info"}, user)
			Expect(err).NotTo(HaveOccurred())

			var env struct {
				Data User `yaml:"data"`
			}
			Expect(yaml.Unmarshal([]byte(text), &env)).To(Succeed())
			Expect(env.Data.UserName).To(Equal("jack"))
			Expect(env.Data.Followers).To(Equal(int64(10)))
		})
	})

	Context("persistence", func() {
		var saveDir string

		BeforeEach(func() {
			var err error
			saveDir, err = os.MkdirTemp("", "twitterapi-save-*")
			Expect(err).NotTo(HaveOccurred())
		})

		AfterEach(func() {
			os.RemoveAll(saveDir)
		})

		It("writes exactly one JSON file holding the full untruncated payload", func() {
			text, err := shapeList(shapeOptions{
				operation:  "search_tweets",
				maxItems:   5,
				saveDir:    saveDir,
				pagination: &Pagination{HasNextPage: true, NextCursor: "abc"},
			}, makeTweets(20))
			Expect(err).NotTo(HaveOccurred())
			Expect(text).To(ContainSubstring("Full payload saved to:"))

			files, err := filepath.Glob(filepath.Join(saveDir, "*.json"))
			Expect(err).NotTo(HaveOccurred())
			Expect(files).To(HaveLen(1))
			Expect(filepath.Base(files[0])).To(HavePrefix("search_tweets_"))

			data, err := os.ReadFile(files[0])
			Expect(err).NotTo(HaveOccurred())
			var saved decodedTweetEnvelope
			Expect(json.Unmarshal(data, &saved)).To(Succeed())
			Expect(saved.Data).To(HaveLen(20))
			Expect(saved.Pagination.NextCursor).To(Equal("abc"))
		})

		It("round-trips the shaped payload when nothing was truncated", func() {
			text, err := shapeList(shapeOptions{
				operation: "get_tweet_replies",
				maxItems:  5,
				saveDir:   saveDir,
			}, makeTweets(3))
			Expect(err).NotTo(HaveOccurred())

			yamlPart, _, found := strings.Cut(text, "\nFull payload saved to:")
			Expect(found).To(BeTrue())
			var shown decodedTweetEnvelope
			Expect(yaml.Unmarshal([]byte(yamlPart), &shown)).To(Succeed())

			files, err := filepath.Glob(filepath.Join(saveDir, "*.json"))
			Expect(err).NotTo(HaveOccurred())
			Expect(files).To(HaveLen(1))
			data, err := os.ReadFile(files[0])
			Expect(err).NotTo(HaveOccurred())
			var saved decodedTweetEnvelope
			Expect(json.Unmarshal(data, &saved)).To(Succeed())

			Expect(saved.Data).To(HaveLen(len(shown.Data)))
			for i := range saved.Data {
				Expect(saved.Data[i].ID).To(Equal(shown.Data[i].ID))
			}
		})

		It("reports persistence failures in the note without failing the call", func() {
			blocked := filepath.Join(saveDir, "not-a-dir")
			Expect(os.WriteFile(blocked, []byte("x"), 0644)).To(Succeed())

			text, err := shapeList(shapeOptions{
				operation: "search_tweets",
				saveDir:   filepath.Join(blocked, "nested"),
			}, makeTweets(2))
			Expect(err).NotTo(HaveOccurred())
			Expect(text).To(ContainSubstring("Failed to save full payload"))
		})
	})

	Context("filenames", func() {
		It("uses a filesystem-safe timestamp", func() {
			ts := filenameTimestamp(time.Date(2026, 8, 23, 10, 30, 45, 123e6, time.UTC))
			Expect(ts).NotTo(ContainSubstring(":"))
			Expect(ts).NotTo(ContainSubstring("."))
			Expect(ts).To(HavePrefix("2026-08-23T10-30-45"))
		})
	})
})
