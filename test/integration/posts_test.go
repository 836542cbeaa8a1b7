//go:build integration

package integration

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type postData struct {
	ID       int64   `json:"id"`
	Title    string  `json:"title"`
	Content  string  `json:"content"`
	Category *string `json:"category"`
	AuthorID int64   `json:"authorId"`
	Author   struct {
		ID       int64  `json:"id"`
		Username string `json:"username"`
	} `json:"author"`
	Comments []struct {
		ID      int64  `json:"id"`
		Content string `json:"content"`
		Author  struct {
			Username string `json:"username"`
		} `json:"author"`
	} `json:"comments"`
}

func TestCreateAndReadPostPublicly(t *testing.T) {
	server, _ := newServer(t)
	alice := register(t, server, "alice")

	resp := doJSON(t, http.MethodPost, server.URL+"/api/v1/posts", alice.AccessToken, map[string]string{
		"title":    "Hello board",
		"content":  "First post",
		"category": "general",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created postData
	decodeData(t, resp, &created)
	resp.Body.Close()
	assert.Equal(t, alice.User.ID, created.AuthorID)
	assert.Equal(t, "alice", created.Author.Username)
	require.NotNil(t, created.Category)
	assert.Equal(t, "general", *created.Category)
	assert.Empty(t, created.Comments)

	// Readable without any token.
	resp = doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/v1/posts/%d", server.URL, created.ID), "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var fetched postData
	decodeData(t, resp, &fetched)
	resp.Body.Close()
	assert.Equal(t, created.ID, fetched.ID)
	assert.Equal(t, "Hello board", fetched.Title)
	assert.Equal(t, "alice", fetched.Author.Username)
	assert.NotNil(t, fetched.Comments)
	assert.Empty(t, fetched.Comments)
}

func TestListPostsNewestFirst(t *testing.T) {
	server, _ := newServer(t)
	alice := register(t, server, "alice")

	for i := 1; i <= 3; i++ {
		resp := doJSON(t, http.MethodPost, server.URL+"/api/v1/posts", alice.AccessToken, map[string]string{
			"title":   fmt.Sprintf("Post number %d", i),
			"content": "body",
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		resp.Body.Close()
	}

	resp := doJSON(t, http.MethodGet, server.URL+"/api/v1/posts", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var posts []postData
	decodeData(t, resp, &posts)
	resp.Body.Close()
	require.Len(t, posts, 3)
	assert.Equal(t, "Post number 3", posts[0].Title)
	assert.Equal(t, "Post number 1", posts[2].Title)
}

func TestMyPostsOnlyReturnsOwn(t *testing.T) {
	server, _ := newServer(t)
	alice := register(t, server, "alice")
	bob := register(t, server, "bob")

	resp := doJSON(t, http.MethodPost, server.URL+"/api/v1/posts", alice.AccessToken, map[string]string{
		"title": "Alices post", "content": "hers",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodPost, server.URL+"/api/v1/posts", bob.AccessToken, map[string]string{
		"title": "Bobs post", "content": "his",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodGet, server.URL+"/api/v1/posts/my-posts", bob.AccessToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var posts []postData
	decodeData(t, resp, &posts)
	resp.Body.Close()
	require.Len(t, posts, 1)
	assert.Equal(t, "Bobs post", posts[0].Title)
	assert.Equal(t, bob.User.ID, posts[0].AuthorID)
}

func TestOnlyOwnerCanEditPost(t *testing.T) {
	server, _ := newServer(t)
	alice := register(t, server, "alice")
	bob := register(t, server, "bob")

	resp := doJSON(t, http.MethodPost, server.URL+"/api/v1/posts", alice.AccessToken, map[string]string{
		"title": "Original title", "content": "original",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created postData
	decodeData(t, resp, &created)
	resp.Body.Close()

	postURL := fmt.Sprintf("%s/api/v1/posts/%d", server.URL, created.ID)

	resp = doJSON(t, http.MethodPatch, postURL, bob.AccessToken, map[string]string{
		"title": "Hijacked title", "content": "changed",
	})
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "FORBIDDEN", decodeErrorCode(t, resp))
	resp.Body.Close()

	// Unchanged after the rejected edit.
	resp = doJSON(t, http.MethodGet, postURL, "", nil)
	var fetched postData
	decodeData(t, resp, &fetched)
	resp.Body.Close()
	assert.Equal(t, "Original title", fetched.Title)

	// The owner's edit goes through.
	resp = doJSON(t, http.MethodPatch, postURL, alice.AccessToken, map[string]string{
		"title": "Revised title", "content": "revised",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeData(t, resp, &fetched)
	resp.Body.Close()
	assert.Equal(t, "Revised title", fetched.Title)
	assert.Nil(t, fetched.Category)
}

func TestOnlyOwnerCanDeletePost(t *testing.T) {
	server, _ := newServer(t)
	alice := register(t, server, "alice")
	bob := register(t, server, "bob")

	resp := doJSON(t, http.MethodPost, server.URL+"/api/v1/posts", alice.AccessToken, map[string]string{
		"title": "Keep or drop", "content": "body",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created postData
	decodeData(t, resp, &created)
	resp.Body.Close()

	postURL := fmt.Sprintf("%s/api/v1/posts/%d", server.URL, created.ID)

	resp = doJSON(t, http.MethodDelete, postURL, bob.AccessToken, nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodDelete, postURL, alice.AccessToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodGet, postURL, "", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", decodeErrorCode(t, resp))
	resp.Body.Close()
}

func TestMissingPostIs404BeforeOwnership(t *testing.T) {
	server, _ := newServer(t)
	bob := register(t, server, "bob")

	resp := doJSON(t, http.MethodPatch, server.URL+"/api/v1/posts/9999", bob.AccessToken, map[string]string{
		"title": "Whatever title", "content": "whatever",
	})
	defer resp.Body.Close()

	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", decodeErrorCode(t, resp))
}
