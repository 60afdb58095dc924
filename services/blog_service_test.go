package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Hello World":              "hello-world",
		"  Cutting: Week 3!  ":     "cutting-week-3",
		"already-a-slug":           "already-a-slug",
		"Multiple   spaces__here":  "multiple-spaces-here",
		"Tabata & HIIT (part two)": "tabata-hiit-part-two",
	}
	for title, want := range cases {
		assert.Equal(t, want, Slugify(title), "title %q", title)
	}
}

func TestCreateAndRenderPost(t *testing.T) {
	newTestDB(t)
	user := newTestUser(t, "author@example.com")

	post, err := CreatePost(user.ID, "Cutting Week 3", "## Progress\n\nDown **2 lbs** this week.", true)
	require.NoError(t, err)
	assert.Equal(t, "cutting-week-3", post.Slug)

	got, html, err := GetRenderedPost("cutting-week-3")
	require.NoError(t, err)
	assert.Equal(t, post.ID, got.ID)
	assert.Contains(t, html, "<h2")
	assert.Contains(t, html, "<strong>2 lbs</strong>")
}

func TestUnpublishedPostHidden(t *testing.T) {
	newTestDB(t)
	user := newTestUser(t, "draft@example.com")

	_, err := CreatePost(user.ID, "Draft Post", "wip", false)
	require.NoError(t, err)

	posts, err := ListPublishedPosts()
	require.NoError(t, err)
	assert.Empty(t, posts)

	_, _, err = GetRenderedPost("draft-post")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUpdateAndDeletePost(t *testing.T) {
	newTestDB(t)
	user := newTestUser(t, "editor@example.com")
	other := newTestUser(t, "other@example.com")

	post, err := CreatePost(user.ID, "First Title", "body", true)
	require.NoError(t, err)

	published := false
	updated, err := UpdatePost(user.ID, post.Slug, "", "new body", &published)
	require.NoError(t, err)
	assert.Equal(t, "new body", updated.Body)
	assert.False(t, updated.Published)

	// Other users can't touch it.
	_, err = UpdatePost(other.ID, post.Slug, "hijack", "", nil)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.ErrorIs(t, DeletePost(other.ID, post.Slug), gorm.ErrRecordNotFound)

	require.NoError(t, DeletePost(user.ID, post.Slug))
	assert.ErrorIs(t, DeletePost(user.ID, post.Slug), gorm.ErrRecordNotFound)
}
