package services

import (
	"errors"
	"regexp"
	"strings"

	"gorm.io/gorm"

	"github.com/nbowman189/vitruvian/config"
	"github.com/nbowman189/vitruvian/models"
	"github.com/nbowman189/vitruvian/utils"
)

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

func Slugify(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))
	s = slugStrip.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

func CreatePost(userID uint, title, body string, published bool) (*models.Post, error) {
	slug := Slugify(title)
	if slug == "" {
		return nil, errors.New("title produces an empty slug")
	}

	post := models.Post{
		UserID:    userID,
		Title:     title,
		Slug:      slug,
		Body:      body,
		Published: published,
	}
	if err := config.DB.Create(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func UpdatePost(userID uint, slug, title, body string, published *bool) (*models.Post, error) {
	var post models.Post
	if err := config.DB.Where("slug = ? AND user_id = ?", slug, userID).First(&post).Error; err != nil {
		return nil, err
	}

	if title != "" {
		post.Title = title
	}
	if body != "" {
		post.Body = body
	}
	if published != nil {
		post.Published = *published
	}
	if err := config.DB.Save(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func DeletePost(userID uint, slug string) error {
	result := config.DB.Where("slug = ? AND user_id = ?", slug, userID).Delete(&models.Post{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func ListPublishedPosts() ([]models.Post, error) {
	var posts []models.Post
	err := config.DB.Where("published = ?", true).
		Order("created_at desc").
		Find(&posts).Error
	return posts, err
}

// GetRenderedPost returns a published post with its body rendered to HTML.
func GetRenderedPost(slug string) (*models.Post, string, error) {
	var post models.Post
	if err := config.DB.Where("slug = ? AND published = ?", slug, true).First(&post).Error; err != nil {
		return nil, "", err
	}

	html, err := utils.RenderMarkdown([]byte(post.Body))
	if err != nil {
		return nil, "", err
	}
	return &post, string(html), nil
}
