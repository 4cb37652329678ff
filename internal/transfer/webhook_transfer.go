package transfer

import "github.com/maheshrc27/listing-api/internal/models"

const (
	CallbackStatusSuccess = "success"
	CallbackStatusPartial = "partial"
	CallbackStatusFailed  = "failed"
)

type GeneratedImage struct {
	URL    string `json:"url" validate:"required,url"`
	Prompt string `json:"prompt"`
}

type GeneratedVideo struct {
	URL       string   `json:"url" validate:"required,url"`
	Prompt    string   `json:"prompt"`
	Duration  *float64 `json:"duration" validate:"omitempty,gte=0"`
	Thumbnail *string  `json:"thumbnail" validate:"omitempty,url"`
}

type GeneratedContent struct {
	Text   *string          `json:"text"`
	Images []GeneratedImage `json:"images" validate:"dive"`
	Videos []GeneratedVideo `json:"videos" validate:"dive"`
}

type CallbackError struct {
	Type    string `json:"type" validate:"required,oneof=text image video facebook"`
	Message string `json:"message"`
}

type AIContentCallback struct {
	PostID           string           `json:"postId" validate:"required,uuid"`
	GeneratedContent GeneratedContent `json:"generatedContent"`
	Status           string           `json:"status" validate:"required,oneof=success partial failed"`
	Errors           []CallbackError  `json:"errors" validate:"dive"`
}

// FacebookPublishedCallback keeps the engine's snake_case names for the
// Facebook side of the payload.
type FacebookPublishedCallback struct {
	PostID         string `json:"postId" validate:"required,uuid"`
	FacebookPostID string `json:"post_id" validate:"required"`
	PostURL        string `json:"post_url" validate:"required,url"`
	Status         string `json:"status" validate:"required,oneof=success failed"`
}

type FacebookData struct {
	PostID  string `json:"postId" validate:"required"`
	PostURL string `json:"postUrl" validate:"required,url"`
	Status  string `json:"status" validate:"required,oneof=success failed"`
}

type UpdateCallback struct {
	PostID           string             `json:"postId" validate:"required,uuid"`
	GeneratedContent *GeneratedContent  `json:"generatedContent"`
	FacebookData     *FacebookData      `json:"facebookData"`
	Status           string             `json:"status" validate:"required,oneof=success partial failed"`
	PostStatus       *models.PostStatus `json:"postStatus" validate:"omitempty,oneof=DRAFT PENDING_AI READY PUBLISHED FAILED"`
	Description      *string            `json:"description"`
	Errors           []CallbackError    `json:"errors" validate:"dive"`
}

type CallbackResult struct {
	PostID            string            `json:"postId"`
	Status            models.PostStatus `json:"status"`
	AssetsCreated     int               `json:"assetsCreated"`
	FacebookPublished bool              `json:"facebookPublished"`
	Errors            []CallbackError   `json:"errors,omitempty"`
}
