package transfer

import (
	"encoding/json"

	"github.com/maheshrc27/listing-api/internal/models"
)

// TriggerPayload is the body posted to the n8n workflow webhook.
type TriggerPayload struct {
	PostID           string                `json:"postId"`
	Title            string                `json:"title"`
	Description      *string               `json:"description,omitempty"`
	ProjectDetails   models.ProjectDetails `json:"projectDetails"`
	UseAiImage       bool                  `json:"useAiImage"`
	UseAiVideo       bool                  `json:"useAiVideo"`
	UseAiText        bool                  `json:"useAiText"`
	AiPromptOverride *string               `json:"aiPromptOverride,omitempty"`
	Frames           []Frame               `json:"frames"`
	ManualAssets     []ManualAsset         `json:"manualAssets,omitempty"`
	Callbacks        *CallbackURLs         `json:"callbacks,omitempty"`
}

type ManualAsset struct {
	URL  string           `json:"url"`
	Type models.AssetType `json:"type"`
}

type CallbackURLs struct {
	AIContent         string `json:"aiContent"`
	FacebookPublished string `json:"facebookPublished"`
	Update            string `json:"update"`
}

// Frame is one step of the rendered sequence. The engine tells the two
// variants apart by the is_video marker.
type Frame interface {
	IsVideo() bool
	SourceURL() string
}

type ImageFrame struct {
	Caption  string
	Voice    string
	ImageURL string
}

func (f ImageFrame) IsVideo() bool     { return false }
func (f ImageFrame) SourceURL() string { return f.ImageURL }

func (f ImageFrame) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		IsVideo  bool   `json:"is_video"`
		Caption  string `json:"caption"`
		Voice    string `json:"voice"`
		ImageURL string `json:"image_url"`
	}{false, f.Caption, f.Voice, f.ImageURL})
}

type VideoFrame struct {
	Caption  string
	Voice    string
	VideoURL string
}

func (f VideoFrame) IsVideo() bool     { return true }
func (f VideoFrame) SourceURL() string { return f.VideoURL }

func (f VideoFrame) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		IsVideo  bool   `json:"is_video"`
		Caption  string `json:"caption"`
		Voice    string `json:"voice"`
		VideoURL string `json:"video_url"`
	}{true, f.Caption, f.Voice, f.VideoURL})
}
