package service

import (
	"sort"

	"github.com/maheshrc27/listing-api/internal/models"
	"github.com/maheshrc27/listing-api/internal/transfer"
)

const DefaultVoice = "default"

// BuildFrames maps assets 1:1 to frames ordered by (order, images first).
// Assets that tie on both keep their input order.
func BuildFrames(details models.ProjectDetails, assets []*models.Asset) []transfer.Frame {
	sorted := make([]*models.Asset, len(assets))
	copy(sorted, assets)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Order != sorted[j].Order {
			return sorted[i].Order < sorted[j].Order
		}
		return sorted[i].Type == models.AssetTypeImage && sorted[j].Type == models.AssetTypeVideo
	})

	caption := frameCaption(details)
	frames := make([]transfer.Frame, 0, len(sorted))
	for _, a := range sorted {
		if a.Type == models.AssetTypeVideo {
			frames = append(frames, transfer.VideoFrame{Caption: caption, Voice: DefaultVoice, VideoURL: a.URL})
			continue
		}
		frames = append(frames, transfer.ImageFrame{Caption: caption, Voice: DefaultVoice, ImageURL: a.URL})
	}
	return frames
}

func frameCaption(details models.ProjectDetails) string {
	if details.Location == "" {
		return details.Name
	}
	if details.Name == "" {
		return details.Location
	}
	return details.Name + " - " + details.Location
}

// NewTriggerPayload packages a post and its assets for the workflow engine.
// publicURL is used to advertise the callback endpoints; empty omits them.
func NewTriggerPayload(post *models.Post, assets []*models.Asset, publicURL string) *transfer.TriggerPayload {
	details := post.ProjectDetails
	if details.Features == nil {
		details.Features = []string{}
	}

	payload := &transfer.TriggerPayload{
		PostID:           post.ID.String(),
		Title:            post.Title,
		Description:      post.Description,
		ProjectDetails:   details,
		UseAiImage:       post.UseAiImage,
		UseAiVideo:       post.UseAiVideo,
		UseAiText:        post.UseAiText,
		AiPromptOverride: post.AiPromptOverride,
		Frames:           BuildFrames(details, assets),
	}

	for _, a := range assets {
		if a.Source == models.AssetSourceManual {
			payload.ManualAssets = append(payload.ManualAssets, transfer.ManualAsset{URL: a.URL, Type: a.Type})
		}
	}

	if publicURL != "" {
		payload.Callbacks = &transfer.CallbackURLs{
			AIContent:         publicURL + "/webhooks/callback/ai-content",
			FacebookPublished: publicURL + "/webhooks/callback/facebook-published",
			Update:            publicURL + "/webhooks/callback/update",
		}
	}

	return payload
}
