package transfer

import (
	"github.com/maheshrc27/listing-api/internal/models"
)

type ProjectDetails struct {
	Name     string   `json:"name" validate:"required,max=200"`
	Price    float64  `json:"price" validate:"gte=0"`
	Location string   `json:"location" validate:"required,max=500"`
	Features []string `json:"features"`
}

func (d ProjectDetails) Model() models.ProjectDetails {
	features := d.Features
	if features == nil {
		features = []string{}
	}
	return models.ProjectDetails{
		Name:     d.Name,
		Price:    d.Price,
		Location: d.Location,
		Features: features,
	}
}

type PostCreation struct {
	Title            string         `json:"title" validate:"required,min=1,max=200"`
	Description      *string        `json:"description" validate:"omitempty,max=2000"`
	ProjectDetails   ProjectDetails `json:"projectDetails"`
	UseAiImage       bool           `json:"useAiImage"`
	UseAiVideo       bool           `json:"useAiVideo"`
	UseAiText        bool           `json:"useAiText"`
	AiPromptOverride *string        `json:"aiPromptOverride" validate:"omitempty,max=1000"`
}

type PostUpdate struct {
	Title            *string         `json:"title" validate:"omitempty,min=1,max=200"`
	Description      *string         `json:"description" validate:"omitempty,max=2000"`
	ProjectDetails   *ProjectDetails `json:"projectDetails"`
	UseAiImage       *bool           `json:"useAiImage"`
	UseAiVideo       *bool           `json:"useAiVideo"`
	UseAiText        *bool           `json:"useAiText"`
	AiPromptOverride *string         `json:"aiPromptOverride" validate:"omitempty,max=1000"`
}

type ListPostsQuery struct {
	Page     int                 `query:"page" json:"page" validate:"min=1"`
	Limit    int                 `query:"limit" json:"limit" validate:"min=1,max=100"`
	SortBy   string              `query:"sortBy" json:"sortBy" validate:"omitempty,oneof=createdAt updatedAt title status"`
	Order    string              `query:"order" json:"order" validate:"omitempty,oneof=asc desc"`
	Statuses []models.PostStatus `query:"status" json:"status" validate:"dive,oneof=DRAFT PENDING_AI READY PUBLISHED FAILED"`
	Search   string              `query:"search" json:"search"`
}

// DefaultListPostsQuery holds the values used when a parameter is absent.
func DefaultListPostsQuery() ListPostsQuery {
	return ListPostsQuery{
		Page:   1,
		Limit:  20,
		SortBy: "createdAt",
		Order:  "desc",
	}
}

type PostPage struct {
	Items      []*models.Post `json:"items"`
	Total      int            `json:"total"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	TotalPages int            `json:"totalPages"`
}

type AssetOrder struct {
	AssetIDs []string `json:"assetIds" validate:"required,min=1,dive,uuid"`
}
