package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

type Post struct {
	ID               uuid.UUID      `db:"id" json:"id"`
	Title            string         `db:"title" json:"title"`
	Description      *string        `db:"description" json:"description"`
	ProjectDetails   ProjectDetails `db:"project_details" json:"projectDetails"`
	Status           PostStatus     `db:"status" json:"status"`
	UseAiImage       bool           `db:"use_ai_image" json:"useAiImage"`
	UseAiVideo       bool           `db:"use_ai_video" json:"useAiVideo"`
	UseAiText        bool           `db:"use_ai_text" json:"useAiText"`
	AiPromptOverride *string        `db:"ai_prompt_override" json:"aiPromptOverride"`
	CreatedAt        time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt        time.Time      `db:"updated_at" json:"updatedAt"`
	DeletedAt        *time.Time     `db:"deleted_at" json:"deletedAt"`

	Assets           []*Asset           `db:"-" json:"assets,omitempty"`
	PlatformSyncs    []*PlatformSync    `db:"-" json:"platformSyncs,omitempty"`
	PublishingQueue  *PublishingQueue   `db:"-" json:"publishingQueue,omitempty"`
	AiGenerationLogs []*AiGenerationLog `db:"-" json:"aiGenerationLogs,omitempty"`
}

// UsesAI reports whether any AI generation flag is set.
func (p *Post) UsesAI() bool {
	return p.UseAiImage || p.UseAiVideo || p.UseAiText
}

// InitialStatus is the status a freshly created post starts in.
func (p *Post) InitialStatus() PostStatus {
	if p.UsesAI() {
		return PostStatusPendingAI
	}
	return PostStatusDraft
}

// ProjectDetails is stored as JSONB and only validated at the API boundary.
type ProjectDetails struct {
	Name     string   `json:"name"`
	Price    float64  `json:"price"`
	Location string   `json:"location"`
	Features []string `json:"features"`
}

func (d ProjectDetails) Value() (driver.Value, error) {
	if d.Features == nil {
		d.Features = []string{}
	}
	return json.Marshal(d)
}

func (d *ProjectDetails) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*d = ProjectDetails{Features: []string{}}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return errors.New("project_details: unsupported column type")
	}
	if err := json.Unmarshal(raw, d); err != nil {
		return err
	}
	if d.Features == nil {
		d.Features = []string{}
	}
	return nil
}
