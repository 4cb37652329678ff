package models

type PostStatus string

const (
	PostStatusDraft     PostStatus = "DRAFT"
	PostStatusPendingAI PostStatus = "PENDING_AI"
	PostStatusReady     PostStatus = "READY"
	PostStatusPublished PostStatus = "PUBLISHED"
	PostStatusFailed    PostStatus = "FAILED"
)

var PostStatuses = []PostStatus{
	PostStatusDraft,
	PostStatusPendingAI,
	PostStatusReady,
	PostStatusPublished,
	PostStatusFailed,
}

func (s PostStatus) Valid() bool {
	for _, v := range PostStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Editable: field edits are only allowed from DRAFT, READY and FAILED.
func (s PostStatus) Editable() bool {
	return s == PostStatusDraft || s == PostStatusReady || s == PostStatusFailed
}

// Regenerable does not check the AI flags; callers must do that.
func (s PostStatus) Regenerable() bool {
	return s != PostStatusPendingAI
}

func (s PostStatus) Publishable() bool {
	return s != PostStatusPublished
}

// AwaitingAIContent is the only state an AI-content callback may resolve.
func (s PostStatus) AwaitingAIContent() bool {
	return s == PostStatusPendingAI
}

// AwaitingPublishResult lists the states a Facebook-publish callback may resolve.
func (s PostStatus) AwaitingPublishResult() bool {
	return s == PostStatusPendingAI || s == PostStatusReady || s == PostStatusDraft
}
