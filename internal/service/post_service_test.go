package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/maheshrc27/listing-api/internal/models"
	"github.com/maheshrc27/listing-api/internal/transfer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePostStatusFollowsAIFlags(t *testing.T) {
	cases := []struct {
		name               string
		image, video, text bool
		want               models.PostStatus
	}{
		{"no flags", false, false, false, models.PostStatusDraft},
		{"image", true, false, false, models.PostStatusPendingAI},
		{"video", false, true, false, models.PostStatusPendingAI},
		{"text", false, false, true, models.PostStatusPendingAI},
		{"all", true, true, true, models.PostStatusPendingAI},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture()
			in := validCreation()
			in.UseAiImage, in.UseAiVideo, in.UseAiText = tc.image, tc.video, tc.text

			post, err := f.posts.Create(context.Background(), in)
			require.NoError(t, err)

			assert.Equal(t, tc.want, post.Status)
			assert.Equal(t, tc.want, f.store.post(post.ID).Status)
			if tc.want == models.PostStatusPendingAI {
				require.Len(t, f.dispatcher.jobs, 1)
				assert.Equal(t, TriggerJob{PostID: post.ID, Reason: TriggerReasonCreate}, f.dispatcher.jobs[0])
			} else {
				assert.Empty(t, f.dispatcher.jobs)
			}
		})
	}
}

func TestCreatePostDispatchFailureMarksFailed(t *testing.T) {
	f := newFixture()
	f.dispatcher.err = errStore
	in := validCreation()
	in.UseAiText = true

	post, err := f.posts.Create(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, models.PostStatusFailed, post.Status)
	assert.Equal(t, models.PostStatusFailed, f.store.post(post.ID).Status)
}

func TestCreatePostValidation(t *testing.T) {
	f := newFixture()

	in := validCreation()
	in.Title = ""
	_, err := f.posts.Create(context.Background(), in)
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))
	assert.Contains(t, PublicMessage(err), "title")

	in = validCreation()
	in.ProjectDetails.Price = -1
	_, err = f.posts.Create(context.Background(), in)
	require.Error(t, err)
	assert.Contains(t, PublicMessage(err), "projectDetails.price")
}

func TestUpdateRejectedWhileBusyOrPublished(t *testing.T) {
	for _, status := range []models.PostStatus{models.PostStatusPendingAI, models.PostStatusPublished} {
		t.Run(string(status), func(t *testing.T) {
			f := newFixture()
			id := f.store.seedPost(models.Post{Title: "Original", Status: status})

			_, err := f.posts.Update(context.Background(), id, &transfer.PostUpdate{Title: strPtr("Changed")})
			require.Error(t, err)
			assert.Equal(t, KindConflict, KindOf(err))
			assert.Equal(t, "Cannot edit post in "+string(status)+" status", PublicMessage(err))

			stored := f.store.post(id)
			assert.Equal(t, "Original", stored.Title)
			assert.Equal(t, status, stored.Status)
		})
	}
}

func TestUpdateAppliesFields(t *testing.T) {
	f := newFixture()
	id := f.store.seedPost(models.Post{Title: "Original", Status: models.PostStatusFailed})
	aiText := true

	post, err := f.posts.Update(context.Background(), id, &transfer.PostUpdate{
		Description: strPtr("Two bedrooms"),
		UseAiText:   &aiText,
		ProjectDetails: &transfer.ProjectDetails{
			Name:     "Hilltop",
			Location: "Hue",
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "Original", post.Title)
	assert.Equal(t, "Two bedrooms", *post.Description)
	assert.True(t, post.UseAiText)
	assert.Equal(t, "Hilltop", post.ProjectDetails.Name)
	assert.Equal(t, []string{}, post.ProjectDetails.Features)
	assert.Equal(t, models.PostStatusFailed, post.Status)
}

func TestGetAndDeleteMissingPost(t *testing.T) {
	f := newFixture()

	_, err := f.posts.Get(context.Background(), uuid.New())
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.Equal(t, "Post not found", PublicMessage(err))

	id := f.store.seedPost(models.Post{Title: "Gone", Status: models.PostStatusDraft})
	require.NoError(t, f.posts.Delete(context.Background(), id))

	_, err = f.posts.Get(context.Background(), id)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestGetIncludesRelations(t *testing.T) {
	f := newFixture()
	id := f.store.seedPost(models.Post{Title: "Villa", Status: models.PostStatusReady})
	f.store.seedAsset(models.Asset{PostID: id, URL: "https://cdn.example.com/b.jpg", Type: models.AssetTypeImage, Order: 1})
	f.store.seedAsset(models.Asset{PostID: id, URL: "https://cdn.example.com/a.jpg", Type: models.AssetTypeImage, Order: 0})

	post, err := f.posts.Get(context.Background(), id)
	require.NoError(t, err)

	require.Len(t, post.Assets, 2)
	assert.Equal(t, "https://cdn.example.com/a.jpg", post.Assets[0].URL)
	assert.NotNil(t, post.PlatformSyncs)
	assert.NotNil(t, post.AiGenerationLogs)
	assert.Nil(t, post.PublishingQueue)
}

func TestRegeneratePurgesOnlyAIAssets(t *testing.T) {
	f := newFixture()
	id := f.store.seedPost(models.Post{Title: "Villa", Status: models.PostStatusReady, UseAiImage: true})
	manualID := f.store.seedAsset(models.Asset{PostID: id, URL: "https://cdn.example.com/manual.jpg", Type: models.AssetTypeImage, Source: models.AssetSourceManual, Order: 3})
	f.store.seedAsset(models.Asset{PostID: id, URL: "https://cdn.example.com/ai.png", Type: models.AssetTypeImage, Source: models.AssetSourceAI, Order: 0})
	f.store.seedAsset(models.Asset{PostID: id, URL: "https://cdn.example.com/ai.mp4", Type: models.AssetTypeVideo, Source: models.AssetSourceAI, Order: 100})

	post, err := f.posts.Regenerate(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, models.PostStatusPendingAI, post.Status)

	remaining := f.store.assetsOf(id)
	require.Len(t, remaining, 1)
	assert.Equal(t, manualID, remaining[0].ID)
	assert.Equal(t, "https://cdn.example.com/manual.jpg", remaining[0].URL)
	assert.Equal(t, 3, remaining[0].Order)

	assert.Equal(t, models.PostStatusPendingAI, f.store.post(id).Status)
	require.Len(t, f.dispatcher.jobs, 1)
	assert.Equal(t, TriggerReasonRegenerate, f.dispatcher.jobs[0].Reason)
}

func TestRegenerateGuards(t *testing.T) {
	f := newFixture()

	noAI := f.store.seedPost(models.Post{Title: "Plain", Status: models.PostStatusReady})
	_, err := f.posts.Regenerate(context.Background(), noAI)
	assert.Equal(t, KindValidation, KindOf(err))

	busy := f.store.seedPost(models.Post{Title: "Busy", Status: models.PostStatusPendingAI, UseAiVideo: true})
	_, err = f.posts.Regenerate(context.Background(), busy)
	assert.Equal(t, KindConflict, KindOf(err))
	assert.Equal(t, "AI generation is already in progress", PublicMessage(err))

	assert.Empty(t, f.dispatcher.jobs)
}

func TestRegenerateDispatchFailureMarksFailed(t *testing.T) {
	f := newFixture()
	f.dispatcher.err = errStore
	id := f.store.seedPost(models.Post{Title: "Villa", Status: models.PostStatusFailed, UseAiText: true})

	post, err := f.posts.Regenerate(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, models.PostStatusFailed, post.Status)
	assert.Equal(t, models.PostStatusFailed, f.store.post(id).Status)
}

func TestPublish(t *testing.T) {
	t.Run("already published", func(t *testing.T) {
		f := newFixture()
		id := f.store.seedPost(models.Post{Title: "Done", Status: models.PostStatusPublished})

		_, err := f.posts.Publish(context.Background(), id)
		assert.Equal(t, KindConflict, KindOf(err))
		assert.Equal(t, "Post is already published", PublicMessage(err))
		assert.Zero(t, f.n8n.calls())
	})

	t.Run("delivery failure leaves status", func(t *testing.T) {
		f := newFixture()
		f.n8n.err = errStore
		id := f.store.seedPost(models.Post{Title: "Ready", Status: models.PostStatusReady})

		_, err := f.posts.Publish(context.Background(), id)
		assert.Equal(t, KindInternal, KindOf(err))
		assert.Equal(t, "Internal server error", PublicMessage(err))
		assert.Equal(t, models.PostStatusReady, f.store.post(id).Status)
	})

	t.Run("success", func(t *testing.T) {
		f := newFixture()
		id := f.store.seedPost(models.Post{Title: "Ready", Status: models.PostStatusReady})

		post, err := f.posts.Publish(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, models.PostStatusPendingAI, post.Status)
		assert.Equal(t, models.PostStatusPendingAI, f.store.post(id).Status)
		assert.Equal(t, 1, f.n8n.calls())
	})
}

func TestPublishKeepsResultDeliveredDuringTrigger(t *testing.T) {
	f := newFixture()
	id := f.store.seedPost(models.Post{Title: "Ready", Status: models.PostStatusReady})
	f.n8n.onTrigger = func(ctx context.Context, payload *transfer.TriggerPayload) {
		_, err := f.callbacks.HandleFacebookPublished(ctx, facebookPublished(id, transfer.CallbackStatusSuccess))
		require.NoError(t, err)
	}

	post, err := f.posts.Publish(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, models.PostStatusPublished, post.Status)
	assert.Equal(t, models.PostStatusPublished, f.store.post(id).Status)

	ps := f.store.syncOf(id, models.PlatformFacebook)
	require.NotNil(t, ps)
	assert.Equal(t, models.SyncStatusSynced, ps.SyncStatus)
}

func TestListPagination(t *testing.T) {
	f := newFixture()
	for i := 0; i < 25; i++ {
		f.store.seedPost(models.Post{Title: "Post", Status: models.PostStatusDraft})
	}

	q := transfer.DefaultListPostsQuery()
	q.Limit = 10
	first, err := f.posts.List(context.Background(), q)
	require.NoError(t, err)

	q.Page = 2
	second, err := f.posts.List(context.Background(), q)
	require.NoError(t, err)

	assert.Len(t, second.Items, 10)
	assert.Equal(t, 25, second.Total)
	assert.Equal(t, 3, second.TotalPages)
	assert.Equal(t, 2, second.Page)

	seen := map[uuid.UUID]bool{}
	for _, p := range first.Items {
		seen[p.ID] = true
	}
	for _, p := range second.Items {
		assert.False(t, seen[p.ID], "post %s appears on both pages", p.ID)
	}
}

func TestListRejectsBadQuery(t *testing.T) {
	f := newFixture()
	q := transfer.DefaultListPostsQuery()
	q.Limit = 500
	q.SortBy = "price"

	_, err := f.posts.List(context.Background(), q)
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))
	assert.Contains(t, PublicMessage(err), "limit: must be at most 100")
	assert.Contains(t, PublicMessage(err), "sortBy: must be one of")
}

func TestReorderAssets(t *testing.T) {
	f := newFixture()
	id := f.store.seedPost(models.Post{Title: "Villa", Status: models.PostStatusReady})
	a := f.store.seedAsset(models.Asset{PostID: id, URL: "https://cdn.example.com/a.jpg", Type: models.AssetTypeImage, Order: 0})
	b := f.store.seedAsset(models.Asset{PostID: id, URL: "https://cdn.example.com/b.jpg", Type: models.AssetTypeImage, Order: 1})
	other := f.store.seedAsset(models.Asset{PostID: uuid.New(), URL: "https://cdn.example.com/c.jpg", Type: models.AssetTypeImage})

	_, err := f.posts.ReorderAssets(context.Background(), id, []uuid.UUID{b, other})
	assert.Equal(t, KindValidation, KindOf(err))

	_, err = f.posts.ReorderAssets(context.Background(), id, []uuid.UUID{b, b})
	assert.Equal(t, KindValidation, KindOf(err))

	assets, err := f.posts.ReorderAssets(context.Background(), id, []uuid.UUID{b, a})
	require.NoError(t, err)
	require.Len(t, assets, 2)
	assert.Equal(t, b, assets[0].ID)
	assert.Equal(t, 0, assets[0].Order)
	assert.Equal(t, a, assets[1].ID)
	assert.Equal(t, 1, assets[1].Order)
}

func TestStats(t *testing.T) {
	f := newFixture()
	f.store.seedPost(models.Post{Title: "a", Status: models.PostStatusDraft})
	f.store.seedPost(models.Post{Title: "b", Status: models.PostStatusDraft})
	f.store.seedPost(models.Post{Title: "c", Status: models.PostStatusPublished})

	counts, err := f.posts.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, counts[models.PostStatusDraft])
	assert.Equal(t, 1, counts[models.PostStatusPublished])
	assert.Equal(t, 0, counts[models.PostStatusFailed])
}
