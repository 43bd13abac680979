package storage

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nemanja-m/stylize/internal/pipeline/core"
)

func newImage(userID int64) *core.Image {
	return &core.Image{
		UserID:      userID,
		OriginalURL: "data:image/png;base64,AAAA",
		Style:       "Watercolor Art",
	}
}

// imageStoreContract runs the shared ImageStore behaviour against any store.
func imageStoreContract(t *testing.T, newStore func(t *testing.T) core.ImageStore) {
	ctx := context.Background()

	t.Run("create assigns id and pending status", func(t *testing.T) {
		store := newStore(t)
		img := newImage(7)
		img.Status = core.ImageStatusCompleted
		img.TransformedURL = "https://example.com/should-be-ignored.png"

		created, err := store.CreateImage(ctx, img)
		require.NoError(t, err)
		require.NotZero(t, created.ID)
		require.Equal(t, core.ImageStatusPending, created.Status)
		require.Empty(t, created.TransformedURL)
		require.False(t, created.CreatedAt.IsZero())

		got, err := store.GetImage(ctx, created.ID)
		require.NoError(t, err)
		require.Equal(t, created.ID, got.ID)
		require.Equal(t, "Watercolor Art", got.Style)
	})

	t.Run("missing image", func(t *testing.T) {
		store := newStore(t)
		got, err := store.GetImage(ctx, 999999)
		require.NoError(t, err)
		require.Nil(t, got)

		updated, err := store.UpdateImageStatus(ctx, 999999, core.ImageStatusProcessing, "", "")
		require.NoError(t, err)
		require.Nil(t, updated)
	})

	t.Run("completed lifecycle", func(t *testing.T) {
		store := newStore(t)
		created, err := store.CreateImage(ctx, newImage(1))
		require.NoError(t, err)

		processing, err := store.UpdateImageStatus(ctx, created.ID, core.ImageStatusProcessing, "", "")
		require.NoError(t, err)
		require.Equal(t, core.ImageStatusProcessing, processing.Status)

		completed, err := store.UpdateImageStatus(ctx, created.ID, core.ImageStatusCompleted, "https://cdn.example.com/out.png", "")
		require.NoError(t, err)
		require.Equal(t, core.ImageStatusCompleted, completed.Status)
		require.Equal(t, "https://cdn.example.com/out.png", completed.TransformedURL)
		require.Empty(t, completed.ErrorMessage)
	})

	t.Run("failed lifecycle", func(t *testing.T) {
		store := newStore(t)
		created, err := store.CreateImage(ctx, newImage(1))
		require.NoError(t, err)

		_, err = store.UpdateImageStatus(ctx, created.ID, core.ImageStatusProcessing, "", "")
		require.NoError(t, err)

		failed, err := store.UpdateImageStatus(ctx, created.ID, core.ImageStatusFailed, "", "no valid image data found in the response")
		require.NoError(t, err)
		require.Equal(t, core.ImageStatusFailed, failed.Status)
		require.Empty(t, failed.TransformedURL)
		require.Equal(t, "no valid image data found in the response", failed.ErrorMessage)
	})

	t.Run("rejected transitions", func(t *testing.T) {
		store := newStore(t)
		created, err := store.CreateImage(ctx, newImage(1))
		require.NoError(t, err)

		_, err = store.UpdateImageStatus(ctx, created.ID, core.ImageStatusCompleted, "https://cdn.example.com/x.png", "")
		require.ErrorIs(t, err, core.ErrInvalidTransition, "pending must not skip processing")

		_, err = store.UpdateImageStatus(ctx, created.ID, core.ImageStatusProcessing, "", "")
		require.NoError(t, err)

		_, err = store.UpdateImageStatus(ctx, created.ID, core.ImageStatusCompleted, "", "")
		require.ErrorIs(t, err, core.ErrMissingResult)

		_, err = store.UpdateImageStatus(ctx, created.ID, core.ImageStatusFailed, "", "")
		require.ErrorIs(t, err, core.ErrMissingErrorMessage)

		_, err = store.UpdateImageStatus(ctx, created.ID, core.ImageStatusFailed, "", "boom")
		require.NoError(t, err)

		for _, next := range []core.ImageStatus{core.ImageStatusPending, core.ImageStatusProcessing, core.ImageStatusCompleted} {
			_, err = store.UpdateImageStatus(ctx, created.ID, next, "https://cdn.example.com/x.png", "msg")
			require.ErrorIs(t, err, core.ErrInvalidTransition, "terminal image moved to %s", next)
		}

		got, err := store.GetImage(ctx, created.ID)
		require.NoError(t, err)
		require.Equal(t, core.ImageStatusFailed, got.Status)
		require.Equal(t, "boom", got.ErrorMessage)
	})

	t.Run("list by user newest first", func(t *testing.T) {
		store := newStore(t)
		a, _ := store.CreateImage(ctx, newImage(42))
		_, _ = store.CreateImage(ctx, newImage(43))
		b, _ := store.CreateImage(ctx, newImage(42))

		images, err := store.ListImagesByUser(ctx, 42)
		require.NoError(t, err)
		require.Len(t, images, 2)
		require.Equal(t, b.ID, images[0].ID)
		require.Equal(t, a.ID, images[1].ID)

		images, err = store.ListImagesByUser(ctx, 1000)
		require.NoError(t, err)
		require.Empty(t, images)
	})
}

func TestInMemoryImageStore(t *testing.T) {
	imageStoreContract(t, func(t *testing.T) core.ImageStore {
		return NewInMemoryImageStore()
	})
}

func TestInMemoryImageStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryImageStore()
	created, err := store.CreateImage(ctx, newImage(1))
	require.NoError(t, err)

	created.Status = core.ImageStatusCompleted
	got, err := store.GetImage(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, core.ImageStatusPending, got.Status)
}

func TestInMemoryImageStoreConcurrentTransitions(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryImageStore()
	created, err := store.CreateImage(ctx, newImage(1))
	require.NoError(t, err)
	_, err = store.UpdateImageStatus(ctx, created.ID, core.ImageStatusProcessing, "", "")
	require.NoError(t, err)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < 20; i++ {
		wg.Go(func() {
			var err error
			if i%2 == 0 {
				_, err = store.UpdateImageStatus(ctx, created.ID, core.ImageStatusCompleted, "https://cdn.example.com/x.png", "")
			} else {
				_, err = store.UpdateImageStatus(ctx, created.ID, core.ImageStatusFailed, "", "boom")
			}
			if err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		})
	}
	wg.Wait()

	require.Equal(t, 1, successes, "exactly one terminal write must win")
}

func TestInMemoryStyleStore(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStyleStore(DefaultStyles())

	style, err := store.GetStyleByName(ctx, "Van Gogh Style")
	require.NoError(t, err)
	require.NotNil(t, style)
	require.Contains(t, style.PromptTemplate, "Van Gogh")
	require.Equal(t, 1, style.PointCost)

	style, err = store.GetStyleByName(ctx, "人物包装盒")
	require.NoError(t, err)
	require.NotNil(t, style)

	style, err = store.GetStyleByName(ctx, "Nonexistent")
	require.NoError(t, err)
	require.Nil(t, style)

	styles, err := store.ListStyles(ctx)
	require.NoError(t, err)
	require.Len(t, styles, len(DefaultStyles()))
	require.Equal(t, "Ghibli Anime Style", styles[0].Name)
	for i, s := range styles {
		require.Equal(t, int64(i+1), s.ID)
	}
}
