package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nemanja-m/stylize/internal/shared/config"
)

func TestOpen(t *testing.T) {
	ctx := context.Background()

	stores, err := Open(ctx, config.StorageConfig{Driver: "memory"})
	require.NoError(t, err)
	defer stores.Close()
	styles, err := stores.Styles.ListStyles(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, styles)

	_, err = Open(ctx, config.StorageConfig{Driver: "postgres"})
	require.ErrorContains(t, err, "postgres_url")

	_, err = Open(ctx, config.StorageConfig{Driver: "sqlite"})
	require.ErrorContains(t, err, "unknown storage driver")
}
