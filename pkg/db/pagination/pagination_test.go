package pagination

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCursorRoundTrip(t *testing.T) {
	token, err := EncodeCursor(Cursor{ID: "42", CreatedAt: "2024-01-15T12:00:00Z"})
	require.NoError(t, err)

	cursor, err := DecodeCursor(token)
	require.NoError(t, err)
	require.Equal(t, "42", cursor.ID)
	require.Equal(t, "2024-01-15T12:00:00Z", cursor.CreatedAt)
}

func TestDecodeCursorRejectsGarbage(t *testing.T) {
	_, err := DecodeCursor("!!not-base64!!")
	require.Error(t, err)
}

func TestNormalize(t *testing.T) {
	require.Equal(t, DefaultPageSize, Pagination{}.Normalize().PageSize)
	require.Equal(t, MaxPageSize, Pagination{PageSize: 500}.Normalize().PageSize)
	require.Equal(t, 25, Pagination{PageSize: 25}.Normalize().PageSize)
}

func TestBuildCursorPageInfo(t *testing.T) {
	items := []*int{ptr(1), ptr(2), ptr(3)}
	info := BuildCursorPageInfo(items, 2, func(v *int) string {
		if *v == 2 {
			return "two"
		}
		return "other"
	})
	require.True(t, info.HasMore)
	require.Equal(t, "two", info.NextPageToken)

	info = BuildCursorPageInfo(items, 3, func(*int) string { return "x" })
	require.False(t, info.HasMore)
	require.Empty(t, info.NextPageToken)
}

func ptr(v int) *int { return &v }
