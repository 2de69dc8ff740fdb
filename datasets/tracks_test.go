package datasets

import (
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackDir_TableEntries(t *testing.T) {
	for key, want := range trackDirs {
		got, err := TrackDir(key.track, key.split, key.scale)
		require.NoError(t, err, "key %+v", key)
		assert.Equal(t, want, got)
	}

	dir, err := TrackDir(TrackBicubic, SplitVal, 3)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("DIV2K_valid_LR_bicubic", "X3"), dir)

	dir, err = TrackDir(TrackBicubic, SplitTrain, 8)
	require.NoError(t, err)
	assert.Equal(t, "DIV2K_train_LR_x8", dir)
}

func TestTrackDir_Errors(t *testing.T) {
	tests := []struct {
		name                 string
		track                Track
		split                Split
		scale                int
		wantErr, notWantErr  error
		wantMessageSubstring string
	}{
		{"unknown track", "nearest", SplitTrain, 2, ErrUnknownTrack, ErrUnknownSplit, "does not exist"},
		{"real_wild is not indexed", TrackRealWild, SplitTrain, 4, ErrUnknownTrack, ErrUnsupportedScale, "real_wild"},
		{"unknown split", TrackBicubic, "test", 2, ErrUnknownSplit, ErrUnknownTrack, "split test"},
		{"unsupported scale", TrackRealMild, SplitTrain, 2, ErrUnsupportedScale, ErrUnknownSplit, "X2"},
		{"unknown has no x8", TrackUnknown, SplitVal, 8, ErrUnsupportedScale, ErrUnknownTrack, "X8"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := TrackDir(tc.track, tc.split, tc.scale)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.wantErr), "got %v", err)
			assert.True(t, errors.Is(err, ErrConfig), "got %v", err)
			assert.False(t, errors.Is(err, tc.notWantErr), "got %v", err)
			assert.Contains(t, err.Error(), tc.wantMessageSubstring)
		})
	}
}

func TestTracksAndScales(t *testing.T) {
	assert.Equal(t,
		[]Track{TrackBicubic, TrackHR, TrackRealDifficult, TrackRealMild, TrackUnknown},
		Tracks())
	assert.Equal(t, []Split{SplitTrain, SplitVal}, Splits())
	assert.Equal(t, []int{2, 3, 4, 8}, TrackScales(TrackBicubic, SplitTrain))
	assert.Equal(t, []int{2, 3, 4}, TrackScales(TrackUnknown, SplitVal))
	assert.Equal(t, []int{1}, TrackScales(TrackHR, SplitVal))
	assert.Empty(t, TrackScales(TrackRealWild, SplitTrain))
}

func TestArchiveList(t *testing.T) {
	list := ArchiveList()
	require.Len(t, list, 22)
	for _, a := range list {
		assert.Contains(t, a.URL, "DIV2K/DIV2K_")
		assert.Len(t, a.MD5, 32)
	}

	// Mutating the copy must not leak into the table.
	list[0].MD5 = "changed"
	assert.Equal(t, "bdc2d9338d4e574fe81bf7d158758658", ArchiveList()[0].MD5)
}
