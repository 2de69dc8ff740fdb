package datasets

import (
	"path/filepath"
	"slices"
	"strings"
)

// Track names a downscaling method of the DIV2K challenge.
type Track string

const (
	TrackHR            Track = "hr"
	TrackBicubic       Track = "bicubic"
	TrackUnknown       Track = "unknown"
	TrackRealMild      Track = "real_mild"
	TrackRealDifficult Track = "real_difficult"

	// TrackRealWild exists upstream but has several degraded images per HR
	// image, so it is not part of the lookup table.
	TrackRealWild Track = "real_wild"
)

// Split selects the train or validation part of the dataset.
type Split string

const (
	SplitTrain Split = "train"
	SplitVal   Split = "val"
)

type trackKey struct {
	track Track
	split Split
	scale int
}

// trackDirs is the only source of truth for valid (track, split, scale)
// combinations.
var trackDirs = map[trackKey]string{
	{TrackHR, SplitTrain, 1}: "DIV2K_train_HR",
	{TrackHR, SplitVal, 1}:   "DIV2K_valid_HR",

	{TrackBicubic, SplitTrain, 2}: filepath.Join("DIV2K_train_LR_bicubic", "X2"),
	{TrackBicubic, SplitTrain, 3}: filepath.Join("DIV2K_train_LR_bicubic", "X3"),
	{TrackBicubic, SplitTrain, 4}: filepath.Join("DIV2K_train_LR_bicubic", "X4"),
	{TrackBicubic, SplitTrain, 8}: "DIV2K_train_LR_x8",
	{TrackBicubic, SplitVal, 2}:   filepath.Join("DIV2K_valid_LR_bicubic", "X2"),
	{TrackBicubic, SplitVal, 3}:   filepath.Join("DIV2K_valid_LR_bicubic", "X3"),
	{TrackBicubic, SplitVal, 4}:   filepath.Join("DIV2K_valid_LR_bicubic", "X4"),
	{TrackBicubic, SplitVal, 8}:   "DIV2K_valid_LR_x8",

	{TrackUnknown, SplitTrain, 2}: filepath.Join("DIV2K_train_LR_unknown", "X2"),
	{TrackUnknown, SplitTrain, 3}: filepath.Join("DIV2K_train_LR_unknown", "X3"),
	{TrackUnknown, SplitTrain, 4}: filepath.Join("DIV2K_train_LR_unknown", "X4"),
	{TrackUnknown, SplitVal, 2}:   filepath.Join("DIV2K_valid_LR_unknown", "X2"),
	{TrackUnknown, SplitVal, 3}:   filepath.Join("DIV2K_valid_LR_unknown", "X3"),
	{TrackUnknown, SplitVal, 4}:   filepath.Join("DIV2K_valid_LR_unknown", "X4"),

	{TrackRealMild, SplitTrain, 4}:      "DIV2K_train_LR_mild",
	{TrackRealMild, SplitVal, 4}:        "DIV2K_valid_LR_mild",
	{TrackRealDifficult, SplitTrain, 4}: "DIV2K_train_LR_difficult",
	{TrackRealDifficult, SplitVal, 4}:   "DIV2K_valid_LR_difficult",
}

// Tracks returns the tracks present in the lookup table, sorted.
func Tracks() []Track {
	var tracks []Track
	for key := range trackDirs {
		if !slices.Contains(tracks, key.track) {
			tracks = append(tracks, key.track)
		}
	}
	slices.Sort(tracks)
	return tracks
}

// Splits returns the valid splits.
func Splits() []Split {
	return []Split{SplitTrain, SplitVal}
}

// TrackScales returns the scales available for track in split, sorted.
func TrackScales(track Track, split Split) []int {
	var scales []int
	for key := range trackDirs {
		if key.track == track && key.split == split {
			scales = append(scales, key.scale)
		}
	}
	slices.Sort(scales)
	return scales
}

// TrackDir returns the directory, relative to the DIV2K root, holding the
// images of track at the given split and scale.
//
// When the combination is not in the table the error tells apart an unknown
// track, an unknown split and a track that lacks the scale. All of them match
// ErrConfig.
func TrackDir(track Track, split Split, scale int) (string, error) {
	if dir, ok := trackDirs[trackKey{track, split, scale}]; ok {
		return dir, nil
	}
	tracks := Tracks()
	if !slices.Contains(tracks, track) {
		names := make([]string, len(tracks))
		for i, t := range tracks {
			names[i] = string(t)
		}
		return "", newConfigError(ErrUnknownTrack, "track %s does not exist, use one of [%s]",
			track, strings.Join(names, ", "))
	}
	if !slices.Contains(Splits(), split) {
		return "", newConfigError(ErrUnknownSplit, "split %s is not valid", split)
	}
	return "", newConfigError(ErrUnsupportedScale, "DIV2K track %s does not include scale X%d", track, scale)
}

// Archive is one downloadable DIV2K archive and its MD5 checksum.
type Archive struct {
	URL string
	MD5 string
}

const archiveBaseURL = "http://data.vision.ee.ethz.ch/cvl/DIV2K/"

var archives = []Archive{
	{archiveBaseURL + "DIV2K_train_HR.zip", "bdc2d9338d4e574fe81bf7d158758658"},
	{archiveBaseURL + "DIV2K_valid_HR.zip", "9fcdda83005c5e5997799b69f955ff88"},
	{archiveBaseURL + "DIV2K_train_LR_bicubic_X2.zip", "9a637d2ef4db0d0a81182be37fb00692"},
	{archiveBaseURL + "DIV2K_valid_LR_bicubic_X2.zip", "1512c9a3f7bde2a1a21a73044e46b9cb"},
	{archiveBaseURL + "DIV2K_train_LR_bicubic_X3.zip", "ad80b9fe40c049a07a8a6c51bfab3b6d"},
	{archiveBaseURL + "DIV2K_valid_LR_bicubic_X3.zip", "18b1d310f9f88c13618c287927b29898"},
	{archiveBaseURL + "DIV2K_train_LR_bicubic_X4.zip", "76c43ec4155851901ebbe8339846d93d"},
	{archiveBaseURL + "DIV2K_valid_LR_bicubic_X4.zip", "21962de700c8d368c6ff83314480eff0"},
	{archiveBaseURL + "DIV2K_train_LR_unknown_X2.zip", "1396d023072c9aaeb999c28b81315233"},
	{archiveBaseURL + "DIV2K_valid_LR_unknown_X2.zip", "d319bd9033573d21de5395e6454f34f8"},
	{archiveBaseURL + "DIV2K_train_LR_unknown_X3.zip", "4e651308aaa54d917fb1264395b7f6fa"},
	{archiveBaseURL + "DIV2K_valid_LR_unknown_X3.zip", "05184168e3608b5c539fbfb46bcade4f"},
	{archiveBaseURL + "DIV2K_train_LR_unknown_X4.zip", "e3c7febb1b3f78bd30f9ba15fe8e3956"},
	{archiveBaseURL + "DIV2K_valid_LR_unknown_X4.zip", "8ac3413102bb3d0adc67012efb8a6c94"},
	{archiveBaseURL + "DIV2K_train_LR_x8.zip", "613db1b855721b3d2b26f4194a1d22a6"},
	{archiveBaseURL + "DIV2K_valid_LR_x8.zip", "c5aeea2004e297e9ff3abfbe143576a5"},
	{archiveBaseURL + "DIV2K_train_LR_mild.zip", "807b3e3a5156f35bd3a86c5bbfb674bc"},
	{archiveBaseURL + "DIV2K_valid_LR_mild.zip", "8c433f812ca532eed62c11ec0de08370"},
	{archiveBaseURL + "DIV2K_train_LR_difficult.zip", "5a8f2b9e0c5f5ed0dac271c1293662f4"},
	{archiveBaseURL + "DIV2K_valid_LR_difficult.zip", "1620af11bf82996bc94df655cb6490fe"},
	{archiveBaseURL + "DIV2K_train_LR_wild.zip", "d00982366bffee7c4739ba7ff1316b3b"},
	{archiveBaseURL + "DIV2K_valid_LR_wild.zip", "aacae8db6bec39151ca5bb9c80bf2f6c"},
}

// ArchiveList returns a copy of the DIV2K archives and their checksums.
func ArchiveList() []Archive {
	return slices.Clone(archives)
}
