package ffmpeg

import (
	"strconv"
	"time"
)

// VideoInfo contains metadata about a video file
type VideoInfo struct {
	FilePath     string
	Duration     time.Duration
	Width        int // coded width, before the rotation hint is applied
	Height       int // coded height
	Rotation     int // display rotation hint: 0, 90, 180 or 270
	FPS          float64
	Bitrate      int64
	VideoCodec   string
	HasVideo     bool
	HasAudio     bool
	AudioCodec   string
	AudioBitrate int64
}

// DisplaySize returns the frame size after the rotation hint is applied,
// which is what ffmpeg filters see when it auto-rotates on decode.
func (v *VideoInfo) DisplaySize() (int, int) {
	if v.Rotation == 90 || v.Rotation == 270 {
		return v.Height, v.Width
	}
	return v.Width, v.Height
}

// Progress represents ffmpeg progress data
type Progress struct {
	Frame      int
	FPS        float64
	Bitrate    string
	Time       string
	Speed      string
	Percentage float64
}

// RunOptions configures ffmpeg execution
type RunOptions struct {
	Args            []string
	ProgressHandler func(*Progress)
	LogHandler      func(line string)
}

// ProgressFunc is a callback for progress updates during ffmpeg operations.
// Called periodically with progress information as the operation executes.
type ProgressFunc func(*Progress)

// Default encoding settings
const (
	DefaultCRF        = 23
	DefaultPreset     = "medium"
	DefaultVideoCodec = "libx264"
	DefaultAudioCodec = "aac"

	// SilenceSource generates the audio track of clips that have none.
	SilenceSource = "anullsrc=r=44100:cl=stereo"
)

// Encoding selects codecs and quality for re-encoding operations.
// Zero values fall back to the defaults above.
type Encoding struct {
	VideoCodec string
	AudioCodec string
	CRF        int
	Preset     string
}

// args returns the codec arguments; noAudio drops audio streams.
func (enc Encoding) args(noAudio bool) []string {
	codec := enc.VideoCodec
	if codec == "" {
		codec = DefaultVideoCodec
	}
	crf := enc.CRF
	if crf == 0 {
		crf = DefaultCRF
	}
	preset := enc.Preset
	if preset == "" {
		preset = DefaultPreset
	}

	args := []string{"-c:v", codec, "-crf", strconv.Itoa(crf), "-preset", preset, "-pix_fmt", "yuv420p"}
	if noAudio {
		return append(args, "-an")
	}

	audioCodec := enc.AudioCodec
	if audioCodec == "" {
		audioCodec = DefaultAudioCodec
	}
	return append(args, "-c:a", audioCodec)
}

// RenderOptions configures video rendering operations
type RenderOptions struct {
	Input        string
	Output       string
	Filters      []string
	Width        int
	Height       int
	Scale        string
	FPS          float64
	NoAudio      bool
	Threads      int // overrides the executor's thread count when > 0
	Encoding     Encoding
	ProgressFunc ProgressFunc
	CustomArgs   []string
}
