package ffmpeg

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"time"

	"github.com/kikiluvv/videoeditor/pkg/util"
)

// ProbeVideo extracts metadata from a video file
func (e *Executor) ProbeVideo(ctx context.Context, filePath string) (*VideoInfo, error) {
	if filePath == "" {
		return nil, fmt.Errorf("file path is required")
	}

	args := []string{
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		filePath,
	}

	cmd := exec.CommandContext(ctx, e.ffprobePath, args...)
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe failed for %s: %w", filePath, err)
	}

	info, err := parseProbeOutput(output)
	if err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}
	info.FilePath = filePath

	e.logger.Debug().
		Str("file", filePath).
		Int("width", info.Width).
		Int("height", info.Height).
		Int("rotation", info.Rotation).
		Float64("fps", info.FPS).
		Dur("duration", info.Duration).
		Bool("has_audio", info.HasAudio).
		Msg("probed video")

	return info, nil
}

// parseProbeOutput converts ffprobe JSON into VideoInfo. Only the first
// video and audio streams are considered.
func parseProbeOutput(output []byte) (*VideoInfo, error) {
	var probe probeResult
	if err := json.Unmarshal(output, &probe); err != nil {
		return nil, err
	}

	info := &VideoInfo{}

	if dur, err := strconv.ParseFloat(probe.Format.Duration, 64); err == nil {
		info.Duration = time.Duration(dur * float64(time.Second))
	}

	if br, err := strconv.ParseInt(probe.Format.BitRate, 10, 64); err == nil {
		info.Bitrate = br
	}

	for _, stream := range probe.Streams {
		switch stream.CodecType {
		case "video":
			if info.HasVideo {
				continue
			}
			info.HasVideo = true
			info.Width = stream.Width
			info.Height = stream.Height
			info.VideoCodec = stream.CodecName
			info.Rotation = streamRotation(stream)

			// r_frame_rate can be 0/0 for still images; avg_frame_rate is the fallback
			info.FPS = util.ParseFrameRate(stream.RFrameRate)
			if info.FPS == 0 {
				info.FPS = util.ParseFrameRate(stream.AvgFrameRate)
			}
			if info.Duration == 0 {
				if dur, err := strconv.ParseFloat(stream.Duration, 64); err == nil {
					info.Duration = time.Duration(dur * float64(time.Second))
				}
			}
		case "audio":
			if info.HasAudio {
				continue
			}
			info.HasAudio = true
			info.AudioCodec = stream.CodecName
			if br, err := strconv.ParseInt(stream.BitRate, 10, 64); err == nil {
				info.AudioBitrate = br
			}
		}
	}

	return info, nil
}

// streamRotation reads the rotation hint from the legacy "rotate" tag or
// from the display matrix side data. The side data angle is
// counter-clockwise, so it is negated to match the tag.
func streamRotation(s probeStream) int {
	if s.Tags.Rotate != "" {
		if deg, err := strconv.ParseFloat(s.Tags.Rotate, 64); err == nil {
			return normalizeRotation(deg)
		}
	}
	for _, sd := range s.SideDataList {
		if sd.Rotation != nil {
			return normalizeRotation(-*sd.Rotation)
		}
	}
	return 0
}

// normalizeRotation maps any angle onto the nearest of 0, 90, 180, 270
func normalizeRotation(deg float64) int {
	r := int(math.Round(deg/90)) * 90 % 360
	if r < 0 {
		r += 360
	}
	return r
}

// probeResult matches ffprobe JSON output structure
type probeResult struct {
	Format struct {
		Duration string `json:"duration"`
		BitRate  string `json:"bit_rate"`
	} `json:"format"`
	Streams []probeStream `json:"streams"`
}

type probeStream struct {
	CodecType    string `json:"codec_type"`
	CodecName    string `json:"codec_name"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	RFrameRate   string `json:"r_frame_rate"`
	AvgFrameRate string `json:"avg_frame_rate"`
	BitRate      string `json:"bit_rate"`
	Duration     string `json:"duration"`
	Tags         struct {
		Rotate string `json:"rotate"`
	} `json:"tags"`
	SideDataList []struct {
		SideDataType string   `json:"side_data_type"`
		Rotation     *float64 `json:"rotation"`
	} `json:"side_data_list"`
}
