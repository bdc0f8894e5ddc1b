package ffmpeg

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestFilterBuilder(t *testing.T) {
	fb := NewFilterBuilder()
	filter := fb.Scale(1920, 1080).FPS(30).Build()

	expected := "scale=1920:1080,fps=30"
	if filter != expected {
		t.Errorf("expected %q, got %q", expected, filter)
	}
}

func TestFilterBuilderEmpty(t *testing.T) {
	fb := NewFilterBuilder()
	filter := fb.Build()

	if filter != "" {
		t.Errorf("expected empty string, got %q", filter)
	}
}

func TestFilterBuilderChaining(t *testing.T) {
	filter := NewFilterBuilder().
		Scale(0, 1080). // ignored
		Pad(1080, 1920).
		SquarePixels().
		FPS(29.97).
		Format("yuv420p").
		Build()

	expected := "pad=1080:1920:(ow-iw)/2:(oh-ih)/2,setsar=1,fps=29.97,format=yuv420p"
	if filter != expected {
		t.Errorf("expected %q, got %q", expected, filter)
	}
}

func TestFilterBuilderRotate(t *testing.T) {
	tests := []struct {
		angle int
		want  string
	}{
		{0, ""},
		{90, "transpose=2"},
		{180, "hflip,vflip"},
		{270, "transpose=1"},
		{45, ""},
	}

	for _, tt := range tests {
		if got := NewFilterBuilder().Rotate(tt.angle).Build(); got != tt.want {
			t.Errorf("Rotate(%d) = %q, want %q", tt.angle, got, tt.want)
		}
	}
}

func TestBuildFilterChain(t *testing.T) {
	tests := []struct {
		name string
		opts RenderOptions
		want string
	}{
		{"empty", RenderOptions{}, ""},
		{"size", RenderOptions{Width: 640, Height: 360, Scale: "iw/2:-2", Filters: []string{"setsar=1"}}, "scale=640:360,setsar=1"},
		{"scale expression", RenderOptions{Scale: "iw/2:-2"}, "scale=iw/2:-2"},
		{"filters only", RenderOptions{Filters: []string{"", "hflip"}}, "hflip"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := strings.Join(buildFilterChain(tt.opts), ","); got != tt.want {
				t.Errorf("buildFilterChain() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWithThreadsCopies(t *testing.T) {
	e := &Executor{logger: zerolog.Nop(), threads: 2}
	if got := e.WithThreads(6); got.Threads() != 6 || e.Threads() != 2 {
		t.Errorf("WithThreads changed the original: %d/%d", got.Threads(), e.Threads())
	}
}

func TestEncodingArgs(t *testing.T) {
	got := strings.Join(Encoding{}.args(false), " ")
	want := "-c:v libx264 -crf 23 -preset medium -pix_fmt yuv420p -c:a aac"
	if got != want {
		t.Errorf("default args = %q, want %q", got, want)
	}

	got = strings.Join(Encoding{VideoCodec: "libx265", CRF: 28, Preset: "fast"}.args(true), " ")
	want = "-c:v libx265 -crf 28 -preset fast -pix_fmt yuv420p -an"
	if got != want {
		t.Errorf("custom args = %q, want %q", got, want)
	}
}

const probeJSON = `{
  "streams": [
    {
      "codec_type": "video",
      "codec_name": "h264",
      "width": 1920,
      "height": 1080,
      "r_frame_rate": "30000/1001",
      "avg_frame_rate": "30000/1001",
      "side_data_list": [
        {"side_data_type": "Display Matrix", "rotation": -90}
      ]
    },
    {
      "codec_type": "audio",
      "codec_name": "aac",
      "bit_rate": "128000"
    },
    {
      "codec_type": "audio",
      "codec_name": "opus"
    }
  ],
  "format": {"duration": "12.500000", "bit_rate": "4000000"}
}`

func TestParseProbeOutput(t *testing.T) {
	info, err := parseProbeOutput([]byte(probeJSON))
	if err != nil {
		t.Fatalf("parseProbeOutput failed: %v", err)
	}

	if !info.HasVideo || info.VideoCodec != "h264" {
		t.Errorf("video stream not parsed: %+v", info)
	}
	if info.Width != 1920 || info.Height != 1080 {
		t.Errorf("expected 1920x1080, got %dx%d", info.Width, info.Height)
	}
	if info.Rotation != 90 {
		t.Errorf("expected rotation 90, got %d", info.Rotation)
	}
	if w, h := info.DisplaySize(); w != 1080 || h != 1920 {
		t.Errorf("expected display size 1080x1920, got %dx%d", w, h)
	}
	if info.FPS < 29.96 || info.FPS > 29.98 {
		t.Errorf("expected ~29.97 fps, got %f", info.FPS)
	}
	if info.Duration != 12500*time.Millisecond {
		t.Errorf("expected 12.5s, got %v", info.Duration)
	}
	if !info.HasAudio || info.AudioCodec != "aac" || info.AudioBitrate != 128000 {
		t.Errorf("first audio stream not used: %+v", info)
	}
}

func TestParseProbeOutputStillImage(t *testing.T) {
	out := `{"streams":[{"codec_type":"video","codec_name":"png","width":640,"height":480,
		"r_frame_rate":"0/0","avg_frame_rate":"25/1","duration":"0.040000","tags":{"rotate":"180"}}],
		"format":{}}`

	info, err := parseProbeOutput([]byte(out))
	if err != nil {
		t.Fatalf("parseProbeOutput failed: %v", err)
	}
	if info.FPS != 25 {
		t.Errorf("expected avg_frame_rate fallback of 25, got %f", info.FPS)
	}
	if info.Duration != 40*time.Millisecond {
		t.Errorf("expected stream duration fallback, got %v", info.Duration)
	}
	if info.Rotation != 180 {
		t.Errorf("expected rotate tag 180, got %d", info.Rotation)
	}
	if info.HasAudio {
		t.Error("expected no audio")
	}
}

func TestParseProbeOutputInvalid(t *testing.T) {
	if _, err := parseProbeOutput([]byte("not json")); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestNormalizeRotation(t *testing.T) {
	tests := map[float64]int{
		0:    0,
		90:   90,
		-90:  270,
		180:  180,
		-180: 180,
		270:  270,
		360:  0,
		89.9: 90,
		-270: 90,
	}
	for in, want := range tests {
		if got := normalizeRotation(in); got != want {
			t.Errorf("normalizeRotation(%v) = %d, want %d", in, got, want)
		}
	}
}

func TestParseConcatMethod(t *testing.T) {
	for in, want := range map[string]ConcatMethod{
		"":        ConcatCompose,
		"compose": ConcatCompose,
		" Chain ": ConcatChain,
		"DEMUX":   ConcatDemux,
	} {
		got, err := ParseConcatMethod(in)
		if err != nil {
			t.Errorf("ParseConcatMethod(%q) failed: %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("ParseConcatMethod(%q) = %q, want %q", in, got, want)
		}
	}

	if _, err := ParseConcatMethod("stack"); err == nil {
		t.Error("expected error for unknown method")
	}
}

func TestBuildConcatGraphCompose(t *testing.T) {
	infos := []*VideoInfo{
		{Width: 640, Height: 360, FPS: 25, HasAudio: true, Duration: 2 * time.Second},
		{Width: 1920, Height: 1080, Rotation: 90, FPS: 30, HasAudio: false, Duration: 1500 * time.Millisecond},
	}

	graph, err := buildConcatGraph(infos, ConcatCompose, 0, false)
	if err != nil {
		t.Fatalf("buildConcatGraph failed: %v", err)
	}

	want := strings.Join([]string{
		"[0:v]pad=1080:1920:(ow-iw)/2:(oh-ih)/2,setsar=1,fps=25,format=yuv420p[v0]",
		"[0:a]aresample=44100,aformat=sample_fmts=fltp:channel_layouts=stereo[a0]",
		"[1:v]pad=1080:1920:(ow-iw)/2:(oh-ih)/2,setsar=1,fps=25,format=yuv420p[v1]",
		"anullsrc=r=44100:cl=stereo,atrim=duration=1.500[a1]",
		"[v0][a0][v1][a1]concat=n=2:v=1:a=1[v][a]",
	}, ";")
	if graph != want {
		t.Errorf("graph mismatch\n got: %s\nwant: %s", graph, want)
	}
}

func TestBuildConcatGraphChainNoAudio(t *testing.T) {
	infos := []*VideoInfo{
		{Width: 321, Height: 241, FPS: 30, HasAudio: true},
		{Width: 1280, Height: 720, FPS: 60, HasAudio: true},
	}

	graph, err := buildConcatGraph(infos, ConcatChain, 24, true)
	if err != nil {
		t.Fatalf("buildConcatGraph failed: %v", err)
	}

	want := strings.Join([]string{
		"[0:v]scale=322:242,setsar=1,fps=24,format=yuv420p[v0]",
		"[1:v]scale=322:242,setsar=1,fps=24,format=yuv420p[v1]",
		"[v0][v1]concat=n=2:v=1:a=0[v]",
	}, ";")
	if graph != want {
		t.Errorf("graph mismatch\n got: %s\nwant: %s", graph, want)
	}
}

func TestBuildConcatGraphErrors(t *testing.T) {
	if _, err := buildConcatGraph(nil, ConcatCompose, 0, false); err == nil {
		t.Error("expected error for no inputs")
	}
	if _, err := buildConcatGraph([]*VideoInfo{{Width: 10, Height: 10}}, ConcatDemux, 0, false); err == nil {
		t.Error("expected error for demux method")
	}
	if _, err := buildConcatGraph([]*VideoInfo{{}}, ConcatChain, 0, false); err == nil {
		t.Error("expected error for zero frame size")
	}
}

func TestStreamOutput(t *testing.T) {
	e := &Executor{logger: zerolog.Nop()}
	input := strings.Join([]string{
		"Input #0, lavfi, from 'testsrc':",
		"frame=10",
		"fps=25.0",
		"bitrate=N/A",
		"out_time_ms=400000",
		"out_time=00:00:00.400000",
		"speed=1.5x",
		"progress=continue",
		"frame=0",
		"progress=end",
	}, "\n")

	var progress []Progress
	var logs []string
	e.streamOutput(strings.NewReader(input), func(p *Progress) {
		progress = append(progress, *p)
	}, func(line string) {
		logs = append(logs, line)
	})

	if len(progress) != 1 {
		t.Fatalf("expected 1 progress report, got %d", len(progress))
	}
	p := progress[0]
	if p.Frame != 10 || p.FPS != 25 || p.Time != "00:00:00.400000" || p.Speed != "1.5x" {
		t.Errorf("unexpected progress: %+v", p)
	}
	if len(logs) != 1 || !strings.HasPrefix(logs[0], "Input #0") {
		t.Errorf("expected only the non-progress line to be logged, got %q", logs)
	}
}

func TestLineTail(t *testing.T) {
	tail := newLineTail(2)
	for _, l := range []string{"a", "  ", "b", "c"} {
		tail.add(l)
	}
	if got := tail.String(); got != "b | c" {
		t.Errorf("tail = %q, want %q", got, "b | c")
	}
}

func TestValidateRenderOptions(t *testing.T) {
	tests := []struct {
		name    string
		opts    RenderOptions
		wantErr bool
	}{
		{"ok", RenderOptions{Input: "in.mp4", Output: "out.mp4"}, false},
		{"no input", RenderOptions{Output: "out.mp4"}, true},
		{"no output", RenderOptions{Input: "in.mp4"}, true},
		{"bad crf", RenderOptions{Input: "in.mp4", Output: "out.mp4", Encoding: Encoding{CRF: 60}}, true},
		{"negative fps", RenderOptions{Input: "in.mp4", Output: "out.mp4", FPS: -1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateRenderOptions(tt.opts)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateRenderOptions() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRunRequiresArgs(t *testing.T) {
	e := &Executor{logger: zerolog.Nop()}
	if err := e.Run(context.Background(), RunOptions{}); err == nil {
		t.Error("expected error for empty args")
	}
}
