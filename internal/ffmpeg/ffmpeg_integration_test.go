package ffmpeg

import (
	"context"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// TestResults stores results from the ffmpeg-backed tests for the final summary
type TestResults struct {
	ExecutorPath string
	ProbeResults *VideoInfo
	Outputs      []string
	Errors       []string
}

var globalResults = &TestResults{}

// skipIfNoFFmpeg skips the test if ffmpeg is not available
func skipIfNoFFmpeg(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not found in PATH - install with: brew install ffmpeg")
	}
	if _, err := exec.LookPath("ffprobe"); err != nil {
		t.Skip("ffprobe not found in PATH - install with: brew install ffmpeg")
	}
}

func newTestExecutor(t *testing.T) *Executor {
	t.Helper()
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).Level(zerolog.InfoLevel)
	e, err := New(logger, 2)
	if err != nil {
		t.Fatalf("failed to create executor: %v", err)
	}
	globalResults.ExecutorPath = e.ffmpegPath
	return e
}

// generateVideo renders a lavfi test pattern, with a sine tone when withAudio is set
func generateVideo(t *testing.T, name, size string, seconds int, withAudio bool) string {
	t.Helper()
	out := filepath.Join(t.TempDir(), name)
	args := []string{"-y", "-f", "lavfi", "-i", fmt.Sprintf("testsrc=duration=%d:size=%s:rate=25", seconds, size)}
	if withAudio {
		args = append(args, "-f", "lavfi", "-i", fmt.Sprintf("sine=frequency=1000:duration=%d", seconds))
	}
	args = append(args, "-pix_fmt", "yuv420p", "-shortest", out)
	if err := exec.Command("ffmpeg", args...).Run(); err != nil {
		t.Skipf("could not generate test video: %v", err)
	}
	return out
}

func probe(t *testing.T, e *Executor, path string) *VideoInfo {
	t.Helper()
	info, err := e.ProbeVideo(context.Background(), path)
	if err != nil {
		t.Fatalf("ProbeVideo(%s) failed: %v", path, err)
	}
	return info
}

func record(t *testing.T, err error, op, output string) {
	t.Helper()
	if err != nil {
		globalResults.Errors = append(globalResults.Errors, fmt.Sprintf("%s failed: %v", op, err))
		t.Fatalf("%s failed: %v", op, err)
	}
	globalResults.Outputs = append(globalResults.Outputs, op+": "+filepath.Base(output))
}

func TestExecutorCreation(t *testing.T) {
	skipIfNoFFmpeg(t)

	e := newTestExecutor(t)
	if e.ffmpegPath == "" {
		t.Error("ffmpeg path is empty")
	}
	if e.ffprobePath == "" {
		t.Error("ffprobe path is empty")
	}
	if e.WithThreads(6).Threads() != 6 || e.Threads() != 2 {
		t.Error("WithThreads must return an independent copy")
	}
}

func TestProbeVideo(t *testing.T) {
	skipIfNoFFmpeg(t)

	e := newTestExecutor(t)
	input := generateVideo(t, "probe.mp4", "320x240", 2, true)

	info := probe(t, e, input)
	globalResults.ProbeResults = info

	if info.Width != 320 || info.Height != 240 {
		t.Errorf("expected 320x240, got %dx%d", info.Width, info.Height)
	}
	if info.FPS != 25 {
		t.Errorf("expected 25 fps, got %f", info.FPS)
	}
	if info.Duration < 1900*time.Millisecond {
		t.Errorf("duration too short: %v", info.Duration)
	}
	if !info.HasVideo || !info.HasAudio {
		t.Errorf("expected video and audio streams: %+v", info)
	}
}

func TestProbeVideoInvalidFile(t *testing.T) {
	skipIfNoFFmpeg(t)

	e := newTestExecutor(t)
	ctx := context.Background()

	if _, err := e.ProbeVideo(ctx, "nonexistent.mp4"); err == nil {
		t.Error("ProbeVideo should fail for non-existent file")
	}

	invalidPath := filepath.Join(t.TempDir(), "invalid.txt")
	if err := os.WriteFile(invalidPath, []byte("not a video"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := e.ProbeVideo(ctx, invalidPath); err == nil {
		t.Error("ProbeVideo should fail for invalid video file")
	}
}

func TestExtractClip(t *testing.T) {
	skipIfNoFFmpeg(t)

	e := newTestExecutor(t)
	input := generateVideo(t, "cut.mp4", "320x240", 3, true)
	output := filepath.Join(t.TempDir(), "cut_out.mp4")

	err := e.ExtractClip(context.Background(), input, ClipOptions{
		Start:   time.Second,
		End:     2 * time.Second,
		Output:  output,
		NoAudio: true,
	})
	record(t, err, "ExtractClip", output)

	info := probe(t, e, output)
	if info.HasAudio {
		t.Error("expected audio to be dropped")
	}
	if info.Duration < 900*time.Millisecond || info.Duration > 1200*time.Millisecond {
		t.Errorf("expected ~1s clip, got %v", info.Duration)
	}
}

func TestExtractClipValidation(t *testing.T) {
	e := &Executor{logger: zerolog.Nop()}
	ctx := context.Background()

	if err := e.ExtractClip(ctx, "in.mp4", ClipOptions{}); err == nil {
		t.Error("expected error without output")
	}
	if err := e.ExtractClip(ctx, "in.mp4", ClipOptions{Output: "o.mp4", Start: 2 * time.Second, End: time.Second}); err == nil {
		t.Error("expected error when end precedes start")
	}
	if err := e.ExtractClip(ctx, "in.mp4", ClipOptions{Output: "o.mp4", Start: -time.Second}); err == nil {
		t.Error("expected error for negative start")
	}
}

func TestRotate(t *testing.T) {
	skipIfNoFFmpeg(t)

	e := newTestExecutor(t)
	input := generateVideo(t, "rotate.mp4", "320x240", 1, false)
	output := filepath.Join(t.TempDir(), "rotate_out.mp4")

	err := e.Rotate(context.Background(), input, output, 90, RotateOptions{NoAudio: true})
	record(t, err, "Rotate", output)

	info := probe(t, e, output)
	if w, h := info.DisplaySize(); w != 240 || h != 320 {
		t.Errorf("expected 240x320 after rotation, got %dx%d", w, h)
	}

	if err := e.Rotate(context.Background(), input, output, 45, RotateOptions{}); err == nil {
		t.Error("expected error for 45 degrees")
	}
}

func writePNG(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	path := filepath.Join(t.TempDir(), "still.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestImageClip(t *testing.T) {
	skipIfNoFFmpeg(t)

	e := newTestExecutor(t)
	still := writePNG(t, 101, 75)
	output := filepath.Join(t.TempDir(), "still.mp4")

	err := e.ImageClip(context.Background(), ImageClipOptions{
		Image:       still,
		Output:      output,
		Duration:    800 * time.Millisecond,
		Width:       320,
		Height:      240,
		FPS:         25,
		WithSilence: true,
	})
	record(t, err, "ImageClip", output)

	info := probe(t, e, output)
	if info.Width != 320 || info.Height != 240 {
		t.Errorf("expected 320x240, got %dx%d", info.Width, info.Height)
	}
	if !info.HasAudio {
		t.Error("expected a silent audio track")
	}
	if info.Duration < 700*time.Millisecond || info.Duration > time.Second {
		t.Errorf("expected ~0.8s, got %v", info.Duration)
	}
}

func TestConcatCompose(t *testing.T) {
	skipIfNoFFmpeg(t)

	e := newTestExecutor(t)
	first := generateVideo(t, "a.mp4", "320x240", 1, true)
	second := generateVideo(t, "b.mp4", "240x320", 1, false)
	output := filepath.Join(t.TempDir(), "joined.mp4")

	err := e.Concat(context.Background(), ConcatOptions{
		Inputs: []string{first, second},
		Output: output,
		Method: ConcatCompose,
	})
	record(t, err, "Concat", output)

	info := probe(t, e, output)
	if info.Width != 320 || info.Height != 320 {
		t.Errorf("expected 320x320 canvas, got %dx%d", info.Width, info.Height)
	}
	if !info.HasAudio {
		t.Error("expected audio to be kept")
	}
	if info.Duration < 1900*time.Millisecond {
		t.Errorf("expected ~2s, got %v", info.Duration)
	}
}

func TestConcatDemux(t *testing.T) {
	skipIfNoFFmpeg(t)

	e := newTestExecutor(t)
	first := generateVideo(t, "a.mp4", "160x120", 1, false)
	second := generateVideo(t, "b.mp4", "160x120", 1, false)
	output := filepath.Join(t.TempDir(), "demux.mp4")

	err := e.Concat(context.Background(), ConcatOptions{
		Inputs:    []string{first, second},
		Output:    output,
		Method:    ConcatDemux,
		CopyCodec: true,
	})
	record(t, err, "Concat demux", output)

	if info := probe(t, e, output); info.Duration < 1900*time.Millisecond {
		t.Errorf("expected ~2s, got %v", info.Duration)
	}
}

func TestConcatValidation(t *testing.T) {
	e := &Executor{logger: zerolog.Nop()}
	ctx := context.Background()

	if err := e.Concat(ctx, ConcatOptions{Output: "out.mp4"}); err == nil {
		t.Error("expected error without inputs")
	}
	if err := e.Concat(ctx, ConcatOptions{Inputs: []string{"a.mp4"}}); err == nil {
		t.Error("expected error without output")
	}
	if err := e.Concat(ctx, ConcatOptions{Inputs: []string{"a.mp4"}, Output: "o.mp4", Method: "stack"}); err == nil {
		t.Error("expected error for unknown method")
	}
}

func TestExtractFrame(t *testing.T) {
	skipIfNoFFmpeg(t)

	e := newTestExecutor(t)
	input := generateVideo(t, "frame.mp4", "320x240", 2, false)
	output := filepath.Join(t.TempDir(), "frame.jpg")

	err := e.ExtractFrame(context.Background(), input, output, time.Second, 270)
	record(t, err, "ExtractFrame", output)

	f, err := os.Open(output)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		t.Fatalf("decode frame: %v", err)
	}
	if cfg.Width != 240 || cfg.Height != 320 {
		t.Errorf("expected rotated 240x320 frame, got %dx%d", cfg.Width, cfg.Height)
	}
}

func TestRunCancelled(t *testing.T) {
	skipIfNoFFmpeg(t)

	e := newTestExecutor(t)
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	err := e.Run(ctx, RunOptions{Args: []string{
		"-re", "-f", "lavfi", "-i", "testsrc=duration=30:size=160x120:rate=25",
		"-f", "null", "-",
	}})
	if err != context.DeadlineExceeded {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}

// TestMain runs after all tests and prints summary
func TestMain(m *testing.M) {
	code := m.Run()
	printTestSummary()
	os.Exit(code)
}

func printTestSummary() {
	if globalResults.ExecutorPath == "" {
		return
	}

	fmt.Println("\n" + strings.Repeat("=", 60))
	fmt.Println("TEST SUMMARY - ffmpeg layer")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("ffmpeg binary: %s\n", globalResults.ExecutorPath)

	if p := globalResults.ProbeResults; p != nil {
		fmt.Printf("probe:         %dx%d @ %.2f fps, %v, video=%s audio=%s\n",
			p.Width, p.Height, p.FPS, p.Duration, p.VideoCodec, p.AudioCodec)
	}
	for _, out := range globalResults.Outputs {
		fmt.Printf("  ok  %s\n", out)
	}
	for _, err := range globalResults.Errors {
		fmt.Printf("  err %s\n", err)
	}
	fmt.Println(strings.Repeat("=", 60))
}
