package config

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
)

func TestLoadDefaultsWhenMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Faces.ScaleFactor != 1.2 || cfg.Faces.MinNeighbors != 10 || cfg.Faces.Confidence != 3 {
		t.Errorf("unexpected face defaults: %+v", cfg.Faces)
	}
	if cfg.Insert.Duration != 0.8 || !cfg.Insert.Resize || cfg.Editor.Method != "compose" {
		t.Errorf("unexpected insert defaults: %+v %+v", cfg.Insert, cfg.Editor)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
concurrency: 6
editor:
  output_format: mkv
  fps: 24
faces:
  cascade_path: /opt/cascades/face.xml
ffmpeg:
  threads: 3
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Concurrency != 6 || cfg.Editor.OutputFormat != "mkv" || cfg.Editor.FPS != 24 {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.Faces.CascadePath != "/opt/cascades/face.xml" || cfg.FFmpeg.Threads != 3 {
		t.Errorf("nested values not applied: %+v %+v", cfg.Faces, cfg.FFmpeg)
	}
	if cfg.Faces.MinNeighbors != 10 {
		t.Error("unset values must keep their defaults")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("editor: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("VIDEOEDITOR_CASCADE_PATH", "/env/face.xml")
	t.Setenv("VIDEOEDITOR_FFMPEG_THREADS", "5")
	t.Setenv("VIDEOEDITOR_WORKERS", "8")
	t.Setenv("VIDEOEDITOR_LOG_FILE", "/tmp/editor.log")
	t.Setenv("VIDEOEDITOR_WORK_DIR", "/scratch")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Faces.CascadePath != "/env/face.xml" || cfg.FFmpeg.Threads != 5 ||
		cfg.Concurrency != 8 || cfg.Logging.File != "/tmp/editor.log" || cfg.WorkDir != "/scratch" {
		t.Errorf("env overrides not applied: %+v", cfg)
	}
}

func TestApplyEnvKeys(t *testing.T) {
	var keys []string
	err := defaultConfig().applyEnv(func(key string) (string, bool) {
		keys = append(keys, key)
		return "", false
	})
	if err != nil {
		t.Fatalf("applyEnv failed: %v", err)
	}
	sort.Strings(keys)

	want := []string{
		"VIDEOEDITOR_CASCADE_PATH",
		"VIDEOEDITOR_FFMPEG_THREADS",
		"VIDEOEDITOR_LOG_FILE",
		"VIDEOEDITOR_WORKERS",
		"VIDEOEDITOR_WORK_DIR",
	}
	if strings.Join(keys, " ") != strings.Join(want, " ") {
		t.Errorf("applyEnv looked up %v, want %v", keys, want)
	}
}

func TestEnvOverrideInvalidNumber(t *testing.T) {
	cfg := defaultConfig()
	err := cfg.applyEnv(func(key string) (string, bool) {
		if key == "VIDEOEDITOR_WORKERS" {
			return "many", true
		}
		return "", false
	})
	if err == nil {
		t.Error("expected error for non-numeric override")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := defaultConfig()
	cfg.Editor.WithoutAudio = true

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !loaded.Editor.WithoutAudio {
		t.Error("saved value lost")
	}
}

func TestContext(t *testing.T) {
	if FromContext(context.Background()) == nil {
		t.Fatal("expected defaults without a stored config")
	}
	cfg := defaultConfig()
	cfg.Concurrency = 11
	if got := FromContext(WithConfig(context.Background(), cfg)); got.Concurrency != 11 {
		t.Errorf("expected stored config, got %+v", got)
	}
}
