package clips

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/kikiluvv/videoeditor/internal/ffmpeg"
)

// Clip is a video file on disk together with the metadata the editor needs.
// Width and Height are display dimensions, with any rotation hint applied.
type Clip struct {
	ID       string
	Path     string
	Duration time.Duration
	Width    int
	Height   int
	FPS      float64
	HasAudio bool
	Rotation int  // rotation hint of the file, already folded into Width/Height
	Scratch  bool // file was created by the editor and is removed on cleanup
}

// FromInfo builds a clip from probe results
func FromInfo(id string, info *ffmpeg.VideoInfo) *Clip {
	w, h := info.DisplaySize()
	return &Clip{
		ID:       id,
		Path:     info.FilePath,
		Duration: info.Duration,
		Width:    w,
		Height:   h,
		FPS:      info.FPS,
		HasAudio: info.HasAudio,
		Rotation: info.Rotation,
	}
}

// Size returns the display size of the clip
func (c *Clip) Size() (int, int) {
	return c.Width, c.Height
}

func (c *Clip) String() string {
	return fmt.Sprintf("%s (%dx%d, %.2f fps, %v)", c.ID, c.Width, c.Height, c.FPS, c.Duration)
}

// Manager tracks clips and the scratch files that back intermediate ones
type Manager struct {
	mu      sync.Mutex
	clips   []*Clip
	workDir string
	seq     int
}

// NewManager creates a clip manager with a private scratch directory under
// parent. An empty parent uses the system temp dir.
func NewManager(parent string) (*Manager, error) {
	if parent != "" {
		if err := os.MkdirAll(parent, 0755); err != nil {
			return nil, fmt.Errorf("create work dir: %w", err)
		}
	}
	dir, err := os.MkdirTemp(parent, "videoeditor-*")
	if err != nil {
		return nil, fmt.Errorf("create scratch dir: %w", err)
	}
	return &Manager{
		clips:   make([]*Clip, 0),
		workDir: dir,
	}, nil
}

// WorkDir returns the scratch directory
func (m *Manager) WorkDir() string {
	return m.workDir
}

// Add adds a clip to the manager
func (m *Manager) Add(clip *Clip) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clips = append(m.clips, clip)
}

// NewScratchPath reserves a unique file name in the work dir.
// label ends up in the file name to make the work dir readable.
func (m *Manager) NewScratchPath(label, ext string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	if label == "" {
		label = "clip"
	}
	return filepath.Join(m.workDir, fmt.Sprintf("%03d-%s%s", m.seq, label, ext))
}

// Cleanup removes scratch clips and the scratch directory
func (m *Manager) Cleanup() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var firstErr error
	kept := m.clips[:0]
	for _, clip := range m.clips {
		if !clip.Scratch {
			kept = append(kept, clip)
			continue
		}
		if err := os.Remove(clip.Path); err != nil && !os.IsNotExist(err) && firstErr == nil {
			firstErr = err
		}
	}
	m.clips = kept

	if err := os.RemoveAll(m.workDir); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
