// Package cascade adapts OpenCV (through gocv) to the facesearch interfaces:
// a Haar cascade face detector and a seekable video frame reader.
package cascade

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sync"

	"gocv.io/x/gocv"
)

// DefaultModel is the file name of the frontal face cascade shipped with OpenCV.
const DefaultModel = "haarcascade_frontalface_default.xml"

// searchDirs are the usual install locations of OpenCV's cascade data.
var searchDirs = []string{
	"/usr/share/opencv4/haarcascades",
	"/usr/local/share/opencv4/haarcascades",
	"/usr/share/opencv/haarcascades",
	"/usr/local/share/opencv/haarcascades",
	"/opt/homebrew/share/opencv4/haarcascades",
	"./models",
}

// FindCascade returns the first existing cascade file among candidates and
// the well-known OpenCV data directories.
func FindCascade(candidates ...string) (string, error) {
	for _, c := range candidates {
		if c == "" {
			continue
		}
		if _, err := os.Stat(c); err == nil {
			return c, nil
		}
	}
	for _, dir := range searchDirs {
		p := filepath.Join(dir, DefaultModel)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("cascade model %s not found (set faces.cascade_path)", DefaultModel)
}

// Classifier detects faces with a pre-trained Haar cascade.
type Classifier struct {
	mu   sync.Mutex
	cc   gocv.CascadeClassifier
	path string
}

// Load reads the cascade model at path.
func Load(path string) (*Classifier, error) {
	cc := gocv.NewCascadeClassifier()
	if !cc.Load(path) {
		cc.Close()
		return nil, fmt.Errorf("failed to load cascade model %s", path)
	}
	return &Classifier{cc: cc, path: path}, nil
}

// Path returns the model file the classifier was loaded from.
func (c *Classifier) Path() string {
	return c.path
}

// DetectFaces runs multi-scale detection over a grayscale image.
func (c *Classifier) DetectFaces(gray *image.Gray, scaleFactor float64, minNeighbors int) ([]image.Rectangle, error) {
	mat, err := gocv.ImageGrayToMatGray(gray)
	if err != nil {
		return nil, fmt.Errorf("failed to convert frame: %w", err)
	}
	defer mat.Close()

	// CascadeClassifier is not safe for concurrent use.
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cc.DetectMultiScaleWithParams(mat, scaleFactor, minNeighbors, 0, image.Point{}, image.Point{}), nil
}

// Close releases the classifier.
func (c *Classifier) Close() error {
	return c.cc.Close()
}
