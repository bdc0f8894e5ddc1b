package pipeline

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/kikiluvv/videoeditor/internal/facesearch"
	"github.com/kikiluvv/videoeditor/internal/ffmpeg"
)

// Config holds pipeline-specific configuration
type Config struct {
	Workers int // concurrent batch jobs
}

// FrameOpener opens the decoded frames of a video file
type FrameOpener func(path string) (facesearch.FrameSource, error)

// InsertImageOptions configures the insert-image workflow
type InsertImageOptions struct {
	At       time.Duration // negative counts back from the end, editor.AtEnd appends
	Duration time.Duration
	Resize   bool
	Method   ffmpeg.ConcatMethod
}

// InsertVideoOptions configures the insert-video workflow
type InsertVideoOptions struct {
	At       time.Duration
	CutStart time.Duration
	CutEnd   time.Duration // editor.ToEnd keeps the rest of the inserted video
	Resize   bool
	Method   ffmpeg.ConcatMethod
}

// ProgressFunc is called after each batch job with the number of finished
// jobs and the total
type ProgressFunc func(done, total int)

// JobError records a failed batch job
type JobError struct {
	Path string
	Err  error
}

func (e JobError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e JobError) Unwrap() error {
	return e.Err
}

// BatchReport summarizes a batch run
type BatchReport struct {
	Processed map[string]string // input -> output
	Skipped   []string
	Failed    []JobError
}

func newBatchReport() *BatchReport {
	return &BatchReport{Processed: make(map[string]string)}
}

// Total is the number of files the batch looked at
func (r *BatchReport) Total() int {
	return len(r.Processed) + len(r.Skipped) + len(r.Failed)
}

// Err joins the job failures, or returns nil when every job succeeded
func (r *BatchReport) Err() error {
	if len(r.Failed) == 0 {
		return nil
	}
	msgs := make([]string, len(r.Failed))
	for i, f := range r.Failed {
		msgs[i] = f.Error()
	}
	return fmt.Errorf("%d of %d jobs failed: %s", len(r.Failed), r.Total(), strings.Join(msgs, "; "))
}

func (r *BatchReport) sort() {
	sort.Strings(r.Skipped)
	sort.Slice(r.Failed, func(i, j int) bool { return r.Failed[i].Path < r.Failed[j].Path })
}
