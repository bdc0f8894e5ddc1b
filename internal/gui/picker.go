// Package gui asks for input paths with native-looking fyne dialogs when
// they were not given on the command line.
package gui

import (
	"errors"
	"path/filepath"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"

	"github.com/kikiluvv/videoeditor/pkg/util"
)

// ErrCancelled is returned when a dialog is closed without a selection
var ErrCancelled = errors.New("selection cancelled")

// Request describes one path to ask for
type Request struct {
	Title      string
	Dir        bool     // choose a directory instead of a file
	Extensions []string // file filter, ignored for directories
}

// VideoFile asks for a supported video
func VideoFile(title string) Request {
	return Request{Title: title, Extensions: util.VideoExtensions}
}

// ImageFile asks for an image with one of exts
func ImageFile(title string, exts []string) Request {
	return Request{Title: title, Extensions: exts}
}

// Directory asks for a directory
func Directory(title string) Request {
	return Request{Title: title, Dir: true}
}

// Pick shows one dialog per request, in order, and returns the chosen paths.
// Dialogs open in the directory of the previous selection.
func Pick(requests ...Request) ([]string, error) {
	if len(requests) == 0 {
		return nil, nil
	}

	a := app.NewWithID("videoeditor")
	w := a.NewWindow("videoeditor")
	w.Resize(fyne.NewSize(900, 600))

	paths := make([]string, 0, len(requests))
	var pickErr error
	finish := func(err error) {
		pickErr = err
		w.Close()
	}

	var show func(i int)
	show = func(i int) {
		if i == len(requests) {
			finish(nil)
			return
		}
		req := requests[i]
		w.SetTitle(req.Title)

		chosen := func(path string, err error) {
			if err != nil {
				finish(err)
				return
			}
			if path == "" {
				finish(ErrCancelled)
				return
			}
			remember(path, req.Dir)
			paths = append(paths, path)
			show(i + 1)
		}

		var d *dialog.FileDialog
		if req.Dir {
			d = dialog.NewFolderOpen(func(uri fyne.ListableURI, err error) {
				if uri == nil {
					chosen("", err)
					return
				}
				chosen(uri.Path(), nil)
			}, w)
		} else {
			d = dialog.NewFileOpen(func(rc fyne.URIReadCloser, err error) {
				if rc == nil {
					chosen("", err)
					return
				}
				path := rc.URI().Path()
				_ = rc.Close()
				chosen(path, nil)
			}, w)
			if len(req.Extensions) > 0 {
				d.SetFilter(storage.NewExtensionFileFilter(filterExtensions(req.Extensions)))
			}
		}

		if loc, err := storage.ListerForURI(storage.NewFileURI(util.LastDir())); err == nil {
			d.SetLocation(loc)
		}
		d.Resize(fyne.NewSize(880, 580))
		d.Show()
	}

	a.Lifecycle().SetOnStarted(func() {
		show(0)
	})
	w.ShowAndRun()

	if pickErr == nil && len(paths) != len(requests) {
		pickErr = ErrCancelled
	}
	return paths, pickErr
}

// filterExtensions lists every extension in lower and upper case, since
// camera files often use upper-case names
func filterExtensions(exts []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, ext := range exts {
		for _, v := range []string{strings.ToLower(ext), strings.ToUpper(ext)} {
			if !seen[v] {
				seen[v] = true
				out = append(out, v)
			}
		}
	}
	return out
}

func remember(path string, isDir bool) {
	dir := path
	if !isDir {
		dir = filepath.Dir(path)
	}
	_ = util.SetLastDir(dir)
}
