// Package arcfs reads game script archives.
//
// Scripts inside archives are Shift-JIS (codepage 932) encoded .ks files.
// Archives are opened through an Opener so extraction does not depend on a
// particular container format; OpenZip reads zip-packed script archives.
package arcfs

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	"golang.org/x/text/encoding/japanese"
)

// ScriptExt is the extension of script entries.
const ScriptExt = ".ks"

// ErrScriptNotFound is returned by Archive.Script for unknown names.
var ErrScriptNotFound = errors.New("script not found")

// Blob is one decoded script.
type Blob struct {
	// Name is the entry's base name, extension included.
	Name string
	Text string
}

// Archive gives access to the scripts of one archive file.
type Archive interface {
	// Scripts returns every script entry, sorted by name.
	Scripts() ([]Blob, error)
	// Script returns the script whose base name without extension matches
	// name, ignoring case.
	Script(name string) (Blob, error)
	Close() error
}

// Opener opens the archive at a path.
type Opener func(path string) (Archive, error)

// Decode converts Shift-JIS bytes to a UTF-8 string.
func Decode(data []byte) (string, error) {
	out, err := japanese.ShiftJIS.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("decoding shift-jis: %w", err)
	}
	return string(out), nil
}

// ---------------------------------------------------------------------------
// Zip archives
// ---------------------------------------------------------------------------

type zipArchive struct {
	path string
	rc   *zip.ReadCloser
}

// OpenZip opens a zip file holding .ks entries.
func OpenZip(filePath string) (Archive, error) {
	rc, err := zip.OpenReader(filePath)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", filePath, err)
	}
	return &zipArchive{path: filePath, rc: rc}, nil
}

func (a *zipArchive) scriptFiles() []*zip.File {
	var files []*zip.File
	for _, f := range a.rc.File {
		if f.FileInfo().IsDir() || !strings.EqualFold(path.Ext(f.Name), ScriptExt) {
			continue
		}
		files = append(files, f)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files
}

func (a *zipArchive) Scripts() ([]Blob, error) {
	files := a.scriptFiles()
	blobs := make([]Blob, 0, len(files))
	for _, f := range files {
		b, err := a.read(f)
		if err != nil {
			return nil, err
		}
		blobs = append(blobs, b)
	}
	return blobs, nil
}

func (a *zipArchive) Script(name string) (Blob, error) {
	for _, f := range a.scriptFiles() {
		base := path.Base(f.Name)
		if strings.EqualFold(strings.TrimSuffix(base, path.Ext(base)), name) {
			return a.read(f)
		}
	}
	return Blob{}, fmt.Errorf("%s in %s: %w", name, a.path, ErrScriptNotFound)
}

func (a *zipArchive) read(f *zip.File) (Blob, error) {
	r, err := f.Open()
	if err != nil {
		return Blob{}, fmt.Errorf("opening %s in %s: %w", f.Name, a.path, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return Blob{}, fmt.Errorf("reading %s in %s: %w", f.Name, a.path, err)
	}
	text, err := Decode(data)
	if err != nil {
		return Blob{}, fmt.Errorf("%s in %s: %w", f.Name, a.path, err)
	}
	return Blob{Name: path.Base(f.Name), Text: text}, nil
}

func (a *zipArchive) Close() error {
	return a.rc.Close()
}
