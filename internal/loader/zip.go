package loader

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Failure records a file that could not be extracted or loaded
type Failure struct {
	Name string
	Err  error
}

// IsZip reports whether an upload is a zip archive, by extension or by content
func IsZip(name string, data []byte) bool {
	if strings.EqualFold(filepath.Ext(name), ".zip") {
		return true
	}
	return mimetype.Detect(data).Is("application/zip")
}

// ExpandZip extracts the .pdf and .txt members of an archive into dir and returns them
// in archive order. Other entries are discarded silently; members that fail to extract
// are reported and skipped. An error is returned only when the archive itself is unreadable.
func ExpandZip(data []byte, dir string) ([]Member, []Failure, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil && !errors.Is(err, zip.ErrInsecurePath) {
		return nil, nil, fmt.Errorf("failed to open zip archive: %w", err)
	}

	var members []Member
	var failures []Failure
	for i, f := range reader.File {
		if f.FileInfo().IsDir() || !eligible(f.Name) {
			continue
		}

		// only the base name survives, so entries like ../../x.txt stay inside dir
		name := filepath.Base(filepath.FromSlash(f.Name))
		target := filepath.Join(dir, strconv.Itoa(i)+"_"+name)

		if err := extract(f, target); err != nil {
			failures = append(failures, Failure{Name: name, Err: fmt.Errorf("failed to extract: %w", err)})
			continue
		}

		members = append(members, Member{Name: name, Path: target})
	}

	return members, failures, nil
}

func eligible(entry string) bool {
	clean := filepath.ToSlash(entry)
	if strings.HasPrefix(clean, "__MACOSX/") || strings.HasPrefix(filepath.Base(clean), "._") {
		return false
	}
	return Supported(clean)
}

func extract(f *zip.File, target string) error {
	src, err := f.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(target)
		return err
	}
	return dst.Close()
}
