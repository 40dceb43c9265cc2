package extract

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/flanksource/bunup/pkg/utils"
	"github.com/flanksource/clicky/task"
	"github.com/flanksource/commons/files"
	"github.com/ulikunitz/xz"
)

var (
	// ErrExtraction is returned when an archive cannot be read or an entry cannot be written
	ErrExtraction = errors.New("extraction failed")
	// ErrIllegalPath is returned for archive entries that would be written outside the destination
	ErrIllegalPath = errors.New("illegal path in archive")
)

// Result lists what an extraction wrote to disk
type Result struct {
	Files       []string
	Directories []string
	Overwritten []string
	Size        int64
}

// Extract unpacks archivePath into extractDir, logging progress on t.
// The destination is not cleaned first: existing files are overwritten.
func Extract(archivePath, extractDir string, t *task.Task) (*Result, error) {
	if t != nil {
		t.SetDescription(fmt.Sprintf("Extracting %s", filepath.Base(archivePath)))
	}

	result, err := Unarchive(archivePath, extractDir)
	if err != nil {
		return result, err
	}

	utils.LogExtraction(t, archivePath, extractDir, len(result.Files))
	return result, nil
}

// Unarchive checks every entry name of a zip or tarball and then extracts it
// into dest with commons/files, overwriting existing files.
func Unarchive(archivePath, dest string) (*Result, error) {
	if !IsArchive(archivePath) {
		return nil, fmt.Errorf("%w: unsupported archive format %s", ErrExtraction, filepath.Base(archivePath))
	}

	names, err := entryNames(archivePath)
	if err != nil {
		return nil, err
	}
	for _, name := range names {
		if err := checkEntry(name); err != nil {
			return nil, err
		}
	}

	archive, err := files.Unarchive(archivePath, dest, files.WithOverwrite(true))
	result := newResult(dest, archive)
	if err != nil {
		return result, fmt.Errorf("%w: %s: %w", ErrExtraction, archivePath, err)
	}
	return result, nil
}

// Unzip extracts a zip archive into dest
func Unzip(archivePath, dest string) (*Result, error) {
	if GetExtension(archivePath) != ".zip" {
		return nil, fmt.Errorf("%w: %s is not a zip archive", ErrExtraction, filepath.Base(archivePath))
	}
	return Unarchive(archivePath, dest)
}

func newResult(dest string, archive *files.Archive) *Result {
	result := &Result{}
	if archive == nil {
		return result
	}
	for _, f := range archive.Files {
		result.Files = append(result.Files, filepath.Join(dest, f))
	}
	for _, d := range archive.Directories {
		result.Directories = append(result.Directories, filepath.Join(dest, d))
	}
	for _, o := range archive.Overwritten {
		result.Overwritten = append(result.Overwritten, filepath.Join(dest, o))
	}
	result.Size = archive.ExtractedSize
	return result
}

// entryNames lists the entry names of an archive without extracting it
func entryNames(archivePath string) ([]string, error) {
	if GetExtension(archivePath) == ".zip" {
		reader, err := zip.OpenReader(archivePath)
		if err != nil && !errors.Is(err, zip.ErrInsecurePath) {
			return nil, fmt.Errorf("%w: failed to open %s: %w", ErrExtraction, archivePath, err)
		}
		defer func() { _ = reader.Close() }()

		names := make([]string, 0, len(reader.File))
		for _, f := range reader.File {
			names = append(names, f.Name)
		}
		return names, nil
	}

	file, err := os.Open(archivePath)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open %s: %w", ErrExtraction, archivePath, err)
	}
	defer func() { _ = file.Close() }()

	var r io.Reader = file
	switch GetExtension(archivePath) {
	case ".tar.gz", ".tgz":
		gz, err := gzip.NewReader(file)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to read gzip stream %s: %w", ErrExtraction, archivePath, err)
		}
		defer func() { _ = gz.Close() }()
		r = gz
	case ".tar.xz", ".txz":
		xzr, err := xz.NewReader(file)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to read xz stream %s: %w", ErrExtraction, archivePath, err)
		}
		r = xzr
	}

	var names []string
	tr := tar.NewReader(r)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			return names, nil
		}
		if err != nil && !errors.Is(err, tar.ErrInsecurePath) {
			return nil, fmt.Errorf("%w: failed to read tar header in %s: %w", ErrExtraction, archivePath, err)
		}
		names = append(names, header.Name)
		if header.Typeflag == tar.TypeSymlink {
			if filepath.IsAbs(header.Linkname) {
				return nil, fmt.Errorf("%w: %w: symlink %s -> %s", ErrExtraction, ErrIllegalPath, header.Name, header.Linkname)
			}
			names = append(names, filepath.ToSlash(filepath.Join(filepath.Dir(header.Name), header.Linkname)))
		}
	}
}

// checkEntry rejects entry names that are absolute or contain a ".." element
func checkEntry(name string) error {
	if name == "" || filepath.IsAbs(name) || strings.HasPrefix(name, "/") || strings.HasPrefix(name, `\`) || filepath.VolumeName(name) != "" {
		return fmt.Errorf("%w: %w: %q", ErrExtraction, ErrIllegalPath, name)
	}
	for _, part := range strings.FieldsFunc(name, func(r rune) bool { return r == '/' || r == '\\' }) {
		if part == ".." {
			return fmt.Errorf("%w: %w: %q", ErrExtraction, ErrIllegalPath, name)
		}
	}
	return nil
}
