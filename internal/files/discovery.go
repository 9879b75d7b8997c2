package files

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	apperrors "github.com/Zakintaliban/indonesia-train-passenger-forecasting/internal/errors"
)

// tableExtensions are the input formats the loader understands
var tableExtensions = map[string]bool{
	".csv":  true,
	".xlsx": true,
	".xlsm": true,
}

// FileInfo represents information about a discovered file
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// Discovery expands input arguments into table files
type Discovery struct {
	basePath string
	logger   *slog.Logger
}

// NewDiscovery creates a new file discovery instance. Relative arguments are
// resolved against basePath.
func NewDiscovery(basePath string, logger *slog.Logger) *Discovery {
	if logger == nil {
		logger = slog.Default()
	}
	return &Discovery{basePath: basePath, logger: logger}
}

// IsTableFile reports whether name has a supported table extension and is
// not an Excel lock file
func IsTableFile(name string) bool {
	base := filepath.Base(name)
	if strings.HasPrefix(base, "~$") || strings.HasPrefix(base, ".") {
		return false
	}
	return tableExtensions[strings.ToLower(filepath.Ext(base))]
}

// Expand turns files, directories and glob patterns into a list of table
// files. Directories and patterns contribute their table files sorted by
// name; explicit files are kept in argument order whatever their extension.
// A path listed twice is kept once.
func (d *Discovery) Expand(args []string) ([]FileInfo, error) {
	var files []FileInfo
	seen := make(map[string]bool)
	add := func(found ...FileInfo) {
		for _, f := range found {
			if seen[f.Path] {
				continue
			}
			seen[f.Path] = true
			files = append(files, f)
		}
	}

	for _, arg := range args {
		path := d.resolvePath(arg)

		if strings.ContainsAny(arg, "*?[") {
			found, err := d.FindFilesByPattern(filepath.Dir(path), filepath.Base(path))
			if err != nil {
				return nil, err
			}
			if len(found) == 0 {
				return nil, apperrors.NewConfigError("pattern matches no input files", nil).
					WithContext("pattern", arg)
			}
			add(found...)
			continue
		}

		info, err := os.Stat(path)
		if err != nil {
			return nil, apperrors.NewConfigError("input not found", err).WithContext("input", arg)
		}

		if info.IsDir() {
			found, err := d.FindTableFiles(path)
			if err != nil {
				return nil, err
			}
			if len(found) == 0 {
				return nil, apperrors.NewConfigError("directory contains no CSV or XLSX files", nil).
					WithContext("input", arg)
			}
			add(found...)
			continue
		}

		add(FileInfo{Path: path, Name: info.Name(), Size: info.Size(), ModTime: info.ModTime()})
	}

	d.logger.Debug("inputs expanded",
		slog.Int("arguments", len(args)),
		slog.Int("files", len(files)))

	return files, nil
}

// FindTableFiles finds all CSV and XLSX files in dir, sorted by name
func (d *Discovery) FindTableFiles(dir string) ([]FileInfo, error) {
	fullPath := d.resolvePath(dir)

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", fullPath, err)
	}

	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() || !IsTableFile(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{
			Path:    filepath.Join(fullPath, entry.Name()),
			Name:    entry.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sortByName(files)
	return files, nil
}

// FindFilesByPattern finds table files matching a glob pattern
func (d *Discovery) FindFilesByPattern(dir string, pattern string) ([]FileInfo, error) {
	searchPattern := filepath.Join(d.resolvePath(dir), pattern)

	matches, err := filepath.Glob(searchPattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
	}

	var files []FileInfo
	for _, match := range matches {
		info, err := os.Stat(match)
		if err != nil || info.IsDir() || !IsTableFile(match) {
			continue
		}
		files = append(files, FileInfo{
			Path:    match,
			Name:    filepath.Base(match),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sortByName(files)
	return files, nil
}

func (d *Discovery) resolvePath(path string) string {
	if filepath.IsAbs(path) || d.basePath == "" {
		return path
	}
	return filepath.Join(d.basePath, path)
}

func sortByName(files []FileInfo) {
	sort.Slice(files, func(i, j int) bool {
		return files[i].Name < files[j].Name
	})
}

// Paths returns the paths of files
func Paths(files []FileInfo) []string {
	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.Path
	}
	return paths
}
