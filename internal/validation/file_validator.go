package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"vgpulse/internal/infrastructure"
	"vgpulse/pkg/contracts/domain"
)

// datasetExtensions lists the file types the loader can read
var datasetExtensions = map[string]bool{
	".csv":  true,
	".xlsx": true,
}

// FileInfo describes a dataset file found on disk
type FileInfo struct {
	Path    string    `json:"path"`
	Name    string    `json:"name"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}

// FileValidator checks dataset inputs and export outputs before use
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	return &FileValidator{
		logger: infrastructure.WithComponent(logger, "file_validator"),
	}
}

// ValidateFile checks that path exists, is a regular file and can be opened
func (v *FileValidator) ValidateFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Error("File does not exist",
			slog.String("file", path))
		return fmt.Errorf("file %s does not exist", path)
	}
	if err != nil {
		v.logger.Error("Failed to stat file",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to stat file %s: %w", path, err)
	}
	if info.IsDir() {
		v.logger.Error("Path is a directory, not a file",
			slog.String("path", path))
		return fmt.Errorf("%s is a directory, not a file", path)
	}

	file, err := os.Open(path)
	if err != nil {
		v.logger.Error("File is not readable",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return fmt.Errorf("file %s is not readable: %w", path, err)
	}
	file.Close()

	v.logger.Debug("File validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateDataset checks that path is a readable CSV or XLSX file. Failures
// wrap domain.ErrDataUnavailable.
func (v *FileValidator) ValidateDataset(path string) error {
	if err := v.ValidateFile(path); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrDataUnavailable, err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if !datasetExtensions[ext] {
		v.logger.Error("Unsupported dataset file type",
			slog.String("file", path),
			slog.String("extension", ext))
		return fmt.Errorf("%w: file %s is not a CSV or XLSX file (extension: %s)", domain.ErrDataUnavailable, path, ext)
	}

	if strings.HasPrefix(filepath.Base(path), "~$") {
		v.logger.Warn("Dataset is a temporary Excel file",
			slog.String("file", path))
		return fmt.Errorf("%w: file %s is a temporary Excel file", domain.ErrDataUnavailable, path)
	}

	return nil
}

// ValidateOutputDirectory ensures dir exists, creating it if needed, and is
// writable
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	testFile := filepath.Join(dir, ".write_test")
	file, err := os.Create(testFile)
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("output directory %s is not writable: %w", dir, err)
	}
	file.Close()
	os.Remove(testFile)

	v.logger.Debug("Output directory validated",
		slog.String("directory", dir))
	return nil
}

// FindDatasets lists the CSV and XLSX files in dir, newest first
func (v *FileValidator) FindDatasets(dir string) ([]FileInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var files []FileInfo
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, "~$") {
			continue
		}
		if !datasetExtensions[strings.ToLower(filepath.Ext(name))] {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{
			Path:    filepath.Join(dir, name),
			Name:    name,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		if files[i].ModTime.Equal(files[j].ModTime) {
			return files[i].Name < files[j].Name
		}
		return files[i].ModTime.After(files[j].ModTime)
	})

	v.logger.Debug("Datasets discovered",
		slog.String("directory", dir),
		slog.Int("count", len(files)))
	return files, nil
}
