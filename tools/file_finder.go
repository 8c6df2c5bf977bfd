package tools

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	ModelDescriptorFile = "pc_model.json"
)

// Extensions of node point files
var PointFileExtensions = []string{".bin", ".bytes"}

type FileFinder interface {
	FindModelDirectory(input string) (string, error)
	FindPointFiles(modelDir string) ([]string, error)
}

type StandardFileFinder struct{}

func NewStandardFileFinder() FileFinder {
	return &StandardFileFinder{}
}

// Resolves the folder holding pc_model.json. The input may be the descriptor
// itself, its folder, or a folder with exactly one model among its direct
// subfolders.
func (f *StandardFileFinder) FindModelDirectory(input string) (string, error) {
	info, err := os.Stat(input)
	if err != nil {
		return "", err
	}

	if !info.IsDir() {
		if filepath.Base(input) != ModelDescriptorFile {
			return "", fmt.Errorf("%s is not a %s file", input, ModelDescriptorFile)
		}
		return filepath.Dir(input), nil
	}

	if isFile(filepath.Join(input, ModelDescriptorFile)) {
		return input, nil
	}

	entries, err := os.ReadDir(input)
	if err != nil {
		return "", err
	}
	var found []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(input, entry.Name())
		if isFile(filepath.Join(dir, ModelDescriptorFile)) {
			found = append(found, dir)
		}
	}

	switch len(found) {
	case 0:
		return "", fmt.Errorf("no %s found in %s", ModelDescriptorFile, input)
	case 1:
		return found[0], nil
	}
	return "", fmt.Errorf("%d models found in %s, select one of %s", len(found), input, strings.Join(found, ", "))
}

// Lists the point files below modelDir, as paths relative to it
func (f *StandardFileFinder) FindPointFiles(modelDir string) ([]string, error) {
	var pointFiles = make([]string, 0)

	err := filepath.Walk(
		modelDir,
		func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() || !IsPointFile(info.Name()) {
				return nil
			}
			rel, err := filepath.Rel(modelDir, path)
			if err != nil {
				return err
			}
			pointFiles = append(pointFiles, rel)
			return nil
		},
	)
	if err != nil {
		return nil, err
	}

	sort.Strings(pointFiles)
	return pointFiles, nil
}

func IsPointFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range PointFileExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
