package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

//InSlice returns true if given string appears in given slice
func InSlice(lookingFor string, slice []string) bool {
	for _, s := range slice {
		if s == lookingFor {
			return true
		}
	}

	return false
}

//ListDir returns a list of files/ directories in given path
func ListDir(path string) ([]string, error) {
	names := make([]string, 0)
	if entries, err := os.ReadDir(path); err != nil {
		return nil, fmt.Errorf("ListDir: Error, got '%w'", err)
	} else {
		for _, e := range entries {
			names = append(names, e.Name())
		}
	}

	return names, nil
}

//IsImageFile reports whether given path has one of ImageExtensions (case insensitive)
func IsImageFile(path string) bool {
	return InSlice(strings.ToLower(filepath.Ext(path)), ImageExtensions)
}

//ListImages returns full paths of the image files in given directory, sorted by name
func ListImages(dir string) ([]string, error) {
	names, err := ListDir(dir)
	if err != nil {
		return nil, err
	}

	sort.Strings(names)

	paths := make([]string, 0, len(names))
	for _, name := range names {
		if IsImageFile(name) {
			paths = append(paths, filepath.Join(dir, name))
		}
	}

	return paths, nil
}
