package planning

import (
	"os"
	"path/filepath"
	"strings"
)

func readFileBestEffort(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return data, nil
}

func stripExt(name string) string {
	ext := filepath.Ext(name)
	return strings.TrimSuffix(name, ext)
}

func hasCaseInsensitiveSuffix(s, suffix string) bool {
	return len(s) >= len(suffix) && strings.EqualFold(s[len(s)-len(suffix):], suffix)
}

func splitPathSegments(path string) []string {
	path = filepath.ToSlash(path)
	return strings.Split(path, "/")
}

func equalFold(a, b string) bool {
	return strings.EqualFold(a, b)
}

func appendUnique(list []string, v string) []string {
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}
