package store

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidPath = errors.New("invalid path")

// splitDocPath validates a document path and returns its cleaned form, the
// parent collection and the document id. Document paths have an even number
// of segments: "projects/p-1", "users/u1/settings/meta".
func splitDocPath(path string) (clean, collection, id string, err error) {
	clean = strings.Trim(path, "/")
	segs := strings.Split(clean, "/")
	if clean == "" || len(segs)%2 != 0 || hasEmpty(segs) {
		return "", "", "", fmt.Errorf("%w: document %q", ErrInvalidPath, path)
	}
	i := strings.LastIndex(clean, "/")
	return clean, clean[:i], clean[i+1:], nil
}

// cleanCollection validates a collection path (odd number of segments).
func cleanCollection(path string) (string, error) {
	clean := strings.Trim(path, "/")
	segs := strings.Split(clean, "/")
	if clean == "" || len(segs)%2 != 1 || hasEmpty(segs) {
		return "", fmt.Errorf("%w: collection %q", ErrInvalidPath, path)
	}
	return clean, nil
}

func hasEmpty(segs []string) bool {
	for _, s := range segs {
		if s == "" {
			return true
		}
	}
	return false
}
