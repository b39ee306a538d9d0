package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Fields is a partial update keyed by dotted field paths, e.g. "stats.today".
type Fields map[string]any

type increment struct {
	n int64
}

// Increment returns a field value that adds n to the stored number when used
// in Update. A missing or non-numeric field is treated as zero.
func Increment(n int64) any {
	return increment{n: n}
}

func decodeObject(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("document is not an object")
	}
	return m, nil
}

// toObject converts any JSON-encodable value into a generic document.
func toObject(v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return decodeObject(data)
}

func toValue(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode field: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

// mergeObjects deep-merges src into dst. Nested objects merge, everything
// else is replaced.
func mergeObjects(dst, src map[string]any) {
	for k, v := range src {
		if sm, ok := v.(map[string]any); ok {
			if dm, ok := dst[k].(map[string]any); ok {
				mergeObjects(dm, sm)
				continue
			}
		}
		dst[k] = v
	}
}

func applyFields(doc map[string]any, f Fields) error {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		parts := strings.Split(k, ".")
		parent := doc
		for _, p := range parts[:len(parts)-1] {
			child, ok := parent[p].(map[string]any)
			if !ok {
				child = make(map[string]any)
				parent[p] = child
			}
			parent = child
		}
		last := parts[len(parts)-1]

		if inc, ok := f[k].(increment); ok {
			parent[last] = addNumber(parent[last], inc.n)
			continue
		}
		v, err := toValue(f[k])
		if err != nil {
			return fmt.Errorf("field %q: %w", k, err)
		}
		parent[last] = v
	}
	return nil
}

func addNumber(cur any, n int64) json.Number {
	num, ok := cur.(json.Number)
	if !ok {
		return json.Number(strconv.FormatInt(n, 10))
	}
	if i, err := num.Int64(); err == nil {
		return json.Number(strconv.FormatInt(i+n, 10))
	}
	if f, err := num.Float64(); err == nil {
		return json.Number(strconv.FormatFloat(f+float64(n), 'f', -1, 64))
	}
	return json.Number(strconv.FormatInt(n, 10))
}
