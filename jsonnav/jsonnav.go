// Package jsonnav navigates loosely-structured JSON documents that have been
// decoded into interface values. Every upstream schema this bot consumes is
// undocumented and varies by post sub-type, so lookups return a NavError
// naming the failing path segment and the expected shape instead of
// scattering nil checks through the scrapers.
package jsonnav

import "fmt"

// NavError reports a failed traversal step.
type NavError struct {
	// Path is the full requested path, for context in logs.
	Path []any
	// Segment is the path element that failed.
	Segment any
	// Expected names the shape that was required (object, array, string,
	// bool, number, url).
	Expected string
}

func (e *NavError) Error() string {
	return fmt.Sprintf("json navigation failed at %v (path %v): expected %s", e.Segment, e.Path, e.Expected)
}

func navErr(path []any, segment any, expected string) *NavError {
	return &NavError{Path: path, Segment: segment, Expected: expected}
}

// Get walks doc along path. String segments index objects, int segments
// index arrays. It fails on the first missing key, out-of-range index or
// shape mismatch.
func Get(doc any, path ...any) (any, error) {
	cur := doc
	for _, seg := range path {
		switch key := seg.(type) {
		case string:
			obj, ok := cur.(map[string]any)
			if !ok {
				return nil, navErr(path, seg, "object")
			}
			val, ok := obj[key]
			if !ok {
				return nil, navErr(path, seg, "object containing key")
			}
			cur = val
		case int:
			arr, ok := cur.([]any)
			if !ok {
				return nil, navErr(path, seg, "array")
			}
			if key < 0 || key >= len(arr) {
				return nil, navErr(path, seg, fmt.Sprintf("array of length > %d", key))
			}
			cur = arr[key]
		default:
			return nil, navErr(path, seg, "string key or int index segment")
		}
	}
	return cur, nil
}

// Object returns the object at path.
func Object(doc any, path ...any) (map[string]any, error) {
	v, err := Get(doc, path...)
	if err != nil {
		return nil, err
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, navErr(path, last(path), "object")
	}
	return obj, nil
}

// Array returns the array at path.
func Array(doc any, path ...any) ([]any, error) {
	v, err := Get(doc, path...)
	if err != nil {
		return nil, err
	}
	arr, ok := v.([]any)
	if !ok {
		return nil, navErr(path, last(path), "array")
	}
	return arr, nil
}

// String returns the string at path.
func String(doc any, path ...any) (string, error) {
	v, err := Get(doc, path...)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", navErr(path, last(path), "string")
	}
	return s, nil
}

// Bool returns the bool at path.
func Bool(doc any, path ...any) (bool, error) {
	v, err := Get(doc, path...)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, navErr(path, last(path), "bool")
	}
	return b, nil
}

// Float returns the number at path. encoding/json decodes every JSON number
// into float64.
func Float(doc any, path ...any) (float64, error) {
	v, err := Get(doc, path...)
	if err != nil {
		return 0, err
	}
	f, ok := v.(float64)
	if !ok {
		return 0, navErr(path, last(path), "number")
	}
	return f, nil
}

func last(path []any) any {
	if len(path) == 0 {
		return nil
	}
	return path[len(path)-1]
}
