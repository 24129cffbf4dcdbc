package microdb

import (
	"bytes"
	"errors"
)

// AppendElement finds path, requires it to resolve to an array, then
// inserts element (comma-prefixed when the array already has members)
// immediately before the closing ']', reusing the same shift engine
// Update uses for object members.
func (s *Store) AppendElement(path, element []byte) (Status, error) {
	status, kind, start, end := s.Find(path)
	if status != FoundSuccess {
		return PathNotFound, nil
	}
	if kind != KindArray {
		return PathNotArraylist, nil
	}

	v := append([]byte(nil), bytes.TrimSuffix(element, []byte("/"))...)
	rewriteQuotes(v)

	payload := v
	if end > start+1 {
		payload = append([]byte{','}, v...)
	}

	newLiveEnd, err := rewriteRegion(s.dev, s.cfg, s.cursor, end, 0, payload)
	switch {
	case errors.Is(err, errNoMemory):
		return NoMemory, nil
	case err != nil:
		return UpdateFailed, err
	}

	s.cursor = newLiveEnd
	return UpdateSuccessful, nil
}
