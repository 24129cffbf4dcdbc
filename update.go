package microdb

import (
	"bytes"
	"errors"
	"fmt"
)

// errContractionUnsupported: shrinking a value (delta < 0) would
// require compacting the freed bytes back out of the live region,
// which microcDB never implements either (its update leaves the
// shorter-replacement branch empty). Reported rather than silently
// dropped.
var errContractionUnsupported = errors.New("microdb: contraction not supported")

// rewriteRegion is the shared engine behind both Store.Update and
// Store.AppendElement. It replaces the oldLen bytes starting at
// rewriteStart with payload, shifting every byte from rewriteStart+oldLen
// up to liveEnd right by len(payload)-oldLen, and returns the new live
// end (the address of the first erased byte after the live region).
//
// microcDB's C implementation splits this into two hand-written
// regimes: for a shift smaller than a page, sliding the database
// through one scratch buffer from the high end down a page at a time;
// for a larger shift, copying whole pages with a special case for the
// partial tail. Both regimes are really the same operation ("this
// destination page holds either untouched prior bytes, the new
// payload, or source bytes shifted right"), so this folds them into
// one page-at-a-time rewrite. Destination pages are always processed
// from the highest down to the one containing rewriteStart, which
// guarantees every source byte is read before the page it lives in is
// ever erased (source addresses are always <= their destination
// address once shifted).
func rewriteRegion(dev PageDevice, cfg Config, liveEnd, rewriteStart, oldLen int, payload []byte) (int, error) {
	delta := len(payload) - oldLen
	if delta < 0 {
		return 0, errContractionUnsupported
	}

	newLiveEnd := liveEnd + delta
	if newLiveEnd > cfg.End-1 {
		return 0, errNoMemory
	}

	if delta == 0 && oldLen == 0 {
		return liveEnd, nil
	}

	lowestPage := cfg.pageBase(rewriteStart)
	highestPage := cfg.pageBase(newLiveEnd - 1)
	if delta == 0 {
		// same-length rewrite: nothing moves, so only the page(s)
		// holding the old value change.
		highestPage = cfg.pageBase(rewriteStart + oldLen - 1)
	}
	if highestPage < lowestPage {
		highestPage = lowestPage
	}

	buf := make([]byte, cfg.PageSize)
	for pageBase := highestPage; pageBase >= lowestPage; pageBase -= cfg.PageSize {
		for i := 0; i < cfg.PageSize; i++ {
			destAddr := pageBase + i
			var b byte
			switch {
			// End-1 is never part of the shifted live region (newLiveEnd
			// is kept <= End-1 above); when the rewrite's highest page
			// happens to be the region's last page, this is the page
			// carrying the format sentinel. Pin it explicitly rather
			// than let it fall through to the "beyond live data"
			// erased-fill case below, which would erase the page and
			// never restore it, silently losing the sentinel on a
			// valid expansion.
			case destAddr == cfg.End-1:
				b = Sentinel
			case destAddr < rewriteStart:
				var err error
				b, err = ReadByte(dev, destAddr)
				if err != nil {
					return 0, err
				}
			case destAddr < rewriteStart+len(payload):
				b = payload[destAddr-rewriteStart]
			default:
				srcAddr := destAddr - delta
				if srcAddr < liveEnd {
					var err error
					b, err = ReadByte(dev, srcAddr)
					if err != nil {
						return 0, err
					}
				} else {
					b = cfg.Erased
				}
			}
			buf[i] = b
		}

		if err := dev.ErasePage(pageBase); err != nil {
			return 0, fmt.Errorf("microdb: erase page 0x%X: %w", pageBase, err)
		}
		if err := programBytes(dev, pageBase, buf); err != nil {
			return 0, fmt.Errorf("microdb: program page 0x%X: %w", pageBase, err)
		}
	}

	return newLiveEnd, nil
}

var errNoMemory = errors.New("microdb: update would exceed the configured region")

// Update finds the path, then either appends a member to an object
// (inserting a leading comma when the object is non-empty) or, for any
// scalar kind, overwrites it with value. Arrays are rejected with
// DataIsArray; use AppendElement for those.
func (s *Store) Update(path, value []byte) (Status, error) {
	status, kind, start, end := s.Find(path)
	if status != FoundSuccess {
		return PathNotFound, nil
	}
	if kind == KindArray {
		return DataIsArray, nil
	}

	v := append([]byte(nil), bytes.TrimSuffix(value, []byte("/"))...)
	rewriteQuotes(v)

	var rewriteStart, oldLen int
	var payload []byte

	if kind == KindObject {
		rewriteStart = end
		oldLen = 0
		if end > start+1 {
			payload = append([]byte{','}, v...)
		} else {
			payload = v
		}
	} else {
		rewriteStart = start
		oldLen = end - start + 1
		payload = v
	}

	newLiveEnd, err := rewriteRegion(s.dev, s.cfg, s.cursor, rewriteStart, oldLen, payload)
	switch {
	case errors.Is(err, errNoMemory):
		return NoMemory, nil
	case errors.Is(err, errContractionUnsupported):
		return UpdateFailed, err
	case err != nil:
		return UpdateFailed, err
	}

	s.cursor = newLiveEnd
	return UpdateSuccessful, nil
}
