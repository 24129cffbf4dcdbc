package microdb

import "bytes"

// splitPath breaks a dotted path query into its key segments. Queries
// written for microcDB are dot-terminated before the trailing
// terminator ("u.Jack.Age./"), the form its
// CalculateTotalNumberOfParts/getindexofDot pair requires (it overruns
// its buffer without that final dot); this also accepts the dot-less
// form ("u.Jack.Age/") some callers use instead. Splitting on '.' after
// stripping the terminator yields a trailing empty segment for the
// dot-terminated form, which is dropped here rather than left to
// (wrongly) fail every lookup against an empty interior string token.
func splitPath(query []byte) [][]byte {
	q := bytes.TrimSuffix(query, []byte("/"))
	if len(q) == 0 {
		return nil
	}
	parts := bytes.Split(q, []byte("."))
	if n := len(parts); n > 0 && len(parts[n-1]) == 0 {
		parts = parts[:n-1]
	}
	return parts
}

func readRange(dev PageDevice, start, end int) ([]byte, error) {
	if end < start {
		return nil, nil
	}
	return dev.Read(start, end-start+1)
}

// resolvePath walks the flash document stream token by token, matching
// each dotted-path segment against String tokens (JSON object keys)
// and narrowing the search bound to the matched value's container each
// time it descends, as MicrocDB_Find does. It never builds a tree; the
// whole resolution is a single forward scan per segment plus bound
// narrowing.
//
// Any flash read failure during resolution is folded into NotFound:
// microcDB treats flash access as direct memory dereference that never
// fails, so there was never a distinct "I/O error" status to report
// here either.
func resolvePath(dev PageDevice, cfg Config, query []byte) (Status, Kind, int, int) {
	segments := splitPath(query)
	if len(segments) == 0 {
		return QueryInvalid, KindUndefined, 0, 0
	}

	p := newTokenParser(dev, cfg)
	bound := cfg.End

	var value Token
	for i, seg := range segments {
		matched := false

		for {
			tok, err := p.next()
			if err != nil {
				return NotFound, KindUndefined, 0, 0
			}
			if tok.Kind == KindEnd {
				break
			}
			if tok.Kind != KindString {
				continue
			}
			if tok.End > bound {
				return NotFound, KindUndefined, tok.Start, tok.End
			}

			key, err := readRange(dev, tok.Start, tok.End)
			if err != nil {
				return NotFound, KindUndefined, tok.Start, tok.End
			}
			if !bytes.Equal(key, seg) {
				continue
			}

			next, err := p.next()
			if err != nil {
				return NotFound, KindUndefined, tok.Start, tok.End
			}
			if next.Kind == KindObject || next.Kind == KindArray {
				bound = next.End
			}
			value = next
			matched = true
			break
		}

		if !matched {
			return NotFound, KindUndefined, 0, 0
		}
		if i == len(segments)-1 {
			return FoundSuccess, value.Kind, value.Start, value.End
		}
	}

	return NotFound, KindUndefined, 0, 0
}
