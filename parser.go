package microdb

// Token is one parsed unit of the on-flash byte stream: an Object,
// Array, String, Bool, Primitive, Undefined separator, or End sentinel,
// together with the inclusive flash addresses of its payload. For
// strings, Start/End bound the interior of the quotes; for
// objects/arrays, the braces/brackets themselves are included.
type Token struct {
	Kind  Kind
	Start int
	End   int
}

type parserState int

const (
	atRoot parserState = iota
	descended
)

// tokenParser is a streaming token parser over the flash region,
// yielding one Token per next() call. Depth tracking for bracket
// balancing is local to each next() call, unlike microcDB's C parser,
// which kept a module-scope levelCounter/inlevelcntr pair. The
// root-vs-descended distinction is likewise two explicit states rather
// than that parser's firstTime latch.
type tokenParser struct {
	dev PageDevice
	cfg Config

	pos     int
	endAddr int
	state   parserState
}

func newTokenParser(dev PageDevice, cfg Config) *tokenParser {
	p := &tokenParser{dev: dev, cfg: cfg}
	p.reset()
	return p
}

// reset implements init(): re-entry point after the parser has walked
// off the end, or to start a fresh scan from the top. The parser is not
// restartable mid-document any other way.
func (p *tokenParser) reset() {
	p.pos = p.cfg.Start
	p.endAddr = p.cfg.End
	p.state = atRoot
}

func (p *tokenParser) byteAt(addr int) (byte, error) {
	return ReadByte(p.dev, addr)
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func isTokenStart(b byte) bool {
	return b == '"' || b == 'f' || b == 't' || isDigit(b) || b == '[' || b == '{'
}

// next emits the next token, advancing internal position.
func (p *tokenParser) next() (Token, error) {
	if p.pos >= p.endAddr {
		return Token{Kind: KindEnd, Start: p.pos, End: p.pos}, nil
	}

	b, err := p.byteAt(p.pos)
	if err != nil {
		return Token{}, err
	}

	switch {
	case b == '{':
		if p.state == atRoot {
			return p.parseRootObject()
		}
		return p.parseContainer(KindObject)
	case b == '[':
		return p.parseContainer(KindArray)
	case b == '"':
		return p.parseString()
	case b == 't':
		return p.parseBool(p.pos, 4)
	case b == 'f':
		return p.parseBool(p.pos, 5)
	case isDigit(b):
		return p.parsePrimitive()
	case b == '}' || b == ']' || b == ',':
		p.pos++
		return Token{Kind: KindUndefined, Start: p.pos - 1, End: p.pos - 1}, nil
	default:
		return Token{Kind: KindUndefined, Start: p.pos, End: p.pos}, nil
	}
}

// parseRootObject handles the very first '{' seen after reset: it
// scans forward for the first '/' terminator, establishing endAddr for
// every subsequent call, then rewinds pos to Start+1 so the next call
// descends into the root object's members. A live document containing
// an unescaped '/' inside a string would end the scan early; microcDB
// has the same limitation (its live length comes from a strchr-style
// scan for '/'), and the documents this store accepts never contain
// one.
func (p *tokenParser) parseRootObject() (Token, error) {
	start := p.pos
	scan := p.pos + 1
	depth := -1
	for {
		b, err := p.byteAt(scan)
		if err != nil {
			return Token{}, err
		}
		if b == '/' {
			break
		}
		switch b {
		case '{', '[':
			depth++
		case '}', ']':
			if depth != -1 {
				depth--
			}
		}
		scan++
	}
	end := scan - 1

	p.endAddr = end
	p.state = descended
	p.pos = start + 1

	return Token{Kind: KindObject, Start: start, End: end}, nil
}

// parseContainer handles a non-root '{' or '[': simple depth-balanced
// scanning bounded by p.endAddr, returning a token whose End is the
// matching closing brace/bracket (inclusive).
func (p *tokenParser) parseContainer(kind Kind) (Token, error) {
	start := p.pos
	depth := 0
	pos := start
	for pos < p.endAddr {
		b, err := p.byteAt(pos)
		if err != nil {
			return Token{}, err
		}
		switch b {
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				goto matched
			}
		}
		pos++
	}
matched:
	end := pos
	if end >= p.endAddr {
		end = p.endAddr - 1
	}

	p.pos = start + 1

	return Token{Kind: kind, Start: start, End: end}, nil
}

// parseString reads a quoted string's interior, then skips any run of
// separator characters (: , ] }) up to the next significant byte.
func (p *tokenParser) parseString() (Token, error) {
	start := p.pos + 1
	pos := start
	for {
		b, err := p.byteAt(pos)
		if err != nil {
			return Token{}, err
		}
		if b == '"' {
			break
		}
		pos++
	}
	end := pos - 1
	pos++ // past closing quote

	if pos < p.endAddr {
		b, err := p.byteAt(pos)
		if err != nil {
			return Token{}, err
		}
		if b == ':' || b == ',' || b == ']' || b == '}' {
			for pos < p.endAddr {
				b, err := p.byteAt(pos)
				if err != nil {
					return Token{}, err
				}
				if b == '"' || isTokenStart(b) {
					break
				}
				pos++
			}
		}
	}

	p.pos = pos
	return Token{Kind: KindString, Start: start, End: end}, nil
}

// parseBool emits a fixed-width Bool token ("true" is 4 bytes, "false"
// is 5), positioning pos right after the literal.
func (p *tokenParser) parseBool(start, width int) (Token, error) {
	end := start + width - 1
	p.pos = start + width
	return Token{Kind: KindBool, Start: start, End: end}, nil
}

// parsePrimitive scans to the next comma, the enclosing container's
// closing brace/bracket, or the region end, whichever comes first; if
// a comma was not what stopped the scan, it rewinds to the last numeric
// digit so trailing separators are never swallowed into the value.
func (p *tokenParser) parsePrimitive() (Token, error) {
	start := p.pos

	pos := start
	foundComma := false
	for pos < p.endAddr {
		b, err := p.byteAt(pos)
		if err != nil {
			return Token{}, err
		}
		if b == ',' {
			foundComma = true
			break
		}
		if b == '}' || b == ']' {
			break
		}
		pos++
	}

	var end int
	if foundComma {
		end = pos - 1
		pos++ // past comma
	} else {
		rewind := pos
		for rewind > start {
			rewind--
			b, err := p.byteAt(rewind)
			if err != nil {
				return Token{}, err
			}
			if isDigit(b) {
				break
			}
		}
		end = rewind
		pos = end + 1
	}

	p.pos = pos
	return Token{Kind: KindPrimitive, Start: start, End: end}, nil
}
