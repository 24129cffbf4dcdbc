package microdb

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newParserOver(t *testing.T, doc string) (*tokenParser, *MemDevice, Config) {
	t.Helper()
	cfg := Config{Start: 0, End: 256, PageSize: 128, Erased: 0xFF}
	dev := NewMemDevice(cfg)
	// write the document directly, bypassing Store so the parser is
	// exercised in isolation from the append writer.
	data := append([]byte(doc), '/')
	err := programBytes(dev, cfg.Start, data)
	assert.NoError(t, err)
	return newTokenParser(dev, cfg), dev, cfg
}

func tokenText(t *testing.T, dev PageDevice, tok Token) string {
	t.Helper()
	if tok.End < tok.Start {
		return ""
	}
	b, err := readRange(dev, tok.Start, tok.End)
	assert.NoError(t, err)
	return string(b)
}

func TestParserRootObjectSpansWholeDocument(t *testing.T) {
	p, dev, _ := newParserOver(t, `{"a":1}`)
	tok, err := p.next()
	assert.NoError(t, err)
	assert.Equal(t, KindObject, tok.Kind)
	assert.Equal(t, `{"a":1}`, tokenText(t, dev, tok))
}

func TestParserDescendsIntoMembers(t *testing.T) {
	p, dev, _ := newParserOver(t, `{"a":1,"b":"x"}`)
	_, err := p.next() // root object
	assert.NoError(t, err)

	key, err := p.next()
	assert.NoError(t, err)
	assert.Equal(t, KindString, key.Kind)
	assert.Equal(t, "a", tokenText(t, dev, key))

	val, err := p.next()
	assert.NoError(t, err)
	assert.Equal(t, KindPrimitive, val.Kind)
	assert.Equal(t, "1", tokenText(t, dev, val))

	key2, err := p.next()
	assert.NoError(t, err)
	assert.Equal(t, "b", tokenText(t, dev, key2))

	val2, err := p.next()
	assert.NoError(t, err)
	assert.Equal(t, KindString, val2.Kind)
	assert.Equal(t, "x", tokenText(t, dev, val2))
}

func TestParserNestedObjectBalancesBraces(t *testing.T) {
	p, dev, _ := newParserOver(t, `{"u":{"Jack":{"Age":28}}}`)
	_, err := p.next() // root
	assert.NoError(t, err)

	key, err := p.next()
	assert.NoError(t, err)
	assert.Equal(t, "u", tokenText(t, dev, key))

	val, err := p.next()
	assert.NoError(t, err)
	assert.Equal(t, KindObject, val.Kind)
	assert.Equal(t, `{"Jack":{"Age":28}}`, tokenText(t, dev, val))
}

func TestParserArrayToken(t *testing.T) {
	p, dev, _ := newParserOver(t, `{"g":[1,2,3]}`)
	_, err := p.next()
	assert.NoError(t, err)
	_, err = p.next() // key "g"
	assert.NoError(t, err)
	val, err := p.next()
	assert.NoError(t, err)
	assert.Equal(t, KindArray, val.Kind)
	assert.Equal(t, `[1,2,3]`, tokenText(t, dev, val))
}

func TestParserBoolTokens(t *testing.T) {
	p, _, _ := newParserOver(t, `{"a":true,"b":false}`)
	_, err := p.next()
	assert.NoError(t, err)
	_, err = p.next() // key a
	assert.NoError(t, err)
	v1, err := p.next()
	assert.NoError(t, err)
	assert.Equal(t, KindBool, v1.Kind)
	assert.Equal(t, 4, v1.End-v1.Start+1)

	// a bool does not skip the separator after it; the ',' comes back
	// as its own Undefined token.
	sep, err := p.next()
	assert.NoError(t, err)
	assert.Equal(t, KindUndefined, sep.Kind)

	_, err = p.next() // key b
	assert.NoError(t, err)
	v2, err := p.next()
	assert.NoError(t, err)
	assert.Equal(t, KindBool, v2.Kind)
	assert.Equal(t, 5, v2.End-v2.Start+1)
}

func TestParserPrimitiveRewindsWithoutComma(t *testing.T) {
	p, dev, _ := newParserOver(t, `{"a":42}`)
	_, err := p.next()
	assert.NoError(t, err)
	_, err = p.next() // key
	assert.NoError(t, err)
	val, err := p.next()
	assert.NoError(t, err)
	assert.Equal(t, KindPrimitive, val.Kind)
	assert.Equal(t, "42", tokenText(t, dev, val))
}

// TestParserPrimitiveAfterSiblingContainer: the value of "c" follows a
// sibling object at the same nesting level; the parser must scan the
// whole primitive rather than stopping at the earlier sibling's bound.
func TestParserPrimitiveAfterSiblingContainer(t *testing.T) {
	p, dev, _ := newParserOver(t, `{"a":{"b":5},"c":77}`)
	for {
		tok, err := p.next()
		assert.NoError(t, err)
		if tok.Kind == KindEnd {
			t.Fatal("walked off the region without seeing the primitive after the sibling object")
		}
		if tok.Kind == KindString && tokenText(t, dev, tok) == "c" {
			break
		}
	}
	val, err := p.next()
	assert.NoError(t, err)
	assert.Equal(t, KindPrimitive, val.Kind)
	assert.Equal(t, "77", tokenText(t, dev, val))
}

func TestParserEmitsEndAtRegionBound(t *testing.T) {
	p, _, _ := newParserOver(t, `{"a":1}`)
	for {
		tok, err := p.next()
		assert.NoError(t, err)
		if tok.Kind == KindEnd {
			return
		}
	}
}

func TestParserResetReplaysFromStart(t *testing.T) {
	p, dev, _ := newParserOver(t, `{"a":1}`)
	first, err := p.next()
	assert.NoError(t, err)
	p.reset()
	second, err := p.next()
	assert.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, tokenText(t, dev, first), tokenText(t, dev, second))
}
