package syntax

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"slices"
	"strings"

	"github.com/lib/pq"

	"github.com/syssam/sqlplan"
)

// Default sentinel code points used to embed entity refs inside SQL text.
// Both live in the Unicode private use area, so they are assumed absent
// from user-written SQL.
const (
	DefaultOpen  = '\ue000'
	DefaultClose = '\ue001'
)

// Syntax defines the character protocol for tagged SQL text: two sentinel
// code points delimiting embedded entity refs.
//
// The zero value is not usable; construct with New or NewWith.
type Syntax struct {
	open  rune
	close rune
}

// New returns a Syntax using the default sentinel code points.
func New() *Syntax {
	return &Syntax{open: DefaultOpen, close: DefaultClose}
}

// NewWith returns a Syntax using custom sentinel code points. The two
// sentinels must differ.
func NewWith(open, close rune) (*Syntax, error) {
	if open == close {
		return nil, sqlplan.NewInvalidTaggedTextError(string(open), 0)
	}
	return &Syntax{open: open, close: close}, nil
}

// Open returns the opening sentinel.
func (s *Syntax) Open() rune { return s.open }

// Close returns the closing sentinel.
func (s *Syntax) Close() rune { return s.close }

// QuoteIdent renders a dotted, quoted SQL identifier, e.g. "public"."user".
func (s *Syntax) QuoteIdent(parts ...string) string {
	quoted := make([]string, len(parts))
	for i, p := range parts {
		quoted[i] = pq.QuoteIdentifier(p)
	}
	return strings.Join(quoted, ".")
}

// Tag wraps a single ref in the sentinel pair.
func (s *Syntax) Tag(ref string) string {
	return string(s.open) + ref + string(s.close)
}

// TagAll wraps every ref in the sentinel pair and concatenates the results.
func (s *Syntax) TagAll(refs []string) string {
	var b strings.Builder
	for _, ref := range refs {
		b.WriteRune(s.open)
		b.WriteString(ref)
		b.WriteRune(s.close)
	}
	return b.String()
}

// Parse extracts every sentinel-wrapped ref from raw, returning the clean
// SQL text and the sorted set of refs. Unbalanced sentinels are rejected
// with an InvalidTaggedTextError: a closing sentinel outside a tag, an
// opening sentinel inside a tag, or an unterminated tag.
func (s *Syntax) Parse(raw string) (Text, error) {
	var (
		clean   strings.Builder
		ref     strings.Builder
		refs    []string
		inTag   bool
		openPos int
	)
	for i, r := range raw {
		switch {
		case r == s.open:
			if inTag {
				return Text{}, sqlplan.NewInvalidTaggedTextError(raw, i)
			}
			inTag = true
			openPos = i
			ref.Reset()
		case r == s.close:
			if !inTag {
				return Text{}, sqlplan.NewInvalidTaggedTextError(raw, i)
			}
			inTag = false
			if ref.Len() > 0 {
				refs = append(refs, ref.String())
			}
		case inTag:
			ref.WriteRune(r)
		default:
			clean.WriteRune(r)
		}
	}
	if inTag {
		return Text{}, sqlplan.NewInvalidTaggedTextError(raw, openPos)
	}
	return Text{syn: s, sql: clean.String(), refs: refSet(refs)}, nil
}

// NewText builds a Text directly from clean SQL and an explicit ref set,
// without scanning for sentinels.
func (s *Syntax) NewText(sql string, refs ...string) Text {
	return Text{syn: s, sql: sql, refs: refSet(refs)}
}

// NewIdent builds an identifier from its dotted parts and the refs of the
// entities it denotes. The SQL form is the quoted identifier.
func (s *Syntax) NewIdent(parts []string, refs ...string) Ident {
	return Ident{Text{syn: s, sql: s.QuoteIdent(parts...), refs: refSet(refs)}}
}

// refSet sorts and deduplicates refs in place of set semantics.
func refSet(refs []string) []string {
	if len(refs) == 0 {
		return nil
	}
	out := slices.Clone(refs)
	slices.Sort(out)
	return slices.Compact(out)
}

// Mode selects the rendering of a Text.
type Mode int

const (
	// ModeSQL renders the clean SQL text only.
	ModeSQL Mode = iota

	// ModeTagged renders the clean SQL text followed by every ref as a
	// sentinel-wrapped tag, suitable for re-parsing downstream.
	ModeTagged
)

// Text is a SQL fragment paired with the set of entity refs it mentions.
// Equality and hashing consider the clean SQL only; the refs ride along for
// dependency discovery.
type Text struct {
	syn  *Syntax
	sql  string
	refs []string
}

// SQL returns the clean SQL text.
func (t Text) SQL() string { return t.sql }

// Refs returns a copy of the sorted ref set.
func (t Text) Refs() []string {
	return slices.Clone(t.refs)
}

// HasRefs reports whether the fragment mentions any entity.
func (t Text) HasRefs() bool { return len(t.refs) > 0 }

// Equal reports whether two fragments have the same clean SQL. Refs are
// intentionally ignored.
func (t Text) Equal(o Text) bool { return t.sql == o.sql }

// Hash returns a deterministic hash of the clean SQL.
func (t Text) Hash() uint64 {
	sum := sha256.Sum256([]byte(t.sql))
	return binary.BigEndian.Uint64(sum[:8])
}

// Format renders the fragment in the given mode. Unknown modes are rejected
// with an InvalidFormatError.
func (t Text) Format(mode Mode) (string, error) {
	switch mode {
	case ModeSQL:
		return t.sql, nil
	case ModeTagged:
		if len(t.refs) == 0 {
			return t.sql, nil
		}
		return t.sql + t.syn.TagAll(t.refs), nil
	default:
		return "", sqlplan.NewInvalidFormatError(int(mode))
	}
}

// String renders the tagged form, so interpolating a Text into another SQL
// fragment carries its refs along.
func (t Text) String() string {
	out, _ := t.Format(ModeTagged)
	return out
}

// Ident is a quoted, dotted SQL identifier carrying the refs of the
// entities it denotes. Interpolating an Ident into SQL text embeds those
// refs as sentinel tags.
type Ident struct {
	Text
}

// HashString returns a short deterministic hex digest of s. It is used to
// disambiguate refs that depend on value sequences, such as function
// argument types.
func HashString(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:6])
}
