package value

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// TraceSink receives the verbose coercion trace emitted during coercion. It
// is satisfied by pkg/condexpr.TraceWriter; kept minimal here to avoid a
// cycle between the value model and the public package.
type TraceSink interface {
	Verbose(msg string)
}

func indent(depth int) string { return strings.Repeat("  ", depth) }

func traceSuccess(sink TraceSink, depth int, kind Kind, rendered string) {
	if sink == nil {
		return
	}
	sink.Verbose(indent(depth) + "=> (" + kind.String() + ") " + rendered)
}

func traceFailure(sink TraceSink, depth int, from, to Kind) {
	if sink == nil {
		return
	}
	sink.Verbose(indent(depth) + "=> Unable to coerce " + from.String() + " to " + to.String() + ".")
}

// ToBoolean is total: every kind has a defined Boolean projection.
func ToBoolean(v Value, sink TraceSink, depth int) bool {
	var b bool
	switch v.kind {
	case Boolean:
		b = v.b
	case Number:
		b = !v.n.IsZero()
	case String:
		b = v.s != ""
	case VersionKind, Array, Object:
		b = true
	case Null:
		b = false
	}
	traceSuccess(sink, depth, Boolean, strconv.FormatBool(b))
	return b
}

// ToNumber is fallible for Version/Array/Object and for unparseable strings.
func ToNumber(v Value, sink TraceSink, depth int) (decimal.Decimal, bool) {
	switch v.kind {
	case Boolean:
		d := decimal.Zero
		if v.b {
			d = decimal.New(1, 0)
		}
		traceSuccess(sink, depth, Number, d.String())
		return d, true
	case Number:
		traceSuccess(sink, depth, Number, v.n.String())
		return v.n, true
	case Null:
		traceSuccess(sink, depth, Number, "0")
		return decimal.Zero, true
	case String:
		d, ok := parseNumberLiteral(v.s)
		if !ok {
			traceFailure(sink, depth, String, Number)
			return decimal.Decimal{}, false
		}
		traceSuccess(sink, depth, Number, d.String())
		return d, true
	default:
		traceFailure(sink, depth, v.kind, Number)
		return decimal.Decimal{}, false
	}
}

// ParseNumberLiteral parses a lexed Number token's raw text into a decimal.
// Literal tokens never carry thousands separators (those are lexed as
// Separator tokens between arguments), unlike the permissive string->number
// coercion rule.
func ParseNumberLiteral(raw string) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

// ParseVersionLiteral parses a lexed Version token's raw text (already
// validated by the lexer to be 2-4 dotted integers) into a Version.
func ParseVersionLiteral(raw string) (Version, bool) {
	return parseVersionParts(strings.Split(raw, "."))
}

// parseNumberLiteral implements the permissive string->number rule: empty
// string is zero; otherwise a single decimal point, an optional leading sign,
// thousands separators, and surrounding whitespace are all accepted.
func parseNumberLiteral(s string) (decimal.Decimal, bool) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return decimal.Zero, true
	}
	cleaned := strings.ReplaceAll(trimmed, ",", "")
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

// ToString is fallible only for Array/Object.
func ToString(v Value, sink TraceSink, depth int) (string, bool) {
	var s string
	switch v.kind {
	case Boolean:
		if v.b {
			s = "True"
		} else {
			s = "False"
		}
	case Number:
		s = formatNumber(v.n)
	case String:
		s = v.s
	case VersionKind:
		s = v.ver.String()
	case Null:
		s = ""
	default:
		traceFailure(sink, depth, v.kind, String)
		return "", false
	}
	traceSuccess(sink, depth, String, s)
	return s, true
}

// formatNumber renders the shortest round-trip decimal representation,
// stripping trailing fractional zeros and then a trailing decimal point.
func formatNumber(d decimal.Decimal) string {
	s := d.String()
	if !strings.Contains(s, ".") {
		return s
	}
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "" || s == "-" {
		return "0"
	}
	return s
}

// ToVersion is fallible for Boolean/Null/Array/Object, for Numbers whose
// canonical string form isn't exactly two int32-range components, and for
// Strings that aren't 2-4 dotted non-negative int32-range integers.
func ToVersion(v Value, sink TraceSink, depth int) (Version, bool) {
	switch v.kind {
	case VersionKind:
		traceSuccess(sink, depth, VersionKind, v.ver.String())
		return v.ver, true
	case Number:
		text := formatNumber(v.n)
		parts := strings.Split(text, ".")
		if len(parts) != 2 {
			traceFailure(sink, depth, Number, VersionKind)
			return Version{}, false
		}
		ver, ok := parseVersionParts(parts)
		if !ok {
			traceFailure(sink, depth, Number, VersionKind)
			return Version{}, false
		}
		traceSuccess(sink, depth, VersionKind, ver.String())
		return ver, true
	case String:
		trimmed := strings.TrimSpace(v.s)
		parts := strings.Split(trimmed, ".")
		ver, ok := parseVersionParts(parts)
		if !ok {
			traceFailure(sink, depth, String, VersionKind)
			return Version{}, false
		}
		traceSuccess(sink, depth, VersionKind, ver.String())
		return ver, true
	default:
		traceFailure(sink, depth, v.kind, VersionKind)
		return Version{}, false
	}
}

// maxVersionComponent bounds each version component: non-negative values up
// to math.MaxInt32.
const maxVersionComponent = 1<<31 - 1

func parseVersionParts(parts []string) (Version, bool) {
	if len(parts) < 2 || len(parts) > 4 {
		return Version{}, false
	}
	var ver Version
	for i, p := range parts {
		if p == "" {
			return Version{}, false
		}
		n, err := strconv.ParseInt(p, 10, 64)
		if err != nil || n < 0 || n > maxVersionComponent {
			return Version{}, false
		}
		ver.Parts[i] = n
	}
	ver.Count = len(parts)
	return ver, true
}

// FoldEqual implements ASCII case-insensitive string comparison: A-Z fold to
// a-z, everything else compares byte-for-byte. Unicode is deliberately not
// normalized.
func FoldEqual(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		if asciiLower(a[i]) != asciiLower(b[i]) {
			return false
		}
	}
	return true
}

func asciiLower(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}

// foldCompare returns -1/0/1 the way strings.Compare does, but ASCII-fold
// case-insensitively.
func foldCompare(a, b string) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		ca, cb := asciiLower(a[i]), asciiLower(b[i])
		if ca != cb {
			if ca < cb {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}

// FoldContains reports whether substr occurs within s, ASCII-fold
// case-insensitively.
func FoldContains(s, substr string) bool {
	if len(substr) == 0 {
		return true
	}
	for i := 0; i+len(substr) <= len(s); i++ {
		if FoldEqual(s[i:i+len(substr)], substr) {
			return true
		}
	}
	return false
}

// FoldHasPrefix reports whether s starts with prefix, ASCII-fold
// case-insensitively.
func FoldHasPrefix(s, prefix string) bool {
	if len(prefix) > len(s) {
		return false
	}
	return FoldEqual(s[:len(prefix)], prefix)
}

// FoldHasSuffix reports whether s ends with suffix, ASCII-fold
// case-insensitively.
func FoldHasSuffix(s, suffix string) bool {
	if len(suffix) > len(s) {
		return false
	}
	return FoldEqual(s[len(s)-len(suffix):], suffix)
}

// Equal implements eq/ne/in/notIn: the left operand's kind determines the
// target kind and the right operand is coerced toward it using the fallible
// conversions. Coercion failure means "unequal", not an error.
func Equal(left, right Value, sink TraceSink, depth int) bool {
	switch left.kind {
	case Null:
		return right.kind == Null
	case Boolean:
		return left.b == ToBoolean(right, sink, depth)
	case Number:
		r, ok := ToNumber(right, sink, depth)
		return ok && left.n.Equal(r)
	case String:
		r, ok := ToString(right, sink, depth)
		return ok && FoldEqual(left.s, r)
	case VersionKind:
		r, ok := ToVersion(right, sink, depth)
		return ok && versionEqual(left.ver, r)
	case Array, Object:
		return ReferenceEqual(left, right)
	default:
		return false
	}
}

func versionEqual(a, b Version) bool {
	if a.Count != b.Count {
		return false
	}
	for i := 0; i < a.Count; i++ {
		if a.Parts[i] != b.Parts[i] {
			return false
		}
	}
	return true
}

// normalizeOrderingLeft returns the left operand unchanged if it is one of
// the four ordered kinds, otherwise forces it to Number (raising
// ConvertError on failure, mirroring the demand-conversion used by ordering).
func normalizeOrderingLeft(left Value, sink TraceSink, depth int) (Value, error) {
	switch left.kind {
	case Boolean, Number, String, VersionKind:
		return left, nil
	default:
		n, ok := ToNumber(left, sink, depth)
		if !ok {
			return Value{}, &ConvertError{Value: left, From: left.kind, To: Number}
		}
		return NewNumber(n), nil
	}
}

// Compare implements lt/le/gt/ge. It returns -1, 0 or 1, or an error if
// either side cannot be coerced as ordering requires.
func Compare(left, right Value, sink TraceSink, depth int) (int, error) {
	l, err := normalizeOrderingLeft(left, sink, depth)
	if err != nil {
		return 0, err
	}
	switch l.kind {
	case Boolean:
		r := ToBoolean(right, sink, depth)
		return boolCompare(l.b, r), nil
	case Number:
		r, ok := ToNumber(right, sink, depth)
		if !ok {
			return 0, &ConvertError{Value: right, From: right.kind, To: Number}
		}
		return l.n.Cmp(r), nil
	case String:
		r, ok := ToString(right, sink, depth)
		if !ok {
			return 0, &ConvertError{Value: right, From: right.kind, To: String}
		}
		return foldCompare(l.s, r), nil
	case VersionKind:
		r, ok := ToVersion(right, sink, depth)
		if !ok {
			return 0, &ConvertError{Value: right, From: right.kind, To: VersionKind}
		}
		return versionCompare(l.ver, r), nil
	default:
		return 0, &ConvertError{Value: left, From: left.kind, To: Number}
	}
}

func boolCompare(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a && b:
		return -1
	default:
		return 1
	}
}

// versionCompare compares component-wise up to the shorter arity. If every
// shared component is equal but the arities differ, the versions are
// distinct but neither orders below the other (returns 0, the "no padding"
// rule used by lt/gt; eq is handled separately by versionEqual which does
// treat differing arity as unequal).
func versionCompare(a, b Version) int {
	n := a.Count
	if b.Count < n {
		n = b.Count
	}
	for i := 0; i < n; i++ {
		if a.Parts[i] != b.Parts[i] {
			if a.Parts[i] < b.Parts[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}
