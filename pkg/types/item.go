package types

import (
	"crypto/sha256"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Kind identifies the payload type of a clipboard item.
type Kind string

const (
	KindText  Kind = "text"
	KindRtf   Kind = "rtf"
	KindImage Kind = "image"
	KindFile  Kind = "file"
)

// ParseKind converts a stored kind string into a Kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindText, KindRtf, KindImage, KindFile:
		return Kind(s), nil
	}
	return "", fmt.Errorf("%w: invalid item kind %q", ErrInvalidArgument, s)
}

// Valid reports whether k is one of the four defined kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindText, KindRtf, KindImage, KindFile:
		return true
	}
	return false
}

// Textual reports whether items of this kind carry indexable text content.
func (k Kind) Textual() bool {
	return k == KindText || k == KindRtf
}

// Code returns the numeric kind code used on the C boundary.
// Codes are part of the public ABI and must not change.
func (k Kind) Code() int32 {
	switch k {
	case KindText:
		return 0
	case KindRtf:
		return 1
	case KindImage:
		return 2
	case KindFile:
		return 3
	}
	return -1
}

// KindFromCode converts a numeric boundary code into a Kind.
func KindFromCode(code int32) (Kind, error) {
	switch code {
	case 0:
		return KindText, nil
	case 1:
		return KindRtf, nil
	case 2:
		return KindImage, nil
	case 3:
		return KindFile, nil
	}
	return "", fmt.Errorf("%w: invalid kind code %d", ErrInvalidArgument, code)
}

// Item is one stored clipboard capture.
type Item struct {
	ID         int64
	Kind       Kind
	ContentRef string // raw text for text/rtf, absolute path for image/file
	SourceApp  string // optional, empty when unknown
	CreatedAt  int64  // milliseconds since epoch; bumped on dedup touch
	Pinned     bool
	Tags       []string
}

// NewItem describes an item about to be inserted.
type NewItem struct {
	Kind       Kind
	ContentRef string
	SourceApp  string
	CreatedAt  int64
	Tags       []string
}

// foldTransform strips combining marks after NFD decomposition, so
// "café" and "cafe" normalize identically.
var foldTransform = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// foldText lowercases s and removes diacritics.
func foldText(s string) string {
	folded, _, err := transform.String(foldTransform, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(folded)
}

// NormalizedContent returns the canonical form of the content used for
// duplicate detection. Text and RTF content is whitespace-collapsed,
// lowercased and diacritic-folded; image and file paths are taken verbatim.
func (n *NewItem) NormalizedContent() string {
	if !n.Kind.Textual() {
		return n.ContentRef
	}
	return strings.Join(strings.Fields(foldText(n.ContentRef)), " ")
}

// Fingerprint is a derived duplicate-detection key. It is never persisted.
type Fingerprint [sha256.Size]byte

// Fingerprint computes the content fingerprint of the item: a SHA-256
// digest over the kind and the normalized content.
func (n *NewItem) Fingerprint() Fingerprint {
	h := sha256.New()
	h.Write([]byte(n.Kind))
	h.Write([]byte{0})
	h.Write([]byte(n.NormalizedContent()))
	var fp Fingerprint
	copy(fp[:], h.Sum(nil))
	return fp
}

// FoldForMatch exposes the diacritic folding used by the short-query
// search fallback so it matches the FTS tokenizer's folding.
func FoldForMatch(s string) string {
	return foldText(s)
}
