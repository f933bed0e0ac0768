package emojimg

import (
	"slices"
	"sort"
	"strconv"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/gogpu/gg/text/emoji"
	emojiclass "github.com/npillmayer/uax/emoji"
	"github.com/npillmayer/uax/grapheme"
	"github.com/npillmayer/uax/segment"
)

// Match is an emoji found in a text.
type Match struct {
	Start, End int    // byte offsets into the text
	Text       string // raw text of the emoji, including selectors
	Icon       string // image name, e.g. "1f1ec-1f1e7"
}

// maxSequence limits the look-ahead when parsing a sequence. The longest
// RGI sequences (families, subdivision flags) have less than 10 code points.
const maxSequence = 32

const (
	zwj          = '\u200D'
	emojiVariant = "\uFE0F"
)

// Find locates all emoji in s, in order of appearance.
// Emoji followed by a text presentation selector (U+FE0E) are left alone.
func Find(s string) []Match {
	if s == "" {
		return nil
	}
	emojiclass.SetupEmojisClasses()
	runes := []rune(s)
	var offsets, clusters []int
	var matches []Match
	for i := 0; i < len(runes); {
		n := sequenceAt(runes, i)
		if n == 0 {
			i++
			continue
		}
		if i+n < len(runes) && emoji.IsTextPresentation(runes[i+n]) {
			i += n + 1
			continue
		}
		if offsets == nil {
			offsets = byteOffsets(s, len(runes))
			clusters = graphemeEnds(s)
		}
		j := extendToCluster(runes, i+n, clusterEnd(clusters, i, len(runes)))
		raw := s[offsets[i]:offsets[j]]
		matches = append(matches, Match{
			Start: offsets[i],
			End:   offsets[j],
			Text:  raw,
			Icon:  Icon(raw),
		})
		i = j
	}
	return matches
}

// Icon converts the raw text of an emoji to its image name: lower-case
// hexadecimal code points joined by "-". The emoji presentation selector
// U+FE0F is dropped, unless the emoji is a ZWJ sequence.
func Icon(raw string) string {
	if !strings.ContainsRune(raw, zwj) {
		raw = strings.ReplaceAll(raw, emojiVariant, "")
	}
	var b strings.Builder
	n := 0
	for _, r := range raw {
		if n > 0 {
			b.WriteByte('-')
		}
		b.WriteString(strconv.FormatInt(int64(r), 16))
		n++
	}
	return b.String()
}

// sequenceAt returns the number of runes of an emoji sequence starting at
// position i, or 0. Sequences start with a code point of the Unicode Emoji
// property; everything else is text, even if fonts draw it as a symbol.
func sequenceAt(runes []rune, i int) int {
	r := runes[i]
	if !unicode.Is(emojiclass.Emoji, r) {
		return 0
	}
	end := i + maxSequence
	if end > len(runes) {
		end = len(runes)
	}
	window := runes[i:end]
	// Parse skips leading non-emoji, so the first sequence has to be a prefix of window
	if seqs := emoji.Parse(window); len(seqs) > 0 && isPrefix(seqs[0].Codepoints, window) {
		return len(seqs[0].Codepoints)
	}
	if emoji.IsKeycapBase(r) {
		return 0 // digits, '#' and '*' are emoji as keycaps only
	}
	if i+1 < len(runes) && emoji.IsEmojiVariation(runes[i+1]) {
		return 2
	}
	return 1
}

func isPrefix(seq, runes []rune) bool {
	return len(seq) > 0 && len(seq) <= len(runes) && slices.Equal(seq, runes[:len(seq)])
}

// extendToCluster moves the end of a match across trailing selectors,
// modifiers and tags belonging to the same grapheme cluster. Other
// combining marks stay text.
func extendToCluster(runes []rune, j, limit int) int {
	for j < limit && isExtender(runes[j]) {
		j++
	}
	return j
}

func isExtender(r rune) bool {
	return emoji.IsEmojiVariation(r) || emoji.IsEmojiModifier(r) ||
		emoji.IsTagCharacter(r) || emoji.IsCancelTag(r) ||
		emoji.IsCombiningEnclosingKeycap(r)
}

// clusterEnd finds the end (in runes) of the grapheme cluster containing
// rune position i.
func clusterEnd(ends []int, i, total int) int {
	k := sort.SearchInts(ends, i+1)
	if k < len(ends) {
		return ends[k]
	}
	return total
}

var graphemeSetup sync.Once

// graphemeEnds returns the rune positions where grapheme clusters of s end.
func graphemeEnds(s string) []int {
	graphemeSetup.Do(func() { grapheme.SetupGraphemeClasses() })
	seg := segment.NewSegmenter(grapheme.NewBreaker(1))
	seg.Init(strings.NewReader(s))
	ends := make([]int, 0, len(s)/2+1)
	pos := 0
	for seg.Next() {
		pos += utf8.RuneCount(seg.Bytes())
		ends = append(ends, pos)
	}
	tracer().Debugf("text has %d grapheme clusters", len(ends))
	return ends
}

// byteOffsets returns the byte offset of every rune of s, plus len(s).
func byteOffsets(s string, runeCount int) []int {
	offsets := make([]int, 0, runeCount+1)
	for off := range s {
		offsets = append(offsets, off)
	}
	return append(offsets, len(s))
}
