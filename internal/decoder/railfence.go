package decoder

import (
	"fmt"
	"sort"

	"github.com/kenneth/autocrack/internal/checker"
)

// RailfenceDecoder enumerates the full rail-fence keyspace, grounded on
// original_source/src/decoders/railfence_decoder.rs: rail counts 2-9, and
// for each rail count every zigzag starting offset 0..=(rails*2-3).
// Dropping the offset dimension (as an earlier revision did) makes any
// ciphertext encoded with a non-zero offset permanently unsolvable.
type RailfenceDecoder struct{}

func (RailfenceDecoder) Descriptor() Descriptor {
	return Descriptor{
		Name:            "railfence",
		Description:     "Enumerates rail-fence cipher rail counts 2-9 and their zigzag offsets",
		Tags:            []string{"cipher", "transposition"},
		Popularity:      0.3,
		ExpectedRuntime: 2,
		ExpectedSuccess: 0.05,
	}
}

// railfenceRails returns the rail index assigned to each of the first n
// positions of the zigzag sequence that starts at offset, mirroring
// original_source's zigzag(): the base cycle walks rails 0..rails-2
// ascending then rails-1..1 descending (length 2*rails-2), repeats
// indefinitely, and offset skips into that infinite sequence before
// the first n entries are taken.
func railfenceRails(rails, offset, n int) []int {
	cycle := make([]int, 2*rails-2)
	idx := 0
	for r := 0; r <= rails-2; r++ {
		cycle[idx] = r
		idx++
	}
	for r := rails - 1; r >= 1; r-- {
		cycle[idx] = r
		idx++
	}

	out := make([]int, n)
	for i := 0; i < n; i++ {
		out[i] = cycle[(offset+i)%len(cycle)]
	}
	return out
}

// railfenceDecode reconstructs the plaintext for a given (rails, offset)
// key, following original_source's railfence_decoder(): pair each
// position's zigzag rail with a 1-based original position, sort those
// pairs by (rail, position) to recover the order a rail-by-rail writer
// would have emitted characters in, zip that order against the actual
// ciphertext characters to recover each character's original position,
// then sort by original position to restore the plaintext.
func railfenceDecode(s string, rails, offset int) string {
	runes := []rune(s)
	n := len(runes)
	if rails < 2 || n == 0 {
		return s
	}

	railOf := railfenceRails(rails, offset, n)

	type railPos struct {
		rail, pos int
	}
	indexes := make([]railPos, n)
	for i := 0; i < n; i++ {
		indexes[i] = railPos{rail: railOf[i], pos: i + 1}
	}
	sort.SliceStable(indexes, func(a, b int) bool {
		if indexes[a].rail != indexes[b].rail {
			return indexes[a].rail < indexes[b].rail
		}
		return indexes[a].pos < indexes[b].pos
	})

	type posChar struct {
		pos int
		ch  rune
	}
	withIndex := make([]posChar, n)
	for i := 0; i < n; i++ {
		withIndex[i] = posChar{pos: indexes[i].pos, ch: runes[i]}
	}
	sort.SliceStable(withIndex, func(a, b int) bool {
		return withIndex[a].pos < withIndex[b].pos
	})

	out := make([]rune, n)
	for i, pc := range withIndex {
		out[i] = pc.ch
	}
	return string(out)
}

func (d RailfenceDecoder) Crack(input string, pipeline *checker.Pipeline, sensitivity checker.Sensitivity) CrackResult {
	result := New(d.Descriptor(), input)

	for rails := 2; rails < 10; rails++ {
		for offset := 0; offset <= rails*2-3; offset++ {
			candidate := railfenceDecode(input, rails, offset)
			if !checkStringSuccess(candidate, input) || len(candidate) < minOutputLength {
				continue
			}
			result.UnencryptedText = append(result.UnencryptedText, candidate)
			if pipeline != nil {
				if check := pipeline.Check(candidate, checker.Low); check.IsIdentified {
					result.Key = fmt.Sprintf("rails=%d,offset=%d", rails, offset)
					result.UpdateChecker(check)
					return result
				}
			}
		}
	}
	return result
}
