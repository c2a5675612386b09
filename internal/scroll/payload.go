package scroll

import (
	"errors"
	"math/rand/v2"
)

// ErrNotEnoughPayloads is returned when a source cannot satisfy a draw.
var ErrNotEnoughPayloads = errors.New("not enough payloads available")

// PayloadSource supplies the text payloads shown on unrolled scrolls.
type PayloadSource interface {
	// Draw returns count distinct payloads, drawn without replacement.
	Draw(count int) ([]string, error)
}

// StaticSource is an in-memory PayloadSource over a fixed list.
type StaticSource struct {
	payloads []string
	rng      *rand.Rand
}

// NewStaticSource creates a source over the given payloads.
func NewStaticSource(payloads []string) *StaticSource {
	return &StaticSource{
		payloads: payloads,
		rng:      rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
}

// SetRand replaces the source's random generator. Useful for tests.
func (s *StaticSource) SetRand(rng *rand.Rand) {
	s.rng = rng
}

// Draw returns count distinct payloads via a partial Fisher-Yates shuffle.
func (s *StaticSource) Draw(count int) ([]string, error) {
	if count > len(s.payloads) {
		return nil, ErrNotEnoughPayloads
	}

	idx := make([]int, len(s.payloads))
	for i := range idx {
		idx[i] = i
	}

	out := make([]string, count)
	for i := 0; i < count; i++ {
		j := i + s.rng.IntN(len(idx)-i)
		idx[i], idx[j] = idx[j], idx[i]
		out[i] = s.payloads[idx[i]]
	}
	return out, nil
}
