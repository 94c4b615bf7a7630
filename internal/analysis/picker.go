package analysis

import (
	"fmt"
	"hash/fnv"
	"math/rand/v2"
	"strconv"
	"strings"
	"sync"
)

// SoundPicker выбирает звуковой файл из пула группы для конкретного совпадения.
type SoundPicker interface {
	Pick(group string, pool []string, word string, position int) string
}

// Имена стратегий выбора звука.
const (
	PickerRandom = "random"
	PickerHash   = "hash"
	PickerFirst  = "first"
)

// NewSoundPicker создает стратегию по имени. seed используется только для random.
func NewSoundPicker(name string, seed uint64) (SoundPicker, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", PickerRandom:
		return NewRandomPicker(seed), nil
	case PickerHash:
		return HashPicker{}, nil
	case PickerFirst:
		return FirstPicker{}, nil
	default:
		return nil, fmt.Errorf("unknown sound picker %q", name)
	}
}

// RandomPicker выбирает звук случайно. С ненулевым seed последовательность воспроизводима.
type RandomPicker struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomPicker создает случайный пикер. seed == 0 означает глобальный генератор.
func NewRandomPicker(seed uint64) *RandomPicker {
	p := &RandomPicker{}
	if seed != 0 {
		p.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
	return p
}

func (p *RandomPicker) Pick(_ string, pool []string, _ string, _ int) string {
	switch len(pool) {
	case 0:
		return ""
	case 1:
		return pool[0]
	}
	if p.rng == nil {
		return pool[rand.IntN(len(pool))]
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return pool[p.rng.IntN(len(pool))]
}

// HashPicker выбирает звук по FNV-1a от группы, слова и позиции: одинаковый вход дает одинаковый файл.
type HashPicker struct{}

func (HashPicker) Pick(group string, pool []string, word string, position int) string {
	if len(pool) == 0 {
		return ""
	}
	h := fnv.New64a()
	h.Write([]byte(group))
	h.Write([]byte{'|'})
	h.Write([]byte(strings.ToLower(word)))
	h.Write([]byte{'|'})
	h.Write([]byte(strconv.Itoa(position)))
	return pool[h.Sum64()%uint64(len(pool))]
}

// FirstPicker всегда берет первый файл пула.
type FirstPicker struct{}

func (FirstPicker) Pick(_ string, pool []string, _ string, _ int) string {
	if len(pool) == 0 {
		return ""
	}
	return pool[0]
}
