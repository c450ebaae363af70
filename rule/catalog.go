package rule

import (
	"fmt"
	"io"
	"os"
	"sync"

	jsoniter "github.com/json-iterator/go"
	"github.com/ratel-online/landlord/poker"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	normalRanks   = 13
	straightRanks = 12
)

type counts [poker.Ranks]int

type entry struct {
	key    string
	counts [poker.Ranks]uint8
}

func (e entry) heldBy(hand counts) bool {
	for r, n := range e.counts {
		if int(n) > hand[r] {
			return false
		}
	}
	return true
}

// Catalog is the table of every concrete instance of every shape, each list
// ordered from its lowest instance to its highest.
type Catalog struct {
	specs   map[Shape][]entry
	index   map[string]Faces
	lengths map[int][]Shape
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the generated catalog, built on first use.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := Generate()
		if err != nil {
			panic(err)
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

func newCatalog() *Catalog {
	return &Catalog{
		specs:   map[Shape][]entry{},
		index:   map[string]Faces{},
		lengths: map[int][]Shape{},
	}
}

// Generate builds the catalog from the shape definitions.
func Generate() (*Catalog, error) {
	c := newCatalog()
	for _, s := range Shapes {
		generate(s, func(cs counts) {
			c.add(s, cs)
		})
	}
	return c, c.finish()
}

// Load reads a catalog written by WriteTo.
func Load(r io.Reader) (*Catalog, error) {
	raw := map[Shape][]string{}
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode rule catalog: %w", err)
	}
	for s := range raw {
		if !s.Known() {
			return nil, fmt.Errorf("rule catalog: unknown shape %q", s)
		}
	}
	c := newCatalog()
	for _, s := range Shapes {
		for _, key := range raw[s] {
			cs, err := parseKey(key)
			if err != nil {
				return nil, fmt.Errorf("rule catalog %s: %w", s, err)
			}
			if cs.key() != key {
				return nil, fmt.Errorf("rule catalog %s: key %q is not sorted", s, key)
			}
			if !c.add(s, cs) {
				return nil, fmt.Errorf("rule catalog %s: duplicate key %q", s, key)
			}
		}
	}
	return c, c.finish()
}

func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}

// WriteTo encodes the catalog as a JSON object of shape name to key list.
func (c *Catalog) WriteTo(w io.Writer) (int64, error) {
	raw := make(map[Shape][]string, len(c.specs))
	for s, entries := range c.specs {
		keys := make([]string, len(entries))
		for i, e := range entries {
			keys[i] = e.key
		}
		raw[s] = keys
	}
	data, err := json.MarshalIndent(raw, "", "    ")
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	return int64(n), err
}

func (c *Catalog) add(s Shape, cs counts) bool {
	key := cs.key()
	if _, ok := c.index[key]; ok {
		return false
	}
	value := len(c.specs[s])
	switch s {
	case Bomb:
		value += BombBand
	case Rocket:
		value = RocketValue
	}
	c.index[key] = Faces{Shape: s, Value: value, Key: key}
	e := entry{key: key}
	for r, n := range cs {
		e.counts[r] = uint8(n)
	}
	c.specs[s] = append(c.specs[s], e)
	return true
}

func (c *Catalog) finish() error {
	for _, s := range Shapes {
		if s.Doubling() {
			continue
		}
		size := s.Len()
		c.lengths[size] = append(c.lengths[size], s)
	}
	return c.Validate()
}

// Validate checks that every shape has at least one instance and that every
// instance has the shape's size.
func (c *Catalog) Validate() error {
	for _, s := range Shapes {
		entries := c.specs[s]
		if len(entries) == 0 {
			return fmt.Errorf("rule catalog: shape %s has no entry", s)
		}
		for _, e := range entries {
			if len(e.key) != s.Len() {
				return fmt.Errorf("rule catalog: %s entry %q has %d cards, want %d", s, e.key, len(e.key), s.Len())
			}
		}
	}
	return nil
}

// Specs returns the rank strings of a shape, lowest first.
func (c *Catalog) Specs(s Shape) []string {
	entries := c.specs[s]
	keys := make([]string, len(entries))
	for i, e := range entries {
		keys[i] = e.key
	}
	return keys
}

func (c *Catalog) Size() int {
	return len(c.index)
}

func (cs counts) key() string {
	buf := make([]byte, 0, 20)
	for r, n := range cs {
		for i := 0; i < n; i++ {
			buf = append(buf, poker.Alphabet[r])
		}
	}
	return string(buf)
}

func parseKey(key string) (counts, error) {
	var cs counts
	if key == "" {
		return cs, fmt.Errorf("empty key")
	}
	for i := 0; i < len(key); i++ {
		r, ok := poker.RankOfChar(key[i])
		if !ok {
			return cs, fmt.Errorf("key %q: invalid char %q", key, key[i])
		}
		cs[r]++
		if cs[r] > maxCount(int(r)) {
			return cs, fmt.Errorf("key %q: too many %s", key, poker.Rank(r))
		}
	}
	return cs, nil
}

func maxCount(r int) int {
	if r >= normalRanks {
		return 1
	}
	return 4
}

func generate(s Shape, emit func(counts)) {
	info := shapeInfos[s]
	switch info.family {
	case familyRocket:
		var cs counts
		cs[poker.RankSmallJoker], cs[poker.RankBigJoker] = 1, 1
		emit(cs)
	case familyBomb:
		same(normalRanks, 4, emit)
	case familySingle:
		same(poker.Ranks, 1, emit)
	case familyPair:
		same(normalRanks, 2, emit)
	case familyTrio:
		same(normalRanks, 3, emit)
	case familyTrioPair:
		for t := 0; t < normalRanks; t++ {
			for p := 0; p < normalRanks; p++ {
				if p == t {
					continue
				}
				var cs counts
				cs[t], cs[p] = 3, 2
				emit(cs)
			}
		}
	case familyTrioSingle:
		for t := 0; t < normalRanks; t++ {
			for k := 0; k < poker.Ranks; k++ {
				if k == t {
					continue
				}
				var cs counts
				cs[t], cs[k] = 3, 1
				emit(cs)
			}
		}
	case familySeqSingle:
		chains(info.chain, 1, emit)
	case familySeqPair:
		chains(info.chain, 2, emit)
	case familySeqTrio:
		chains(info.chain, 3, emit)
	case familySeqTrioPair:
		chains(info.chain, 3, func(chain counts) {
			free := outside(chain, normalRanks)
			multisets(free, info.chain, func(int) int { return 2 }, func(units counts) {
				cs := chain
				for r, n := range units {
					cs[r] += 2 * n
				}
				emit(cs)
			})
		})
	case familySeqTrioSingle:
		chains(info.chain, 3, func(chain counts) {
			free := outside(chain, poker.Ranks)
			multisets(free, info.chain, maxCount, func(kickers counts) {
				if kickers[poker.RankSmallJoker] > 0 && kickers[poker.RankBigJoker] > 0 {
					return
				}
				cs := chain
				for r, n := range kickers {
					cs[r] += n
				}
				emit(cs)
			})
		})
	case familyBombPair:
		for b := 0; b < normalRanks; b++ {
			for i := 0; i < normalRanks; i++ {
				for j := i + 1; j < normalRanks; j++ {
					if i == b || j == b {
						continue
					}
					var cs counts
					cs[b], cs[i], cs[j] = 4, 2, 2
					emit(cs)
				}
			}
		}
	case familyBombSingle:
		for b := 0; b < normalRanks; b++ {
			for i := 0; i < poker.Ranks; i++ {
				for j := i + 1; j < poker.Ranks; j++ {
					if i == b || j == b || (i == int(poker.RankSmallJoker) && j == int(poker.RankBigJoker)) {
						continue
					}
					var cs counts
					cs[b], cs[i], cs[j] = 4, 1, 1
					emit(cs)
				}
			}
		}
	}
}

func same(ranks, n int, emit func(counts)) {
	for r := 0; r < ranks; r++ {
		var cs counts
		cs[r] = n
		emit(cs)
	}
}

// chains emits every run of length consecutive ranks from 3 up to A, each rank
// repeated width times.
func chains(length, width int, emit func(counts)) {
	for start := 0; start+length <= straightRanks; start++ {
		var cs counts
		for r := start; r < start+length; r++ {
			cs[r] = width
		}
		emit(cs)
	}
}

func outside(chain counts, ranks int) []int {
	free := make([]int, 0, ranks)
	for r := 0; r < ranks; r++ {
		if chain[r] == 0 {
			free = append(free, r)
		}
	}
	return free
}

// multisets emits every multiset of size items over ranks, in lexicographic
// order, with at most limit(r) copies of rank r.
func multisets(ranks []int, size int, limit func(int) int, emit func(counts)) {
	var cs counts
	var walk func(i, left int)
	walk = func(i, left int) {
		if left == 0 {
			emit(cs)
			return
		}
		if i == len(ranks) {
			return
		}
		r := ranks[i]
		n := limit(r)
		if n > left {
			n = left
		}
		for ; n >= 0; n-- {
			cs[r] += n
			walk(i+1, left-n)
			cs[r] -= n
		}
	}
	walk(0, size)
}
