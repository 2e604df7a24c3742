// Package statsum implements the cumulative-statistic table attached to
// an MCPL header (§3.4): an ordered, keyed table of non-negative real
// values (or the sentinel "unknown") that participates in merges via
// compensated (Kahan-style) summation, with "unknown" poisoning any sum
// it takes part in and overflow-to-infinity also collapsing to
// "unknown".
//
// On disk the table is carried as a single reserved leading comment in
// the header's comment list (§4.3, §6.1), encoded as
// "MCPL-STATSUM-V1:key1=hexbits1;key2=hexbits2;...". Writers always emit
// this comment, even with zero entries, so it is always present at a
// fixed position and readers never have to guess whether it exists.
package statsum

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mctools/mcpl-go/errs"
)

// Marker is the reserved comment prefix identifying the stat-sum block.
const Marker = "MCPL-STATSUM-V1:"

// unknownBits is the reserved bit pattern meaning "unknown/unavailable".
const unknownBits = math.MaxUint64

// Table is an ordered keyed table of cumulative statistics. The zero
// value is an empty table ready to use.
type Table struct {
	order  []string
	values map[string]uint64
}

// New returns an empty stat-sum table.
func New() *Table {
	return &Table{values: make(map[string]uint64)}
}

// ValidKey reports whether key satisfies the §3.2 character and length
// constraints: alphanumeric plus '_', '.', '-', length 1..64.
func ValidKey(key string) bool {
	if len(key) < 1 || len(key) > 64 {
		return false
	}
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '_' || r == '.' || r == '-':
		default:
			return false
		}
	}

	return true
}

// Set records a known, non-negative, finite value for key, appending it
// in first-seen order or updating it in place if key already exists.
func (t *Table) Set(key string, value float64) error {
	if !ValidKey(key) {
		return fmt.Errorf("%w: %q", errs.ErrInvalidStatSumKey, key)
	}
	if value < 0 || math.IsInf(value, 0) || math.IsNaN(value) {
		return fmt.Errorf("%w: stat-sum value must be finite and non-negative", errs.ErrPolicy)
	}

	t.set(key, math.Float64bits(value))

	return nil
}

// SetUnknown records key as present but unknown, e.g. a key declared
// before its value is available (§3.2 lifecycle note).
func (t *Table) SetUnknown(key string) error {
	if !ValidKey(key) {
		return fmt.Errorf("%w: %q", errs.ErrInvalidStatSumKey, key)
	}

	t.set(key, unknownBits)

	return nil
}

func (t *Table) set(key string, bits uint64) {
	if t.values == nil {
		t.values = make(map[string]uint64)
	}
	if _, exists := t.values[key]; !exists {
		t.order = append(t.order, key)
	}
	t.values[key] = bits
}

// Get returns the value for key, whether it is known, and whether key
// exists at all.
func (t *Table) Get(key string) (value float64, known bool, ok bool) {
	bits, ok := t.values[key]
	if !ok {
		return 0, false, false
	}
	if bits == unknownBits {
		return 0, false, true
	}

	return math.Float64frombits(bits), true, true
}

// Keys returns the table's keys in insertion order.
func (t *Table) Keys() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)

	return out
}

// Len returns the number of keys in the table.
func (t *Table) Len() int {
	return len(t.order)
}

// Clone returns an independent deep copy of t.
func (t *Table) Clone() *Table {
	c := New()
	for _, k := range t.order {
		c.set(k, t.values[k])
	}

	return c
}

// Encode serializes the table to the reserved comment form, always
// produced (even when empty) so its position in the comment list is
// fixed for every writer (§6.1).
func (t *Table) Encode() string {
	var b strings.Builder
	b.WriteString(Marker)
	for i, k := range t.order {
		if i > 0 {
			b.WriteByte(';')
		}
		fmt.Fprintf(&b, "%s=%016x", k, t.values[k])
	}

	return b.String()
}

// IsEncoded reports whether comment is the reserved stat-sum comment.
func IsEncoded(comment string) bool {
	return strings.HasPrefix(comment, Marker)
}

// Decode parses a comment produced by Encode. It returns
// errs.ErrCorruptStatSumBlock if comment is malformed.
func Decode(comment string) (*Table, error) {
	if !IsEncoded(comment) {
		return nil, fmt.Errorf("%w: missing marker", errs.ErrCorruptStatSumBlock)
	}

	t := New()
	body := strings.TrimPrefix(comment, Marker)
	if body == "" {
		return t, nil
	}

	for _, entry := range strings.Split(body, ";") {
		key, hexVal, found := strings.Cut(entry, "=")
		if !found || !ValidKey(key) {
			return nil, fmt.Errorf("%w: malformed entry %q", errs.ErrCorruptStatSumBlock, entry)
		}

		bits, err := strconv.ParseUint(hexVal, 16, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: malformed value %q: %v", errs.ErrCorruptStatSumBlock, hexVal, err)
		}

		t.set(key, bits)
	}

	return t, nil
}

// Merge combines tables by key using stable (Kahan-compensated)
// summation (§4.7, §8): a key present in every table sums its known
// values; a key missing from any table, or carrying "unknown" in any
// table, becomes unknown in the result. A finite sum that overflows to
// infinity also becomes unknown.
func Merge(tables ...*Table) *Table {
	out := New()
	if len(tables) == 0 {
		return out
	}

	keys := unionKeysInOrder(tables)
	for _, key := range keys {
		sum, known := mergeOne(tables, key)
		if !known {
			_ = out.SetUnknown(key)

			continue
		}
		_ = out.Set(key, sum)
	}

	return out
}

func unionKeysInOrder(tables []*Table) []string {
	seen := make(map[string]bool)
	var keys []string
	for _, t := range tables {
		for _, k := range t.order {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}

	return keys
}

func mergeOne(tables []*Table, key string) (sum float64, known bool) {
	acc := newKahan()
	for _, t := range tables {
		value, known, ok := t.Get(key)
		if !ok || !known {
			return 0, false
		}
		acc.add(value)
	}

	result := acc.sum()
	if math.IsInf(result, 0) {
		return 0, false
	}

	return result, true
}

// kahan implements Kahan compensated summation so that summing
// a large value with several much smaller ones (e.g. 1 + 4*2^-53)
// retains precision that naive sequential addition would lose (§8).
type kahan struct {
	total float64
	comp  float64
}

func newKahan() *kahan { return &kahan{} }

func (k *kahan) add(v float64) {
	y := v - k.comp
	t := k.total + y
	k.comp = (t - k.total) - y
	k.total = t
}

func (k *kahan) sum() float64 { return k.total }
