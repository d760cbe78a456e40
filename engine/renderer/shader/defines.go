package shader

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// MaxDefines is the number of distinct define strings a process can register.
const MaxDefines = 256

// Mask is a set of define bits. Every distinct define string ("NAME" or "NAME VALUE") owns
// one bit, so a mask identifies a shader variant.
type Mask [MaxDefines / 64]uint64

// Or returns the union of m and other.
func (m Mask) Or(other Mask) Mask {
	for i := range m {
		m[i] |= other[i]
	}
	return m
}

// Has reports whether bit is set.
func (m Mask) Has(bit int) bool {
	return m[bit/64]&(1<<(bit%64)) != 0
}

func (m Mask) IsZero() bool {
	return m == Mask{}
}

func (m *Mask) set(bit int)   { m[bit/64] |= 1 << (bit % 64) }
func (m *Mask) unset(bit int) { m[bit/64] &^= 1 << (bit % 64) }

func (m Mask) String() string {
	var sb strings.Builder
	for i := len(m) - 1; i >= 0; i-- {
		fmt.Fprintf(&sb, "%016x", m[i])
	}
	return sb.String()
}

var defineTable = struct {
	mu    sync.Mutex
	bits  map[string]int
	names []string
}{bits: make(map[string]int)}

// DefineBit returns the bit assigned to define, assigning the next free bit on first use.
// It panics when more than MaxDefines distinct defines are registered.
func DefineBit(define string) int {
	defineTable.mu.Lock()
	defer defineTable.mu.Unlock()

	if bit, ok := defineTable.bits[define]; ok {
		return bit
	}
	bit := len(defineTable.names)
	if bit >= MaxDefines {
		panic(fmt.Sprintf("shader: define table is full, cannot register %q", define))
	}
	defineTable.bits[define] = bit
	defineTable.names = append(defineTable.names, define)
	return bit
}

// Defines is an ordered set of shader defines. Each entry is either "NAME" or "NAME VALUE";
// at most one entry exists per name. Not safe for concurrent mutation.
type Defines struct {
	entries []string
	mask    Mask
}

// NewDefines creates a set holding the given defines.
func NewDefines(defines ...string) *Defines {
	d := &Defines{}
	for _, define := range defines {
		name, value, _ := strings.Cut(define, " ")
		d.put(name, value)
	}
	return d
}

// Add sets a flag define. It returns false if the set already held exactly that define.
func (d *Defines) Add(name string) bool {
	return d.put(name, "")
}

// Set sets a valued define, replacing any previous value for name.
//
// Parameters:
//   - name: the define name
//   - value: the value substituted for name in shader source
//
// Returns:
//   - bool: true if the set changed
func (d *Defines) Set(name string, value int) bool {
	return d.put(name, strconv.Itoa(value))
}

func (d *Defines) put(name, value string) bool {
	define := name
	if value != "" {
		define = name + " " + value
	}
	for i, e := range d.entries {
		if defineName(e) != name {
			continue
		}
		if e == define {
			return false
		}
		d.mask.unset(DefineBit(e))
		d.entries[i] = define
		d.mask.set(DefineBit(define))
		return true
	}
	d.entries = append(d.entries, define)
	d.mask.set(DefineBit(define))
	return true
}

// Remove deletes the define called name. It returns false if it was absent.
func (d *Defines) Remove(name string) bool {
	for i, e := range d.entries {
		if defineName(e) == name {
			d.mask.unset(DefineBit(e))
			d.entries = append(d.entries[:i], d.entries[i+1:]...)
			return true
		}
	}
	return false
}

// Has reports whether a define called name is present.
func (d *Defines) Has(name string) bool {
	_, ok := d.Value(name)
	return ok
}

// Value returns the value of the define called name; flag defines have an empty value.
func (d *Defines) Value(name string) (string, bool) {
	for _, e := range d.entries {
		if n, v, _ := strings.Cut(e, " "); n == name {
			return v, true
		}
	}
	return "", false
}

func (d *Defines) Mask() Mask        { return d.mask }
func (d *Defines) Len() int          { return len(d.entries) }
func (d *Defines) Entries() []string { return d.entries }

// Clear removes every define.
func (d *Defines) Clear() {
	d.entries = d.entries[:0]
	d.mask = Mask{}
}

// Link concatenates the entries of sets in order, keeping the first entry for each name.
func Link(sets ...*Defines) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, s := range sets {
		if s == nil {
			continue
		}
		for _, e := range s.entries {
			name := defineName(e)
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			out = append(out, e)
		}
	}
	return out
}

// KeyOf returns the variant key of sets. It equals MaskOf(Link(sets...)): a define shadowed by
// an earlier set with the same name contributes no bit.
func KeyOf(sets ...*Defines) Mask {
	var m Mask
	for i, s := range sets {
		if s == nil {
			continue
		}
		if !shadowsAny(sets[:i], s) {
			m = m.Or(s.mask)
			continue
		}
		for _, e := range s.entries {
			if !definedIn(sets[:i], defineName(e)) {
				m.set(DefineBit(e))
			}
		}
	}
	return m
}

// shadowsAny reports whether an earlier set defines a name that s also defines.
func shadowsAny(earlier []*Defines, s *Defines) bool {
	for _, e := range s.entries {
		if definedIn(earlier, defineName(e)) {
			return true
		}
	}
	return false
}

func definedIn(sets []*Defines, name string) bool {
	for _, s := range sets {
		if s != nil && s.Has(name) {
			return true
		}
	}
	return false
}

func defineName(define string) string {
	name, _, _ := strings.Cut(define, " ")
	return name
}

// MaskOf returns the key of a linked define list.
func MaskOf(defines []string) Mask {
	var m Mask
	for _, d := range defines {
		m.set(DefineBit(d))
	}
	return m
}
