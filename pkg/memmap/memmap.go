// Package memmap loads the memory map an arena is linked into: where the heap
// window sits, whether it carries a persisted header, and which address
// ranges belong to something else (kernel image, stack, peripherals).
//
// A map is written in YAML:
//
//	board: rpi3
//	arena:
//	  base: 0x0100_0000
//	  limit: 0x0200_0000
//	  header: true
//	reserved:
//	  - name: kernel
//	    base: 0x0008_0000
//	    size: 0x0018_0000
//
// Each range gives either limit or size. Addresses accept any Go integer
// literal, underscores included.
package memmap

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/joshuapare/arenakit/arena"
	"github.com/joshuapare/arenakit/internal/format"
)

var (
	// ErrOverlap indicates the arena window intersects a reserved range.
	ErrOverlap = errors.New("memmap: arena overlaps reserved range")

	// ErrBadRange indicates a range with no extent, one that wraps, or one
	// whose limit and size disagree.
	ErrBadRange = errors.New("memmap: invalid range")

	// ErrNoArena indicates the map has no arena section.
	ErrNoArena = errors.New("memmap: missing arena")

	// ErrBadAdvance indicates an unknown advance policy name.
	ErrBadAdvance = errors.New("memmap: unknown advance policy")
)

// Addr is an address or length as written in the map.
type Addr uint64

// UnmarshalYAML accepts decimal, hex, octal and binary literals.
func (a *Addr) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("memmap: line %d: address must be a scalar", n.Line)
	}
	v, err := strconv.ParseUint(strings.TrimSpace(n.Value), 0, 64)
	if err != nil {
		return fmt.Errorf("memmap: line %d: bad address %q: %w", n.Line, n.Value, err)
	}
	*a = Addr(v)
	return nil
}

// MarshalYAML writes addresses in hex.
func (a Addr) MarshalYAML() (any, error) {
	return fmt.Sprintf("0x%08X", uint64(a)), nil
}

// Range is a named span of the address space.
type Range struct {
	Name  string `yaml:"name,omitempty"`
	Base  Addr   `yaml:"base"`
	Limit Addr   `yaml:"limit,omitempty"`
	Size  Addr   `yaml:"size,omitempty"`
}

// End resolves the exclusive end of the range from limit or size.
func (r Range) End() (uint64, error) {
	base := uint64(r.Base)
	switch {
	case r.Limit == 0 && r.Size == 0:
		return 0, fmt.Errorf("%w: %s: needs limit or size", ErrBadRange, r.label())
	case r.Size != 0:
		end := base + uint64(r.Size)
		if end < base {
			return 0, fmt.Errorf("%w: %s: wraps the address space", ErrBadRange, r.label())
		}
		if r.Limit != 0 && uint64(r.Limit) != end {
			return 0, fmt.Errorf("%w: %s: limit %#x disagrees with base+size %#x",
				ErrBadRange, r.label(), uint64(r.Limit), end)
		}
		return end, nil
	default:
		if uint64(r.Limit) <= base {
			return 0, fmt.Errorf("%w: %s: limit %#x not above base %#x",
				ErrBadRange, r.label(), uint64(r.Limit), base)
		}
		return uint64(r.Limit), nil
	}
}

func (r Range) label() string {
	if r.Name == "" {
		return fmt.Sprintf("range@%#x", uint64(r.Base))
	}
	return r.Name
}

// Arena describes the heap window.
type Arena struct {
	Range   `yaml:",inline"`
	Header  bool   `yaml:"header"`
	Advance string `yaml:"advance,omitempty"`
}

// Map is a parsed memory map.
type Map struct {
	Board    string  `yaml:"board,omitempty"`
	Arena    *Arena  `yaml:"arena"`
	Reserved []Range `yaml:"reserved,omitempty"`
}

// Load reads and validates the map at path.
func Load(path string) (*Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Parse decodes and validates a map. Unknown keys are rejected.
func Parse(data []byte) (*Map, error) {
	dec := yaml.NewDecoder(strings.NewReader(string(data)))
	dec.KnownFields(true)
	var m Map
	if err := dec.Decode(&m); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNoArena
		}
		return nil, fmt.Errorf("memmap: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks every range and that the arena stays clear of all
// reserved ranges. Reserved ranges may overlap each other.
func (m *Map) Validate() error {
	if m.Arena == nil {
		return ErrNoArena
	}
	r, err := m.Region()
	if err != nil {
		return err
	}
	if m.Arena.Header {
		if r.Size() < format.HeaderSize {
			return fmt.Errorf("%w: arena of %d bytes", arena.ErrTooSmall, r.Size())
		}
		if r.Size()-format.HeaderSize > format.MaxCapacity {
			return fmt.Errorf("%w: arena of %d bytes", arena.ErrTooLarge, r.Size())
		}
	}
	if _, err := m.Policy(); err != nil {
		return err
	}

	var errs []error
	for _, res := range m.Reserved {
		end, err := res.End()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if uint64(r.Base) < end && uint64(res.Base) < uint64(r.Limit) {
			errs = append(errs, fmt.Errorf("%w: %s [%#x, %#x)",
				ErrOverlap, res.label(), uint64(res.Base), end))
		}
	}
	return errors.Join(errs...)
}

// Region returns the arena window.
func (m *Map) Region() (arena.Region, error) {
	if m.Arena == nil {
		return arena.Region{}, ErrNoArena
	}
	end, err := m.Arena.End()
	if err != nil {
		return arena.Region{}, err
	}
	if end > uint64(^uintptr(0)) {
		return arena.Region{}, fmt.Errorf("%w: arena ends past the host address space", ErrBadRange)
	}
	r := arena.Region{Base: arena.Addr(m.Arena.Base), Limit: arena.Addr(end)}
	if err := r.Validate(); err != nil {
		return arena.Region{}, err
	}
	return r, nil
}

// Policy maps the arena's advance field to a cursor policy. An empty field
// selects AdvanceBySize.
func (m *Map) Policy() (arena.AdvancePolicy, error) {
	if m.Arena == nil {
		return arena.AdvanceBySize, ErrNoArena
	}
	switch strings.ToLower(m.Arena.Advance) {
	case "", "size":
		return arena.AdvanceBySize, nil
	case "align":
		return arena.AdvanceByAlign, nil
	}
	return arena.AdvanceBySize, fmt.Errorf("%w: %q", ErrBadAdvance, m.Arena.Advance)
}

// Encode writes m as YAML.
func (m *Map) Encode(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(m); err != nil {
		return err
	}
	return enc.Close()
}
