// Package keys implements the IMC raw-file key registry (spec §4.1): a
// static table of recognized block kinds, keyed by a two-character name and
// qualified by criticality and version, describing how many textual
// parameters each (name, version) pair carries.
//
// The table's shape mirrors the fixed-layout const blocks
// arloliu/mebo/section declares for its own binary header, but the values
// here describe a foreign, externally-defined wire format rather than one
// this module controls.
package keys

import "github.com/jgoedeke/IMCtermite/format"

// Byte-level format constants (spec §6).
const (
	// Sentinel marks the start of a block header.
	Sentinel byte = 0x7C // '|'
	// CritByte follows Sentinel for a critical-class block.
	CritByte byte = 0x7C // '|'
	// NonCritByte follows Sentinel for a non-critical-class block.
	NonCritByte byte = 0x23 // '#'
	// Sep separates header fields and, inside the payload, textual
	// parameters.
	Sep byte = 0x2C // ','
)

// ClassOf classifies the byte immediately following Sentinel.
func ClassOf(b byte) format.CriticalityClass {
	switch b {
	case CritByte:
		return format.ClassCritical
	case NonCritByte:
		return format.ClassNonCritical
	default:
		return format.ClassUnknown
	}
}

// Key identifies one block kind: a two-character name, qualified by
// criticality and version. Equality is by all three fields.
type Key struct {
	Critical bool
	Name     [2]byte
	Version  uint16
}

func (k Key) String() string {
	class := "#"
	if k.Critical {
		class = "|"
	}
	return class + string(k.Name[:]) + "/v" + itoa(uint64(k.Version))
}

// Entry describes a registered (name, version): a human-readable
// description and the fixed count of textual parameters its payload
// carries.
type Entry struct {
	Name           [2]byte
	Version        uint16
	Description    string
	ParameterCount int
}

// versioned holds every registered version of one key name, sorted
// ascending, so lookup can fall back to the highest version <= requested.
type versioned struct {
	critical bool
	entries  []Entry // sorted by Version ascending
}

// Registry is the static, immutable key table. The zero value is not
// usable; construct with New().
type Registry struct {
	byName map[[2]byte]*versioned
}

// New builds the registry with the fixed set of known IMC block kinds.
// Constructed once and shared by reference (spec §4.1: "constructed once").
func New() *Registry {
	r := &Registry{byName: make(map[[2]byte]*versioned)}
	for _, e := range knownEntries {
		r.register(e.critical, e.entry)
	}
	return r
}

func (r *Registry) register(critical bool, e Entry) {
	v, ok := r.byName[e.Name]
	if !ok {
		v = &versioned{critical: critical}
		r.byName[e.Name] = v
	}
	// Insert keeping entries sorted by Version ascending.
	i := 0
	for ; i < len(v.entries); i++ {
		if v.entries[i].Version > e.Version {
			break
		}
	}
	v.entries = append(v.entries, Entry{})
	copy(v.entries[i+1:], v.entries[i:])
	v.entries[i] = e
}

// Lookup returns the registered entry for (critical, name, version). If no
// exact version match exists, it falls back to the highest known version
// <= requested with the same (critical, name). It returns (Entry{}, false)
// if the name is not registered at all, or is registered under the other
// criticality class.
func (r *Registry) Lookup(critical bool, name [2]byte, version uint16) (Entry, bool) {
	v, ok := r.byName[name]
	if !ok || v.critical != critical {
		return Entry{}, false
	}

	var best *Entry
	for i := range v.entries {
		e := &v.entries[i]
		if e.Version == version {
			return *e, true
		}
		if e.Version <= version {
			best = e
		}
	}
	if best == nil {
		return Entry{}, false
	}

	return *best, true
}

// IsCritical reports whether name is registered as a critical key. The
// scanner does not call it: on a lookup miss it decides fatality from the
// block's own criticality byte (spec §4.2 step f).
func (r *Registry) IsCritical(name [2]byte) (bool, bool) {
	v, ok := r.byName[name]
	if !ok {
		return false, false
	}
	return v.critical, true
}

func itoa(n uint64) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}

type registryEntry struct {
	critical bool
	entry    Entry
}

// knownEntries is the hard-coded table of recognized IMC block kinds (spec
// §4.1). Names and per-version parameter counts follow the fields the
// Channel Assembler and Channel Facade (spec §4.5, §4.6) address by
// position.
var knownEntries = []registryEntry{
	// File-level metadata, survives across channels.
	{true, Entry{Name: [2]byte{'N', 'O'}, Version: 1, Description: "file origin/comment", ParameterCount: 1}},
	{true, Entry{Name: [2]byte{'N', 'L'}, Version: 1, Description: "file layout/next-block hint", ParameterCount: 1}},

	// Channel/group/measurement preamble blocks.
	{true, Entry{Name: [2]byte{'C', 'B'}, Version: 1, Description: "group begin", ParameterCount: 4}},
	{true, Entry{Name: [2]byte{'C', 'G'}, Version: 1, Description: "channel group", ParameterCount: 4}},
	{true, Entry{Name: [2]byte{'C', 'I'}, Version: 1, Description: "channel group index", ParameterCount: 3}},
	{true, Entry{Name: [2]byte{'C', 'T'}, Version: 1, Description: "channel group comment/trigger", ParameterCount: 2}},

	// Channel identity and terminal data marker.
	{true, Entry{Name: [2]byte{'C', 'N'}, Version: 1, Description: "channel name/id", ParameterCount: 8}},
	{true, Entry{Name: [2]byte{'C', 'N'}, Version: 2, Description: "channel name/id (v2, extra unit slot)", ParameterCount: 9}},
	{true, Entry{Name: [2]byte{'C', 'S'}, Version: 1, Description: "channel data (terminal, carries samples)", ParameterCount: 0}},

	// Component selector.
	{true, Entry{Name: [2]byte{'C', 'C'}, Version: 1, Description: "component index selector", ParameterCount: 1}},

	// Component-scoped and channel-scoped metadata.
	{true, Entry{Name: [2]byte{'C', 'D'}, Version: 1, Description: "abscissa (x) scaling", ParameterCount: 8}},
	{true, Entry{Name: [2]byte{'C', 'P'}, Version: 1, Description: "numeric type / packing", ParameterCount: 6}},
	{true, Entry{Name: [2]byte{'C', 'R'}, Version: 1, Description: "ordinate (y) scaling", ParameterCount: 8}},
	{true, Entry{Name: [2]byte{'C', 'b'}, Version: 1, Description: "sample count / block sizing", ParameterCount: 12}},

	// Non-critical: text/type metadata that may be absent without aborting
	// the parse.
	{false, Entry{Name: [2]byte{'N', 'T'}, Version: 1, Description: "free-form text/annotation", ParameterCount: 1}},
}
