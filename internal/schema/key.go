package schema

// KeyKind tells how a table's primary key is shaped.
type KeyKind int

const (
	KeyNone KeyKind = iota
	KeySingle
	KeyComposite
)

// KeySpec describes a table's primary key.
type KeySpec struct {
	Kind    KeyKind
	Columns []string
}

// NoKey returns a KeySpec without a primary key.
func NoKey() KeySpec { return KeySpec{} }

// Single returns a one-column key.
func Single(col string) KeySpec { return KeySpec{Kind: KeySingle, Columns: []string{col}} }

// Composite returns a multi-column key. A single column collapses to Single.
func Composite(cols ...string) KeySpec {
	switch len(cols) {
	case 0:
		return NoKey()
	case 1:
		return Single(cols[0])
	}
	return KeySpec{Kind: KeyComposite, Columns: append([]string(nil), cols...)}
}

// Contains reports whether col is part of the key.
func (k KeySpec) Contains(col string) bool {
	for _, c := range k.Columns {
		if c == col {
			return true
		}
	}
	return false
}
