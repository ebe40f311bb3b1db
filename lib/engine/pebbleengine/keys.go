package pebbleengine

import "github.com/ValentinKolb/catalogkv/lib/engine"

// Key layout: a one-byte namespace tag separates engine bookkeeping from
// user data, so the two never collide regardless of what an ident is
// named.
const (
	nsIdentRegistry byte = 0x00
	nsData          byte = 0x01
)

// identRegistryKey returns the bookkeeping key recording that id exists.
func identRegistryKey(id engine.Ident) []byte {
	key := make([]byte, 0, 1+len(id))
	key = append(key, nsIdentRegistry)
	key = append(key, []byte(id)...)
	return key
}

// identRegistryPrefix bounds a scan over every registered ident.
func identRegistryPrefix() []byte {
	return []byte{nsIdentRegistry}
}

// dataPrefix returns the key prefix for every record belonging to
// (id, prefix). NotPrefixed records share the ident's single ungrouped
// range.
func dataPrefix(id engine.Ident, prefix engine.Prefix) []byte {
	key := make([]byte, 0, 1+len(id)+1+8)
	key = append(key, nsData)
	key = append(key, []byte(id)...)
	key = append(key, 0)
	key = append(key, encodePrefix(prefix)...)
	return key
}

// recordKey returns the full key for one record within (id, prefix).
func recordKey(id engine.Ident, prefix engine.Prefix, recordID string) []byte {
	p := dataPrefix(id, prefix)
	return append(p, []byte(recordID)...)
}

// identDataPrefix bounds a scan over every record belonging to id,
// regardless of prefix - used by DropIdent to remove a whole ident's data
// in one range delete.
func identDataPrefix(id engine.Ident) []byte {
	key := make([]byte, 0, 1+len(id)+1)
	key = append(key, nsData)
	key = append(key, []byte(id)...)
	key = append(key, 0)
	return key
}

// encodePrefix maps a Prefix to a fixed-width, order-preserving 8-byte
// big-endian encoding. NotPrefixed (-1) maps to 0 so it sorts before every
// real prefix, which does not matter for correctness (ranges are always
// exact-prefix scans) but keeps the encoding simple.
func encodePrefix(p engine.Prefix) []byte {
	v := uint64(p + 1)
	return []byte{
		byte(v >> 56), byte(v >> 48), byte(v >> 40), byte(v >> 32),
		byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v),
	}
}

// prefixUpperBound returns the exclusive upper bound of the key range that
// starts with prefix, the standard "increment the last byte that isn't
// already 0xff" trick pebble range scans use.
func prefixUpperBound(prefix []byte) []byte {
	upper := append([]byte(nil), prefix...)
	for i := len(upper) - 1; i >= 0; i-- {
		if upper[i] != 0xff {
			upper[i]++
			return upper[:i+1]
		}
	}
	return nil // prefix is all 0xff: unbounded above
}
