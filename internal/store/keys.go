package store

import (
	"encoding/binary"
)

// Keyspace helpers for the Pebble index.
//
// Layout (byte-wise, lexicographically sortable):
// - run/exec/{index_be8}            (execution digest records)
// - run/src/k/{index_be8}           (source-file keys in discovery order)
// - run/src/c/{host}\x00{path}      (source-file line content)
// - run/meta/start                  (stream start wall time, float64 bits)
// - run/meta/count/exec             (durable digest count)
// - run/meta/off/{name}             (per-file ingestion byte offsets)

var (
	execPrefix    = []byte("run/exec/")
	srcKeyPrefix  = []byte("run/src/k/")
	srcContentPfx = []byte("run/src/c/")
	keyStartTime  = []byte("run/meta/start")
	keyExecCount  = []byte("run/meta/count/exec")
	offPrefix     = []byte("run/meta/off/")
)

func appendBE8(dst []byte, v uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	return append(dst, b[:]...)
}

// keyExec builds the digest key with a big-endian index for ordered scans.
func keyExec(index uint64) []byte {
	return appendBE8(append([]byte(nil), execPrefix...), index)
}

// keyExecUpperBound is the exclusive upper bound for digest range scans.
func keyExecUpperBound(end uint64) []byte {
	return keyExec(end)
}

// keySrcKey builds the source-file-key record key.
func keySrcKey(index uint64) []byte {
	return appendBE8(append([]byte(nil), srcKeyPrefix...), index)
}

// keySrcContent builds the content key for one (host, path) pair. Host names
// cannot contain NUL, so the separator is unambiguous.
func keySrcContent(host, path string) []byte {
	k := make([]byte, 0, len(srcContentPfx)+len(host)+1+len(path))
	k = append(k, srcContentPfx...)
	k = append(k, host...)
	k = append(k, 0x00)
	k = append(k, path...)
	return k
}

// keyOffset builds the per-file ingestion offset key.
func keyOffset(name string) []byte {
	k := make([]byte, 0, len(offPrefix)+len(name))
	k = append(k, offPrefix...)
	k = append(k, name...)
	return k
}

func encodeBE8(v uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	return b[:]
}

func decodeBE8(b []byte) uint64 {
	if len(b) < 8 {
		return 0
	}
	return binary.BigEndian.Uint64(b)
}
