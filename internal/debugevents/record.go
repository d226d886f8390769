package debugevents

import (
	"encoding/binary"
	"errors"
	"hash/crc32"
)

// Frame encoding: uvarint payloadLen | payload | crc32c(payload)

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

// ErrCorruptFrame reports a frame that can never decode: a checksum
// mismatch, an over-long varint, or a length prefix beyond MaxFrameLen.
var ErrCorruptFrame = errors.New("debugevents: corrupt frame")

// MaxFrameLen bounds a frame payload. A length prefix above it cannot come
// from EncodeFrame, so it marks on-disk corruption rather than a writer
// mid-append.
const MaxFrameLen = 64 << 20

// EncodeFrame frames a payload for appending to an event file.
func EncodeFrame(payload []byte) []byte {
	out := make([]byte, 0, 10+len(payload)+4)
	var tmp [10]byte
	n := binary.PutUvarint(tmp[:], uint64(len(payload)))
	out = append(out, tmp[:n]...)
	out = append(out, payload...)

	var crcb [4]byte
	binary.BigEndian.PutUint32(crcb[:], crc32.Checksum(payload, castagnoli))
	out = append(out, crcb[:]...)
	return out
}

// DecodeFrame decodes the first frame in b.
//
// Returns the payload and the number of bytes consumed. consumed == 0 with a
// nil error means the frame is incomplete (a writer is mid-append); callers
// should retry from the same offset later. A checksum mismatch on a complete
// frame returns ErrCorruptFrame.
func DecodeFrame(b []byte) (payload []byte, consumed int, err error) {
	plen, n := binary.Uvarint(b)
	if n == 0 {
		return nil, 0, nil // incomplete length prefix
	}
	if n < 0 || plen > MaxFrameLen {
		return nil, 0, ErrCorruptFrame
	}
	total := n + int(plen) + 4
	if total > len(b) {
		return nil, 0, nil // incomplete frame
	}
	payload = b[n : n+int(plen)]
	expect := binary.BigEndian.Uint32(b[n+int(plen) : total])
	if crc32.Checksum(payload, castagnoli) != expect {
		return nil, 0, ErrCorruptFrame
	}
	return append([]byte(nil), payload...), total, nil
}
