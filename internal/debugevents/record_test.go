package debugevents

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func TestFrameRoundTrip(t *testing.T) {
	payload := []byte(`{"op_type":"MatMul"}`)
	frame := EncodeFrame(payload)
	got, consumed, err := DecodeFrame(frame)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if consumed != len(frame) {
		t.Fatalf("consumed %d want %d", consumed, len(frame))
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("payload %q want %q", got, payload)
	}
}

func TestFrameEmptyPayload(t *testing.T) {
	frame := EncodeFrame(nil)
	got, consumed, err := DecodeFrame(frame)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if consumed != len(frame) || len(got) != 0 {
		t.Fatalf("consumed=%d len=%d", consumed, len(got))
	}
}

func TestDecodeIncompleteFrame(t *testing.T) {
	frame := EncodeFrame([]byte("hello world"))
	for cut := 0; cut < len(frame); cut++ {
		_, consumed, err := DecodeFrame(frame[:cut])
		if err != nil {
			t.Fatalf("cut=%d: unexpected error %v", cut, err)
		}
		if consumed != 0 {
			t.Fatalf("cut=%d: partial frame consumed %d bytes", cut, consumed)
		}
	}
}

func TestDecodeCorruptFrame(t *testing.T) {
	frame := EncodeFrame([]byte("hello world"))
	frame[2] ^= 0xff // flip a payload byte, checksum no longer matches
	if _, _, err := DecodeFrame(frame); err != ErrCorruptFrame {
		t.Fatalf("err = %v, want ErrCorruptFrame", err)
	}
}

func TestDecodeOversizedLengthPrefix(t *testing.T) {
	// A flipped bit in the length prefix can decode to an absurd payload
	// length; that must surface as corruption, never a panic.
	var frame [16]byte
	n := binary.PutUvarint(frame[:], 1<<63)
	if _, _, err := DecodeFrame(frame[:n+4]); err != ErrCorruptFrame {
		t.Fatalf("err = %v, want ErrCorruptFrame", err)
	}
	n = binary.PutUvarint(frame[:], MaxFrameLen+1)
	if _, _, err := DecodeFrame(frame[:n+4]); err != ErrCorruptFrame {
		t.Fatalf("err = %v, want ErrCorruptFrame", err)
	}
}

func TestDecodeOverlongVarint(t *testing.T) {
	// 10 continuation bytes never terminate a uvarint; that is corruption,
	// not a writer mid-append, and must not be retried forever.
	frame := bytes.Repeat([]byte{0xff}, 12)
	if _, _, err := DecodeFrame(frame); err != ErrCorruptFrame {
		t.Fatalf("err = %v, want ErrCorruptFrame", err)
	}
}

func TestDecodeConsecutiveFrames(t *testing.T) {
	var buf []byte
	payloads := [][]byte{[]byte("a"), []byte("bb"), []byte("ccc")}
	for _, p := range payloads {
		buf = append(buf, EncodeFrame(p)...)
	}
	pos := 0
	for i, want := range payloads {
		got, consumed, err := DecodeFrame(buf[pos:])
		if err != nil {
			t.Fatalf("frame %d: %v", i, err)
		}
		if consumed == 0 {
			t.Fatalf("frame %d: unexpectedly incomplete", i)
		}
		if !bytes.Equal(got, want) {
			t.Fatalf("frame %d: %q want %q", i, got, want)
		}
		pos += consumed
	}
	if pos != len(buf) {
		t.Fatalf("leftover bytes: %d", len(buf)-pos)
	}
}
