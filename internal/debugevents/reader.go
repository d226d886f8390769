package debugevents

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// tailFrames reads complete frames from path starting at offset. It returns
// the decoded payloads and the offset of the first byte not consumed, which
// is where the next pass should resume. Missing files are treated as empty:
// a writer may not have created every per-kind file yet.
func tailFrames(path string, offset int64) ([][]byte, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, offset, nil
		}
		return nil, offset, err
	}
	defer f.Close()

	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return nil, offset, err
	}
	buf, err := io.ReadAll(f)
	if err != nil {
		return nil, offset, err
	}

	var payloads [][]byte
	pos := 0
	for pos < len(buf) {
		payload, consumed, err := DecodeFrame(buf[pos:])
		if err != nil {
			return nil, offset, fmt.Errorf("%s at offset %d: %w", path, offset+int64(pos), err)
		}
		if consumed == 0 {
			break // incomplete trailing frame, resume here next pass
		}
		payloads = append(payloads, payload)
		pos += consumed
	}
	return payloads, offset + int64(pos), nil
}

// TailExecutions reads execution records appended at or after offset.
func TailExecutions(path string, offset int64) ([]Execution, int64, error) {
	payloads, next, err := tailFrames(path, offset)
	if err != nil {
		return nil, offset, err
	}
	out := make([]Execution, 0, len(payloads))
	for _, p := range payloads {
		var e Execution
		if err := json.Unmarshal(p, &e); err != nil {
			return nil, offset, fmt.Errorf("debugevents: decode execution: %w", err)
		}
		out = append(out, e)
	}
	return out, next, nil
}

// TailSourceFiles reads source-file records appended at or after offset.
func TailSourceFiles(path string, offset int64) ([]SourceFile, int64, error) {
	payloads, next, err := tailFrames(path, offset)
	if err != nil {
		return nil, offset, err
	}
	out := make([]SourceFile, 0, len(payloads))
	for _, p := range payloads {
		var s SourceFile
		if err := json.Unmarshal(p, &s); err != nil {
			return nil, offset, fmt.Errorf("debugevents: decode source file: %w", err)
		}
		out = append(out, s)
	}
	return out, next, nil
}

// ReadMetadata reads the stream-start record. ok is false when the metadata
// file has no complete record yet.
func ReadMetadata(path string) (Metadata, bool, error) {
	payloads, _, err := tailFrames(path, 0)
	if err != nil {
		return Metadata{}, false, err
	}
	if len(payloads) == 0 {
		return Metadata{}, false, nil
	}
	var m Metadata
	if err := json.Unmarshal(payloads[0], &m); err != nil {
		return Metadata{}, false, fmt.Errorf("debugevents: decode metadata: %w", err)
	}
	return m, true, nil
}
