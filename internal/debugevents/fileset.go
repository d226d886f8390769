package debugevents

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Prefix shared by all files of a debug-event file set.
const Prefix = "lensdbg_events"

// Suffixes of the three per-kind files.
const (
	MetadataSuffix    = ".metadata"
	ExecutionSuffix   = ".execution"
	SourceFilesSuffix = ".source_files"
)

// ErrNoDebugData indicates the logdir holds no debug-event file set.
var ErrNoDebugData = errors.New("debugevents: no debug-event file set found")

// FileSet names the three files of one recorded run.
type FileSet struct {
	LogDir          string
	Stamp           string
	MetadataPath    string
	ExecutionPath   string
	SourceFilesPath string
}

// Discover locates the debug-event file set in logdir. When several sets are
// present (not supported for querying yet) the newest stamp wins. Returns
// ErrNoDebugData if none exists.
func Discover(logdir string) (FileSet, error) {
	entries, err := os.ReadDir(logdir)
	if err != nil {
		if os.IsNotExist(err) {
			return FileSet{}, ErrNoDebugData
		}
		return FileSet{}, err
	}
	var stamps []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, Prefix+".") || !strings.HasSuffix(name, MetadataSuffix) {
			continue
		}
		stamp := strings.TrimSuffix(strings.TrimPrefix(name, Prefix+"."), MetadataSuffix)
		if stamp != "" {
			stamps = append(stamps, stamp)
		}
	}
	if len(stamps) == 0 {
		return FileSet{}, ErrNoDebugData
	}
	// Stamps are zero-padded millisecond timestamps, so lexical order is
	// chronological.
	sort.Strings(stamps)
	stamp := stamps[len(stamps)-1]
	base := filepath.Join(logdir, Prefix+"."+stamp)
	return FileSet{
		LogDir:          logdir,
		Stamp:           stamp,
		MetadataPath:    base + MetadataSuffix,
		ExecutionPath:   base + ExecutionSuffix,
		SourceFilesPath: base + SourceFilesSuffix,
	}, nil
}
