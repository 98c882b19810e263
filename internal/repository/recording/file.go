package recording

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/goccy/go-json"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/oshokin/ulmotion/internal/config"
	"github.com/oshokin/ulmotion/internal/domain/motion"
)

// Repository defines persistence operations for recordings.
type Repository interface {
	Load(ctx context.Context) (*motion.Recording, error)
	Save(ctx context.Context, recording *motion.Recording) error
}

// Format is an on-disk encoding of a recording.
type Format int

const (
	// FormatJSON stores recordings as JSON.
	FormatJSON Format = iota
	// FormatMsgpack stores recordings as msgpack.
	FormatMsgpack
)

// FileRepository persists a recording to a single file on disk.
type FileRepository struct {
	// path is the filesystem location of the recording.
	path string
	// format is derived from the file extension.
	format Format
	// mu protects concurrent access to the file.
	mu sync.Mutex
}

// ErrNotFound is returned when the recording file does not exist.
var ErrNotFound = errors.New("recording not found")

// jsonRecording is the JSON form of motion.Recording with NaN as null.
type jsonRecording struct {
	SamplingRate float64         `json:"sampling_rate"`
	Columns      []string        `json:"columns,omitempty"`
	Samples      []motion.Series `json:"samples"`
}

// NewFileRepository creates a repository that reads/writes the recording at
// the provided path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path:   filepath.Clean(path),
		format: FormatFor(path),
	}
}

// FormatFor returns the encoding used for path.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".msgpack", ".mp":
		return FormatMsgpack
	default:
		return FormatJSON
	}
}

// Path returns the file the repository reads and writes.
func (r *FileRepository) Path() string {
	return r.path
}

// Load reads and validates the recording.
func (r *FileRepository) Load(_ context.Context) (*motion.Recording, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read recording file: %w", err)
	}

	recording, err := decode(contents, r.format)
	if err != nil {
		return nil, fmt.Errorf("decode recording file: %w", err)
	}

	if err = recording.Validate(); err != nil {
		return nil, err
	}

	return recording, nil
}

// Save validates and writes the recording.
func (r *FileRepository) Save(_ context.Context, recording *motion.Recording) error {
	if err := recording.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := encode(recording, r.format)
	if err != nil {
		return fmt.Errorf("encode recording: %w", err)
	}

	if err = os.WriteFile(r.path, data, config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("write recording file: %w", err)
	}

	return nil
}

func decode(contents []byte, format Format) (*motion.Recording, error) {
	if format == FormatMsgpack {
		var recording motion.Recording
		if err := msgpack.Unmarshal(contents, &recording); err != nil {
			return nil, err
		}

		return &recording, nil
	}

	var wire jsonRecording
	if err := json.Unmarshal(contents, &wire); err != nil {
		return nil, err
	}

	samples := make([][]float64, len(wire.Samples))
	for i, row := range wire.Samples {
		samples[i] = row
	}

	return &motion.Recording{
		SamplingRate: wire.SamplingRate,
		Columns:      wire.Columns,
		Samples:      samples,
	}, nil
}

func encode(recording *motion.Recording, format Format) ([]byte, error) {
	if format == FormatMsgpack {
		return msgpack.Marshal(recording)
	}

	samples := make([]motion.Series, len(recording.Samples))
	for i, row := range recording.Samples {
		samples[i] = row
	}

	return json.MarshalIndent(jsonRecording{
		SamplingRate: recording.SamplingRate,
		Columns:      recording.Columns,
		Samples:      samples,
	}, "", "  ")
}
