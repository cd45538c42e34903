// Package batchio reads batch requests from text or JSON Lines files and
// writes classification results as JSON Lines.
package batchio

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/aalvaropc/diagroute/internal/domain"
)

type Format string

const (
	FormatText  Format = "text"
	FormatJSONL Format = "jsonl"
)

// maxLine bounds a single request line; long prompts are rare but not tiny.
const maxLine = 1 << 20

// FormatFor picks the input format from a file extension.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsonl", ".ndjson":
		return FormatJSONL
	default:
		return FormatText
	}
}

type Reader struct {
	newID func() string
}

type Option func(*Reader)

// WithIDFunc replaces the generator used for items without an id.
func WithIDFunc(fn func() string) Option {
	return func(r *Reader) {
		if fn != nil {
			r.newID = fn
		}
	}
}

func NewReader(opts ...Option) *Reader {
	r := &Reader{newID: uuid.NewString}
	for _, o := range opts {
		o(r)
	}
	return r
}

// ReadFile reads items from path, or from stdin when path is "-".
func (r *Reader) ReadFile(path string) ([]domain.BatchItem, error) {
	if path == "-" {
		return r.Read(os.Stdin, FormatText)
	}
	f, err := os.Open(path)
	if err != nil {
		kind := domain.KindExecution
		if errors.Is(err, fs.ErrNotExist) {
			kind = domain.KindNotFound
		}
		return nil, &domain.OpError{Op: "batchio.read", Kind: kind, Path: path, Err: err}
	}
	defer f.Close()

	items, err := r.Read(f, FormatFor(path))
	if err != nil {
		var oe *domain.OpError
		if errors.As(err, &oe) && oe.Path == "" {
			oe.Path = path
		}
		return nil, err
	}
	return items, nil
}

// Read parses items. Text input holds one request per line; blank lines and
// lines starting with "#" are skipped. JSONL input holds one {"id","request"}
// object per line. Missing ids get a generated one.
func (r *Reader) Read(in io.Reader, format Format) ([]domain.BatchItem, error) {
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), maxLine)

	var items []domain.BatchItem
	line := 0
	for sc.Scan() {
		line++
		raw := strings.TrimSpace(sc.Text())
		if raw == "" {
			continue
		}

		var it domain.BatchItem
		switch format {
		case FormatJSONL:
			if err := json.Unmarshal([]byte(raw), &it); err != nil {
				return nil, invalidLine(line, err.Error())
			}
			if strings.TrimSpace(it.Request) == "" {
				return nil, invalidLine(line, "request is required")
			}
		default:
			if strings.HasPrefix(raw, "#") {
				continue
			}
			it.Request = raw
		}

		if it.ID == "" {
			it.ID = r.newID()
		}
		items = append(items, it)
	}
	if err := sc.Err(); err != nil {
		return nil, &domain.OpError{Op: "batchio.read", Kind: domain.KindExecution, Err: err}
	}
	return items, nil
}

func invalidLine(n int, msg string) error {
	return &domain.OpError{
		Op:   "batchio.read",
		Kind: domain.KindInvalidRequest,
		Err:  fmt.Errorf("line %d: %s: %w", n, msg, domain.ErrInvalidRequest),
	}
}

// WriteResults writes one JSON object per result.
func WriteResults(w io.Writer, results []domain.BatchResult) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, res := range results {
		if err := enc.Encode(res); err != nil {
			return err
		}
	}
	return nil
}

// WriteFile writes results to path, replacing it atomically.
func WriteFile(path string, results []domain.BatchResult) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".batch-*.jsonl")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	bw := bufio.NewWriter(tmp)
	if err := WriteResults(bw, results); err != nil {
		tmp.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Summary counts results per tool; failed items are counted under "ERROR".
func Summary(results []domain.BatchResult) map[string]int {
	out := map[string]int{}
	for _, r := range results {
		if r.Classification == nil {
			out["ERROR"]++
			continue
		}
		out[string(r.Classification.Tool)]++
	}
	return out
}
