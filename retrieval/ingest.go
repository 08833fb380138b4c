package retrieval

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/DachengChen/paiAnalyst/applog"
)

// Chunking defaults, in characters.
const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 100
)

// Extensions lists the file types the ingester reads.
var Extensions = []string{".txt", ".md"}

// Ingester splits documents into chunks and stores them in an index.
type Ingester struct {
	index     *Index
	chunkSize int
	overlap   int
}

// NewIngester returns an ingester. Non-positive sizes use the defaults.
func NewIngester(ix *Index, chunkSize, overlap int) *Ingester {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = DefaultChunkOverlap
		if overlap >= chunkSize {
			overlap = 0
		}
	}
	return &Ingester{index: ix, chunkSize: chunkSize, overlap: overlap}
}

// Supported reports whether path has an ingestible extension.
func Supported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// IngestFile replaces the chunks of one file and returns how many were
// stored.
func (in *Ingester) IngestFile(ctx context.Context, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	name := filepath.Base(path)
	chunks := SplitDocument(name, string(data), in.chunkSize, in.overlap)

	if err := in.index.DeleteFile(ctx, name); err != nil {
		return 0, fmt.Errorf("drop old chunks of %s: %w", name, err)
	}
	if err := in.index.Add(ctx, chunks); err != nil {
		return 0, fmt.Errorf("index %s: %w", name, err)
	}
	applog.Event("INDEX", "%s: %d chunks", name, len(chunks))
	return len(chunks), nil
}

// IngestDir ingests every supported file under dir.
func (in *Ingester) IngestDir(ctx context.Context, dir string) (files, chunks int, err error) {
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !Supported(path) {
			return nil
		}
		n, err := in.IngestFile(ctx, path)
		if err != nil {
			return err
		}
		files++
		chunks += n
		return nil
	})
	return files, chunks, err
}

// SplitDocument cuts text into pages at form feeds and each page into
// overlapping chunks. Chunk indexes run across the whole file.
func SplitDocument(filename, text string, size, overlap int) []Chunk {
	var out []Chunk
	idx := 0
	for p, page := range strings.Split(text, "\f") {
		for _, c := range SplitText(page, size, overlap) {
			out = append(out, Chunk{
				ID:       chunkID(filename, idx),
				Content:  c,
				Filename: filename,
				Index:    idx,
				Page:     p + 1,
			})
			idx++
		}
	}
	return out
}

// SplitText cuts text into chunks of at most size runes, breaking at
// the last space when possible, with overlap runes shared between
// neighbours.
func SplitText(text string, size, overlap int) []string {
	runes := []rune(strings.TrimSpace(text))
	if len(runes) == 0 {
		return nil
	}
	if overlap >= size {
		overlap = 0
	}

	var out []string
	start := 0
	for start < len(runes) {
		end := start + size
		if end >= len(runes) {
			end = len(runes)
		} else if sp := lastSpace(runes[start:end]); sp > 0 {
			end = start + sp
		}

		if c := strings.TrimSpace(string(runes[start:end])); c != "" {
			out = append(out, c)
		}
		if end == len(runes) {
			break
		}
		next := end - overlap
		if next <= start {
			next = end
		}
		start = next
	}
	return out
}

func lastSpace(r []rune) int {
	for i := len(r) - 1; i >= 0; i-- {
		if r[i] == ' ' || r[i] == '\n' || r[i] == '\t' {
			return i
		}
	}
	return -1
}

func chunkID(filename string, idx int) string {
	sum := sha256.Sum256([]byte(filename + "\x00" + strconv.Itoa(idx)))
	return hex.EncodeToString(sum[:8])
}

