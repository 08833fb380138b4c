// Package retrieval answers questions from indexed documents by asking
// several hosted models the same question over the same retrieved
// context.
//
// Embeddings and similarity search are delegated to chromem-go; the
// embedding vectors themselves come from a hosted embedding API.
package retrieval

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"sync"

	chromem "github.com/philippgille/chromem-go"
)

// Chunk is one indexed span of a document.
type Chunk struct {
	ID       string
	Content  string
	Filename string
	Index    int // position of the chunk within its file
	Page     int // 1-based; pages are separated by form feeds
}

// Hit is a search result.
type Hit struct {
	Content    string  `json:"content"`
	Filename   string  `json:"filename"`
	ChunkIndex int     `json:"chunk_index"`
	Page       int     `json:"page"`
	Score      float32 `json:"score"`
}

// Display is the source citation shown under an answer.
func (h Hit) Display() string {
	return fmt.Sprintf("%s (chunk %d, page %d)", h.Filename, h.ChunkIndex, h.Page)
}

// Index is a chromem collection of document chunks.
type Index struct {
	mu  sync.RWMutex
	col *chromem.Collection
}

// Open opens (or creates) the persistent index in dir.
func Open(dir, collection string, embed chromem.EmbeddingFunc) (*Index, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("create index dir: %w", err)
	}
	db, err := chromem.NewPersistentDB(dir, false)
	if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}
	return newIndex(db, collection, embed)
}

// NewMemoryIndex returns an index that lives only in memory.
func NewMemoryIndex(collection string, embed chromem.EmbeddingFunc) (*Index, error) {
	return newIndex(chromem.NewDB(), collection, embed)
}

func newIndex(db *chromem.DB, collection string, embed chromem.EmbeddingFunc) (*Index, error) {
	col, err := db.GetOrCreateCollection(collection, nil, embed)
	if err != nil {
		return nil, fmt.Errorf("open collection %s: %w", collection, err)
	}
	return &Index{col: col}, nil
}

// OpenAIEmbeddings embeds text with OpenAI's embedding API.
func OpenAIEmbeddings(apiKey, model string) chromem.EmbeddingFunc {
	if model == "" {
		model = "text-embedding-3-small"
	}
	return chromem.NewEmbeddingFuncOpenAI(apiKey, chromem.EmbeddingModelOpenAI(model))
}

// Add embeds and stores chunks.
func (ix *Index) Add(ctx context.Context, chunks []Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	docs := make([]chromem.Document, len(chunks))
	for i, c := range chunks {
		docs[i] = chromem.Document{
			ID:      c.ID,
			Content: c.Content,
			Metadata: map[string]string{
				"filename":    c.Filename,
				"chunk_index": strconv.Itoa(c.Index),
				"source_page": strconv.Itoa(c.Page),
			},
		}
	}
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return ix.col.AddDocuments(ctx, docs, runtime.NumCPU())
}

// DeleteFile removes every chunk of filename.
func (ix *Index) DeleteFile(ctx context.Context, filename string) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return ix.col.Delete(ctx, map[string]string{"filename": filename}, nil)
}

// Count returns the number of stored chunks.
func (ix *Index) Count() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.col.Count()
}

// Search returns up to k chunks most similar to q.
func (ix *Index) Search(ctx context.Context, q string, k int) ([]Hit, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if n := ix.col.Count(); k > n {
		k = n
	}
	if k <= 0 {
		return nil, nil
	}
	results, err := ix.col.Query(ctx, q, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}

	hits := make([]Hit, 0, len(results))
	for _, r := range results {
		idx, _ := strconv.Atoi(r.Metadata["chunk_index"])
		page, _ := strconv.Atoi(r.Metadata["source_page"])
		hits = append(hits, Hit{
			Content:    r.Content,
			Filename:   r.Metadata["filename"],
			ChunkIndex: idx,
			Page:       page,
			Score:      r.Similarity,
		})
	}
	return hits, nil
}
