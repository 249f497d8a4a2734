package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"alfredoptarigan/resume-ranker/internal/logger"
	"alfredoptarigan/resume-ranker/internal/models"
)

var ErrIndexDisabled = errors.New("resume index is disabled")

// ResumeIndex keeps a searchable copy of stored resume text. It is only ever
// written after a commit and has no influence on scores or ranks.
type ResumeIndex interface {
	Index(ctx context.Context, resume *models.Resume) error
	Remove(ctx context.Context, resumeID uuid.UUID) error
	Search(ctx context.Context, query string, limit int) ([]models.SearchHit, error)
}

const (
	indexChunkSize    = 1000
	indexChunkOverlap = 100
	snippetLength     = 240
)

type resumeIndex struct {
	qdrant  QdrantService
	gemini  GeminiService
	chunker TextChunker
	log     *zap.Logger
}

func NewResumeIndex(qdrant QdrantService, gemini GeminiService, log *zap.Logger) ResumeIndex {
	return &resumeIndex{
		qdrant:  qdrant,
		gemini:  gemini,
		chunker: NewTextChunker(),
		log:     log.Named("resume_index"),
	}
}

// Index replaces every chunk previously stored for the resume.
func (r *resumeIndex) Index(ctx context.Context, resume *models.Resume) error {
	if err := r.qdrant.DeleteResume(ctx, resume.ID.String()); err != nil {
		return err
	}

	texts := r.chunker.ChunkText(resume.ResumeText, indexChunkSize, indexChunkOverlap)
	chunks := make([]IndexedChunk, 0, len(texts))
	for i, text := range texts {
		embedding, err := r.gemini.GenerateEmbedding(ctx, text)
		if err != nil {
			return fmt.Errorf("failed to embed chunk %d: %w", i, err)
		}
		chunks = append(chunks, IndexedChunk{
			PointID:   uuid.NewSHA1(resume.ID, []byte(strconv.Itoa(i))).String(),
			ResumeID:  resume.ID.String(),
			Text:      text,
			Embedding: embedding,
		})
	}

	if err := r.qdrant.UpsertChunks(ctx, chunks); err != nil {
		return err
	}

	r.log.Debug("resume indexed", append(logger.ResumeFields(resume.ID, resume.Email), zap.Int("chunks", len(chunks)))...)
	return nil
}

func (r *resumeIndex) Remove(ctx context.Context, resumeID uuid.UUID) error {
	return r.qdrant.DeleteResume(ctx, resumeID.String())
}

// Search returns at most limit resumes, each with its best matching chunk.
func (r *resumeIndex) Search(ctx context.Context, query string, limit int) ([]models.SearchHit, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("empty search query")
	}
	if limit <= 0 {
		limit = 10
	}

	embedding, err := r.gemini.GenerateEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to generate query embedding: %w", err)
	}

	results, err := r.qdrant.SearchSimilar(ctx, embedding, limit*3)
	if err != nil {
		return nil, err
	}

	best := make(map[string]SearchResult)
	for _, result := range results {
		if result.ResumeID == "" {
			continue
		}
		if prev, ok := best[result.ResumeID]; !ok || result.Score > prev.Score {
			best[result.ResumeID] = result
		}
	}

	hits := make([]models.SearchHit, 0, len(best))
	for id, result := range best {
		hits = append(hits, models.SearchHit{
			ResumeID: id,
			Score:    result.Score,
			Snippet:  logger.Truncate(result.Text, snippetLength),
		})
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].ResumeID < hits[j].ResumeID
	})
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

type disabledIndex struct{}

// NewDisabledResumeIndex skips indexing and fails searches with ErrIndexDisabled.
func NewDisabledResumeIndex() ResumeIndex {
	return disabledIndex{}
}

func (disabledIndex) Index(context.Context, *models.Resume) error { return nil }

func (disabledIndex) Remove(context.Context, uuid.UUID) error { return nil }

func (disabledIndex) Search(context.Context, string, int) ([]models.SearchHit, error) {
	return nil, ErrIndexDisabled
}
