package pipeline

import (
	"sort"

	"github.com/samber/lo"
	"github.com/vytor/mnemoflash/internal/models"
)

const (
	reasonAutoSelected = "Auto-selected best match"
	reasonUserSelected = "User selected"
)

// SortCandidates returns a copy of cands with each chunk's candidates ordered
// by descending phonetic similarity. Ties keep their upstream order.
func SortCandidates(cands []models.ChunkCandidates) []models.ChunkCandidates {
	return lo.Map(cands, func(c models.ChunkCandidates, _ int) models.ChunkCandidates {
		sorted := append([]models.AnchorCandidate(nil), c.Candidates...)
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].PhoneticSimilarity > sorted[j].PhoneticSimilarity
		})
		return models.ChunkCandidates{Chunk: c.Chunk, Candidates: sorted}
	})
}

// AutoSelect picks the most similar candidate for every chunk. Chunks without
// candidates get no selection.
func AutoSelect(cands []models.ChunkCandidates) []models.SelectedAnchor {
	return lo.FilterMap(SortCandidates(cands), func(c models.ChunkCandidates, _ int) (models.SelectedAnchor, bool) {
		if len(c.Candidates) == 0 {
			return models.SelectedAnchor{}, false
		}
		best := c.Candidates[0]
		return models.SelectedAnchor{
			Chunk:      c.Chunk,
			AnchorWord: best.Word,
			Score:      best.PhoneticSimilarity,
			Reason:     reasonAutoSelected,
		}, true
	})
}

// selectAnchor returns a new selection list where chunk maps to word,
// replacing any earlier choice for the same chunk.
func selectAnchor(cands []models.ChunkCandidates, selected []models.SelectedAnchor, chunk, word string) ([]models.SelectedAnchor, error) {
	group, ok := lo.Find(cands, func(c models.ChunkCandidates) bool { return c.Chunk == chunk })
	if !ok {
		return nil, ErrUnknownChunk
	}
	cand, ok := lo.Find(group.Candidates, func(a models.AnchorCandidate) bool { return a.Word == word })
	if !ok {
		return nil, ErrUnknownCandidate
	}

	choice := models.SelectedAnchor{
		Chunk:      chunk,
		AnchorWord: cand.Word,
		Score:      cand.PhoneticSimilarity,
		Reason:     reasonUserSelected,
	}
	byChunk := lo.KeyBy(selected, func(s models.SelectedAnchor) string { return s.Chunk })
	byChunk[chunk] = choice

	// keep chunk order
	return lo.FilterMap(cands, func(c models.ChunkCandidates, _ int) (models.SelectedAnchor, bool) {
		s, ok := byChunk[c.Chunk]
		return s, ok
	}), nil
}
