package qdrant

import "math"

// maxMarginalRelevance greedily selects up to k candidates, at each step
// picking the one maximizing lambda*relevance - (1-lambda)*max similarity to
// anything already selected. Candidates without vectors fall back to their
// backend score for relevance and contribute no redundancy penalty.
func maxMarginalRelevance(queryVector []float32, candidates []scoredPoint, lambda float64, k int) []scoredPoint {
	if k <= 0 || len(candidates) == 0 {
		return nil
	}
	if k > len(candidates) {
		k = len(candidates)
	}

	relevance := make([]float64, len(candidates))
	for i, c := range candidates {
		if len(c.Vector) > 0 {
			relevance[i] = cosineSimilarity(queryVector, c.Vector)
		} else {
			relevance[i] = c.Score
		}
	}

	selected := make([]scoredPoint, 0, k)
	selectedIdx := make([]int, 0, k)
	picked := make([]bool, len(candidates))

	for len(selected) < k {
		best := -1
		bestScore := math.Inf(-1)
		for i := range candidates {
			if picked[i] {
				continue
			}
			redundancy := 0.0
			for _, j := range selectedIdx {
				if len(candidates[i].Vector) == 0 || len(candidates[j].Vector) == 0 {
					continue
				}
				if sim := cosineSimilarity(candidates[i].Vector, candidates[j].Vector); sim > redundancy {
					redundancy = sim
				}
			}
			score := lambda*relevance[i] - (1-lambda)*redundancy
			if score > bestScore {
				bestScore = score
				best = i
			}
		}
		if best < 0 {
			break
		}
		picked[best] = true
		selectedIdx = append(selectedIdx, best)
		selected = append(selected, candidates[best])
	}
	return selected
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
