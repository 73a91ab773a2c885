package export

import (
	"sort"
	"strings"
)

// vibeTags splits the "|"-joined gemini_analysis.vibe value (§6: a photo can
// carry several vibe tags) back into its individual tags, so each one can be
// indexed/matched the same way TopObjects already is.
func vibeTags(p Photo) []string {
	if p.Gemini == nil || p.Gemini.Vibe == "" {
		return nil
	}
	return strings.Split(p.Gemini.Vibe, "|")
}

// Neighbor is one precomputed similar-image entry (§4.8).
type Neighbor struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// signalIndex groups photo ids under whatever value they share for one
// signal family, the "inverted index" the spec names as the similarity
// computation's mechanism rather than a pairwise O(n^2) scan.
type signalIndex map[string][]string

// BuildSimilarity computes up to six neighbors per photo using four
// weighted signal families (§4.8): shared vibe (+3 per match), shared
// object label (+4 per match), same scene label (+2), same setting label
// (+1). Ties break by descending score then ascending id; the reason
// string names the first matching signal family in weight-list scan
// order (vibe, object, scene, setting) — the spec does not pin down scan
// order explicitly, so this follows the order the weights are listed in.
func BuildSimilarity(photos []Photo) map[string][]Neighbor {
	vibeIdx := signalIndex{}
	objectIdx := signalIndex{}
	sceneIdx := signalIndex{}
	settingIdx := signalIndex{}

	for _, p := range photos {
		vibeSeen := map[string]bool{}
		for _, tag := range vibeTags(p) {
			if vibeSeen[tag] {
				continue
			}
			vibeSeen[tag] = true
			vibeIdx[tag] = append(vibeIdx[tag], p.ID)
		}
		seen := map[string]bool{}
		for _, label := range p.TopObjects {
			if seen[label] {
				continue
			}
			seen[label] = true
			objectIdx[label] = append(objectIdx[label], p.ID)
		}
		if p.Scene != "" {
			sceneIdx[p.Scene] = append(sceneIdx[p.Scene], p.ID)
		}
		if p.Gemini != nil && p.Gemini.Setting != "" {
			settingIdx[p.Gemini.Setting] = append(settingIdx[p.Gemini.Setting], p.ID)
		}
	}

	out := make(map[string][]Neighbor, len(photos))
	for _, p := range photos {
		scores := map[string]int{}
		reasons := map[string]string{}

		add := func(ids []string, weight int, reason string) {
			for _, other := range ids {
				if other == p.ID {
					continue
				}
				scores[other] += weight
				if _, ok := reasons[other]; !ok {
					reasons[other] = reason
				}
			}
		}

		vibeSeen := map[string]bool{}
		for _, tag := range vibeTags(p) {
			if vibeSeen[tag] {
				continue
			}
			vibeSeen[tag] = true
			add(vibeIdx[tag], 3, "shared vibe")
		}
		objSeen := map[string]bool{}
		for _, label := range p.TopObjects {
			if objSeen[label] {
				continue
			}
			objSeen[label] = true
			add(objectIdx[label], 4, "shared object label")
		}
		if p.Scene != "" {
			add(sceneIdx[p.Scene], 2, "same scene")
		}
		if p.Gemini != nil && p.Gemini.Setting != "" {
			add(settingIdx[p.Gemini.Setting], 1, "same setting")
		}

		type scored struct {
			id    string
			score int
		}
		var ranked []scored
		for id, s := range scores {
			ranked = append(ranked, scored{id, s})
		}
		sort.Slice(ranked, func(i, j int) bool {
			if ranked[i].score != ranked[j].score {
				return ranked[i].score > ranked[j].score
			}
			return ranked[i].id < ranked[j].id
		})
		if len(ranked) > 6 {
			ranked = ranked[:6]
		}

		neighbors := make([]Neighbor, 0, len(ranked))
		for _, r := range ranked {
			neighbors = append(neighbors, Neighbor{ID: r.id, Reason: reasons[r.id]})
		}
		if len(neighbors) > 0 {
			out[p.ID] = neighbors
		}
	}
	return out
}
