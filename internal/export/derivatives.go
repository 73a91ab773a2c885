package export

import (
	"context"
	"math/rand"
	"sort"

	"github.com/fpang/madphotos-core/internal/store"
)

// FaceEntry is one element of faces.json (§4.8).
type FaceEntry struct {
	BBox              [4]float64 `json:"bbox"`
	Confidence        float64    `json:"confidence"`
	DominantEmotion   string     `json:"dominant_emotion,omitempty"`
	EmotionConfidence float64    `json:"emotion_confidence"`
}

// BuildFaces produces faces.json: every face of every photo that has at
// least one face detection (§4.8).
func BuildFaces(ctx context.Context, st *store.Store, photos []Photo) (map[string][]FaceEntry, error) {
	out := map[string][]FaceEntry{}
	for _, p := range photos {
		if p.FaceCount == 0 {
			continue
		}
		details, err := st.FaceDetailsForImage(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		if len(details) == 0 {
			continue
		}
		entries := make([]FaceEntry, 0, len(details))
		for _, d := range details {
			entries = append(entries, FaceEntry{
				BBox: d.BBox, Confidence: d.Confidence,
				DominantEmotion: d.DominantEmotion, EmotionConfidence: d.EmotionConfidence,
			})
		}
		out[p.ID] = entries
	}
	return out, nil
}

// GameRound is one round of game_rounds.json (§4.8).
type GameRound struct {
	ImageA      string   `json:"image_a"`
	ImageB      string   `json:"image_b"`
	CorrectPool string   `json:"correct_pool"`
	Distractors []string `json:"distractors"`
}

const (
	gameRoundCount = 200
	minPoolSize    = 10
)

type pool struct {
	category string
	value    string
	members  []string
}

// BuildGameRounds draws 200 deterministic pairs from pools of shared
// camera/emotion/scene/vibe/time/style with at least 10 members (§4.8).
// seed fixes the draw so re-exporting the same corpus reproduces the same
// rounds.
func BuildGameRounds(photos []Photo, seed int64) []GameRound {
	pools := collectPools(photos)
	if len(pools) == 0 {
		return nil
	}

	rng := rand.New(rand.NewSource(seed))
	rounds := make([]GameRound, 0, gameRoundCount)
	for i := 0; i < gameRoundCount; i++ {
		pl := pools[rng.Intn(len(pools))]
		if len(pl.members) < 2 {
			continue
		}
		a, b := pickTwo(rng, pl.members)

		distractors := distractorLabels(pools, pl.category, pl.value, rng, 5)
		rounds = append(rounds, GameRound{ImageA: a, ImageB: b, CorrectPool: pl.value, Distractors: distractors})
	}
	return rounds
}

func collectPools(photos []Photo) []pool {
	byKey := map[string]map[string][]string{
		"camera": {}, "emotion": {}, "scene": {}, "vibe": {}, "time": {}, "style": {},
	}
	for _, p := range photos {
		if p.CameraModel != "" {
			byKey["camera"][p.CameraModel] = append(byKey["camera"][p.CameraModel], p.ID)
		}
		for _, e := range p.Emotions {
			byKey["emotion"][e] = append(byKey["emotion"][e], p.ID)
		}
		if p.Scene != "" {
			byKey["scene"][p.Scene] = append(byKey["scene"][p.Scene], p.ID)
		}
		if p.Gemini != nil && p.Gemini.Vibe != "" {
			byKey["vibe"][p.Gemini.Vibe] = append(byKey["vibe"][p.Gemini.Vibe], p.ID)
		}
		if p.Gemini != nil && p.Gemini.TimeOfDay != "" {
			byKey["time"][p.Gemini.TimeOfDay] = append(byKey["time"][p.Gemini.TimeOfDay], p.ID)
		}
		if p.Style != "" {
			byKey["style"][p.Style] = append(byKey["style"][p.Style], p.ID)
		}
	}

	var categories []string
	for cat := range byKey {
		categories = append(categories, cat)
	}
	sort.Strings(categories)

	var pools []pool
	for _, cat := range categories {
		values := byKey[cat]
		var keys []string
		for v := range values {
			keys = append(keys, v)
		}
		sort.Strings(keys)
		for _, v := range keys {
			members := values[v]
			if len(members) >= minPoolSize {
				pools = append(pools, pool{category: cat, value: v, members: members})
			}
		}
	}
	return pools
}

func pickTwo(rng *rand.Rand, members []string) (string, string) {
	i := rng.Intn(len(members))
	j := rng.Intn(len(members))
	for j == i {
		j = rng.Intn(len(members))
	}
	return members[i], members[j]
}

// distractorLabels gathers n distinct pool values from categories other
// than exclude, shuffled deterministically by rng.
func distractorLabels(pools []pool, excludeCategory, excludeValue string, rng *rand.Rand, n int) []string {
	var candidates []string
	seen := map[string]bool{excludeValue: true}
	for _, pl := range pools {
		if pl.category == excludeCategory || seen[pl.value] {
			continue
		}
		seen[pl.value] = true
		candidates = append(candidates, pl.value)
	}
	rng.Shuffle(len(candidates), func(i, j int) { candidates[i], candidates[j] = candidates[j], candidates[i] })
	if len(candidates) > n {
		candidates = candidates[:n]
	}
	return candidates
}

// BuildStreamSequence orders every color (non-monochrome) photo by greedy
// nearest-palette traversal from a fixed-seed start, sampling up to 200
// candidates per step, and interleaves monochrome photos every 10
// positions as breathers (§4.8).
func BuildStreamSequence(photos []Photo, paletteByID map[string][]store.DominantColor, seed int64) []string {
	var colorIDs, monoIDs []string
	for _, p := range photos {
		if p.Monochrome {
			monoIDs = append(monoIDs, p.ID)
		} else {
			colorIDs = append(colorIDs, p.ID)
		}
	}
	if len(colorIDs) == 0 {
		return monoIDs
	}
	sort.Strings(colorIDs)
	sort.Strings(monoIDs)

	rng := rand.New(rand.NewSource(seed))
	remaining := make(map[string]bool, len(colorIDs))
	for _, id := range colorIDs {
		remaining[id] = true
	}

	start := colorIDs[rng.Intn(len(colorIDs))]
	sequence := []string{start}
	delete(remaining, start)
	current := start

	for len(remaining) > 0 {
		candidates := sampleRemaining(remaining, rng, 200)
		next := nearestByPalette(current, candidates, paletteByID)
		sequence = append(sequence, next)
		delete(remaining, next)
		current = next
	}

	return interleaveBreathers(sequence, monoIDs)
}

func sampleRemaining(remaining map[string]bool, rng *rand.Rand, max int) []string {
	all := make([]string, 0, len(remaining))
	for id := range remaining {
		all = append(all, id)
	}
	sort.Strings(all)
	if len(all) <= max {
		return all
	}
	rng.Shuffle(len(all), func(i, j int) { all[i], all[j] = all[j], all[i] })
	return all[:max]
}

func nearestByPalette(current string, candidates []string, paletteByID map[string][]store.DominantColor) string {
	curPalette := paletteByID[current]
	best := candidates[0]
	bestDist := paletteDistance(curPalette, paletteByID[best])
	for _, c := range candidates[1:] {
		d := paletteDistance(curPalette, paletteByID[c])
		if d < bestDist {
			bestDist, best = d, c
		}
	}
	return best
}

// interleaveBreathers inserts one monochrome photo after every 10
// positions of the color sequence, consuming monoIDs in order and
// stopping once they run out (§4.8).
func interleaveBreathers(sequence, monoIDs []string) []string {
	if len(monoIDs) == 0 {
		return sequence
	}
	out := make([]string, 0, len(sequence)+len(monoIDs))
	monoIdx := 0
	for i, id := range sequence {
		out = append(out, id)
		if (i+1)%10 == 0 && monoIdx < len(monoIDs) {
			out = append(out, monoIDs[monoIdx])
			monoIdx++
		}
	}
	for ; monoIdx < len(monoIDs); monoIdx++ {
		out = append(out, monoIDs[monoIdx])
	}
	return out
}
