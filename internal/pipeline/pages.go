package pipeline

import (
	"math/rand/v2"
	"sort"
)

// SelectPages deduplicates and sorts titles, drops the excluded ones and,
// when sample is positive and smaller than the remainder, keeps a random
// sample of that size in sorted order.
func SelectPages(titles, exclude []string, sample int, rng *rand.Rand) []string {
	skip := make(map[string]struct{}, len(exclude))
	for _, e := range exclude {
		skip[e] = struct{}{}
	}
	seen := make(map[string]struct{}, len(titles))
	pages := make([]string, 0, len(titles))
	for _, t := range titles {
		if _, ok := skip[t]; ok {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		pages = append(pages, t)
	}
	sort.Strings(pages)
	if sample <= 0 || sample >= len(pages) {
		return pages
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	rng.Shuffle(len(pages), func(i, j int) { pages[i], pages[j] = pages[j], pages[i] })
	pages = pages[:sample]
	sort.Strings(pages)
	return pages
}
