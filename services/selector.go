package services

import "comedyFinderAPI/internal/types/comedy"

// SelectBest keeps the highest scoring event per category (rating minus a
// tenth of a point per mile). On an exact tie the earlier event wins, so the
// result follows classification order. Categories without events are omitted.
func SelectBest(events []comedy.ComedyEvent) []comedy.ComedyEvent {
	best := make(map[comedy.Category]comedy.ComedyEvent, len(comedy.Categories))

	for _, ev := range events {
		current, ok := best[ev.Category]
		if !ok || ev.Score() > current.Score() {
			best[ev.Category] = ev
		}
	}

	selected := make([]comedy.ComedyEvent, 0, len(best))
	for _, category := range comedy.Categories {
		if ev, ok := best[category]; ok {
			selected = append(selected, ev)
		}
	}
	return selected
}
