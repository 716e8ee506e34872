package services

import (
	"fmt"
	"regexp"
	"strings"

	"comedyFinderAPI/internal/types/comedy"
)

// Event extraction is best-effort text mining over whatever the scraper
// returned. A line that looks like a heading, is emphasised, or mentions
// comedy starts a new event and the following lines describe it.

const (
	MaxEventsPerVenue    = 2
	maxDescriptionLength = 200
	maxTitleLength       = 120

	PlaceholderTitle = "Live Comedy Events"
)

var (
	headingLine  = regexp.MustCompile(`^#{1,6}\s+\S`)
	emphasisLine = regexp.MustCompile(`^(\*\*|__|\*|_)[^*_].*(\*\*|__|\*|_)$`)
	comedyWords  = regexp.MustCompile(`(?i)\b(comedy|comedian|stand[- ]?up|improv|open mic|showcase|podcast|workshop|sketch|headliner|roast)\b`)

	markdownLink  = regexp.MustCompile(`\[([^\]]*)\]\(([^)\s]+)[^)]*\)`)
	markdownImage = regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)`)
	decorations   = regexp.MustCompile(`^[#>\-*_\s]+|[*_\s]+$`)

	priceToken = regexp.MustCompile(`\$\s?\d+(?:\.\d{2})?`)
	freeToken  = regexp.MustCompile(`(?i)\b(free|complimentary)\b`)
	timeToken  = regexp.MustCompile(`(?i)\b\d{1,2}(?::\d{2})?\s*(?:am|pm)(?:\s*(?:-|–|to)\s*\d{1,2}(?::\d{2})?\s*(?:am|pm))?`)
	performers = regexp.MustCompile(`(?i:featuring|starring|feat\.|hosted by)\s+([A-Z][\w'.-]+(?:\s+[A-Z][\w'.-]+)*(?:\s*(?:,|&|\band\b)\s*[A-Z][\w'.-]+(?:\s+[A-Z][\w'.-]+)*)*)`)
	nameSplit  = regexp.MustCompile(`\s*(?:,|&|\band\b)\s*`)
)

// ExtractEvents splits page text into at most MaxEventsPerVenue candidate
// events. Text with no usable boundary lines yields a single placeholder.
func ExtractEvents(venue comedy.ComedyVenue, text string) []comedy.CandidateEvent {
	var (
		events  []comedy.CandidateEvent
		current *comedy.CandidateEvent
	)

	flush := func() {
		if current != nil {
			events = append(events, *current)
			current = nil
		}
	}

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		line = markdownImage.ReplaceAllString(line, "")
		if strings.TrimSpace(line) == "" {
			continue
		}

		if isEventBoundary(line) {
			title, link := cleanLine(line)
			if len(title) >= 3 {
				flush()
				if len(events) >= MaxEventsPerVenue {
					break
				}
				current = &comedy.CandidateEvent{
					Venue: venue,
					Title: truncate(title, maxTitleLength),
					URL:   link,
				}
				annotate(current, title)
				continue
			}
		}

		if current == nil {
			continue
		}

		body, link := cleanLine(line)
		if current.URL == "" && link != "" {
			current.URL = link
		}
		appendDescription(current, body)
		annotate(current, body)
	}
	flush()

	if len(events) == 0 {
		return []comedy.CandidateEvent{PlaceholderEvent(venue)}
	}
	if len(events) > MaxEventsPerVenue {
		events = events[:MaxEventsPerVenue]
	}

	for i := range events {
		events[i].Key = eventKey(venue, i)
		if events[i].URL == "" {
			events[i].URL = venue.Website
		}
	}
	return events
}

// PlaceholderEvent stands in for a venue whose page could not be mined.
func PlaceholderEvent(venue comedy.ComedyVenue) comedy.CandidateEvent {
	return comedy.CandidateEvent{
		Key:         eventKey(venue, 0),
		Venue:       venue,
		Title:       PlaceholderTitle,
		Description: fmt.Sprintf("Check %s for tonight's shows", venue.Name),
		URL:         venue.Website,
		Placeholder: true,
	}
}

func eventKey(venue comedy.ComedyVenue, i int) string {
	return fmt.Sprintf("%s#%d", venue.PlaceID, i)
}

func isEventBoundary(line string) bool {
	if headingLine.MatchString(line) || emphasisLine.MatchString(line) {
		return true
	}
	// long paragraphs that merely mention comedy are description, not titles
	return len(line) <= maxTitleLength && comedyWords.MatchString(line)
}

// cleanLine strips markdown decoration and returns the text plus the first link target.
func cleanLine(line string) (string, string) {
	var link string
	if m := markdownLink.FindStringSubmatch(line); m != nil {
		link = m[2]
	}
	line = markdownLink.ReplaceAllString(line, "$1")
	line = strings.NewReplacer("**", "", "__", "").Replace(line)
	line = decorations.ReplaceAllString(line, "")
	return strings.Join(strings.Fields(line), " "), link
}

func appendDescription(ev *comedy.CandidateEvent, text string) {
	if text == "" || len(ev.Description) >= maxDescriptionLength {
		return
	}
	if ev.Description != "" {
		ev.Description += " "
	}
	ev.Description = truncate(ev.Description+text, maxDescriptionLength)
}

func annotate(ev *comedy.CandidateEvent, text string) {
	if ev.Price == "" {
		if m := priceToken.FindString(text); m != "" {
			ev.Price = strings.ReplaceAll(m, " ", "")
		} else if m := freeToken.FindString(text); m != "" {
			ev.Price = "Free"
		}
	}
	if ev.Time == "" {
		if m := timeToken.FindString(text); m != "" {
			ev.Time = m
		}
	}
	if len(ev.Performers) == 0 {
		if m := performers.FindStringSubmatch(text); m != nil {
			for _, name := range nameSplit.Split(m[1], -1) {
				if name = strings.TrimSpace(name); name != "" {
					ev.Performers = append(ev.Performers, name)
				}
			}
		}
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n])) + "..."
}
