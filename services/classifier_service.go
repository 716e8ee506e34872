package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/sashabaranov/go-openai"

	"comedyFinderAPI/internal/logger"
	"comedyFinderAPI/internal/types/comedy"
)

const classifierSystemPrompt = "You are a comedy venue classification expert. Always respond with valid JSON only."

// Completer sends one prompt to a language model and returns its raw text.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// OpenAICompleter asks a chat model for a single JSON object.
type OpenAICompleter struct {
	client      *openai.Client
	model       string
	temperature float32
}

func NewOpenAICompleter(apiKey, model string) *OpenAICompleter {
	return NewOpenAICompleterWithConfig(openai.DefaultConfig(apiKey), model)
}

// NewOpenAICompleterWithConfig allows a custom base URL or HTTP client.
func NewOpenAICompleterWithConfig(cfg openai.ClientConfig, model string) *OpenAICompleter {
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAICompleter{
		client:      openai.NewClientWithConfig(cfg),
		model:       model,
		temperature: 0.3,
	}
}

func (o *OpenAICompleter) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       o.model,
		Temperature: o.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: classifierSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	observeUpstream("openai", err)
	if err != nil {
		return "", fmt.Errorf("openai request failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response choices from OpenAI")
	}

	return resp.Choices[0].Message.Content, nil
}

const categoryGuide = `Categories:
1. Comedy Workshop - classes, open mics, development workshops
2. Comedy Podcasts - live podcast tapings, comedic talk shows
3. Stand-Up Comedy Club - pro showcases, headliners, traditional stand-up
4. Improv Comedy Leaders - improv troupes, improv houses, sketch shows`

type venuePromptInfo struct {
	Name             string   `json:"name"`
	Types            []string `json:"types"`
	Vicinity         string   `json:"vicinity"`
	Rating           float64  `json:"rating"`
	UserRatingsTotal int      `json:"user_ratings_total"`
	PlaceID          string   `json:"place_id"`
	Lat              float64  `json:"lat"`
	Lng              float64  `json:"lng"`
	Distance         float64  `json:"distance"`
}

// BuildVenuePrompt asks for one best place per category.
func BuildVenuePrompt(venues []comedy.ComedyVenue) (string, error) {
	info := make([]venuePromptInfo, 0, len(venues))
	for _, v := range venues {
		info = append(info, venuePromptInfo{
			Name:             v.Name,
			Types:            v.Types,
			Vicinity:         v.Address,
			Rating:           v.Rating,
			UserRatingsTotal: v.UserRatingsTotal,
			PlaceID:          v.PlaceID,
			Lat:              v.Latitude,
			Lng:              v.Longitude,
			Distance:         roundMiles(v.Distance),
		})
	}

	venuesJSON, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding venues: %w", err)
	}

	return fmt.Sprintf(`You are a comedy expert. Analyze these venues and classify each into EXACTLY ONE category:

%s

Venues:
%s

For EACH of the 4 categories, select the single BEST venue based on:
- Relevance to category
- Rating and reviews
- Quality implied by name/description
- Proximity to user (lower distance is better)

Respond with ONLY valid JSON in this exact format:
{
  "Comedy Workshop": {"place_id": "...", "reasoning": "one sentence why it's best"},
  "Comedy Podcasts": {"place_id": "...", "reasoning": "one sentence why it's best"},
  "Stand-Up Comedy Club": {"place_id": "...", "reasoning": "one sentence why it's best"},
  "Improv Comedy Leaders": {"place_id": "...", "reasoning": "one sentence why it's best"}
}

If no good match exists for a category, use null for that category. Do not include any text outside the JSON.`, categoryGuide, venuesJSON), nil
}

type venuePick struct {
	PlaceID   string `json:"place_id"`
	Reasoning string `json:"reasoning"`
}

// ParseVenueClassification maps each category to a known venue. Only the
// four category keys are read; a key whose value is not a pick is skipped.
// An error means the reply was not a JSON object at all.
func ParseVenueClassification(raw string, venues []comedy.ComedyVenue) ([]comedy.ComedyEvent, error) {
	log := logger.GetLogger("classifier")

	var entries map[string]json.RawMessage
	if err := json.Unmarshal([]byte(cleanJSONResponse(raw)), &entries); err != nil {
		log.Warnw("unparseable venue classification", "error", err)
		return nil, fmt.Errorf("decoding venue classification: %w", err)
	}

	byID := make(map[string]comedy.ComedyVenue, len(venues))
	for _, v := range venues {
		if _, ok := byID[v.PlaceID]; !ok {
			byID[v.PlaceID] = v
		}
	}

	events := make([]comedy.ComedyEvent, 0, len(comedy.Categories))
	for _, category := range comedy.Categories {
		entry, ok := entries[string(category)]
		if !ok {
			continue
		}
		var pick *venuePick
		if err := json.Unmarshal(entry, &pick); err != nil {
			log.Warnw("skipping malformed venue pick", "category", category, "error", err)
			continue
		}
		if pick == nil || pick.PlaceID == "" {
			continue
		}
		venue, ok := byID[pick.PlaceID]
		if !ok {
			continue
		}
		events = append(events, venueEvent(category, venue, pick.Reasoning))
	}
	return events, nil
}

// ClassifyVenues is the single-call venues-mode classification.
func ClassifyVenues(ctx context.Context, completer Completer, venues []comedy.ComedyVenue) ([]comedy.ComedyEvent, error) {
	prompt, err := BuildVenuePrompt(venues)
	if err != nil {
		return nil, err
	}

	raw, err := completer.Complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	return ParseVenueClassification(raw, venues)
}

type eventPromptInfo struct {
	Key              string   `json:"venue_and_event_key"`
	VenueName        string   `json:"venue_name"`
	EventTitle       string   `json:"event_title"`
	Description      string   `json:"description,omitempty"`
	Price            string   `json:"price,omitempty"`
	Time             string   `json:"time,omitempty"`
	VenueTypes       []string `json:"venue_types,omitempty"`
	Rating           float64  `json:"rating"`
	UserRatingsTotal int      `json:"user_ratings_total"`
	Distance         float64  `json:"distance"`
}

// BuildEventPrompt asks for a category per extracted event.
func BuildEventPrompt(candidates []comedy.CandidateEvent) (string, error) {
	info := make([]eventPromptInfo, 0, len(candidates))
	for _, c := range candidates {
		info = append(info, eventPromptInfo{
			Key:              c.Key,
			VenueName:        c.Venue.Name,
			EventTitle:       c.Title,
			Description:      c.Description,
			Price:            c.Price,
			Time:             c.Time,
			VenueTypes:       c.Venue.Types,
			Rating:           c.Venue.Rating,
			UserRatingsTotal: c.Venue.UserRatingsTotal,
			Distance:         roundMiles(c.Venue.Distance),
		})
	}

	eventsJSON, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding events: %w", err)
	}

	return fmt.Sprintf(`You are a comedy expert. Classify each of these comedy events into EXACTLY ONE category:

%s

Events:
%s

Use the venue name, event title, description and venue types to decide. Skip events that are clearly not comedy.

Respond with ONLY valid JSON in this exact format:
{
  "classifications": [
    {"venue_and_event_key": "...", "category": "one of the 4 category names exactly", "reasoning": "one sentence why"}
  ]
}

Do not include any text outside the JSON.`, categoryGuide, eventsJSON), nil
}

type eventPick struct {
	Key       string `json:"venue_and_event_key"`
	Category  string `json:"category"`
	Reasoning string `json:"reasoning"`
}

// ParseEventClassification accepts {"classifications":[...]} or a bare array.
// Entries that fail to decode, or carry an unknown key or category, are
// dropped. An error means the outer shape could not be decoded.
func ParseEventClassification(raw string, candidates []comedy.CandidateEvent) ([]comedy.ComedyEvent, error) {
	log := logger.GetLogger("classifier")
	cleaned := cleanJSONResponse(raw)

	var entries []json.RawMessage
	if strings.HasPrefix(cleaned, "[") {
		if err := json.Unmarshal([]byte(cleaned), &entries); err != nil {
			log.Warnw("unparseable event classification", "error", err)
			return nil, fmt.Errorf("decoding event classification: %w", err)
		}
	} else {
		var wrapped struct {
			Classifications []json.RawMessage `json:"classifications"`
		}
		if err := json.Unmarshal([]byte(cleaned), &wrapped); err != nil {
			log.Warnw("unparseable event classification", "error", err)
			return nil, fmt.Errorf("decoding event classification: %w", err)
		}
		entries = wrapped.Classifications
	}

	picks := make([]eventPick, 0, len(entries))
	for i, entry := range entries {
		var p eventPick
		if err := json.Unmarshal(entry, &p); err != nil {
			log.Warnw("skipping malformed event classification", "index", i, "error", err)
			continue
		}
		picks = append(picks, p)
	}

	byKey := make(map[string]comedy.CandidateEvent, len(candidates))
	for _, c := range candidates {
		byKey[c.Key] = c
	}

	used := make(map[string]struct{})
	events := make([]comedy.ComedyEvent, 0, len(picks))
	for _, p := range picks {
		category, ok := comedy.ParseCategory(strings.TrimSpace(p.Category))
		if !ok {
			continue
		}
		candidate, ok := byKey[p.Key]
		if !ok {
			continue
		}
		if _, dup := used[p.Key]; dup {
			continue
		}
		used[p.Key] = struct{}{}
		events = append(events, candidateEvent(category, candidate, p.Reasoning))
	}
	return events, nil
}

// ClassifyEvents is the events-mode classification.
func ClassifyEvents(ctx context.Context, completer Completer, candidates []comedy.CandidateEvent) ([]comedy.ComedyEvent, error) {
	prompt, err := BuildEventPrompt(candidates)
	if err != nil {
		return nil, err
	}

	raw, err := completer.Complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	return ParseEventClassification(raw, candidates)
}

// cleanJSONResponse trims whitespace and a surrounding markdown code fence.
func cleanJSONResponse(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(s, "```")
		s = strings.TrimSpace(s)
	}
	return s
}

func venueEvent(category comedy.Category, v comedy.ComedyVenue, reasoning string) comedy.ComedyEvent {
	lat, lng := v.Latitude, v.Longitude
	ev := comedy.ComedyEvent{
		Category:    category,
		VenueName:   v.Name,
		EventTitle:  "",
		Distance:    v.Distance,
		AIReasoning: reasoning,
		PlaceID:     v.PlaceID,
		Address:     v.Address,
		Latitude:    &lat,
		Longitude:   &lng,
	}
	if v.Rating > 0 {
		rating := v.Rating
		ev.Rating = &rating
	}
	if v.UserRatingsTotal > 0 {
		total := v.UserRatingsTotal
		ev.UserRatingsTotal = &total
	}
	return ev
}

func candidateEvent(category comedy.Category, c comedy.CandidateEvent, reasoning string) comedy.ComedyEvent {
	ev := venueEvent(category, c.Venue, reasoning)
	ev.EventTitle = c.Title
	ev.Price = c.Price
	ev.Performers = c.Performers
	ev.EventURL = c.URL
	return ev
}

func roundMiles(d float64) float64 {
	return math.Round(d*100) / 100
}
