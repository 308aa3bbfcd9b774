package llm

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"google.golang.org/genai"
)

// WebSource is a page a search answer was grounded on.
type WebSource struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// SearchResult is a short answer to a web query plus the pages behind it.
type SearchResult struct {
	Summary string
	Sources []WebSource
}

// WebSearcher looks things up on the web.
type WebSearcher interface {
	Search(ctx context.Context, query string) (*SearchResult, error)
}

const searchInstruction = `Search the web and list up to 5 learning resources (tutorials, documentation, articles, videos, courses) for the query. For each give its title and one line on what it covers. Only list resources you found in the search results.`

// GeminiSearcher answers queries with Gemini grounded on Google Search.
type GeminiSearcher struct {
	client *genai.Client
	model  string
}

// NewGeminiSearcher needs a Gemini API key even when chat uses another
// provider; grounding is only available there.
func NewGeminiSearcher(ctx context.Context, cfg GeminiConfig) (*GeminiSearcher, error) {
	client, err := newGeminiClient(ctx, cfg.APIKey)
	if err != nil {
		return nil, err
	}
	return &GeminiSearcher{
		client: client,
		model:  resolveModel(cfg.Model, geminiModels),
	}, nil
}

func (s *GeminiSearcher) Search(ctx context.Context, query string) (*SearchResult, error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: searchInstruction}}},
		Tools:             []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}},
	}
	contents := []*genai.Content{{Role: "user", Parts: []*genai.Part{{Text: query}}}}

	result, err := s.client.Models.GenerateContent(ctx, s.model, contents, config)
	if err != nil {
		return nil, mapGeminiError(err)
	}
	return searchResultFrom(result), nil
}

// searchResultFrom keeps the answer text and the distinct web pages the
// first candidate was grounded on.
func searchResultFrom(result *genai.GenerateContentResponse) *SearchResult {
	out := &SearchResult{Summary: strings.TrimSpace(result.Text())}
	if len(result.Candidates) == 0 || result.Candidates[0].GroundingMetadata == nil {
		return out
	}
	seen := make(map[string]bool)
	for _, chunk := range result.Candidates[0].GroundingMetadata.GroundingChunks {
		if chunk == nil || chunk.Web == nil || chunk.Web.URI == "" || seen[chunk.Web.URI] {
			continue
		}
		seen[chunk.Web.URI] = true
		title := chunk.Web.Title
		if title == "" {
			title = chunk.Web.Domain
		}
		out.Sources = append(out.Sources, WebSource{Title: title, URL: chunk.Web.URI})
	}
	return out
}

// NewWebSearcher returns nil when search is disabled.
func NewWebSearcher(ctx context.Context, cfg Config) (WebSearcher, error) {
	if !cfg.Search.Enabled {
		return nil, nil
	}
	if cfg.Provider == "mock" {
		return &MockSearcher{}, nil
	}
	gemini := cfg.Gemini
	if cfg.Search.Model != "" {
		gemini.Model = cfg.Search.Model
	}
	searcher, err := NewGeminiSearcher(ctx, gemini)
	if err != nil {
		return nil, fmt.Errorf("web search: %w", err)
	}
	return searcher, nil
}

// MockSearcher returns Result (or Err) for every query and records them.
type MockSearcher struct {
	Result *SearchResult
	Err    error

	mu      sync.Mutex
	Queries []string
}

func (m *MockSearcher) Search(_ context.Context, query string) (*SearchResult, error) {
	m.mu.Lock()
	m.Queries = append(m.Queries, query)
	m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Result == nil {
		return &SearchResult{}, nil
	}
	return m.Result, nil
}
