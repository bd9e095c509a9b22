package domain

import "encoding/json"

// MaxSearchHistory bounds the per-topic enrichment history. When a sixth
// enrichment lands the oldest entry is dropped.
const MaxSearchHistory = 5

// EnrichmentRecord is one searchHistory entry.
type EnrichmentRecord struct {
	Timestamp   string         `json:"timestamp"`
	WebResults  []SearchResult `json:"webResults,omitempty"`
	NewsResults []SearchResult `json:"newsResults,omitempty"`
	Insights    string         `json:"insights"`
}

// LatestEnrichment is the full result bundle of the most recent enrichment.
type LatestEnrichment struct {
	Insights        string          `json:"insights"`
	WebResults      []SearchResult  `json:"webResults,omitempty"`
	NewsResults     []SearchResult  `json:"newsResults,omitempty"`
	DocumentContext []DocumentMatch `json:"documentContext,omitempty"`
	GeneratedAt     string          `json:"generatedAt"`
	Question        string          `json:"question"`
}

// TopicKnowledge is the typed view of a topic's knowledge blob. Unknown keys
// in the stored JSON survive a read/modify/write round trip via extra.
type TopicKnowledge struct {
	GoogleSearchStatus string            `json:"-"`
	LatestGoogleSearch *LatestEnrichment `json:"-"`
	SearchHistory      []EnrichmentRecord `json:"-"`

	extra map[string]json.RawMessage
}

const (
	keyStatus  = "googleSearchStatus"
	keyLatest  = "latestGoogleSearch"
	keyHistory = "searchHistory"
)

// ParseTopicKnowledge decodes a stored knowledge blob. An empty string or a
// blob that fails to parse yields an empty record, never an error.
func ParseTopicKnowledge(raw string) TopicKnowledge {
	var k TopicKnowledge
	if raw == "" {
		return k
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return TopicKnowledge{}
	}
	if v, ok := fields[keyStatus]; ok {
		_ = json.Unmarshal(v, &k.GoogleSearchStatus)
		delete(fields, keyStatus)
	}
	if v, ok := fields[keyLatest]; ok {
		var latest LatestEnrichment
		if err := json.Unmarshal(v, &latest); err == nil {
			k.LatestGoogleSearch = &latest
		}
		delete(fields, keyLatest)
	}
	if v, ok := fields[keyHistory]; ok {
		_ = json.Unmarshal(v, &k.SearchHistory)
		delete(fields, keyHistory)
	}
	if len(fields) > 0 {
		k.extra = fields
	}
	return k
}

// AppendHistory adds a record and evicts the oldest entries beyond
// MaxSearchHistory.
func (k *TopicKnowledge) AppendHistory(rec EnrichmentRecord) {
	k.SearchHistory = append(k.SearchHistory, rec)
	if n := len(k.SearchHistory); n > MaxSearchHistory {
		k.SearchHistory = k.SearchHistory[n-MaxSearchHistory:]
	}
}

// Encode serializes the record back into the stored blob form.
func (k TopicKnowledge) Encode() (string, error) {
	out := make(map[string]json.RawMessage, len(k.extra)+3)
	for key, v := range k.extra {
		out[key] = v
	}
	if k.GoogleSearchStatus != "" {
		raw, err := json.Marshal(k.GoogleSearchStatus)
		if err != nil {
			return "", err
		}
		out[keyStatus] = raw
	}
	if k.LatestGoogleSearch != nil {
		raw, err := json.Marshal(k.LatestGoogleSearch)
		if err != nil {
			return "", err
		}
		out[keyLatest] = raw
	}
	if k.SearchHistory != nil {
		raw, err := json.Marshal(k.SearchHistory)
		if err != nil {
			return "", err
		}
		out[keyHistory] = raw
	}
	raw, err := json.Marshal(out)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
