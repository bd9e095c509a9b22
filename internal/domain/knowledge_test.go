package domain

import (
	"encoding/json"
	"fmt"
	"testing"
)

func TestParseTopicKnowledgeEmpty(t *testing.T) {
	k := ParseTopicKnowledge("")
	if k.GoogleSearchStatus != "" || k.LatestGoogleSearch != nil || len(k.SearchHistory) != 0 {
		t.Fatalf("empty blob should parse to zero record: %+v", k)
	}
}

func TestParseTopicKnowledgeMalformed(t *testing.T) {
	k := ParseTopicKnowledge("{not json")
	if k.GoogleSearchStatus != "" || len(k.SearchHistory) != 0 {
		t.Fatalf("malformed blob should parse to zero record: %+v", k)
	}
}

func TestAppendHistoryCap(t *testing.T) {
	var k TopicKnowledge
	for i := 0; i < MaxSearchHistory+1; i++ {
		k.AppendHistory(EnrichmentRecord{Insights: fmt.Sprintf("entry %d", i)})
	}
	if got := len(k.SearchHistory); got != MaxSearchHistory {
		t.Fatalf("history length: want=%d got=%d", MaxSearchHistory, got)
	}
	if k.SearchHistory[0].Insights != "entry 1" {
		t.Fatalf("oldest entry should be dropped, head=%q", k.SearchHistory[0].Insights)
	}
	if k.SearchHistory[MaxSearchHistory-1].Insights != fmt.Sprintf("entry %d", MaxSearchHistory) {
		t.Fatalf("newest entry missing, tail=%q", k.SearchHistory[MaxSearchHistory-1].Insights)
	}
}

func TestEncodeRoundTripPreservesUnknownKeys(t *testing.T) {
	raw := `{"googleSearchStatus":"completed","searchHistory":[{"timestamp":"2025-01-01T00:00:00Z","insights":"old"}],"clientState":{"pinned":true}}`
	k := ParseTopicKnowledge(raw)
	if k.GoogleSearchStatus != "completed" {
		t.Fatalf("status: want=completed got=%q", k.GoogleSearchStatus)
	}
	if len(k.SearchHistory) != 1 || k.SearchHistory[0].Insights != "old" {
		t.Fatalf("history not parsed: %+v", k.SearchHistory)
	}

	k.AppendHistory(EnrichmentRecord{Timestamp: "2025-02-01T00:00:00Z", Insights: "new"})
	encoded, err := k.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	var out map[string]json.RawMessage
	if err := json.Unmarshal([]byte(encoded), &out); err != nil {
		t.Fatalf("encoded blob not valid JSON: %v", err)
	}
	if _, ok := out["clientState"]; !ok {
		t.Fatalf("unknown key dropped on round trip: %s", encoded)
	}
	reparsed := ParseTopicKnowledge(encoded)
	if len(reparsed.SearchHistory) != 2 {
		t.Fatalf("history after round trip: want=2 got=%d", len(reparsed.SearchHistory))
	}
}

func TestEncodeEmptyRecord(t *testing.T) {
	var k TopicKnowledge
	encoded, err := k.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if encoded != "{}" {
		t.Fatalf("empty record encoding: want={} got=%s", encoded)
	}
}
