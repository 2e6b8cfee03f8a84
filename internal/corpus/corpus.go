package corpus

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// Metadata identifies where a passage came from in the textbook corpus.
type Metadata struct {
	Subject string `json:"subject"`
	Chapter string `json:"chapter"`
	Page    int    `json:"page"`
}

// Passage is one retrievable unit of textbook content.
type Passage struct {
	Text string
	Meta Metadata
}

// rawEntry mirrors one passage object in the corpus JSON file.
type rawEntry struct {
	Text       string `json:"text"`
	PageNumber int    `json:"page_number"`
}

// Load reads a corpus file laid out as subject → chapter → passages and
// returns the flattened passage list. Passage text is cleaned on load.
//
// Subjects and chapters are visited in sorted order so that the returned
// sequence (and therefore Hash over it) is deterministic.
func Load(path string) ([]Passage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read corpus %s: %w", path, err)
	}

	var doc map[string]map[string][]rawEntry
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid corpus JSON %s: %w", path, err)
	}

	subjects := make([]string, 0, len(doc))
	for s := range doc {
		subjects = append(subjects, s)
	}
	sort.Strings(subjects)

	var out []Passage
	for _, subject := range subjects {
		chapters := make([]string, 0, len(doc[subject]))
		for c := range doc[subject] {
			chapters = append(chapters, c)
		}
		sort.Strings(chapters)

		for _, chapter := range chapters {
			for _, e := range doc[subject][chapter] {
				text := Preprocess(e.Text)
				if text == "" {
					continue
				}
				out = append(out, Passage{
					Text: text,
					Meta: Metadata{Subject: subject, Chapter: chapter, Page: e.PageNumber},
				})
			}
		}
	}
	return out, nil
}

// FilterBySubject returns the passages whose subject matches exactly.
func FilterBySubject(passages []Passage, subject string) []Passage {
	var out []Passage
	for _, p := range passages {
		if p.Meta.Subject == subject {
			out = append(out, p)
		}
	}
	return out
}

// Split separates passages into the parallel text/metadata sequences the
// retrieval engine indexes. texts[i] and metadata[i] describe the same
// passage for all i.
func Split(passages []Passage) (texts []string, metadata []Metadata) {
	texts = make([]string, len(passages))
	metadata = make([]Metadata, len(passages))
	for i, p := range passages {
		texts[i] = p.Text
		metadata[i] = p.Meta
	}
	return texts, metadata
}

// Hash returns a sha256 hex digest over the ordered corpus texts. The engine
// stores it in the snapshot manifest and skips rebuilds while it is unchanged.
func Hash(texts []string) string {
	h := sha256.New()
	for _, t := range texts {
		h.Write([]byte(t))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
