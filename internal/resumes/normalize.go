package resumes

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Normalize backfills missing nested item ids and fills empty collections.
// Documents saved before item ids were mandatory pass through here whenever
// they cross a storage boundary. Applying it twice equals applying it once.
func Normalize(doc Document) Document {
	out := doc.Clone()
	if out.Experience == nil {
		out.Experience = []Experience{}
	}
	if out.Education == nil {
		out.Education = []Education{}
	}
	if out.Skills == nil {
		out.Skills = []Skill{}
	}
	if out.Languages == nil {
		out.Languages = []Language{}
	}
	if out.Projects == nil {
		out.Projects = []Project{}
	}
	for i := range out.Experience {
		backfill(&out.Experience[i].ID)
	}
	for i := range out.Education {
		backfill(&out.Education[i].ID)
	}
	for i := range out.Skills {
		backfill(&out.Skills[i].ID)
		if out.Skills[i].Level == "" {
			out.Skills[i].Level = SkillIntermediate
		}
	}
	for i := range out.Languages {
		backfill(&out.Languages[i].ID)
	}
	for i := range out.Projects {
		backfill(&out.Projects[i].ID)
	}
	return out
}

func backfill(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}

// storedDocument accepts the legacy shape where skills were plain strings.
type storedDocument struct {
	Document
	Skills []json.RawMessage `json:"skills"`
}

// DecodeDocument parses a stored document payload, accepting legacy shapes,
// and returns it normalized.
func DecodeDocument(data []byte) (Document, error) {
	var stored storedDocument
	if err := json.Unmarshal(data, &stored); err != nil {
		return Document{}, err
	}
	doc := stored.Document
	skills, err := decodeSkills(stored.Skills)
	if err != nil {
		return Document{}, err
	}
	doc.Skills = skills
	return Normalize(doc), nil
}

// DecodeDocuments parses a JSON array of stored documents.
func DecodeDocuments(data []byte) ([]Document, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, err
	}
	out := make([]Document, 0, len(raws))
	for i, raw := range raws {
		if isJSONNull(raw) {
			continue
		}
		doc, err := DecodeDocument(raw)
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", i, err)
		}
		out = append(out, doc)
	}
	return out, nil
}

func decodeSkills(raws []json.RawMessage) ([]Skill, error) {
	if raws == nil {
		return nil, nil
	}
	out := make([]Skill, 0, len(raws))
	for _, raw := range raws {
		raw = bytes.TrimSpace(raw)
		switch {
		case isJSONNull(raw):
			continue
		case len(raw) > 0 && raw[0] == '"':
			var name string
			if err := json.Unmarshal(raw, &name); err != nil {
				return nil, err
			}
			out = append(out, Skill{Name: name, Level: SkillIntermediate})
		default:
			var s Skill
			if err := json.Unmarshal(raw, &s); err != nil {
				return nil, err
			}
			out = append(out, s)
		}
	}
	return out, nil
}

func isJSONNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
