package registry

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// CanonicalText returns the text an entry is fingerprinted by.
func CanonicalText(e Entry) string {
	b := e.Common()
	parts := []string{
		"kind: " + string(e.Kind()),
		"id: " + b.ID,
		"name: " + strings.TrimSpace(b.Name),
		"description: " + strings.TrimSpace(b.Description),
		"summary: " + strings.TrimSpace(b.Summary),
	}
	switch v := e.(type) {
	case Skill:
		if len(v.Keywords) > 0 {
			parts = append(parts, "keywords: "+strings.Join(v.Keywords, ", "))
		}
		if v.Category != "" {
			parts = append(parts, "category: "+v.Category)
		}
	case Agent:
		if v.Role != "" {
			parts = append(parts, "role: "+v.Role)
		}
	case Command:
		if len(v.RelatedSkills) > 0 {
			parts = append(parts, "related-skills: "+strings.Join(v.RelatedSkills, ", "))
		}
	}
	return strings.Join(parts, "\n")
}

// TextHash returns a sha256 hash (hex) of the canonical text.
func TextHash(text string) string {
	h := sha256.Sum256([]byte(text))
	return hex.EncodeToString(h[:])
}

// ContentHash fingerprints a whole registry in registry order.
func ContentHash(reg *Registry) string {
	h := sha256.New()
	for _, k := range Kinds {
		for _, e := range reg.Entries(k) {
			h.Write([]byte(TextHash(CanonicalText(e))))
			h.Write([]byte{'\n'})
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}
