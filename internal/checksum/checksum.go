package checksum

import (
	"crypto/sha256"
	"fmt"
	"strings"
)

// Fields is the content a listing hash is computed over.
type Fields struct {
	URL        string
	Title      string
	Company    string
	Location   string
	PostedDate string
}

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// ListingHash returns the SHA256 hex of url|title|company|location|posted.
// Values are lowercased and trimmed so cosmetic markup changes do not alter it.
func (g *Generator) ListingHash(f Fields) string {
	parts := []string{f.URL, f.Title, f.Company, f.Location, f.PostedDate}
	for i, p := range parts {
		parts[i] = strings.ToLower(strings.TrimSpace(p))
	}

	hash := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return fmt.Sprintf("%x", hash)
}
