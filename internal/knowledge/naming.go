package knowledge

import (
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const (
	tablePrefix = "pdf_"
	// Postgres truncates identifiers past 63 bytes.
	maxTableName = 63
)

// TableName derives the vector table for a topic: "pdf_" plus the topic
// lowercased with spaces and hyphens turned into underscores and anything
// else outside [a-z0-9_] dropped. An empty topic, or one with nothing
// usable left, gets a random 8-hex suffix instead. Names past the
// identifier limit are cut and end in a hash of the full name.
func TableName(topic string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(topic)) {
		switch {
		case r == ' ' || r == '-':
			b.WriteByte('_')
		case r == '_' || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
		}
	}

	name := b.String()
	if strings.Trim(name, "_") == "" {
		return RandomTableName()
	}

	name = tablePrefix + name
	if len(name) > maxTableName {
		name = SuffixedTableName(name, name)
	}
	return name
}

// SuffixedTableName appends "_" and 8 hex characters hashed from key to
// table, cutting table so the result fits the identifier limit.
func SuffixedTableName(table, key string) string {
	suffix := "_" + shortHash(key)
	if len(table)+len(suffix) > maxTableName {
		table = table[:maxTableName-len(suffix)]
	}
	return table + suffix
}

func shortHash(s string) string {
	id := uuid.NewSHA1(uuid.NameSpaceURL, []byte("studyscout:table:"+s))
	return strings.ReplaceAll(id.String(), "-", "")[:8]
}

// RandomTableName returns "pdf_" plus 8 random hex characters.
func RandomTableName() string {
	id := uuid.New()
	return tablePrefix + strings.ReplaceAll(id.String(), "-", "")[:8]
}

// TopicFromFilename returns the file's base name without its extension,
// e.g. "uploads/Intro to PCA.pdf" becomes "Intro to PCA".
func TopicFromFilename(name string) string {
	base := filepath.Base(strings.TrimSpace(name))
	if base == "." || base == string(filepath.Separator) {
		return ""
	}
	return strings.TrimSpace(strings.TrimSuffix(base, filepath.Ext(base)))
}
