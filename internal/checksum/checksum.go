package checksum

import (
	"crypto/sha256"
	"fmt"
	"strings"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// GenerateSampleHash SHA256 отпечаток выборки
// Формула: SHA256(id1|id2|...|idN), порядок важен
func (g *Generator) GenerateSampleHash(ids []string) string {
	content := strings.Join(ids, "|")

	hash := sha256.Sum256([]byte(content))

	return fmt.Sprintf("%x", hash)
}

// VerifySampleHash проверяет соответствие хеша
func (g *Generator) VerifySampleHash(expectedHash string, ids []string) bool {
	return g.GenerateSampleHash(ids) == expectedHash
}
