package locale

import (
	"errors"
	"strings"

	"github.com/dghubble/trie"
)

// DefaultExclusions são os prefixos que nunca passam pela resolução de locale.
var DefaultExclusions = []string{
	"/api",
	"/_next/static",
	"/_next/image",
	"/favicon.ico",
	"/robots.txt",
	"/sitemap.xml",
	"/icons",
	"/logo",
}

var errMatched = errors.New("matched")

// Matcher decide se um path fica fora do middleware de locale.
//
// Os prefixos casam por segmento: "/api" exclui "/api" e "/api/contact",
// mas não "/apiary".
type Matcher struct {
	t *trie.PathTrie
}

func NewMatcher(prefixes ...string) *Matcher {
	t := trie.NewPathTrie()
	for _, p := range prefixes {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !strings.HasPrefix(p, "/") {
			p = "/" + p
		}
		t.Put(strings.TrimSuffix(p, "/"), true)
	}
	return &Matcher{t: t}
}

func DefaultMatcher() *Matcher { return NewMatcher(DefaultExclusions...) }

// Excluded é true para prefixos configurados e para qualquer path com um
// ponto em algum segmento (arquivos, /.well-known/...).
func (m *Matcher) Excluded(p string) bool {
	if strings.Contains(p, ".") {
		return true
	}
	if m == nil || m.t == nil {
		return false
	}

	err := m.t.WalkPath(p, func(string, interface{}) error {
		return errMatched
	})
	return errors.Is(err, errMatched)
}
