package locale

import "strings"

type Locale string

const (
	French  Locale = "fr"
	English Locale = "en"

	// Default é o primeiro locale suportado.
	Default = French

	CookieName = "NEXT_LOCALE"
	HeaderName = "X-Locale"
)

// Supported lista os locales na ordem de configuração do site.
var Supported = []Locale{French, English}

// acceptPriority é a ordem do teste de prefixo no Accept-Language.
var acceptPriority = []Locale{English, French}

func (l Locale) String() string { return string(l) }

// Parse aceita apenas valores exatos de Supported.
func Parse(s string) (Locale, bool) {
	for _, l := range Supported {
		if s == string(l) {
			return l, true
		}
	}
	return "", false
}

// FromPath devolve o locale quando path é "/<locale>" ou começa com "/<locale>/".
func FromPath(path string) (Locale, bool) {
	for _, l := range Supported {
		prefix := "/" + string(l)
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return l, true
		}
	}
	return "", false
}

// Prefix devolve path com o segmento do locale na frente.
// "/" vira "/<locale>/" e não "/<locale>" seguido de sufixo vazio.
func Prefix(l Locale, path string) string {
	if path == "" || path == "/" {
		return "/" + string(l) + "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return "/" + string(l) + path
}
