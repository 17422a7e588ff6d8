package locale

import "strings"

type Action int

const (
	Continue Action = iota
	Rewrite
	Redirect
)

var actionStr = []string{"continue", "rewrite", "redirect"}

func (a Action) String() string {
	if int(a) < len(actionStr) {
		return actionStr[a]
	}
	return "unknown"
}

type Decision struct {
	Action Action
	Locale Locale
	// Target é o path prefixado, vazio quando Action == Continue.
	Target string
}

// Resolve decide o locale e a ação para uma request.
//
// Nunca falha: entradas ausentes ou malformadas caem no locale padrão.
func Resolve(path, cookie, acceptLanguage string) Decision {
	if l, ok := FromPath(path); ok {
		return Decision{Action: Continue, Locale: l}
	}

	l := Detect(cookie, acceptLanguage)
	d := Decision{Locale: l, Target: Prefix(l, path), Action: Rewrite}
	if l != Default {
		d.Action = Redirect
	}
	return d
}

// Detect aplica cookie > Accept-Language > padrão.
func Detect(cookie, acceptLanguage string) Locale {
	if l, ok := Parse(cookie); ok {
		return l
	}
	if l, ok := FromAcceptLanguage(acceptLanguage); ok {
		return l
	}
	return Default
}

// FromAcceptLanguage percorre as entradas na ordem do header (o peso q é
// descartado, não reordena) e devolve a primeira que começa com um idioma
// suportado.
func FromAcceptLanguage(header string) (Locale, bool) {
	if header == "" {
		return "", false
	}

	for _, part := range strings.Split(header, ",") {
		tag, _, _ := strings.Cut(part, ";")
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		for _, l := range acceptPriority {
			if strings.HasPrefix(tag, string(l)) {
				return l, true
			}
		}
	}
	return "", false
}
