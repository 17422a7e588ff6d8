package locale

import (
	"net/http"
	"net/url"

	log "github.com/sirupsen/logrus"
)

type Options struct {
	// Matcher nil usa DefaultMatcher.
	Matcher    *Matcher
	CookieName string
	// OnDecision é chamado para cada request que passou pelo Matcher.
	OnDecision func(r *http.Request, d Decision)
	Logger     log.FieldLogger
}

// Middleware aplica Resolve: redirect 307 para o locale secundário, rewrite
// interno (invisível para o cliente) para o padrão. Ambos recebem X-Locale.
func Middleware(opts Options) func(next http.Handler) http.Handler {
	if opts.Matcher == nil {
		opts.Matcher = DefaultMatcher()
	}
	if opts.CookieName == "" {
		opts.CookieName = CookieName
	}
	if opts.Logger == nil {
		opts.Logger = log.StandardLogger()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if opts.Matcher.Excluded(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			var cookie string
			if c, err := r.Cookie(opts.CookieName); err == nil {
				cookie = c.Value
			}

			d := Resolve(r.URL.Path, cookie, r.Header.Get("Accept-Language"))
			if opts.OnDecision != nil {
				opts.OnDecision(r, d)
			}

			switch d.Action {
			case Redirect:
				w.Header().Set(HeaderName, d.Locale.String())
				// Location sai com o path ainda codificado (%2F, %25 sobrevivem)
				target := Prefix(d.Locale, r.URL.EscapedPath())
				if r.URL.RawQuery != "" {
					target += "?" + r.URL.RawQuery
				}
				opts.Logger.WithFields(log.Fields{
					"path":   r.URL.Path,
					"locale": d.Locale,
				}).Debug("locale redirect")
				http.Redirect(w, r, target, http.StatusTemporaryRedirect)

			case Rewrite:
				w.Header().Set(HeaderName, d.Locale.String())
				next.ServeHTTP(w, rewrite(r, d.Locale, d.Target))

			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}

// rewrite troca o path como http.StripPrefix faz, sem tocar na request original.
// RawPath acompanha o prefixo para o upstream receber a mesma codificação.
func rewrite(r *http.Request, l Locale, target string) *http.Request {
	r2 := new(http.Request)
	*r2 = *r
	r2.URL = new(url.URL)
	*r2.URL = *r.URL
	r2.URL.Path = target
	r2.URL.RawPath = ""
	if escaped := Prefix(l, r.URL.EscapedPath()); escaped != target {
		r2.URL.RawPath = escaped
	}
	return r2
}
