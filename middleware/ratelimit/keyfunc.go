package ratelimit

import (
	"net"
	"net/http"
	"strings"

	"meteo-gateway/middleware/ratelimit/domain"
)

type KeyFunc func(r *http.Request) string

// ClientIdentifier devolve o primeiro IP do X-Forwarded-For, senão X-Real-IP,
// senão "unknown". O formato do endereço não é validado.
func ClientIdentifier(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	return string(domain.UnknownKey)
}

// DefaultKeyFunc usa keyHeader quando presente e depois ClientIdentifier.
// Com useRemoteAddr, o host de RemoteAddr substitui o sentinela "unknown"
// (útil quando o gateway recebe tráfego direto, sem proxy na frente).
func DefaultKeyFunc(keyHeader string, useRemoteAddr bool) KeyFunc {
	return func(r *http.Request) string {
		if keyHeader != "" {
			if v := strings.TrimSpace(r.Header.Get(keyHeader)); v != "" {
				return v
			}
		}

		id := ClientIdentifier(r)
		if id != string(domain.UnknownKey) || !useRemoteAddr {
			return id
		}

		host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
		if err == nil && host != "" {
			return host
		}
		if r.RemoteAddr != "" {
			return r.RemoteAddr
		}
		return id
	}
}
