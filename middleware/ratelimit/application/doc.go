// Package application contém os casos de uso do rate limit do formulário de
// contato e do limite de concorrência do gateway.
//
// Ele depende apenas do pacote domain e não conhece net/http.
// Ex.: Service.Decide(key) retorna uma Decision (allow/deny, restante, retry-after).
package application
