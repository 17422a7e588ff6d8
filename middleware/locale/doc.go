// Package locale escolhe a variante de idioma (fr/en) servida pelo site.
//
// Resolve é uma função pura: recebe o path, o valor do cookie NEXT_LOCALE e o
// header Accept-Language e devolve uma Decision (seguir, rewrite interno ou
// redirect 307). Middleware aplica a decisão em net/http, depois de o Matcher
// descartar rotas de API, assets e arquivos com extensão.
package locale
