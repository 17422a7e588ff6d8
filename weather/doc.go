// Package weather faz o relay server-side da API de clima de terceiros usada
// pelas páginas do site (condições atuais, previsão, alertas, qualidade do ar).
//
// A chave da API fica no gateway; o navegador só vê /api/weather/<endpoint>.
// Respostas ficam em cache por endpoint e as chamadas de saída passam por um
// token bucket (golang.org/x/time/rate) para não estourar a cota do provedor.
package weather
