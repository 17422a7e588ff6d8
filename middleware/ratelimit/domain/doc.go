// Package domain define contratos e tipos de domínio para o rate limit do
// formulário de contato e para o limite de concorrência do gateway.
//
// Este pacote não depende de net/http nem de implementações concretas.
// A intenção é permitir testes de unidade puros (relógio injetável) e
// desacoplar regras de negócio de detalhes de infraestrutura.
package domain
