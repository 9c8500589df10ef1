// Package application contém os casos de uso do rate limit: derivação de chave
// e o engine de admissão.
//
// Ele depende apenas do pacote domain e não conhece net/http.
// Ex.: Service.Admit(request, policy) retorna uma Decision (allow/deny + retry-after).
package application
