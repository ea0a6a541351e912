package ai

import (
	"fmt"
	"strings"
)

// systemPrompt instructs the model to act as a strict product-equivalence
// judge and to answer with nothing but the JSON schema we parse.
const systemPrompt = `Você é um especialista em produtos de supermercado brasileiro.
Sua tarefa é identificar quais produtos de duas listas são o MESMO produto físico,
mesmo quando os mercados usam nomes diferentes.
Considere sinônimos regionais: "chiclete" = "goma de mascar", "bolacha" = "biscoito",
"macarrão" = "massa", "refri" = "refrigerante".
NUNCA equipare tamanhos de embalagem diferentes (350ml não é 2L).
Responda APENAS com um objeto JSON no formato:
{"matches":[{"idx1":0,"idx2":3,"score":0.95}]}
Os índices são baseados em zero. Inclua apenas pares com score >= 0.85.
Se não houver correspondências, responda {"matches":[]}.`

// buildUserPrompt embeds the two numbered name lists.
func buildUserPrompt(namesA, namesB []string) string {
	var sb strings.Builder
	sb.WriteString("Lista 1:\n")
	for i, name := range namesA {
		fmt.Fprintf(&sb, "%d. %s\n", i, name)
	}
	sb.WriteString("\nLista 2:\n")
	for i, name := range namesB {
		fmt.Fprintf(&sb, "%d. %s\n", i, name)
	}
	sb.WriteString("\nQuais itens da Lista 1 correspondem a itens da Lista 2?")
	return sb.String()
}
