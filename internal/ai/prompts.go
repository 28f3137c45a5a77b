package ai

import (
	"fmt"
	"strings"
)

const chatSystemPrompt = `Você é o Chef AI, um assistente culinário especializado e amigável.
Seu objetivo é criar receitas deliciosas, saudáveis e personalizadas para o usuário.

Quando o usuário pedir uma receita:
1. Crie uma receita completa e detalhada
2. Seja criativo e sugira pratos deliciosos
3. Adapte às restrições alimentares se mencionadas
4. Forneça dicas extras de preparo quando relevante

Responda SEMPRE em JSON válido com este formato exato:
{
  "message": "Uma mensagem amigável e curta sobre a receita (máximo 2 frases)",
  "recipe": {
    "name": "Nome da Receita",
    "time": "XX min",
    "difficulty": "Fácil" | "Médio" | "Difícil",
    "servings": número,
    "calories": número estimado por porção,
    "ingredients": ["quantidade ingrediente 1", "quantidade ingrediente 2", ...],
    "steps": ["Passo 1 detalhado", "Passo 2 detalhado", ...]
  }
}

Se o usuário fizer uma pergunta que não é sobre receita, responda normalmente mas sem o campo "recipe":
{
  "message": "Sua resposta aqui"
}`

var dietLabels = map[string]string{
	"keto":        "cetogênica (baixo carboidrato, alta gordura)",
	"vegano":      "vegana (sem ingredientes de origem animal)",
	"vegetariano": "vegetariana (sem carne)",
	"lowcarb":     "low carb (baixo carboidrato)",
	"normal":      "equilibrada",
}

var timeLabels = map[string]string{
	"15":  "até 15 minutos",
	"30":  "até 30 minutos",
	"60":  "até 1 hora",
	"any": "qualquer tempo",
}

var goalLabels = map[string]string{
	"massa":      "ganho de massa muscular (alto em proteínas)",
	"perda":      "perda de peso (baixo em calorias)",
	"equilibrio": "alimentação equilibrada",
	"energia":    "aumento de energia (carboidratos complexos)",
}

// generateSystemPrompt builds the recipe-generation prompt from the
// ingredient list and the user's diet/time/goal filters
func generateSystemPrompt(ingredients []string, filters Filters) string {
	var filterInstructions strings.Builder
	if filters.Diet != "" {
		label := dietLabels[filters.Diet]
		if label == "" {
			label = filters.Diet
		}
		fmt.Fprintf(&filterInstructions, "\n- Dieta: %s", label)
	}
	if filters.Time != "" {
		label := timeLabels[filters.Time]
		if label == "" {
			label = filters.Time
		}
		fmt.Fprintf(&filterInstructions, "\n- Tempo de preparo: %s", label)
	}
	if filters.Goal != "" {
		label := goalLabels[filters.Goal]
		if label == "" {
			label = filters.Goal
		}
		fmt.Fprintf(&filterInstructions, "\n- Objetivo: %s", label)
	}

	filterBlock := ""
	if filterInstructions.Len() > 0 {
		filterBlock = fmt.Sprintf("\nFiltros aplicados:%s", filterInstructions.String())
	}

	return fmt.Sprintf(`Você é um chef especialista em criar receitas personalizadas.
Com base nos ingredientes fornecidos, crie uma receita deliciosa que atenda aos filtros especificados.

Ingredientes disponíveis: %s
%s

Regras importantes:
- Use APENAS os ingredientes listados (pode adicionar temperos básicos como sal, pimenta, azeite)
- Respeite rigorosamente os filtros de dieta se especificados
- Adapte a receita ao objetivo nutricional se especificado
- Respeite o tempo máximo de preparo se especificado

Responda SEMPRE em JSON válido com este formato exato:
{
  "recipe": {
    "name": "Nome criativo da Receita",
    "time": "XX min",
    "difficulty": "Fácil" | "Médio" | "Difícil",
    "servings": número,
    "calories": número estimado por porção,
    "ingredients": ["quantidade ingrediente 1", "quantidade ingrediente 2", ...],
    "steps": ["Passo 1 detalhado", "Passo 2 detalhado", ...]
  }
}`, strings.Join(ingredients, ", "), filterBlock)
}

// analyzeSystemPrompt builds the fridge-photo comparison prompt from the
// user's current shopping list
func analyzeSystemPrompt(currentItems []string) string {
	var list strings.Builder
	for _, item := range currentItems {
		fmt.Fprintf(&list, "- %s\n", item)
	}

	return fmt.Sprintf(`Você é um assistente de compras inteligente.
Analise a imagem da geladeira/despensa e identifique quais ingredientes estão FALTANDO em comparação com a lista de compras do usuário.

Lista de compras atual do usuário:
%s
Instruções:
1. Identifique os ingredientes visíveis na imagem
2. Compare com a lista de compras do usuário
3. Retorne APENAS os itens que estão NA LISTA mas NÃO estão visíveis na imagem (itens faltantes)

Responda SEMPRE em JSON válido com este formato exato:
{
  "detectedItems": ["item1 na foto", "item2 na foto", ...],
  "missingItems": ["item faltante 1", "item faltante 2", ...]
}

Se todos os itens estiverem presentes, retorne missingItems como array vazio.`, list.String())
}

const analyzeUserPrompt = "Analise esta foto e me diga quais itens da minha lista de compras estão faltando."
