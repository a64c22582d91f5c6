// Package analyzer implements the rule-based text heuristics applied to task
// descriptions: priority and category spotting, sentiment, complexity
// estimation and entity extraction. Everything is local and deterministic.
package analyzer

import (
	"log/slog"
	"regexp"
	"strings"
	"time"
)

// Analysis is the combined outcome of analyzing a task description.
type Analysis struct {
	Priority        string    `json:"priority"`
	Category        string    `json:"category"`
	ClientMentioned bool      `json:"client_mentioned"`
	UrgencyDetected bool      `json:"urgency_detected"`
	Complexity      string    `json:"complexity"`
	EstimatedHours  int       `json:"estimated_hours"`
	TextStats       TextStats `json:"text_stats"`
	Timestamp       time.Time `json:"analysis_timestamp"`
}

// TextStats summarizes the analyzed text.
type TextStats struct {
	Characters int `json:"character_count"`
	Words      int `json:"word_count"`
	Sentences  int `json:"sentence_count"`
	Paragraphs int `json:"paragraph_count"`
}

// Entities groups the named entities spotted in a text.
type Entities struct {
	Clients      []string `json:"clients"`
	Dates        []string `json:"dates"`
	People       []string `json:"people"`
	Technologies []string `json:"technologies"`
	Priorities   []string `json:"priorities"`
	Actions      []string `json:"actions"`
}

// Sentiment is the keyword-based sentiment estimate for a text.
type Sentiment struct {
	Sentiment      string  `json:"sentiment"`
	Confidence     float64 `json:"confidence"`
	UrgencyLevel   string  `json:"urgency_level"`
	UrgencyScore   int     `json:"urgency_score"`
	PositiveCount  int     `json:"positive_signals"`
	NegativeCount  int     `json:"negative_signals"`
	UrgencySignals int     `json:"urgency_signals"`
}

// Complexity is the estimated effort classification for a task.
type Complexity struct {
	Level             string         `json:"complexity"`
	EstimatedHours    int            `json:"estimated_hours"`
	Confidence        float64        `json:"confidence"`
	Scores            map[string]int `json:"complexity_scores"`
	AdditionalFactors []string       `json:"additional_factors"`
}

// priority patterns, ordered from most to least urgent; first match wins.
var priorityPatterns = []struct {
	priority string
	pattern  *regexp.Regexp
}{
	{"critica", regexp.MustCompile(`\b(urgente|crítico|emergencia|inmediato|ahora|ya|bloqueante)\b`)},
	{"alta", regexp.MustCompile(`\b(importante|prioridad|rápido|pronto|necesario)\b`)},
	{"media", regexp.MustCompile(`\b(normal|regular|cuando puedas|moderado)\b`)},
	{"baja", regexp.MustCompile(`\b(opcional|sugerencia|mejora|futuro|algún día)\b`)},
}

var categoryPatterns = []struct {
	category string
	pattern  *regexp.Regexp
}{
	{"desarrollo", regexp.MustCompile(`\b(código|programar|desarrollar|implementar|bug|error|api|backend|frontend)\b`)},
	{"diseño", regexp.MustCompile(`\b(diseño|ui|ux|mockup|prototipo|visual|interfaz|wireframe)\b`)},
	{"qa", regexp.MustCompile(`\b(test|testing|qa|prueba|verificar|validar|revisar)\b`)},
	{"marketing", regexp.MustCompile(`\b(marketing|contenido|social|campaña|promoción|seo)\b`)},
	{"soporte", regexp.MustCompile(`\b(soporte|ayuda|problema|incidencia|consulta|ticket)\b`)},
	{"infraestructura", regexp.MustCompile(`\b(servidor|base de datos|infraestructura|deploy|hosting|devops)\b`)},
}

var clientPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)cliente\s+([A-Z][a-zá-ú]+(?:\s+[A-Z][a-zá-ú]+)*)`),
	regexp.MustCompile(`(?i)para\s+([A-Z][a-zá-ú]+(?:\s+[A-Z][a-zá-ú]+)*)`),
	regexp.MustCompile(`(?i)de\s+([A-Z][a-zá-ú]+(?:\s+[A-Z][a-zá-ú]+)*)`),
	regexp.MustCompile(`(?i)empresa\s+([A-Z][a-zá-ú]+(?:\s+[A-Z][a-zá-ú]+)*)`),
}

var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\d{1,2}[/-]\d{1,2}[/-]\d{2,4}`),
	regexp.MustCompile(`\d{1,2}\s+de\s+\S+\s+de\s+\d{4}`),
	regexp.MustCompile(`(?i)(lunes|martes|miércoles|jueves|viernes|sábado|domingo)\s+próximo`),
	regexp.MustCompile(`(?i)(mañana|hoy|ayer|la\s+próxima\s+semana)`),
}

var actionPattern = regexp.MustCompile(`(?i)\b(crear|desarrollar|implementar|diseñar|testear|corregir|optimizar|revisar)\b`)

var techKeywords = []string{
	"react", "vue", "angular", "node", "python", "django", "flask",
	"mysql", "postgresql", "mongodb", "redis", "elasticsearch",
	"aws", "azure", "gcp", "docker", "kubernetes", "jenkins",
}

var positiveWords = []string{
	"excelente", "bueno", "genial", "perfecto", "satisfecho",
	"contento", "feliz", "positivo", "éxito", "logrado",
}

var negativeWords = []string{
	"malo", "terrible", "problema", "error", "falla",
	"molesto", "frustrante", "difícil", "complicado", "urgente",
}

var urgentWords = []string{
	"urgente", "inmediato", "crítico", "emergencia",
	"ahora", "ya", "rápido", "pronto",
}

var complexityKeywords = map[string][]string{
	"simple": {
		"cambiar", "actualizar", "corregir", "revisar", "verificar",
		"texto", "color", "enlace", "imagen",
	},
	"medium": {
		"implementar", "desarrollar", "crear", "diseñar", "optimizar",
		"integrar", "configurar", "refactorizar",
	},
	"complex": {
		"arquitectura", "sistema", "base de datos", "algoritmo",
		"performance", "escalabilidad", "seguridad", "migración",
	},
}

var (
	integrationPattern = regexp.MustCompile(`\b(api|integración|terceros)\b`)
	testingPattern     = regexp.MustCompile(`\b(test|testing|qa)\b`)
)

// Analyzer applies the heuristics. Zero value is not usable; construct with
// New.
type Analyzer struct {
	logger *slog.Logger
	now    func() time.Time
}

// New constructs an Analyzer.
func New(logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{logger: logger, now: time.Now}
}

// AnalyzeDescription extracts priority, category, client mention, urgency and
// complexity from a task description.
func (a *Analyzer) AnalyzeDescription(description string) Analysis {
	lower := strings.ToLower(description)

	analysis := Analysis{
		Priority:  "media",
		Category:  "general",
		Timestamp: a.now().UTC(),
		TextStats: textStats(description),
	}

	for _, entry := range priorityPatterns {
		if entry.pattern.MatchString(lower) {
			analysis.Priority = entry.priority
			analysis.UrgencyDetected = entry.priority == "critica" || entry.priority == "alta"
			break
		}
	}

	for _, entry := range categoryPatterns {
		if entry.pattern.MatchString(lower) {
			analysis.Category = entry.category
			break
		}
	}

	for _, pattern := range clientPatterns {
		if pattern.MatchString(description) {
			analysis.ClientMentioned = true
			break
		}
	}

	complexity := a.ClassifyComplexity(description)
	analysis.Complexity = complexity.Level
	analysis.EstimatedHours = complexity.EstimatedHours

	return analysis
}

// ExtractEntities spots clients, dates, technologies and action verbs in the
// text. Results are deduplicated but otherwise keep match order.
func (a *Analyzer) ExtractEntities(text string) Entities {
	lower := strings.ToLower(text)
	entities := Entities{
		Clients:      []string{},
		Dates:        []string{},
		People:       []string{},
		Technologies: []string{},
		Priorities:   []string{},
		Actions:      []string{},
	}

	for _, pattern := range clientPatterns {
		for _, match := range pattern.FindAllStringSubmatch(text, -1) {
			if len(match) > 1 {
				entities.Clients = appendUnique(entities.Clients, match[1])
			}
		}
	}

	for _, pattern := range datePatterns {
		for _, match := range pattern.FindAllString(text, -1) {
			entities.Dates = appendUnique(entities.Dates, match)
		}
	}

	for _, tech := range techKeywords {
		if strings.Contains(lower, tech) {
			entities.Technologies = appendUnique(entities.Technologies, tech)
		}
	}

	for _, match := range actionPattern.FindAllString(text, -1) {
		entities.Actions = appendUnique(entities.Actions, strings.ToLower(match))
	}

	return entities
}

// AnalyzeSentiment estimates sentiment and urgency from keyword counts.
func (a *Analyzer) AnalyzeSentiment(text string) Sentiment {
	lower := strings.ToLower(text)

	positive := countContained(lower, positiveWords)
	negative := countContained(lower, negativeWords)
	urgent := countContained(lower, urgentWords)

	result := Sentiment{
		PositiveCount:  positive,
		NegativeCount:  negative,
		UrgencySignals: urgent,
		UrgencyScore:   urgent,
	}

	total := positive + negative
	switch {
	case total == 0:
		result.Sentiment = "neutral"
		result.Confidence = 0.5
	case positive > negative:
		result.Sentiment = "positive"
		result.Confidence = float64(positive) / float64(total)
	default:
		result.Sentiment = "negative"
		result.Confidence = float64(negative) / float64(total)
	}

	switch {
	case urgent > 2:
		result.UrgencyLevel = "high"
	case urgent > 0:
		result.UrgencyLevel = "medium"
	default:
		result.UrgencyLevel = "low"
	}

	return result
}

// SuggestTitle derives a short title from the first sentence of the
// description, truncating when necessary.
func (a *Analyzer) SuggestTitle(description string, maxLength int) string {
	if maxLength <= 0 {
		maxLength = 80
	}

	title := firstSegment(description, ".")
	if len(title) > maxLength {
		title = firstSegment(description, ",")
	}
	if len(title) > maxLength {
		title = firstSegment(description, ";")
	}
	if len(title) > maxLength {
		runes := []rune(title)
		if len(runes) > maxLength-3 {
			title = string(runes[:maxLength-3]) + "..."
		}
	}

	title = strings.TrimSpace(title)
	if title != "" {
		runes := []rune(title)
		first := strings.ToUpper(string(runes[0]))
		title = first + string(runes[1:])
	}
	if len(title) < 5 {
		title = "Nueva tarea"
	}
	return title
}

// ClassifyComplexity scores the description against the complexity keyword
// tables and derives an hour estimate, capped at 40 hours.
func (a *Analyzer) ClassifyComplexity(description string) Complexity {
	lower := strings.ToLower(description)

	scores := make(map[string]int, len(complexityKeywords))
	for level, keywords := range complexityKeywords {
		scores[level] = countContained(lower, keywords)
	}

	var level string
	var hours int
	switch {
	case scores["complex"] > 0:
		level = "complex"
		hours = 16 + scores["complex"]*8
	case scores["medium"] > scores["simple"]:
		level = "medium"
		hours = 4 + scores["medium"]*2
	default:
		level = "simple"
		hours = 1 + scores["simple"]
	}

	var factors []string
	if len(description) > 500 {
		factors = append(factors, "descripcion_detallada")
		hours += 2
	}
	if integrationPattern.MatchString(lower) {
		factors = append(factors, "integracion_externa")
		hours += 4
	}
	if testingPattern.MatchString(lower) {
		factors = append(factors, "requiere_testing")
		hours += 2
	}

	if hours > 40 {
		hours = 40
	}

	maxScore := 0
	for _, score := range scores {
		if score > maxScore {
			maxScore = score
		}
	}

	return Complexity{
		Level:             level,
		EstimatedHours:    hours,
		Confidence:        float64(maxScore) / float64(len(complexityKeywords)),
		Scores:            scores,
		AdditionalFactors: factors,
	}
}

func textStats(text string) TextStats {
	stats := TextStats{Characters: len(text)}
	stats.Words = len(strings.Fields(text))
	for _, sentence := range strings.Split(text, ".") {
		if strings.TrimSpace(sentence) != "" {
			stats.Sentences++
		}
	}
	for _, paragraph := range strings.Split(text, "\n") {
		if strings.TrimSpace(paragraph) != "" {
			stats.Paragraphs++
		}
	}
	return stats
}

func firstSegment(text, sep string) string {
	segment, _, _ := strings.Cut(text, sep)
	return strings.TrimSpace(segment)
}

func countContained(text string, words []string) int {
	count := 0
	for _, word := range words {
		if strings.Contains(text, word) {
			count++
		}
	}
	return count
}

func appendUnique(list []string, value string) []string {
	for _, existing := range list {
		if existing == value {
			return list
		}
	}
	return append(list, value)
}
