package analyzer

import (
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAnalyzer(t *testing.T) *Analyzer {
	t.Helper()
	return New(slog.Default())
}

func TestAnalyzeDescriptionPriority(t *testing.T) {
	a := newAnalyzer(t)

	cases := []struct {
		text     string
		priority string
		urgent   bool
	}{
		{"esto es urgente, el sistema está caído", "critica", true},
		{"es importante terminar pronto el informe", "alta", true},
		{"tarea normal de mantenimiento", "media", false},
		{"mejora opcional para el futuro", "baja", false},
		{"sin palabras clave relevantes", "media", false},
	}
	for _, tc := range cases {
		analysis := a.AnalyzeDescription(tc.text)
		assert.Equal(t, tc.priority, analysis.Priority, "text: %s", tc.text)
		assert.Equal(t, tc.urgent, analysis.UrgencyDetected, "text: %s", tc.text)
	}
}

func TestAnalyzeDescriptionCategory(t *testing.T) {
	a := newAnalyzer(t)

	assert.Equal(t, "desarrollo", a.AnalyzeDescription("corregir bug en el backend").Category)
	assert.Equal(t, "diseño", a.AnalyzeDescription("preparar mockup de la interfaz").Category)
	assert.Equal(t, "infraestructura", a.AnalyzeDescription("configurar deploy en el servidor").Category)
	assert.Equal(t, "general", a.AnalyzeDescription("algo sin clasificar").Category)
}

func TestAnalyzeDescriptionClientMention(t *testing.T) {
	a := newAnalyzer(t)
	assert.True(t, a.AnalyzeDescription("llamar al cliente TechCorp por el avance").ClientMentioned)
	assert.False(t, a.AnalyzeDescription("ordenar el tablero interno").ClientMentioned)
}

func TestExtractEntities(t *testing.T) {
	a := newAnalyzer(t)
	entities := a.ExtractEntities("Implementar en python y redis para la empresa Acme antes del 15/06/2026. Revisar con docker.")

	assert.Contains(t, entities.Technologies, "python")
	assert.Contains(t, entities.Technologies, "redis")
	assert.Contains(t, entities.Technologies, "docker")
	assert.Contains(t, entities.Dates, "15/06/2026")
	assert.Contains(t, entities.Actions, "implementar")
	assert.Contains(t, entities.Actions, "revisar")
	require.NotEmpty(t, entities.Clients)
}

func TestAnalyzeSentiment(t *testing.T) {
	a := newAnalyzer(t)

	s := a.AnalyzeSentiment("excelente trabajo, resultado perfecto y cliente satisfecho")
	assert.Equal(t, "positive", s.Sentiment)
	assert.Equal(t, 1.0, s.Confidence)

	s = a.AnalyzeSentiment("terrible problema, otra falla molesta")
	assert.Equal(t, "negative", s.Sentiment)
	assert.Equal(t, "low", s.UrgencyLevel)

	s = a.AnalyzeSentiment("esto es urgente, arreglar ya, inmediato")
	assert.Equal(t, "high", s.UrgencyLevel)
	assert.GreaterOrEqual(t, s.UrgencySignals, 3)

	s = a.AnalyzeSentiment("texto sin carga emocional")
	assert.Equal(t, "neutral", s.Sentiment)
	assert.Equal(t, 0.5, s.Confidence)
}

func TestSuggestTitle(t *testing.T) {
	a := newAnalyzer(t)

	assert.Equal(t, "Optimizar el dashboard", a.SuggestTitle("optimizar el dashboard. Revisar tiempos de carga.", 80))

	long := strings.Repeat("palabra ", 30)
	title := a.SuggestTitle(long, 40)
	assert.LessOrEqual(t, len(title), 40)
	assert.True(t, strings.HasSuffix(title, "..."))

	assert.Equal(t, "Nueva tarea", a.SuggestTitle("", 80))
	assert.Equal(t, "Nueva tarea", a.SuggestTitle("ok.", 80))
}

func TestClassifyComplexity(t *testing.T) {
	a := newAnalyzer(t)

	c := a.ClassifyComplexity("cambiar el color del texto del enlace")
	assert.Equal(t, "simple", c.Level)
	assert.LessOrEqual(t, c.EstimatedHours, 8)

	c = a.ClassifyComplexity("implementar e integrar el nuevo servicio")
	assert.Equal(t, "medium", c.Level)

	c = a.ClassifyComplexity("migración de la arquitectura y seguridad de la base de datos")
	assert.Equal(t, "complex", c.Level)
	assert.GreaterOrEqual(t, c.EstimatedHours, 16)

	// The estimate never exceeds the cap.
	c = a.ClassifyComplexity(strings.Repeat("arquitectura sistema algoritmo seguridad performance migración api test ", 20))
	assert.Equal(t, 40, c.EstimatedHours)
}

func TestTextStats(t *testing.T) {
	stats := textStats("Una frase. Otra frase.\n\nSegundo párrafo.")
	assert.Equal(t, 3, stats.Sentences)
	assert.Equal(t, 2, stats.Paragraphs)
	assert.Equal(t, 6, stats.Words)
}
