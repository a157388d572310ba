package insights

import (
	"fmt"

	"github.com/shopspring/decimal"

	"compras/internal/core"
)

// Statement is a rendered finding.
type Statement struct {
	Text     string   `json:"text"`
	Kind     Kind     `json:"kind"`
	Severity Severity `json:"severity"`
	Code     Code     `json:"code"`
}

// Renderer phrases findings. It holds no state beyond its settings.
type Renderer struct {
	Settings Settings
}

type phrasebook struct {
	trendUp, trendDown, trendStable string
	peakMonth                       string
	topPlatform, frequentPlatform   string
	topCategory                     string
	diversified, moderate, focused  string
	weekday                         string
	imbalance, breadth              string
	impulse, planning               string
	spike, repeated                 string

	balanced, noAlerts, noData, noMatches string
}

var phrasebooks = map[core.Locale]phrasebook{
	core.LocaleES: {
		trendUp:          "📈 **Tendencia alcista**: Tu gasto mensual está aumentando en promedio %s por mes",
		trendDown:        "📉 **Tendencia bajista**: Tu gasto mensual está disminuyendo en promedio %s por mes",
		trendStable:      "📊 **Estabilidad**: Tu gasto mensual se mantiene constante",
		peakMonth:        "💰 **Mes pico**: %s fue el mes con mayor gasto (%s)",
		topPlatform:      "🏆 **Plataforma principal**: %s representa el %.1f%% de tu gasto total (%s)",
		frequentPlatform: "🛒 **Plataforma frecuente**: %s con %d compras realizadas",
		topCategory:      "📦 **Categoría principal**: %s absorbe el %.1f%% de tu presupuesto (%s)",
		diversified:      "🌈 **Diversificación**: Compras en %d categorías diferentes, buena variedad",
		moderate:         "🎯 **Enfoque moderado**: Compras en %d categorías principales",
		focused:          "🎯 **Alto enfoque**: Concentras tus compras en solo %d categorías",
		weekday:          "📅 **Día preferido**: %s es cuando más gastas (%s)",
		imbalance:        "⚖️ **Considera diversificar**: %s representa una gran parte de tu gasto. Podrías explorar más opciones en %s",
		breadth:          "🛍️ **Amplía tus categorías**: Estás comprando en pocas categorías. Considera explorar nuevas áreas de interés",
		impulse:          "⏰ **Control de impulsos**: Compras con mucha frecuencia. Considera esperar 24h antes de compras no esenciales",
		planning:         "🎯 **Planificación**: Compras con poca frecuencia. Podrías planificar compras mayores para ahorrar en envíos",
		spike:            "🚨 **Gasto elevado reciente**: En los últimos 30 días gastaste %s, mucho más que tu promedio mensual",
		repeated:         "🔄 **Producto repetido**: '%s' lo has comprado %d veces",

		balanced:  "Tus hábitos de compra parecen balanceados. ¡Sigue así!",
		noAlerts:  "✅ No se detectaron alertas críticas en tus patrones de compra",
		noData:    "No hay datos para mostrar. Por favor, sube un archivo o verifica 'compras.json'.",
		noMatches: "No hay datos que coincidan con los filtros seleccionados",
	},
	core.LocaleEN: {
		trendUp:          "📈 **Upward trend**: Your monthly spend is growing by %s per month on average",
		trendDown:        "📉 **Downward trend**: Your monthly spend is shrinking by %s per month on average",
		trendStable:      "📊 **Stability**: Your monthly spend is holding steady",
		peakMonth:        "💰 **Peak month**: %s was your highest-spend month (%s)",
		topPlatform:      "🏆 **Main platform**: %s accounts for %.1f%% of your total spend (%s)",
		frequentPlatform: "🛒 **Most used platform**: %s with %d purchases",
		topCategory:      "📦 **Main category**: %s takes %.1f%% of your budget (%s)",
		diversified:      "🌈 **Diversified**: You shop across %d different categories, good variety",
		moderate:         "🎯 **Moderate focus**: You shop across %d main categories",
		focused:          "🎯 **High focus**: Your purchases are concentrated in only %d categories",
		weekday:          "📅 **Preferred day**: %s is when you spend the most (%s)",
		imbalance:        "⚖️ **Consider diversifying**: %s takes a large share of your spend. You could explore more options on %s",
		breadth:          "🛍️ **Broaden your categories**: You shop in few categories. Consider exploring new areas of interest",
		impulse:          "⏰ **Impulse control**: You buy very often. Consider waiting 24h before non-essential purchases",
		planning:         "🎯 **Planning**: You buy rarely. You could batch larger purchases to save on shipping",
		spike:            "🚨 **High recent spend**: In the last 30 days you spent %s, well above your monthly average",
		repeated:         "🔄 **Repeated product**: You have bought '%s' %d times",

		balanced:  "Your shopping habits look balanced. Keep it up!",
		noAlerts:  "✅ No critical alerts were found in your shopping patterns",
		noData:    "No data to show. Upload a file or check 'compras.json'.",
		noMatches: "No data matches the selected filters",
	},
}

func (r Renderer) book() phrasebook {
	if b, ok := phrasebooks[r.Settings.Locale]; ok {
		return b
	}
	return phrasebooks[core.LocaleES]
}

func (r Renderer) money(d decimal.Decimal) string {
	return core.FormatMoney(r.Settings.Currency, d)
}

// Render phrases every finding in order.
func (r Renderer) Render(findings []Finding) []Statement {
	if len(findings) == 0 {
		return nil
	}
	out := make([]Statement, 0, len(findings))
	for _, f := range findings {
		out = append(out, Statement{
			Text:     r.Text(f),
			Kind:     f.Kind,
			Severity: f.Severity,
			Code:     f.Code,
		})
	}
	return out
}

// Text phrases a single finding.
func (r Renderer) Text(f Finding) string {
	b := r.book()
	locale := r.Settings.Locale
	switch f.Code {
	case CodeTrendUp:
		return fmt.Sprintf(b.trendUp, r.money(f.Amount))
	case CodeTrendDown:
		return fmt.Sprintf(b.trendDown, r.money(f.Amount))
	case CodeTrendStable:
		return b.trendStable
	case CodePeakMonth:
		return fmt.Sprintf(b.peakMonth, core.MonthKeyLabel(f.Name, locale), r.money(f.Amount))
	case CodeTopPlatform:
		return fmt.Sprintf(b.topPlatform, f.Name, f.Percent, r.money(f.Amount))
	case CodeFrequentPlatform:
		return fmt.Sprintf(b.frequentPlatform, f.Name, f.Count)
	case CodeTopCategory:
		return fmt.Sprintf(b.topCategory, f.Name, f.Percent, r.money(f.Amount))
	case CodeDiversified:
		return fmt.Sprintf(b.diversified, f.Count)
	case CodeModerateFocus:
		return fmt.Sprintf(b.moderate, f.Count)
	case CodeHighFocus:
		return fmt.Sprintf(b.focused, f.Count)
	case CodePreferredWeekday:
		return fmt.Sprintf(b.weekday, core.WeekdayName(f.Weekday, locale), r.money(f.Amount))
	case CodePlatformImbalance:
		return fmt.Sprintf(b.imbalance, f.Name, f.Other)
	case CodeCategoryBreadth:
		return b.breadth
	case CodeImpulseControl:
		return b.impulse
	case CodePlanning:
		return b.planning
	case CodeSpendSpike:
		return fmt.Sprintf(b.spike, r.money(f.Amount))
	case CodeRepeatedProduct:
		return fmt.Sprintf(b.repeated, f.Name, f.Count)
	default:
		return string(f.Code)
	}
}

// BalancedFallback is shown when no recommendation fired.
func (r Renderer) BalancedFallback() string { return r.book().balanced }

// NoAlertsFallback is shown when no alert fired.
func (r Renderer) NoAlertsFallback() string { return r.book().noAlerts }

// NoDataMessage is shown when no dataset is loaded.
func (r Renderer) NoDataMessage() string { return r.book().noData }

// NoMatchesMessage is shown when the filters leave nothing.
func (r Renderer) NoMatchesMessage() string { return r.book().noMatches }
