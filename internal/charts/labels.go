package charts

import (
	"fmt"

	"compras/internal/core"
)

type labelSet struct {
	monthly, platforms, categories, weekly, prices, top, heatmap string

	month, spend, platform, category, week, purchases, unitPrice, frequency, product, weekday string
}

var labels = map[core.Locale]labelSet{
	core.LocaleES: {
		monthly:    "📅 Evolución del Gasto Mensual",
		platforms:  "🛒 Distribución del Gasto por Plataforma",
		categories: "🏷️ Gasto por Categoría",
		weekly:     "📈 Tendencias Semanales de Compras",
		prices:     "📊 Distribución de Precios",
		top:        "🏆 Top %d Productos Más Caros",
		heatmap:    "📅 Heatmap de Gasto por Día y Mes",

		month:     "Mes",
		spend:     "Gasto Total (%s)",
		platform:  "Plataforma",
		category:  "Categoría",
		week:      "Semana",
		purchases: "Número de Compras",
		unitPrice: "Precio Unitario (%s)",
		frequency: "Frecuencia",
		product:   "Producto",
		weekday:   "Día de la Semana",
	},
	core.LocaleEN: {
		monthly:    "📅 Monthly Spend",
		platforms:  "🛒 Spend by Platform",
		categories: "🏷️ Spend by Category",
		weekly:     "📈 Weekly Purchase Trends",
		prices:     "📊 Price Distribution",
		top:        "🏆 Top %d Most Expensive Products",
		heatmap:    "📅 Spend Heatmap by Day and Month",

		month:     "Month",
		spend:     "Total Spend (%s)",
		platform:  "Platform",
		category:  "Category",
		week:      "Week",
		purchases: "Purchases",
		unitPrice: "Unit Price (%s)",
		frequency: "Frequency",
		product:   "Product",
		weekday:   "Weekday",
	},
}

func labelsFor(locale core.Locale) labelSet {
	if l, ok := labels[locale]; ok {
		return l
	}
	return labels[core.LocaleES]
}

func (l labelSet) spendAxis(currency string) string {
	return fmt.Sprintf(l.spend, currency)
}
