package http

import "compras/internal/core"

// uiText holds the fixed interface strings of one locale.
type uiText struct {
	Lang     string
	Title    string
	Subtitle string

	Filters       string
	Platform      string
	Category      string
	DateRange     string
	From, To      string
	AllOption     string
	Apply, Reset  string
	Upload        string
	UploadHint    string
	UploadButton  string
	Reload        string
	Source        string
	LoadedAt      string
	HelpTitle     string
	HelpText      string
	InvalidDates  string
	OneSidedRange string

	TabSummary, TabCharts, TabDetails, TabAnalysis, TabInsights string

	MainMetrics      string
	SecondaryMetrics string
	TotalSpend       string
	Purchases        string
	AverageTicket    string
	MedianPrice      string
	MaxPurchase      string
	Units            string
	Products         string
	Platforms        string
	Categories       string
	StdDev           string
	Period           string
	Days             string

	Name, Total, Mean, Count, Share string

	ChartsTitle, AdvancedCharts string
	DetailTitle                 string
	DownloadCSV, DownloadXLSX   string
	ShowingRows                 string
	Date, Product, Quantity     string
	UnitPrice, LineTotal        string
	AnalysisTitle, Heatmap      string
	TopProducts                 string
	NoAnalysis                  string

	InsightsTitle, InsightsLead string
	PatternsTitle               string
	PreferredWeekday            string
	MeanGap                     string
	RecommendationsTitle        string
	AlertsTitle                 string
	NoInsights                  string

	UploadOK, UploadFailed, UploadTooLarge, UploadMissing string
	ReloadOK, ReloadFailed                                string
	RateLimited                                           string
}

var uiTexts = map[core.Locale]uiText{
	core.LocaleES: {
		Lang:          "es",
		Title:         "🛒 Dashboard de Compras Online",
		Subtitle:      "Analiza tus hábitos de gasto en diferentes plataformas de comercio electrónico",
		Filters:       "🔍 Filtros",
		Platform:      "Seleccionar Plataforma",
		Category:      "Seleccionar Categoría",
		DateRange:     "Rango de Fechas",
		From:          "Desde",
		To:            "Hasta",
		AllOption:     "Todas",
		Apply:         "Aplicar",
		Reset:         "Limpiar",
		Upload:        "Subir archivo JSON, CSV o Excel",
		UploadHint:    "Columnas: fecha, plataforma, producto, categoria, cantidad, precio",
		UploadButton:  "Subir",
		Reload:        "Recargar datos",
		Source:        "Origen",
		LoadedAt:      "Cargado",
		HelpTitle:     "ℹ️ Ayuda",
		HelpText:      "Sube un archivo con tus compras o usa los datos configurados. Los filtros se aplican a todas las secciones.",
		InvalidDates:  "Se ignoraron fechas no válidas",
		OneSidedRange: "Selecciona ambas fechas para filtrar por rango",

		TabSummary:  "📊 Resumen",
		TabCharts:   "📈 Gráficos",
		TabDetails:  "📋 Detalles",
		TabAnalysis: "⚙️ Análisis",
		TabInsights: "🤖 Insight Automático",

		MainMetrics:      "📊 Métricas Principales",
		SecondaryMetrics: "📈 Métricas Secundarias",
		TotalSpend:       "Gasto Total",
		Purchases:        "Compras",
		AverageTicket:    "Ticket Promedio",
		MedianPrice:      "Mediana",
		MaxPurchase:      "Compra Máxima",
		Units:            "Unidades",
		Products:         "Productos",
		Platforms:        "Plataformas",
		Categories:       "Categorías",
		StdDev:           "Desviación Estándar",
		Period:           "Periodo",
		Days:             "días",

		Name:  "Nombre",
		Total: "Total",
		Mean:  "Promedio",
		Count: "Compras",
		Share: "% del total",

		ChartsTitle:    "📈 Visualizaciones Gráficas",
		AdvancedCharts: "📊 Gráficos Avanzados",
		DetailTitle:    "📋 Detalle de Compras",
		DownloadCSV:    "📥 Descargar CSV",
		DownloadXLSX:   "📥 Descargar Excel",
		ShowingRows:    "Mostrando %d de %d compras",
		Date:           "Fecha",
		Product:        "Producto",
		Quantity:       "Cantidad",
		UnitPrice:      "Precio",
		LineTotal:      "Total",
		AnalysisTitle:  "⚙️ Análisis Avanzado",
		Heatmap:        "📅 Heatmap de Gasto",
		TopProducts:    "🏆 Top Productos",
		NoAnalysis:     "No hay datos para análisis avanzado",

		InsightsTitle:        "🤖 Insight Automático",
		InsightsLead:         "Análisis inteligente automatizado de tus patrones de compra",
		PatternsTitle:        "🔍 Análisis de Patrones Detectados",
		PreferredWeekday:     "Día preferido",
		MeanGap:              "Días promedio entre compras",
		RecommendationsTitle: "💡 Recomendaciones Personalizadas",
		AlertsTitle:          "🚨 Alertas y Oportunidades",
		NoInsights:           "No hay datos suficientes para generar insights automáticos",

		UploadOK:       "Datos cargados: %d compras",
		UploadFailed:   "No se pudo cargar el archivo",
		UploadTooLarge: "El archivo supera el tamaño máximo de %s",
		UploadMissing:  "Selecciona un archivo",
		ReloadOK:       "Datos recargados: %d compras",
		ReloadFailed:   "No se pudieron recargar los datos",
		RateLimited:    "Demasiadas solicitudes. Inténtalo más tarde.",
	},
	core.LocaleEN: {
		Lang:          "en",
		Title:         "🛒 Online Purchases Dashboard",
		Subtitle:      "Analyze your spending habits across e-commerce platforms",
		Filters:       "🔍 Filters",
		Platform:      "Select Platform",
		Category:      "Select Category",
		DateRange:     "Date Range",
		From:          "From",
		To:            "To",
		AllOption:     "All",
		Apply:         "Apply",
		Reset:         "Clear",
		Upload:        "Upload a JSON, CSV or Excel file",
		UploadHint:    "Columns: date, platform, product, category, quantity, price",
		UploadButton:  "Upload",
		Reload:        "Reload data",
		Source:        "Source",
		LoadedAt:      "Loaded",
		HelpTitle:     "ℹ️ Help",
		HelpText:      "Upload a file with your purchases or use the configured data. Filters apply to every section.",
		InvalidDates:  "Invalid dates were ignored",
		OneSidedRange: "Pick both dates to filter by range",

		TabSummary:  "📊 Summary",
		TabCharts:   "📈 Charts",
		TabDetails:  "📋 Details",
		TabAnalysis: "⚙️ Analysis",
		TabInsights: "🤖 Automatic Insights",

		MainMetrics:      "📊 Main Metrics",
		SecondaryMetrics: "📈 Secondary Metrics",
		TotalSpend:       "Total Spend",
		Purchases:        "Purchases",
		AverageTicket:    "Average Ticket",
		MedianPrice:      "Median",
		MaxPurchase:      "Largest Purchase",
		Units:            "Units",
		Products:         "Products",
		Platforms:        "Platforms",
		Categories:       "Categories",
		StdDev:           "Standard Deviation",
		Period:           "Period",
		Days:             "days",

		Name:  "Name",
		Total: "Total",
		Mean:  "Average",
		Count: "Purchases",
		Share: "% of total",

		ChartsTitle:    "📈 Charts",
		AdvancedCharts: "📊 Advanced Charts",
		DetailTitle:    "📋 Purchase Details",
		DownloadCSV:    "📥 Download CSV",
		DownloadXLSX:   "📥 Download Excel",
		ShowingRows:    "Showing %d of %d purchases",
		Date:           "Date",
		Product:        "Product",
		Quantity:       "Quantity",
		UnitPrice:      "Price",
		LineTotal:      "Total",
		AnalysisTitle:  "⚙️ Advanced Analysis",
		Heatmap:        "📅 Spending Heatmap",
		TopProducts:    "🏆 Top Products",
		NoAnalysis:     "No data for advanced analysis",

		InsightsTitle:        "🤖 Automatic Insights",
		InsightsLead:         "Automated analysis of your purchase patterns",
		PatternsTitle:        "🔍 Detected Patterns",
		PreferredWeekday:     "Preferred day",
		MeanGap:              "Average days between purchases",
		RecommendationsTitle: "💡 Personalized Recommendations",
		AlertsTitle:          "🚨 Alerts and Opportunities",
		NoInsights:           "Not enough data to generate automatic insights",

		UploadOK:       "Data loaded: %d purchases",
		UploadFailed:   "The file could not be loaded",
		UploadTooLarge: "The file exceeds the %s limit",
		UploadMissing:  "Choose a file",
		ReloadOK:       "Data reloaded: %d purchases",
		ReloadFailed:   "The data could not be reloaded",
		RateLimited:    "Too many requests. Please try again later.",
	},
}

func textFor(locale core.Locale) uiText {
	if t, ok := uiTexts[locale]; ok {
		return t
	}
	return uiTexts[core.LocaleES]
}
