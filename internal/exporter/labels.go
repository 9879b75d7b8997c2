package exporter

// labels holds the display strings of one report language
type labels struct {
	SummaryTitle string
	SummarySheet string
	SkippedSheet string
	Actual       string
	Trend        string
	Forecast     string
	ChartTitle   string
	AxisPeriod   string
	AxisValue    string
	Legend       string
	Category     string
	Reason       string
	Detail       string
}

var reportLabels = map[string]labels{
	"id": {
		SummaryTitle: "Ringkasan Tren & Prediksi",
		SummarySheet: "Ringkasan",
		SkippedSheet: "Dilewati",
		Actual:       "Aktual",
		Trend:        "Tren linier",
		Forecast:     "Prediksi",
		ChartTitle:   "Tren & Prediksi: %s",
		AxisPeriod:   "Bulan",
		AxisValue:    "Jumlah Penumpang",
		Legend:       "Keterangan arah: naik/turun/tetap dibanding bulan aktual terakhir.",
		Category:     "Kategori",
		Reason:       "Alasan",
		Detail:       "Keterangan",
	},
	"en": {
		SummaryTitle: "Trend & Forecast Summary",
		SummarySheet: "Summary",
		SkippedSheet: "Skipped",
		Actual:       "Actual",
		Trend:        "Linear trend",
		Forecast:     "Forecast",
		ChartTitle:   "Trend & Forecast: %s",
		AxisPeriod:   "Month",
		AxisValue:    "Passengers",
		Legend:       "Direction: up/down/flat compared with the last actual month.",
		Category:     "Category",
		Reason:       "Reason",
		Detail:       "Detail",
	},
}

// labelsFor returns the labels of lang, falling back to Indonesian
func labelsFor(lang string) labels {
	if l, ok := reportLabels[lang]; ok {
		return l
	}
	return reportLabels["id"]
}
