package dashboard

// Chart.js configuration, encoded as-is into the page and rendered by
// web/static/dashboard.js.

// ChartConfig is a Chart.js chart configuration.
type ChartConfig struct {
	Type    string       `json:"type"`
	Data    ChartData    `json:"data"`
	Options ChartOptions `json:"options"`
}

// ChartData holds category labels and datasets.
type ChartData struct {
	Labels   []string  `json:"labels,omitempty"`
	Datasets []Dataset `json:"datasets"`
}

// Point is a scatter coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Dataset is one Chart.js dataset. Data holds []float64 for category charts
// and []Point for scatter charts.
type Dataset struct {
	Type             string   `json:"type,omitempty"`
	Label            string   `json:"label"`
	Data             any      `json:"data"`
	BackgroundColor  any      `json:"backgroundColor,omitempty"`
	BorderColor      string   `json:"borderColor,omitempty"`
	BorderWidth      int      `json:"borderWidth,omitempty"`
	PointRadius      *int     `json:"pointRadius,omitempty"`
	PointHoverRadius *int     `json:"pointHoverRadius,omitempty"`
	ShowLine         bool     `json:"showLine,omitempty"`
	Fill             *bool    `json:"fill,omitempty"`
	YAxisID          string   `json:"yAxisID,omitempty"`
	Order            int      `json:"order,omitempty"`
	// BarLabels are drawn inside each bar by the barLabels plugin.
	BarLabels []string `json:"barLabels,omitempty"`
	// HoverInfo adds one extra tooltip line per data point.
	HoverInfo []string `json:"hoverInfo,omitempty"`
}

// ChartOptions is the subset of Chart.js options the dashboard sets.
type ChartOptions struct {
	Responsive          bool             `json:"responsive"`
	MaintainAspectRatio bool             `json:"maintainAspectRatio"`
	IndexAxis           string           `json:"indexAxis,omitempty"`
	Interaction         *Interaction     `json:"interaction,omitempty"`
	Plugins             Plugins          `json:"plugins"`
	Scales              map[string]Scale `json:"scales,omitempty"`
}

// Interaction configures hover behaviour. Mode "index" shows every dataset
// at the hovered x position in one tooltip.
type Interaction struct {
	Mode      string `json:"mode"`
	Intersect bool   `json:"intersect"`
}

// Plugins configures the built-in title and legend plugins.
type Plugins struct {
	Title  *Title  `json:"title,omitempty"`
	Legend *Legend `json:"legend,omitempty"`
}

// Title is a chart or axis title.
type Title struct {
	Display bool   `json:"display"`
	Text    string `json:"text"`
}

// Legend placement.
type Legend struct {
	Display  bool   `json:"display"`
	Position string `json:"position,omitempty"`
	Align    string `json:"align,omitempty"`
}

// Scale is a Chart.js axis.
type Scale struct {
	Type        string   `json:"type,omitempty"`
	Position    string   `json:"position,omitempty"`
	Title       *Title   `json:"title,omitempty"`
	Min         *float64 `json:"min,omitempty"`
	Max         *float64 `json:"max,omitempty"`
	BeginAtZero bool     `json:"beginAtZero,omitempty"`
	Grid        *Grid    `json:"grid,omitempty"`
}

// Grid controls axis grid lines.
type Grid struct {
	DrawOnChartArea bool `json:"drawOnChartArea"`
}

func axisTitle(text string) *Title {
	return &Title{Display: true, Text: text}
}

func ptr[T any](v T) *T { return &v }
