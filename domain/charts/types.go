// Package charts defines the chart specifications served to the
// dashboard front end. Figures are shaped like Plotly figure JSON so the
// browser can hand them to Plotly.newPlot unchanged.
package charts

// Figure is a single renderable chart: traces plus layout.
type Figure struct {
	Traces []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

// Trace is one data series within a figure. X and Y are loosely typed
// because Plotly accepts either category strings or numbers per axis
// (horizontal bars put numbers on X, labels on Y).
type Trace struct {
	Type        string        `json:"type"`
	Name        string        `json:"name,omitempty"`
	Mode        string        `json:"mode,omitempty"`
	X           []interface{} `json:"x,omitempty"`
	Y           []interface{} `json:"y,omitempty"`
	Z           [][]float64   `json:"z,omitempty"`
	Orientation string        `json:"orientation,omitempty"`
	Text        []string      `json:"text,omitempty"`
	TextTmpl    string        `json:"texttemplate,omitempty"`
	Colorscale  string        `json:"colorscale,omitempty"`
	ZMin        *float64      `json:"zmin,omitempty"`
	ZMax        *float64      `json:"zmax,omitempty"`
	Marker      *Marker       `json:"marker,omitempty"`
	Line        *Line         `json:"line,omitempty"`
	Colorbar    *Colorbar     `json:"colorbar,omitempty"`
	ShowLegend  *bool         `json:"showlegend,omitempty"`
}

// Marker styles bar and scatter points.
type Marker struct {
	Color string `json:"color,omitempty"`
	Size  int    `json:"size,omitempty"`
}

// Line styles scatter lines.
type Line struct {
	Color string `json:"color,omitempty"`
	Width float64 `json:"width,omitempty"`
	Dash  string `json:"dash,omitempty"`
}

// Colorbar titles a heatmap scale.
type Colorbar struct {
	Title string `json:"title,omitempty"`
}

// Axis configures one figure axis.
type Axis struct {
	Title string `json:"title,omitempty"`
}

// Shape is an overlay drawn on the figure, used for zero reference lines.
type Shape struct {
	Type string      `json:"type"`
	X0   interface{} `json:"x0"`
	Y0   interface{} `json:"y0"`
	X1   interface{} `json:"x1"`
	Y1   interface{} `json:"y1"`
	Line *Line       `json:"line,omitempty"`
}

// Layout configures titles, sizing and axis labels for a figure.
type Layout struct {
	Title      string  `json:"title,omitempty"`
	Height     int     `json:"height,omitempty"`
	Template   string  `json:"template,omitempty"`
	BarMode    string  `json:"barmode,omitempty"`
	XAxis      *Axis   `json:"xaxis,omitempty"`
	YAxis      *Axis   `json:"yaxis,omitempty"`
	Shapes     []Shape `json:"shapes,omitempty"`
	ShowLegend *bool   `json:"showlegend,omitempty"`
}

// Strings converts labels into a loose axis value slice.
func Strings(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

// Floats converts numbers into a loose axis value slice.
func Floats(values []float64) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

// Ints converts counts into a loose axis value slice.
func Ints(values []int64) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

// Percent scales fractional rates to percent values for display.
func Percent(values []float64) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v * 100
	}
	return out
}

// Bool returns a pointer for the optional showlegend fields.
func Bool(b bool) *bool { return &b }

// Float returns a pointer for the optional zmin/zmax fields.
func Float(f float64) *float64 { return &f }
