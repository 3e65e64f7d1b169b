package mapview

import "github.com/pkordes/growth-logbook/backend/internal/domain"

// Colours of the binary visited scale.
const (
	ColorVisited   = "#0369A1"
	ColorUnvisited = "#E0F2FE"
	colorBorder    = "#fff"
	colorEmphasis  = "#0EA5E9"
)

// TooltipFormatter renders tooltip content for a renderer-native label.
type TooltipFormatter func(label string) string

// Option is the declarative chart description pushed to a renderer.
// Its JSON encoding is what a browser-side ECharts instance consumes;
// the tooltip formatter is a callback and is not serialised.
type Option struct {
	Title     *Title         `json:"title,omitempty"`
	Tooltip   *TooltipOption `json:"tooltip,omitempty"`
	VisualMap *VisualMap     `json:"visualMap,omitempty"`
	Series    []Series       `json:"series"`
}

type Title struct {
	Text string `json:"text"`
	Left string `json:"left,omitempty"`
}

type TooltipOption struct {
	Trigger   string           `json:"trigger"`
	Formatter TooltipFormatter `json:"-"`
}

// VisualMap is a two-stop scale: 0 unvisited, 1 visited.
type VisualMap struct {
	Min     int      `json:"min"`
	Max     int      `json:"max"`
	Text    []string `json:"text"`
	InRange ColorSet `json:"inRange"`
	Show    bool     `json:"show"`
	Left    string   `json:"left,omitempty"`
	Top     string   `json:"top,omitempty"`
}

type ColorSet struct {
	Color []string `json:"color"`
}

type Series struct {
	Name     string     `json:"name"`
	Type     string     `json:"type"`
	Map      string     `json:"map"`
	Roam     bool       `json:"roam"`
	Data     []Datum    `json:"data"`
	Emphasis *ItemState `json:"emphasis,omitempty"`
}

type ItemState struct {
	ItemStyle ItemStyle `json:"itemStyle"`
}

// Datum is one region of the map series.
type Datum struct {
	Name      string    `json:"name"`
	Value     int       `json:"value"`
	ItemStyle ItemStyle `json:"itemStyle"`
}

type ItemStyle struct {
	Color       string  `json:"color,omitempty"`
	AreaColor   string  `json:"areaColor,omitempty"`
	BorderColor string  `json:"borderColor,omitempty"`
	BorderWidth float64 `json:"borderWidth,omitempty"`
}

// Classification is the visited flag of one region.
type Classification struct {
	ID      domain.RegionID `json:"id"`
	Name    string          `json:"name"`
	Visited int             `json:"visited"`
}

// classify marks every region in regions, in order, as visited (1) or not (0).
func classify(regions []domain.Region, visited []domain.RegionID) []Classification {
	set := make(map[domain.RegionID]bool, len(visited))
	for _, id := range visited {
		set[id] = true
	}
	out := make([]Classification, len(regions))
	for i, r := range regions {
		out[i] = Classification{ID: r.ID, Name: r.DisplayName}
		if set[r.ID] {
			out[i].Visited = 1
		}
	}
	return out
}

func seriesData(classes []Classification) []Datum {
	data := make([]Datum, len(classes))
	for i, c := range classes {
		color := ColorUnvisited
		if c.Visited == 1 {
			color = ColorVisited
		}
		data[i] = Datum{
			Name:      c.Name,
			Value:     c.Visited,
			ItemStyle: ItemStyle{Color: color, BorderColor: colorBorder, BorderWidth: 0.5},
		}
	}
	return data
}

func buildOption(mapName string, classes []Classification, formatter TooltipFormatter) Option {
	return Option{
		Tooltip: &TooltipOption{Trigger: "item", Formatter: formatter},
		VisualMap: &VisualMap{
			Min:     0,
			Max:     1,
			Text:    []string{"Visited", "Not visited"},
			InRange: ColorSet{Color: []string{ColorUnvisited, ColorVisited}},
			Show:    true,
			Left:    "left",
			Top:     "bottom",
		},
		Series: []Series{{
			Name:     "Trip map",
			Type:     "map",
			Map:      mapName,
			Roam:     true,
			Data:     seriesData(classes),
			Emphasis: &ItemState{ItemStyle: ItemStyle{AreaColor: colorEmphasis}},
		}},
	}
}

// fallbackOption is pushed when the full option is rejected.
func fallbackOption() Option {
	return Option{
		Title:   &Title{Text: "Trip map", Left: "center"},
		Tooltip: &TooltipOption{Trigger: "item"},
		Series:  []Series{},
	}
}

// clone copies o deeply enough that the caller can mutate series data.
func (o Option) clone() Option {
	c := o
	c.Series = make([]Series, len(o.Series))
	for i, s := range o.Series {
		s.Data = append([]Datum(nil), s.Data...)
		c.Series[i] = s
	}
	return c
}
