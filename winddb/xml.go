package winddb

import (
	"encoding/xml"
	"io"
	"time"

	"github.com/novacppp/novacppp/geometry"

	ppp "github.com/novacppp/novacppp"
)

// windXML is the `.wxml` schema of spec.md §6 "Wind XML": a `<Wind
// volcano="...">` root holding one or more `<windfield>` blocks, each
// sharing a source/altitude/validity interval across one or more
// `<item>` point records. No sample `.wxml` file survived distillation
// retrieval (the gap is the same one documented for config/xml.go's
// three configuration formats), so this shape is built directly from
// spec.md §6's textual description.
type windXML struct {
	XMLName xml.Name       `xml:"Wind"`
	Volcano string         `xml:"volcano,attr"`
	Fields  []windFieldXML `xml:"windfield"`
}

type windFieldXML struct {
	Source    string        `xml:"source"`
	Altitude  float64       `xml:"altitude"`
	ValidFrom string        `xml:"valid_from"`
	ValidTo   string        `xml:"valid_to"`
	Items     []windItemXML `xml:"item"`
}

type windItemXML struct {
	Speed          float64 `xml:"ws,attr"`
	SpeedError     float64 `xml:"wse,attr"`
	Direction      float64 `xml:"wd,attr"`
	DirectionError float64 `xml:"wde,attr"`
	Latitude       float64 `xml:"lat,attr"`
	Longitude      float64 `xml:"lon,attr"`
	Altitude       float64 `xml:"alt,attr"`
}

const wxmlTimeLayout = "2006-01-02T15:04:05"

func parseSourceName(s string) ppp.WindSource {
	for src := ppp.WindDefault; src <= ppp.WindGeometryCalcSingleInstrument; src++ {
		if src.String() == s {
			return src
		}
	}
	return ppp.WindDefault
}

func parseWxmlTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(wxmlTimeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Read decodes a `.wxml` document into a fresh DataBase, clamping every
// item's latitude/longitude the same way config.ParseSetup clamps
// instrument locations (spec.md §6: "Latitudes are clamped into
// [-90, 90]... longitudes into [-180, 180]").
func Read(r io.Reader) (*DataBase, error) {
	var doc windXML
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, err
	}

	db := &DataBase{VolcanoName: doc.Volcano}
	for _, field := range doc.Fields {
		source := parseSourceName(field.Source)
		from := parseWxmlTime(field.ValidFrom)
		to := parseWxmlTime(field.ValidTo)

		for _, item := range field.Items {
			db.Insert(Record{
				Field: ppp.WindField{
					Speed:     item.Speed,
					Direction: item.Direction,
					Source:    source,
					From:      from,
					To:        to,
					HasPoint:  true,
					Latitude:  geometry.NormalizeLatitude(item.Latitude),
					Longitude: geometry.NormalizeLongitude(item.Longitude),
				},
				SpeedError:     item.SpeedError,
				DirectionError: item.DirectionError,
			})
		}
	}
	return db, nil
}

// Write encodes db as a `.wxml` document, one `<windfield>` per
// distinct (source, from, to) combination among its records, in
// insertion order (spec.md §6 persisted state: "GeneratedWindField.wxml
// (final wind database)").
func Write(w io.Writer, db *DataBase) error {
	doc := windXML{Volcano: db.VolcanoName}

	var fields []windFieldXML
	index := make(map[[3]string]int)
	for _, r := range db.All() {
		key := [3]string{r.Field.Source.String(), formatWxmlTime(r.Field.From), formatWxmlTime(r.Field.To)}
		i, ok := index[key]
		if !ok {
			i = len(fields)
			index[key] = i
			fields = append(fields, windFieldXML{
				Source:    r.Field.Source.String(),
				ValidFrom: formatWxmlTime(r.Field.From),
				ValidTo:   formatWxmlTime(r.Field.To),
			})
		}
		fields[i].Items = append(fields[i].Items, windItemXML{
			Speed:          r.Field.Speed,
			SpeedError:     r.SpeedError,
			Direction:      r.Field.Direction,
			DirectionError: r.DirectionError,
			Latitude:       r.Field.Latitude,
			Longitude:      r.Field.Longitude,
		})
	}
	doc.Fields = fields

	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	return enc.Encode(doc)
}

func formatWxmlTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(wxmlTimeLayout)
}
