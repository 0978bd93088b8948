package evallog

import (
	"reflect"
	"strings"

	stgpsr "github.com/yuin/stagparser"
)

// fixedSpectrumColumns tags the evaluation-log columns that precede the
// per-species block (spec.md §6), in on-disk order. Column names are
// pulled via stagparser the same way the teacher package pulls TileDB
// attribute names from struct tags: field declaration order fixes the
// column order, the tag supplies the on-disk name.
type fixedSpectrumColumns struct {
	StartTime      string `evallog:"name=starttime"`
	StopTime       string `evallog:"name=stoptime"`
	Name           string `evallog:"name=name"`
	SpecSaturation string `evallog:"name=specsaturation"`
	FitSaturation  string `evallog:"name=fitsaturation"`
	Delta          string `evallog:"name=delta"`
	ChiSquare      string `evallog:"name=chisquare"`
	ExposureTime   string `evallog:"name=exposuretime"`
	NumSpec        string `evallog:"name=numspec"`
}

// trailingSpectrumColumns tags the columns spec.md §6 places after the
// per-species block.
type trailingSpectrumColumns struct {
	IsGoodPoint string `evallog:"name=isgoodpoint"`
	Offset      string `evallog:"name=offset"`
	Flag        string `evallog:"name=flag"`
}

// taggedColumnNames walks t's exported fields in declaration order and
// returns the "name" attribute of each field's "evallog" tag definition.
func taggedColumnNames(t any) []string {
	defs, _ := stgpsr.ParseStruct(t, "evallog")

	values := reflect.ValueOf(t).Elem()
	types := values.Type()

	names := make([]string, 0, types.NumField())
	for i := 0; i < types.NumField(); i++ {
		fieldName := types.Field(i).Name
		for _, d := range defs[fieldName] {
			if d.Name() != "name" {
				continue
			}
			v, _ := d.Attribute("name")
			names = append(names, v)
		}
	}
	return names
}

// speciesColumnNames returns the six per-species column names of spec.md
// §6 for one reference (column, columnError, shift, shiftError, squeeze,
// squeezeError), in on-disk order. Unlike the fixed columns these can't
// be struct-tagged: the set of species is window-dependent, not static.
func speciesColumnNames(species string) []string {
	return []string{
		"column(" + species + ")",
		"columnerror(" + species + ")",
		"shift(" + species + ")",
		"shifterror(" + species + ")",
		"squeeze(" + species + ")",
		"squeezeerror(" + species + ")",
	}
}

// headerRow builds the full header row for a Gothenburg or Heidelberg
// scan carrying the given species names, in spec.md §6 order: angle
// column(s), fixedSpectrumColumns, one speciesColumnNames block per
// species, trailingSpectrumColumns.
func headerRow(heidelberg bool, species []string) []string {
	cols := make([]string, 0, 16)
	if heidelberg {
		cols = append(cols, "observationangle", "azimuth")
	} else {
		cols = append(cols, "scanangle")
	}
	cols = append(cols, taggedColumnNames(&fixedSpectrumColumns{})...)
	for _, s := range species {
		cols = append(cols, speciesColumnNames(s)...)
	}
	cols = append(cols, taggedColumnNames(&trailingSpectrumColumns{})...)
	return cols
}

func joinRow(fields []string) string {
	return strings.Join(fields, "\t")
}

func splitRow(line string) []string {
	return strings.Split(line, "\t")
}
