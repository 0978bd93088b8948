package config

import (
	"encoding/xml"
	"fmt"
	"io"

	ppp "github.com/novacppp/novacppp"
)

// Catalog is the known-volcanoes table (original VolcanoInfo), looked up
// by name, simplified name, code, or alias via ppp.Volcano.Matches.
type Catalog struct {
	Volcanoes []ppp.Volcano
}

// Find returns the volcano matching query, or ErrUnknownVolcano.
func (c *Catalog) Find(query string) (*ppp.Volcano, error) {
	for i := range c.Volcanoes {
		if c.Volcanoes[i].Matches(query) {
			return &c.Volcanoes[i], nil
		}
	}
	return nil, ErrUnknownVolcano
}

// catalogXML is the on-disk shape of the volcano catalog spec.md §1
// names as an external collaborator ("a volcano catalog keyed by
// name/code returning peak coordinates"); no sample file survived
// distillation retrieval, so the schema below is built directly from
// ppp.Volcano's fields rather than ported from a specific source.
type catalogXML struct {
	XMLName  xml.Name      `xml:"VolcanoCatalog"`
	Volcanoes []volcanoXML `xml:"volcano"`
}

type volcanoXML struct {
	Code            string   `xml:"code,attr"`
	Name            string   `xml:"name,attr"`
	SimplifiedName  string   `xml:"simplifiedname,attr"`
	Aliases         []string `xml:"alias"`
	PeakLatitude    float64  `xml:"peaklatitude,attr"`
	PeakLongitude   float64  `xml:"peaklongitude,attr"`
	PeakAltitude    float64  `xml:"peakaltitude,attr"`
	LocalTimeOffset float64  `xml:"localtimeoffset,attr"`
	SourceRadius    float64  `xml:"sourceradius,attr"`
}

// ParseCatalog decodes a volcano catalog XML document into a Catalog.
func ParseCatalog(r io.Reader) (*Catalog, error) {
	var doc catalogXML
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableXML, err)
	}

	catalog := &Catalog{Volcanoes: make([]ppp.Volcano, 0, len(doc.Volcanoes))}
	for _, v := range doc.Volcanoes {
		catalog.Volcanoes = append(catalog.Volcanoes, ppp.Volcano{
			Code:            v.Code,
			Name:            v.Name,
			SimplifiedName:  v.SimplifiedName,
			Aliases:         v.Aliases,
			PeakLatitude:    v.PeakLatitude,
			PeakLongitude:   v.PeakLongitude,
			PeakAltitude:    v.PeakAltitude,
			LocalTimeOffset: v.LocalTimeOffset,
			SourceRadius:    v.SourceRadius,
		})
	}
	return catalog, nil
}
