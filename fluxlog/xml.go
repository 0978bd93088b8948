package fluxlog

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/novacppp/novacppp/archivefile"
)

// fluxLogXML is the root of FluxLog.xml, grounded on
// CPostProcessing::WriteFluxResult_XML's <NovacPPPFluxResults> document.
type fluxLogXML struct {
	XMLName xml.Name  `xml:"NovacPPPFluxResults"`
	Flux    []fluxXML `xml:"flux"`
}

// fluxXML mirrors one <flux> element's child order exactly; values are
// pre-formatted strings rather than numeric fields so the printf-style
// precision of the original (%.2lf, %.1lf, %.1e, ...) survives Go's XML
// marshaling unchanged.
type fluxXML struct {
	StartTime            string `xml:"startTime"`
	StopTime              string `xml:"stopTime"`
	Serial                string `xml:"serial"`
	InstrumentType        string `xml:"instrumentType"`
	Value                 string `xml:"value"`
	Quality               string `xml:"Quality"`
	FluxErrorWind         string `xml:"FluxError_Wind_kgs"`
	FluxErrorPlumeHeight  string `xml:"FluxError_PlumeHeight_kgs"`
	WindSpeed             string `xml:"windspeed"`
	WindSpeedError        string `xml:"windspeedError"`
	WindSpeedSource       string `xml:"windspeedSource"`
	WindDirection         string `xml:"winddirection"`
	WindDirectionError    string `xml:"winddirectionError"`
	WindDirectionSource   string `xml:"winddirectionSource"`
	PlumeHeight           string `xml:"plumeheight"`
	PlumeHeightError      string `xml:"plumeheightError"`
	PlumeHeightSource     string `xml:"plumeheightSource"`
	Compass               string `xml:"Compass"`
	ConeAngle             string `xml:"ConeAngle"`
	Tilt                  string `xml:"Tilt"`
	NumSpectra            int    `xml:"nSpectra"`
	PlumeCentre1          string `xml:"PlumeCentre_1"`
	PlumeCentre2          string `xml:"PlumeCentre_2"`
	PlumeCompleteness     string `xml:"PlumeCompleteness"`
	ScanOffset            string `xml:"ScanOffset"`
}

func toFluxXML(e Entry) fluxXML {
	r := e.Result
	return fluxXML{
		StartTime:           r.StartTime.UTC().Format(timeLayout),
		StopTime:            r.StopTime.UTC().Format(timeLayout),
		Serial:              r.Serial,
		InstrumentType:      r.Type.String(),
		Value:               fmt.Sprintf("%.2f", r.Value),
		Quality:             r.Quality.Letter(),
		FluxErrorWind:       fmt.Sprintf("%.2f", r.WindErrorComponent),
		FluxErrorPlumeHeight: fmt.Sprintf("%.2f", r.PlumeHeightErrorComponent),
		WindSpeed:           fmt.Sprintf("%.2f", r.Wind.Speed),
		WindSpeedError:      fmt.Sprintf("%.2f", e.WindSpeedError),
		WindSpeedSource:     r.Wind.Source.String(),
		WindDirection:       fmt.Sprintf("%.2f", r.Wind.Direction),
		WindDirectionError:  fmt.Sprintf("%.2f", e.WindDirectionError),
		WindDirectionSource: r.Wind.Source.String(),
		PlumeHeight:         fmt.Sprintf("%.2f", r.PlumeHeight.Altitude),
		PlumeHeightError:    fmt.Sprintf("%.2f", r.PlumeHeight.Error),
		PlumeHeightSource:   r.PlumeHeight.Source.String(),
		Compass:             fmt.Sprintf("%.1f", r.Compass),
		ConeAngle:           fmt.Sprintf("%.1f", r.ConeAngle),
		Tilt:                fmt.Sprintf("%.1f", r.Tilt),
		NumSpectra:          r.NumGoodSpectra,
		PlumeCentre1:        fmt.Sprintf("%.1f", r.PlumeCentre),
		PlumeCentre2:        fmt.Sprintf("%.1f", r.PlumeCentreAzimuth),
		PlumeCompleteness:   fmt.Sprintf("%.2f", r.Completeness),
		ScanOffset:          fmt.Sprintf("%.1e", r.Offset),
	}
}

// WriteXML renders entries to outputDir/FluxLog.xml, archiving any
// previous copy first. Grounded on
// CPostProcessing::WriteFluxResult_XML's processing instructions,
// generated-on comment and <flux> element order.
func WriteXML(outputDir string, entries []Entry, generatedAt time.Time) (string, error) {
	path := filepath.Join(outputDir, "FluxLog.xml")
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("fluxlog: creating output directory: %w", err)
	}
	if _, err := archivefile.Rename(path); err != nil {
		return "", fmt.Errorf("fluxlog: archiving previous flux log: %w", err)
	}

	doc := fluxLogXML{Flux: make([]fluxXML, 0, len(entries))}
	for _, e := range entries {
		doc.Flux = append(doc.Flux, toFluxXML(e))
	}

	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("fluxlog: encoding %s: %w", path, err)
	}

	var out []byte
	out = append(out, []byte(`<?xml version="1.0" encoding="ISO-8859-1"?>`+"\n")...)
	out = append(out, []byte(`<?xml-stylesheet type="text/xsl" href="fluxresult.xsl"?>`+"\n")...)
	out = append(out, []byte(fmt.Sprintf("<!-- Generated on %s -->\n", generatedAt.UTC().Format(timeLayout)))...)
	out = append(out, body...)
	out = append(out, '\n')

	if err := os.WriteFile(path, out, 0o644); err != nil {
		return "", fmt.Errorf("fluxlog: writing %s: %w", path, err)
	}
	return path, nil
}

// fluxResultStylesheet is the XSLT-as-HTML stylesheet
// WriteFluxResult_XML writes alongside FluxLog.xml, carried over
// unchanged since it is static markup with no per-run data of its own.
const fluxResultStylesheet = `<html xsl:version="1.0"
      xmlns:xsl="http://www.w3.org/1999/XSL/Transform"
      xmlns="http://www.w3.org/1999/xhtml">
<head>
  <title>NOVAC Post Processing Program - Flux results</title>
</head>
<body>
  <div>
    <h2>Calculated fluxes</h2>
  </div>
  <table border="1">
    <tr>
      <th>Start time</th>
      <th>Stop time</th>
      <th>Flux [kg/s]</th>
      <th>Serial</th>
    </tr>
    <xsl:for-each select="NovacPPPFluxResults/flux">
      <tr>
        <td><xsl:value-of select="startTime"/></td>
        <td><xsl:value-of select="stopTime"/></td>
        <td><xsl:value-of select="value"/></td>
        <td><xsl:value-of select="serial"/></td>
      </tr>
    </xsl:for-each>
  </table>
</body>
</html>
`

// WriteStylesheet writes fluxresult.xsl alongside FluxLog.xml.
func WriteStylesheet(outputDir string) (string, error) {
	path := filepath.Join(outputDir, "fluxresult.xsl")
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("fluxlog: creating output directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(fluxResultStylesheet), 0o644); err != nil {
		return "", fmt.Errorf("fluxlog: writing %s: %w", path, err)
	}
	return path, nil
}
