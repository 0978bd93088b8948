// XML decoding for the three configuration files spec.md §6 names:
// setup.xml, processing.xml, and one <serial>.exml per instrument. No
// original reader for these files was among the retrieved sources, so
// the element/attribute schema here is built directly from spec.md's
// textual description ("setup.xml (instruments, locations, channels),
// processing.xml (user settings), one <serial>.exml per instrument
// (fit windows and dark-current handling)") rather than ported from a
// specific file.
package config

import (
	"encoding/xml"
	"fmt"
	"io"
	"time"

	"github.com/go-playground/validator/v10"

	ppp "github.com/novacppp/novacppp"
	"github.com/novacppp/novacppp/geometry"
)

var validate = validator.New()

type setupXML struct {
	XMLName     xml.Name        `xml:"NovacPPPSetup"`
	Instruments []instrumentXML `xml:"instrument"`
}

type instrumentXML struct {
	Serial    string        `xml:"serial,attr"`
	Locations []locationXML `xml:"location"`
}

type locationXML struct {
	From      string  `xml:"from,attr"`
	To        string  `xml:"to,attr"` // empty means open-ended
	Latitude  float64 `xml:"latitude,attr"`
	Longitude float64 `xml:"longitude,attr"`
	Altitude  float64 `xml:"altitude,attr"`
	Compass   float64 `xml:"compass,attr"`
	ConeAngle float64 `xml:"coneangle,attr"`
	Tilt      float64 `xml:"tilt,attr"`
	Type      string  `xml:"type,attr"` // "gothenburg" or "heidelberg"
	Volcano   string  `xml:"volcano,attr"`
}

const xmlTimeLayout = "2006-01-02T15:04:05"

func parseXMLTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(xmlTimeLayout, s)
}

func (l locationXML) toLocation(serial string) (ppp.InstrumentLocation, error) {
	from, err := parseXMLTime(l.From)
	if err != nil {
		return ppp.InstrumentLocation{}, fmt.Errorf("config: location %s.from: %w", serial, err)
	}
	to, err := parseXMLTime(l.To)
	if err != nil {
		return ppp.InstrumentLocation{}, fmt.Errorf("config: location %s.to: %w", serial, err)
	}

	instrumentType := ppp.Gothenburg
	if l.Type == "heidelberg" {
		instrumentType = ppp.Heidelberg
	}

	return ppp.InstrumentLocation{
		Serial:    serial,
		From:      from,
		To:        to,
		Latitude:  geometry.NormalizeLatitude(l.Latitude),
		Longitude: geometry.NormalizeLongitude(l.Longitude),
		Altitude:  l.Altitude,
		Compass:   l.Compass,
		ConeAngle: l.ConeAngle,
		Tilt:      l.Tilt,
		Type:      instrumentType,
		Volcano:   l.Volcano,
	}, nil
}

// ParseSetup decodes setup.xml into a Setup whose instruments carry
// locations only; fit windows and dark settings are merged in
// afterwards from each instrument's <serial>.exml via MergeInstrumentExml.
func ParseSetup(r io.Reader, executableDirectory string) (*Setup, error) {
	var doc setupXML
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableXML, err)
	}

	setup := &Setup{ExecutableDirectory: executableDirectory}
	for _, inst := range doc.Instruments {
		ic := InstrumentConfig{Serial: inst.Serial}
		for _, loc := range inst.Locations {
			l, err := loc.toLocation(inst.Serial)
			if err != nil {
				return nil, err
			}
			ic.Locations = append(ic.Locations, l)
		}
		setup.Instruments = append(setup.Instruments, ic)
	}

	// Fit windows aren't known yet (they come from each instrument's
	// <serial>.exml via MergeInstrumentExml), so only the
	// locations-so-far shape is validated here; Setup.Validate covers
	// the full cross-instrument invariants once merging is complete.
	for i := range setup.Instruments {
		if err := validate.Var(setup.Instruments[i].Locations, "required,min=1,dive"); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnreadableXML, err)
		}
	}
	return setup, nil
}

type exmlDoc struct {
	XMLName    xml.Name    `xml:"FitWindows"`
	Dark       darkXML     `xml:"dark"`
	FitWindows []fitWinXML `xml:"fitwindow"`
}

type darkXML struct {
	Mode          string `xml:"mode,attr"` // "measured", "model", "userspectrum"
	SpectrumIndex int    `xml:"spectrumindex,attr"`
}

type fitWinXML struct {
	Name      string `xml:"name,attr"`
	PolyOrder int    `xml:"polyorder,attr"`
	FitLow    int    `xml:"fitlow,attr"`
	FitHigh   int    `xml:"fithigh,attr"`
	Length    int    `xml:"length,attr"`
	Mode      string `xml:"mode,attr"` // "hp_div", "hp_sub", "poly", "none"
	UV        bool   `xml:"uv,attr"`

	References []referenceXML `xml:"reference"`
}

type referenceXML struct {
	Name         string `xml:"name,attr"`
	IsFraunhofer bool   `xml:"fraunhofer,attr"`
	ShiftFixed   bool   `xml:"shiftfixed,attr"`
	SqueezeFixed bool   `xml:"squeezefixed,attr"`
}

func parseDarkMode(s string) DarkMode {
	switch s {
	case "model":
		return DarkModeModel
	case "userspectrum":
		return DarkModeUserSpectrum
	default:
		return DarkModeMeasured
	}
}

func parseFitMode(s string) ppp.FitMode {
	switch s {
	case "hp_sub":
		return ppp.HpSub
	case "poly":
		return ppp.Poly
	case "none":
		return ppp.NoPrecondition
	default:
		return ppp.HpDiv
	}
}

// ParseInstrumentExml decodes one <serial>.exml: its fit windows (cross
// section references are expected to already be resampled onto the
// measurement grid by the external calibration step; this parser only
// carries the per-reference parameter policy) and dark-current handling.
func ParseInstrumentExml(r io.Reader) (fitWindows []ppp.FitWindow, dark DarkSettings, err error) {
	var doc exmlDoc
	if decodeErr := xml.NewDecoder(r).Decode(&doc); decodeErr != nil {
		return nil, DarkSettings{}, fmt.Errorf("%w: %v", ErrUnreadableXML, decodeErr)
	}

	dark = DarkSettings{Mode: parseDarkMode(doc.Dark.Mode), SpectrumIndex: doc.Dark.SpectrumIndex}

	for _, fw := range doc.FitWindows {
		w := ppp.FitWindow{
			Name:            fw.Name,
			PolyOrder:       fw.PolyOrder,
			Fit:             ppp.ChannelRange{Low: fw.FitLow, High: fw.FitHigh},
			Length:          fw.Length,
			Mode:            parseFitMode(fw.Mode),
			UV:              fw.UV,
			FraunhoferIndex: -1,
		}
		for i, ref := range fw.References {
			shift := ppp.FreePolicy()
			if ref.ShiftFixed {
				shift = ppp.FixedPolicy(0)
			}
			squeeze := ppp.FreePolicy()
			if ref.SqueezeFixed {
				squeeze = ppp.FixedPolicy(1)
			}
			w.References = append(w.References, ppp.Reference{
				Name:         ref.Name,
				Column:       ppp.FreePolicy(),
				Shift:        shift,
				Squeeze:      squeeze,
				IsFraunhofer: ref.IsFraunhofer,
			})
			if ref.IsFraunhofer {
				w.FraunhoferIndex = i
			}
		}
		fitWindows = append(fitWindows, w)
	}

	if err := validate.Var(fitWindows, "required,min=1"); err != nil {
		return nil, DarkSettings{}, fmt.Errorf("%w: %v", ErrUnreadableXML, err)
	}
	return fitWindows, dark, nil
}

// MergeInstrumentExml attaches the fit windows/dark settings parsed from
// one instrument's <serial>.exml into the matching Setup entry.
func (s *Setup) MergeInstrumentExml(serial string, fitWindows []ppp.FitWindow, dark DarkSettings) error {
	ic, err := s.Instrument(serial)
	if err != nil {
		return err
	}
	ic.FitWindows = fitWindows
	ic.Dark = dark
	return nil
}

type processingXML struct {
	XMLName xml.Name `xml:"processing"`

	MaxThreadNum int    `xml:"MaxThreadNum"`
	WorkDir      string `xml:"WorkDir"`

	Mode     string `xml:"mode"`
	Molecule string `xml:"molecule"`
	Volcano  string `xml:"Volcano"`

	FromDate string `xml:"FromDate"`
	ToDate   string `xml:"ToDate"`

	LocalDirectory        string  `xml:"LocalDirectory"`
	IncludeSubdirsLocal   bool    `xml:"IncludeSubDirs_Local"`
	FTPDirectory          string  `xml:"FTPDirectory"`
	FTPUsername           string  `xml:"FTPUsername"`
	FTPPassword           string  `xml:"FTPPassword"`
	IncludeSubdirsFTP     bool    `xml:"IncludeSubDirs_FTP"`
	UploadResults         bool    `xml:"UploadResults"`
	OutputDirectory       string  `xml:"outputdirectory"`
	TempDirectory         string  `xml:"tempdirectory"`
	WindFieldFile         string  `xml:"WindFieldFile"`
	CompletenessLimitFlux float64 `xml:"completenessLimit"`
	CalibrationFromHour   int     `xml:"intervalTimeOfDayLowHour"`
	CalibrationToHour     int     `xml:"intervalTimeOfDayHighHour"`
}

const processingXMLDateLayout = "2006-01-02"

// ParseUserConfiguration decodes processing.xml over
// DefaultUserConfiguration, so any field the file omits keeps the
// original's hard-coded default.
func ParseUserConfiguration(r io.Reader) (UserConfiguration, error) {
	var doc processingXML
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return UserConfiguration{}, fmt.Errorf("%w: %v", ErrUnreadableXML, err)
	}

	cfg := DefaultUserConfiguration()
	if doc.MaxThreadNum > 0 {
		cfg.MaxThreadNum = doc.MaxThreadNum
	}
	cfg.WorkDir = doc.WorkDir
	cfg.Volcano = doc.Volcano

	if doc.Mode != "" {
		m, err := ParseProcessingMode(doc.Mode)
		if err != nil {
			return UserConfiguration{}, err
		}
		cfg.Mode = m
	}
	if doc.Molecule != "" {
		m, err := ParseMolecule(doc.Molecule)
		if err != nil {
			return UserConfiguration{}, err
		}
		cfg.Molecule = m
	}

	if doc.FromDate != "" {
		t, err := time.Parse(processingXMLDateLayout, doc.FromDate)
		if err != nil {
			return UserConfiguration{}, fmt.Errorf("config: processing.xml FromDate: %w", err)
		}
		cfg.FromDate = t
	}
	if doc.ToDate != "" {
		t, err := time.Parse(processingXMLDateLayout, doc.ToDate)
		if err != nil {
			return UserConfiguration{}, fmt.Errorf("config: processing.xml ToDate: %w", err)
		}
		cfg.ToDate = t
	}

	cfg.LocalDirectory = doc.LocalDirectory
	cfg.IncludeSubdirsLocal = doc.IncludeSubdirsLocal
	cfg.FTPDirectory = doc.FTPDirectory
	cfg.FTPUsername = doc.FTPUsername
	cfg.FTPPassword = doc.FTPPassword
	cfg.IncludeSubdirsFTP = doc.IncludeSubdirsFTP
	cfg.UploadResults = doc.UploadResults
	if doc.OutputDirectory != "" {
		cfg.OutputDirectory = withTrailingSeparator(doc.OutputDirectory)
	}
	if doc.TempDirectory != "" {
		cfg.TempDirectory = withTrailingSeparator(doc.TempDirectory)
	}
	if doc.WindFieldFile != "" {
		cfg.WindFieldFile = doc.WindFieldFile
	}
	if doc.CompletenessLimitFlux > 0 {
		cfg.CompletenessLimitFlux = doc.CompletenessLimitFlux
	}
	if doc.CalibrationFromHour != 0 || doc.CalibrationToHour != 0 {
		cfg.Calibration = CalibrationWindow{FromHour: doc.CalibrationFromHour, ToHour: doc.CalibrationToHour}
	}

	if err := validate.Struct(&cfg); err != nil {
		return UserConfiguration{}, fmt.Errorf("%w: %v", ErrUnreadableXML, err)
	}
	return cfg, nil
}
