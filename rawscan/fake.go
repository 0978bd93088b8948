package rawscan

import ppp "github.com/novacppp/novacppp"

// Fake is an in-memory Source used by package tests across the module so
// each package can exercise the scan-evaluator/plume-analyzer/geometry/
// flux pipeline without a real scan file reader.
type Fake struct {
	SkySpectrum  ppp.Spectrum
	DarkSpectrum *ppp.Spectrum
	OffsetSpectrum *ppp.Spectrum
	MeasurementSpectra []ppp.Spectrum

	SerialValue string
	ModeValue   ppp.ScanMode
	TypeValue   ppp.InstrumentType
}

func (f *Fake) Sky() (ppp.Spectrum, error)            { return f.SkySpectrum, nil }
func (f *Fake) Dark() (*ppp.Spectrum, error)           { return f.DarkSpectrum, nil }
func (f *Fake) Offset() (*ppp.Spectrum, error)         { return f.OffsetSpectrum, nil }
func (f *Fake) Measurements() ([]ppp.Spectrum, error)  { return f.MeasurementSpectra, nil }
func (f *Fake) Serial() string                         { return f.SerialValue }
func (f *Fake) Mode() ppp.ScanMode                     { return f.ModeValue }
func (f *Fake) Type() ppp.InstrumentType               { return f.TypeValue }

var _ Source = (*Fake)(nil)
