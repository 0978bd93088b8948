// Package fluxlog writes the three persistent flux-result logs of
// spec.md §6: the tab-delimited FluxLog.txt, the FluxLog.xml/
// fluxresult.xsl pair, and the semicolon-delimited GeometryLog.csv.
// Grounded on CFluxCalculator::WriteFluxResult and
// CPostProcessing::WriteFluxResult_XML/WriteCalculatedGeometriesToFile
// (see DESIGN.md).
package fluxlog

import ppp "github.com/novacppp/novacppp"

// Entry wraps a ppp.FluxResult with the wind-speed/direction errors the
// flux log requires as columns but ppp.FluxResult does not itself carry
// (it only propagates the aggregate WindErrorComponent), the same "wrap
// the shared type, don't widen it" choice winddb.Record already makes
// around ppp.WindField.
type Entry struct {
	Result ppp.FluxResult

	WindSpeedError     float64
	WindDirectionError float64
}
