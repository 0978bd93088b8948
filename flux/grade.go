package flux

import ppp "github.com/novacppp/novacppp"

// windSourceGrade implements the "Wind source" row of spec.md §4.5's
// quality table, ported from FluxCalculator::CalculateFlux's
// windFieldQuality switch.
func windSourceGrade(source ppp.WindSource) ppp.Quality {
	switch {
	case source == ppp.WindDefault || source == ppp.WindUser:
		return ppp.Red
	case source.IsForecastGrade():
		return ppp.Green
	default:
		return ppp.Yellow
	}
}

// plumeHeightSourceGrade implements the "Plume-height source" row,
// ported from the same switch's plumeHeightQuality branch.
func plumeHeightSourceGrade(source ppp.WindSource) ppp.Quality {
	switch {
	case source == ppp.WindDefault || source == ppp.WindUser:
		return ppp.Red
	case source.IsCalculated():
		return ppp.Green
	default:
		return ppp.Yellow
	}
}

// completenessGrade implements the "Completeness" row.
func completenessGrade(completeness float64) ppp.Quality {
	switch {
	case completeness >= 0.9:
		return ppp.Green
	case completeness >= 0.7:
		return ppp.Yellow
	default:
		return ppp.Red
	}
}

// Grade implements spec.md §4.5 "Quality grading": the overall grade is
// the worst of the three sub-grades.
func Grade(windSource, plumeHeightSource ppp.WindSource, completeness float64) ppp.Quality {
	grade := windSourceGrade(windSource)
	grade = grade.Worse(plumeHeightSourceGrade(plumeHeightSource))
	grade = grade.Worse(completenessGrade(completeness))
	return grade
}
