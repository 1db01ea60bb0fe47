package urn

// StepLegend maps the nine lifecycle step codes to their canonical names.
var StepLegend = map[string]string{
	"D": "define",
	"L": "locate",
	"P": "prepare",
	"C": "confirm",
	"E": "execute",
	"M": "monitor",
	"Y": "modify",
	"R": "resolve",
	"K": "conclude",
}

// stepNameToCode is the inverse of StepLegend.
var stepNameToCode = func() map[string]string {
	m := make(map[string]string, len(StepLegend))
	for code, name := range StepLegend {
		m[name] = code
	}
	return m
}()

// HarnessCodes maps harness names to their canonical uppercase codes.
var HarnessCodes = map[string]string{
	"unit":          "UNIT",
	"http":          "HTTP",
	"event":         "EVENT",
	"ws":            "WS",
	"e2e":           "E2E",
	"a11y":          "A11Y",
	"visual":        "VIS",
	"metric":        "METRIC",
	"job":           "JOB",
	"db":            "DB",
	"sec":           "SEC",
	"load":          "LOAD",
	"script":        "SCRIPT",
	"widget":        "WIDGET",
	"golden":        "GOLDEN",
	"bloc":          "BLOC",
	"integration":   "INTEGRATION",
	"rls":           "RLS",
	"edge_function": "EDGE",
	"realtime":      "REALTIME",
	"storage":       "STORAGE",
}

var harnessSet = func() map[string]bool {
	m := make(map[string]bool, len(HarnessCodes))
	for _, code := range HarnessCodes {
		m[code] = true
	}
	return m
}()

// ValidHarness reports whether code is one of the fixed harness codes.
func ValidHarness(code string) bool {
	return harnessSet[code]
}

// ComponentLayers lists the architectural layers a component URN may name.
var ComponentLayers = []string{
	"presentation", "application", "domain", "integration",
	"controller", "usecase", "repository", "assembly",
}

func validLayer(layer string) bool {
	for _, l := range ComponentLayers {
		if l == layer {
			return true
		}
	}
	return false
}

// ReservedTrainsSlug is the wagon slug reserved for train infrastructure
// components (component:trains:...). It never names a real wagon.
const ReservedTrainsSlug = "trains"
