package urn

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	slugRe        = regexp.MustCompile(`^[a-z][a-z0-9-]*$`)
	stepCodedRe   = regexp.MustCompile(`^[DLPCEMYRK][0-9]{3}$`)
	seqRe         = regexp.MustCompile(`^\d{1,3}$`)
	trainIDRe     = regexp.MustCompile(`^\d{4}-[a-z0-9][a-z0-9-]*$`)
	componentRe   = regexp.MustCompile(`^[a-zA-Z0-9.]+$`)
	multiHyphenRe = regexp.MustCompile(`-+`)
)

// NormalizeID lowercases an identifier, maps underscores and spaces to
// hyphens, collapses repeated hyphens and strips leading/trailing ones.
func NormalizeID(id string) string {
	s := strings.ToLower(id)
	s = strings.ReplaceAll(s, "_", "-")
	s = strings.ReplaceAll(s, " ", "-")
	s = multiHyphenRe.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// normalizeWMBTID validates and uppercases a step-coded id like "C004".
func normalizeWMBTID(id string) (string, error) {
	candidate := strings.ToUpper(strings.TrimSpace(id))
	if !stepCodedRe.MatchString(candidate) {
		return "", fmt.Errorf("wmbt id %q must match [DLPCEMYRK][0-9]{3}", id)
	}
	return candidate, nil
}

// NormalizeStep resolves a step code letter or name to its code letter.
func NormalizeStep(step string) (string, error) {
	cleaned := strings.TrimSpace(step)
	if cleaned == "" {
		return "", fmt.Errorf("step cannot be empty")
	}
	upper := strings.ToUpper(cleaned)
	if _, ok := StepLegend[upper]; ok {
		return upper, nil
	}
	if code, ok := stepNameToCode[strings.ToLower(cleaned)]; ok {
		return code, nil
	}
	return "", fmt.Errorf("unknown step %q", step)
}

// StepFromID derives the canonical step name from a step-coded WMBT id.
func StepFromID(wmbtID string) (string, error) {
	id, err := normalizeWMBTID(wmbtID)
	if err != nil {
		return "", err
	}
	return StepLegend[id[:1]], nil
}

func normalizeSequence(seq int) (string, error) {
	if seq <= 0 || seq > 999 {
		return "", fmt.Errorf("sequence %d must be between 1 and 999", seq)
	}
	return fmt.Sprintf("%03d", seq), nil
}

// ParseSequence accepts a 1-3 digit sequence string and zero-pads it.
func ParseSequence(seq string) (string, error) {
	cleaned := strings.TrimSpace(seq)
	if !seqRe.MatchString(cleaned) {
		return "", fmt.Errorf("sequence %q must be a 1-3 digit number", seq)
	}
	n, _ := strconv.Atoi(cleaned)
	return normalizeSequence(n)
}

// checkBuilt re-validates an assembled URN against its family grammar.
// Construction fails loudly rather than emitting a malformed URN.
func checkBuilt(urn, family string) (string, error) {
	if !Validate(urn, family) {
		return "", fmt.Errorf("built invalid %s URN: %s", family, urn)
	}
	return urn, nil
}

// Wagon builds a wagon URN from a wagon identifier.
func Wagon(wagonID string) (string, error) {
	id := NormalizeID(wagonID)
	if !slugRe.MatchString(id) {
		return "", fmt.Errorf("invalid wagon id %q: must start with a lowercase letter and contain only lowercase alphanumerics and hyphens", wagonID)
	}
	return checkBuilt("wagon:"+id, FamilyWagon)
}

// Feature builds a feature URN under a wagon.
func Feature(wagonID, featureID string) (string, error) {
	w := NormalizeID(wagonID)
	f := NormalizeID(featureID)
	if !slugRe.MatchString(w) {
		return "", fmt.Errorf("invalid wagon id for feature: %q", wagonID)
	}
	if !slugRe.MatchString(f) {
		return "", fmt.Errorf("invalid feature id: %q", featureID)
	}
	return checkBuilt(fmt.Sprintf("feature:%s:%s", w, f), FamilyFeature)
}

// WMBT builds a wmbt URN from a wagon id and step-coded id like "E001".
func WMBT(wagonID, stepCodedID string) (string, error) {
	w := NormalizeID(wagonID)
	if !slugRe.MatchString(w) {
		return "", fmt.Errorf("invalid wagon id for wmbt: %q", wagonID)
	}
	id, err := normalizeWMBTID(stepCodedID)
	if err != nil {
		return "", err
	}
	return checkBuilt(fmt.Sprintf("wmbt:%s:%s", w, id), FamilyWMBT)
}

// Acceptance builds an acc URN: acc:{wagon}:{wmbt}-{harness}-{NNN}[-{slug}].
// slug may be empty.
func Acceptance(wagonID, wmbtID, harness string, seq int, slug string) (string, error) {
	w := NormalizeID(wagonID)
	if !slugRe.MatchString(w) {
		return "", fmt.Errorf("invalid wagon id for acceptance: %q", wagonID)
	}
	id, err := normalizeWMBTID(wmbtID)
	if err != nil {
		return "", err
	}
	h := strings.ToUpper(harness)
	if !ValidHarness(h) {
		return "", fmt.Errorf("invalid harness code %q", harness)
	}
	s, err := normalizeSequence(seq)
	if err != nil {
		return "", err
	}
	urn := fmt.Sprintf("acc:%s:%s-%s-%s", w, id, h, s)
	if slug != "" {
		urn += "-" + NormalizeID(slug)
	}
	return checkBuilt(urn, FamilyAcc)
}

// Component builds a component URN. Special forms supported:
// feature composition (name "composition", layer "assembly"), wagon
// entrypoints (featureID "wagon") and train infrastructure
// (wagonID "trains", which requires the assembly layer).
func Component(wagonID, featureID, name, side, layer string) (string, error) {
	w := NormalizeID(wagonID)
	f := NormalizeID(featureID)
	if !slugRe.MatchString(w) {
		return "", fmt.Errorf("invalid wagon id for component: %q", wagonID)
	}
	if !slugRe.MatchString(f) {
		return "", fmt.Errorf("invalid feature id for component: %q", featureID)
	}
	if !componentRe.MatchString(name) {
		return "", fmt.Errorf("invalid component name %q: must be alphanumeric, dots allowed", name)
	}
	if side != "frontend" && side != "backend" {
		return "", fmt.Errorf("invalid side %q: must be frontend or backend", side)
	}
	if !validLayer(layer) {
		return "", fmt.Errorf("invalid layer %q: must be one of %s", layer, strings.Join(ComponentLayers, ", "))
	}
	if w == ReservedTrainsSlug && layer != "assembly" {
		return "", fmt.Errorf("train infrastructure components must use the assembly layer, got %q", layer)
	}
	return checkBuilt(fmt.Sprintf("component:%s:%s:%s:%s:%s", w, f, name, side, layer), FamilyComponent)
}

// Contract builds a contract URN with a colon hierarchy and optional dot
// variant: contract:{theme}(:{segment})*(.{variant})?.
func Contract(theme string, hierarchy []string, variant string) (string, error) {
	return buildHierarchical(FamilyContract, theme, hierarchy, variant)
}

// Telemetry builds a telemetry URN with the same shape as Contract.
func Telemetry(theme string, hierarchy []string, variant string) (string, error) {
	return buildHierarchical(FamilyTelemetry, theme, hierarchy, variant)
}

func buildHierarchical(family, theme string, hierarchy []string, variant string) (string, error) {
	var sb strings.Builder
	sb.WriteString(family)
	sb.WriteByte(':')
	sb.WriteString(NormalizeID(theme))
	for _, seg := range hierarchy {
		sb.WriteByte(':')
		sb.WriteString(NormalizeID(seg))
	}
	if variant != "" {
		sb.WriteByte('.')
		sb.WriteString(NormalizeID(variant))
	}
	return checkBuilt(sb.String(), family)
}

// Plan builds a plan URN: plan:{wagon}[.{feature}[.{component}.{side}.{layer}]].
func Plan(wagonID, featureID, componentName, side, layer string) (string, error) {
	urn := "plan:" + NormalizeID(wagonID)
	if featureID != "" {
		urn += "." + NormalizeID(featureID)
		if componentName != "" {
			if side == "" || layer == "" {
				return "", fmt.Errorf("plan component requires both side and layer")
			}
			urn += fmt.Sprintf(".%s.%s.%s", componentName, side, layer)
		}
	} else if componentName != "" {
		return "", fmt.Errorf("plan cannot name a component without a feature")
	}
	return checkBuilt(urn, FamilyPlan)
}

// TestAcceptance builds an acceptance-form test URN:
// test:{wagon}:{feature}:{WMBT}-{HARNESS}-{NNN}-{slug}. slug is required.
func TestAcceptance(wagonID, featureID, wmbtID, harness, seq, slug string) (string, error) {
	w := NormalizeID(wagonID)
	f := NormalizeID(featureID)
	id, err := normalizeWMBTID(wmbtID)
	if err != nil {
		return "", err
	}
	h := strings.ToUpper(harness)
	if !ValidHarness(h) {
		return "", fmt.Errorf("invalid harness code %q", harness)
	}
	s, err := ParseSequence(seq)
	if err != nil {
		return "", err
	}
	sl := NormalizeID(slug)
	if sl == "" {
		return "", fmt.Errorf("slug is required for test URNs")
	}
	return checkBuilt(fmt.Sprintf("test:%s:%s:%s-%s-%s-%s", w, f, id, h, s, sl), FamilyTest)
}

// TestJourney builds a journey-form test URN:
// test:train:{train-id}:{HARNESS}-{NNN}-{slug}. slug is required.
func TestJourney(trainID, harness, seq, slug string) (string, error) {
	if !trainIDRe.MatchString(trainID) {
		return "", fmt.Errorf("invalid train id %q: must match NNNN-kebab-case", trainID)
	}
	h := strings.ToUpper(harness)
	if !ValidHarness(h) {
		return "", fmt.Errorf("invalid harness code %q", harness)
	}
	s, err := ParseSequence(seq)
	if err != nil {
		return "", err
	}
	sl := NormalizeID(slug)
	if sl == "" {
		return "", fmt.Errorf("slug is required for test URNs")
	}
	return checkBuilt(fmt.Sprintf("test:train:%s:%s-%s-%s", trainID, h, s, sl), FamilyTest)
}

// Train builds a train URN from an NNNN-kebab-case train id.
func Train(trainID string) (string, error) {
	if !trainIDRe.MatchString(trainID) {
		return "", fmt.Errorf("invalid train id %q: must match NNNN-kebab-case", trainID)
	}
	return checkBuilt("train:"+trainID, FamilyTrain)
}
