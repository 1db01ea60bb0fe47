package urn

import (
	"fmt"
	"regexp"
	"strings"
)

// Test URN forms, disambiguated by Parse in this order.
const (
	TestFormAcceptance = "acceptance"
	TestFormJourney    = "journey"
	TestFormLegacy     = "legacy"
)

// Parsed holds the structured fields of a decomposed URN. Only the fields
// relevant to the parsed family are set.
type Parsed struct {
	Family   string
	Wagon    string
	Feature  string
	WMBTID   string
	Harness  string
	Sequence string
	Slug     string

	// Component fields.
	Name  string
	Side  string
	Layer string

	// Test fields.
	TrainID  string
	TestForm string
	TestCase string
}

var testAcceptanceHeadRe = regexp.MustCompile(`^[A-Z]\d{3}$`)

// Parse decomposes a URN into named components by family-specific rules.
// Test URNs are tried acceptance-shape first, then journey-shape, then the
// legacy dotted shape.
func Parse(urn string) (Parsed, error) {
	family := FamilyOf(urn)
	rest := strings.TrimPrefix(urn, family+":")

	switch family {
	case FamilyWagon:
		return Parsed{Family: family, Wagon: rest}, nil

	case FamilyFeature:
		parts := strings.SplitN(rest, ":", 2)
		p := Parsed{Family: family, Wagon: parts[0]}
		if len(parts) > 1 {
			p.Feature = parts[1]
		}
		return p, nil

	case FamilyWMBT:
		parts := strings.SplitN(rest, ":", 2)
		p := Parsed{Family: family, Wagon: parts[0]}
		if len(parts) > 1 {
			p.WMBTID = parts[1]
		}
		return p, nil

	case FamilyAcc:
		return parseAcceptance(family, rest), nil

	case FamilyComponent:
		parts := strings.Split(rest, ":")
		p := Parsed{Family: family}
		if len(parts) > 0 {
			p.Wagon = parts[0]
		}
		if len(parts) > 1 {
			p.Feature = parts[1]
		}
		if len(parts) > 2 {
			p.Name = parts[2]
		}
		if len(parts) > 3 {
			p.Side = parts[3]
		}
		if len(parts) > 4 {
			p.Layer = parts[4]
		}
		return p, nil

	case FamilyTest:
		return parseTest(rest), nil

	case FamilyTrain:
		return Parsed{Family: family, TrainID: rest}, nil

	case "":
		return Parsed{}, fmt.Errorf("URN %q has no family prefix", urn)

	default:
		if !KnownFamily(family) {
			return Parsed{}, fmt.Errorf("unknown URN family %q", family)
		}
		return Parsed{Family: family}, nil
	}
}

// parseAcceptance decomposes wagon:wmbt-harness-seq[-slug] after the family
// prefix has been stripped.
func parseAcceptance(family, rest string) Parsed {
	parts := strings.SplitN(rest, ":", 2)
	p := Parsed{Family: family, Wagon: parts[0]}
	if len(parts) < 2 {
		return p
	}
	facets := strings.Split(parts[1], "-")
	if len(facets) >= 3 {
		p.WMBTID = facets[0]
		p.Harness = facets[1]
		p.Sequence = facets[2]
		if len(facets) > 3 {
			p.Slug = strings.Join(facets[3:], "-")
		}
	}
	return p
}

// parseTest disambiguates the three test URN shapes.
func parseTest(rest string) Parsed {
	// Acceptance form: {wagon}:{feature}:{WMBT}-{HARNESS}-{NNN}-{slug}
	if colonParts := strings.Split(rest, ":"); len(colonParts) == 3 && colonParts[0] != "train" {
		segments := strings.SplitN(colonParts[2], "-", 4)
		if len(segments) >= 3 && testAcceptanceHeadRe.MatchString(segments[0]) {
			p := Parsed{
				Family:   FamilyTest,
				TestForm: TestFormAcceptance,
				Wagon:    colonParts[0],
				Feature:  colonParts[1],
				WMBTID:   segments[0],
				Harness:  segments[1],
				Sequence: segments[2],
			}
			if len(segments) > 3 {
				p.Slug = segments[3]
			}
			return p
		}
	}

	// Journey form: train:{train-id}:{HARNESS}-{NNN}-{slug}
	if trainPart, ok := strings.CutPrefix(rest, "train:"); ok {
		p := Parsed{Family: FamilyTest, TestForm: TestFormJourney}
		if idx := strings.IndexByte(trainPart, ':'); idx > 0 {
			p.TrainID = trainPart[:idx]
			segments := strings.SplitN(trainPart[idx+1:], "-", 3)
			if len(segments) > 0 {
				p.Harness = segments[0]
			}
			if len(segments) > 1 {
				p.Sequence = segments[1]
			}
			if len(segments) > 2 {
				p.Slug = segments[2]
			}
		} else {
			p.TrainID = trainPart
		}
		return p
	}

	// Legacy dotted form: {wagon}.{feature}.{...}.{test-case}
	parts := strings.Split(rest, ".")
	p := Parsed{Family: FamilyTest, TestForm: TestFormLegacy, Wagon: parts[0]}
	p.TestCase = parts[len(parts)-1]
	if len(parts) > 2 {
		p.Feature = parts[1]
	}
	if len(parts) > 5 {
		p.Name = parts[2]
		p.Side = parts[3]
		p.Layer = parts[4]
	}
	return p
}
