// Package manifest reads the convention-driven YAML and JSON documents
// the traceability graph is built from: wagon manifests, feature and WMBT
// documents, train definitions and schema files.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// RefList unmarshals from either a single scalar reference or a sequence
// of references. Wagon manifests use both shapes for telemetry entries.
type RefList []string

func (r *RefList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var s string
		if err := value.Decode(&s); err != nil {
			return err
		}
		if s != "" {
			*r = RefList{s}
		}
		return nil
	case yaml.SequenceNode:
		var items []string
		if err := value.Decode(&items); err != nil {
			return err
		}
		*r = RefList(items)
		return nil
	default:
		return fmt.Errorf("telemetry reference must be a string or list, got yaml kind %d", value.Kind)
	}
}

// ProduceEntry is one produce[] item of a wagon manifest.
type ProduceEntry struct {
	URN       string  `yaml:"urn"`
	Contract  string  `yaml:"contract"`
	Telemetry RefList `yaml:"telemetry"`
}

// ConsumeEntry is one consume[] item of a wagon manifest.
type ConsumeEntry struct {
	Contract  string  `yaml:"contract"`
	Telemetry RefList `yaml:"telemetry"`
}

// Wagon is a wagon manifest (_<slug>.yaml under the wagon's plan dir).
type Wagon struct {
	Wagon       string               `yaml:"wagon"`
	Description string               `yaml:"description"`
	Produce     []ProduceEntry       `yaml:"produce"`
	Consume     []ConsumeEntry       `yaml:"consume"`
	WMBT        map[string]yaml.Node `yaml:"wmbt"`
}

// WMBTIDs returns the step-coded ids declared in the manifest's wmbt map,
// sorted. This is the seed set for a urn.Allocator.
func (w *Wagon) WMBTIDs() []string {
	ids := make([]string, 0, len(w.WMBT))
	for id := range w.WMBT {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// LoadWagon reads and decodes a wagon manifest.
func LoadWagon(path string) (*Wagon, error) {
	var w Wagon
	if err := loadYAML(path, &w); err != nil {
		return nil, err
	}
	return &w, nil
}

// Identity is the nested identity block some documents carry.
type Identity struct {
	URN string `yaml:"urn"`
}

// Feature is a feature document (plan/<wagon>/features/<feature>.yaml).
type Feature struct {
	URN      string   `yaml:"urn"`
	Identity Identity `yaml:"identity"`
}

// DeclaredURN returns the document's URN, preferring the top-level field.
func (f *Feature) DeclaredURN() string {
	if f.URN != "" {
		return f.URN
	}
	return f.Identity.URN
}

// LoadFeature reads and decodes a feature document.
func LoadFeature(path string) (*Feature, error) {
	var f Feature
	if err := loadYAML(path, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// AcceptanceBlock is one acceptances[] entry of a WMBT document.
type AcceptanceBlock struct {
	URN      string   `yaml:"urn"`
	Identity Identity `yaml:"identity"`
}

// DeclaredURN returns the block's URN, preferring the identity field the
// newer documents use.
func (a *AcceptanceBlock) DeclaredURN() string {
	if a.Identity.URN != "" {
		return a.Identity.URN
	}
	return a.URN
}

// WMBTDoc is a work-item document (plan/<wagon>/<STEP><NNN>.yaml).
type WMBTDoc struct {
	URN         string            `yaml:"urn"`
	Identity    Identity          `yaml:"identity"`
	Acceptances []AcceptanceBlock `yaml:"acceptances"`
}

// DeclaredURN returns the document's URN, preferring the top-level field.
func (w *WMBTDoc) DeclaredURN() string {
	if w.URN != "" {
		return w.URN
	}
	return w.Identity.URN
}

// LoadWMBT reads and decodes a WMBT document.
func LoadWMBT(path string) (*WMBTDoc, error) {
	var w WMBTDoc
	if err := loadYAML(path, &w); err != nil {
		return nil, err
	}
	return &w, nil
}

// WagonRef unmarshals from either a bare wagon slug/URN string or an
// object carrying a wagon or slug key.
type WagonRef string

func (w *WagonRef) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var s string
		if err := value.Decode(&s); err != nil {
			return err
		}
		*w = WagonRef(s)
		return nil
	case yaml.MappingNode:
		var obj struct {
			Wagon string `yaml:"wagon"`
			Slug  string `yaml:"slug"`
		}
		if err := value.Decode(&obj); err != nil {
			return err
		}
		if obj.Wagon != "" {
			*w = WagonRef(obj.Wagon)
		} else {
			*w = WagonRef(obj.Slug)
		}
		return nil
	default:
		return fmt.Errorf("wagon reference must be a string or object, got yaml kind %d", value.Kind)
	}
}

// Train is a train definition (plan/_trains/<id>.yaml).
type Train struct {
	ID           string     `yaml:"id"`
	Description  string     `yaml:"description"`
	Wagons       []WagonRef `yaml:"wagons"`
	Dependencies []string   `yaml:"dependencies"`
}

// LoadTrain reads and decodes a train definition. A missing id falls back
// to the file's stem.
func LoadTrain(path string) (*Train, error) {
	var t Train
	if err := loadYAML(path, &t); err != nil {
		return nil, err
	}
	if t.ID == "" {
		base := filepath.Base(path)
		t.ID = base[:len(base)-len(filepath.Ext(base))]
	}
	return &t, nil
}

// SchemaID reads the $id (or id) field of a JSON or YAML schema document.
func SchemaID(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	var doc map[string]any
	switch filepath.Ext(path) {
	case ".json":
		if err := json.Unmarshal(data, &doc); err != nil {
			return "", fmt.Errorf("decode %s: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return "", fmt.Errorf("decode %s: %w", path, err)
		}
	}

	if id, ok := doc["$id"].(string); ok && id != "" {
		return id, nil
	}
	if id, ok := doc["id"].(string); ok && id != "" {
		return id, nil
	}
	return "", nil
}

func loadYAML(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
