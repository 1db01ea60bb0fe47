package validate

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"urntrace/internal/resolver"
	"urntrace/internal/scanner"
)

// FixStatus reports the outcome of one legacy contract rewrite.
type FixStatus string

const (
	FixDryRun FixStatus = "dry_run"
	FixFixed  FixStatus = "fixed"
	FixError  FixStatus = "error"
)

// Fix describes one legacy contract id migration.
type Fix struct {
	FilePath string    `json:"file_path"`
	OldID    string    `json:"old_id"`
	NewID    string    `json:"new_id"`
	Status   FixStatus `json:"status"`
	Backup   string    `json:"backup,omitempty"`
	Error    string    `json:"error,omitempty"`
}

// FindLegacyContracts flags contract schemas whose $id still carries the
// pre-migration urn:jel: prefix, suggesting the path-derived id.
func (v *Validator) FindLegacyContracts() []Issue {
	contractsDir := v.registry.Layout().ContractsDir()

	var issues []Issue
	_ = scanner.Walk(contractsDir, []string{".schema.json"}, func(path string) error {
		id, err := schemaIDFromJSON(path)
		if err != nil || !strings.HasPrefix(id, resolver.LegacyContractPrefix) {
			return nil
		}
		correct := contractIDFromPath(path, contractsDir)
		issues = append(issues, Issue{
			Type:       IssueLegacyContract,
			Severity:   SeverityWarning,
			URN:        "contract:" + id,
			Message:    "Legacy contract ID: " + id,
			Location:   path,
			Context:    "Current $id: " + id,
			Suggestion: "Change $id to: " + correct,
		})
		return nil
	})
	return issues
}

// FixLegacyContracts rewrites urn:jel: contract ids to their path-derived
// form. In dry-run mode nothing is written. Otherwise each file gets a
// .bak sibling with the original bytes before the $id value is rewritten
// in place, leaving the rest of the document untouched.
func (v *Validator) FixLegacyContracts(dryRun bool) []Fix {
	contractsDir := v.registry.Layout().ContractsDir()

	var fixes []Fix
	_ = scanner.Walk(contractsDir, []string{".schema.json"}, func(path string) error {
		raw, err := os.ReadFile(path)
		if err != nil {
			fixes = append(fixes, Fix{FilePath: path, Status: FixError, Error: err.Error()})
			return nil
		}

		var doc map[string]any
		if err := json.Unmarshal(raw, &doc); err != nil {
			fixes = append(fixes, Fix{FilePath: path, Status: FixError, Error: err.Error()})
			return nil
		}
		oldID, _ := doc["$id"].(string)
		if !strings.HasPrefix(oldID, resolver.LegacyContractPrefix) {
			return nil
		}
		newID := contractIDFromPath(path, contractsDir)

		fix := Fix{FilePath: path, OldID: oldID, NewID: newID}
		if dryRun {
			fix.Status = FixDryRun
			fixes = append(fixes, fix)
			return nil
		}

		backup := path + ".bak"
		if err := os.WriteFile(backup, raw, 0o644); err != nil {
			fix.Status = FixError
			fix.Error = fmt.Sprintf("backup: %v", err)
			fixes = append(fixes, fix)
			return nil
		}

		rewritten, err := rewriteSchemaID(raw, oldID, newID)
		if err != nil {
			fix.Status = FixError
			fix.Error = err.Error()
			fixes = append(fixes, fix)
			return nil
		}
		if err := os.WriteFile(path, rewritten, 0o644); err != nil {
			fix.Status = FixError
			fix.Error = err.Error()
			fixes = append(fixes, fix)
			return nil
		}

		fix.Status = FixFixed
		fix.Backup = backup
		fixes = append(fixes, fix)
		return nil
	})
	return fixes
}

// rewriteSchemaID swaps the $id value in the raw document text so every
// other byte, including formatting and key order, survives the rewrite.
func rewriteSchemaID(raw []byte, oldID, newID string) ([]byte, error) {
	oldJSON, err := json.Marshal(oldID)
	if err != nil {
		return nil, err
	}
	newJSON, err := json.Marshal(newID)
	if err != nil {
		return nil, err
	}
	if !strings.Contains(string(raw), string(oldJSON)) {
		return nil, fmt.Errorf("$id value %q not found in document text", oldID)
	}
	return []byte(strings.Replace(string(raw), string(oldJSON), string(newJSON), 1)), nil
}

// contractIDFromPath derives a contract id from its location under the
// contracts tree: contracts/a/b/c.schema.json becomes a:b:c.
func contractIDFromPath(path, contractsDir string) string {
	rel, err := filepath.Rel(contractsDir, path)
	if err != nil {
		rel = filepath.Base(path)
	}
	rel = strings.TrimSuffix(filepath.ToSlash(rel), ".schema.json")
	return strings.ReplaceAll(rel, "/", ":")
}

func schemaIDFromJSON(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	var doc struct {
		ID string `json:"$id"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return "", err
	}
	return doc.ID, nil
}
