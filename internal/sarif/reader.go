package sarif

import (
	"encoding/json"
	"io"
	"os"
	"strings"

	naverrors "github.com/standardbeagle/sarifnav/internal/errors"
)

// SupportedVersion is the only SARIF schema version this core normalizes.
// Older logs are handed to external upgrade tooling before they get here.
const SupportedVersion = "2.1.0"

// Read decodes a SARIF log from r. The path is used only for error context.
func Read(r io.Reader, path string) (*Log, error) {
	dec := json.NewDecoder(r)
	var log Log
	if err := dec.Decode(&log); err != nil {
		return nil, naverrors.NewDecodeError(path, err)
	}
	if err := CheckVersion(&log, path); err != nil {
		return nil, err
	}
	return &log, nil
}

// ReadFile decodes the SARIF log at path.
func ReadFile(path string) (*Log, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, naverrors.NewDecodeError(path, err)
	}
	defer f.Close()
	return Read(f, path)
}

// CheckVersion gates normalization on the supported schema version. The
// version string is matched leniently ("2.1.0", "2.1.0-rtm.5" and the
// like all pass) because producers disagree on the exact literal.
func CheckVersion(log *Log, path string) error {
	v := strings.TrimSpace(log.Version)
	if v == SupportedVersion || strings.HasPrefix(v, SupportedVersion+"-") {
		return nil
	}
	return naverrors.NewSchemaVersionError(path, log.Version)
}

// RuleByIndex returns the driver rule at index, or nil when out of range.
func (r *Run) RuleByIndex(index int) *ReportingDescriptor {
	rules := r.Tool.Driver.Rules
	if index < 0 || index >= len(rules) {
		return nil
	}
	return &rules[index]
}

// RuleByID searches driver rules, then extension rules, for the given rule
// id. Returns nil when no rule matches.
func (r *Run) RuleByID(id string) *ReportingDescriptor {
	if id == "" {
		return nil
	}
	for i := range r.Tool.Driver.Rules {
		if r.Tool.Driver.Rules[i].ID == id {
			return &r.Tool.Driver.Rules[i]
		}
	}
	for e := range r.Tool.Extensions {
		for i := range r.Tool.Extensions[e].Rules {
			if r.Tool.Extensions[e].Rules[i].ID == id {
				return &r.Tool.Extensions[e].Rules[i]
			}
		}
	}
	return nil
}

// ExtensionRule returns the rule at ruleIndex inside the extension selected
// by extIndex, or nil when either index is out of range.
func (r *Run) ExtensionRule(extIndex, ruleIndex int) *ReportingDescriptor {
	if extIndex < 0 || extIndex >= len(r.Tool.Extensions) {
		return nil
	}
	rules := r.Tool.Extensions[extIndex].Rules
	if ruleIndex < 0 || ruleIndex >= len(rules) {
		return nil
	}
	return &rules[ruleIndex]
}

// ArtifactAt returns the artifacts-table entry at index, or nil when out of
// range.
func (r *Run) ArtifactAt(index int) *Artifact {
	if index < 0 || index >= len(r.Artifacts) {
		return nil
	}
	return &r.Artifacts[index]
}
