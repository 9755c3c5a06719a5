package sarif

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	naverrors "github.com/standardbeagle/sarifnav/internal/errors"
)

const minimalLog = `{
  "version": "2.1.0",
  "runs": [
    {
      "tool": {
        "driver": {
          "name": "scanner",
          "rules": [
            {"id": "R1", "name": "RuleOne"},
            {"id": "R2", "name": "RuleTwo"}
          ]
        },
        "extensions": [
          {"name": "plugin", "rules": [{"id": "E1", "name": "ExtRule"}]}
        ]
      },
      "artifacts": [
        {"location": {"uri": "src/a.c"}}
      ],
      "results": [
        {
          "ruleId": "R1",
          "ruleIndex": 0,
          "message": {"text": "finding"},
          "locations": [
            {
              "physicalLocation": {
                "artifactLocation": {"uri": "src/a.c", "index": 0},
                "region": {"startLine": 10, "startColumn": 2, "endColumn": 8}
              }
            }
          ]
        }
      ]
    }
  ]
}`

func TestRead_MinimalLog(t *testing.T) {
	log, err := Read(strings.NewReader(minimalLog), "test.sarif")
	require.NoError(t, err)
	require.Len(t, log.Runs, 1)

	run := &log.Runs[0]
	assert.Equal(t, "scanner", run.Tool.Driver.Name)
	require.Len(t, run.Results, 1)

	res := &run.Results[0]
	assert.Equal(t, "R1", res.RuleID)
	require.NotNil(t, res.RuleIndex)
	assert.Equal(t, 0, *res.RuleIndex)
	require.Len(t, res.Locations, 1)

	phys := res.Locations[0].PhysicalLocation
	require.NotNil(t, phys)
	require.NotNil(t, phys.Region)
	require.NotNil(t, phys.Region.StartLine)
	assert.Equal(t, 10, *phys.Region.StartLine)
	require.NotNil(t, phys.Region.EndColumn)
	assert.Equal(t, 8, *phys.Region.EndColumn)
	assert.Nil(t, phys.Region.EndLine)
}

func TestRead_MalformedJSON(t *testing.T) {
	_, err := Read(strings.NewReader(`{"version":`), "bad.sarif")
	require.Error(t, err)
	var schemaErr *naverrors.SchemaError
	assert.ErrorAs(t, err, &schemaErr)
}

func TestCheckVersion(t *testing.T) {
	tests := []struct {
		version string
		ok      bool
	}{
		{"2.1.0", true},
		{"2.1.0-rtm.5", true},
		{" 2.1.0 ", true},
		{"2.0.0", false},
		{"2.1.1", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run("v="+tt.version, func(t *testing.T) {
			err := CheckVersion(&Log{Version: tt.version}, "test.sarif")
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestRuleLookups(t *testing.T) {
	log, err := Read(strings.NewReader(minimalLog), "test.sarif")
	require.NoError(t, err)
	run := &log.Runs[0]

	assert.Equal(t, "RuleOne", run.RuleByIndex(0).Name)
	assert.Nil(t, run.RuleByIndex(5))
	assert.Nil(t, run.RuleByIndex(-1))

	assert.Equal(t, "RuleTwo", run.RuleByID("R2").Name)
	assert.Equal(t, "ExtRule", run.RuleByID("E1").Name)
	assert.Nil(t, run.RuleByID("missing"))
	assert.Nil(t, run.RuleByID(""))

	assert.Equal(t, "ExtRule", run.ExtensionRule(0, 0).Name)
	assert.Nil(t, run.ExtensionRule(1, 0))
	assert.Nil(t, run.ExtensionRule(0, 3))
}

func TestArtifactAt(t *testing.T) {
	log, err := Read(strings.NewReader(minimalLog), "test.sarif")
	require.NoError(t, err)
	run := &log.Runs[0]

	entry := run.ArtifactAt(0)
	require.NotNil(t, entry)
	assert.Equal(t, "src/a.c", entry.Location.URI)
	assert.Nil(t, run.ArtifactAt(1))
}

func TestReadFile_MissingFile(t *testing.T) {
	_, err := ReadFile("/nonexistent/scan.sarif")
	assert.Error(t, err)
}
