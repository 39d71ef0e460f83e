package permission

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
)

//go:embed permissions_schema.json
var permissionsSchemaJSON []byte

// permissionsSchema is resolved once at startup. The embedded schema is
// part of the build, so a failure here is a programming error.
var permissionsSchema = mustResolveSchema()

func mustResolveSchema() *jsonschema.Resolved {
	var s jsonschema.Schema
	if err := json.Unmarshal(permissionsSchemaJSON, &s); err != nil {
		panic(fmt.Sprintf("permission: embedded schema is invalid JSON: %v", err))
	}
	resolved, err := s.Resolve(nil)
	if err != nil {
		panic(fmt.Sprintf("permission: embedded schema failed to resolve: %v", err))
	}
	return resolved
}

// validatePermissionsJSON checks one scope file's decoded contents
// against the permissions schema. Returns nil when the document is valid.
func validatePermissionsJSON(doc any) error {
	return permissionsSchema.Validate(doc)
}

// schemaIssues flattens a validation error into its individual issues so
// each can be reported on its own. Multiple causes arrive on separate
// lines of the error text.
func schemaIssues(err error) []string {
	var issues []string
	for _, line := range strings.Split(err.Error(), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			issues = append(issues, line)
		}
	}
	return issues
}
