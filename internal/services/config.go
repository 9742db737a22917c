package services

import (
	"strings"

	"github.com/clinicore/customer-intake/internal/gcp"
)

// IntakeConfig holds configuration for the intake-processor service.
type IntakeConfig struct {
	ProjectID             string
	CustomerCollection    string
	FileTrackerCollection string
	QuarantineTopic       string
	RequiredColumns       []string
	DefaultTenant         string
	SourceTimezone        string
}

// NewConfigFromEnv assembles the service configuration from the environment.
func NewConfigFromEnv() IntakeConfig {
	return IntakeConfig{
		ProjectID:             gcp.GetEnv("PROJECT_ID", ""),
		CustomerCollection:    gcp.GetEnv("CUSTOMER_COLLECTION", "customers"),
		FileTrackerCollection: gcp.GetEnv("FILE_TRACKER_COLLECTION", "processed_files"),
		QuarantineTopic:       gcp.GetEnv("QUARANTINE_TOPIC", "intake-failures"),
		RequiredColumns:       splitColumns(gcp.GetEnv("REQUIRED_COLUMNS", "tenant_id,customer_id,name,email,phone")),
		DefaultTenant:         gcp.GetEnv("DEFAULT_TENANT", "unknown-tenant"),
		SourceTimezone:        gcp.GetEnv("SOURCE_TIMEZONE", "America/New_York"),
	}
}

func splitColumns(raw string) []string {
	var cols []string
	for _, c := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(c); trimmed != "" {
			cols = append(cols, trimmed)
		}
	}
	return cols
}
