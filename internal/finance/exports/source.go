package exports

import (
	"context"
	"fmt"

	"opsboard/internal/config"
	"opsboard/internal/finance"
	"opsboard/internal/log"
)

// FromConfig builds the export source selected by EXPORTS_SOURCE.
func FromConfig(ctx context.Context, cfg *config.Config, logger *log.Logger) (finance.Source, error) {
	switch cfg.ExportsSource {
	case "sheets":
		return NewSheetsSource(ctx, cfg.GoogleSpreadsheetID, Credentials{
			JSON: cfg.GoogleServiceAccountJSON,
			File: cfg.GoogleServiceAccountFile,

			OAuthClientJSON: cfg.GoogleOAuthClientJSON,
			OAuthClientFile: cfg.GoogleOAuthClientFile,
			OAuthTokenFile:  cfg.GoogleOAuthTokenFile,
		}, logger)
	case "json", "":
		return NewJSONDirSource(cfg.ExportsDir, logger), nil
	default:
		return nil, fmt.Errorf("unknown exports source: %s", cfg.ExportsSource)
	}
}
