package config

import (
	"fmt"
	"io"
)

// RenderEffective writes the resolved configuration as a human-readable
// annotated summary to w. This powers the "config show" command, giving
// users visibility into the effective values after all four override
// layers (defaults -> file -> env -> CLI) have been applied.
func RenderEffective(r *Resolved, w io.Writer) error {
	ew := &errWriter{w: w}

	ew.printf("# Effective configuration (from %s)\n\n", r.ConfigPath)

	ew.printf("[api]\n")
	ew.printf("  base_url = %q\n", r.BaseURL)
	ew.printf("  timeout  = %q\n", r.Timeout.String())
	ew.printf("\n")

	ew.printf("[auth]\n")
	ew.printf("  token_path = %q\n", r.TokenPath)
	ew.printf("\n")

	ew.printf("[cache]\n")
	ew.printf("  path = %q\n", r.CachePath)
	ew.printf("\n")

	ew.printf("[geocode]\n")
	ew.printf("  api_key = %q\n", maskSecret(r.GeocodeAPIKey))
	ew.printf("  workers = %d\n", r.GeocodeWorkers)
	ew.printf("\n")

	ew.printf("[sync]\n")
	ew.printf("  poll_interval = %q\n", r.PollInterval.String())
	ew.printf("\n")

	ew.printf("[logging]\n")
	ew.printf("  log_level = %q\n", r.LogLevel)

	return ew.err
}

// errWriter wraps an io.Writer and captures the first write error.
// Subsequent writes after an error are no-ops, so callers can chain printf
// calls without checking each one individually.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}

	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

// Redacted returns a copy of r with secrets masked, for JSON output.
func (r *Resolved) Redacted() *Resolved {
	cp := *r
	cp.GeocodeAPIKey = maskSecret(cp.GeocodeAPIKey)

	return &cp
}

// maskSecret hides all but the last four characters of a secret.
func maskSecret(s string) string {
	const visible = 4

	if s == "" {
		return ""
	}

	if len(s) <= visible {
		return "****"
	}

	return "****" + s[len(s)-visible:]
}
