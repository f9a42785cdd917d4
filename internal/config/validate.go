package config

import (
	"fmt"
	"net/url"
	"strings"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError blocks the run.
	SeverityError IssueSeverity = "error"
	// SeverityWarning is surfaced but does not block.
	SeverityWarning IssueSeverity = "warning"
)

// Issue is a single validation finding. Path is a dotted path into the run
// file (e.g. "target.template").
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether any issue blocks the run.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

// ValidateRun performs static checks on r. It does not touch any database
// or file.
func ValidateRun(r Run) []Issue {
	var issues []Issue
	if strings.TrimSpace(r.Job) == "" {
		issues = append(issues, Issue{SeverityError, "job", "job must not be empty; it labels logs and metrics"})
	}
	issues = append(issues, validateSource(r.Source)...)
	issues = append(issues, validateTarget(r.Target)...)
	issues = append(issues, validateOptions(r)...)
	issues = append(issues, validateMetrics(r.Metrics)...)
	return issues
}

func validateSource(s Source) []Issue {
	var issues []Issue
	switch s.Kind {
	case "":
		return []Issue{{SeverityError, "source.kind", "source.kind must not be empty"}}
	case "postgis", "spatialite":
	default:
		issues = append(issues, Issue{SeverityError, "source.kind",
			fmt.Sprintf("unknown source kind %q; want postgis or spatialite", s.Kind)})
	}
	if strings.TrimSpace(s.DSN) == "" {
		issues = append(issues, Issue{SeverityError, "source.dsn", "source requires a non-empty dsn"})
	}
	if s.Kind == "postgis" && s.Options.Extension != "" {
		issues = append(issues, Issue{SeverityWarning, "source.options.extension",
			"extension is only loaded for spatialite sources"})
	}
	return issues
}

func validateTarget(t Target) []Issue {
	var issues []Issue
	switch t.Kind {
	case "":
		return []Issue{{SeverityError, "target.kind", "target.kind must not be empty"}}
	case "sqlite", "mssql":
	default:
		issues = append(issues, Issue{SeverityError, "target.kind",
			fmt.Sprintf("unknown target kind %q; want sqlite or mssql", t.Kind)})
	}
	if strings.TrimSpace(t.DSN) == "" {
		issues = append(issues, Issue{SeverityError, "target.dsn", "target requires a non-empty dsn"})
	}

	switch {
	case t.Template == "" && t.Kind == "sqlite":
		issues = append(issues, Issue{SeverityWarning, "target.template",
			"no template; the target file is used as is and missing tables are created"})
	case t.Template != "" && t.Kind == "mssql":
		issues = append(issues, Issue{SeverityWarning, "target.template",
			"server targets are not provisioned; template is ignored"})
	case strings.HasPrefix(t.Template, "s3://"):
		u, err := url.Parse(t.Template)
		if err != nil || u.Host == "" || strings.Trim(u.Path, "/") == "" {
			issues = append(issues, Issue{SeverityError, "target.template",
				fmt.Sprintf("template %q must look like s3://bucket/key", t.Template)})
		}
	}
	if (t.S3.AccessKeyID == "") != (t.S3.SecretAccessKey == "") {
		issues = append(issues, Issue{SeverityError, "target.s3",
			"access_key_id and secret_access_key must be set together"})
	}
	if t.Template != "" && t.Template == t.DSN {
		issues = append(issues, Issue{SeverityError, "target.template", "template and target must differ"})
	}
	return issues
}

func validateOptions(r Run) []Issue {
	var issues []Issue
	switch r.Transaction {
	case TransactionPerFamily, TransactionWholeRun:
	default:
		issues = append(issues, Issue{SeverityError, "transaction",
			fmt.Sprintf("unknown transaction policy %q; want %s or %s", r.Transaction, TransactionPerFamily, TransactionWholeRun)})
	}
	switch r.DifferencePolicy {
	case DifferenceKeep, DifferenceSkip:
	default:
		issues = append(issues, Issue{SeverityError, "difference_policy",
			fmt.Sprintf("unknown difference policy %q; want %s or %s", r.DifferencePolicy, DifferenceKeep, DifferenceSkip)})
	}
	if !r.CatchmentDifference && r.DifferencePolicy == DifferenceSkip {
		issues = append(issues, Issue{SeverityWarning, "difference_policy",
			"difference_policy has no effect without catchment_difference"})
	}

	seen := map[string]bool{}
	for i, s := range r.Selection {
		if seen[s] {
			issues = append(issues, Issue{SeverityWarning, fmt.Sprintf("selection[%d]", i),
				fmt.Sprintf("region %q is listed twice", s)})
		}
		seen[s] = true
	}
	return issues
}

func validateMetrics(m Metrics) []Issue {
	switch m.Backend {
	case MetricsNone:
	case MetricsPushgateway:
		if m.PushgatewayURL == "" {
			return []Issue{{SeverityError, "metrics.pushgateway_url", "pushgateway backend requires pushgateway_url"}}
		}
	case MetricsDatadog:
		if m.DatadogAddr == "" {
			return []Issue{{SeverityError, "metrics.datadog_addr", "datadog backend requires datadog_addr"}}
		}
	default:
		return []Issue{{SeverityError, "metrics.backend",
			fmt.Sprintf("unknown metrics backend %q; want none, pushgateway or datadog", m.Backend)}}
	}
	return nil
}
