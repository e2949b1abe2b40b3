// Package digest condenses recent log entries into a compact error report.
//
// Entries are filtered to those mentioning a local project path (unless all
// logs are requested), truncated so stack traces stay short, filtered to
// ERROR and FATAL severities and capped per stream. The report never fails:
// faults are carried in Response.Error.
package digest
