// Package config loads and validates Outpost configuration.
//
// Configuration comes from a YAML file with environment variable
// overrides (OUTPOST_* pattern). Loading happens once at startup;
// the resulting Config is passed explicitly to every component that
// needs it — there is no package-level configuration state.
//
// The output/input registry lives in its own file (registry.file)
// and is parsed by the control package, keeping this package free of
// domain knowledge.
package config
