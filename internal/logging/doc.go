// Package logging wraps log/slog with matchday's structured logging
// conventions: standardized field names, component loggers, and
// context-derived correlation attributes.
//
// All packages obtain loggers through NewComponentLogger so that every
// record carries a stable "component" attribute. Request-scoped values
// (run ID, sport, source file) travel on the context and are attached
// via WithContext at the call site.
package logging
