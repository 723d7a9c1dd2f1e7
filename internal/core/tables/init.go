// Package tables registers the HSN and SAC reference table layouts with the
// core registry. Import this package to ensure both tables are registered.
package tables

// Each table file uses init() to register its definition.
