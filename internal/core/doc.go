// Package core provides HSN/SAC code validation against reference tables.
//
// This package holds all domain logic independent of any UI or transport
// layer. The web handlers and the command-line checker both drive it
// through [Service] or directly through a [Validator].
//
// # Architecture
//
//   - Table Definitions: registered via the registry, each names the sheet
//     position and the code and description columns of one reference table.
//   - Loader: reads the master workbook (or CSV) into [Tables].
//   - Validator: immutable indices over both tables answering format,
//     existence, description, hierarchy and suggestion queries.
//   - Service: publishes the current validator, swaps in uploads, and keeps
//     the invalid-code log behind the admin dashboard.
//
// # Table Registry
//
// Tables are registered at init time using [Register]:
//
//	core.Register(core.TableDefinition{
//	    Info:        core.TableInfo{Key: core.TableHSN, Label: "HSN (goods)", Sheet: 0},
//	    Code:        core.FieldSpec{Name: "HSNCode"},
//	    Description: core.FieldSpec{Name: "Description"},
//	})
//
// # Reports
//
// [Validator.Process] turns comma-separated input into the text report
// shown to users, one block per code in input order. "help" or "?" returns
// [HelpText] instead.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - FILE001-FILE006: File errors (size, format, empty)
//   - UPL001-UPL003: Upload errors (busy, cancelled, timeout)
//   - VAL001-VAL002: Input validation errors
//   - REQ001-REQ003: Malformed or unauthorized requests
package core
