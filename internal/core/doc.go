// Package core turns published spreadsheet tabs into program cards.
//
// The package holds all domain logic independent of HTTP or HTML, so web
// handlers, tests or a CLI can use it unchanged.
//
// # Flow
//
//  1. [Service.Refresh] fetches every [Sheet] of the [Registry] in parallel
//     through a [Fetcher], bounded by the [FetchLimiter].
//  2. Each body is parsed with csvparse.Parse into a [SheetData] and saved
//     as a snapshot when a store is configured.
//  3. A sheet that fails to download falls back to its latest snapshot and
//     is marked Stale. With no snapshot the whole refresh fails and the
//     previous result is kept.
//  4. Queries ([Service.ViewState], [Service.Programs], [Service.Summaries])
//     read the latest successful result.
//
// # Programs
//
// [ExtractPrograms] locates each field of [ProgramFields] with
// [ColumnIndex], reads it with [CellValue] and passes free-text fields
// through textfmt.Format. [SDGNumbers] turns the SDG column into badge
// numbers.
//
// # Error Handling
//
// Technical errors are mapped to user-facing messages with [MapError]:
//
//   - FETCH001-FETCH005: download failures (status, size, timeout, busy)
//   - SHEET001-SHEET003: unknown sheet, bad tab, nothing loaded
//   - SNAP001-SNAP003: snapshot store problems
//   - REQ001-REQ002, RATE001: request problems
package core
