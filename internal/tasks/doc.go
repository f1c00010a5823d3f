// Package tasks orchestrates the export pipeline: the sequential
// per-playlist loop and the final archive assembly.
//
// # Export Loop
//
// [Exporter.Export] drives one pass over every playlist visible to the
// authenticated account:
//
//  1. Resolve the current user (one call) for ownership classification.
//  2. Fetch the complete playlist list; an empty list is the only
//     per-account condition that fails the whole export.
//  3. Per playlist: derive the folder name from the first track's added_at
//     date (falling back to today), fetch the full track list, download the
//     cover best-effort, render the artifact bodies, and classify the
//     result into Mine or Others by owner ID.
//
// Failures are isolated per playlist: an error anywhere in one playlist's
// steps is logged and that playlist is skipped; the loop continues. Only
// authentication, the top-level playlist listing, and an empty library
// abort the run.
//
// # Progress Reporting
//
// Progress is delivered synchronously through a [ProgressFunc] callback.
// Percentages are monotonically non-decreasing, with at least one update at
// the start and one at completion.
//
// # Archive Assembly
//
// [BuildArchive] consumes a finished [ExportResult] and writes the folder
// hierarchy through the injected [ArchiveWriter] capability; [ZipWriter]
// satisfies it with a ZIP blob. Assembly is pure aggregation with no
// network activity.
package tasks
