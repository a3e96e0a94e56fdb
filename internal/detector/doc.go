// Stockpulse - Live Sales and Inventory Snapshot Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockpulse

/*
Package detector decides when the source file has changed and republishes
the aggregated snapshot.

Two triggers feed one reload gate:
  - a poll ticker, always armed, which is the source of truth
  - a file watcher built on fsnotify, armed when the environment supports it

Both call the same gate, which skips work when the file's modification time
has already been seen. The gate re-checks the modification time under its
lock before publishing, so two triggers racing on the same change publish at
most once, and an older read never replaces a newer snapshot.

Failure handling:
  - missing source: nothing to do yet
  - read exhausted: logged, the change stays unseen so the next trigger retries it
  - empty source: the change is marked seen, the current snapshot is kept
  - watcher unavailable: logged once, the detector runs on polling alone

The detector runs as a supervised service through RunWithContext.
*/
package detector
