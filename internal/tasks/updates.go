package tasks

import (
	"fmt"

	"github.com/harmonia-fm/harmonia/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data
}

// Operation phase enumeration
type Phase int

const (
	PhaseReadManifest Phase = iota
	ImportSongs
	FlushIndex
)

func (p Phase) String() string {
	switch p {
	case PhaseReadManifest:
		return "read_manifest"
	case ImportSongs:
		return "import_songs"
	case FlushIndex:
		return "flush_index"
	default:
		return ""
	}
}

func readManifestUpdate(path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PhaseReadManifest,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Reading manifest: %s...", path),
	}
}

func manifestLoadedUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PhaseReadManifest,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Manifest loaded (%d songs)", total),
	}
}

func importingSongUpdate(step, total int, title string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ImportSongs,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Importing: %s...", step, total, title),
	}
}

func importCompletedUpdate(step, total int, song *models.Song) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ImportSongs,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (ID: %s)", step, total, song.Title(), song.ID()),
		Data:    song,
	}
}

func importFailedUpdate(step, total int, title string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ImportSongs,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, title, err),
	}
}

func flushIndexUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   FlushIndex,
		Step:    1,
		Total:   1,
		Message: "Flushing search index updates...",
	}
}
