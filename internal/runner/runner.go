package runner

import "context"

// Runner abstracts one external tool invocation.
// Arguments are passed through verbatim with no shell interpretation, and the
// working directory is an explicit parameter so no implementation ever touches
// the process-global current directory.
type Runner interface {
	// Run executes exe with args inside workdir, waits for it to finish and
	// returns its stdout. Output is assumed to be UTF-8 text; latex, dvisvgm,
	// typst and magick all emit valid UTF-8 so this is not validated.
	Run(ctx context.Context, workdir string, exe string, args ...string) (string, error)
}
