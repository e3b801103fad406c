package patcher

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"automv/internal/fileutil"
	"automv/internal/logging"
	"automv/internal/services"
)

// Outcome classifies what happened to one target file.
type Outcome string

const (
	OutcomePatched        Outcome = "patched"
	OutcomeAlreadyPatched Outcome = "already patched"
	OutcomeNoChanges      Outcome = "no changes needed"
	OutcomeSkipped        Outcome = "skipped, not found"
	OutcomeFailed         Outcome = "failed"
)

// anchorPreview bounds how much of a missing anchor is echoed in warnings.
const anchorPreview = 60

// Edit is one substitution. A literal edit replaces the first occurrence of
// Old; a pattern edit replaces every match of Pattern. New is inserted
// verbatim in both cases.
type Edit struct {
	Old     string
	Pattern *regexp.Regexp
	New     string
}

func (e Edit) anchor() string {
	if e.Pattern != nil {
		return e.Pattern.String()
	}
	return e.Old
}

func (e Edit) apply(content string) (string, bool) {
	if e.Pattern != nil {
		if !e.Pattern.MatchString(content) {
			return content, false
		}
		return e.Pattern.ReplaceAllLiteralString(content, e.New), true
	}
	if e.Old == "" || !strings.Contains(content, e.Old) {
		return content, false
	}
	return strings.Replace(content, e.Old, e.New, 1), true
}

// Patch describes the edits for one file relative to the repository root.
// A file that already contains Marker is left alone.
type Patch struct {
	File   string
	Marker string
	Edits  []Edit
}

// Result reports the outcome for one patch.
type Result struct {
	File     string
	Outcome  Outcome
	Warnings []string
	Err      error
}

// Line renders the result the way the patch command prints it.
func (r Result) Line() string {
	switch r.Outcome {
	case OutcomePatched:
		return fmt.Sprintf("  [PATCHED] %s", r.File)
	case OutcomeAlreadyPatched:
		return fmt.Sprintf("  [OK] %s already patched", r.File)
	case OutcomeNoChanges:
		return fmt.Sprintf("  [OK] %s no changes needed", r.File)
	case OutcomeSkipped:
		return fmt.Sprintf("  [SKIP] %s not found", r.File)
	default:
		return fmt.Sprintf("  [FAIL] %s: %v", r.File, r.Err)
	}
}

// Options tune a patch run.
type Options struct {
	// DryRun computes outcomes without writing any file.
	DryRun bool
	Logger *slog.Logger
}

// Apply runs every patch against root in order. Individual file problems are
// reported in the results and never stop the batch; only a missing root is an
// error.
func Apply(root string, patches []Patch, opts Options) ([]Result, error) {
	logger := logging.NewComponentLogger(opts.Logger, "patcher")

	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		if err == nil {
			err = fmt.Errorf("%s is not a directory", root)
		}
		return nil, services.Wrap(services.ErrConfiguration, "patcher", "apply",
			"AutoMV repo not found at "+root, err)
	}

	results := make([]Result, 0, len(patches))
	for _, p := range patches {
		res := applyOne(root, p, opts.DryRun)
		for _, w := range res.Warnings {
			logger.Warn("patch anchor missing", logging.String("file", p.File), logging.String("anchor", w))
		}
		attrs := []logging.Attr{
			logging.String("file", p.File),
			logging.String("outcome", string(res.Outcome)),
			logging.Bool("dry_run", opts.DryRun),
		}
		if res.Err != nil {
			attrs = append(attrs, logging.Error(res.Err))
			logger.Error("patch failed", logging.Args(attrs...)...)
		} else {
			logger.Info("patch evaluated", logging.Args(attrs...)...)
		}
		results = append(results, res)
	}
	return results, nil
}

func applyOne(root string, p Patch, dryRun bool) Result {
	res := Result{File: p.File}
	path := filepath.Join(root, filepath.FromSlash(p.File))

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			res.Outcome = OutcomeSkipped
			return res
		}
		res.Outcome, res.Err = OutcomeFailed, err
		return res
	}
	content := string(data)

	if p.Marker != "" && strings.Contains(content, p.Marker) {
		res.Outcome = OutcomeAlreadyPatched
		return res
	}

	updated := content
	for _, edit := range p.Edits {
		next, ok := edit.apply(updated)
		if !ok {
			res.Warnings = append(res.Warnings, "Pattern not found in "+p.File+": "+preview(edit.anchor()))
			continue
		}
		updated = next
	}

	if updated == content {
		res.Outcome = OutcomeNoChanges
		return res
	}
	if !dryRun {
		if err := fileutil.WriteFilePreserveMode(path, []byte(updated), 0o644); err != nil {
			res.Outcome, res.Err = OutcomeFailed, err
			return res
		}
	}
	res.Outcome = OutcomePatched
	return res
}

func preview(anchor string) string {
	r := []rune(anchor)
	if len(r) > anchorPreview {
		r = r[:anchorPreview]
	}
	return string(r) + "..."
}
