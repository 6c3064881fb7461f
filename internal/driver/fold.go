package driver

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"psls/internal/folding"
	"psls/internal/lexer"
	"psls/internal/source"
)

// FoldOptions configures a batch fold run.
type FoldOptions struct {
	IncludeLastLine bool
	// Jobs bounds worker parallelism; <=0 means GOMAXPROCS.
	Jobs int
	// MaxFileSize skips files larger than this many bytes; <=0 means no limit.
	MaxFileSize int64
	// Cache, when non-nil, is consulted before computing and updated after.
	Cache *DiskCache
}

// FoldResult holds the folding ranges of a single file, or the error that
// prevented computing them.
type FoldResult struct {
	Path   string
	FileID source.FileID
	Ranges []folding.Range
	Cached bool
	Err    error
}

var scriptExtensions = map[string]bool{
	".ps1":  true,
	".psm1": true,
	".psd1": true,
}

// ListScriptFiles expands paths into a sorted, deduplicated list of script
// files. Directories are walked recursively for known script extensions;
// explicit file arguments are kept regardless of extension.
func ListScriptFiles(paths []string) ([]string, error) {
	var files []string
	seen := make(map[string]bool)

	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			add(p)
			continue
		}
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && scriptExtensions[strings.ToLower(filepath.Ext(path))] {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	sort.Strings(files)
	return files, nil
}

// Fold computes folding ranges for every file in paths, in parallel. Results
// are positionally aligned with the input; per-file failures land in the
// result's Err slot rather than aborting the run. Progress events are sent on
// events when it is non-nil; the channel is closed when the run finishes.
func Fold(ctx context.Context, paths []string, opts FoldOptions, events chan<- Event) (*source.FileSet, []FoldResult, error) {
	if events != nil {
		defer close(events)
	}

	fileSet := source.NewFileSet()
	if len(paths) == 0 {
		return fileSet, nil, nil
	}

	// Preload sequentially; FileSet is not safe for concurrent writes.
	fileIDs := make(map[string]source.FileID, len(paths))
	loadErrors := make(map[string]error, len(paths))
	for _, path := range paths {
		emit(events, Event{File: path, Stage: StageLoad, Status: StatusWorking})
		fileID, err := fileSet.Load(path)
		if err != nil {
			loadErrors[path] = err
			emit(events, Event{File: path, Stage: StageLoad, Status: StatusError})
			continue
		}
		fileIDs[path] = fileID
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	results := make([]FoldResult, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(paths)))

	for i, path := range paths {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			if loadErr, failed := loadErrors[path]; failed {
				results[i] = FoldResult{Path: path, Err: loadErr}
				return nil
			}

			fileID := fileIDs[path]
			file := fileSet.Get(fileID)

			if opts.MaxFileSize > 0 && int64(len(file.Content)) > opts.MaxFileSize {
				results[i] = FoldResult{
					Path:   path,
					FileID: fileID,
					Err:    fmt.Errorf("file exceeds size limit (%d > %d bytes)", len(file.Content), opts.MaxFileSize),
				}
				emit(events, Event{File: path, Stage: StageFold, Status: StatusError})
				return nil
			}

			key := foldCacheKey(file.Hash, opts.IncludeLastLine)
			var payload FoldPayload
			hit, err := opts.Cache.Get(key, &payload)
			if err == nil && hit && payload.Schema == foldCacheSchemaVersion {
				results[i] = FoldResult{Path: path, FileID: fileID, Ranges: payload.Ranges, Cached: true}
				emit(events, Event{File: path, Stage: StageFold, Status: StatusCached})
				return nil
			}

			emit(events, Event{File: path, Stage: StageLex, Status: StatusWorking})
			tokens := lexer.Scan(file, lexer.Options{})

			emit(events, Event{File: path, Stage: StageFold, Status: StatusWorking})
			ranges, err := folding.Compute(file, tokens, folding.Options{IncludeLastLine: opts.IncludeLastLine})
			if err != nil {
				results[i] = FoldResult{Path: path, FileID: fileID, Err: err}
				emit(events, Event{File: path, Stage: StageFold, Status: StatusError})
				return nil
			}

			results[i] = FoldResult{Path: path, FileID: fileID, Ranges: ranges}

			if opts.Cache != nil {
				put := FoldPayload{
					Schema:          foldCacheSchemaVersion,
					Path:            path,
					IncludeLastLine: opts.IncludeLastLine,
					Ranges:          ranges,
				}
				// Best effort; a failed write never fails the fold.
				_ = opts.Cache.Put(key, &put)
			}

			emit(events, Event{File: path, Stage: StageFold, Status: StatusDone})
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return fileSet, results, err
	}

	return fileSet, results, nil
}
