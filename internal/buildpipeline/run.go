// Package buildpipeline orchestrates the compilation process: it loads
// interchange trees, runs the injection pass over each file in parallel, and
// emits the transformed trees.
package buildpipeline

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"shimmer/internal/ast"
	"shimmer/internal/diag"
	"shimmer/internal/driver"
	"shimmer/internal/polyfill"
	"shimmer/internal/source"
	runtimelib "shimmer/runtime"
)

// Request configures one pipeline run over a set of input files.
type Request struct {
	// Paths are explicit input files; when empty, Dir is walked for *.json
	// inputs instead.
	Paths []string
	Dir   string

	Options   driver.Options
	Catalog   *polyfill.Catalog
	Libraries *runtimelib.Registry

	// Write emits each transformed tree next to its input, with OutSuffix
	// replacing the .json extension.
	Write     bool
	OutSuffix string

	Jobs     int
	Progress ProgressSink
}

const defaultOutSuffix = ".out.json"

// FileResult is the per-file outcome of one run.
type FileResult struct {
	*driver.Result
	// OutPath is where the transformed tree was written, empty when emit
	// was skipped or failed.
	OutPath string
}

// RunResult aggregates the whole pipeline run.
type RunResult struct {
	FileSet *source.FileSet
	Files   []FileResult
	Timings Timings
}

// HasErrors reports whether any file collected an error diagnostic.
func (r *RunResult) HasErrors() bool {
	for i := range r.Files {
		if r.Files[i].Bag != nil && r.Files[i].Bag.HasErrors() {
			return true
		}
	}
	return false
}

// Run executes the pipeline: files load serially into one FileSet, the
// injection pass fans out across workers, and emit runs serially so output
// order is deterministic. Input problems land in the per-file diagnostic
// bags; a non-nil error means the run itself broke (cancellation, listing).
func Run(ctx context.Context, req *Request) (*RunResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if req == nil {
		return nil, fmt.Errorf("missing pipeline request")
	}
	if req.Catalog == nil || req.Libraries == nil {
		return nil, fmt.Errorf("pipeline request missing catalog or libraries")
	}

	paths := req.Paths
	if len(paths) == 0 && req.Dir != "" {
		listed, err := ListInputs(req.Dir)
		if err != nil {
			return nil, err
		}
		paths = listed
	}

	result := &RunResult{
		FileSet: source.NewFileSetWithBase(req.Dir),
		Files:   make([]FileResult, len(paths)),
	}
	emitQueued(req.Progress, paths)

	// Load serially: FileSet is not safe for concurrent mutation.
	loadStart := time.Now()
	fileIDs := make(map[string]source.FileID, len(paths))
	loadErrors := make(map[string]error, len(paths))
	for _, path := range paths {
		emitFile(req.Progress, path, StageLoad, StatusWorking, nil)
		id, err := result.FileSet.Load(path)
		if err != nil {
			loadErrors[path] = err
			emitFile(req.Progress, path, StageLoad, StatusError, err)
			continue
		}
		fileIDs[path] = id
		emitFile(req.Progress, path, StageLoad, StatusDone, nil)
	}
	result.Timings.Set(StageLoad, time.Since(loadStart))

	jobs := req.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	injectStart := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	if len(paths) > 0 {
		g.SetLimit(min(jobs, len(paths)))
	}

	// Result indexes are unique per goroutine, so no mutex is needed.
	for i, path := range paths {
		g.Go(func(i int, path string) func() error {
			return func() error {
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}

				emitFile(req.Progress, path, StageInject, StatusWorking, nil)
				res := &driver.Result{
					Path: path,
					Bag:  diag.NewBag(req.Options.DiagnosticsCap()),
				}
				result.Files[i] = FileResult{Result: res}

				if loadErr, failed := loadErrors[path]; failed {
					res.Bag.Add(diag.NewError(diag.IOLoadFileError, source.Span{},
						fmt.Sprintf("load %s: %v", path, loadErr)))
					emitFile(req.Progress, path, StageInject, StatusError, loadErr)
					return nil
				}

				id := fileIDs[path]
				res.FileID = id
				root, err := ast.Decode(bytes.NewReader(result.FileSet.Get(id).Content), id)
				if err != nil {
					res.Bag.Add(diag.NewError(diag.ASTDecodeError, source.Span{File: id},
						fmt.Sprintf("%s: %v", path, err)))
					emitFile(req.Progress, path, StageInject, StatusError, err)
					return nil
				}

				if err := driver.CompileTree(res, root, req.Catalog, req.Libraries, req.Options); err != nil {
					emitFile(req.Progress, path, StageInject, StatusError, err)
					return err
				}
				res.Bag.Sort()
				emitFile(req.Progress, path, StageInject, StatusDone, nil)
				return nil
			}
		}(i, path))
	}
	if err := g.Wait(); err != nil {
		return result, err
	}
	result.Timings.Set(StageInject, time.Since(injectStart))

	if req.Write {
		emitStart := time.Now()
		for i := range result.Files {
			fr := &result.Files[i]
			if fr.Root == nil {
				continue
			}
			emitFile(req.Progress, fr.Path, StageEmit, StatusWorking, nil)
			out := outPathFor(fr.Path, req.OutSuffix)
			if err := writeTree(out, fr.Root); err != nil {
				fr.Bag.Add(diag.NewError(diag.IOWriteFileError, source.Span{File: fr.FileID},
					fmt.Sprintf("write %s: %v", out, err)))
				emitFile(req.Progress, fr.Path, StageEmit, StatusError, err)
				continue
			}
			fr.OutPath = out
			emitFile(req.Progress, fr.Path, StageEmit, StatusDone, nil)
		}
		result.Timings.Set(StageEmit, time.Since(emitStart))
	}

	return result, nil
}

// ListInputs returns every *.json file under dir, sorted for a
// deterministic processing order. Previously emitted outputs are skipped.
func ListInputs(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, ".json") && !strings.HasSuffix(path, defaultOutSuffix) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

func outPathFor(path, suffix string) string {
	if suffix == "" {
		suffix = defaultOutSuffix
	}
	return strings.TrimSuffix(path, ".json") + suffix
}

func writeTree(path string, root *ast.Node) error {
	var buf bytes.Buffer
	if err := ast.Encode(&buf, root); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o600)
}

func emitQueued(sink ProgressSink, files []string) {
	if sink == nil {
		return
	}
	for _, file := range files {
		sink.OnEvent(Event{File: file, Stage: StageLoad, Status: StatusQueued})
	}
}

func emitFile(sink ProgressSink, file string, stage Stage, status Status, err error) {
	if sink == nil {
		return
	}
	sink.OnEvent(Event{File: file, Stage: stage, Status: status, Err: err})
}
