package dataset

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ShardFiles lists the <prefix>-*.json files of dir, ordered by the shard's
// start index when the name carries one and by name otherwise.
func ShardFiles(dir, prefix string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(dir, prefix+"-*.json"))
	if err != nil {
		return nil, fmt.Errorf("glob shards: %w", err)
	}

	sort.SliceStable(files, func(i, j int) bool {
		si, oki := shardStart(files[i], prefix)
		sj, okj := shardStart(files[j], prefix)
		if oki && okj && si != sj {
			return si < sj
		}
		if oki != okj {
			return oki
		}
		return files[i] < files[j]
	})
	return files, nil
}

var shardName = regexp.MustCompile(`^(\d+)-(\d+)\.json$`)

func shardStart(path, prefix string) (int, bool) {
	rest := strings.TrimPrefix(filepath.Base(path), prefix+"-")
	m := shardName.FindStringSubmatch(rest)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// MergeOptions controls MergeShards
type MergeOptions struct {
	Dir         string // Directory holding the shard files
	OutDir      string // Directory receiving <prefix>.json
	Prefix      string
	Concurrency int
	Logger      *zap.Logger
}

// MergeShards concatenates every shard of opts.Prefix into
// <OutDir>/<Prefix>.json. Shards are read concurrently and written in
// ShardFiles order. It returns the output path and the number of elements.
func MergeShards[T Record](ctx context.Context, opts MergeOptions) (string, int, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Prefix == "" {
		return "", 0, fmt.Errorf("prefix is required")
	}
	outDir := opts.OutDir
	if outDir == "" {
		outDir = opts.Dir
	}

	files, err := ShardFiles(opts.Dir, opts.Prefix)
	if err != nil {
		return "", 0, err
	}
	if len(files) == 0 {
		return "", 0, fmt.Errorf("no %s-*.json shards in %s", opts.Prefix, opts.Dir)
	}

	slots := make([][]T, len(files))
	g, gctx := errgroup.WithContext(ctx)
	if opts.Concurrency > 0 {
		g.SetLimit(opts.Concurrency)
	}
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data, err := ReadFile[T](path)
			if err != nil {
				return err
			}
			slots[i] = data
			logger.Debug("Read shard", zap.String("path", path), zap.Int("examples", len(data)))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", 0, err
	}

	var merged []T
	for _, s := range slots {
		merged = append(merged, s...)
	}

	out := filepath.Join(outDir, opts.Prefix+".json")
	if err := WriteFile(out, merged); err != nil {
		return "", 0, err
	}
	logger.Info("Merged shards",
		zap.Int("shards", len(files)),
		zap.Int("examples", len(merged)),
		zap.String("out", out))
	return out, len(merged), nil
}
