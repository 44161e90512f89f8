package installer

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	pkgerrors "github.com/glorpus-work/frate/pkg/errors"
	"github.com/glorpus-work/frate/pkg/platform"
)

const (
	rankNameMatch = 0
	rankOther     = 10
)

// LocateExecutable picks the main executable of a tool extracted into dir.
// Candidates are regular files the adapter considers executable. Files whose
// lowercased stem matches the tool name at a word boundary win; ties go to
// the lexicographically smallest path. This is a heuristic: archives with
// several name-matching binaries may pick the wrong one.
func LocateExecutable(dir, name string, adapter platform.Adapter) (string, error) {
	if adapter == nil {
		adapter = platform.Current()
	}

	var candidates []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if adapter.IsExecutable(path, info) {
			candidates = append(candidates, path)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s: %w", pkgerrors.ErrBinaryNotFound, dir, err)
		}
		return "", pkgerrors.NewFileOperationError("walk", dir, err)
	}
	if len(candidates) == 0 {
		return "", fmt.Errorf("%w: %s", pkgerrors.ErrBinaryNotFound, dir)
	}

	re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(name) + `.*`)
	rank := func(path string) int {
		if re.MatchString(strings.ToLower(ShimStem(path))) {
			return rankNameMatch
		}
		return rankOther
	}
	sort.SliceStable(candidates, func(a, b int) bool {
		ra, rb := rank(candidates[a]), rank(candidates[b])
		if ra != rb {
			return ra < rb
		}
		return candidates[a] < candidates[b]
	})
	return candidates[0], nil
}

// ShimStem is the shim name for an executable: its file name without the
// last extension.
func ShimStem(path string) string {
	base := filepath.Base(path)
	if stem := strings.TrimSuffix(base, filepath.Ext(base)); stem != "" {
		return stem
	}
	return base
}
