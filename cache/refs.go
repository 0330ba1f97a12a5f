package cache

import (
	"context"
	"strings"

	"github.com/FamousArchives/famous-git-cache/errors"
	"github.com/FamousArchives/famous-git-cache/exec"
)

// ParseRefTable parses "git show-ref" output. Each line is "<commit> <ref>";
// lines that do not split into exactly two fields are skipped and the last
// occurrence of a duplicate ref wins.
func ParseRefTable(output string) RefTable {
	table := make(RefTable)
	for _, line := range strings.Split(output, "\n") {
		fields := strings.Fields(line)
		if len(fields) != 2 {
			continue
		}
		table[fields[1]] = fields[0]
	}
	return table
}

// readRefs dumps the ref table of a mirror. Must run inside a mirror queue task.
func readRefs(ctx context.Context, git *gitRunner, mirrorPath string) (RefTable, error) {
	result, err := git.run(ctx, mirrorPath, "show-ref")
	if err != nil {
		// show-ref exits 1 without output when the repository has no refs.
		var execErr *exec.ExecError
		if errors.As(err, &execErr) && execErr.ExitCode == 1 &&
			strings.TrimSpace(execErr.Stdout) == "" && strings.TrimSpace(execErr.Stderr) == "" {
			return RefTable{}, nil
		}
		return nil, stepError(err, errors.CodeListRefsFailed, stepListRefs, "failed to list refs")
	}
	return ParseRefTable(result.Stdout), nil
}
