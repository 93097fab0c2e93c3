// Package gitlog shells out to git for a short commit history. Failures
// never fail a generation run: the caller omits the section instead.
package gitlog

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/kurtatter/cmforai/internal/logger"
)

var log = logger.ForComponent("gitlog")

const DefaultTimeout = 5 * time.Second

// Recent returns the last n commits as one-line entries, or an empty
// string when the directory is not a repository, git is missing, or the
// command exceeds the timeout.
func Recent(ctx context.Context, dir string, n int) string {
	if n <= 0 {
		return ""
	}

	ctx, cancel := context.WithTimeout(ctx, DefaultTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", "log",
		fmt.Sprintf("-%d", n),
		"--no-color",
		"--pretty=format:%h %ad %an: %s",
		"--date=short",
	)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		log.Debug("git log unavailable", "dir", dir, "error", err, "stderr", strings.TrimSpace(stderr.String()))
		return ""
	}

	return stdout.String()
}
