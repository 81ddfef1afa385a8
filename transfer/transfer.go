// Copyright © 2026 Genome Research Limited
//
//  This file is part of altocumulus.
//
//  altocumulus is free software: you can redistribute it and/or modify
//  it under the terms of the GNU Lesser General Public License as published by
//  the Free Software Foundation, either version 3 of the License, or
//  (at your option) any later version.
//
//  altocumulus is distributed in the hope that it will be useful,
//  but WITHOUT ANY WARRANTY; without even the implied warranty of
//  MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
//  GNU Lesser General Public License for more details.
//
//  You should have received a copy of the GNU Lesser General Public License
//  along with altocumulus. If not, see <http://www.gnu.org/licenses/>.

package transfer

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/inconshreveable/log15"
)

const (
	// BackendGCP selects Google Cloud Storage, with gs:// URLs.
	BackendGCP = "gcp"

	// BackendAWS selects Amazon S3, with s3:// URLs.
	BackendAWS = "aws"

	// DefaultCommand is the blob transfer tool used when none is configured.
	DefaultCommand = "strato"

	subCopy = "cp"
	subSync = "sync"
)

// DefaultFlags are placed after the subcommand when Config.Flags is nil.
var DefaultFlags = []string{"--ionice"}

// Transferer moves local files and directories to object storage.
type Transferer interface {
	// Copy copies one or more local files to dest. When given more than one
	// source, dest is treated as a directory and should end in "/".
	Copy(ctx context.Context, sources []string, dest string) error

	// Sync recursively synchronises the local directory source with dest.
	Sync(ctx context.Context, source, dest string) error
}

// Scheme returns the URL scheme ("gs" or "s3") for the given backend.
func Scheme(backend string) (string, error) {
	switch backend {
	case BackendGCP:
		return "gs", nil
	case BackendAWS:
		return "s3", nil
	}
	return "", Error{Op: "Scheme", Cmd: backend, Err: ErrBadBackend}
}

// BackendForURL returns the backend whose scheme prefixes the given URL, or
// the empty string if the URL is not a cloud URL.
func BackendForURL(url string) string {
	switch {
	case strings.HasPrefix(url, "gs://"):
		return BackendGCP
	case strings.HasPrefix(url, "s3://"):
		return BackendAWS
	}
	return ""
}

// IsCloudURL tells you if the given string is a gs:// or s3:// URL.
func IsCloudURL(s string) bool {
	return BackendForURL(s) != ""
}

// Config describes how a Tool should invoke the blob transfer tool.
type Config struct {
	// Command is the argv prefix of the tool; defaults to DefaultCommand.
	Command []string

	// Flags are placed right after the subcommand; defaults to DefaultFlags.
	Flags []string

	// Backend is BackendGCP or BackendAWS.
	Backend string

	// Profile, if set, is passed on as --profile, for AWS credentials.
	Profile string

	// DryRun logs command lines without executing them.
	DryRun bool

	// Verbose logs command lines at Info instead of Debug, and lets the tool
	// write its progress to STDERR (STDOUT is left for our own output).
	Verbose bool
}

// Tool is a Transferer that shells out to the blob transfer tool.
type Tool struct {
	command []string
	flags   []string
	backend string
	profile string
	dryRun  bool
	verbose bool
	logger  log15.Logger
	output  io.Writer
}

// New creates a Tool. A nil logger discards log messages.
func New(config Config, logger log15.Logger) (*Tool, error) {
	if _, err := Scheme(config.Backend); err != nil {
		return nil, Error{Op: "New", Cmd: config.Backend, Err: ErrBadBackend}
	}

	command := config.Command
	if len(command) == 0 {
		command = []string{DefaultCommand}
	}
	if command[0] == "" {
		return nil, Error{Op: "New", Err: ErrNoCommand}
	}

	flags := config.Flags
	if flags == nil {
		flags = DefaultFlags
	}

	if logger == nil {
		logger = log15.New()
		logger.SetHandler(log15.DiscardHandler())
	}

	return &Tool{
		command: command,
		flags:   flags,
		backend: config.Backend,
		profile: config.Profile,
		dryRun:  config.DryRun,
		verbose: config.Verbose,
		logger:  logger.New("backend", config.Backend),
		output:  os.Stderr,
	}, nil
}

// Copy implements Transferer.
func (t *Tool) Copy(ctx context.Context, sources []string, dest string) error {
	return t.run(ctx, "Copy", t.copyArgs(sources, dest))
}

// Sync implements Transferer.
func (t *Tool) Sync(ctx context.Context, source, dest string) error {
	return t.run(ctx, "Sync", t.syncArgs(source, dest))
}

// DryRun tells you if this Tool only logs its command lines.
func (t *Tool) DryRun() bool {
	return t.dryRun
}

func (t *Tool) copyArgs(sources []string, dest string) []string {
	args := t.baseArgs(subCopy)
	if len(sources) > 1 {
		args = append(args, "-m")
	}
	args = append(args, "--quiet")
	args = append(args, sources...)
	args = append(args, dest)
	return t.withProfile(args)
}

func (t *Tool) syncArgs(source, dest string) []string {
	args := t.baseArgs(subSync)
	args = append(args, "-m", "--quiet", source, dest)
	return t.withProfile(args)
}

func (t *Tool) baseArgs(sub string) []string {
	args := make([]string, 0, len(t.command)+len(t.flags)+8)
	args = append(args, t.command...)
	args = append(args, sub, "--backend", t.backend)
	return append(args, t.flags...)
}

func (t *Tool) withProfile(args []string) []string {
	if t.profile != "" {
		args = append(args, "--profile", t.profile)
	}
	return args
}

// run logs and, unless in dry run mode, executes the given command line,
// blocking until it exits.
func (t *Tool) run(ctx context.Context, op string, args []string) error {
	line := strings.Join(args, " ")
	if t.verbose {
		t.logger.Info("transfer", "cmd", line, "dryrun", t.dryRun)
	} else {
		t.logger.Debug("transfer", "cmd", line, "dryrun", t.dryRun)
	}

	if t.dryRun {
		return nil
	}

	cmd := exec.CommandContext(ctx, args[0], args[1:]...) // #nosec
	if t.verbose {
		cmd.Stdout = t.output
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return Error{Op: op, Cmd: line, Err: ErrFailed, Stderr: lastLine(stderr.String()), cause: err}
	}
	return nil
}

// lastLine returns the final non-blank line of s.
func lastLine(s string) string {
	s = strings.TrimRight(s, "\n\r\t ")
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[i+1:])
	}
	return strings.TrimSpace(s)
}
