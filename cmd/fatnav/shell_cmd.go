package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aligator/fatnav"
	"github.com/aligator/fatnav/logger"
	"github.com/spf13/cobra"
)

// createShellCommand creates the interactive shell subcommand
func createShellCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "shell [IMAGE]",
		Short: "Browses the image interactively",
		Long: `Shell opens the image and reads commands from stdin:

  ls [PATH]   list the current directory or PATH
  cd PATH     change the current directory and list it
  cat PATH    print a file
  pwd         print the current directory
  info        show the volume summary
  help        show this help
  exit        leave the shell

The image defaults to the "image" key of the configuration file.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			imagePath := cfg.Image
			if len(args) == 1 {
				imagePath = args[0]
			}
			if imagePath == "" {
				return errors.New("no image given and no image configured")
			}

			fs, img, err := openVolume(imagePath)
			if err != nil {
				return err
			}
			defer img.Close()

			sh := newShell(fs, cmd.InOrStdin(), cmd.OutOrStdout(), cfg.Shell.Prompt)
			if cfg.ShowBanner() {
				sh.banner()
			}
			return sh.run()
		},
	}
}

const shellHelp = `ls [PATH]   list the current directory or PATH
cd PATH     change the current directory and list it
cat PATH    print a file
pwd         print the current directory
info        show the volume summary
help        show this help
exit        leave the shell
`

// shell is the command loop over one mounted volume. The working directory
// only changes when a cd succeeds.
type shell struct {
	fs      *fatnav.Fs
	in      *bufio.Scanner
	out     io.Writer
	prompt  string
	cwd     uint32
	cwdPath string
}

func newShell(fs *fatnav.Fs, in io.Reader, out io.Writer, prompt string) *shell {
	return &shell{
		fs:      fs,
		in:      bufio.NewScanner(in),
		out:     out,
		prompt:  prompt,
		cwd:     fs.RootCluster(),
		cwdPath: "/",
	}
}

func (s *shell) banner() {
	info := s.fs.Info()
	fmt.Fprintf(s.out, "Volume %s (%s), %d byte clusters\n", info.Label, info.FileSystemType, info.ClusterSize)
	fmt.Fprintln(s.out, "Type help for a list of commands.")
}

func (s *shell) run() error {
	for {
		fmt.Fprint(s.out, s.prompt)
		if !s.in.Scan() {
			fmt.Fprintln(s.out)
			return s.in.Err()
		}
		if quit := s.exec(s.in.Text()); quit {
			return nil
		}
	}
}

// exec runs one command line and reports whether the shell should quit.
func (s *shell) exec(line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	arg := ""
	if len(fields) > 1 {
		arg = fields[1]
	}

	var err error
	switch fields[0] {
	case "ls":
		if arg == "" {
			err = s.fs.List(s.out, s.cwd, s.cwdPath)
		} else {
			_, err = s.fs.ChangeDirectory(s.out, s.cwd, arg)
		}
	case "cd":
		var cluster uint32
		cluster, err = s.fs.ChangeDirectory(s.out, s.cwd, arg)
		if err == nil {
			s.cwd = cluster
			s.cwdPath = joinPath(s.cwdPath, arg)
		}
	case "cat":
		err = s.fs.ReadFile(s.out, s.cwd, arg)
		if err == nil {
			fmt.Fprintln(s.out)
		}
	case "pwd":
		fmt.Fprintln(s.out, s.cwdPath)
	case "info":
		printInfo(s.out, s.fs.Info())
	case "help":
		fmt.Fprint(s.out, shellHelp)
	case "exit", "quit":
		return true
	default:
		fmt.Fprintf(s.out, "unknown command %q, type help for a list of commands\n", fields[0])
	}

	if err != nil {
		logger.Logger().Debugf("%s %s: %v", fields[0], arg, err)
		fmt.Fprintln(s.out, "not found")
	}
	return false
}

// joinPath applies a cd argument to the displayed working directory.
func joinPath(cwd, p string) string {
	if p == "" {
		return cwd
	}
	p = strings.ToLower(p)
	if strings.HasPrefix(p, "/") {
		return path.Clean(p)
	}
	return path.Clean(cwd + "/" + p)
}
