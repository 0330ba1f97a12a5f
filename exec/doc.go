// Package exec runs external commands behind a small, mockable interface.
//
// Command wraps os/exec. Every With* method returns a new Executor and never
// mutates the receiver, so a single configured Command can be shared by
// goroutines that each derive their own per-call settings.
//
// # Basic Usage
//
//	cmd := exec.New(exec.WithInheritEnv())
//	result, err := cmd.WithDir("/tmp").Run("git", "--version")
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(result.Stdout)
//
// # Command Wrappers
//
// A wrapper prepends a fixed executable name to every Run call:
//
//	git := exec.NewWrapper(exec.New(), "git")
//	result, err := git.WithDir(mirrorPath).Run("remote", "update", "--prune")
//
// # Executable Resolution
//
// The executable is looked up by name on every Run, so a tool installed after
// the process started is picked up. A failed lookup returns an *ExecError whose
// cause is ErrExecutableNotFound:
//
//	if errors.Is(err, exec.ErrExecutableNotFound) {
//		// git is not installed
//	}
//
// # Errors
//
// A non-zero exit returns both the Result and an *ExecError carrying the exit
// code, argument vector, working directory and captured output. A command that
// exceeded its WithTimeout limit reports TimedOut.
package exec
