package cmd

import (
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"syscall"

	"github.com/etnz/sitebook/config"
)

// Environment passed to extensions, so that they work on the same document.
const (
	EnvStorage = "SITEBOOK_STORAGE"
	EnvPath    = "SITEBOOK_PATH"
	EnvKey     = "SITEBOOK_KEY"
)

// ExtensionPrefix prefixes the name of the external sb-<subcommand> binaries.
const ExtensionPrefix = "sb-"

// RunExtension attempts to find and execute an external sb-<subcommand> binary.
// It returns (true, exitCode) if an extension was found and executed,
// and (false, 0) if no extension was found.
func RunExtension(subcommand string, args []string) (bool, int) {
	name := ExtensionPrefix + subcommand

	lp, err := exec.LookPath(name)
	if err != nil {
		log.Printf("External command %q not found in PATH: %v", name, err)
		return false, 0
	}

	cmd := exec.Command(lp, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = append(os.Environ(), extensionEnv()...)

	if err := cmd.Run(); err != nil {
		var exitError *exec.ExitError
		if errors.As(err, &exitError) {
			if status, ok := exitError.Sys().(syscall.WaitStatus); ok {
				return true, status.ExitStatus()
			}
		}
		fmt.Fprintf(os.Stderr, "Error executing external command %q: %v\n", name, err)
		return true, 1
	}
	return true, 0
}

// extensionEnv resolves the global flags into environment variables.
func extensionEnv() []string {
	env := []string{
		EnvStorage + "=" + *storageFlag,
		EnvKey + "=" + *keyFlag,
	}
	c := cfg
	c.Storage, c.Path = *storageFlag, *pathFlag
	if c.Storage != config.Memory {
		if path, err := c.StoragePath(); err == nil {
			env = append(env, EnvPath+"="+path)
		}
	}
	return env
}
