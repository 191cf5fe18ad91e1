// Package parallelism sizes the concurrent work of a build.
package parallelism

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
)

const (
	NumProcessorsEnvVar = "STITCH_NUM_PROCESSORS"

	GoMaxProcsEnvVar = "GOMAXPROCS"
)

// Limit returns the number of workers to use: STITCH_NUM_PROCESSORS when
// set, the CPU count otherwise.
func Limit() (int, error) {
	strFromEnv := strings.TrimSpace(os.Getenv(NumProcessorsEnvVar))
	if strFromEnv == "" {
		return runtime.NumCPU(), nil
	}
	n, err := strconv.Atoi(strFromEnv)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", NumProcessorsEnvVar, strFromEnv)
	}
	return n, nil
}

// Apply records the worker count in envMap so the commands of a build size
// themselves the same way.
func Apply(envMap map[string]string) error {
	n, err := Limit()
	if err != nil {
		return err
	}

	newValStr := strconv.Itoa(n)
	envMap[NumProcessorsEnvVar] = newValStr
	envMap[GoMaxProcsEnvVar] = newValStr

	return nil
}
