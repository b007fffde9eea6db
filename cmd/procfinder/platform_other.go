//go:build !linux

package main

import (
	"errors"
)

func checkHost(root string) error {
	return errors.New("procfinder is intended to only be run on Linux with a procfs")
}
