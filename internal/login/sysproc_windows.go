//go:build windows

package login

import "syscall"

// detachedSysProcAttr returns process attributes for a detached login on Windows.
func detachedSysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{}
}
