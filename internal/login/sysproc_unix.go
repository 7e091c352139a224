//go:build !windows

package login

import "syscall"

// detachedSysProcAttr puts the login flow in a new session so it outlives us.
func detachedSysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{
		Setsid: true,
	}
}
