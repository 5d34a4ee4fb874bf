package service

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
)

const lockFile = "todone.lock"

// Lock is an exclusive advisory lock on the data directory. Every command
// that loads, mutates and saves a task holds it for the whole cycle.
type Lock struct {
	file *os.File
}

// AcquireLock creates and locks <dir>/locks/todone.lock, blocking until the
// lock is free.
func AcquireLock(dir string) (*Lock, error) {
	file, err := openLockFile(dir)
	if err != nil {
		return nil, err
	}
	if err := syscall.Flock(int(file.Fd()), syscall.LOCK_EX); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("lock %s: %w", lockFile, err)
	}
	return &Lock{file: file}, nil
}

// TryAcquireLock attempts to acquire the lock without blocking. It reports
// false when another process holds it.
func TryAcquireLock(dir string) (*Lock, bool, error) {
	file, err := openLockFile(dir)
	if err != nil {
		return nil, false, err
	}
	if err := syscall.Flock(int(file.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		_ = file.Close()
		if errors.Is(err, syscall.EWOULDBLOCK) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("lock %s: %w", lockFile, err)
	}
	return &Lock{file: file}, true, nil
}

func openLockFile(dir string) (*os.File, error) {
	locksDir := filepath.Join(dir, "locks")
	if err := os.MkdirAll(locksDir, 0o755); err != nil {
		return nil, fmt.Errorf("create locks dir: %w", err)
	}
	file, err := os.OpenFile(filepath.Join(locksDir, lockFile), os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}
	return file, nil
}

// Release releases the lock.
func (l *Lock) Release() error {
	if l == nil || l.file == nil {
		return nil
	}
	if err := syscall.Flock(int(l.file.Fd()), syscall.LOCK_UN); err != nil {
		_ = l.file.Close()
		return err
	}
	return l.file.Close()
}
