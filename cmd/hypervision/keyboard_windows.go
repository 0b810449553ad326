//go:build windows
// +build windows

package main

import "os"

// listenForKeyboard reads keys from stdin. Windows consoles stay in line
// mode, so each key needs Enter.
func listenForKeyboard(c *console) {
	buf := make([]byte, 1)
	for {
		n, err := os.Stdin.Read(buf)
		if err != nil || n == 0 {
			continue
		}
		if buf[0] == '\r' || buf[0] == '\n' {
			continue
		}
		if !c.handleKey(buf[0]) {
			return
		}
	}
}
