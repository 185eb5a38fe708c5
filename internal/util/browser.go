package util

import (
	"errors"
	"os/exec"
	"runtime"
)

// browserCommands 按平台列出可尝试的打开方式（依次降级）
func browserCommands(goos, url string) [][]string {
	switch goos {
	case "windows":
		// rundll32 在 Windows 7 上比 cmd /c start 稳定
		return [][]string{
			{"rundll32", "url.dll,FileProtocolHandler", url},
			{"explorer", url},
		}
	case "darwin":
		return [][]string{{"open", url}}
	default:
		return [][]string{
			{"xdg-open", url},
			{"sensible-browser", url},
			{"google-chrome", url},
			{"firefox", url},
		}
	}
}

var startCommand = func(name string, args ...string) error {
	return exec.Command(name, args...).Start()
}

// OpenBrowser 用默认浏览器打开 url，主要方式失败时尝试备选方式
func OpenBrowser(url string) error {
	var errs []error
	for _, cmd := range browserCommands(runtime.GOOS, url) {
		err := startCommand(cmd[0], cmd[1:]...)
		if err == nil {
			return nil
		}
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
