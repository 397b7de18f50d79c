package listener

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/chzyer/readline"
)

// ErrClosed is returned by the readers once the user pressed Ctrl+C or Ctrl+D.
var ErrClosed = errors.New("input closed")

const clearSeq = "\033[H\033[2J"

var rl *readline.Instance
var mu sync.Mutex

func Init() error {
	var err error
	rl, err = readline.NewEx(&readline.Config{
		Prompt:          "> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "",
		// Typed missions and names must never be recalled by the next player.
		DisableAutoSaveHistory: true,
	})
	return err
}

func Close() {
	if rl != nil {
		_ = rl.Close()
	}
}

// ReadLine shows prompt and returns the trimmed line.
func ReadLine(prompt string) (string, error) {
	mu.Lock()
	old := rl.Config.Prompt
	rl.SetPrompt(prompt)
	mu.Unlock()

	line, err := rl.Readline()

	mu.Lock()
	rl.SetPrompt(old)
	mu.Unlock()

	if err != nil {
		return "", closedErr(err)
	}
	return strings.TrimSpace(line), nil
}

// ReadSecret reads a line without echoing it.
func ReadSecret(prompt string) (string, error) {
	b, err := rl.ReadPassword(prompt)
	if err != nil {
		return "", closedErr(err)
	}
	return strings.TrimSpace(string(b)), nil
}

func AsyncPrintln(s string) {
	mu.Lock()
	defer mu.Unlock()
	if rl == nil {
		fmt.Println(s)
		return
	}
	_, _ = rl.Write([]byte(s + "\r\n"))
	rl.Refresh()
}

// ClearScreen wipes the terminal so the previous player's screen is gone.
func ClearScreen() {
	mu.Lock()
	defer mu.Unlock()
	if rl == nil {
		fmt.Print(clearSeq)
		return
	}
	_, _ = rl.Write([]byte(clearSeq))
}

func closedErr(err error) error {
	if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
		return ErrClosed
	}
	return err
}

// Terminal exposes the package-level readline session as a value.
type Terminal struct{}

func (Terminal) ReadLine(prompt string) (string, error) { return ReadLine(prompt) }

func (Terminal) ReadSecret(prompt string) (string, error) { return ReadSecret(prompt) }

func (Terminal) Println(s string) { AsyncPrintln(s) }

func (Terminal) Clear() { ClearScreen() }
