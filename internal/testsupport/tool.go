package testsupport

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// SevenZipCopyScript returns a stub body that behaves like a successful
// "7z a" call by copying payload to the output archive argument and
// recording its arguments in argsLog.
func SevenZipCopyScript(payload, argsLog string) string {
	var b strings.Builder
	if argsLog != "" {
		b.WriteString("printf '%s\\n' \"$@\" > " + shellQuote(argsLog) + "\n")
	}
	b.WriteString("cp " + shellQuote(payload) + " \"$5\" || exit 2\n")
	b.WriteString("exit 0\n")
	return b.String()
}

// SevenZipFailScript returns a stub body that prints to stderr and exits
// with status 2, like 7-Zip's fatal error code.
func SevenZipFailScript() string {
	return "echo 'ERROR: stub failure' >&2\nexit 2\n"
}

// WriteStubTool writes an executable shell script named name into dir and
// returns its path.
func WriteStubTool(t testing.TB, dir, name, body string) string {
	t.Helper()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	path := filepath.Join(dir, name)
	script := "#!/bin/sh\n" + body
	if !strings.HasSuffix(script, "\n") {
		script += "\n"
	}
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub %s: %v", name, err)
	}
	return path
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// CallLogScript returns a stub prefix that appends each invocation's
// arguments, space-joined, as one line of callsLog.
func CallLogScript(callsLog string) string {
	return "printf '%s\\n' \"$*\" >> " + shellQuote(callsLog) + "\n"
}

// CreateCalls returns the logged invocations that were 7-Zip "a" commands.
// Bare discovery runs log empty lines and are skipped.
func CreateCalls(t testing.TB, callsLog string) []string {
	t.Helper()
	data, err := os.ReadFile(callsLog)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		t.Fatalf("read %s: %v", callsLog, err)
	}
	var calls []string
	for _, line := range strings.Split(string(data), "\n") {
		if strings.HasPrefix(line, "a ") {
			calls = append(calls, line)
		}
	}
	return calls
}
