package config

import "time"

// NewGeminiForTest creates a Gemini config for testing purposes
func NewGeminiForTest(projectID, location string) *Gemini {
	return &Gemini{
		projectID: projectID,
		location:  location,
	}
}

func NewLoggerForTest(level, format, output string) *Logger {
	return &Logger{level: level, format: format, output: output}
}

func NewStorageForTest(backend, root, index string) *Storage {
	return &Storage{backend: backend, root: root, index: index}
}

func NewBackendForTest(kind, url string, timeout time.Duration) *Backend {
	return &Backend{kind: kind, url: url, timeout: timeout}
}

func NewPolicyForTest(file string) *Policy {
	return &Policy{file: file}
}

func NewAccessForTest(mode, header, owner string) *Access {
	return &Access{mode: mode, header: header, owner: owner}
}
