package ics

import (
	"errors"
	"fmt"
	"os"
	"strings"

	ical "github.com/arran4/golang-ical"

	appLog "frisangecal/internal/log"
)

// ErrWrite wraps failures writing the output file.
var ErrWrite = errors.New("write calendar failed")

const extension = ".ics"

// OutputPath appends ".ics" unless name already ends with it, in any case.
func OutputPath(name string) string {
	if strings.HasSuffix(strings.ToLower(name), extension) {
		return name
	}
	return name + extension
}

// Serialize renders cal in its wire format.
func Serialize(cal *ical.Calendar) []byte {
	return []byte(cal.Serialize())
}

// WriteFile writes cal to name (see OutputPath) and returns the path
// actually written.
func WriteFile(cal *ical.Calendar, name string) (string, error) {
	path := OutputPath(name)
	if path != name {
		appLog.Info("added .ics extension to output filename", "path", path)
	}

	if err := os.WriteFile(path, Serialize(cal), 0o644); err != nil {
		return "", fmt.Errorf("%w: %v", ErrWrite, err)
	}
	return path, nil
}
