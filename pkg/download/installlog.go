package download

import (
	"bufio"
	"os"
	"strings"
	"time"
)

// InstallLog is the append-only record of successful installs, one line
// per event: "ISO8601-timestamp | dependencyName | sourceUrl". It is the
// only durable state the resolver produces.
type InstallLog struct {
	Path string
}

// Entry is one parsed install-log line.
type Entry struct {
	Timestamp time.Time `json:"timestamp"`
	Name      string    `json:"name"`
	SourceURL string    `json:"source_url"`
}

// Append records a successful install of name from sourceURL.
func (l *InstallLog) Append(name, sourceURL string) error {
	f, err := os.OpenFile(l.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	line := time.Now().UTC().Format(time.RFC3339) + " | " + name + " | " + sourceURL + "\n"
	_, err = f.WriteString(line)
	return err
}

// Entries reads the log back. Malformed lines are skipped; a missing log
// file yields an empty slice.
func (l *InstallLog) Entries() ([]Entry, error) {
	f, err := os.Open(l.Path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		parts := strings.SplitN(scanner.Text(), " | ", 3)
		if len(parts) != 3 {
			continue
		}
		ts, err := time.Parse(time.RFC3339, strings.TrimSpace(parts[0]))
		if err != nil {
			continue
		}
		entries = append(entries, Entry{
			Timestamp: ts,
			Name:      strings.TrimSpace(parts[1]),
			SourceURL: strings.TrimSpace(parts[2]),
		})
	}
	return entries, scanner.Err()
}
