package pdf

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// leadIDPattern keeps artifact lookups from escaping the storage directory.
var leadIDPattern = regexp.MustCompile(`^[A-Za-z0-9-]+$`)

// Store keeps rendered PDF artifacts on the local filesystem and maps lead
// IDs to their public URLs.
type Store struct {
	dir     string
	baseURL string
}

func NewStore(dir, baseURL string) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("pdf directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating pdf directory: %w", err)
	}
	return &Store{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// ValidLeadID reports whether a lead ID is safe to use as a file name.
func ValidLeadID(leadID string) bool {
	return leadID != "" && leadIDPattern.MatchString(leadID)
}

func (s *Store) Path(leadID string) string {
	return filepath.Join(s.dir, leadID+".pdf")
}

func (s *Store) URL(leadID string) string {
	return fmt.Sprintf("%s/pdf/%s.pdf", s.baseURL, leadID)
}

func (s *Store) Exists(leadID string) bool {
	if !ValidLeadID(leadID) {
		return false
	}
	info, err := os.Stat(s.Path(leadID))
	return err == nil && !info.IsDir()
}

// Write persists the rendered document and returns its artifact handle.
func (s *Store) Write(leadID string, data []byte) (string, error) {
	if !ValidLeadID(leadID) {
		return "", fmt.Errorf("invalid lead id %q", leadID)
	}
	path := s.Path(leadID)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing pdf: %w", err)
	}
	return path, nil
}
