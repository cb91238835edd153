package export

import "context"

// Request describes an email to turn into compose links and an .eml file.
type Request struct {
	To      string `json:"to"`
	Cc      string `json:"cc"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	Date    string `json:"date"`
}

// Result bundles every downstream hand-off format for one email.
type Result struct {
	Mailto     string `json:"mailto"`
	Gmail      string `json:"gmail"`
	Outlook    string `json:"outlook"`
	Filename   string `json:"filename"`
	EML        string `json:"eml"`
	ArchiveKey string `json:"archiveKey,omitempty"`
}

// Archive stores rendered .eml payloads. A nil archive disables archival.
type Archive interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
}
